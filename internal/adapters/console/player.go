// Package console plays dialogs in a terminal against the real engine.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/aretw0/arbor/internal/locale"
	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/domain"
)

// Renderer formats a message body for the terminal.
type Renderer func(string) (string, error)

// Player drives one conversation from line-based input.
type Player struct {
	engine   *runtime.Engine
	conv     runtime.Conversation
	locale   *locale.Catalog
	render   Renderer
	in       *bufio.Reader
	out      io.Writer
	keyboard domain.Keyboard
}

func NewPlayer(engine *runtime.Engine, conv runtime.Conversation, cat *locale.Catalog, render Renderer, in io.Reader, out io.Writer) *Player {
	if render == nil {
		render = func(s string) (string, error) { return s + "\n", nil }
	}
	return &Player{
		engine: engine,
		conv:   conv,
		locale: cat,
		render: render,
		in:     bufio.NewReader(in),
		out:    out,
	}
}

// Interactive reports whether stdin is a terminal.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Play runs the flow of entry until it completes, the input ends or the user
// types "quit".
func (p *Player) Play(ctx context.Context, entry domain.EntryPoint) error {
	if err := p.engine.StartFlow(ctx, p.conv, entry); err != nil {
		return err
	}
	out, err := p.engine.RenderCurrentStep(ctx, p.conv)
	if err != nil {
		return err
	}

	for {
		done, err := p.show(ctx, out)
		if err != nil || done {
			return err
		}

		fmt.Fprint(p.out, "> ")
		line, err := p.in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "quit" || line == "exit" {
			return nil
		}

		out, err = p.answer(ctx, line)
		if err != nil {
			return err
		}
	}
}

// show prints an outcome and reports whether the session is over.
func (p *Player) show(ctx context.Context, out domain.Outcome) (bool, error) {
	switch out.Kind {
	case domain.OutcomeCompleted:
		fmt.Fprintln(p.out, "✔ flow completed")
		return true, nil
	case domain.OutcomeEnd:
		if out.Prompt != nil {
			p.print(*out.Prompt)
		}
		return true, nil
	case domain.OutcomeRestart:
		fmt.Fprintln(p.out, "↺ back at the start")
		next, err := p.engine.RenderCurrentStep(ctx, p.conv)
		if err != nil {
			return true, err
		}
		return p.show(ctx, next)
	}
	if out.Signal.Kind == domain.SignalRetry {
		fmt.Fprintln(p.out, "✖ answer rejected")
	}
	if out.Prompt != nil {
		p.print(*out.Prompt)
	}
	return false, nil
}

func (p *Player) print(prompt domain.Prompt) {
	body, err := p.render(p.locale.Prompt(prompt))
	if err != nil {
		body = p.locale.Prompt(prompt) + "\n"
	}
	fmt.Fprint(p.out, body)

	p.keyboard = prompt.Keyboard
	n := 0
	for _, row := range prompt.Keyboard {
		labels := make([]string, 0, len(row))
		for _, b := range row {
			n++
			labels = append(labels, fmt.Sprintf("[%d] %s", n, p.locale.Text(b.Label)))
		}
		fmt.Fprintln(p.out, "  "+strings.Join(labels, "   "))
	}
}

// answer maps a line to an engine call: a button number presses that
// button, anything else is a text or image answer.
func (p *Player) answer(ctx context.Context, line string) (domain.Outcome, error) {
	if b, ok := p.button(line); ok {
		switch action := domain.PayloadAction(b.Payload); action {
		case domain.ActionItem:
			return p.engine.HandleItemPayload(ctx, p.conv, b.Payload)
		case domain.ActionBack:
			return p.engine.GoBack(ctx, p.conv)
		default:
			return p.engine.CancelToEntryPoint(ctx, p.conv)
		}
	}

	state, err := p.engine.State(ctx, p.conv)
	if err != nil {
		return domain.Outcome{}, err
	}
	switch state {
	case domain.AwaitText:
		return p.engine.ConsumeTextAnswer(ctx, p.conv, line)
	case domain.AwaitImage:
		return p.engine.ConsumeImageAnswer(ctx, p.conv, line)
	}
	fmt.Fprintln(p.out, "pick one of the numbered buttons")
	return p.engine.RenderCurrentStep(ctx, p.conv)
}

func (p *Player) button(line string) (domain.Button, bool) {
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 {
		return domain.Button{}, false
	}
	for _, row := range p.keyboard {
		if n <= len(row) {
			return row[n-1], true
		}
		n -= len(row)
	}
	return domain.Button{}, false
}
