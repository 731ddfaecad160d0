package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/router"
	"github.com/aretw0/arbor/pkg/session"
)

// RenderCurrentStep redraws the active step. A pending answer left in the
// buffer is still consumed first.
func (e *Engine) RenderCurrentStep(ctx context.Context, conv Conversation) (domain.Outcome, error) {
	return e.step(ctx, conv, nil)
}

// ConsumeTextAnswer answers the active step with free text.
// Length and format checks are the caller's concern.
func (e *Engine) ConsumeTextAnswer(ctx context.Context, conv Conversation, text string) (domain.Outcome, error) {
	if err := conv.Scope.SetPendingAnswer(ctx, text); err != nil {
		return domain.Outcome{}, err
	}
	return e.step(ctx, conv, nil)
}

// ConsumeImageAnswer answers the active step with an image reference.
func (e *Engine) ConsumeImageAnswer(ctx context.Context, conv Conversation, fileRef string) (domain.Outcome, error) {
	return e.ConsumeTextAnswer(ctx, conv, fileRef)
}

// ConsumeSelection answers the active step with an option.
func (e *Engine) ConsumeSelection(ctx context.Context, conv Conversation, optionID int) (domain.Outcome, error) {
	return e.step(ctx, conv, &optionID)
}

// HandleItemPayload handles an "item" or "item:<optionId>" callback payload.
// A malformed suffix is not an error: the step is redrawn unchanged.
func (e *Engine) HandleItemPayload(ctx context.Context, conv Conversation, payload string) (domain.Outcome, error) {
	if id, ok := domain.ParseSelection(payload); ok {
		return e.ConsumeSelection(ctx, conv, id)
	}
	return e.RenderCurrentStep(ctx, conv)
}

// step runs one pass of the interpreter: consume an answer if there is one,
// advance, then render.
func (e *Engine) step(ctx context.Context, conv Conversation, selection *int) (domain.Outcome, error) {
	s := conv.Scope
	active, ok, err := e.load(ctx, s)
	if err != nil {
		return domain.Outcome{}, err
	}
	if !ok {
		return end(), nil
	}

	nav := router.New(s)
	if err := nav.SetParent(ctx, domain.ParentMarker); err != nil {
		return domain.Outcome{}, err
	}

	current, ok := active.dialog.ItemAt(active.pos)
	if !ok {
		return e.render(ctx, s, active)
	}

	answer, optionID, err := e.resolveAnswer(ctx, s, active.dialog, current, selection)
	if err != nil {
		return domain.Outcome{}, err
	}
	if answer == nil {
		return e.render(ctx, s, active)
	}

	// The answered step goes on the trace before anything else so that back
	// navigation can always return to it.
	if err := nav.PushTraceItem(ctx, active.pos.Token()); err != nil {
		return domain.Outcome{}, err
	}

	next, completed := resolveNext(active.dialog, active.pos, optionID)
	if !completed {
		if err := s.SetPosition(ctx, next); err != nil {
			return domain.Outcome{}, err
		}
	}

	e.emit(ctx, e.hooks.OnAnswered, domain.EventAnswered, s, active.entry, active.pos, current.Kind)

	seq, _ := active.dialog.Sequence(active.pos.SequenceID)
	sig, err := e.dispatch(ctx, active.entry, domain.AnswerEvent{
		ConversationID: s.ConversationID(),
		ChatID:         conv.ChatID,
		UserID:         conv.UserID,
		Entry:          active.entry,
		Dialog:         active.dialog,
		SequenceID:     seq.ID,
		ItemID:         current.ID,
		OptionID:       optionID,
		Answer:         *answer,
		Completed:      completed,
	})
	if err != nil {
		if rerr := e.rewind(ctx, s, active.pos); rerr != nil {
			return domain.Outcome{}, fmt.Errorf("%w (rewind failed: %v)", err, rerr)
		}
		return domain.Outcome{}, err
	}

	switch {
	case sig.Kind == domain.SignalRetry:
		if err := e.rewind(ctx, s, active.pos); err != nil {
			return domain.Outcome{}, err
		}
		out, err := e.render(ctx, s, active)
		out.Signal = sig
		return out, err

	case completed:
		if err := e.clearFlow(ctx, s); err != nil {
			return domain.Outcome{}, err
		}
		e.emit(ctx, e.hooks.OnCompleted, domain.EventCompleted, s, active.entry, active.pos, current.Kind)
		e.logger.Debug("Flow completed", "conversation_id", s.ConversationID(), "entry", active.entry)
		return domain.Outcome{Kind: domain.OutcomeCompleted, Entry: active.entry, Signal: sig, Position: active.pos}, nil

	case sig.Kind == domain.SignalMenu:
		if err := e.clearFlow(ctx, s); err != nil {
			return domain.Outcome{}, err
		}
		return domain.Outcome{Kind: domain.OutcomeEnd, Entry: active.entry, Signal: sig, Position: next}, nil
	}

	active.pos = next
	out, err := e.render(ctx, s, active)
	out.Signal = sig
	return out, err
}

// resolveAnswer applies answer precedence: the pending buffer wins over a
// selection, which is then ignored entirely.
func (e *Engine) resolveAnswer(ctx context.Context, s *session.Scope, d *domain.Dialog, current *domain.Item, selection *int) (*string, *int, error) {
	pending, ok, err := s.TakePendingAnswer(ctx)
	if err != nil {
		return nil, nil, err
	}
	if ok {
		return &pending, nil, nil
	}
	if selection == nil {
		return nil, nil, nil
	}

	// Only options of the item on screen count; anything else is a stale button.
	for _, id := range current.OptionIDs {
		if id != *selection {
			continue
		}
		if opt, ok := d.Option(id); ok {
			text := opt.Text
			optionID := id
			return &text, &optionID, nil
		}
	}
	e.logger.Debug("Ignoring selection outside the active step",
		"conversation_id", s.ConversationID(), "option_id", *selection)
	return nil, nil, nil
}

// resolveNext applies branch priority: option target, next item, next
// sequence, terminal.
func resolveNext(d *domain.Dialog, pos domain.Position, optionID *int) (domain.Position, bool) {
	if optionID != nil {
		if opt, ok := d.Option(*optionID); ok && opt.SequenceID != nil {
			return domain.Position{SequenceID: *opt.SequenceID}, false
		}
	}

	seq, ok := d.Sequence(pos.SequenceID)
	if !ok {
		return pos, true
	}
	if pos.ItemIndex+1 < len(seq.ItemIDs) {
		return domain.Position{SequenceID: seq.ID, ItemIndex: pos.ItemIndex + 1}, false
	}
	if seq.NextSequenceID != nil {
		return domain.Position{SequenceID: *seq.NextSequenceID}, false
	}
	return pos, true
}

func (e *Engine) dispatch(ctx context.Context, entry domain.EntryPoint, event domain.AnswerEvent) (domain.Signal, error) {
	if e.handlers == nil {
		return domain.Continue, nil
	}
	sig, err := e.handlers.Dispatch(ctx, entry, event)
	if err != nil {
		return sig, fmt.Errorf("handler for %s failed: %w", entry, err)
	}
	return sig, nil
}

// rewind undoes an answer pass: the cursor returns to the answered step and
// the trace token pushed for it is dropped.
func (e *Engine) rewind(ctx context.Context, s *session.Scope, pos domain.Position) error {
	if err := s.SetPosition(ctx, pos); err != nil {
		return err
	}
	_, _, err := router.New(s).PopPreviousTraceItem(ctx)
	return err
}

// GoBack walks one step back through the trace.
func (e *Engine) GoBack(ctx context.Context, conv Conversation) (domain.Outcome, error) {
	s := conv.Scope
	active, ok, err := e.load(ctx, s)
	if err != nil {
		return domain.Outcome{}, err
	}
	if !ok {
		return end(), nil
	}

	nav := router.New(s)
	parent, _, err := nav.Parent(ctx)
	if err != nil {
		return domain.Outcome{}, err
	}
	entryToken, _, err := nav.EntryPoint(ctx)
	if err != nil {
		return domain.Outcome{}, err
	}
	token, ok, err := nav.PopPreviousTraceItem(ctx)
	if err != nil {
		return domain.Outcome{}, err
	}
	if !ok {
		return end(), nil
	}

	pos, isPosition := domain.ParsePositionToken(token)
	if token == parent || token == entryToken || !isPosition {
		if !isPosition && token != parent && token != entryToken {
			e.logger.Warn("Unreadable trace token, restarting flow",
				"conversation_id", s.ConversationID(), "token", token)
		}
		return e.restart(ctx, conv, active)
	}

	if err := s.SetPosition(ctx, pos); err != nil {
		return domain.Outcome{}, err
	}
	active.pos = pos
	if err := e.notifyRewind(ctx, conv, active, false); err != nil {
		return domain.Outcome{}, err
	}

	kind := domain.ItemKind(-1)
	if it, ok := active.dialog.ItemAt(pos); ok {
		kind = it.Kind
	}
	e.emit(ctx, e.hooks.OnBack, domain.EventBack, s, active.entry, pos, kind)

	if err := nav.SetParent(ctx, domain.ParentMarker); err != nil {
		return domain.Outcome{}, err
	}
	return e.render(ctx, s, active)
}

// CancelToEntryPoint abandons the answers in progress and returns to the
// start of the flow.
func (e *Engine) CancelToEntryPoint(ctx context.Context, conv Conversation) (domain.Outcome, error) {
	active, ok, err := e.load(ctx, conv.Scope)
	if err != nil {
		return domain.Outcome{}, err
	}
	if !ok {
		return end(), nil
	}
	return e.restart(ctx, conv, active)
}

// restart resets the cursor to (0,0) and the trace to [entry, parent].
func (e *Engine) restart(ctx context.Context, conv Conversation, active activeFlow) (domain.Outcome, error) {
	s, entry := conv.Scope, active.entry
	start := domain.Position{SequenceID: domain.EntrySequenceID}
	if err := s.SetPosition(ctx, start); err != nil {
		return domain.Outcome{}, err
	}
	active.pos = start
	if err := e.notifyRewind(ctx, conv, active, true); err != nil {
		return domain.Outcome{}, err
	}
	if err := resetTrace(ctx, s, entry); err != nil {
		return domain.Outcome{}, err
	}
	if err := s.Delete(ctx, domain.KeyPendingAnswer); err != nil {
		return domain.Outcome{}, err
	}
	e.logger.Debug("Flow restarted", "conversation_id", s.ConversationID(), "entry", entry)
	return domain.Outcome{Kind: domain.OutcomeRestart, Entry: entry, Signal: domain.Continue, Position: start}, nil
}

// notifyRewind tells the flow handler which answers the user abandoned.
func (e *Engine) notifyRewind(ctx context.Context, conv Conversation, active activeFlow, restart bool) error {
	rw, ok := e.handlers.(RewindDispatcher)
	if !ok {
		return nil
	}
	ev := domain.RewindEvent{
		ConversationID: conv.Scope.ConversationID(),
		ChatID:         conv.ChatID,
		UserID:         conv.UserID,
		Entry:          active.entry,
		Dialog:         active.dialog,
		Position:       active.pos,
		SequenceID:     active.pos.SequenceID,
		Restart:        restart,
	}
	if it, ok := active.dialog.ItemAt(active.pos); ok {
		ev.ItemID = it.ID
	}
	if err := rw.Rewind(ctx, active.entry, ev); err != nil {
		return fmt.Errorf("rewind for %s failed: %w", active.entry, err)
	}
	return nil
}
