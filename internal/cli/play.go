package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/arbor/internal/adapters/console"
	"github.com/aretw0/arbor/internal/flows"
	"github.com/aretw0/arbor/internal/locale"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/session"
)

// PlayOptions configures RunPlay.
type PlayOptions struct {
	// Path is a single dialog file.
	Path string
	// Entry overrides the entry point derived from the file name.
	Entry      string
	LocaleFile string
	Lang       string
	// Plain disables the banner and markdown rendering.
	Plain   bool
	Version string
	In      io.Reader
	Out     io.Writer
	Logger  *slog.Logger
}

// RunPlay plays one dialog file in the terminal. Answers are only logged.
func RunPlay(ctx context.Context, opts PlayOptions) error {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	entry, err := resolveEntry(opts.Path, opts.Entry)
	if err != nil {
		return err
	}
	d, err := file.LoadFile(opts.Path)
	if err != nil {
		return err
	}
	catalog, err := memory.NewCatalog(map[domain.EntryPoint]*domain.Dialog{entry: d})
	if err != nil {
		return err
	}
	cat, err := locale.Load(opts.LocaleFile, opts.Lang)
	if err != nil {
		return err
	}

	reg := registry.NewRegistry()
	reg.SetDefault(flows.Default(opts.Logger))
	engine := runtime.NewEngine(catalog, reg,
		runtime.WithLogger(opts.Logger),
		runtime.WithLifecycleHooks(debugHooks(opts.Logger)),
	)
	conv := runtime.Conversation{Scope: session.NewScope(memory.NewStore(), "console")}

	render := console.Renderer(tui.Plain)
	if !opts.Plain {
		tui.PrintBanner(opts.Out, strings.TrimSpace(opts.Version))
		render = tui.NewRenderer()
	}
	return console.NewPlayer(engine, conv, cat, render, opts.In, opts.Out).Play(ctx, entry)
}

// resolveEntry takes the explicit token or else the file's base name.
func resolveEntry(path, token string) (domain.EntryPoint, error) {
	if token == "" {
		token = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	entry, ok := domain.ParseEntryPoint(token)
	if !ok || !entry.HasDialog() {
		return domain.EntryUnknown, fmt.Errorf("%q is not a dialog entry point; use --entry", token)
	}
	return entry, nil
}
