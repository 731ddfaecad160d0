package cli

import (
	"context"
	"log/slog"

	"github.com/aretw0/arbor/pkg/domain"
)

// debugHooks logs every engine transition.
func debugHooks(logger *slog.Logger) domain.LifecycleHooks {
	log := func(msg string) func(context.Context, *domain.StepEvent) {
		return func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, msg,
				"conversation_id", e.ConversationID,
				"entry", e.Entry.String(),
				"position", e.Position.Token(),
				"kind", e.Kind.String())
		}
	}
	return domain.LifecycleHooks{
		OnStepRendered: log("Step rendered"),
		OnAnswered:     log("Answer consumed"),
		OnCompleted:    log("Flow completed"),
		OnBack:         log("Back"),
	}
}

// chainHooks calls the hooks of a, then b.
func chainHooks(a, b domain.LifecycleHooks) domain.LifecycleHooks {
	chain := func(x, y func(context.Context, *domain.StepEvent)) func(context.Context, *domain.StepEvent) {
		switch {
		case x == nil:
			return y
		case y == nil:
			return x
		}
		return func(ctx context.Context, e *domain.StepEvent) {
			x(ctx, e)
			y(ctx, e)
		}
	}
	return domain.LifecycleHooks{
		OnStepRendered: chain(a.OnStepRendered, b.OnStepRendered),
		OnAnswered:     chain(a.OnAnswered, b.OnAnswered),
		OnCompleted:    chain(a.OnCompleted, b.OnCompleted),
		OnBack:         chain(a.OnBack, b.OnBack),
	}
}
