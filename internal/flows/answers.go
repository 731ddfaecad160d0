package flows

import (
	"context"

	"github.com/aretw0/arbor/internal/storage"
	"github.com/aretw0/arbor/pkg/domain"
)

// Poll keeps the latest answer per poll item.
type Poll struct {
	deps Deps
}

func (p *Poll) Handle(ctx context.Context, ev domain.AnswerEvent) (domain.Signal, error) {
	answer := p.deps.answerText(ev)
	if answer == "" {
		answer = "-"
	}
	err := p.deps.Polls.Upsert(ctx, &storage.PollAnswer{
		UserID:     ev.UserID,
		DialogID:   dialogID(ev),
		SequenceID: ev.SequenceID,
		ItemID:     ev.ItemID,
		Answer:     answer,
	})
	if err != nil {
		return domain.Continue, err
	}

	if ev.Completed {
		p.deps.notify(ctx, ev, "poll_completed")
		return menu, nil
	}
	return domain.Continue, nil
}

// Feedback stores every answer as its own row.
type Feedback struct {
	deps Deps
}

func (f *Feedback) Handle(ctx context.Context, ev domain.AnswerEvent) (domain.Signal, error) {
	err := f.deps.Feedback.Create(ctx, &storage.Feedback{
		UserID:     ev.UserID,
		DialogID:   dialogID(ev),
		SequenceID: ev.SequenceID,
		ItemID:     ev.ItemID,
		Answer:     f.deps.answerText(ev),
	})
	if err != nil {
		return domain.Continue, err
	}

	if ev.Completed {
		f.deps.notify(ctx, ev, "feedback_completed")
		return menu, nil
	}
	return domain.Continue, nil
}

func dialogID(ev domain.AnswerEvent) int {
	if ev.Dialog == nil {
		return 0
	}
	return ev.Dialog.ID
}
