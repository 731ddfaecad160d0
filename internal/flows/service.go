package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/arbor/internal/events"
	"github.com/aretw0/arbor/internal/storage"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/google/uuid"
)

// summaryLimit caps the ticket summary sent to operators.
const summaryLimit = 200

// Service collects answers into a ticket draft and submits it on completion.
type Service struct {
	deps Deps
}

// TicketRef returns the draft reference of the conversation, creating one
// when create is set.
func TicketRef(ctx context.Context, d *Deps, conversationID string, create bool) (string, bool, error) {
	scope := d.Sessions.Scope(conversationID)
	ref, ok, err := scope.String(ctx, domain.KeyTicketRef)
	if err != nil || ok || !create {
		return ref, ok, err
	}
	ref = uuid.NewString()
	if err := scope.Set(ctx, domain.KeyTicketRef, ref); err != nil {
		return "", false, err
	}
	return ref, true, nil
}

func (s *Service) Handle(ctx context.Context, ev domain.AnswerEvent) (domain.Signal, error) {
	ref, _, err := TicketRef(ctx, &s.deps, ev.ConversationID, true)
	if err != nil {
		return domain.Continue, err
	}
	if _, err := s.deps.Tickets.Draft(ctx, ref, ev.UserID); err != nil {
		return domain.Continue, err
	}

	answer := storage.TicketAnswer{
		SequenceID: ev.SequenceID,
		ItemID:     ev.ItemID,
		Kind:       answerKind(ev),
		Answer:     s.deps.answerText(ev),
	}
	if err := s.deps.Tickets.Answer(ctx, ref, answer); err != nil {
		return domain.Continue, fmt.Errorf("failed to record ticket answer: %w", err)
	}

	if !ev.Completed {
		return domain.Continue, nil
	}
	return menu, s.submit(ctx, ev, ref)
}

// Rewind keeps the draft in step with back navigation. A restart drops the
// draft altogether and the next answer opens a new one.
func (s *Service) Rewind(ctx context.Context, ev domain.RewindEvent) error {
	ref, ok, err := TicketRef(ctx, &s.deps, ev.ConversationID, false)
	if err != nil || !ok {
		return err
	}
	if !ev.Restart {
		err := s.deps.Tickets.Rewind(ctx, ref, ev.SequenceID, ev.ItemID)
		if errors.Is(err, storage.ErrTicketNotFound) {
			return nil
		}
		return err
	}
	if err := s.deps.Tickets.Discard(ctx, ref); err != nil {
		return fmt.Errorf("failed to discard ticket draft: %w", err)
	}
	return s.deps.Sessions.Scope(ev.ConversationID).Delete(ctx, domain.KeyTicketRef)
}

func answerKind(ev domain.AnswerEvent) storage.AnswerKind {
	switch itemKind(ev) {
	case domain.KindImageUpload:
		return storage.AnswerImage
	case domain.KindTextInput:
		return storage.AnswerText
	}
	return storage.AnswerChoice
}

func (s *Service) submit(ctx context.Context, ev domain.AnswerEvent, ref string) error {
	ticket, err := s.deps.Tickets.Submit(ctx, ref)
	if err != nil {
		return err
	}
	if err := s.deps.Sessions.Scope(ev.ConversationID).Delete(ctx, domain.KeyTicketRef); err != nil {
		return err
	}

	event := events.TicketSubmitted{
		Ref:         ticket.Ref,
		UserID:      ticket.UserID,
		Summary:     ticket.Summary(summaryLimit),
		Description: ticket.Description,
		Image:       ticket.Image,
	}
	if ticket.SubmittedAt != nil {
		event.SubmittedAt = *ticket.SubmittedAt
	}
	if user, err := s.deps.Users.Get(ctx, ev.UserID); err == nil && user != nil {
		event.Username = user.Username
	}
	// The ticket is stored either way; operators can still find it.
	if err := s.deps.Publisher.Publish(ctx, event); err != nil {
		s.deps.Logger.Error("Failed to publish ticket", "ref", ticket.Ref, "err", err)
	}

	s.deps.notify(ctx, ev, "service_ticket_completed", ShortRef(ticket.Ref))
	return nil
}

// ShortRef is the user-facing form of a ticket reference.
func ShortRef(ref string) string {
	if len(ref) > 8 {
		return ref[:8]
	}
	return ref
}
