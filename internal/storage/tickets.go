package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrTicketNotFound is returned for unknown ticket references.
var ErrTicketNotFound = errors.New("ticket not found")

type TicketRepository interface {
	Draft(ctx context.Context, ref string, userID int64) (*ServiceTicket, error)
	Get(ctx context.Context, ref string) (*ServiceTicket, error)
	Answer(ctx context.Context, ref string, answer TicketAnswer) error
	Rewind(ctx context.Context, ref string, sequenceID, itemID int) error
	Discard(ctx context.Context, ref string) error
	Submit(ctx context.Context, ref string) (*ServiceTicket, error)
}

type GormTickets struct {
	db  *gorm.DB
	now func() time.Time
}

func NewTicketRepository(db *gorm.DB) *GormTickets {
	return &GormTickets{db: db, now: time.Now}
}

// Draft returns the ticket for ref, creating an empty draft when needed.
func (r *GormTickets) Draft(ctx context.Context, ref string, userID int64) (*ServiceTicket, error) {
	t := ServiceTicket{Ref: ref, UserID: userID, Status: TicketDraft}
	err := r.db.WithContext(ctx).
		Where(ServiceTicket{Ref: ref}).
		FirstOrCreate(&t).Error
	if err != nil {
		return nil, fmt.Errorf("failed to open ticket draft: %w", err)
	}
	return &t, nil
}

func (r *GormTickets) Get(ctx context.Context, ref string) (*ServiceTicket, error) {
	var t ServiceTicket
	err := r.db.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&t, "ref = ?", ref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return &t, nil
}

// Answer records the answer to one step. Answering a step again voids the
// earlier answer and everything recorded after it, since the user has taken
// a new path from there.
func (r *GormTickets) Answer(ctx context.Context, ref string, answer TicketAnswer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := draftFor(tx, ref)
		if err != nil {
			return err
		}
		if err := truncate(tx, t.ID, answer.SequenceID, answer.ItemID); err != nil {
			return err
		}
		answer.ID = 0
		answer.TicketID = t.ID
		if err := tx.Create(&answer).Error; err != nil {
			return fmt.Errorf("failed to record ticket answer: %w", err)
		}
		return refresh(tx, t.ID)
	})
}

// Rewind voids the answer of the step and every answer recorded after it.
// A step that was never answered leaves the draft as it is.
func (r *GormTickets) Rewind(ctx context.Context, ref string, sequenceID, itemID int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := draftFor(tx, ref)
		if err != nil {
			return err
		}
		if err := truncate(tx, t.ID, sequenceID, itemID); err != nil {
			return err
		}
		return refresh(tx, t.ID)
	})
}

// Discard deletes a draft with its answers. Submitted tickets and unknown
// refs are left alone.
func (r *GormTickets) Discard(ctx context.Context, ref string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t ServiceTicket
		err := tx.Where("ref = ? AND status = ?", ref, TicketDraft).Limit(1).Find(&t).Error
		if err != nil || t.ID == 0 {
			return err
		}
		if err := tx.Where("ticket_id = ?", t.ID).Delete(&TicketAnswer{}).Error; err != nil {
			return fmt.Errorf("failed to discard ticket answers: %w", err)
		}
		return tx.Delete(&t).Error
	})
}

func draftFor(tx *gorm.DB, ref string) (*ServiceTicket, error) {
	var t ServiceTicket
	if err := tx.First(&t, "ref = ?", ref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

// truncate deletes the answer of the step and every later one.
func truncate(tx *gorm.DB, ticketID uint, sequenceID, itemID int) error {
	var at TicketAnswer
	err := tx.Where("ticket_id = ? AND sequence_id = ? AND item_id = ?", ticketID, sequenceID, itemID).
		Limit(1).Find(&at).Error
	if err != nil || at.ID == 0 {
		return err
	}
	return tx.Where("ticket_id = ? AND id >= ?", ticketID, at.ID).Delete(&TicketAnswer{}).Error
}

// refresh derives the description and photo from the answers left on the path.
func refresh(tx *gorm.DB, ticketID uint) error {
	var answers []TicketAnswer
	if err := tx.Where("ticket_id = ?", ticketID).Order("id").Find(&answers).Error; err != nil {
		return err
	}
	fields := map[string]any{"description": "", "image": ""}
	for _, a := range answers {
		switch a.Kind {
		case AnswerText:
			fields["description"] = a.Answer
		case AnswerImage:
			fields["image"] = a.Answer
		}
	}
	return tx.Model(&ServiceTicket{}).Where("id = ?", ticketID).Updates(fields).Error
}

// Submit marks the draft as submitted and returns it with its answers.
func (r *GormTickets) Submit(ctx context.Context, ref string) (*ServiceTicket, error) {
	if err := r.update(ctx, ref, map[string]any{
		"status":       TicketSubmitted,
		"submitted_at": r.now(),
	}); err != nil {
		return nil, err
	}
	return r.Get(ctx, ref)
}

func (r *GormTickets) update(ctx context.Context, ref string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&ServiceTicket{}).Where("ref = ?", ref).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update ticket: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTicketNotFound
	}
	return nil
}
