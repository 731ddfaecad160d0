package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PollRepository interface {
	Upsert(ctx context.Context, answer *PollAnswer) error
	List(ctx context.Context, userID int64, dialogID int) ([]PollAnswer, error)
}

type GormPolls struct {
	db *gorm.DB
}

func NewPollRepository(db *gorm.DB) *GormPolls {
	return &GormPolls{db: db}
}

// Upsert keeps only the latest answer of a user to a poll item.
func (r *GormPolls) Upsert(ctx context.Context, answer *PollAnswer) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "dialog_id"}, {Name: "item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"sequence_id",
			"answer",
			"updated_at",
		}),
	}).Create(answer).Error
	if err != nil {
		return fmt.Errorf("failed to save poll answer: %w", err)
	}
	return nil
}

func (r *GormPolls) List(ctx context.Context, userID int64, dialogID int) ([]PollAnswer, error) {
	var out []PollAnswer
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND dialog_id = ?", userID, dialogID).
		Order("item_id").
		Find(&out).Error
	return out, err
}

type FeedbackRepository interface {
	Create(ctx context.Context, fb *Feedback) error
	List(ctx context.Context, userID int64) ([]Feedback, error)
}

type GormFeedback struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *GormFeedback {
	return &GormFeedback{db: db}
}

func (r *GormFeedback) Create(ctx context.Context, fb *Feedback) error {
	if err := r.db.WithContext(ctx).Create(fb).Error; err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}
	return nil
}

func (r *GormFeedback) List(ctx context.Context, userID int64) ([]Feedback, error) {
	var out []Feedback
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&out).Error
	return out, err
}
