package storage

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Role is the kind of account a user holds.
type Role int

const (
	RoleUnknown Role = iota
	// RoleDecisionMaker sees every flow.
	RoleDecisionMaker
	// RoleManagingAgent only sees service and profile.
	RoleManagingAgent
)

// ParseRole maps a /start deep-link payload to a role.
func ParseRole(payload string) (Role, bool) {
	switch strings.TrimSpace(payload) {
	case "1":
		return RoleDecisionMaker, true
	case "2":
		return RoleManagingAgent, true
	}
	return RoleUnknown, false
}

// Key is the locale key of the role name.
func (r Role) Key() string {
	switch r {
	case RoleDecisionMaker:
		return "role_decision_maker"
	case RoleManagingAgent:
		return "role_managing_agent"
	default:
		return "role_unknown"
	}
}

type User struct {
	ID                    int64 `gorm:"primaryKey;autoIncrement:false"`
	Username              string
	Role                  Role `gorm:"default:0"`
	FirstName             string
	LastName              string
	MiddleName            string
	LegalEntity           string
	Object                string
	LanguageCode          string `gorm:"default:'en'"`
	DataProcessingConsent bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// FullName is "last first middle" with empty parts skipped.
func (u *User) FullName() string {
	return strings.Join(strings.Fields(u.LastName+" "+u.FirstName+" "+u.MiddleName), " ")
}

// ProfileComplete reports whether the user may use the bot beyond login.
// Every name part and the legal entity must be filled.
func (u *User) ProfileComplete() bool {
	return u.FirstName != "" && u.LastName != "" && u.MiddleName != "" && u.LegalEntity != ""
}

// TicketStatus tracks a service ticket from draft to submission.
type TicketStatus int

const (
	TicketDraft TicketStatus = iota
	TicketSubmitted
)

type ServiceTicket struct {
	ID          uint   `gorm:"primaryKey"`
	Ref         string `gorm:"uniqueIndex;size:36"`
	UserID      int64  `gorm:"index"`
	Status      TicketStatus
	Description string `gorm:"type:text"`
	Image       string
	Answers     []TicketAnswer `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
	SubmittedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Summary renders the chosen and typed answers in path order. Photos are
// reported through Image instead.
func (t *ServiceTicket) Summary(limit int) string {
	parts := make([]string, 0, len(t.Answers))
	for _, a := range t.Answers {
		if a.Kind == AnswerImage {
			continue
		}
		parts = append(parts, a.Answer)
	}
	s := strings.Join(parts, " / ")
	if limit > 0 && utf8.RuneCountInString(s) > limit {
		s = string([]rune(s)[:limit]) + "…"
	}
	return s
}

// AnswerKind tells how a ticket answer was given.
type AnswerKind int

const (
	AnswerChoice AnswerKind = iota
	AnswerText
	AnswerImage
)

// TicketAnswer is one step of a ticket draft. A step holds at most one
// answer; rows are ordered by id along the path the user took.
type TicketAnswer struct {
	ID         uint `gorm:"primaryKey"`
	TicketID   uint `gorm:"uniqueIndex:idx_ticket_step"`
	SequenceID int  `gorm:"uniqueIndex:idx_ticket_step"`
	ItemID     int  `gorm:"uniqueIndex:idx_ticket_step"`
	Kind       AnswerKind
	Answer     string `gorm:"type:text"`
	CreatedAt  time.Time
}

// PollAnswer keeps one answer per user, dialog and item.
type PollAnswer struct {
	ID         uint  `gorm:"primaryKey"`
	UserID     int64 `gorm:"uniqueIndex:idx_poll_answer"`
	DialogID   int   `gorm:"uniqueIndex:idx_poll_answer"`
	ItemID     int   `gorm:"uniqueIndex:idx_poll_answer"`
	SequenceID int
	Answer     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Feedback struct {
	ID         uint  `gorm:"primaryKey"`
	UserID     int64 `gorm:"index"`
	DialogID   int
	SequenceID int
	ItemID     int
	Answer     string `gorm:"type:text"`
	CreatedAt  time.Time
}

// Models lists every table for migration.
func Models() []any {
	return []any{&User{}, &ServiceTicket{}, &TicketAnswer{}, &PollAnswer{}, &Feedback{}}
}
