package flows

import (
	"context"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/arbor/pkg/domain"
)

// Profile dialog item ids.
const (
	ProfileFirstName   = 0
	ProfileLastName    = 1
	ProfileMiddleName  = 2
	ProfileLegalEntity = 3
)

const maxNameLength = 30

var retry = domain.Signal{Kind: domain.SignalRetry}

// ValidName accepts a single word of letters shorter than 30 runes.
func ValidName(name string) bool {
	if name == "" || utf8.RuneCountInString(name) >= maxNameLength {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Profile writes answers straight into the user row.
type Profile struct {
	deps Deps
}

func (p *Profile) Handle(ctx context.Context, ev domain.AnswerEvent) (domain.Signal, error) {
	user, err := p.deps.Users.Get(ctx, ev.UserID)
	if err != nil {
		return domain.Continue, err
	}
	if user == nil {
		p.deps.Logger.Warn("Profile answer from unknown user", "user_id", ev.UserID)
	} else {
		switch ev.ItemID {
		case ProfileFirstName, ProfileLastName, ProfileMiddleName:
			if !ValidName(ev.Answer) {
				p.deps.notify(ctx, ev, "profile_name_validation_error")
				return retry, nil
			}
			switch ev.ItemID {
			case ProfileFirstName:
				user.FirstName = ev.Answer
			case ProfileLastName:
				user.LastName = ev.Answer
			default:
				user.MiddleName = ev.Answer
			}
		case ProfileLegalEntity:
			user.LegalEntity = ev.Answer
		}
		if err := p.deps.Users.Save(ctx, user); err != nil {
			return domain.Continue, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	if ev.Completed {
		p.deps.notify(ctx, ev, "profile_completed")
		return menu, nil
	}
	return domain.Continue, nil
}
