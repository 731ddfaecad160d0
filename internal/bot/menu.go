package bot

import (
	"context"
	"errors"

	"github.com/aretw0/arbor/internal/flows"
	"github.com/aretw0/arbor/internal/storage"
	"github.com/aretw0/arbor/pkg/domain"
)

// start registers or refreshes the user and asks for consent on first use.
// "/start 1" and "/start 2" assign a role.
func (d *Dispatcher) start(ctx context.Context, c call) error {
	if c.ev.UserID == 0 {
		return d.notice(ctx, c, "user_data_validation_error")
	}
	user, err := d.users.Get(ctx, c.ev.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		user = &storage.User{ID: c.ev.UserID}
	}
	user.Username = c.ev.Username
	if c.ev.LanguageCode != "" {
		user.LanguageCode = c.ev.LanguageCode
	}
	if role, ok := storage.ParseRole(c.ev.Args); ok {
		user.Role = role
	}
	if err := d.users.Save(ctx, user); err != nil {
		return err
	}

	if err := d.engine.Leave(ctx, c.conv); err != nil {
		return err
	}
	if !user.DataProcessingConsent {
		return d.messenger.SendPrompt(ctx, c.chat, domain.Prompt{
			Template: "user_agreement_input_handler_prompt",
			Keyboard: domain.Keyboard{{{Label: "agree", Payload: ActionAgree}}},
		})
	}
	if err := d.notice(ctx, c, "data_sync_completed"); err != nil {
		return err
	}
	return d.showMenu(ctx, c)
}

func (d *Dispatcher) agree(ctx context.Context, c call) error {
	user, err := d.user(ctx, c)
	if err != nil || user == nil {
		return err
	}
	if !user.DataProcessingConsent {
		user.DataProcessingConsent = true
		if err := d.users.Save(ctx, user); err != nil {
			return err
		}
	}
	return d.showMenu(ctx, c)
}

// user loads the sender, telling them to /start when they are unknown.
func (d *Dispatcher) user(ctx context.Context, c call) (*storage.User, error) {
	user, err := d.users.Get(ctx, c.ev.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, d.notice(ctx, c, "user_data_validation_error")
	}
	return user, nil
}

// Menu lists what the user may open. Users with an incomplete profile are
// sent to the profile first.
func Menu(user *storage.User) domain.Prompt {
	button := func(e domain.EntryPoint, label string) domain.Button {
		return domain.Button{Label: label, Payload: e.Token()}
	}
	if !user.ProfileComplete() {
		return domain.Prompt{
			Template: "profile_action_required_warning",
			Keyboard: domain.Keyboard{{button(domain.EntryProfile, "login")}},
		}
	}

	args := []string{""}
	if user.FirstName != "" {
		args[0] = ", " + user.FirstName
	}
	if user.Role == storage.RoleManagingAgent {
		return domain.Prompt{
			Template: "ma_greeting",
			Args:     args,
			Keyboard: domain.Keyboard{
				{button(domain.EntryService, "service")},
				{button(domain.EntryProfile, "profile")},
			},
		}
	}
	return domain.Prompt{
		Template: "default_greeting",
		Args:     args,
		Keyboard: domain.Keyboard{
			{button(domain.EntryService, "service"), button(domain.EntryPoll, "poll")},
			{button(domain.EntryFeedback, "feedback"), button(domain.EntryProfile, "profile")},
		},
	}
}

// Allowed reports whether the user may open the flow.
func Allowed(user *storage.User, entry domain.EntryPoint) bool {
	if entry == domain.EntryProfile {
		return true
	}
	if !user.ProfileComplete() {
		return false
	}
	if user.Role == storage.RoleManagingAgent {
		return entry == domain.EntryService
	}
	return entry.HasDialog()
}

func (d *Dispatcher) showMenu(ctx context.Context, c call) error {
	if err := d.engine.Leave(ctx, c.conv); err != nil {
		return err
	}
	user, err := d.user(ctx, c)
	if err != nil || user == nil {
		return err
	}
	return d.messenger.SendPrompt(ctx, c.chat, Menu(user))
}

// openFlow starts a flow from its header screen. Pressing the entry button
// of the flow already running restarts it.
func (d *Dispatcher) openFlow(ctx context.Context, c call, entry domain.EntryPoint) error {
	user, err := d.user(ctx, c)
	if err != nil || user == nil {
		return err
	}
	if !Allowed(user, entry) {
		return d.showMenu(ctx, c)
	}

	active, ok, err := c.conv.Scope.ActiveDialog(ctx)
	if err != nil {
		return err
	}
	if ok && active == entry {
		out, err := d.engine.CancelToEntryPoint(ctx, c.conv)
		if err != nil {
			return err
		}
		return d.deliver(ctx, c, out)
	}

	if err := d.engine.StartFlow(ctx, c.conv, entry); err != nil {
		if errors.Is(err, domain.ErrUnknownDialog) {
			d.logger.Error("Flow has no dialog", "entry", entry)
			return d.showMenu(ctx, c)
		}
		return err
	}
	return d.header(ctx, c, entry)
}

// header renders the screen shown before the first step of a flow.
func (d *Dispatcher) header(ctx context.Context, c call, entry domain.EntryPoint) error {
	prompt := domain.Prompt{
		Template: entry.Token() + "_header",
		Keyboard: domain.Keyboard{
			{{Label: "start", Payload: ActionStart}},
			{{Label: domain.LabelBack, Payload: ActionToMenu}},
		},
	}

	switch entry {
	case domain.EntryProfile:
		user, err := d.users.Get(ctx, c.ev.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			user = &storage.User{}
		}
		prompt.Args = []string{
			orDash(user.FullName()),
			orDash(user.LegalEntity),
			d.locale.Text(user.Role.Key()),
		}
	case domain.EntryService:
		args, err := d.ticketArgs(ctx, c)
		if err != nil {
			return err
		}
		prompt.Args = args
	}
	return d.messenger.SendPrompt(ctx, c.chat, prompt)
}

// ticketArgs describes the open ticket draft, if any.
func (d *Dispatcher) ticketArgs(ctx context.Context, c call) ([]string, error) {
	args := []string{headerNoValue, headerNoValue, headerNoValue}
	ref, ok, err := c.conv.Scope.String(ctx, domain.KeyTicketRef)
	if err != nil || !ok {
		return args, err
	}
	ticket, err := d.tickets.Get(ctx, ref)
	if errors.Is(err, storage.ErrTicketNotFound) {
		return args, nil
	}
	if err != nil {
		return nil, err
	}
	args[0] = flows.ShortRef(ticket.Ref)
	if s := ticket.Summary(120); s != "" {
		args[1] = s
	}
	if ticket.Image != "" {
		args[2] = "✅"
	}
	return args, nil
}

func orDash(s string) string {
	if s == "" {
		return headerNoValue
	}
	return s
}
