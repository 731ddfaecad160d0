package runtime

import (
	"context"
	"sort"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/session"
)

// render builds the prompt for the item under the active position.
// It never advances the cursor nor touches the trace.
func (e *Engine) render(ctx context.Context, s *session.Scope, active activeFlow) (domain.Outcome, error) {
	out := domain.Outcome{
		Kind:     domain.OutcomeRendered,
		Entry:    active.entry,
		Signal:   domain.Continue,
		Position: active.pos,
	}

	it, ok := active.dialog.ItemAt(active.pos)
	if !ok {
		e.logger.Warn("Position outside dialog data",
			"conversation_id", s.ConversationID(),
			"entry", active.entry,
			"dialog_id", active.dialog.ID,
			"sequence_id", active.pos.SequenceID,
			"item_index", active.pos.ItemIndex,
		)
		out.Prompt = &domain.Prompt{
			Template: domain.TemplateNoData,
			Keyboard: domain.Keyboard{exitRow(active)},
		}
		return out, nil
	}

	out.Prompt = renderItem(active, it)
	e.emit(ctx, e.hooks.OnStepRendered, domain.EventStepRendered, s, active.entry, active.pos, it.Kind)
	return out, nil
}

func renderItem(active activeFlow, it *domain.Item) *domain.Prompt {
	p := &domain.Prompt{Args: []string{it.Text}, ArgKeys: true}
	switch it.Kind {
	case domain.KindSelect:
		p.Template = domain.TemplateSelectPrompt
		p.Keyboard = optionRows(active.dialog.ItemOptions(it))
	case domain.KindImageUpload:
		p.Template = domain.TemplateImagePrompt
	default:
		p.Template = domain.TemplateTextPrompt
	}
	p.Keyboard = append(p.Keyboard, exitRow(active))
	return p
}

// optionRows groups option buttons by display row, rows in ascending order
// and options in item order within a row.
func optionRows(opts []*domain.Option) domain.Keyboard {
	byRow := make(map[int][]domain.Button)
	var rows []int
	for _, o := range opts {
		if _, seen := byRow[o.Row]; !seen {
			rows = append(rows, o.Row)
		}
		byRow[o.Row] = append(byRow[o.Row], domain.Button{
			Label:   o.Text,
			Payload: domain.SelectionPayload(o.ID),
		})
	}
	sort.Ints(rows)

	kb := make(domain.Keyboard, 0, len(rows)+1)
	for _, r := range rows {
		kb = append(kb, byRow[r])
	}
	return kb
}

// exitRow offers back navigation when the dialog traces, else a cancel
// control that returns to the entry point.
func exitRow(active activeFlow) []domain.Button {
	if active.dialog.Trace {
		return domain.Row(domain.Button{Label: domain.LabelBack, Payload: domain.ActionBack})
	}
	return domain.Row(domain.Button{Label: domain.LabelCancel, Payload: active.entry.Token()})
}
