package domain

import "fmt"

// EntrySequenceID is the sequence every dialog starts from.
const EntrySequenceID = 0

// Validate checks the referential invariants of a dialog.
// The engine assumes validated input at runtime and does not re-check.
func (d *Dialog) Validate() error {
	var errs []error
	add := func(path, format string, args ...any) {
		errs = append(errs, &ValidationError{Path: path, Reason: fmt.Sprintf(format, args...)})
	}

	if _, ok := d.Sequences[EntrySequenceID]; !ok {
		add("sequences", "entry sequence %d is missing", EntrySequenceID)
	}

	for _, id := range d.SequenceIDs() {
		s := d.Sequences[id]
		path := fmt.Sprintf("sequences[%d]", id)
		if len(s.ItemIDs) == 0 {
			add(path+".items_ids", "sequence has no items")
		}
		for _, itemID := range s.ItemIDs {
			if _, ok := d.Items[itemID]; !ok {
				add(path+".items_ids", "unknown item %d", itemID)
			}
		}
		if s.NextSequenceID != nil {
			if _, ok := d.Sequences[*s.NextSequenceID]; !ok {
				add(path+".next_sequence_id", "unknown sequence %d", *s.NextSequenceID)
			}
		}
	}

	for id, it := range d.Items {
		path := fmt.Sprintf("items[%d]", id)
		switch it.Kind {
		case KindSelect:
			if len(it.OptionIDs) == 0 {
				add(path+".options_ids", "select item has no options")
			}
		case KindTextInput, KindImageUpload:
		default:
			add(path+".type", "unknown item type %d", int(it.Kind))
		}
		for _, optID := range it.OptionIDs {
			if _, ok := d.Options[optID]; !ok {
				add(path+".options_ids", "unknown option %d", optID)
			}
		}
	}

	for id, o := range d.Options {
		if o.SequenceID == nil {
			continue
		}
		if _, ok := d.Sequences[*o.SequenceID]; !ok {
			add(fmt.Sprintf("options[%d].sequence_id", id), "unknown sequence %d", *o.SequenceID)
		}
	}

	if len(errs) > 0 {
		return &AggregateError{DialogID: d.ID, Errors: errs}
	}
	return nil
}
