package domain

import "sort"

// ItemKind defines how an item collects its answer.
type ItemKind int

const (
	// KindSelect renders the item options as buttons.
	KindSelect ItemKind = 0
	// KindTextInput waits for a free-text reply.
	KindTextInput ItemKind = 1
	// KindImageUpload waits for an image reply.
	KindImageUpload ItemKind = 2
)

func (k ItemKind) String() string {
	switch k {
	case KindSelect:
		return "select"
	case KindTextInput:
		return "text"
	case KindImageUpload:
		return "image"
	default:
		return "unknown"
	}
}

// Dialog is a complete conversational flow.
// It is loaded once and shared read-only between every conversation.
type Dialog struct {
	ID        int
	Sequences map[int]*Sequence
	Items     map[int]*Item
	Options   map[int]*Option

	// Trace enables back-navigation through the visited steps.
	// When false, prompts offer a flat cancel-to-entry-point control instead.
	Trace bool
}

// Sequence is an ordered run of items with an optional continuation.
type Sequence struct {
	ID             int   `json:"id" yaml:"id"`
	ItemIDs        []int `json:"items_ids" yaml:"items_ids"`
	NextSequenceID *int  `json:"next_sequence_id" yaml:"next_sequence_id"`
}

// Item is a single prompt. Text is a template key resolved by the host.
type Item struct {
	ID        int      `json:"id" yaml:"id"`
	Text      string   `json:"text" yaml:"text"`
	Kind      ItemKind `json:"type" yaml:"type"`
	OptionIDs []int    `json:"options_ids" yaml:"options_ids"`
}

// Option is a selectable answer of a KindSelect item.
// A non-nil SequenceID branches to that sequence; Row only groups buttons.
type Option struct {
	ID         int    `json:"id" yaml:"id"`
	Text       string `json:"text" yaml:"text"`
	SequenceID *int   `json:"sequence_id" yaml:"sequence_id"`
	Row        int    `json:"row" yaml:"row"`
}

// Position is the engine cursor inside a Dialog.
type Position struct {
	SequenceID int `json:"sequence_id" mapstructure:"sequence_id"`
	ItemIndex  int `json:"item_index" mapstructure:"item_index"`
}

// Sequence returns the sequence with the given id.
func (d *Dialog) Sequence(id int) (*Sequence, bool) {
	s, ok := d.Sequences[id]
	return s, ok
}

// Option returns the option with the given id.
func (d *Dialog) Option(id int) (*Option, bool) {
	o, ok := d.Options[id]
	return o, ok
}

// SequenceItems resolves the items of a sequence in traversal order.
// Ids that do not resolve are skipped.
func (d *Dialog) SequenceItems(s *Sequence) []*Item {
	items := make([]*Item, 0, len(s.ItemIDs))
	for _, id := range s.ItemIDs {
		if it, ok := d.Items[id]; ok {
			items = append(items, it)
		}
	}
	return items
}

// ItemAt resolves the item under a position.
// It reports false when the sequence is unknown or the index is out of range.
func (d *Dialog) ItemAt(p Position) (*Item, bool) {
	s, ok := d.Sequences[p.SequenceID]
	if !ok {
		return nil, false
	}
	items := d.SequenceItems(s)
	if p.ItemIndex < 0 || p.ItemIndex >= len(items) {
		return nil, false
	}
	return items[p.ItemIndex], true
}

// ItemOptions resolves the options of an item, skipping unknown ids.
func (d *Dialog) ItemOptions(it *Item) []*Option {
	opts := make([]*Option, 0, len(it.OptionIDs))
	for _, id := range it.OptionIDs {
		if o, ok := d.Options[id]; ok {
			opts = append(opts, o)
		}
	}
	return opts
}

// SequenceIDs returns every sequence id in ascending order.
func (d *Dialog) SequenceIDs() []int {
	ids := make([]int, 0, len(d.Sequences))
	for id := range d.Sequences {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// StepCount is the total number of items over all sequences.
func (d *Dialog) StepCount() int {
	n := 0
	for _, s := range d.Sequences {
		n += len(s.ItemIDs)
	}
	return n
}
