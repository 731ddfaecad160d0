package dsl

import (
	"github.com/aretw0/arbor/pkg/domain"
)

// Builder manages the dialog construction.
type Builder struct {
	dialog     *domain.Dialog
	nextItem   int
	nextOption int
}

// New creates a builder for the dialog with the given id.
func New(id int) *Builder {
	return &Builder{
		dialog: &domain.Dialog{
			ID:        id,
			Sequences: make(map[int]*domain.Sequence),
			Items:     make(map[int]*domain.Item),
			Options:   make(map[int]*domain.Option),
		},
		nextItem:   1,
		nextOption: 1,
	}
}

// Trace enables back navigation.
func (b *Builder) Trace() *Builder {
	b.dialog.Trace = true
	return b
}

// Sequence returns the builder of a sequence, creating it on first use.
func (b *Builder) Sequence(id int) *SequenceBuilder {
	seq, ok := b.dialog.Sequences[id]
	if !ok {
		seq = &domain.Sequence{ID: id}
		b.dialog.Sequences[id] = seq
	}
	return &SequenceBuilder{seq: seq, builder: b}
}

// Build validates and returns the dialog.
func (b *Builder) Build() (*domain.Dialog, error) {
	if err := b.dialog.Validate(); err != nil {
		return nil, err
	}
	return b.dialog, nil
}

func (b *Builder) addItem(seq *domain.Sequence, text string, kind domain.ItemKind, opts []*OptionBuilder) {
	it := &domain.Item{ID: b.nextItem, Text: text, Kind: kind}
	b.nextItem++
	for _, o := range opts {
		opt := o.option
		opt.ID = b.nextOption
		b.nextOption++
		b.dialog.Options[opt.ID] = &opt
		it.OptionIDs = append(it.OptionIDs, opt.ID)
	}
	b.dialog.Items[it.ID] = it
	seq.ItemIDs = append(seq.ItemIDs, it.ID)
}
