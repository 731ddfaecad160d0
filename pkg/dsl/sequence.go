package dsl

import "github.com/aretw0/arbor/pkg/domain"

// SequenceBuilder appends items to one sequence.
type SequenceBuilder struct {
	seq     *domain.Sequence
	builder *Builder
}

// Select appends a question answered by pressing one of opts.
func (s *SequenceBuilder) Select(text string, opts ...*OptionBuilder) *SequenceBuilder {
	s.builder.addItem(s.seq, text, domain.KindSelect, opts)
	return s
}

// Text appends a free-text question.
func (s *SequenceBuilder) Text(text string) *SequenceBuilder {
	s.builder.addItem(s.seq, text, domain.KindTextInput, nil)
	return s
}

// Image appends a photo request.
func (s *SequenceBuilder) Image(text string) *SequenceBuilder {
	s.builder.addItem(s.seq, text, domain.KindImageUpload, nil)
	return s
}

// Then continues into another sequence after the last item.
func (s *SequenceBuilder) Then(next int) *SequenceBuilder {
	s.seq.NextSequenceID = &next
	return s
}

// OptionBuilder configures one answer button.
type OptionBuilder struct {
	option domain.Option
}

// Option starts a button labelled by the text key.
func Option(text string) *OptionBuilder {
	return &OptionBuilder{option: domain.Option{Text: text}}
}

// To branches into a sequence when the option is picked.
func (o *OptionBuilder) To(sequenceID int) *OptionBuilder {
	o.option.SequenceID = &sequenceID
	return o
}

// Row places the button on a keyboard row.
func (o *OptionBuilder) Row(row int) *OptionBuilder {
	o.option.Row = row
	return o
}
