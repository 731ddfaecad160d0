/*
Package dsl builds dialogs in Go instead of JSON or YAML files.

Item and option ids are assigned in declaration order, starting at 1, so a
dialog written with the builder matches the same dialog written by hand.

	b := dsl.New(4).Trace()
	b.Sequence(0).Select("feedback_kind",
		dsl.Option("feedback_option_suggestion").To(1),
		dsl.Option("feedback_option_complaint").To(2),
	)
	b.Sequence(1).Text("feedback_suggestion")
	b.Sequence(2).Text("feedback_complaint")

	d, err := b.Build()
*/
package dsl
