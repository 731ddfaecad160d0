package domain

// OutcomeKind tells the host what an engine call ended with.
type OutcomeKind int

const (
	// OutcomeRendered means a step prompt is ready to send.
	OutcomeRendered OutcomeKind = iota
	// OutcomeCompleted means the last step was answered.
	OutcomeCompleted
	// OutcomeRestart means back or cancel reached the entry point;
	// the host redraws the flow's entry screen.
	OutcomeRestart
	// OutcomeEnd means there is no dialog to continue.
	OutcomeEnd
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeRendered:
		return "rendered"
	case OutcomeCompleted:
		return "completed"
	case OutcomeRestart:
		return "restart"
	default:
		return "end"
	}
}

// Outcome is the result of one engine call.
type Outcome struct {
	Kind  OutcomeKind
	Entry EntryPoint
	// Signal is what the flow handler returned, when one ran.
	Signal Signal
	// Position is the cursor after the call.
	Position Position
	// Prompt is nil when there is nothing to render.
	Prompt *Prompt
}
