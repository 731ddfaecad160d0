package domain

import (
	"context"
	"time"
)

// AnswerEvent is passed to the flow handler every time a step is answered.
type AnswerEvent struct {
	ConversationID string
	ChatID         int64
	UserID         int64
	Entry          EntryPoint
	Dialog         *Dialog
	SequenceID     int
	ItemID         int
	// OptionID is set when the answer came from a button.
	OptionID *int
	Answer   string
	// Completed is the completion flag: true when this answer ends the dialog.
	Completed bool
}

// RewindEvent tells a flow handler that answers it already received are no
// longer on the user's path.
type RewindEvent struct {
	ConversationID string
	ChatID         int64
	UserID         int64
	Entry          EntryPoint
	Dialog         *Dialog
	// Position is where the cursor went back to. The answer given there and
	// every answer after it are void.
	Position   Position
	SequenceID int
	ItemID     int
	// Restart voids every answer of the pass.
	Restart bool
}

// SignalKind is the advisory result of a flow handler.
type SignalKind int

const (
	// SignalContinue lets the engine proceed.
	SignalContinue SignalKind = iota
	// SignalRetry rejects the answer; the engine redraws the answered step.
	SignalRetry
	// SignalMenu asks the host to leave the flow for the top-level menu.
	SignalMenu
)

func (k SignalKind) String() string {
	switch k {
	case SignalRetry:
		return "retry"
	case SignalMenu:
		return "menu"
	default:
		return "continue"
	}
}

// Signal is returned by flow handlers.
type Signal struct {
	Kind SignalKind
}

// Continue is the zero signal.
var Continue = Signal{Kind: SignalContinue}

// EventType defines the category of an engine event.
type EventType string

const (
	EventStepRendered EventType = "step_rendered"
	EventAnswered     EventType = "answered"
	EventCompleted    EventType = "completed"
	EventBack         EventType = "back"
)

// StepEvent describes one engine transition for observability.
type StepEvent struct {
	Timestamp      time.Time  `json:"timestamp"`
	Type           EventType  `json:"type"`
	ConversationID string     `json:"conversation_id"`
	Entry          EntryPoint `json:"entry"`
	Position       Position   `json:"position"`
	Kind           ItemKind   `json:"kind"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStepRendered func(context.Context, *StepEvent)
	OnAnswered     func(context.Context, *StepEvent)
	OnCompleted    func(context.Context, *StepEvent)
	OnBack         func(context.Context, *StepEvent)
}
