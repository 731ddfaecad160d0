package domain

// Session keys owned by the engine. All of them are scoped to one conversation.
const (
	// KeyActiveDialog holds the entry point token of the running dialog.
	KeyActiveDialog = "active_dialog"
	// KeyPosition holds the active Position.
	KeyPosition = "position"
	// KeyTrace holds the navigation trace ([]string).
	KeyTrace = "trace"
	// KeyPendingAnswer is the one-slot buffer filled by text and image input.
	KeyPendingAnswer = "pending_answer"
)

// Session keys owned by the host application.
const (
	KeyTicketRef   = "ticket_ref"
	KeyLastMessage = "last_message_id"
)

// ParentMarker is stored at trace index 1 while a dialog renders.
// It names the route that redraws the current step.
const ParentMarker = ActionItem

// AwaitState is the engine state derived from the item under the active position.
type AwaitState int

const (
	AwaitTerminal AwaitState = iota
	AwaitSelection
	AwaitText
	AwaitImage
)

func (s AwaitState) String() string {
	switch s {
	case AwaitSelection:
		return "awaiting_selection"
	case AwaitText:
		return "awaiting_text"
	case AwaitImage:
		return "awaiting_image"
	default:
		return "terminal"
	}
}

// AwaitStateFor maps an item kind to the input the engine waits for.
func AwaitStateFor(k ItemKind) AwaitState {
	switch k {
	case KindSelect:
		return AwaitSelection
	case KindTextInput:
		return AwaitText
	case KindImageUpload:
		return AwaitImage
	default:
		return AwaitTerminal
	}
}
