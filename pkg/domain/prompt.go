package domain

// Button is one keyboard control: a label (template key) and its callback payload.
type Button struct {
	Label   string
	Payload string
}

// Keyboard is an ordered set of button rows.
type Keyboard [][]Button

// Row builds a keyboard row.
func Row(buttons ...Button) []Button {
	return buttons
}

// Prompt describes one outbound render.
type Prompt struct {
	// Template is the localisation key of the message body.
	Template string
	// Args fill the template placeholders in order.
	Args []string
	// ArgKeys marks Args as template keys to be localised themselves.
	ArgKeys  bool
	Keyboard Keyboard

	// Standalone prompts are always sent as a new message instead of replacing
	// the previous bot message.
	Standalone bool
}

// Templates rendered by the engine.
const (
	TemplateSelectPrompt = "multi_dialog_item_select_handler_prompt"
	TemplateTextPrompt   = "multi_dialog_item_text_handler_prompt"
	TemplateImagePrompt  = "multi_dialog_item_image_handler_prompt"
	TemplateNoData       = "multi_dialog_data_error"
	TemplateNoActiveFlow = "no_active_flow"
)

// Button labels rendered by the engine.
const (
	LabelBack   = "back"
	LabelCancel = "cancel"
)
