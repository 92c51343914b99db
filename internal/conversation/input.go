// Package conversation implements the multi-step expense-entry flow.
package conversation

// Input is a tagged union of the two update shapes the transport can deliver.
// Both reduce to the same internal commands; the tag decides which handler a
// state accepts.
type Input interface {
	isInput()
}

// TextInput is a plain chat message.
type TextInput struct {
	Text string
}

func (TextInput) isInput() {}

// CallbackInput is an inline-button press carrying its callback payload.
type CallbackInput struct {
	Data string
}

func (CallbackInput) isInput() {}

// Keyboard selects the reply markup the transport should attach. The flow
// stays transport-free; the bot layer maps these to Telegram keyboards.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardMainMenu
	KeyboardCategories
	KeyboardConfirmation
	KeyboardCompleted
)

// Reply is the flow's answer to one input: the text to show, the keyboard to
// attach, and whether this step committed an expense.
type Reply struct {
	Text      string
	Keyboard  Keyboard
	Completed bool
}
