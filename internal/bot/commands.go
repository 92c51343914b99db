package bot

// Command constants for Telegram bot commands.
const (
	CommandStart  = "/start"
	CommandAuth   = "/auth"
	CommandStatus = "/status"
	CommandCancel = "/cancel"
)

// Callback prefix constants for inline button interactions. Category tokens
// share the "category_" prefix.
const (
	CallbackCategoryPrefix = "category_"
	CallbackConfirmPrefix  = "confirm_"
	CallbackExpenseStart   = "expense_start"
	CallbackMainMenu       = "main_menu"
	CallbackStatus         = "status"
)
