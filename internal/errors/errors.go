package errors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AppError carries an error code, an internal message, and the text shown to
// the operator in the chat.
type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// NewValidationError marks invalid conversation input. Recovered locally by
// re-prompting, never reported as a system failure.
func NewValidationError(msg string) *AppError {
	return &AppError{
		Code:        "E100",
		Message:     msg,
		UserMessage: msg,
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

// NewDatabaseError wraps a persistence failure. The triggering operation aborts;
// the draft or sweep continues afterwards.
func NewDatabaseError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        "E200",
		Message:     fmt.Sprintf("Database error: %s", underlyingMsg),
		UserMessage: "❌ Произошла ошибка при сохранении. Попробуйте позже.",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

// NewNotificationError wraps a reminder send failure. Isolated per recipient.
func NewNotificationError(telegramID int64, cause error) *AppError {
	return &AppError{
		Code:        "E300",
		Message:     fmt.Sprintf("Notification error: recipient %d", telegramID),
		UserMessage: "",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

// NewSyncError wraps a mirror-sink failure. Never rolls back the committed expense.
func NewSyncError(cause error) *AppError {
	return &AppError{
		Code:        "E400",
		Message:     fmt.Sprintf("Mirror sync error: %v", cause),
		UserMessage: "",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

// NewStateError marks an operation attempted in the wrong conversation state.
func NewStateError(msg string) *AppError {
	return &AppError{
		Code:        "E500",
		Message:     msg,
		UserMessage: "Операция невозможна в текущем состоянии. Введите /start",
		Severity:    SeverityMedium,
		Retryable:   false,
		cause:       nil,
	}
}
