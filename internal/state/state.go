package state

import (
	"time"

	"github.com/kutkeldi-dev/telegram-financial-bot/internal/domain"
)

// State represents a conversation state in the expense-entry flow.
type State string

const (
	// StateIdle indicates that the bot is waiting for the next command.
	StateIdle State = "idle"
	// StateAwaitingAmount indicates that the user is entering the expense amount.
	StateAwaitingAmount State = "awaiting_amount"
	// StateAwaitingCategory indicates that the user is choosing a category.
	StateAwaitingCategory State = "awaiting_category"
	// StateAwaitingPurpose indicates that the user is describing the expense.
	StateAwaitingPurpose State = "awaiting_purpose"
	// StateAwaitingConfirmation indicates that the user is confirming the draft.
	StateAwaitingConfirmation State = "awaiting_confirmation"
	// StateError indicates an unrecoverable session state requiring a reset.
	StateError State = "error"
)

// UserState captures the current conversation state and draft for one user.
// The draft belongs exclusively to this session.
type UserState struct {
	UserID       int64                `json:"user_id"`
	CurrentState State                `json:"current_state"`
	Draft        *domain.ExpenseDraft `json:"draft,omitempty"`
	UpdatedAt    time.Time            `json:"updated_at"`
}
