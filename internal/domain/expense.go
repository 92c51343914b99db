package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a single committed expense record. Rows are immutable after insert.
type Expense struct {
	ID          int64
	UserID      int64
	CategoryID  *int64
	Amount      decimal.Decimal
	Purpose     string
	ExpenseDate time.Time
	CreatedAt   time.Time
}

// ExpenseCategory is a named expense category. Categories are created lazily on
// first use of a new name; the name is unique.
type ExpenseCategory struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
