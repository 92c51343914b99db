// Package notification delivers reminder messages to operators.
package notification

import "context"

// Notifier sends the two reminder shapes the scheduler produces. Failures are
// per recipient; the caller decides whether to continue the sweep.
type Notifier interface {
	SendInitialReminder(ctx context.Context, telegramID int64) error
	SendEscalation(ctx context.Context, telegramID int64, count int) error
}
