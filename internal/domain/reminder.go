package domain

import "time"

// DailyReminder tracks whether a user has reported expenses for a calendar day.
// ReminderCount holds the number of escalations already sent for the day.
type DailyReminder struct {
	ID            int64
	UserID        int64
	ReminderDate  time.Time
	IsCompleted   bool
	ReminderCount int
	CreatedAt     time.Time
}

// PendingReminder is an incomplete reminder joined with its user, as consumed by
// the hourly escalation sweep.
type PendingReminder struct {
	ID            int64
	UserID        int64
	TelegramID    int64
	FullName      string
	ReminderDate  time.Time
	ReminderCount int
}

// Day truncates t to its calendar day in t's location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
