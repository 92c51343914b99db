package domain

import "time"

// User represents an operator account stored in the database. Accounts are
// created by the authorization flow; the rest of the application only reads them.
type User struct {
	ID           int64
	TelegramID   int64
	Username     string
	FullName     string
	IsAuthorized bool
	AuthCode     string
	CreatedAt    time.Time
}
