package handlers

import (
	tele "gopkg.in/telebot.v3"

	"github.com/kutkeldi-dev/telegram-financial-bot/internal/domain"
)

// Handler processes bot commands and plain messages.
type Handler func(c tele.Context) error

// CallbackHandler processes inline callback events.
type CallbackHandler func(c tele.Context) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler

const currentUserKey = "current_user"

// SetCurrentUser stashes the resolved account on the update context.
func SetCurrentUser(c tele.Context, u *domain.User) {
	c.Set(currentUserKey, u)
}

// CurrentUser returns the account resolved by the auth middleware.
func CurrentUser(c tele.Context) (*domain.User, bool) {
	u, ok := c.Get(currentUserKey).(*domain.User)
	return u, ok && u != nil
}
