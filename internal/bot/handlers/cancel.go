package handlers

import (
	"context"
	"log/slog"

	tele "gopkg.in/telebot.v3"

	"github.com/kutkeldi-dev/telegram-financial-bot/internal/conversation"
)

// NewCancelHandler handles /cancel and the confirmation "Отмена" button.
func NewCancelHandler(flow *conversation.Flow, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c tele.Context) error {
		u, ok := CurrentUser(c)
		if !ok {
			return nil
		}

		reply, err := flow.Cancel(context.Background(), u)

		return renderResult(c, reply, err)
	}
}
