package handlers

import (
	"context"
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v3"

	"github.com/kutkeldi-dev/telegram-financial-bot/internal/bot/keyboard"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/user"
)

const (
	txtAuthUsage = "🔑 Для авторизации отправьте:\n\n<code>/auth ВАШ_КОД</code>"

	txtAuthWelcome = "✅ <b>Авторизация успешна!</b>\n\n" +
		"Добро пожаловать, %s!\n\n" +
		"Каждый вечер я буду напоминать вам внести расходы за день."
)

// NewAuthHandler handles /auth CODE.
func NewAuthHandler(users *user.Service, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c tele.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		args := c.Args()
		if len(args) != 1 {
			return c.Send(txtAuthUsage, tele.ModeHTML)
		}

		u, err := users.Authorize(context.Background(), sender.ID, sender.Username, args[0])
		if err != nil {
			return err
		}
		SetCurrentUser(c, u)

		return c.Send(fmt.Sprintf(txtAuthWelcome, u.FullName), tele.ModeHTML, keyboard.MainMenu())
	}
}
