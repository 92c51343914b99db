package handlers

import (
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v3"

	"github.com/kutkeldi-dev/telegram-financial-bot/internal/bot/keyboard"
)

const (
	txtStartAuthorized = "👋 С возвращением, %s!\n\n" +
		"💰 «Расход» — внести расход за сегодня\n" +
		"📊 «Статус» — отчёт за сегодня"

	txtStartUnauthorized = "👋 Это бот учёта ежедневных расходов.\n\n" +
		"Для начала работы авторизуйтесь:\n\n<code>/auth ВАШ_КОД</code>"
)

// NewStartHandler handles /start and the main-menu callback.
func NewStartHandler(log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c tele.Context) error {
		u, ok := CurrentUser(c)
		if !ok {
			return c.Send(txtStartUnauthorized, tele.ModeHTML)
		}

		return c.Send(fmt.Sprintf(txtStartAuthorized, u.FullName), tele.ModeHTML, keyboard.MainMenu())
	}
}
