package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/kutkeldi-dev/telegram-financial-bot/internal/bot/keyboard"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/conversation"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/domain"
	apperrors "github.com/kutkeldi-dev/telegram-financial-bot/internal/errors"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/repository"
)

const (
	txtStatusDone = "📊 <b>Статус за %s</b>\n\n" +
		"✅ Отчёт сдан\n" +
		"💵 Расходов: %d на сумму <b>%s сом</b>"

	txtStatusPending = "📊 <b>Статус за %s</b>\n\n" +
		"⏳ Отчёт ещё не сдан.\n" +
		"Нажмите «💰 Расход», чтобы внести расходы."
)

// NewStatusHandler reports whether today's expenses are filed and their total.
func NewStatusHandler(expenses repository.ExpenseRepository, loc *time.Location, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}

	return func(c tele.Context) error {
		u, ok := CurrentUser(c)
		if !ok {
			return nil
		}

		day := domain.Day(time.Now().In(loc))

		total, count, err := expenses.TotalForUserDay(context.Background(), u.ID, day)
		if err != nil {
			return apperrors.NewDatabaseError(err)
		}

		if count == 0 {
			return c.Send(fmt.Sprintf(txtStatusPending, conversation.FormatDay(day)), tele.ModeHTML, keyboard.MainMenu())
		}

		return c.Send(
			fmt.Sprintf(txtStatusDone, conversation.FormatDay(day), count, conversation.FormatAmount(total)),
			tele.ModeHTML,
			keyboard.MainMenu(),
		)
	}
}
