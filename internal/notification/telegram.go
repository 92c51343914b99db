package notification

import (
	"context"
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v3"

	"github.com/kutkeldi-dev/telegram-financial-bot/internal/bot/keyboard"
	apperrors "github.com/kutkeldi-dev/telegram-financial-bot/internal/errors"
)

const (
	txtInitialReminder = "🕐 <b>Ежедневное напоминание</b>\n\n" +
		"Не забудьте внести расходы за сегодня!\n\n" +
		"💡 Если расходов не было, введите <b>0</b>."

	txtEscalation = "⏰ <b>Напоминание #%d</b>\n\n" +
		"Вы ещё не внесли расходы за сегодня.\n" +
		"Пожалуйста, заполните отчёт!"
)

// TelegramNotifier sends reminders through the bot's own sender. Each message
// carries a button that opens the expense flow directly.
type TelegramNotifier struct {
	bot *tele.Bot
	log *slog.Logger
}

func NewTelegramNotifier(bot *tele.Bot, log *slog.Logger) *TelegramNotifier {
	if log == nil {
		log = slog.Default()
	}

	return &TelegramNotifier{bot: bot, log: log}
}

func (n *TelegramNotifier) SendInitialReminder(ctx context.Context, telegramID int64) error {
	return n.send(ctx, telegramID, txtInitialReminder)
}

func (n *TelegramNotifier) SendEscalation(ctx context.Context, telegramID int64, count int) error {
	return n.send(ctx, telegramID, fmt.Sprintf(txtEscalation, count))
}

func (n *TelegramNotifier) send(ctx context.Context, telegramID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewNotificationError(telegramID, err)
	}

	_, err := n.bot.Send(&tele.User{ID: telegramID}, text, keyboard.Reminder(), tele.ModeHTML)
	if err != nil {
		return apperrors.NewNotificationError(telegramID, err)
	}

	n.log.Debug("reminder delivered", "telegram_id", telegramID)

	return nil
}
