// Package keyboard builds the reply and inline keyboards the bot shows.
package keyboard

import (
	tele "gopkg.in/telebot.v3"

	"github.com/kutkeldi-dev/telegram-financial-bot/internal/domain"
)

// Button labels and callback uniques shared between the transport and the
// reminder notifier.
const (
	BtnExpense  = "💰 Расход"
	BtnStatus   = "📊 Статус"
	BtnMainMenu = "🏠 Главное меню"
	BtnAddMore  = "💰 Добавить еще расход"

	UniqueExpenseStart = "expense_start"
	UniqueConfirmYes   = "confirm_yes"
	UniqueConfirmNo    = "confirm_no"
	UniqueMainMenu     = "main_menu"
	UniqueStatus       = "status"
)

var categoryEmoji = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣"}

// MainMenu is the persistent reply keyboard.
func MainMenu() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}
	menu.Reply(
		menu.Row(menu.Text(BtnExpense), menu.Text(BtnStatus)),
	)

	return menu
}

// Categories shows the five fixed expense categories, one per row.
func Categories() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}

	rows := make([]tele.Row, 0, len(domain.CategoryTokens))
	for i, token := range domain.CategoryTokens {
		name, _ := domain.CategoryByToken(token)
		rows = append(rows, markup.Row(markup.Data(categoryEmoji[i]+" "+name, token)))
	}
	markup.Inline(rows...)

	return markup
}

// Confirmation offers yes/no on the draft summary.
func Confirmation() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(
			markup.Data("✅ Да", UniqueConfirmYes),
			markup.Data("❌ Отмена", UniqueConfirmNo),
		),
	)

	return markup
}

// Completed follows a saved expense or zero report.
func Completed() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data(BtnAddMore, UniqueExpenseStart)),
		markup.Row(markup.Data(BtnMainMenu, UniqueMainMenu)),
	)

	return markup
}

// Reminder is attached to scheduler reminders so the operator can start an
// entry straight from the notification.
func Reminder() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("💰 Добавить расход", UniqueExpenseStart)),
	)

	return markup
}
