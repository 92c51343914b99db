package conversation

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kutkeldi-dev/telegram-financial-bot/internal/domain"
)

const (
	txtAskAmount = "💰 <b>Добавление расхода</b>\n\n" +
		"Введите сумму расхода за %s:\n\n" +
		"💡 Если расходов сегодня не было, введите <b>0</b>"

	txtChooseCategory = "💵 Сумма: <b>%s сом</b>\n\n📁 Выберите категорию расхода:"

	txtAskPurpose = "💵 Сумма: <b>%s сом</b>\n📁 Категория: <b>%s</b>\n\n" +
		"✍️ Введите цель расхода (на что потратили):"

	txtConfirm = "📋 <b>Проверьте данные расхода:</b>\n\n" +
		"💵 Сумма: <b>%s сом</b>\n" +
		"📁 Категория: <b>%s</b>\n" +
		"🎯 Цель: <b>%s</b>\n" +
		"📅 Дата: <b>%s</b>\n\n" +
		"Всё верно?"

	txtSaved = "✅ <b>Расход сохранён!</b>\n\n" +
		"💵 Сумма: <b>%s сом</b>\n" +
		"📁 Категория: <b>%s</b>\n" +
		"🎯 Цель: <b>%s</b>"

	txtZeroSaved = "✅ <b>Отчёт сохранён!</b>\n\n" +
		"Вы отметили, что за %s расходов не было. Хорошего вечера! 🌙"

	txtCancelled = "❌ Добавление расхода отменено."

	txtIdleHint = "Чтобы добавить расход, нажмите «💰 Расход» или отправьте /start."

	txtErrAmountFormat = "❌ Неверный формат суммы.\n\n" +
		"Введите число, например: <b>1500</b> или <b>1500.50</b>"

	txtErrAmountNegative = "❌ Сумма не может быть отрицательной.\n\nВведите корректную сумму:"

	txtErrAmountTooLarge = "❌ Сумма слишком большая (максимум 10,000,000 сом).\n\nВведите корректную сумму:"

	txtErrAmountPrecision = "❌ Слишком много знаков после запятой (максимум 2).\n\nВведите корректную сумму:"

	txtErrPurposeEmpty = "❌ Цель расхода не может быть пустой.\n\nОпишите, на что потратили деньги:"

	txtErrPurposeDigits = "❌ Вы ввели только цифры!\n\n" +
		"Опишите словами, на что потратили деньги.\n" +
		"Например: <i>продукты</i>, <i>бензин</i>, <i>обед в кафе</i>"

	txtErrPurposeTooLong = "❌ Описание слишком длинное (максимум 500 символов).\n\nСократите описание:"

	txtErrSession = "⚠️ Сессия не найдена. Начните заново: нажмите «💰 Расход» или отправьте /start."
)

// FormatAmount renders a decimal with two fraction digits and thin grouping
// of the integer part: 1234567.5 -> "1 234 567.50".
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	intPart, fracPart, _ := strings.Cut(s, ".")
	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

// FormatDay renders a calendar day the way user-facing messages expect it.
func FormatDay(t time.Time) string {
	return t.Format("02.01.2006")
}

func confirmText(draft *domain.ExpenseDraft, day time.Time) string {
	return fmt.Sprintf(txtConfirm, FormatAmount(draft.Amount), draft.Category, draft.Purpose, FormatDay(day))
}
