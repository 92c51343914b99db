package domain

import "github.com/shopspring/decimal"

// ExpenseDraft accumulates the fields of one expense across the conversation
// steps. A draft belongs to exactly one session and is discarded on completion
// or cancellation.
type ExpenseDraft struct {
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category,omitempty"`
	Purpose  string          `json:"purpose,omitempty"`
}

// ZeroPurpose is the purpose recorded for a zero-amount "no expenses" report.
const ZeroPurpose = "Нет расходов"

// Fixed expense categories, selectable by callback token.
var categoriesByToken = map[string]string{
	"category_1": "Личные затраты",
	"category_2": "Жылдызбек ава",
	"category_3": "Инвестиция",
	"category_4": "Услуга",
	"category_5": "Другое",
}

// CategoryTokens lists the selectable tokens in keyboard order.
var CategoryTokens = []string{"category_1", "category_2", "category_3", "category_4", "category_5"}

// CategoryByToken resolves a callback token to a category name.
func CategoryByToken(token string) (string, bool) {
	name, ok := categoriesByToken[token]
	return name, ok
}
