package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kutkeldi-dev/telegram-financial-bot/internal/domain"
)

// ExpenseRepository defines persistence operations for committed expenses.
type ExpenseRepository interface {
	// Create inserts one expense. categoryName, when non-empty, is resolved to
	// an existing category or lazily created.
	Create(ctx context.Context, userID int64, amount decimal.Decimal, purpose, categoryName string, expenseDate time.Time) (*domain.Expense, error)
	// TotalForUserDay returns the sum and count of a user's expenses for a day.
	TotalForUserDay(ctx context.Context, userID int64, day time.Time) (decimal.Decimal, int, error)
}

type expenseRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewExpenseRepository creates a new SQL-backed expense repository.
func NewExpenseRepository(db *sql.DB, log *slog.Logger) ExpenseRepository {
	return &expenseRepository{
		db:  db,
		log: log,
	}
}

// Create inserts the expense row, creating the category on first use.
func (r *expenseRepository) Create(ctx context.Context, userID int64, amount decimal.Decimal, purpose, categoryName string, expenseDate time.Time) (*domain.Expense, error) {
	expense := &domain.Expense{
		UserID:      userID,
		Amount:      amount,
		Purpose:     purpose,
		ExpenseDate: expenseDate,
	}

	if categoryName != "" {
		categoryID, err := r.getOrCreateCategory(ctx, categoryName)
		if err != nil {
			return nil, err
		}
		expense.CategoryID = &categoryID
	}

	const query = `
		INSERT INTO expenses (user_id, category_id, amount, purpose, expense_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		expense.UserID,
		expense.CategoryID,
		expense.Amount,
		expense.Purpose,
		expense.ExpenseDate,
	).Scan(&expense.ID, &expense.CreatedAt); err != nil {
		if r.log != nil {
			r.log.Error("failed to insert expense", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return nil, fmt.Errorf("insert expense: %w", err)
	}

	return expense, nil
}

// TotalForUserDay sums the user's expenses whose expense_date falls on day.
func (r *expenseRepository) TotalForUserDay(ctx context.Context, userID int64, day time.Time) (decimal.Decimal, int, error) {
	const query = `
		SELECT COALESCE(SUM(amount), 0), COUNT(*)
		FROM expenses
		WHERE user_id = $1 AND expense_date >= $2 AND expense_date < $3
	`

	start := domain.Day(day)
	end := start.AddDate(0, 0, 1)

	var total decimal.Decimal
	var count int
	if err := r.db.QueryRowContext(ctx, query, userID, start, end).Scan(&total, &count); err != nil {
		return decimal.Zero, 0, fmt.Errorf("sum expenses for day: %w", err)
	}

	return total, count, nil
}

// getOrCreateCategory resolves a category name to its ID, inserting the row on
// first use. The upsert keeps the name-uniqueness invariant under concurrency.
func (r *expenseRepository) getOrCreateCategory(ctx context.Context, name string) (int64, error) {
	const query = `
		INSERT INTO expense_categories (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&id); err != nil {
		if r.log != nil {
			r.log.Error("failed to resolve category", slog.String("name", name), slog.Any("error", err))
		}
		return 0, fmt.Errorf("get or create category %q: %w", name, err)
	}

	return id, nil
}
