package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestExpenseRepository_Create_WithCategory(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewExpenseRepository(db, testLogger())

	now := time.Date(2024, 3, 15, 21, 10, 0, 0, time.UTC)
	amount := decimal.RequireFromString("1500")

	mock.ExpectQuery("INSERT INTO expense_categories").
		WithArgs("Инвестиция").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(4)))
	mock.ExpectQuery("INSERT INTO expenses").
		WithArgs(int64(7), int64(4), amount, "Аренда офиса", now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(10), now))

	expense, err := repo.Create(context.Background(), 7, amount, "Аренда офиса", "Инвестиция", now)
	require.NoError(t, err)
	require.Equal(t, int64(10), expense.ID)
	require.NotNil(t, expense.CategoryID)
	require.Equal(t, int64(4), *expense.CategoryID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseRepository_Create_NoCategory(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewExpenseRepository(db, testLogger())

	now := time.Date(2024, 3, 15, 21, 10, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO expenses").
		WithArgs(int64(7), nil, decimal.Zero, "Нет расходов", now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), now))

	expense, err := repo.Create(context.Background(), 7, decimal.Zero, "Нет расходов", "", now)
	require.NoError(t, err)
	require.Nil(t, expense.CategoryID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseRepository_TotalForUserDay(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewExpenseRepository(db, testLogger())

	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(int64(7), day, day.AddDate(0, 0, 1)).
		WillReturnRows(sqlmock.NewRows([]string{"sum", "count"}).AddRow("2350.50", 3))

	total, count, err := repo.TotalForUserDay(context.Background(), 7, day.Add(14*time.Hour))
	require.NoError(t, err)
	require.True(t, total.Equal(decimal.RequireFromString("2350.50")))
	require.Equal(t, 3, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
