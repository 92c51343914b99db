package expense

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kutkeldi-dev/telegram-financial-bot/internal/domain"
	apperrors "github.com/kutkeldi-dev/telegram-financial-bot/internal/errors"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/mirror"
)

type mockExpenseRepo struct {
	mock.Mock
}

func (m *mockExpenseRepo) Create(ctx context.Context, userID int64, amount decimal.Decimal, purpose, categoryName string, expenseDate time.Time) (*domain.Expense, error) {
	args := m.Called(ctx, userID, amount, purpose, categoryName, expenseDate)
	if exp, ok := args.Get(0).(*domain.Expense); ok {
		return exp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockExpenseRepo) TotalForUserDay(ctx context.Context, userID int64, day time.Time) (decimal.Decimal, int, error) {
	args := m.Called(ctx, userID, day)
	return args.Get(0).(decimal.Decimal), args.Int(1), args.Error(2)
}

type mockReminderRepo struct {
	mock.Mock
}

func (m *mockReminderRepo) CreateDaily(ctx context.Context, userID int64, day time.Time) (int64, error) {
	args := m.Called(ctx, userID, day)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReminderRepo) PendingForDay(ctx context.Context, day time.Time) ([]domain.PendingReminder, error) {
	args := m.Called(ctx, day)
	if pending, ok := args.Get(0).([]domain.PendingReminder); ok {
		return pending, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReminderRepo) MarkCompleted(ctx context.Context, reminderID int64) error {
	args := m.Called(ctx, reminderID)
	return args.Error(0)
}

func (m *mockReminderRepo) MarkCompletedForUserDay(ctx context.Context, userID int64, day time.Time) error {
	args := m.Called(ctx, userID, day)
	return args.Error(0)
}

func (m *mockReminderRepo) IncrementEscalation(ctx context.Context, reminderID int64) (int, error) {
	args := m.Called(ctx, reminderID)
	return args.Int(0), args.Error(1)
}

type recordingSink struct {
	records  []mirror.Record
	failures int
}

func (s *recordingSink) Append(_ context.Context, rec mirror.Record) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("sheets unavailable")
	}
	s.records = append(s.records, rec)
	return nil
}

func fixedNow() time.Time {
	return time.Date(2025, 3, 14, 20, 5, 0, 0, time.UTC)
}

func newTestService(expenses *mockExpenseRepo, reminders *mockReminderRepo, sink mirror.Sink) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(expenses, reminders, sink, log, time.UTC)
	svc.now = fixedNow
	return svc
}

func TestServiceCommit(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: 7, FullName: "Тест Оператор"}
	draft := &domain.ExpenseDraft{
		Amount:   decimal.NewFromInt(1500),
		Category: "Личные затраты",
		Purpose:  "продукты",
	}
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	expenses := &mockExpenseRepo{}
	reminders := &mockReminderRepo{}
	sink := &recordingSink{}

	expenses.On("Create", mock.Anything, user.ID, draft.Amount, draft.Purpose, draft.Category, day).
		Return(&domain.Expense{ID: 42, UserID: user.ID}, nil).Once()
	reminders.On("MarkCompletedForUserDay", mock.Anything, user.ID, day).Return(nil).Once()

	svc := newTestService(expenses, reminders, sink)
	require.NoError(t, svc.Commit(ctx, user, draft))

	expenses.AssertExpectations(t)
	reminders.AssertExpectations(t)
	require.Len(t, sink.records, 1)
	assert.Equal(t, "Личные затраты", sink.records[0].Category)
	assert.Equal(t, "Тест Оператор", sink.records[0].FullName)
}

func TestServiceCommitZero(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: 7, FullName: "Тест Оператор"}
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	expenses := &mockExpenseRepo{}
	reminders := &mockReminderRepo{}
	sink := &recordingSink{}

	expenses.On("Create", mock.Anything, user.ID, decimal.Zero, domain.ZeroPurpose, "", day).
		Return(&domain.Expense{ID: 43, UserID: user.ID}, nil).Once()
	reminders.On("MarkCompletedForUserDay", mock.Anything, user.ID, day).Return(nil).Once()

	svc := newTestService(expenses, reminders, sink)
	require.NoError(t, svc.CommitZero(ctx, user))

	expenses.AssertExpectations(t)
	reminders.AssertExpectations(t)
}

func TestServiceCommitDatabaseFailure(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: 7}
	draft := &domain.ExpenseDraft{Amount: decimal.NewFromInt(10), Category: "Другое", Purpose: "x y"}

	expenses := &mockExpenseRepo{}
	reminders := &mockReminderRepo{}
	sink := &recordingSink{}

	expenses.On("Create", mock.Anything, user.ID, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused")).Once()

	svc := newTestService(expenses, reminders, sink)
	err := svc.Commit(ctx, user, draft)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "E200", appErr.Code)

	// Nothing downstream runs when the insert fails.
	reminders.AssertNotCalled(t, "MarkCompletedForUserDay", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, sink.records)
}

func TestServiceCommitReminderFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: 7}
	draft := &domain.ExpenseDraft{Amount: decimal.NewFromInt(10), Category: "Услуга", Purpose: "ремонт"}

	expenses := &mockExpenseRepo{}
	reminders := &mockReminderRepo{}
	sink := &recordingSink{}

	expenses.On("Create", mock.Anything, user.ID, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.Expense{ID: 44}, nil).Once()
	reminders.On("MarkCompletedForUserDay", mock.Anything, user.ID, mock.Anything).
		Return(errors.New("deadlock detected")).Once()

	svc := newTestService(expenses, reminders, sink)
	require.NoError(t, svc.Commit(ctx, user, draft))
	require.Len(t, sink.records, 1)
}

func TestServiceCommitMirrorRetriesThenSucceeds(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: 7}
	draft := &domain.ExpenseDraft{Amount: decimal.NewFromInt(10), Category: "Другое", Purpose: "прочее"}

	expenses := &mockExpenseRepo{}
	reminders := &mockReminderRepo{}
	sink := &recordingSink{failures: 1}

	expenses.On("Create", mock.Anything, user.ID, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.Expense{ID: 45}, nil).Once()
	reminders.On("MarkCompletedForUserDay", mock.Anything, user.ID, mock.Anything).Return(nil).Once()

	svc := newTestService(expenses, reminders, sink)
	require.NoError(t, svc.Commit(ctx, user, draft))
	require.Len(t, sink.records, 1)
}

func TestServiceCommitMirrorExhaustedIsNotFatal(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: 7}
	draft := &domain.ExpenseDraft{Amount: decimal.NewFromInt(10), Category: "Другое", Purpose: "прочее"}

	expenses := &mockExpenseRepo{}
	reminders := &mockReminderRepo{}
	sink := &recordingSink{failures: 100}

	expenses.On("Create", mock.Anything, user.ID, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.Expense{ID: 46}, nil).Once()
	reminders.On("MarkCompletedForUserDay", mock.Anything, user.ID, mock.Anything).Return(nil).Once()

	svc := newTestService(expenses, reminders, sink)
	require.NoError(t, svc.Commit(ctx, user, draft))
	assert.Empty(t, sink.records)
}
