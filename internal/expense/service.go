// Package expense commits finished drafts: the database write, the reminder
// completion, and the mirror append, in that order.
package expense

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kutkeldi-dev/telegram-financial-bot/internal/domain"
	apperrors "github.com/kutkeldi-dev/telegram-financial-bot/internal/errors"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/mirror"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/repository"
	"github.com/kutkeldi-dev/telegram-financial-bot/pkg/metrics"
)

// Service persists expenses and keeps the day's reminder in sync. Only the
// expense insert is fatal; reminder completion and mirroring are best-effort.
type Service struct {
	expenses  repository.ExpenseRepository
	reminders repository.ReminderRepository
	sink      mirror.Sink
	log       *slog.Logger
	now       func() time.Time
	loc       *time.Location
}

func NewService(expenses repository.ExpenseRepository, reminders repository.ReminderRepository, sink mirror.Sink, log *slog.Logger, loc *time.Location) *Service {
	if log == nil {
		log = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	if sink == nil {
		sink = mirror.NopSink{}
	}

	return &Service{
		expenses:  expenses,
		reminders: reminders,
		sink:      sink,
		log:       log,
		now:       time.Now,
		loc:       loc,
	}
}

// Commit records a finished draft for today.
func (s *Service) Commit(ctx context.Context, user *domain.User, draft *domain.ExpenseDraft) error {
	return s.commit(ctx, user, draft.Amount, draft.Category, draft.Purpose)
}

// CommitZero records a "no expenses today" report: a zero-amount row with no
// category, which completes the reminder the same way a real expense does.
func (s *Service) CommitZero(ctx context.Context, user *domain.User) error {
	return s.commit(ctx, user, decimal.Zero, "", domain.ZeroPurpose)
}

func (s *Service) commit(ctx context.Context, user *domain.User, amount decimal.Decimal, category, purpose string) error {
	day := domain.Day(s.now().In(s.loc))

	exp, err := s.expenses.Create(ctx, user.ID, amount, purpose, category, day)
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	metrics.RecordExpense(category)

	// Completing the reminder is not allowed to fail the commit: the expense
	// row already exists and the midnight reset bounds any leftover reminder.
	if err := s.reminders.MarkCompletedForUserDay(ctx, user.ID, day); err != nil {
		s.log.Error("failed to complete reminder after expense commit",
			"user_id", user.ID, "expense_id", exp.ID, "error", err)
		metrics.RecordError("reminder_complete")
	}

	rec := mirror.Record{
		Date:       day,
		FullName:   user.FullName,
		Amount:     amount,
		Category:   category,
		Purpose:    purpose,
		RecordedAt: s.now().In(s.loc),
	}
	if err := apperrors.WithRetry(ctx, func() error {
		if appendErr := s.sink.Append(ctx, rec); appendErr != nil {
			return apperrors.NewSyncError(appendErr)
		}
		return nil
	}); err != nil {
		s.log.Error("failed to mirror expense", "user_id", user.ID, "expense_id", exp.ID, "error", err)
		metrics.RecordError("mirror_sync")
	}

	return nil
}
