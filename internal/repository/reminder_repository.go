package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/kutkeldi-dev/telegram-financial-bot/internal/domain"
)

// ErrReminderExists indicates that an active reminder already exists for the
// user and day. The daily trigger treats it as "already reminded today".
var ErrReminderExists = errors.New("active reminder already exists")

const pgUniqueViolation = "23505"

// ReminderRepository defines persistence operations for daily reminders.
type ReminderRepository interface {
	// CreateDaily inserts a new incomplete reminder for the user and day.
	// Returns ErrReminderExists when an active reminder for that day is present.
	CreateDaily(ctx context.Context, userID int64, day time.Time) (int64, error)
	// PendingForDay returns all incomplete reminders for the day, joined with
	// their user.
	PendingForDay(ctx context.Context, day time.Time) ([]domain.PendingReminder, error)
	// MarkCompleted sets is_completed. Idempotent: repeating it is a no-op.
	MarkCompleted(ctx context.Context, reminderID int64) error
	// MarkCompletedForUserDay completes the user's active reminder for the day,
	// if any. Used by the expense commit path.
	MarkCompletedForUserDay(ctx context.Context, userID int64, day time.Time) error
	// IncrementEscalation atomically bumps reminder_count and returns the new value.
	IncrementEscalation(ctx context.Context, reminderID int64) (int, error)
}

type reminderRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewReminderRepository creates a new SQL-backed reminder repository.
func NewReminderRepository(db *sql.DB, log *slog.Logger) ReminderRepository {
	return &reminderRepository{
		db:  db,
		log: log,
	}
}

// CreateDaily inserts the reminder row. The partial unique index on
// (user_id, reminder_date) WHERE NOT is_completed turns a duplicate insert
// into ErrReminderExists.
func (r *reminderRepository) CreateDaily(ctx context.Context, userID int64, day time.Time) (int64, error) {
	const query = `
		INSERT INTO daily_reminders (user_id, reminder_date)
		VALUES ($1, $2)
		RETURNING id
	`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, userID, domain.Day(day)).Scan(&id); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return 0, ErrReminderExists
		}

		if r.log != nil {
			r.log.Error("failed to create daily reminder", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return 0, fmt.Errorf("insert daily reminder: %w", err)
	}

	return id, nil
}

// PendingForDay returns incomplete reminders for the day with user details.
// Completed reminders never appear here, which is what halts escalation.
func (r *reminderRepository) PendingForDay(ctx context.Context, day time.Time) ([]domain.PendingReminder, error) {
	const query = `
		SELECT dr.id, dr.user_id, u.telegram_id, u.full_name, dr.reminder_date, dr.reminder_count
		FROM daily_reminders dr
		JOIN users u ON u.id = dr.user_id
		WHERE dr.reminder_date = $1 AND NOT dr.is_completed
		ORDER BY dr.id
	`

	rows, err := r.db.QueryContext(ctx, query, domain.Day(day))
	if err != nil {
		return nil, fmt.Errorf("select pending reminders: %w", err)
	}
	defer rows.Close()

	var reminders []domain.PendingReminder
	for rows.Next() {
		var reminder domain.PendingReminder
		if err := rows.Scan(
			&reminder.ID,
			&reminder.UserID,
			&reminder.TelegramID,
			&reminder.FullName,
			&reminder.ReminderDate,
			&reminder.ReminderCount,
		); err != nil {
			return nil, fmt.Errorf("scan pending reminder: %w", err)
		}
		reminders = append(reminders, reminder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending reminders: %w", err)
	}

	return reminders, nil
}

// MarkCompleted sets is_completed for the reminder. Already-completed rows are
// matched too, so a second call changes nothing and reports no error.
func (r *reminderRepository) MarkCompleted(ctx context.Context, reminderID int64) error {
	const query = `
		UPDATE daily_reminders
		SET is_completed = TRUE
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, reminderID); err != nil {
		if r.log != nil {
			r.log.Error("failed to mark reminder completed", slog.Int64("reminder_id", reminderID), slog.Any("error", err))
		}
		return fmt.Errorf("mark reminder completed: %w", err)
	}

	return nil
}

// MarkCompletedForUserDay completes the user's active reminder for the day.
// No matching row (reporting before the daily trigger fired) is not an error.
func (r *reminderRepository) MarkCompletedForUserDay(ctx context.Context, userID int64, day time.Time) error {
	const query = `
		UPDATE daily_reminders
		SET is_completed = TRUE
		WHERE user_id = $1 AND reminder_date = $2 AND NOT is_completed
	`

	if _, err := r.db.ExecContext(ctx, query, userID, domain.Day(day)); err != nil {
		if r.log != nil {
			r.log.Error("failed to complete reminder for user day", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return fmt.Errorf("mark reminder completed for user day: %w", err)
	}

	return nil
}

// IncrementEscalation bumps the counter in a single UPDATE so concurrent
// increments cannot lose writes.
func (r *reminderRepository) IncrementEscalation(ctx context.Context, reminderID int64) (int, error) {
	const query = `
		UPDATE daily_reminders
		SET reminder_count = reminder_count + 1
		WHERE id = $1
		RETURNING reminder_count
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, reminderID).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}

		if r.log != nil {
			r.log.Error("failed to increment escalation", slog.Int64("reminder_id", reminderID), slog.Any("error", err))
		}
		return 0, fmt.Errorf("increment escalation: %w", err)
	}

	return count, nil
}
