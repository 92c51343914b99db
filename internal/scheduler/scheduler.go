// Package scheduler drives the daily reminder cycle: evening creation, hourly
// escalation, and the midnight rollover.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/kutkeldi-dev/telegram-financial-bot/internal/domain"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/notification"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/repository"
	"github.com/kutkeldi-dev/telegram-financial-bot/pkg/logger"
	"github.com/kutkeldi-dev/telegram-financial-bot/pkg/metrics"
)

// UserSource lists the users who receive reminders.
type UserSource interface {
	ListAuthorized(ctx context.Context) ([]domain.User, error)
}

// ReminderStore is the subset of the reminder repository the triggers need.
type ReminderStore interface {
	CreateDaily(ctx context.Context, userID int64, day time.Time) (int64, error)
	PendingForDay(ctx context.Context, day time.Time) ([]domain.PendingReminder, error)
	IncrementEscalation(ctx context.Context, reminderID int64) (int, error)
}

// Scheduler runs three time triggers off one clock, all evaluated in the
// configured location. Triggers never overlap: the loop re-arms its timer only
// after the fired trigger returns.
type Scheduler struct {
	clock    clockwork.Clock
	users    UserSource
	store    ReminderStore
	notifier notification.Notifier
	log      *slog.Logger
	loc      *time.Location

	reminderHour   int
	reminderMinute int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(clock clockwork.Clock, users UserSource, store ReminderStore, notifier notification.Notifier, log *slog.Logger, loc *time.Location, reminderHour, reminderMinute int) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}

	return &Scheduler{
		clock:          clock,
		users:          users,
		store:          store,
		notifier:       notifier,
		log:            log,
		loc:            loc,
		reminderHour:   reminderHour,
		reminderMinute: reminderMinute,
	}
}

// Start arms the triggers. Safe to call once.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()

	s.log.Info("scheduler started",
		"reminder_time", time.Date(0, 1, 1, s.reminderHour, s.reminderMinute, 0, 0, time.UTC).Format("15:04"),
		"timezone", s.loc.String())
}

// Stop disarms the triggers and waits for the loop to exit. In-flight sends
// are abandoned via context cancellation.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	now := s.clock.Now().In(s.loc)
	nextDaily := s.nextDaily(now)
	nextHourly := nextTopOfHour(now)
	nextRollover := nextMidnight(now)

	for {
		next := earliest(nextDaily, nextHourly, nextRollover)

		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(next.Sub(s.clock.Now())):
		}

		now = s.clock.Now().In(s.loc)

		// One correlation id per wake-up groups all log lines of the sweep.
		fireCtx := logger.WithCorrelationID(ctx)

		// Creation runs before escalation when both land on the same tick.
		if !now.Before(nextDaily) {
			s.runDailyCreation(fireCtx, now)
			nextDaily = s.nextDaily(now)
		}
		if !now.Before(nextHourly) {
			s.runHourlyEscalation(fireCtx, now)
			nextHourly = nextTopOfHour(now)
		}
		if !now.Before(nextRollover) {
			s.runMidnightRollover(fireCtx, now)
			nextRollover = nextMidnight(now)
		}
	}
}

// runDailyCreation opens today's reminder for every authorized user and sends
// the initial reminder. An already-active reminder means the user was already
// reminded today, so the send is skipped.
func (s *Scheduler) runDailyCreation(ctx context.Context, now time.Time) {
	log := s.log.With("correlation_id", logger.CorrelationIDFromContext(ctx))
	day := domain.Day(now)

	users, err := s.users.ListAuthorized(ctx)
	if err != nil {
		log.Error("daily creation: failed to list users", "error", err)
		metrics.RecordError("scheduler_users")
		return
	}

	log.Info("daily reminder sweep", "day", day.Format("2006-01-02"), "users", len(users))

	for _, u := range users {
		_, err := s.store.CreateDaily(ctx, u.ID, day)
		if errors.Is(err, repository.ErrReminderExists) {
			log.Debug("reminder already active, skipping send", "user_id", u.ID)
			continue
		}
		if err != nil {
			log.Error("failed to create reminder", "user_id", u.ID, "error", err)
			metrics.RecordError("reminder_create")
			continue
		}
		metrics.RecordReminderCreated()

		if err := s.notifier.SendInitialReminder(ctx, u.TelegramID); err != nil {
			log.Error("failed to send reminder", "user_id", u.ID, "telegram_id", u.TelegramID, "error", err)
			metrics.RecordNotificationFailure("initial")
		}
	}
}

// runHourlyEscalation bumps and re-sends every reminder still pending. Hours
// at or before the daily reminder time are a no-op so escalation never runs
// ahead of creation.
func (s *Scheduler) runHourlyEscalation(ctx context.Context, now time.Time) {
	log := s.log.With("correlation_id", logger.CorrelationIDFromContext(ctx))
	if now.Hour()*60+now.Minute() <= s.reminderHour*60+s.reminderMinute {
		return
	}

	day := domain.Day(now)

	pending, err := s.store.PendingForDay(ctx, day)
	if err != nil {
		log.Error("escalation: failed to load pending reminders", "error", err)
		metrics.RecordError("scheduler_pending")
		return
	}

	if len(pending) == 0 {
		return
	}

	log.Info("escalation sweep", "day", day.Format("2006-01-02"), "pending", len(pending))

	for _, p := range pending {
		count, err := s.store.IncrementEscalation(ctx, p.ID)
		if err != nil {
			log.Error("failed to escalate reminder", "reminder_id", p.ID, "user_id", p.UserID, "error", err)
			metrics.RecordError("reminder_escalate")
			continue
		}

		if err := s.notifier.SendEscalation(ctx, p.TelegramID, count); err != nil {
			log.Error("failed to send escalation", "reminder_id", p.ID, "telegram_id", p.TelegramID, "error", err)
			metrics.RecordNotificationFailure("escalation")
			continue
		}
		metrics.RecordEscalationSent()
	}
}

// runMidnightRollover closes out the day in the log. Unanswered reminders stay
// as they are; completed ones are never resurrected.
func (s *Scheduler) runMidnightRollover(ctx context.Context, now time.Time) {
	log := s.log.With("correlation_id", logger.CorrelationIDFromContext(ctx))
	endedDay := domain.Day(now.Add(-time.Hour))

	pending, err := s.store.PendingForDay(ctx, endedDay)
	if err != nil {
		log.Error("rollover: failed to count unanswered reminders", "day", endedDay.Format("2006-01-02"), "error", err)
		return
	}

	log.Info("day rolled over", "day", endedDay.Format("2006-01-02"), "unanswered", len(pending))
}

func (s *Scheduler) nextDaily(now time.Time) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), s.reminderHour, s.reminderMinute, 0, 0, s.loc)
	if !candidate.After(now) {
		candidate = time.Date(now.Year(), now.Month(), now.Day()+1, s.reminderHour, s.reminderMinute, 0, 0, s.loc)
	}

	return candidate
}

func nextTopOfHour(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), now.Hour()+1, 0, 0, 0, now.Location())
}

func nextMidnight(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
}

func earliest(times ...time.Time) time.Time {
	min := times[0]
	for _, t := range times[1:] {
		if t.Before(min) {
			min = t
		}
	}

	return min
}
