package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kutkeldi-dev/telegram-financial-bot/internal/state"
)

var (
	remindersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reminders_created_total",
			Help: "Total number of daily reminders created by the scheduler",
		},
	)
	escalationsSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "escalations_sent_total",
			Help: "Total number of hourly escalation notifications sent",
		},
	)
	notificationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_failures_total",
			Help: "Total number of failed reminder sends labeled by kind",
		},
		[]string{"kind"},
	)
	expensesRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "expenses_recorded_total",
			Help: "Total number of committed expenses labeled by category",
		},
		[]string{"category"},
	)
	stateTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "state_transitions_total",
			Help: "Total number of conversation state transitions",
		},
		[]string{"from", "to"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by type",
		},
		[]string{"type"},
	)
)

func init() {
	state.RegisterTransitionRecorder(RecordStateTransition)
}

// RecordReminderCreated counts a daily reminder row created by the 20:00 trigger.
func RecordReminderCreated() {
	remindersCreatedTotal.Inc()
}

// RecordEscalationSent counts one hourly escalation notification.
func RecordEscalationSent() {
	escalationsSentTotal.Inc()
}

// RecordNotificationFailure counts a failed send, kind is "initial" or "escalation".
func RecordNotificationFailure(kind string) {
	if kind == "" {
		kind = "unknown"
	}
	notificationFailuresTotal.WithLabelValues(kind).Inc()
}

// RecordExpense counts a committed expense.
func RecordExpense(category string) {
	if category == "" {
		category = "none"
	}
	expensesRecordedTotal.WithLabelValues(category).Inc()
}

// RecordStateTransition counts a conversation FSM transition.
func RecordStateTransition(from, to string) {
	stateTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordError counts an error by taxonomy type.
func RecordError(errType string) {
	if errType == "" {
		errType = "unknown"
	}
	errorsTotal.WithLabelValues(errType).Inc()
}
