// Package bot wires the Telegram transport to the conversation flow.
package bot

import (
	"fmt"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/kutkeldi-dev/telegram-financial-bot/internal/bot/handlers"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/bot/keyboard"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/conversation"
	apperrors "github.com/kutkeldi-dev/telegram-financial-bot/internal/errors"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/middleware"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/repository"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/user"
	"github.com/kutkeldi-dev/telegram-financial-bot/pkg/config"
)

// Bot wraps telebot.Bot with the routing and middleware stack.
type Bot struct {
	telebot    *tele.Bot
	log        *slog.Logger
	router     *Router
	errHandler *apperrors.Handler
}

// New builds the bot: long poller, middleware chain, command and callback
// registry.
func New(
	cfg *config.Config,
	log *slog.Logger,
	flow *conversation.Flow,
	users *user.Service,
	expenses repository.ExpenseRepository,
	rateLimitMw *middleware.RateLimitMiddleware,
	loc *time.Location,
) (*Bot, error) {
	pollTimeout := cfg.Bot.PollTimeout
	if pollTimeout == 0 {
		pollTimeout = 10 * time.Second
	}

	tb, err := tele.NewBot(tele.Settings{
		Token:     cfg.Bot.Token,
		Poller:    &tele.LongPoller{Timeout: pollTimeout},
		ParseMode: tele.ModeHTML,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	b := &Bot{
		telebot:    tb,
		log:        log,
		router:     NewRouter(log),
		errHandler: apperrors.NewHandler(log, cfg.Sentry.Enabled),
	}

	b.setupRouter(flow, users, expenses, loc)

	if rateLimitMw != nil {
		b.telebot.Use(rateLimitMw.Handle)
	}

	b.telebot.Handle(tele.OnText, b.router.Route)
	b.telebot.Handle(tele.OnCallback, b.router.Route)

	return b, nil
}

func (b *Bot) setupRouter(flow *conversation.Flow, users *user.Service, expenses repository.ExpenseRepository, loc *time.Location) {
	b.router.Use(RecoveryMiddleware(b.log, b.errHandler))
	b.router.Use(ErrorHandlingMiddleware(b.errHandler))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(AuthMiddleware(users, b.log))

	expenseHandlers := handlers.NewExpenseHandlers(flow, b.log)
	startHandler := handlers.NewStartHandler(b.log)
	statusHandler := handlers.NewStatusHandler(expenses, loc, b.log)

	b.router.RegisterCommand(CommandStart, startHandler)
	b.router.RegisterCommand(CommandAuth, handlers.NewAuthHandler(users, b.log))
	b.router.RegisterCommand(CommandStatus, statusHandler)
	b.router.RegisterCommand(CommandCancel, handlers.NewCancelHandler(flow, b.log))

	// Main-menu reply buttons arrive as plain text.
	b.router.RegisterCommand(keyboard.BtnExpense, expenseHandlers.Start)
	b.router.RegisterCommand(keyboard.BtnStatus, statusHandler)

	b.router.RegisterCallback(CallbackExpenseStart, expenseHandlers.Start)
	b.router.RegisterCallback(CallbackCategoryPrefix, expenseHandlers.Callback)
	b.router.RegisterCallback(CallbackConfirmPrefix, expenseHandlers.Callback)
	b.router.RegisterCallback(CallbackMainMenu, handlers.CallbackHandler(startHandler))
	b.router.RegisterCallback(CallbackStatus, handlers.CallbackHandler(statusHandler))

	// Everything else is conversation input for the current step.
	b.router.SetDefault(expenseHandlers.Text)
}

// Start runs the long-poll event loop. Blocks until Stop.
func (b *Bot) Start() {
	b.log.Info("telegram bot started", "username", b.telebot.Me.Username)
	b.telebot.Start()
}

// Stop terminates the event loop.
func (b *Bot) Stop() {
	b.log.Info("stopping telegram bot")
	b.telebot.Stop()
}

// Telebot exposes the underlying instance for the notifier and health checks.
func (b *Bot) Telebot() *tele.Bot {
	return b.telebot
}
