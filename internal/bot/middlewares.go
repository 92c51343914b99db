package bot

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/kutkeldi-dev/telegram-financial-bot/internal/bot/handlers"
	apperrors "github.com/kutkeldi-dev/telegram-financial-bot/internal/errors"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/repository"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/user"
)

const txtUnauthorized = "🔒 Доступ только для авторизованных сотрудников.\n\n" +
	"Авторизуйтесь: <code>/auth ВАШ_КОД</code>"

// RecoveryMiddleware catches panics, reports them via the centralized handler,
// and notifies the user.
func RecoveryMiddleware(log *slog.Logger, errHandler *apperrors.Handler) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c tele.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic recovered in handler", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))

					userMsg := "⚠️ Что-то пошло не так. Попробуйте позже."
					if errHandler != nil {
						appErr := apperrors.NewDatabaseError(fmt.Errorf("panic recovered: %v", r))
						if msg, _ := errHandler.Handle(context.Background(), appErr); msg != "" {
							userMsg = msg
						}
					}

					if c != nil {
						if sendErr := c.Send(userMsg); sendErr != nil {
							log.Error("failed to notify user about panic", slog.Any("error", sendErr))
						}
					}

					err = nil
				}
			}()

			return next(c)
		}
	}
}

// ErrorHandlingMiddleware centralizes error reporting and user messaging for
// handler failures.
func ErrorHandlingMiddleware(errHandler *apperrors.Handler) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c tele.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			userMsg := "Произошла ошибка. Попробуйте позже"
			if errHandler != nil {
				if msg, _ := errHandler.Handle(context.Background(), err); msg != "" {
					userMsg = msg
				}
			}

			if c != nil {
				_ = c.Send(userMsg)
			}

			return nil
		}
	}
}

// LoggingMiddleware logs basic telemetry about incoming updates.
func LoggingMiddleware(log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c tele.Context) error {
			start := time.Now()

			userID := int64(0)
			if c != nil && c.Sender() != nil {
				userID = c.Sender().ID
			}

			action := ""
			if c != nil {
				if cb := c.Callback(); cb != nil {
					action = handlers.CallbackData(c)
				} else {
					action = c.Text()
				}
			}

			err := next(c)
			log.Info("handled update",
				slog.Int64("user_id", userID),
				slog.String("action", action),
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err),
			)

			return err
		}
	}
}

// AuthMiddleware resolves the sender's account and blocks unauthorized input.
// /start and /auth pass through so new operators can get in.
func AuthMiddleware(users *user.Service, log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c tele.Context) error {
			if users == nil || c == nil || c.Sender() == nil {
				return next(c)
			}

			telegramID := c.Sender().ID

			u, err := users.ByTelegramID(context.Background(), telegramID)
			switch {
			case stdErrors.Is(err, repository.ErrNotFound):
			case err != nil:
				return apperrors.NewDatabaseError(err)
			case u.IsAuthorized:
				handlers.SetCurrentUser(c, u)
				return next(c)
			}

			if isAuthExempt(c) {
				return next(c)
			}

			log.Warn("unauthorized access attempt", slog.Int64("telegram_id", telegramID))

			return c.Send(txtUnauthorized, tele.ModeHTML)
		}
	}
}

func isAuthExempt(c tele.Context) bool {
	if c.Callback() != nil {
		return false
	}

	text := c.Text()

	return strings.HasPrefix(text, CommandStart) || strings.HasPrefix(text, CommandAuth)
}
