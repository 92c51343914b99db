// Package user handles operator accounts and code-based authorization.
package user

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/kutkeldi-dev/telegram-financial-bot/internal/domain"
	apperrors "github.com/kutkeldi-dev/telegram-financial-bot/internal/errors"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/repository"
)

const listCacheTTL = time.Minute

const txtInvalidCode = "❌ Неверный код авторизации.\n\nПроверьте код и попробуйте ещё раз: /auth КОД"

// Service resolves and authorizes operators. The authorized list is cached
// briefly because the scheduler asks for it on every sweep.
type Service struct {
	repo  repository.UserRepository
	codes map[string]string
	log   *slog.Logger

	mu       sync.Mutex
	cached   []domain.User
	cachedAt time.Time
	now      func() time.Time
}

// NewService builds the service. codes maps an authorization code to the
// operator display name it grants.
func NewService(repo repository.UserRepository, codes map[string]string, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		repo:  repo,
		codes: codes,
		log:   log,
		now:   time.Now,
	}
}

// Authorize validates the code and marks the account as authorized, creating
// it on first contact. The display name comes from the code mapping, not from
// the Telegram profile.
func (s *Service) Authorize(ctx context.Context, telegramID int64, username, code string) (*domain.User, error) {
	fullName, ok := s.codes[code]
	if !ok {
		s.log.Warn("authorization attempt with unknown code", "telegram_id", telegramID)
		return nil, apperrors.NewValidationError(txtInvalidCode)
	}

	existing, err := s.repo.FindByTelegramID(ctx, telegramID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		u := &domain.User{
			TelegramID:   telegramID,
			Username:     username,
			FullName:     fullName,
			IsAuthorized: true,
			AuthCode:     code,
		}
		if err := s.repo.Create(ctx, u); err != nil {
			return nil, apperrors.NewDatabaseError(err)
		}
		existing = u

	case err != nil:
		return nil, apperrors.NewDatabaseError(err)

	default:
		if err := s.repo.Authorize(ctx, telegramID, fullName, code); err != nil {
			return nil, apperrors.NewDatabaseError(err)
		}
		existing.FullName = fullName
		existing.AuthCode = code
		existing.IsAuthorized = true
	}

	s.invalidate()
	s.log.Info("operator authorized", "telegram_id", telegramID, "full_name", fullName)

	return existing, nil
}

// ByTelegramID returns the account for a Telegram user, or
// repository.ErrNotFound when they never authorized.
func (s *Service) ByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	return s.repo.FindByTelegramID(ctx, telegramID)
}

// ListAuthorized returns the reminder audience, cached for up to a minute.
func (s *Service) ListAuthorized(ctx context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && s.now().Sub(s.cachedAt) < listCacheTTL {
		out := make([]domain.User, len(s.cached))
		copy(out, s.cached)
		return out, nil
	}

	users, err := s.repo.ListAuthorized(ctx)
	if err != nil {
		return nil, err
	}

	s.cached = users
	s.cachedAt = s.now()

	out := make([]domain.User, len(users))
	copy(out, users)

	return out, nil
}

func (s *Service) invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}
