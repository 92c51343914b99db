package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kutkeldi-dev/telegram-financial-bot/internal/domain"
	apperrors "github.com/kutkeldi-dev/telegram-financial-bot/internal/errors"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/repository"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) FindByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	args := m.Called(ctx, telegramID)
	if u, ok := args.Get(0).(*domain.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) Authorize(ctx context.Context, telegramID int64, fullName, authCode string) error {
	args := m.Called(ctx, telegramID, fullName, authCode)
	return args.Error(0)
}

func (m *mockUserRepo) ListAuthorized(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if users, ok := args.Get(0).([]domain.User); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

var testCodes = map[string]string{"SECRET1": "Айбек Кутпидинов"}

func newTestService(repo repository.UserRepository) *Service {
	return NewService(repo, testCodes, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAuthorizeNewUser(t *testing.T) {
	repo := &mockUserRepo{}
	repo.On("FindByTelegramID", mock.Anything, int64(42)).Return(nil, repository.ErrNotFound).Once()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.TelegramID == 42 && u.IsAuthorized && u.FullName == "Айбек Кутпидинов"
	})).Return(nil).Once()

	svc := newTestService(repo)
	u, err := svc.Authorize(context.Background(), 42, "aibek", "SECRET1")
	require.NoError(t, err)
	assert.True(t, u.IsAuthorized)
	assert.Equal(t, "Айбек Кутпидинов", u.FullName)
	repo.AssertExpectations(t)
}

func TestAuthorizeExistingUser(t *testing.T) {
	repo := &mockUserRepo{}
	repo.On("FindByTelegramID", mock.Anything, int64(42)).
		Return(&domain.User{ID: 1, TelegramID: 42, FullName: "old", IsAuthorized: false}, nil).Once()
	repo.On("Authorize", mock.Anything, int64(42), "Айбек Кутпидинов", "SECRET1").Return(nil).Once()

	svc := newTestService(repo)
	u, err := svc.Authorize(context.Background(), 42, "aibek", "SECRET1")
	require.NoError(t, err)
	assert.True(t, u.IsAuthorized)
	assert.Equal(t, "Айбек Кутпидинов", u.FullName)
	repo.AssertExpectations(t)
}

func TestAuthorizeUnknownCode(t *testing.T) {
	repo := &mockUserRepo{}

	svc := newTestService(repo)
	_, err := svc.Authorize(context.Background(), 42, "aibek", "WRONG")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "E100", appErr.Code)
	repo.AssertNotCalled(t, "FindByTelegramID", mock.Anything, mock.Anything)
}

func TestListAuthorizedCaching(t *testing.T) {
	repo := &mockUserRepo{}
	repo.On("ListAuthorized", mock.Anything).
		Return([]domain.User{{ID: 1, TelegramID: 42, IsAuthorized: true}}, nil).Once()

	svc := newTestService(repo)
	current := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return current }

	first, err := svc.ListAuthorized(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Within the TTL the repository is not asked again.
	current = current.Add(30 * time.Second)
	second, err := svc.ListAuthorized(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	repo.AssertNumberOfCalls(t, "ListAuthorized", 1)

	// Past the TTL the list is reloaded.
	repo.On("ListAuthorized", mock.Anything).
		Return([]domain.User{{ID: 1}, {ID: 2}}, nil).Once()
	current = current.Add(2 * time.Minute)
	third, err := svc.ListAuthorized(context.Background())
	require.NoError(t, err)
	assert.Len(t, third, 2)
	repo.AssertNumberOfCalls(t, "ListAuthorized", 2)
}

func TestListAuthorizedInvalidatedByAuthorize(t *testing.T) {
	repo := &mockUserRepo{}
	repo.On("ListAuthorized", mock.Anything).Return([]domain.User{}, nil).Once()

	svc := newTestService(repo)
	_, err := svc.ListAuthorized(context.Background())
	require.NoError(t, err)

	repo.On("FindByTelegramID", mock.Anything, int64(42)).Return(nil, repository.ErrNotFound).Once()
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	_, err = svc.Authorize(context.Background(), 42, "aibek", "SECRET1")
	require.NoError(t, err)

	repo.On("ListAuthorized", mock.Anything).
		Return([]domain.User{{ID: 1, TelegramID: 42, IsAuthorized: true}}, nil).Once()
	users, err := svc.ListAuthorized(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
	repo.AssertNumberOfCalls(t, "ListAuthorized", 2)
}
