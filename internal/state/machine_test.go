package state

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kutkeldi-dev/telegram-financial-bot/internal/domain"
)

var errStorageFailure = errors.New("storage error")

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) GetState(ctx context.Context, userID int64) (*UserState, error) {
	args := m.Called(ctx, userID)
	state, _ := args.Get(0).(*UserState)
	return state, args.Error(1)
}

func (m *mockStorage) SetState(ctx context.Context, userID int64, state *UserState) error {
	args := m.Called(ctx, userID, state)
	return args.Error(0)
}

func (m *mockStorage) ClearState(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStateMachine_SetState(t *testing.T) {
	ctx := context.Background()
	userID := int64(42)
	log := testLogger()

	testCases := []struct {
		name        string
		setupMocks  func(ms *mockStorage)
		newState    State
		expectedErr error
	}{
		{
			name: "successful transition",
			setupMocks: func(ms *mockStorage) {
				ms.On("GetState", mock.Anything, userID).
					Return(&UserState{CurrentState: StateIdle}, nil).Once()
				ms.On("SetState", mock.Anything, userID, mock.MatchedBy(func(state *UserState) bool {
					return state.CurrentState == StateAwaitingAmount
				})).Return(nil).Once()
			},
			newState:    StateAwaitingAmount,
			expectedErr: nil,
		},
		{
			name: "missing state treated as idle",
			setupMocks: func(ms *mockStorage) {
				ms.On("GetState", mock.Anything, userID).
					Return(nil, ErrStateNotFound).Once()
				ms.On("SetState", mock.Anything, userID, mock.Anything).Return(nil).Once()
			},
			newState:    StateAwaitingAmount,
			expectedErr: nil,
		},
		{
			name: "invalid transition rejected",
			setupMocks: func(ms *mockStorage) {
				ms.On("GetState", mock.Anything, userID).
					Return(&UserState{CurrentState: StateIdle}, nil).Once()
			},
			newState:    StateAwaitingConfirmation,
			expectedErr: ErrInvalidTransition,
		},
		{
			name: "storage read failure propagates",
			setupMocks: func(ms *mockStorage) {
				ms.On("GetState", mock.Anything, userID).
					Return(nil, errStorageFailure).Once()
			},
			newState:    StateAwaitingAmount,
			expectedErr: errStorageFailure,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ms := &mockStorage{}
			tc.setupMocks(ms)

			m := NewStateMachine(ms, log, nil)
			err := m.SetState(ctx, userID, tc.newState, nil)

			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
			} else {
				require.NoError(t, err)
			}
			ms.AssertExpectations(t)
		})
	}
}

func TestStateMachine_SetState_KeepsDraft(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)
	draft := &domain.ExpenseDraft{Amount: decimal.RequireFromString("1500")}

	ms := &mockStorage{}
	ms.On("GetState", mock.Anything, userID).
		Return(&UserState{CurrentState: StateAwaitingAmount}, nil).Once()
	ms.On("SetState", mock.Anything, userID, mock.MatchedBy(func(state *UserState) bool {
		return state.CurrentState == StateAwaitingCategory &&
			state.Draft != nil &&
			state.Draft.Amount.Equal(draft.Amount)
	})).Return(nil).Once()

	m := NewStateMachine(ms, testLogger(), nil)
	require.NoError(t, m.SetState(ctx, userID, StateAwaitingCategory, draft))
	ms.AssertExpectations(t)
}

func TestStateMachine_LockHeld(t *testing.T) {
	ctx := context.Background()
	userID := int64(99)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, mr.Set("user:lock:99", "1"))

	ms := &mockStorage{}
	m := NewStateMachine(ms, testLogger(), client)

	err := m.SetState(ctx, userID, StateAwaitingAmount, nil)
	require.ErrorIs(t, err, ErrStateLocked)
	ms.AssertExpectations(t)
}

func TestStateMachine_ClearState(t *testing.T) {
	ctx := context.Background()
	userID := int64(42)

	ms := &mockStorage{}
	ms.On("ClearState", mock.Anything, userID).Return(nil).Once()

	m := NewStateMachine(ms, testLogger(), nil)
	require.NoError(t, m.ClearState(ctx, userID))
	ms.AssertExpectations(t)
}
