package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kutkeldi-dev/telegram-financial-bot/internal/domain"
)

// ErrNotFound indicates that a requested row does not exist.
var ErrNotFound = errors.New("not found")

// UserRepository defines persistence operations for operator accounts.
type UserRepository interface {
	FindByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Authorize(ctx context.Context, telegramID int64, fullName, authCode string) error
	ListAuthorized(ctx context.Context) ([]domain.User, error)
}

type userRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewUserRepository creates a new SQL-backed user repository.
func NewUserRepository(db *sql.DB, log *slog.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log,
	}
}

// FindByTelegramID retrieves a user by their Telegram identifier.
func (r *userRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	const query = `
		SELECT id, telegram_id, COALESCE(username, ''), full_name, is_authorized, COALESCE(auth_code, ''), created_at
		FROM users
		WHERE telegram_id = $1
	`

	row := r.db.QueryRowContext(ctx, query, telegramID)

	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FullName,
		&user.IsAuthorized,
		&user.AuthCode,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		if r.log != nil {
			r.log.Error("failed to fetch user by telegram id", slog.Int64("telegram_id", telegramID), slog.Any("error", err))
		}
		return nil, fmt.Errorf("select user by telegram id: %w", err)
	}

	return &user, nil
}

// Create persists a new user record and fills in the generated ID.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
		INSERT INTO users (telegram_id, username, full_name, is_authorized, auth_code)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.TelegramID,
		user.Username,
		user.FullName,
		user.IsAuthorized,
		user.AuthCode,
	).Scan(&user.ID, &user.CreatedAt); err != nil {
		if r.log != nil {
			r.log.Error("failed to create user", slog.Int64("telegram_id", user.TelegramID), slog.Any("error", err))
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// Authorize marks an existing user as authorized with the mapped display name.
func (r *userRepository) Authorize(ctx context.Context, telegramID int64, fullName, authCode string) error {
	const query = `
		UPDATE users
		SET is_authorized = TRUE, full_name = $2, auth_code = $3
		WHERE telegram_id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, telegramID, fullName, authCode); err != nil {
		if r.log != nil {
			r.log.Error("failed to authorize user", slog.Int64("telegram_id", telegramID), slog.Any("error", err))
		}
		return fmt.Errorf("authorize user: %w", err)
	}

	return nil
}

// ListAuthorized returns every authorized operator, as consumed by the daily
// reminder trigger.
func (r *userRepository) ListAuthorized(ctx context.Context) ([]domain.User, error) {
	const query = `
		SELECT id, telegram_id, COALESCE(username, ''), full_name, is_authorized, COALESCE(auth_code, ''), created_at
		FROM users
		WHERE is_authorized
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select authorized users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.TelegramID,
			&user.Username,
			&user.FullName,
			&user.IsAuthorized,
			&user.AuthCode,
			&user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan authorized user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate authorized users: %w", err)
	}

	return users, nil
}
