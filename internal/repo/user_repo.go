package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/talx-hub/gopher-assist/internal/model/user"
	"github.com/talx-hub/gopher-assist/internal/serviceerrs"
)

const (
	queryFindByUsername = `SELECT id::text, username, password_hash FROM users WHERE username = $1`
	queryInsertUser     = `INSERT INTO users (id, username, password_hash) VALUES ($1, $2, $3)`
	queryCountUsers     = `SELECT count(*) FROM users`
)

// UserRepository keeps credentials in postgres. Username uniqueness is
// enforced by the users_username_key index.
type UserRepository struct {
	pool connectionPool
	log  *slog.Logger
}

func NewUserRepository(pool connectionPool, log *slog.Logger) *UserRepository {
	return &UserRepository{
		pool: pool,
		log:  log,
	}
}

func (r *UserRepository) Load(ctx context.Context) error {
	n, err := r.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to load credential store: %w", err)
	}
	r.log.LogAttrs(ctx,
		slog.LevelInfo,
		"credential store loaded",
		slog.String("backend", "postgres"),
		slog.Int("users", n),
	)
	return nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string,
) (user.User, error) {
	findLogic := func(ctx context.Context) (user.User, error) {
		var u user.User
		err := r.pool.QueryRow(ctx, queryFindByUsername, username).
			Scan(&u.ID, &u.Username, &u.PasswordHash)
		if err != nil {
			return user.User{}, err //nolint: wrapcheck // wrapped below
		}
		return u, nil
	}

	u, err := WithRetry[user.User](ctx, findLogic)
	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, serviceerrs.ErrNotFound
	}
	if err != nil {
		return user.User{}, fmt.Errorf("%w: failed to find user in DB: %w",
			serviceerrs.ErrPersistence, err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	createLogic := func(ctx context.Context) (struct{}, error) {
		_, err := r.pool.Exec(ctx, queryInsertUser, u.ID, u.Username, u.PasswordHash)
		return struct{}{}, err //nolint: wrapcheck // wrapped below
	}

	_, err := WithRetry[struct{}](ctx, createLogic)
	if isUniqueViolation(err) {
		return serviceerrs.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("%w: failed to insert user: %w",
			serviceerrs.ErrPersistence, err)
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	countLogic := func(ctx context.Context) (int, error) {
		var n int
		if err := r.pool.QueryRow(ctx, queryCountUsers).Scan(&n); err != nil {
			return 0, err //nolint: wrapcheck // wrapped below
		}
		return n, nil
	}

	n, err := WithRetry[int](ctx, countLogic)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count users: %w",
			serviceerrs.ErrPersistence, err)
	}
	return n, nil
}
