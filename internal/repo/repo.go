package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
)

type connectionPool interface {
	Begin(context.Context) (pgx.Tx, error)
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

const maxAttemptCount = 3

// retryBaseDelay is the first pause between attempts; it doubles afterwards.
var retryBaseDelay = time.Second

func WithRetry[T any](ctx context.Context, dbQuery func(context.Context) (T, error),
) (T, error) {
	var (
		res     T
		attempt int
	)
	backoff := retry.WithMaxRetries(maxAttemptCount, retry.NewExponential(retryBaseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		var err error
		res, err = dbQuery(ctx)
		if err == nil {
			return nil
		}
		if isRetryableError(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		var zero T
		return zero, fmt.Errorf("on attempt #%d error occurred: %w", attempt, err)
	}
	return res, nil
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.ConnectionException,
			pgerrcode.ConnectionDoesNotExist,
			pgerrcode.ConnectionFailure,
			pgerrcode.CannotConnectNow,
			pgerrcode.SQLClientUnableToEstablishSQLConnection,
			pgerrcode.SQLServerRejectedEstablishmentOfSQLConnection,
			pgerrcode.TransactionResolutionUnknown:
			return true
		}
	}

	return false
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
