package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// PostgreSQL SQLSTATE classes that describe the connection, not the statement.
const (
	pgClassConnection        = "08"
	pgClassInsufficientRes   = "53"
	pgClassOperatorIntervene = "57"
	pgCodeSerialization      = "40001"
	pgCodeDeadlock           = "40P01"
)

// IsPoolError reports whether err came from acquiring or keeping a connection
// rather than from the statement itself. Such failures are worth retrying.
func IsPoolError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgCodeSerialization || pgErr.Code == pgCodeDeadlock {
			return true
		}
		if len(pgErr.Code) >= 2 { //nolint:mnd
			switch pgErr.Code[:2] {
			case pgClassConnection, pgClassInsufficientRes, pgClassOperatorIntervene:
				return true
			}
		}
		return false
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}

	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// ErrorClass labels err for metrics: "pool" for connection failures, "statement" otherwise.
func ErrorClass(err error) string {
	if IsPoolError(err) {
		return "pool"
	}
	return "statement"
}
