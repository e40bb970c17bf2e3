package db

import (
	"context"

	"github.com/russross/meddler"
)

// QueryRow runs query under ctx and scans the first row into dst.
// It returns sql.ErrNoRows when nothing matched.
func QueryRow(ctx context.Context, q Querier, dst any, query string, args ...any) error {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	return meddler.ScanRow(rows, dst)
}

// QueryAll runs query under ctx and scans every row into dst, a pointer to a
// slice of struct pointers.
func QueryAll(ctx context.Context, q Querier, dst any, query string, args ...any) error {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	return meddler.ScanAll(rows, dst)
}
