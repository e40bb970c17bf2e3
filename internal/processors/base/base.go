// Package base holds the pieces every processor family shares: identity,
// storage error mapping and the agent table.
package base

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goran-ethernal/RWAIndexor/internal/common"
	"github.com/goran-ethernal/RWAIndexor/internal/db"
	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	"github.com/goran-ethernal/RWAIndexor/pkg/processor"
)

// Processor implements the Type and Identity half of processor.Processor.
type Processor struct {
	typ      processor.Type
	identity processor.Identity
	Log      *logger.Logger
}

// New returns the shared part of a processor of type t.
func New(t processor.Type, identity processor.Identity, log *logger.Logger) Processor {
	return Processor{
		typ:      t,
		identity: identity,
		Log:      log.WithComponent(common.ComponentProcessor).With("type", t.String()),
	}
}

func (p Processor) Type() processor.Type {
	return p.typ
}

func (p Processor) Identity() processor.Identity {
	return p.identity
}

// Storage maps a database failure to a processor error. Processor errors pass
// through unchanged.
func (p Processor) Storage(op string, err error) error {
	if err == nil {
		return nil
	}

	var pErr *processor.Error
	if errors.As(err, &pErr) {
		return err
	}

	return processor.StorageError(p.typ, op, err, db.IsPoolError(err))
}

// NotFound builds a NotFound error for this processor.
func (p Processor) NotFound(op string, format string, args ...any) error {
	return processor.NotFound(p.typ, op, format, args...)
}

// Invalid builds an InvalidEvent error for this processor.
func (p Processor) Invalid(op string, err error) error {
	return processor.InvalidEvent(p.typ, op, err)
}

// Exec runs a statement and returns the number of affected rows.
func (p Processor) Exec(ctx context.Context, tx *sql.Tx, op, query string, args ...any) (int64, error) {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, p.Storage(op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, p.Storage(op, err)
	}
	return n, nil
}

// ExecOne runs a statement that must touch exactly one row, otherwise the
// referenced entity is reported as missing.
func (p Processor) ExecOne(ctx context.Context, tx *sql.Tx, op, what, query string, args ...any) error {
	n, err := p.Exec(ctx, tx, op, query, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return p.NotFound(op, "%s not found", what)
	}
	return nil
}

// UnknownEvent reports a tag the family does not define.
func (p Processor) UnknownEvent(tag uint8) error {
	return p.Invalid("decode", fmt.Errorf("unknown event tag %d", tag))
}
