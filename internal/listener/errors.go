package listener

import (
	"context"
	"errors"
	"fmt"

	"github.com/goran-ethernal/RWAIndexor/internal/db"
	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
	"github.com/goran-ethernal/RWAIndexor/pkg/processor"
)

// Kind classifies listener failures.
type Kind uint8

const (
	// KindNodeTransient is a node failure worth retrying: connection loss, timeouts.
	KindNodeTransient Kind = iota + 1
	// KindNodeFatal is a node failure that will not resolve by itself.
	KindNodeFatal
	// KindStreamTimeout means the stream stayed silent for too long.
	KindStreamTimeout
	// KindStreamClosed means the node ended the stream with an error.
	KindStreamClosed
	// KindStreamGap means the stream skipped heights or disagreed with the node.
	KindStreamGap
	// KindDatabasePool means no connection could be acquired.
	KindDatabasePool
	// KindDatabase is any other storage failure.
	KindDatabase
	// KindNotFound means an event references an entity that was never created.
	KindNotFound
	// KindInvalidEvent means an event could not be decoded or breaks a domain rule.
	KindInvalidEvent
	// KindUnknownProcessor means a tracked contract has no configured processor.
	KindUnknownProcessor
	// KindCanceled means the listener was asked to stop.
	KindCanceled
)

var kindNames = map[Kind]string{
	KindNodeTransient:    "node_transient",
	KindNodeFatal:        "node_fatal",
	KindStreamTimeout:    "stream_timeout",
	KindStreamClosed:     "stream_closed",
	KindStreamGap:        "stream_gap",
	KindDatabasePool:     "database_pool",
	KindDatabase:         "database",
	KindNotFound:         "not_found",
	KindInvalidEvent:     "invalid_event",
	KindUnknownProcessor: "unknown_processor",
	KindCanceled:         "canceled",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsRetryable reports whether a failure of this kind is handled by
// resubscribing from the checkpoint.
func (k Kind) IsRetryable() bool {
	switch k {
	case KindNodeTransient, KindStreamTimeout, KindStreamGap, KindDatabasePool:
		return true
	default:
		return false
	}
}

// Error is a classified listener failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf classifies err. Errors no layer recognizes are treated as storage failures.
func KindOf(err error) Kind {
	var lErr *Error
	if errors.As(err, &lErr) {
		return lErr.Kind
	}

	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}

	if errors.Is(err, chain.ErrStreamClosed) {
		return KindStreamClosed
	}

	var nodeErr *chain.NodeError
	if errors.As(err, &nodeErr) {
		if nodeErr.Transient {
			return KindNodeTransient
		}
		return KindNodeFatal
	}

	switch processor.KindOf(err) {
	case processor.KindNotFound:
		return KindNotFound
	case processor.KindInvalidEvent:
		return KindInvalidEvent
	case processor.KindDatabasePool:
		return KindDatabasePool
	case processor.KindDatabase:
		return KindDatabase
	}

	if db.IsPoolError(err) {
		return KindDatabasePool
	}

	return KindDatabase
}

// IsRetryable reports whether err is handled by resubscribing.
func IsRetryable(err error) bool {
	return err != nil && KindOf(err).IsRetryable()
}

// storageKind picks the kind of a raw database error.
func storageKind(err error) Kind {
	if db.IsPoolError(err) {
		return KindDatabasePool
	}
	return KindDatabase
}
