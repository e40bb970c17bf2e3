package processor

import (
	"errors"
	"fmt"
)

// ErrorKind classifies processor failures.
type ErrorKind uint8

const (
	// KindNotFound means an event references an entity that was never created.
	KindNotFound ErrorKind = iota + 1
	// KindDatabasePool means no connection could be acquired.
	KindDatabasePool
	// KindDatabase is any other storage failure, constraint violations included.
	KindDatabase
	// KindInvalidEvent means the payload could not be decoded or breaks a domain rule.
	KindInvalidEvent
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindDatabasePool:
		return "database_pool"
	case KindDatabase:
		return "database"
	case KindInvalidEvent:
		return "invalid_event"
	default:
		return "unknown"
	}
}

// Error is returned by processors.
type Error struct {
	Kind      ErrorKind
	Processor Type
	Op        string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s processor: %s: %s: %v", e.Processor, e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound builds a KindNotFound error.
func NotFound(t Type, op string, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Processor: t, Op: op, Err: fmt.Errorf(format, args...)}
}

// InvalidEvent builds a KindInvalidEvent error.
func InvalidEvent(t Type, op string, err error) *Error {
	return &Error{Kind: KindInvalidEvent, Processor: t, Op: op, Err: err}
}

// StorageError wraps a database failure. pool tells whether the failure was
// about acquiring a connection rather than executing a statement.
func StorageError(t Type, op string, err error, pool bool) *Error {
	kind := KindDatabase
	if pool {
		kind = KindDatabasePool
	}
	return &Error{Kind: kind, Processor: t, Op: op, Err: err}
}

// KindOf returns the kind of a processor error, or zero if err is not one.
func KindOf(err error) ErrorKind {
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Kind
	}
	return 0
}
