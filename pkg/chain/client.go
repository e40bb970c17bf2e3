package chain

import (
	"context"
	"errors"
	"fmt"
)

// NodeClient is the node boundary consumed by the listener.
type NodeClient interface {
	// FinalizedBlocksFrom subscribes to finalized blocks starting at height.
	FinalizedBlocksFrom(ctx context.Context, height uint64) (BlockStream, error)

	// GetBlockInfo returns the metadata of the finalized block at height.
	GetBlockInfo(ctx context.Context, height uint64) (BlockInfo, error)

	// GetBlockTransactionEvents returns the outcome of every item in the block.
	GetBlockTransactionEvents(ctx context.Context, hash BlockHash) ([]BlockItemSummary, error)
}

// BlockStream delivers finalized blocks in height order.
type BlockStream interface {
	// Blocks yields the stream items.
	Blocks() <-chan FinalizedBlock

	// Err yields the error that ended the stream. It is closed without a value
	// when the stream ends normally.
	Err() <-chan error

	// Close releases the subscription.
	Close()
}

// ErrStreamClosed is reported when the node ends a stream without an error.
var ErrStreamClosed = errors.New("finalized block stream closed")

// NodeError is returned by every NodeClient call.
type NodeError struct {
	Op        string
	Transient bool
	Err       error
}

func (e *NodeError) Error() string {
	kind := "fatal"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("node %s (%s): %v", e.Op, kind, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps err as a transient node failure.
func NewTransientError(op string, err error) *NodeError {
	return &NodeError{Op: op, Transient: true, Err: err}
}

// NewFatalError wraps err as a fatal node failure.
func NewFatalError(op string, err error) *NodeError {
	return &NodeError{Op: op, Err: err}
}
