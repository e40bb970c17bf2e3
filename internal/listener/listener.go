// Package listener follows the finalized block stream, hands every block's
// contract calls to the dispatcher and advances the checkpoint.
package listener

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/goran-ethernal/RWAIndexor/internal/checkpoint"
	"github.com/goran-ethernal/RWAIndexor/internal/classifier"
	"github.com/goran-ethernal/RWAIndexor/internal/common"
	"github.com/goran-ethernal/RWAIndexor/internal/contracts"
	"github.com/goran-ethernal/RWAIndexor/internal/db"
	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	"github.com/goran-ethernal/RWAIndexor/internal/metrics"
	"github.com/goran-ethernal/RWAIndexor/internal/rpc"
	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
	"github.com/goran-ethernal/RWAIndexor/pkg/config"
	"github.com/goran-ethernal/RWAIndexor/pkg/processor"
)

// Listener turns finalized blocks into committed domain state. Each block with
// contract calls is applied in one transaction together with its checkpoint.
type Listener struct {
	cfg         config.ListenerConfig
	node        chain.NodeClient
	db          *sql.DB
	checkpoints *checkpoint.Store
	dispatcher  *Dispatcher
	maintenance db.Maintenance
	log         *logger.Logger

	state atomic.Int32

	// next is the height expected from the stream. Only the Listen goroutine touches it.
	next uint64
}

// New creates a listener. maintenance may be nil.
func New(
	cfg config.ListenerConfig,
	node chain.NodeClient,
	checkpoints *checkpoint.Store,
	store *contracts.Store,
	registry *processor.Registry,
	maintenance db.Maintenance,
	log *logger.Logger,
) (*Listener, error) {
	if node == nil {
		return nil, errors.New("node client is required")
	}
	if checkpoints == nil {
		return nil, errors.New("checkpoint store is required")
	}
	if store == nil {
		return nil, errors.New("contract store is required")
	}
	if registry == nil {
		return nil, errors.New("processor registry is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}
	if maintenance == nil {
		maintenance = &db.NoOpMaintenance{}
	}

	cfg.ApplyDefaults()

	l := &Listener{
		cfg:         cfg,
		node:        node,
		db:          store.DB(),
		checkpoints: checkpoints,
		dispatcher:  NewDispatcher(registry, store, log),
		maintenance: maintenance,
		log:         log.WithComponent(common.ComponentListener),
	}
	l.setState(StateStarting)

	return l, nil
}

// State returns the current phase.
func (l *Listener) State() State {
	return State(l.state.Load())
}

func (l *Listener) setState(s State) {
	l.state.Store(int32(s))
	metrics.ListenerStateSet(s.String(), stateNames)
	metrics.ComponentHealthSet(common.ComponentListener, !s.Terminal())
}

// Listen runs until ctx is canceled, in which case it returns nil, or until a
// fatal error. Retryable failures resubscribe from the checkpoint after a
// backoff; more than Reconnect.MaxAttempts of them in a row without progress
// are fatal. Idle timeouts do not count as attempts.
func (l *Listener) Listen(ctx context.Context) error {
	l.log.Infow("listener started",
		"chunk_size", l.cfg.ChunkSize,
		"chunk_timeout", l.cfg.ChunkTimeout.String(),
		"stream_timeout", l.cfg.StreamTimeout.String())

	attempts := 0
	for {
		l.setState(StateStarting)

		progressed, err := l.subscribe(ctx)
		kind := KindOf(err)
		if ctx.Err() != nil || kind == KindCanceled {
			l.stop()
			return nil
		}

		retryable := kind.IsRetryable()
		metrics.ListenerErrorsInc(kind.String(), retryable)

		if !retryable {
			if kind == KindStreamClosed {
				l.setState(StateFatalStreamEnded)
			} else {
				l.setState(StateFatalError)
			}
			l.log.Errorw("listener stopped", "kind", kind.String(), "error", err)
			return err
		}

		if progressed {
			attempts = 0
		}
		if kind != KindStreamTimeout {
			attempts++
		}
		if attempts > l.cfg.Reconnect.MaxAttempts {
			l.setState(StateFatalError)
			l.log.Errorw("giving up on retryable failures", "attempts", attempts, "error", err)
			return fmt.Errorf("giving up after %d consecutive failures: %w", attempts, err)
		}

		l.setState(StateTimedOut)
		metrics.ResubscriptionsInc(kind.String())

		backoff := rpc.Backoff(max(attempts, 1)+1, l.cfg.Reconnect)
		l.log.Warnw("resubscribing",
			"reason", kind.String(),
			"attempt", attempts,
			"backoff", backoff.String(),
			"error", err)

		select {
		case <-ctx.Done():
			l.stop()
			return nil
		case <-time.After(backoff):
		}
	}
}

func (l *Listener) stop() {
	l.setState(StateStopped)
	l.log.Info("listener stopped")
}

// subscribe opens a stream right after the checkpoint and consumes it until it
// fails. progressed tells whether at least one block was applied.
func (l *Listener) subscribe(ctx context.Context) (progressed bool, err error) {
	cp, err := l.checkpoints.Last(ctx)
	if err != nil {
		return false, newError(storageKind(err), "read checkpoint", err)
	}

	from := l.cfg.DefaultStartHeight
	if cp != nil {
		from = cp.Height + 1
	}
	l.next = from

	stream, err := l.node.FinalizedBlocksFrom(ctx, from)
	if err != nil {
		return false, err
	}
	defer stream.Close()

	l.log.Infow("subscribed to finalized blocks", "from", from)

	for {
		l.setState(StateStreaming)

		chunk, streamErr := l.nextChunk(ctx, stream)
		if len(chunk) > 0 {
			l.setState(StateProcessingChunk)

			n, err := l.processChunk(ctx, chunk)
			if n > 0 {
				progressed = true
			}
			if err != nil {
				return progressed, err
			}
		}

		if streamErr != nil {
			return progressed, streamErr
		}
	}
}

// nextChunk waits up to StreamTimeout for a first block, then collects until
// ChunkSize blocks arrived or ChunkTimeout passed. Blocks received before the
// stream failed are returned along with the failure.
func (l *Listener) nextChunk(ctx context.Context, stream chain.BlockStream) ([]chain.FinalizedBlock, error) {
	idle := time.NewTimer(l.cfg.StreamTimeout.Duration)
	defer idle.Stop()

	var (
		chunk    []chain.FinalizedBlock
		deadline *time.Timer
		flush    <-chan time.Time
	)
	defer func() {
		if deadline != nil {
			deadline.Stop()
		}
	}()

	idleC := idle.C
	for {
		select {
		case <-ctx.Done():
			return nil, newError(KindCanceled, "stream", ctx.Err())

		case err, ok := <-stream.Err():
			if !ok || err == nil {
				err = chain.ErrStreamClosed
			}
			return chunk, err

		case <-idleC:
			return nil, newError(KindStreamTimeout, "stream",
				fmt.Errorf("no finalized block for %s", l.cfg.StreamTimeout.String()))

		case <-flush:
			return chunk, nil

		case b, ok := <-stream.Blocks():
			if !ok {
				return chunk, chain.ErrStreamClosed
			}

			chunk = append(chunk, b)
			if len(chunk) >= l.cfg.ChunkSize {
				return chunk, nil
			}

			if deadline == nil {
				idleC = nil
				deadline = time.NewTimer(l.cfg.ChunkTimeout.Duration)
				flush = deadline.C
			}
		}
	}
}

// processChunk applies the blocks of a chunk in order and returns how many
// were applied. Blocks already covered by the checkpoint are skipped. Empty
// blocks are checkpointed together once the chunk ends.
func (l *Listener) processChunk(ctx context.Context, chunk []chain.FinalizedBlock) (processed int, err error) {
	start := time.Now()
	work := context.WithoutCancel(ctx)

	var (
		pending *checkpoint.Checkpoint
		skipped int
	)

	for _, b := range chunk {
		if b.Height < l.next {
			skipped++
			continue
		}
		if b.Height > l.next {
			err = newError(KindStreamGap, "stream",
				fmt.Errorf("expected block %d, got %d", l.next, b.Height))
			break
		}
		if ctx.Err() != nil {
			err = newError(KindCanceled, "stream", ctx.Err())
			break
		}

		cp, committed, blockErr := l.processBlock(work, b)
		if blockErr != nil {
			err = fmt.Errorf("block %d: %w", b.Height, blockErr)
			break
		}

		if committed {
			pending = nil
		} else {
			pending = &cp
		}

		l.next = b.Height + 1
		processed++
		metrics.BlocksProcessedInc()
	}

	if pending != nil {
		if saveErr := l.checkpoints.Save(work, *pending); saveErr != nil {
			if err == nil {
				err = newError(storageKind(saveErr), "save checkpoint", saveErr)
			} else {
				l.log.Warnw("failed to checkpoint empty blocks", "height", pending.Height, "error", saveErr)
			}
		} else {
			metrics.CheckpointHeightSet(pending.Height)
		}
	}

	if skipped > 0 {
		metrics.BlocksSkippedAdd(skipped)
		l.log.Debugw("skipped already processed blocks", "count", skipped)
	}

	if elapsed := time.Since(start); processed > 0 && elapsed > 0 {
		metrics.IndexingRateLog(float64(processed) / elapsed.Seconds())
	}

	return processed, err
}

// processBlock fetches and applies one block. committed is false for blocks
// without contract calls, whose checkpoint is left to the caller.
func (l *Listener) processBlock(ctx context.Context, b chain.FinalizedBlock) (checkpoint.Checkpoint, bool, error) {
	start := time.Now()

	info, err := l.node.GetBlockInfo(ctx, b.Height)
	if err != nil {
		return checkpoint.Checkpoint{}, false, err
	}
	if info.Hash != b.Hash {
		return checkpoint.Checkpoint{}, false, newError(KindStreamGap, "block info",
			fmt.Errorf("stream announced %s, node returned %s", b.Hash.Hex(), info.Hash.Hex()))
	}

	cp := checkpoint.Checkpoint{Height: info.Height, Hash: info.Hash, SlotTime: info.SlotTime}
	if info.TransactionCount == 0 {
		return cp, false, nil
	}

	items, err := l.node.GetBlockTransactionEvents(ctx, info.Hash)
	if err != nil {
		return checkpoint.Checkpoint{}, false, err
	}

	block := classifier.ParseBlock(info, items)
	if len(block.Transactions) == 0 {
		return cp, false, nil
	}

	if err := l.commit(ctx, block, cp); err != nil {
		return checkpoint.Checkpoint{}, false, err
	}

	duration := time.Since(start)
	metrics.BlockProcessingTimeLog(duration)
	l.log.Infow("block processed",
		"height", block.Height,
		"transactions", len(block.Transactions),
		"calls", block.CallCount(),
		"duration", duration.String())

	return cp, true, nil
}

// commit dispatches block and saves cp in a single transaction.
func (l *Listener) commit(ctx context.Context, block classifier.ParsedBlock, cp checkpoint.Checkpoint) (err error) {
	unlock := l.maintenance.AcquireOperationLock()
	defer unlock()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return newError(storageKind(err), "begin block transaction", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				l.log.Errorf("failed to rollback block transaction: %v", rbErr)
			}
		}
	}()

	if err = l.dispatcher.DispatchBlock(ctx, tx, block); err != nil {
		return err
	}

	if err = l.checkpoints.SaveTx(ctx, tx, cp); err != nil {
		return newError(storageKind(err), "save checkpoint", err)
	}

	if err = tx.Commit(); err != nil {
		return newError(storageKind(err), "commit block", err)
	}

	metrics.CheckpointHeightSet(cp.Height)
	return nil
}
