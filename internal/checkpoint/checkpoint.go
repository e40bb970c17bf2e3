// Package checkpoint persists the last block whose effects are fully applied.
package checkpoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goran-ethernal/RWAIndexor/internal/common"
	"github.com/goran-ethernal/RWAIndexor/internal/db"
	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	"github.com/goran-ethernal/RWAIndexor/internal/metrics"
	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
)

// Checkpoint is the last processed block.
type Checkpoint struct {
	Height   uint64          `json:"block_height"`
	Hash     chain.BlockHash `json:"block_hash"`
	SlotTime time.Time       `json:"block_slot_time"`
}

// row is the stored form. Slot time is kept in unix milliseconds.
type row struct {
	ID            int             `meddler:"id,pk"`
	BlockHeight   uint64          `meddler:"block_height"`
	BlockHash     chain.BlockHash `meddler:"block_hash,hash"`
	BlockSlotTime int64           `meddler:"block_slot_time"`
	UpdatedAt     int64           `meddler:"updated_at"`
}

const upsertSQL = `
INSERT INTO listener_checkpoint (id, block_height, block_hash, block_slot_time, updated_at)
VALUES (1, $1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET
    block_height    = excluded.block_height,
    block_hash      = excluded.block_hash,
    block_slot_time = excluded.block_slot_time,
    updated_at      = excluded.updated_at`

const storeName = "checkpoint"

// Store reads and writes the checkpoint.
type Store struct {
	db          *sql.DB
	log         *logger.Logger
	maintenance db.Maintenance
}

// NewStore creates a checkpoint store. maintenance may be nil.
func NewStore(sqlDB *sql.DB, log *logger.Logger, maintenance db.Maintenance) *Store {
	return &Store{
		db:          sqlDB,
		log:         log.WithComponent(common.ComponentCheckpoint),
		maintenance: maintenance,
	}
}

// Last returns the latest checkpoint, or nil if nothing was processed yet.
func (s *Store) Last(ctx context.Context) (*Checkpoint, error) {
	return last(ctx, s.db)
}

// LastTx reads the checkpoint inside an open transaction.
func (s *Store) LastTx(ctx context.Context, tx *sql.Tx) (*Checkpoint, error) {
	return last(ctx, tx)
}

func last(ctx context.Context, q db.Querier) (*Checkpoint, error) {
	start := time.Now()
	metrics.DBQueryInc(storeName, "last")

	var r row
	err := db.QueryRow(ctx, q, &r,
		`SELECT * FROM listener_checkpoint ORDER BY block_height DESC LIMIT 1`)
	metrics.DBQueryDuration(storeName, "last", time.Since(start))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		metrics.DBErrorsInc(storeName, db.ErrorClass(err))
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	return &Checkpoint{
		Height:   r.BlockHeight,
		Hash:     r.BlockHash,
		SlotTime: time.UnixMilli(r.BlockSlotTime).UTC(),
	}, nil
}

// SaveTx writes cp inside tx, so it commits together with the block's domain writes.
func (s *Store) SaveTx(ctx context.Context, tx *sql.Tx, cp Checkpoint) error {
	start := time.Now()
	metrics.DBQueryInc(storeName, "save")

	_, err := tx.ExecContext(ctx, upsertSQL,
		cp.Height, cp.Hash.Hex(), cp.SlotTime.UnixMilli(), time.Now().Unix())
	metrics.DBQueryDuration(storeName, "save", time.Since(start))
	if err != nil {
		metrics.DBErrorsInc(storeName, db.ErrorClass(err))
		return fmt.Errorf("failed to save checkpoint at height %d: %w", cp.Height, err)
	}

	s.log.Debugw("checkpoint saved", "height", cp.Height, "hash", cp.Hash.Hex())
	return nil
}

// Save writes cp in its own transaction.
func (s *Store) Save(ctx context.Context, cp Checkpoint) (err error) {
	if s.maintenance != nil {
		unlock := s.maintenance.AcquireOperationLock()
		defer unlock()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin checkpoint transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.log.Errorf("failed to rollback checkpoint transaction: %v", rbErr)
			}
		}
	}()

	if err = s.SaveTx(ctx, tx, cp); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit checkpoint: %w", err)
	}

	return nil
}
