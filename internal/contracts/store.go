// Package contracts stores the contract instances the indexer follows.
package contracts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/goran-ethernal/RWAIndexor/internal/common"
	"github.com/goran-ethernal/RWAIndexor/internal/db"
	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
	"github.com/goran-ethernal/RWAIndexor/pkg/processor"
	"github.com/russross/meddler"
)

const table = "tracked_contracts"

// ErrNotTracked is returned when a contract was never initialized by a known processor.
var ErrNotTracked = errors.New("contract is not tracked")

// TrackedContract is a contract instance observed through an Init call.
// ProcessorType never changes after creation.
type TrackedContract struct {
	Address            chain.ContractAddress `meddler:"contract_address,contract" json:"address"`
	ModuleRef          chain.ModuleRef       `meddler:"module_ref,hash" json:"module_ref"`
	ContractName       string                `meddler:"contract_name" json:"contract_name"`
	Owner              chain.AccountAddress  `meddler:"owner" json:"owner"`
	ProcessorType      processor.Type        `meddler:"processor_type" json:"processor_type"`
	CreatedAt          int64                 `meddler:"created_at" json:"created_at"`
	CreatedBlockHeight uint64                `meddler:"created_block_height" json:"created_block_height"`
	CreatedTxHash      chain.TxHash          `meddler:"created_tx_hash,hash" json:"created_tx_hash"`
	UpdatedBlockHeight uint64                `meddler:"updated_block_height" json:"updated_block_height"`
}

// ListFilter narrows List. A zero Limit returns every row.
type ListFilter struct {
	Type   processor.Type
	Limit  int
	Offset int
}

// Store persists tracked contracts.
type Store struct {
	db  *sql.DB
	log *logger.Logger
}

// NewStore creates a tracked contract store.
func NewStore(sqlDB *sql.DB, log *logger.Logger) *Store {
	return &Store{
		db:  sqlDB,
		log: log.WithComponent(common.ComponentContracts),
	}
}

// DB returns the underlying pool for read paths that open no transaction.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Insert records a newly initialized contract.
func (s *Store) Insert(_ context.Context, tx *sql.Tx, c *TrackedContract) error {
	if !c.ProcessorType.Valid() {
		return fmt.Errorf("contract %s: invalid processor type %d", c.Address, uint8(c.ProcessorType))
	}
	if c.UpdatedBlockHeight == 0 {
		c.UpdatedBlockHeight = c.CreatedBlockHeight
	}

	if err := meddler.Insert(tx, table, c); err != nil {
		return fmt.Errorf("failed to insert tracked contract %s: %w", c.Address, err)
	}

	s.log.Infow("tracking contract",
		"address", c.Address.String(),
		"processor", c.ProcessorType.String(),
		"module_ref", c.ModuleRef.Hex(),
		"height", c.CreatedBlockHeight)

	return nil
}

// Get loads a tracked contract. It returns ErrNotTracked when the address is unknown.
func (s *Store) Get(ctx context.Context, q db.Querier, addr chain.ContractAddress) (*TrackedContract, error) {
	var c TrackedContract
	err := db.QueryRow(ctx, q, &c,
		`SELECT * FROM tracked_contracts WHERE contract_address = $1`, db.ContractAddressText(addr))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotTracked
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tracked contract %s: %w", addr, err)
	}
	return &c, nil
}

// UpdateModuleRef follows a contract upgrade. The processor type is left untouched.
func (s *Store) UpdateModuleRef(ctx context.Context, tx *sql.Tx,
	addr chain.ContractAddress, ref chain.ModuleRef, height uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE tracked_contracts SET module_ref = $1, updated_block_height = $2 WHERE contract_address = $3`,
		ref.Hex(), height, db.ContractAddressText(addr))
	if err != nil {
		return fmt.Errorf("failed to update module of %s: %w", addr, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update module of %s: %w", addr, err)
	}
	if n == 0 {
		return ErrNotTracked
	}

	s.log.Infow("contract upgraded", "address", addr.String(), "module_ref", ref.Hex(), "height", height)
	return nil
}

// List returns tracked contracts ordered by creation height.
func (s *Store) List(ctx context.Context, f ListFilter) ([]*TrackedContract, error) {
	query, args := buildListQuery("SELECT *", f)
	query += " ORDER BY created_block_height, contract_address"

	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	var out []*TrackedContract
	if err := db.QueryAll(ctx, s.db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list tracked contracts: %w", err)
	}
	return out, nil
}

// Count returns the number of tracked contracts matching the type filter.
func (s *Store) Count(ctx context.Context, f ListFilter) (int, error) {
	query, args := buildListQuery("SELECT COUNT(*)", f)

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tracked contracts: %w", err)
	}
	return n, nil
}

func buildListQuery(selectPart string, f ListFilter) (string, []any) {
	var (
		sb   strings.Builder
		args []any
	)

	sb.WriteString(selectPart)
	sb.WriteString(" FROM tracked_contracts")
	if f.Type != 0 {
		args = append(args, f.Type)
		sb.WriteString(" WHERE processor_type = $1")
	}

	return sb.String(), args
}
