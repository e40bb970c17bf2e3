package contracts

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/RWAIndexor/internal/db"
	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	"github.com/goran-ethernal/RWAIndexor/internal/migrations"
	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
	"github.com/goran-ethernal/RWAIndexor/pkg/config"
	"github.com/goran-ethernal/RWAIndexor/pkg/processor"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dbConfig := config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "contracts.db")}
	dbConfig.ApplyDefaults()

	sqlDB, err := db.NewSQLiteDBFromConfig(dbConfig)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, migrations.RunMigrations(logger.NewNopLogger(), sqlDB, config.DriverSQLite))

	return NewStore(sqlDB, logger.NewNopLogger())
}

func insert(t *testing.T, s *Store, c *TrackedContract) {
	t.Helper()

	tx, err := s.db.Begin()
	require.NoError(t, err)
	require.NoError(t, s.Insert(context.Background(), tx, c))
	require.NoError(t, tx.Commit())
}

func TestStore_InsertGet(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	addr := chain.ContractAddress{Index: 4012, Subindex: 0}
	c := &TrackedContract{
		Address:            addr,
		ModuleRef:          common.HexToHash("0x01"),
		ContractName:       "init_security_mint_fund",
		Owner:              "owner",
		ProcessorType:      processor.TypeSecurityMintFund,
		CreatedAt:          1700000000,
		CreatedBlockHeight: 10,
		CreatedTxHash:      common.HexToHash("0xfeed"),
	}
	insert(t, s, c)

	got, err := s.Get(ctx, s.db, addr)
	require.NoError(t, err)
	require.Equal(t, c.ModuleRef, got.ModuleRef)
	require.Equal(t, processor.TypeSecurityMintFund, got.ProcessorType)
	require.Equal(t, chain.AccountAddress("owner"), got.Owner)
	require.Equal(t, uint64(10), got.UpdatedBlockHeight)

	_, err = s.Get(ctx, s.db, chain.ContractAddress{Index: 1})
	require.ErrorIs(t, err, ErrNotTracked)

	// duplicate init of the same address is rejected by the primary key
	tx, err := s.db.Begin()
	require.NoError(t, err)
	require.Error(t, s.Insert(ctx, tx, c))
	require.NoError(t, tx.Rollback())
}

func TestStore_InsertInvalidType(t *testing.T) {
	s := setupTestStore(t)

	tx, err := s.db.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	err = s.Insert(context.Background(), tx, &TrackedContract{ProcessorType: 0})
	require.ErrorContains(t, err, "invalid processor type")
}

func TestStore_UpdateModuleRefKeepsType(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	addr := chain.ContractAddress{Index: 1, Subindex: 2}
	insert(t, s, &TrackedContract{
		Address:            addr,
		ModuleRef:          common.HexToHash("0x01"),
		ContractName:       "init_security_sft",
		ProcessorType:      processor.TypeSecuritySftRewards,
		CreatedBlockHeight: 5,
	})

	newRef := common.HexToHash("0x02")
	tx, err := s.db.Begin()
	require.NoError(t, err)
	require.NoError(t, s.UpdateModuleRef(ctx, tx, addr, newRef, 9))
	require.ErrorIs(t, s.UpdateModuleRef(ctx, tx, chain.ContractAddress{Index: 77}, newRef, 9), ErrNotTracked)
	require.NoError(t, tx.Commit())

	got, err := s.Get(ctx, s.db, addr)
	require.NoError(t, err)
	require.Equal(t, newRef, got.ModuleRef)
	require.Equal(t, uint64(9), got.UpdatedBlockHeight)
	require.Equal(t, processor.TypeSecuritySftRewards, got.ProcessorType)
}

func TestStore_ListAndCount(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	for i, typ := range []processor.Type{
		processor.TypeSecurityCIS2,
		processor.TypeSecurityMintFund,
		processor.TypeSecurityCIS2,
	} {
		insert(t, s, &TrackedContract{
			Address:            chain.ContractAddress{Index: uint64(i + 1)},
			ProcessorType:      typ,
			CreatedBlockHeight: uint64(i + 1),
		})
	}

	all, err := s.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, uint64(1), all[0].Address.Index)

	cis2, err := s.List(ctx, ListFilter{Type: processor.TypeSecurityCIS2, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, cis2, 1)
	require.Equal(t, uint64(3), cis2[0].Address.Index)

	n, err := s.Count(ctx, ListFilter{Type: processor.TypeSecurityCIS2})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	n, err = s.Count(ctx, ListFilter{})
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

var _ db.Querier = (*sql.Tx)(nil)
