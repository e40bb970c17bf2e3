package cis2security

import (
	"database/sql"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/RWAIndexor/internal/db"
	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	"github.com/goran-ethernal/RWAIndexor/internal/processors/processortest"
	"github.com/goran-ethernal/RWAIndexor/internal/serial"
	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
	"github.com/goran-ethernal/RWAIndexor/pkg/processor"
	"github.com/stretchr/testify/require"
)

var (
	token    = chain.ContractAddress{Index: 7001}
	tokenID  = chain.TokenID{0x01}
	registry = chain.ContractAddress{Index: 7002}
)

func mintEvent(id chain.TokenID, amt uint64, owner chain.Address) []byte {
	return serial.NewWriter().U8(TagMint).TokenID(id).TokenAmountU64(amt).Address(owner).Bytes()
}

func burnEvent(id chain.TokenID, amt uint64, owner chain.Address) []byte {
	return serial.NewWriter().U8(TagBurn).TokenID(id).TokenAmountU64(amt).Address(owner).Bytes()
}

func transferEvent(id chain.TokenID, amt uint64, from, to chain.Address) []byte {
	return serial.NewWriter().U8(TagTransfer).TokenID(id).TokenAmountU64(amt).Address(from).Address(to).Bytes()
}

func freezeEvent(tag uint8, id chain.TokenID, amt uint64, addr chain.Address) []byte {
	return serial.NewWriter().U8(tag).TokenID(id).TokenAmountU64(amt).Address(addr).Bytes()
}

func newTestProcessor(t *testing.T) (*Processor, *sql.DB) {
	t.Helper()

	p := New(processor.Identity{ModuleRef: common.HexToHash("0x01"), ContractName: "init_rwa_security_cis2"},
		logger.NewNopLogger())
	return p, processortest.NewDB(t)
}

func balances(t *testing.T, sqlDB *sql.DB, holder chain.Address) (string, string) {
	t.Helper()

	var balance, frozen string
	require.NoError(t, sqlDB.QueryRow(
		`SELECT balance, frozen_balance FROM cis2_holders WHERE contract = $1 AND token_id = $2 AND holder = $3`,
		db.ContractAddressText(token), tokenID.String(), holder.String()).Scan(&balance, &frozen))
	return balance, frozen
}

func supply(t *testing.T, sqlDB *sql.DB) string {
	t.Helper()

	return processortest.QueryString(t, sqlDB,
		`SELECT supply FROM cis2_tokens WHERE contract = $1 AND token_id = $2`,
		db.ContractAddressText(token), tokenID.String())
}

func TestProcessor_MintTransferBurn(t *testing.T) {
	p, sqlDB := newTestProcessor(t)
	alice := chain.AccountAddr(processortest.Account(t, 1))
	bob := chain.AccountAddr(processortest.Account(t, 2))

	require.NoError(t, processortest.Run(t, sqlDB, p, processortest.Call(token, 10,
		mintEvent(tokenID, 100, alice),
		transferEvent(tokenID, 30, alice, bob),
	)))
	require.NoError(t, processortest.Run(t, sqlDB, p, processortest.Call(token, 11,
		burnEvent(tokenID, 20, alice),
	)))

	aliceBalance, _ := balances(t, sqlDB, alice)
	bobBalance, _ := balances(t, sqlDB, bob)
	require.Equal(t, "50", aliceBalance)
	require.Equal(t, "30", bobBalance)
	require.Equal(t, "80", supply(t, sqlDB))

	// mint, transfer out, transfer in, burn
	require.Equal(t, 4, processortest.Count(t, sqlDB, `SELECT COUNT(*) FROM cis2_balance_updates`))
	require.Equal(t, "50", processortest.QueryString(t, sqlDB,
		`SELECT balance FROM cis2_balance_updates WHERE update_type = $1`, UpdateBurn))
}

func TestProcessor_LargeAmounts(t *testing.T) {
	p, sqlDB := newTestProcessor(t)
	alice := chain.AccountAddr(processortest.Account(t, 1))

	huge, ok := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)
	require.True(t, ok)

	ev := serial.NewWriter().U8(TagMint).TokenID(tokenID).TokenAmount(huge).Address(alice).Bytes()
	require.NoError(t, processortest.Run(t, sqlDB, p, processortest.Call(token, 10, ev)))

	balance, _ := balances(t, sqlDB, alice)
	require.Equal(t, huge.String(), balance)
}

func TestProcessor_TransferErrors(t *testing.T) {
	p, sqlDB := newTestProcessor(t)
	alice := chain.AccountAddr(processortest.Account(t, 1))
	bob := chain.AccountAddr(processortest.Account(t, 2))

	// unknown sender
	err := processortest.Run(t, sqlDB, p, processortest.Call(token, 10, transferEvent(tokenID, 1, bob, alice)))
	require.Equal(t, processor.KindNotFound, processor.KindOf(err))

	require.NoError(t, processortest.Run(t, sqlDB, p, processortest.Call(token, 11, mintEvent(tokenID, 10, alice))))

	// overdraw rolls back the whole call, the mint in front of it included
	err = processortest.Run(t, sqlDB, p, processortest.Call(token, 12,
		mintEvent(tokenID, 5, alice),
		transferEvent(tokenID, 100, alice, bob),
	))
	require.Equal(t, processor.KindInvalidEvent, processor.KindOf(err))

	balance, _ := balances(t, sqlDB, alice)
	require.Equal(t, "10", balance)
	require.Equal(t, "10", supply(t, sqlDB))
}

func TestProcessor_SelfTransfer(t *testing.T) {
	p, sqlDB := newTestProcessor(t)
	alice := chain.AccountAddr(processortest.Account(t, 1))

	require.NoError(t, processortest.Run(t, sqlDB, p, processortest.Call(token, 10,
		mintEvent(tokenID, 100, alice),
		transferEvent(tokenID, 10, alice, alice),
	)))

	balance, _ := balances(t, sqlDB, alice)
	require.Equal(t, "100", balance)
	require.Equal(t, "100", supply(t, sqlDB))

	require.Equal(t, 1, processortest.Count(t, sqlDB,
		`SELECT COUNT(*) FROM cis2_balance_updates WHERE update_type = $1`, UpdateTransferOut))
	require.Equal(t, "100", processortest.QueryString(t, sqlDB,
		`SELECT balance FROM cis2_balance_updates WHERE update_type = $1`, UpdateTransferIn))

	// a self transfer still needs the balance
	err := processortest.Run(t, sqlDB, p, processortest.Call(token, 11,
		transferEvent(tokenID, 101, alice, alice),
	))
	require.Equal(t, processor.KindInvalidEvent, processor.KindOf(err))
}

func TestProcessor_FreezeAndUnfreeze(t *testing.T) {
	p, sqlDB := newTestProcessor(t)
	alice := chain.AccountAddr(processortest.Account(t, 1))

	require.NoError(t, processortest.Run(t, sqlDB, p, processortest.Call(token, 10,
		mintEvent(tokenID, 100, alice),
		freezeEvent(TagTokensFrozen, tokenID, 60, alice),
	)))

	// only 40 unfrozen left
	err := processortest.Run(t, sqlDB, p, processortest.Call(token, 11, freezeEvent(TagTokensFrozen, tokenID, 41, alice)))
	require.Equal(t, processor.KindInvalidEvent, processor.KindOf(err))

	err = processortest.Run(t, sqlDB, p, processortest.Call(token, 11, freezeEvent(TagTokensUnFrozen, tokenID, 61, alice)))
	require.Equal(t, processor.KindInvalidEvent, processor.KindOf(err))

	require.NoError(t, processortest.Run(t, sqlDB, p, processortest.Call(token, 12,
		freezeEvent(TagTokensUnFrozen, tokenID, 10, alice),
	)))
	_, frozen := balances(t, sqlDB, alice)
	require.Equal(t, "50", frozen)

	// burning below the frozen amount clamps it
	require.NoError(t, processortest.Run(t, sqlDB, p, processortest.Call(token, 13, burnEvent(tokenID, 70, alice))))
	balance, frozen := balances(t, sqlDB, alice)
	require.Equal(t, "30", balance)
	require.Equal(t, "30", frozen)
}

func TestProcessor_Operators(t *testing.T) {
	p, sqlDB := newTestProcessor(t)
	owner := chain.AccountAddr(processortest.Account(t, 1))
	operator := chain.ContractAddr(chain.ContractAddress{Index: 99})

	update := func(u uint8) []byte {
		return serial.NewWriter().U8(TagUpdateOperator).U8(u).Address(owner).Address(operator).Bytes()
	}

	require.NoError(t, processortest.Run(t, sqlDB, p, processortest.Call(token, 10, update(OperatorAdd), update(OperatorAdd))))
	require.Equal(t, 1, processortest.Count(t, sqlDB, `SELECT COUNT(*) FROM cis2_operators`))

	require.NoError(t, processortest.Run(t, sqlDB, p, processortest.Call(token, 11, update(OperatorRemove), update(OperatorRemove))))
	require.Equal(t, 0, processortest.Count(t, sqlDB, `SELECT COUNT(*) FROM cis2_operators`))

	err := processortest.Run(t, sqlDB, p, processortest.Call(token, 12, update(7)))
	require.Equal(t, processor.KindInvalidEvent, processor.KindOf(err))
}

func TestProcessor_MetadataAndPause(t *testing.T) {
	p, sqlDB := newTestProcessor(t)
	hash := common.HexToHash("0xabcd")

	pause := serial.NewWriter().U8(TagPaused).TokenID(tokenID).Bytes()
	err := processortest.Run(t, sqlDB, p, processortest.Call(token, 9, pause))
	require.Equal(t, processor.KindNotFound, processor.KindOf(err))

	metadata := serial.NewWriter().U8(TagTokenMetadata).TokenID(tokenID).Text("ipfs://token").OptionalHash(&hash).Bytes()
	require.NoError(t, processortest.Run(t, sqlDB, p, processortest.Call(token, 10, metadata, pause)))

	var url, storedHash string
	var paused bool
	require.NoError(t, sqlDB.QueryRow(
		`SELECT metadata_url, metadata_hash, paused FROM cis2_tokens WHERE contract = $1`,
		db.ContractAddressText(token)).Scan(&url, &storedHash, &paused))
	require.Equal(t, "ipfs://token", url)
	require.Equal(t, hash.Hex(), storedHash)
	require.True(t, paused)

	unpause := serial.NewWriter().U8(TagUnPaused).TokenID(tokenID).Bytes()
	require.NoError(t, processortest.Run(t, sqlDB, p, processortest.Call(token, 11, unpause)))
	require.Equal(t, 0, processortest.Count(t, sqlDB, `SELECT COUNT(*) FROM cis2_tokens WHERE paused = 1`))
}

func TestProcessor_AgentsAndSettings(t *testing.T) {
	p, sqlDB := newTestProcessor(t)
	agent := chain.AccountAddr(processortest.Account(t, 3))

	added := serial.NewWriter().U8(TagAgentAdded).Address(agent).U16(2).U8(0).U8(4).Bytes()
	settings := serial.NewWriter().U8(TagIdentityRegistryAdded).ContractAddress(registry).Bytes()
	require.NoError(t, processortest.Run(t, sqlDB, p, processortest.Call(token, 10, added, settings)))

	require.Equal(t, "0,4", processortest.QueryString(t, sqlDB,
		`SELECT roles FROM contract_agents WHERE contract = $1 AND agent = $2`,
		db.ContractAddressText(token), agent.String()))
	require.Equal(t, registry.String(), processortest.QueryString(t, sqlDB,
		`SELECT identity_registry FROM cis2_contract_settings WHERE contract = $1`, db.ContractAddressText(token)))

	removed := serial.NewWriter().U8(TagAgentRemoved).Address(agent).Bytes()
	require.NoError(t, processortest.Run(t, sqlDB, p, processortest.Call(token, 11, removed)))

	err := processortest.Run(t, sqlDB, p, processortest.Call(token, 12, removed))
	require.Equal(t, processor.KindNotFound, processor.KindOf(err))
}

func TestProcessor_Recovered(t *testing.T) {
	p, sqlDB := newTestProcessor(t)
	lost := chain.AccountAddr(processortest.Account(t, 1))
	recovered := chain.AccountAddr(processortest.Account(t, 2))
	other := chain.TokenID{0x02}

	require.NoError(t, processortest.Run(t, sqlDB, p, processortest.Call(token, 10,
		mintEvent(tokenID, 40, lost),
		mintEvent(other, 5, lost),
		freezeEvent(TagTokensFrozen, tokenID, 15, lost),
	)))

	ev := serial.NewWriter().U8(TagRecovered).Address(lost).Address(recovered).Bytes()
	require.NoError(t, processortest.Run(t, sqlDB, p, processortest.Call(token, 11, ev)))

	balance, frozen := balances(t, sqlDB, recovered)
	require.Equal(t, "40", balance)
	require.Equal(t, "15", frozen)

	balance, frozen = balances(t, sqlDB, lost)
	require.Equal(t, "0", balance)
	require.Equal(t, "0", frozen)

	require.Equal(t, 1, processortest.Count(t, sqlDB, `SELECT COUNT(*) FROM cis2_recoveries`))
	require.Equal(t, "5", processortest.QueryString(t, sqlDB,
		`SELECT balance FROM cis2_holders WHERE token_id = $1 AND holder = $2`, other.String(), recovered.String()))
}

func TestProcessor_InvalidPayload(t *testing.T) {
	p, sqlDB := newTestProcessor(t)

	for _, payload := range [][]byte{
		{},
		{0x10},
		{TagPaused},
		append(serial.NewWriter().U8(TagPaused).TokenID(tokenID).Bytes(), 0xff),
	} {
		err := processortest.Run(t, sqlDB, p, processortest.Call(token, 10, payload))
		require.Equal(t, processor.KindInvalidEvent, processor.KindOf(err))
	}
}

func TestDecodeStandard(t *testing.T) {
	alice := chain.AccountAddr(processortest.Account(t, 1))

	ev, err := DecodeStandard(mintEvent(tokenID, 1, alice))
	require.NoError(t, err)
	require.Equal(t, TagMint, ev.Tag())

	_, err = DecodeStandard(serial.NewWriter().U8(TagPaused).TokenID(tokenID).Bytes())
	require.ErrorIs(t, err, ErrUnknownEvent)
}
