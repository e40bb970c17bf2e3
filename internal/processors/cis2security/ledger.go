package cis2security

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"

	"github.com/goran-ethernal/RWAIndexor/internal/amount"
	"github.com/goran-ethernal/RWAIndexor/internal/db"
	"github.com/goran-ethernal/RWAIndexor/internal/processors/base"
	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
	"github.com/goran-ethernal/RWAIndexor/pkg/processor"
	"github.com/shopspring/decimal"
)

// Balance update kinds stored in cis2_balance_updates.
const (
	UpdateMint        = "mint"
	UpdateBurn        = "burn"
	UpdateTransferIn  = "transfer_in"
	UpdateTransferOut = "transfer_out"
	UpdateFrozen      = "frozen"
	UpdateUnFrozen    = "unfrozen"
	UpdateRecoveredIn = "recovered_in"
	UpdateRecovered   = "recovered_out"
)

// Holder is one address's position in one token.
type Holder struct {
	Contract          string          `meddler:"contract" json:"contract"`
	TokenID           string          `meddler:"token_id" json:"token_id"`
	Holder            string          `meddler:"holder" json:"holder"`
	Balance           decimal.Decimal `meddler:"balance,decimal" json:"balance"`
	FrozenBalance     decimal.Decimal `meddler:"frozen_balance,decimal" json:"frozen_balance"`
	CreateBlockHeight uint64          `meddler:"create_block_height" json:"create_block_height"`
	UpdateBlockHeight uint64          `meddler:"update_block_height" json:"update_block_height"`
}

// Unfrozen is the part of the balance the holder can move.
func (h *Holder) Unfrozen() decimal.Decimal {
	return h.Balance.Sub(h.FrozenBalance)
}

// Token is the per-token state of a contract.
type Token struct {
	Contract          string          `meddler:"contract" json:"contract"`
	TokenID           string          `meddler:"token_id" json:"token_id"`
	MetadataURL       string          `meddler:"metadata_url" json:"metadata_url"`
	MetadataHash      sql.NullString  `meddler:"metadata_hash" json:"-"`
	Supply            decimal.Decimal `meddler:"supply,decimal" json:"supply"`
	Paused            bool            `meddler:"paused" json:"paused"`
	CreateBlockHeight uint64          `meddler:"create_block_height" json:"create_block_height"`
	UpdateBlockHeight uint64          `meddler:"update_block_height" json:"update_block_height"`
}

// Ledger applies CIS2 security events. It is shared by every family whose
// contracts embed a CIS2 token.
type Ledger struct {
	base.Processor
}

// NewLedger returns a ledger reporting errors as p.
func NewLedger(p base.Processor) *Ledger {
	return &Ledger{Processor: p}
}

// Apply applies event i of call.
func (l *Ledger) Apply(ctx context.Context, tx *sql.Tx, call processor.Call, i int, ev Event) error {
	switch e := ev.(type) {
	case Mint:
		return l.mint(ctx, tx, call, i, e)
	case Burn:
		return l.burn(ctx, tx, call, i, e)
	case Transfer:
		return l.transfer(ctx, tx, call, i, e)
	case UpdateOperator:
		return l.updateOperator(ctx, tx, call, e)
	case TokenMetadata:
		return l.tokenMetadata(ctx, tx, call, e)
	case TokensFrozen:
		return l.freeze(ctx, tx, call, i, e.TokenID, e.Amount, e.Address, true)
	case TokensUnFrozen:
		return l.freeze(ctx, tx, call, i, e.TokenID, e.Amount, e.Address, false)
	case AgentAdded:
		return l.AddAgent(ctx, tx, call.Contract, e.Agent, e.Roles, call.BlockHeight)
	case AgentRemoved:
		return l.RemoveAgent(ctx, tx, call.Contract, e.Agent)
	case Paused:
		return l.setPaused(ctx, tx, call, e.TokenID, true)
	case UnPaused:
		return l.setPaused(ctx, tx, call, e.TokenID, false)
	case IdentityRegistryAdded:
		return l.setting(ctx, tx, call, "identity_registry", e.Contract)
	case ComplianceAdded:
		return l.setting(ctx, tx, call, "compliance", e.Contract)
	case Recovered:
		return l.recover(ctx, tx, call, i, e)
	default:
		return l.UnknownEvent(ev.Tag())
	}
}

func (l *Ledger) mint(ctx context.Context, tx *sql.Tx, call processor.Call, i int, e Mint) error {
	amt, err := l.amount(e.Amount)
	if err != nil {
		return err
	}

	token, err := l.loadToken(ctx, tx, call.Contract, e.TokenID)
	if err != nil {
		return err
	}
	if token == nil {
		token = &Token{
			Contract:          db.ContractAddressText(call.Contract),
			TokenID:           e.TokenID.String(),
			Supply:            decimal.Zero,
			CreateBlockHeight: call.BlockHeight,
		}
	}
	token.Supply = token.Supply.Add(amt)
	if err := l.saveToken(ctx, tx, token, call.BlockHeight); err != nil {
		return err
	}

	holder, err := l.holderOrNew(ctx, tx, call, e.TokenID, e.Owner)
	if err != nil {
		return err
	}
	holder.Balance = holder.Balance.Add(amt)
	return l.saveHolder(ctx, tx, call, i, holder, UpdateMint, amt)
}

func (l *Ledger) burn(ctx context.Context, tx *sql.Tx, call processor.Call, i int, e Burn) error {
	amt, err := l.amount(e.Amount)
	if err != nil {
		return err
	}

	holder, err := l.existingHolder(ctx, tx, call.Contract, e.TokenID, e.Owner, "burn")
	if err != nil {
		return err
	}
	if holder.Balance, err = l.debit(holder.Balance, amt, "burn", holder); err != nil {
		return err
	}
	clampFrozen(holder)

	token, err := l.loadToken(ctx, tx, call.Contract, e.TokenID)
	if err != nil {
		return err
	}
	if token == nil {
		return l.NotFound("burn", "token %s of %s not found", e.TokenID, call.Contract)
	}
	if token.Supply, err = l.debit(token.Supply, amt, "burn supply", holder); err != nil {
		return err
	}
	if err := l.saveToken(ctx, tx, token, call.BlockHeight); err != nil {
		return err
	}

	return l.saveHolder(ctx, tx, call, i, holder, UpdateBurn, amt)
}

func (l *Ledger) transfer(ctx context.Context, tx *sql.Tx, call processor.Call, i int, e Transfer) error {
	amt, err := l.amount(e.Amount)
	if err != nil {
		return err
	}

	from, err := l.existingHolder(ctx, tx, call.Contract, e.TokenID, e.From, "transfer")
	if err != nil {
		return err
	}
	if from.Balance, err = l.debit(from.Balance, amt, "transfer", from); err != nil {
		return err
	}
	clampFrozen(from)
	if err := l.saveHolder(ctx, tx, call, i, from, UpdateTransferOut, amt); err != nil {
		return err
	}

	to, err := l.holderOrNew(ctx, tx, call, e.TokenID, e.To)
	if err != nil {
		return err
	}
	to.Balance = to.Balance.Add(amt)
	return l.saveHolder(ctx, tx, call, i, to, UpdateTransferIn, amt)
}

func (l *Ledger) freeze(ctx context.Context, tx *sql.Tx, call processor.Call, i int,
	tokenID chain.TokenID, raw *big.Int, addr chain.Address, freeze bool) error {
	op := "unfreeze"
	if freeze {
		op = "freeze"
	}

	amt, err := l.amount(raw)
	if err != nil {
		return err
	}

	holder, err := l.existingHolder(ctx, tx, call.Contract, tokenID, addr, op)
	if err != nil {
		return err
	}

	kind := UpdateUnFrozen
	if freeze {
		if holder.Unfrozen().LessThan(amt) {
			return l.Invalid(op, fmt.Errorf("holder %s freezes %s with unfrozen balance %s",
				holder.Holder, amt, holder.Unfrozen()))
		}
		holder.FrozenBalance = holder.FrozenBalance.Add(amt)
		kind = UpdateFrozen
	} else if holder.FrozenBalance, err = l.debit(holder.FrozenBalance, amt, op, holder); err != nil {
		return err
	}

	return l.saveHolder(ctx, tx, call, i, holder, kind, amt)
}

func (l *Ledger) updateOperator(ctx context.Context, tx *sql.Tx, call processor.Call, e UpdateOperator) error {
	contract := db.ContractAddressText(call.Contract)
	if e.Update == OperatorAdd {
		_, err := l.Exec(ctx, tx, "add operator", `
			INSERT INTO cis2_operators (contract, owner, operator, block_height) VALUES ($1, $2, $3, $4)
			ON CONFLICT (contract, owner, operator) DO NOTHING`,
			contract, e.Owner.String(), e.Operator.String(), call.BlockHeight)
		return err
	}

	// CIS2 allows removing an address that is not an operator.
	_, err := l.Exec(ctx, tx, "remove operator",
		`DELETE FROM cis2_operators WHERE contract = $1 AND owner = $2 AND operator = $3`,
		contract, e.Owner.String(), e.Operator.String())
	return err
}

func (l *Ledger) tokenMetadata(ctx context.Context, tx *sql.Tx, call processor.Call, e TokenMetadata) error {
	token, err := l.loadToken(ctx, tx, call.Contract, e.TokenID)
	if err != nil {
		return err
	}
	if token == nil {
		token = &Token{
			Contract:          db.ContractAddressText(call.Contract),
			TokenID:           e.TokenID.String(),
			Supply:            decimal.Zero,
			CreateBlockHeight: call.BlockHeight,
		}
	}

	token.MetadataURL = e.URL
	token.MetadataHash = sql.NullString{}
	if e.Hash != nil {
		token.MetadataHash = sql.NullString{String: e.Hash.Hex(), Valid: true}
	}
	return l.saveToken(ctx, tx, token, call.BlockHeight)
}

func (l *Ledger) setPaused(ctx context.Context, tx *sql.Tx, call processor.Call, tokenID chain.TokenID, paused bool) error {
	flag := 0
	if paused {
		flag = 1
	}
	return l.ExecOne(ctx, tx, "pause", fmt.Sprintf("token %s", tokenID),
		`UPDATE cis2_tokens SET paused = $1, update_block_height = $2 WHERE contract = $3 AND token_id = $4`,
		flag, call.BlockHeight, db.ContractAddressText(call.Contract), tokenID.String())
}

func (l *Ledger) setting(ctx context.Context, tx *sql.Tx, call processor.Call, column string, value chain.ContractAddress) error {
	query := fmt.Sprintf(`
		INSERT INTO cis2_contract_settings (contract, %[1]s, update_block_height) VALUES ($1, $2, $3)
		ON CONFLICT (contract) DO UPDATE SET %[1]s = excluded.%[1]s, update_block_height = excluded.update_block_height`,
		column)
	_, err := l.Exec(ctx, tx, "set "+column, query,
		db.ContractAddressText(call.Contract), value.String(), call.BlockHeight)
	return err
}

// recover moves every position of the lost address to the new one.
func (l *Ledger) recover(ctx context.Context, tx *sql.Tx, call processor.Call, i int, e Recovered) error {
	if err := l.InsertEvent(ctx, tx, "cis2_recoveries", call, i,
		base.Column{Name: "lost_address", Value: e.LostAccount.String()},
		base.Column{Name: "new_address", Value: e.NewAccount.String()},
	); err != nil {
		return err
	}
	if e.LostAccount.String() == e.NewAccount.String() {
		return nil
	}

	var lost []*Holder
	if err := db.QueryAll(ctx, tx, &lost,
		`SELECT * FROM cis2_holders WHERE contract = $1 AND holder = $2 ORDER BY token_id`,
		db.ContractAddressText(call.Contract), e.LostAccount.String()); err != nil {
		return l.Storage("recover", err)
	}

	for _, old := range lost {
		tokenID, err := chain.ParseTokenID(old.TokenID)
		if err != nil {
			return l.Invalid("recover", err)
		}

		moved := old.Balance
		frozen := old.FrozenBalance

		old.Balance = decimal.Zero
		old.FrozenBalance = decimal.Zero
		if err := l.saveHolder(ctx, tx, call, i, old, UpdateRecovered, moved); err != nil {
			return err
		}

		to, err := l.holderOrNew(ctx, tx, call, tokenID, e.NewAccount)
		if err != nil {
			return err
		}
		to.Balance = to.Balance.Add(moved)
		to.FrozenBalance = to.FrozenBalance.Add(frozen)
		if err := l.saveHolder(ctx, tx, call, i, to, UpdateRecoveredIn, moved); err != nil {
			return err
		}
	}

	return nil
}

func (l *Ledger) loadToken(ctx context.Context, tx *sql.Tx, contract chain.ContractAddress, tokenID chain.TokenID) (*Token, error) {
	var t Token
	err := db.QueryRow(ctx, tx, &t, `SELECT * FROM cis2_tokens WHERE contract = $1 AND token_id = $2`,
		db.ContractAddressText(contract), tokenID.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, l.Storage("load token", err)
	}
	return &t, nil
}

func (l *Ledger) saveToken(ctx context.Context, tx *sql.Tx, t *Token, height uint64) error {
	paused := 0
	if t.Paused {
		paused = 1
	}
	_, err := l.Exec(ctx, tx, "save token", `
		INSERT INTO cis2_tokens (contract, token_id, metadata_url, metadata_hash, supply, paused,
		                         create_block_height, update_block_height)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (contract, token_id) DO UPDATE SET
			metadata_url        = excluded.metadata_url,
			metadata_hash       = excluded.metadata_hash,
			supply              = excluded.supply,
			paused              = excluded.paused,
			update_block_height = excluded.update_block_height`,
		t.Contract, t.TokenID, t.MetadataURL, t.MetadataHash, t.Supply.String(), paused,
		t.CreateBlockHeight, height)
	return err
}

// LoadHolder returns a holder row, or nil when the address never held the token.
func (l *Ledger) LoadHolder(ctx context.Context, tx *sql.Tx, contract chain.ContractAddress,
	tokenID chain.TokenID, addr chain.Address) (*Holder, error) {
	var h Holder
	err := db.QueryRow(ctx, tx, &h,
		`SELECT * FROM cis2_holders WHERE contract = $1 AND token_id = $2 AND holder = $3`,
		db.ContractAddressText(contract), tokenID.String(), addr.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, l.Storage("load holder", err)
	}
	return &h, nil
}

func (l *Ledger) existingHolder(ctx context.Context, tx *sql.Tx, contract chain.ContractAddress,
	tokenID chain.TokenID, addr chain.Address, op string) (*Holder, error) {
	h, err := l.LoadHolder(ctx, tx, contract, tokenID, addr)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, l.NotFound(op, "holder %s of token %s on %s not found", addr, tokenID, contract)
	}
	return h, nil
}

func (l *Ledger) holderOrNew(ctx context.Context, tx *sql.Tx, call processor.Call, tokenID chain.TokenID, addr chain.Address) (*Holder, error) {
	h, err := l.LoadHolder(ctx, tx, call.Contract, tokenID, addr)
	if err != nil || h != nil {
		return h, err
	}
	return &Holder{
		Contract:          db.ContractAddressText(call.Contract),
		TokenID:           tokenID.String(),
		Holder:            addr.String(),
		Balance:           decimal.Zero,
		FrozenBalance:     decimal.Zero,
		CreateBlockHeight: call.BlockHeight,
	}, nil
}

// saveHolder writes the holder and appends its balance history entry.
func (l *Ledger) saveHolder(ctx context.Context, tx *sql.Tx, call processor.Call, i int,
	h *Holder, kind string, amt decimal.Decimal) error {
	if _, err := l.Exec(ctx, tx, "save holder", `
		INSERT INTO cis2_holders (contract, token_id, holder, balance, frozen_balance,
		                          create_block_height, update_block_height)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (contract, token_id, holder) DO UPDATE SET
			balance             = excluded.balance,
			frozen_balance      = excluded.frozen_balance,
			update_block_height = excluded.update_block_height`,
		h.Contract, h.TokenID, h.Holder, h.Balance.String(), h.FrozenBalance.String(),
		h.CreateBlockHeight, call.BlockHeight); err != nil {
		return err
	}

	return l.InsertEvent(ctx, tx, "cis2_balance_updates", call, i,
		base.Column{Name: "token_id", Value: h.TokenID},
		base.Column{Name: "holder", Value: h.Holder},
		base.Column{Name: "update_type", Value: kind},
		base.Column{Name: "amount", Value: amt.String()},
		base.Column{Name: "balance", Value: h.Balance.String()},
	)
}

func (l *Ledger) debit(balance, amt decimal.Decimal, op string, h *Holder) (decimal.Decimal, error) {
	out, ok := amount.Sub(balance, amt)
	if !ok {
		return balance, l.Invalid(op, fmt.Errorf("holder %s of token %s: %s exceeds %s",
			h.Holder, h.TokenID, amt, balance))
	}
	return out, nil
}

func (l *Ledger) amount(v *big.Int) (decimal.Decimal, error) {
	d, err := amount.FromBig(v)
	if err != nil {
		return decimal.Zero, l.Invalid("amount", err)
	}
	return d, nil
}

func clampFrozen(h *Holder) {
	if h.FrozenBalance.GreaterThan(h.Balance) {
		h.FrozenBalance = h.Balance
	}
}
