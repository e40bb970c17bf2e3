// Package mintfund indexes security mint fund contracts: funds raising a
// currency token in exchange for a security token, and their investors.
package mintfund

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/goran-ethernal/RWAIndexor/internal/amount"
	"github.com/goran-ethernal/RWAIndexor/internal/db"
	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	"github.com/goran-ethernal/RWAIndexor/internal/processors/base"
	"github.com/goran-ethernal/RWAIndexor/pkg/processor"
	"github.com/shopspring/decimal"
)

// Investment record types.
const (
	RecordInvested  = "invested"
	RecordCancelled = "cancelled"
	RecordClaimed   = "claimed"
	RecordDisbursed = "disbursed"
)

var _ processor.Processor = (*Processor)(nil)

// Fund is a row of security_mint_funds.
type Fund struct {
	Contract              string          `meddler:"contract" json:"contract"`
	FundID                string          `meddler:"fund_id" json:"fund_id"`
	TokenContract         string          `meddler:"token_contract" json:"token_contract"`
	TokenID               string          `meddler:"token_id" json:"token_id"`
	CurrencyTokenContract string          `meddler:"currency_token_contract" json:"currency_token_contract"`
	CurrencyTokenID       string          `meddler:"currency_token_id" json:"currency_token_id"`
	RateNumerator         string          `meddler:"rate_numerator" json:"rate_numerator"`
	RateDenominator       string          `meddler:"rate_denominator" json:"rate_denominator"`
	State                 FundState       `meddler:"fund_state" json:"fund_state"`
	Receiver              sql.NullString  `meddler:"receiver" json:"-"`
	CurrencyAmount        decimal.Decimal `meddler:"currency_amount,decimal" json:"currency_amount"`
	TokenAmount           decimal.Decimal `meddler:"token_amount,decimal" json:"token_amount"`
	CreateBlockHeight     uint64          `meddler:"create_block_height" json:"create_block_height"`
	UpdateBlockHeight     uint64          `meddler:"update_block_height" json:"update_block_height"`
}

// Investor is a row of security_mint_fund_investors.
type Investor struct {
	Contract          string          `meddler:"contract" json:"contract"`
	FundID            string          `meddler:"fund_id" json:"fund_id"`
	Investor          string          `meddler:"investor" json:"investor"`
	CurrencyAmount    decimal.Decimal `meddler:"currency_amount,decimal" json:"currency_amount"`
	TokenAmount       decimal.Decimal `meddler:"token_amount,decimal" json:"token_amount"`
	CreateBlockHeight uint64          `meddler:"create_block_height" json:"create_block_height"`
	UpdateBlockHeight uint64          `meddler:"update_block_height" json:"update_block_height"`
}

// Processor handles contracts of type security_mint_fund.
type Processor struct {
	base.Processor
}

// New creates a mint fund processor for the given identity.
func New(identity processor.Identity, log *logger.Logger) *Processor {
	return &Processor{Processor: base.New(processor.TypeSecurityMintFund, identity, log)}
}

// Process decodes and applies every event of the call in order.
func (p *Processor) Process(ctx context.Context, tx *sql.Tx, call processor.Call) error {
	for i, payload := range call.Events {
		ev, err := Decode(payload)
		if err != nil {
			return p.Invalid("decode", fmt.Errorf("event %d: %w", i, err))
		}

		if err := p.apply(ctx, tx, call, i, ev); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) apply(ctx context.Context, tx *sql.Tx, call processor.Call, i int, ev Event) error {
	switch e := ev.(type) {
	case AgentAdded:
		return p.AddAgent(ctx, tx, call.Contract, e.Agent, nil, call.BlockHeight)
	case AgentRemoved:
		return p.RemoveAgent(ctx, tx, call.Contract, e.Agent)
	case FundAdded:
		return p.addFund(ctx, tx, call, e)
	case FundRemoved:
		return p.removeFund(ctx, tx, call, e)
	case FundStateUpdated:
		return p.updateState(ctx, tx, call, e)
	case Invested:
		return p.invest(ctx, tx, call, i, Investment(e))
	case InvestmentCancelled:
		return p.settle(ctx, tx, call, i, Investment(e), RecordCancelled, true, true)
	case InvestmentClaimed:
		return p.settle(ctx, tx, call, i, Investment(e), RecordClaimed, false, true)
	case InvestmentDisbursed:
		return p.settle(ctx, tx, call, i, Investment(e), RecordDisbursed, true, false)
	default:
		return p.UnknownEvent(ev.Tag())
	}
}

func (p *Processor) addFund(ctx context.Context, tx *sql.Tx, call processor.Call, e FundAdded) error {
	n, err := p.Exec(ctx, tx, "add fund", `
		INSERT INTO security_mint_funds (contract, fund_id, token_contract, token_id,
		                                 currency_token_contract, currency_token_id,
		                                 rate_numerator, rate_denominator, fund_state,
		                                 create_block_height, update_block_height)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (contract, fund_id) DO NOTHING`,
		db.ContractAddressText(call.Contract), fundKey(e.FundID),
		db.ContractAddressText(e.Token.Contract), e.Token.ID.String(),
		db.ContractAddressText(e.CurrencyToken.Contract), e.CurrencyToken.ID.String(),
		strconv.FormatUint(e.Rate.Numerator, 10), strconv.FormatUint(e.Rate.Denominator, 10),
		FundOpen, call.BlockHeight)
	if err != nil {
		return err
	}
	if n == 0 {
		return p.Invalid("add fund", fmt.Errorf("fund %d already exists on %s", e.FundID, call.Contract))
	}

	p.Log.Debugw("fund added", "contract", call.Contract, "fund", e.FundID, "token", e.Token)
	return nil
}

// removeFund drops the fund together with its investors. Investment records stay.
func (p *Processor) removeFund(ctx context.Context, tx *sql.Tx, call processor.Call, e FundRemoved) error {
	contract := db.ContractAddressText(call.Contract)
	if err := p.ExecOne(ctx, tx, "remove fund", fmt.Sprintf("fund %d", e.FundID),
		`DELETE FROM security_mint_funds WHERE contract = $1 AND fund_id = $2`,
		contract, fundKey(e.FundID)); err != nil {
		return err
	}

	_, err := p.Exec(ctx, tx, "remove fund investors",
		`DELETE FROM security_mint_fund_investors WHERE contract = $1 AND fund_id = $2`,
		contract, fundKey(e.FundID))
	return err
}

func (p *Processor) updateState(ctx context.Context, tx *sql.Tx, call processor.Call, e FundStateUpdated) error {
	var receiver sql.NullString
	if e.Receiver != nil {
		receiver = sql.NullString{String: e.Receiver.String(), Valid: true}
	}

	return p.ExecOne(ctx, tx, "update fund state", fmt.Sprintf("fund %d", e.FundID), `
		UPDATE security_mint_funds SET fund_state = $1, receiver = $2, update_block_height = $3
		WHERE contract = $4 AND fund_id = $5`,
		e.State, receiver, call.BlockHeight, db.ContractAddressText(call.Contract), fundKey(e.FundID))
}

func (p *Processor) invest(ctx context.Context, tx *sql.Tx, call processor.Call, i int, e Investment) error {
	security, currency, err := p.amounts(e)
	if err != nil {
		return err
	}

	fund, err := p.fund(ctx, tx, call, e.FundID)
	if err != nil {
		return err
	}

	inv, err := p.investor(ctx, tx, call, e)
	if err != nil {
		return err
	}
	if inv == nil {
		inv = &Investor{
			Contract:          fund.Contract,
			FundID:            fund.FundID,
			Investor:          e.Investor.String(),
			CurrencyAmount:    decimal.Zero,
			TokenAmount:       decimal.Zero,
			CreateBlockHeight: call.BlockHeight,
		}
	}

	inv.CurrencyAmount = inv.CurrencyAmount.Add(currency)
	inv.TokenAmount = inv.TokenAmount.Add(security)
	fund.CurrencyAmount = fund.CurrencyAmount.Add(currency)
	fund.TokenAmount = fund.TokenAmount.Add(security)

	return p.save(ctx, tx, call, i, fund, inv, RecordInvested, security, currency)
}

// settle debits the investor and the fund. Cancellation returns both legs,
// claiming delivers the security tokens and disbursement pays out the currency.
func (p *Processor) settle(ctx context.Context, tx *sql.Tx, call processor.Call, i int,
	e Investment, record string, debitCurrency, debitToken bool) error {
	security, currency, err := p.amounts(e)
	if err != nil {
		return err
	}

	fund, err := p.fund(ctx, tx, call, e.FundID)
	if err != nil {
		return err
	}

	inv, err := p.investor(ctx, tx, call, e)
	if err != nil {
		return err
	}
	if inv == nil {
		return p.NotFound(record, "investor %s of fund %d not found", e.Investor, e.FundID)
	}

	if debitCurrency {
		if inv.CurrencyAmount, err = p.debit(inv.CurrencyAmount, currency, record, "investor currency"); err != nil {
			return err
		}
		if fund.CurrencyAmount, err = p.debit(fund.CurrencyAmount, currency, record, "fund currency"); err != nil {
			return err
		}
	}
	if debitToken {
		if inv.TokenAmount, err = p.debit(inv.TokenAmount, security, record, "investor tokens"); err != nil {
			return err
		}
		if fund.TokenAmount, err = p.debit(fund.TokenAmount, security, record, "fund tokens"); err != nil {
			return err
		}
	}

	return p.save(ctx, tx, call, i, fund, inv, record, security, currency)
}

func (p *Processor) save(ctx context.Context, tx *sql.Tx, call processor.Call, i int,
	fund *Fund, inv *Investor, record string, security, currency decimal.Decimal) error {
	if _, err := p.Exec(ctx, tx, "save fund", `
		UPDATE security_mint_funds SET currency_amount = $1, token_amount = $2, update_block_height = $3
		WHERE contract = $4 AND fund_id = $5`,
		fund.CurrencyAmount.String(), fund.TokenAmount.String(), call.BlockHeight,
		fund.Contract, fund.FundID); err != nil {
		return err
	}

	if _, err := p.Exec(ctx, tx, "save investor", `
		INSERT INTO security_mint_fund_investors (contract, fund_id, investor, currency_amount, token_amount,
		                                          create_block_height, update_block_height)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (contract, fund_id, investor) DO UPDATE SET
			currency_amount     = excluded.currency_amount,
			token_amount        = excluded.token_amount,
			update_block_height = excluded.update_block_height`,
		inv.Contract, inv.FundID, inv.Investor, inv.CurrencyAmount.String(), inv.TokenAmount.String(),
		inv.CreateBlockHeight, call.BlockHeight); err != nil {
		return err
	}

	return p.InsertEvent(ctx, tx, "security_mint_fund_investment_records", call, i,
		base.Column{Name: "fund_id", Value: fund.FundID},
		base.Column{Name: "investor", Value: inv.Investor},
		base.Column{Name: "record_type", Value: record},
		base.Column{Name: "currency_amount", Value: currency.String()},
		base.Column{Name: "token_amount", Value: security.String()},
	)
}

func (p *Processor) fund(ctx context.Context, tx *sql.Tx, call processor.Call, id uint64) (*Fund, error) {
	var f Fund
	err := db.QueryRow(ctx, tx, &f, `SELECT * FROM security_mint_funds WHERE contract = $1 AND fund_id = $2`,
		db.ContractAddressText(call.Contract), fundKey(id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, p.NotFound("load fund", "fund %d on %s not found", id, call.Contract)
	}
	if err != nil {
		return nil, p.Storage("load fund", err)
	}
	return &f, nil
}

func (p *Processor) investor(ctx context.Context, tx *sql.Tx, call processor.Call, e Investment) (*Investor, error) {
	var inv Investor
	err := db.QueryRow(ctx, tx, &inv, `
		SELECT * FROM security_mint_fund_investors WHERE contract = $1 AND fund_id = $2 AND investor = $3`,
		db.ContractAddressText(call.Contract), fundKey(e.FundID), e.Investor.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, p.Storage("load investor", err)
	}
	return &inv, nil
}

func (p *Processor) amounts(e Investment) (security, currency decimal.Decimal, err error) {
	if security, err = amount.FromBig(e.SecurityAmount); err != nil {
		return security, currency, p.Invalid("security amount", err)
	}
	if currency, err = amount.FromBig(e.CurrencyAmount); err != nil {
		return security, currency, p.Invalid("currency amount", err)
	}
	return security, currency, nil
}

func (p *Processor) debit(balance, amt decimal.Decimal, op, what string) (decimal.Decimal, error) {
	out, ok := amount.Sub(balance, amt)
	if !ok {
		return balance, p.Invalid(op, fmt.Errorf("%s %s is below %s", what, balance, amt))
	}
	return out, nil
}

// fundKey is the stored form of a fund id. Ids use the full u64 range, which
// does not fit a signed BIGINT.
func fundKey(id uint64) string {
	return strconv.FormatUint(id, 10)
}
