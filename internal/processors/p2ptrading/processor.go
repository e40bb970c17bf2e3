// Package p2ptrading indexes peer to peer trading contracts: open sell
// positions and the trades that fill them.
package p2ptrading

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
	"github.com/goran-ethernal/RWAIndexor/internal/serial"
	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
	"github.com/goran-ethernal/RWAIndexor/pkg/processor"
	"github.com/shopspring/decimal"
)

var _ processor.Processor = (*Processor)(nil)

// Processor handles contracts of type security_p2p_trading.
type Processor struct {
	base.Processor
}

func New(identity processor.Identity, log *logger.Logger) *Processor {
	return &Processor{Processor: base.New(processor.TypeSecurityP2PTrading, identity, log)}
}

func (p *Processor) Process(ctx context.Context, tx *sql.Tx, call processor.Call) error {
	for i, payload := range call.Events {
		ev, err := Decode(payload)
		if err != nil {
			return p.Invalid("decode", fmt.Errorf("event %d: %w", i, err))
		}

		switch e := ev.(type) {
		case AgentAdded:
			err = p.AddAgent(ctx, tx, call.Contract, e.Agent, nil, call.BlockHeight)
		case AgentRemoved:
			err = p.RemoveAgent(ctx, tx, call.Contract, e.Agent)
		case Sell:
			err = p.sell(ctx, tx, call, e)
		case SellCancelled:
			err = p.cancel(ctx, tx, call, e)
		case Exchange:
			err = p.exchange(ctx, tx, call, i, e)
		default:
			err = p.UnknownEvent(ev.Tag())
		}

		if err != nil {
			return err
		}
	}
	return nil
}

// sell adds to the seller's position and sets its rate.
func (p *Processor) sell(ctx context.Context, tx *sql.Tx, call processor.Call, e Sell) error {
	amt, err := amount.FromBig(e.Amount)
	if err != nil {
		return p.Invalid("sell", err)
	}

	current, err := p.position(tx, call, e.Token, e.From)
	if err != nil {
		return err
	}
	total := amt
	if current != nil {
		total = current.Add(amt)
	}

	_, err = p.Exec(ctx, tx, "sell", `
		INSERT INTO p2p_sell_positions (contract, token_contract, token_id, seller, amount,
		                                rate_numerator, rate_denominator, create_block_height, update_block_height)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (contract, token_contract, token_id, seller) DO UPDATE SET
			amount              = excluded.amount,
			rate_numerator      = excluded.rate_numerator,
			rate_denominator    = excluded.rate_denominator,
			update_block_height = excluded.update_block_height`,
		db.ContractAddressText(call.Contract), db.ContractAddressText(e.Token.Contract), e.Token.ID.String(),
		e.From.String(), total.String(),
		strconv.FormatUint(e.Rate.Numerator, 10), strconv.FormatUint(e.Rate.Denominator, 10),
		call.BlockHeight)
	return err
}

func (p *Processor) exchange(ctx context.Context, tx *sql.Tx, call processor.Call, i int, e Exchange) error {
	pay, err := amount.FromBig(e.PayAmount)
	if err != nil {
		return p.Invalid("exchange", err)
	}
	sold, err := amount.FromBig(e.SellAmount)
	if err != nil {
		return p.Invalid("exchange", err)
	}

	if err := p.reduce(ctx, tx, call, "exchange", e.Token, e.Seller, sold); err != nil {
		return err
	}

	return p.InsertEvent(ctx, tx, "p2p_trades", call, i,
		base.Column{Name: "token_contract", Value: db.ContractAddressText(e.Token.Contract)},
		base.Column{Name: "token_id", Value: e.Token.ID.String()},
		base.Column{Name: "seller", Value: e.Seller.String()},
		base.Column{Name: "buyer", Value: e.Buyer.String()},
		base.Column{Name: "sell_amount", Value: sold.String()},
		base.Column{Name: "pay_amount", Value: pay.String()},
	)
}

func (p *Processor) cancel(ctx context.Context, tx *sql.Tx, call processor.Call, e SellCancelled) error {
	amt, err := amount.FromBig(e.Amount)
	if err != nil {
		return p.Invalid("cancel sell", err)
	}
	return p.reduce(ctx, tx, call, "cancel sell", e.Token, e.From, amt)
}

// reduce takes amt off a position. A position that reaches zero is closed.
func (p *Processor) reduce(ctx context.Context, tx *sql.Tx, call processor.Call, op string,
	token serial.TokenUID, seller chain.AccountAddress, amt decimal.Decimal) error {
	current, err := p.position(tx, call, token, seller)
	if err != nil {
		return err
	}
	if current == nil {
		return p.NotFound(op, "sell position of %s for %s not found", seller, token)
	}

	left, ok := amount.Sub(*current, amt)
	if !ok {
		return p.Invalid(op, fmt.Errorf("position of %s for %s holds %s, %s requested", seller, token, current, amt))
	}

	key := []any{
		db.ContractAddressText(call.Contract), db.ContractAddressText(token.Contract), token.ID.String(), seller.String(),
	}
	if left.IsZero() {
		_, err = p.Exec(ctx, tx, op, `
			DELETE FROM p2p_sell_positions
			WHERE contract = $1 AND token_contract = $2 AND token_id = $3 AND seller = $4`, key...)
		return err
	}

	_, err = p.Exec(ctx, tx, op, `
		UPDATE p2p_sell_positions SET amount = $1, update_block_height = $2
		WHERE contract = $3 AND token_contract = $4 AND token_id = $5 AND seller = $6`,
		append([]any{left.String(), call.BlockHeight}, key...)...)
	return err
}

func (p *Processor) position(tx *sql.Tx, call processor.Call, token serial.TokenUID, seller chain.AccountAddress) (*decimal.Decimal, error) {
	var raw string
	err := tx.QueryRow(`
		SELECT amount FROM p2p_sell_positions
		WHERE contract = $1 AND token_contract = $2 AND token_id = $3 AND seller = $4`,
		db.ContractAddressText(call.Contract), db.ContractAddressText(token.Contract), token.ID.String(), seller.String(),
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, p.Storage("load position", err)
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, p.Storage("load position", err)
	}
	return &d, nil
}
