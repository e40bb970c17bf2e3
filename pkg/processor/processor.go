// Package processor defines the contract event processing framework: the
// processor interface, the persisted processor type and the registry used to
// route contract calls.
package processor

import (
	"context"
	"database/sql"
	"time"

	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
)

// Identity is the on-chain code a processor interprets.
type Identity struct {
	ModuleRef    chain.ModuleRef
	ContractName string
}

func (i Identity) String() string {
	return i.ModuleRef.Hex() + "/" + i.ContractName
}

// Call is the ordered event list of one contract within one transaction,
// together with the block and transaction it belongs to.
type Call struct {
	Contract    chain.ContractAddress
	BlockHeight uint64
	BlockHash   chain.BlockHash
	BlockTime   time.Time
	TxIndex     uint64
	TxHash      chain.TxHash
	Sender      chain.AccountAddress

	// CallIndex is the position of the call within its transaction. Together
	// with TxHash and an event position it identifies a single event.
	CallIndex int
	Events    []chain.ContractEvent
}

// Processor interprets the events of one contract family.
type Processor interface {
	// Type returns the persisted tag of the family.
	Type() Type

	// Identity returns the module and init name matched when a contract is initialized.
	Identity() Identity

	// Process applies the events of a call. All writes go through tx; the
	// caller commits or rolls back.
	Process(ctx context.Context, tx *sql.Tx, call Call) error
}
