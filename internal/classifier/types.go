package classifier

import (
	"time"

	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
)

// CallKind tags the lifecycle event a ContractCall represents.
type CallKind uint8

const (
	CallInit CallKind = iota + 1
	CallUpdate
	CallUpgrade
)

func (k CallKind) String() string {
	switch k {
	case CallInit:
		return "init"
	case CallUpdate:
		return "update"
	case CallUpgrade:
		return "upgrade"
	default:
		return "unknown"
	}
}

// ContractCall is everything one transaction did to one contract address at one
// point of its trace. Which fields are set depends on Kind.
type ContractCall struct {
	Kind    CallKind
	Address chain.ContractAddress

	// Init
	ModuleRef    chain.ModuleRef
	ContractName string

	// Update
	Instigator  *chain.Address
	ReceiveName string

	// Init and Update, in micro CCD
	Amount uint64

	// Upgrade
	FromModule chain.ModuleRef
	ToModule   chain.ModuleRef

	// Events in the order the chain logged them. Events raised before an
	// interrupt come first.
	Events []chain.ContractEvent
}

// ParsedTransaction is a block item with at least one contract call.
type ParsedTransaction struct {
	Index  uint64
	Hash   chain.TxHash
	Sender chain.AccountAddress
	Calls  []ContractCall
}

// ParsedBlock is the unit of work handed to the dispatcher.
type ParsedBlock struct {
	Hash         chain.BlockHash
	Height       uint64
	SlotTime     time.Time
	Transactions []ParsedTransaction
}

// CallCount returns the number of calls across all transactions.
func (b ParsedBlock) CallCount() int {
	n := 0
	for _, tx := range b.Transactions {
		n += len(tx.Calls)
	}
	return n
}
