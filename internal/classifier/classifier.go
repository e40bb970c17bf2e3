// Package classifier turns block item summaries into contract lifecycle calls.
package classifier

import (
	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
)

// ParseBlock classifies every item of a block and keeps the transactions that
// produced at least one call, in block order.
func ParseBlock(info chain.BlockInfo, items []chain.BlockItemSummary) ParsedBlock {
	block := ParsedBlock{
		Hash:     info.Hash,
		Height:   info.Height,
		SlotTime: info.SlotTime,
	}

	for _, item := range items {
		calls := Classify(item)
		if len(calls) == 0 {
			continue
		}

		block.Transactions = append(block.Transactions, ParsedTransaction{
			Index:  item.Index,
			Hash:   item.Hash,
			Sender: item.Details.AccountTransaction.Sender,
			Calls:  calls,
		})
	}

	return block
}

// Classify returns the contract calls of a single block item.
// Calls without events are not emitted, except upgrades.
func Classify(item chain.BlockItemSummary) []ContractCall {
	tx := item.Details.AccountTransaction
	if tx == nil {
		return nil
	}

	switch {
	case tx.Effects.ContractInitialized != nil:
		ev := tx.Effects.ContractInitialized
		return []ContractCall{{
			Kind:         CallInit,
			Address:      ev.Address,
			ModuleRef:    ev.OriginRef,
			ContractName: ev.InitName,
			Amount:       ev.Amount,
			Events:       ev.Events,
		}}
	case tx.Effects.ContractUpdateIssued != nil:
		return classifyTrace(tx.Effects.ContractUpdateIssued.Effects)
	default:
		return nil
	}
}

// classifyTrace walks the trace in execution order. Events logged before an
// interrupt are held per address until the call against that address concludes.
func classifyTrace(trace []chain.TraceElement) []ContractCall {
	var calls []ContractCall
	interrupted := make(map[chain.ContractAddress][]chain.ContractEvent)

	for _, el := range trace {
		switch el.Kind {
		case chain.TraceInterrupted:
			interrupted[el.Address] = append(interrupted[el.Address], el.Events...)

		case chain.TraceUpdated:
			pending := interrupted[el.Address]
			delete(interrupted, el.Address)

			if len(pending)+len(el.Events) == 0 {
				continue
			}

			events := make([]chain.ContractEvent, 0, len(pending)+len(el.Events))
			events = append(events, pending...)
			events = append(events, el.Events...)

			calls = append(calls, ContractCall{
				Kind:        CallUpdate,
				Address:     el.Address,
				Instigator:  el.Instigator,
				ReceiveName: el.ReceiveName,
				Amount:      el.Amount,
				Events:      events,
			})

		case chain.TraceUpgraded:
			call := ContractCall{Kind: CallUpgrade, Address: el.Address}
			if el.FromModule != nil {
				call.FromModule = *el.FromModule
			}
			if el.ToModule != nil {
				call.ToModule = *el.ToModule
			}
			calls = append(calls, call)

		case chain.TraceResumed, chain.TraceTransferred:
			// touches without events are not dispatched
		}
	}

	return calls
}
