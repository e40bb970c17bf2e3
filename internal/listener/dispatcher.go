package listener

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goran-ethernal/RWAIndexor/internal/classifier"
	"github.com/goran-ethernal/RWAIndexor/internal/common"
	"github.com/goran-ethernal/RWAIndexor/internal/contracts"
	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	"github.com/goran-ethernal/RWAIndexor/internal/metrics"
	"github.com/goran-ethernal/RWAIndexor/pkg/processor"
)

// Dispatcher routes the calls of a parsed block to processors. Every write it
// performs goes through the block transaction it is handed.
type Dispatcher struct {
	registry  *processor.Registry
	contracts *contracts.Store
	log       *logger.Logger
}

// NewDispatcher creates a dispatcher over the configured processors.
func NewDispatcher(registry *processor.Registry, store *contracts.Store, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		contracts: store,
		log:       log.WithComponent(common.ComponentDispatcher),
	}
}

// DispatchBlock dispatches every call of block in order.
func (d *Dispatcher) DispatchBlock(ctx context.Context, tx *sql.Tx, block classifier.ParsedBlock) error {
	for _, ptx := range block.Transactions {
		for i, call := range ptx.Calls {
			if err := d.Dispatch(ctx, tx, block, ptx, i, call); err != nil {
				return err
			}
		}
	}
	return nil
}

// Dispatch handles a single call. Calls against contracts no processor
// recognizes are ignored.
func (d *Dispatcher) Dispatch(ctx context.Context, tx *sql.Tx, block classifier.ParsedBlock,
	ptx classifier.ParsedTransaction, index int, call classifier.ContractCall) error {
	switch call.Kind {
	case classifier.CallInit:
		return d.init(ctx, tx, block, ptx, index, call)
	case classifier.CallUpdate:
		return d.update(ctx, tx, block, ptx, index, call)
	case classifier.CallUpgrade:
		return d.upgrade(ctx, tx, block, call)
	default:
		return newError(KindInvalidEvent, "dispatch", fmt.Errorf("unknown call kind %d", call.Kind))
	}
}

func (d *Dispatcher) init(ctx context.Context, tx *sql.Tx, block classifier.ParsedBlock,
	ptx classifier.ParsedTransaction, index int, call classifier.ContractCall) error {
	p, ok := d.registry.Find(call.ModuleRef, call.ContractName)
	if !ok {
		d.log.Debugw("ignoring unknown contract",
			"address", call.Address.String(),
			"module_ref", call.ModuleRef.Hex(),
			"contract_name", call.ContractName)
		return nil
	}

	err := d.contracts.Insert(ctx, tx, &contracts.TrackedContract{
		Address:            call.Address,
		ModuleRef:          call.ModuleRef,
		ContractName:       call.ContractName,
		Owner:              ptx.Sender,
		ProcessorType:      p.Type(),
		CreatedAt:          block.SlotTime.Unix(),
		CreatedBlockHeight: block.Height,
		CreatedTxHash:      ptx.Hash,
	})
	if err != nil {
		return newError(storageKind(err), "track contract", err)
	}

	return d.process(ctx, tx, p, block, ptx, index, call)
}

func (d *Dispatcher) update(ctx context.Context, tx *sql.Tx, block classifier.ParsedBlock,
	ptx classifier.ParsedTransaction, index int, call classifier.ContractCall) error {
	tracked, err := d.contracts.Get(ctx, tx, call.Address)
	if errors.Is(err, contracts.ErrNotTracked) {
		return nil
	}
	if err != nil {
		return newError(storageKind(err), "load contract", err)
	}

	p, ok := d.registry.ByType(tracked.ProcessorType)
	if !ok {
		return newError(KindUnknownProcessor, "dispatch",
			fmt.Errorf("contract %s is tracked as %s, which is not configured", call.Address, tracked.ProcessorType))
	}

	return d.process(ctx, tx, p, block, ptx, index, call)
}

func (d *Dispatcher) upgrade(ctx context.Context, tx *sql.Tx, block classifier.ParsedBlock,
	call classifier.ContractCall) error {
	tracked, err := d.contracts.Get(ctx, tx, call.Address)
	if errors.Is(err, contracts.ErrNotTracked) {
		return nil
	}
	if err != nil {
		return newError(storageKind(err), "load contract", err)
	}

	if err := d.contracts.UpdateModuleRef(ctx, tx, call.Address, call.ToModule, block.Height); err != nil {
		return newError(storageKind(err), "upgrade contract", err)
	}

	metrics.CallsDispatchedInc(tracked.ProcessorType.String(), call.Kind.String())
	return nil
}

func (d *Dispatcher) process(ctx context.Context, tx *sql.Tx, p processor.Processor, block classifier.ParsedBlock,
	ptx classifier.ParsedTransaction, index int, call classifier.ContractCall) error {
	if len(call.Events) == 0 {
		return nil
	}

	err := p.Process(ctx, tx, processor.Call{
		Contract:    call.Address,
		BlockHeight: block.Height,
		BlockHash:   block.Hash,
		BlockTime:   block.SlotTime,
		TxIndex:     ptx.Index,
		TxHash:      ptx.Hash,
		Sender:      ptx.Sender,
		CallIndex:   index,
		Events:      call.Events,
	})
	if err != nil {
		return err
	}

	metrics.CallsDispatchedInc(p.Type().String(), call.Kind.String())
	metrics.EventsProcessedAdd(p.Type().String(), len(call.Events))

	d.log.Debugw("call processed",
		"address", call.Address.String(),
		"processor", p.Type().String(),
		"kind", call.Kind.String(),
		"events", len(call.Events),
		"tx", ptx.Hash.Hex())

	return nil
}
