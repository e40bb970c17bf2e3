package api

import (
	"context"

	"github.com/goran-ethernal/RWAIndexor/internal/checkpoint"
	"github.com/goran-ethernal/RWAIndexor/internal/contracts"
	"github.com/goran-ethernal/RWAIndexor/internal/listener"
	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
	"github.com/goran-ethernal/RWAIndexor/pkg/processor"
)

// StatusSource exposes the indexer state served by the API.
type StatusSource interface {
	// ListenerState returns the listener phase and whether it is still running.
	ListenerState() (string, bool)
	Checkpoint(ctx context.Context) (*checkpoint.Checkpoint, error)
	ListContracts(ctx context.Context, f contracts.ListFilter) ([]*contracts.TrackedContract, int, error)
	GetContract(ctx context.Context, addr chain.ContractAddress) (*contracts.TrackedContract, error)
	Processors() []processor.Processor
}

// Status reads the live indexer components. A nil listener reports "stopped",
// which is what the read-only commands see.
type Status struct {
	listener    *listener.Listener
	checkpoints *checkpoint.Store
	contracts   *contracts.Store
	registry    *processor.Registry
}

var _ StatusSource = (*Status)(nil)

// NewStatus creates a status source over the running components.
func NewStatus(l *listener.Listener, checkpoints *checkpoint.Store,
	store *contracts.Store, registry *processor.Registry) *Status {
	return &Status{
		listener:    l,
		checkpoints: checkpoints,
		contracts:   store,
		registry:    registry,
	}
}

func (s *Status) ListenerState() (string, bool) {
	if s.listener == nil {
		return listener.StateStopped.String(), false
	}

	state := s.listener.State()
	return state.String(), !state.Terminal()
}

func (s *Status) Checkpoint(ctx context.Context) (*checkpoint.Checkpoint, error) {
	return s.checkpoints.Last(ctx)
}

func (s *Status) ListContracts(ctx context.Context, f contracts.ListFilter) ([]*contracts.TrackedContract, int, error) {
	list, err := s.contracts.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.contracts.Count(ctx, contracts.ListFilter{Type: f.Type})
	if err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (s *Status) GetContract(ctx context.Context, addr chain.ContractAddress) (*contracts.TrackedContract, error) {
	return s.contracts.Get(ctx, s.contracts.DB(), addr)
}

func (s *Status) Processors() []processor.Processor {
	if s.registry == nil {
		return nil
	}
	return s.registry.List()
}
