// Package processors builds the processor registry from configuration.
package processors

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	"github.com/goran-ethernal/RWAIndexor/internal/processors/cis2security"
	"github.com/goran-ethernal/RWAIndexor/internal/processors/compliance"
	"github.com/goran-ethernal/RWAIndexor/internal/processors/identityregistry"
	"github.com/goran-ethernal/RWAIndexor/internal/processors/mintfund"
	"github.com/goran-ethernal/RWAIndexor/internal/processors/nftmultirewarded"
	"github.com/goran-ethernal/RWAIndexor/internal/processors/p2ptrading"
	"github.com/goran-ethernal/RWAIndexor/internal/processors/sftmultiyielder"
	"github.com/goran-ethernal/RWAIndexor/internal/processors/sftrewards"
	"github.com/goran-ethernal/RWAIndexor/pkg/config"
	"github.com/goran-ethernal/RWAIndexor/pkg/processor"
)

// Constructor creates a processor for the given identity.
type Constructor func(identity processor.Identity, log *logger.Logger) processor.Processor

// constructors maps every processor type to its implementation.
var constructors = map[processor.Type]Constructor{
	processor.TypeIdentityRegistry: func(id processor.Identity, log *logger.Logger) processor.Processor {
		return identityregistry.New(id, log)
	},
	processor.TypeCompliance: func(id processor.Identity, log *logger.Logger) processor.Processor {
		return compliance.New(id, log)
	},
	processor.TypeSecurityCIS2: func(id processor.Identity, log *logger.Logger) processor.Processor {
		return cis2security.New(id, log)
	},
	processor.TypeSecurityMintFund: func(id processor.Identity, log *logger.Logger) processor.Processor {
		return mintfund.New(id, log)
	},
	processor.TypeSecuritySftRewards: func(id processor.Identity, log *logger.Logger) processor.Processor {
		return sftrewards.New(id, log)
	},
	processor.TypeSecurityP2PTrading: func(id processor.Identity, log *logger.Logger) processor.Processor {
		return p2ptrading.New(id, log)
	},
	processor.TypeNftMultiRewarded: func(id processor.Identity, log *logger.Logger) processor.Processor {
		return nftmultirewarded.New(id, log)
	},
	processor.TypeSecuritySftMultiYielder: func(id processor.Identity, log *logger.Logger) processor.Processor {
		return sftmultiyielder.New(id, log)
	},
}

// Supported reports whether a processor implementation exists for t.
func Supported(t processor.Type) bool {
	_, ok := constructors[t]
	return ok
}

// Build creates one processor per configuration entry and registers them.
func Build(cfgs []config.ProcessorConfig, log *logger.Logger) (*processor.Registry, error) {
	ps := make([]processor.Processor, 0, len(cfgs))

	for _, cfg := range cfgs {
		t, err := processor.ParseType(cfg.Type)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", cfg.Name, err)
		}

		ctor, ok := constructors[t]
		if !ok {
			return nil, fmt.Errorf("processor %s: type %s has no implementation", cfg.Name, t)
		}

		identity := processor.Identity{
			ModuleRef:    common.HexToHash(cfg.ModuleRef),
			ContractName: cfg.ContractName,
		}
		ps = append(ps, ctor(identity, log))

		log.Infow("processor configured", "name", cfg.Name, "type", t, "identity", identity)
	}

	return processor.NewRegistry(ps...)
}
