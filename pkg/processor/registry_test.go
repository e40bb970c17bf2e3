package processor

import (
	"context"
	"database/sql"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

type stubProcessor struct {
	typ Type
	id  Identity
}

func (s *stubProcessor) Type() Type         { return s.typ }
func (s *stubProcessor) Identity() Identity { return s.id }
func (s *stubProcessor) Process(context.Context, *sql.Tx, Call) error {
	return nil
}

var (
	refFund = common.HexToHash("0x01")
	refCIS2 = common.HexToHash("0x02")
)

func TestNewRegistry(t *testing.T) {
	fund := &stubProcessor{typ: TypeSecurityMintFund, id: Identity{ModuleRef: refFund, ContractName: "init_security_mint_fund"}}
	cis2 := &stubProcessor{typ: TypeSecurityCIS2, id: Identity{ModuleRef: refCIS2, ContractName: "init_security_sft_single"}}

	tests := []struct {
		name       string
		processors []Processor
		wantErr    string
	}{
		{
			name:       "distinct processors",
			processors: []Processor{fund, cis2},
		},
		{
			name:       "empty registry",
			processors: nil,
		},
		{
			name: "duplicate identity",
			processors: []Processor{
				fund,
				&stubProcessor{typ: TypeCompliance, id: fund.id},
			},
			wantErr: "already registered",
		},
		{
			name: "duplicate type",
			processors: []Processor{
				fund,
				&stubProcessor{typ: TypeSecurityMintFund, id: Identity{ModuleRef: refCIS2, ContractName: "init_other"}},
			},
			wantErr: "registered more than once",
		},
		{
			name:       "invalid type",
			processors: []Processor{&stubProcessor{typ: 0, id: fund.id}},
			wantErr:    "invalid type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRegistry(tt.processors...)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				require.Nil(t, r)
				return
			}

			require.NoError(t, err)
			require.Len(t, r.List(), len(tt.processors))
		})
	}
}

func TestRegistry_Find(t *testing.T) {
	fund := &stubProcessor{typ: TypeSecurityMintFund, id: Identity{ModuleRef: refFund, ContractName: "init_security_mint_fund"}}
	cis2 := &stubProcessor{typ: TypeSecurityCIS2, id: Identity{ModuleRef: refFund, ContractName: "init_security_sft_single"}}

	r, err := NewRegistry(fund, cis2)
	require.NoError(t, err)

	p, ok := r.Find(refFund, "init_security_mint_fund")
	require.True(t, ok)
	require.Equal(t, TypeSecurityMintFund, p.Type())

	// same module, different contract in it
	p, ok = r.Find(refFund, "init_security_sft_single")
	require.True(t, ok)
	require.Equal(t, TypeSecurityCIS2, p.Type())

	_, ok = r.Find(refCIS2, "init_security_mint_fund")
	require.False(t, ok)

	_, ok = r.Find(refFund, "init_unknown")
	require.False(t, ok)
}

func TestRegistry_ByTypeAndList(t *testing.T) {
	fund := &stubProcessor{typ: TypeSecurityMintFund, id: Identity{ModuleRef: refFund, ContractName: "init_security_mint_fund"}}
	registry := &stubProcessor{typ: TypeIdentityRegistry, id: Identity{ModuleRef: refCIS2, ContractName: "init_rwa_identity_registry"}}

	r, err := NewRegistry(fund, registry)
	require.NoError(t, err)

	p, ok := r.ByType(TypeSecurityMintFund)
	require.True(t, ok)
	require.Same(t, fund, p)

	_, ok = r.ByType(TypeCompliance)
	require.False(t, ok)

	list := r.List()
	require.Equal(t, TypeIdentityRegistry, list[0].Type())
	require.Equal(t, TypeSecurityMintFund, list[1].Type())
}
