package identityregistry

import (
	"fmt"

	"github.com/goran-ethernal/RWAIndexor/internal/serial"
	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
)

const (
	TagIdentityRegistered uint8 = 0
	TagIdentityUpdated    uint8 = 1
	TagIdentityRemoved    uint8 = 2
	TagIssuerAdded        uint8 = 3
	TagIssuerRemoved      uint8 = 4
	TagAgentAdded         uint8 = 5
	TagAgentRemoved       uint8 = 6
)

// Event is a decoded identity registry event. Identity events carry the
// identity address, issuer events the issuer contract and agent events the agent.
type Event struct {
	Tag     uint8
	Address chain.Address
	Issuer  chain.ContractAddress
}

// Decode parses one identity registry event.
func Decode(payload []byte) (Event, error) {
	r := serial.NewReader(payload)
	ev := Event{Tag: r.U8()}

	switch ev.Tag {
	case TagIdentityRegistered, TagIdentityUpdated, TagIdentityRemoved, TagAgentAdded, TagAgentRemoved:
		ev.Address = r.Address()
	case TagIssuerAdded, TagIssuerRemoved:
		ev.Issuer = r.ContractAddress()
	default:
		if r.Err() != nil {
			return Event{}, r.Err()
		}
		return Event{}, fmt.Errorf("unknown event tag %d", ev.Tag)
	}

	if err := r.Done(); err != nil {
		return Event{}, fmt.Errorf("event %d: %w", ev.Tag, err)
	}
	return ev, nil
}
