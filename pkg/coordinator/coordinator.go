// Package coordinator helps the party driving both legs of a swap plan them
// before any funds move: it validates the timeout ordering between the legs
// and predicts the escrow address each leg will land at on its ledger.
package coordinator

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/swaplock-hq/swaplock/pkg/factory"
	"github.com/swaplock-hq/swaplock/pkg/swap"
)

// Leg is one half of a swap: the params to deploy plus the identity of the
// factory that will deploy them. Everything here is public information, so
// a counterparty can rebuild the leg and verify the predicted address.
type Leg struct {
	ChainID     int
	Factory     common.Address
	Fingerprint common.Hash
	Salt        common.Hash
	Params      swap.Params
}

// Address predicts where the leg's escrow will be deployed.
func (l Leg) Address() common.Address {
	fp := l.Fingerprint
	if fp == (common.Hash{}) {
		fp = factory.EscrowCodeV1
	}
	return factory.ComputeAddress(l.Factory, fp, l.Salt, l.Params)
}

// Plan is a validated pair of legs. Construct it with NewPlan; a Plan that
// exists satisfies the timeout-ordering invariant.
type Plan struct {
	Source      Leg
	Destination Leg
}

// NewPlan validates the two legs against each other. The destination leg
// must expire strictly before the source leg so the secret, once revealed
// on the destination, is always usable on the source: if the destination
// recipient claims at any time before the destination timeout, the source
// recipient has at least (source timeout - destination timeout) left.
func NewPlan(source, destination Leg) (Plan, error) {
	if err := source.Params.Validate(); err != nil {
		return Plan{}, fmt.Errorf("source leg: %w", err)
	}
	if err := destination.Params.Validate(); err != nil {
		return Plan{}, fmt.Errorf("destination leg: %w", err)
	}
	if source.ChainID == destination.ChainID {
		return Plan{}, fmt.Errorf("legs must live on different ledgers, both on %d", source.ChainID)
	}
	if err := factory.ValidateLegPair(source.Params, destination.Params); err != nil {
		return Plan{}, err
	}
	return Plan{Source: source, Destination: destination}, nil
}

// SecretWindow is the minimum time, in seconds, the source recipient has to
// reuse the secret after the destination leg can no longer be withdrawn.
// Positive by construction.
func (p Plan) SecretWindow() uint64 {
	return p.Source.Params.Timeout - p.Destination.Params.Timeout
}
