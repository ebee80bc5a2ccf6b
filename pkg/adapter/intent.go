package adapter

import (
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/swaplock-hq/swaplock/pkg/swap"
)

// Intent is the externally-defined order object the settlement mechanism
// hands to the adapter. The core never validates its signature or pricing;
// the settlement layer has done that before calling in.
type Intent struct {
	ID               string `json:"id"`
	SourceChain      int    `json:"source_chain"`
	DestinationChain int    `json:"destination_chain"`
	Asset            string `json:"asset"`
	Amount           string `json:"amount"`
	Maker            string `json:"maker"`
	Recipient        string `json:"recipient"`
	Hashlock         string `json:"hashlock"`
	// TimeoutDuration is relative, in seconds. Intents carry a duration
	// rather than an absolute deadline because the maker cannot know when
	// the fill will land; the adapter resolves it against the destination
	// ledger clock at settlement time.
	TimeoutDuration int64 `json:"timeout_duration"`
}

// MaxTimeoutSeconds caps the relative timeout at the largest value that
// still fits in a time.Duration; anything above it would overflow the
// nanosecond conversion and wrap negative.
const MaxTimeoutSeconds = math.MaxInt64 / int64(time.Second)

// Decoded is the result of translating an intent: the swap params minus
// the timeout, which stays relative until settlement resolves it.
type Decoded struct {
	IntentID common.Hash
	Params   swap.Params
	Timeout  time.Duration
}

// DecodeIntent translates an intent into escrow-creation parameters. Pure
// and deterministic: no clock, no state, so anyone can recompute the result
// to verify what the adapter will do. The returned params carry a zero
// Timeout; OnSettlement fills it in from the destination ledger clock.
func DecodeIntent(intent Intent) (Decoded, error) {
	id, err := hexutil.Decode(intent.ID)
	if err != nil || len(id) != common.HashLength {
		return Decoded{}, fmt.Errorf("intent id must be a 32-byte hex string: %q", intent.ID)
	}

	hashlock, err := hexutil.Decode(intent.Hashlock)
	if err != nil || len(hashlock) != swap.HashlockSize {
		return Decoded{}, fmt.Errorf("hashlock must be a %d-byte hex string: %q", swap.HashlockSize, intent.Hashlock)
	}

	amount, ok := new(big.Int).SetString(intent.Amount, 10)
	if !ok || amount.Sign() <= 0 {
		return Decoded{}, fmt.Errorf("amount must be a positive decimal string: %q", intent.Amount)
	}

	if !common.IsHexAddress(intent.Asset) {
		return Decoded{}, fmt.Errorf("invalid asset address: %q", intent.Asset)
	}
	if !common.IsHexAddress(intent.Maker) {
		return Decoded{}, fmt.Errorf("invalid maker address: %q", intent.Maker)
	}
	if !common.IsHexAddress(intent.Recipient) {
		return Decoded{}, fmt.Errorf("invalid recipient address: %q", intent.Recipient)
	}
	if intent.TimeoutDuration <= 0 || intent.TimeoutDuration > MaxTimeoutSeconds {
		return Decoded{}, fmt.Errorf("timeout duration must be in (0, %d]: %d", MaxTimeoutSeconds, intent.TimeoutDuration)
	}

	return Decoded{
		IntentID: common.BytesToHash(id),
		Params: swap.Params{
			Asset:     common.HexToAddress(intent.Asset),
			Amount:    amount,
			Recipient: common.HexToAddress(intent.Recipient),
			Depositor: common.HexToAddress(intent.Maker),
			Hashlock:  common.BytesToHash(hashlock),
		},
		Timeout: time.Duration(intent.TimeoutDuration) * time.Second,
	}, nil
}
