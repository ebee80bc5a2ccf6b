package adapter

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/swaplock-hq/swaplock/pkg/escrow"
	"github.com/swaplock-hq/swaplock/pkg/events"
	"github.com/swaplock-hq/swaplock/pkg/factory"
	"github.com/swaplock-hq/swaplock/pkg/ledger"
	"github.com/swaplock-hq/swaplock/pkg/logger"
	"github.com/swaplock-hq/swaplock/pkg/metrics"
	"github.com/swaplock-hq/swaplock/pkg/swap"
)

// Adapter bridges an external order-settlement mechanism to the escrow
// factory. The factory and escrow know nothing about the order format; the
// settlement layer knows nothing about escrow semantics. Both creation
// paths end in the same factory call, so an order-filled escrow is
// indistinguishable from a directly created one.
type Adapter struct {
	address common.Address
	factory *factory.Factory
	ledger  *ledger.Ledger
	store   RecordStore
	log     logger.Logger
}

// New wires an adapter to its factory, ledger and record store. The address
// must match the adapter address registered in the factory config or every
// settlement will fail ErrUnauthorized.
func New(address common.Address, f *factory.Factory, l *ledger.Ledger, store RecordStore, log logger.Logger) *Adapter {
	if store == nil {
		store = NewMemoryStore()
	}
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Adapter{
		address: address,
		factory: f,
		ledger:  l,
		store:   store,
		log:     log,
	}
}

// Address returns the adapter's identity used against the factory's
// restricted entry point.
func (a *Adapter) Address() common.Address { return a.address }

// DeriveSalt computes the deployment salt for a settled intent:
// keccak256(intentID ++ bigendian(chainID)). Including the chain ID keeps
// the two legs of one intent from colliding when mirrored across ledgers.
func DeriveSalt(intentID common.Hash, chainID int) common.Hash {
	var chain [8]byte
	binary.BigEndian.PutUint64(chain[:], uint64(chainID))
	return crypto.Keccak256Hash(intentID.Bytes(), chain[:])
}

// OnSettlement is invoked by the settlement mechanism after a fill. It
// decodes the intent, resolves the relative timeout against this ledger's
// clock, and creates the escrow through the factory's restricted entry.
// Idempotent per intent: a replay fails with ErrAlreadyProcessed and moves
// no funds. Any factory failure fails the whole callback with no record
// written, so the settlement can be retried or compensated.
func (a *Adapter) OnSettlement(ctx context.Context, intent Intent, settledAmount *big.Int) (common.Address, error) {
	chainID := a.ledger.ChainID()
	chainLabel := strconv.Itoa(chainID)

	decoded, err := DecodeIntent(intent)
	if err != nil {
		metrics.SettlementCallbacks.WithLabelValues(chainLabel, "rejected").Inc()
		return common.Address{}, fmt.Errorf("decode intent: %w", err)
	}

	prior, err := a.store.Get(ctx, intent.ID)
	if err != nil {
		metrics.SettlementCallbacks.WithLabelValues(chainLabel, "error").Inc()
		return common.Address{}, fmt.Errorf("record lookup for intent %s: %w", intent.ID, err)
	}
	if prior != nil {
		metrics.DuplicateSettlements.WithLabelValues(chainLabel).Inc()
		return common.Address{}, fmt.Errorf("%w: intent %s settled into %s", swap.ErrAlreadyProcessed, intent.ID, prior.Escrow)
	}

	params := decoded.Params
	if settledAmount != nil {
		if settledAmount.Sign() <= 0 || settledAmount.Cmp(decoded.Params.Amount) > 0 {
			metrics.SettlementCallbacks.WithLabelValues(chainLabel, "rejected").Inc()
			return common.Address{}, fmt.Errorf("settled amount %s outside (0, %s]", settledAmount, decoded.Params.Amount)
		}
		params.Amount = new(big.Int).Set(settledAmount)
	}
	// Relative-to-absolute conversion happens exactly here: the intent's
	// duration plus the destination ledger's clock at settlement time.
	params.Timeout = a.ledger.NowUnix() + uint64(decoded.Timeout/time.Second)

	salt := DeriveSalt(decoded.IntentID, chainID)

	esc, err := a.factory.CreateFromIntent(a.address, salt, params)
	if err != nil {
		metrics.SettlementCallbacks.WithLabelValues(chainLabel, "failed").Inc()
		return common.Address{}, fmt.Errorf("create escrow for intent %s: %w", intent.ID, err)
	}

	a.ledger.Events().Append(events.Record{
		Type:     events.TypeIntentSettled,
		Escrow:   esc.Address(),
		Salt:     salt,
		Hashlock: params.Hashlock,
		Amount:   new(big.Int).Set(params.Amount),
		IntentID: decoded.IntentID,
		At:       a.ledger.Now(),
	})

	// The record is advisory; the escrow already exists and is correct, so
	// a store failure must not fail the settlement.
	rec := Record{
		IntentID:  intent.ID,
		Escrow:    esc.Address().Hex(),
		ChainID:   chainID,
		CreatedAt: a.ledger.Now(),
	}
	if err := a.store.Save(ctx, rec); err != nil {
		a.log.ErrorWithChain(chainID, "failed to record settlement of intent %s: %v", intent.ID, err)
	}

	metrics.SettlementCallbacks.WithLabelValues(chainLabel, "settled").Inc()
	metrics.EscrowsCreated.WithLabelValues(chainLabel, "intent").Inc()
	a.log.InfoWithChain(chainID, "settled intent %s into escrow %s (amount %s, timeout %d)",
		intent.ID, esc.Address().Hex(), params.Amount, params.Timeout)

	return esc.Address(), nil
}

// Lookup returns the stored settlement record for an intent, nil if none.
func (a *Adapter) Lookup(ctx context.Context, intentID string) (*Record, error) {
	return a.store.Get(ctx, intentID)
}

// Escrow resolves the escrow instance an intent settled into.
func (a *Adapter) Escrow(ctx context.Context, intentID string) (*escrow.Escrow, error) {
	rec, err := a.store.Get(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("no settlement record for intent %s", intentID)
	}
	esc, ok := a.factory.Get(common.HexToAddress(rec.Escrow))
	if !ok {
		return nil, fmt.Errorf("record for intent %s points at unknown escrow %s", intentID, rec.Escrow)
	}
	return esc, nil
}
