package factory

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/swaplock-hq/swaplock/pkg/escrow"
	"github.com/swaplock-hq/swaplock/pkg/events"
	"github.com/swaplock-hq/swaplock/pkg/ledger"
	"github.com/swaplock-hq/swaplock/pkg/metrics"
	"github.com/swaplock-hq/swaplock/pkg/swap"
)

// EscrowCodeV1 is the versioned fingerprint of the escrow logic that goes
// into address derivation. Bumping the version changes every derived
// address, so escrows of different versions can never collide.
var EscrowCodeV1 = crypto.Keccak256Hash([]byte("swaplock/escrow/v1"))

// Config is the factory's immutable configuration, fixed at construction.
type Config struct {
	// Address is the factory's own identity, part of address derivation.
	Address common.Address
	// AdapterAddress is the only caller allowed through CreateFromIntent.
	// Zero disables the compatibility path.
	AdapterAddress common.Address
	// CodeFingerprint versions the escrow logic for address derivation.
	CodeFingerprint common.Hash
}

// Factory deploys escrows at addresses computable in advance from the swap
// parameters, so the counterparty on another ledger can verify where funds
// will land before anything is sent. Its deployed-escrow registry is
// append-only: a salt, once used, is burned forever.
type Factory struct {
	cfg    Config
	ledger *ledger.Ledger

	mu      sync.Mutex
	bySalt  map[common.Hash]common.Address
	escrows map[common.Address]*escrow.Escrow
}

// New creates a factory bound to one ledger.
func New(l *ledger.Ledger, cfg Config) *Factory {
	if cfg.CodeFingerprint == (common.Hash{}) {
		cfg.CodeFingerprint = EscrowCodeV1
	}
	return &Factory{
		cfg:     cfg,
		ledger:  l,
		bySalt:  make(map[common.Hash]common.Address),
		escrows: make(map[common.Address]*escrow.Escrow),
	}
}

// Address returns the factory's own address. Depositors grant their token
// allowance to it so creation can pull funds.
func (f *Factory) Address() common.Address { return f.cfg.Address }

// ComputeAddress derives the address an escrow with the given salt and
// params would be deployed at. Pure function of public inputs: anyone off
// ledger can recompute it before any transaction is sent.
func (f *Factory) ComputeAddress(salt common.Hash, params swap.Params) common.Address {
	return ComputeAddress(f.cfg.Address, f.cfg.CodeFingerprint, salt, params)
}

// ComputeAddress is the derivation itself, exported so counterparties can
// predict addresses without holding a factory instance. CREATE2-style:
//
//	keccak256(0xff ++ deployer ++ salt ++ keccak256(encode(params) ++ fingerprint))[12:]
func ComputeAddress(deployer common.Address, fingerprint common.Hash, salt common.Hash, params swap.Params) common.Address {
	init := crypto.Keccak256(params.Encode(), fingerprint.Bytes())
	digest := crypto.Keccak256([]byte{0xff}, deployer.Bytes(), salt.Bytes(), init)
	return common.BytesToAddress(digest[12:])
}

// CreateEscrow deploys a new escrow at the address ComputeAddress yields
// for (salt, params), pulls params.Amount from the depositor in the same
// action, and returns the escrow. The caller must be the depositor; use
// CreateFromIntent for settlement-triggered creation on someone's behalf.
func (f *Factory) CreateEscrow(caller common.Address, salt common.Hash, params swap.Params) (*escrow.Escrow, error) {
	if caller != params.Depositor {
		return nil, fmt.Errorf("%w: caller %s is not the depositor", swap.ErrUnauthorized, caller.Hex())
	}
	e, err := f.create(salt, params)
	if err != nil {
		return nil, err
	}
	metrics.EscrowsCreated.WithLabelValues(strconv.Itoa(f.ledger.ChainID()), "direct").Inc()
	return e, nil
}

// CreateFromIntent is the compatibility entry point for settlement-driven
// creation. Only the registered adapter may call it; anyone else gets
// ErrUnauthorized, so order-triggered creation cannot be spoofed.
func (f *Factory) CreateFromIntent(caller common.Address, salt common.Hash, params swap.Params) (*escrow.Escrow, error) {
	if f.cfg.AdapterAddress == (common.Address{}) || caller != f.cfg.AdapterAddress {
		return nil, fmt.Errorf("%w: caller %s is not the registered adapter", swap.ErrUnauthorized, caller.Hex())
	}
	return f.create(salt, params)
}

// create holds the registry lock across the salt check, the funded
// deployment and the registration, so concurrent attempts on the same salt
// serialize and the loser sees ErrAlreadyExists with no funds moved.
func (f *Factory) create(salt common.Hash, params swap.Params) (*escrow.Escrow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	chainLabel := strconv.Itoa(f.ledger.ChainID())

	if addr, ok := f.bySalt[salt]; ok {
		metrics.CreationFailures.WithLabelValues(chainLabel, "already_exists").Inc()
		return nil, fmt.Errorf("%w: salt %s used by %s", swap.ErrAlreadyExists, salt.Hex(), addr.Hex())
	}

	addr := f.ComputeAddress(salt, params)
	if _, ok := f.escrows[addr]; ok {
		metrics.CreationFailures.WithLabelValues(chainLabel, "already_exists").Inc()
		return nil, fmt.Errorf("%w: address %s already deployed", swap.ErrAlreadyExists, addr.Hex())
	}

	e, err := escrow.Create(f.ledger, addr, salt, f.cfg.Address, params)
	if err != nil {
		reason := "invalid_params"
		if errors.Is(err, swap.ErrTransferFailed) {
			reason = "transfer_failed"
		}
		metrics.CreationFailures.WithLabelValues(chainLabel, reason).Inc()
		return nil, err
	}

	f.bySalt[salt] = addr
	f.escrows[addr] = e
	metrics.OpenEscrows.WithLabelValues(chainLabel).Inc()

	f.ledger.Events().Append(events.Record{
		Type:     events.TypeEscrowDeployed,
		Escrow:   addr,
		Salt:     salt,
		Hashlock: params.Hashlock,
		At:       f.ledger.Now(),
	})
	f.ledger.Events().Append(events.Record{
		Type:         events.TypeEscrowCreated,
		Escrow:       addr,
		Salt:         salt,
		Hashlock:     params.Hashlock,
		Amount:       new(big.Int).Set(params.Amount),
		Counterparty: params.Depositor,
		At:           f.ledger.Now(),
	})
	return e, nil
}

// Get looks up a deployed escrow by address.
func (f *Factory) Get(addr common.Address) (*escrow.Escrow, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.escrows[addr]
	return e, ok
}

// BySalt looks up the address a salt was consumed by.
func (f *Factory) BySalt(salt common.Hash) (common.Address, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	addr, ok := f.bySalt[salt]
	return addr, ok
}

// Count returns how many escrows this factory has deployed.
func (f *Factory) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.escrows)
}

// ValidateLegPair enforces the timeout-ordering invariant on the two legs
// of one swap: both legs commit to the same hashlock, and the destination
// leg must expire strictly before the source leg. That ordering is what
// guarantees the source recipient a non-empty window to reuse a secret
// revealed on the destination.
func ValidateLegPair(src, dst swap.Params) error {
	if src.Hashlock != dst.Hashlock {
		return fmt.Errorf("legs commit to different hashlocks: %s vs %s", src.Hashlock.Hex(), dst.Hashlock.Hex())
	}
	if dst.Timeout >= src.Timeout {
		return fmt.Errorf("destination timeout %d must be strictly before source timeout %d", dst.Timeout, src.Timeout)
	}
	return nil
}
