package escrow

import (
	"fmt"
	"math/big"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/swaplock-hq/swaplock/pkg/events"
	"github.com/swaplock-hq/swaplock/pkg/ledger"
	"github.com/swaplock-hq/swaplock/pkg/metrics"
	"github.com/swaplock-hq/swaplock/pkg/swap"
)

// Escrow is a single-purpose holder of one swap leg's funds. Funds leave it
// exactly once: to the recipient when a valid secret is revealed before the
// timeout, or back to the depositor once the timeout has passed. Anyone may
// trigger either edge; the destination of funds is fixed in the params, so
// no caller identity check is needed beyond the factory-only creation.
type Escrow struct {
	mu      sync.Mutex
	ledger  *ledger.Ledger
	address common.Address
	salt    common.Hash
	params  swap.Params
	state   swap.State
	secret  []byte
}

// Snapshot is the read-only view returned by Inspect.
type Snapshot struct {
	Address common.Address
	Salt    common.Hash
	Params  swap.Params
	State   swap.State
	Secret  []byte
}

// Create deploys an escrow at the given address and atomically pulls
// params.Amount of params.Asset from the depositor into escrow custody,
// spending the allowance the depositor granted to the factory (spender).
// If the pull fails no escrow comes into existence, so a Created escrow
// always holds its funds.
func Create(l *ledger.Ledger, address common.Address, salt common.Hash, spender common.Address, params swap.Params) (*Escrow, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if params.Timeout <= l.NowUnix() {
		return nil, fmt.Errorf("timeout %d is not in the future", params.Timeout)
	}

	if err := l.TransferFrom(params.Asset, spender, params.Depositor, address, params.Amount); err != nil {
		return nil, err
	}

	e := &Escrow{
		ledger:  l,
		address: address,
		salt:    salt,
		params:  params.Copy(),
		state:   swap.StateCreated,
	}
	return e, nil
}

// Address returns the deterministic address the escrow was deployed at.
func (e *Escrow) Address() common.Address { return e.address }

// Withdraw reveals the secret and pushes the escrowed amount to the
// recipient. Callable by anyone so a relay can act for a recipient with no
// presence on this ledger; funds go to the recipient regardless of caller.
func (e *Escrow) Withdraw(secret []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != swap.StateCreated {
		return fmt.Errorf("%w: escrow is %s", swap.ErrInvalidState, e.state)
	}
	if swap.HashSecret(secret) != e.params.Hashlock {
		return swap.ErrInvalidSecret
	}
	if e.ledger.NowUnix() >= e.params.Timeout {
		return fmt.Errorf("%w: timeout was %d", swap.ErrExpired, e.params.Timeout)
	}

	if err := e.ledger.Transfer(e.params.Asset, e.address, e.params.Recipient, e.params.Amount); err != nil {
		return err
	}

	e.state = swap.StateCompleted
	e.secret = append([]byte(nil), secret...)

	chainLabel := strconv.Itoa(e.ledger.ChainID())
	metrics.EscrowsCompleted.WithLabelValues(chainLabel).Inc()
	metrics.OpenEscrows.WithLabelValues(chainLabel).Dec()

	e.ledger.Events().Append(events.Record{
		Type:         events.TypeEscrowCompleted,
		Escrow:       e.address,
		Salt:         e.salt,
		Hashlock:     e.params.Hashlock,
		Secret:       append([]byte(nil), secret...),
		Amount:       new(big.Int).Set(e.params.Amount),
		Counterparty: e.params.Recipient,
		At:           e.ledger.Now(),
	})
	return nil
}

// Refund returns the escrowed amount to the depositor once the timeout has
// passed. Callable by anyone; funds go to the depositor regardless of
// caller.
func (e *Escrow) Refund() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != swap.StateCreated {
		return fmt.Errorf("%w: escrow is %s", swap.ErrInvalidState, e.state)
	}
	if e.ledger.NowUnix() < e.params.Timeout {
		return fmt.Errorf("%w: timeout is %d", swap.ErrNotYetExpired, e.params.Timeout)
	}

	if err := e.ledger.Transfer(e.params.Asset, e.address, e.params.Depositor, e.params.Amount); err != nil {
		return err
	}

	e.state = swap.StateRefunded

	chainLabel := strconv.Itoa(e.ledger.ChainID())
	metrics.EscrowsRefunded.WithLabelValues(chainLabel).Inc()
	metrics.OpenEscrows.WithLabelValues(chainLabel).Dec()

	e.ledger.Events().Append(events.Record{
		Type:         events.TypeEscrowRefunded,
		Escrow:       e.address,
		Salt:         e.salt,
		Hashlock:     e.params.Hashlock,
		Amount:       new(big.Int).Set(e.params.Amount),
		Counterparty: e.params.Depositor,
		At:           e.ledger.Now(),
	})
	return nil
}

// Inspect returns the current params and state without side effects.
func (e *Escrow) Inspect() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Snapshot{
		Address: e.address,
		Salt:    e.salt,
		Params:  e.params.Copy(),
		State:   e.state,
		Secret:  append([]byte(nil), e.secret...),
	}
}
