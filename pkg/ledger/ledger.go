package ledger

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/swaplock-hq/swaplock/pkg/events"
	"github.com/swaplock-hq/swaplock/pkg/swap"
)

// Ledger is an in-process stand-in for one chain's execution environment.
// It provides the guarantees the escrow core assumes: serialized token
// mutations that either fully commit or fully fail, a local clock, and an
// append-only event log. One Ledger per chain ID; ledgers never observe
// each other.
type Ledger struct {
	chainID int
	clock   Clock
	log     *events.Log

	mu     sync.Mutex
	tokens map[common.Address]*tokenState
}

// tokenState is the balance and allowance book of a single token contract.
type tokenState struct {
	balances   map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int
}

func newTokenState() *tokenState {
	return &tokenState{
		balances:   make(map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[common.Address]*big.Int),
	}
}

// New creates an empty ledger for the given chain ID.
func New(chainID int, clock Clock) *Ledger {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Ledger{
		chainID: chainID,
		clock:   clock,
		log:     events.NewLog(chainID),
		tokens:  make(map[common.Address]*tokenState),
	}
}

// ChainID returns the ledger's chain identifier.
func (l *Ledger) ChainID() int { return l.chainID }

// Now returns the ledger-local time.
func (l *Ledger) Now() time.Time { return l.clock.Now() }

// NowUnix returns the ledger-local time as Unix seconds.
func (l *Ledger) NowUnix() uint64 { return uint64(l.clock.Now().Unix()) }

// Events returns the ledger's append-only transition log.
func (l *Ledger) Events() *events.Log { return l.log }

func (l *Ledger) token(asset common.Address) *tokenState {
	ts, ok := l.tokens[asset]
	if !ok {
		ts = newTokenState()
		l.tokens[asset] = ts
	}
	return ts
}

// Mint credits amount of asset to addr. Used for genesis funding and tests;
// a real chain would have the token contract manage supply.
func (l *Ledger) Mint(asset, addr common.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.token(asset)
	bal, ok := ts.balances[addr]
	if !ok {
		bal = new(big.Int)
		ts.balances[addr] = bal
	}
	bal.Add(bal, amount)
}

// BalanceOf returns addr's balance of asset.
func (l *Ledger) BalanceOf(asset, addr common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.token(asset)
	if bal, ok := ts.balances[addr]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

// Approve grants spender the right to move up to amount of owner's asset.
func (l *Ledger) Approve(asset, owner, spender common.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.token(asset)
	owned, ok := ts.allowances[owner]
	if !ok {
		owned = make(map[common.Address]*big.Int)
		ts.allowances[owner] = owned
	}
	owned[spender] = new(big.Int).Set(amount)
}

// Allowance returns how much of owner's asset the spender may move.
func (l *Ledger) Allowance(asset, owner, spender common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.token(asset)
	if owned, ok := ts.allowances[owner]; ok {
		if a, ok := owned[spender]; ok {
			return new(big.Int).Set(a)
		}
	}
	return new(big.Int)
}

// Transfer moves amount of asset from one holder to another. It fails
// cleanly with swap.ErrTransferFailed on insufficient balance; no partial
// movement is ever observable.
func (l *Ledger) Transfer(asset, from, to common.Address, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transfer(asset, from, to, amount)
}

// TransferFrom moves amount of owner's asset to the destination on behalf
// of spender, consuming allowance. Allowance and balance are checked before
// any mutation so a failure leaves both untouched.
func (l *Ledger) TransferFrom(asset, spender, owner, to common.Address, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.token(asset)
	owned := ts.allowances[owner]
	allowance, ok := owned[spender]
	if !ok || allowance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: allowance of %s for %s too low", swap.ErrTransferFailed, owner.Hex(), spender.Hex())
	}
	if err := l.transfer(asset, owner, to, amount); err != nil {
		return err
	}
	allowance.Sub(allowance, amount)
	return nil
}

// transfer assumes l.mu is held.
func (l *Ledger) transfer(asset, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("%w: amount must be positive", swap.ErrTransferFailed)
	}
	ts := l.token(asset)
	fromBal, ok := ts.balances[from]
	if !ok || fromBal.Cmp(amount) < 0 {
		return fmt.Errorf("%w: insufficient balance of %s for %s", swap.ErrTransferFailed, asset.Hex(), from.Hex())
	}
	toBal, ok := ts.balances[to]
	if !ok {
		toBal = new(big.Int)
		ts.balances[to] = toBal
	}
	fromBal.Sub(fromBal, amount)
	toBal.Add(toBal, amount)
	return nil
}
