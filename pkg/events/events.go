package events

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Type identifies the kind of state transition a record describes.
type Type string

const (
	// TypeEscrowDeployed is emitted when the factory deploys a new escrow.
	TypeEscrowDeployed Type = "EscrowDeployed"
	// TypeEscrowCreated is emitted when an escrow is funded and enters the
	// created state.
	TypeEscrowCreated Type = "EscrowCreated"
	// TypeEscrowCompleted is emitted when a valid secret is revealed and
	// funds move to the recipient.
	TypeEscrowCompleted Type = "EscrowCompleted"
	// TypeEscrowRefunded is emitted when the timeout passes unresolved and
	// funds return to the depositor.
	TypeEscrowRefunded Type = "EscrowRefunded"
	// TypeIntentSettled is emitted when the adapter settles an external
	// intent into an escrow.
	TypeIntentSettled Type = "IntentSettled"
)

// Record is one append-only log entry. Relays tail these to decide when to
// act on the mirror ledger; the log gives no delivery guarantee, consumers
// re-scan from an old sequence number after a gap.
type Record struct {
	// Seq is the strictly increasing position of the record in its log.
	Seq uint64
	// ChainID identifies the ledger the transition happened on.
	ChainID int
	// Type is the transition kind.
	Type Type
	// Escrow is the escrow address the record concerns.
	Escrow common.Address
	// Salt is the deployment salt, set on deploy/create records.
	Salt common.Hash
	// Hashlock is the committed secret hash of the swap.
	Hashlock common.Hash
	// Secret is the revealed preimage, set only on completion records.
	Secret []byte
	// Amount is the value moved by the transition, when any.
	Amount *big.Int
	// Counterparty is the address funds moved to, when any.
	Counterparty common.Address
	// IntentID is set on settlement records.
	IntentID common.Hash
	// At is the ledger-local time of the transition.
	At time.Time
}

// Log is an in-memory append-only event sequence for a single ledger.
type Log struct {
	mu      sync.RWMutex
	chainID int
	records []Record
}

// NewLog creates an empty log for the given chain.
func NewLog(chainID int) *Log {
	return &Log{chainID: chainID}
}

// Append stamps the record with the next sequence number and the chain ID
// and stores it. Returns the assigned sequence number.
func (l *Log) Append(rec Record) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec.Seq = uint64(len(l.records)) + 1
	rec.ChainID = l.chainID
	l.records = append(l.records, rec)
	return rec.Seq
}

// Since returns a copy of all records with sequence number strictly greater
// than seq. Passing 0 returns the full history.
func (l *Log) Since(seq uint64) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if seq >= uint64(len(l.records)) {
		return nil
	}
	out := make([]Record, len(l.records)-int(seq))
	copy(out, l.records[seq:])
	return out
}

// Height returns the sequence number of the latest record.
func (l *Log) Height() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return uint64(len(l.records))
}
