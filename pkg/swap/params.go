package swap

import (
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// HashlockSize is the exact byte length of a committed secret hash.
const HashlockSize = 32

// Params describes one leg of a hashed time-locked swap. It is a value
// object: immutable once an escrow has been created from it.
type Params struct {
	// Asset is the token contract holding the escrowed value.
	Asset common.Address
	// Amount is the quantity pulled into escrow custody at creation.
	Amount *big.Int
	// Recipient is entitled to withdraw once the secret is disclosed.
	Recipient common.Address
	// Depositor funds the escrow and reclaims after the timeout.
	Depositor common.Address
	// Hashlock is sha256 of the secret preimage, fixed at creation.
	Hashlock common.Hash
	// Timeout is the absolute Unix time (seconds) after which withdrawal
	// by secret is disallowed and refund becomes available.
	Timeout uint64
}

// Validate checks the static constraints on the params. Time-dependent
// constraints (timeout in the future) are checked against the ledger clock
// at creation, not here.
func (p Params) Validate() error {
	if p.Amount == nil || p.Amount.Sign() <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	if p.Asset == (common.Address{}) {
		return fmt.Errorf("asset address is required")
	}
	if p.Recipient == (common.Address{}) {
		return fmt.Errorf("recipient address is required")
	}
	if p.Depositor == (common.Address{}) {
		return fmt.Errorf("depositor address is required")
	}
	if p.Hashlock == (common.Hash{}) {
		return fmt.Errorf("hashlock is required")
	}
	if p.Timeout == 0 {
		return fmt.Errorf("timeout is required")
	}
	return nil
}

// Copy returns a deep copy so a stored escrow cannot be mutated through a
// retained Amount pointer.
func (p Params) Copy() Params {
	cp := p
	if p.Amount != nil {
		cp.Amount = new(big.Int).Set(p.Amount)
	}
	return cp
}

// HashSecret computes the hashlock for a secret preimage.
func HashSecret(secret []byte) common.Hash {
	return common.Hash(sha256.Sum256(secret))
}

// Encode produces the canonical byte encoding of the params used for salt
// and address derivation. Fixed-width fields in declaration order so the
// encoding is unambiguous without separators.
func (p Params) Encode() []byte {
	buf := make([]byte, 0, 20*3+32*3)
	buf = append(buf, p.Asset.Bytes()...)
	buf = append(buf, common.BigToHash(p.Amount).Bytes()...)
	buf = append(buf, p.Recipient.Bytes()...)
	buf = append(buf, p.Depositor.Bytes()...)
	buf = append(buf, p.Hashlock.Bytes()...)
	buf = append(buf, common.BigToHash(new(big.Int).SetUint64(p.Timeout)).Bytes()...)
	return buf
}
