package ledger_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swaplock-hq/swaplock/pkg/ledger"
	"github.com/swaplock-hq/swaplock/pkg/swap"
)

var (
	asset = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	carol = common.HexToAddress("0x00000000000000000000000000000000000000c1")
)

func TestMintAndBalance(t *testing.T) {
	l := ledger.New(31337, nil)

	assert.Zero(t, l.BalanceOf(asset, alice).Sign())

	l.Mint(asset, alice, big.NewInt(500))
	l.Mint(asset, alice, big.NewInt(250))
	assert.Zero(t, l.BalanceOf(asset, alice).Cmp(big.NewInt(750)))
}

func TestTransfer(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		amount  int64
		wantErr bool
	}{
		{
			name:    "sufficient balance",
			balance: 100,
			amount:  100,
		},
		{
			name:    "insufficient balance",
			balance: 99,
			amount:  100,
			wantErr: true,
		},
		{
			name:    "zero amount",
			balance: 100,
			amount:  0,
			wantErr: true,
		},
		{
			name:    "negative amount",
			balance: 100,
			amount:  -5,
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := ledger.New(31337, nil)
			l.Mint(asset, alice, big.NewInt(tc.balance))

			err := l.Transfer(asset, alice, bob, big.NewInt(tc.amount))
			if tc.wantErr {
				require.ErrorIs(t, err, swap.ErrTransferFailed)
				// No partial movement.
				assert.Zero(t, l.BalanceOf(asset, alice).Cmp(big.NewInt(tc.balance)))
				assert.Zero(t, l.BalanceOf(asset, bob).Sign())
				return
			}

			require.NoError(t, err)
			assert.Zero(t, l.BalanceOf(asset, alice).Cmp(big.NewInt(tc.balance-tc.amount)))
			assert.Zero(t, l.BalanceOf(asset, bob).Cmp(big.NewInt(tc.amount)))
		})
	}
}

func TestTransferFrom(t *testing.T) {
	l := ledger.New(31337, nil)
	l.Mint(asset, alice, big.NewInt(1000))
	l.Approve(asset, alice, bob, big.NewInt(600))

	// Spender moves within allowance.
	require.NoError(t, l.TransferFrom(asset, bob, alice, carol, big.NewInt(400)))
	assert.Zero(t, l.BalanceOf(asset, carol).Cmp(big.NewInt(400)))
	assert.Zero(t, l.Allowance(asset, alice, bob).Cmp(big.NewInt(200)))

	// Exceeding the remaining allowance fails cleanly.
	err := l.TransferFrom(asset, bob, alice, carol, big.NewInt(300))
	require.ErrorIs(t, err, swap.ErrTransferFailed)
	assert.Zero(t, l.BalanceOf(asset, carol).Cmp(big.NewInt(400)))
	assert.Zero(t, l.Allowance(asset, alice, bob).Cmp(big.NewInt(200)))

	// A stranger with no allowance cannot move anything.
	err = l.TransferFrom(asset, carol, alice, carol, big.NewInt(1))
	require.ErrorIs(t, err, swap.ErrTransferFailed)
}

func TestTransferFromInsufficientBalanceKeepsAllowance(t *testing.T) {
	l := ledger.New(31337, nil)
	l.Mint(asset, alice, big.NewInt(50))
	l.Approve(asset, alice, bob, big.NewInt(100))

	err := l.TransferFrom(asset, bob, alice, carol, big.NewInt(75))
	require.ErrorIs(t, err, swap.ErrTransferFailed)

	// Neither balance nor allowance was touched by the failed attempt.
	assert.Zero(t, l.BalanceOf(asset, alice).Cmp(big.NewInt(50)))
	assert.Zero(t, l.Allowance(asset, alice, bob).Cmp(big.NewInt(100)))
}

func TestManualClock(t *testing.T) {
	start := time.Unix(1_000_000, 0)
	clock := ledger.NewManualClock(start)
	l := ledger.New(31337, clock)

	assert.Equal(t, uint64(1_000_000), l.NowUnix())

	clock.Advance(90 * time.Second)
	assert.Equal(t, uint64(1_000_090), l.NowUnix())

	clock.Set(start.Add(time.Hour))
	assert.Equal(t, uint64(1_003_600), l.NowUnix())
}

func TestLedgersAreIndependent(t *testing.T) {
	srcClock := ledger.NewManualClock(time.Unix(1_000_000, 0))
	dstClock := ledger.NewManualClock(time.Unix(5_000_000, 0))

	src := ledger.New(31337, srcClock)
	dst := ledger.New(31338, dstClock)

	src.Mint(asset, alice, big.NewInt(100))
	assert.Zero(t, dst.BalanceOf(asset, alice).Sign())

	srcClock.Advance(time.Hour)
	assert.Equal(t, uint64(5_000_000), dst.NowUnix())

	assert.NotEqual(t, src.ChainID(), dst.ChainID())
}
