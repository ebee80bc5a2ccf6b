package coordinator_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swaplock-hq/swaplock/pkg/coordinator"
	"github.com/swaplock-hq/swaplock/pkg/factory"
	"github.com/swaplock-hq/swaplock/pkg/ledger"
	"github.com/swaplock-hq/swaplock/pkg/swap"
)

var (
	srcAsset    = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	dstAsset    = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	partyA      = common.HexToAddress("0x000000000000000000000000000000000000AAA1")
	partyB      = common.HexToAddress("0x000000000000000000000000000000000000BBB1")
	factoryAddr = common.HexToAddress("0x00000000000000000000000000000000000Fac70")
)

func legPair(srcTimeout, dstTimeout uint64) (coordinator.Leg, coordinator.Leg) {
	hashlock := swap.HashSecret([]byte("s1"))

	src := coordinator.Leg{
		ChainID: 31337,
		Factory: factoryAddr,
		Salt:    crypto.Keccak256Hash([]byte("leg-src")),
		Params: swap.Params{
			Asset:     srcAsset,
			Amount:    big.NewInt(1000),
			Recipient: partyB,
			Depositor: partyA,
			Hashlock:  hashlock,
			Timeout:   srcTimeout,
		},
	}
	dst := coordinator.Leg{
		ChainID: 31338,
		Factory: factoryAddr,
		Salt:    crypto.Keccak256Hash([]byte("leg-dst")),
		Params: swap.Params{
			Asset:     dstAsset,
			Amount:    big.NewInt(2000),
			Recipient: partyA,
			Depositor: partyB,
			Hashlock:  hashlock,
			Timeout:   dstTimeout,
		},
	}
	return src, dst
}

func TestNewPlan(t *testing.T) {
	t.Run("valid ordering", func(t *testing.T) {
		src, dst := legPair(1_003_600, 1_001_800)
		plan, err := coordinator.NewPlan(src, dst)
		require.NoError(t, err)
		assert.Equal(t, uint64(1800), plan.SecretWindow())
	})

	t.Run("destination not earlier", func(t *testing.T) {
		src, dst := legPair(1_001_800, 1_003_600)
		_, err := coordinator.NewPlan(src, dst)
		assert.Error(t, err)
	})

	t.Run("equal timeouts", func(t *testing.T) {
		src, dst := legPair(1_003_600, 1_003_600)
		_, err := coordinator.NewPlan(src, dst)
		assert.Error(t, err)
	})

	t.Run("same ledger", func(t *testing.T) {
		src, dst := legPair(1_003_600, 1_001_800)
		dst.ChainID = src.ChainID
		_, err := coordinator.NewPlan(src, dst)
		assert.Error(t, err)
	})

	t.Run("mismatched hashlocks", func(t *testing.T) {
		src, dst := legPair(1_003_600, 1_001_800)
		dst.Params.Hashlock = swap.HashSecret([]byte("s2"))
		_, err := coordinator.NewPlan(src, dst)
		assert.Error(t, err)
	})
}

func TestLegAddressMatchesFactory(t *testing.T) {
	src, _ := legPair(1_003_600, 1_001_800)

	l := ledger.New(src.ChainID, ledger.NewManualClock(time.Unix(1_000_000, 0)))
	f := factory.New(l, factory.Config{Address: factoryAddr})

	l.Mint(srcAsset, partyA, big.NewInt(1000))
	l.Approve(srcAsset, partyA, factoryAddr, big.NewInt(1000))

	esc, err := f.CreateEscrow(partyA, src.Salt, src.Params)
	require.NoError(t, err)
	assert.Equal(t, src.Address(), esc.Address())
}

// TestCrossLedgerSwap plays out the full two-leg protocol on two ledgers
// with independent clocks: A locks on the source with a one hour timeout, B
// mirrors on the destination with a thirty minute timeout, B's recipient
// side is claimed early revealing the secret, and A's counterparty reuses
// the now-public secret on the source well before the source timeout.
func TestCrossLedgerSwap(t *testing.T) {
	secret := []byte("s1")

	srcClock := ledger.NewManualClock(time.Unix(1_000_000, 0))
	dstClock := ledger.NewManualClock(time.Unix(1_000_000, 0))
	srcLedger := ledger.New(31337, srcClock)
	dstLedger := ledger.New(31338, dstClock)
	srcFactory := factory.New(srcLedger, factory.Config{Address: factoryAddr})
	dstFactory := factory.New(dstLedger, factory.Config{Address: factoryAddr})

	srcLedger.Mint(srcAsset, partyA, big.NewInt(1000))
	srcLedger.Approve(srcAsset, partyA, factoryAddr, big.NewInt(1000))
	dstLedger.Mint(dstAsset, partyB, big.NewInt(2000))
	dstLedger.Approve(dstAsset, partyB, factoryAddr, big.NewInt(2000))

	src, dst := legPair(srcLedger.NowUnix()+3600, dstLedger.NowUnix()+1800)
	plan, err := coordinator.NewPlan(src, dst)
	require.NoError(t, err)
	require.Positive(t, plan.SecretWindow())

	// Both parties verify the predicted addresses before funding.
	srcEscrow, err := srcFactory.CreateEscrow(partyA, src.Salt, src.Params)
	require.NoError(t, err)
	require.Equal(t, plan.Source.Address(), srcEscrow.Address())

	dstEscrow, err := dstFactory.CreateEscrow(partyB, dst.Salt, dst.Params)
	require.NoError(t, err)
	require.Equal(t, plan.Destination.Address(), dstEscrow.Address())

	// T+500 on the destination: A claims B's funds, revealing the secret.
	dstClock.Advance(500 * time.Second)
	require.NoError(t, dstEscrow.Withdraw(secret))
	assert.Zero(t, dstLedger.BalanceOf(dstAsset, partyA).Cmp(big.NewInt(2000)))

	// The secret is now public via the destination event log.
	dstEvents := dstLedger.Events().Since(0)
	revealed := dstEvents[len(dstEvents)-1].Secret
	require.Equal(t, secret, revealed)

	// Any time before the source timeout, B (or a relay) reuses it on the
	// source. Push the source clock right up to the last valid second to
	// show the window the ordering invariant guarantees.
	srcClock.Advance(3599 * time.Second)
	require.NoError(t, srcEscrow.Withdraw(revealed))
	assert.Zero(t, srcLedger.BalanceOf(srcAsset, partyB).Cmp(big.NewInt(1000)))

	assert.Equal(t, swap.StateCompleted, srcEscrow.Inspect().State)
	assert.Equal(t, swap.StateCompleted, dstEscrow.Inspect().State)
}

// TestCrossLedgerUnwind is the abort path: nobody reveals, both legs refund
// safely, destination first.
func TestCrossLedgerUnwind(t *testing.T) {
	srcClock := ledger.NewManualClock(time.Unix(1_000_000, 0))
	dstClock := ledger.NewManualClock(time.Unix(1_000_000, 0))
	srcLedger := ledger.New(31337, srcClock)
	dstLedger := ledger.New(31338, dstClock)
	srcFactory := factory.New(srcLedger, factory.Config{Address: factoryAddr})
	dstFactory := factory.New(dstLedger, factory.Config{Address: factoryAddr})

	srcLedger.Mint(srcAsset, partyA, big.NewInt(1000))
	srcLedger.Approve(srcAsset, partyA, factoryAddr, big.NewInt(1000))
	dstLedger.Mint(dstAsset, partyB, big.NewInt(2000))
	dstLedger.Approve(dstAsset, partyB, factoryAddr, big.NewInt(2000))

	src, dst := legPair(srcLedger.NowUnix()+3600, dstLedger.NowUnix()+1800)
	_, err := coordinator.NewPlan(src, dst)
	require.NoError(t, err)

	srcEscrow, err := srcFactory.CreateEscrow(partyA, src.Salt, src.Params)
	require.NoError(t, err)
	dstEscrow, err := dstFactory.CreateEscrow(partyB, dst.Salt, dst.Params)
	require.NoError(t, err)

	// B can refund as soon as the destination timeout passes, strictly
	// before the source timeout arrives.
	dstClock.Advance(1801 * time.Second)
	require.NoError(t, dstEscrow.Refund())
	assert.Zero(t, dstLedger.BalanceOf(dstAsset, partyB).Cmp(big.NewInt(2000)))

	// A refunds after the source timeout.
	srcClock.Advance(3601 * time.Second)
	require.NoError(t, srcEscrow.Refund())
	assert.Zero(t, srcLedger.BalanceOf(srcAsset, partyA).Cmp(big.NewInt(1000)))
}
