package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"code.pegvault.io/pegclient/types/num"
)

func Test_newSnapshotCache(t *testing.T) {
	s := NewSnapshotStore()
	defer s.Close()

	s.SnapshotSet(
		SetPrice(num.DecimalFromInt64(100000)),
		SetTotalSupply(num.DecimalFromInt64(1000)),
		SetCollateralValue(num.DecimalFromInt64(1150)),
		SetVaultBalance("WBTC", num.MustDecimal("0.5")),
		SetRewardRound(3),
		SetRewardsDistributed(num.DecimalFromInt64(42)),
	)

	snap := s.Snapshot()
	assert.True(t, snap.Price.Equal(num.DecimalFromInt64(100000)))
	assert.True(t, snap.TotalSupply.Equal(num.DecimalFromInt64(1000)))
	assert.True(t, snap.VaultBalance("WBTC").Equal(num.MustDecimal("0.5")))
	assert.True(t, snap.VaultBalance("tBTC").IsZero())
	assert.Equal(t, uint64(3), snap.Distribution.Round)
	assert.Equal(t, "42", snap.Distribution.TotalDistributed.String())
	assert.Equal(t, "1.15", snap.Ratio().String())
}

func TestSnapshotStore_copiesAreIndependent(t *testing.T) {
	s := NewSnapshotStore()
	defer s.Close()

	s.SnapshotSet(SetVaultBalance("WBTC", num.DecimalFromInt64(1)))
	held := s.Snapshot()

	held.Collateral["WBTC"] = num.DecimalFromInt64(99)
	assert.True(t, s.Snapshot().VaultBalance("WBTC").Equal(num.DecimalFromInt64(1)))

	s.SnapshotSet(SetVaultBalance("WBTC", num.DecimalFromInt64(2)))
	assert.True(t, held.VaultBalance("WBTC").Equal(num.DecimalFromInt64(99)))
	assert.True(t, s.Snapshot().VaultBalance("WBTC").Equal(num.DecimalFromInt64(2)))
}

func TestSnapshotStore_Replace(t *testing.T) {
	s := NewSnapshotStore()
	defer s.Close()

	s.SnapshotSet(SetVaultBalance("WBTC", num.DecimalFromInt64(1)))
	s.Replace(ProtocolSnapshot{Price: num.DecimalFromInt64(5)})

	snap := s.Snapshot()
	assert.True(t, snap.Price.Equal(num.DecimalFromInt64(5)))
	assert.Empty(t, snap.Collateral)
	assert.False(t, snap.Ratio().Defined)
}

func Test_newAccountCache(t *testing.T) {
	s := NewSnapshotStore()
	defer s.Close()

	s.AccountSet(
		SetTokenBalance(num.DecimalFromInt64(10)),
		SetAssetBalance("WBTC", num.DecimalFromInt64(2)),
		SetAllowance("WBTC", num.DecimalFromInt64(1)),
	)

	acc := s.Account()
	assert.True(t, acc.TokenBalance.Equal(num.DecimalFromInt64(10)))
	assert.True(t, acc.AssetBalances["WBTC"].Equal(num.DecimalFromInt64(2)))
	assert.True(t, acc.Allowances["WBTC"].Equal(num.DecimalFromInt64(1)))
}

func TestSnapshotStore_usableAfterClose(t *testing.T) {
	s := NewSnapshotStore()
	s.SnapshotSet(SetPrice(num.DecimalFromInt64(100000)))
	s.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.SnapshotSet(SetPrice(num.DecimalFromInt64(1)))
		s.AccountSet(SetTokenBalance(num.DecimalFromInt64(1)))
		_ = s.Snapshot()
		_ = s.Account()
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("store blocked after Close")
	}

	assert.NotNil(t, s.Snapshot().Collateral)
}
