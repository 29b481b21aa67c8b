package syncer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.pegvault.io/pegclient/chain"
	e "code.pegvault.io/pegclient/errors"
	"code.pegvault.io/pegclient/types"
)

var (
	user  = common.HexToAddress("0xaaaa000000000000000000000000000000000001")
	wbtc  = types.Asset{ID: "WBTC", Address: common.HexToAddress("0x0b"), Decimals: 8}
	tbtc  = types.Asset{ID: "tBTC", Address: common.HexToAddress("0x0c"), Decimals: 18}
	token = common.HexToAddress("0x01")
	vault = common.HexToAddress("0x02")
)

func testContracts() chain.Contracts {
	return chain.NewContracts(token, vault, common.HexToAddress("0x03"), 18, 8, []types.Asset{wbtc, tbtc})
}

type fakeReader struct {
	mu     sync.Mutex
	values map[string]*big.Int
	fail   map[string]error
	calls  []time.Time
	count  int32
}

func newFakeReader() *fakeReader {
	return &fakeReader{values: map[string]*big.Int{}, fail: map[string]error{}}
}

func key(contract, method string, args ...interface{}) string {
	k := contract + "." + method
	for _, a := range args {
		k += fmt.Sprintf(":%v", a)
	}
	return k
}

func (f *fakeReader) set(v int64, contract, method string, args ...interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key(contract, method, args...)] = big.NewInt(v)
}

func (f *fakeReader) ReadValue(_ context.Context, contract types.ContractRef, method string, args ...interface{}) (*big.Int, error) {
	atomic.AddInt32(&f.count, 1)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, time.Now())

	k := key(contract.Name, method, args...)
	if err, ok := f.fail[k]; ok {
		return nil, err
	}
	if v, ok := f.values[k]; ok {
		return new(big.Int).Set(v), nil
	}
	return big.NewInt(0), nil
}

type fakeSession struct {
	s  types.Session
	ok bool
}

func (f fakeSession) Session() (types.Session, bool) {
	return f.s, f.ok
}

func connected() fakeSession {
	return fakeSession{s: types.Session{Address: user, ChainID: big.NewInt(1)}, ok: true}
}

func seededReader() *fakeReader {
	r := newFakeReader()
	r.set(10_000_000_000_000, "oracle", chain.MethodPrice) // 100000 at 8 decimals
	r.set(5, "token", chain.MethodTotalSupply)
	r.set(3, "vault", chain.MethodRewardRound)
	r.set(250_000_000, "WBTC", chain.MethodBalanceOf, vault)
	r.set(40_000_000, "WBTC", chain.MethodBalanceOf, user)
	r.set(10_000_000, "WBTC", chain.MethodAllowance, user, vault)
	return r
}

func TestBootstrap_LoadsFullReadSet(t *testing.T) {
	store := types.NewSnapshotStore()
	defer store.Close()

	r := seededReader()
	c := NewCoordinator(r, store, connected(), testContracts(), time.Millisecond)

	require.NoError(t, c.Bootstrap(context.Background()))

	snap := store.Snapshot()
	assert.Equal(t, "100000", snap.Price.String())
	assert.Equal(t, "0.000000000000000005", snap.TotalSupply.String())
	assert.Equal(t, "2.5", snap.VaultBalance("WBTC").String())
	assert.True(t, snap.VaultBalance("tBTC").IsZero())
	assert.Equal(t, uint64(3), snap.Distribution.Round)
	assert.False(t, snap.UpdatedAt.IsZero())

	acc := store.Account()
	assert.Equal(t, user, acc.Address)
	assert.Equal(t, "0.4", acc.AssetBalances["WBTC"].String())
	assert.Equal(t, "0.1", acc.Allowances["WBTC"].String())

	// 5 protocol reads, 2 vault balances, token balance, 2 balances and 2 allowances
	assert.Equal(t, int32(12), atomic.LoadInt32(&r.count))
}

func TestBootstrap_NotConnectedSkipsAccountReads(t *testing.T) {
	store := types.NewSnapshotStore()
	defer store.Close()

	r := seededReader()
	c := NewCoordinator(r, store, fakeSession{}, testContracts(), time.Millisecond)

	require.NoError(t, c.Bootstrap(context.Background()))
	assert.Equal(t, int32(7), atomic.LoadInt32(&r.count))
	assert.Equal(t, common.Address{}, store.Account().Address)
}

func TestRefreshAfter_FailedReadsDoNotFailJob(t *testing.T) {
	store := types.NewSnapshotStore()
	defer store.Close()

	r := seededReader()
	r.fail[key("oracle", chain.MethodPrice)] = errors.New("connection refused")
	r.fail[key("WBTC", chain.MethodAllowance, user, vault)] = errors.New("timeout")

	c := NewCoordinator(r, store, connected(), testContracts(), time.Millisecond)
	job := c.RefreshAfter(context.Background(), types.Mint)

	select {
	case <-job.Done():
	case <-time.After(time.Second):
		t.Fatal("sync job did not settle")
	}

	assert.Equal(t, 12, job.Reads())
	require.Error(t, job.Err())
	assert.Contains(t, job.Err().Error(), "oracle.getBTCPrice")
	assert.Contains(t, job.Err().Error(), "WBTC.allowance")

	snap := store.Snapshot()
	assert.True(t, snap.Price.IsZero())
	assert.Equal(t, "2.5", snap.VaultBalance("WBTC").String())
	assert.Equal(t, "0.4", store.Account().AssetBalances["WBTC"].String())
}

func TestRefreshAfter_WaitsSettleDelay(t *testing.T) {
	store := types.NewSnapshotStore()
	defer store.Close()

	r := seededReader()
	delay := 50 * time.Millisecond
	c := NewCoordinator(r, store, connected(), testContracts(), delay)

	start := time.Now()
	job := c.RefreshAfter(context.Background(), types.Redeem)
	require.NoError(t, job.Wait(context.Background()))

	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.calls)
	for _, at := range r.calls {
		assert.GreaterOrEqual(t, at.Sub(start), delay)
	}
	assert.Equal(t, types.Redeem, job.Kind)
}

func TestRefreshAfter_InterruptedDuringSettle(t *testing.T) {
	store := types.NewSnapshotStore()
	defer store.Close()

	r := seededReader()
	c := NewCoordinator(r, store, connected(), testContracts(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	job := c.RefreshAfter(ctx, types.Mint)
	cancel()

	require.NoError(t, job.Wait(context.Background()))
	assert.ErrorIs(t, job.Err(), e.ErrInterrupted)
	assert.Equal(t, int32(0), atomic.LoadInt32(&r.count))
}

func TestBootstrap_AccountSwitchResetsBalances(t *testing.T) {
	store := types.NewSnapshotStore()
	defer store.Close()

	store.AccountSet(func(a *types.AccountState) {
		a.Address = common.HexToAddress("0xbbbb")
		a.AssetBalances["tBTC"] = types.VaultBalance{}
	})

	c := NewCoordinator(seededReader(), store, connected(), testContracts(), time.Millisecond)
	require.NoError(t, c.Bootstrap(context.Background()))

	acc := store.Account()
	assert.Equal(t, user, acc.Address)
	assert.Equal(t, "0.4", acc.AssetBalances["WBTC"].String())
	assert.True(t, acc.AssetBalances["tBTC"].IsZero())
}

func TestBootstrap_ChainSwitchResetsBalances(t *testing.T) {
	store := types.NewSnapshotStore()
	defer store.Close()

	store.AccountSet(func(a *types.AccountState) {
		a.Address = user
		a.ChainID = big.NewInt(5)
		a.AssetBalances["tBTC"] = types.VaultBalance{}
	})

	c := NewCoordinator(seededReader(), store, connected(), testContracts(), time.Millisecond)
	require.NoError(t, c.Bootstrap(context.Background()))

	acc := store.Account()
	assert.Equal(t, "1", acc.ChainID.String())
	assert.Equal(t, "0.4", acc.AssetBalances["WBTC"].String())
	assert.True(t, acc.AssetBalances["tBTC"].IsZero())
}

type countingRefresher struct {
	n int32
}

func (c *countingRefresher) Bootstrap(context.Context) error {
	atomic.AddInt32(&c.n, 1)
	return nil
}

func TestPoller_RunsPeriodically(t *testing.T) {
	r := &countingRefresher{}
	p := NewPoller(r, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, p.Start(ctx))
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&r.n) >= 3 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, p.Shutdown())
	assert.NoError(t, p.Shutdown())
}
