package types

import "context"

// SnapshotStore holds the latest ProtocolSnapshot and AccountState. All reads return
// independent copies; writes apply set functions to a fresh copy inside the owning
// goroutine, so the snapshot seen by readers is never mutated in place.
type SnapshotStore struct {
	protocol cache[ProtocolSnapshot]
	account  cache[AccountState]
	cancel   context.CancelFunc
}

// NewSnapshotStore starts the store goroutines. Close stops them.
func NewSnapshotStore() *SnapshotStore {
	ctx, cancel := context.WithCancel(context.Background())
	return &SnapshotStore{
		protocol: newCache[ProtocolSnapshot](ctx, ProtocolSnapshot.Clone),
		account:  newCache[AccountState](ctx, AccountState.Clone),
		cancel:   cancel,
	}
}

// Snapshot returns the current protocol snapshot.
func (s *SnapshotStore) Snapshot() ProtocolSnapshot {
	return s.protocol.get()
}

// Replace swaps in a whole new snapshot.
func (s *SnapshotStore) Replace(snap ProtocolSnapshot) {
	snap = snap.Clone()
	s.protocol.set(func(d *ProtocolSnapshot) { *d = snap })
}

// SnapshotSet applies the set functions to a copy of the snapshot and publishes the copy.
func (s *SnapshotStore) SnapshotSet(sets ...func(*ProtocolSnapshot)) {
	s.protocol.set(sets...)
}

// Account returns the current account state.
func (s *SnapshotStore) Account() AccountState {
	return s.account.get()
}

// AccountSet applies the set functions to a copy of the account state.
func (s *SnapshotStore) AccountSet(sets ...func(*AccountState)) {
	s.account.set(sets...)
}

// Close stops the store. Reads after Close return empty values and writes are dropped.
func (s *SnapshotStore) Close() {
	s.cancel()
}

type cache[T any] struct {
	getCh chan chan T
	setCh chan []func(*T)
	done  <-chan struct{}
	clone func(T) T
}

func (c cache[T]) get() T {
	r := make(chan T)
	select {
	case c.getCh <- r:
		return <-r
	case <-c.done:
		return c.clone(*new(T))
	}
}

func (c cache[T]) set(f ...func(*T)) {
	select {
	case c.setCh <- f:
	case <-c.done:
	}
}

func newCache[T any](ctx context.Context, clone func(T) T) cache[T] {
	var c cache[T]

	c.getCh = make(chan chan T)
	c.setCh = make(chan []func(*T))
	c.done = ctx.Done()
	c.clone = clone

	go func() {
		d := clone(*new(T))
		for {
			select {
			case <-ctx.Done():
				return
			case g := <-c.getCh:
				g <- clone(d)
			case s := <-c.setCh:
				next := clone(d)
				for _, fn := range s {
					fn(&next)
				}
				d = next
			}
		}
	}()

	return c
}

// SetPrice sets the collateral price in USD.
func SetPrice(price VaultBalance) func(*ProtocolSnapshot) {
	return func(s *ProtocolSnapshot) { s.Price = price }
}

// SetTotalSupply sets the outstanding token supply.
func SetTotalSupply(supply VaultBalance) func(*ProtocolSnapshot) {
	return func(s *ProtocolSnapshot) { s.TotalSupply = supply }
}

// SetCollateralValue sets the total collateral value in USD.
func SetCollateralValue(value VaultBalance) func(*ProtocolSnapshot) {
	return func(s *ProtocolSnapshot) { s.CollateralValueUSD = value }
}

// SetVaultBalance sets the vault balance of one asset.
func SetVaultBalance(asset AssetID, balance VaultBalance) func(*ProtocolSnapshot) {
	return func(s *ProtocolSnapshot) { s.Collateral[asset] = balance }
}

// SetRewardRound sets the current reward distribution round.
func SetRewardRound(round uint64) func(*ProtocolSnapshot) {
	return func(s *ProtocolSnapshot) { s.Distribution.Round = round }
}

// SetRewardsDistributed sets the total of rewards distributed so far.
func SetRewardsDistributed(total VaultBalance) func(*ProtocolSnapshot) {
	return func(s *ProtocolSnapshot) { s.Distribution.TotalDistributed = total }
}

// SetTokenBalance sets the account's protocol token balance.
func SetTokenBalance(balance VaultBalance) func(*AccountState) {
	return func(a *AccountState) { a.TokenBalance = balance }
}

// SetAssetBalance sets the account's balance of one collateral asset.
func SetAssetBalance(asset AssetID, balance VaultBalance) func(*AccountState) {
	return func(a *AccountState) { a.AssetBalances[asset] = balance }
}

// SetAllowance sets the vault allowance granted by the account for one asset.
func SetAllowance(asset AssetID, allowance VaultBalance) func(*AccountState) {
	return func(a *AccountState) { a.Allowances[asset] = allowance }
}
