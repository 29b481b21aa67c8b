package syncer

import (
	"context"

	"code.pegvault.io/pegclient/types"
)

// snapshotStore is the write side of the protocol state store.
type snapshotStore interface {
	SnapshotSet(sets ...func(*types.ProtocolSnapshot))
	Account() types.AccountState
	AccountSet(sets ...func(*types.AccountState))
}

// refresher runs one full refresh without a settle delay.
type refresher interface {
	Bootstrap(ctx context.Context) error
}
