package orchestrator

import (
	"context"

	"code.pegvault.io/pegclient/syncer"
	"code.pegvault.io/pegclient/types"
)

// Listener is told about every state the current operation enters, in order. It is
// called on the operation goroutine and must not block.
type Listener interface {
	OperationChanged(op types.PendingOperation)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(op types.PendingOperation)

// OperationChanged implements Listener.
func (f ListenerFunc) OperationChanged(op types.PendingOperation) {
	f(op)
}

// snapshotReader is the read side of the protocol state store.
type snapshotReader interface {
	Snapshot() types.ProtocolSnapshot
	Account() types.AccountState
}

// syncTrigger starts the post-operation refresh.
type syncTrigger interface {
	RefreshAfter(ctx context.Context, kind types.OperationKind) *syncer.SyncJob
}
