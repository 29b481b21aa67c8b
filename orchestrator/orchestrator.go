// Package orchestrator drives one mint or redeem at a time through approval and
// execution, from validated input to a settled outcome.
package orchestrator

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"code.pegvault.io/pegclient/chain"
	"code.pegvault.io/pegclient/classifier"
	e "code.pegvault.io/pegclient/errors"
	"code.pegvault.io/pegclient/metrics"
	"code.pegvault.io/pegclient/quote"
	"code.pegvault.io/pegclient/types"
	"code.pegvault.io/pegclient/types/num"
)

const (
	DefaultConfirmationTimeout = 90 * time.Second
	DefaultDisplayWindow       = 5 * time.Second
)

// Config holds the orchestrator timings.
type Config struct {
	// ConfirmationTimeout bounds each wait for a receipt, counted from submission.
	ConfirmationTimeout time.Duration
	// DisplayWindow is how long a settled operation stays visible before the
	// orchestrator returns to Idle.
	DisplayWindow time.Duration
}

// call is one transaction of an operation.
type call struct {
	contract types.ContractRef
	method   string
	args     []interface{}
}

// plan is a validated operation, ready to run.
type plan struct {
	approve *call
	execute call
}

// Orchestrator owns the single PendingOperation.
type Orchestrator struct {
	cfg       Config
	store     snapshotReader
	writer    types.ChainWriter
	session   types.WalletSession
	sync      syncTrigger
	contracts chain.Contracts
	listeners []Listener

	mu sync.Mutex
	op *types.PendingOperation

	log *log.Entry
}

// New returns an Orchestrator.
func New(
	cfg Config,
	store snapshotReader,
	writer types.ChainWriter,
	session types.WalletSession,
	refresh syncTrigger,
	contracts chain.Contracts,
	listeners ...Listener,
) (*Orchestrator, error) {
	if store == nil || writer == nil || session == nil || refresh == nil {
		return nil, fmt.Errorf("orchestrator collaborators must not be nil: %w", e.ErrNil)
	}
	if cfg.ConfirmationTimeout <= 0 {
		cfg.ConfirmationTimeout = DefaultConfirmationTimeout
	}
	if cfg.DisplayWindow <= 0 {
		cfg.DisplayWindow = DefaultDisplayWindow
	}

	return &Orchestrator{
		cfg:       cfg,
		store:     store,
		writer:    writer,
		session:   session,
		sync:      refresh,
		contracts: contracts,
		listeners: listeners,
		log:       log.WithFields(log.Fields{"component": "TransactionOrchestrator"}),
	}, nil
}

// CurrentOperationState returns a copy of the live operation, or an Idle operation if
// there is none.
func (o *Orchestrator) CurrentOperationState() types.PendingOperation {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.op == nil {
		return types.PendingOperation{State: types.Idle}
	}
	return *o.op
}

// SubmitMint validates a deposit of amount of asset and starts the mint. Validation
// failures are returned without touching the chain; everything after is reported
// through the operation state.
func (o *Orchestrator) SubmitMint(ctx context.Context, asset types.AssetID, amount num.Decimal) (types.PendingOperation, error) {
	return o.submit(ctx, types.Mint, asset, amount, o.planMint)
}

// SubmitRedeem validates burning amount tokens for asset and starts the redemption.
func (o *Orchestrator) SubmitRedeem(ctx context.Context, asset types.AssetID, amount num.Decimal) (types.PendingOperation, error) {
	return o.submit(ctx, types.Redeem, asset, amount, o.planRedeem)
}

type planner func(session types.Session, asset types.Asset, amount num.Decimal) (plan, error)

func (o *Orchestrator) submit(
	_ context.Context,
	kind types.OperationKind,
	assetID types.AssetID,
	amount num.Decimal,
	planFn planner,
) (types.PendingOperation, error) {
	o.mu.Lock()

	if o.op != nil {
		o.mu.Unlock()
		return types.PendingOperation{}, types.NewError(types.KindOperationInProgress)
	}

	session, ok := o.session.Session()
	if !ok {
		o.mu.Unlock()
		return types.PendingOperation{}, types.NewError(types.KindNotConnected)
	}

	asset, ok := o.contracts.Asset(assetID)
	if !ok {
		o.mu.Unlock()
		return types.PendingOperation{}, fmt.Errorf("%w: %s", e.ErrUnknownAsset, assetID)
	}

	if !amount.IsPositive() {
		o.mu.Unlock()
		return types.PendingOperation{}, types.NewError(types.KindInvalidAmount)
	}

	p, err := planFn(session, asset, amount)
	if err != nil {
		o.mu.Unlock()
		return types.PendingOperation{}, err
	}

	o.op = &types.PendingOperation{
		ID:               uuid.New(),
		Kind:             kind,
		Asset:            assetID,
		Amount:           amount,
		State:            types.ValidatingInput,
		RequiresApproval: p.approve != nil,
		StartedAt:        time.Now(),
	}
	validated := *o.op
	o.mu.Unlock()

	o.notify(validated)

	next := types.AwaitingExecutionSignature
	if p.approve != nil {
		next = types.AwaitingApprovalSignature
	}
	op, _ := o.transition(validated.ID, next, nil)

	o.log.WithFields(log.Fields{
		"operation": op.ID,
		"kind":      kind.String(),
		"asset":     assetID,
		"amount":    amount.String(),
		"approval":  op.RequiresApproval,
	}).Info("Operation started")

	// a submitted transaction outlives the request that started it
	go o.run(context.Background(), op.ID, kind, p)

	return op, nil
}

func (o *Orchestrator) planMint(session types.Session, asset types.Asset, amount num.Decimal) (plan, error) {
	snap := o.store.Snapshot()
	account := o.accountOf(session)

	if balance := account.AssetBalances[asset.ID]; amount.GreaterThan(balance) {
		return plan{}, types.NewShortfallError(types.KindInsufficientBalance, amount, balance)
	}
	if _, err := quote.MintQuote(amount, snap); err != nil {
		return plan{}, err
	}

	units := num.UnitsFromDecimal(amount, asset.Decimals)
	p := plan{
		execute: call{
			contract: o.contracts.Vault,
			method:   chain.MethodMint,
			args:     []interface{}{asset.Address, units},
		},
	}

	if amount.GreaterThan(account.Allowances[asset.ID]) {
		p.approve = &call{
			contract: chain.AssetRef(asset),
			method:   chain.MethodApprove,
			args:     []interface{}{o.contracts.Vault.Address, new(big.Int).Set(units)},
		}
	}

	return p, nil
}

func (o *Orchestrator) planRedeem(session types.Session, asset types.Asset, amount num.Decimal) (plan, error) {
	snap := o.store.Snapshot()
	account := o.accountOf(session)

	if amount.GreaterThan(account.TokenBalance) {
		return plan{}, types.NewShortfallError(types.KindInsufficientBalance, amount, account.TokenBalance)
	}
	if _, err := quote.RedeemQuote(amount, asset.ID, snap); err != nil {
		return plan{}, err
	}

	return plan{
		execute: call{
			contract: o.contracts.Vault,
			method:   chain.MethodRedeem,
			args:     []interface{}{asset.Address, num.UnitsFromDecimal(amount, o.contracts.TokenDecimals)},
		},
	}, nil
}

// accountOf returns the stored account state if it belongs to session. Balances of a
// different account or chain are never used.
func (o *Orchestrator) accountOf(session types.Session) types.AccountState {
	account := o.store.Account()
	if !account.BelongsTo(session) {
		return types.EmptyAccount(session)
	}
	return account
}

func (o *Orchestrator) run(ctx context.Context, id uuid.UUID, kind types.OperationKind, p plan) {
	if p.approve != nil {
		ref, opErr := o.send(ctx, *p.approve)
		if opErr != nil {
			o.fail(id, opErr)
			return
		}
		if _, ok := o.transition(id, types.ApprovalSubmitted, func(op *types.PendingOperation) { op.ApprovalTxRef = &ref }); !ok {
			return
		}
		if opErr = o.confirm(ctx, ref); opErr != nil {
			o.fail(id, opErr)
			return
		}
		if _, ok := o.transition(id, types.ApprovalConfirmed, nil); !ok {
			return
		}
		// the execution signature is requested without a second trigger
		if _, ok := o.transition(id, types.AwaitingExecutionSignature, nil); !ok {
			return
		}
	}

	ref, opErr := o.send(ctx, p.execute)
	if opErr != nil {
		o.fail(id, opErr)
		return
	}
	if _, ok := o.transition(id, types.ExecutionSubmitted, func(op *types.PendingOperation) { op.SubmittedTxRef = &ref }); !ok {
		return
	}
	if opErr = o.confirm(ctx, ref); opErr != nil {
		o.fail(id, opErr)
		return
	}

	op, ok := o.transition(id, types.Success, nil)
	if !ok {
		return
	}
	metrics.ObserveOutcome(kind.String(), metrics.Success, "")

	job := o.sync.RefreshAfter(ctx, kind)
	o.log.WithFields(log.Fields{
		"operation": op.ID,
		"kind":      kind.String(),
		"txHash":    ref.String(),
		"syncJob":   job.ID,
	}).Info("Operation succeeded")

	o.clearAfter(id, o.cfg.DisplayWindow)
}

func (o *Orchestrator) send(ctx context.Context, c call) (types.TxRef, *types.OpError) {
	ref, err := o.writer.Submit(ctx, c.contract, c.method, c.args...)
	if err != nil {
		return types.TxRef{}, classifier.Classify(err)
	}
	return ref, nil
}

// confirm waits for ref to be mined. A mined but reverted transaction is a contract
// validation failure, whatever the reason text says.
func (o *Orchestrator) confirm(ctx context.Context, ref types.TxRef) *types.OpError {
	receipt, err := o.writer.AwaitConfirmation(ctx, ref, o.cfg.ConfirmationTimeout)
	if err != nil {
		return classifier.Classify(err)
	}
	if !receipt.Success {
		return &types.OpError{
			Kind:   types.KindContractValidationError,
			Reason: classifier.RevertReason(receipt.RevertReason),
			Raw:    receipt.RevertReason,
		}
	}
	return nil
}

func (o *Orchestrator) fail(id uuid.UUID, opErr *types.OpError) {
	op, ok := o.transition(id, types.Failed, func(op *types.PendingOperation) {
		op.Err = opErr
		op.FailedAt = op.State
	})
	if !ok {
		return
	}
	metrics.ObserveOutcome(op.Kind.String(), metrics.Error, opErr.Kind.String())

	o.log.WithFields(log.Fields{
		"operation": op.ID,
		"kind":      op.Kind.String(),
		"step":      op.Step().String(),
		"error":     opErr,
	}).Warning("Operation failed")

	o.clearAfter(id, o.cfg.DisplayWindow)
}

func (o *Orchestrator) clearAfter(id uuid.UUID, d time.Duration) {
	time.AfterFunc(d, func() {
		o.transition(id, types.Idle, nil)
	})
}

// transition moves operation id to next, applying mutate first. It reports false if
// id is no longer the live operation or the move is not allowed.
func (o *Orchestrator) transition(id uuid.UUID, next types.OrchestratorState, mutate func(*types.PendingOperation)) (types.PendingOperation, bool) {
	o.mu.Lock()

	if o.op == nil || o.op.ID != id {
		o.mu.Unlock()
		return types.PendingOperation{}, false
	}
	if !o.op.State.CanTransition(next) {
		from := o.op.State
		o.mu.Unlock()
		o.log.WithFields(log.Fields{
			"operation": id,
			"from":      from.String(),
			"to":        next.String(),
		}).Error("Illegal state transition")
		return types.PendingOperation{}, false
	}

	if mutate != nil {
		mutate(o.op)
	}
	o.op.State = next
	op := *o.op
	if next == types.Idle {
		o.op = nil
	}
	o.mu.Unlock()

	o.notify(op)
	return op, true
}

func (o *Orchestrator) notify(op types.PendingOperation) {
	metrics.ObserveTransition(op.Kind.String(), op.State.String())

	o.log.WithFields(log.Fields{
		"operation": op.ID,
		"kind":      op.Kind.String(),
		"state":     op.State.String(),
	}).Debug("State changed")

	for _, l := range o.listeners {
		l.OperationChanged(op)
	}
}
