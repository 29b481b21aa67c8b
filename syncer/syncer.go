// Package syncer keeps the protocol state store in step with the chain. After every
// successful operation it waits a short settle delay, then re-reads every value the
// operation may have changed.
package syncer

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"code.pegvault.io/pegclient/chain"
	e "code.pegvault.io/pegclient/errors"
	"code.pegvault.io/pegclient/metrics"
	"code.pegvault.io/pegclient/types"
	"code.pegvault.io/pegclient/types/num"
)

// DefaultSettleDelay covers the read-after-write lag of public RPC nodes.
const DefaultSettleDelay = 2 * time.Second

// SyncJob is one fan-out of reads. Individual reads may fail; the job itself always
// settles.
type SyncJob struct {
	ID   uuid.UUID
	Kind types.OperationKind

	done chan struct{}

	mu    sync.Mutex
	reads int
	errs  *multierror.Error
}

func newSyncJob(kind types.OperationKind) *SyncJob {
	return &SyncJob{
		ID:   uuid.New(),
		Kind: kind,
		done: make(chan struct{}),
	}
}

// Done is closed once every read of the job has settled.
func (j *SyncJob) Done() <-chan struct{} {
	return j.done
}

// Err returns the failed reads of a settled job, or nil if all succeeded.
func (j *SyncJob) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.errs.ErrorOrNil()
}

// Reads returns the number of reads issued by the job.
func (j *SyncJob) Reads() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.reads
}

// Wait blocks until the job settles or ctx is done.
func (j *SyncJob) Wait(ctx context.Context) error {
	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (j *SyncJob) fail(err error) {
	j.mu.Lock()
	j.errs = multierror.Append(j.errs, err)
	j.mu.Unlock()
}

func (j *SyncJob) failures() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.errs == nil {
		return 0
	}
	return len(j.errs.Errors)
}

// Coordinator owns every refresh of the protocol state store.
type Coordinator struct {
	reader      types.ChainReader
	store       snapshotStore
	session     types.WalletSession
	contracts   chain.Contracts
	settleDelay time.Duration

	log *log.Entry
}

// NewCoordinator returns a Coordinator. A zero settleDelay selects DefaultSettleDelay.
func NewCoordinator(
	reader types.ChainReader,
	store snapshotStore,
	session types.WalletSession,
	contracts chain.Contracts,
	settleDelay time.Duration,
) *Coordinator {
	if settleDelay <= 0 {
		settleDelay = DefaultSettleDelay
	}
	return &Coordinator{
		reader:      reader,
		store:       store,
		session:     session,
		contracts:   contracts,
		settleDelay: settleDelay,
		log:         log.WithFields(log.Fields{"component": "DataSyncCoordinator"}),
	}
}

// RefreshAfter schedules a full refresh following a successful operation of kind. The
// reads are issued after the settle delay; the returned job settles once they all have.
// Cancelling ctx during the settle delay settles the job with ErrInterrupted.
func (c *Coordinator) RefreshAfter(ctx context.Context, kind types.OperationKind) *SyncJob {
	job := newSyncJob(kind)

	c.log.WithFields(log.Fields{
		"job":         job.ID,
		"kind":        kind.String(),
		"settleDelay": c.settleDelay,
	}).Debug("Refresh scheduled")

	go func() {
		if err := doze(ctx, c.settleDelay); err != nil {
			job.fail(err)
			close(job.done)
			return
		}
		c.run(ctx, job)
	}()

	return job
}

// Bootstrap performs the initial load: the same read set as RefreshAfter, issued at once.
// It returns the aggregated read failures; the store keeps whatever reads succeeded.
func (c *Coordinator) Bootstrap(ctx context.Context) error {
	job := newSyncJob(0)
	c.run(ctx, job)
	return job.Err()
}

type read struct {
	contract types.ContractRef
	method   string
	args     []interface{}
	apply    func(v *big.Int)
}

func (c *Coordinator) run(ctx context.Context, job *SyncJob) {
	defer close(job.done)

	start := time.Now()
	reads := c.readSet()

	job.mu.Lock()
	job.reads = len(reads)
	job.mu.Unlock()

	var wg sync.WaitGroup
	for _, r := range reads {
		wg.Add(1)
		go func(r read) {
			defer wg.Done()
			v, err := c.reader.ReadValue(ctx, r.contract, r.method, r.args...)
			if err != nil {
				job.fail(fmt.Errorf("%s.%s: %w", r.contract.Name, r.method, err))
				return
			}
			r.apply(v)
		}(r)
	}
	wg.Wait()

	c.store.SnapshotSet(func(s *types.ProtocolSnapshot) { s.UpdatedAt = time.Now() })

	failed := job.failures()
	metrics.ObserveSync(time.Since(start), failed)

	entry := c.log.WithFields(log.Fields{
		"job":      job.ID,
		"reads":    len(reads),
		"failed":   failed,
		"duration": time.Since(start),
	})
	if failed > 0 {
		entry.WithFields(log.Fields{"error": job.Err()}).Warning("Refresh settled with failed reads")
		return
	}
	entry.Debug("Refresh settled")
}

// readSet is the full dependency set of a mint or redeem, independent of the operation.
func (c *Coordinator) readSet() []read {
	k := c.contracts
	protocol := func(fn func(*types.ProtocolSnapshot)) { c.store.SnapshotSet(fn) }
	tokenAmount := func(v *big.Int) num.Decimal { return num.DecimalFromUnits(v, k.TokenDecimals) }

	reads := []read{
		{contract: k.Oracle, method: chain.MethodPrice, apply: func(v *big.Int) {
			protocol(types.SetPrice(num.DecimalFromUnits(v, k.PriceDecimals)))
		}},
		{contract: k.Token, method: chain.MethodTotalSupply, apply: func(v *big.Int) {
			protocol(types.SetTotalSupply(tokenAmount(v)))
		}},
		{contract: k.Vault, method: chain.MethodCollateralValue, apply: func(v *big.Int) {
			protocol(types.SetCollateralValue(tokenAmount(v)))
		}},
		{contract: k.Vault, method: chain.MethodRewardRound, apply: func(v *big.Int) {
			protocol(types.SetRewardRound(v.Uint64()))
		}},
		{contract: k.Vault, method: chain.MethodRewardsDistributed, apply: func(v *big.Int) {
			protocol(types.SetRewardsDistributed(tokenAmount(v)))
		}},
	}

	for _, a := range k.Assets {
		a := a
		reads = append(reads, read{
			contract: chain.AssetRef(a),
			method:   chain.MethodBalanceOf,
			args:     []interface{}{k.Vault.Address},
			apply: func(v *big.Int) {
				protocol(types.SetVaultBalance(a.ID, num.DecimalFromUnits(v, a.Decimals)))
			},
		})
	}

	return append(reads, c.accountReads()...)
}

func (c *Coordinator) accountReads() []read {
	var session types.Session
	ok := false
	if c.session != nil {
		session, ok = c.session.Session()
	}

	if !ok {
		c.store.AccountSet(func(a *types.AccountState) { *a = types.EmptyAccount(types.Session{}) })
		return nil
	}

	if !c.store.Account().BelongsTo(session) {
		c.store.AccountSet(func(a *types.AccountState) { *a = types.EmptyAccount(session) })
	}

	k := c.contracts
	account := func(fn func(*types.AccountState)) { c.store.AccountSet(fn) }

	reads := []read{{
		contract: k.Token,
		method:   chain.MethodBalanceOf,
		args:     []interface{}{session.Address},
		apply: func(v *big.Int) {
			account(types.SetTokenBalance(num.DecimalFromUnits(v, k.TokenDecimals)))
		},
	}}

	for _, a := range k.Assets {
		a := a
		reads = append(reads,
			read{
				contract: chain.AssetRef(a),
				method:   chain.MethodBalanceOf,
				args:     []interface{}{session.Address},
				apply: func(v *big.Int) {
					account(types.SetAssetBalance(a.ID, num.DecimalFromUnits(v, a.Decimals)))
				},
			},
			read{
				contract: chain.AssetRef(a),
				method:   chain.MethodAllowance,
				args:     []interface{}{session.Address, k.Vault.Address},
				apply: func(v *big.Int) {
					account(types.SetAllowance(a.ID, num.DecimalFromUnits(v, a.Decimals)))
				},
			},
		)
	}

	return reads
}

// doze sleeps for d, returning ErrInterrupted if ctx is done first.
func doze(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("settle delay: %w", e.ErrInterrupted)
	case <-t.C:
		return nil
	}
}
