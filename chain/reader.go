package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"code.pegvault.io/pegclient/classifier"
	"code.pegvault.io/pegclient/metrics"
	"code.pegvault.io/pegclient/types"
)

// ReaderConfig tunes the read path.
type ReaderConfig struct {
	CallTimeout time.Duration
	Retries     uint
	RetryDelay  time.Duration
	// RateLimit is the number of calls per second; zero disables limiting.
	RateLimit float64
}

// Reader performs eth_call reads. Network failures are retried with backoff; any other
// failure is returned as is.
type Reader struct {
	backend Backend
	cfg     ReaderConfig
	limiter *rate.Limiter
	log     *log.Entry
}

// NewReader returns a Reader over backend.
func NewReader(backend Backend, cfg ReaderConfig) *Reader {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	if cfg.Retries == 0 {
		cfg.Retries = 1
	}

	return &Reader{
		backend: backend,
		cfg:     cfg,
		limiter: limiter,
		log:     log.WithFields(log.Fields{"component": "ChainReader"}),
	}
}

// ReadValue calls method on contract and returns its single uint256 output.
func (r *Reader) ReadValue(ctx context.Context, contract types.ContractRef, method string, args ...interface{}) (*big.Int, error) {
	data, err := parsedABI.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to pack %s", method)
	}

	msg := ethereum.CallMsg{To: &contract.Address, Data: data}

	start := time.Now()
	out, err := retry.DoWithData(
		func() ([]byte, error) {
			if err := r.limiter.Wait(ctx); err != nil {
				return nil, retry.Unrecoverable(err)
			}
			callCtx := ctx
			if r.cfg.CallTimeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, r.cfg.CallTimeout)
				defer cancel()
			}
			return r.backend.CallContract(callCtx, msg, nil)
		},
		retry.Context(ctx),
		retry.Attempts(r.cfg.Retries),
		retry.Delay(r.cfg.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return classifier.Classify(err).Kind == types.KindNetworkError
		}),
		retry.OnRetry(func(n uint, err error) {
			r.log.WithFields(log.Fields{
				"contract": contract.Name,
				"method":   method,
				"attempt":  n + 1,
				"error":    err,
			}).Debug("Read failed, retrying")
		}),
	)
	metrics.ObserveRead(method, err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s.%s: %w", contract.Name, method, err)
	}

	values, err := parsedABI.Unpack(method, out)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to unpack %s", method)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%s returned %d values, want 1", method, len(values))
	}
	v, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s returned %T, want uint256", method, values[0])
	}

	return v, nil
}
