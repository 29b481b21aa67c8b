package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"code.pegvault.io/pegclient/types"
)

const defaultReceiptPollInterval = 2 * time.Second

// Writer builds, signs and sends transactions, and waits for their receipts.
type Writer struct {
	backend      Backend
	signer       Signer
	chainID      *big.Int
	pollInterval time.Duration

	mu      sync.Mutex
	pending map[types.TxRef]ethereum.CallMsg

	log *log.Entry
}

// NewWriter returns a Writer. signer may be nil, in which case every Submit fails with
// NotConnected.
func NewWriter(backend Backend, signer Signer, chainID *big.Int, pollInterval time.Duration) *Writer {
	if pollInterval <= 0 {
		pollInterval = defaultReceiptPollInterval
	}
	return &Writer{
		backend:      backend,
		signer:       signer,
		chainID:      chainID,
		pollInterval: pollInterval,
		pending:      make(map[types.TxRef]ethereum.CallMsg),
		log:          log.WithFields(log.Fields{"component": "ChainWriter"}),
	}
}

// Submit signs and sends a call to method on contract.
func (w *Writer) Submit(ctx context.Context, contract types.ContractRef, method string, args ...interface{}) (types.TxRef, error) {
	if w.signer == nil {
		return types.TxRef{}, types.NewError(types.KindNotConnected)
	}

	data, err := parsedABI.Pack(method, args...)
	if err != nil {
		return types.TxRef{}, pkgerrors.Wrapf(err, "failed to pack %s", method)
	}

	from := w.signer.Address()
	msg := ethereum.CallMsg{From: from, To: &contract.Address, Data: data}

	nonce, err := w.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return types.TxRef{}, fmt.Errorf("failed to get nonce: %w", err)
	}
	gasPrice, err := w.backend.SuggestGasPrice(ctx)
	if err != nil {
		return types.TxRef{}, fmt.Errorf("failed to suggest gas price: %w", err)
	}
	// a failing estimate carries the revert reason of the call
	gas, err := w.backend.EstimateGas(ctx, msg)
	if err != nil {
		return types.TxRef{}, fmt.Errorf("failed to estimate gas: %w", err)
	}

	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       &contract.Address,
		Data:     data,
	})

	signed, err := w.signer.SignTx(ctx, tx, w.chainID)
	if err != nil {
		return types.TxRef{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err = w.backend.SendTransaction(ctx, signed); err != nil {
		return types.TxRef{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	ref := types.TxRef{Hash: signed.Hash()}

	w.mu.Lock()
	w.pending[ref] = msg
	w.mu.Unlock()

	w.log.WithFields(log.Fields{
		"contract": contract.Name,
		"method":   method,
		"txHash":   ref.String(),
		"nonce":    nonce,
	}).Debug("Transaction sent")

	return ref, nil
}

// AwaitConfirmation polls for the receipt of ref until it is mined or timeout elapses.
// Transient read failures while polling are logged and polling continues.
func (w *Writer) AwaitConfirmation(ctx context.Context, ref types.TxRef, timeout time.Duration) (types.Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		w.mu.Lock()
		delete(w.pending, ref)
		w.mu.Unlock()
	}()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := w.backend.TransactionReceipt(waitCtx, ref.Hash)
		switch {
		case err == nil && receipt != nil:
			return w.toReceipt(ctx, ref, receipt), nil
		case err != nil && !errors.Is(err, ethereum.NotFound) && waitCtx.Err() == nil:
			w.log.WithFields(log.Fields{"txHash": ref.String(), "error": err}).Warning("Failed to get receipt")
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return types.Receipt{}, ctx.Err()
			}
			return types.Receipt{}, types.NewError(types.KindConfirmationTimeout)
		case <-ticker.C:
		}
	}
}

func (w *Writer) toReceipt(ctx context.Context, ref types.TxRef, r *ethtypes.Receipt) types.Receipt {
	out := types.Receipt{
		TxRef:   ref,
		Success: r.Status == ethtypes.ReceiptStatusSuccessful,
	}
	if r.BlockNumber != nil {
		out.BlockNumber = r.BlockNumber.Uint64()
	}
	if out.Success {
		return out
	}

	// receipts carry no reason: replay the call at the failing block to recover it
	w.mu.Lock()
	msg, ok := w.pending[ref]
	w.mu.Unlock()
	if !ok {
		return out
	}
	if _, err := w.backend.CallContract(ctx, msg, r.BlockNumber); err != nil {
		out.RevertReason = err.Error()
	}
	return out
}
