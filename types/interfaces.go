package types

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ContractRef names one of the protocol contracts, or a collateral token.
type ContractRef struct {
	Name    string
	Address common.Address
}

// ChainReader reads a value from a contract.
type ChainReader interface {
	ReadValue(ctx context.Context, contract ContractRef, method string, args ...interface{}) (*big.Int, error)
}

// ChainWriter submits transactions and waits for them to settle.
type ChainWriter interface {
	// Submit blocks while the transaction is being signed; the wallet may reject it.
	Submit(ctx context.Context, contract ContractRef, method string, args ...interface{}) (TxRef, error)
	AwaitConfirmation(ctx context.Context, ref TxRef, timeout time.Duration) (Receipt, error)
}

// Session is the connected wallet account.
type Session struct {
	Address common.Address
	ChainID *big.Int
}

// WalletSession supplies the active account. ok is false when no wallet is connected.
type WalletSession interface {
	Session() (s Session, ok bool)
}
