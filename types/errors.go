package types

import (
	"fmt"

	"code.pegvault.io/pegclient/types/num"
)

// ErrorKind is the closed set of failures surfaced to users.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidAmount
	KindInsufficientBalance
	KindInsufficientVaultLiquidity
	KindOperationInProgress
	KindNotConnected
	KindUserRejected
	KindInsufficientFunds
	KindNetworkError
	KindConfirmationTimeout
	KindContractValidationError
)

var kindNames = map[ErrorKind]string{
	KindUnknown:                    "unknown",
	KindInvalidAmount:              "invalid_amount",
	KindInsufficientBalance:        "insufficient_balance",
	KindInsufficientVaultLiquidity: "insufficient_vault_liquidity",
	KindOperationInProgress:        "operation_in_progress",
	KindNotConnected:               "not_connected",
	KindUserRejected:               "user_rejected",
	KindInsufficientFunds:          "insufficient_funds",
	KindNetworkError:               "network_error",
	KindConfirmationTimeout:        "confirmation_timeout",
	KindContractValidationError:    "contract_validation_error",
}

func (k ErrorKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Validation reports whether the kind is detected locally, before any chain call.
func (k ErrorKind) Validation() bool {
	switch k {
	case KindInvalidAmount, KindInsufficientBalance, KindInsufficientVaultLiquidity,
		KindOperationInProgress, KindNotConnected:
		return true
	}
	return false
}

// Message is the short text shown to users for the kind.
func (k ErrorKind) Message() string {
	switch k {
	case KindInvalidAmount:
		return "Enter an amount greater than zero."
	case KindInsufficientBalance:
		return "Insufficient balance for this amount."
	case KindInsufficientVaultLiquidity:
		return "The vault does not hold enough of this asset to redeem that amount."
	case KindOperationInProgress:
		return "Another transaction is still in progress."
	case KindNotConnected:
		return "Connect a wallet first."
	case KindUserRejected:
		return "Transaction rejected in wallet."
	case KindInsufficientFunds:
		return "Insufficient funds to pay for the transaction."
	case KindNetworkError:
		return "Network error, please try again."
	case KindConfirmationTimeout:
		return "Confirmation is taking longer than expected. The transaction may still complete; check your wallet before retrying."
	case KindContractValidationError:
		return "The contract rejected the transaction."
	}
	return "Transaction failed."
}

// OpError is a classified failure.
type OpError struct {
	Kind ErrorKind
	// Reason is the contract revert reason for KindContractValidationError.
	Reason string
	// Raw is the original error text, kept for diagnostics only.
	Raw string
	// Required and Available are set for liquidity and balance failures.
	Required  num.Decimal
	Available num.Decimal
}

func (e *OpError) Error() string {
	switch e.Kind {
	case KindContractValidationError:
		if e.Reason != "" {
			return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
		}
	case KindInsufficientBalance, KindInsufficientVaultLiquidity:
		return fmt.Sprintf("%s: required %s, available %s", e.Kind, e.Required, e.Available)
	case KindUnknown:
		if e.Raw != "" {
			return fmt.Sprintf("%s: %s", e.Kind, e.Raw)
		}
	}
	return e.Kind.String()
}

// Is matches any *OpError of the same kind, so sentinel values work with errors.Is.
func (e *OpError) Is(target error) bool {
	t, ok := target.(*OpError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Message is the short user-facing text.
func (e *OpError) Message() string {
	if e.Kind == KindContractValidationError && e.Reason != "" {
		return fmt.Sprintf("%s Reason: %s.", e.Kind.Message(), e.Reason)
	}
	return e.Kind.Message()
}

// Sentinels for errors.Is.
var (
	ErrInvalidAmount              = &OpError{Kind: KindInvalidAmount}
	ErrInsufficientBalance        = &OpError{Kind: KindInsufficientBalance}
	ErrInsufficientVaultLiquidity = &OpError{Kind: KindInsufficientVaultLiquidity}
	ErrOperationInProgress        = &OpError{Kind: KindOperationInProgress}
	ErrNotConnected               = &OpError{Kind: KindNotConnected}
	ErrUserRejected               = &OpError{Kind: KindUserRejected}
	ErrInsufficientFunds          = &OpError{Kind: KindInsufficientFunds}
	ErrNetwork                    = &OpError{Kind: KindNetworkError}
	ErrConfirmationTimeout        = &OpError{Kind: KindConfirmationTimeout}
	ErrContractValidation         = &OpError{Kind: KindContractValidationError}
	ErrUnknown                    = &OpError{Kind: KindUnknown}
)

// NewError returns an OpError of the given kind.
func NewError(kind ErrorKind) *OpError {
	return &OpError{Kind: kind}
}

// NewShortfallError returns a balance or liquidity error carrying both amounts.
func NewShortfallError(kind ErrorKind, required, available num.Decimal) *OpError {
	return &OpError{Kind: kind, Required: required, Available: available}
}
