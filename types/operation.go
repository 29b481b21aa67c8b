package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"code.pegvault.io/pegclient/types/num"
)

// OperationKind is the kind of a user operation or of one of its steps.
type OperationKind int

const (
	Approve OperationKind = iota + 1
	Mint
	Redeem
)

func (k OperationKind) String() string {
	switch k {
	case Approve:
		return "approve"
	case Mint:
		return "mint"
	case Redeem:
		return "redeem"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k OperationKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// OrchestratorState is the state of the current operation.
type OrchestratorState int

const (
	Idle OrchestratorState = iota
	ValidatingInput
	AwaitingApprovalSignature
	ApprovalSubmitted
	ApprovalConfirmed
	AwaitingExecutionSignature
	ExecutionSubmitted
	Success
	Failed
)

var stateNames = map[OrchestratorState]string{
	Idle:                       "idle",
	ValidatingInput:            "validating_input",
	AwaitingApprovalSignature:  "awaiting_approval_signature",
	ApprovalSubmitted:          "approval_submitted",
	ApprovalConfirmed:          "approval_confirmed",
	AwaitingExecutionSignature: "awaiting_execution_signature",
	ExecutionSubmitted:         "execution_submitted",
	Success:                    "success",
	Failed:                     "failed",
}

func (s OrchestratorState) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s OrchestratorState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *OrchestratorState) UnmarshalText(text []byte) error {
	for state, name := range stateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown orchestrator state %q", text)
}

// Terminal reports whether s is Success or Failed.
func (s OrchestratorState) Terminal() bool {
	return s == Success || s == Failed
}

// transitions lists every legal move of the state machine.
var transitions = map[OrchestratorState][]OrchestratorState{
	Idle:                       {ValidatingInput},
	ValidatingInput:            {AwaitingApprovalSignature, AwaitingExecutionSignature, Failed},
	AwaitingApprovalSignature:  {ApprovalSubmitted, Failed},
	ApprovalSubmitted:          {ApprovalConfirmed, Failed},
	ApprovalConfirmed:          {AwaitingExecutionSignature, Failed},
	AwaitingExecutionSignature: {ExecutionSubmitted, Failed},
	ExecutionSubmitted:         {Success, Failed},
	Success:                    {Idle},
	Failed:                     {Idle},
}

// CanTransition reports whether the state machine allows moving from s to next.
func (s OrchestratorState) CanTransition(next OrchestratorState) bool {
	for _, n := range transitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

// PendingOperation is the single live user operation.
type PendingOperation struct {
	ID               uuid.UUID
	Kind             OperationKind
	Asset            AssetID
	Amount           num.Decimal
	State            OrchestratorState
	RequiresApproval bool
	ApprovalTxRef    *TxRef
	SubmittedTxRef   *TxRef
	StartedAt        time.Time
	// Err and FailedAt are set once State is Failed. FailedAt is the state the
	// operation failed in.
	Err      *OpError
	FailedAt OrchestratorState
}

// Step returns the kind of the step the operation is currently in.
func (p PendingOperation) Step() OperationKind {
	state := p.State
	if state == Failed {
		state = p.FailedAt
	}
	switch state {
	case AwaitingApprovalSignature, ApprovalSubmitted:
		return Approve
	}
	return p.Kind
}
