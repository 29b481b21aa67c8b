// Package classifier maps raw wallet, RPC and contract failures onto the error
// taxonomy. Wallets and nodes do not return structured codes reliably, so matching is
// done on message text. The rules live here and nowhere else.
package classifier

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"code.pegvault.io/pegclient/types"
)

type rule struct {
	kind     types.ErrorKind
	patterns []string
	re       *regexp.Regexp
}

// Order matters: a revert caused by insufficient balance must still read as a revert,
// and a rejection message mentioning the network is still a rejection.
var rules = []rule{
	{
		kind: types.KindUserRejected,
		patterns: []string{
			"user rejected", "user denied", "rejected the request", "request rejected",
			"user cancelled", "user canceled", "action_rejected", "code=4001", "code: 4001",
		},
	},
	{
		kind:     types.KindContractValidationError,
		patterns: []string{"execution reverted", "reverted", "revert", "vm exception"},
	},
	{
		kind: types.KindInsufficientFunds,
		patterns: []string{
			"insufficient funds", "exceeds balance", "insufficient balance", "gas required exceeds allowance",
		},
	},
	{
		kind: types.KindNetworkError,
		patterns: []string{
			"timeout", "timed out", "deadline exceeded", "connection refused", "connection reset",
			"no such host", "network", "failed to fetch", "eof", "rate limit", "too many requests",
			"bad gateway", "service unavailable", "gateway timeout", "i/o",
		},
		// status codes count only next to "status" or "http", never inside nonces or hashes
		re: regexp.MustCompile(`(?i)\b(?:status|http)\D{0,10}\b(?:429|502|503|504)\b`),
	},
}

var reasonRe = regexp.MustCompile(`(?i)reverted(?: with reason string)?[:\s]+['"]?([^'"]+?)['"]?\s*$`)

// Classify maps err onto the taxonomy. A nil error is not a success signal and yields
// nil; callers decide success from receipts only.
func Classify(err error) *types.OpError {
	if err == nil {
		return nil
	}

	var opErr *types.OpError
	if errors.As(err, &opErr) {
		return opErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &types.OpError{Kind: types.KindNetworkError, Raw: err.Error()}
	}

	raw := err.Error()
	lower := strings.ToLower(raw)
	for _, r := range rules {
		for _, p := range r.patterns {
			if strings.Contains(lower, p) {
				e := &types.OpError{Kind: r.kind, Raw: raw}
				if r.kind == types.KindContractValidationError {
					e.Reason = RevertReason(raw)
				}
				return e
			}
		}
		if r.re != nil && r.re.MatchString(raw) {
			return &types.OpError{Kind: r.kind, Raw: raw}
		}
	}

	return &types.OpError{Kind: types.KindUnknown, Raw: raw}
}

// RevertReason extracts the reason string from a revert message, or "" if there is none.
func RevertReason(msg string) string {
	m := reasonRe.FindStringSubmatch(strings.TrimSpace(msg))
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Message returns the user-facing text for err.
func Message(err error) string {
	if e := Classify(err); e != nil {
		return e.Message()
	}
	return ""
}
