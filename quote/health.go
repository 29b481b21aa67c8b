package quote

import (
	"code.pegvault.io/pegclient/types"
	"code.pegvault.io/pegclient/types/num"
)

// Status classifies protocol health for display. It never gates a transaction.
type Status string

const (
	NoSupply  Status = "no_supply"
	NoData    Status = "no_data"
	Excellent Status = "excellent"
	Good      Status = "good"
	Healthy   Status = "healthy"
	Stressed  Status = "stressed"
)

// Severity is how a status should be presented.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityOK       Severity = "ok"
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Health is a status with its severity.
type Health struct {
	Status   Status   `json:"status"`
	Severity Severity `json:"severity"`
}

var (
	excellentRatio = num.MustDecimal("1.20")
	goodRatio      = num.MustDecimal("1.15")
)

// HealthStatus classifies ratio given the outstanding supply.
func HealthStatus(ratio types.Ratio, totalSupply num.Decimal) Health {
	switch {
	case totalSupply.IsZero():
		return Health{Status: NoSupply, Severity: SeverityNone}
	case !ratio.Defined || !ratio.Value.IsPositive():
		return Health{Status: NoData, Severity: SeverityNone}
	case ratio.Value.GreaterThanOrEqual(excellentRatio):
		return Health{Status: Excellent, Severity: SeverityOK}
	case ratio.Value.GreaterThanOrEqual(goodRatio):
		return Health{Status: Good, Severity: SeverityOK}
	case ratio.Value.GreaterThanOrEqual(MinRatio):
		return Health{Status: Healthy, Severity: SeverityInfo}
	}
	return Health{Status: Stressed, Severity: SeverityCritical}
}
