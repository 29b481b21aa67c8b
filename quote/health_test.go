package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"code.pegvault.io/pegclient/types"
	"code.pegvault.io/pegclient/types/num"
)

func TestHealthStatus(t *testing.T) {
	supply := num.DecimalFromInt64(1000)

	assert.Equal(t, NoSupply, HealthStatus(types.Ratio{}, num.DecimalZero()).Status)
	assert.Equal(t, NoData, HealthStatus(types.Ratio{}, supply).Status)
	assert.Equal(t, NoData, HealthStatus(types.DefinedRatio(num.DecimalZero()), supply).Status)

	tests := []struct {
		ratio    string
		status   Status
		severity Severity
	}{
		{"1.5", Excellent, SeverityOK},
		{"1.20", Excellent, SeverityOK},
		{"1.19", Good, SeverityOK},
		{"1.15", Good, SeverityOK},
		{"1.10", Healthy, SeverityInfo},
		{"1.0999", Stressed, SeverityCritical},
		{"0.2", Stressed, SeverityCritical},
	}
	for _, tt := range tests {
		got := HealthStatus(types.DefinedRatio(d(tt.ratio)), supply)
		assert.Equal(t, Health{Status: tt.status, Severity: tt.severity}, got, "ratio %s", tt.ratio)
	}
}
