package quote

import (
	"code.pegvault.io/pegclient/types"
	"code.pegvault.io/pegclient/types/num"
)

// RewardTier pays RewardPerToken to holders while the ratio is at least MinRatio.
type RewardTier struct {
	MinRatio       num.Decimal
	RewardPerToken num.Decimal
}

// RewardTiers is the distribution policy, highest threshold first.
var RewardTiers = []RewardTier{
	{MinRatio: num.MustDecimal("2.02"), RewardPerToken: num.MustDecimal("0.10")},
	{MinRatio: num.MustDecimal("1.92"), RewardPerToken: num.MustDecimal("0.09")},
	{MinRatio: num.MustDecimal("1.82"), RewardPerToken: num.MustDecimal("0.08")},
	{MinRatio: num.MustDecimal("1.72"), RewardPerToken: num.MustDecimal("0.07")},
	{MinRatio: num.MustDecimal("1.62"), RewardPerToken: num.MustDecimal("0.06")},
	{MinRatio: num.MustDecimal("1.52"), RewardPerToken: num.MustDecimal("0.05")},
	{MinRatio: num.MustDecimal("1.42"), RewardPerToken: num.MustDecimal("0.04")},
	{MinRatio: num.MustDecimal("1.32"), RewardPerToken: num.MustDecimal("0.03")},
	{MinRatio: num.MustDecimal("1.22"), RewardPerToken: num.MustDecimal("0.02")},
	{MinRatio: num.MustDecimal("1.12"), RewardPerToken: num.MustDecimal("0.01")},
}

// RewardPerToken looks ratio up in RewardTiers.
func RewardPerToken(ratio types.Ratio) num.Decimal {
	if !ratio.Defined {
		return num.DecimalZero()
	}
	for _, tier := range RewardTiers {
		if ratio.Value.GreaterThanOrEqual(tier.MinRatio) {
			return tier.RewardPerToken
		}
	}
	return num.DecimalZero()
}
