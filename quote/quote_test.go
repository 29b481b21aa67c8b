package quote

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.pegvault.io/pegclient/types"
	"code.pegvault.io/pegclient/types/num"
)

func d(s string) num.Decimal {
	return num.MustDecimal(s)
}

func snapshot(price, supply, collateralValue string, vault map[types.AssetID]string) types.ProtocolSnapshot {
	snap := types.ProtocolSnapshot{
		Price:              d(price),
		TotalSupply:        d(supply),
		CollateralValueUSD: d(collateralValue),
		Collateral:         map[types.AssetID]types.VaultBalance{},
	}
	for k, v := range vault {
		snap.Collateral[k] = d(v)
	}
	return snap
}

func assertClose(t *testing.T, want string, got num.Decimal, tolerance string) {
	t.Helper()
	diff := got.Sub(d(want)).Abs()
	assert.True(t, diff.LessThanOrEqual(d(tolerance)), "want %s, got %s", want, got)
}

func TestMintQuote_ScenarioA(t *testing.T) {
	snap := snapshot("100000", "100000", "115000", nil)

	q, err := MintQuote(d("1"), snap)
	require.NoError(t, err)

	assert.Equal(t, "1.15", q.MintPrice.String())
	assert.Equal(t, "100000", q.USDValue.String())
	assertClose(t, "86956.522", q.TokensToMint, "0.001")
	assertClose(t, "869.565", q.DevFee, "0.001")
	assertClose(t, "86.957", q.EndowmentFee, "0.001")
	assertClose(t, "87913.043", q.TotalMinted, "0.001")

	assert.Equal(t, "86956.521739130434782608", q.TokensToMint.String())
	assert.True(t, q.TotalMinted.Equal(q.TokensToMint.Add(q.DevFee).Add(q.EndowmentFee)))

	// (115000 + 100000) / (100000 + 87913.04...)
	assert.True(t, q.ProjectedRatio.Defined)
	assertClose(t, "1.1441", q.ProjectedRatio.Value, "0.0001")
}

func TestMintQuote_ZeroSupplyUsesFloor(t *testing.T) {
	snap := snapshot("64000", "0", "0", nil)

	for _, amount := range []string{"0.00000001", "1", "12.5", "1000"} {
		q, err := MintQuote(d(amount), snap)
		require.NoError(t, err)
		assert.True(t, q.MintPrice.Equal(MinRatio), "amount %s", amount)
		assert.True(t, q.ProjectedRatio.Defined)
		assert.True(t, q.ProjectedRatio.Value.Equal(MinRatio))
	}
}

func TestMintQuote_PriceNeverBelowFloor(t *testing.T) {
	for _, value := range []string{"50", "100", "105", "110", "111", "300"} {
		snap := snapshot("30000", "100", value, nil)
		q, err := MintQuote(d("0.3"), snap)
		require.NoError(t, err)
		assert.True(t, q.MintPrice.GreaterThanOrEqual(MinRatio), "collateral value %s", value)
		assert.True(t, q.TotalMinted.Equal(q.TokensToMint.Add(q.DevFee).Add(q.EndowmentFee)))
	}
}

func TestMintQuote_InvalidAmount(t *testing.T) {
	snap := snapshot("100000", "100", "115", nil)

	for _, amount := range []string{"0", "-1"} {
		_, err := MintQuote(d(amount), snap)
		assert.True(t, errors.Is(err, types.ErrInvalidAmount), "amount %s", amount)
	}
}

func TestMintQuote_Idempotent(t *testing.T) {
	snap := snapshot("97123.45", "1234567.891", "1500000.5", nil)

	a, err := MintQuote(d("0.777"), snap)
	require.NoError(t, err)
	b, err := MintQuote(d("0.777"), snap)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRedeemQuote_ScenarioB(t *testing.T) {
	snap := snapshot("100000", "100000", "105000", map[types.AssetID]string{"WBTC": "1"})

	q, err := RedeemQuote(d("1000"), "WBTC", snap)
	require.NoError(t, err)

	assert.Equal(t, types.Stress, q.Mode)
	assert.Equal(t, "0.945", q.EffectivePrice.String())
	assert.Equal(t, "0.00945", q.GrossAssetValue.String())
	assert.Equal(t, "0.00000945", q.DevFee.String())
	assert.Equal(t, "0.00944055", q.NetAssetValue.String())

	// (105000 - 945) / 99000
	assertClose(t, "1.05106", q.ProjectedRatio.Value, "0.00001")
}

func TestRedeemQuote_HealthyAtPar(t *testing.T) {
	for _, value := range []string{"110000", "115000", "250000"} {
		snap := snapshot("100000", "100000", value, map[types.AssetID]string{"WBTC": "10"})
		q, err := RedeemQuote(d("500"), "WBTC", snap)
		require.NoError(t, err)
		assert.Equal(t, types.Healthy, q.Mode)
		assert.True(t, q.EffectivePrice.Equal(num.DecimalOne()))
		assert.Equal(t, "0.005", q.GrossAssetValue.String())
	}
}

func TestRedeemQuote_StressPriceMonotonic(t *testing.T) {
	prev := num.DecimalZero()
	for _, value := range []string{"50000", "80000", "100000", "105000", "109999"} {
		snap := snapshot("100000", "100000", value, map[types.AssetID]string{"WBTC": "10"})
		q, err := RedeemQuote(d("100"), "WBTC", snap)
		require.NoError(t, err)
		assert.Equal(t, types.Stress, q.Mode)
		assert.True(t, q.EffectivePrice.Equal(StressHaircut.Mul(snap.Ratio().Value)))
		assert.True(t, q.EffectivePrice.GreaterThan(prev))
		prev = q.EffectivePrice
	}
}

func TestRedeemQuote_InsufficientVaultLiquidity(t *testing.T) {
	snap := snapshot("100000", "100000", "115000", map[types.AssetID]string{"WBTC": "0.001"})

	_, err := RedeemQuote(d("1000"), "WBTC", snap)
	require.True(t, errors.Is(err, types.ErrInsufficientVaultLiquidity))

	var opErr *types.OpError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "0.01", opErr.Required.String())
	assert.Equal(t, "0.001", opErr.Available.String())

	_, err = RedeemQuote(d("1"), "tBTC", snap)
	assert.True(t, errors.Is(err, types.ErrInsufficientVaultLiquidity))
}

func TestRedeemQuote_FullUnwindProjectsZero(t *testing.T) {
	snap := snapshot("100000", "1000", "1200", map[types.AssetID]string{"WBTC": "1"})

	q, err := RedeemQuote(d("1000"), "WBTC", snap)
	require.NoError(t, err)
	assert.True(t, q.ProjectedRatio.Defined)
	assert.True(t, q.ProjectedRatio.Value.IsZero())
}

func TestRedeemQuote_Errors(t *testing.T) {
	snap := snapshot("100000", "1000", "1200", map[types.AssetID]string{"WBTC": "1"})

	_, err := RedeemQuote(d("0"), "WBTC", snap)
	assert.True(t, errors.Is(err, types.ErrInvalidAmount))

	snap.Price = num.DecimalZero()
	_, err = RedeemQuote(d("1"), "WBTC", snap)
	assert.ErrorIs(t, err, ErrNoPrice)
}

func TestRedeemQuote_Idempotent(t *testing.T) {
	snap := snapshot("99999.99", "777777", "800000", map[types.AssetID]string{"WBTC": "100"})

	a, err := RedeemQuote(d("123.456"), "WBTC", snap)
	require.NoError(t, err)
	b, err := RedeemQuote(d("123.456"), "WBTC", snap)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMaxRedeemable(t *testing.T) {
	snap := snapshot("100000", "100000", "115000", map[types.AssetID]string{"WBTC": "0.5"})
	assert.Equal(t, "50000", MaxRedeemable("WBTC", snap).String())

	snap = snapshot("100000", "0", "0", map[types.AssetID]string{"WBTC": "0.5"})
	assert.True(t, MaxRedeemable("WBTC", snap).IsZero())
}

func TestMintQuote_NoPrice(t *testing.T) {
	for _, price := range []string{"0", "-1"} {
		snap := snapshot(price, "100000", "115000", nil)
		_, err := MintQuote(d("1"), snap)
		assert.ErrorIs(t, err, ErrNoPrice, "price %s", price)
	}
}

func TestRedeemQuote_NoRatio(t *testing.T) {
	tests := []struct {
		name            string
		supply          string
		collateralValue string
	}{
		{"nothing loaded", "0", "0"},
		{"supply without collateral value", "100000", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := snapshot("100000", tt.supply, tt.collateralValue, map[types.AssetID]string{"WBTC": "1"})
			q, err := RedeemQuote(d("1000"), "WBTC", snap)
			assert.ErrorIs(t, err, ErrNoRatio)
			assert.Equal(t, types.RedeemQuote{}, q)
		})
	}
}
