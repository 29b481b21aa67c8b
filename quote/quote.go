// Package quote computes mint and redeem quotes from a protocol snapshot. The
// arithmetic follows the vault contract step for step, including truncation at
// 18 decimals, so a quote shown to a user is one the contract will accept.
package quote

import (
	"code.pegvault.io/pegclient/types"
	"code.pegvault.io/pegclient/types/num"
)

var (
	// MinRatio is the collateral ratio floor, and the minimum mint price.
	MinRatio = num.MustDecimal("1.10")

	// MintDevFeeRate and MintEndowmentFeeRate are minted on top of the user's tokens.
	MintDevFeeRate       = num.MustDecimal("0.01")
	MintEndowmentFeeRate = num.MustDecimal("0.001")

	// RedeemDevFeeRate is deducted from the collateral paid out.
	RedeemDevFeeRate = num.MustDecimal("0.001")

	// StressHaircut scales the ratio into the redemption price below MinRatio.
	StressHaircut = num.MustDecimal("0.9")
)

// CurrentRatio returns the collateral ratio of snap.
func CurrentRatio(snap types.ProtocolSnapshot) types.Ratio {
	return snap.Ratio()
}

// MintQuote quotes depositing amount of collateral.
func MintQuote(deposit num.Decimal, snap types.ProtocolSnapshot) (types.MintQuote, error) {
	if !deposit.IsPositive() {
		return types.MintQuote{}, types.NewError(types.KindInvalidAmount)
	}
	if !snap.Price.IsPositive() {
		return types.MintQuote{}, ErrNoPrice
	}

	usdValue := num.DecChain(deposit).Mul(snap.Price).Get()

	mintPrice := MinRatio
	if ratio := snap.Ratio(); ratio.Defined {
		mintPrice = num.MaxD(MinRatio, ratio.Value)
	}

	tokens := num.DecChain(usdValue).Div(mintPrice).Get()
	devFee := num.DecChain(tokens).Mul(MintDevFeeRate).Get()
	endowmentFee := num.DecChain(tokens).Mul(MintEndowmentFeeRate).Get()
	totalMinted := num.DecChain(tokens).Add(devFee, endowmentFee).Get()

	projected := types.DefinedRatio(MinRatio)
	if snap.TotalSupply.IsPositive() {
		projected = types.NewRatio(
			num.DecChain(snap.CollateralValueUSD).Add(usdValue).Get(),
			num.DecChain(snap.TotalSupply).Add(totalMinted).Get(),
		)
	}

	return types.MintQuote{
		USDValue:       usdValue,
		MintPrice:      mintPrice,
		TokensToMint:   tokens,
		DevFee:         devFee,
		EndowmentFee:   endowmentFee,
		TotalMinted:    totalMinted,
		ProjectedRatio: projected,
	}, nil
}

// RedeemQuote quotes burning amount of tokens for collateral asset.
func RedeemQuote(amount num.Decimal, asset types.AssetID, snap types.ProtocolSnapshot) (types.RedeemQuote, error) {
	if !amount.IsPositive() {
		return types.RedeemQuote{}, types.NewError(types.KindInvalidAmount)
	}
	if !snap.Price.IsPositive() {
		return types.RedeemQuote{}, ErrNoPrice
	}

	ratio := snap.Ratio()
	if !ratio.Defined || !ratio.Value.IsPositive() {
		return types.RedeemQuote{}, ErrNoRatio
	}

	mode, price := RedeemPrice(ratio)

	gross := num.DecChain(amount).Mul(price).Div(snap.Price).Get()
	devFee := num.DecChain(gross).Mul(RedeemDevFeeRate).Get()
	net := num.DecChain(gross).Sub(devFee).Get()

	if available := snap.VaultBalance(asset); available.LessThan(gross) {
		return types.RedeemQuote{}, types.NewShortfallError(types.KindInsufficientVaultLiquidity, gross, available)
	}

	supplyAfter := num.DecChain(snap.TotalSupply).Sub(amount).Get()
	projected := types.DefinedRatio(num.DecimalZero())
	if supplyAfter.IsPositive() {
		valueAfter := num.DecChain(snap.CollateralValueUSD).Sub(num.DecChain(gross).Mul(snap.Price).Get()).Get()
		projected = types.NewRatio(num.MaxD(valueAfter, num.DecimalZero()), supplyAfter)
	}

	return types.RedeemQuote{
		Mode:            mode,
		EffectivePrice:  price,
		GrossAssetValue: gross,
		DevFee:          devFee,
		NetAssetValue:   net,
		ProjectedRatio:  projected,
	}, nil
}

// RedeemPrice returns the redemption regime and USD price per token for ratio. An
// undefined ratio prices as stress at zero; RedeemQuote refuses to quote it.
func RedeemPrice(ratio types.Ratio) (types.RedeemMode, num.Decimal) {
	if ratio.Defined && ratio.Value.GreaterThanOrEqual(MinRatio) {
		return types.Healthy, num.DecimalOne()
	}
	return types.Stress, num.DecChain(StressHaircut).Mul(ratio.Display()).Get()
}

// MaxRedeemable returns how many tokens can be redeemed against the vault balance of
// asset at the current redemption price. Zero when the price or ratio is unknown.
func MaxRedeemable(asset types.AssetID, snap types.ProtocolSnapshot) num.Decimal {
	_, price := RedeemPrice(snap.Ratio())
	if !price.IsPositive() || !snap.Price.IsPositive() {
		return num.DecimalZero()
	}
	return num.DecChain(snap.VaultBalance(asset)).Mul(snap.Price).Div(price).Get()
}
