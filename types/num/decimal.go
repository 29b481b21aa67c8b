package num

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Decimal is a shopspring.Decimal.
type Decimal = decimal.Decimal

// Precision is the number of fractional digits kept by the protocol contracts.
const Precision int32 = 18

var (
	dzero = decimal.Zero
	done  = decimal.NewFromInt(1)
)

// DecimalZero ...
func DecimalZero() Decimal {
	return dzero
}

// DecimalOne ...
func DecimalOne() Decimal {
	return done
}

// DecimalFromInt64 ...
func DecimalFromInt64(i int64) Decimal {
	return decimal.NewFromInt(i)
}

// DecimalFromString ...
func DecimalFromString(s string) (Decimal, error) {
	return decimal.NewFromString(s)
}

// MustDecimal parses s and panics on failure. Only for package-level constants.
func MustDecimal(s string) Decimal {
	return decimal.RequireFromString(s)
}

// DecimalFromUnits converts an integer on-chain amount with the given number of decimals.
func DecimalFromUnits(value *big.Int, decimals uint8) Decimal {
	if value == nil {
		return dzero
	}
	return decimal.NewFromBigInt(value, -int32(decimals))
}

// UnitsFromDecimal converts d into an integer on-chain amount, truncating any digits
// beyond the given number of decimals.
func UnitsFromDecimal(d Decimal, decimals uint8) *big.Int {
	return d.Shift(int32(decimals)).Truncate(0).BigInt()
}

// MaxD ...
func MaxD(a, b Decimal) Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// MinD ...
func MinD(a, b Decimal) Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
