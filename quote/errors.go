package quote

import "errors"

var (
	// ErrNoPrice is returned when the snapshot has no collateral price yet.
	ErrNoPrice = errors.New("collateral price unavailable")

	// ErrNoRatio is returned when the snapshot has no positive collateral ratio, either
	// because nothing is minted or because supply and collateral value are not loaded.
	ErrNoRatio = errors.New("collateral ratio unavailable")
)
