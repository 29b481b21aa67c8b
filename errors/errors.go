package errors

import "errors"

var (
	// ErrNil indicates that a nil/null pointer was encountered. This should never happen.
	ErrNil = errors.New("null pointer")

	// ErrInterrupted indicates that a wait was interrupted
	ErrInterrupted = errors.New("interrupted")

	// ErrMissingEmptyConfigSection indicates that a required config file section is missing (not present) or empty (zero-length).
	ErrMissingEmptyConfigSection = errors.New("config file section is missing/empty")

	// ErrInvalidValue indicates that a config value was invalid.
	ErrInvalidValue = errors.New("invalid value")

	// ErrUnknownAsset indicates an asset id that is not part of the configured collateral set.
	ErrUnknownAsset = errors.New("unknown asset")
)
