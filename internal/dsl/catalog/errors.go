package catalog

import "errors"

var (
	// ErrInvalidPattern indicates a blacklist expression that does not compile.
	ErrInvalidPattern = errors.New("invalid blacklist pattern")
)
