package types

import "github.com/pkg/errors"

// Error kinds returned by the tiling packages. They are always wrapped with context, use errors.Is to test for them.
var (
	// ErrConfiguration is returned for malformed or missing compile-info fields.
	ErrConfiguration = errors.New("configuration error")

	// ErrSearchFailure is returned when a block or ub search exhausts its candidates.
	ErrSearchFailure = errors.New("tiling search failure")

	// ErrAttribute is returned when the reduction-axis attribute is missing, mistyped or out of range.
	ErrAttribute = errors.New("attribute error")
)
