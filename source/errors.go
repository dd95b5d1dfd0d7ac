package source

import "errors"

var (
	// ErrInvalidConfiguration is returned when a source is constructed with a
	// configuration it can never serve records from.
	ErrInvalidConfiguration = errors.New(`invalid configuration`)

	// ErrIllegalState is returned by reader calls made outside the Active state.
	ErrIllegalState = errors.New(`illegal state`)
)
