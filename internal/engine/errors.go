package engine

import "errors"

var (
	// ErrInvalidArgument is returned when an operation is invoked without a record
	// or without the randomness it needs. Callers are expected to check Lookup first.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownCity is returned when a scan is reported from a city outside the catalog.
	ErrUnknownCity = errors.New("city is not part of the catalog")
)
