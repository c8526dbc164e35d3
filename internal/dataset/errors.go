package dataset

import "errors"

// ErrInvalidConfiguration is returned when the generator is asked for a
// negative number of records or given a catalog it cannot sample from.
var ErrInvalidConfiguration = errors.New("invalid dataset configuration")
