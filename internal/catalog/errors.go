package catalog

import "errors"

// ErrInvalidCatalog is returned when a catalog is missing data or contains inconsistent entries.
var ErrInvalidCatalog = errors.New("invalid catalog")
