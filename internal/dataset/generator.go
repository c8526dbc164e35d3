package dataset

import (
	"fmt"

	"github.com/eugenenazirov/smartpack/internal/catalog"
)

// Rand is the randomness the generator and the engine draw from.
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	// IntN returns a uniform value in [0, n). It panics if n <= 0.
	IntN(n int) int
}

// Generate synthesises n records. Each record gets a dense id, a product
// sampled uniformly with replacement, the material that product is made of,
// a uniformly sampled city and a fair-coin recycled flag.
func Generate(n int, cat *catalog.Catalog, rng Rand) (*Dataset, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: record count must be >= 0, got %d", ErrInvalidConfiguration, n)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: randomness source is required", ErrInvalidConfiguration)
	}
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	records := make([]Record, n)
	for i := range records {
		product := cat.Products[rng.IntN(len(cat.Products))]
		records[i] = Record{
			ID:       FormatID(i + 1),
			Product:  product.Name,
			Material: product.Material,
			City:     cat.Cities[rng.IntN(len(cat.Cities))],
			Recycled: rng.IntN(2) == 1,
		}
	}

	d := &Dataset{records: records, index: make(map[string]int, n)}
	for i, r := range records {
		d.index[r.ID] = i
	}
	return d, nil
}
