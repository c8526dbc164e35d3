package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eugenenazirov/smartpack/internal/catalog"
	"github.com/eugenenazirov/smartpack/internal/dataset"
)

func TestAggregateEmptyDataset(t *testing.T) {
	t.Parallel()

	r := New(catalog.Default()).Aggregate(dataset.New())

	assert.Zero(t, r.TotalScans)
	assert.Zero(t, r.RecyclingRate)
	assert.Zero(t, r.TreesSaved)
	assert.Zero(t, r.TotalSavingsUSD)
	assert.Empty(t, r.TopCity)
	assert.NotNil(t, r.ScansByCity)
	assert.Equal(t, RecommendationCaution, r.Recommendation.Kind)
}

func TestAggregateSevenRecycledAluminium(t *testing.T) {
	t.Parallel()

	records := make([]dataset.Record, 7)
	for i := range records {
		records[i] = dataset.Record{
			ID:       dataset.FormatID(i + 1),
			Product:  "Lata de bebida",
			Material: "Aluminio",
			City:     "Madrid",
			Recycled: true,
		}
	}

	r := New(catalog.Default()).Aggregate(dataset.New(records...))

	assert.Equal(t, 7, r.TotalScans)
	assert.Equal(t, 7, r.RecycledCount)
	assert.InDelta(t, 1.0, r.RecyclingRate, 1e-9)
	assert.InDelta(t, 1.05, r.MaterialSavingsUSD, 1e-9)
	assert.InDelta(t, 0.14, r.LogisticsSavingsUSD, 1e-9)
	assert.InDelta(t, 1.19, r.TotalSavingsUSD, 1e-9)
	assert.InDelta(t, 16.1, r.EnergySavedKWh, 1e-9)
	assert.Equal(t, 70, r.WaterSavedLiters)
	assert.Equal(t, 1, r.TreesSaved)
	assert.Equal(t, "Madrid", r.TopCity)
	assert.Equal(t, RecommendationPositive, r.Recommendation.Kind)
}

func TestAggregateMixedDataset(t *testing.T) {
	t.Parallel()

	ds := dataset.New(
		dataset.Record{ID: "PACK-0001", Product: "Botella PET", Material: "PET", City: "CDMX", Recycled: true},
		dataset.Record{ID: "PACK-0002", Product: "Botella de vidrio", Material: "Vidrio", City: "Bogotá", Recycled: true},
		dataset.Record{ID: "PACK-0003", Product: "Caja de cereal", Material: "Cartón", City: "Bogotá", Recycled: false},
		dataset.Record{ID: "PACK-0004", Product: "Caja de cereal", Material: "Cartón", City: "CDMX", Recycled: true},
		dataset.Record{ID: "PACK-0005", Product: "Botella PET", Material: "PET", City: "Madrid", Recycled: false},
	)

	r := New(catalog.Default()).Aggregate(ds)

	assert.Equal(t, 5, r.TotalScans)
	assert.Equal(t, 3, r.RecycledCount)
	assert.InDelta(t, 0.6, r.RecyclingRate, 1e-9)
	// PET 0.08 + Vidrio 0 + Cartón 0.03
	assert.InDelta(t, 0.11, r.MaterialSavingsUSD, 1e-9)
	assert.InDelta(t, 0.06, r.LogisticsSavingsUSD, 1e-9)
	assert.InDelta(t, 0.17, r.TotalSavingsUSD, 1e-9)
	assert.Zero(t, r.TreesSaved)

	if diff := cmp.Diff(map[string]int{"CDMX": 2, "Bogotá": 2, "Madrid": 1}, r.ScansByCity); diff != "" {
		t.Fatalf("scans by city (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]int{"PET": 2, "Vidrio": 1, "Cartón": 2}, r.ScansByMaterial); diff != "" {
		t.Fatalf("scans by material (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]int{"Botella PET": 2, "Botella de vidrio": 1, "Caja de cereal": 2}, r.ScansByProduct); diff != "" {
		t.Fatalf("scans by product (-want +got):\n%s", diff)
	}
}

func TestAggregateTopCityTieGoesToFirstOccurrence(t *testing.T) {
	t.Parallel()

	ds := dataset.New(
		dataset.Record{ID: "PACK-0001", City: "Santiago"},
		dataset.Record{ID: "PACK-0002", City: "Bogotá"},
		dataset.Record{ID: "PACK-0003", City: "Bogotá"},
		dataset.Record{ID: "PACK-0004", City: "Santiago"},
		dataset.Record{ID: "PACK-0005", City: "Madrid"},
	)

	r := New(catalog.Default()).Aggregate(ds)
	assert.Equal(t, "Santiago", r.TopCity)
}

func TestAggregateRateAtThresholdIsPositive(t *testing.T) {
	t.Parallel()

	ds := dataset.New(
		dataset.Record{ID: "PACK-0001", City: "CDMX", Recycled: true},
		dataset.Record{ID: "PACK-0002", City: "CDMX", Recycled: false},
	)

	r := New(catalog.Default()).Aggregate(ds)
	assert.InDelta(t, 0.5, r.RecyclingRate, 1e-12)
	assert.Equal(t, RecommendationPositive, r.Recommendation.Kind)
	assert.Equal(t, positiveMessage, r.Recommendation.Message)
}

func TestAggregateBreakdownsSumToTotal(t *testing.T) {
	t.Parallel()

	eng := New(catalog.Default())
	for seed := uint64(0); seed < 20; seed++ {
		ds, err := dataset.Generate(50+int(seed), catalog.Default(), seeded(seed))
		require.NoError(t, err)

		r := eng.Aggregate(ds)
		assert.Equal(t, ds.Len(), r.TotalScans)
		for name, breakdown := range map[string]map[string]int{
			"city":     r.ScansByCity,
			"material": r.ScansByMaterial,
			"product":  r.ScansByProduct,
		} {
			sum := 0
			for _, n := range breakdown {
				sum += n
			}
			assert.Equal(t, r.TotalScans, sum, "seed %d breakdown %s", seed, name)
		}
		assert.Equal(t, r.RecycledCount/UnitsPerTree, r.TreesSaved)
	}
}

func TestAggregateDoesNotMutateDataset(t *testing.T) {
	t.Parallel()

	ds, err := dataset.Generate(30, catalog.Default(), seeded(5))
	require.NoError(t, err)
	before := ds.Records()

	New(catalog.Default()).Aggregate(ds)

	if diff := cmp.Diff(before, ds.Records()); diff != "" {
		t.Fatalf("dataset mutated (-before +after):\n%s", diff)
	}
}

func TestRecommend(t *testing.T) {
	t.Parallel()

	assert.Equal(t, RecommendationCaution, Recommend(0).Kind)
	assert.Equal(t, RecommendationCaution, Recommend(0.4999).Kind)
	assert.Equal(t, RecommendationPositive, Recommend(0.5).Kind)
	assert.Equal(t, RecommendationPositive, Recommend(1).Kind)
}

func TestRank(t *testing.T) {
	t.Parallel()

	got := Rank(map[string]int{"Madrid": 3, "CDMX": 5, "Bogotá": 3, "Santiago": 1})
	want := []Count{
		{Label: "CDMX", Count: 5},
		{Label: "Bogotá", Count: 3},
		{Label: "Madrid", Count: 3},
		{Label: "Santiago", Count: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected ranking (-want +got):\n%s", diff)
	}

	assert.Empty(t, Rank(nil))
}

func BenchmarkAggregate(b *testing.B) {
	ds, err := dataset.Generate(5000, catalog.Default(), seeded(1))
	if err != nil {
		b.Fatalf("unexpected error: %v", err)
	}
	eng := New(catalog.Default())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		eng.Aggregate(ds)
	}
}
