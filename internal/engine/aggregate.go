package engine

import (
	"cmp"
	"slices"

	"github.com/eugenenazirov/smartpack/internal/dataset"
)

// Impact and savings factors applied per recycled unit.
const (
	EnergyPerUnitKWh          = 2.3
	WaterPerUnitLiters        = 10
	UnitsPerTree              = 7
	LogisticsSavingPerUnitUSD = 0.02

	// RecommendationThreshold is inclusive: a rate equal to it is positive.
	RecommendationThreshold = 0.5
)

const (
	cautionMessage  = "La tasa de reciclaje es baja. Se recomienda reforzar campañas educativas y rediseñar empaques con bajo retorno."
	positiveMessage = "Buen desempeño. Mantener incentivos y continuar expansión regional."
)

func (e *scanEngine) Aggregate(ds *dataset.Dataset) Report {
	r := Report{
		ScansByCity:     make(map[string]int),
		ScansByMaterial: make(map[string]int),
		ScansByProduct:  make(map[string]int),
	}

	// cityOrder keeps first-occurrence order so ties for the top city are stable.
	var cityOrder []string
	for _, rec := range ds.All() {
		r.TotalScans++
		if _, seen := r.ScansByCity[rec.City]; !seen {
			cityOrder = append(cityOrder, rec.City)
		}
		r.ScansByCity[rec.City]++
		r.ScansByMaterial[rec.Material]++
		r.ScansByProduct[rec.Product]++

		if rec.Recycled {
			r.RecycledCount++
			r.MaterialSavingsUSD += e.catalog.UnitValue(rec.Material)
		}
	}

	best := 0
	for _, city := range cityOrder {
		if n := r.ScansByCity[city]; n > best {
			best = n
			r.TopCity = city
		}
	}

	if r.TotalScans > 0 {
		r.RecyclingRate = float64(r.RecycledCount) / float64(r.TotalScans)
	}
	r.EnergySavedKWh = float64(r.RecycledCount) * EnergyPerUnitKWh
	r.WaterSavedLiters = r.RecycledCount * WaterPerUnitLiters
	r.TreesSaved = r.RecycledCount / UnitsPerTree
	r.LogisticsSavingsUSD = float64(r.RecycledCount) * LogisticsSavingPerUnitUSD
	r.TotalSavingsUSD = r.MaterialSavingsUSD + r.LogisticsSavingsUSD
	r.Recommendation = Recommend(r.RecyclingRate)

	return r
}

// Recommend picks the advisory for a recycling rate.
func Recommend(rate float64) Recommendation {
	if rate < RecommendationThreshold {
		return Recommendation{Kind: RecommendationCaution, Message: cautionMessage}
	}
	return Recommendation{Kind: RecommendationPositive, Message: positiveMessage}
}

// Rank orders a breakdown for charting: highest count first, ties by label.
func Rank(counts map[string]int) []Count {
	out := make([]Count, 0, len(counts))
	for label, n := range counts {
		out = append(out, Count{Label: label, Count: n})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return out
}
