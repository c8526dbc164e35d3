package engine

import "github.com/eugenenazirov/smartpack/internal/dataset"

// Engine describes the scan and aggregation operations the presentation layers use.
type Engine interface {
	// Lookup normalises rawCode and resolves it against ds.
	Lookup(ds *dataset.Dataset, rawCode string) LookupResult
	// Classify rewards a scanned record, listing centers in the record's own city.
	Classify(rec *dataset.Record, rng dataset.Rand) (ScanOutcome, error)
	// ClassifyIn rewards a scanned record, listing centers in the city the user scanned from.
	ClassifyIn(rec *dataset.Record, city string, rng dataset.Rand) (ScanOutcome, error)
	// Aggregate reduces ds into the administrator report.
	Aggregate(ds *dataset.Dataset) Report
}

// LookupResult is the outcome of resolving a scanned code. Record is nil when
// no record carries the normalised code.
type LookupResult struct {
	Code   string
	Record *dataset.Record
}

// Found reports whether the lookup matched a record.
func (r LookupResult) Found() bool {
	return r.Record != nil
}

// InstructionKind tells the presentation layer which instruction set to render.
type InstructionKind string

const (
	InstructionRecycle InstructionKind = "recycle"
	InstructionReuse   InstructionKind = "reuse"
)

// ScanOutcome is what a user receives after a successful scan.
type ScanOutcome struct {
	RecordID     string          `json:"recordId"`
	Product      string          `json:"product"`
	Material     string          `json:"material"`
	City         string          `json:"city"`
	Recyclable   bool            `json:"recyclable"`
	Points       int             `json:"points"`
	Kind         InstructionKind `json:"instructionKind"`
	Instruction  string          `json:"instruction"`
	Benefits     []string        `json:"benefits"`
	Centers      []string        `json:"centers"`
	Impact       string          `json:"impact,omitempty"`
	Acknowledged string          `json:"acknowledged"`
}

// RecommendationKind classifies the advisory attached to a report.
type RecommendationKind string

const (
	RecommendationCaution  RecommendationKind = "caution"
	RecommendationPositive RecommendationKind = "positive"
)

// Recommendation is the advisory message chosen from the recycling rate.
type Recommendation struct {
	Kind    RecommendationKind `json:"kind"`
	Message string             `json:"message"`
}

// Report holds the administrator aggregates for one dataset.
type Report struct {
	TotalScans          int            `json:"totalScans"`
	RecycledCount       int            `json:"recycledCount"`
	RecyclingRate       float64        `json:"recyclingRate"`
	TopCity             string         `json:"topCity"`
	EnergySavedKWh      float64        `json:"energySavedKwh"`
	WaterSavedLiters    int            `json:"waterSavedLiters"`
	TreesSaved          int            `json:"treesSaved"`
	MaterialSavingsUSD  float64        `json:"materialSavingsUsd"`
	LogisticsSavingsUSD float64        `json:"logisticsSavingsUsd"`
	TotalSavingsUSD     float64        `json:"totalSavingsUsd"`
	ScansByCity         map[string]int `json:"scansByCity"`
	ScansByMaterial     map[string]int `json:"scansByMaterial"`
	ScansByProduct      map[string]int `json:"scansByProduct"`
	Recommendation      Recommendation `json:"recommendation"`
}

// Count is one bar of a ranked breakdown.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}
