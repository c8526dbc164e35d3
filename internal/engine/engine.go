package engine

import (
	"fmt"
	"strings"

	"github.com/eugenenazirov/smartpack/internal/catalog"
	"github.com/eugenenazirov/smartpack/internal/dataset"
)

const (
	// RecyclablePoints is awarded for scanning a high-value recyclable package.
	RecyclablePoints = 100
	// ReusePoints is awarded for any other recognised package.
	ReusePoints = 20

	codeWidth = 4
)

// eligibleMaterials is policy, not derived from the unit-value table.
var eligibleMaterials = map[string]struct{}{
	"Aluminio": {},
	"PET":      {},
}

var impactMessages = []string{
	"Equivale a 1 día de luz ahorrada.",
	"Si reciclas 7 más como este, ¡estarás salvando un árbol!",
	"Evitaste el uso de 10 litros de agua.",
	"Redujiste CO₂ como evitar 5 km en auto.",
	"Ayudaste a mantener limpia tu ciudad.",
}

var reuseBenefits = []string{
	"Salvar árboles evitando residuos innecesarios",
	"Ahorrar energía de producción",
	"Conservar agua usada en empaques nuevos",
}

const (
	recycleInstruction = "Este material puede reciclarse fácilmente en tu ciudad."
	reuseInstruction   = "Este material tiene bajo índice de reciclaje. Intenta darle otro uso."
	recycleThanks      = "¡Gracias por tu acción! Has ganado 100 puntos."
	reuseThanks        = "Gracias por tu conciencia ambiental. Has ganado 20 puntos por tu compromiso."
)

type scanEngine struct {
	catalog *catalog.Catalog
}

// New creates an Engine that resolves centers and unit values from cat.
func New(cat *catalog.Catalog) Engine {
	return &scanEngine{catalog: cat}
}

// IsHighValueRecyclable reports whether material earns the recycling reward.
func IsHighValueRecyclable(material string) bool {
	_, ok := eligibleMaterials[material]
	return ok
}

// ImpactMessages returns the catalogue of impact statements drawn from on a recyclable scan.
func ImpactMessages() []string {
	out := make([]string, len(impactMessages))
	copy(out, impactMessages)
	return out
}

// NormalizeCode turns user input into a canonical package id. Empty input maps
// to "" which never matches; anything else is zero-padded to four characters
// and prefixed. A leading PACK- prefix is accepted.
func NormalizeCode(raw string) string {
	code := strings.TrimSpace(raw)
	if code == "" {
		return ""
	}
	if rest, ok := cutPrefixFold(code, dataset.IDPrefix); ok {
		code = rest
		if code == "" {
			return ""
		}
	}
	if n := len(code); n < codeWidth {
		code = strings.Repeat("0", codeWidth-n) + code
	}
	return dataset.IDPrefix + code
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}

func (e *scanEngine) Lookup(ds *dataset.Dataset, rawCode string) LookupResult {
	code := NormalizeCode(rawCode)
	res := LookupResult{Code: code}
	if code == "" {
		return res
	}
	if rec, ok := ds.Find(code); ok {
		res.Record = &rec
	}
	return res
}

func (e *scanEngine) Classify(rec *dataset.Record, rng dataset.Rand) (ScanOutcome, error) {
	if rec == nil {
		return ScanOutcome{}, fmt.Errorf("%w: record is required", ErrInvalidArgument)
	}
	return e.classify(rec, rec.City, rng)
}

func (e *scanEngine) ClassifyIn(rec *dataset.Record, city string, rng dataset.Rand) (ScanOutcome, error) {
	if rec == nil {
		return ScanOutcome{}, fmt.Errorf("%w: record is required", ErrInvalidArgument)
	}
	if !e.catalog.HasCity(city) {
		return ScanOutcome{}, fmt.Errorf("%w: %q", ErrUnknownCity, city)
	}
	return e.classify(rec, city, rng)
}

func (e *scanEngine) classify(rec *dataset.Record, city string, rng dataset.Rand) (ScanOutcome, error) {
	out := ScanOutcome{
		RecordID: rec.ID,
		Product:  rec.Product,
		Material: rec.Material,
		City:     city,
		Benefits: []string{},
		Centers:  []string{},
	}

	if !IsHighValueRecyclable(rec.Material) {
		out.Points = ReusePoints
		out.Kind = InstructionReuse
		out.Instruction = reuseInstruction
		out.Benefits = append(out.Benefits, reuseBenefits...)
		out.Acknowledged = reuseThanks
		return out, nil
	}

	if rng == nil {
		return ScanOutcome{}, fmt.Errorf("%w: randomness source is required", ErrInvalidArgument)
	}
	out.Recyclable = true
	out.Points = RecyclablePoints
	out.Kind = InstructionRecycle
	out.Instruction = recycleInstruction
	out.Acknowledged = recycleThanks
	out.Centers = e.catalog.CentersFor(city)
	out.Impact = impactMessages[rng.IntN(len(impactMessages))]
	return out, nil
}
