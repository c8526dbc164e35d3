package catalog

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Product pairs a product name with the single material it is made of.
type Product struct {
	Name     string `yaml:"name" json:"name"`
	Material string `yaml:"material" json:"material"`
}

// Catalog is the reference data shared by the generator and the engine.
// Products and Cities are ordered so that seeded sampling is reproducible.
type Catalog struct {
	Products   []Product           `yaml:"products" json:"products"`
	Cities     []string            `yaml:"cities" json:"cities"`
	Centers    map[string][]string `yaml:"centers" json:"centers"`
	UnitValues map[string]float64  `yaml:"unit_values" json:"unitValues"`
}

// Default returns a fresh copy of the built-in reference catalog.
func Default() *Catalog {
	return &Catalog{
		Products: []Product{
			{Name: "Cápsulas de café", Material: "Aluminio"},
			{Name: "Botella PET", Material: "PET"},
			{Name: "Caja de cereal", Material: "Cartón"},
			{Name: "Lata de bebida", Material: "Aluminio"},
			{Name: "Botella de vidrio", Material: "Vidrio"},
			{Name: "Envase de yogurt", Material: "Plástico rígido"},
			{Name: "Empaque de galletas", Material: "Plástico flexible"},
		},
		Cities: []string{"CDMX", "Bogotá", "Santiago", "Buenos Aires", "Madrid"},
		Centers: map[string][]string{
			"CDMX":         {"Centro Verde - Av. Insurgentes 123", "RecoPlast - Calz. Tlalpan 456"},
			"Bogotá":       {"ReciclaYA - Cra 7 #45-67", "EcoAndes - Calle 80 #12-34"},
			"Santiago":     {"EcoSantiago - Av. Providencia 890", "Replast - Pajaritos 123"},
			"Buenos Aires": {"Reutil BA - Av. Corrientes 998", "Verde Capital - Palermo 456"},
			"Madrid":       {"Madrid Circular - Calle Alcalá 76", "EcoMadrid - Gran Vía 55"},
		},
		UnitValues: map[string]float64{
			"Aluminio": 0.15,
			"PET":      0.08,
			"Cartón":   0.03,
		},
	}
}

// Validate reports whether the catalog can be sampled from and reported against.
func (c *Catalog) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: catalog is nil", ErrInvalidCatalog)
	}
	if len(c.Products) == 0 {
		return fmt.Errorf("%w: no products", ErrInvalidCatalog)
	}
	if len(c.Cities) == 0 {
		return fmt.Errorf("%w: no cities", ErrInvalidCatalog)
	}
	if len(c.Centers) == 0 {
		return fmt.Errorf("%w: no recycling centers", ErrInvalidCatalog)
	}
	if len(c.UnitValues) == 0 {
		return fmt.Errorf("%w: no material unit values", ErrInvalidCatalog)
	}

	seen := make(map[string]struct{}, len(c.Products))
	for _, p := range c.Products {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return fmt.Errorf("%w: product with empty name", ErrInvalidCatalog)
		}
		if strings.TrimSpace(p.Material) == "" {
			return fmt.Errorf("%w: product %q has no material", ErrInvalidCatalog, p.Name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: duplicate product %q", ErrInvalidCatalog, p.Name)
		}
		seen[name] = struct{}{}
	}

	cities := make(map[string]struct{}, len(c.Cities))
	for _, city := range c.Cities {
		if strings.TrimSpace(city) == "" {
			return fmt.Errorf("%w: empty city name", ErrInvalidCatalog)
		}
		if _, dup := cities[city]; dup {
			return fmt.Errorf("%w: duplicate city %q", ErrInvalidCatalog, city)
		}
		cities[city] = struct{}{}
	}

	for material, value := range c.UnitValues {
		if value < 0 {
			return fmt.Errorf("%w: negative unit value %v for %q", ErrInvalidCatalog, value, material)
		}
	}
	return nil
}

// MaterialOf returns the material a product is made of.
func (c *Catalog) MaterialOf(product string) (string, bool) {
	for _, p := range c.Products {
		if p.Name == product {
			return p.Material, true
		}
	}
	return "", false
}

// HasCity reports whether city is one of the catalog cities.
func (c *Catalog) HasCity(city string) bool {
	return slices.Contains(c.Cities, city)
}

// CentersFor returns a copy of the recycling centers listed for city.
// The result is empty, never nil, when the city has none.
func (c *Catalog) CentersFor(city string) []string {
	centers := c.Centers[city]
	out := make([]string, len(centers))
	copy(out, centers)
	return out
}

// UnitValue returns the recovered value of one recycled unit of material,
// zero for materials without an entry.
func (c *Catalog) UnitValue(material string) float64 {
	return c.UnitValues[material]
}

// Clone returns a deep copy so callers can hand the catalog out without
// exposing the receiver's maps and slices.
func (c *Catalog) Clone() *Catalog {
	out := &Catalog{
		Products:   slices.Clone(c.Products),
		Cities:     slices.Clone(c.Cities),
		Centers:    make(map[string][]string, len(c.Centers)),
		UnitValues: maps.Clone(c.UnitValues),
	}
	for city, centers := range c.Centers {
		out.Centers[city] = slices.Clone(centers)
	}
	return out
}
