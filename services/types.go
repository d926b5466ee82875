package services

import (
	"fmt"

	"github.com/lucas-hsi/melitusgym/models"
)

// Result-level provenance tags. Item-level sources use SourceTaco and
// SourceTBCAOnline.
const (
	SourceTacoDB     = "taco_db"
	SourceTacoFile   = "taco_file"
	SourceTBCAOnline = "tbca_online"
	SourceNotFound   = "not_found"
	SourceTaco       = "taco"
)

const (
	MethodDirectServing     = "direct_serving"
	MethodConvertedFrom100g = "converted_from_100g"
)

// kcal to kJ conversion factor.
const kjPerKcal = 4.184

// Nutrients is the fixed per-reference nutrient set shared by every source.
// Nil means the source did not report the value.
type Nutrients struct {
	EnergyKcal    *float64 `json:"energy_kcal"`
	EnergyKj      *float64 `json:"energy_kj"`
	Carbohydrates *float64 `json:"carbohydrates"`
	Proteins      *float64 `json:"proteins"`
	Fat           *float64 `json:"fat"`
	Fiber         *float64 `json:"fiber"`
	Sugars        *float64 `json:"sugars"`
	Sodium        *float64 `json:"sodium"`
	Salt          *float64 `json:"salt"`
}

// IsEmpty reports whether no nutrient value is known.
func (n Nutrients) IsEmpty() bool {
	return n.EnergyKcal == nil && n.EnergyKj == nil && n.Carbohydrates == nil &&
		n.Proteins == nil && n.Fat == nil && n.Fiber == nil &&
		n.Sugars == nil && n.Sodium == nil && n.Salt == nil
}

// NormalizedItem is the one shape every source adapter must produce.
// Store rows, file rows and scraped pages all end up here; nothing
// source-specific leaks past the adapters.
type NormalizedItem struct {
	ID                  string     `json:"id"`
	Source              string     `json:"source"`
	Name                string     `json:"name"`
	NutrientsPer100g    Nutrients  `json:"nutrients_per_100g"`
	NutrientsPerServing *Nutrients `json:"nutrients_per_serving,omitempty"`
	ServingSize         *float64   `json:"serving_size,omitempty"`
	ServingUnit         *string    `json:"serving_unit,omitempty"`
	Category            *string    `json:"category"`
	GlycemicIndex       *float64   `json:"glycemic_index"`
}

// SearchResult carries the items found for a term plus the tiers that
// produced them, in discovery order.
type SearchResult struct {
	Term         string           `json:"term"`
	Sources      []string         `json:"sources"`
	Items        []NormalizedItem `json:"items"`
	TotalFound   int              `json:"total_found"`
	SearchTimeMs float64          `json:"search_time_ms"`
}

// Portion is the caller-requested amount to scale nutrients to.
type Portion struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// PortionResult is the outcome of scaling a nutrient set to a portion.
type PortionResult struct {
	Nutrients         Nutrients `json:"nutrients"`
	Portion           Portion   `json:"portion"`
	BaseReference     string    `json:"base_reference"`
	ConversionFactor  float64   `json:"conversion_factor"`
	CalculationMethod string    `json:"calculation_method"`
	LatencyMs         float64   `json:"latency_ms"`
}

// ItemCalculation pairs an item with the portion math applied to it.
type ItemCalculation struct {
	Item        NormalizedItem `json:"item"`
	Calculation PortionResult  `json:"calculation"`
}

// NormalizedItemFromRecord adapts a stored food record into the common
// item shape. Freshly scanned rows that were never read back carry ID 0,
// which yields "taco_0" just like a transient row.
func NormalizedItemFromRecord(rec models.FoodRecord) NormalizedItem {
	return NormalizedItem{
		ID:     fmt.Sprintf("taco_%d", rec.ID),
		Source: SourceTaco,
		Name:   rec.Name,
		NutrientsPer100g: Nutrients{
			EnergyKcal:    rec.EnergyKcal,
			EnergyKj:      rec.EnergyKj,
			Carbohydrates: rec.Carbohydrates,
			Proteins:      rec.Proteins,
			Fat:           rec.Fat,
			Fiber:         rec.Fiber,
			Sugars:        rec.Sugars,
			Sodium:        rec.SodiumMg,
		},
		Category:      rec.Category,
		GlycemicIndex: rec.GlycemicIndex,
	}
}
