package services

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ErrInvalidPortion rejects non-positive portion values and units absent
// from the conversion table.
var ErrInvalidPortion = errors.New("invalid portion input")

// gramsPerUnit maps recognized portion units to grams. Mass units are exact.
// Volume and utensil units are density-free approximations (ml taken as 1 g,
// cup as 240 g, tablespoon as 15 g, teaspoon as 5 g).
var gramsPerUnit = map[string]float64{
	"g": 1, "gram": 1, "grams": 1, "grama": 1, "gramas": 1,
	"kg": 1000, "kilogram": 1000, "kilograms": 1000, "quilograma": 1000, "quilogramas": 1000,
	"mg": 0.001, "milligram": 0.001, "milligrams": 0.001, "miligrama": 0.001, "miligramas": 0.001,
	"oz": 28.3495, "ounce": 28.3495, "ounces": 28.3495,
	"lb": 453.592, "pound": 453.592, "pounds": 453.592,
	"ml": 1, "milliliter": 1, "milliliters": 1, "mililitro": 1, "mililitros": 1,
	"l": 1000, "liter": 1000, "liters": 1000, "litro": 1000, "litros": 1000,
	"cup": 240, "cups": 240, "xicara": 240, "xicaras": 240,
	"tbsp": 15, "tablespoon": 15, "tablespoons": 15, "colher de sopa": 15,
	"tsp": 5, "teaspoon": 5, "teaspoons": 5, "colher de cha": 5,
}

// NutritionCalculator converts nutrient sets between reference amounts.
type NutritionCalculator struct {
	log *slog.Logger
}

func NewNutritionCalculator(log *slog.Logger) *NutritionCalculator {
	return &NutritionCalculator{log: log.With("component", "nutrition_calculator")}
}

// ValidatePortionInput must pass before any scaling call.
func (c *NutritionCalculator) ValidatePortionInput(value float64, unit string) error {
	if value <= 0 {
		return fmt.Errorf("%w: portion value must be positive, got %g", ErrInvalidPortion, value)
	}
	if _, err := gramsFor(1, unit); err != nil {
		return err
	}
	return nil
}

// CalculatePortionNutrition scales base nutrients to the requested portion.
// Every known field is multiplied by grams(portion)/grams(base) and rounded
// to two decimals; nil fields stay nil. When only kJ is known, kcal is
// derived; the reverse is left to ingestion time.
//
// The method is always converted_from_100g here: direct_serving is reserved
// for item calculations that picked the per-serving nutrient set.
func (c *NutritionCalculator) CalculatePortionNutrition(base Nutrients, portionValue float64, portionUnit, baseUnit string) (*PortionResult, error) {
	return c.calculate(base, portionValue, portionUnit, baseUnit, MethodConvertedFrom100g)
}

func (c *NutritionCalculator) calculate(base Nutrients, portionValue float64, portionUnit, baseUnit, method string) (*PortionResult, error) {
	start := time.Now()
	if baseUnit == "" {
		baseUnit = "100g"
	}

	portionGrams, err := gramsFor(portionValue, portionUnit)
	if err != nil {
		return nil, err
	}
	baseGrams, err := baseReferenceGrams(baseUnit)
	if err != nil {
		return nil, err
	}

	factor := portionGrams / baseGrams
	scaled := scaleNutrients(base, factor)
	if scaled.EnergyKcal == nil && scaled.EnergyKj != nil {
		kcal := round2(*scaled.EnergyKj / kjPerKcal)
		scaled.EnergyKcal = &kcal
	}

	result := &PortionResult{
		Nutrients:         scaled,
		Portion:           Portion{Value: portionValue, Unit: portionUnit},
		BaseReference:     baseUnit,
		ConversionFactor:  factor,
		CalculationMethod: method,
		LatencyMs:         elapsedMs(start),
	}
	c.log.Debug("portion calculated",
		"portion_value", portionValue, "portion_unit", portionUnit,
		"base", baseUnit, "factor", factor)
	return result, nil
}

// GetItemWithCalculation scales an item's nutrients to the requested
// portion, preferring per-serving data when the item carries any; otherwise
// the per-100g set is the base.
func (c *NutritionCalculator) GetItemWithCalculation(item NormalizedItem, portionValue float64, portionUnit string) (*ItemCalculation, error) {
	if err := c.ValidatePortionInput(portionValue, portionUnit); err != nil {
		return nil, err
	}

	base := item.NutrientsPer100g
	baseUnit := "100g"
	method := MethodConvertedFrom100g
	if item.ServingSize != nil && item.ServingUnit != nil &&
		item.NutrientsPerServing != nil && !item.NutrientsPerServing.IsEmpty() {
		base = *item.NutrientsPerServing
		baseUnit = fmt.Sprintf("%g%s", *item.ServingSize, *item.ServingUnit)
		method = MethodDirectServing
	}

	calculation, err := c.calculate(base, portionValue, portionUnit, baseUnit, method)
	if err != nil {
		return nil, err
	}
	return &ItemCalculation{Item: item, Calculation: *calculation}, nil
}

func gramsFor(value float64, unit string) (float64, error) {
	factor, ok := gramsPerUnit[cleanUnit(unit)]
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidPortion, unit)
	}
	return value * factor, nil
}

// baseReferenceGrams resolves a base unit like "100g" or "30ml" to grams.
// A bare unit counts as one of it.
func baseReferenceGrams(baseUnit string) (float64, error) {
	if baseUnit == "100g" {
		return 100, nil
	}
	quantity, unit := splitQuantity(baseUnit)
	grams, err := gramsFor(quantity, unit)
	if err != nil {
		return 0, err
	}
	if grams <= 0 {
		return 0, fmt.Errorf("%w: base unit %q resolves to zero grams", ErrInvalidPortion, baseUnit)
	}
	return grams, nil
}

// splitQuantity separates the numeric prefix of a compound unit, so
// "30g" becomes (30, "g") and "g" becomes (1, "g").
func splitQuantity(s string) (float64, string) {
	trimmed := strings.TrimSpace(s)
	cut := 0
	for cut < len(trimmed) {
		ch := trimmed[cut]
		if ch >= '0' && ch <= '9' || ch == '.' || ch == ',' {
			cut++
			continue
		}
		break
	}
	if cut == 0 {
		return 1, trimmed
	}
	quantity, err := strconv.ParseFloat(strings.ReplaceAll(trimmed[:cut], ",", "."), 64)
	if err != nil || quantity <= 0 {
		return 1, trimmed[cut:]
	}
	return quantity, trimmed[cut:]
}

// cleanUnit normalizes a unit string for table lookup, dropping any numeric
// prefix ("100g" -> "g") and accents ("xícara" -> "xicara").
func cleanUnit(unit string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, unit)
	return NormalizeText(stripped)
}

func scaleNutrients(n Nutrients, factor float64) Nutrients {
	scale := func(v *float64) *float64 {
		if v == nil {
			return nil
		}
		r := round2(*v * factor)
		return &r
	}
	return Nutrients{
		EnergyKcal:    scale(n.EnergyKcal),
		EnergyKj:      scale(n.EnergyKj),
		Carbohydrates: scale(n.Carbohydrates),
		Proteins:      scale(n.Proteins),
		Fat:           scale(n.Fat),
		Fiber:         scale(n.Fiber),
		Sugars:        scale(n.Sugars),
		Sodium:        scale(n.Sodium),
		Salt:          scale(n.Salt),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
