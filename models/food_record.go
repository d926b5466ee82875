package models

import "gorm.io/gorm"

// FoodRecord is a canonical nutrient row, per 100g, sourced from the TACO
// table or from the TBCA online fallback. Identity is the normalized name:
// accent-stripped, lowercased, punctuation collapsed.
type FoodRecord struct {
	gorm.Model
	Name           string `gorm:"not null"`
	NormalizedName string `gorm:"type:varchar(255);uniqueIndex;not null"`
	Category       *string

	// Nutrients per 100g. All optional: sparse sources leave them nil.
	EnergyKcal    *float64
	EnergyKj      *float64
	Carbohydrates *float64
	Proteins      *float64
	Fat           *float64
	Fiber         *float64
	Sugars        *float64
	SodiumMg      *float64

	GlycemicIndex *float64
}
