package services

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lucas-hsi/melitusgym/models"
)

// FoodStore persists canonical food records keyed by unique normalized name.
// Store failures are infrastructure failures and always propagate.
type FoodStore struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewFoodStore(db *gorm.DB, log *slog.Logger) *FoodStore {
	return &FoodStore{db: db, log: log.With("component", "food_store")}
}

// SearchByName returns up to limit records whose normalized name contains
// the normalized term, in insertion order.
func (s *FoodStore) SearchByName(term string, limit int) ([]models.FoodRecord, error) {
	var records []models.FoodRecord
	pattern := "%" + NormalizeText(term) + "%"
	if err := s.db.Where("normalized_name LIKE ?", pattern).Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("food store search: %w", err)
	}
	return records, nil
}

// Upsert inserts rec or, on a normalized-name conflict, updates the existing
// row atomically. Only non-nil incoming fields overwrite stored values, so a
// sparse source never erases nutrients a richer source already provided.
func (s *FoodStore) Upsert(rec *models.FoodRecord) error {
	if rec.NormalizedName == "" {
		rec.NormalizedName = NormalizeText(rec.Name)
	}
	if rec.NormalizedName == "" {
		return nil
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "normalized_name"}},
		DoUpdates: clause.Assignments(nonNilAssignments(rec)),
	}).Create(rec).Error
	if err != nil {
		return fmt.Errorf("food store upsert %q: %w", rec.NormalizedName, err)
	}
	return nil
}

// UpsertAll upserts every record and returns how many were written.
func (s *FoodStore) UpsertAll(records []models.FoodRecord) (int, error) {
	written := 0
	for i := range records {
		if err := s.Upsert(&records[i]); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func nonNilAssignments(rec *models.FoodRecord) map[string]interface{} {
	assignments := map[string]interface{}{
		"name":       rec.Name,
		"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
	}
	set := func(column string, v *float64) {
		if v != nil {
			assignments[column] = *v
		}
	}
	if rec.Category != nil {
		assignments["category"] = *rec.Category
	}
	set("energy_kcal", rec.EnergyKcal)
	set("energy_kj", rec.EnergyKj)
	set("carbohydrates", rec.Carbohydrates)
	set("proteins", rec.Proteins)
	set("fat", rec.Fat)
	set("fiber", rec.Fiber)
	set("sugars", rec.Sugars)
	set("sodium_mg", rec.SodiumMg)
	set("glycemic_index", rec.GlycemicIndex)
	return assignments
}
