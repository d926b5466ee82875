package services

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/lucas-hsi/melitusgym/models"
)

// Tokens that mean "value not reported" in the dataset ("tr" is the TACO
// marker for trace amounts).
var nullTokens = map[string]struct{}{
	"": {}, "-": {}, "na": {}, "nd": {}, "n/a": {}, "tr": {},
}

// parseNumericCell converts a raw cell into a float, tolerating the decimal
// comma and surrounding text, and recognizing null tokens as missing.
func parseNumericCell(raw string) *float64 {
	trimmed := strings.TrimSpace(raw)
	if _, ok := nullTokens[strings.ToLower(trimmed)]; ok {
		return nil
	}

	var b strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' || r == ',' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.ReplaceAll(b.String(), ",", ".")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}

// TacoScanner reads the bundled TACO dataset file (CSV or XLSX) on demand.
// The header row is not fixed: it is detected per scan, optionally merged
// with the unit row below it. Any file or header failure degrades to zero
// contributions; the caller proceeds with whatever the store already had.
type TacoScanner struct {
	filePath string
	log      *slog.Logger
}

func NewTacoScanner(filePath string, log *slog.Logger) *TacoScanner {
	return &TacoScanner{
		filePath: filePath,
		log:      log.With("component", "taco_scanner"),
	}
}

// Scan returns up to limit rows whose normalized name contains the
// normalized term as a substring, in file order.
func (s *TacoScanner) Scan(term string, limit int) []models.FoodRecord {
	rows, err := s.readRows()
	if err != nil {
		s.log.Warn("dataset scan skipped", "path", s.filePath, "error", err)
		return nil
	}

	layout, err := detectHeader(rows)
	if err != nil {
		s.log.Warn("dataset scan skipped", "path", s.filePath, "error", err)
		return nil
	}
	s.log.Debug("dataset header detected",
		"row", layout.rowIndex, "merged_unit_row", layout.merged, "mapped_fields", layout.score)

	normTerm := NormalizeText(term)
	var records []models.FoodRecord
	for _, row := range rows[layout.dataStart():] {
		if rowEmpty(row) {
			continue
		}
		name := strings.TrimSpace(cellAt(row, layout.columns[fieldName]))
		if name == "" {
			continue
		}
		if !strings.Contains(NormalizeText(name), normTerm) {
			continue
		}
		records = append(records, recordFromRow(name, row, layout.columns))
		if len(records) >= limit {
			break
		}
	}
	return records
}

func (s *TacoScanner) readRows() ([][]string, error) {
	switch strings.ToLower(filepath.Ext(s.filePath)) {
	case ".csv":
		return s.readCSV()
	case ".xlsx":
		return s.readXLSX()
	default:
		return nil, fmt.Errorf("unsupported dataset format: %s", s.filePath)
	}
}

func (s *TacoScanner) readCSV() ([][]string, error) {
	f, err := os.Open(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return rows, nil
}

func (s *TacoScanner) readXLSX() ([][]string, error) {
	f, err := excelize.OpenFile(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("dataset has no sheets: %s", s.filePath)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return rows, nil
}

func recordFromRow(name string, row []string, columns map[tacoField]int) models.FoodRecord {
	numeric := func(field tacoField) *float64 {
		idx, ok := columns[field]
		if !ok {
			return nil
		}
		return parseNumericCell(cellAt(row, idx))
	}

	rec := models.FoodRecord{
		Name:           name,
		NormalizedName: NormalizeText(name),
		EnergyKcal:     numeric(fieldEnergyKcal),
		EnergyKj:       numeric(fieldEnergyKj),
		Carbohydrates:  numeric(fieldCarbohydrates),
		Proteins:       numeric(fieldProteins),
		Fat:            numeric(fieldFat),
		Fiber:          numeric(fieldFiber),
		Sugars:         numeric(fieldSugars),
		SodiumMg:       numeric(fieldSodium),
		GlycemicIndex:  numeric(fieldGlycemicIndex),
	}
	if idx, ok := columns[fieldCategory]; ok {
		if category := strings.TrimSpace(cellAt(row, idx)); category != "" {
			rec.Category = &category
		}
	}
	return rec
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
