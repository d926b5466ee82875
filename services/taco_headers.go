package services

import (
	"errors"
	"strings"
)

// ErrHeaderNotDetected means no candidate row mapped a name column, so the
// dataset file cannot be scanned.
var ErrHeaderNotDetected = errors.New("no header row with a name column detected")

// Canonical dataset columns. The file's own header names vary by edition and
// locale, so they are resolved through the alias table below.
type tacoField int

const (
	fieldName tacoField = iota
	fieldCategory
	fieldEnergyKcal
	fieldEnergyKj
	fieldCarbohydrates
	fieldProteins
	fieldFat
	fieldFiber
	fieldSugars
	fieldSodium
	fieldGlycemicIndex
)

// headerCandidateRows bounds how deep into the file header detection looks.
const headerCandidateRows = 60

// headerAlias maps a canonical field to keyword groups. A normalized header
// cell matches when every keyword of any single group is contained in it.
// Groups are tried in order, so the most specific alias wins first.
type headerAlias struct {
	field  tacoField
	groups [][]string
}

// Aliases cover the TACO 4a edicao PT-BR headers and their English
// counterparts. Cells are normalized before matching, so accented forms
// ("descrição", "proteína", "sódio") arrive stripped.
var headerAliases = []headerAlias{
	{fieldName, [][]string{{"descricao"}, {"nome"}, {"description"}, {"alimento"}, {"food"}}},
	{fieldCategory, [][]string{{"categoria"}, {"grupo"}, {"category"}}},
	{fieldEnergyKj, [][]string{{"energi", "kj"}, {"kj"}}},
	{fieldEnergyKcal, [][]string{{"energi", "kcal"}, {"kcal"}, {"valor energetico"}}},
	{fieldCarbohydrates, [][]string{{"carboidrato"}, {"carbohydrate"}, {"carb"}}},
	{fieldProteins, [][]string{{"proteina"}, {"protein"}}},
	{fieldFat, [][]string{{"lipid"}, {"gordura"}, {"fat"}}},
	{fieldFiber, [][]string{{"fibra"}, {"fiber"}, {"fibre"}}},
	{fieldSugars, [][]string{{"acucar"}, {"sugar"}}},
	{fieldSodium, [][]string{{"sodio"}, {"sodium"}}},
	{fieldGlycemicIndex, [][]string{{"indice glicemico"}, {"glicem"}, {"glycemic"}}},
}

// headerLayout is a scored header candidate: where it sits, whether a unit
// row was merged into it, and the column index per canonical field.
type headerLayout struct {
	rowIndex int
	merged   bool
	columns  map[tacoField]int
	score    int
}

// dataStart is the index of the first data row after the header.
func (l *headerLayout) dataStart() int {
	if l.merged {
		return l.rowIndex + 2
	}
	return l.rowIndex + 1
}

// mapHeaderColumns assigns canonical fields to column indexes by keyword
// matching. Each column is claimed at most once.
func mapHeaderColumns(cells []string) map[tacoField]int {
	normalized := make([]string, len(cells))
	for i, cell := range cells {
		normalized[i] = NormalizeText(cell)
	}

	columns := make(map[tacoField]int)
	claimed := make(map[int]bool)
	for _, alias := range headerAliases {
		for _, group := range alias.groups {
			idx := -1
			for i, cell := range normalized {
				if cell == "" || claimed[i] {
					continue
				}
				if containsAll(cell, group) {
					idx = i
					break
				}
			}
			if idx >= 0 {
				columns[alias.field] = idx
				claimed[idx] = true
				break
			}
		}
	}
	return columns
}

func containsAll(cell string, keywords []string) bool {
	for _, kw := range keywords {
		if !strings.Contains(cell, kw) {
			return false
		}
	}
	return true
}

// mergeHeaderRows combines a label row with the unit row below it, so
// "Energia" over "(kcal)" becomes one cell "Energia (kcal)".
func mergeHeaderRows(labels, units []string) []string {
	n := len(labels)
	if len(units) > n {
		n = len(units)
	}
	merged := make([]string, n)
	for i := 0; i < n; i++ {
		var label, unit string
		if i < len(labels) {
			label = strings.TrimSpace(labels[i])
		}
		if i < len(units) {
			unit = strings.TrimSpace(units[i])
		}
		merged[i] = strings.TrimSpace(label + " " + unit)
	}
	return merged
}

// detectHeader evaluates the first rows of the file as header candidates,
// alone and merged with the following unit row, and picks the candidate
// that maps the most canonical fields. A name column is mandatory.
func detectHeader(rows [][]string) (*headerLayout, error) {
	limit := len(rows)
	if limit > headerCandidateRows {
		limit = headerCandidateRows
	}

	var best *headerLayout
	for i := 0; i < limit; i++ {
		candidates := []headerLayout{{rowIndex: i, merged: false, columns: mapHeaderColumns(rows[i])}}
		if i+1 < len(rows) {
			merged := mergeHeaderRows(rows[i], rows[i+1])
			candidates = append(candidates, headerLayout{rowIndex: i, merged: true, columns: mapHeaderColumns(merged)})
		}
		for _, cand := range candidates {
			if _, ok := cand.columns[fieldName]; !ok {
				continue
			}
			cand.score = len(cand.columns)
			if best == nil || cand.score > best.score {
				c := cand
				best = &c
			}
		}
	}
	if best == nil {
		return nil, ErrHeaderNotDetected
	}
	return best, nil
}
