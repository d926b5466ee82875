package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapHeaderColumnsLocalizedNames(t *testing.T) {
	header := []string{
		"Número", "Descrição dos alimentos", "Grupo", "Energia (kcal)", "Energia (kJ)",
		"Proteína (g)", "Carboidrato (g)", "Lipídios (g)", "Fibra Alimentar (g)",
		"Açúcares (g)", "Sódio (mg)", "Índice Glicêmico",
	}
	columns := mapHeaderColumns(header)

	assert.Equal(t, 1, columns[fieldName], "descrição wins over número do alimento")
	assert.Equal(t, 2, columns[fieldCategory])
	assert.Equal(t, 3, columns[fieldEnergyKcal])
	assert.Equal(t, 4, columns[fieldEnergyKj])
	assert.Equal(t, 5, columns[fieldProteins])
	assert.Equal(t, 6, columns[fieldCarbohydrates])
	assert.Equal(t, 7, columns[fieldFat])
	assert.Equal(t, 8, columns[fieldFiber])
	assert.Equal(t, 9, columns[fieldSugars])
	assert.Equal(t, 10, columns[fieldSodium])
	assert.Equal(t, 11, columns[fieldGlycemicIndex])
}

func TestMapHeaderColumnsEnglishNames(t *testing.T) {
	columns := mapHeaderColumns([]string{"Food description", "Category", "Energy (kcal)", "Protein", "Fat"})
	assert.Equal(t, 0, columns[fieldName])
	assert.Equal(t, 1, columns[fieldCategory])
	assert.Equal(t, 2, columns[fieldEnergyKcal])
	assert.Equal(t, 3, columns[fieldProteins])
	assert.Equal(t, 4, columns[fieldFat])
}

func TestDetectHeaderMergesLabelAndUnitRows(t *testing.T) {
	rows := [][]string{
		{"Tabela TACO"},
		{"Descrição dos alimentos", "Categoria", "Energia", "Energia", "Proteína"},
		{"", "", "(kcal)", "(kJ)", "(g)"},
		{"Arroz branco cozido", "Cereais", "128", "535", "2,5"},
	}
	layout, err := detectHeader(rows)
	require.NoError(t, err)

	assert.Equal(t, 1, layout.rowIndex)
	assert.True(t, layout.merged, "label+unit candidate maps both energy columns and must score higher")
	assert.Equal(t, 3, layout.dataStart())
	assert.Equal(t, 2, layout.columns[fieldEnergyKcal])
	assert.Equal(t, 3, layout.columns[fieldEnergyKj])
}

func TestDetectHeaderRequiresNameColumn(t *testing.T) {
	rows := [][]string{
		{"Energia (kcal)", "Proteína (g)"},
		{"128", "2,5"},
	}
	_, err := detectHeader(rows)
	assert.ErrorIs(t, err, ErrHeaderNotDetected)
}

func TestParseNumericCell(t *testing.T) {
	cases := []struct {
		raw  string
		want *float64
	}{
		{"128", floatPtr(128)},
		{"2,5", floatPtr(2.5)},
		{" 76,4 kcal ", floatPtr(76.4)},
		{"1.6", floatPtr(1.6)},
		{"", nil},
		{"-", nil},
		{"Tr", nil},
		{"NA", nil},
		{"nd", nil},
		{"n/a", nil},
		{"abc", nil},
	}
	for _, tc := range cases {
		got := parseNumericCell(tc.raw)
		if tc.want == nil {
			assert.Nil(t, got, "raw %q", tc.raw)
			continue
		}
		require.NotNil(t, got, "raw %q", tc.raw)
		assert.InDelta(t, *tc.want, *got, 0.0001, "raw %q", tc.raw)
	}
}
