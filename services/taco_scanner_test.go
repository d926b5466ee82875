package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTacoScannerMatchesBySubstring(t *testing.T) {
	scanner := NewTacoScanner(writeTacoCSV(t), testLogger())

	records := scanner.Scan("arroz", 5)
	require.Len(t, records, 2)

	assert.Equal(t, "Arroz branco cozido", records[0].Name)
	assert.Equal(t, "arroz branco cozido", records[0].NormalizedName)
	require.NotNil(t, records[0].EnergyKcal)
	assert.InDelta(t, 128, *records[0].EnergyKcal, 0.001)
	require.NotNil(t, records[0].EnergyKj)
	assert.InDelta(t, 535, *records[0].EnergyKj, 0.001)
	require.NotNil(t, records[0].Proteins)
	assert.InDelta(t, 2.5, *records[0].Proteins, 0.001, "decimal comma is tolerated")
	require.NotNil(t, records[0].Category)
	assert.Equal(t, "Cereais", *records[0].Category)

	assert.Equal(t, "Arroz integral cozido", records[1].Name)
}

func TestTacoScannerIgnoresAccentsAndCase(t *testing.T) {
	scanner := NewTacoScanner(writeTacoCSV(t), testLogger())

	records := scanner.Scan("FEIJÃO", 5)
	require.Len(t, records, 1)
	assert.Equal(t, "Feijão preto cozido", records[0].Name)
	assert.Nil(t, records[0].SodiumMg, "trace token parses as missing")
}

func TestTacoScannerStopsAtLimit(t *testing.T) {
	scanner := NewTacoScanner(writeTacoCSV(t), testLogger())
	records := scanner.Scan("arroz", 1)
	require.Len(t, records, 1)
	assert.Equal(t, "Arroz branco cozido", records[0].Name)
}

func TestTacoScannerNoMatches(t *testing.T) {
	scanner := NewTacoScanner(writeTacoCSV(t), testLogger())
	assert.Empty(t, scanner.Scan("banana", 5))
}

func TestTacoScannerMissingFileDegradesToEmpty(t *testing.T) {
	scanner := NewTacoScanner("does-not-exist.csv", testLogger())
	assert.Empty(t, scanner.Scan("arroz", 5))
}
