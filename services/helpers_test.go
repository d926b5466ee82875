package services

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lucas-hsi/melitusgym/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.FoodRecord{}))
	return db
}

// writeTacoCSV writes a miniature TACO-style dataset: a title preamble, a
// label row split from its unit row, decimal commas and a "Tr" trace token.
func writeTacoCSV(t *testing.T) string {
	t.Helper()
	content := "Tabela Brasileira de Composição de Alimentos\n" +
		"Descrição dos alimentos,Categoria,Energia,Energia,Proteína,Carboidrato,Lipídios,Fibra Alimentar,Sódio\n" +
		",,(kcal),(kJ),(g),(g),(g),(g),(mg)\n" +
		"Arroz branco cozido,Cereais,128,535,\"2,5\",\"28,1\",\"0,2\",\"1,6\",1\n" +
		"Arroz integral cozido,Cereais,124,517,\"2,6\",\"25,8\",\"1,0\",\"2,7\",1\n" +
		",,,,,,,,\n" +
		"Feijão preto cozido,Leguminosas,77,322,\"4,5\",\"14,0\",\"0,5\",\"8,4\",Tr\n"

	path := filepath.Join(t.TempDir(), "taco.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func floatPtr(v float64) *float64 { return &v }

func strPtr(s string) *string { return &s }
