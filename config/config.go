package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lucas-hsi/melitusgym/models"
)

// Config carries the application settings read from the environment.
type Config struct {
	Port          string
	TacoFilePath  string
	CacheTTL      time.Duration
	CacheMaxItems int
}

// Load reads .env when present and resolves settings with defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:          getEnv("PORT", "8080"),
		TacoFilePath:  getEnv("TACO_FILE_PATH", defaultTacoPath()),
		CacheTTL:      getDuration("NUTRITION_CACHE_TTL", 10*time.Minute),
		CacheMaxItems: getInt("NUTRITION_CACHE_MAX_ITEMS", 1000),
	}
}

// InitDB opens the PostgreSQL connection and migrates the food schema.
func InitDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		getEnv("DB_NAME", "melitusgym"),
		getEnv("DB_PORT", "5432"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.FoodRecord{}); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}
	return db, nil
}

// defaultTacoPath prefers the CSV edition of the bundled dataset and falls
// back to the XLSX one.
func defaultTacoPath() string {
	if _, err := os.Stat("Taco-4a-Edicao.csv"); err == nil {
		return "Taco-4a-Edicao.csv"
	}
	return "Taco-4a-Edicao.xlsx"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
