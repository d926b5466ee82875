package main

import (
	"log/slog"
	"os"

	"github.com/lucas-hsi/melitusgym/config"
	"github.com/lucas-hsi/melitusgym/controllers"
	"github.com/lucas-hsi/melitusgym/routes"
	"github.com/lucas-hsi/melitusgym/services"
)

func main() {
	cfg := config.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	db, err := config.InitDB()
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}

	store := services.NewFoodStore(db, log)
	cache := services.NewSearchCache(cfg.CacheTTL, cfg.CacheMaxItems)
	scanner := services.NewTacoScanner(cfg.TacoFilePath, log)
	resolver := services.NewTacoResolver(cache, store, scanner, log)
	fallback := services.NewTBCAConnector(store, log)

	search := services.NewNutritionSearchService(resolver, fallback, cache, log)
	calculator := services.NewNutritionCalculator(log)
	nutrition := controllers.NewNutritionController(search, calculator)

	r := routes.SetupRouter(nutrition, log)
	log.Info("starting server", "port", cfg.Port, "taco_file", cfg.TacoFilePath)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
