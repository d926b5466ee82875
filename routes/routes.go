package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/lucas-hsi/melitusgym/controllers"
	"github.com/lucas-hsi/melitusgym/middlewares"
)

func SetupRouter(nutrition *controllers.NutritionController, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestLogger(log))

	r.GET("/health", nutrition.Health)

	api := r.Group("/api/nutrition")
	{
		api.GET("/search", nutrition.SearchFoods)
		api.POST("/portion", nutrition.CalculatePortion)
		api.POST("/item-portion", nutrition.CalculateItemPortion)
	}

	return r
}
