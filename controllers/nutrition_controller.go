package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lucas-hsi/melitusgym/services"
)

const (
	minQueryLength = 2
	defaultLimit   = 20
	maxLimit       = 100
)

type NutritionController struct {
	search     *services.NutritionSearchService
	calculator *services.NutritionCalculator
}

func NewNutritionController(search *services.NutritionSearchService, calculator *services.NutritionCalculator) *NutritionController {
	return &NutritionController{search: search, calculator: calculator}
}

// GET /api/nutrition/search?q=arroz&limit=20
func (ctl *NutritionController) SearchFoods(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if len([]rune(q)) < minQueryLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q must have at least 2 characters"})
		return
	}

	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = n
	}

	result, err := ctl.search.SearchUnified(q, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

type portionRequest struct {
	Nutrients    services.Nutrients `json:"nutrients"`
	PortionValue float64            `json:"portion_value"`
	PortionUnit  string             `json:"portion_unit"`
	BaseUnit     string             `json:"base_unit"`
}

// POST /api/nutrition/portion
func (ctl *NutritionController) CalculatePortion(c *gin.Context) {
	var req portionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if err := ctl.calculator.ValidatePortionInput(req.PortionValue, req.PortionUnit); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	result, err := ctl.calculator.CalculatePortionNutrition(req.Nutrients, req.PortionValue, req.PortionUnit, req.BaseUnit)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrInvalidPortion) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

type itemPortionRequest struct {
	Item         services.NormalizedItem `json:"item"`
	PortionValue float64                 `json:"portion_value"`
	PortionUnit  string                  `json:"portion_unit"`
}

// POST /api/nutrition/item-portion
func (ctl *NutritionController) CalculateItemPortion(c *gin.Context) {
	var req itemPortionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	result, err := ctl.calculator.GetItemWithCalculation(req.Item, req.PortionValue, req.PortionUnit)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrInvalidPortion) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /health
func (ctl *NutritionController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
