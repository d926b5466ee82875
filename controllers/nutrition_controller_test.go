package controllers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucas-hsi/melitusgym/services"
)

type fixedResolver struct {
	result *services.SearchResult
}

func (f *fixedResolver) Search(term string, limit int) (*services.SearchResult, error) {
	return f.result, nil
}

type noopFallback struct{}

func (noopFallback) SearchFoods(term string, limit int) (*services.SearchResult, error) {
	return &services.SearchResult{Term: term, Sources: []string{services.SourceTBCAOnline}}, nil
}

func newTestRouter(result *services.SearchResult) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	cache := services.NewSearchCache(time.Minute, 10)
	search := services.NewNutritionSearchService(&fixedResolver{result: result}, noopFallback{}, cache, log)
	calculator := services.NewNutritionCalculator(log)
	ctl := NewNutritionController(search, calculator)

	r := gin.New()
	r.GET("/api/nutrition/search", ctl.SearchFoods)
	r.POST("/api/nutrition/portion", ctl.CalculatePortion)
	r.POST("/api/nutrition/item-portion", ctl.CalculateItemPortion)
	r.GET("/health", ctl.Health)
	return r
}

func perform(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSearchFoodsValidation(t *testing.T) {
	r := newTestRouter(&services.SearchResult{})

	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/api/nutrition/search?q=a", "").Code)
	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/api/nutrition/search?q=arroz&limit=0", "").Code)
	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/api/nutrition/search?q=arroz&limit=500", "").Code)
}

func TestSearchFoodsReturnsResult(t *testing.T) {
	r := newTestRouter(&services.SearchResult{
		Term:       "arroz",
		Sources:    []string{services.SourceTacoDB},
		Items:      []services.NormalizedItem{{Name: "Arroz branco cozido", Source: services.SourceTaco}},
		TotalFound: 1,
	})

	w := perform(r, http.MethodGet, "/api/nutrition/search?q=arroz", "")
	require.Equal(t, http.StatusOK, w.Code)

	var result services.SearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.TotalFound)
	assert.Equal(t, []string{services.SourceTacoDB}, result.Sources)
}

func TestCalculatePortionEndpoint(t *testing.T) {
	r := newTestRouter(&services.SearchResult{})

	body := `{"nutrients":{"energy_kcal":128},"portion_value":200,"portion_unit":"g"}`
	w := perform(r, http.MethodPost, "/api/nutrition/portion", body)
	require.Equal(t, http.StatusOK, w.Code)

	var result services.PortionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.InDelta(t, 2.0, result.ConversionFactor, 0.0001)
	require.NotNil(t, result.Nutrients.EnergyKcal)
	assert.InDelta(t, 256, *result.Nutrients.EnergyKcal, 0.01)
}

func TestCalculatePortionRejectsBadInput(t *testing.T) {
	r := newTestRouter(&services.SearchResult{})

	w := perform(r, http.MethodPost, "/api/nutrition/portion",
		`{"nutrients":{"energy_kcal":128},"portion_value":10,"portion_unit":"furlongs"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = perform(r, http.MethodPost, "/api/nutrition/portion",
		`{"nutrients":{"energy_kcal":128},"portion_value":0,"portion_unit":"g"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = perform(r, http.MethodPost, "/api/nutrition/portion", `not-json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalculateItemPortionEndpoint(t *testing.T) {
	r := newTestRouter(&services.SearchResult{})

	body := `{"item":{"name":"Arroz","nutrients_per_100g":{"energy_kcal":128}},"portion_value":50,"portion_unit":"g"}`
	w := perform(r, http.MethodPost, "/api/nutrition/item-portion", body)
	require.Equal(t, http.StatusOK, w.Code)

	var result services.ItemCalculation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, services.MethodConvertedFrom100g, result.Calculation.CalculationMethod)
	require.NotNil(t, result.Calculation.Nutrients.EnergyKcal)
	assert.InDelta(t, 64, *result.Calculation.Nutrients.EnergyKcal, 0.01)
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&services.SearchResult{})
	w := perform(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
