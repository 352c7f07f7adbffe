// backend-go/internal/api/handlers/forecast_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stockwise/backend-go/internal/domain"
	"github.com/stockwise/backend-go/internal/service"
)

type ForecastHandler struct {
	service *service.ForecastService
}

func NewForecastHandler(service *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: service}
}

func (h *ForecastHandler) productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return 0, false
	}
	return id, true
}

// GetForecast runs the decision pipeline for one product and returns the
// horizon forecast with the derived inventory actions.
func (h *ForecastHandler) GetForecast(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	result, err := h.service.ForecastProduct(c.Request.Context(), id)
	if errors.Is(err, domain.ErrInsufficientData) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "not enough sales history to forecast"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate forecast", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetStoredForecasts returns the persisted forecasts from today onward.
func (h *ForecastHandler) GetStoredForecasts(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	forecasts, err := h.service.StoredForecasts(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch forecasts", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"forecasts": forecasts})
}

// Train retrains the product's models and reports per-model metrics.
func (h *ForecastHandler) Train(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	result, err := h.service.TrainProduct(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "training failed", "details": err.Error()})
		return
	}
	if !result.Success {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": result.Message})
		return
	}

	response := gin.H{
		"success":       true,
		"training_rows": result.Rows,
	}
	if result.Linear.Metrics != nil {
		response["linear_regression"] = result.Linear.Metrics
	} else if result.Linear.Err != nil {
		response["linear_regression_error"] = result.Linear.Err.Error()
	}
	if result.Forest.Metrics != nil {
		response["random_forest"] = result.Forest.Metrics
	} else if result.Forest.Err != nil {
		response["random_forest_error"] = result.Forest.Err.Error()
	}

	c.JSON(http.StatusOK, response)
}

// GetTrend returns the demand trajectory over the last 30 days.
func (h *ForecastHandler) GetTrend(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	trend, err := h.service.Trend(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to analyze trend", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, trend)
}

// GetProductAlerts returns the live alerts for one product.
func (h *ForecastHandler) GetProductAlerts(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	alerts, err := h.service.ProductAlerts(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch alerts", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// GetActiveAlerts returns all unacknowledged alerts with a text summary.
func (h *ForecastHandler) GetActiveAlerts(c *gin.Context) {
	alerts, summary, err := h.service.ActiveAlerts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch alerts", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"alerts":  alerts,
		"summary": summary,
	})
}

// RunBatch forecasts the entire catalog.
func (h *ForecastHandler) RunBatch(c *gin.Context) {
	result, err := h.service.ForecastAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "batch run failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetModelInfo reports the pretrained bundle metadata.
func (h *ForecastHandler) GetModelInfo(c *gin.Context) {
	meta := h.service.PretrainedInfo()
	if meta == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no pretrained model loaded"})
		return
	}

	c.JSON(http.StatusOK, meta)
}
