package http

import (
	"net/http"

	"golang-stock-tracker/internal/monitor/dto"
	"golang-stock-tracker/internal/monitor/service"
	"golang-stock-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
)

// BatchHandler handles HTTP requests for price check batches.
type BatchHandler struct {
	batchRunner service.BatchRunner
	usageLedger service.UsageLedger
	logger      *logger.Logger
}

// NewBatchHandler creates a new BatchHandler.
func NewBatchHandler(batchRunner service.BatchRunner, usageLedger service.UsageLedger, logger *logger.Logger) *BatchHandler {
	return &BatchHandler{batchRunner: batchRunner, usageLedger: usageLedger, logger: logger}
}

// RegisterRoutes registers the batch routes to the owner group.
func (h *BatchHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/batches", h.RunBatch)
	g.DELETE("/batches/current", h.CancelBatch)
	g.GET("/batches/:batch_id", h.GetBatch)
	g.GET("/usage", h.GetUsage)
}

// RunBatch godoc
// @Summary Run a price check batch
// @Description Re-evaluates all open posts of the owner and consumes one unit of quota
// @Tags batches
// @Produce  json
// @Param   owner_id  path  int  true  "Owner ID"
// @Success 200 {object} dto.BatchResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /owners/{owner_id}/batches [post]
func (h *BatchHandler) RunBatch(c echo.Context) error {
	ownerID, err := ownerIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	result, err := h.batchRunner.RunBatch(c.Request().Context(), dto.RunBatchParam{OwnerID: ownerID, Trigger: dto.TriggerUser})
	if err != nil {
		return errorJSON(c, h.logger, "Failed to run price check batch", err)
	}
	return c.JSON(http.StatusOK, result)
}

// CancelBatch godoc
// @Summary Cancel the running batch
// @Description Requests cooperative cancellation; posts already started finish
// @Tags batches
// @Param   owner_id  path  int  true  "Owner ID"
// @Success 202 {object} nil
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /owners/{owner_id}/batches/current [delete]
func (h *BatchHandler) CancelBatch(c echo.Context) error {
	ownerID, err := ownerIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	if err := h.batchRunner.CancelBatch(c.Request().Context(), ownerID); err != nil {
		return errorJSON(c, h.logger, "Failed to cancel batch", err)
	}
	return c.NoContent(http.StatusAccepted)
}

// GetBatch godoc
// @Summary Get a batch result
// @Description Returns a recent batch result while it is retained
// @Tags batches
// @Produce  json
// @Param   owner_id  path  int     true  "Owner ID"
// @Param   batch_id  path  string  true  "Batch ID"
// @Success 200 {object} dto.BatchResult
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /owners/{owner_id}/batches/{batch_id} [get]
func (h *BatchHandler) GetBatch(c echo.Context) error {
	ownerID, err := ownerIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	result, err := h.batchRunner.GetBatchResult(c.Request().Context(), ownerID, c.Param("batch_id"))
	if err != nil {
		return errorJSON(c, h.logger, "Failed to get batch result", err)
	}
	return c.JSON(http.StatusOK, result)
}

// GetUsage godoc
// @Summary Get quota usage
// @Tags batches
// @Produce  json
// @Param   owner_id  path  int  true  "Owner ID"
// @Success 200 {object} dto.UsageResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /owners/{owner_id}/usage [get]
func (h *BatchHandler) GetUsage(c echo.Context) error {
	ownerID, err := ownerIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	usage, err := h.usageLedger.Usage(c.Request().Context(), ownerID)
	if err != nil {
		return errorJSON(c, h.logger, "Failed to get usage", err)
	}
	return c.JSON(http.StatusOK, usage)
}
