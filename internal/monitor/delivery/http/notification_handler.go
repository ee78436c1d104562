package http

import (
	"net/http"

	"golang-stock-tracker/internal/monitor/dto"
	"golang-stock-tracker/internal/monitor/service"
	"golang-stock-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
)

// NotificationHandler handles HTTP requests for batch notifications.
type NotificationHandler struct {
	notificationService service.NotificationService
	logger              *logger.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService service.NotificationService, logger *logger.Logger) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, logger: logger}
}

// RegisterRoutes registers the notification routes to the owner group.
func (h *NotificationHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/batches/:batch_id/notification/preview", h.Preview)
	g.POST("/batches/:batch_id/notification", h.Dispatch)
}

// Preview godoc
// @Summary Preview a batch notification
// @Description Builds the report with the default selection and the given overrides without sending it
// @Tags notifications
// @Accept  json
// @Produce  json
// @Param   owner_id   path  int                        true   "Owner ID"
// @Param   batch_id   path  string                     true   "Batch ID"
// @Param   overrides  body  dto.NotificationOverrides  false  "Selection overrides"
// @Success 200 {object} dto.NotificationPayload
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /owners/{owner_id}/batches/{batch_id}/notification/preview [post]
func (h *NotificationHandler) Preview(c echo.Context) error {
	ownerID, overrides, err := h.bind(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	payload, err := h.notificationService.Preview(c.Request().Context(), ownerID, c.Param("batch_id"), overrides)
	if err != nil {
		return errorJSON(c, h.logger, "Failed to build notification", err)
	}
	return c.JSON(http.StatusOK, payload)
}

// Dispatch godoc
// @Summary Send a batch notification
// @Description Sends the selected posts to Telegram. An empty selection is rejected.
// @Tags notifications
// @Accept  json
// @Produce  json
// @Param   owner_id   path  int                        true   "Owner ID"
// @Param   batch_id   path  string                     true   "Batch ID"
// @Param   overrides  body  dto.NotificationOverrides  false  "Selection overrides"
// @Success 200 {object} dto.NotificationPayload
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /owners/{owner_id}/batches/{batch_id}/notification [post]
func (h *NotificationHandler) Dispatch(c echo.Context) error {
	ownerID, overrides, err := h.bind(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	payload, err := h.notificationService.Dispatch(c.Request().Context(), ownerID, c.Param("batch_id"), overrides)
	if err != nil {
		return errorJSON(c, h.logger, "Failed to send notification", err)
	}
	return c.JSON(http.StatusOK, payload)
}

func (h *NotificationHandler) bind(c echo.Context) (uint, dto.NotificationOverrides, error) {
	var overrides dto.NotificationOverrides
	ownerID, err := ownerIDParam(c)
	if err != nil {
		return 0, overrides, err
	}
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&overrides); err != nil {
			return 0, overrides, errInvalidPayload
		}
	}
	return ownerID, overrides, nil
}
