package http

import (
	"errors"
	"net/http"
	"strconv"

	"golang-stock-tracker/internal/monitor/dto"
	"golang-stock-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
)

var (
	errInvalidOwnerID = errors.New("invalid owner id")
	errInvalidPayload = errors.New("invalid request payload")
)

func ownerIDParam(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("owner_id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errInvalidOwnerID
	}
	return uint(id), nil
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, dto.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, dto.ErrAlreadyRunning), errors.Is(err, dto.ErrPostClosed), errors.Is(err, dto.ErrPersistConflict):
		return http.StatusConflict
	case errors.Is(err, dto.ErrPostNotFound), errors.Is(err, dto.ErrBatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, dto.ErrEmptySelection), errors.Is(err, dto.ErrInvalidScope), errors.Is(err, dto.ErrNoRecipient):
		return http.StatusBadRequest
	case errors.Is(err, dto.ErrNotifierDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorJSON(c echo.Context, log *logger.Logger, msg string, err error) error {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		log.ErrorContext(c.Request().Context(), msg, logger.ErrorField(err), logger.StringField("path", c.Path()))
		return c.JSON(status, dto.ErrorResponse{Error: msg})
	}
	return c.JSON(status, dto.ErrorResponse{Error: err.Error()})
}
