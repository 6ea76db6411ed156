// Package handler contains the HTTP handlers of the booking API.  Handlers
// bind and validate input, call into the service layer and translate typed
// engine errors to status codes; they hold no business rules of their own.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/service"
)

// reqCtx bounds a handler's downstream calls.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// serviceError maps engine errors to HTTP responses: missing entities are
// 404, malformed schedules 400, and overlap, lifecycle and duplicate
// conflicts 409.  Overlap responses carry the full conflict list.
func serviceError(c echo.Context, err error) error {
	var overlap *service.OverlapError
	switch {
	case errors.As(err, &overlap):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     "schedule overlap",
			"room_id":   overlap.RoomID,
			"conflicts": overlap.Conflicts,
		})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidSchedule):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidState):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
