package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/queue"
	"github.com/iliyamo/cinema-ticketing/internal/service"
)

// ShowtimeHandler exposes scheduling endpoints.  Creation, cancellation and
// cleanup are admin operations; the by-movie listing is public.
type ShowtimeHandler struct {
	Scheduler *service.Scheduler
}

func NewShowtimeHandler(scheduler *service.Scheduler) *ShowtimeHandler {
	return &ShowtimeHandler{Scheduler: scheduler}
}

type createShowtimeReq struct {
	RoomID   uint64    `json:"room_id"`
	MovieID  uint64    `json:"movie_id"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// Create schedules a showtime.  Overlap conflicts come back as 409 with the
// list of blocking showtimes.
func (h *ShowtimeHandler) Create(c echo.Context) error {
	var req createShowtimeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RoomID == 0 || req.MovieID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id and movie_id required"})
	}
	if !req.EndsAt.After(req.StartsAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be after starts_at"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	st, err := h.Scheduler.Schedule(ctx, req.RoomID, req.MovieID, req.StartsAt.UTC(), req.EndsAt.UTC())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, st)
}

// Get returns one showtime.
func (h *ShowtimeHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	st, err := h.Scheduler.Get(ctx, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// Cancel deletes a showtime, voiding tickets when it has not started, and
// publishes a showtime.cancelled event.
func (h *ShowtimeHandler) Cancel(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	st, err := h.Scheduler.Get(ctx, id)
	if err != nil {
		return serviceError(c, err)
	}
	voided, err := h.Scheduler.Cancel(ctx, id)
	if err != nil {
		return serviceError(c, err)
	}

	// Best effort; the cancellation stands regardless.
	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pubCancel()
		_ = queue.PublishShowtimeCancelled(pubCtx, queue.ShowtimeCancelledEvent{
			ShowtimeID:    st.ID,
			RoomID:        st.RoomID,
			MovieID:       st.MovieID,
			StartsAt:      st.StartsAt.Format(time.RFC3339),
			EndsAt:        st.EndsAt.Format(time.RFC3339),
			TicketsVoided: voided,
			CancelledAt:   time.Now().UTC().Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusOK, echo.Map{"tickets_voided": voided})
}

// PurgeFinished batch-deletes every showtime that has already ended.
func (h *ShowtimeHandler) PurgeFinished(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	deleted, err := h.Scheduler.DeleteFinished(ctx)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": deleted})
}

// ListByMovie returns the upcoming showtimes of a movie.
func (h *ShowtimeHandler) ListByMovie(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Scheduler.ListByMovie(ctx, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}
