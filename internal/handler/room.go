package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/service"
)

// RoomHandler exposes the admin room inventory endpoints.
type RoomHandler struct {
	Rooms *service.Rooms
}

func NewRoomHandler(rooms *service.Rooms) *RoomHandler {
	return &RoomHandler{Rooms: rooms}
}

type createRoomReq struct {
	Has3D          bool   `json:"has_3d"`
	HasSurround    bool   `json:"has_surround"`
	SeatRows       uint32 `json:"seat_rows"`
	SeatCols       uint32 `json:"seat_cols"`
	BasePriceCents uint32 `json:"base_price_cents"`
}

type updateRoomReq struct {
	Has3D          bool   `json:"has_3d"`
	HasSurround    bool   `json:"has_surround"`
	BasePriceCents uint32 `json:"base_price_cents"`
}

func pathID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// Create makes a new room with its full seat grid.
func (h *RoomHandler) Create(c echo.Context) error {
	var req createRoomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.SeatRows == 0 || req.SeatCols == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat grid must be at least 1x1"})
	}
	if req.BasePriceCents == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "base price must be positive"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	room, err := h.Rooms.Create(ctx, req.Has3D, req.HasSurround, req.SeatRows, req.SeatCols, req.BasePriceCents)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, room)
}

// List returns all rooms.
func (h *RoomHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rooms, err := h.Rooms.List(ctx)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, rooms)
}

// Get returns one room.
func (h *RoomHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	room, err := h.Rooms.Get(ctx, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// Update changes a room's flags and base price.  Seats of the room are
// repriced; seats of already-scheduled showtimes are not.
func (h *RoomHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateRoomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.BasePriceCents == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "base price must be positive"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Rooms.Update(ctx, id, req.Has3D, req.HasSurround, req.BasePriceCents); err != nil {
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete removes a room and everything scheduled in it.
func (h *RoomHandler) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Rooms.Delete(ctx, id); err != nil {
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
