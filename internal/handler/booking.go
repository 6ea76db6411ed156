package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/queue"
	"github.com/iliyamo/cinema-ticketing/internal/repository"
	"github.com/iliyamo/cinema-ticketing/internal/service"
)

// BookingHandler exposes the public seat-booking surface: browsing
// availability, purchasing, refunding and fetching tickets.
type BookingHandler struct {
	Inventory *service.Inventory
	Tickets   *service.Tickets
	Movies    *repository.MovieRepo
}

func NewBookingHandler(inv *service.Inventory, tickets *service.Tickets, movies *repository.MovieRepo) *BookingHandler {
	return &BookingHandler{Inventory: inv, Tickets: tickets, Movies: movies}
}

type purchaseReq struct {
	ShowtimeSeatID uint64 `json:"showtime_seat_id"`
}

// AvailableSeats lists the purchasable seats of a showtime.  A sold-out
// showtime yields an empty array, not an error.
func (h *BookingHandler) AvailableSeats(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	seats, err := h.Inventory.AvailableSeats(ctx, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, seats)
}

// Purchase reserves a seat and issues its ticket.  The reservation is the
// contended step; once it is won the ticket write is plain.  If ticketing
// fails after the seat was claimed, the seat is put back on sale so no
// inventory leaks.
func (h *BookingHandler) Purchase(c echo.Context) error {
	var req purchaseReq
	if err := c.Bind(&req); err != nil || req.ShowtimeSeatID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "showtime_seat_id required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	seat, showtime, err := h.Inventory.Reserve(ctx, req.ShowtimeSeatID)
	if err != nil {
		return serviceError(c, err)
	}

	movie, err := h.Movies.GetByID(ctx, showtime.MovieID)
	if err != nil {
		h.rollbackReserve(showtime.ID, seat.Row, seat.Col)
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return serviceError(c, err)
	}

	ticket, err := h.Tickets.Issue(ctx, seat, showtime, movie)
	if err != nil {
		h.rollbackReserve(showtime.ID, seat.Row, seat.Col)
		return serviceError(c, err)
	}

	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pubCancel()
		_ = queue.PublishTicketIssued(pubCtx, queue.TicketIssuedEvent{
			TicketID:   ticket.ID,
			MovieID:    ticket.MovieID,
			MovieTitle: ticket.MovieTitle,
			RoomID:     ticket.RoomID,
			Row:        ticket.Row,
			Col:        ticket.Col,
			PriceCents: ticket.PriceCents,
			StartsAt:   ticket.ShowtimeStartsAt.Format(time.RFC3339),
			EndsAt:     ticket.ShowtimeEndsAt.Format(time.RFC3339),
			IssuedAt:   ticket.IssuedAt.Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusCreated, ticket)
}

// rollbackReserve returns a claimed seat to sale after a failed purchase.
// Runs on a fresh context; the request one may already be cancelled.
func (h *BookingHandler) rollbackReserve(showtimeID uint64, row, col uint32) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Inventory.Release(ctx, showtimeID, row, col); err != nil {
		log.Printf("release after failed purchase: showtime=%d seat=(%d,%d): %v", showtimeID, row, col, err)
	}
}

// GetTicket returns one ticket.
func (h *BookingHandler) GetTicket(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	ticket, err := h.Tickets.Get(ctx, c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, ticket)
}

// Refund voids a ticket and releases its seat.  Refunds close at showtime
// start.
func (h *BookingHandler) Refund(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Tickets.Refund(ctx, c.Param("id")); err != nil {
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
