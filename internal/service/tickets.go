package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

// Tickets coordinates the ticket lifecycle.  A ticket is a denormalized
// snapshot issued after a successful seat reservation; it never references
// the showtime seat directly and is resolved back through the showtime's
// (start, room) pair plus the seat position.
type Tickets struct {
	tickets   TicketStore
	showtimes ShowtimeStore
	inventory *Inventory
	now       func() time.Time
}

// NewTickets constructs the ticket lifecycle component.
func NewTickets(tickets TicketStore, showtimes ShowtimeStore, inventory *Inventory) *Tickets {
	return &Tickets{
		tickets:   tickets,
		showtimes: showtimes,
		inventory: inventory,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Issue creates a ticket for a seat the caller has already reserved.  All
// holder-facing data is copied in at this moment; later price or schedule
// changes do not rewrite issued tickets.
func (s *Tickets) Issue(ctx context.Context, seat *repository.ShowtimeSeat, showtime *repository.Showtime, movie *repository.Movie) (*repository.Ticket, error) {
	t := &repository.Ticket{
		ID:               uuid.NewString(),
		Row:              seat.Row,
		Col:              seat.Col,
		PriceCents:       seat.PriceCents,
		RoomID:           showtime.RoomID,
		MovieID:          movie.ID,
		MovieTitle:       movie.Title,
		ShowtimeStartsAt: showtime.StartsAt,
		ShowtimeEndsAt:   showtime.EndsAt,
		IssuedAt:         s.now(),
	}
	if err := s.tickets.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get returns a ticket by id.
func (s *Tickets) Get(ctx context.Context, id string) (*repository.Ticket, error) {
	t, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return nil, fmt.Errorf("ticket %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return t, nil
}

// Refund voids a ticket and returns its seat to sale.  The owning showtime
// is resolved through the ticket's (start, room) pair; a showtime that was
// cancelled in the meantime makes the refund ErrNotFound.  The seat release
// happens before the ticket delete, so a failed release leaves the ticket
// intact and the refund can be retried.
func (s *Tickets) Refund(ctx context.Context, ticketID string) error {
	t, err := s.Get(ctx, ticketID)
	if err != nil {
		return err
	}
	showtime, err := s.showtimes.FindByStartAndRoom(ctx, t.ShowtimeStartsAt, t.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			return fmt.Errorf("showtime of ticket %s: %w", ticketID, ErrNotFound)
		}
		return err
	}
	if err := s.inventory.Release(ctx, showtime.ID, t.Row, t.Col); err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, t.ID); err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return fmt.Errorf("ticket %s: %w", ticketID, ErrNotFound)
		}
		return err
	}
	return nil
}

// VoidForShowtime bulk-deletes every ticket of the showtime identified by
// (start, room).  Seats are not released one by one; the caller is about to
// drop the whole inventory with the showtime.
func (s *Tickets) VoidForShowtime(ctx context.Context, start time.Time, roomID uint64) (int64, error) {
	return s.tickets.DeleteByShowtime(ctx, start, roomID)
}

// Stats aggregates ticket sales.
type Stats struct {
	Sold         int    `json:"sold"`
	RevenueCents uint64 `json:"revenue_cents"`
}

// StatsByDateRange sums tickets issued in [from, to).
func (s *Tickets) StatsByDateRange(ctx context.Context, from, to time.Time) (Stats, error) {
	list, err := s.tickets.ListIssuedBetween(ctx, from, to)
	if err != nil {
		return Stats{}, err
	}
	return sumStats(list), nil
}

// StatsByMovie sums every ticket ever issued for a movie.
func (s *Tickets) StatsByMovie(ctx context.Context, movieID uint64) (Stats, error) {
	list, err := s.tickets.ListByMovie(ctx, movieID)
	if err != nil {
		return Stats{}, err
	}
	return sumStats(list), nil
}

// ListIssuedBetween exposes the raw tickets of a date range for exports.
func (s *Tickets) ListIssuedBetween(ctx context.Context, from, to time.Time) ([]repository.Ticket, error) {
	return s.tickets.ListIssuedBetween(ctx, from, to)
}

func sumStats(tickets []repository.Ticket) Stats {
	st := Stats{Sold: len(tickets)}
	for _, t := range tickets {
		st.RevenueCents += uint64(t.PriceCents)
	}
	return st
}
