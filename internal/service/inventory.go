package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

// Inventory manages the sellable seat state of showtimes.  A seat flips
// AVAILABLE to SOLD through exactly one path, the conditional update in
// Reserve; everything else only reads or flips the other way.
type Inventory struct {
	showtimes ShowtimeStore
	seats     ShowtimeSeatStore
	now       func() time.Time
}

// NewInventory constructs the seat inventory component.
func NewInventory(showtimes ShowtimeStore, seats ShowtimeSeatStore) *Inventory {
	return &Inventory{
		showtimes: showtimes,
		seats:     seats,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// AvailableSeats lists every still-purchasable seat of a showtime.  A
// missing showtime is ErrNotFound; a sold-out one is an empty slice.  The
// two cases are distinct on purpose.
func (s *Inventory) AvailableSeats(ctx context.Context, showtimeID uint64) ([]repository.ShowtimeSeat, error) {
	if _, err := s.showtimes.GetByID(ctx, showtimeID); err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			return nil, fmt.Errorf("showtime %d: %w", showtimeID, ErrNotFound)
		}
		return nil, err
	}
	seats, err := s.seats.ListAvailable(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	if seats == nil {
		seats = []repository.ShowtimeSeat{}
	}
	return seats, nil
}

// Reserve claims one seat for purchase.  The availability-filtered lookup
// runs first, so a sold seat and a nonexistent one both come back as
// ErrNotFound even when the showtime has already ended.  A seat of an ended
// showtime that is still available is ErrInvalidState.  Two concurrent
// reservations of the same seat resolve at the conditional update: exactly
// one wins, the loser gets the same ErrNotFound a late buyer would.
// On success the claimed seat and its showtime are returned for ticketing.
func (s *Inventory) Reserve(ctx context.Context, showtimeSeatID uint64) (*repository.ShowtimeSeat, *repository.Showtime, error) {
	seat, err := s.seats.GetAvailableByID(ctx, showtimeSeatID)
	if err != nil {
		if errors.Is(err, repository.ErrShowtimeSeatNotFound) {
			return nil, nil, fmt.Errorf("showtime seat %d: %w", showtimeSeatID, ErrNotFound)
		}
		return nil, nil, err
	}
	showtime, err := s.showtimes.GetByID(ctx, seat.ShowtimeID)
	if err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			return nil, nil, fmt.Errorf("showtime %d: %w", seat.ShowtimeID, ErrNotFound)
		}
		return nil, nil, err
	}
	if !s.now().Before(showtime.EndsAt) {
		return nil, nil, fmt.Errorf("%w: showtime has ended", ErrInvalidState)
	}
	won, err := s.seats.Reserve(ctx, seat.ID)
	if err != nil {
		return nil, nil, err
	}
	if !won {
		return nil, nil, fmt.Errorf("showtime seat %d: %w", showtimeSeatID, ErrNotFound)
	}
	seat.Available = false
	return seat, showtime, nil
}

// Release puts a seat of a not-yet-started showtime back on sale, located by
// its position.  Once the showtime has started the sale is final and the
// release is rejected with ErrInvalidState.
func (s *Inventory) Release(ctx context.Context, showtimeID uint64, row, col uint32) error {
	seat, err := s.seats.FindByPosition(ctx, showtimeID, row, col)
	if err != nil {
		if errors.Is(err, repository.ErrShowtimeSeatNotFound) {
			return fmt.Errorf("seat (%d,%d) of showtime %d: %w", row, col, showtimeID, ErrNotFound)
		}
		return err
	}
	showtime, err := s.showtimes.GetByID(ctx, showtimeID)
	if err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			return fmt.Errorf("showtime %d: %w", showtimeID, ErrNotFound)
		}
		return err
	}
	if !s.now().Before(showtime.StartsAt) {
		return fmt.Errorf("%w: showtime has started", ErrInvalidState)
	}
	return s.seats.Release(ctx, seat.ID)
}
