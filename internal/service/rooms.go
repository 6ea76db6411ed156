package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

// Rooms manages auditoriums and their seat grids.
type Rooms struct {
	rooms RoomStore
	seats SeatStore
}

// NewRooms constructs the room inventory component.
func NewRooms(rooms RoomStore, seats SeatStore) *Rooms {
	return &Rooms{rooms: rooms, seats: seats}
}

// Create inserts a room and materializes its rows x cols seat grid, every
// seat priced at the base price.
func (s *Rooms) Create(ctx context.Context, has3d, hasSurround bool, rows, cols, basePriceCents uint32) (*repository.Room, error) {
	room := &repository.Room{
		Has3D:          has3d,
		HasSurround:    hasSurround,
		SeatRows:       rows,
		SeatCols:       cols,
		BasePriceCents: basePriceCents,
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}
	seats := make([]repository.Seat, 0, rows*cols)
	for r := uint32(1); r <= rows; r++ {
		for c := uint32(1); c <= cols; c++ {
			seats = append(seats, repository.Seat{
				RoomID:     room.ID,
				Row:        r,
				Col:        c,
				PriceCents: basePriceCents,
			})
		}
	}
	if err := s.seats.CreateBulk(ctx, seats); err != nil {
		return nil, err
	}
	return room, nil
}

// Get returns a room by id.
func (s *Rooms) Get(ctx context.Context, id uint64) (*repository.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, fmt.Errorf("room %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return room, nil
}

// List returns every room.
func (s *Rooms) List(ctx context.Context) ([]repository.Room, error) {
	return s.rooms.List(ctx)
}

// Update rewrites a room's feature flags and base price and reprices every
// seat the room owns.  Seats of showtimes that already exist keep their
// snapshotted price; a price change only affects showtimes scheduled later.
func (s *Rooms) Update(ctx context.Context, id uint64, has3d, hasSurround bool, priceCents uint32) error {
	if err := s.rooms.Update(ctx, id, has3d, hasSurround, priceCents); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return fmt.Errorf("room %d: %w", id, ErrNotFound)
		}
		return err
	}
	return s.seats.RepriceByRoom(ctx, id, priceCents)
}

// Delete removes a room with its seats, showtimes and showtime seats.
// Issued tickets stay behind as standalone records.
func (s *Rooms) Delete(ctx context.Context, id uint64) error {
	if err := s.rooms.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return fmt.Errorf("room %d: %w", id, ErrNotFound)
		}
		return err
	}
	return nil
}
