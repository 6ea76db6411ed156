package repository // repository defines data access for seats

import (
	"context"
	"database/sql"
	"errors"
)

// Seat represents a physical seat within a room.  Position (Row, Col) is
// immutable once created and unique within the room (enforced by a unique
// key on room_id, seat_row, seat_col).  PriceCents starts as the room's base
// price and is rewritten by room-wide price updates.
type Seat struct {
	ID         uint64 `json:"id"`
	RoomID     uint64 `json:"room_id"`
	Row        uint32 `json:"row"`
	Col        uint32 `json:"col"`
	PriceCents uint32 `json:"price_cents"`
}

// ErrSeatNotFound is returned when a seat lookup yields no rows.
var ErrSeatNotFound = errors.New("seat not found")

// SeatRepo provides methods to work with seats in the database.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// CreateBulk inserts multiple seats in a single statement.
func (r *SeatRepo) CreateBulk(ctx context.Context, seats []Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO seats (room_id, seat_row, seat_col, price_cents) VALUES `
	args := make([]interface{}, 0, len(seats)*4)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, s.RoomID, s.Row, s.Col, s.PriceCents)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// GetByRoom retrieves all seats of a room ordered by row then column.
func (r *SeatRepo) GetByRoom(ctx context.Context, roomID uint64) ([]Seat, error) {
	const q = `SELECT id, room_id, seat_row, seat_col, price_cents
	           FROM seats
	           WHERE room_id = ?
	           ORDER BY seat_row, seat_col`
	rows, err := r.db.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Seat
	for rows.Next() {
		var s Seat
		if err := rows.Scan(&s.ID, &s.RoomID, &s.Row, &s.Col, &s.PriceCents); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// RepriceByRoom rewrites the price of every seat owned by the room.  Seats
// of already-created showtimes are not affected: showtime seats snapshot the
// price at showtime creation time.
func (r *SeatRepo) RepriceByRoom(ctx context.Context, roomID uint64, priceCents uint32) error {
	const q = `UPDATE seats SET price_cents = ? WHERE room_id = ?`
	_, err := r.db.ExecContext(ctx, q, priceCents, roomID)
	return err
}
