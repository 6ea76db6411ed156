package repository // repository defines data access for issued tickets

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Ticket is an immutable issuance record.  Everything a holder needs is
// denormalized at purchase time: seat position, frozen price, room, movie
// and showtime interval.  There is deliberately no foreign key back to the
// showtime seat; refund flows resolve the seat via (showtime start, room)
// plus (row, col) so a ticket survives schedule mutations until it is
// explicitly deleted.  Tickets are only ever created or deleted, never
// updated in place.
type Ticket struct {
	ID               string    `json:"id"`
	Row              uint32    `json:"row"`
	Col              uint32    `json:"col"`
	PriceCents       uint32    `json:"price_cents"`
	RoomID           uint64    `json:"room_id"`
	MovieID          uint64    `json:"movie_id"`
	MovieTitle       string    `json:"movie_title"`
	ShowtimeStartsAt time.Time `json:"showtime_starts_at"`
	ShowtimeEndsAt   time.Time `json:"showtime_ends_at"`
	IssuedAt         time.Time `json:"issued_at"`
}

// ErrTicketNotFound indicates that a ticket was not located in the DB.
var ErrTicketNotFound = errors.New("ticket not found")

// TicketRepo manages persistence for tickets.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo constructs a TicketRepo with the given DB handle.
func NewTicketRepo(db *sql.DB) *TicketRepo {
	return &TicketRepo{db: db}
}

const ticketCols = `id, seat_row, seat_col, price_cents, room_id, movie_id, movie_title, showtime_starts_at, showtime_ends_at, issued_at`

func scanTicket(row interface{ Scan(...any) error }, t *Ticket) error {
	return row.Scan(&t.ID, &t.Row, &t.Col, &t.PriceCents, &t.RoomID, &t.MovieID,
		&t.MovieTitle, &t.ShowtimeStartsAt, &t.ShowtimeEndsAt, &t.IssuedAt)
}

// Create persists a new ticket.  The caller supplies the UUID identifier.
func (r *TicketRepo) Create(ctx context.Context, t *Ticket) error {
	const q = `INSERT INTO tickets (` + ticketCols + `)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, t.ID, t.Row, t.Col, t.PriceCents, t.RoomID, t.MovieID,
		t.MovieTitle, t.ShowtimeStartsAt, t.ShowtimeEndsAt, t.IssuedAt)
	return err
}

// GetByID retrieves a ticket by its opaque identifier.
func (r *TicketRepo) GetByID(ctx context.Context, id string) (*Ticket, error) {
	const q = `SELECT ` + ticketCols + ` FROM tickets WHERE id = ?`
	var t Ticket
	if err := scanTicket(r.db.QueryRowContext(ctx, q, id), &t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Delete removes a ticket row, returning ErrTicketNotFound when absent.
func (r *TicketRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// DeleteByShowtime bulk-deletes every ticket issued for the showtime
// identified by its start time and room.  Used when a showtime is cancelled
// before it begins; the seat inventory is dropped wholesale with the
// showtime, so seats are not released one by one.
func (r *TicketRepo) DeleteByShowtime(ctx context.Context, start time.Time, roomID uint64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM tickets WHERE showtime_starts_at = ? AND room_id = ?`, start, roomID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// ListIssuedBetween returns tickets whose issue timestamp falls in
// [from, to), ordered by issue time.  Consumed by the analytics endpoints.
func (r *TicketRepo) ListIssuedBetween(ctx context.Context, from, to time.Time) ([]Ticket, error) {
	const q = `SELECT ` + ticketCols + `
	           FROM tickets
	           WHERE issued_at >= ? AND issued_at < ?
	           ORDER BY issued_at`
	return r.list(ctx, q, from, to)
}

// ListByMovie returns all tickets issued for a movie.
func (r *TicketRepo) ListByMovie(ctx context.Context, movieID uint64) ([]Ticket, error) {
	const q = `SELECT ` + ticketCols + ` FROM tickets WHERE movie_id = ? ORDER BY issued_at`
	return r.list(ctx, q, movieID)
}

func (r *TicketRepo) list(ctx context.Context, query string, args ...any) ([]Ticket, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Ticket
	for rows.Next() {
		var t Ticket
		if err := scanTicket(rows, &t); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
