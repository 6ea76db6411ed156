package repository // repository for showtime seat persistence

import (
	"context"
	"database/sql"
	"errors"
)

// ShowtimeSeat is the sellable state of one seat for one showtime.  A row is
// created available when the showtime is created, flips to sold on purchase
// and back on refund, and dies with the showtime.  PriceCents is snapshotted
// from the seat at showtime creation and never rewritten afterwards.  Row
// and Col are joined in from the seats table on reads.
type ShowtimeSeat struct {
	ID         uint64 `json:"id"`
	ShowtimeID uint64 `json:"showtime_id"`
	SeatID     uint64 `json:"seat_id"`
	Row        uint32 `json:"row"`
	Col        uint32 `json:"col"`
	PriceCents uint32 `json:"price_cents"`
	Available  bool   `json:"available"`
}

// ErrShowtimeSeatNotFound is returned when a showtime seat lookup yields no
// rows.  For availability-filtered lookups this covers both a missing seat
// and a sold one; callers cannot tell the two apart.
var ErrShowtimeSeatNotFound = errors.New("showtime seat not found")

// ShowtimeSeatRepo encapsulates database operations for showtime_seats.
type ShowtimeSeatRepo struct {
	db *sql.DB
}

// NewShowtimeSeatRepo constructs a ShowtimeSeatRepo given a DB handle.
func NewShowtimeSeatRepo(db *sql.DB) *ShowtimeSeatRepo {
	return &ShowtimeSeatRepo{db: db}
}

// createShowtimeSeatsBulk inserts multiple showtime_seat records in one
// statement on the given transaction.  It is shared with the showtime
// repository, which materializes the inventory atomically with the showtime
// insert.
func createShowtimeSeatsBulk(ctx context.Context, tx *sql.Tx, seats []ShowtimeSeat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO showtime_seats (showtime_id, seat_id, price_cents, available) VALUES `
	args := make([]interface{}, 0, len(seats)*4)
	for i, ss := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, ss.ShowtimeID, ss.SeatID, ss.PriceCents, ss.Available)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// ListAvailable returns every still-available seat of a showtime with its
// position joined in, ordered by row then column.  An empty result is valid
// and means the showtime is sold out.
func (r *ShowtimeSeatRepo) ListAvailable(ctx context.Context, showtimeID uint64) ([]ShowtimeSeat, error) {
	const q = `SELECT ss.id, ss.showtime_id, ss.seat_id, s.seat_row, s.seat_col, ss.price_cents, ss.available
	           FROM showtime_seats ss
	           JOIN seats s ON s.id = ss.seat_id
	           WHERE ss.showtime_id = ? AND ss.available = 1
	           ORDER BY s.seat_row, s.seat_col`
	rows, err := r.db.QueryContext(ctx, q, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []ShowtimeSeat
	for rows.Next() {
		var ss ShowtimeSeat
		if err := rows.Scan(&ss.ID, &ss.ShowtimeID, &ss.SeatID, &ss.Row, &ss.Col, &ss.PriceCents, &ss.Available); err != nil {
			return nil, err
		}
		result = append(result, ss)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetAvailableByID retrieves a showtime seat only while it is available.
// A sold seat and a nonexistent one both come back as
// ErrShowtimeSeatNotFound so that a losing bidder learns nothing about the
// inventory.
func (r *ShowtimeSeatRepo) GetAvailableByID(ctx context.Context, id uint64) (*ShowtimeSeat, error) {
	const q = `SELECT ss.id, ss.showtime_id, ss.seat_id, s.seat_row, s.seat_col, ss.price_cents, ss.available
	           FROM showtime_seats ss
	           JOIN seats s ON s.id = ss.seat_id
	           WHERE ss.id = ? AND ss.available = 1`
	var ss ShowtimeSeat
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&ss.ID, &ss.ShowtimeID, &ss.SeatID, &ss.Row, &ss.Col, &ss.PriceCents, &ss.Available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowtimeSeatNotFound
		}
		return nil, err
	}
	return &ss, nil
}

// FindByPosition locates a showtime seat by showtime and seat position,
// regardless of availability.  Refunds resolve seats this way because the
// ticket only records the position.
func (r *ShowtimeSeatRepo) FindByPosition(ctx context.Context, showtimeID uint64, row, col uint32) (*ShowtimeSeat, error) {
	const q = `SELECT ss.id, ss.showtime_id, ss.seat_id, s.seat_row, s.seat_col, ss.price_cents, ss.available
	           FROM showtime_seats ss
	           JOIN seats s ON s.id = ss.seat_id
	           WHERE ss.showtime_id = ? AND s.seat_row = ? AND s.seat_col = ?`
	var ss ShowtimeSeat
	err := r.db.QueryRowContext(ctx, q, showtimeID, row, col).
		Scan(&ss.ID, &ss.ShowtimeID, &ss.SeatID, &ss.Row, &ss.Col, &ss.PriceCents, &ss.Available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowtimeSeatNotFound
		}
		return nil, err
	}
	return &ss, nil
}

// Reserve performs the single permitted AVAILABLE -> SOLD transition: a
// conditional update that only fires while the seat is still available.
// Exactly one of any number of concurrent callers observes won=true; the
// database serializes the row update, so no two purchasers can both win.
func (r *ShowtimeSeatRepo) Reserve(ctx context.Context, id uint64) (won bool, err error) {
	const q = `UPDATE showtime_seats SET available = 0 WHERE id = ? AND available = 1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Release flips a seat back to available after a refund.  Releasing a seat
// that is already available is a no-op, not an error; callers have already
// resolved the row via FindByPosition.
func (r *ShowtimeSeatRepo) Release(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE showtime_seats SET available = 1 WHERE id = ?`, id)
	return err
}
