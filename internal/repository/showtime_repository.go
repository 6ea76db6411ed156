// Package repository contains data access logic for showtime operations.
// This file defines the Showtime model and its repository.  A Showtime
// represents a scheduled screening of a movie in a room over a half-open
// interval [starts_at, ends_at).  All timestamps are UTC.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Showtime references its room and movie by ID only.  The schedule invariant
// is that no two showtimes in the same room overlap; the authoritative guard
// for that invariant is the conditional insert in CreateWithSeats, not the
// FindOverlapping read.
type Showtime struct {
	ID        uint64    `json:"id"`
	RoomID    uint64    `json:"room_id"`
	MovieID   uint64    `json:"movie_id"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrShowtimeNotFound indicates that a showtime was not located in the DB.
var ErrShowtimeNotFound = errors.New("showtime not found")

// ShowtimeRepo manages persistence for showtimes.
type ShowtimeRepo struct {
	db *sql.DB
}

// NewShowtimeRepo constructs a ShowtimeRepo with the given DB handle.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo {
	return &ShowtimeRepo{db: db}
}

const showtimeCols = `id, room_id, movie_id, starts_at, ends_at, created_at`

func scanShowtime(row interface{ Scan(...any) error }, s *Showtime) error {
	return row.Scan(&s.ID, &s.RoomID, &s.MovieID, &s.StartsAt, &s.EndsAt, &s.CreatedAt)
}

// CreateWithSeats inserts a showtime and materializes its seat inventory in
// one transaction.  The insert is guarded at the storage level: it only
// lands when no overlapping showtime exists in the room at execution time,
// so two racing schedule requests cannot both succeed.  The method reports
// inserted=false without error when the guard rejected the insert; the
// caller re-queries the conflicts to build its error.
func (r *ShowtimeRepo) CreateWithSeats(ctx context.Context, s *Showtime, seats []ShowtimeSeat) (inserted bool, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	// Overlap predicate: existing.starts_at < new.ends_at AND
	// existing.ends_at > new.starts_at, i.e. [start, end) intersection.
	const ins = `INSERT INTO showtimes (room_id, movie_id, starts_at, ends_at)
	             SELECT ?, ?, ?, ?
	             FROM DUAL
	             WHERE NOT EXISTS (
	                 SELECT 1 FROM showtimes
	                 WHERE room_id = ? AND starts_at < ? AND ends_at > ?
	             )`
	res, err := tx.ExecContext(ctx, ins, s.RoomID, s.MovieID, s.StartsAt, s.EndsAt, s.RoomID, s.EndsAt, s.StartsAt)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return false, err
	}
	s.ID = uint64(id)
	for i := range seats {
		seats[i].ShowtimeID = s.ID
	}
	if err := createShowtimeSeatsBulk(ctx, tx, seats); err != nil {
		return false, err
	}
	const sel = `SELECT created_at FROM showtimes WHERE id = ?`
	if err := tx.QueryRowContext(ctx, sel, s.ID).Scan(&s.CreatedAt); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return true, nil
}

// GetByID retrieves a showtime by its ID.
func (r *ShowtimeRepo) GetByID(ctx context.Context, id uint64) (*Showtime, error) {
	const q = `SELECT ` + showtimeCols + ` FROM showtimes WHERE id = ?`
	var s Showtime
	if err := scanShowtime(r.db.QueryRowContext(ctx, q, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowtimeNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindByStartAndRoom locates a showtime by its exact start time and room.
// Tickets carry no foreign key; this pair is how a ticket is resolved back
// to its showtime during refunds.
func (r *ShowtimeRepo) FindByStartAndRoom(ctx context.Context, start time.Time, roomID uint64) (*Showtime, error) {
	const q = `SELECT ` + showtimeCols + ` FROM showtimes WHERE starts_at = ? AND room_id = ?`
	var s Showtime
	if err := scanShowtime(r.db.QueryRowContext(ctx, q, start, roomID), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowtimeNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindOverlapping returns all showtimes in the room whose [starts_at,
// ends_at) interval intersects [start, end).  An empty slice means the slot
// is free.  This is the fast-path rejection used to report every conflict
// to the caller; the write-path guard lives in CreateWithSeats.
func (r *ShowtimeRepo) FindOverlapping(ctx context.Context, roomID uint64, start, end time.Time) ([]Showtime, error) {
	const q = `SELECT ` + showtimeCols + `
	           FROM showtimes
	           WHERE room_id = ? AND starts_at < ? AND ends_at > ?
	           ORDER BY starts_at`
	rows, err := r.db.QueryContext(ctx, q, roomID, end, start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var overlaps []Showtime
	for rows.Next() {
		var s Showtime
		if err := scanShowtime(rows, &s); err != nil {
			return nil, err
		}
		overlaps = append(overlaps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return overlaps, nil
}

// ListByMovieEndingAfter returns showtimes of a movie that have not finished
// by the given instant, ordered by start time.
func (r *ShowtimeRepo) ListByMovieEndingAfter(ctx context.Context, movieID uint64, t time.Time) ([]Showtime, error) {
	const q = `SELECT ` + showtimeCols + `
	           FROM showtimes
	           WHERE movie_id = ? AND ends_at > ?
	           ORDER BY starts_at`
	rows, err := r.db.QueryContext(ctx, q, movieID, t)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Showtime
	for rows.Next() {
		var s Showtime
		if err := scanShowtime(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteWithSeats removes a showtime together with its seat inventory in a
// transaction.  It returns ErrShowtimeNotFound when the showtime is absent.
func (r *ShowtimeRepo) DeleteWithSeats(ctx context.Context, id uint64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM showtime_seats WHERE showtime_id = ?`, id); err != nil {
		return err
	}
	var res sql.Result
	if res, err = tx.ExecContext(ctx, `DELETE FROM showtimes WHERE id = ?`, id); err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrShowtimeNotFound
	}
	return err
}

// DeleteFinished batch-deletes every showtime whose end lies strictly before
// the given instant, seat inventory included.  It is idempotent: running it
// with nothing to delete succeeds and reports zero.
func (r *ShowtimeRepo) DeleteFinished(ctx context.Context, now time.Time) (deleted int64, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	if _, err = tx.ExecContext(ctx,
		`DELETE ss FROM showtime_seats ss JOIN showtimes sh ON sh.id = ss.showtime_id WHERE sh.ends_at < ?`, now); err != nil {
		return 0, err
	}
	var res sql.Result
	if res, err = tx.ExecContext(ctx, `DELETE FROM showtimes WHERE ends_at < ?`, now); err != nil {
		return 0, err
	}
	deleted, _ = res.RowsAffected()
	return deleted, err
}
