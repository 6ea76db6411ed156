// Package repository contains the data access layer.  Every entity holds
// only the identifiers of what it relates to; traversal between entities
// always goes through explicit repository lookups.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Room represents a cinema auditorium with a fixed seat grid.  SeatRows and
// SeatCols define the grid extents; the seats themselves live in the seats
// table and are created together with the room.  BasePriceCents is the
// default seat price applied when the room is created or repriced.
type Room struct {
	ID             uint64    `json:"id"`
	Has3D          bool      `json:"has_3d"`
	HasSurround    bool      `json:"has_surround"`
	SeatRows       uint32    `json:"seat_rows"`
	SeatCols       uint32    `json:"seat_cols"`
	BasePriceCents uint32    `json:"base_price_cents"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ErrRoomNotFound indicates that a room lookup yielded no rows.
var ErrRoomNotFound = errors.New("room not found")

// RoomRepo manages persistence for rooms.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// Create inserts a new room and populates the generated ID and the
// DB-default timestamps on the given struct.
func (r *RoomRepo) Create(ctx context.Context, room *Room) error {
	const q = `INSERT INTO rooms (has_3d, has_surround, seat_rows, seat_cols, base_price_cents)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, room.Has3D, room.HasSurround, room.SeatRows, room.SeatCols, room.BasePriceCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM rooms WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, room.ID).Scan(&room.CreatedAt, &room.UpdatedAt)
}

// GetByID retrieves a room by its ID.  It returns ErrRoomNotFound when there
// is no matching row.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*Room, error) {
	const q = `SELECT id, has_3d, has_surround, seat_rows, seat_cols, base_price_cents, created_at, updated_at
	           FROM rooms WHERE id = ?`
	var rm Room
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&rm.ID, &rm.Has3D, &rm.HasSurround, &rm.SeatRows, &rm.SeatCols, &rm.BasePriceCents, &rm.CreatedAt, &rm.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &rm, nil
}

// List returns all rooms ordered by ID.
func (r *RoomRepo) List(ctx context.Context) ([]Room, error) {
	const q = `SELECT id, has_3d, has_surround, seat_rows, seat_cols, base_price_cents, created_at, updated_at
	           FROM rooms ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Room
	for rows.Next() {
		var rm Room
		if err := rows.Scan(
			&rm.ID, &rm.Has3D, &rm.HasSurround, &rm.SeatRows, &rm.SeatCols, &rm.BasePriceCents, &rm.CreatedAt, &rm.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update rewrites the feature flags and base price of a room.  It returns
// ErrRoomNotFound when the room does not exist.  An update that sets the
// current values is a no-op but still succeeds.
func (r *RoomRepo) Update(ctx context.Context, id uint64, has3d, hasSurround bool, priceCents uint32) error {
	const q = `UPDATE rooms
	           SET has_3d = ?, has_surround = ?, base_price_cents = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, has3d, hasSurround, priceCents, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	// Zero rows affected is ambiguous in MySQL: missing row or identical
	// values.  Probe existence to tell them apart.
	var one int
	if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM rooms WHERE id = ? LIMIT 1`, id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoomNotFound
		}
		return err
	}
	return nil
}

// DeleteCascade removes a room and everything scheduled in it: seats,
// showtimes and showtime seats.  Tickets are NOT touched; they are
// independent records resolved back by denormalized fields only.  The
// deletion runs in a transaction so no partial cleanup occurs.  It returns
// ErrRoomNotFound when the room does not exist.
func (r *RoomRepo) DeleteCascade(ctx context.Context, id uint64) (err error) {
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
	var one int
	if err = tx.QueryRowContext(ctx, `SELECT 1 FROM rooms WHERE id = ? LIMIT 1`, id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrRoomNotFound
		}
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE ss FROM showtime_seats ss JOIN showtimes sh ON sh.id = ss.showtime_id WHERE sh.room_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM showtimes WHERE room_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM seats WHERE room_id = ?`, id); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	return err
}
