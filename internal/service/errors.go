// Package service implements the scheduling and seat inventory engine on top
// of the repository layer.  Components are plain structs over narrow store
// interfaces; every blocking call takes a context.  Errors cross the package
// boundary as the typed values below so the HTTP layer can map them without
// inspecting strings.
package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound covers every failed entity lookup.  For seat purchases it
	// deliberately also covers an already-sold seat; a losing buyer cannot
	// distinguish a seat that never existed from one that just sold.
	ErrNotFound = errors.New("not found")

	// ErrInvalidSchedule rejects a showtime whose interval cannot fit the
	// movie.
	ErrInvalidSchedule = errors.New("invalid schedule")

	// ErrInvalidState rejects an operation arriving too late in an entity's
	// lifecycle, such as scheduling in the past or refunding after start.
	ErrInvalidState = errors.New("invalid state")

	// ErrAlreadyExists signals a duplicate creation attempt.
	ErrAlreadyExists = errors.New("already exists")

	// ErrScheduleOverlap is the sentinel matched by errors.Is for overlap
	// rejections.  The concrete error is always an *OverlapError carrying
	// the conflicting showtimes.
	ErrScheduleOverlap = errors.New("schedule overlap")
)

// Conflict is one existing showtime that blocks a requested slot.
type Conflict struct {
	ShowtimeID uint64    `json:"showtime_id"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
}

// OverlapError reports every showtime occupying the requested room interval.
type OverlapError struct {
	RoomID    uint64
	Conflicts []Conflict
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("room %d: %d conflicting showtime(s)", e.RoomID, len(e.Conflicts))
}

// Is lets errors.Is(err, ErrScheduleOverlap) match without callers knowing
// the concrete type.
func (e *OverlapError) Is(target error) bool {
	return target == ErrScheduleOverlap
}
