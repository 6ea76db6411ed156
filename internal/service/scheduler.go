package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

// Scheduler places showtimes into rooms while keeping the per-room schedule
// overlap-free.  The overlap check runs twice: once on the read path to
// collect every conflict for the caller, and once inside the storage insert
// itself, which is the authoritative guard under concurrency.
type Scheduler struct {
	movies    MovieStore
	rooms     RoomStore
	seats     SeatStore
	showtimes ShowtimeStore
	tickets   *Tickets
	now       func() time.Time
}

// NewScheduler constructs the scheduler component.
func NewScheduler(movies MovieStore, rooms RoomStore, seats SeatStore, showtimes ShowtimeStore, tickets *Tickets) *Scheduler {
	return &Scheduler{
		movies:    movies,
		rooms:     rooms,
		seats:     seats,
		showtimes: showtimes,
		tickets:   tickets,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Schedule validates and creates a showtime, materializing one available
// showtime seat per room seat with the seat's current price snapshotted in.
// Checks run in a fixed order so a request failing several of them always
// reports the same error: movie existence, room existence, interval length,
// past start, overlap.
func (s *Scheduler) Schedule(ctx context.Context, roomID, movieID uint64, start, end time.Time) (*repository.Showtime, error) {
	movie, err := s.movies.GetByID(ctx, movieID)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return nil, fmt.Errorf("movie %d: %w", movieID, ErrNotFound)
		}
		return nil, err
	}
	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, fmt.Errorf("room %d: %w", roomID, ErrNotFound)
		}
		return nil, err
	}
	minEnd := start.Add(time.Duration(movie.DurationMin) * time.Minute)
	if end.Before(minEnd) {
		return nil, fmt.Errorf("%w: interval shorter than movie runtime (%d min)", ErrInvalidSchedule, movie.DurationMin)
	}
	if start.Before(s.now()) {
		return nil, fmt.Errorf("%w: start time is in the past", ErrInvalidState)
	}
	conflicts, err := s.showtimes.FindOverlapping(ctx, roomID, start, end)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, overlapError(roomID, conflicts)
	}

	roomSeats, err := s.seats.GetByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	inventory := make([]repository.ShowtimeSeat, 0, len(roomSeats))
	for _, seat := range roomSeats {
		inventory = append(inventory, repository.ShowtimeSeat{
			SeatID:     seat.ID,
			Row:        seat.Row,
			Col:        seat.Col,
			PriceCents: seat.PriceCents,
			Available:  true,
		})
	}
	showtime := &repository.Showtime{
		RoomID:   roomID,
		MovieID:  movieID,
		StartsAt: start,
		EndsAt:   end,
	}
	inserted, err := s.showtimes.CreateWithSeats(ctx, showtime, inventory)
	if err != nil {
		return nil, err
	}
	if !inserted {
		// Lost a race: another showtime landed in the slot between the
		// read-path check and the guarded insert.  Re-query to report it.
		conflicts, err = s.showtimes.FindOverlapping(ctx, roomID, start, end)
		if err != nil {
			return nil, err
		}
		return nil, overlapError(roomID, conflicts)
	}
	return showtime, nil
}

func overlapError(roomID uint64, overlapping []repository.Showtime) *OverlapError {
	e := &OverlapError{RoomID: roomID, Conflicts: make([]Conflict, 0, len(overlapping))}
	for _, st := range overlapping {
		e.Conflicts = append(e.Conflicts, Conflict{ShowtimeID: st.ID, StartsAt: st.StartsAt, EndsAt: st.EndsAt})
	}
	return e
}

// Get returns a showtime by id.
func (s *Scheduler) Get(ctx context.Context, id uint64) (*repository.Showtime, error) {
	st, err := s.showtimes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			return nil, fmt.Errorf("showtime %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return st, nil
}

// Cancel removes a showtime and its seat inventory, reporting how many
// tickets were voided.  When the showtime has not started yet every issued
// ticket is voided first; once it is underway or over, tickets stay behind
// as historical records and the count is zero.
func (s *Scheduler) Cancel(ctx context.Context, id uint64) (int64, error) {
	st, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	var voided int64
	if s.now().Before(st.StartsAt) {
		voided, err = s.tickets.VoidForShowtime(ctx, st.StartsAt, st.RoomID)
		if err != nil {
			return 0, err
		}
	}
	if err := s.showtimes.DeleteWithSeats(ctx, id); err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			return voided, fmt.Errorf("showtime %d: %w", id, ErrNotFound)
		}
		return voided, err
	}
	return voided, nil
}

// DeleteFinished removes every showtime that has already ended together with
// its seats, and reports how many were removed.  Safe to run repeatedly.
func (s *Scheduler) DeleteFinished(ctx context.Context) (int64, error) {
	return s.showtimes.DeleteFinished(ctx, s.now())
}

// ListByMovie returns the upcoming showtimes of a movie, i.e. those that
// have not ended yet.  A movie with nothing on the schedule is reported as
// ErrNotFound rather than an empty list.
func (s *Scheduler) ListByMovie(ctx context.Context, movieID uint64) ([]repository.Showtime, error) {
	list, err := s.showtimes.ListByMovieEndingAfter(ctx, movieID, s.now())
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("no upcoming showtimes for movie %d: %w", movieID, ErrNotFound)
	}
	return list, nil
}
