package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

func TestScheduleCreatesSeatInventory(t *testing.T) {
	e := newEngine(testNow)
	e.store.addMovie(7, "Heat", 120)
	room, err := e.rooms.Create(context.Background(), true, false, 2, 3, 1500)
	require.NoError(t, err)

	start := testNow.Add(2 * time.Hour)
	st, err := e.scheduler.Schedule(context.Background(), room.ID, 7, start, start.Add(2*time.Hour))
	require.NoError(t, err)
	require.NotZero(t, st.ID)

	seats, err := e.inventory.AvailableSeats(context.Background(), st.ID)
	require.NoError(t, err)
	require.Len(t, seats, 6)
	for _, seat := range seats {
		assert.True(t, seat.Available)
		assert.Equal(t, uint32(1500), seat.PriceCents)
	}
	assert.Equal(t, uint32(1), seats[0].Row)
	assert.Equal(t, uint32(1), seats[0].Col)
	assert.Equal(t, uint32(2), seats[5].Row)
	assert.Equal(t, uint32(3), seats[5].Col)
}

func TestScheduleMissingMovieWinsOverMissingRoom(t *testing.T) {
	e := newEngine(testNow)
	// Neither exists; the movie check must fire first.
	_, err := e.scheduler.Schedule(context.Background(), 99, 98, testNow.Add(time.Hour), testNow.Add(3*time.Hour))
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "movie")
}

func TestScheduleIntervalShorterThanRuntime(t *testing.T) {
	e := newEngine(testNow)
	e.store.addMovie(7, "Heat", 170)
	room, err := e.rooms.Create(context.Background(), false, false, 1, 1, 1000)
	require.NoError(t, err)

	start := testNow.Add(time.Hour)
	_, err = e.scheduler.Schedule(context.Background(), room.ID, 7, start, start.Add(2*time.Hour))
	require.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestScheduleExactRuntimeAllowed(t *testing.T) {
	e := newEngine(testNow)
	e.store.addMovie(7, "Heat", 120)
	room, err := e.rooms.Create(context.Background(), false, false, 1, 1, 1000)
	require.NoError(t, err)

	start := testNow.Add(time.Hour)
	_, err = e.scheduler.Schedule(context.Background(), room.ID, 7, start, start.Add(120*time.Minute))
	require.NoError(t, err)
}

func TestSchedulePastStartRejected(t *testing.T) {
	e := newEngine(testNow)
	e.store.addMovie(7, "Heat", 90)
	room, err := e.rooms.Create(context.Background(), false, false, 1, 1, 1000)
	require.NoError(t, err)

	start := testNow.Add(-time.Minute)
	_, err = e.scheduler.Schedule(context.Background(), room.ID, 7, start, start.Add(2*time.Hour))
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestScheduleOverlapReportsAllConflicts(t *testing.T) {
	e := newEngine(testNow)
	e.store.addMovie(7, "Heat", 60)
	room, err := e.rooms.Create(context.Background(), false, false, 1, 1, 1000)
	require.NoError(t, err)

	first, err := e.scheduler.Schedule(context.Background(), room.ID, 7,
		testNow.Add(1*time.Hour), testNow.Add(2*time.Hour))
	require.NoError(t, err)
	second, err := e.scheduler.Schedule(context.Background(), room.ID, 7,
		testNow.Add(2*time.Hour), testNow.Add(3*time.Hour))
	require.NoError(t, err)

	// Spans both existing showtimes.
	_, err = e.scheduler.Schedule(context.Background(), room.ID, 7,
		testNow.Add(90*time.Minute), testNow.Add(150*time.Minute))
	require.ErrorIs(t, err, ErrScheduleOverlap)

	var overlap *OverlapError
	require.ErrorAs(t, err, &overlap)
	require.Len(t, overlap.Conflicts, 2)
	assert.Equal(t, first.ID, overlap.Conflicts[0].ShowtimeID)
	assert.Equal(t, second.ID, overlap.Conflicts[1].ShowtimeID)
}

func TestScheduleBackToBackAllowed(t *testing.T) {
	e := newEngine(testNow)
	e.store.addMovie(7, "Heat", 60)
	room, err := e.rooms.Create(context.Background(), false, false, 1, 1, 1000)
	require.NoError(t, err)

	_, err = e.scheduler.Schedule(context.Background(), room.ID, 7,
		testNow.Add(1*time.Hour), testNow.Add(2*time.Hour))
	require.NoError(t, err)
	// Intervals are half-open; a showtime may start the instant the
	// previous one ends.
	_, err = e.scheduler.Schedule(context.Background(), room.ID, 7,
		testNow.Add(2*time.Hour), testNow.Add(3*time.Hour))
	require.NoError(t, err)
}

func TestScheduleOtherRoomUnaffected(t *testing.T) {
	e := newEngine(testNow)
	e.store.addMovie(7, "Heat", 60)
	roomA, err := e.rooms.Create(context.Background(), false, false, 1, 1, 1000)
	require.NoError(t, err)
	roomB, err := e.rooms.Create(context.Background(), false, false, 1, 1, 1000)
	require.NoError(t, err)

	start := testNow.Add(time.Hour)
	_, err = e.scheduler.Schedule(context.Background(), roomA.ID, 7, start, start.Add(time.Hour))
	require.NoError(t, err)
	_, err = e.scheduler.Schedule(context.Background(), roomB.ID, 7, start, start.Add(time.Hour))
	require.NoError(t, err)
}

func TestCancelBeforeStartVoidsTickets(t *testing.T) {
	e := newEngine(testNow)
	e.store.addMovie(7, "Heat", 60)
	room, err := e.rooms.Create(context.Background(), false, false, 1, 2, 1000)
	require.NoError(t, err)
	st, err := e.scheduler.Schedule(context.Background(), room.ID, 7,
		testNow.Add(time.Hour), testNow.Add(2*time.Hour))
	require.NoError(t, err)

	seats, err := e.inventory.AvailableSeats(context.Background(), st.ID)
	require.NoError(t, err)
	seat, showtime, err := e.inventory.Reserve(context.Background(), seats[0].ID)
	require.NoError(t, err)
	movie, err := movieStore{e.store}.GetByID(context.Background(), 7)
	require.NoError(t, err)
	ticket, err := e.tickets.Issue(context.Background(), seat, showtime, movie)
	require.NoError(t, err)

	voided, err := e.scheduler.Cancel(context.Background(), st.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), voided)

	_, err = e.tickets.Get(context.Background(), ticket.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.scheduler.Get(context.Background(), st.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelAfterStartKeepsTickets(t *testing.T) {
	e := newEngine(testNow)
	e.store.addMovie(7, "Heat", 60)
	room, err := e.rooms.Create(context.Background(), false, false, 1, 1, 1000)
	require.NoError(t, err)
	st, err := e.scheduler.Schedule(context.Background(), room.ID, 7,
		testNow.Add(time.Hour), testNow.Add(2*time.Hour))
	require.NoError(t, err)

	seats, err := e.inventory.AvailableSeats(context.Background(), st.ID)
	require.NoError(t, err)
	seat, showtime, err := e.inventory.Reserve(context.Background(), seats[0].ID)
	require.NoError(t, err)
	movie, err := movieStore{e.store}.GetByID(context.Background(), 7)
	require.NoError(t, err)
	ticket, err := e.tickets.Issue(context.Background(), seat, showtime, movie)
	require.NoError(t, err)

	e.setNow(st.StartsAt.Add(10 * time.Minute))
	voided, err := e.scheduler.Cancel(context.Background(), st.ID)
	require.NoError(t, err)
	assert.Zero(t, voided)

	// The sale is final; the record survives the showtime.
	got, err := e.tickets.Get(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)
}

func TestCancelMissingShowtime(t *testing.T) {
	e := newEngine(testNow)
	_, err := e.scheduler.Cancel(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteFinished(t *testing.T) {
	e := newEngine(testNow)
	e.store.addMovie(7, "Heat", 60)
	room, err := e.rooms.Create(context.Background(), false, false, 1, 1, 1000)
	require.NoError(t, err)

	past, err := e.scheduler.Schedule(context.Background(), room.ID, 7,
		testNow.Add(time.Hour), testNow.Add(2*time.Hour))
	require.NoError(t, err)
	future, err := e.scheduler.Schedule(context.Background(), room.ID, 7,
		testNow.Add(5*time.Hour), testNow.Add(6*time.Hour))
	require.NoError(t, err)

	e.setNow(testNow.Add(3 * time.Hour))
	deleted, err := e.scheduler.DeleteFinished(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = e.scheduler.Get(context.Background(), past.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.scheduler.Get(context.Background(), future.ID)
	assert.NoError(t, err)

	// Idempotent second pass.
	deleted, err = e.scheduler.DeleteFinished(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestListByMovie(t *testing.T) {
	e := newEngine(testNow)
	e.store.addMovie(7, "Heat", 60)
	e.store.addMovie(8, "Ronin", 60)
	room, err := e.rooms.Create(context.Background(), false, false, 1, 1, 1000)
	require.NoError(t, err)

	_, err = e.scheduler.Schedule(context.Background(), room.ID, 7,
		testNow.Add(time.Hour), testNow.Add(2*time.Hour))
	require.NoError(t, err)
	upcoming, err := e.scheduler.Schedule(context.Background(), room.ID, 7,
		testNow.Add(5*time.Hour), testNow.Add(6*time.Hour))
	require.NoError(t, err)

	e.setNow(testNow.Add(3 * time.Hour))
	list, err := e.scheduler.ListByMovie(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, upcoming.ID, list[0].ID)

	_, err = e.scheduler.ListByMovie(context.Background(), 8)
	assert.ErrorIs(t, err, ErrNotFound)

	var overlap *OverlapError
	assert.False(t, errors.As(err, &overlap))
}
