package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

func seedShowtime(t *testing.T, e *engine, rows, cols uint32) (*repository.Showtime, []repository.ShowtimeSeat) {
	t.Helper()
	e.store.addMovie(7, "Heat", 60)
	room, err := e.rooms.Create(context.Background(), false, false, rows, cols, 1200)
	require.NoError(t, err)
	st, err := e.scheduler.Schedule(context.Background(), room.ID, 7,
		testNow.Add(time.Hour), testNow.Add(2*time.Hour))
	require.NoError(t, err)
	seats, err := e.inventory.AvailableSeats(context.Background(), st.ID)
	require.NoError(t, err)
	return st, seats
}

func TestAvailableSeatsMissingShowtime(t *testing.T) {
	e := newEngine(testNow)
	_, err := e.inventory.AvailableSeats(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAvailableSeatsSoldOutIsEmptyNotError(t *testing.T) {
	e := newEngine(testNow)
	st, seats := seedShowtime(t, e, 1, 2)
	for _, seat := range seats {
		_, _, err := e.inventory.Reserve(context.Background(), seat.ID)
		require.NoError(t, err)
	}
	remaining, err := e.inventory.AvailableSeats(context.Background(), st.ID)
	require.NoError(t, err)
	assert.NotNil(t, remaining)
	assert.Empty(t, remaining)
}

func TestReserveSoldSeatIndistinguishableFromMissing(t *testing.T) {
	e := newEngine(testNow)
	_, seats := seedShowtime(t, e, 1, 1)

	_, _, err := e.inventory.Reserve(context.Background(), seats[0].ID)
	require.NoError(t, err)

	_, _, soldErr := e.inventory.Reserve(context.Background(), seats[0].ID)
	require.ErrorIs(t, soldErr, ErrNotFound)

	_, _, missingErr := e.inventory.Reserve(context.Background(), 424242)
	require.ErrorIs(t, missingErr, ErrNotFound)
}

func TestReserveReturnsSeatAndShowtime(t *testing.T) {
	e := newEngine(testNow)
	st, seats := seedShowtime(t, e, 1, 1)

	seat, showtime, err := e.inventory.Reserve(context.Background(), seats[0].ID)
	require.NoError(t, err)
	assert.Equal(t, st.ID, showtime.ID)
	assert.False(t, seat.Available)
	assert.Equal(t, uint32(1200), seat.PriceCents)
}

func TestReserveEndedShowtime(t *testing.T) {
	e := newEngine(testNow)
	st, seats := seedShowtime(t, e, 1, 2)
	sold := seats[0]
	_, _, err := e.inventory.Reserve(context.Background(), sold.ID)
	require.NoError(t, err)

	e.setNow(st.EndsAt)

	// An available seat of an ended showtime is a state error.
	_, _, err = e.inventory.Reserve(context.Background(), seats[1].ID)
	require.ErrorIs(t, err, ErrInvalidState)

	// A sold seat fails the availability lookup first; the ended state
	// never comes into play.
	_, _, err = e.inventory.Reserve(context.Background(), sold.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReserveConcurrentSingleWinner(t *testing.T) {
	e := newEngine(testNow)
	_, seats := seedShowtime(t, e, 1, 1)
	target := seats[0].ID

	const buyers = 32
	var wg sync.WaitGroup
	wins := make(chan uint64, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := e.inventory.Reserve(context.Background(), target); err == nil {
				wins <- target
			}
		}()
	}
	wg.Wait()
	close(wins)

	var won int
	for range wins {
		won++
	}
	assert.Equal(t, 1, won)
}

func TestReleaseRoundTrip(t *testing.T) {
	e := newEngine(testNow)
	st, seats := seedShowtime(t, e, 1, 1)
	seat, _, err := e.inventory.Reserve(context.Background(), seats[0].ID)
	require.NoError(t, err)

	require.NoError(t, e.inventory.Release(context.Background(), st.ID, seat.Row, seat.Col))

	// Back on sale; can be bought again.
	_, _, err = e.inventory.Reserve(context.Background(), seats[0].ID)
	require.NoError(t, err)
}

func TestReleaseAfterStart(t *testing.T) {
	e := newEngine(testNow)
	st, seats := seedShowtime(t, e, 1, 1)
	seat, _, err := e.inventory.Reserve(context.Background(), seats[0].ID)
	require.NoError(t, err)

	e.setNow(st.StartsAt)
	err = e.inventory.Release(context.Background(), st.ID, seat.Row, seat.Col)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestReleaseUnknownPosition(t *testing.T) {
	e := newEngine(testNow)
	st, _ := seedShowtime(t, e, 1, 1)
	err := e.inventory.Release(context.Background(), st.ID, 9, 9)
	require.ErrorIs(t, err, ErrNotFound)
}
