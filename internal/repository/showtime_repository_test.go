package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*ShowtimeRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewShowtimeRepo(db), mock
}

func TestCreateWithSeatsCommitsWhenSlotFree(t *testing.T) {
	repo, mock := newMock(t)

	start := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	created := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO showtimes").
		WithArgs(uint64(3), uint64(7), start, end, uint64(3), end, start).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec("INSERT INTO showtime_seats").
		WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectQuery("SELECT created_at FROM showtimes").
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectCommit()

	st := &Showtime{RoomID: 3, MovieID: 7, StartsAt: start, EndsAt: end}
	seats := []ShowtimeSeat{
		{SeatID: 1, PriceCents: 1500, Available: true},
		{SeatID: 2, PriceCents: 1500, Available: true},
	}
	inserted, err := repo.CreateWithSeats(context.Background(), st, seats)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, uint64(11), st.ID)
	assert.True(t, st.CreatedAt.Equal(created))
	for _, s := range seats {
		assert.Equal(t, uint64(11), s.ShowtimeID)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithSeatsGuardRejectsOccupiedSlot(t *testing.T) {
	repo, mock := newMock(t)

	start := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	mock.ExpectBegin()
	// The conditional insert writes nothing when an overlapping showtime
	// exists; the whole transaction rolls back without touching seats.
	mock.ExpectExec("INSERT INTO showtimes").
		WithArgs(uint64(3), uint64(7), start, end, uint64(3), end, start).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	st := &Showtime{RoomID: 3, MovieID: 7, StartsAt: start, EndsAt: end}
	inserted, err := repo.CreateWithSeats(context.Background(), st, []ShowtimeSeat{{SeatID: 1}})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Zero(t, st.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteWithSeatsMissingShowtime(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM showtime_seats").
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM showtimes").
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.DeleteWithSeats(context.Background(), 5)
	assert.ErrorIs(t, err, ErrShowtimeNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
