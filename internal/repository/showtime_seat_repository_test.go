package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveWinsWhileAvailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewShowtimeSeatRepo(db)

	mock.ExpectExec("UPDATE showtime_seats SET available = 0").
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	won, err := repo.Reserve(context.Background(), 9)
	require.NoError(t, err)
	assert.True(t, won)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveLosesOnceSold(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewShowtimeSeatRepo(db)

	// The conditional update matches no row once available = 0; the loser
	// sees zero rows affected, not an error.
	mock.ExpectExec("UPDATE showtime_seats SET available = 0").
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	won, err := repo.Reserve(context.Background(), 9)
	require.NoError(t, err)
	assert.False(t, won)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAvailableByIDConflatesSoldAndMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewShowtimeSeatRepo(db)

	mock.ExpectQuery("SELECT ss.id, ss.showtime_id").
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "showtime_id", "seat_id", "seat_row", "seat_col", "price_cents", "available"}))

	_, err = repo.GetAvailableByID(context.Background(), 9)
	assert.ErrorIs(t, err, ErrShowtimeSeatNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
