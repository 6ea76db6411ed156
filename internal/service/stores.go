package service

import (
	"context"
	"time"

	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

// Store interfaces are defined here, next to their consumers.  The concrete
// repositories in internal/repository satisfy them; tests substitute
// in-memory fakes.

type RoomStore interface {
	Create(ctx context.Context, room *repository.Room) error
	GetByID(ctx context.Context, id uint64) (*repository.Room, error)
	List(ctx context.Context) ([]repository.Room, error)
	Update(ctx context.Context, id uint64, has3d, hasSurround bool, priceCents uint32) error
	DeleteCascade(ctx context.Context, id uint64) error
}

type SeatStore interface {
	CreateBulk(ctx context.Context, seats []repository.Seat) error
	GetByRoom(ctx context.Context, roomID uint64) ([]repository.Seat, error)
	RepriceByRoom(ctx context.Context, roomID uint64, priceCents uint32) error
}

type MovieStore interface {
	GetByID(ctx context.Context, id uint64) (*repository.Movie, error)
}

type ShowtimeStore interface {
	CreateWithSeats(ctx context.Context, s *repository.Showtime, seats []repository.ShowtimeSeat) (inserted bool, err error)
	GetByID(ctx context.Context, id uint64) (*repository.Showtime, error)
	FindByStartAndRoom(ctx context.Context, start time.Time, roomID uint64) (*repository.Showtime, error)
	FindOverlapping(ctx context.Context, roomID uint64, start, end time.Time) ([]repository.Showtime, error)
	ListByMovieEndingAfter(ctx context.Context, movieID uint64, t time.Time) ([]repository.Showtime, error)
	DeleteWithSeats(ctx context.Context, id uint64) error
	DeleteFinished(ctx context.Context, now time.Time) (int64, error)
}

type ShowtimeSeatStore interface {
	ListAvailable(ctx context.Context, showtimeID uint64) ([]repository.ShowtimeSeat, error)
	GetAvailableByID(ctx context.Context, id uint64) (*repository.ShowtimeSeat, error)
	FindByPosition(ctx context.Context, showtimeID uint64, row, col uint32) (*repository.ShowtimeSeat, error)
	Reserve(ctx context.Context, id uint64) (won bool, err error)
	Release(ctx context.Context, id uint64) error
}

type TicketStore interface {
	Create(ctx context.Context, t *repository.Ticket) error
	GetByID(ctx context.Context, id string) (*repository.Ticket, error)
	Delete(ctx context.Context, id string) error
	DeleteByShowtime(ctx context.Context, start time.Time, roomID uint64) (int64, error)
	ListIssuedBetween(ctx context.Context, from, to time.Time) ([]repository.Ticket, error)
	ListByMovie(ctx context.Context, movieID uint64) ([]repository.Ticket, error)
}
