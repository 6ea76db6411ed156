package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

// memStore is an in-memory stand-in for the repository layer.  One mutex
// covers everything, which makes the guarded showtime insert and the seat
// reservation atomic the same way the database makes them atomic.
type memStore struct {
	mu            sync.Mutex
	rooms         map[uint64]repository.Room
	seats         map[uint64]repository.Seat
	movies        map[uint64]repository.Movie
	showtimes     map[uint64]repository.Showtime
	showtimeSeats map[uint64]repository.ShowtimeSeat
	tickets       map[string]repository.Ticket
	nextID        uint64
}

func newMemStore() *memStore {
	return &memStore{
		rooms:         map[uint64]repository.Room{},
		seats:         map[uint64]repository.Seat{},
		movies:        map[uint64]repository.Movie{},
		showtimes:     map[uint64]repository.Showtime{},
		showtimeSeats: map[uint64]repository.ShowtimeSeat{},
		tickets:       map[string]repository.Ticket{},
	}
}

func (m *memStore) id() uint64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) addMovie(id uint64, title string, durationMin uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movies[id] = repository.Movie{ID: id, Title: title, DurationMin: durationMin, Available: true}
}

// RoomStore

func (m *memStore) Create(ctx context.Context, room *repository.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	room.ID = m.id()
	room.CreatedAt = time.Now().UTC()
	room.UpdatedAt = room.CreatedAt
	m.rooms[room.ID] = *room
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id uint64) (*repository.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	return &room, nil
}

func (m *memStore) List(ctx context.Context) ([]repository.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.Room
	for _, r := range m.rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) Update(ctx context.Context, id uint64, has3d, hasSurround bool, priceCents uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return repository.ErrRoomNotFound
	}
	room.Has3D = has3d
	room.HasSurround = hasSurround
	room.BasePriceCents = priceCents
	room.UpdatedAt = time.Now().UTC()
	m.rooms[id] = room
	return nil
}

func (m *memStore) DeleteCascade(ctx context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; !ok {
		return repository.ErrRoomNotFound
	}
	for stID, st := range m.showtimes {
		if st.RoomID != id {
			continue
		}
		for ssID, ss := range m.showtimeSeats {
			if ss.ShowtimeID == stID {
				delete(m.showtimeSeats, ssID)
			}
		}
		delete(m.showtimes, stID)
	}
	for seatID, seat := range m.seats {
		if seat.RoomID == id {
			delete(m.seats, seatID)
		}
	}
	delete(m.rooms, id)
	return nil
}

// SeatStore

func (m *memStore) CreateBulk(ctx context.Context, seats []repository.Seat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range seats {
		seats[i].ID = m.id()
		m.seats[seats[i].ID] = seats[i]
	}
	return nil
}

func (m *memStore) GetByRoom(ctx context.Context, roomID uint64) ([]repository.Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.Seat
	for _, s := range m.seats {
		if s.RoomID == roomID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out, nil
}

func (m *memStore) RepriceByRoom(ctx context.Context, roomID uint64, priceCents uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.seats {
		if s.RoomID == roomID {
			s.PriceCents = priceCents
			m.seats[id] = s
		}
	}
	return nil
}

// movieStore wraps memStore so GetByID can serve movies; memStore.GetByID is
// taken by rooms.
type movieStore struct{ m *memStore }

func (ms movieStore) GetByID(ctx context.Context, id uint64) (*repository.Movie, error) {
	ms.m.mu.Lock()
	defer ms.m.mu.Unlock()
	mov, ok := ms.m.movies[id]
	if !ok {
		return nil, repository.ErrMovieNotFound
	}
	return &mov, nil
}

// showtimeStore adapts memStore to the ShowtimeStore interface.
type showtimeStore struct{ m *memStore }

func (ss showtimeStore) CreateWithSeats(ctx context.Context, s *repository.Showtime, seats []repository.ShowtimeSeat) (bool, error) {
	m := ss.m
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.showtimes {
		if existing.RoomID == s.RoomID && existing.StartsAt.Before(s.EndsAt) && existing.EndsAt.After(s.StartsAt) {
			return false, nil
		}
	}
	s.ID = m.id()
	s.CreatedAt = time.Now().UTC()
	m.showtimes[s.ID] = *s
	for i := range seats {
		seats[i].ID = m.id()
		seats[i].ShowtimeID = s.ID
		m.showtimeSeats[seats[i].ID] = seats[i]
	}
	return true, nil
}

func (ss showtimeStore) GetByID(ctx context.Context, id uint64) (*repository.Showtime, error) {
	ss.m.mu.Lock()
	defer ss.m.mu.Unlock()
	st, ok := ss.m.showtimes[id]
	if !ok {
		return nil, repository.ErrShowtimeNotFound
	}
	return &st, nil
}

func (ss showtimeStore) FindByStartAndRoom(ctx context.Context, start time.Time, roomID uint64) (*repository.Showtime, error) {
	ss.m.mu.Lock()
	defer ss.m.mu.Unlock()
	for _, st := range ss.m.showtimes {
		if st.RoomID == roomID && st.StartsAt.Equal(start) {
			return &st, nil
		}
	}
	return nil, repository.ErrShowtimeNotFound
}

func (ss showtimeStore) FindOverlapping(ctx context.Context, roomID uint64, start, end time.Time) ([]repository.Showtime, error) {
	ss.m.mu.Lock()
	defer ss.m.mu.Unlock()
	var out []repository.Showtime
	for _, st := range ss.m.showtimes {
		if st.RoomID == roomID && st.StartsAt.Before(end) && st.EndsAt.After(start) {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (ss showtimeStore) ListByMovieEndingAfter(ctx context.Context, movieID uint64, t time.Time) ([]repository.Showtime, error) {
	ss.m.mu.Lock()
	defer ss.m.mu.Unlock()
	var out []repository.Showtime
	for _, st := range ss.m.showtimes {
		if st.MovieID == movieID && st.EndsAt.After(t) {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (ss showtimeStore) DeleteWithSeats(ctx context.Context, id uint64) error {
	m := ss.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.showtimes[id]; !ok {
		return repository.ErrShowtimeNotFound
	}
	for seatID, seat := range m.showtimeSeats {
		if seat.ShowtimeID == id {
			delete(m.showtimeSeats, seatID)
		}
	}
	delete(m.showtimes, id)
	return nil
}

func (ss showtimeStore) DeleteFinished(ctx context.Context, now time.Time) (int64, error) {
	m := ss.m
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for id, st := range m.showtimes {
		if !st.EndsAt.Before(now) {
			continue
		}
		for seatID, seat := range m.showtimeSeats {
			if seat.ShowtimeID == id {
				delete(m.showtimeSeats, seatID)
			}
		}
		delete(m.showtimes, id)
		deleted++
	}
	return deleted, nil
}

// showtimeSeatStore adapts memStore to the ShowtimeSeatStore interface.
type showtimeSeatStore struct{ m *memStore }

func (sv showtimeSeatStore) ListAvailable(ctx context.Context, showtimeID uint64) ([]repository.ShowtimeSeat, error) {
	sv.m.mu.Lock()
	defer sv.m.mu.Unlock()
	var out []repository.ShowtimeSeat
	for _, s := range sv.m.showtimeSeats {
		if s.ShowtimeID == showtimeID && s.Available {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out, nil
}

func (sv showtimeSeatStore) GetAvailableByID(ctx context.Context, id uint64) (*repository.ShowtimeSeat, error) {
	sv.m.mu.Lock()
	defer sv.m.mu.Unlock()
	s, ok := sv.m.showtimeSeats[id]
	if !ok || !s.Available {
		return nil, repository.ErrShowtimeSeatNotFound
	}
	return &s, nil
}

func (sv showtimeSeatStore) FindByPosition(ctx context.Context, showtimeID uint64, row, col uint32) (*repository.ShowtimeSeat, error) {
	sv.m.mu.Lock()
	defer sv.m.mu.Unlock()
	for _, s := range sv.m.showtimeSeats {
		if s.ShowtimeID == showtimeID && s.Row == row && s.Col == col {
			return &s, nil
		}
	}
	return nil, repository.ErrShowtimeSeatNotFound
}

func (sv showtimeSeatStore) Reserve(ctx context.Context, id uint64) (bool, error) {
	sv.m.mu.Lock()
	defer sv.m.mu.Unlock()
	s, ok := sv.m.showtimeSeats[id]
	if !ok || !s.Available {
		return false, nil
	}
	s.Available = false
	sv.m.showtimeSeats[id] = s
	return true, nil
}

func (sv showtimeSeatStore) Release(ctx context.Context, id uint64) error {
	sv.m.mu.Lock()
	defer sv.m.mu.Unlock()
	if s, ok := sv.m.showtimeSeats[id]; ok {
		s.Available = true
		sv.m.showtimeSeats[id] = s
	}
	return nil
}

// ticketStore adapts memStore to the TicketStore interface.
type ticketStore struct{ m *memStore }

func (tv ticketStore) Create(ctx context.Context, t *repository.Ticket) error {
	tv.m.mu.Lock()
	defer tv.m.mu.Unlock()
	tv.m.tickets[t.ID] = *t
	return nil
}

func (tv ticketStore) GetByID(ctx context.Context, id string) (*repository.Ticket, error) {
	tv.m.mu.Lock()
	defer tv.m.mu.Unlock()
	t, ok := tv.m.tickets[id]
	if !ok {
		return nil, repository.ErrTicketNotFound
	}
	return &t, nil
}

func (tv ticketStore) Delete(ctx context.Context, id string) error {
	tv.m.mu.Lock()
	defer tv.m.mu.Unlock()
	if _, ok := tv.m.tickets[id]; !ok {
		return repository.ErrTicketNotFound
	}
	delete(tv.m.tickets, id)
	return nil
}

func (tv ticketStore) DeleteByShowtime(ctx context.Context, start time.Time, roomID uint64) (int64, error) {
	tv.m.mu.Lock()
	defer tv.m.mu.Unlock()
	var n int64
	for id, t := range tv.m.tickets {
		if t.RoomID == roomID && t.ShowtimeStartsAt.Equal(start) {
			delete(tv.m.tickets, id)
			n++
		}
	}
	return n, nil
}

func (tv ticketStore) ListIssuedBetween(ctx context.Context, from, to time.Time) ([]repository.Ticket, error) {
	tv.m.mu.Lock()
	defer tv.m.mu.Unlock()
	var out []repository.Ticket
	for _, t := range tv.m.tickets {
		if !t.IssuedAt.Before(from) && t.IssuedAt.Before(to) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt.Before(out[j].IssuedAt) })
	return out, nil
}

func (tv ticketStore) ListByMovie(ctx context.Context, movieID uint64) ([]repository.Ticket, error) {
	tv.m.mu.Lock()
	defer tv.m.mu.Unlock()
	var out []repository.Ticket
	for _, t := range tv.m.tickets {
		if t.MovieID == movieID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt.Before(out[j].IssuedAt) })
	return out, nil
}

// engine bundles every component over one memStore with a controllable
// clock.
type engine struct {
	store     *memStore
	rooms     *Rooms
	scheduler *Scheduler
	inventory *Inventory
	tickets   *Tickets
}

func newEngine(now time.Time) *engine {
	m := newMemStore()
	clock := func() time.Time { return now }
	inv := NewInventory(showtimeStore{m}, showtimeSeatStore{m})
	inv.now = clock
	tk := NewTickets(ticketStore{m}, showtimeStore{m}, inv)
	tk.now = clock
	sch := NewScheduler(movieStore{m}, m, m, showtimeStore{m}, tk)
	sch.now = clock
	return &engine{
		store:     m,
		rooms:     NewRooms(m, m),
		scheduler: sch,
		inventory: inv,
		tickets:   tk,
	}
}

func (e *engine) setNow(now time.Time) {
	clock := func() time.Time { return now }
	e.scheduler.now = clock
	e.inventory.now = clock
	e.tickets.now = clock
}
