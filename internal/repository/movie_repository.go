package repository // repository defines data access for movies

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// Movie mirrors the 'movies' table.  The ID is assigned by the external
// catalog service, not auto-incremented, so duplicate creation attempts are
// possible and surface as ErrMovieExists.  Available controls whether the
// movie can be browsed and scheduled.
type Movie struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Overview    string `json:"overview"`
	PosterPath  string `json:"poster_path"`
	DurationMin uint32 `json:"duration_in_minutes"`
	Available   bool   `json:"available"`
}

// ErrMovieNotFound indicates that a movie was not located in the DB.
var ErrMovieNotFound = errors.New("movie not found")

// ErrMovieExists indicates a duplicate creation attempt for a movie ID.
var ErrMovieExists = errors.New("movie already exists")

// MovieRepo manages persistence for movies.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

// Create inserts a movie with its externally assigned ID.  A duplicate key
// violation (MySQL error 1062) is translated into ErrMovieExists.
func (r *MovieRepo) Create(ctx context.Context, m *Movie) error {
	const q = `INSERT INTO movies (id, title, overview, poster_path, duration_min, available)
	           VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, m.ID, m.Title, m.Overview, m.PosterPath, m.DurationMin, m.Available)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrMovieExists
		}
		return err
	}
	return nil
}

// GetByID retrieves a movie by its ID.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*Movie, error) {
	const q = `SELECT id, title, overview, poster_path, duration_min, available FROM movies WHERE id = ?`
	var m Movie
	err := r.db.QueryRowContext(ctx, q, id).Scan(&m.ID, &m.Title, &m.Overview, &m.PosterPath, &m.DurationMin, &m.Available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &m, nil
}

// List returns all movies; when onlyAvailable is true, movies currently
// withdrawn from the billboard are filtered out.
func (r *MovieRepo) List(ctx context.Context, onlyAvailable bool) ([]Movie, error) {
	q := `SELECT id, title, overview, poster_path, duration_min, available FROM movies`
	if onlyAvailable {
		q += ` WHERE available = 1`
	}
	q += ` ORDER BY title`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Movie
	for rows.Next() {
		var m Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.Overview, &m.PosterPath, &m.DurationMin, &m.Available); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SetAvailability flips the billboard flag of a movie.
func (r *MovieRepo) SetAvailability(ctx context.Context, id uint64, available bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE movies SET available = ? WHERE id = ?`, available, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM movies WHERE id = ? LIMIT 1`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrMovieNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes a movie row.  Showtimes referencing it are left to the
// scheduler to clean up; the boundary layer only deletes movies that are no
// longer scheduled.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMovieNotFound
	}
	return nil
}
