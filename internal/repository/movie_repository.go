package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/cinemaflow/internal/model"
)

// MovieRepo provides methods to create and list movies.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

// Create inserts a movie and sets its ID and CreatedAt.  An empty
// description is stored as NULL.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	var desc sql.NullString
	if d := strings.TrimSpace(m.Description); d != "" {
		desc = sql.NullString{String: d, Valid: true}
	}
	var duration sql.NullInt64
	if m.DurationMin != nil {
		duration = sql.NullInt64{Int64: int64(*m.DurationMin), Valid: true}
	}
	var release sql.NullTime
	if m.ReleaseDate != nil {
		release = sql.NullTime{Time: *m.ReleaseDate, Valid: true}
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO movies (title, description, duration_min, release_date) VALUES (?, ?, ?, ?)",
		m.Title, desc, duration, release)
	if err != nil {
		return fmt.Errorf("insert movie: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)

	// created_at comes from the column default
	if err := r.db.QueryRowContext(ctx, "SELECT created_at FROM movies WHERE id = ?", m.ID).Scan(&m.CreatedAt); err != nil {
		return err
	}
	return nil
}

// ListAll returns every movie ordered by id.  The catalog has no
// pagination or filtering.
func (r *MovieRepo) ListAll(ctx context.Context) ([]model.Movie, error) {
	const q = `SELECT id, title, description, duration_min, release_date, created_at
               FROM movies
               ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Movie{}
	for rows.Next() {
		var (
			m        model.Movie
			desc     sql.NullString
			duration sql.NullInt64
			release  sql.NullTime
		)
		if err := rows.Scan(&m.ID, &m.Title, &desc, &duration, &release, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Description = desc.String
		if duration.Valid {
			d := int(duration.Int64)
			m.DurationMin = &d
		}
		if release.Valid {
			t := release.Time
			m.ReleaseDate = &t
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
