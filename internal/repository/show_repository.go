// Package repository contains data access logic for Show domain operations. This file defines
// repository methods for shows. A Show represents a scheduled screening of
// a movie in a hall. Show times are stored as DATETIME in UTC.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"
	"fmt"

	"github.com/iliyamo/cinemaflow/internal/model"
)

// ShowRepo manages persistence for shows.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

const showDetailSelect = `SELECT s.id, s.movie_id, s.hall_id, s.show_time, s.created_at,
                                 m.title, h.id, h.name, h.capacity, h.created_at
                          FROM shows s
                          JOIN movies m ON m.id = s.movie_id
                          JOIN halls h ON h.id = s.hall_id`

// Create inserts a new show and assigns the generated ID back to the
// show struct.  The movie and hall are not looked up first; a missing
// one is reported by the foreign keys as ErrInvalidReference.  No
// overlap check is made against other shows in the same hall.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	const q = `INSERT INTO shows (movie_id, hall_id, show_time) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.MovieID, s.HallID, s.ShowTime.UTC())
	if err != nil {
		if isForeignKey(err) {
			return ErrInvalidReference
		}
		return fmt.Errorf("insert show: %w", err)
	}
	id, err := res.LastInsertId() // obtain the auto-incremented ID
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return r.db.QueryRowContext(ctx, `SELECT created_at FROM shows WHERE id = ?`, s.ID).Scan(&s.CreatedAt)
}

// GetDetail retrieves a show joined with its movie title and hall.  It
// returns ErrShowNotFound if there is no matching row.
func (r *ShowRepo) GetDetail(ctx context.Context, id uint64) (*model.ShowDetail, error) {
	row := r.db.QueryRowContext(ctx, showDetailSelect+` WHERE s.id = ?`, id)
	d, err := scanShowDetail(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return &d, nil
}

// ListAll returns every show with movie and hall, ordered by show time.
func (r *ShowRepo) ListAll(ctx context.Context) ([]model.ShowDetail, error) {
	rows, err := r.db.QueryContext(ctx, showDetailSelect+` ORDER BY s.show_time, s.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ShowDetail{}
	for rows.Next() {
		d, err := scanShowDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanShowDetail(sc rowScanner) (model.ShowDetail, error) {
	var d model.ShowDetail
	err := sc.Scan(
		&d.ID, &d.MovieID, &d.HallID, &d.ShowTime, &d.CreatedAt,
		&d.MovieTitle, &d.Hall.ID, &d.Hall.Name, &d.Hall.Capacity, &d.Hall.CreatedAt,
	)
	return d, err
}
