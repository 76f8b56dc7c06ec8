package repository // repository holds data access logic for domain entities

import (
	"context"      // context is used to manage deadlines and cancellation
	"database/sql" // sql provides DB primitives
	"fmt"

	"github.com/iliyamo/cinemaflow/internal/model"
)

// HallRepo provides methods to create and retrieve halls.  It embeds a
// database handle to perform queries and commands.
type HallRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewHallRepo constructs a HallRepo with the given DB handle.
func NewHallRepo(db *sql.DB) *HallRepo {
	return &HallRepo{db: db}
}

// Create inserts a new hall into the database.  The hall must have a
// Name and a positive Capacity.  After insert the ID and CreatedAt
// fields of the hall will be set.  A duplicate name yields
// ErrHallNameTaken.
func (r *HallRepo) Create(ctx context.Context, h *model.Hall) error {
	if h.Capacity <= 0 {
		return fmt.Errorf("hall capacity must be positive, got %d", h.Capacity)
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO halls (name, capacity) VALUES (?, ?)`, h.Name, h.Capacity)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrHallNameTaken
		}
		return fmt.Errorf("insert hall: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)

	// read back created_at set by the column default
	if err := r.db.QueryRowContext(ctx, `SELECT created_at FROM halls WHERE id = ?`, h.ID).Scan(&h.CreatedAt); err != nil {
		return err
	}
	return nil
}

// ListAll returns every hall ordered by name, for the schedule form.
func (r *HallRepo) ListAll(ctx context.Context) ([]model.Hall, error) {
	const q = `SELECT id, name, capacity, created_at
               FROM halls
               ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Hall{}
	for rows.Next() {
		var h model.Hall
		if err := rows.Scan(&h.ID, &h.Name, &h.Capacity, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
