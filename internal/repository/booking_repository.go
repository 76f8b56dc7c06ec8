package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/cinemaflow/internal/model"
)

// BookingRepo creates and lists bookings.  Each booking row reserves one
// seat of one show; the (show_id, seat_number) pair is unique.  All
// timestamp fields are stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// BookedSeats returns the seat numbers already booked for a show.
func (r *BookingRepo) BookedSeats(ctx context.Context, showID uint64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seat_number FROM bookings WHERE show_id = ? ORDER BY id`, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return nil, err
		}
		out = append(out, seat)
	}
	return out, rows.Err()
}

// BookSeats books every seat in seats for userID, or none of them.
//
// The show row is locked with SELECT ... FOR UPDATE first, so two
// requests for the same show run one after the other.  Inside the lock
// the requested seats are checked against existing bookings and, if all
// are free, inserted with a single statement.  A seat that is already
// taken yields a *SeatConflictError and nothing is written.  A duplicate
// key error on insert (a racing writer that bypassed the lock) is
// translated to the same error.  Duplicate seats in the input are
// collapsed, keeping first occurrence order.
func (r *BookingRepo) BookSeats(ctx context.Context, userID, showID uint64, seats []string) ([]model.Booking, error) {
	seats = uniqueSeats(seats)
	if len(seats) == 0 {
		return nil, ErrNoSeats
	}
	if len(seats) > model.MaxSeatsPerBooking {
		return nil, ErrTooManySeats
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin booking tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var locked uint64
	err = tx.QueryRowContext(ctx, `SELECT id FROM shows WHERE id = ? FOR UPDATE`, showID).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, fmt.Errorf("lock show: %w", err)
	}

	taken, err := takenSeatsTx(ctx, tx, showID, seats)
	if err != nil {
		return nil, err
	}
	if len(taken) > 0 {
		return nil, &SeatConflictError{ShowID: showID, Seats: taken}
	}

	bookedAt := time.Now().UTC().Truncate(time.Second)
	query := `INSERT INTO bookings (user_id, show_id, seat_number, status, booked_at) VALUES `
	args := make([]interface{}, 0, len(seats)*5)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, userID, showID, s, model.BookingStatusConfirmed, bookedAt)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		switch {
		case isDuplicateKey(err):
			conflict := &SeatConflictError{ShowID: showID, Seats: seats}
			if again, qerr := takenSeatsTx(ctx, tx, showID, seats); qerr == nil && len(again) > 0 {
				conflict.Seats = again
			}
			return nil, conflict
		case isForeignKey(err):
			return nil, ErrInvalidReference
		}
		return nil, fmt.Errorf("insert bookings: %w", err)
	}

	// read the generated ids back rather than assuming consecutive values
	rows, err := tx.QueryContext(ctx,
		`SELECT id, seat_number FROM bookings WHERE show_id = ? AND seat_number IN (`+placeholders(len(seats))+`)`,
		seatArgs(showID, seats)...)
	if err != nil {
		return nil, fmt.Errorf("read bookings: %w", err)
	}
	ids := make(map[string]uint64, len(seats))
	for rows.Next() {
		var (
			id   uint64
			seat string
		)
		if err := rows.Scan(&id, &seat); err != nil {
			rows.Close()
			return nil, err
		}
		ids[seat] = id
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit bookings: %w", err)
	}
	committed = true

	out := make([]model.Booking, 0, len(seats))
	for _, s := range seats {
		out = append(out, model.Booking{
			ID:         ids[s],
			UserID:     userID,
			ShowID:     showID,
			SeatNumber: s,
			BookedAt:   bookedAt,
			Status:     model.BookingStatusConfirmed,
		})
	}
	return out, nil
}

// takenSeatsTx returns the subset of seats already booked for the
// show, in the order they appear in seats.
func takenSeatsTx(ctx context.Context, tx *sql.Tx, showID uint64, seats []string) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT seat_number FROM bookings WHERE show_id = ? AND seat_number IN (`+placeholders(len(seats))+`)`,
		seatArgs(showID, seats)...)
	if err != nil {
		return nil, fmt.Errorf("check seats: %w", err)
	}
	defer rows.Close()

	booked := map[string]bool{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		booked[s] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var taken []string
	for _, s := range seats {
		if booked[s] {
			taken = append(taken, s)
		}
	}
	return taken, nil
}

// ListByUser returns the user's bookings, newest first, with the movie
// title, hall name and show time of each.  An empty slice is returned
// when the user has no bookings.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	const q = `SELECT b.id, b.user_id, b.show_id, b.seat_number, b.booked_at, b.status,
                      m.title, h.name, s.show_time
               FROM bookings b
               JOIN shows s ON s.id = b.show_id
               JOIN movies m ON m.id = s.movie_id
               JOIN halls h ON h.id = s.hall_id
               WHERE b.user_id = ?
               ORDER BY b.booked_at DESC, b.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.BookingDetail{}
	for rows.Next() {
		var d model.BookingDetail
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.ShowID, &d.SeatNumber, &d.BookedAt, &d.Status,
			&d.MovieTitle, &d.HallName, &d.ShowTime,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the total number of bookings.
func (r *BookingRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func uniqueSeats(seats []string) []string {
	seen := make(map[string]bool, len(seats))
	out := make([]string, 0, len(seats))
	for _, s := range seats {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func seatArgs(showID uint64, seats []string) []interface{} {
	args := make([]interface{}, 0, len(seats)+1)
	args = append(args, showID)
	for _, s := range seats {
		args = append(args, s)
	}
	return args
}
