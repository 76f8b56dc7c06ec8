// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrUsernameTaken becomes a flash on the registration form,
// while a *SeatConflictError names the seats that somebody else booked
// first.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers the repositories translate.
const (
	mysqlErrDuplicateEntry = 1062
	mysqlErrNoReferenced   = 1452
)

var (
	// ErrUsernameTaken is returned when registering a username that
	// already exists. The existing row is never modified.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrUserNotFound is returned by user lookups with no matching row.
	ErrUserNotFound = errors.New("user not found")

	// ErrShowNotFound indicates that a show was not located in the DB.
	ErrShowNotFound = errors.New("show not found")

	// ErrHallNameTaken is returned when creating a hall whose name exists.
	ErrHallNameTaken = errors.New("hall name already exists")

	// ErrInvalidReference is returned when an insert points at a movie,
	// hall, show or user that does not exist (foreign key failure).
	ErrInvalidReference = errors.New("referenced record does not exist")

	// ErrSessionNotFound is returned when a session id is unknown.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNoSeats is returned by BookSeats when called without seats.
	ErrNoSeats = errors.New("no seats requested")

	// ErrTooManySeats is returned by BookSeats when one request asks for
	// more than model.MaxSeatsPerBooking seats.
	ErrTooManySeats = errors.New("too many seats requested")
)

// SeatConflictError reports seats of a show that were already booked.
// Seats keeps the order in which they were requested. When it is
// returned no booking row was written.
type SeatConflictError struct {
	ShowID uint64
	Seats  []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("show %d: seats already booked: %s", e.ShowID, strings.Join(e.Seats, ", "))
}

func mysqlErrorNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// isDuplicateKey reports whether err is a unique constraint violation.
func isDuplicateKey(err error) bool { return mysqlErrorNumber(err) == mysqlErrDuplicateEntry }

// isForeignKey reports whether err is a failed foreign key reference.
func isForeignKey(err error) bool { return mysqlErrorNumber(err) == mysqlErrNoReferenced }
