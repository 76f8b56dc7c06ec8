package model

import "time"

// BookingStatusConfirmed is the only status a booking is created
// with.  There is no cancellation path.
const BookingStatusConfirmed = "confirmed"

// MaxSeatsPerBooking bounds one booking request.  It keeps the seat
// lists sent to MySQL far below the placeholder limit.
const MaxSeatsPerBooking = 50

// Booking records one seat reserved by a user for a specific show.
// The pair (ShowID, SeatNumber) is unique.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – user who made the booking.
//  ShowID     – show being booked.
//  SeatNumber – seat number within the show's hall, as a string.
//  BookedAt   – creation timestamp.
//  Status     – state of the booking ("confirmed").
type Booking struct {
    ID         uint64    // bookings.id
    UserID     uint64    // bookings.user_id
    ShowID     uint64    // bookings.show_id
    SeatNumber string    // bookings.seat_number
    BookedAt   time.Time // bookings.booked_at
    Status     string    // bookings.status
}

// BookingDetail extends a booking with the movie, hall and show time
// it refers to.  It is returned when listing a user's own bookings.
type BookingDetail struct {
    Booking
    MovieTitle string
    HallName   string
    ShowTime   time.Time
}
