// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingQueueName is the durable queue booking confirmations go to.
const BookingQueueName = "booking.confirmed"

// BookingConfirmedEvent is published when a set of seats is booked.
// It contains enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type BookingConfirmedEvent struct {
    BookingIDs  []uint64 `json:"booking_ids"`
    UserID      uint64   `json:"user_id"`
    Username    string   `json:"username"`
    ShowID      uint64   `json:"show_id"`
    MovieTitle  string   `json:"movie_title"`
    HallName    string   `json:"hall_name"`
    ShowTime    string   `json:"show_time"`
    Seats       []string `json:"seats"`
    ConfirmedAt string   `json:"confirmed_at"`
}
