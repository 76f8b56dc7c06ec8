package model

import "time"

// Hall represents an individual screening hall.  Each hall has a
// unique name and a seating capacity; seats are numbered 1..Capacity.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique hall name.
//  Capacity  – number of seats in the hall.
//  CreatedAt – creation timestamp.
type Hall struct {
    ID        uint64    // halls.id
    Name      string    // halls.name
    Capacity  int       // halls.capacity
    CreatedAt time.Time // halls.created_at
}

// SeatNumbers returns the full seat range 1..Capacity offered for a
// show in this hall.
func (h Hall) SeatNumbers() []int {
    if h.Capacity <= 0 {
        return []int{}
    }
    out := make([]int, h.Capacity)
    for i := range out {
        out[i] = i + 1
    }
    return out
}

// HasSeat reports whether n is a valid seat number in the hall.
func (h Hall) HasSeat(n int) bool {
    return n >= 1 && n <= h.Capacity
}
