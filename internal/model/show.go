package model

import "time"

// ShowTimeLayout is the format accepted by the schedule form
// (YYYY-MM-DD HH:MM).
const ShowTimeLayout = "2006-01-02 15:04"

// Show represents a scheduled screening of a movie in a particular
// hall.  Shows are only created through the administration pages and
// are never updated afterwards.
//
// Fields:
//  ID        – primary key identifier.
//  MovieID   – movie being screened.
//  HallID    – hall where the show is taking place.
//  ShowTime  – when the show begins (UTC).
//  CreatedAt – creation timestamp.
type Show struct {
    ID        uint64    // shows.id
    MovieID   uint64    // shows.movie_id
    HallID    uint64    // shows.hall_id
    ShowTime  time.Time // shows.show_time
    CreatedAt time.Time // shows.created_at
}

// ShowDetail is a show joined with its movie title and hall.  It is
// what the catalog and the seat selection page display.
type ShowDetail struct {
    Show
    MovieTitle string `json:"movie_title"`
    Hall       Hall   `json:"hall"`
}
