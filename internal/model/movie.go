package model

import "time"

// Movie represents a film in the catalog.  Only the title is required;
// duration and release date are optional.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – movie title.
//  Description – free text description (may be empty).
//  DurationMin – running time in minutes (nil if unknown).
//  ReleaseDate – release date (nil if unknown).
//  CreatedAt   – creation timestamp.
type Movie struct {
    ID          uint64     // movies.id
    Title       string     // movies.title
    Description string     // movies.description (nullable, empty when NULL)
    DurationMin *int       // movies.duration_min (nullable)
    ReleaseDate *time.Time // movies.release_date (nullable)
    CreatedAt   time.Time  // movies.created_at
}

// MovieListing groups a movie with its scheduled shows for the public
// catalog page.
type MovieListing struct {
    Movie Movie        `json:"movie"`
    Shows []ShowDetail `json:"shows"`
}
