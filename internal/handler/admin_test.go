package handler

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinemaflow/internal/model"
)

func managerBrowser(t *testing.T, a *app) *browser {
	t.Helper()
	a.seedUser(t, "boss", "pw", model.RoleManager)
	b := a.browser(t)
	b.login("boss", "pw")
	return b
}

func TestAdminPagesForbidCustomersAndGuests(t *testing.T) {
	a := newApp(t)
	a.seedUser(t, "alice", "pw", model.RoleCustomer)
	customer := a.browser(t)
	customer.login("alice", "pw")
	guest := a.browser(t)

	for _, target := range []string{"/admin/movies/new", "/admin/halls/new", "/admin/shows/new", "/admin/dashboard"} {
		for name, b := range map[string]*browser{"guest": guest, "customer": customer} {
			rec := b.get(target)
			assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", name, target)
			assert.Contains(t, rec.Body.String(), "You do not have permission to access this page.")
		}
	}
	rec := customer.post("/admin/movies/new", url.Values{"title": {"Sneaky"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, a.catalog.movies)
}

func TestCreateMovie(t *testing.T) {
	a := newApp(t)
	b := managerBrowser(t, a)

	assert.Equal(t, http.StatusOK, b.get("/admin/movies/new").Code)

	rec := b.post("/admin/movies/new", url.Values{
		"title":        {"Arrival"},
		"description":  {"First contact."},
		"duration_min": {"116"},
		"release_date": {"2016-11-11"},
	})
	assert.Equal(t, "/movies/", rec.Header().Get(echo.HeaderLocation))
	page := b.follow(rec).Body.String()
	assert.Contains(t, page, "Movie created successfully.")
	assert.Contains(t, page, "Arrival")
	assert.Contains(t, page, "116 min")
	assert.Contains(t, page, "Released 2016-11-11")

	require.Len(t, a.catalog.movies, 1)
	m := a.catalog.movies[0]
	require.NotNil(t, m.DurationMin)
	assert.Equal(t, 116, *m.DurationMin)
	require.NotNil(t, m.ReleaseDate)
	assert.Equal(t, time.Date(2016, 11, 11, 0, 0, 0, 0, time.UTC), *m.ReleaseDate)
}

func TestCreateMovieOptionalFieldsMayBeEmpty(t *testing.T) {
	a := newApp(t)
	b := managerBrowser(t, a)

	rec := b.post("/admin/movies/new", url.Values{"title": {"Heat"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	require.Len(t, a.catalog.movies, 1)
	assert.Nil(t, a.catalog.movies[0].DurationMin)
	assert.Nil(t, a.catalog.movies[0].ReleaseDate)
}

func TestCreateMovieValidation(t *testing.T) {
	a := newApp(t)
	b := managerBrowser(t, a)

	tests := []struct {
		name  string
		form  url.Values
		flash string
	}{
		{"empty title", url.Values{"title": {"   "}, "description": {"kept"}}, "Title is required."},
		{"bad duration", url.Values{"title": {"Heat"}, "duration_min": {"long"}}, "Duration must be a positive number of minutes."},
		{"negative duration", url.Values{"title": {"Heat"}, "duration_min": {"-5"}}, "Duration must be a positive number of minutes."},
		{"bad date", url.Values{"title": {"Heat"}, "release_date": {"11/11/2016"}}, "Release date must be in YYYY-MM-DD format."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := b.post("/admin/movies/new", tt.form)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.flash)
		})
	}
	assert.Empty(t, a.catalog.movies)

	// submitted values are put back into the form
	rec := b.post("/admin/movies/new", url.Values{"title": {""}, "description": {"kept"}})
	assert.Contains(t, rec.Body.String(), ">kept</textarea>")
}

func TestCreateHall(t *testing.T) {
	a := newApp(t)
	b := managerBrowser(t, a)

	rec := b.post("/admin/halls/new", url.Values{"name": {"Hall A"}, "capacity": {"50"}})
	assert.Equal(t, "/admin/shows/new", rec.Header().Get(echo.HeaderLocation))
	assert.Contains(t, b.follow(rec).Body.String(), "Hall created successfully.")
	require.Len(t, a.catalog.halls, 1)
	assert.Equal(t, 50, a.catalog.halls[0].Capacity)

	rec = b.post("/admin/halls/new", url.Values{"name": {"Hall A"}, "capacity": {"80"}})
	assert.Equal(t, "/admin/halls/new", rec.Header().Get(echo.HeaderLocation))
	assert.Contains(t, b.follow(rec).Body.String(), "Hall name already exists.")
	assert.Len(t, a.catalog.halls, 1)

	for _, capacity := range []string{"0", "-3", "many", ""} {
		rec = b.post("/admin/halls/new", url.Values{"name": {"Hall B"}, "capacity": {capacity}})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Capacity must be a positive number.", capacity)
	}
	rec = b.post("/admin/halls/new", url.Values{"name": {""}, "capacity": {"10"}})
	assert.Contains(t, rec.Body.String(), "Name is required.")
	assert.Len(t, a.catalog.halls, 1)
}

func TestCreateShow(t *testing.T) {
	a := newApp(t)
	b := managerBrowser(t, a)
	require.NoError(t, a.catalog.CreateMovie(t.Context(), &model.Movie{Title: "Arrival"}))
	require.NoError(t, a.catalog.CreateHall(t.Context(), &model.Hall{Name: "Hall A", Capacity: 50}))

	form := b.get("/admin/shows/new").Body.String()
	assert.Contains(t, form, `<option value="1">Arrival</option>`)
	assert.Contains(t, form, `<option value="1">Hall A (50 seats)</option>`)

	rec := b.post("/admin/shows/new", url.Values{"movie_id": {"1"}, "hall_id": {"1"}, "show_time": {"2026-11-20 19:30"}})
	assert.Equal(t, "/movies/", rec.Header().Get(echo.HeaderLocation))
	page := b.follow(rec).Body.String()
	assert.Contains(t, page, "Show scheduled successfully.")
	assert.Contains(t, page, "2026-11-20 19:30 in Hall A")

	require.Len(t, a.catalog.shows, 1)
	assert.Equal(t, time.Date(2026, 11, 20, 19, 30, 0, 0, time.UTC), a.catalog.shows[0].ShowTime)
}

func TestCreateShowValidation(t *testing.T) {
	a := newApp(t)
	b := managerBrowser(t, a)
	require.NoError(t, a.catalog.CreateMovie(t.Context(), &model.Movie{Title: "Arrival"}))
	require.NoError(t, a.catalog.CreateHall(t.Context(), &model.Hall{Name: "Hall A", Capacity: 50}))

	tests := []struct {
		name  string
		form  url.Values
		flash string
	}{
		{"bad time", url.Values{"movie_id": {"1"}, "hall_id": {"1"}, "show_time": {"tomorrow"}}, "Invalid show time format."},
		{"iso time", url.Values{"movie_id": {"1"}, "hall_id": {"1"}, "show_time": {"2026-11-20T19:30"}}, "Invalid show time format."},
		{"missing hall", url.Values{"movie_id": {"1"}, "show_time": {"2026-11-20 19:30"}}, "Please choose a movie and a hall."},
		{"unknown movie", url.Values{"movie_id": {"9"}, "hall_id": {"1"}, "show_time": {"2026-11-20 19:30"}}, "Selected movie or hall does not exist."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := b.post("/admin/shows/new", tt.form)
			assert.Equal(t, "/admin/shows/new", rec.Header().Get(echo.HeaderLocation))
			assert.Contains(t, b.follow(rec).Body.String(), tt.flash)
		})
	}
	assert.Empty(t, a.catalog.shows)
}

func TestDashboardCountsBookings(t *testing.T) {
	a := newApp(t)
	showID := a.seedShow(t, "Arrival", "Hall A", 50)
	a.seedUser(t, "alice", "pw", model.RoleCustomer)
	customer := a.browser(t)
	customer.login("alice", "pw")
	customer.post(seatsPath(showID), url.Values{"seats": {"1", "2", "3"}})
	waitEvent(t, a.events)

	b := managerBrowser(t, a)
	page := b.get("/admin/dashboard").Body.String()
	assert.Contains(t, page, "Total bookings: 3")
	assert.Contains(t, page, "Signed in as boss")
}

func TestAdminRoleCanManage(t *testing.T) {
	a := newApp(t)
	a.seedUser(t, "root", "pw", model.RoleAdmin)
	b := a.browser(t)
	b.login("root", "pw")
	assert.Equal(t, http.StatusOK, b.get("/admin/halls/new").Code)
	assert.Equal(t, http.StatusOK, b.get("/admin/dashboard").Code)
}
