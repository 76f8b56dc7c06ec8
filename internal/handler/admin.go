package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/cinemaflow/internal/model"
    "github.com/iliyamo/cinemaflow/internal/repository"
)

// Flash texts shown by the administration pages.
const (
    msgTitleRequired    = "Title is required."
    msgBadDuration      = "Duration must be a positive number of minutes."
    msgBadReleaseDate   = "Release date must be in YYYY-MM-DD format."
    msgMovieCreated     = "Movie created successfully."
    msgNameRequired     = "Name is required."
    msgBadCapacity      = "Capacity must be a positive number."
    msgHallExists       = "Hall name already exists."
    msgHallCreated      = "Hall created successfully."
    msgBadShowTime      = "Invalid show time format."
    msgChooseMovieHall  = "Please choose a movie and a hall."
    msgUnknownMovieHall = "Selected movie or hall does not exist."
    msgShowScheduled    = "Show scheduled successfully."
)

// releaseDateLayout is the accepted format of the optional release date.
const releaseDateLayout = "2006-01-02"

// AdminHandler serves the catalog management pages.  Routes are gated
// by middleware.RequireCapability.
type AdminHandler struct {
    Pages
    Catalog  CatalogService
    Bookings BookingStore
    Log      *logrus.Logger
}

func NewAdminHandler(catalog CatalogService, bookings BookingStore, flash *Flasher, log *logrus.Logger) *AdminHandler {
    return &AdminHandler{Pages: Pages{Flash: flash}, Catalog: catalog, Bookings: bookings, Log: log}
}

func (h *AdminHandler) CreateMovieForm(c echo.Context) error {
    return h.render(c, http.StatusOK, "admin/create_movie", "New movie", nil)
}

// CreateMovie validates the movie form.  Validation failures re-render
// the form with the submitted values and the error as a flash.
func (h *AdminHandler) CreateMovie(c echo.Context) error {
    form := echo.Map{
        "title":        strings.TrimSpace(c.FormValue("title")),
        "description":  strings.TrimSpace(c.FormValue("description")),
        "duration_min": strings.TrimSpace(c.FormValue("duration_min")),
        "release_date": strings.TrimSpace(c.FormValue("release_date")),
    }
    invalid := func(msg string) error {
        return h.render(c, http.StatusOK, "admin/create_movie", "New movie", form, msg)
    }

    m := &model.Movie{
        Title:       form["title"].(string),
        Description: form["description"].(string),
    }
    if m.Title == "" {
        return invalid(msgTitleRequired)
    }
    if s := form["duration_min"].(string); s != "" {
        n, err := strconv.Atoi(s)
        if err != nil || n <= 0 {
            return invalid(msgBadDuration)
        }
        m.DurationMin = &n
    }
    if s := form["release_date"].(string); s != "" {
        d, err := time.ParseInLocation(releaseDateLayout, s, time.UTC)
        if err != nil {
            return invalid(msgBadReleaseDate)
        }
        m.ReleaseDate = &d
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    if err := h.Catalog.CreateMovie(ctx, m); err != nil {
        return err
    }
    h.Log.WithFields(logrus.Fields{"movie_id": m.ID, "title": m.Title}).Info("movie created")
    return h.redirect(c, "/movies/", msgMovieCreated)
}

func (h *AdminHandler) CreateHallForm(c echo.Context) error {
    return h.render(c, http.StatusOK, "admin/create_hall", "New hall", nil)
}

// CreateHall adds a hall.  Seats are numbered 1..capacity.
func (h *AdminHandler) CreateHall(c echo.Context) error {
    form := echo.Map{
        "name":     strings.TrimSpace(c.FormValue("name")),
        "capacity": strings.TrimSpace(c.FormValue("capacity")),
    }
    name := form["name"].(string)
    if name == "" {
        return h.render(c, http.StatusOK, "admin/create_hall", "New hall", form, msgNameRequired)
    }
    capacity, err := strconv.Atoi(form["capacity"].(string))
    if err != nil || capacity <= 0 {
        return h.render(c, http.StatusOK, "admin/create_hall", "New hall", form, msgBadCapacity)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    hall := &model.Hall{Name: name, Capacity: capacity}
    if err := h.Catalog.CreateHall(ctx, hall); err != nil {
        if errors.Is(err, repository.ErrHallNameTaken) {
            return h.redirect(c, "/admin/halls/new", msgHallExists)
        }
        return err
    }
    h.Log.WithFields(logrus.Fields{"hall_id": hall.ID, "capacity": capacity}).Info("hall created")
    return h.redirect(c, "/admin/shows/new", msgHallCreated)
}

// CreateShowForm lists movies and halls to choose from.
func (h *AdminHandler) CreateShowForm(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    movies, err := h.Catalog.Movies(ctx)
    if err != nil {
        return err
    }
    halls, err := h.Catalog.Halls(ctx)
    if err != nil {
        return err
    }
    return h.render(c, http.StatusOK, "admin/create_show", "Schedule show", echo.Map{
        "movies": movies,
        "halls":  halls,
    })
}

// CreateShow schedules a movie in a hall.  The time is read as UTC in
// model.ShowTimeLayout.  Overlapping shows in a hall are not checked.
func (h *AdminHandler) CreateShow(c echo.Context) error {
    const self = "/admin/shows/new"

    at, err := time.ParseInLocation(model.ShowTimeLayout, strings.TrimSpace(c.FormValue("show_time")), time.UTC)
    if err != nil {
        return h.redirect(c, self, msgBadShowTime)
    }
    movieID, err1 := strconv.ParseUint(c.FormValue("movie_id"), 10, 64)
    hallID, err2 := strconv.ParseUint(c.FormValue("hall_id"), 10, 64)
    if err1 != nil || err2 != nil || movieID == 0 || hallID == 0 {
        return h.redirect(c, self, msgChooseMovieHall)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    show := &model.Show{MovieID: movieID, HallID: hallID, ShowTime: at}
    if err := h.Catalog.CreateShow(ctx, show); err != nil {
        if errors.Is(err, repository.ErrInvalidReference) {
            return h.redirect(c, self, msgUnknownMovieHall)
        }
        return err
    }
    h.Log.WithFields(logrus.Fields{"show_id": show.ID, "movie_id": movieID, "hall_id": hallID}).Info("show scheduled")
    return h.redirect(c, "/movies/", msgShowScheduled)
}

// Dashboard shows the total number of bookings.
func (h *AdminHandler) Dashboard(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    n, err := h.Bookings.Count(ctx)
    if err != nil {
        return err
    }
    return h.render(c, http.StatusOK, "admin/dashboard", "Dashboard", echo.Map{"total_bookings": n})
}
