package handler

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/cinemaflow/internal/middleware"
    "github.com/iliyamo/cinemaflow/internal/model"
    "github.com/iliyamo/cinemaflow/internal/queue"
    "github.com/iliyamo/cinemaflow/internal/repository"
    "github.com/iliyamo/cinemaflow/internal/service"
)

// Flash texts shown by the booking pages.
const (
    msgNoSeats        = "Please select at least one seat."
    msgInvalidSeat    = "Invalid seat selection."
    msgTooManySeats   = "You can book at most 50 seats at once."
    msgBookingSuccess = "Booking successful!"
)

func msgSeatTaken(seat string) string { return fmt.Sprintf("Seat %s is already booked.", seat) }

// BookingHandler serves seat selection and the customer's booking list.
type BookingHandler struct {
    Pages
    Shows    ShowLookup
    Bookings BookingStore
    Events   service.EventPublisher
    Log      *logrus.Logger
}

func NewBookingHandler(shows ShowLookup, bookings BookingStore, events service.EventPublisher, flash *Flasher, log *logrus.Logger) *BookingHandler {
    if events == nil {
        events = service.NopPublisher{}
    }
    return &BookingHandler{Pages: Pages{Flash: flash}, Shows: shows, Bookings: bookings, Events: events, Log: log}
}

// loadShow resolves :show_id, answering 404 for a malformed or unknown id.
func (h *BookingHandler) loadShow(ctx context.Context, c echo.Context) (*model.ShowDetail, error) {
    id, ok := parseID(c, "show_id")
    if !ok {
        return nil, echo.NewHTTPError(http.StatusNotFound, "Show not found.")
    }
    show, err := h.Shows.GetDetail(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrShowNotFound) {
            return nil, echo.NewHTTPError(http.StatusNotFound, "Show not found.")
        }
        return nil, err
    }
    return show, nil
}

// SeatsForm renders seats 1..capacity of the show's hall, with booked
// seats disabled.
func (h *BookingHandler) SeatsForm(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    show, err := h.loadShow(ctx, c)
    if err != nil {
        return err
    }
    taken, err := h.Bookings.BookedSeats(ctx, show.ID)
    if err != nil {
        return err
    }
    booked := make(map[int]bool, len(taken))
    for _, s := range taken {
        if n, err := strconv.Atoi(s); err == nil {
            booked[n] = true
        }
    }
    return h.render(c, http.StatusOK, "bookings/seats", "Select seats", echo.Map{
        "show":   *show,
        "booked": booked,
    })
}

// Book books the selected seats all together or not at all.  Seats that
// someone else holds are reported one flash each and the visitor is sent
// back to the seat page.
func (h *BookingHandler) Book(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    show, err := h.loadShow(ctx, c)
    if err != nil {
        return err
    }
    self := c.Request().URL.Path

    form, err := c.FormParams()
    if err != nil {
        return echo.NewHTTPError(http.StatusBadRequest, "Malformed form.")
    }
    raw := form["seats"]
    if len(raw) == 0 {
        return h.redirect(c, self, msgNoSeats)
    }
    if len(raw) > model.MaxSeatsPerBooking {
        return h.redirect(c, self, msgTooManySeats)
    }
    seats := make([]string, 0, len(raw))
    seen := make(map[int]bool, len(raw))
    for _, s := range raw {
        n, err := strconv.Atoi(strings.TrimSpace(s))
        if err != nil || !show.Hall.HasSeat(n) {
            return h.redirect(c, self, msgInvalidSeat)
        }
        if !seen[n] {
            seen[n] = true
            seats = append(seats, strconv.Itoa(n))
        }
    }

    user := middleware.CurrentUser(c)
    booked, err := h.Bookings.BookSeats(ctx, user.ID, show.ID, seats)
    if err != nil {
        var conflict *repository.SeatConflictError
        switch {
        case errors.As(err, &conflict):
            msgs := make([]string, len(conflict.Seats))
            for i, s := range conflict.Seats {
                msgs[i] = msgSeatTaken(s)
            }
            return h.redirect(c, self, msgs...)
        case errors.Is(err, repository.ErrShowNotFound):
            return echo.NewHTTPError(http.StatusNotFound, "Show not found.")
        }
        return err
    }

    h.Log.WithFields(logrus.Fields{
        "user_id": user.ID,
        "show_id": show.ID,
        "seats":   len(booked),
    }).Info("seats booked")
    h.publish(user, show, booked)

    return h.redirect(c, "/movies/", msgBookingSuccess)
}

// publish sends booking.confirmed in the background; the booking is
// already committed, so a failure is only logged.
func (h *BookingHandler) publish(user *model.User, show *model.ShowDetail, booked []model.Booking) {
    ev := queue.BookingConfirmedEvent{
        UserID:      user.ID,
        Username:    user.Username,
        ShowID:      show.ID,
        MovieTitle:  show.MovieTitle,
        HallName:    show.Hall.Name,
        ShowTime:    show.ShowTime.Format(model.ShowTimeLayout),
        ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
    }
    for _, b := range booked {
        ev.BookingIDs = append(ev.BookingIDs, b.ID)
        ev.Seats = append(ev.Seats, b.SeatNumber)
    }
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        if err := h.Events.PublishBookingConfirmed(ctx, ev); err != nil {
            h.Log.WithError(err).WithField("show_id", ev.ShowID).Warn("publish booking.confirmed failed")
        }
    }()
}

// ListBookings renders the current user's bookings, newest first.
func (h *BookingHandler) ListBookings(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    list, err := h.Bookings.ListByUser(ctx, middleware.CurrentUser(c).ID)
    if err != nil {
        return err
    }
    return h.render(c, http.StatusOK, "bookings/list", "My bookings", echo.Map{"bookings": list})
}
