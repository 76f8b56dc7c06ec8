package handler // handler defines http handlers

import (
    "context"
    "net/http"
    "strconv"
    "strings"

    "github.com/gorilla/sessions"
    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/iliyamo/cinemaflow/internal/middleware"
    "github.com/iliyamo/cinemaflow/internal/model"
    "github.com/iliyamo/cinemaflow/internal/view"
)

// flashSessionName is the cookie holding pending flash messages.
const flashSessionName = "cinemaflow_flash"

// UserStore is the part of *repository.UserRepo the auth handler uses.
type UserStore interface {
    Create(ctx context.Context, username, password string, role model.Role, cost int) (uint64, error)
    GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// SessionStore is the part of *repository.SessionRepo the auth handler uses.
type SessionStore interface {
    Create(ctx context.Context, s *model.Session) error
    Revoke(ctx context.Context, id string) error
}

// CatalogService is implemented by *service.Catalog.
type CatalogService interface {
    Listings(ctx context.Context) ([]model.MovieListing, error)
    Movies(ctx context.Context) ([]model.Movie, error)
    Halls(ctx context.Context) ([]model.Hall, error)
    CreateMovie(ctx context.Context, m *model.Movie) error
    CreateHall(ctx context.Context, h *model.Hall) error
    CreateShow(ctx context.Context, s *model.Show) error
}

// ShowLookup loads a show with its movie and hall.
type ShowLookup interface {
    GetDetail(ctx context.Context, id uint64) (*model.ShowDetail, error)
}

// BookingStore is implemented by *repository.BookingRepo.
type BookingStore interface {
    BookedSeats(ctx context.Context, showID uint64) ([]string, error)
    BookSeats(ctx context.Context, userID, showID uint64, seats []string) ([]model.Booking, error)
    ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error)
    Count(ctx context.Context) (int, error)
}

// Flasher stores one-shot messages in a signed cookie.  A message added
// before a redirect is shown on the next rendered page.
type Flasher struct {
    store sessions.Store
}

// NewFlasher returns a Flasher whose cookie is signed with secret.
func NewFlasher(secret string, secure bool) *Flasher {
    store := sessions.NewCookieStore([]byte(secret))
    store.Options = &sessions.Options{
        Path:     "/",
        MaxAge:   3600,
        HttpOnly: true,
        Secure:   secure,
        SameSite: http.SameSiteLaxMode,
    }
    return &Flasher{store: store}
}

// Add queues msg for the next page.
func (f *Flasher) Add(c echo.Context, msg string) {
    // a cookie that fails to decode (rotated secret) yields a fresh session
    sess, _ := f.store.Get(c.Request(), flashSessionName)
    sess.AddFlash(msg)
    if err := sess.Save(c.Request(), c.Response()); err != nil {
        c.Logger().Warnf("save flash: %v", err)
    }
}

// Pop returns and clears the queued messages.
func (f *Flasher) Pop(c echo.Context) []string {
    sess, _ := f.store.Get(c.Request(), flashSessionName)
    raw := sess.Flashes()
    if len(raw) == 0 {
        return nil
    }
    if err := sess.Save(c.Request(), c.Response()); err != nil {
        c.Logger().Warnf("clear flash: %v", err)
    }
    out := make([]string, 0, len(raw))
    for _, v := range raw {
        if s, ok := v.(string); ok {
            out = append(out, s)
        }
    }
    return out
}

// Pages renders templates and redirects with flashes.  Every handler
// embeds it.
type Pages struct {
    Flash *Flasher
}

// render writes page with the pending flashes plus any messages in now,
// which belong to this response only.
func (p *Pages) render(c echo.Context, status int, name, title string, data echo.Map, now ...string) error {
    flashes := append(p.Flash.Pop(c), now...)
    if data == nil {
        data = echo.Map{}
    }
    return c.Render(status, name, view.Page{
        Title:   title,
        User:    middleware.CurrentUser(c),
        Flashes: flashes,
        Data:    data,
    })
}

// redirect flashes msgs and answers 303 See Other to target.
func (p *Pages) redirect(c echo.Context, target string, msgs ...string) error {
    for _, m := range msgs {
        p.Flash.Add(c, m)
    }
    return c.Redirect(http.StatusSeeOther, target)
}

// parseID parses a positive integer path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
    if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
        return "/"
    }
    return next
}
