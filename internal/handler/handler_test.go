package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinemaflow/internal/config"
	"github.com/iliyamo/cinemaflow/internal/middleware"
	"github.com/iliyamo/cinemaflow/internal/model"
	"github.com/iliyamo/cinemaflow/internal/queue"
	"github.com/iliyamo/cinemaflow/internal/repository"
	"github.com/iliyamo/cinemaflow/internal/utils"
	"github.com/iliyamo/cinemaflow/internal/view"
)

const testSecret = "handler-test-secret"

// memUsers implements UserStore and middleware.UserLoader.
type memUsers struct {
	mu     sync.Mutex
	byID   map[uint64]*model.User
	nextID uint64
}

func newMemUsers() *memUsers { return &memUsers{byID: map[uint64]*model.User{}} }

func (m *memUsers) Create(_ context.Context, username, password string, role model.Role, cost int) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Username == username {
			return 0, repository.ErrUsernameTaken
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	m.nextID++
	m.byID[m.nextID] = &model.User{ID: m.nextID, Username: username, PasswordHash: hash, Role: role}
	return m.nextID, nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrUserNotFound
}

// memSessions implements SessionStore and middleware.SessionChecker.
type memSessions struct {
	mu   sync.Mutex
	rows map[string]*model.Session
}

func newMemSessions() *memSessions { return &memSessions{rows: map[string]*model.Session{}} }

func (m *memSessions) Create(_ context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.rows[s.ID] = &cp
	return nil
}

func (m *memSessions) Revoke(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok || s.RevokedAt != nil {
		return repository.ErrSessionNotFound
	}
	now := time.Now()
	s.RevokedAt = &now
	return nil
}

func (m *memSessions) IsActive(_ context.Context, id string, userID uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	return ok && s.UserID == userID && s.RevokedAt == nil && time.Now().Before(s.ExpiresAt), nil
}

// memCatalog implements CatalogService and ShowLookup.
type memCatalog struct {
	mu     sync.Mutex
	movies []model.Movie
	halls  []model.Hall
	shows  []model.ShowDetail
}

func (m *memCatalog) Listings(context.Context) ([]model.MovieListing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.MovieListing, 0, len(m.movies))
	for _, mv := range m.movies {
		l := model.MovieListing{Movie: mv, Shows: []model.ShowDetail{}}
		for _, s := range m.shows {
			if s.MovieID == mv.ID {
				l.Shows = append(l.Shows, s)
			}
		}
		out = append(out, l)
	}
	return out, nil
}

func (m *memCatalog) Movies(context.Context) ([]model.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Movie(nil), m.movies...), nil
}

func (m *memCatalog) Halls(context.Context) ([]model.Hall, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Hall(nil), m.halls...), nil
}

func (m *memCatalog) CreateMovie(_ context.Context, mv *model.Movie) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mv.ID = uint64(len(m.movies) + 1)
	m.movies = append(m.movies, *mv)
	return nil
}

func (m *memCatalog) CreateHall(_ context.Context, h *model.Hall) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.halls {
		if x.Name == h.Name {
			return repository.ErrHallNameTaken
		}
	}
	h.ID = uint64(len(m.halls) + 1)
	m.halls = append(m.halls, *h)
	return nil
}

func (m *memCatalog) CreateShow(_ context.Context, s *model.Show) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var (
		title string
		hall  *model.Hall
	)
	for _, mv := range m.movies {
		if mv.ID == s.MovieID {
			title = mv.Title
		}
	}
	for i := range m.halls {
		if m.halls[i].ID == s.HallID {
			hall = &m.halls[i]
		}
	}
	if title == "" || hall == nil {
		return repository.ErrInvalidReference
	}
	s.ID = uint64(len(m.shows) + 1)
	m.shows = append(m.shows, model.ShowDetail{Show: *s, MovieTitle: title, Hall: *hall})
	return nil
}

func (m *memCatalog) GetDetail(_ context.Context, id uint64) (*model.ShowDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.shows {
		if s.ID == id {
			cp := s
			return &cp, nil
		}
	}
	return nil, repository.ErrShowNotFound
}

// memBookings implements BookingStore with the same all-or-nothing rule
// as the MySQL repository.
type memBookings struct {
	mu      sync.Mutex
	catalog *memCatalog
	rows    []model.Booking
}

func (m *memBookings) BookedSeats(_ context.Context, showID uint64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, b := range m.rows {
		if b.ShowID == showID {
			out = append(out, b.SeatNumber)
		}
	}
	return out, nil
}

func (m *memBookings) BookSeats(ctx context.Context, userID, showID uint64, seats []string) ([]model.Booking, error) {
	if _, err := m.catalog.GetDetail(ctx, showID); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	taken := map[string]bool{}
	for _, b := range m.rows {
		if b.ShowID == showID {
			taken[b.SeatNumber] = true
		}
	}
	var conflict []string
	for _, s := range seats {
		if taken[s] {
			conflict = append(conflict, s)
		}
	}
	if len(conflict) > 0 {
		return nil, &repository.SeatConflictError{ShowID: showID, Seats: conflict}
	}
	out := make([]model.Booking, 0, len(seats))
	for _, s := range seats {
		b := model.Booking{
			ID:         uint64(len(m.rows) + 1),
			UserID:     userID,
			ShowID:     showID,
			SeatNumber: s,
			Status:     model.BookingStatusConfirmed,
			BookedAt:   time.Now().UTC(),
		}
		m.rows = append(m.rows, b)
		out = append(out, b)
	}
	return out, nil
}

func (m *memBookings) ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	m.mu.Lock()
	rows := append([]model.Booking(nil), m.rows...)
	m.mu.Unlock()
	var out []model.BookingDetail
	for i := len(rows) - 1; i >= 0; i-- {
		b := rows[i]
		if b.UserID != userID {
			continue
		}
		show, err := m.catalog.GetDetail(ctx, b.ShowID)
		if err != nil {
			return nil, err
		}
		out = append(out, model.BookingDetail{Booking: b, MovieTitle: show.MovieTitle, HallName: show.Hall.Name, ShowTime: show.ShowTime})
	}
	return out, nil
}

func (m *memBookings) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows), nil
}

// chanPublisher hands every event to the test.
type chanPublisher chan queue.BookingConfirmedEvent

func (p chanPublisher) PublishBookingConfirmed(_ context.Context, ev queue.BookingConfirmedEvent) error {
	p <- ev
	return nil
}

// app is a fully wired site backed by the in-memory stores.
type app struct {
	e        *echo.Echo
	users    *memUsers
	sessions *memSessions
	catalog  *memCatalog
	bookings *memBookings
	events   chanPublisher
}

func newApp(t *testing.T) *app {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	a := &app{
		users:    newMemUsers(),
		sessions: newMemSessions(),
		catalog:  &memCatalog{},
		events:   make(chanPublisher, 8),
	}
	a.bookings = &memBookings{catalog: a.catalog}

	cfg := config.Config{SecretKey: testSecret, SessionTTL: time.Hour, BcryptCost: 4}
	flash := NewFlasher(testSecret, false)

	e := echo.New()
	e.Renderer = view.MustNewRenderer()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Use(middleware.LoadSession(testSecret, a.sessions, a.users, log))

	idx := NewIndexHandler(flash)
	e.GET("/", idx.Index)
	e.GET("/healthz", Health)

	auth := NewAuthHandler(cfg, a.users, a.sessions, flash, log)
	e.GET("/auth/register", auth.RegisterForm)
	e.POST("/auth/register", auth.Register)
	e.GET("/auth/login", auth.LoginForm)
	e.POST("/auth/login", auth.Login)
	e.GET("/auth/logout", auth.Logout, middleware.RequireLogin)

	e.GET("/movies/", NewCatalogHandler(a.catalog, flash).ListMovies)

	bk := NewBookingHandler(a.catalog, a.bookings, a.events, flash, log)
	g := e.Group("/bookings", middleware.RequireLogin, middleware.RequireCapability(model.CapBook))
	g.GET("/", bk.ListBookings)
	g.GET("/:show_id/seats", bk.SeatsForm)
	g.POST("/:show_id/seats", bk.Book)

	adm := NewAdminHandler(a.catalog, a.bookings, flash, log)
	ag := e.Group("/admin", middleware.RequireCapability(model.CapManageCatalog))
	ag.GET("/movies/new", adm.CreateMovieForm)
	ag.POST("/movies/new", adm.CreateMovie)
	ag.GET("/halls/new", adm.CreateHallForm)
	ag.POST("/halls/new", adm.CreateHall)
	ag.GET("/shows/new", adm.CreateShowForm)
	ag.POST("/shows/new", adm.CreateShow)
	e.GET("/admin/dashboard", adm.Dashboard, middleware.RequireCapability(model.CapViewDashboard))

	a.e = e
	return a
}

// seedUser stores an account directly, bypassing the register form.
func (a *app) seedUser(t *testing.T, username, password string, role model.Role) {
	t.Helper()
	_, err := a.users.Create(context.Background(), username, password, role, 4)
	require.NoError(t, err)
}

// seedShow adds a movie, a hall and one show, returning the show id.
func (a *app) seedShow(t *testing.T, title, hall string, capacity int) uint64 {
	t.Helper()
	ctx := context.Background()
	mv := &model.Movie{Title: title}
	require.NoError(t, a.catalog.CreateMovie(ctx, mv))
	h := &model.Hall{Name: hall, Capacity: capacity}
	require.NoError(t, a.catalog.CreateHall(ctx, h))
	s := &model.Show{MovieID: mv.ID, HallID: h.ID, ShowTime: time.Date(2026, 11, 20, 19, 30, 0, 0, time.UTC)}
	require.NoError(t, a.catalog.CreateShow(ctx, s))
	return s.ID
}

// browser keeps cookies between requests the way a real client does.
type browser struct {
	t   *testing.T
	app *app
	jar *cookiejar.Jar
}

var siteURL = &url.URL{Scheme: "http", Host: "example.com", Path: "/"}

func (a *app) browser(t *testing.T) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, app: a, jar: jar}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range b.jar.Cookies(siteURL) {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	b.app.e.ServeHTTP(rec, req)
	b.jar.SetCookies(siteURL, rec.Result().Cookies())
	return rec
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (b *browser) post(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return b.do(req)
}

// follow GETs the Location of a 303 and returns the rendered page.
func (b *browser) follow(rec *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	b.t.Helper()
	require.Equal(b.t, http.StatusSeeOther, rec.Code, rec.Body.String())
	return b.get(rec.Header().Get(echo.HeaderLocation))
}

func (b *browser) login(username, password string) {
	b.t.Helper()
	rec := b.post("/auth/login", url.Values{"username": {username}, "password": {password}})
	require.Equal(b.t, http.StatusSeeOther, rec.Code)
	require.Equal(b.t, "/", rec.Header().Get(echo.HeaderLocation))
}
