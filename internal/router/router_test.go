package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/cinemaflow/internal/config"
	"github.com/iliyamo/cinemaflow/internal/handler"
)

// blockAll stands in for the rate limiter so the test can see which
// routes it guards.
func blockAll(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTooManyRequests)
	}
}

func newTestEcho() *echo.Echo {
	log := logrus.New()
	log.SetOutput(io.Discard)
	flash := handler.NewFlasher("router-test", false)

	e := echo.New()
	RegisterRoutes(e, handler.NewIndexHandler(flash))
	RegisterAuth(e, handler.NewAuthHandler(config.Config{}, nil, nil, flash, log), blockAll)
	RegisterPublic(e, handler.NewCatalogHandler(nil, flash))
	RegisterBookings(e, handler.NewBookingHandler(nil, nil, nil, flash, log), blockAll)
	RegisterAdmin(e, handler.NewAdminHandler(nil, nil, flash, log))
	return e
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestRoutesRegistered(t *testing.T) {
	e := newTestEcho()
	got := map[string]bool{}
	for _, r := range e.Routes() {
		got[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /", "GET /healthz",
		"GET /auth/register", "POST /auth/register",
		"GET /auth/login", "POST /auth/login", "GET /auth/logout",
		"GET /movies/",
		"GET /bookings/", "GET /bookings/:show_id/seats", "POST /bookings/:show_id/seats",
		"GET /admin/movies/new", "POST /admin/movies/new",
		"GET /admin/halls/new", "POST /admin/halls/new",
		"GET /admin/shows/new", "POST /admin/shows/new",
		"GET /admin/dashboard",
	} {
		assert.True(t, got[want], want)
	}
}

func TestAnonymousAccess(t *testing.T) {
	e := newTestEcho()

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/healthz").Code)

	for _, target := range []string{"/admin/movies/new", "/admin/halls/new", "/admin/shows/new", "/admin/dashboard"} {
		assert.Equal(t, http.StatusForbidden, serve(e, http.MethodGet, target).Code, target)
	}
	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodPost, "/admin/shows/new").Code)

	for _, target := range []string{"/bookings/", "/bookings/1/seats", "/auth/logout"} {
		rec := serve(e, http.MethodGet, target)
		assert.Equal(t, http.StatusSeeOther, rec.Code, target)
		assert.Contains(t, rec.Header().Get(echo.HeaderLocation), "/auth/login?next=")
	}
}

func TestRateLimitedRoutes(t *testing.T) {
	e := newTestEcho()
	assert.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodPost, "/auth/login").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodPost, "/auth/register").Code)
	// the form pages are not limited
	assert.NotEqual(t, http.StatusTooManyRequests, serve(e, http.MethodGet, "/auth/login").Code)
}
