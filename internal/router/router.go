package router // package router defines how HTTP routes are registered for the site

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/cinemaflow/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/cinemaflow/internal/middleware" // import middleware for sessions and capability checks
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance: the start page and a health check for load
// balancers.
func RegisterRoutes(e *echo.Echo, idx *handler.IndexHandler) {
	e.GET("/", idx.Index)
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the registration, login and logout pages.  The
// form posts go through limit, which throttles credential guessing.
// Logout needs a session; the other pages are open.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/auth")
	g.GET("/register", a.RegisterForm)
	g.POST("/register", a.Register, limit)
	g.GET("/login", a.LoginForm)
	g.POST("/login", a.Login, limit)
	g.GET("/logout", a.Logout, middleware.RequireLogin)
}

// RegisterPublic registers the read-only catalog.
func RegisterPublic(e *echo.Echo, c *handler.CatalogHandler) {
	e.GET("/movies/", c.ListMovies)
}
