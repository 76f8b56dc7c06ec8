package router // router defines how HTTP routes are registered for the site

import (
	"github.com/iliyamo/cinemaflow/internal/handler"    // admin handlers
	"github.com/iliyamo/cinemaflow/internal/middleware" // capability middleware
	"github.com/iliyamo/cinemaflow/internal/model"
	"github.com/labstack/echo/v4"
)

// RegisterAdmin registers the catalog management pages under /admin.
// Every route answers 403 to anyone whose role lacks the capability,
// including anonymous visitors.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler) {
	catalog := e.Group("/admin", middleware.RequireCapability(model.CapManageCatalog))

	// ---- Movies ----
	catalog.GET("/movies/new", a.CreateMovieForm)
	catalog.POST("/movies/new", a.CreateMovie)

	// ---- Halls ----
	catalog.GET("/halls/new", a.CreateHallForm)
	catalog.POST("/halls/new", a.CreateHall)

	// ---- Shows ----
	catalog.GET("/shows/new", a.CreateShowForm)
	catalog.POST("/shows/new", a.CreateShow)

	e.GET("/admin/dashboard", a.Dashboard, middleware.RequireCapability(model.CapViewDashboard))
}
