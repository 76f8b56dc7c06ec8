package router

import (
	"github.com/iliyamo/cinemaflow/internal/handler"
	"github.com/iliyamo/cinemaflow/internal/middleware"
	"github.com/iliyamo/cinemaflow/internal/model"
	"github.com/labstack/echo/v4"
)

// RegisterBookings registers the booking pages under /bookings.  All
// routes require a session whose role may book; anonymous visitors are
// redirected to the login page.  Seat submissions go through limit.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/bookings",
		middleware.RequireLogin,
		middleware.RequireCapability(model.CapBook),
	)
	g.GET("/", h.ListBookings)
	g.GET("/:show_id/seats", h.SeatsForm)
	g.POST("/:show_id/seats", h.Book, limit)
}
