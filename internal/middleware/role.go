package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context

    "github.com/iliyamo/cinemaflow/internal/model"
)

// RequireCapability returns a middleware function that enforces that
// the current user's role grants capability.  Anonymous requests are
// treated like any other user without the capability: the request is
// aborted with 403 Forbidden rather than redirected to the login page.
// It assumes LoadSession ran earlier in the chain.
func RequireCapability(capability model.Capability) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            u := CurrentUser(c)
            if u == nil || !u.Role.Can(capability) {
                return echo.NewHTTPError(http.StatusForbidden, "You do not have permission to access this page.")
            }
            // Otherwise call the next handler in the chain
            return next(c)
        }
    }
}
