package middleware

// identity.go defines helper functions shared across middleware files. It
// provides a userID extraction function used for rate-limit keys and
// request logs. When no user is authenticated, "guest" is returned.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// userID returns the current user's id as a string, or "guest".
func userID(c echo.Context) string {
    if u := CurrentUser(c); u != nil && u.ID != 0 {
        return strconv.FormatUint(u.ID, 10)
    }
    return "guest"
}
