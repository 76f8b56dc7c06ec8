package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/cinemaflow/internal/middleware"
    "github.com/iliyamo/cinemaflow/internal/view"
)

// NewHTTPErrorHandler renders errors as the error page.  *echo.HTTPError
// keeps its code and message; anything else is logged and shown as a
// generic 500 so internals never reach the browser.
func NewHTTPErrorHandler(log *logrus.Logger) echo.HTTPErrorHandler {
    return func(err error, c echo.Context) {
        if c.Response().Committed {
            return
        }

        code := http.StatusInternalServerError
        message := "Something went wrong. Please try again later."
        var he *echo.HTTPError
        if errors.As(err, &he) {
            code = he.Code
            if m, ok := he.Message.(string); ok {
                message = m
            } else {
                message = http.StatusText(code)
            }
        } else {
            log.WithError(err).WithFields(logrus.Fields{
                "method": c.Request().Method,
                "path":   c.Request().URL.Path,
            }).Error("unhandled error")
        }

        if c.Request().Method == http.MethodHead {
            _ = c.NoContent(code)
            return
        }
        page := view.Page{
            Title: http.StatusText(code),
            User:  middleware.CurrentUser(c),
            Data:  echo.Map{"code": code, "message": message},
        }
        if rerr := c.Render(code, "error", page); rerr != nil {
            log.WithError(rerr).Error("render error page")
            _ = c.String(code, message)
        }
    }
}
