package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"
)

// RequestLogger logs one entry per request after it is handled.  Errors
// returned by the handler are rendered first through c.Error so the
// logged status is the one the client received.
func RequestLogger(log *logrus.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()

            if err := next(c); err != nil {
                c.Error(err)
            }

            req := c.Request()
            status := c.Response().Status
            entry := log.WithFields(logrus.Fields{
                "method":    req.Method,
                "path":      req.URL.Path,
                "status":    status,
                "duration":  time.Since(start),
                "client_ip": c.RealIP(),
                "user_id":   userID(c),
            })

            switch {
            case status >= 500:
                entry.Error("Request failed")
            case status >= 400:
                entry.Warn("Request rejected")
            default:
                entry.Info("Request processed")
            }
            return nil
        }
    }
}
