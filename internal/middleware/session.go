package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "net/url"
    "time"

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/cinemaflow/internal/model"
    "github.com/iliyamo/cinemaflow/internal/repository"
    "github.com/iliyamo/cinemaflow/internal/utils"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "cinemaflow_session"

// Context keys set by LoadSession.
const (
    userKey      = "user"
    sessionIDKey = "session_id"
)

// SessionChecker reports whether a server-side session is still live.
type SessionChecker interface {
    IsActive(ctx context.Context, id string, userID uint64) (bool, error)
}

// UserLoader resolves the user id stored in a session.
type UserLoader interface {
    GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// LoadSession returns an Echo middleware that resolves the current user
// from the session cookie.  The token must be correctly signed with
// secret, unexpired, and point at a sessions row that is neither revoked
// nor expired; the user is then reloaded from storage on every request
// so a role change takes effect immediately.  A missing or stale cookie
// leaves the request anonymous and clears the cookie.  It never rejects
// a request on its own; RequireLogin and RequireCapability do that.
func LoadSession(secret string, sessions SessionChecker, users UserLoader, log *logrus.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            ck, err := c.Cookie(SessionCookieName)
            if err != nil || ck.Value == "" {
                return next(c)
            }

            claims, err := utils.ParseSessionToken(secret, ck.Value)
            if err != nil {
                ClearSessionCookie(c)
                return next(c)
            }

            ctx := c.Request().Context()
            active, err := sessions.IsActive(ctx, claims.SessionID, claims.UserID)
            if err != nil {
                return fmt.Errorf("check session: %w", err)
            }
            if !active {
                ClearSessionCookie(c)
                return next(c)
            }

            u, err := users.GetByID(ctx, claims.UserID)
            if err != nil {
                if errors.Is(err, repository.ErrUserNotFound) {
                    log.WithField("user_id", claims.UserID).Warn("session for missing user")
                    ClearSessionCookie(c)
                    return next(c)
                }
                return fmt.Errorf("load session user: %w", err)
            }

            c.Set(userKey, u)
            c.Set(sessionIDKey, claims.SessionID)
            return next(c)
        }
    }
}

// CurrentUser returns the authenticated user or nil.
func CurrentUser(c echo.Context) *model.User {
    u, _ := c.Get(userKey).(*model.User)
    return u
}

// CurrentSessionID returns the id of the active session or "".
func CurrentSessionID(c echo.Context) string {
    id, _ := c.Get(sessionIDKey).(string)
    return id
}

// RequireLogin redirects anonymous requests to the login form,
// remembering the requested path in the next parameter.
func RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
    return func(c echo.Context) error {
        if CurrentUser(c) == nil {
            target := "/auth/login?next=" + url.QueryEscape(c.Request().URL.RequestURI())
            return c.Redirect(http.StatusSeeOther, target)
        }
        return next(c)
    }
}

// SetSessionCookie stores token in an HttpOnly, SameSite=Lax cookie that
// expires together with the session.
func SetSessionCookie(c echo.Context, token string, expires time.Time, secure bool) {
    c.SetCookie(&http.Cookie{
        Name:     SessionCookieName,
        Value:    token,
        Path:     "/",
        Expires:  expires,
        MaxAge:   int(time.Until(expires).Seconds()),
        HttpOnly: true,
        Secure:   secure,
        SameSite: http.SameSiteLaxMode,
    })
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c echo.Context) {
    c.SetCookie(&http.Cookie{
        Name:     SessionCookieName,
        Value:    "",
        Path:     "/",
        MaxAge:   -1,
        Expires:  time.Unix(0, 0),
        HttpOnly: true,
        SameSite: http.SameSiteLaxMode,
    })
}
