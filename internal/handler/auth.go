package handler

import (
    "context"  // provides context with cancellation for DB calls
    "errors"
    "net/http" // HTTP status codes and primitives
    "net/url"
    "strings"  // string manipulation utilities
    "time"     // timeouts for DB calls
    "unicode/utf8"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4" // Echo framework for HTTP routing
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/cinemaflow/internal/config"     // app configuration
    "github.com/iliyamo/cinemaflow/internal/middleware" // session cookie helpers
    "github.com/iliyamo/cinemaflow/internal/model"
    "github.com/iliyamo/cinemaflow/internal/repository" // DB repositories
    "github.com/iliyamo/cinemaflow/internal/utils"      // helper functions (hashing, token issuing)
)

// Flash texts shown by the auth pages.
const (
    msgCredentialsRequired = "Username and password are required."
    msgUsernameExists      = "Username already exists."
    msgRegistered          = "Registration successful. Please login."
    msgInvalidCredentials  = "Invalid credentials"
    msgUsernameTooLong     = "Username must be at most 80 characters."
    msgPasswordTooLong     = "Password must be at most 72 bytes."
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Pages
    Cfg      config.Config
    Users    UserStore
    Sessions SessionStore
    Log      *logrus.Logger
}

func NewAuthHandler(cfg config.Config, users UserStore, sessions SessionStore, flash *Flasher, log *logrus.Logger) *AuthHandler {
    return &AuthHandler{Pages: Pages{Flash: flash}, Cfg: cfg, Users: users, Sessions: sessions, Log: log}
}

// RegisterForm renders the registration page.
func (h *AuthHandler) RegisterForm(c echo.Context) error {
    return h.render(c, http.StatusOK, "auth/register", "Register", nil)
}

// Register: create a customer account.  An existing username is never
// touched; the visitor is sent back to the form instead.
func (h *AuthHandler) Register(c echo.Context) error {
    username := strings.TrimSpace(c.FormValue("username"))
    password := c.FormValue("password")
    if username == "" || password == "" {
        return h.redirect(c, "/auth/register", msgCredentialsRequired)
    }
    if utf8.RuneCountInString(username) > model.MaxUsernameLen {
        return h.redirect(c, "/auth/register", msgUsernameTooLong)
    }
    if len(password) > model.MaxPasswordBytes {
        return h.redirect(c, "/auth/register", msgPasswordTooLong)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    uid, err := h.Users.Create(ctx, username, password, model.RoleCustomer, h.Cfg.BcryptCost)
    if err != nil {
        if errors.Is(err, repository.ErrUsernameTaken) {
            return h.redirect(c, "/auth/register", msgUsernameExists)
        }
        return err
    }
    h.Log.WithFields(logrus.Fields{"user_id": uid, "username": username}).Info("user registered")
    return h.redirect(c, "/auth/login", msgRegistered)
}

// LoginForm renders the login page.  The next query parameter set by
// RequireLogin is carried through the form.
func (h *AuthHandler) LoginForm(c echo.Context) error {
    data := echo.Map{}
    if next := c.QueryParam("next"); next != "" {
        data["next"] = safeNext(next)
    }
    return h.render(c, http.StatusOK, "auth/login", "Login", data)
}

// Login: verify credentials, open a server-side session and set the
// session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
    username := strings.TrimSpace(c.FormValue("username"))
    password := c.FormValue("password")
    next := c.FormValue("next")

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByUsername(ctx, username)
    if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
        return err
    }
    if u == nil || !utils.VerifyPassword(u.PasswordHash, password) {
        back := "/auth/login"
        if next != "" {
            back += "?next=" + url.QueryEscape(safeNext(next))
        }
        return h.redirect(c, back, msgInvalidCredentials)
    }

    sess := &model.Session{
        ID:        uuid.NewString(),
        UserID:    u.ID,
        ExpiresAt: time.Now().UTC().Add(h.Cfg.SessionTTL),
    }
    if err := h.Sessions.Create(ctx, sess); err != nil {
        return err
    }
    token, err := utils.NewSessionToken(h.Cfg.SecretKey, u.ID, sess.ID, sess.ExpiresAt)
    if err != nil {
        return err
    }
    middleware.SetSessionCookie(c, token, sess.ExpiresAt, h.Cfg.IsProduction())
    h.Log.WithField("user_id", u.ID).Info("user logged in")

    target := "/"
    if next != "" {
        target = safeNext(next)
    }
    return c.Redirect(http.StatusSeeOther, target)
}

// Logout revokes the current session and clears the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
    if sid := middleware.CurrentSessionID(c); sid != "" {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
        defer cancel()
        if err := h.Sessions.Revoke(ctx, sid); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
            return err
        }
    }
    middleware.ClearSessionCookie(c)
    return c.Redirect(http.StatusSeeOther, "/auth/login")
}
