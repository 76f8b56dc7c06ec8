package model

import (
    "strings"
    "time"
)

// User represents an application user record as stored in the
// `users` table.  Each field corresponds to a column in the
// database.  Users are created at registration and never deleted.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  PasswordHash – bcrypt hashed password.
//  Role         – authorization tier (customer, manager or admin).
//  CreatedAt    – timestamp of creation.
type User struct {
    ID           uint64    // users.id
    Username     string    // users.username
    PasswordHash string    // users.password_hash
    Role         Role      // users.role
    CreatedAt    time.Time // users.created_at
}

// CanManageCatalog reports whether the user may create movies, halls
// and shows.  Templates use it to decide which admin links to show.
func (u *User) CanManageCatalog() bool {
    return u != nil && u.Role.Can(CapManageCatalog)
}

// Credential limits.  Usernames are bounded by the users.username
// column; bcrypt only accepts passwords of up to 72 bytes.
const (
    MaxUsernameLen   = 80
    MaxPasswordBytes = 72
)

// Role is the authorization tier stored in users.role.
type Role string

const (
    RoleCustomer Role = "customer"
    RoleManager  Role = "manager"
    RoleAdmin    Role = "admin"
)

// Capability names a single permission granted by a Role.
type Capability string

const (
    CapBook          Capability = "book"
    CapManageCatalog Capability = "manage_catalog"
    CapViewDashboard Capability = "view_dashboard"
)

var roleCapabilities = map[Role]map[Capability]bool{
    RoleCustomer: {CapBook: true},
    RoleManager:  {CapBook: true, CapManageCatalog: true, CapViewDashboard: true},
    RoleAdmin:    {CapBook: true, CapManageCatalog: true, CapViewDashboard: true},
}

// ParseRole normalizes a stored role name.  Unknown names are reported
// with ok=false so callers never grant privileges to a typo.
func ParseRole(s string) (Role, bool) {
    r := Role(strings.ToLower(strings.TrimSpace(s)))
    if _, ok := roleCapabilities[r]; !ok {
        return "", false
    }
    return r, true
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
    _, ok := roleCapabilities[r]
    return ok
}

// Can reports whether the role grants the capability.  Unknown roles
// grant nothing.
func (r Role) Can(c Capability) bool {
    return roleCapabilities[r][c]
}

func (r Role) String() string { return string(r) }

// Session models an entry in the `sessions` table.  The ID is the
// `jti` claim of the session cookie; the row is what makes the session
// server-side, since logout revokes it regardless of the cookie.
//
// Fields:
//  ID        – UUID of the session.
//  UserID    – owner of the session.
//  ExpiresAt – expiration timestamp.
//  RevokedAt – when the session was ended (nil while active).
//  CreatedAt – timestamp of creation.
type Session struct {
    ID        string     // sessions.id
    UserID    uint64     // sessions.user_id
    ExpiresAt time.Time  // sessions.expires_at
    RevokedAt *time.Time // sessions.revoked_at (nullable)
    CreatedAt time.Time  // sessions.created_at
}
