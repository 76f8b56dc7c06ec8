package utils // package utils provides helper functions for token creation and hashing

import (
    "errors"
    "strconv"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidSessionToken is returned for any token that fails parsing,
// signature, expiry or claim checks.
var ErrInvalidSessionToken = errors.New("invalid session token")

const sessionIssuer = "cinemaflow"

// SessionClaims are the values carried by the session cookie.  UserID
// comes from the standard subject claim and SessionID from the token id,
// which is the primary key of the server-side sessions row.
type SessionClaims struct {
    UserID    uint64
    SessionID string
    ExpiresAt time.Time
}

// NewSessionToken builds and signs an HS256 JWT for a login session.
// The token is only a pointer to the server-side session; revoking the
// sessions row invalidates it even before exp.
func NewSessionToken(secret string, userID uint64, sessionID string, exp time.Time) (string, error) {
    now := time.Now().UTC()
    claims := jwt.RegisteredClaims{
        Issuer:    sessionIssuer,
        Subject:   strconv.FormatUint(userID, 10),
        ID:        sessionID,
        IssuedAt:  jwt.NewNumericDate(now),
        ExpiresAt: jwt.NewNumericDate(exp.UTC()),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    return t.SignedString([]byte(secret))
}

// ParseSessionToken validates the signature, algorithm, issuer and expiry
// of raw and returns its claims.
func ParseSessionToken(secret, raw string) (SessionClaims, error) {
    var claims jwt.RegisteredClaims
    tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
        // Type assert the signing method to HMAC; reject others.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidSessionToken
        }
        return []byte(secret), nil
    }, jwt.WithIssuer(sessionIssuer), jwt.WithExpirationRequired())
    if err != nil || !tok.Valid {
        return SessionClaims{}, ErrInvalidSessionToken
    }
    uid, err := strconv.ParseUint(claims.Subject, 10, 64)
    if err != nil || uid == 0 || claims.ID == "" {
        return SessionClaims{}, ErrInvalidSessionToken
    }
    return SessionClaims{
        UserID:    uid,
        SessionID: claims.ID,
        ExpiresAt: claims.ExpiresAt.Time,
    }, nil
}
