package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/cinemaflow/internal/model"
)

// SessionRepo persists login sessions.  The row id is the jti of the
// session cookie.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create inserts a session row.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (id, user_id, expires_at) VALUES (?,?,?)",
		s.ID, s.UserID, s.ExpiresAt.UTC())
	if err != nil && isForeignKey(err) {
		return ErrInvalidReference
	}
	return err
}

// IsActive reports whether the session exists for userID and is neither
// revoked nor expired.
func (r *SessionRepo) IsActive(ctx context.Context, id string, userID uint64) (bool, error) {
	var (
		owner     uint64
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, expires_at, revoked_at FROM sessions WHERE id=? LIMIT 1",
		id).Scan(&owner, &expiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if owner != userID || revokedAt.Valid {
		return false, nil
	}
	return time.Now().UTC().Before(expiresAt), nil
}

// Revoke marks a session as ended.  Revoking an unknown or already
// revoked session returns ErrSessionNotFound.
func (r *SessionRepo) Revoke(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET revoked_at=UTC_TIMESTAMP() WHERE id=? AND revoked_at IS NULL", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}
