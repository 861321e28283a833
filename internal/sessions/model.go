// Package sessions holds the session table model and its repository.
package sessions

import (
	"time"

	"github.com/uptrace/bun"
)

const TableName = "session"

// Session is a server-persisted record identifying an authenticated user
// across requests. Token is the opaque value handed to the client; IPAddress
// and UserAgent are audit fields captured at sign-in.
type Session struct {
	bun.BaseModel `bun:"table:session,alias:s"`

	ID        string    `bun:"id,pk"`
	Token     string    `bun:"token,notnull,unique"`
	UserID    string    `bun:"user_id,notnull"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
	IPAddress string    `bun:"ip_address,nullzero"`
	UserAgent string    `bun:"user_agent,nullzero"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
