// Package verifications holds the verification table model and its
// repository. Rows are single-use: issued with an expiry, consumed (deleted)
// when the value is presented back.
package verifications

import (
	"time"

	"github.com/uptrace/bun"
)

const TableName = "verification"

// Verification pairs an identifier (an email address) with a random value
// sent out of band.
type Verification struct {
	bun.BaseModel `bun:"table:verification,alias:v"`

	ID         string    `bun:"id,pk"`
	Identifier string    `bun:"identifier,notnull"`
	Value      string    `bun:"value,notnull"`
	ExpiresAt  time.Time `bun:"expires_at,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}

// Expired reports whether the verification is past its expiry.
func (v *Verification) Expired(now time.Time) bool {
	return !v.ExpiresAt.After(now)
}
