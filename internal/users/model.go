// Package users holds the user table model and its repository.
package users

import (
	"time"

	"github.com/uptrace/bun"
)

// TableName is the relational table backing this package.
const TableName = "user"

// User is an application account holder. Image is an object-storage key or
// URL for the profile picture and may be empty.
type User struct {
	bun.BaseModel `bun:"table:user,alias:u"`

	ID            string    `bun:"id,pk"`
	Name          string    `bun:"name,notnull"`
	Email         string    `bun:"email,notnull,unique"`
	EmailVerified bool      `bun:"email_verified,notnull,default:false"`
	Image         string    `bun:"image,nullzero"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,notnull"`
}
