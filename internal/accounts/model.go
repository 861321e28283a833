// Package accounts holds the account table model and its repository. An
// account row links a user to one credential source: either the password
// provider (where the bcrypt hash lives) or an external OAuth provider.
package accounts

import (
	"time"

	"github.com/uptrace/bun"
)

const TableName = "account"

// ProviderCredential is the provider id for email/password accounts.
const ProviderCredential = "credential"

type Account struct {
	bun.BaseModel `bun:"table:account,alias:a"`

	ID         string `bun:"id,pk"`
	AccountID  string `bun:"account_id,notnull"`
	ProviderID string `bun:"provider_id,notnull"`
	UserID     string `bun:"user_id,notnull"`

	// Password holds the bcrypt hash for credential accounts; empty for
	// OAuth accounts.
	Password string `bun:"password,nullzero"`

	// OAuth material, unused for credential accounts.
	AccessToken           string     `bun:"access_token,nullzero"`
	RefreshToken          string     `bun:"refresh_token,nullzero"`
	IDToken               string     `bun:"id_token,nullzero"`
	AccessTokenExpiresAt  *time.Time `bun:"access_token_expires_at,nullzero"`
	RefreshTokenExpiresAt *time.Time `bun:"refresh_token_expires_at,nullzero"`
	Scope                 string     `bun:"scope,nullzero"`

	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
