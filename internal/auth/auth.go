// Package auth binds the database handle, the signing secret, and the
// trusted origin list into the authentication service: email/password
// sign-in, server-persisted sessions, email verification, and a
// secret-keyed token signer.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/Rana-Faraz/authbase/internal/accounts"
	"github.com/Rana-Faraz/authbase/internal/common"
	"github.com/Rana-Faraz/authbase/internal/database"
	"github.com/Rana-Faraz/authbase/internal/logging"
	"github.com/Rana-Faraz/authbase/internal/sessions"
	"github.com/Rana-Faraz/authbase/internal/users"
	"github.com/Rana-Faraz/authbase/internal/verifications"
)

var (
	// ErrMissingSecret is returned by New when no signing secret is
	// configured. Construction fails rather than deferring to first use.
	ErrMissingSecret = errors.New("auth: signing secret is required")

	// ErrMissingStore is returned by New when no database store is given.
	ErrMissingStore = errors.New("auth: database store is required")

	// ErrSchemaMismatch is returned by New when the store's schema does not
	// name every table the service persists into.
	ErrSchemaMismatch = errors.New("auth: store schema is missing required tables")
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// requiredTables are the tables the service reads and writes. New checks
// them against the store's schema descriptor.
func requiredTables() []string {
	return []string{users.TableName, sessions.TableName, accounts.TableName, verifications.TableName}
}

// Options configures New. Store and Secret are required; everything else
// has a sensible default.
type Options struct {
	Store          *database.Store
	Secret         string
	BaseURL        string
	TrustedOrigins []string

	SessionValidity      time.Duration
	TokenValidity        time.Duration
	VerificationValidity time.Duration
	MinPasswordLength    int

	Logger logging.Logger
}

// Auth is the authentication service. It is immutable after New and safe
// for concurrent use.
type Auth struct {
	store          *database.Store
	secret         []byte
	baseURL        string
	trustedOrigins []string
	trusted        map[string]struct{}

	sessionValidity      time.Duration
	tokenValidity        time.Duration
	verificationValidity time.Duration
	minPasswordLength    int

	logger logging.Logger
}

// New validates the options and returns a configured service. It fails fast
// on a missing secret or store, and when the store's schema does not carry
// the tables the service requires.
func New(opts Options) (*Auth, error) {
	if opts.Store == nil {
		return nil, ErrMissingStore
	}
	if opts.Secret == "" {
		return nil, ErrMissingSecret
	}

	if opts.SessionValidity <= 0 {
		opts.SessionValidity = 7 * 24 * time.Hour
	}
	if opts.TokenValidity <= 0 {
		opts.TokenValidity = 15 * time.Minute
	}
	if opts.VerificationValidity <= 0 {
		opts.VerificationValidity = time.Hour
	}
	if opts.MinPasswordLength <= 0 {
		opts.MinPasswordLength = 8
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewJSONLogger()
	}

	have := make(map[string]struct{})
	for _, name := range opts.Store.Tables() {
		have[name] = struct{}{}
	}
	for _, name := range requiredTables() {
		if _, ok := have[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrSchemaMismatch, name)
		}
	}

	trusted := make(map[string]struct{}, len(opts.TrustedOrigins))
	for _, o := range opts.TrustedOrigins {
		trusted[o] = struct{}{}
	}

	return &Auth{
		store:                opts.Store,
		secret:               []byte(opts.Secret),
		baseURL:              opts.BaseURL,
		trustedOrigins:       opts.TrustedOrigins,
		trusted:              trusted,
		sessionValidity:      opts.SessionValidity,
		tokenValidity:        opts.TokenValidity,
		verificationValidity: opts.VerificationValidity,
		minPasswordLength:    opts.MinPasswordLength,
		logger:               opts.Logger.With("module", "auth"),
	}, nil
}

// TrustedOrigins returns the configured cross-origin allow list.
func (a *Auth) TrustedOrigins() []string { return a.trustedOrigins }

// IsTrustedOrigin reports whether origin is on the allow list.
func (a *Auth) IsTrustedOrigin(origin string) bool {
	_, ok := a.trusted[origin]
	return ok
}

// SignUpParams are the inputs to SignUpEmail. IPAddress and UserAgent are
// optional audit fields recorded on the opened session.
type SignUpParams struct {
	Name      string
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

// SignInParams are the inputs to SignInEmail.
type SignInParams struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

// SignUpEmail registers a new email/password user and opens a session for
// it. The user row, the credential account row holding the password hash,
// and the session are created in one transaction.
func (a *Auth) SignUpEmail(ctx context.Context, p SignUpParams) (*users.User, *sessions.Session, error) {
	if err := a.validateEmail(p.Email); err != nil {
		return nil, nil, err
	}
	if err := a.validatePassword(p.Password); err != nil {
		return nil, nil, err
	}

	exists, err := a.store.Users().EmailExists(ctx, p.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("checking email: %w", err)
	}
	if exists {
		return nil, nil, common.ErrorEmailAlreadyExists
	}

	hash, err := HashPassword(p.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	user := &users.User{
		ID:        uuid.NewString(),
		Name:      p.Name,
		Email:     p.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	session, err := a.newSession(user.ID, p.IPAddress, p.UserAgent, now)
	if err != nil {
		return nil, nil, err
	}

	account := &accounts.Account{
		ID:         uuid.NewString(),
		AccountID:  user.ID,
		ProviderID: accounts.ProviderCredential,
		UserID:     user.ID,
		Password:   hash,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = a.store.RunInTx(ctx, func(ctx context.Context, tx bun.IDB) error {
		if err := users.NewBunRepository(tx).Create(ctx, user); err != nil {
			return err
		}
		if err := accounts.NewBunRepository(tx).Create(ctx, account); err != nil {
			return err
		}
		return sessions.NewBunRepository(tx).Create(ctx, session)
	})
	if err != nil {
		// A concurrent sign-up can slip past the EmailExists check and
		// trip the unique index inside the transaction instead.
		if errors.Is(err, common.ErrorEmailAlreadyExists) {
			return nil, nil, common.ErrorEmailAlreadyExists
		}
		return nil, nil, fmt.Errorf("creating user: %w", err)
	}

	a.logger.Info(ctx, "user signed up", "user_id", user.ID)
	return user, session, nil
}

// SignInEmail verifies the credentials and opens a new session. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (a *Auth) SignInEmail(ctx context.Context, p SignInParams) (*users.User, *sessions.Session, error) {
	user, err := a.store.Users().GetByEmail(ctx, p.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorInvalidCredentials
		}
		return nil, nil, common.ErrorInternal
	}

	account, err := a.store.Accounts().GetByUserAndProvider(ctx, user.ID, accounts.ProviderCredential)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorInvalidCredentials
		}
		return nil, nil, common.ErrorInternal
	}

	if !CheckPassword(account.Password, p.Password) {
		return nil, nil, common.ErrorInvalidCredentials
	}

	now := time.Now().UTC()
	session, err := a.newSession(user.ID, p.IPAddress, p.UserAgent, now)
	if err != nil {
		return nil, nil, err
	}
	if err := a.store.Sessions().Create(ctx, session); err != nil {
		return nil, nil, common.ErrorInternal
	}

	a.logger.Info(ctx, "user signed in", "user_id", user.ID)
	return user, session, nil
}

// SignOut deletes the session identified by token. Signing out an unknown
// token is a no-op.
func (a *Auth) SignOut(ctx context.Context, token string) error {
	err := a.store.Sessions().DeleteByToken(ctx, token)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return err
	}
	return nil
}

// SignOutAll revokes every session belonging to userID.
func (a *Auth) SignOutAll(ctx context.Context, userID string) error {
	return a.store.Sessions().DeleteByUser(ctx, userID)
}

// GetSession resolves a session token to the session and its user. Expired
// sessions are reaped on sight and reported as common.ErrorSessionExpired;
// unknown tokens yield common.ErrorUnauthorized.
func (a *Auth) GetSession(ctx context.Context, token string) (*sessions.Session, *users.User, error) {
	if token == "" {
		return nil, nil, common.ErrorUnauthorized
	}

	session, err := a.store.Sessions().GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, common.ErrorInternal
	}

	if session.Expired(time.Now().UTC()) {
		_ = a.store.Sessions().DeleteByToken(ctx, session.Token)
		return nil, nil, common.ErrorSessionExpired
	}

	user, err := a.store.Users().GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, common.ErrorInternal
	}

	return session, user, nil
}

// IssueVerification creates a fresh email verification for the given
// address, invalidating any earlier outstanding ones. The returned row
// carries the value to be delivered out of band.
func (a *Auth) IssueVerification(ctx context.Context, email string) (*verifications.Verification, error) {
	if _, err := a.store.Users().GetByEmail(ctx, email); err != nil {
		return nil, err
	}

	value, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}

	now := time.Now().UTC()
	verification := &verifications.Verification{
		ID:         uuid.NewString(),
		Identifier: email,
		Value:      value,
		ExpiresAt:  now.Add(a.verificationValidity),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = a.store.RunInTx(ctx, func(ctx context.Context, tx bun.IDB) error {
		repo := verifications.NewBunRepository(tx)
		if err := repo.DeleteByIdentifier(ctx, email); err != nil {
			return err
		}
		return repo.Create(ctx, verification)
	})
	if err != nil {
		return nil, fmt.Errorf("issuing verification: %w", err)
	}

	return verification, nil
}

// VerificationURL builds the link that delivers v to its user, rooted at the
// configured base URL.
func (a *Auth) VerificationURL(v *verifications.Verification) string {
	return fmt.Sprintf("%s/api/auth/verify-email?email=%s&token=%s",
		strings.TrimRight(a.baseURL, "/"), url.QueryEscape(v.Identifier), url.QueryEscape(v.Value))
}

// VerifyEmail consumes a verification value and marks the user's email as
// verified. The verification row is single-use.
func (a *Auth) VerifyEmail(ctx context.Context, email, value string) error {
	verification, err := a.store.Verifications().Get(ctx, email, value)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorVerificationNotFound
		}
		return common.ErrorInternal
	}

	if verification.Expired(time.Now().UTC()) {
		_ = a.store.Verifications().Delete(ctx, verification.ID)
		return common.ErrorVerificationExpired
	}

	user, err := a.store.Users().GetByEmail(ctx, email)
	if err != nil {
		return common.ErrorInternal
	}

	return a.store.RunInTx(ctx, func(ctx context.Context, tx bun.IDB) error {
		if err := users.NewBunRepository(tx).SetEmailVerified(ctx, user.ID); err != nil {
			return err
		}
		return verifications.NewBunRepository(tx).Delete(ctx, verification.ID)
	})
}

// SignToken mints a short-lived JWT for userID using the configured secret.
func (a *Auth) SignToken(userID string) (string, error) {
	return SignToken(userID, a.secret, a.tokenValidity)
}

// VerifyToken validates a JWT minted by SignToken and returns the user id.
func (a *Auth) VerifyToken(token string) (string, error) {
	return VerifyToken(token, a.secret)
}

func (a *Auth) newSession(userID, ip, userAgent string, now time.Time) (*sessions.Session, error) {
	token, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &sessions.Session{
		ID:        uuid.NewString(),
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(a.sessionValidity),
		IPAddress: ip,
		UserAgent: userAgent,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (a *Auth) validateEmail(email string) error {
	if email == "" || !emailRegex.MatchString(email) {
		return common.ErrorInvalidEmail
	}
	return nil
}

func (a *Auth) validatePassword(password string) error {
	if len(password) < a.minPasswordLength {
		return common.ErrorWeakPassword
	}
	return nil
}
