package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rana-Faraz/authbase/internal/auth"
	"github.com/Rana-Faraz/authbase/internal/common"
	"github.com/Rana-Faraz/authbase/internal/database"
)

func newTestStore(t *testing.T) *database.Store {
	t.Helper()

	store, err := database.Open(database.Config{DSN: "file::memory:?cache=shared", MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.RunMigrations(context.Background()))
	return store
}

func newTestAuth(t *testing.T, opts auth.Options) *auth.Auth {
	t.Helper()

	if opts.Store == nil {
		opts.Store = newTestStore(t)
	}
	if opts.Secret == "" {
		opts.Secret = "test-secret"
	}

	a, err := auth.New(opts)
	require.NoError(t, err)
	return a
}

func TestNew_MissingSecretFailsFast(t *testing.T) {
	store := newTestStore(t)

	_, err := auth.New(auth.Options{Store: store})
	require.ErrorIs(t, err, auth.ErrMissingSecret)
}

func TestNew_MissingStore(t *testing.T) {
	_, err := auth.New(auth.Options{Secret: "s"})
	require.ErrorIs(t, err, auth.ErrMissingStore)
}

func TestNew_SchemaAgreement(t *testing.T) {
	// The connector and the auth service must agree on the four credential
	// storage tables.
	store := newTestStore(t)

	a := newTestAuth(t, auth.Options{Store: store})
	require.NotNil(t, a)

	want := map[string]bool{"user": false, "session": false, "account": false, "verification": false}
	for _, name := range store.Tables() {
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, seen := range want {
		assert.True(t, seen, "store schema missing table %q", name)
	}
}

func TestSignUpEmail(t *testing.T) {
	a := newTestAuth(t, auth.Options{})
	ctx := context.Background()

	user, session, err := a.SignUpEmail(ctx, auth.SignUpParams{
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	require.NotNil(t, session)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.False(t, user.EmailVerified)
	assert.Equal(t, user.ID, session.UserID)
	assert.NotEmpty(t, session.Token)
	assert.True(t, session.ExpiresAt.After(time.Now()))
}

func TestSignUpEmail_Validation(t *testing.T) {
	a := newTestAuth(t, auth.Options{})
	ctx := context.Background()

	_, _, err := a.SignUpEmail(ctx, auth.SignUpParams{Name: "x", Email: "not-an-email", Password: "long-enough"})
	assert.ErrorIs(t, err, common.ErrorInvalidEmail)

	_, _, err = a.SignUpEmail(ctx, auth.SignUpParams{Name: "x", Email: "x@example.com", Password: "short"})
	assert.ErrorIs(t, err, common.ErrorWeakPassword)
}

func TestSignUpEmail_DuplicateEmail(t *testing.T) {
	a := newTestAuth(t, auth.Options{})
	ctx := context.Background()

	_, _, err := a.SignUpEmail(ctx, auth.SignUpParams{Name: "a", Email: "dup@example.com", Password: "password1"})
	require.NoError(t, err)

	_, _, err = a.SignUpEmail(ctx, auth.SignUpParams{Name: "b", Email: "dup@example.com", Password: "password2"})
	assert.ErrorIs(t, err, common.ErrorEmailAlreadyExists)
}

func TestSignInEmail(t *testing.T) {
	a := newTestAuth(t, auth.Options{})
	ctx := context.Background()

	_, _, err := a.SignUpEmail(ctx, auth.SignUpParams{Name: "Bob", Email: "bob@example.com", Password: "hunter22hunter"})
	require.NoError(t, err)

	user, session, err := a.SignInEmail(ctx, auth.SignInParams{Email: "bob@example.com", Password: "hunter22hunter"})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", user.Email)
	assert.NotEmpty(t, session.Token)
}

func TestSignInEmail_BadCredentials(t *testing.T) {
	a := newTestAuth(t, auth.Options{})
	ctx := context.Background()

	_, _, err := a.SignUpEmail(ctx, auth.SignUpParams{Name: "Eve", Email: "eve@example.com", Password: "password1"})
	require.NoError(t, err)

	_, _, err = a.SignInEmail(ctx, auth.SignInParams{Email: "eve@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, common.ErrorInvalidCredentials)

	// unknown email is indistinguishable from a wrong password
	_, _, err = a.SignInEmail(ctx, auth.SignInParams{Email: "nobody@example.com", Password: "whatever1"})
	assert.ErrorIs(t, err, common.ErrorInvalidCredentials)
}

func TestGetSession(t *testing.T) {
	a := newTestAuth(t, auth.Options{})
	ctx := context.Background()

	user, created, err := a.SignUpEmail(ctx, auth.SignUpParams{Name: "Cy", Email: "cy@example.com", Password: "password1"})
	require.NoError(t, err)

	session, got, err := a.GetSession(ctx, created.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, session.ID)
	assert.Equal(t, user.ID, got.ID)
}

func TestGetSession_UnknownToken(t *testing.T) {
	a := newTestAuth(t, auth.Options{})

	_, _, err := a.GetSession(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, _, err = a.GetSession(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestGetSession_ExpiredIsReaped(t *testing.T) {
	a := newTestAuth(t, auth.Options{SessionValidity: time.Nanosecond})
	ctx := context.Background()

	_, created, err := a.SignUpEmail(ctx, auth.SignUpParams{Name: "Old", Email: "old@example.com", Password: "password1"})
	require.NoError(t, err)

	_, _, err = a.GetSession(ctx, created.Token)
	require.ErrorIs(t, err, common.ErrorSessionExpired)

	// the expired session is gone; a retry is plain unauthorized
	_, _, err = a.GetSession(ctx, created.Token)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestSignOut(t *testing.T) {
	a := newTestAuth(t, auth.Options{})
	ctx := context.Background()

	_, created, err := a.SignUpEmail(ctx, auth.SignUpParams{Name: "So", Email: "so@example.com", Password: "password1"})
	require.NoError(t, err)

	require.NoError(t, a.SignOut(ctx, created.Token))

	_, _, err = a.GetSession(ctx, created.Token)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	// signing out again is a no-op
	assert.NoError(t, a.SignOut(ctx, created.Token))
}

func TestSignOutAll(t *testing.T) {
	a := newTestAuth(t, auth.Options{})
	ctx := context.Background()

	user, first, err := a.SignUpEmail(ctx, auth.SignUpParams{Name: "Ma", Email: "ma@example.com", Password: "password1"})
	require.NoError(t, err)
	_, second, err := a.SignInEmail(ctx, auth.SignInParams{Email: "ma@example.com", Password: "password1"})
	require.NoError(t, err)

	require.NoError(t, a.SignOutAll(ctx, user.ID))

	_, _, err = a.GetSession(ctx, first.Token)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	_, _, err = a.GetSession(ctx, second.Token)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestVerifyEmail(t *testing.T) {
	store := newTestStore(t)
	a := newTestAuth(t, auth.Options{Store: store})
	ctx := context.Background()

	_, _, err := a.SignUpEmail(ctx, auth.SignUpParams{Name: "Ve", Email: "ve@example.com", Password: "password1"})
	require.NoError(t, err)

	verification, err := a.IssueVerification(ctx, "ve@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, verification.Value)

	require.NoError(t, a.VerifyEmail(ctx, "ve@example.com", verification.Value))

	user, err := store.Users().GetByEmail(ctx, "ve@example.com")
	require.NoError(t, err)
	assert.True(t, user.EmailVerified)

	// the verification row is single-use
	err = a.VerifyEmail(ctx, "ve@example.com", verification.Value)
	assert.ErrorIs(t, err, common.ErrorVerificationNotFound)
}

func TestVerifyEmail_WrongValue(t *testing.T) {
	a := newTestAuth(t, auth.Options{})
	ctx := context.Background()

	_, _, err := a.SignUpEmail(ctx, auth.SignUpParams{Name: "Wv", Email: "wv@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = a.IssueVerification(ctx, "wv@example.com")
	require.NoError(t, err)

	err = a.VerifyEmail(ctx, "wv@example.com", "bogus")
	assert.ErrorIs(t, err, common.ErrorVerificationNotFound)
}

func TestVerifyEmail_Expired(t *testing.T) {
	a := newTestAuth(t, auth.Options{VerificationValidity: time.Nanosecond})
	ctx := context.Background()

	_, _, err := a.SignUpEmail(ctx, auth.SignUpParams{Name: "Ex", Email: "ex@example.com", Password: "password1"})
	require.NoError(t, err)

	verification, err := a.IssueVerification(ctx, "ex@example.com")
	require.NoError(t, err)

	err = a.VerifyEmail(ctx, "ex@example.com", verification.Value)
	assert.ErrorIs(t, err, common.ErrorVerificationExpired)
}

func TestIssueVerification_UnknownEmail(t *testing.T) {
	a := newTestAuth(t, auth.Options{})

	_, err := a.IssueVerification(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestVerificationURL(t *testing.T) {
	a := newTestAuth(t, auth.Options{BaseURL: "https://auth.example.com/"})
	ctx := context.Background()

	_, _, err := a.SignUpEmail(ctx, auth.SignUpParams{Name: "Li", Email: "li@example.com", Password: "password1"})
	require.NoError(t, err)

	verification, err := a.IssueVerification(ctx, "li@example.com")
	require.NoError(t, err)

	url := a.VerificationURL(verification)
	assert.Equal(t,
		"https://auth.example.com/api/auth/verify-email?email=li%40example.com&token="+verification.Value,
		url)
}

func TestIsTrustedOrigin(t *testing.T) {
	a := newTestAuth(t, auth.Options{TrustedOrigins: []string{"https://app.example.com"}})

	assert.True(t, a.IsTrustedOrigin("https://app.example.com"))
	assert.False(t, a.IsTrustedOrigin("https://evil.example.com"))
}

func TestAuthTokens(t *testing.T) {
	a := newTestAuth(t, auth.Options{})

	tok, err := a.SignToken("user-1")
	require.NoError(t, err)

	uid, err := a.VerifyToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", uid)
}
