package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/pkg/util/errorutil"
)

func TestRegisterWithValidSecretCreatesActiveAdmin(t *testing.T) {
	f := newFixture(t, testAdminSecret)
	ctx := context.Background()

	user, issued, err := f.auth.Register(ctx, RegisterInput{
		Email:     "  Root@Example.com ",
		Password:  "hunter22",
		Name:      strPtr("Root"),
		SecretKey: testAdminSecret,
	})
	require.NoError(t, err)

	assert.Equal(t, "root@example.com", user.Email)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "hunter22", user.PasswordHash)
	require.NotNil(t, issued)
	assert.NotEmpty(t, issued.Token)

	authed, session, err := f.auth.Authenticate(ctx, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
	assert.Equal(t, issued.Session.ID, session.ID)

	assert.Contains(t, f.events.types(), events.EventUserRegistered)
}

func TestRegisterRejections(t *testing.T) {
	tests := []struct {
		name        string
		adminSecret string
		key         string
		want        error
	}{
		{name: "no key", adminSecret: testAdminSecret, key: "", want: errorutil.ErrRegistrationDisabled},
		{name: "wrong key", adminSecret: testAdminSecret, key: "guess", want: errorutil.ErrRegistrationDisabled},
		{name: "prefix of key", adminSecret: testAdminSecret, key: testAdminSecret[:3], want: errorutil.ErrRegistrationDisabled},
		{name: "server secret unconfigured", adminSecret: "", key: "anything", want: errorutil.ErrAdminSecretUnconfigured},
		{name: "no key and no secret", adminSecret: "", key: "", want: errorutil.ErrRegistrationDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.adminSecret)
			ctx := context.Background()

			_, _, err := f.auth.Register(ctx, RegisterInput{Email: "x@example.com", Password: "secret1", SecretKey: tt.key})
			assert.ErrorIs(t, err, tt.want)

			users, err := f.users.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, users, "nothing may be created")
			assert.Zero(t, f.sessions.Len())
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t, testAdminSecret)
	f.seedUser(t, "taken@example.com", "secret1", domain.RoleUser, false)

	_, _, err := f.auth.Register(context.Background(), RegisterInput{
		Email:     "TAKEN@example.com",
		Password:  "secret1",
		SecretKey: testAdminSecret,
	})
	assert.ErrorIs(t, err, errorutil.ErrEmailExists)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t, testAdminSecret)
	f.seedUser(t, "alice@example.com", "correct-horse", domain.RoleUser, true)
	ctx := context.Background()

	_, _, wrongPassword := f.auth.Login(ctx, "alice@example.com", "wrong-horse")
	_, _, unknownEmail := f.auth.Login(ctx, "nobody@example.com", "correct-horse")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.ErrorIs(t, wrongPassword, errorutil.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, errorutil.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Zero(t, f.sessions.Len())
}

func TestLoginInactiveAccount(t *testing.T) {
	f := newFixture(t, testAdminSecret)
	f.seedUser(t, "pending@example.com", "secret1", domain.RoleUser, false)
	ctx := context.Background()

	_, _, err := f.auth.Login(ctx, "pending@example.com", "secret1")
	assert.ErrorIs(t, err, errorutil.ErrAccountDisabled)

	_, _, err = f.auth.Login(ctx, "pending@example.com", "not-it")
	assert.ErrorIs(t, err, errorutil.ErrInvalidCredentials, "disabled state must not leak without the password")
}

func TestRegisterThenLoginReturnsSameUser(t *testing.T) {
	f := newFixture(t, testAdminSecret)
	ctx := context.Background()

	registered, _, err := f.auth.Register(ctx, RegisterInput{
		Email:     "a@x.com",
		Password:  "secret1",
		Name:      strPtr("A"),
		SecretKey: testAdminSecret,
	})
	require.NoError(t, err)

	loggedIn, issued, err := f.auth.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, loggedIn.ID)
	assert.Equal(t, domain.RoleAdmin, loggedIn.Role)
	assert.True(t, loggedIn.IsActive)
	assert.NotEmpty(t, issued.Token)

	_, _, err = f.auth.Login(ctx, "a@x.com", "wrongpw")
	assert.ErrorIs(t, err, errorutil.ErrInvalidCredentials)
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	f := newFixture(t, testAdminSecret)
	f.seedUser(t, "bob@example.com", "secret1", domain.RoleUser, true)
	ctx := context.Background()

	_, issued, err := f.auth.Login(ctx, "bob@example.com", "secret1")
	require.NoError(t, err)

	tampered := issued.Token + "x"
	for _, token := range []string{"", "1", "not-a-token", tampered} {
		_, _, err := f.auth.Authenticate(ctx, token)
		assert.ErrorIs(t, err, errorutil.ErrUnauthorized, "token %q", token)
	}

	foreign := auth.NewTokenManager("another-secret", "account-service-test")
	forged, _, err := foreign.Issue(issued.Session)
	require.NoError(t, err)
	_, _, err = f.auth.Authenticate(ctx, forged)
	assert.ErrorIs(t, err, errorutil.ErrUnauthorized)
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newFixture(t, testAdminSecret)
	f.seedUser(t, "bob@example.com", "secret1", domain.RoleUser, true)
	ctx := context.Background()

	user, issued, err := f.auth.Login(ctx, "bob@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(ctx, &auth.Principal{User: user, Session: issued.Session}))

	_, _, err = f.auth.Authenticate(ctx, issued.Token)
	assert.ErrorIs(t, err, errorutil.ErrUnauthorized)
	assert.ErrorIs(t, f.auth.Logout(ctx, nil), errorutil.ErrUnauthorized)
}

func TestDeactivateRevokesSessionsAndActivateIsIdempotent(t *testing.T) {
	f := newFixture(t, testAdminSecret)
	admin := f.seedUser(t, "admin@example.com", "secret1", domain.RoleAdmin, true)
	target := f.seedUser(t, "carol@example.com", "secret1", domain.RoleUser, true)
	ctx := context.Background()

	_, issued, err := f.auth.Login(ctx, "carol@example.com", "secret1")
	require.NoError(t, err)

	updated, err := f.auth.Deactivate(ctx, admin, target.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	_, _, err = f.auth.Authenticate(ctx, issued.Token)
	assert.ErrorIs(t, err, errorutil.ErrUnauthorized)

	again, err := f.auth.Deactivate(ctx, admin, target.ID)
	require.NoError(t, err)
	assert.False(t, again.IsActive)

	for i := 0; i < 2; i++ {
		activated, err := f.auth.Activate(ctx, admin, target.ID)
		require.NoError(t, err)
		assert.True(t, activated.IsActive)
	}

	_, err = f.auth.Activate(ctx, admin, 9999)
	assert.ErrorIs(t, err, errorutil.ErrNotFound)
	_, err = f.auth.Deactivate(ctx, admin, 9999)
	assert.ErrorIs(t, err, errorutil.ErrNotFound)

	types := f.events.types()
	assert.Contains(t, types, events.EventUserActivated)
	assert.Contains(t, types, events.EventUserDeactivated)
}

func TestAuthenticateInactiveUserWithLiveSession(t *testing.T) {
	f := newFixture(t, testAdminSecret)
	user := f.seedUser(t, "dave@example.com", "secret1", domain.RoleUser, true)
	ctx := context.Background()

	_, issued, err := f.auth.Login(ctx, "dave@example.com", "secret1")
	require.NoError(t, err)

	// Flip the flag behind the service's back so the session survives.
	user.IsActive = false
	require.NoError(t, f.store.Update(ctx, user))

	_, _, err = f.auth.Authenticate(ctx, issued.Token)
	assert.ErrorIs(t, err, errorutil.ErrAccountDisabled)
}

func TestAuthenticateDeletedUser(t *testing.T) {
	f := newFixture(t, testAdminSecret)
	f.seedUser(t, "admin@example.com", "secret1", domain.RoleAdmin, true)
	user := f.seedUser(t, "erin@example.com", "secret1", domain.RoleUser, true)
	ctx := context.Background()

	_, issued, err := f.auth.Login(ctx, "erin@example.com", "secret1")
	require.NoError(t, err)

	_, err = f.store.Delete(ctx, user.ID)
	require.NoError(t, err)

	_, _, err = f.auth.Authenticate(ctx, issued.Token)
	assert.ErrorIs(t, err, errorutil.ErrUnauthorized)
}

func TestEnsureAdminUser(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	created, err := f.auth.EnsureAdminUser(ctx, "", "", "")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = f.auth.EnsureAdminUser(ctx, "Boot@Example.com", "bootstrap", "Boot")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.auth.EnsureAdminUser(ctx, "boot@example.com", "bootstrap", "Boot")
	require.NoError(t, err)
	assert.False(t, created)

	user, _, err := f.auth.Login(ctx, "boot@example.com", "bootstrap")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())
}

func TestSecretsEqual(t *testing.T) {
	assert.True(t, secretsEqual("abc", "abc"))
	assert.False(t, secretsEqual("abc", "abd"))
	assert.False(t, secretsEqual("abc", strings.Repeat("abc", 2)))
}
