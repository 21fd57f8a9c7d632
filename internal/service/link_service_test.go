package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"hirelane/api/internal/google"
	"hirelane/api/internal/models"
	"hirelane/api/internal/security"
)

type linkFixture struct {
	*authFixture
	link *LinkService
}

func newLinkFixture(t *testing.T) *linkFixture {
	t.Helper()
	f := newAuthFixture(t)
	link := NewLinkService(f.users, f.links, f.tokenSvc, f.creds, f.sessions, f.migrator, zerolog.Nop())
	return &linkFixture{authFixture: f, link: link}
}

func googleProfile(email, sub string) google.Profile {
	return google.Profile{
		SubjectID:     sub,
		Email:         email,
		EmailVerified: true,
		GivenName:     "Ada",
		FamilyName:    "Lovelace",
	}
}

func TestGoogleSignInCreatesNewUser(t *testing.T) {
	ctx := context.Background()
	f := newLinkFixture(t)

	result, err := f.link.SignIn(ctx, googleProfile("ada@example.com", "sub-1"))
	require.NoError(t, err)
	require.True(t, result.IsNewUser)
	require.Nil(t, result.LinkRequired)
	require.True(t, result.User.EmailVerified)
	require.True(t, result.User.IsActive)
	require.NotEmpty(t, result.Session.Token)

	// Guest applications under that email were claimed.
	require.Len(t, f.migrator.calls, 1)

	// The next sign-in resolves through the stored link.
	again, err := f.link.SignIn(ctx, googleProfile("ada@example.com", "sub-1"))
	require.NoError(t, err)
	require.False(t, again.IsNewUser)
	require.Equal(t, result.User.ID, again.User.ID)
}

func TestGoogleSignInEmailChangeStillResolvesLink(t *testing.T) {
	ctx := context.Background()
	f := newLinkFixture(t)

	result, err := f.link.SignIn(ctx, googleProfile("ada@example.com", "sub-1"))
	require.NoError(t, err)

	// The provider identity wins even if the Google email changed since.
	again, err := f.link.SignIn(ctx, googleProfile("renamed@example.com", "sub-1"))
	require.NoError(t, err)
	require.Equal(t, result.User.ID, again.User.ID)
}

func TestGoogleSignInCollisionRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	f := newLinkFixture(t)

	digest, err := security.HashPassword("s3cretpass")
	require.NoError(t, err)
	require.NoError(t, f.users.Create(ctx, models.User{
		ID: "u-1", Email: "ada@example.com", EmailVerified: true, IsActive: true,
		PasswordHash: digest,
	}))

	result, err := f.link.SignIn(ctx, googleProfile("ada@example.com", "sub-1"))
	require.NoError(t, err)
	require.NotNil(t, result.LinkRequired)
	require.Empty(t, result.Session.Token)
	require.Equal(t, "ada@example.com", result.LinkRequired.Email)
	require.Equal(t, "sub-1", result.LinkRequired.ProviderAccountID)

	// Wrong password does not confirm, and the token is spent.
	_, err = f.link.ConfirmLink(ctx, result.LinkRequired.Token, "wrongpass1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.link.ConfirmLink(ctx, result.LinkRequired.Token, "s3cretpass")
	require.ErrorIs(t, err, ErrTokenNotFound)

	// A new sign-in issues a fresh link token; this time confirm properly.
	result, err = f.link.SignIn(ctx, googleProfile("ada@example.com", "sub-1"))
	require.NoError(t, err)
	email, err := f.link.ConfirmLink(ctx, result.LinkRequired.Token, "s3cretpass")
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", email)

	completed, err := f.link.CompleteLink(ctx, email, "sub-1")
	require.NoError(t, err)
	require.Equal(t, "u-1", completed.User.ID)
	require.NotEmpty(t, completed.Session.Token)

	// Subsequent Google sign-ins go straight through.
	again, err := f.link.SignIn(ctx, googleProfile("ada@example.com", "sub-1"))
	require.NoError(t, err)
	require.Nil(t, again.LinkRequired)
	require.Equal(t, "u-1", again.User.ID)
}

func TestCompleteLinkConflicts(t *testing.T) {
	ctx := context.Background()
	f := newLinkFixture(t)

	digest, err := security.HashPassword("s3cretpass")
	require.NoError(t, err)
	require.NoError(t, f.users.Create(ctx, models.User{
		ID: "u-1", Email: "a@example.com", EmailVerified: true, IsActive: true,
		PasswordHash: digest,
	}))
	require.NoError(t, f.users.Create(ctx, models.User{
		ID: "u-2", Email: "b@example.com", EmailVerified: true, IsActive: true,
		PasswordHash: digest,
	}))

	_, err = f.link.CompleteLink(ctx, "a@example.com", "sub-1")
	require.NoError(t, err)

	// Same user, second Google identity.
	_, err = f.link.CompleteLink(ctx, "a@example.com", "sub-2")
	require.ErrorIs(t, err, ErrAlreadyLinked)

	// Different user, already-claimed identity.
	_, err = f.link.CompleteLink(ctx, "b@example.com", "sub-1")
	require.ErrorIs(t, err, ErrProviderIdentityTaken)

	_, err = f.link.CompleteLink(ctx, "ghost@example.com", "sub-3")
	require.ErrorIs(t, err, ErrNoAccountFound)
}

func TestGoogleSignInPendingInvitation(t *testing.T) {
	ctx := context.Background()
	f := newLinkFixture(t)

	// Invited but not yet accepted: no password hash, inactive.
	require.NoError(t, f.users.Create(ctx, models.User{
		ID: "u-1", Email: "invited@example.com",
		Roles: []models.RoleAssignment{{Role: models.RoleStaff}},
	}))

	_, err := f.link.SignIn(ctx, googleProfile("invited@example.com", "sub-1"))
	require.ErrorIs(t, err, ErrRequiresInvitationAcceptance)
}

func TestGoogleSignInDeactivatedLinkedAccount(t *testing.T) {
	ctx := context.Background()
	f := newLinkFixture(t)

	result, err := f.link.SignIn(ctx, googleProfile("ada@example.com", "sub-1"))
	require.NoError(t, err)

	f.users.mu.Lock()
	u := f.users.users[result.User.ID]
	u.IsActive = false
	f.users.users[result.User.ID] = u
	f.users.mu.Unlock()

	_, err = f.link.SignIn(ctx, googleProfile("ada@example.com", "sub-1"))
	require.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestCompleteLinkMarksEmailVerified(t *testing.T) {
	ctx := context.Background()
	f := newLinkFixture(t)

	digest, err := security.HashPassword("s3cretpass")
	require.NoError(t, err)
	require.NoError(t, f.users.Create(ctx, models.User{
		ID: "u-1", Email: "a@example.com", EmailVerified: false, IsActive: true,
		PasswordHash: digest,
	}))

	result, err := f.link.CompleteLink(ctx, "a@example.com", "sub-1")
	require.NoError(t, err)
	require.True(t, result.User.EmailVerified)

	stored, err := f.users.GetByID(ctx, "u-1")
	require.NoError(t, err)
	require.True(t, stored.EmailVerified)
}
