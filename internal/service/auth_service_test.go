package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"hirelane/api/internal/config"
	"hirelane/api/internal/models"
)

type authFixture struct {
	users    *fakeUserRepo
	tokens   *fakeTokenRepo
	links    *fakeLinkRepo
	mail     *fakeMailer
	limiter  *fakeLimiter
	migrator *fakeMigrator
	tokenSvc *TokenService
	creds    *CredentialService
	sessions *SessionService
	auth     *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	links := newFakeLinkRepo()
	mail := &fakeMailer{}
	limiter := newFakeLimiter(time.Minute)
	migrator := &fakeMigrator{}
	logger := zerolog.Nop()

	cfg := &config.AppConfig{
		Environment: "test",
		Security: config.SecurityConfig{
			JWTSecret:  "test-secret",
			SessionTTL: time.Hour,
			CookieName: "session",
		},
		Frontend: config.FrontendConfig{BaseURL: "http://localhost:3000"},
	}

	tokenSvc := NewTokenService(tokens, logger)
	creds := NewCredentialService(users)
	sessions := NewSessionService(users, cfg, logger)
	emails := NewEmailComposer(mail, cfg.Frontend.BaseURL, logger)
	auth := NewAuthService(users, links, tokenSvc, creds, sessions, limiter, emails, migrator, NewRoleAuthorizer(), logger)

	return &authFixture{
		users:    users,
		tokens:   tokens,
		links:    links,
		mail:     mail,
		limiter:  limiter,
		migrator: migrator,
		tokenSvc: tokenSvc,
		creds:    creds,
		sessions: sessions,
		auth:     auth,
	}
}

func (f *authFixture) tokenFor(email string, kind models.TokenKind) string {
	f.tokens.mu.Lock()
	defer f.tokens.mu.Unlock()
	for _, t := range f.tokens.tokens {
		if t.Email == email && t.Kind == kind {
			return t.Token
		}
	}
	return ""
}

func (f *authFixture) admin(t *testing.T) models.User {
	t.Helper()
	admin := models.User{
		ID:            "admin-1",
		Email:         "admin@example.com",
		EmailVerified: true,
		IsActive:      true,
		Roles:         []models.RoleAssignment{{Role: models.RoleAdmin}},
	}
	require.NoError(t, f.users.Create(context.Background(), admin))
	return admin
}

func TestRegisterVerifyLoginRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	user, err := f.auth.Register(ctx, "Jane.Doe@Example.com", "s3cretpass", "Jane", "Doe")
	require.NoError(t, err)
	require.Equal(t, "jane.doe@example.com", user.Email)
	require.False(t, user.EmailVerified)
	require.Equal(t, 1, f.mail.count())

	// Unverified accounts cannot sign in with the password.
	_, err = f.auth.Login(ctx, "jane.doe@example.com", "s3cretpass")
	require.ErrorIs(t, err, ErrEmailNotVerified)

	raw := f.tokenFor("jane.doe@example.com", models.TokenKindVerification)
	require.NotEmpty(t, raw)

	result, err := f.auth.VerifyEmail(ctx, raw)
	require.NoError(t, err)
	require.True(t, result.User.EmailVerified)
	require.NotEmpty(t, result.Session.Token)

	success, err := f.auth.Login(ctx, "jane.doe@example.com", "s3cretpass")
	require.NoError(t, err)
	require.Equal(t, user.ID, success.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	_, err := f.auth.Register(ctx, "a@example.com", "s3cretpass", "A", "A")
	require.NoError(t, err)

	_, err = f.auth.Register(ctx, "a@example.com", "otherpass1", "B", "B")
	require.ErrorIs(t, err, ErrEmailAlreadyRegistered)
}

func TestRegisterAttachesGuestApplications(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	user, err := f.auth.Register(ctx, "guest@example.com", "s3cretpass", "G", "G")
	require.NoError(t, err)

	require.Len(t, f.migrator.calls, 1)
	require.Equal(t, "guest@example.com->"+user.ID, f.migrator.calls[0])
}

func TestLoginFailureModes(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	_, err := f.auth.Login(ctx, "ghost@example.com", "whatever1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Register(ctx, "a@example.com", "s3cretpass", "A", "A")
	require.NoError(t, err)
	raw := f.tokenFor("a@example.com", models.TokenKindVerification)
	_, err = f.auth.VerifyEmail(ctx, raw)
	require.NoError(t, err)

	_, err = f.auth.Login(ctx, "a@example.com", "wrongpass1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Google-only account: no local credential to check.
	require.NoError(t, f.users.Create(ctx, models.User{
		ID: "g-1", Email: "g@example.com", EmailVerified: true, IsActive: true,
	}))
	_, err = f.auth.Login(ctx, "g@example.com", "anything1")
	require.ErrorIs(t, err, ErrNoLocalCredentials)

	// Deactivation wins over everything except existence.
	require.NoError(t, f.users.Create(ctx, models.User{
		ID: "d-1", Email: "d@example.com", EmailVerified: true, IsActive: false,
		PasswordHash: []byte("x"),
	}))
	_, err = f.auth.Login(ctx, "d@example.com", "anything1")
	require.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestResendVerificationIsEnumerationSafe(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	// A ghost email succeeds silently and sends nothing.
	require.NoError(t, f.auth.ResendVerification(ctx, "ghost@example.com"))
	require.Zero(t, f.mail.count())

	// The throttle fires for ghost and real accounts alike.
	err := f.auth.ResendVerification(ctx, "ghost@example.com")
	cooldown, ok := AsCooldown(err)
	require.True(t, ok)
	require.Greater(t, cooldown.Remaining, time.Duration(0))
}

func TestResendVerificationAlreadyVerified(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	require.NoError(t, f.users.Create(ctx, models.User{
		ID: "v-1", Email: "v@example.com", EmailVerified: true, IsActive: true,
		PasswordHash: []byte("x"),
	}))

	require.NoError(t, f.auth.ResendVerification(ctx, "v@example.com"))
	require.Zero(t, f.mail.count())
}

func TestForgotAndResetPassword(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	_, err := f.auth.Register(ctx, "a@example.com", "oldpass123", "A", "A")
	require.NoError(t, err)
	raw := f.tokenFor("a@example.com", models.TokenKindVerification)
	_, err = f.auth.VerifyEmail(ctx, raw)
	require.NoError(t, err)

	// Ghost emails succeed silently.
	require.NoError(t, f.auth.ForgotPassword(ctx, "ghost@example.com"))

	require.NoError(t, f.auth.ForgotPassword(ctx, "a@example.com"))
	resetToken := f.tokenFor("a@example.com", models.TokenKindPasswordReset)
	require.NotEmpty(t, resetToken)

	require.NoError(t, f.auth.ResetPassword(ctx, resetToken, "newpass456"))

	_, err = f.auth.Login(ctx, "a@example.com", "oldpass123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, "a@example.com", "newpass456")
	require.NoError(t, err)

	// The reset token is gone after one use.
	err = f.auth.ResetPassword(ctx, resetToken, "anotherpass7")
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestMagicLinkFlow(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	err := f.auth.MagicLinkRequest(ctx, "ghost@example.com")
	require.ErrorIs(t, err, ErrNoAccountFound)

	require.NoError(t, f.users.Create(ctx, models.User{
		ID: "m-1", Email: "m@example.com", IsActive: true,
	}))

	require.NoError(t, f.auth.MagicLinkRequest(ctx, "m@example.com"))
	raw := f.tokenFor("m@example.com", models.TokenKindMagicLink)
	require.NotEmpty(t, raw)

	result, err := f.auth.MagicLinkVerify(ctx, raw)
	require.NoError(t, err)
	require.True(t, result.User.EmailVerified)
	require.NotEmpty(t, result.Session.Token)

	_, err = f.auth.MagicLinkVerify(ctx, raw)
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestMagicLinkRequestDeactivated(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	require.NoError(t, f.users.Create(ctx, models.User{
		ID: "m-1", Email: "m@example.com", IsActive: false,
	}))

	err := f.auth.MagicLinkRequest(ctx, "m@example.com")
	require.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestInvitationLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	admin := f.admin(t)

	level := "senior"
	require.NoError(t, f.auth.Invite(ctx, admin, "new.hire@example.com", models.RoleStaff, &level))
	require.Equal(t, 1, f.mail.count())

	raw := f.tokenFor("new.hire@example.com", models.TokenKindInvitation)
	require.NotEmpty(t, raw)

	info, err := f.auth.VerifyInvitation(ctx, raw)
	require.NoError(t, err)
	require.Equal(t, "new.hire@example.com", info.Email)
	require.Equal(t, models.RoleStaff, info.Role)
	require.NotNil(t, info.PermissionLevel)
	require.Equal(t, "senior", *info.PermissionLevel)

	result, err := f.auth.AcceptInvitation(ctx, raw, "New", "Hire", "chosen-pass1")
	require.NoError(t, err)
	require.True(t, result.User.IsActive)
	require.True(t, result.User.EmailVerified)
	require.NotEmpty(t, result.Session.Token)

	// The token was consumed by the acceptance.
	_, err = f.auth.AcceptInvitation(ctx, raw, "New", "Hire", "chosen-pass1")
	require.ErrorIs(t, err, ErrTokenNotFound)

	// The invitee can now sign in normally.
	_, err = f.auth.Login(ctx, "new.hire@example.com", "chosen-pass1")
	require.NoError(t, err)
}

func TestInviteAuthorization(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	staff := models.User{
		ID: "staff-1", Email: "staff@example.com", IsActive: true,
		Roles: []models.RoleAssignment{{Role: models.RoleStaff}},
	}
	require.NoError(t, f.users.Create(ctx, staff))

	err := f.auth.Invite(ctx, staff, "x@example.com", models.RoleUser, nil)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestInviteValidation(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	admin := f.admin(t)

	err := f.auth.Invite(ctx, admin, "x@example.com", "superuser", nil)
	require.ErrorIs(t, err, ErrRoleNotFound)

	// An already-registered email cannot be invited.
	_, err = f.auth.Register(ctx, "taken@example.com", "s3cretpass", "T", "T")
	require.NoError(t, err)
	err = f.auth.Invite(ctx, admin, "taken@example.com", models.RoleUser, nil)
	require.ErrorIs(t, err, ErrEmailAlreadyRegistered)
}

func TestResendInviteReplacesToken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	admin := f.admin(t)

	require.NoError(t, f.auth.Invite(ctx, admin, "p@example.com", models.RoleUser, nil))
	first := f.tokenFor("p@example.com", models.TokenKindInvitation)

	require.NoError(t, f.auth.ResendInvite(ctx, admin, "p@example.com"))
	second := f.tokenFor("p@example.com", models.TokenKindInvitation)
	require.NotEqual(t, first, second)

	_, err := f.auth.AcceptInvitation(ctx, first, "P", "P", "chosen-pass1")
	require.ErrorIs(t, err, ErrTokenNotFound)

	_, err = f.auth.AcceptInvitation(ctx, second, "P", "P", "chosen-pass1")
	require.NoError(t, err)

	// Once accepted, there is nothing left to resend.
	err = f.auth.ResendInvite(ctx, admin, "p@example.com")
	require.ErrorIs(t, err, ErrAlreadyHasCredentials)
}
