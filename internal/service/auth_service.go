package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"hirelane/api/internal/ids"
	"hirelane/api/internal/models"
	"hirelane/api/internal/repository"
	"hirelane/api/internal/security"
)

// AuthSuccess is the result of any flow ending in an authenticated user.
type AuthSuccess struct {
	User    models.User
	Session Session
}

// InvitationInfo is the pre-flight view of an invitation token, shown
// before the invitee commits to a password.
type InvitationInfo struct {
	Email           string
	Role            string
	PermissionLevel *string
}

// AuthService orchestrates the email and password flows. The identity
// linking flows live in LinkService.
type AuthService struct {
	users    UserRepo
	links    LinkedAccountRepo
	tokens   *TokenService
	creds    *CredentialService
	sessions *SessionService
	limiter  RateLimiter
	emails   *EmailComposer
	migrator GuestMigrator
	authz    Authorizer
	log      zerolog.Logger
}

func NewAuthService(
	users UserRepo,
	links LinkedAccountRepo,
	tokens *TokenService,
	creds *CredentialService,
	sessions *SessionService,
	limiter RateLimiter,
	emails *EmailComposer,
	migrator GuestMigrator,
	authz Authorizer,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		links:    links,
		tokens:   tokens,
		creds:    creds,
		sessions: sessions,
		limiter:  limiter,
		emails:   emails,
		migrator: migrator,
		authz:    authz,
		log:      log,
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// Register creates a credentialed account and sends the verification
// email. No session is issued: the user signs in after verifying.
func (s *AuthService) Register(ctx context.Context, email, password, firstName, lastName string) (models.User, error) {
	email = normalizeEmail(email)

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return models.User{}, ErrEmailAlreadyRegistered
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, err
	}

	digest, err := security.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:           ids.New(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: digest,
		IsActive:     true,
		Roles:        []models.RoleAssignment{{Role: models.RoleUser}},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return models.User{}, err
	}

	if err := s.migrator.AttachGuestApplications(ctx, email, user.ID); err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("attach guest applications failed")
	}

	// Start the resend cooldown now so an immediate resend is throttled.
	// Registration itself is never blocked by it.
	if err := s.limiter.CheckAndRecord(ctx, email, models.TokenKindVerification); err != nil {
		if _, ok := AsCooldown(err); !ok {
			return models.User{}, err
		}
	}

	token, err := s.tokens.Issue(ctx, email, models.TokenKindVerification)
	if err != nil {
		return models.User{}, err
	}
	s.emails.SendVerification(email, token.Token)

	return user, nil
}

// Login validates credentials. Unknown email and wrong password are
// reported identically; the more specific account states are only
// revealed once the password has been proven.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthSuccess, error) {
	email = normalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthSuccess{}, ErrInvalidCredentials
		}
		return AuthSuccess{}, err
	}
	if !user.IsActive {
		return AuthSuccess{}, ErrAccountDeactivated
	}
	if user.PasswordHash == nil {
		return AuthSuccess{}, ErrNoLocalCredentials
	}
	if !s.creds.Verify(password, user.PasswordHash) {
		return AuthSuccess{}, ErrInvalidCredentials
	}
	if !user.EmailVerified {
		return AuthSuccess{}, ErrEmailNotVerified
	}

	session, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return AuthSuccess{}, err
	}
	return AuthSuccess{User: user, Session: session}, nil
}

// VerifyEmail consumes the verification token and signs the user in.
func (s *AuthService) VerifyEmail(ctx context.Context, rawToken string) (AuthSuccess, error) {
	email, err := s.tokens.Consume(ctx, rawToken, models.TokenKindVerification)
	if err != nil {
		return AuthSuccess{}, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthSuccess{}, ErrTokenNotFound
		}
		return AuthSuccess{}, err
	}
	if !user.IsActive {
		return AuthSuccess{}, ErrAccountDeactivated
	}

	if !user.EmailVerified {
		if err := s.users.SetEmailVerified(ctx, user.ID); err != nil {
			return AuthSuccess{}, err
		}
		user.EmailVerified = true
	}

	session, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return AuthSuccess{}, err
	}
	return AuthSuccess{User: user, Session: session}, nil
}

// ResendVerification re-sends the verification email. The cooldown check
// runs before the account lookup, and unknown or already-verified emails
// succeed silently, so the endpoint cannot be used to probe for accounts.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	if err := s.limiter.CheckAndRecord(ctx, email, models.TokenKindVerification); err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if user.EmailVerified || !user.IsActive {
		return nil
	}

	token, err := s.tokens.Issue(ctx, email, models.TokenKindVerification)
	if err != nil {
		return err
	}
	s.emails.SendVerification(email, token.Token)
	return nil
}

// ForgotPassword behaves like ResendVerification: cooldown first, silent
// success for unknown or ineligible accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	if err := s.limiter.CheckAndRecord(ctx, email, models.TokenKindPasswordReset); err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if !user.IsActive {
		return nil
	}

	token, err := s.tokens.Issue(ctx, email, models.TokenKindPasswordReset)
	if err != nil {
		return err
	}
	s.emails.SendPasswordReset(email, token.Token)
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, rawToken, next string) error {
	email, err := s.tokens.Consume(ctx, rawToken, models.TokenKindPasswordReset)
	if err != nil {
		return err
	}
	return s.creds.ResetPassword(ctx, email, next)
}

func (s *AuthService) ChangePassword(ctx context.Context, user models.User, current, next string) error {
	return s.creds.ChangePassword(ctx, user, current, next)
}

// MagicLinkRequest sends a one-time sign-in link. Unlike the other
// request flows this one reports unknown emails: the endpoint is only
// reachable from the sign-in page where the email was typed knowingly.
func (s *AuthService) MagicLinkRequest(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	if err := s.limiter.CheckAndRecord(ctx, email, models.TokenKindMagicLink); err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrNoAccountFound
		}
		return err
	}
	if !user.IsActive {
		return ErrAccountDeactivated
	}

	token, err := s.tokens.Issue(ctx, email, models.TokenKindMagicLink)
	if err != nil {
		return err
	}
	s.emails.SendMagicLink(email, token.Token)
	return nil
}

// MagicLinkVerify consumes the link and signs the user in. Using the link
// proves possession of the inbox, so an unverified email flips to
// verified as a side effect.
func (s *AuthService) MagicLinkVerify(ctx context.Context, rawToken string) (AuthSuccess, error) {
	email, err := s.tokens.Consume(ctx, rawToken, models.TokenKindMagicLink)
	if err != nil {
		return AuthSuccess{}, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthSuccess{}, ErrTokenNotFound
		}
		return AuthSuccess{}, err
	}
	if !user.IsActive {
		return AuthSuccess{}, ErrAccountDeactivated
	}

	if !user.EmailVerified {
		if err := s.users.SetEmailVerified(ctx, user.ID); err != nil {
			return AuthSuccess{}, err
		}
		user.EmailVerified = true
	}

	session, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return AuthSuccess{}, err
	}
	return AuthSuccess{User: user, Session: session}, nil
}

func validRole(role string) bool {
	switch role {
	case models.RoleUser, models.RoleStaff, models.RoleAdmin:
		return true
	}
	return false
}

// Invite creates a pending account and emails a 7-day invitation token.
// Invitations are admin-initiated and carry no cooldown. Inviting an
// email that already holds a pending invitation re-issues the token.
func (s *AuthService) Invite(ctx context.Context, actor models.User, email, role string, permissionLevel *string) error {
	if !s.authz.Can(actor, ActionInviteUsers) {
		return ErrForbidden
	}
	if !validRole(role) {
		return ErrRoleNotFound
	}
	email = normalizeEmail(email)

	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.PasswordHash != nil || existing.IsActive {
			return ErrEmailAlreadyRegistered
		}
		// Pending invitation: fall through and re-issue.
	case errors.Is(err, repository.ErrUserNotFound):
		user := models.User{
			ID:    ids.New(),
			Email: email,
			Roles: []models.RoleAssignment{{Role: role, PermissionLevel: permissionLevel}},
		}
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
	default:
		return err
	}

	token, err := s.tokens.Issue(ctx, email, models.TokenKindInvitation)
	if err != nil {
		return err
	}
	s.emails.SendInvitation(email, token.Token, role)
	return nil
}

// ResendInvite re-issues the invitation token, invalidating the previous
// one.
func (s *AuthService) ResendInvite(ctx context.Context, actor models.User, email string) error {
	if !s.authz.Can(actor, ActionInviteUsers) {
		return ErrForbidden
	}
	email = normalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrNoAccountFound
		}
		return err
	}
	if user.PasswordHash != nil {
		return ErrAlreadyHasCredentials
	}

	role := models.RoleUser
	if len(user.Roles) > 0 {
		role = user.Roles[0].Role
	}

	token, err := s.tokens.Issue(ctx, email, models.TokenKindInvitation)
	if err != nil {
		return err
	}
	s.emails.SendInvitation(email, token.Token, role)
	return nil
}

// VerifyInvitation is the non-destructive pre-check the acceptance form
// runs on load. The token survives it.
func (s *AuthService) VerifyInvitation(ctx context.Context, rawToken string) (InvitationInfo, error) {
	token, err := s.tokens.Peek(ctx, rawToken, models.TokenKindInvitation)
	if err != nil {
		return InvitationInfo{}, err
	}

	user, err := s.users.FindByEmail(ctx, token.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return InvitationInfo{}, ErrTokenNotFound
		}
		return InvitationInfo{}, err
	}
	if user.PasswordHash != nil {
		return InvitationInfo{}, ErrAlreadyHasCredentials
	}

	info := InvitationInfo{Email: user.Email, Role: models.RoleUser}
	if len(user.Roles) > 0 {
		info.Role = user.Roles[0].Role
		info.PermissionLevel = user.Roles[0].PermissionLevel
	}
	return info, nil
}

// AcceptInvitation consumes the token, activates the account with the
// chosen name and password, and signs the invitee in.
func (s *AuthService) AcceptInvitation(ctx context.Context, rawToken, firstName, lastName, password string) (AuthSuccess, error) {
	email, err := s.tokens.Consume(ctx, rawToken, models.TokenKindInvitation)
	if err != nil {
		return AuthSuccess{}, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthSuccess{}, ErrTokenNotFound
		}
		return AuthSuccess{}, err
	}
	if user.PasswordHash != nil {
		return AuthSuccess{}, ErrAlreadyHasCredentials
	}

	digest, err := security.HashPassword(password)
	if err != nil {
		return AuthSuccess{}, err
	}
	if err := s.users.Activate(ctx, user.ID, firstName, lastName, digest); err != nil {
		return AuthSuccess{}, err
	}
	if err := s.users.SetEmailVerified(ctx, user.ID); err != nil {
		return AuthSuccess{}, err
	}

	user.FirstName = firstName
	user.LastName = lastName
	user.PasswordHash = digest
	user.IsActive = true
	user.EmailVerified = true

	if err := s.migrator.AttachGuestApplications(ctx, email, user.ID); err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("attach guest applications failed")
	}

	if err := s.links.Create(ctx, models.LinkedAccount{
		ID:                ids.New(),
		UserID:            user.ID,
		Provider:          models.ProviderCredentials,
		ProviderAccountID: email,
	}); err != nil && !errors.Is(err, repository.ErrDuplicateLink) {
		return AuthSuccess{}, err
	}

	session, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return AuthSuccess{}, err
	}
	return AuthSuccess{User: user, Session: session}, nil
}
