package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"hirelane/api/internal/google"
	"hirelane/api/internal/ids"
	"hirelane/api/internal/models"
	"hirelane/api/internal/repository"
)

// LinkRequired carries what the client needs to drive the two-step link
// confirmation after a collision between a Google identity and an existing
// credentialed account.
type LinkRequired struct {
	Token             string
	Email             string
	DisplayName       string
	ProviderAccountID string
}

type SignInResult struct {
	User         models.User
	Session      Session
	IsNewUser    bool
	LinkRequired *LinkRequired
}

// LinkService reconciles a Google sign-in with local account state.
type LinkService struct {
	users    UserRepo
	links    LinkedAccountRepo
	tokens   *TokenService
	creds    *CredentialService
	sessions *SessionService
	migrator GuestMigrator
	log      zerolog.Logger
}

func NewLinkService(
	users UserRepo,
	links LinkedAccountRepo,
	tokens *TokenService,
	creds *CredentialService,
	sessions *SessionService,
	migrator GuestMigrator,
	log zerolog.Logger,
) *LinkService {
	return &LinkService{
		users:    users,
		links:    links,
		tokens:   tokens,
		creds:    creds,
		sessions: sessions,
		migrator: migrator,
		log:      log,
	}
}

// SignIn evaluates three disjoint cases in order: an existing link, an
// unlinked user with the same email, or no user at all. Auto-linking on
// email match alone is never done; a spoofed provider email must not take
// over a credentialed account.
func (s *LinkService) SignIn(ctx context.Context, profile google.Profile) (SignInResult, error) {
	email := strings.TrimSpace(strings.ToLower(profile.Email))

	// Case 1: this provider identity is already bound to a user.
	link, err := s.links.FindByProviderAccount(ctx, models.ProviderGoogle, profile.SubjectID)
	if err == nil {
		user, err := s.users.GetByID(ctx, link.UserID)
		if err != nil {
			return SignInResult{}, err
		}
		if !user.IsActive {
			return SignInResult{}, ErrAccountDeactivated
		}
		session, err := s.sessions.Issue(ctx, user)
		if err != nil {
			return SignInResult{}, err
		}
		return SignInResult{User: user, Session: session}, nil
	}
	if !errors.Is(err, repository.ErrLinkedAccountNotFound) {
		return SignInResult{}, err
	}

	// Case 2: a user owns this email but has never linked this provider.
	user, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		if user.PasswordHash == nil {
			// Mid-invitation accounts cannot be bootstrapped from the
			// provider side.
			return SignInResult{}, ErrRequiresInvitationAcceptance
		}

		token, err := s.tokens.Issue(ctx, email, models.TokenKindAccountLink)
		if err != nil {
			return SignInResult{}, err
		}
		return SignInResult{
			LinkRequired: &LinkRequired{
				Token:             token.Token,
				Email:             email,
				DisplayName:       strings.TrimSpace(profile.GivenName + " " + profile.FamilyName),
				ProviderAccountID: profile.SubjectID,
			},
		}, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return SignInResult{}, err
	}

	// Case 3: brand-new identity. The provider already verified the email.
	newUser := models.User{
		ID:            ids.New(),
		Email:         email,
		FirstName:     profile.GivenName,
		LastName:      profile.FamilyName,
		EmailVerified: true,
		IsActive:      true,
		Roles:         []models.RoleAssignment{{Role: models.RoleUser}},
	}
	if err := s.users.Create(ctx, newUser); err != nil {
		return SignInResult{}, err
	}

	if err := s.links.Create(ctx, models.LinkedAccount{
		ID:                ids.New(),
		UserID:            newUser.ID,
		Provider:          models.ProviderGoogle,
		ProviderAccountID: profile.SubjectID,
	}); err != nil {
		return SignInResult{}, err
	}

	if err := s.migrator.AttachGuestApplications(ctx, email, newUser.ID); err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("attach guest applications failed")
	}

	session, err := s.sessions.Issue(ctx, newUser)
	if err != nil {
		return SignInResult{}, err
	}
	return SignInResult{User: newUser, Session: session, IsNewUser: true}, nil
}

// ConfirmLink consumes the account_link token and proves password ownership
// of the colliding account. The provider access token is not retained
// across the two steps, so on success the caller redoes the OAuth handshake
// and calls CompleteLink with a fresh provider identity.
func (s *LinkService) ConfirmLink(ctx context.Context, rawToken string, password string) (string, error) {
	email, err := s.tokens.Consume(ctx, rawToken, models.TokenKindAccountLink)
	if err != nil {
		return "", err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrTokenNotFound
		}
		return "", err
	}
	if user.PasswordHash == nil || !s.creds.Verify(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return email, nil
}

// CompleteLink binds the provider identity after confirmation. Both
// uniqueness sides are re-validated here, and the unique index backs the
// check at commit time: two interleaved completions cannot both succeed.
func (s *LinkService) CompleteLink(ctx context.Context, email string, providerAccountID string) (SignInResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return SignInResult{}, ErrNoAccountFound
		}
		return SignInResult{}, err
	}

	if _, err := s.links.FindByUserAndProvider(ctx, user.ID, models.ProviderGoogle); err == nil {
		return SignInResult{}, ErrAlreadyLinked
	} else if !errors.Is(err, repository.ErrLinkedAccountNotFound) {
		return SignInResult{}, err
	}

	if _, err := s.links.FindByProviderAccount(ctx, models.ProviderGoogle, providerAccountID); err == nil {
		return SignInResult{}, ErrProviderIdentityTaken
	} else if !errors.Is(err, repository.ErrLinkedAccountNotFound) {
		return SignInResult{}, err
	}

	err = s.links.Create(ctx, models.LinkedAccount{
		ID:                ids.New(),
		UserID:            user.ID,
		Provider:          models.ProviderGoogle,
		ProviderAccountID: providerAccountID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateLink) {
			// Lost the race. Decide which side collided for the caller.
			if _, lookupErr := s.links.FindByUserAndProvider(ctx, user.ID, models.ProviderGoogle); lookupErr == nil {
				return SignInResult{}, ErrAlreadyLinked
			}
			return SignInResult{}, ErrProviderIdentityTaken
		}
		return SignInResult{}, err
	}

	if !user.EmailVerified {
		if err := s.users.SetEmailVerified(ctx, user.ID); err != nil {
			return SignInResult{}, err
		}
		user.EmailVerified = true
	}

	session, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return SignInResult{}, err
	}
	return SignInResult{User: user, Session: session}, nil
}
