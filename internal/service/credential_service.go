package service

import (
	"context"
	"errors"

	"hirelane/api/internal/models"
	"hirelane/api/internal/repository"
	"hirelane/api/internal/security"
)

type CredentialService struct {
	users UserRepo
}

func NewCredentialService(users UserRepo) *CredentialService {
	return &CredentialService{users: users}
}

// SetInitialPassword is only valid for accounts without a local credential.
func (s *CredentialService) SetInitialPassword(ctx context.Context, user models.User, plain string) error {
	if user.PasswordHash != nil {
		return ErrAlreadyHasCredentials
	}
	digest, err := security.HashPassword(plain)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, digest)
}

// ChangePassword requires proof of the current password. Other active
// sessions are intentionally left untouched.
func (s *CredentialService) ChangePassword(ctx context.Context, user models.User, current, next string) error {
	if user.PasswordHash == nil {
		return ErrNoLocalCredentials
	}

	ok, err := security.VerifyPassword(current, user.PasswordHash)
	if err != nil || !ok {
		return ErrInvalidCurrentPassword
	}

	same, err := security.VerifyPassword(next, user.PasswordHash)
	if err == nil && same {
		return ErrSameAsCurrentPassword
	}

	digest, err := security.HashPassword(next)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, digest)
}

// ResetPassword replaces the digest without current-password proof; the
// caller has already gated it behind a possession-of-email token.
// Deactivated accounts are refused.
func (s *CredentialService) ResetPassword(ctx context.Context, email string, next string) error {
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

	digest, err := security.HashPassword(next)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, digest)
}

func (s *CredentialService) Verify(plain string, digest []byte) bool {
	ok, err := security.VerifyPassword(plain, digest)
	return err == nil && ok
}
