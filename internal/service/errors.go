package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrTokenNotFound                = errors.New("token invalid")
	ErrTokenExpired                 = errors.New("token expired")
	ErrInvalidCredentials           = errors.New("invalid email or password")
	ErrAccountDeactivated           = errors.New("account is deactivated")
	ErrEmailNotVerified             = errors.New("email not verified")
	ErrNoLocalCredentials           = errors.New("account has no password, sign in with Google")
	ErrAlreadyHasCredentials        = errors.New("account already has a password")
	ErrInvalidCurrentPassword       = errors.New("current password is incorrect")
	ErrSameAsCurrentPassword        = errors.New("new password must differ from the current one")
	ErrRequiresInvitationAcceptance = errors.New("account has a pending invitation")
	ErrAlreadyLinked                = errors.New("account is already linked to this provider")
	ErrProviderIdentityTaken        = errors.New("provider identity is linked to another account")
	ErrEmailAlreadyRegistered       = errors.New("email is already registered")
	ErrNoAccountFound               = errors.New("no account found for this email")
	ErrRoleNotFound                 = errors.New("unknown role")
	ErrForbidden                    = errors.New("forbidden")
)

// CooldownError reports that a token of the same kind was issued for the
// same email within the cooldown window. Remaining is deliberately exposed
// to the caller: the delay is not identity-revealing.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("please wait %d seconds before requesting another email", int(e.Remaining.Seconds()))
}

func AsCooldown(err error) (*CooldownError, bool) {
	var ce *CooldownError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
