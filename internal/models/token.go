package models

import "time"

type TokenKind string

const (
	TokenKindVerification  TokenKind = "verification"
	TokenKindPasswordReset TokenKind = "password_reset"
	TokenKindMagicLink     TokenKind = "magic_link"
	TokenKindInvitation    TokenKind = "invitation"
	TokenKindAccountLink   TokenKind = "account_link"
)

// EmailToken is a single-use possession proof for an email address. It is
// keyed by the email string alone, never by user id, so flows behave the
// same whether or not an account exists.
type EmailToken struct {
	Token     string
	Email     string
	Kind      TokenKind
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (t EmailToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
