package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"hirelane/api/internal/models"
	"hirelane/api/internal/repository"
	"hirelane/api/internal/security"
)

// tokenTTLs is fixed policy, not configuration.
var tokenTTLs = map[models.TokenKind]time.Duration{
	models.TokenKindVerification:  24 * time.Hour,
	models.TokenKindPasswordReset: time.Hour,
	models.TokenKindMagicLink:     15 * time.Minute,
	models.TokenKindInvitation:    7 * 24 * time.Hour,
	models.TokenKindAccountLink:   15 * time.Minute,
}

type TokenService struct {
	tokens TokenRepo
	log    zerolog.Logger
	now    func() time.Time
}

func NewTokenService(tokens TokenRepo, log zerolog.Logger) *TokenService {
	return &TokenService{
		tokens: tokens,
		log:    log,
		now:    time.Now,
	}
}

func TokenTTL(kind models.TokenKind) time.Duration {
	return tokenTTLs[kind]
}

// Issue creates a fresh single-use token for (email, kind). For every kind
// except account_link, prior tokens of the same pair are deleted first so
// only the newest token validates; account_link tokens gate a one-time
// transition and are removed individually on use or expiry.
func (s *TokenService) Issue(ctx context.Context, email string, kind models.TokenKind) (models.EmailToken, error) {
	if kind != models.TokenKindAccountLink {
		if err := s.tokens.DeleteByEmailAndKind(ctx, email, kind); err != nil {
			return models.EmailToken{}, err
		}
	}

	raw, err := security.GenerateOpaqueToken()
	if err != nil {
		return models.EmailToken{}, err
	}

	now := s.now()
	token := models.EmailToken{
		Token:     raw,
		Email:     email,
		Kind:      kind,
		ExpiresAt: now.Add(tokenTTLs[kind]),
		CreatedAt: now,
	}
	if err := s.tokens.Insert(ctx, token); err != nil {
		return models.EmailToken{}, err
	}
	return token, nil
}

// Consume atomically deletes the token and returns its email. An expired
// row reports ErrTokenExpired exactly once; the delete already removed it,
// so any retry sees ErrTokenNotFound. A kind mismatch is indistinguishable
// from absence.
func (s *TokenService) Consume(ctx context.Context, raw string, kind models.TokenKind) (string, error) {
	token, err := s.tokens.ConsumeByToken(ctx, raw, kind)
	if err != nil {
		if errors.Is(err, repository.ErrTokenRowNotFound) {
			return "", ErrTokenNotFound
		}
		return "", err
	}
	if token.Expired(s.now()) {
		return "", ErrTokenExpired
	}
	return token.Email, nil
}

// Peek is the non-destructive lookup backing the invitation pre-check.
// Expired rows are lazily deleted here as well.
func (s *TokenService) Peek(ctx context.Context, raw string, kind models.TokenKind) (models.EmailToken, error) {
	token, err := s.tokens.GetByToken(ctx, raw, kind)
	if err != nil {
		if errors.Is(err, repository.ErrTokenRowNotFound) {
			return models.EmailToken{}, ErrTokenNotFound
		}
		return models.EmailToken{}, err
	}
	if token.Expired(s.now()) {
		if err := s.tokens.Delete(ctx, raw); err != nil {
			s.log.Warn().Err(err).Msg("delete expired token failed")
		}
		return models.EmailToken{}, ErrTokenExpired
	}
	return token, nil
}

// SweepExpired is storage hygiene for the scheduler. Correctness never
// depends on it: consumption is self-cleaning.
func (s *TokenService) SweepExpired(ctx context.Context) (int64, error) {
	return s.tokens.DeleteExpired(ctx)
}
