package service

import (
	"context"
	"time"

	"hirelane/api/internal/google"
	"hirelane/api/internal/models"
)

// Repository interfaces consumed by the services. The pgx implementations
// live in internal/repository; tests substitute in-memory fakes.

type UserRepo interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	UpdatePassword(ctx context.Context, id string, digest []byte) error
	SetEmailVerified(ctx context.Context, id string) error
	Activate(ctx context.Context, id string, firstName, lastName string, digest []byte) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

type TokenRepo interface {
	Insert(ctx context.Context, token models.EmailToken) error
	ConsumeByToken(ctx context.Context, token string, kind models.TokenKind) (models.EmailToken, error)
	GetByToken(ctx context.Context, token string, kind models.TokenKind) (models.EmailToken, error)
	Delete(ctx context.Context, token string) error
	DeleteByEmailAndKind(ctx context.Context, email string, kind models.TokenKind) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type LinkedAccountRepo interface {
	Create(ctx context.Context, account models.LinkedAccount) error
	FindByProviderAccount(ctx context.Context, provider, providerAccountID string) (models.LinkedAccount, error)
	FindByUserAndProvider(ctx context.Context, userID, provider string) (models.LinkedAccount, error)
}

// GuestMigrator reassigns records created under a bare email to a newly
// identified user.
type GuestMigrator interface {
	AttachGuestApplications(ctx context.Context, email string, userID string) error
}

type ProfileFetcher interface {
	FetchProfile(ctx context.Context, accessToken string) (google.Profile, error)
}

// RateLimiter throttles token issuance per (email, kind). It runs before
// any account lookup so that absence of the throttle cannot be used as an
// existence oracle.
type RateLimiter interface {
	CheckAndRecord(ctx context.Context, email string, kind models.TokenKind) error
}
