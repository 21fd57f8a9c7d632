package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"hirelane/api/internal/models"
)

var (
	ErrLinkedAccountNotFound = errors.New("linked account not found")
	// ErrDuplicateLink surfaces the unique index on
	// (provider, provider_account_id) and on (user_id, provider), closing
	// the window between a pre-check and the insert.
	ErrDuplicateLink = errors.New("linked account already exists")
)

const uniqueViolation = "23505"

type LinkedAccountRepository struct {
	pool *pgxpool.Pool
}

func NewLinkedAccountRepository(pool *pgxpool.Pool) *LinkedAccountRepository {
	return &LinkedAccountRepository{pool: pool}
}

func (r *LinkedAccountRepository) Create(ctx context.Context, account models.LinkedAccount) error {
	const query = `
		INSERT INTO linked_accounts (id, user_id, provider, provider_account_id, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := r.pool.Exec(ctx, query,
		account.ID,
		account.UserID,
		account.Provider,
		account.ProviderAccountID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateLink
		}
		return err
	}
	return nil
}

func (r *LinkedAccountRepository) FindByProviderAccount(ctx context.Context, provider, providerAccountID string) (models.LinkedAccount, error) {
	const query = `
		SELECT id, user_id, provider, provider_account_id, created_at
		FROM linked_accounts
		WHERE provider = $1 AND provider_account_id = $2
	`
	return r.scan(r.pool.QueryRow(ctx, query, provider, providerAccountID))
}

func (r *LinkedAccountRepository) FindByUserAndProvider(ctx context.Context, userID, provider string) (models.LinkedAccount, error) {
	const query = `
		SELECT id, user_id, provider, provider_account_id, created_at
		FROM linked_accounts
		WHERE user_id = $1 AND provider = $2
	`
	return r.scan(r.pool.QueryRow(ctx, query, userID, provider))
}

func (r *LinkedAccountRepository) scan(row pgx.Row) (models.LinkedAccount, error) {
	var account models.LinkedAccount
	if err := row.Scan(
		&account.ID,
		&account.UserID,
		&account.Provider,
		&account.ProviderAccountID,
		&account.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.LinkedAccount{}, ErrLinkedAccountNotFound
		}
		return models.LinkedAccount{}, err
	}
	return account, nil
}
