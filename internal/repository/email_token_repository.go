package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hirelane/api/internal/models"
)

var ErrTokenRowNotFound = errors.New("token not found")

type EmailTokenRepository struct {
	pool *pgxpool.Pool
}

func NewEmailTokenRepository(pool *pgxpool.Pool) *EmailTokenRepository {
	return &EmailTokenRepository{pool: pool}
}

func (r *EmailTokenRepository) Insert(ctx context.Context, token models.EmailToken) error {
	const query = `
		INSERT INTO email_tokens (token, email, kind, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		token.Token,
		token.Email,
		token.Kind,
		token.ExpiresAt,
		token.CreatedAt,
	)
	return err
}

// ConsumeByToken atomically removes the row matching (token, kind) and
// returns its previous contents. Two racing consumers see exactly one row
// between them; the kind predicate keeps a consume from destroying a live
// token of another kind.
func (r *EmailTokenRepository) ConsumeByToken(ctx context.Context, token string, kind models.TokenKind) (models.EmailToken, error) {
	const query = `
		DELETE FROM email_tokens
		WHERE token = $1 AND kind = $2
		RETURNING token, email, kind, expires_at, created_at
	`
	row := r.pool.QueryRow(ctx, query, token, kind)
	var t models.EmailToken
	if err := row.Scan(&t.Token, &t.Email, &t.Kind, &t.ExpiresAt, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.EmailToken{}, ErrTokenRowNotFound
		}
		return models.EmailToken{}, err
	}
	return t, nil
}

func (r *EmailTokenRepository) GetByToken(ctx context.Context, token string, kind models.TokenKind) (models.EmailToken, error) {
	const query = `
		SELECT token, email, kind, expires_at, created_at
		FROM email_tokens
		WHERE token = $1 AND kind = $2
	`
	row := r.pool.QueryRow(ctx, query, token, kind)
	var t models.EmailToken
	if err := row.Scan(&t.Token, &t.Email, &t.Kind, &t.ExpiresAt, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.EmailToken{}, ErrTokenRowNotFound
		}
		return models.EmailToken{}, err
	}
	return t, nil
}

func (r *EmailTokenRepository) Delete(ctx context.Context, token string) error {
	const query = `DELETE FROM email_tokens WHERE token = $1`
	_, err := r.pool.Exec(ctx, query, token)
	return err
}

func (r *EmailTokenRepository) DeleteByEmailAndKind(ctx context.Context, email string, kind models.TokenKind) error {
	const query = `DELETE FROM email_tokens WHERE email = $1 AND kind = $2`
	_, err := r.pool.Exec(ctx, query, email, kind)
	return err
}

func (r *EmailTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM email_tokens WHERE expires_at < NOW()`
	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
