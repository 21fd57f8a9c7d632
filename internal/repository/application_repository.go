package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hirelane/api/internal/models"
)

var ErrApplicationNotFound = errors.New("application not found")

type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

const applicationColumns = `
	id, job_id, user_id, email, first_name, last_name, resume_key, cover_note, status, created_at, updated_at
`

func (r *ApplicationRepository) Create(ctx context.Context, app models.Application) error {
	const query = `
		INSERT INTO applications (
			id, job_id, user_id, email, first_name, last_name, resume_key, cover_note, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()
		)
	`
	_, err := r.pool.Exec(ctx, query,
		app.ID,
		app.JobID,
		app.UserID,
		app.Email,
		app.FirstName,
		app.LastName,
		app.ResumeKey,
		app.CoverNote,
		app.Status,
	)
	return err
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (models.Application, error) {
	const query = `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Application{}, ErrApplicationNotFound
		}
		return models.Application{}, err
	}
	return app, nil
}

func (r *ApplicationRepository) List(ctx context.Context, limit, offset int) ([]models.Application, error) {
	const query = `
		SELECT ` + applicationColumns + `
		FROM applications
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	return r.list(ctx, query, limit, offset)
}

func (r *ApplicationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Application, error) {
	const query = `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, userID, limit, offset)
}

func (r *ApplicationRepository) list(ctx context.Context, query string, args ...any) ([]models.Application, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func scanApplication(row pgx.Row) (models.Application, error) {
	var app models.Application
	err := row.Scan(
		&app.ID,
		&app.JobID,
		&app.UserID,
		&app.Email,
		&app.FirstName,
		&app.LastName,
		&app.ResumeKey,
		&app.CoverNote,
		&app.Status,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	return app, err
}

// AttachGuestApplications reassigns applications submitted under a bare
// email before the account existed. Invoked after registration, Google
// first sign-in and invitation acceptance.
func (r *ApplicationRepository) AttachGuestApplications(ctx context.Context, email string, userID string) error {
	const query = `
		UPDATE applications
		SET user_id = $2, updated_at = NOW()
		WHERE email = $1 AND user_id IS NULL
	`
	_, err := r.pool.Exec(ctx, query, email, userID)
	return err
}
