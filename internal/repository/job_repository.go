package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hirelane/api/internal/models"
)

var ErrJobNotFound = errors.New("job not found")

type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

const jobColumns = `
	id, title, department, location, description, status, closes_at, created_at, updated_at
`

func (r *JobRepository) Create(ctx context.Context, job models.Job) error {
	const query = `
		INSERT INTO jobs (
			id, title, department, location, description, status, closes_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, NOW(), NOW()
		)
	`
	_, err := r.pool.Exec(ctx, query,
		job.ID,
		job.Title,
		job.Department,
		job.Location,
		job.Description,
		job.Status,
		job.ClosesAt,
	)
	return err
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (models.Job, error) {
	const query = `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	var job models.Job
	if err := row.Scan(
		&job.ID,
		&job.Title,
		&job.Department,
		&job.Location,
		&job.Description,
		&job.Status,
		&job.ClosesAt,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Job{}, ErrJobNotFound
		}
		return models.Job{}, err
	}
	return job, nil
}

func (r *JobRepository) ListOpen(ctx context.Context, limit, offset int) ([]models.Job, error) {
	const query = `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE status = 'open'
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		var job models.Job
		if err := rows.Scan(
			&job.ID,
			&job.Title,
			&job.Department,
			&job.Location,
			&job.Description,
			&job.Status,
			&job.ClosesAt,
			&job.CreatedAt,
			&job.UpdatedAt,
		); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *JobRepository) UpdateStatus(ctx context.Context, id string, status models.JobStatus) error {
	const query = `UPDATE jobs SET status = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrJobNotFound
	}
	return nil
}

// CloseExpired flips past-deadline postings, run daily by the scheduler.
func (r *JobRepository) CloseExpired(ctx context.Context) (int64, error) {
	const query = `
		UPDATE jobs
		SET status = 'closed', updated_at = NOW()
		WHERE status = 'open' AND closes_at IS NOT NULL AND closes_at < NOW()
	`
	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
