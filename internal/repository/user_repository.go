package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hirelane/api/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const insertUser = `
		INSERT INTO users (
			id, email, first_name, last_name, password_hash, email_verified, is_active, last_login_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW()
		)
	`
	if _, err := tx.Exec(ctx, insertUser,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.EmailVerified,
		user.IsActive,
		user.LastLoginAt,
	); err != nil {
		return err
	}

	const insertRole = `
		INSERT INTO user_roles (user_id, role, permission_level) VALUES ($1, $2, $3)
	`
	for _, role := range user.Roles {
		if _, err := tx.Exec(ctx, insertRole, user.ID, role.Role, role.PermissionLevel); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

const userColumns = `
	id, email, first_name, last_name, password_hash, email_verified, is_active, last_login_at, created_at, updated_at
`

func (r *UserRepository) scanUser(ctx context.Context, row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.EmailVerified,
		&user.IsActive,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	roles, err := r.loadRoles(ctx, user.ID)
	if err != nil {
		return models.User{}, err
	}
	user.Roles = roles
	return user, nil
}

func (r *UserRepository) loadRoles(ctx context.Context, userID string) ([]models.RoleAssignment, error) {
	const query = `
		SELECT role, permission_level FROM user_roles WHERE user_id = $1 ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []models.RoleAssignment
	for rows.Next() {
		var role models.RoleAssignment
		if err := rows.Scan(&role.Role, &role.PermissionLevel); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(ctx, r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(ctx, r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id string, digest []byte) error {
	const query = `
		UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, digest)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetEmailVerified(ctx context.Context, id string) error {
	const query = `
		UPDATE users SET email_verified = TRUE, updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Activate completes an invitation: names, credential and the active flag
// flip together.
func (r *UserRepository) Activate(ctx context.Context, id string, firstName, lastName string, digest []byte) error {
	const query = `
		UPDATE users
		SET first_name = $2,
		    last_name = $3,
		    password_hash = $4,
		    is_active = TRUE,
		    updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, firstName, lastName, digest)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	const query = `
		UPDATE users SET last_login_at = $2, updated_at = NOW() WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, at)
	return err
}
