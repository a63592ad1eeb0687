// internal/adapters/out/db/user_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	udom "storefront/internal/domain/user"
)

type UserRepositoryPG struct {
	DB *sql.DB
}

func NewUserRepositoryPG(db *sql.DB) *UserRepositoryPG {
	return &UserRepositoryPG{DB: db}
}

const userColumns = `id, name, nickname, avatar, role, email, created_at, updated_at`

func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (udom.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return udom.User{}, udom.ErrInvalidID
	}
	run := r.DB
	return scanUserRow(run.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepositoryPG) Create(ctx context.Context, u udom.User) (udom.User, error) {
	u.ID = strings.TrimSpace(u.ID)
	if u.ID == "" {
		return udom.User{}, udom.ErrInvalidID
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.Role == "" {
		u.Role = udom.RoleUser
	}
	run := r.DB
	const q = `
INSERT INTO users (
  id, name, nickname, avatar, role, email, created_at, updated_at
) VALUES (
  $1, $2, $3, $4, $5, $6, $7, $8
)`
	_, err := run.ExecContext(ctx, q,
		u.ID, u.Name, u.Nickname, u.Avatar, string(u.Role), u.Email,
		u.CreatedAt.UTC(), nullableTime(u.UpdatedAt),
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return udom.User{}, udom.ErrConflict
		}
		return udom.User{}, err
	}
	return u, nil
}

// Merge upserts the editable fields.
func (r *UserRepositoryPG) Merge(ctx context.Context, id string, f udom.MergeFields) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return udom.ErrInvalidID
	}
	run := r.DB
	const q = `
INSERT INTO users (id, name, nickname, avatar, email, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)
ON CONFLICT (id) DO UPDATE SET
  name       = EXCLUDED.name,
  nickname   = EXCLUDED.nickname,
  avatar     = EXCLUDED.avatar,
  email      = EXCLUDED.email,
  updated_at = EXCLUDED.updated_at`
	_, err := run.ExecContext(ctx, q, id, f.Name, f.Nickname, f.Avatar, f.Email, f.UpdatedAt.UTC())
	return err
}

func (r *UserRepositoryPG) FindByEmail(ctx context.Context, email string) (udom.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return udom.User{}, udom.ErrNotFound
	}
	run := r.DB
	return scanUserRow(run.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 ORDER BY created_at LIMIT 1`, email))
}

func (r *UserRepositoryPG) SetRole(ctx context.Context, id string, role udom.Role) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return udom.ErrInvalidID
	}
	run := r.DB
	res, err := run.ExecContext(ctx,
		`UPDATE users SET role = $2, updated_at = $3 WHERE id = $1`,
		id, string(udom.ParseRole(string(role))), time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return udom.ErrNotFound
	}
	return nil
}

func scanUserRow(row *sql.Row) (udom.User, error) {
	var (
		u       udom.User
		role    string
		updated sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Name, &u.Nickname, &u.Avatar, &role, &u.Email, &u.CreatedAt, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return udom.User{}, udom.ErrNotFound
		}
		return udom.User{}, err
	}
	u.Role = udom.ParseRole(role)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = timeOrZero(updated)
	return u, nil
}
