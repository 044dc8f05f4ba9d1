package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/docvault/internal/domain/user"
	"github.com/geocoder89/docvault/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash, role string) (user.User, error) {
	if role == "" {
		role = user.RoleUser
	}

	u := user.User{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}

	err := r.prom.ObserveDB("users.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO users (email, password_hash, role)
			VALUES ($1, $2, $3)
			RETURNING id, created_at`,
			email, passwordHash, role,
		).Scan(&u.ID, &u.CreatedAt)
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB("users.get_by_email", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, email, password_hash, role, created_at
			FROM users
			WHERE email = $1`,
			email,
		).Scan(
			&u.ID,
			&u.Email,
			&u.PasswordHash,
			&u.Role,
			&u.CreatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	out := make([]user.User, 0)

	err := r.prom.ObserveDB("users.list", func() error {
		rows, err := r.pool.Query(ctx, `SELECT id, email, role, created_at FROM users ORDER BY id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var u user.User
			if err := rows.Scan(&u.ID, &u.Email, &u.Role, &u.CreatedAt); err != nil {
				return err
			}
			out = append(out, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *UsersRepo) HasRole(ctx context.Context, role string) (bool, error) {
	var exists bool

	err := r.prom.ObserveDB("users.has_role", func() error {
		return r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE role = $1)`, role).Scan(&exists)
	})

	return exists, err
}

func (r *UsersRepo) Count(ctx context.Context) (int, error) {
	var n int

	err := r.prom.ObserveDB("users.count", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	})

	return n, err
}
