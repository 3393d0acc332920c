package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geocoder89/bookhub/internal/domain/user"
	"github.com/geocoder89/bookhub/internal/observability"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, fullname, email, password_hash, active, role, created_at, updated_at
			 FROM users
			 WHERE email = $1`,
			email,
		).Scan(
			&u.ID,
			&u.FullName,
			&u.Email,
			&u.PasswordHash,
			&u.Active,
			&u.Role,
			&u.CreatedAt,
			&u.UpdatedAt,
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

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_id", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, fullname, email, password_hash, active, role, created_at, updated_at
			 FROM users
			 WHERE id = $1`,
			id,
		).Scan(
			&u.ID,
			&u.FullName,
			&u.Email,
			&u.PasswordHash,
			&u.Active,
			&u.Role,
			&u.CreatedAt,
			&u.UpdatedAt,
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

// Create inserts a new user. The first ever user is promoted to admin;
// the count and insert run in one transaction holding a table lock so
// concurrent registrations cannot both observe an empty table. The email
// unique constraint resolves duplicate races: exactly one insert wins.
func (r *UsersRepo) Create(ctx context.Context, fullname, email, passwordHash string) (u user.User, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// blocks other writers, not readers
	err = r.observe("users.create.lock", func() error {
		_, e := tx.Exec(ctx, `LOCK TABLE users IN SHARE ROW EXCLUSIVE MODE`)
		return e
	})

	if err != nil {
		return
	}

	var count int

	err = r.observe("users.create.count", func() error {
		return tx.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	})

	if err != nil {
		return
	}

	role := user.RoleUser

	if count == 0 {
		role = user.RoleAdmin
	}

	err = r.observe("users.create.insert", func() error {
		return tx.QueryRow(ctx,
			`INSERT INTO users (fullname, email, password_hash, active, role)
			 VALUES ($1, $2, $3, TRUE, $4)
			 RETURNING id, created_at, updated_at`,
			fullname, email, passwordHash, role,
		).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			err = user.ErrEmailTaken
			return
		}
		return
	}

	err = tx.Commit(ctx)

	if err != nil {
		return
	}

	u.FullName = fullname
	u.Email = email
	u.PasswordHash = passwordHash
	u.Active = true
	u.Role = role

	return
}
