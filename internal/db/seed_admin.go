package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geocoder89/bookhub/internal/config"
	"github.com/geocoder89/bookhub/internal/domain/user"
	"github.com/geocoder89/bookhub/internal/security"
)

// EnsureAdminUser seeds the default administrator account on first run.
// A no-op when the credentials are unset or the account already exists.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy int64

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (fullname, email, password_hash, active, role)
		VALUES ($1, $2, $3, TRUE, $4)
		ON CONFLICT (email) DO NOTHING
		`,
		cfg.AdminName, cfg.AdminEmail, hash, user.RoleAdmin,
	)

	return err
}
