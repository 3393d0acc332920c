package db

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/geocoder89/bookhub/internal/db/migrations"
)

// RunMigrations brings the schema up to date. goose wants a database/sql
// handle, so a short-lived stdlib connection is opened next to the pool.
func RunMigrations(ctx context.Context, dbURL string) error {
	conn, err := sql.Open("pgx", dbURL)

	if err != nil {
		return err
	}

	defer conn.Close()

	goose.SetBaseFS(migrations.FS)

	err = goose.SetDialect("postgres")

	if err != nil {
		return err
	}

	return goose.UpContext(ctx, conn, ".")
}
