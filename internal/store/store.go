// Package store opens the relational database and applies the embedded
// goose migrations. The backend is chosen from the DSN: postgres:// (or
// postgresql://) selects pgx, anything else is treated as a local sqlite
// file.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"peerchat/internal/store/migrations"
)

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open connects to dsn and brings the schema up to date. A migration
// failure is returned to the caller and aborts startup; nothing else
// touches the database before this succeeds.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	driver, dialect, dir := "sqlite", "sqlite3", "sqlite"
	if isPostgres(dsn) {
		driver, dialect, dir = "pgx", "postgres", "postgres"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if driver == "sqlite" {
		// a single connection avoids SQLITE_BUSY on concurrent writes and
		// keeps :memory: databases coherent
		db.SetMaxOpenConns(1)
	}

	if err := runMigrations(ctx, db, dialect, dir); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return db, nil
}

func runMigrations(ctx context.Context, db *sql.DB, dialect, dir string) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect(dialect); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, dir)
}
