package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

func init() {
	goose.SetBaseFS(migrationsFS)
}

// Migrate runs a goose command ("up", "down", "status", "reset", "version")
// against the embedded schema migrations.
func Migrate(ctx context.Context, db *sql.DB, command string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch command {
	case "up", "down", "status", "reset", "version", "redo":
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}

	return goose.RunContext(ctx, command, db, migrationsDir)
}
