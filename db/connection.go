package db

import (
	"context"
	"embed"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	// necessary import to wire up the postgres driver
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var schemaNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// migrationLockKey is the pg advisory lock held while migrations run
const migrationLockKey = 4242001

func NewConnection(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// ApplyMigrations runs every embedded migration against the given schema.
// All statements are idempotent, so this is safe to call on every start.
func ApplyMigrations(ctx context.Context, db *sqlx.DB, schema string) error {
	if !schemaNameRegex.MatchString(schema) {
		return fmt.Errorf("invalid schema name %q", schema)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	conn, err := db.Connx(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection for migrations: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock($1)", migrationLockKey); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	defer func() {
		if _, err := conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", migrationLockKey); err != nil {
			log.Printf("⚠️ Failed to release migration lock: %v", err)
		}
	}()

	for _, name := range names {
		content, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		query := strings.ReplaceAll(string(content), "{{schema}}", schema)
		if _, err := conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
		log.Printf("📋 Applied migration %s to schema %s", name, schema)
	}

	return nil
}
