package testutils

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"fleetbackend/config"
	"fleetbackend/core"
	"fleetbackend/db"
	"fleetbackend/models"
)

// LoadTestConfig loads configuration for tests from environment variables
func LoadTestConfig() (*config.AppConfig, error) {
	_ = godotenv.Load("../.env.test")    // From services/<name>/ directory
	_ = godotenv.Load("../../.env.test") // From nested packages
	_ = godotenv.Load(".env.test")       // From root directory
	_ = godotenv.Load()

	databaseURL := os.Getenv("DB_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DB_URL is not set")
	}

	databaseSchema := os.Getenv("DB_SCHEMA")
	if databaseSchema == "" {
		return nil, fmt.Errorf("DB_SCHEMA is not set")
	}

	return &config.AppConfig{
		DatabaseURL:    databaseURL,
		DatabaseSchema: databaseSchema,
		BroadcastConfig: config.BroadcastConfig{
			SessionBufferSize:   64,
			CoordinatePrecision: 7,
		},
	}, nil
}

// SetupTestDB connects to the test database and applies migrations.
// The test is skipped when no database is configured.
func SetupTestDB(t *testing.T) (*sqlx.DB, *config.AppConfig) {
	t.Helper()

	cfg, err := LoadTestConfig()
	if err != nil {
		t.Skipf("⚠️ Skipping database test: %v", err)
	}

	dbConn, err := db.NewConnection(cfg.DatabaseURL)
	require.NoError(t, err, "Failed to create database connection")
	t.Cleanup(func() { _ = dbConn.Close() })

	require.NoError(t, db.ApplyMigrations(context.Background(), dbConn, cfg.DatabaseSchema))
	return dbConn, cfg
}

// CreateTestOwner inserts an owner with a unique email
func CreateTestOwner(t *testing.T, usersRepo *db.PostgresUsersRepository) *models.User {
	t.Helper()

	owner := &models.User{
		ID:    core.NewID(core.UserIDPrefix),
		Name:  "Test Owner",
		Role:  models.UserRoleOwner,
		Email: "",
	}
	owner.Email = fmt.Sprintf("%s@owners.test", owner.ID)

	require.NoError(t, usersRepo.CreateUser(context.Background(), owner), "Failed to create test owner")
	return owner
}

// CreateTestDriver inserts a driver owned by ownerID without a position
func CreateTestDriver(t *testing.T, usersRepo *db.PostgresUsersRepository, ownerID string) *models.User {
	t.Helper()

	driver := &models.User{
		ID:      core.NewID(core.UserIDPrefix),
		Name:    "Test Driver",
		Role:    models.UserRoleDriver,
		OwnerID: &ownerID,
	}
	driver.Email = fmt.Sprintf("%s@drivers.test", driver.ID)

	require.NoError(t, usersRepo.CreateUser(context.Background(), driver), "Failed to create test driver")
	return driver
}
