package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/mo"

	"fleetbackend/core"
	dbtx "fleetbackend/db/tx"
	"fleetbackend/models"
)

// uniqueViolation is the Postgres SQLSTATE for unique constraint failures
const uniqueViolation = "23505"

type PostgresUsersRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for users table
var usersColumns = []string{
	"id",
	"name",
	"email",
	"password_hash",
	"role",
	"owner_id",
	"auth_provider",
	"auth_provider_id",
	"created_at",
	"updated_at",
}

func NewPostgresUsersRepository(db *sqlx.DB, schema string) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db, schema: schema}
}

func (r *PostgresUsersRepository) GetUserByID(ctx context.Context, id string) (mo.Option[*models.User], error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.users
		WHERE id = $1`,
		strings.Join(usersColumns, ", "), r.schema)

	return r.getOne(ctx, db, query, id)
}

func (r *PostgresUsersRepository) GetUserByEmail(ctx context.Context, email string) (mo.Option[*models.User], error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.users
		WHERE lower(email) = lower($1)`,
		strings.Join(usersColumns, ", "), r.schema)

	return r.getOne(ctx, db, query, email)
}

func (r *PostgresUsersRepository) GetUserByAuthProvider(
	ctx context.Context,
	authProvider, authProviderID string,
) (mo.Option[*models.User], error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.users
		WHERE auth_provider = $1 AND auth_provider_id = $2`,
		strings.Join(usersColumns, ", "), r.schema)

	return r.getOne(ctx, db, query, authProvider, authProviderID)
}

func (r *PostgresUsersRepository) CreateUser(ctx context.Context, user *models.User) error {
	db := dbtx.GetTransactional(ctx, r.db)

	insertColumns := []string{
		"id",
		"name",
		"email",
		"password_hash",
		"role",
		"owner_id",
		"auth_provider",
		"auth_provider_id",
		"created_at",
		"updated_at",
	}

	query := fmt.Sprintf(`
		INSERT INTO %s.users (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING %s`,
		r.schema, strings.Join(insertColumns, ", "), strings.Join(usersColumns, ", "))

	err := db.QueryRowxContext(
		ctx,
		query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.OwnerID,
		user.AuthProvider,
		user.AuthProviderID,
	).StructScan(user)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("user with email %s: %w", user.Email, core.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetDriversByOwnerID returns the drivers whose owner_id equals ownerID, oldest first
func (r *PostgresUsersRepository) GetDriversByOwnerID(ctx context.Context, ownerID string) ([]*models.User, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.users
		WHERE owner_id = $1 AND role = $2
		ORDER BY created_at ASC, id ASC`,
		strings.Join(usersColumns, ", "), r.schema)

	var users []*models.User
	if err := db.SelectContext(ctx, &users, query, ownerID, models.UserRoleDriver); err != nil {
		return nil, fmt.Errorf("failed to get drivers by owner id: %w", err)
	}

	return users, nil
}

func (r *PostgresUsersRepository) getOne(
	ctx context.Context,
	db dbtx.Transactional,
	query string,
	args ...any,
) (mo.Option[*models.User], error) {
	user := &models.User{}
	err := db.GetContext(ctx, user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return mo.None[*models.User](), nil
		}
		return mo.None[*models.User](), fmt.Errorf("failed to get user: %w", err)
	}

	return mo.Some(user), nil
}
