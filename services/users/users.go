package users

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/samber/mo"
	"golang.org/x/crypto/bcrypt"

	"fleetbackend/core"
	"fleetbackend/db"
	"fleetbackend/models"
	"fleetbackend/utils"
)

type UsersService struct {
	usersRepo *db.PostgresUsersRepository
}

func NewUsersService(repo *db.PostgresUsersRepository) *UsersService {
	return &UsersService{usersRepo: repo}
}

func (s *UsersService) GetUserByID(ctx context.Context, id string) (mo.Option[*models.User], error) {
	log.Printf("📋 Starting to get user by ID: %s", id)
	if !core.IsValidULID(id) {
		return mo.None[*models.User](), fmt.Errorf("%w: user ID must be a valid ULID", core.ErrValidation)
	}

	maybeUser, err := s.usersRepo.GetUserByID(ctx, id)
	if err != nil {
		return mo.None[*models.User](), fmt.Errorf("failed to get user by ID: %w", err)
	}

	log.Printf("📋 Completed successfully - user %s found: %t", id, maybeUser.IsPresent())
	return maybeUser, nil
}

func (s *UsersService) GetUserByAuthProvider(
	ctx context.Context,
	authProvider, authProviderID string,
) (mo.Option[*models.User], error) {
	log.Printf("📋 Starting to get user by auth provider: %s", authProvider)
	if authProvider == "" {
		return mo.None[*models.User](), fmt.Errorf("%w: auth_provider cannot be empty", core.ErrValidation)
	}
	if authProviderID == "" {
		return mo.None[*models.User](), fmt.Errorf("%w: auth_provider_id cannot be empty", core.ErrValidation)
	}

	maybeUser, err := s.usersRepo.GetUserByAuthProvider(ctx, authProvider, authProviderID)
	if err != nil {
		return mo.None[*models.User](), fmt.Errorf("failed to get user by auth provider: %w", err)
	}

	log.Printf("📋 Completed successfully - user found: %t", maybeUser.IsPresent())
	return maybeUser, nil
}

// CreateDriver provisions a driver owned by ownerID. The email must not be registered yet.
func (s *UsersService) CreateDriver(ctx context.Context, ownerID, name, email, password string) (*models.User, error) {
	log.Printf("📋 Starting to create driver for owner: %s", ownerID)
	if !core.IsValidULID(ownerID) {
		return nil, fmt.Errorf("%w: owner ID must be a valid ULID", core.ErrValidation)
	}

	name = strings.TrimSpace(name)
	email = utils.NormalizeEmail(email)
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", core.ErrValidation)
	}
	if email == "" {
		return nil, fmt.Errorf("%w: email cannot be empty", core.ErrValidation)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", core.ErrValidation)
	}

	maybeExisting, err := s.usersRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}
	if maybeExisting.IsPresent() {
		return nil, fmt.Errorf("email %s: %w", email, core.ErrAlreadyExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	driver := &models.User{
		ID:           core.NewID(core.UserIDPrefix),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.UserRoleDriver,
		OwnerID:      &ownerID,
	}
	if err := s.usersRepo.CreateUser(ctx, driver); err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	log.Printf("📋 Completed successfully - created driver %s for owner %s", driver.ID, ownerID)
	return driver, nil
}

func (s *UsersService) GetDriversByOwnerID(ctx context.Context, ownerID string) ([]*models.User, error) {
	log.Printf("📋 Starting to get drivers for owner: %s", ownerID)
	if !core.IsValidULID(ownerID) {
		return nil, fmt.Errorf("%w: owner ID must be a valid ULID", core.ErrValidation)
	}

	drivers, err := s.usersRepo.GetDriversByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get drivers by owner: %w", err)
	}

	log.Printf("📋 Completed successfully - found %d drivers for owner %s", len(drivers), ownerID)
	return drivers, nil
}
