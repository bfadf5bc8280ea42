package users

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fleetbackend/core"
	"fleetbackend/db"
	"fleetbackend/models"
	"fleetbackend/testutils"
)

func setupTestService(t *testing.T) (*UsersService, *db.PostgresUsersRepository) {
	dbConn, cfg := testutils.SetupTestDB(t)
	usersRepo := db.NewPostgresUsersRepository(dbConn, cfg.DatabaseSchema)
	return NewUsersService(usersRepo), usersRepo
}

func TestUsersService(t *testing.T) {
	usersService, usersRepo := setupTestService(t)
	ctx := context.Background()

	owner := testutils.CreateTestOwner(t, usersRepo)

	t.Run("CreateDriver", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			email := "  " + strings.ToUpper(core.NewID("e")) + "@Fleet.Test "
			driver, err := usersService.CreateDriver(ctx, owner.ID, "Aung Aung", email, "secret123")
			require.NoError(t, err)

			assert.True(t, core.IsValidULID(driver.ID))
			assert.Equal(t, models.UserRoleDriver, driver.Role)
			require.NotNil(t, driver.OwnerID)
			assert.Equal(t, owner.ID, *driver.OwnerID)
			assert.Equal(t, strings.ToLower(strings.TrimSpace(email)), driver.Email)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(driver.PasswordHash), []byte("secret123")))

			maybeStored, err := usersService.GetUserByID(ctx, driver.ID)
			require.NoError(t, err)
			stored, ok := maybeStored.Get()
			require.True(t, ok)
			assert.Equal(t, driver.Email, stored.Email)
		})

		t.Run("Duplicate email is rejected case-insensitively", func(t *testing.T) {
			email := core.NewID("dup") + "@fleet.test"
			_, err := usersService.CreateDriver(ctx, owner.ID, "First", email, "secret123")
			require.NoError(t, err)

			_, err = usersService.CreateDriver(ctx, owner.ID, "Second", strings.ToUpper(email), "secret123")
			require.Error(t, err)
			assert.True(t, core.IsAlreadyExistsError(err))
		})

		t.Run("Short password", func(t *testing.T) {
			_, err := usersService.CreateDriver(ctx, owner.ID, "Name", core.NewID("e")+"@fleet.test", "123")
			require.Error(t, err)
			assert.True(t, core.IsValidationError(err))
		})

		t.Run("Invalid owner ID", func(t *testing.T) {
			_, err := usersService.CreateDriver(ctx, "not-an-id", "Name", "x@fleet.test", "secret123")
			require.Error(t, err)
			assert.True(t, core.IsValidationError(err))
		})
	})

	t.Run("GetDriversByOwnerID", func(t *testing.T) {
		otherOwner := testutils.CreateTestOwner(t, usersRepo)
		first := testutils.CreateTestDriver(t, usersRepo, otherOwner.ID)
		second := testutils.CreateTestDriver(t, usersRepo, otherOwner.ID)
		testutils.CreateTestDriver(t, usersRepo, owner.ID)

		drivers, err := usersService.GetDriversByOwnerID(ctx, otherOwner.ID)
		require.NoError(t, err)
		require.Len(t, drivers, 2)

		ids := []string{drivers[0].ID, drivers[1].ID}
		assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)
	})

	t.Run("GetDriversByOwnerID returns empty for owner without drivers", func(t *testing.T) {
		lonelyOwner := testutils.CreateTestOwner(t, usersRepo)
		drivers, err := usersService.GetDriversByOwnerID(ctx, lonelyOwner.ID)
		require.NoError(t, err)
		assert.Empty(t, drivers)
	})

	t.Run("GetUserByID not found", func(t *testing.T) {
		maybeUser, err := usersService.GetUserByID(ctx, core.NewID("u"))
		require.NoError(t, err)
		assert.False(t, maybeUser.IsPresent())
	})

	t.Run("GetUserByAuthProvider", func(t *testing.T) {
		providerID := core.NewID("clerk")
		provider := "clerk"
		linked := &models.User{
			ID:             core.NewID("u"),
			Name:           "Linked Owner",
			Email:          core.NewID("linked") + "@fleet.test",
			Role:           models.UserRoleOwner,
			AuthProvider:   &provider,
			AuthProviderID: &providerID,
		}
		require.NoError(t, usersRepo.CreateUser(ctx, linked))

		maybeUser, err := usersService.GetUserByAuthProvider(ctx, provider, providerID)
		require.NoError(t, err)
		user, ok := maybeUser.Get()
		require.True(t, ok)
		assert.Equal(t, linked.ID, user.ID)

		_, err = usersService.GetUserByAuthProvider(ctx, "", providerID)
		assert.True(t, core.IsValidationError(err))
	})
}
