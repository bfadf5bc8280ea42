package users

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"fleetbackend/models"
)

// MockUsersService is a mock implementation of the UsersService interface
type MockUsersService struct {
	mock.Mock
}

func (m *MockUsersService) GetUserByID(ctx context.Context, id string) (mo.Option[*models.User], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(mo.Option[*models.User]), args.Error(1)
}

func (m *MockUsersService) GetUserByAuthProvider(
	ctx context.Context,
	authProvider, authProviderID string,
) (mo.Option[*models.User], error) {
	args := m.Called(ctx, authProvider, authProviderID)
	return args.Get(0).(mo.Option[*models.User]), args.Error(1)
}

func (m *MockUsersService) CreateDriver(
	ctx context.Context,
	ownerID, name, email, password string,
) (*models.User, error) {
	args := m.Called(ctx, ownerID, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUsersService) GetDriversByOwnerID(ctx context.Context, ownerID string) ([]*models.User, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
