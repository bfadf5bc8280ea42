package positions

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"fleetbackend/models"
)

// MockPositionsService is a mock implementation of the PositionsService interface
type MockPositionsService struct {
	mock.Mock
}

func (m *MockPositionsService) Consolidate(
	ctx context.Context,
	agentID string,
	coordinates models.Coordinates,
	status mo.Option[models.PositionStatus],
) (*models.PositionRecord, error) {
	args := m.Called(ctx, agentID, coordinates, status)
	if fn, ok := args.Get(0).(func(
		context.Context,
		string,
		models.Coordinates,
		mo.Option[models.PositionStatus],
	) *models.PositionRecord); ok {
		return fn(ctx, agentID, coordinates, status), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PositionRecord), args.Error(1)
}

func (m *MockPositionsService) GetPositionsByAgentIDs(
	ctx context.Context,
	agentIDs []string,
) ([]*models.PositionRecord, error) {
	args := m.Called(ctx, agentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PositionRecord), args.Error(1)
}
