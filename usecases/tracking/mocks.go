package tracking

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fleetbackend/models"
)

// MockTrackingUseCase is a mock implementation of the TrackingUseCase
type MockTrackingUseCase struct {
	mock.Mock
}

func (m *MockTrackingUseCase) IngestReport(
	ctx context.Context,
	identity models.AuthenticatedIdentity,
	payload *models.UpdateLocationPayload,
	source models.ReportSource,
) (*models.PositionRecord, error) {
	args := m.Called(ctx, identity, payload, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PositionRecord), args.Error(1)
}

func (m *MockTrackingUseCase) OnboardDriver(
	ctx context.Context,
	identity models.AuthenticatedIdentity,
	name, email, password string,
) (*models.User, error) {
	args := m.Called(ctx, identity, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockTrackingUseCase) FleetSnapshot(
	ctx context.Context,
	identity models.AuthenticatedIdentity,
) ([]*models.FleetPosition, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.FleetPosition), args.Error(1)
}

func (m *MockTrackingUseCase) ConnectSession(session models.BroadcastSession) error {
	args := m.Called(session)
	return args.Error(0)
}

func (m *MockTrackingUseCase) DisconnectSession(sessionID string) error {
	args := m.Called(sessionID)
	return args.Error(0)
}
