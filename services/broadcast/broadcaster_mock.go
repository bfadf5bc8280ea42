package broadcast

import (
	"github.com/stretchr/testify/mock"

	"fleetbackend/models"
)

// MockBroadcaster is a mock implementation of the Broadcaster interface
type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Register(session models.BroadcastSession) error {
	args := m.Called(session)
	return args.Error(0)
}

func (m *MockBroadcaster) Unregister(sessionID string) bool {
	args := m.Called(sessionID)
	return args.Bool(0)
}

func (m *MockBroadcaster) Publish(event *models.LocationBroadcast) int {
	args := m.Called(event)
	return args.Int(0)
}

func (m *MockBroadcaster) SessionCount() int {
	args := m.Called()
	return args.Int(0)
}
