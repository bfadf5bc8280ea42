package socketio

import (
	"github.com/stretchr/testify/mock"
)

// MockEmitter is a mock implementation of Emitter for testing sessions without a socket
type MockEmitter struct {
	mock.Mock
}

func (m *MockEmitter) Emit(event string, args ...any) error {
	callArgs := m.Called(event, args)
	return callArgs.Error(0)
}
