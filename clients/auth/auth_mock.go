package auth

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockTokenVerifier is a mock implementation of the TokenVerifier interface
type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) Verify(ctx context.Context, token string) (Subject, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(Subject), args.Error(1)
}
