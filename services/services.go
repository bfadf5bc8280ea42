package services

import (
	"context"

	"github.com/samber/mo"

	"fleetbackend/models"
)

// UsersService resolves identities and provisions drivers
type UsersService interface {
	GetUserByID(ctx context.Context, id string) (mo.Option[*models.User], error)
	GetUserByAuthProvider(ctx context.Context, authProvider, authProviderID string) (mo.Option[*models.User], error)
	CreateDriver(ctx context.Context, ownerID, name, email, password string) (*models.User, error)
	GetDriversByOwnerID(ctx context.Context, ownerID string) ([]*models.User, error)
}

// PositionsService is the consolidation engine and the read side of the position store
type PositionsService interface {
	Consolidate(
		ctx context.Context,
		agentID string,
		coordinates models.Coordinates,
		status mo.Option[models.PositionStatus],
	) (*models.PositionRecord, error)
	GetPositionsByAgentIDs(ctx context.Context, agentIDs []string) ([]*models.PositionRecord, error)
}

// Broadcaster fans consolidated positions out to connected sessions
type Broadcaster interface {
	Register(session models.BroadcastSession) error
	Unregister(sessionID string) bool
	Publish(event *models.LocationBroadcast) int
	SessionCount() int
}

// TransactionManager handles database transactions via context
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
