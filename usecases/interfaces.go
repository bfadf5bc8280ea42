package usecases

import (
	"context"

	"fleetbackend/models"
)

// TrackingUseCaseInterface defines the operations the HTTP and socket layers call into
type TrackingUseCaseInterface interface {
	IngestReport(
		ctx context.Context,
		identity models.AuthenticatedIdentity,
		payload *models.UpdateLocationPayload,
		source models.ReportSource,
	) (*models.PositionRecord, error)
	OnboardDriver(
		ctx context.Context,
		identity models.AuthenticatedIdentity,
		name, email, password string,
	) (*models.User, error)
	FleetSnapshot(ctx context.Context, identity models.AuthenticatedIdentity) ([]*models.FleetPosition, error)
	ConnectSession(session models.BroadcastSession) error
	DisconnectSession(sessionID string) error
}
