package tracking

import (
	"fleetbackend/services"
)

// TrackingUseCase orchestrates ingestion, consolidation and fanout of driver positions
type TrackingUseCase struct {
	usersService     services.UsersService
	positionsService services.PositionsService
	broadcaster      services.Broadcaster
	txManager        services.TransactionManager

	// consolidate and publish run under the driver's lock so sessions see one driver's
	// positions in the order they were stored
	agentLocks *agentLocks
}

func NewTrackingUseCase(
	usersService services.UsersService,
	positionsService services.PositionsService,
	broadcaster services.Broadcaster,
	txManager services.TransactionManager,
) *TrackingUseCase {
	return &TrackingUseCase{
		usersService:     usersService,
		positionsService: positionsService,
		broadcaster:      broadcaster,
		txManager:        txManager,
		agentLocks:       newAgentLocks(),
	}
}
