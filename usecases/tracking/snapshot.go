package tracking

import (
	"context"
	"fmt"
	"log"

	"fleetbackend/core"
	"fleetbackend/models"
)

// FleetSnapshot returns the current positions of the drivers owned by the caller.
// Drivers that have no position yet are left out.
func (s *TrackingUseCase) FleetSnapshot(
	ctx context.Context,
	identity models.AuthenticatedIdentity,
) ([]*models.FleetPosition, error) {
	log.Printf("📋 Starting to build fleet snapshot for %s", identity.UserID)
	if !identity.IsOwner() {
		return nil, fmt.Errorf("%w: only owners can view a fleet", core.ErrForbidden)
	}

	drivers, err := s.usersService.GetDriversByOwnerID(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get fleet drivers: %w", err)
	}
	if len(drivers) == 0 {
		log.Printf("📋 Completed successfully - owner %s has no drivers", identity.UserID)
		return []*models.FleetPosition{}, nil
	}

	driversByID := make(map[string]*models.User, len(drivers))
	driverIDs := make([]string, 0, len(drivers))
	for _, driver := range drivers {
		driversByID[driver.ID] = driver
		driverIDs = append(driverIDs, driver.ID)
	}

	records, err := s.positionsService.GetPositionsByAgentIDs(ctx, driverIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get fleet positions: %w", err)
	}

	fleet := make([]*models.FleetPosition, 0, len(records))
	for _, record := range records {
		driver, ok := driversByID[record.AgentID]
		if !ok {
			log.Printf("⚠️ Position %s belongs to driver %s outside of the fleet, skipping", record.ID, record.AgentID)
			continue
		}
		fleet = append(fleet, &models.FleetPosition{Position: record, Agent: driver})
	}

	log.Printf("📋 Completed successfully - fleet snapshot for %s has %d positions", identity.UserID, len(fleet))
	return fleet, nil
}
