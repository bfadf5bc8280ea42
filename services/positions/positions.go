package positions

import (
	"context"
	"fmt"
	"log"

	"github.com/samber/mo"

	"fleetbackend/core"
	"fleetbackend/db"
	"fleetbackend/models"
)

type PositionsService struct {
	positionsRepo *db.PostgresPositionsRepository
	precision     int32
}

// NewPositionsService creates the consolidation engine. Coordinates are rounded to precision decimal places.
func NewPositionsService(repo *db.PostgresPositionsRepository, precision int32) *PositionsService {
	return &PositionsService{positionsRepo: repo, precision: precision}
}

// Consolidate writes the agent's latest position, creating the record if it does not exist.
// A stored status is replaced only when status is present.
func (s *PositionsService) Consolidate(
	ctx context.Context,
	agentID string,
	coordinates models.Coordinates,
	status mo.Option[models.PositionStatus],
) (*models.PositionRecord, error) {
	log.Printf("📋 Starting to consolidate position for agent: %s", agentID)
	if !core.HasIDPrefix(agentID, core.UserIDPrefix) {
		return nil, fmt.Errorf("%w: agent ID must be a valid user ID", core.ErrValidation)
	}
	if err := core.ValidateLatLon(coordinates.Latitude, coordinates.Longitude); err != nil {
		return nil, err
	}
	if value, ok := status.Get(); ok && !value.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", core.ErrValidation, value)
	}

	record := &models.PositionRecord{
		ID:        core.NewID(core.PositionIDPrefix),
		AgentID:   agentID,
		Latitude:  core.RoundCoordinate(coordinates.Latitude, s.precision),
		Longitude: core.RoundCoordinate(coordinates.Longitude, s.precision),
	}
	if err := s.positionsRepo.UpsertPosition(ctx, record, status); err != nil {
		return nil, fmt.Errorf("failed to consolidate position: %w", err)
	}

	log.Printf("📋 Completed successfully - consolidated position %s for agent %s (status %s)", record.ID, agentID, record.Status)
	return record, nil
}

func (s *PositionsService) GetPositionsByAgentIDs(
	ctx context.Context,
	agentIDs []string,
) ([]*models.PositionRecord, error) {
	log.Printf("📋 Starting to get positions for %d agents", len(agentIDs))
	for _, agentID := range agentIDs {
		if !core.HasIDPrefix(agentID, core.UserIDPrefix) {
			return nil, fmt.Errorf("%w: agent ID %q must be a valid user ID", core.ErrValidation, agentID)
		}
	}

	records, err := s.positionsRepo.GetPositionsByAgentIDs(ctx, agentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get positions: %w", err)
	}

	log.Printf("📋 Completed successfully - found %d positions", len(records))
	return records, nil
}
