package tracking

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/samber/mo"

	"fleetbackend/core"
	"fleetbackend/models"
)

// IngestReport consolidates a position reported by a driver and publishes it.
// The driver is always the authenticated caller; an explicit driverId must match it.
func (s *TrackingUseCase) IngestReport(
	ctx context.Context,
	identity models.AuthenticatedIdentity,
	payload *models.UpdateLocationPayload,
	source models.ReportSource,
) (*models.PositionRecord, error) {
	log.Printf("📋 Starting to ingest %s report from user %s", source, identity.UserID)

	if !identity.IsDriver() {
		return nil, fmt.Errorf("%w: only drivers can report positions", core.ErrForbidden)
	}
	if payload.DriverID != "" && payload.DriverID != identity.UserID {
		return nil, fmt.Errorf("%w: driverId %s does not match the authenticated driver", core.ErrForbidden, payload.DriverID)
	}
	if payload.Coordinates == nil || payload.Coordinates.Latitude == nil || payload.Coordinates.Longitude == nil {
		return nil, fmt.Errorf("%w: coordinates with latitude and longitude are required", core.ErrValidation)
	}

	report := models.PositionReport{
		AgentID:     identity.UserID,
		Coordinates: payload.Coordinates.ToCoordinates(),
		ReceivedAt:  time.Now(),
		Source:      source,
	}

	record, err := s.consolidateAndPublish(ctx, report.AgentID, identity.OwnerID, report.Coordinates, mo.None[models.PositionStatus]())
	if err != nil {
		return nil, err
	}

	log.Printf("📋 Completed successfully - ingested %s report for driver %s in %s",
		source, report.AgentID, time.Since(report.ReceivedAt))
	return record, nil
}

func (s *TrackingUseCase) consolidateAndPublish(
	ctx context.Context,
	agentID string,
	ownerID *string,
	coordinates models.Coordinates,
	status mo.Option[models.PositionStatus],
) (*models.PositionRecord, error) {
	unlock := s.agentLocks.lock(agentID)
	defer unlock()

	record, err := s.positionsService.Consolidate(ctx, agentID, coordinates, status)
	if err != nil {
		return nil, fmt.Errorf("failed to consolidate report for driver %s: %w", agentID, err)
	}

	s.publish(record, ownerID)
	return record, nil
}

// publish never fails the caller: delivery is best effort
func (s *TrackingUseCase) publish(record *models.PositionRecord, ownerID *string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Broadcast of driver %s position panicked: %v", record.AgentID, r)
		}
	}()

	event := &models.LocationBroadcast{
		DriverID:    record.AgentID,
		OwnerID:     ownerID,
		Coordinates: record.Coordinates(),
		Status:      record.Status,
		Timestamp:   record.UpdatedAt,
	}
	delivered := s.broadcaster.Publish(event)
	log.Printf("📤 Broadcast position of driver %s to %d sessions", record.AgentID, delivered)
}
