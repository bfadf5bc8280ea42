package tracking

import (
	"context"
	"fmt"
	"log"

	"github.com/samber/mo"

	"fleetbackend/core"
	"fleetbackend/models"
)

// OnboardDriver creates a driver for the calling owner together with its placeholder position
func (s *TrackingUseCase) OnboardDriver(
	ctx context.Context,
	identity models.AuthenticatedIdentity,
	name, email, password string,
) (*models.User, error) {
	log.Printf("📋 Starting to onboard driver for owner %s", identity.UserID)
	if !identity.IsOwner() {
		return nil, fmt.Errorf("%w: only owners can add drivers", core.ErrForbidden)
	}

	var driver *models.User
	var record *models.PositionRecord
	unlock := func() {}
	defer func() { unlock() }()

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		created, err := s.usersService.CreateDriver(ctx, identity.UserID, name, email, password)
		if err != nil {
			return err
		}

		placeholder, release, err := s.onboardAgent(ctx, created)
		if err != nil {
			return err
		}

		driver = created
		record = placeholder
		unlock = release
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to onboard driver: %w", err)
	}

	// the driver's lock is still held, so no report can be published ahead of the placeholder
	s.publish(record, driver.OwnerID)

	log.Printf("📋 Completed successfully - onboarded driver %s for owner %s", driver.ID, identity.UserID)
	return driver, nil
}

// onboardAgent gives a driver its placeholder position, resetting status to idle.
// Running it again never creates a second position. On success the driver's lock is
// still held and the caller must release it once the record has been published.
func (s *TrackingUseCase) onboardAgent(ctx context.Context, agent *models.User) (*models.PositionRecord, func(), error) {
	log.Printf("📋 Starting to onboard position for driver %s", agent.ID)
	if agent.Role != models.UserRoleDriver {
		return nil, nil, fmt.Errorf("%w: user %s is not a driver", core.ErrValidation, agent.ID)
	}

	unlock := s.agentLocks.lock(agent.ID)
	record, err := s.positionsService.Consolidate(
		ctx,
		agent.ID,
		models.PlaceholderCoordinates,
		mo.Some(models.PositionStatusIdle),
	)
	if err != nil {
		unlock()
		return nil, nil, fmt.Errorf("failed to create placeholder position: %w", err)
	}

	log.Printf("📋 Completed successfully - onboarded position %s for driver %s", record.ID, agent.ID)
	return record, unlock, nil
}
