package tracking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fleetbackend/core"
	"fleetbackend/models"
	"fleetbackend/services/broadcast"
	"fleetbackend/services/positions"
	"fleetbackend/services/txmanager"
	"fleetbackend/services/users"
)

type testDeps struct {
	useCase     *TrackingUseCase
	users       *users.MockUsersService
	positions   *positions.MockPositionsService
	broadcaster *broadcast.MockBroadcaster
	txManager   *txmanager.MockTransactionManager
}

func setupUseCase() *testDeps {
	d := &testDeps{
		users:       &users.MockUsersService{},
		positions:   &positions.MockPositionsService{},
		broadcaster: &broadcast.MockBroadcaster{},
		txManager:   &txmanager.MockTransactionManager{},
	}
	d.useCase = NewTrackingUseCase(d.users, d.positions, d.broadcaster, d.txManager)
	return d
}

type recordingSession struct {
	id       string
	identity models.AuthenticatedIdentity

	mu     sync.Mutex
	events []any
	names  []string
}

func newRecordingSession(identity models.AuthenticatedIdentity) *recordingSession {
	return &recordingSession{id: core.NewID("sess"), identity: identity}
}

func (s *recordingSession) ID() string                             { return s.id }
func (s *recordingSession) Identity() models.AuthenticatedIdentity { return s.identity }

func (s *recordingSession) Emit(event string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = append(s.names, event)
	s.events = append(s.events, payload)
	return nil
}

func (s *recordingSession) locations() []*models.LocationBroadcast {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.LocationBroadcast
	for i, name := range s.names {
		if name == models.EventLocationReceived {
			out = append(out, s.events[i].(*models.LocationBroadcast))
		}
	}
	return out
}

func floatPtr(v float64) *float64 { return &v }

func payloadAt(lat, lon float64) *models.UpdateLocationPayload {
	return &models.UpdateLocationPayload{
		Coordinates: &models.CoordinatesPayload{Latitude: floatPtr(lat), Longitude: floatPtr(lon)},
	}
}

func driverIdentity() models.AuthenticatedIdentity {
	ownerID := core.NewID("u")
	return models.AuthenticatedIdentity{UserID: core.NewID("u"), Role: models.UserRoleDriver, OwnerID: &ownerID}
}

func TestTrackingUseCase_IngestReport(t *testing.T) {
	ctx := context.Background()

	t.Run("Consolidates and publishes", func(t *testing.T) {
		d := setupUseCase()
		identity := driverIdentity()
		updatedAt := time.Now()
		record := &models.PositionRecord{
			ID:        core.NewID("pos"),
			AgentID:   identity.UserID,
			Latitude:  16.8661,
			Longitude: 96.1561,
			Status:    models.PositionStatusIdle,
			UpdatedAt: updatedAt,
		}

		d.positions.On("Consolidate", ctx, identity.UserID,
			models.Coordinates{Latitude: 16.8661, Longitude: 96.1561},
			mo.None[models.PositionStatus](),
		).Return(record, nil)
		d.broadcaster.On("Publish", mock.MatchedBy(func(event *models.LocationBroadcast) bool {
			return event.DriverID == identity.UserID &&
				event.OwnerID == identity.OwnerID &&
				event.Coordinates == models.Coordinates{Latitude: 16.8661, Longitude: 96.1561} &&
				event.Status == models.PositionStatusIdle &&
				event.Timestamp.Equal(updatedAt)
		})).Return(2)

		got, err := d.useCase.IngestReport(ctx, identity, payloadAt(16.8661, 96.1561), models.ReportSourceHTTP)
		require.NoError(t, err)
		assert.Equal(t, record, got)
		d.positions.AssertExpectations(t)
		d.broadcaster.AssertExpectations(t)
	})

	t.Run("Matching explicit driverId is accepted", func(t *testing.T) {
		d := setupUseCase()
		identity := driverIdentity()
		payload := payloadAt(1, 2)
		payload.DriverID = identity.UserID

		d.positions.On("Consolidate", ctx, identity.UserID, mock.Anything, mock.Anything).
			Return(&models.PositionRecord{AgentID: identity.UserID}, nil)
		d.broadcaster.On("Publish", mock.Anything).Return(0)

		_, err := d.useCase.IngestReport(ctx, identity, payload, models.ReportSourceSocket)
		require.NoError(t, err)
	})

	t.Run("Foreign driverId is forbidden", func(t *testing.T) {
		d := setupUseCase()
		payload := payloadAt(1, 2)
		payload.DriverID = core.NewID("u")

		_, err := d.useCase.IngestReport(ctx, driverIdentity(), payload, models.ReportSourceHTTP)
		require.Error(t, err)
		assert.True(t, core.IsForbiddenError(err))
		d.positions.AssertNotCalled(t, "Consolidate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Owners cannot report positions", func(t *testing.T) {
		d := setupUseCase()
		owner := models.AuthenticatedIdentity{UserID: core.NewID("u"), Role: models.UserRoleOwner}

		_, err := d.useCase.IngestReport(ctx, owner, payloadAt(1, 2), models.ReportSourceHTTP)
		assert.True(t, core.IsForbiddenError(err))
	})

	t.Run("Missing coordinates", func(t *testing.T) {
		d := setupUseCase()
		_, err := d.useCase.IngestReport(ctx, driverIdentity(), &models.UpdateLocationPayload{}, models.ReportSourceSocket)
		assert.True(t, core.IsValidationError(err))
	})

	t.Run("Store failure is returned and nothing is published", func(t *testing.T) {
		d := setupUseCase()
		identity := driverIdentity()
		d.positions.On("Consolidate", ctx, identity.UserID, mock.Anything, mock.Anything).
			Return(nil, errors.New("connection refused"))

		_, err := d.useCase.IngestReport(ctx, identity, payloadAt(1, 2), models.ReportSourceHTTP)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
		d.broadcaster.AssertNotCalled(t, "Publish", mock.Anything)
	})

	t.Run("Broadcast panic does not fail the report", func(t *testing.T) {
		d := setupUseCase()
		identity := driverIdentity()
		d.positions.On("Consolidate", ctx, identity.UserID, mock.Anything, mock.Anything).
			Return(&models.PositionRecord{AgentID: identity.UserID}, nil)
		d.broadcaster.On("Publish", mock.Anything).Run(func(args mock.Arguments) {
			panic("fanout exploded")
		}).Return(0)

		_, err := d.useCase.IngestReport(ctx, identity, payloadAt(1, 2), models.ReportSourceHTTP)
		assert.NoError(t, err)
	})
}

func TestTrackingUseCase_PublishOrderFollowsConsolidationOrder(t *testing.T) {
	d := setupUseCase()
	realBroadcaster := broadcast.NewBroadcaster(256, broadcast.ScopeAll)
	defer realBroadcaster.Close()
	d.useCase.broadcaster = realBroadcaster

	observer := newRecordingSession(models.AuthenticatedIdentity{UserID: core.NewID("u"), Role: models.UserRoleOwner})
	require.NoError(t, realBroadcaster.Register(observer))

	identity := driverIdentity()
	var mu sync.Mutex
	var stored []float64
	d.positions.On("Consolidate", mock.Anything, identity.UserID, mock.Anything, mock.Anything).
		Return(func(_ context.Context, agentID string, c models.Coordinates, _ mo.Option[models.PositionStatus]) *models.PositionRecord {
			mu.Lock()
			stored = append(stored, c.Latitude)
			mu.Unlock()
			return &models.PositionRecord{AgentID: agentID, Latitude: c.Latitude, Longitude: c.Longitude}
		}, nil)

	const reports = 30
	var wg sync.WaitGroup
	for i := 0; i < reports; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := d.useCase.IngestReport(context.Background(), identity, payloadAt(float64(i), 0), models.ReportSourceSocket)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	require.Eventually(t, func() bool { return len(observer.locations()) == reports }, 2*time.Second, 10*time.Millisecond)

	received := observer.locations()
	for i, event := range received {
		assert.Equal(t, stored[i], event.Coordinates.Latitude)
	}
}

func TestTrackingUseCase_SlowDriverDoesNotBlockOtherDrivers(t *testing.T) {
	d := setupUseCase()
	slow := driverIdentity()
	fast := driverIdentity()

	slowStarted := make(chan struct{})
	releaseSlow := make(chan struct{})
	d.positions.On("Consolidate", mock.Anything, slow.UserID, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			close(slowStarted)
			<-releaseSlow
		}).
		Return(&models.PositionRecord{AgentID: slow.UserID}, nil)
	d.positions.On("Consolidate", mock.Anything, fast.UserID, mock.Anything, mock.Anything).
		Return(&models.PositionRecord{AgentID: fast.UserID}, nil)
	d.broadcaster.On("Publish", mock.Anything).Return(0)

	slowDone := make(chan struct{})
	go func() {
		defer close(slowDone)
		_, err := d.useCase.IngestReport(context.Background(), slow, payloadAt(1, 2), models.ReportSourceSocket)
		assert.NoError(t, err)
	}()
	<-slowStarted

	fastDone := make(chan error, 1)
	go func() {
		_, err := d.useCase.IngestReport(context.Background(), fast, payloadAt(3, 4), models.ReportSourceSocket)
		fastDone <- err
	}()

	select {
	case err := <-fastDone:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("report of one driver waited on another driver's store write")
	}

	close(releaseSlow)
	<-slowDone
	assert.Equal(t, 0, d.useCase.agentLocks.size())
}

func TestTrackingUseCase_OnboardDriver(t *testing.T) {
	ctx := context.Background()
	owner := models.AuthenticatedIdentity{UserID: core.NewID("u"), Role: models.UserRoleOwner}

	t.Run("Creates driver and placeholder position", func(t *testing.T) {
		d := setupUseCase()
		driver := &models.User{ID: core.NewID("u"), Role: models.UserRoleDriver, OwnerID: &owner.UserID}

		d.txManager.On("WithTransaction", ctx, mock.Anything).Return(nil)
		d.users.On("CreateDriver", ctx, owner.UserID, "Ko Ko", "koko@fleet.test", "secret123").Return(driver, nil)
		d.positions.On("Consolidate", ctx, driver.ID, models.PlaceholderCoordinates, mo.Some(models.PositionStatusIdle)).
			Return(&models.PositionRecord{AgentID: driver.ID, Status: models.PositionStatusIdle}, nil)
		d.broadcaster.On("Publish", mock.MatchedBy(func(event *models.LocationBroadcast) bool {
			return event.DriverID == driver.ID && *event.OwnerID == owner.UserID
		})).Return(1)

		got, err := d.useCase.OnboardDriver(ctx, owner, "Ko Ko", "koko@fleet.test", "secret123")
		require.NoError(t, err)
		assert.Equal(t, driver, got)
		d.users.AssertExpectations(t)
		d.positions.AssertExpectations(t)
		d.broadcaster.AssertExpectations(t)
	})

	t.Run("Existing email", func(t *testing.T) {
		d := setupUseCase()
		d.txManager.On("WithTransaction", ctx, mock.Anything).Return(nil)
		d.users.On("CreateDriver", ctx, owner.UserID, "Ko Ko", "taken@fleet.test", "secret123").
			Return(nil, core.ErrAlreadyExists)

		_, err := d.useCase.OnboardDriver(ctx, owner, "Ko Ko", "taken@fleet.test", "secret123")
		require.Error(t, err)
		assert.True(t, core.IsAlreadyExistsError(err))
		d.positions.AssertNotCalled(t, "Consolidate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		d.broadcaster.AssertNotCalled(t, "Publish", mock.Anything)
	})

	t.Run("Drivers cannot onboard drivers", func(t *testing.T) {
		d := setupUseCase()
		_, err := d.useCase.OnboardDriver(ctx, driverIdentity(), "x", "x@fleet.test", "secret123")
		assert.True(t, core.IsForbiddenError(err))
	})

	t.Run("Placeholder is published under the driver lock", func(t *testing.T) {
		d := setupUseCase()
		driver := &models.User{ID: core.NewID("u"), Role: models.UserRoleDriver, OwnerID: &owner.UserID}

		d.txManager.On("WithTransaction", ctx, mock.Anything).Return(nil)
		d.users.On("CreateDriver", ctx, owner.UserID, "Ko Ko", "koko@fleet.test", "secret123").Return(driver, nil)
		d.positions.On("Consolidate", ctx, driver.ID, models.PlaceholderCoordinates, mo.Some(models.PositionStatusIdle)).
			Return(&models.PositionRecord{AgentID: driver.ID, Status: models.PositionStatusIdle}, nil)

		heldWhilePublishing := false
		d.broadcaster.On("Publish", mock.Anything).Run(func(args mock.Arguments) {
			heldWhilePublishing = d.useCase.agentLocks.size() == 1
		}).Return(1)

		_, err := d.useCase.OnboardDriver(ctx, owner, "Ko Ko", "koko@fleet.test", "secret123")
		require.NoError(t, err)
		assert.True(t, heldWhilePublishing)
		assert.Equal(t, 0, d.useCase.agentLocks.size())
	})

	t.Run("Placeholder failure rolls back and releases the lock", func(t *testing.T) {
		d := setupUseCase()
		driver := &models.User{ID: core.NewID("u"), Role: models.UserRoleDriver, OwnerID: &owner.UserID}

		d.txManager.On("WithTransaction", ctx, mock.Anything).Return(nil)
		d.users.On("CreateDriver", ctx, owner.UserID, "Ko Ko", "koko@fleet.test", "secret123").Return(driver, nil)
		d.positions.On("Consolidate", ctx, driver.ID, mock.Anything, mock.Anything).
			Return(nil, errors.New("connection refused"))

		_, err := d.useCase.OnboardDriver(ctx, owner, "Ko Ko", "koko@fleet.test", "secret123")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create placeholder position")
		assert.Equal(t, 0, d.useCase.agentLocks.size())
		d.broadcaster.AssertNotCalled(t, "Publish", mock.Anything)
	})

	t.Run("Only drivers get a placeholder", func(t *testing.T) {
		d := setupUseCase()
		_, _, err := d.useCase.onboardAgent(ctx, &models.User{ID: core.NewID("u"), Role: models.UserRoleOwner})
		assert.True(t, core.IsValidationError(err))
		d.positions.AssertNotCalled(t, "Consolidate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTrackingUseCase_FleetSnapshot(t *testing.T) {
	ctx := context.Background()
	owner := models.AuthenticatedIdentity{UserID: core.NewID("u"), Role: models.UserRoleOwner}

	t.Run("Joins positions with drivers", func(t *testing.T) {
		d := setupUseCase()
		first := &models.User{ID: core.NewID("u"), Name: "First", Role: models.UserRoleDriver}
		second := &models.User{ID: core.NewID("u"), Name: "Second", Role: models.UserRoleDriver}
		positionFirst := &models.PositionRecord{ID: core.NewID("pos"), AgentID: first.ID}

		d.users.On("GetDriversByOwnerID", ctx, owner.UserID).Return([]*models.User{first, second}, nil)
		d.positions.On("GetPositionsByAgentIDs", ctx, []string{first.ID, second.ID}).
			Return([]*models.PositionRecord{positionFirst}, nil)

		fleet, err := d.useCase.FleetSnapshot(ctx, owner)
		require.NoError(t, err)
		require.Len(t, fleet, 1)
		assert.Equal(t, positionFirst, fleet[0].Position)
		assert.Equal(t, first, fleet[0].Agent)
	})

	t.Run("Owner without drivers gets empty list", func(t *testing.T) {
		d := setupUseCase()
		d.users.On("GetDriversByOwnerID", ctx, owner.UserID).Return([]*models.User{}, nil)

		fleet, err := d.useCase.FleetSnapshot(ctx, owner)
		require.NoError(t, err)
		assert.NotNil(t, fleet)
		assert.Empty(t, fleet)
		d.positions.AssertNotCalled(t, "GetPositionsByAgentIDs", mock.Anything, mock.Anything)
	})

	t.Run("Drivers are forbidden", func(t *testing.T) {
		d := setupUseCase()
		_, err := d.useCase.FleetSnapshot(ctx, driverIdentity())
		assert.True(t, core.IsForbiddenError(err))
	})

	t.Run("Admins have no fleet of their own", func(t *testing.T) {
		d := setupUseCase()
		admin := models.AuthenticatedIdentity{UserID: core.NewID("u"), Role: models.UserRoleAdmin}
		_, err := d.useCase.FleetSnapshot(ctx, admin)
		assert.True(t, core.IsForbiddenError(err))
		d.users.AssertNotCalled(t, "GetDriversByOwnerID", mock.Anything, mock.Anything)
	})
}

func TestTrackingUseCase_Sessions(t *testing.T) {
	d := setupUseCase()
	session := newRecordingSession(models.AuthenticatedIdentity{UserID: core.NewID("u"), Role: models.UserRoleOwner})

	d.broadcaster.On("Register", session).Return(nil)
	d.broadcaster.On("SessionCount").Return(1)
	require.NoError(t, d.useCase.ConnectSession(session))

	require.Len(t, session.names, 1)
	assert.Equal(t, models.EventSessionReady, session.names[0])
	ready := session.events[0].(models.SessionReadyPayload)
	assert.Equal(t, session.ID(), ready.SessionID)
	assert.Equal(t, "owner", ready.Role)

	d.broadcaster.On("Unregister", session.ID()).Return(true)
	require.NoError(t, d.useCase.DisconnectSession(session.ID()))
	d.broadcaster.AssertExpectations(t)
}
