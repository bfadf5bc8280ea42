package tracking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetbackend/core"
	"fleetbackend/db"
	"fleetbackend/models"
	"fleetbackend/services/broadcast"
	"fleetbackend/services/positions"
	"fleetbackend/services/txmanager"
	"fleetbackend/services/users"
	"fleetbackend/testutils"
)

type integrationDeps struct {
	useCase       *TrackingUseCase
	broadcaster   *broadcast.Broadcaster
	usersRepo     *db.PostgresUsersRepository
	positionsRepo *db.PostgresPositionsRepository
}

func setupIntegration(t *testing.T) *integrationDeps {
	dbConn, cfg := testutils.SetupTestDB(t)

	usersRepo := db.NewPostgresUsersRepository(dbConn, cfg.DatabaseSchema)
	positionsRepo := db.NewPostgresPositionsRepository(dbConn, cfg.DatabaseSchema)
	broadcaster := broadcast.NewBroadcaster(cfg.BroadcastConfig.SessionBufferSize, broadcast.ScopeAll)
	t.Cleanup(broadcaster.Close)

	useCase := NewTrackingUseCase(
		users.NewUsersService(usersRepo),
		positions.NewPositionsService(positionsRepo, cfg.BroadcastConfig.CoordinatePrecision),
		broadcaster,
		txmanager.NewTransactionManager(dbConn),
	)

	return &integrationDeps{
		useCase:       useCase,
		broadcaster:   broadcaster,
		usersRepo:     usersRepo,
		positionsRepo: positionsRepo,
	}
}

func TestTrackingUseCase_DriverReportScenario(t *testing.T) {
	d := setupIntegration(t)
	ctx := context.Background()

	owner := testutils.CreateTestOwner(t, d.usersRepo)
	driver := testutils.CreateTestDriver(t, d.usersRepo, owner.ID)
	driverIdentity := models.NewAuthenticatedIdentity(driver)

	first, err := d.useCase.IngestReport(ctx, driverIdentity, payloadAt(16.8661, 96.1561), models.ReportSourceHTTP)
	require.NoError(t, err)
	assertLonLat(t, [2]float64{96.1561, 16.8661}, first.Coordinates().LonLat())
	assert.Equal(t, models.PositionStatusIdle, first.Status)

	observerA := newRecordingSession(models.NewAuthenticatedIdentity(owner))
	observerB := newRecordingSession(models.AuthenticatedIdentity{UserID: core.NewID("u"), Role: models.UserRoleAdmin})
	require.NoError(t, d.useCase.ConnectSession(observerA))
	require.NoError(t, d.useCase.ConnectSession(observerB))

	second, err := d.useCase.IngestReport(ctx, driverIdentity, payloadAt(16.80, 96.20), models.ReportSourceSocket)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	count, err := d.positionsRepo.CountPositionsByAgentID(ctx, driver.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	for _, observer := range []*recordingSession{observerA, observerB} {
		require.Eventually(t, func() bool { return len(observer.locations()) == 1 }, 2*time.Second, 10*time.Millisecond)
		event := observer.locations()[0]
		assert.Equal(t, driver.ID, event.DriverID)
		assertLonLat(t, [2]float64{96.20, 16.80}, event.Coordinates.LonLat())
	}

	require.NoError(t, d.useCase.DisconnectSession(observerA.ID()))
	_, err = d.useCase.IngestReport(ctx, driverIdentity, payloadAt(16.79, 96.21), models.ReportSourceSocket)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(observerB.locations()) == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Len(t, observerA.locations(), 1)

	fleet, err := d.useCase.FleetSnapshot(ctx, models.NewAuthenticatedIdentity(owner))
	require.NoError(t, err)
	require.Len(t, fleet, 1)
	assert.Equal(t, driver.ID, fleet[0].Agent.ID)
	assert.InDelta(t, 16.79, fleet[0].Position.Latitude, 1e-9)
}

func TestTrackingUseCase_OnboardingIsIdempotent(t *testing.T) {
	d := setupIntegration(t)
	ctx := context.Background()

	owner := testutils.CreateTestOwner(t, d.usersRepo)
	driver := testutils.CreateTestDriver(t, d.usersRepo, owner.ID)

	first, unlock, err := d.useCase.onboardAgent(ctx, driver)
	require.NoError(t, err)
	unlock()
	second, unlock, err := d.useCase.onboardAgent(ctx, driver)
	require.NoError(t, err)
	unlock()

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.PositionStatusIdle, second.Status)
	assertLonLat(t, models.PlaceholderCoordinates.LonLat(), second.Coordinates().LonLat())

	count, err := d.positionsRepo.CountPositionsByAgentID(ctx, driver.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestTrackingUseCase_OnboardDriverEndToEnd(t *testing.T) {
	d := setupIntegration(t)
	ctx := context.Background()

	owner := testutils.CreateTestOwner(t, d.usersRepo)
	ownerIdentity := models.NewAuthenticatedIdentity(owner)
	email := core.NewID("new") + "@fleet.test"

	driver, err := d.useCase.OnboardDriver(ctx, ownerIdentity, "New Driver", email, "secret123")
	require.NoError(t, err)

	fleet, err := d.useCase.FleetSnapshot(ctx, ownerIdentity)
	require.NoError(t, err)
	require.Len(t, fleet, 1)
	assert.Equal(t, driver.ID, fleet[0].Agent.ID)
	assert.Equal(t, models.PositionStatusIdle, fleet[0].Position.Status)
	assertLonLat(t, models.PlaceholderCoordinates.LonLat(), fleet[0].Position.Coordinates().LonLat())

	_, err = d.useCase.OnboardDriver(ctx, ownerIdentity, "Again", email, "secret123")
	require.Error(t, err)
	assert.True(t, core.IsAlreadyExistsError(err))

	fleet, err = d.useCase.FleetSnapshot(ctx, ownerIdentity)
	require.NoError(t, err)
	assert.Len(t, fleet, 1)
}

func assertLonLat(t *testing.T, expected, actual [2]float64) {
	t.Helper()
	assert.InDelta(t, expected[0], actual[0], 1e-9, "longitude")
	assert.InDelta(t, expected[1], actual[1], 1e-9, "latitude")
}
