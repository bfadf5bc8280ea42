package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"fleetbackend/clients/auth"
	"fleetbackend/clients/socketio"
	"fleetbackend/config"
	"fleetbackend/db"
	"fleetbackend/handlers"
	"fleetbackend/middleware"
	"fleetbackend/models"
	"fleetbackend/services/broadcast"
	"fleetbackend/services/positions"
	"fleetbackend/services/txmanager"
	"fleetbackend/services/users"
	"fleetbackend/usecases/tracking"
	"fleetbackend/utils"
)

func main() {
	if err := run(); err != nil {
		log.Printf("❌ Fatal error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	alertMiddleware := middleware.NewErrorAlertMiddleware(middleware.SlackAlertConfig{
		WebhookURL:  cfg.SlackConfig.AlertWebhookURL,
		Environment: cfg.Environment,
		AppName:     "fleetbackend",
		LogsURL:     cfg.ServerLogsURL,
	})

	dbConn, err := db.NewConnection(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	err = db.ApplyMigrations(migrateCtx, dbConn, cfg.DatabaseSchema)
	cancelMigrate()
	if err != nil {
		return err
	}

	// Repositories share one connection pool
	usersRepo := db.NewPostgresUsersRepository(dbConn, cfg.DatabaseSchema)
	positionsRepo := db.NewPostgresPositionsRepository(dbConn, cfg.DatabaseSchema)

	txManager := txmanager.NewTransactionManager(dbConn)
	usersService := users.NewUsersService(usersRepo)
	positionsService := positions.NewPositionsService(positionsRepo, cfg.BroadcastConfig.CoordinatePrecision)
	broadcaster := broadcast.NewBroadcaster(
		cfg.BroadcastConfig.SessionBufferSize,
		broadcast.Scope(cfg.BroadcastConfig.Scope),
	)
	defer broadcaster.Close()

	trackingUseCase := tracking.NewTrackingUseCase(usersService, positionsService, broadcaster, txManager)

	verifiers := []auth.TokenVerifier{auth.NewJWTVerifier([]byte(cfg.AuthConfig.JWTSecret))}
	if cfg.ClerkConfig.IsConfigured() {
		verifiers = append(verifiers, auth.NewClerkVerifier(cfg.ClerkConfig.SecretKey))
	}
	authMiddleware := middleware.NewAuthMiddleware(usersService, verifiers...)

	socketServer := socketio.NewSocketIOServer(authMiddleware.ResolveToken)
	messagesHandler := handlers.NewMessagesHandler(trackingUseCase)
	locationsHandler := handlers.NewLocationsHTTPHandler(trackingUseCase)
	ownerHandler := handlers.NewOwnerHTTPHandler(trackingUseCase)

	// Session lifecycle and inbound reports
	socketServer.RegisterConnectionHook(alertMiddleware.WrapConnectionHook(messagesHandler.HandleSessionConnected))
	socketServer.RegisterDisconnectionHook(alertMiddleware.WrapConnectionHook(messagesHandler.HandleSessionDisconnected))
	socketServer.RegisterMessageHandler(
		models.EventUpdateLocation,
		alertMiddleware.WrapMessageHandler(messagesHandler.HandleUpdateLocation),
	)

	router := mux.NewRouter()
	socketServer.RegisterWithRouter(router)
	handlers.SetupEndpoints(router, authMiddleware, locationsHandler, ownerHandler)

	c := cors.New(cors.Options{
		AllowedOrigins:   utils.SplitAndTrim(cfg.CORSAllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           alertMiddleware.HTTPMiddleware(c.Handler(router)),
		ReadHeaderTimeout: 30 * time.Second,
	}

	return handleGracefulShutdown(server)
}

func handleGracefulShutdown(server *http.Server) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("✅ Listening on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		log.Printf("❌ Server error: %v", err)
		return err
	case <-stop:
		log.Printf("🛑 Shutdown signal received, cleaning up...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Server shutdown error: %v", err)
		return err
	}

	log.Printf("✅ Server stopped gracefully")
	return nil
}
