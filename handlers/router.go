package handlers

import (
	"log"

	"github.com/gorilla/mux"

	"fleetbackend/middleware"
	"fleetbackend/models"
)

func SetupEndpoints(
	router *mux.Router,
	authMiddleware *middleware.AuthMiddleware,
	locationsHandler *LocationsHTTPHandler,
	ownerHandler *OwnerHTTPHandler,
) {
	log.Printf("🚀 Registering API endpoints")

	router.HandleFunc("/health", HandleHealth).Methods("GET")
	log.Printf("✅ GET /health endpoint registered")

	driverOnly := middleware.RequireRole(models.UserRoleDriver)
	ownerOnly := middleware.RequireRole(models.UserRoleOwner)

	v1 := router.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/locations/update", authMiddleware.WithAuth(driverOnly(locationsHandler.HandleUpdateLocation))).
		Methods("POST")
	log.Printf("✅ POST /api/v1/locations/update endpoint registered")

	v1.HandleFunc("/owner/add-driver", authMiddleware.WithAuth(ownerOnly(ownerHandler.HandleAddDriver))).
		Methods("POST")
	log.Printf("✅ POST /api/v1/owner/add-driver endpoint registered")

	v1.HandleFunc("/owner/fleet", authMiddleware.WithAuth(ownerOnly(ownerHandler.HandleGetFleet))).Methods("GET")
	log.Printf("✅ GET /api/v1/owner/fleet endpoint registered")

	log.Printf("✅ All API endpoints registered successfully")
}
