package handlers

import (
	"io"
	"log"
	"net/http"

	"fleetbackend/appctx"
	"fleetbackend/models/api"
	"fleetbackend/usecases"
)

type OwnerHTTPHandler struct {
	trackingUseCase usecases.TrackingUseCaseInterface
}

func NewOwnerHTTPHandler(trackingUseCase usecases.TrackingUseCaseInterface) *OwnerHTTPHandler {
	return &OwnerHTTPHandler{trackingUseCase: trackingUseCase}
}

func (h *OwnerHTTPHandler) HandleAddDriver(w http.ResponseWriter, r *http.Request) {
	log.Printf("➕ Add driver request received from %s", r.RemoteAddr)

	identity, ok := appctx.GetIdentity(r.Context())
	if !ok {
		log.Printf("❌ Identity not found in context")
		writeJSONResponse(w, http.StatusUnauthorized, api.ErrorResponse{Error: "Not authorized"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		log.Printf("❌ Failed to read request body: %v", err)
		writeJSONResponse(w, http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
		return
	}

	var req api.AddDriverRequest
	if err := decodeAndValidate(body, &req); err != nil {
		log.Printf("❌ Invalid add driver request from %s: %v", identity.UserID, err)
		writeErrorResponse(w, err)
		return
	}

	driver, err := h.trackingUseCase.OnboardDriver(r.Context(), identity, req.Name, req.Email, req.Password)
	if err != nil {
		log.Printf("❌ Failed to add driver for owner %s: %v", identity.UserID, err)
		writeErrorResponse(w, err)
		return
	}

	log.Printf("✅ Driver %s added to fleet of %s", driver.ID, identity.UserID)
	writeJSONResponse(w, http.StatusCreated, api.AddDriverResponse{Success: true, Message: "Driver added to fleet!"})
}

func (h *OwnerHTTPHandler) HandleGetFleet(w http.ResponseWriter, r *http.Request) {
	log.Printf("📋 Fleet request received from %s", r.RemoteAddr)

	identity, ok := appctx.GetIdentity(r.Context())
	if !ok {
		log.Printf("❌ Identity not found in context")
		writeJSONResponse(w, http.StatusUnauthorized, api.ErrorResponse{Error: "Not authorized"})
		return
	}

	fleet, err := h.trackingUseCase.FleetSnapshot(r.Context(), identity)
	if err != nil {
		log.Printf("❌ Failed to build fleet snapshot for %s: %v", identity.UserID, err)
		writeErrorResponse(w, err)
		return
	}

	log.Printf("✅ Returning %d fleet positions to %s", len(fleet), identity.UserID)
	writeJSONResponse(w, http.StatusOK, api.DomainFleetPositionsToAPI(fleet))
}
