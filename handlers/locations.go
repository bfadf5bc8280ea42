package handlers

import (
	"io"
	"log"
	"net/http"

	"fleetbackend/appctx"
	"fleetbackend/models"
	"fleetbackend/models/api"
	"fleetbackend/usecases"
)

const maxBodyBytes = 1 << 20

type LocationsHTTPHandler struct {
	trackingUseCase usecases.TrackingUseCaseInterface
}

func NewLocationsHTTPHandler(trackingUseCase usecases.TrackingUseCaseInterface) *LocationsHTTPHandler {
	return &LocationsHTTPHandler{trackingUseCase: trackingUseCase}
}

// HandleUpdateLocation accepts one position report from the authenticated driver
func (h *LocationsHTTPHandler) HandleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	log.Printf("📍 Location update request received from %s", r.RemoteAddr)

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

	var payload models.UpdateLocationPayload
	if err := decodeAndValidate(body, &payload); err != nil {
		log.Printf("❌ Invalid location payload from %s: %v", identity.UserID, err)
		writeErrorResponse(w, err)
		return
	}

	if _, err := h.trackingUseCase.IngestReport(r.Context(), identity, &payload, models.ReportSourceHTTP); err != nil {
		log.Printf("❌ Failed to ingest location from %s: %v", identity.UserID, err)
		writeErrorResponse(w, err)
		return
	}

	log.Printf("✅ Location synced for driver %s", identity.UserID)
	writeJSONResponse(w, http.StatusOK, api.MessageResponse{Message: "Position synced."})
}
