package handlers

import (
	"net/http"
	"time"

	"fleetbackend/models/api"
)

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, api.HealthResponse{Status: "active", Time: time.Now().UTC()})
}
