package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"fleetbackend/core"
	"fleetbackend/models/api"
)

func writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("❌ Failed to encode JSON response: %v", err)
	}
}

// writeErrorResponse maps domain errors to HTTP statuses
func writeErrorResponse(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	switch {
	case core.IsAlreadyExistsError(err):
		status = http.StatusBadRequest
		message = "Email already registered"
	case core.IsValidationError(err):
		status = http.StatusBadRequest
		message = trimSentinel(err, core.ErrValidation.Error())
	case core.IsUnauthenticatedError(err):
		status = http.StatusUnauthorized
		message = "Not authorized"
	case core.IsForbiddenError(err):
		status = http.StatusForbidden
		message = trimSentinel(err, core.ErrForbidden.Error())
	case core.IsNotFoundError(err):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		log.Printf("❌ Request failed: %v", err)
	}
	writeJSONResponse(w, status, api.ErrorResponse{Error: message})
}

// trimSentinel drops wrapping context so clients only see the sentinel and its detail
func trimSentinel(err error, sentinel string) string {
	msg := err.Error()
	if idx := strings.Index(msg, sentinel); idx >= 0 {
		return msg[idx:]
	}
	return msg
}
