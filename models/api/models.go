package api

import (
	"time"
)

// DriverRefModel is the public subset of a driver embedded in fleet responses
type DriverRefModel struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// GeoPointModel is a GeoJSON point with coordinates in [longitude, latitude] order
type GeoPointModel struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// FleetPositionModel represents one driver position returned by the fleet snapshot
type FleetPositionModel struct {
	ID        string          `json:"_id"`
	DriverID  *DriverRefModel `json:"driverId"`
	Location  GeoPointModel   `json:"location"`
	Status    string          `json:"status"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// AddDriverRequest is the body of POST /api/v1/owner/add-driver
type AddDriverRequest struct {
	Name     string `json:"name"     validate:"required,max=200"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type AddDriverResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}
