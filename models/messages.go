package models

// Socket.IO event names
const (
	EventUpdateLocation   = "update-location"
	EventLocationReceived = "location-received"
	EventSessionReady     = "session-ready"
)

// CoordinatesPayload uses pointers so a missing field is distinguishable from zero.
type CoordinatesPayload struct {
	Latitude  *float64 `json:"latitude"  validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
}

func (p *CoordinatesPayload) ToCoordinates() Coordinates {
	return Coordinates{Latitude: *p.Latitude, Longitude: *p.Longitude}
}

// UpdateLocationPayload is the body of an update-location socket event and of the HTTP update call.
type UpdateLocationPayload struct {
	DriverID    string              `json:"driverId,omitempty"`
	Coordinates *CoordinatesPayload `json:"coordinates" validate:"required"`
}

// SessionReadyPayload is emitted once a socket session has been registered.
type SessionReadyPayload struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	Role      string `json:"role"`
}
