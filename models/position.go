package models

import (
	"time"
)

type PositionStatus string

const (
	PositionStatusIdle   PositionStatus = "idle"
	PositionStatusActive PositionStatus = "active"
)

func (s PositionStatus) IsValid() bool {
	return s == PositionStatusIdle || s == PositionStatusActive
}

// Coordinates are the latitude-first pair that clients send.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LonLat returns the pair in geospatial (longitude-first) order.
func (c Coordinates) LonLat() [2]float64 {
	return [2]float64{c.Longitude, c.Latitude}
}

// PlaceholderCoordinates is the position new drivers start at until they report.
var PlaceholderCoordinates = Coordinates{Latitude: 16.8661, Longitude: 96.1561}

// PositionRecord is the single current position of a driver.
type PositionRecord struct {
	ID        string         `db:"id"         json:"id"`
	AgentID   string         `db:"agent_id"   json:"agent_id"`
	Longitude float64        `db:"longitude"  json:"longitude"`
	Latitude  float64        `db:"latitude"   json:"latitude"`
	Status    PositionStatus `db:"status"     json:"status"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

func (p *PositionRecord) Coordinates() Coordinates {
	return Coordinates{Latitude: p.Latitude, Longitude: p.Longitude}
}

// FleetPosition joins a position with the public fields of its driver.
type FleetPosition struct {
	Position *PositionRecord
	Agent    *User
}
