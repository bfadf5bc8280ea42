package models

import (
	"time"
)

type ReportSource string

const (
	ReportSourceHTTP   ReportSource = "http"
	ReportSourceSocket ReportSource = "socket"
)

// PositionReport is one inbound location update, consumed immediately by consolidation.
type PositionReport struct {
	AgentID     string
	Coordinates Coordinates
	ReceivedAt  time.Time
	Source      ReportSource
}

// LocationBroadcast is pushed to connected sessions after a report is consolidated.
type LocationBroadcast struct {
	DriverID    string         `json:"driverId"`
	OwnerID     *string        `json:"-"`
	Coordinates Coordinates    `json:"coordinates"`
	Status      PositionStatus `json:"status,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// BroadcastSession is a connected push channel as seen by the fanout.
// Emit must be safe to call from a single writer goroutine per session.
type BroadcastSession interface {
	ID() string
	Identity() AuthenticatedIdentity
	Emit(event string, payload any) error
}
