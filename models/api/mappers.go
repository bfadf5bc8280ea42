package api

import "fleetbackend/models"

// DomainUserToDriverRef converts a domain User to the public driver reference.
// Credential material is never copied.
func DomainUserToDriverRef(user *models.User) *DriverRefModel {
	if user == nil {
		return nil
	}

	return &DriverRefModel{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	}
}

// DomainFleetPositionToAPI converts a joined fleet position to its API model
func DomainFleetPositionToAPI(position *models.FleetPosition) *FleetPositionModel {
	if position == nil || position.Position == nil {
		return nil
	}

	record := position.Position
	return &FleetPositionModel{
		ID:       record.ID,
		DriverID: DomainUserToDriverRef(position.Agent),
		Location: GeoPointModel{
			Type:        "Point",
			Coordinates: record.Coordinates().LonLat(),
		},
		Status:    string(record.Status),
		UpdatedAt: record.UpdatedAt,
	}
}

// DomainFleetPositionsToAPI converts a fleet snapshot; the result is never nil so it encodes as []
func DomainFleetPositionsToAPI(positions []*models.FleetPosition) []*FleetPositionModel {
	result := make([]*FleetPositionModel, 0, len(positions))
	for _, position := range positions {
		if apiPosition := DomainFleetPositionToAPI(position); apiPosition != nil {
			result = append(result, apiPosition)
		}
	}
	return result
}
