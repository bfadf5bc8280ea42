package tracking

import (
	"fmt"
	"log"

	"fleetbackend/models"
)

// ConnectSession adds a push session to the fanout and confirms it to the client
func (s *TrackingUseCase) ConnectSession(session models.BroadcastSession) error {
	identity := session.Identity()
	log.Printf("📋 Starting to connect session %s for user %s", session.ID(), identity.UserID)

	if err := s.broadcaster.Register(session); err != nil {
		return fmt.Errorf("failed to register session: %w", err)
	}

	ready := models.SessionReadyPayload{
		SessionID: session.ID(),
		UserID:    identity.UserID,
		Role:      string(identity.Role),
	}
	if err := session.Emit(models.EventSessionReady, ready); err != nil {
		log.Printf("⚠️ Failed to confirm session %s: %v", session.ID(), err)
	}

	log.Printf("📋 Completed successfully - connected session %s (%d active)", session.ID(), s.broadcaster.SessionCount())
	return nil
}

// DisconnectSession removes a push session from the fanout; later positions are not delivered to it
func (s *TrackingUseCase) DisconnectSession(sessionID string) error {
	log.Printf("📋 Starting to disconnect session %s", sessionID)
	if !s.broadcaster.Unregister(sessionID) {
		log.Printf("⚠️ Session %s was not registered", sessionID)
		return nil
	}

	log.Printf("📋 Completed successfully - disconnected session %s (%d active)", sessionID, s.broadcaster.SessionCount())
	return nil
}
