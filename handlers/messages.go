package handlers

import (
	"context"
	"fmt"
	"log"
	"time"

	"fleetbackend/clients/socketio"
	"fleetbackend/models"
	"fleetbackend/usecases"
)

const reportTimeout = 10 * time.Second

// MessagesHandler handles socket.io traffic of authenticated sessions
type MessagesHandler struct {
	trackingUseCase usecases.TrackingUseCaseInterface
}

func NewMessagesHandler(trackingUseCase usecases.TrackingUseCaseInterface) *MessagesHandler {
	return &MessagesHandler{trackingUseCase: trackingUseCase}
}

// HandleUpdateLocation ingests one update-location event. Errors drop the report and keep the connection open.
func (h *MessagesHandler) HandleUpdateLocation(session *socketio.Session, event string, data any) error {
	identity := session.Identity()

	var payload models.UpdateLocationPayload
	if err := decodeAndValidate(data, &payload); err != nil {
		log.Printf("❌ Dropping %s from session %s: %v", event, session.ID(), err)
		return fmt.Errorf("invalid %s payload: %w", event, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	record, err := h.trackingUseCase.IngestReport(ctx, identity, &payload, models.ReportSourceSocket)
	if err != nil {
		log.Printf("❌ Dropping %s from session %s: %v", event, session.ID(), err)
		return fmt.Errorf("failed to ingest %s: %w", event, err)
	}

	log.Printf("✅ Position %s stored for driver %s via session %s", record.ID, identity.UserID, session.ID())
	return nil
}

func (h *MessagesHandler) HandleSessionConnected(session *socketio.Session) error {
	return h.trackingUseCase.ConnectSession(session)
}

func (h *MessagesHandler) HandleSessionDisconnected(session *socketio.Session) error {
	return h.trackingUseCase.DisconnectSession(session.ID())
}
