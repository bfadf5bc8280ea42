package socketio

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/zishang520/socket.io/v2/socket"

	"fleetbackend/core"
	"fleetbackend/models"
	"fleetbackend/utils"
)

// Emitter is the part of a socket.io socket a Session writes to
type Emitter interface {
	Emit(event string, args ...any) error
}

// Session is one authenticated socket.io connection
type Session struct {
	id          string
	socketID    string
	identity    models.AuthenticatedIdentity
	emitter     Emitter
	connectedAt time.Time
}

func NewSession(socketID string, identity models.AuthenticatedIdentity, emitter Emitter) *Session {
	return &Session{
		id:          core.NewID(core.SessionIDPrefix),
		socketID:    socketID,
		identity:    identity,
		emitter:     emitter,
		connectedAt: time.Now(),
	}
}

func (s *Session) ID() string                             { return s.id }
func (s *Session) SocketID() string                       { return s.socketID }
func (s *Session) Identity() models.AuthenticatedIdentity { return s.identity }
func (s *Session) ConnectedAt() time.Time                 { return s.connectedAt }

func (s *Session) Emit(event string, payload any) error {
	if err := s.emitter.Emit(event, payload); err != nil {
		return fmt.Errorf("failed to emit %s to session %s: %w", event, s.id, err)
	}
	return nil
}

type MessageHandlerFunc func(session *Session, event string, data any) error
type ConnectionHookFunc func(session *Session) error

// AuthenticatorFunc resolves the bearer token presented at handshake
type AuthenticatorFunc func(ctx context.Context, token string) (models.AuthenticatedIdentity, error)

type SocketIOServer struct {
	server             *socket.Server
	authenticate       AuthenticatorFunc
	sessions           map[string]*Session
	mutex              sync.RWMutex
	messageHandlers    map[string][]MessageHandlerFunc
	connectionHooks    []ConnectionHookFunc
	disconnectionHooks []ConnectionHookFunc
}

func NewSocketIOServer(authenticate AuthenticatorFunc) *SocketIOServer {
	server := socket.NewServer(nil, nil)
	s := &SocketIOServer{
		server:             server,
		authenticate:       authenticate,
		sessions:           make(map[string]*Session),
		messageHandlers:    make(map[string][]MessageHandlerFunc),
		connectionHooks:    make([]ConnectionHookFunc, 0),
		disconnectionHooks: make([]ConnectionHookFunc, 0),
	}

	err := server.On("connection", func(sockets ...any) {
		sock := sockets[0].(*socket.Socket)
		s.handleConnection(sock)
	})
	utils.AssertInvariant(err == nil, fmt.Sprintf("Failed to register connection handler: %v", err))

	return s
}

func (s *SocketIOServer) RegisterWithRouter(router *mux.Router) {
	log.Printf("🚀 Registering Socket.IO server on /socket.io/ endpoint")
	router.PathPrefix("/socket.io/").Handler(s.server.ServeHandler(nil))
	log.Printf("✅ Socket.IO server registered on /socket.io/")
}

// getSocketIOHeader performs a case-insensitive lookup for a header in the headers map
func getSocketIOHeader(headers map[string][]string, headerName string) (string, bool) {
	for key, value := range headers {
		if strings.EqualFold(key, headerName) {
			if len(value) > 0 && value[0] != "" {
				return value[0], true
			}
		}
	}
	return "", false
}

// bearerFromHeaders extracts the bearer token from handshake headers
func bearerFromHeaders(headers map[string][]string) (string, error) {
	authHeader, exists := getSocketIOHeader(headers, "Authorization")
	if !exists {
		return "", fmt.Errorf("missing Authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", fmt.Errorf("invalid Authorization header format")
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", fmt.Errorf("empty bearer token")
	}
	return token, nil
}

// bearerFromAuth extracts the token a client passed as io(url, { auth: { token } })
func bearerFromAuth(auth any) (string, bool) {
	fields, ok := auth.(map[string]any)
	if !ok {
		return "", false
	}
	token, ok := fields["token"].(string)
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	return token, token != ""
}

// bearerFromHandshake prefers the socket.io auth payload and falls back to the Authorization header
func bearerFromHandshake(handshake *socket.Handshake) (string, error) {
	if handshake == nil {
		return "", fmt.Errorf("missing handshake")
	}
	if token, ok := bearerFromAuth(handshake.Auth); ok {
		return token, nil
	}
	return bearerFromHeaders(handshake.Headers)
}

func (s *SocketIOServer) handleConnection(sock *socket.Socket) {
	log.Printf("🔗 New Socket.IO connection attempt, socket ID: %s", sock.Id())

	token, err := bearerFromHandshake(sock.Handshake())
	if err != nil {
		log.Printf("❌ Rejecting Socket.IO connection: %v", err)
		sock.Disconnect(true)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	identity, err := s.authenticate(ctx, token)
	cancel()
	if err != nil {
		log.Printf("❌ Rejecting Socket.IO connection: %v", err)
		sock.Disconnect(true)
		return
	}

	session := NewSession(string(sock.Id()), identity, sock)
	s.addSession(session)
	log.Printf("✅ Socket.IO session %s connected for user %s (%s), socket ID: %s",
		session.ID(), identity.UserID, identity.Role, sock.Id())

	s.mutex.RLock()
	events := make([]string, 0, len(s.messageHandlers))
	for event := range s.messageHandlers {
		events = append(events, event)
	}
	s.mutex.RUnlock()

	for _, event := range events {
		err = sock.On(event, func(data ...any) {
			if len(data) == 0 {
				log.Printf("❌ No data received with %s from session %s", event, session.ID())
				return
			}
			log.Printf("📥 %s received from session %s", event, session.ID())
			// reports on one connection are handled independently of each other
			go s.invokeMessageHandlers(session, event, data[0])
		})
		utils.AssertInvariant(err == nil, fmt.Sprintf("Failed to set up %s handler for session %s: %v", event, session.ID(), err))
	}

	err = sock.On("disconnect", func(data ...any) {
		log.Printf("🔌 Socket.IO connection closed for session %s after %s (socket ID: %s)",
			session.ID(), time.Since(session.ConnectedAt()).Round(time.Second), sock.Id())
		s.removeSession(session.ID())
		s.invokeHooks(s.snapshotHooks(false), session, "disconnection")
	})
	utils.AssertInvariant(err == nil, fmt.Sprintf("Failed to set up disconnection handler for session %s: %v", session.ID(), err))

	s.invokeHooks(s.snapshotHooks(true), session, "connection")
}

func (s *SocketIOServer) addSession(session *Session) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.sessions[session.ID()] = session
	log.Printf("📊 Session %s added to active connections. Total sessions: %d", session.ID(), len(s.sessions))
}

func (s *SocketIOServer) removeSession(sessionID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.sessions[sessionID]; !exists {
		log.Printf("⚠️ Attempted to remove session %s but not found in active connections", sessionID)
		return
	}
	delete(s.sessions, sessionID)
	log.Printf("🔌 Session %s removed. Remaining sessions: %d", sessionID, len(s.sessions))
}

func (s *SocketIOServer) SessionCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.sessions)
}

// RegisterMessageHandler subscribes handler to an inbound event. Register before serving.
func (s *SocketIOServer) RegisterMessageHandler(event string, handler MessageHandlerFunc) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.messageHandlers[event] = append(s.messageHandlers[event], handler)
	log.Printf("📝 Message handler registered for %s. Total handlers: %d", event, len(s.messageHandlers[event]))
}

func (s *SocketIOServer) RegisterConnectionHook(hook ConnectionHookFunc) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.connectionHooks = append(s.connectionHooks, hook)
	log.Printf("🔗 Connection hook registered. Total connection hooks: %d", len(s.connectionHooks))
}

func (s *SocketIOServer) RegisterDisconnectionHook(hook ConnectionHookFunc) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.disconnectionHooks = append(s.disconnectionHooks, hook)
	log.Printf("🔌 Disconnection hook registered. Total disconnection hooks: %d", len(s.disconnectionHooks))
}

func (s *SocketIOServer) snapshotHooks(connect bool) []ConnectionHookFunc {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if connect {
		return append([]ConnectionHookFunc(nil), s.connectionHooks...)
	}
	return append([]ConnectionHookFunc(nil), s.disconnectionHooks...)
}

func (s *SocketIOServer) invokeMessageHandlers(session *Session, event string, data any) {
	s.mutex.RLock()
	handlers := append([]MessageHandlerFunc(nil), s.messageHandlers[event]...)
	s.mutex.RUnlock()

	for i, handler := range handlers {
		if err := handler(session, event, data); err != nil {
			log.Printf("❌ Handler %d for %s failed on session %s: %v", i+1, event, session.ID(), err)
		}
	}
}

func (s *SocketIOServer) invokeHooks(hooks []ConnectionHookFunc, session *Session, kind string) {
	log.Printf("🔗 Invoking %d %s hooks for session %s", len(hooks), kind, session.ID())
	for i, hook := range hooks {
		if err := hook(session); err != nil {
			log.Printf("❌ %s hook %d failed for session %s: %v", kind, i+1, session.ID(), err)
		}
	}
}
