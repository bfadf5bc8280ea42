package broadcast

import (
	"fmt"
	"log"
	"sync"

	"fleetbackend/models"
)

const defaultBufferSize = 64

// Scope decides which sessions receive a location.
type Scope string

const (
	// ScopeAll delivers every location to every connected session.
	ScopeAll Scope = "all"
	// ScopeOwner delivers a location to admins and to the owner of the driver.
	ScopeOwner Scope = "owner"
)

func (s Scope) IsValid() bool {
	return s == ScopeAll || s == ScopeOwner
}

type subscriber struct {
	session models.BroadcastSession
	outbox  chan *models.LocationBroadcast
	done    chan struct{}
}

// Broadcaster keeps the registry of connected sessions and pushes each consolidated
// position to the sessions in scope. Each session has its own outbox and writer
// goroutine, so a slow session only loses its own events.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber
	bufferSize  int
	scope       Scope
	wg          sync.WaitGroup
}

func NewBroadcaster(bufferSize int, scope Scope) *Broadcaster {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	if !scope.IsValid() {
		scope = ScopeAll
	}
	return &Broadcaster{
		subscribers: make(map[string]*subscriber),
		bufferSize:  bufferSize,
		scope:       scope,
	}
}

// Register adds a session. Events published before registration are never delivered to it.
func (b *Broadcaster) Register(session models.BroadcastSession) error {
	if session == nil || session.ID() == "" {
		return fmt.Errorf("session must have an ID")
	}

	sub := &subscriber{
		session: session,
		outbox:  make(chan *models.LocationBroadcast, b.bufferSize),
		done:    make(chan struct{}),
	}

	b.mu.Lock()
	if _, exists := b.subscribers[session.ID()]; exists {
		b.mu.Unlock()
		return fmt.Errorf("session %s is already registered", session.ID())
	}
	b.subscribers[session.ID()] = sub
	b.mu.Unlock()

	b.wg.Add(1)
	go b.runWriter(sub)

	log.Printf("🔗 Session %s registered for broadcasts (user: %s, role: %s)",
		session.ID(), session.Identity().UserID, session.Identity().Role)
	return nil
}

// Unregister removes a session and stops its writer. Queued events are discarded.
func (b *Broadcaster) Unregister(sessionID string) bool {
	b.mu.Lock()
	sub, exists := b.subscribers[sessionID]
	if exists {
		delete(b.subscribers, sessionID)
		close(sub.done)
	}
	b.mu.Unlock()

	if exists {
		log.Printf("🔌 Session %s unregistered from broadcasts", sessionID)
	}
	return exists
}

// Publish queues the event for every eligible session without blocking and
// returns the number of sessions it was queued for.
func (b *Broadcaster) Publish(event *models.LocationBroadcast) int {
	if event == nil {
		return 0
	}

	// Sends are non-blocking, so holding the read lock keeps Unregister from racing them.
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for id, sub := range b.subscribers {
		if b.scope == ScopeOwner && !canObserve(sub.session.Identity(), event) {
			continue
		}
		select {
		case sub.outbox <- event:
			delivered++
		default:
			log.Printf("⚠️ Dropped location for driver %s: session %s outbox is full", event.DriverID, id)
		}
	}

	return delivered
}

func (b *Broadcaster) SessionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close unregisters every session and waits for the writers to exit.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	for id, sub := range b.subscribers {
		close(sub.done)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()

	b.wg.Wait()
	log.Printf("✅ Broadcaster closed")
}

func (b *Broadcaster) runWriter(sub *subscriber) {
	defer b.wg.Done()

	for {
		select {
		case <-sub.done:
			return
		case event := <-sub.outbox:
			// done may have been closed while this event was queued
			select {
			case <-sub.done:
				return
			default:
			}

			if err := sub.session.Emit(models.EventLocationReceived, event); err != nil {
				log.Printf("❌ Failed to emit location to session %s: %v", sub.session.ID(), err)
			}
		}
	}
}

// canObserve reports whether identity may see positions of the event's driver.
// Admins see the whole fleet and owners see their own drivers.
func canObserve(identity models.AuthenticatedIdentity, event *models.LocationBroadcast) bool {
	switch identity.Role {
	case models.UserRoleAdmin:
		return true
	case models.UserRoleOwner:
		return event.OwnerID != nil && *event.OwnerID == identity.UserID
	default:
		return false
	}
}
