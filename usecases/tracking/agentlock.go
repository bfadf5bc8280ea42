package tracking

import "sync"

type agentLock struct {
	mu   sync.Mutex
	refs int
}

// agentLocks hands out one mutex per driver. Entries live only while someone holds or waits on them.
type agentLocks struct {
	mu    sync.Mutex
	locks map[string]*agentLock
}

func newAgentLocks() *agentLocks {
	return &agentLocks{locks: make(map[string]*agentLock)}
}

// lock blocks until agentID is free and returns the matching unlock
func (l *agentLocks) lock(agentID string) func() {
	l.mu.Lock()
	entry, ok := l.locks[agentID]
	if !ok {
		entry = &agentLock{}
		l.locks[agentID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()

			l.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(l.locks, agentID)
			}
			l.mu.Unlock()
		})
	}
}

func (l *agentLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
