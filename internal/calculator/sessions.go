package calculator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store maps session IDs to machines. One session corresponds to one
// calculator screen: state lives only in memory and only while the session
// exists. Sessions idle past the configured TTL are reaped by a background
// janitor.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session
	ttl      time.Duration

	stop chan struct{}
	done chan struct{}
}

type session struct {
	machine  *Machine
	lastSeen time.Time
}

// NewStore starts an empty session store whose janitor reaps sessions idle
// for longer than ttl. Call Close to stop the janitor.
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		sessions: make(map[string]*session),
		ttl:      ttl,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.janitor()
	return s
}

// Close stops the janitor goroutine. Existing sessions stay readable.
func (s *Store) Close() {
	close(s.stop)
	<-s.done
}

// Create registers a fresh machine and returns its session ID.
func (s *Store) Create(ctx context.Context) (string, *Machine) {
	id := uuid.New().String()
	m := NewMachine()

	s.mu.Lock()
	s.sessions[id] = &session{machine: m, lastSeen: time.Now()}
	s.mu.Unlock()

	sessionsActive.Add(ctx, 1)
	return id, m
}

// Get returns the machine for id and marks the session as recently used.
func (s *Store) Get(id string) (*Machine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.lastSeen = time.Now()
	return sess.machine, true
}

// Delete ends a session. It reports whether the session existed.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	_, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	if ok {
		sessionsActive.Add(ctx, -1)
	}
	return ok
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) janitor() {
	defer close(s.done)

	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.reap(now)
		}
	}
}

func (s *Store) reap(now time.Time) {
	s.mu.Lock()
	var expired int64
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
			expired++
		}
	}
	s.mu.Unlock()

	if expired > 0 {
		sessionsActive.Add(context.Background(), -expired)
	}
}
