// Package memory provides an in-process storage.Storage. Sessions live in a map
// guarded by a mutex and expire after a configurable idle period; a background
// loop sweeps expired sessions until Close is called.
package memory

import (
	"context"
	"sync"
	"time"

	"calculator/pkg/domain"
	"calculator/pkg/logger"
	"calculator/pkg/storage"

	"go.uber.org/zap"
)

// Options defines the limits of the in-memory storage.
type Options struct {
	// TTL is the idle period after which a session expires. Zero disables expiry.
	TTL time.Duration
	// MaxSessions caps the number of live sessions. Zero means unlimited.
	MaxSessions int
	// SweepInterval is how often expired sessions are removed. Zero disables the
	// background sweep; expired sessions are then only hidden from lookups.
	SweepInterval time.Duration
	// Now returns the current time. It defaults to time.Now.
	Now func() time.Time
}

// Memory implements storage.Storage in process memory.
type Memory struct {
	options Options

	mu       sync.Mutex
	sessions map[domain.SessionID]*domain.Session
	closed   bool

	stop chan struct{}
	done chan struct{}
}

// Ensure Memory implements storage.Storage.
var _ storage.Storage = (*Memory)(nil)

// New creates a Memory storage and starts its sweep loop when configured.
func New(ctx context.Context, options Options) *Memory {
	if options.Now == nil {
		options.Now = time.Now
	}

	m := &Memory{
		options:  options,
		sessions: make(map[domain.SessionID]*domain.Session),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	if options.SweepInterval > 0 && options.TTL > 0 {
		go m.sweepLoop(ctx)
	} else {
		close(m.done)
	}

	return m
}

func (m *Memory) sweepLoop(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.options.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				logger.Debug(ctx, "expired calculator sessions removed", zap.Int("count", n))
			}
		}
	}
}

// Sweep removes expired sessions and returns how many were removed.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	now := m.options.Now()
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
			removed++
		}
	}

	return removed
}

func (m *Memory) expired(s *domain.Session, now time.Time) bool {
	return m.options.TTL > 0 && now.Sub(s.UpdatedAt) >= m.options.TTL
}

// lookup returns the live session with the given ID. The caller holds mu.
func (m *Memory) lookup(ID domain.SessionID) *domain.Session {
	s, ok := m.sessions[ID]
	if !ok {
		return nil
	}
	if m.expired(s, m.options.Now()) {
		delete(m.sessions, ID)

		return nil
	}

	return s
}

// StoreSession inserts a copy of session.
func (m *Memory) StoreSession(_ context.Context, session domain.Session) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, storage.ErrClosed
	}
	if m.options.MaxSessions > 0 && len(m.sessions) >= m.options.MaxSessions {
		// expired sessions may still be waiting for the sweep
		now := m.options.Now()
		for id, s := range m.sessions {
			if m.expired(s, now) {
				delete(m.sessions, id)
			}
		}
		if len(m.sessions) >= m.options.MaxSessions {
			return nil, storage.ErrFull
		}
	}

	stored := session
	m.sessions[session.ID] = &stored
	out := stored

	return &out, nil
}

// SessionByID returns a copy of the session, or nil if it does not exist.
func (m *Memory) SessionByID(_ context.Context, ID domain.SessionID) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, storage.ErrClosed
	}

	s := m.lookup(ID)
	if s == nil {
		return nil, nil //nolint: nilnil
	}
	out := *s

	return &out, nil
}

// UpdateSession runs cb on a copy of the session while holding the storage lock
// and stores the copy when cb succeeds.
func (m *Memory) UpdateSession(_ context.Context,
	ID domain.SessionID,
	cb func(session *domain.Session) error) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, storage.ErrClosed
	}

	s := m.lookup(ID)
	if s == nil {
		return nil, nil //nolint: nilnil
	}

	updated := *s
	if err := cb(&updated); err != nil {
		return nil, err
	}
	// the ID is the map key and cannot change
	updated.ID = ID
	*s = updated
	out := updated

	return &out, nil
}

// DeleteSession removes the session and returns it, or nil if it did not exist.
func (m *Memory) DeleteSession(_ context.Context, ID domain.SessionID) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, storage.ErrClosed
	}

	s := m.lookup(ID)
	if s == nil {
		return nil, nil //nolint: nilnil
	}
	delete(m.sessions, ID)

	return s, nil
}

// SessionCount returns the number of stored sessions that have not expired.
func (m *Memory) SessionCount(_ context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.options.Now()
	count := 0
	for _, s := range m.sessions {
		if !m.expired(s, now) {
			count++
		}
	}

	return count
}

// Close stops the sweep loop and drops all sessions.
func (m *Memory) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()

		return nil
	}
	m.closed = true
	m.sessions = nil
	m.mu.Unlock()

	close(m.stop)
	<-m.done

	return nil
}
