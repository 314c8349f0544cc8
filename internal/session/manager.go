package session

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/itchan-dev/aurum/internal/store"
	"github.com/itchan-dev/aurum/shared/csrf"
	"github.com/itchan-dev/aurum/shared/domain"
	"github.com/itchan-dev/aurum/shared/errors"
	"github.com/itchan-dev/aurum/shared/logger"
)

// ErrTooManySessions is returned by Create once the manager is full.
var ErrTooManySessions = errors.New("Too many active sessions, try again later", http.StatusServiceUnavailable)

// Seeder fills a fresh store with the starting conversations.
type Seeder func(*store.Store)

type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	seed           Seeder
	defaultChannel domain.ChannelKey
	ttl            time.Duration
	maxSessions    int
	now            func() time.Time
	onExpire       []func(*Session)
}

// NewManager keeps at most maxSessions live sessions; zero means no cap.
func NewManager(seed Seeder, defaultChannel domain.ChannelKey, ttl time.Duration, maxSessions int) *Manager {
	return &Manager{
		sessions:       make(map[string]*Session),
		seed:           seed,
		defaultChannel: defaultChannel,
		ttl:            ttl,
		maxSessions:    maxSessions,
		now:            time.Now,
	}
}

// Create starts a session with a freshly seeded store, or returns
// ErrTooManySessions when the cap is reached.
func (m *Manager) Create() (*Session, error) {
	if m.full() {
		return nil, ErrTooManySessions
	}
	token, err := csrf.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("generate csrf token: %w", err)
	}
	st := store.New(store.NewClockIds(nil))
	if m.seed != nil {
		m.seed(st)
	}
	s := New(uuid.NewString(), st, m.defaultChannel, m.now())
	s.CSRFToken = token

	m.mu.Lock()
	// re-checked under the write lock, concurrent creates may have filled it
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		m.mu.Unlock()
		return nil, ErrTooManySessions
	}
	m.sessions[s.Id] = s
	m.mu.Unlock()

	logger.Log.Debug("session created", "session_id", s.Id)
	return s, nil
}

// OnExpire registers fn to run for every session dropped by Cleanup.
func (m *Manager) OnExpire(fn func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = append(m.onExpire, fn)
}

// Get returns a live session and marks it as used.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	s.touch(m.now())
	return s, true
}

func (m *Manager) full() bool {
	if m.maxSessions <= 0 {
		return false
	}
	return m.Len() >= m.maxSessions
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Cleanup drops sessions idle longer than the ttl and returns how many went.
func (m *Manager) Cleanup() int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	hooks := slices.Clone(m.onExpire)
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
		for _, fn := range hooks {
			fn(s)
		}
	}
	return len(expired)
}

// StartBackgroundCleanup runs Cleanup every interval until ctx is done.
func (m *Manager) StartBackgroundCleanup(ctx context.Context, interval time.Duration) {
	log := logger.Component("session_cleanup")
	log.Info("starting", "interval", interval, "ttl", m.ttl)
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := m.Cleanup(); n > 0 {
					log.Info("expired idle sessions", "count", n, "remaining", m.Len())
				}
			case <-ctx.Done():
				log.Info("stopping")
				return
			}
		}
	}()
}
