package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/promowizard/internal/logging"
	"github.com/aretw0/promowizard/pkg/domain"
	"github.com/aretw0/promowizard/pkg/ports"
	"github.com/aretw0/promowizard/pkg/wizard"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a distributed session lock is held.
const DefaultLockTTL = 30 * time.Second

// Factory builds the controller of a session. It is called on Open and on rehydration.
type Factory func(sessionID, accountID string) *wizard.Controller

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// fingerprint identifies the persisted shape of a session.
type fingerprint struct {
	version uint64
	step    domain.Step
	page    int
	draft   string
}

func fingerprintOf(rec *domain.SessionRecord) fingerprint {
	return fingerprint{
		version: rec.Snapshot.Version,
		step:    rec.Step,
		page:    rec.CatalogPage,
		draft:   rec.Draft.Key(),
	}
}

type liveSession struct {
	ctrl *wizard.Controller
	// stored is the record last read from or written to the store.
	stored fingerprint
	// local is the controller state matching stored.
	local fingerprint
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store   ports.SessionStore
	factory Factory

	mu    sync.Mutex              // Global lock for the maps
	locks map[string]*lockEntry   // Map of active locks
	live  map[string]*liveSession // Controllers held in memory

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the TTL of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.SessionStore, factory Factory, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		factory: factory,
		locks:   make(map[string]*lockEntry),
		live:    make(map[string]*liveSession),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Open starts a new session for accountID and returns its id.
func (m *Manager) Open(ctx context.Context, accountID string) (string, error) {
	id := uuid.NewString()
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		ctrl := m.factory(id, accountID)
		ctrl.Open(ctx)

		rec := ctrl.Record()
		rec.SessionID = id
		if err := m.store.Save(ctx, id, rec); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		fp := fingerprintOf(rec)
		m.setLive(id, &liveSession{ctrl: ctrl, stored: fp, local: fp})
		return nil
	})
	if err != nil {
		return "", err
	}
	m.logger.Info("Session opened", "session_id", id, "account_id", accountID)
	return id, nil
}

// Do runs fn against the controller of a session while holding its lock, then
// persists the session when fn changed it. A controller closed by fn, e.g. by a
// successful submit, has its session removed.
func (m *Manager) Do(ctx context.Context, sessionID string, fn func(context.Context, *wizard.Controller) error) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		s, err := m.resolve(ctx, sessionID)
		if err != nil {
			return err
		}

		fnErr := fn(ctx, s.ctrl)

		if s.ctrl.Closed() {
			m.dropLive(sessionID)
			if err := m.store.Delete(ctx, sessionID); err != nil {
				return errors.Join(fnErr, fmt.Errorf("failed to delete closed session: %w", err))
			}
			m.logger.Info("Session completed", "session_id", sessionID)
			return fnErr
		}

		rec := s.ctrl.Record()
		rec.SessionID = sessionID
		if fp := fingerprintOf(rec); fp != s.local {
			if err := m.store.Save(ctx, sessionID, rec); err != nil {
				return errors.Join(fnErr, fmt.Errorf("failed to persist session: %w", err))
			}
			s.stored, s.local = fp, fp
		}
		return fnErr
	})
}

// resolve returns the live session, rehydrating it when the stored record is not
// the one the live controller last saw. The caller holds the session lock.
func (m *Manager) resolve(ctx context.Context, sessionID string) (*liveSession, error) {
	rec, err := m.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			m.dropLive(sessionID)
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if s := m.getLive(sessionID); s != nil && s.stored == fingerprintOf(rec) {
		return s, nil
	}

	ctrl := m.factory(sessionID, rec.AccountID)
	ctrl.Restore(rec)
	ctrl.Resume(ctx)

	local := ctrl.Record()
	s := &liveSession{ctrl: ctrl, stored: fingerprintOf(rec), local: fingerprintOf(local)}
	m.setLive(sessionID, s)
	m.logger.Debug("Session rehydrated", "session_id", sessionID, "step", int(rec.Step))
	return s, nil
}

// Close tears down the controller and removes the session from the store.
func (m *Manager) Close(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		s := m.getLive(sessionID)
		if s == nil {
			if _, err := m.store.Load(ctx, sessionID); err != nil {
				return err
			}
		} else {
			s.ctrl.Close()
			m.dropLive(sessionID)
		}
		if err := m.store.Delete(ctx, sessionID); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		m.logger.Info("Session closed", "session_id", sessionID)
		return nil
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Active returns the number of controllers held in memory.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

func (m *Manager) getLive(id string) *liveSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live[id]
}

func (m *Manager) setLive(id string, s *liveSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.live[id] = s
}

func (m *Manager) dropLive(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.live, id)
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	// Distributed Locking
	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
