package session

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/wca/pkg/domain"
	"github.com/aretw0/wca/pkg/fsm"
	"github.com/aretw0/wca/pkg/runner"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// session is the mutable record of one conversation.
// Guarded by the session lock.
type session struct {
	runner    *runner.Runner
	frames    uint64
	createdAt time.Time
	updatedAt time.Time
}

// Snapshot describes a session at one point in time.
type Snapshot struct {
	ID        string        `json:"id"`
	State     string        `json:"state"`
	Status    runner.Status `json:"status"`
	Frames    uint64        `json:"frames"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	start *fsm.State

	mu       sync.Mutex            // Global lock for the maps
	locks    map[string]*lockEntry // Map of active locks
	sessions map[string]*session

	logger      *slog.Logger
	runnerOpts  []runner.Option
	skipPrepare bool
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager and its runners.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithRunnerOptions appends options applied to every session runner.
func WithRunnerOptions(opts ...runner.Option) Option {
	return func(m *Manager) {
		m.runnerOpts = append(m.runnerOpts, opts...)
	}
}

// WithoutPrepare skips preparing the graph, for graphs prepared elsewhere.
func WithoutPrepare() Option {
	return func(m *Manager) {
		m.skipPrepare = true
	}
}

// NewManager prepares the graph reachable from start and returns a manager
// serving it. A preparation failure is returned and no manager is created.
func NewManager(ctx context.Context, start *fsm.State, opts ...Option) (*Manager, error) {
	m := &Manager{
		start:    start,
		locks:    make(map[string]*lockEntry),
		sessions: make(map[string]*session),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}

	if !m.skipPrepare {
		if err := fsm.PrepareAll(ctx, start); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Start returns the start state shared by all sessions.
func (m *Manager) Start() *fsm.State {
	return m.start
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

// withLock executes fn while holding the lock for the session.
func (m *Manager) withLock(sessionID string, fn func() error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()
	return fn()
}

func (m *Manager) lookup(sessionID string) (*session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	return s, ok
}

// loadOrCreate must be called with the session lock held.
func (m *Manager) loadOrCreate(sessionID string) (*session, error) {
	if s, ok := m.lookup(sessionID); ok {
		return s, nil
	}

	opts := append([]runner.Option{
		runner.WithLogger(m.logger),
		runner.WithLabel(sessionID),
		runner.WithPrepared(),
	}, m.runnerOpts...)
	r, err := runner.New(m.start, opts...)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s := &session{runner: r, createdAt: now, updatedAt: now}

	m.mu.Lock()
	m.sessions[sessionID] = s
	m.mu.Unlock()

	m.logger.Debug("session created", "session_id", sessionID)
	return s, nil
}

// Create opens a session at the start state. Creating an existing session
// leaves it untouched.
func (m *Manager) Create(sessionID string) (Snapshot, error) {
	var snap Snapshot
	err := m.withLock(sessionID, func() error {
		s, err := m.loadOrCreate(sessionID)
		if err != nil {
			return err
		}
		snap = s.snapshot(sessionID)
		return nil
	})
	return snap, err
}

// Feed steps the session with frame, creating the session if needed.
func (m *Manager) Feed(ctx context.Context, sessionID string, frame domain.Frame) (domain.Instruction, Snapshot, error) {
	var (
		inst domain.Instruction
		snap Snapshot
	)
	err := m.withLock(sessionID, func() error {
		s, err := m.loadOrCreate(sessionID)
		if err != nil {
			return err
		}

		inst, err = s.runner.Feed(ctx, frame)
		s.frames++
		s.updatedAt = time.Now()
		snap = s.snapshot(sessionID)
		return err
	})
	return inst, snap, err
}

// Current returns a snapshot of an existing session.
func (m *Manager) Current(sessionID string) (Snapshot, error) {
	var snap Snapshot
	err := m.withLock(sessionID, func() error {
		s, ok := m.lookup(sessionID)
		if !ok {
			return domain.ErrSessionNotFound
		}
		snap = s.snapshot(sessionID)
		return nil
	})
	return snap, err
}

// Reset moves an existing session back to the start state.
func (m *Manager) Reset(sessionID string) (Snapshot, error) {
	var snap Snapshot
	err := m.withLock(sessionID, func() error {
		s, ok := m.lookup(sessionID)
		if !ok {
			return domain.ErrSessionNotFound
		}
		s.runner.Reset()
		s.updatedAt = time.Now()
		snap = s.snapshot(sessionID)
		return nil
	})
	return snap, err
}

// Delete removes the session.
func (m *Manager) Delete(sessionID string) error {
	return m.withLock(sessionID, func() error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.sessions[sessionID]; !ok {
			return domain.ErrSessionNotFound
		}
		delete(m.sessions, sessionID)
		m.logger.Debug("session deleted", "session_id", sessionID)
		return nil
	})
}

// List returns the IDs of all sessions in sorted order.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *session) snapshot(id string) Snapshot {
	snap := Snapshot{
		ID:        id,
		Status:    s.runner.Status(),
		Frames:    s.frames,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
	if cur := s.runner.Current(); cur != nil {
		snap.State = cur.Name
	}
	return snap
}
