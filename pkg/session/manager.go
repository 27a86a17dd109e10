// Package session serializes trace runs. The simulator writes compiler
// artifacts into a shared layout on disk and holds mutable per-run state, so
// at most one trace session may be live at a time; everyone else is turned
// away immediately instead of queueing.
package session

import (
	"fmt"
	"os"
	"sync"

	"log/slog"

	"github.com/seitsubo413/XQsim-library/internal/logging"
	"github.com/seitsubo413/XQsim-library/pkg/domain"
)

// Session is one admitted trace run. Workdir is an isolated directory for
// compiler artifacts; Release tears it down and frees the slot.
type Session struct {
	ID      string
	Workdir string

	// KeepArtifacts leaves the workdir in place on Release so the compiler
	// output can be inspected after the run.
	KeepArtifacts bool

	manager *Manager
	once    sync.Once
}

// Release frees the admission slot and, unless KeepArtifacts is set, removes
// the session workdir. It is idempotent; only the first call has any effect.
func (s *Session) Release() {
	s.once.Do(func() {
		if s.KeepArtifacts {
			s.manager.logger.Info("keeping session artifacts",
				"session_id", s.ID,
				"workdir", s.Workdir,
			)
			s.manager.free(s.ID)
			return
		}
		if err := os.RemoveAll(s.Workdir); err != nil {
			s.manager.logger.Warn("failed to remove session workdir",
				"session_id", s.ID,
				"workdir", s.Workdir,
				"err", err,
			)
		}
		s.manager.free(s.ID)
	})
}

// Manager is the binary admission gate. There is no queue: a second caller
// while a session is live gets domain.ErrBusy and must retry on its own.
type Manager struct {
	mu      sync.Mutex
	current string // ID of the live session, empty when idle
	counter uint64

	workdirRoot string
	logger      *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithWorkdirRoot places session workdirs under root instead of the system
// temporary directory.
func WithWorkdirRoot(root string) Option {
	return func(m *Manager) {
		m.workdirRoot = root
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates an idle admission gate.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Acquire claims the admission slot and provisions an isolated workdir.
// It never blocks: when a session is already live it fails with
// domain.ErrBusy.
func (m *Manager) Acquire() (*Session, error) {
	m.mu.Lock()
	if m.current != "" {
		m.mu.Unlock()
		return nil, domain.ErrBusy
	}
	m.counter++
	id := fmt.Sprintf("trace-%d", m.counter)
	m.current = id
	m.mu.Unlock()

	workdir, err := os.MkdirTemp(m.workdirRoot, "xqsim-"+id+"-")
	if err != nil {
		m.free(id)
		return nil, fmt.Errorf("failed to provision session workdir: %w", err)
	}

	m.logger.Debug("session admitted", "session_id", id, "workdir", workdir)
	return &Session{ID: id, Workdir: workdir, manager: m}, nil
}

// InProgress reports whether a session currently holds the slot.
func (m *Manager) InProgress() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != ""
}

// free releases the slot if id still holds it.
func (m *Manager) free(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == id {
		m.current = ""
		m.logger.Debug("session released", "session_id", id)
	}
}
