package xqsim

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/seitsubo413/XQsim-library/internal/runtime"
	"github.com/seitsubo413/XQsim-library/internal/validator"
	"github.com/seitsubo413/XQsim-library/pkg/domain"
	"github.com/seitsubo413/XQsim-library/pkg/ports"
	"github.com/seitsubo413/XQsim-library/pkg/session"
)

// ResultVersion is the schema version stamped into every TraceResult.
const ResultVersion = 1

// Limits bounds the accepted QASM input. Zero fields disable the check.
type Limits struct {
	MaxQASMSizeBytes int
	MaxQubits        int
	MaxGates         int
}

// Service is the high-level entry point of the library. It owns the single
// admission slot and drives the full pipeline for each admitted request:
// validate, compile, simulate under the governor, correlate, assemble.
type Service struct {
	compiler ports.Compiler
	factory  ports.SimulatorFactory
	sessions *session.Manager
	preds    *runtime.PredicateTable

	limits          Limits
	maxCycles       uint64
	stabilityWindow int
	timeout         time.Duration
	simConfig       string
	workdirRoot     string
	keepArtifacts   bool
	logger          *slog.Logger
}

// Option defines a functional option for configuring the Service.
type Option func(*Service)

// WithLogger sets a custom structured logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithLimits sets the input limits enforced before admission.
func WithLimits(limits Limits) Option {
	return func(s *Service) {
		s.limits = limits
	}
}

// WithMaxCycles sets the hard cycle ceiling for a run.
func WithMaxCycles(n uint64) Option {
	return func(s *Service) {
		s.maxCycles = n
	}
}

// WithStabilityWindow sets how many consecutive cycles the completion
// conjunction must hold before the run is accepted as done.
func WithStabilityWindow(n int) Option {
	return func(s *Service) {
		s.stabilityWindow = n
	}
}

// WithTimeout sets the end-to-end deadline for one trace request, covering
// compilation and simulation together.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

// WithSimConfig sets the default simulator configuration preset.
func WithSimConfig(name string) Option {
	return func(s *Service) {
		s.simConfig = name
	}
}

// WithPredicates replaces the built-in completion predicate table.
func WithPredicates(preds *runtime.PredicateTable) Option {
	return func(s *Service) {
		s.preds = preds
	}
}

// WithWorkdirRoot places session working directories under root instead of
// the system temporary directory.
func WithWorkdirRoot(root string) Option {
	return func(s *Service) {
		s.workdirRoot = root
	}
}

// WithKeepArtifacts leaves each session's working directory in place after
// the run instead of removing it, so the compiler output can be inspected.
func WithKeepArtifacts(keep bool) Option {
	return func(s *Service) {
		s.keepArtifacts = keep
	}
}

// New initializes a Service over the given compiler toolchain and simulator
// factory.
func New(compiler ports.Compiler, factory ports.SimulatorFactory, opts ...Option) *Service {
	s := &Service{
		compiler: compiler,
		factory:  factory,
		limits: Limits{
			MaxQASMSizeBytes: 1 << 20,
			MaxQubits:        16,
			MaxGates:         10000,
		},
		maxCycles:       runtime.DefaultMaxCycles,
		stabilityWindow: runtime.DefaultStabilityWindow,
		timeout:         10 * time.Minute,
		simConfig:       "example_cmos",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if s.sessions == nil {
		s.sessions = session.NewManager(
			session.WithLogger(s.logger),
			session.WithWorkdirRoot(s.workdirRoot),
		)
	}
	if s.preds == nil {
		s.preds = runtime.DefaultPredicates()
	}
	return s
}

// TraceRequest is one trace job.
type TraceRequest struct {
	// QASM is the OpenQASM 2.0 program text.
	QASM string

	// Config overrides the service's simulator configuration preset.
	Config string
}

// InProgress reports whether a trace session currently holds the slot.
func (s *Service) InProgress() bool {
	return s.sessions.InProgress()
}

// Limits returns the input limits currently in force.
func (s *Service) Limits() Limits {
	return s.limits
}

// ProduceTrace runs the full pipeline for one request. It fails fast with a
// *domain.ValidationError on bad input and domain.ErrBusy when another
// session is live. A run cut short by the cycle ceiling or the deadline
// still returns the partial result; the meta block says why it stopped.
// A simulator fault returns a *domain.SimulationFault together with a
// non-nil result holding everything captured up to the fault cycle.
func (s *Service) ProduceTrace(ctx context.Context, req TraceRequest) (*domain.TraceResult, error) {
	qubits, err := validator.CheckQASM(req.QASM, validator.Limits{
		MaxSizeBytes: s.limits.MaxQASMSizeBytes,
		MaxQubits:    s.limits.MaxQubits,
		MaxGates:     s.limits.MaxGates,
	})
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Acquire()
	if err != nil {
		return nil, err
	}
	sess.KeepArtifacts = s.keepArtifacts
	defer sess.Release()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cfgName := req.Config
	if cfgName == "" {
		cfgName = s.simConfig
	}

	r := &run{
		service:   s,
		session:   sess,
		qasm:      req.QASM,
		numQubits: qubits,
		config:    cfgName,
		logger:    s.logger.With("session_id", sess.ID),
	}
	return r.execute(ctx)
}
