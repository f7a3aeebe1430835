package runtime

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/vine/internal/logging"
	"github.com/aretw0/vine/pkg/domain"
	"github.com/aretw0/vine/pkg/ports"
)

// State of the reload state machine.
type State string

const (
	StateIdle       State = "idle"
	StatePollDue    State = "poll_due"
	StateValidating State = "validating"
	StateCommitted  State = "committed"
	StateRolledBack State = "rolled_back"
)

// Outcome is what one supervisor step did.
type Outcome string

const (
	// OutcomeNone means no poll was due.
	OutcomeNone Outcome = "none"
	// OutcomeUnchanged means the script was checked and nothing needed to change.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeCommitted means a new session replaced the active one.
	OutcomeCommitted Outcome = "committed"
	// OutcomeRolledBack means a candidate failed validation and was discarded.
	OutcomeRolledBack Outcome = "rolled_back"
	// OutcomeUnavailable means the script could not be queried.
	OutcomeUnavailable Outcome = "unavailable"
	// OutcomeDeferred means a reload was due but a script call was in flight.
	OutcomeDeferred Outcome = "deferred"
)

// SessionFactory constructs a candidate session with the given generation.
type SessionFactory func(ctx context.Context, generation uint64) *Session

// SupervisorStatus is a copy of the supervisor's bookkeeping.
type SupervisorStatus struct {
	State       State
	Generation  uint64
	Stamp       domain.Stamp
	Loaded      bool
	AutoReload  bool
	LastOutcome Outcome
	LastError   error
	LastErrorAt time.Time
}

// Supervisor owns the active session and swaps it on reload. A broken
// candidate never replaces a working session.
//
// It is driven synchronously by the frame loop and is not safe for
// concurrent use.
type Supervisor struct {
	source  ports.ScriptSource
	factory SessionFactory
	policy  domain.ReloadPolicy
	clock   func() time.Time
	logger  *slog.Logger
	hooks   domain.LifecycleHooks

	state      State
	active     *Session
	stamp      domain.Stamp
	generation uint64

	rejected      domain.Stamp
	hasRejected   bool
	missingLogged bool
	forcePending  bool

	lastOutcome Outcome
	lastErr     error
	lastErrAt   time.Time
}

// SupervisorOption configures a Supervisor.
type SupervisorOption func(*Supervisor)

// WithClock replaces time.Now, for tests.
func WithClock(clock func() time.Time) SupervisorOption {
	return func(s *Supervisor) {
		s.clock = clock
	}
}

// WithPolicy sets the initial reload policy.
func WithPolicy(p domain.ReloadPolicy) SupervisorOption {
	return func(s *Supervisor) {
		s.policy = p
	}
}

// WithSupervisorLogger sets the logger.
func WithSupervisorLogger(l *slog.Logger) SupervisorOption {
	return func(s *Supervisor) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSupervisorHooks registers lifecycle hooks for reload outcomes.
func WithSupervisorHooks(h domain.LifecycleHooks) SupervisorOption {
	return func(s *Supervisor) {
		s.hooks = h
	}
}

// NewSupervisor creates a supervisor. Call Start before the first frame.
func NewSupervisor(source ports.ScriptSource, factory SessionFactory, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		source:      source,
		factory:     factory,
		policy:      domain.ReloadPolicy{AutoReload: true, PollInterval: domain.DefaultPollInterval},
		clock:       time.Now,
		logger:      logging.NewNop(),
		state:       StateIdle,
		lastOutcome: OutcomeNone,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.policy.PollInterval <= 0 {
		s.policy.PollInterval = domain.DefaultPollInterval
	}
	return s
}

// Start performs the initial load. A missing or broken script leaves no
// active session, which the host shows as the fallback GUI.
func (s *Supervisor) Start(ctx context.Context) Outcome {
	s.policy.LastPoll = s.clock()
	return s.validate(ctx, false, true)
}

// Tick runs one step of the state machine. It polls when auto-reload is on
// and the poll interval elapsed, or when a reload was requested.
func (s *Supervisor) Tick(ctx context.Context) Outcome {
	now := s.clock()
	force := s.forcePending
	if !force && !s.policy.Due(now) {
		return OutcomeNone
	}
	if s.active != nil && s.active.Busy() {
		return s.finish(OutcomeDeferred)
	}
	s.forcePending = false
	s.policy.LastPoll = now
	return s.poll(ctx, force)
}

// RequestReload schedules a force reload for the next Tick.
func (s *Supervisor) RequestReload() {
	s.forcePending = true
}

// ReloadPending reports whether a requested reload has not run yet.
func (s *Supervisor) ReloadPending() bool { return s.forcePending }

// ForceReload validates the script now, ignoring the auto-reload flag and
// the poll interval. It must be called between frames.
func (s *Supervisor) ForceReload(ctx context.Context) Outcome {
	if s.active != nil && s.active.Busy() {
		s.forcePending = true
		return s.finish(OutcomeDeferred)
	}
	s.forcePending = false
	s.policy.LastPoll = s.clock()
	return s.poll(ctx, true)
}

// SetAutoReload sets the auto-reload flag. It does not trigger a reload.
func (s *Supervisor) SetAutoReload(enabled bool) {
	if s.policy.AutoReload != enabled {
		s.logger.Info("auto-reload changed", "enabled", enabled)
	}
	s.policy.AutoReload = enabled
}

// ToggleAutoReload flips the auto-reload flag and returns the new value.
func (s *Supervisor) ToggleAutoReload() bool {
	s.SetAutoReload(!s.policy.AutoReload)
	return s.policy.AutoReload
}

// Policy returns a copy of the reload policy.
func (s *Supervisor) Policy() domain.ReloadPolicy { return s.policy }

// State returns the current state. Between steps this is always StateIdle.
func (s *Supervisor) State() State { return s.state }

// Active returns the active session, or nil if none is loaded.
func (s *Supervisor) Active() *Session { return s.active }

// Source returns the script source.
func (s *Supervisor) Source() ports.ScriptSource { return s.source }

// Status returns a copy of the supervisor's bookkeeping.
func (s *Supervisor) Status() SupervisorStatus {
	return SupervisorStatus{
		State:       s.state,
		Generation:  s.generation,
		Stamp:       s.stamp,
		Loaded:      s.active != nil,
		AutoReload:  s.policy.AutoReload,
		LastOutcome: s.lastOutcome,
		LastError:   s.lastErr,
		LastErrorAt: s.lastErrAt,
	}
}

// Close disposes the active session.
func (s *Supervisor) Close() error {
	if s.active == nil {
		return nil
	}
	err := s.active.Dispose()
	if err == nil {
		s.active = nil
	}
	return err
}

func (s *Supervisor) finish(o Outcome) Outcome {
	s.state = StateIdle
	s.lastOutcome = o
	return o
}

func (s *Supervisor) fail(err error) {
	s.lastErr = err
	s.lastErrAt = s.clock()
}

func (s *Supervisor) poll(ctx context.Context, force bool) Outcome {
	s.state = StatePollDue

	stamp, err := s.source.Stat()
	if err != nil {
		if errors.Is(err, domain.ErrScriptNotFound) {
			if !s.missingLogged {
				s.logger.Info("script not found, keeping current session", "script", s.source.Name())
				s.missingLogged = true
			}
			return s.finish(OutcomeUnavailable)
		}
		qErr := &domain.FilesystemQueryError{Path: s.source.Name(), Err: err}
		s.logger.Warn("failed to query script", "err", qErr)
		s.emitError(ctx, qErr)
		return s.finish(OutcomeUnavailable)
	}
	if s.missingLogged {
		s.logger.Info("script found", "script", s.source.Name())
		s.missingLogged = false
	}

	if !force {
		if s.active != nil && stamp == s.stamp {
			return s.finish(OutcomeUnchanged)
		}
		if s.hasRejected && stamp == s.rejected {
			return s.finish(OutcomeUnchanged)
		}
	}
	return s.validate(ctx, force, false)
}

// validate builds a candidate and either commits or rolls it back.
func (s *Supervisor) validate(ctx context.Context, force, initial bool) Outcome {
	s.state = StateValidating
	candidate := s.factory(ctx, s.generation+1)

	if !candidate.Loaded() {
		loadErr := candidate.LoadErr()
		candidate.Discard()
		_ = candidate.Dispose()

		var unavailable *domain.ScriptUnavailableError
		if errors.As(loadErr, &unavailable) {
			if !errors.Is(loadErr, domain.ErrScriptNotFound) {
				s.fail(loadErr)
				s.logger.Warn("failed to read script", "err", loadErr)
				s.emitError(ctx, loadErr)
			} else if !s.missingLogged {
				s.logger.Info("script not found, keeping current session", "script", s.source.Name())
				s.missingLogged = true
			}
			return s.finish(OutcomeUnavailable)
		}

		s.state = StateRolledBack
		if stamp := candidate.Stamp(); !stamp.IsZero() {
			s.rejected, s.hasRejected = stamp, true
		}
		s.fail(loadErr)
		if initial {
			s.logger.Error("script failed to load, showing fallback", "script", s.source.Name(), "err", loadErr)
		} else {
			s.logger.Error("reload failed, keeping previous session", "script", s.source.Name(), "err", loadErr)
		}
		s.emitError(ctx, loadErr)
		s.emitReload(ctx, s.hooks.OnReloadRolledBack, domain.EventReloadRolledBack, candidate, force, loadErr)
		return s.finish(OutcomeRolledBack)
	}

	if force && s.active != nil && candidate.Stamp() == s.stamp {
		candidate.Discard()
		_ = candidate.Dispose()
		s.logger.Debug("forced reload found no change", "script", s.source.Name(), "stamp", s.stamp)
		return s.finish(OutcomeUnchanged)
	}

	old := s.active
	candidate.Commit()
	s.active = candidate
	s.stamp = candidate.Stamp()
	s.generation = candidate.Generation()
	s.hasRejected = false
	s.lastErr = nil
	s.state = StateCommitted

	if old != nil {
		if err := old.Dispose(); err != nil {
			s.logger.Error("failed to dispose previous session", "generation", old.Generation(), "err", err)
		}
	}
	s.logger.Info("script loaded", "script", s.source.Name(), "generation", s.generation, "forced", force)
	s.emitReload(ctx, s.hooks.OnReloadCommitted, domain.EventReloadCommitted, candidate, force, nil)
	return s.finish(OutcomeCommitted)
}

func (s *Supervisor) emitReload(ctx context.Context, hook func(context.Context, *domain.ReloadEvent), typ domain.EventType, sess *Session, force bool, err error) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.ReloadEvent{
		EventBase:  domain.EventBase{Timestamp: s.clock(), Type: typ},
		Path:       s.source.Name(),
		Generation: sess.Generation(),
		Forced:     force,
		Stamp:      sess.Stamp(),
		Err:        err,
	})
}

func (s *Supervisor) emitError(ctx context.Context, err error) {
	if s.hooks.OnScriptError == nil {
		return
	}
	s.hooks.OnScriptError(ctx, &domain.ScriptErrorEvent{
		EventBase: domain.EventBase{Timestamp: s.clock(), Type: domain.EventScriptError},
		Kind:      domain.ErrorKind(err),
		Err:       err,
	})
}
