package intercept

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tuanbt/toastlog/internal/toast"
)

// ErrReleased is returned by Session.Err once the session has been released.
var ErrReleased = errors.New("interception session released")

// State is the lifecycle state of a Session.
type State int

const (
	// StateActive means the session holds the mirroring layer.
	StateActive State = iota
	// StateReleased means the session has let go; it cannot be reactivated.
	StateReleased
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateReleased:
		return "released"
	default:
		return "unknown"
	}
}

// Patcher layers mirroring over the slots of a toast.Table while at least
// one Session is active.
//
// However many sessions overlap, exactly one mirroring layer is installed:
// the first activation pushes it and the last release pops it. Each
// emission is therefore mirrored once, and after the last release the
// table's slots are the very functions they were before the first
// activation, whatever order the sessions were released in.
type Patcher struct {
	table    *toast.Table
	sink     Sink
	settings settings

	mu     sync.Mutex
	active int
	pop    func()
}

// NewPatcher creates a patcher for table. Nothing is patched until Activate.
func NewPatcher(table *toast.Table, sink Sink, opts ...Option) *Patcher {
	return &Patcher{
		table:    table,
		sink:     sink,
		settings: newSettings(opts),
	}
}

// Session is the guard returned by Activate. Release it exactly once, or
// let Scope do it.
type Session struct {
	patcher *Patcher
	once    sync.Once

	mu    sync.Mutex
	state State
}

// Activate starts a session, patching the table if no other session is
// active.
func (p *Patcher) Activate() *Session {
	p.mu.Lock()
	p.active++
	if p.active == 1 {
		p.pop = p.table.Push(p.layer)
		p.settings.logger.Debug("passive interception installed")
	}
	p.changed(p.active)
	p.mu.Unlock()

	return &Session{patcher: p, state: StateActive}
}

// Release ends the session. Calls after the first do nothing.
func (s *Session) Release() {
	s.once.Do(func() {
		s.mu.Lock()
		s.state = StateReleased
		s.mu.Unlock()
		s.patcher.release()
	})
}

// State reports the session's lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns ErrReleased after Release, nil before.
func (s *Session) Err() error {
	if s.State() == StateReleased {
		return ErrReleased
	}
	return nil
}

func (p *Patcher) release() {
	p.mu.Lock()
	p.active--
	if p.active == 0 && p.pop != nil {
		p.pop()
		p.pop = nil
		p.settings.logger.Debug("passive interception restored")
	}
	p.changed(p.active)
	p.mu.Unlock()
}

// Scope runs fn inside a session. The session is released when fn returns
// or panics.
func (p *Patcher) Scope(fn func() error) error {
	session := p.Activate()
	defer session.Release()
	return fn()
}

// Active returns how many sessions are currently active.
func (p *Patcher) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// changed reports the session count. The caller holds p.mu, so observers
// see counts in the order they happened.
func (p *Patcher) changed(active int) {
	if p.settings.observer == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.settings.logger.Error("interception observer panicked", "panic", fmt.Sprint(r))
		}
	}()

	p.settings.observer.SessionsChanged(active)
}

// layer is the toast.Middleware the patcher pushes: mirror first, then call
// the saved function with the original arguments.
func (p *Patcher) layer(kind toast.Kind, next toast.Func) toast.Func {
	return func(message any, opts ...toast.Option) toast.ID {
		p.settings.mirror(p.sink, StrategyPassive, kind, message)
		return next(message, opts...)
	}
}
