// Package intercept mirrors toast emissions into a Sink.
//
// Two strategies are provided. A Wrapper is an Emitter that callers use in
// place of the real one. A Patcher temporarily layers mirroring over the
// slots of a toast.Table for as long as a Session is held.
package intercept

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/tuanbt/toastlog/internal/toast"
)

// Strategy names, as used in configuration and metrics labels.
const (
	StrategyActive  = "active"
	StrategyPassive = "passive"
)

// Sink receives mirrored emissions. notify.Store implements it.
type Sink interface {
	Dispatch(kind toast.Kind, message any) bool
}

// Observer is told about interception activity. Metrics implement it.
type Observer interface {
	Mirrored(strategy string, kind toast.Kind, delivered bool)
	SessionsChanged(active int)
}

// Option configures a Wrapper or a Patcher.
type Option func(*settings)

type settings struct {
	logger   *slog.Logger
	observer Observer
}

// WithLogger sets the logger used to report sink failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver attaches an Observer.
func WithObserver(o Observer) Option {
	return func(s *settings) { s.observer = o }
}

func newSettings(opts []Option) settings {
	s := settings{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// mirror hands one emission to sink and reports it to the observer. It
// never panics: a panicking sink or observer is logged and swallowed.
func (s settings) mirror(sink Sink, strategy string, kind toast.Kind, message any) {
	delivered := s.dispatch(sink, strategy, kind, message)
	s.observe(strategy, kind, delivered)
}

func (s settings) dispatch(sink Sink, strategy string, kind toast.Kind, message any) (delivered bool) {
	defer func() {
		if r := recover(); r != nil {
			delivered = false
			s.logger.Error("mirroring emission failed",
				"strategy", strategy,
				"kind", kind,
				"panic", fmt.Sprint(r),
			)
		}
	}()

	if sink == nil {
		return false
	}
	return sink.Dispatch(kind, message)
}

func (s settings) observe(strategy string, kind toast.Kind, delivered bool) {
	if s.observer == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("interception observer panicked",
				"strategy", strategy,
				"kind", kind,
				"panic", fmt.Sprint(r),
			)
		}
	}()

	s.observer.Mirrored(strategy, kind, delivered)
}
