package toast

import "time"

// ID identifies a toast. It is returned by every emission function.
type ID string

// Options controls a single emission.
type Options struct {
	// ID replaces the generated toast ID. Emitting twice with the same ID
	// replaces the earlier toast.
	ID ID

	// Duration overrides how long the toast stays visible.
	Duration time.Duration

	// Description is a secondary line rendered under the message.
	Description string
}

// Option mutates Options.
type Option func(*Options)

// WithID sets a caller-chosen toast ID.
func WithID(id ID) Option {
	return func(o *Options) { o.ID = id }
}

// WithDuration sets the visible duration.
func WithDuration(d time.Duration) Option {
	return func(o *Options) { o.Duration = d }
}

// WithDescription adds a secondary line.
func WithDescription(desc string) Option {
	return func(o *Options) { o.Description = desc }
}

// Apply folds opts into an Options value.
func Apply(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Func is a single emission function: it shows message and returns the
// toast's ID.
type Func func(message any, opts ...Option) ID

// Emitter exposes one emission function per Kind.
type Emitter interface {
	Success(message any, opts ...Option) ID
	Error(message any, opts ...Option) ID
	Info(message any, opts ...Option) ID
	Warning(message any, opts ...Option) ID
}

// Call invokes the emission function of e that matches kind.
// Unknown kinds are emitted as KindInfo.
func Call(e Emitter, kind Kind, message any, opts ...Option) ID {
	switch kind {
	case KindSuccess:
		return e.Success(message, opts...)
	case KindError:
		return e.Error(message, opts...)
	case KindWarning:
		return e.Warning(message, opts...)
	default:
		return e.Info(message, opts...)
	}
}

// FuncOf returns the emission function of e for kind as a Func value.
func FuncOf(e Emitter, kind Kind) Func {
	switch kind {
	case KindSuccess:
		return e.Success
	case KindError:
		return e.Error
	case KindWarning:
		return e.Warning
	default:
		return e.Info
	}
}
