package intercept

import "github.com/tuanbt/toastlog/internal/toast"

// Wrapper is a drop-in toast.Emitter that forwards every call to the real
// emitter and then mirrors it into the sink.
type Wrapper struct {
	real     toast.Emitter
	sink     Sink
	settings settings
}

// NewWrapper wraps real. A nil sink mirrors nothing.
func NewWrapper(real toast.Emitter, sink Sink, opts ...Option) *Wrapper {
	return &Wrapper{
		real:     real,
		sink:     sink,
		settings: newSettings(opts),
	}
}

// Success emits through the real emitter and mirrors the call.
func (w *Wrapper) Success(message any, opts ...toast.Option) toast.ID {
	return w.emit(toast.KindSuccess, message, opts)
}

// Error emits through the real emitter and mirrors the call.
func (w *Wrapper) Error(message any, opts ...toast.Option) toast.ID {
	return w.emit(toast.KindError, message, opts)
}

// Info emits through the real emitter and mirrors the call.
func (w *Wrapper) Info(message any, opts ...toast.Option) toast.ID {
	return w.emit(toast.KindInfo, message, opts)
}

// Warning emits through the real emitter and mirrors the call.
func (w *Wrapper) Warning(message any, opts ...toast.Option) toast.ID {
	return w.emit(toast.KindWarning, message, opts)
}

// Emit is Call for the wrapper, for callers holding a Kind value.
func (w *Wrapper) Emit(kind toast.Kind, message any, opts ...toast.Option) toast.ID {
	return toast.Call(w, kind, message, opts...)
}

func (w *Wrapper) emit(kind toast.Kind, message any, opts []toast.Option) toast.ID {
	var id toast.ID
	if w.real != nil {
		id = toast.Call(w.real, kind, message, opts...)
	}
	w.settings.mirror(w.sink, StrategyActive, kind, message)
	return id
}
