package toast

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultDuration is how long a toast stays visible unless overridden.
	DefaultDuration = 4 * time.Second

	// DefaultMaxVisible caps the rendered stack.
	DefaultMaxVisible = 3
)

// Toast is one visible notification.
type Toast struct {
	ID          ID
	Kind        Kind
	Text        string
	Description string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Toaster queues toasts and renders the visible stack. It is the real
// emission backend: its four methods are what the emission slots are bound
// to by default.
type Toaster struct {
	mu         sync.Mutex
	toasts     []Toast
	duration   time.Duration
	maxVisible int
	now        func() time.Time
}

// ToasterOption configures a Toaster.
type ToasterOption func(*Toaster)

// WithDefaultDuration sets the duration used when an emission doesn't set one.
func WithDefaultDuration(d time.Duration) ToasterOption {
	return func(t *Toaster) {
		if d > 0 {
			t.duration = d
		}
	}
}

// WithMaxVisible caps how many toasts View renders.
func WithMaxVisible(n int) ToasterOption {
	return func(t *Toaster) {
		if n > 0 {
			t.maxVisible = n
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ToasterOption {
	return func(t *Toaster) { t.now = now }
}

// NewToaster creates an empty Toaster.
func NewToaster(opts ...ToasterOption) *Toaster {
	t := &Toaster{
		duration:   DefaultDuration,
		maxVisible: DefaultMaxVisible,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Success shows a success toast.
func (t *Toaster) Success(message any, opts ...Option) ID { return t.show(KindSuccess, message, opts) }

// Error shows an error toast.
func (t *Toaster) Error(message any, opts ...Option) ID { return t.show(KindError, message, opts) }

// Info shows an info toast.
func (t *Toaster) Info(message any, opts ...Option) ID { return t.show(KindInfo, message, opts) }

// Warning shows a warning toast.
func (t *Toaster) Warning(message any, opts ...Option) ID { return t.show(KindWarning, message, opts) }

func (t *Toaster) show(kind Kind, message any, opts []Option) ID {
	o := Apply(opts...)

	id := o.ID
	if id == "" {
		id = ID(uuid.NewString())
	}
	d := o.Duration
	if d <= 0 {
		d = t.duration
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	toast := Toast{
		ID:          id,
		Kind:        kind,
		Text:        render(message),
		Description: o.Description,
		CreatedAt:   now,
		ExpiresAt:   now.Add(d),
	}

	// Same ID replaces in place
	for i := range t.toasts {
		if t.toasts[i].ID == id {
			t.toasts[i] = toast
			return id
		}
	}
	t.toasts = append(t.toasts, toast)
	return id
}

// Active returns a copy of the queued toasts, oldest first.
func (t *Toaster) Active() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()

	result := make([]Toast, len(t.toasts))
	copy(result, t.toasts)
	return result
}

// Dismiss removes a toast. It returns false if the ID is unknown.
func (t *Toaster) Dismiss(id ID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.toasts {
		if t.toasts[i].ID == id {
			t.toasts = append(t.toasts[:i], t.toasts[i+1:]...)
			return true
		}
	}
	return false
}

// Expire drops every toast whose expiry is not after now and returns how
// many were removed.
func (t *Toaster) Expire(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.toasts[:0]
	for _, toast := range t.toasts {
		if toast.ExpiresAt.After(now) {
			kept = append(kept, toast)
		}
	}
	removed := len(t.toasts) - len(kept)
	t.toasts = kept
	return removed
}

// render turns any payload into display text. The toaster shows whatever it
// is given.
func render(message any) string {
	switch m := message.(type) {
	case nil:
		return ""
	case string:
		return m
	case error:
		return m.Error()
	case fmt.Stringer:
		return m.String()
	default:
		return fmt.Sprint(m)
	}
}
