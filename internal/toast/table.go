package toast

import "sync"

// Middleware wraps the emission function of one kind.
type Middleware func(kind Kind, next Func) Func

type layer struct {
	mw Middleware
}

// Table holds the four emission slots call-sites go through.
//
// Each slot has a base function (Set/Bind) and the live function actually
// called, which is the base wrapped by every pushed Middleware in push
// order. With no layers pushed the live function is the base function
// itself.
type Table struct {
	mu     sync.RWMutex
	base   map[Kind]Func
	live   map[Kind]Func
	layers []*layer
}

// Snapshot is a copy of the four live slots.
type Snapshot map[Kind]Func

// NewTable creates a table whose slots call e. A nil e yields slots that
// do nothing and return "".
func NewTable(e Emitter) *Table {
	t := &Table{}
	t.Bind(e)
	return t
}

// Bind sets all four base slots to e's emission functions.
func (t *Table) Bind(e Emitter) {
	base := make(map[Kind]Func, len(Kinds))
	for _, k := range Kinds {
		if e == nil {
			base[k] = noop
		} else {
			base[k] = FuncOf(e, k)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.base = base
	t.rebuildLocked()
}

// Get returns the live function for kind.
func (t *Table) Get(kind Kind) Func {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if fn, ok := t.live[kind]; ok {
		return fn
	}
	return noop
}

// Set replaces the base function for kind. Pushed layers keep wrapping it.
func (t *Table) Set(kind Kind, fn Func) {
	if fn == nil {
		fn = noop
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.base[kind] = fn
	t.rebuildLocked()
}

// Snapshot copies the live slots.
func (t *Table) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := make(Snapshot, len(t.live))
	for k, fn := range t.live {
		s[k] = fn
	}
	return s
}

// Push installs mw on top of every slot and returns the function that
// removes it again. Pop is idempotent and removes only its own layer, so
// layers may be popped in any order.
func (t *Table) Push(mw Middleware) (pop func()) {
	l := &layer{mw: mw}

	t.mu.Lock()
	t.layers = append(t.layers, l)
	t.rebuildLocked()
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			for i, existing := range t.layers {
				if existing == l {
					t.layers = append(t.layers[:i], t.layers[i+1:]...)
					break
				}
			}
			t.rebuildLocked()
		})
	}
}

// Depth returns how many layers are pushed.
func (t *Table) Depth() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.layers)
}

// rebuildLocked recomputes live slots from base and layers (caller must hold lock).
func (t *Table) rebuildLocked() {
	live := make(map[Kind]Func, len(Kinds))
	for _, k := range Kinds {
		fn := t.base[k]
		if fn == nil {
			fn = noop
		}
		for _, l := range t.layers {
			fn = l.mw(k, fn)
		}
		live[k] = fn
	}
	t.live = live
}

// Success calls the live success slot.
func (t *Table) Success(message any, opts ...Option) ID { return t.Get(KindSuccess)(message, opts...) }

// Error calls the live error slot.
func (t *Table) Error(message any, opts ...Option) ID { return t.Get(KindError)(message, opts...) }

// Info calls the live info slot.
func (t *Table) Info(message any, opts ...Option) ID { return t.Get(KindInfo)(message, opts...) }

// Warning calls the live warning slot.
func (t *Table) Warning(message any, opts ...Option) ID { return t.Get(KindWarning)(message, opts...) }

func noop(any, ...Option) ID { return "" }
