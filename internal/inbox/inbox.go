// Package inbox is the read side of the notification log: the state the
// inbox panel renders.
package inbox

import (
	"sync"

	"github.com/tuanbt/toastlog/internal/notify"
)

// Inbox exposes a notify.Store's records to a rendering surface. Read and
// cleared marks are view state only; the records themselves are never
// touched.
type Inbox struct {
	store *notify.Store

	mu      sync.Mutex
	mounted bool
	readTo  uint64
	clearTo uint64
}

// New creates an inbox over store. Nothing is registered until Mount.
func New(store *notify.Store) *Inbox {
	return &Inbox{store: store}
}

// Mount registers the store's append handler, replacing whatever handler
// was registered before. From now on every intercepted emission is logged.
func (i *Inbox) Mount() {
	i.store.Register(i.store.AppendHandler())

	i.mu.Lock()
	i.mounted = true
	i.mu.Unlock()
}

// Mounted reports whether Mount has been called.
func (i *Inbox) Mounted() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.mounted
}

// Records returns the visible records in insertion order.
func (i *Inbox) Records() []notify.Record {
	i.mu.Lock()
	clearTo := i.clearTo
	i.mu.Unlock()

	return i.store.Since(clearTo)
}

// Updates subscribes to records appended from now on.
func (i *Inbox) Updates(buffer int) (<-chan notify.Record, func()) {
	return i.store.Subscribe(buffer)
}

// Unread returns how many visible records arrived after the last
// MarkAllRead.
func (i *Inbox) Unread() int {
	i.mu.Lock()
	from := max(i.readTo, i.clearTo)
	i.mu.Unlock()

	last := i.store.LastSeq()
	if last <= from {
		return 0
	}
	return int(last - from)
}

// MarkAllRead marks every record currently in the log as read.
func (i *Inbox) MarkAllRead() {
	last := i.store.LastSeq()

	i.mu.Lock()
	i.readTo = last
	i.mu.Unlock()
}

// Clear hides every record currently in the log from Records. The log
// keeps them.
func (i *Inbox) Clear() {
	last := i.store.LastSeq()

	i.mu.Lock()
	i.clearTo = last
	i.readTo = max(i.readTo, last)
	i.mu.Unlock()
}

// IsUnread reports whether rec arrived after the last MarkAllRead.
func (i *Inbox) IsUnread(rec notify.Record) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return rec.Seq > i.readTo
}
