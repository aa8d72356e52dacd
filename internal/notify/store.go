package notify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tuanbt/toastlog/internal/toast"
)

// Handler receives every intercepted emission.
type Handler func(kind toast.Kind, title, message string)

// Observer is told about store activity. Metrics implement it.
type Observer interface {
	RecordAppended(kind toast.Kind)
	HandlerFailed(kind toast.Kind)
}

// Store is the process-lifetime notification log plus the single handler
// slot the interceptors dispatch into.
//
// Store is safe for concurrent use, but the handler is always invoked
// without any lock held, so it may call Append.
type Store struct {
	mu      sync.RWMutex
	records []Record
	seq     uint64
	handler Handler

	smu    sync.RWMutex
	subs   map[uint64]chan Record
	subSeq atomic.Uint64

	logger   *slog.Logger
	observer Observer
	now      func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used to report handler failures.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver attaches an Observer.
func WithObserver(o Observer) StoreOption {
	return func(s *Store) { s.observer = o }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store with no handler registered.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		subs:   make(map[uint64]chan Record),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register installs h as the handler, replacing any previous one.
// A nil h clears the slot.
func (s *Store) Register(h Handler) {
	s.mu.Lock()
	s.handler = h
	s.mu.Unlock()
}

// Registered returns true if a handler is installed.
func (s *Store) Registered() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handler != nil
}

// Dispatch derives the title and message text for an emission and hands
// them to the registered handler. It returns false when no handler is
// registered or the handler panicked; the panic is logged and swallowed.
func (s *Store) Dispatch(kind toast.Kind, message any) (delivered bool) {
	s.mu.RLock()
	h := s.handler
	s.mu.RUnlock()

	if h == nil {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			delivered = false
			s.logger.Error("notification handler panicked",
				"kind", kind,
				"panic", fmt.Sprint(r),
			)
			if s.observer != nil {
				s.observer.HandlerFailed(kind)
			}
		}
	}()

	h(kind, Title(kind), MessageText(kind, message))
	return true
}

// Append adds a record to the log and notifies subscribers.
func (s *Store) Append(kind toast.Kind, title, message string) Record {
	s.mu.Lock()
	s.seq++
	rec := Record{
		Seq:     s.seq,
		Kind:    kind,
		Title:   title,
		Message: message,
		Time:    s.now(),
	}
	s.records = append(s.records, rec)
	// Publish under the log lock so subscribers see Seq order.
	s.publish(rec)
	s.mu.Unlock()

	s.logger.Debug("notification recorded", "seq", rec.Seq, "kind", kind)
	if s.observer != nil {
		s.observer.RecordAppended(kind)
	}
	return rec
}

// AppendHandler returns a Handler that appends to s. It is what a consumer
// registers when it mounts.
func (s *Store) AppendHandler() Handler {
	return func(kind toast.Kind, title, message string) {
		s.Append(kind, title, message)
	}
}

// Records returns every record in insertion order.
func (s *Store) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Record, len(s.records))
	copy(result, s.records)
	return result
}

// Since returns the records with Seq greater than seq.
func (s *Store) Since(seq uint64) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Seq is 1-based and dense, so it doubles as an index.
	if seq >= uint64(len(s.records)) {
		return []Record{}
	}
	result := make([]Record, len(s.records)-int(seq))
	copy(result, s.records[seq:])
	return result
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// LastSeq returns the Seq of the newest record, or 0.
func (s *Store) LastSeq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

// Subscribe returns a channel receiving every record appended from now on
// and a function that unsubscribes. Delivery never blocks Append: a full
// channel misses the record, which stays available through Records.
func (s *Store) Subscribe(buffer int) (<-chan Record, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Record, buffer)
	id := s.subSeq.Add(1)

	s.smu.Lock()
	s.subs[id] = ch
	s.smu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.smu.Lock()
			delete(s.subs, id)
			close(ch)
			s.smu.Unlock()
		})
	}
	return ch, unsubscribe
}

func (s *Store) publish(rec Record) {
	s.smu.RLock()
	defer s.smu.RUnlock()

	for _, ch := range s.subs {
		select {
		case ch <- rec:
		default:
			s.logger.Warn("subscriber full, record not delivered", "seq", rec.Seq)
		}
	}
}
