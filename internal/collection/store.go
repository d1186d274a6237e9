// Package collection holds a view's entity collection and its load cycle:
// Idle -> Loading -> Loaded | Failed, with at most one load in flight.
package collection

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"
)

// State is a load cycle state.
type State int

const (
	Idle State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	// ErrLoadInProgress is returned when a load is requested while one is pending.
	ErrLoadInProgress = errors.New("load already in progress")
	// ErrClosed is returned after the owning view has been closed.
	ErrClosed = errors.New("collection closed")
	// errStale marks a fetch whose result was discarded.
	errStale = errors.New("load superseded")
)

// Source fetches a collection.
type Source[T any] interface {
	Fetch(ctx context.Context) ([]T, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc[T any] func(ctx context.Context) ([]T, error)

// Fetch calls f.
func (f SourceFunc[T]) Fetch(ctx context.Context) ([]T, error) { return f(ctx) }

// Static returns a Source that always yields a copy of items.
func Static[T any](items []T) Source[T] {
	return SourceFunc[T](func(ctx context.Context) ([]T, error) {
		out := make([]T, len(items))
		copy(out, items)
		return out, nil
	})
}

// Snapshot is a consistent view of the store.
type Snapshot[T any] struct {
	State State
	Items []T
	// Err is the human-readable failure message in the Failed state.
	Err string
	// Fallback is true when Items came from the configured default collection.
	Fallback bool
	LoadedAt time.Time
}

// Option configures a Store.
type Option[T any] func(*Store[T])

// WithFallback sets the default collection used when a load fails.
func WithFallback[T any](items []T) Option[T] {
	return func(s *Store[T]) {
		s.fallback = make([]T, len(items))
		copy(s.fallback, items)
		s.hasFallback = true
	}
}

// WithLogger sets the store logger.
func WithLogger[T any](logger *log.Logger) Option[T] {
	return func(s *Store[T]) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOnChange registers a callback invoked after every applied transition.
func WithOnChange[T any](fn func(Snapshot[T])) Option[T] {
	return func(s *Store[T]) { s.onChange = fn }
}

// Store owns one view's collection.
type Store[T any] struct {
	source      Source[T]
	fallback    []T
	hasFallback bool
	logger      *log.Logger
	onChange    func(Snapshot[T])

	mu       sync.Mutex
	state    State
	items    []T
	err      string
	usedFB   bool
	loadedAt time.Time
	gen      uint64
	closed   bool
}

// New creates an Idle store reading from source.
func New[T any](source Source[T], opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		source: source,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the collection on the calling goroutine. Calling it while a
// load is pending returns ErrLoadInProgress without side effects.
func (s *Store[T]) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.state == Loading {
		s.mu.Unlock()
		s.logger.Println("load requested while loading, ignoring")
		return ErrLoadInProgress
	}
	s.gen++
	gen := s.gen
	s.state = Loading
	s.items = nil
	s.err = ""
	s.usedFB = false
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	items, err := s.source.Fetch(ctx)

	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		s.logger.Printf("discarding stale load result (generation %d)", gen)
		return errStale
	}
	if err != nil {
		s.state = Failed
		s.err = err.Error()
		if s.hasFallback {
			s.items = make([]T, len(s.fallback))
			copy(s.items, s.fallback)
			s.usedFB = true
		}
		s.logger.Printf("load failed: %v (fallback=%v)", err, s.usedFB)
	} else {
		s.state = Loaded
		s.items = items
		s.loadedAt = time.Now()
		s.logger.Printf("loaded %d items", len(items))
	}
	snap = s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return err
}

// Retry re-enters Loading after a failure (or refreshes a loaded store).
func (s *Store[T]) Retry(ctx context.Context) error {
	return s.Load(ctx)
}

// Reset returns the store to Idle and discards any in-flight result.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.gen++
	s.state = Idle
	s.items = nil
	s.err = ""
	s.usedFB = false
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// Close marks the owning view as gone. Later results are discarded and no
// further change callbacks fire.
func (s *Store[T]) Close() {
	s.mu.Lock()
	s.closed = true
	s.gen++
	s.mu.Unlock()
}

// State returns the current state.
func (s *Store[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a copy of the current state and items.
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store[T]) snapshotLocked() Snapshot[T] {
	var items []T
	if s.items != nil {
		items = make([]T, len(s.items))
		copy(items, s.items)
	}
	return Snapshot[T]{
		State:    s.state,
		Items:    items,
		Err:      s.err,
		Fallback: s.usedFB,
		LoadedAt: s.loadedAt,
	}
}

func (s *Store[T]) notify(snap Snapshot[T]) {
	if s.onChange != nil {
		s.onChange(snap)
	}
}

// IsStale reports whether err means the result was dropped because the store
// was reset or closed while loading.
func IsStale(err error) bool {
	return errors.Is(err, errStale)
}
