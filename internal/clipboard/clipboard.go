// Package clipboard copies text to the system clipboard and tracks a short
// lived "copied" marker for the UI.
package clipboard

import (
	"io"
	"log"
	"sync"
	"time"

	"github.com/atotto/clipboard"
)

// DefaultClearAfter is how long the copied marker stays set.
const DefaultClearAfter = 2 * time.Second

// Options configures a Copier.
type Options struct {
	// Write replaces the system clipboard writer (tests, headless hosts).
	Write func(text string) error
	// ClearAfter defaults to DefaultClearAfter.
	ClearAfter time.Duration
	// OnChange is called with the new marker key whenever it changes
	// ("" when cleared). It runs outside the Copier's lock.
	OnChange func(key string)
	Logger   *log.Logger
}

// Copier writes to the clipboard and remembers which key was copied last.
type Copier struct {
	write      func(string) error
	clearAfter time.Duration
	onChange   func(string)
	logger     *log.Logger

	mu      sync.Mutex
	copied  string
	gen     uint64
	timer   *time.Timer
	stopped bool
}

// New creates a Copier backed by atotto/clipboard unless opts.Write is set.
func New(opts Options) *Copier {
	if opts.Write == nil {
		opts.Write = clipboard.WriteAll
	}
	if opts.ClearAfter <= 0 {
		opts.ClearAfter = DefaultClearAfter
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	return &Copier{
		write:      opts.Write,
		clearAfter: opts.ClearAfter,
		onChange:   opts.OnChange,
		logger:     opts.Logger,
	}
}

// Copy writes text and marks key as copied until the timer fires or a newer
// copy replaces it. A failed write is logged and leaves the marker untouched.
func (c *Copier) Copy(key, text string) bool {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return false
	}
	c.mu.Unlock()

	if err := c.write(text); err != nil {
		c.logger.Printf("clipboard write failed: %v", err)
		return false
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return false
	}
	c.gen++
	gen := c.gen
	c.copied = key
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.clearAfter, func() { c.expire(gen) })
	c.mu.Unlock()

	c.notify(key)
	return true
}

func (c *Copier) expire(gen uint64) {
	c.mu.Lock()
	if c.stopped || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.copied = ""
	c.timer = nil
	c.mu.Unlock()

	c.notify("")
}

// Copied returns the key of the last successful copy, or "" once cleared.
func (c *Copier) Copied() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copied
}

// IsCopied reports whether key is the current marker.
func (c *Copier) IsCopied(key string) bool {
	return key != "" && c.Copied() == key
}

// Stop cancels a pending clear. No callbacks fire afterwards.
func (c *Copier) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Copier) notify(key string) {
	if c.onChange != nil {
		c.onChange(key)
	}
}
