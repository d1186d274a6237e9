package clipboard

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	written []string
	changes []string
}

func (r *recorder) write(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.written = append(r.written, text)
	return nil
}

func (r *recorder) change(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, key)
}

func (r *recorder) snapshot() ([]string, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.written...), append([]string(nil), r.changes...)
}

func TestCopySetsAndClears(t *testing.T) {
	rec := &recorder{}
	c := New(Options{Write: rec.write, OnChange: rec.change, ClearAfter: 30 * time.Millisecond})

	require.True(t, c.Copy("pagerduty", "http://localhost:8080/webhooks/alerts/pagerduty"))
	assert.True(t, c.IsCopied("pagerduty"))
	assert.False(t, c.IsCopied("github"))

	require.Eventually(t, func() bool { return c.Copied() == "" }, time.Second, 5*time.Millisecond)

	written, changes := rec.snapshot()
	assert.Equal(t, []string{"http://localhost:8080/webhooks/alerts/pagerduty"}, written)
	assert.Equal(t, []string{"pagerduty", ""}, changes)
}

func TestNewerCopySupersedesTimer(t *testing.T) {
	rec := &recorder{}
	c := New(Options{Write: rec.write, OnChange: rec.change, ClearAfter: 80 * time.Millisecond})

	require.True(t, c.Copy("a", "one"))
	time.Sleep(50 * time.Millisecond)
	require.True(t, c.Copy("b", "two"))

	// The first timer would have fired by now had it not been replaced.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, "b", c.Copied())

	require.Eventually(t, func() bool { return c.Copied() == "" }, time.Second, 5*time.Millisecond)
	_, changes := rec.snapshot()
	assert.Equal(t, []string{"a", "b", ""}, changes)
}

func TestStopCancelsClear(t *testing.T) {
	rec := &recorder{}
	c := New(Options{Write: rec.write, OnChange: rec.change, ClearAfter: 20 * time.Millisecond})

	require.True(t, c.Copy("a", "one"))
	c.Stop()
	time.Sleep(60 * time.Millisecond)

	_, changes := rec.snapshot()
	assert.Equal(t, []string{"a"}, changes)
	assert.False(t, c.Copy("b", "two"))
}

func TestWriteFailureIsIgnored(t *testing.T) {
	rec := &recorder{}
	c := New(Options{
		Write:    func(string) error { return errors.New("permission denied") },
		OnChange: rec.change,
	})

	assert.False(t, c.Copy("a", "one"))
	assert.Equal(t, "", c.Copied())
	_, changes := rec.snapshot()
	assert.Empty(t, changes)
}
