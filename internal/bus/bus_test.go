package bus

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func TestNewBusFallsBackToNull(t *testing.T) {
	_, ok := NewBus("", quietLogger()).(*NullBus)
	assert.True(t, ok, "empty URL should give a NullBus")

	_, ok = NewBus("not-a-redis-url", quietLogger()).(*NullBus)
	assert.True(t, ok, "unparseable URL should give a NullBus")
}

func TestNullBus(t *testing.T) {
	nb := NewNullBus(quietLogger())
	ctx := context.Background()

	require.NoError(t, nb.PublishActivity(ctx, ActivityMessage{Kind: "incident.ingested", Subject: "1"}))
	require.NoError(t, nb.HealthCheck(ctx))
	stats, err := nb.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "null", stats["type"])

	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	called := false
	err = nb.ReadActivity(ctx, "g", "c", func(context.Context, ActivityMessage) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, called)
	assert.NoError(t, nb.Close())
}

func TestActivityFieldsRoundTrip(t *testing.T) {
	in := ActivityMessage{
		Kind:      "webhook.tested",
		Subject:   "pagerduty",
		Actor:     "console",
		Details:   map[string]string{"success": "true"},
		Timestamp: 1705746600,
	}
	fields, err := activityFields(in)
	require.NoError(t, err)

	// Redis hands every value back as a string.
	msg := StreamMessage{ID: "1-0", Fields: map[string]string{}}
	for k, v := range fields {
		switch tv := v.(type) {
		case string:
			msg.Fields[k] = tv
		case int64:
			msg.Fields[k] = "1705746600"
		}
	}
	assert.Equal(t, in, parseActivity(msg))
}

func TestActivityFieldsDefaultsTimestamp(t *testing.T) {
	fields, err := activityFields(ActivityMessage{Kind: "service.created"})
	require.NoError(t, err)
	assert.NotZero(t, fields["timestamp"])
	_, hasDetails := fields["details"]
	assert.False(t, hasDetails)
}

func TestParseTimestamp(t *testing.T) {
	ts, err := parseTimestamp("1705746600")
	require.NoError(t, err)
	assert.Equal(t, int64(1705746600), ts)

	ts, err = parseTimestamp("1705746600123")
	require.NoError(t, err)
	assert.Equal(t, int64(1705746600), ts)

	ts, err = parseTimestamp("2024-01-20T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, int64(1705746600), ts)

	_, err = parseTimestamp("yesterday")
	assert.Error(t, err)
}
