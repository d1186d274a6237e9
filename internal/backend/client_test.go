package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashfaaq98/signalroot-console/internal/collection"
	"github.com/Ashfaaq98/signalroot-console/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Options{BaseURL: srv.URL + "/"})
}

func TestVersions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, versionsPath, r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 2, "version": "1.1.0", "releasedAt": "2024-01-20T00:00:00Z", "isCurrent": true,
			 "description": "Current", "changes": [{"type": "FEATURE", "description": "Versioned API"}]},
			{"id": 1, "version": "1.0.0", "releasedAt": "2023-11-01T00:00:00Z", "changes": []}
		]`))
	})

	got, err := c.Versions(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1.1.0", got[0].Version)
	assert.Equal(t, "current", got[0].Status)
	assert.Equal(t, "2024-01-20T00:00:00Z", got[0].ReleaseDate)
	assert.Equal(t, model.ChangeFeature, got[0].Changes[0].Type)
	assert.Equal(t, "stable", got[1].Status)
}

func TestStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.Versions(context.Background())
	require.Error(t, err)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Equal(t, "HTTP 500: Internal Server Error", err.Error())
}

func TestParseError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	})

	_, err := c.APIDocs(context.Background())
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, apiDocsPath, pe.Path)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(Options{BaseURL: url})
	_, err := c.Versions(context.Background())
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.MethodGet, te.Method)
}

func TestAPIDocsEndpoints(t *testing.T) {
	doc := model.OpenAPIDocument{
		OpenAPI: "3.0.0",
		Info:    model.OpenAPIInfo{Title: "SignalRoot API", Version: "1.1.0"},
		Paths: map[string]map[string]model.Operation{
			"/b": {"delete": {Summary: "drop"}, "get": {Summary: "read"}, "post": {Summary: "write"}},
			"/a": {"put": {Summary: "replace"}},
		},
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(doc)
	})

	eps, err := c.Endpoints(context.Background())
	require.NoError(t, err)
	var ids []string
	for _, e := range eps {
		ids = append(ids, e.ID())
	}
	assert.Equal(t, []string{"PUT /a", "GET /b", "POST /b", "DELETE /b"}, ids)
}

func TestTestWebhook(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		switch r.URL.Path {
		case "/webhooks/alerts/pagerduty":
			_, _ = w.Write([]byte(`{"message": "Alert processed"}`))
		case "/webhooks/deploy/github":
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message": "unknown source"}`))
		}
	})
	ctx := context.Background()

	res := c.TestWebhook(ctx, "/webhooks/alerts/pagerduty", map[string]any{"id": "INC-1"})
	assert.True(t, res.Success)
	assert.Equal(t, "Alert processed", res.Message)
	assert.Equal(t, "INC-1", got["id"])
	assert.False(t, res.Timestamp.IsZero())

	res = c.TestWebhook(ctx, "/webhooks/deploy/github", map[string]any{})
	assert.True(t, res.Success)
	assert.Equal(t, "Test completed successfully", res.Message)

	res = c.TestWebhook(ctx, "/webhooks/deploy/unknown", map[string]any{})
	assert.False(t, res.Success)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "unknown source", res.Message)
}

func TestTestWebhookFailures(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`ok`))
	})
	res := c.TestWebhook(context.Background(), "/webhooks/deploy/jenkins", map[string]any{})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "failed to parse")

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	down := NewClient(Options{BaseURL: srv.URL})
	res = down.TestWebhook(context.Background(), "/webhooks/deploy/jenkins", map[string]any{})
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Message)
	assert.Zero(t, res.StatusCode)
}

func TestStoreRetryAfterServerError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[{"version": "1.1.0", "releasedAt": "2024-01-20"}]`))
	})

	var states []collection.State
	store := collection.New[model.ChangelogVersion](
		collection.SourceFunc[model.ChangelogVersion](c.Versions),
		collection.WithOnChange(func(s collection.Snapshot[model.ChangelogVersion]) {
			states = append(states, s.State)
		}),
	)
	ctx := context.Background()

	require.Error(t, store.Load(ctx))
	snap := store.Snapshot()
	assert.Equal(t, collection.Failed, snap.State)
	assert.Contains(t, snap.Err, "500")

	require.NoError(t, store.Retry(ctx))
	snap = store.Snapshot()
	assert.Equal(t, collection.Loaded, snap.State)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, []collection.State{collection.Loading, collection.Failed, collection.Loading, collection.Loaded}, states)
}
