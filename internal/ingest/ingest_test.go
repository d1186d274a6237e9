package ingest

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/Ashfaaq98/signalroot-console/internal/model"
	"github.com/Ashfaaq98/signalroot-console/internal/store"
)

const incidentA = `{"id":"a","title":"API Gateway High Latency","service":"payment-service","severity":"high","status":"active","startedAt":"2024-01-20T10:30:00Z","summary":"slow"}`
const incidentB = `{"id":"b","title":"Memory Usage Spike","service":"analytics-service","severity":"MEDIUM","status":"ACTIVE","startedAt":"2024-01-20T08:45:00Z","summary":"memory"}`
const incidentBad = `{"id":"c","title":"No service"}`

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func newStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestDecodeIncidentNormalizes(t *testing.T) {
	inc, err := DecodeIncident([]byte(incidentA))
	require.NoError(t, err)
	assert.Equal(t, "HIGH", inc.Severity)
	assert.Equal(t, "ACTIVE", inc.Status)

	_, err = DecodeIncident([]byte(incidentBad))
	assert.Error(t, err)
	_, err = DecodeIncident([]byte(`{`))
	assert.Error(t, err)
}

func TestFolderOneShot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "single.json", incidentA)
	writeFile(t, dir, "batch.jsonl", incidentB+"\n\n"+incidentBad) // no trailing newline
	writeFile(t, dir, "notes.txt", "ignored")

	st := newStore(t)
	fi := NewFolderIngestor(st, nil, FolderOptions{Dir: dir, Logger: quietLogger()})
	require.NoError(t, fi.Run(context.Background()))

	ingested, failed := fi.Stats()
	assert.Equal(t, 2, ingested)
	assert.Equal(t, 1, failed)

	ctx := context.Background()
	n, err := st.CountIncidents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	activity, err := st.ListActivity(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, activity, 2)
	assert.Equal(t, store.ActivityIncidentIngest, activity[0].Kind)
	assert.Equal(t, "ingest-folder", activity[0].Actor)
}

func TestFolderJSONArray(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "all.json", "["+incidentA+","+incidentBad+","+incidentB+"]")

	var seen []string
	st := newStore(t)
	fi := NewFolderIngestor(st, nil, FolderOptions{
		Dir:      dir,
		Logger:   quietLogger(),
		OnIngest: func(inc model.Incident) { seen = append(seen, inc.ID) },
	})
	require.NoError(t, fi.Run(context.Background()))

	ingested, failed := fi.Stats()
	assert.Equal(t, 2, ingested)
	assert.Equal(t, 1, failed)
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestFolderMissingDir(t *testing.T) {
	fi := NewFolderIngestor(newStore(t), nil, FolderOptions{Dir: filepath.Join(t.TempDir(), "nope"), Logger: quietLogger()})
	assert.Error(t, fi.Run(context.Background()))
}

func TestFolderWatchPicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	st := newStore(t)
	fi := NewFolderIngestor(st, nil, FolderOptions{Dir: dir, Watch: true, Logger: quietLogger()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- fi.Run(ctx) }()

	// The watcher is registered asynchronously; keep rewriting until seen.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(dir, "late.json"), []byte(incidentA), 0o644)
		n, err := st.CountIncidents(context.Background())
		return err == nil && n == 1
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func newIngestServer(t *testing.T, opts HTTPIngestOptions) (*HTTPIngestServer, *httptest.Server) {
	t.Helper()
	if opts.Dir == "" {
		opts.Dir = t.TempDir()
	}
	opts.Logger = quietLogger()
	h, err := NewHTTPIngestServer(opts)
	require.NoError(t, err)
	srv := httptest.NewServer(h.Handler())
	t.Cleanup(srv.Close)
	return h, srv
}

func post(t *testing.T, url, contentType, body string, header map[string]string) (*http.Response, ingestReply) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var reply ingestReply
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
	return resp, reply
}

func TestHTTPIngestAcceptsAndWrites(t *testing.T) {
	dir := t.TempDir()
	_, srv := newIngestServer(t, HTTPIngestOptions{Dir: dir})

	resp, reply := post(t, srv.URL+"/incidents", "application/x-ndjson", incidentA+"\n"+incidentB+"\n", nil)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "Accepted 2 incident(s)", reply.Message)
	require.NotEmpty(t, reply.Ack)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), reply.Ack+".jsonl"))

	// The written file is ingestible as-is.
	st := newStore(t)
	fi := NewFolderIngestor(st, nil, FolderOptions{Dir: dir, Logger: quietLogger()})
	require.NoError(t, fi.Run(context.Background()))
	ingested, _ := fi.Stats()
	assert.Equal(t, 2, ingested)
}

func TestHTTPIngestRejects(t *testing.T) {
	dir := t.TempDir()
	_, srv := newIngestServer(t, HTTPIngestOptions{Dir: dir, Token: "s3cret"})
	auth := map[string]string{"Authorization": "Bearer s3cret"}

	resp, _ := post(t, srv.URL+"/incidents", "application/json", incidentA, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, reply := post(t, srv.URL+"/incidents", "application/json", incidentBad, auth)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, reply.Message, "invalid JSON")

	resp, _ = post(t, srv.URL+"/incidents", "application/json", "[]", auth)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = post(t, srv.URL+"/incidents", "application/json", "  ", auth)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	getResp, err := http.Get(srv.URL + "/incidents")
	require.NoError(t, err)
	getResp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, getResp.StatusCode)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHTTPIngestRateLimiter(t *testing.T) {
	h, _ := newIngestServer(t, HTTPIngestOptions{})
	assert.Nil(t, h.limiter)

	h, _ = newIngestServer(t, HTTPIngestOptions{RPS: 5})
	require.NotNil(t, h.limiter)
	assert.Equal(t, rate.Limit(5), h.limiter.Limit())
	assert.Equal(t, 5, h.limiter.Burst())

	h, srv := newIngestServer(t, HTTPIngestOptions{RPS: 1, Burst: 1})
	assert.Equal(t, 1, h.limiter.Burst())
	resp, _ := post(t, srv.URL+"/incidents", "application/json", incidentA, nil)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, "jsonl", detectFormat("application/x-ndjson", []byte("{}")))
	assert.Equal(t, "json", detectFormat("application/json", []byte("{}")))
	assert.Equal(t, "json", detectFormat("", []byte("[{}]")))
	assert.Equal(t, "jsonl", detectFormat("", []byte("{}\n{}")))
	assert.Equal(t, "json", detectFormat("text/plain", []byte("{}")))
}
