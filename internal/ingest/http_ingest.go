package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// HTTPIngestOptions controls the HTTP intake server behavior.
type HTTPIngestOptions struct {
	// Bind address, e.g. "127.0.0.1:8081"
	Bind string
	// Token for Authorization: Bearer <token> header. Empty disables auth.
	Token string
	// Dir to write accepted payload files into (watched by the folder ingestor)
	Dir string
	// RPS is max requests per second (approximate). 0 disables rate limiting.
	RPS int
	// Burst is the token bucket size. If 0 and RPS>0, defaults to RPS.
	Burst int
	// Logger for minimal logs (optional)
	Logger *log.Logger
	// MaxBodyBytes caps request body size; defaults to 10 MiB.
	MaxBodyBytes int64
}

// HTTPIngestServer provides POST /incidents for JSON/JSONL incident payloads
// written atomically to Dir.
type HTTPIngestServer struct {
	srv     *http.Server
	opts    HTTPIngestOptions
	limiter *rate.Limiter
	logger  *log.Logger
	started int32
}

type ingestReply struct {
	Message string `json:"message"`
	Ack     string `json:"ack,omitempty"`
}

// NewHTTPIngestServer constructs a new HTTP server for incident intake.
func NewHTTPIngestServer(opts HTTPIngestOptions) (*HTTPIngestServer, error) {
	if opts.Bind == "" {
		opts.Bind = "127.0.0.1:8081"
	}
	if opts.Dir == "" {
		opts.Dir = "data/incoming"
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 10 * 1024 * 1024
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[http-ingest] ", log.LstdFlags)
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create ingest dir: %w", err)
	}
	var lim *rate.Limiter
	if opts.RPS > 0 {
		if opts.Burst <= 0 {
			opts.Burst = opts.RPS
		}
		lim = rate.NewLimiter(rate.Limit(opts.RPS), opts.Burst)
	}
	his := &HTTPIngestServer{
		opts:    opts,
		limiter: lim,
		logger:  logger,
	}

	his.srv = &http.Server{
		Addr:         opts.Bind,
		Handler:      his.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return his, nil
}

// Handler returns the server's routes.
func (h *HTTPIngestServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/incidents", h.handleIncidents)
	return mux
}

// Start starts the HTTP server concurrently and attaches to ctx for shutdown.
func (h *HTTPIngestServer) Start(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&h.started, 0, 1) {
		return errors.New("http ingest server already started")
	}
	// Bind early to surface errors synchronously
	ln, err := net.Listen("tcp", h.opts.Bind)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", h.opts.Bind, err)
	}
	h.logger.Printf("HTTP intake listening on http://%s, dir=%s rps=%d burst=%d auth=%v",
		h.opts.Bind, h.opts.Dir, h.opts.RPS, h.opts.Burst, h.opts.Token != "")

	go func() {
		if err := h.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Printf("server error: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.srv.Shutdown(shutdownCtx); err != nil {
			h.logger.Printf("graceful shutdown failed: %v", err)
		}
	}()
	return nil
}

func writeReply(w http.ResponseWriter, code int, reply ingestReply) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(reply)
}

// handleIncidents accepts POST /incidents with JSON (object or array) or JSONL.
func (h *HTTPIngestServer) handleIncidents(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodPost {
		writeReply(w, http.StatusMethodNotAllowed, ingestReply{Message: "method not allowed"})
		return
	}
	if h.opts.Token != "" {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")) != h.opts.Token {
			w.Header().Set("WWW-Authenticate", `Bearer realm="signalroot"`)
			writeReply(w, http.StatusUnauthorized, ingestReply{Message: "unauthorized"})
			return
		}
	}
	if h.limiter != nil {
		waitCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		err := h.limiter.Wait(waitCtx)
		cancel()
		if err != nil {
			writeReply(w, http.StatusTooManyRequests, ingestReply{Message: "rate limit exceeded"})
			return
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes)
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeReply(w, http.StatusBadRequest, ingestReply{Message: "failed to read body"})
		return
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		writeReply(w, http.StatusBadRequest, ingestReply{Message: "empty body"})
		return
	}

	ct := strings.ToLower(r.Header.Get("Content-Type"))
	format := detectFormat(ct, body)

	var count int
	switch format {
	case "jsonl":
		count, err = validateJSONL(body)
	default:
		count, err = validateJSON(body)
	}
	if err != nil {
		writeReply(w, http.StatusBadRequest, ingestReply{Message: "invalid " + strings.ToUpper(format) + ": " + err.Error()})
		return
	}

	ack := uuid.New().String()
	finalName := fmt.Sprintf("%s-%s.%s", time.Now().UTC().Format("20060102T150405Z"), ack, format)
	if err := writeAtomic(h.opts.Dir, finalName, body); err != nil {
		h.logger.Printf("write failed: %v", err)
		writeReply(w, http.StatusInternalServerError, ingestReply{Message: "failed to store payload"})
		return
	}

	writeReply(w, http.StatusAccepted, ingestReply{
		Message: fmt.Sprintf("Accepted %d incident(s)", count),
		Ack:     ack,
	})
	h.logger.Printf("accepted ack=%s incidents=%d bytes=%d ct=%q path=%s remote=%s dur=%s",
		ack, count, len(body), ct, finalName, remoteIP(r.RemoteAddr), time.Since(start))
}

func detectFormat(contentType string, body []byte) string {
	switch {
	case strings.Contains(contentType, "ndjson") || strings.Contains(contentType, "jsonl"):
		return "jsonl"
	case strings.Contains(contentType, "json"):
		return "json"
	case body[0] == '[':
		return "json"
	case body[0] == '{' && bytes.Contains(body, []byte("\n{")):
		return "jsonl"
	default:
		return "json"
	}
}

// writeAtomic writes into a hidden temp file, then renames it into place so
// the folder watcher never sees a partial payload.
func writeAtomic(dir, name string, body []byte) error {
	tmpFile, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	if _, err := tmpFile.Write(append(body, '\n')); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, filepath.Join(dir, name)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("commit file: %w", err)
	}
	return nil
}

// validateJSON checks an incident object or array of incidents.
func validateJSON(body []byte) (int, error) {
	if body[0] == '[' {
		var arr []json.RawMessage
		if err := json.Unmarshal(body, &arr); err != nil {
			return 0, err
		}
		if len(arr) == 0 {
			return 0, errors.New("empty array")
		}
		for i, raw := range arr {
			if _, err := DecodeIncident(raw); err != nil {
				return 0, fmt.Errorf("record %d: %w", i, err)
			}
		}
		return len(arr), nil
	}
	if body[0] != '{' {
		return 0, errors.New("expected object or array")
	}
	if _, err := DecodeIncident(body); err != nil {
		return 0, err
	}
	return 1, nil
}

// validateJSONL checks one incident per non-empty line.
func validateJSONL(body []byte) (int, error) {
	n := 0
	for i, line := range bytes.Split(body, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if _, err := DecodeIncident(line); err != nil {
			return 0, fmt.Errorf("line %d: %w", i+1, err)
		}
		n++
	}
	if n == 0 {
		return 0, errors.New("no non-empty lines")
	}
	return n, nil
}

// remoteIP extracts ip from host:port
func remoteIP(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
