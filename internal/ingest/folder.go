package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/Ashfaaq98/signalroot-console/internal/bus"
	"github.com/Ashfaaq98/signalroot-console/internal/model"
	"github.com/Ashfaaq98/signalroot-console/internal/store"
)

// FolderOptions controls ingest-folder behavior.
type FolderOptions struct {
	Dir      string
	Watch    bool
	Patterns []string // e.g. []string{"*.jsonl", "*.json"}
	Logger   *log.Logger
	// When true and in Watch mode, start JSONL files at EOF on startup to avoid
	// re-ingesting existing lines each time the app starts.
	TailFromEnd bool
	// Actor is recorded on every activity entry. Default "ingest-folder".
	Actor string
	// OnIngest, if set, is called after each stored incident.
	OnIngest func(model.Incident)
}

// FolderIngestor ingests incident records from a directory (one-shot or watch mode).
type FolderIngestor struct {
	store *store.Store
	bus   bus.Bus
	opts  FolderOptions

	offsets map[string]int64 // per-file tail offset for jsonl
	mu      sync.Mutex

	ingested int
	errors   int
}

// NewFolderIngestor constructs a folder ingestor.
func NewFolderIngestor(st *store.Store, b bus.Bus, opts FolderOptions) *FolderIngestor {
	if opts.Logger == nil {
		opts.Logger = log.New(log.Writer(), "[ingest-folder] ", log.LstdFlags)
	}
	if len(opts.Patterns) == 0 {
		opts.Patterns = []string{"*.jsonl", "*.json"}
	}
	if opts.Actor == "" {
		opts.Actor = "ingest-folder"
	}
	if b == nil {
		b = bus.NewNullBus(opts.Logger)
	}
	return &FolderIngestor{
		store:   st,
		bus:     b,
		opts:    opts,
		offsets: make(map[string]int64),
	}
}

// Stats returns how many records were ingested and how many failed.
func (fi *FolderIngestor) Stats() (ingested, failed int) {
	fi.mu.Lock()
	defer fi.mu.Unlock()
	return fi.ingested, fi.errors
}

// Run executes the ingestion per options (one-shot or watch).
func (fi *FolderIngestor) Run(ctx context.Context) error {
	if err := fi.scanOnce(ctx); err != nil {
		return err
	}

	if !fi.opts.Watch {
		ingested, failed := fi.Stats()
		fi.opts.Logger.Printf("Completed one-shot ingest: ingested=%d errors=%d", ingested, failed)
		return nil
	}

	return fi.watchLoop(ctx)
}

func (fi *FolderIngestor) matches(name string) bool {
	lower := strings.ToLower(name)
	for _, pat := range fi.opts.Patterns {
		p := strings.TrimSpace(strings.ToLower(pat))
		if ok, _ := filepath.Match(p, lower); ok {
			return true
		}
	}
	return false
}

func (fi *FolderIngestor) scanOnce(ctx context.Context) error {
	entries, err := os.ReadDir(fi.opts.Dir)
	if err != nil {
		return fmt.Errorf("read dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !fi.matches(e.Name()) {
			continue
		}
		path := filepath.Join(fi.opts.Dir, e.Name())
		lower := strings.ToLower(e.Name())
		switch {
		case strings.HasSuffix(lower, ".jsonl"):
			if fi.opts.Watch && fi.opts.TailFromEnd {
				if st, err := os.Stat(path); err == nil {
					fi.setOffset(path, st.Size())
				}
				continue
			}
			offset, err := fi.processJSONL(ctx, path, 0)
			if err != nil {
				fi.opts.Logger.Printf("error processing %s: %v", path, err)
				fi.countError()
			}
			fi.setOffset(path, offset)
		case strings.HasSuffix(lower, ".json"):
			if err := fi.processJSONFile(ctx, path); err != nil {
				fi.opts.Logger.Printf("error processing %s: %v", path, err)
				fi.countError()
			}
		}
	}
	return nil
}

func (fi *FolderIngestor) watchLoop(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer w.Close()

	if err := w.Add(fi.opts.Dir); err != nil {
		return fmt.Errorf("watch add: %w", err)
	}

	fi.opts.Logger.Printf("Watching directory: %s (patterns: %s)", fi.opts.Dir, strings.Join(fi.opts.Patterns, ","))

	for {
		select {
		case <-ctx.Done():
			ingested, failed := fi.Stats()
			fi.opts.Logger.Printf("Watch stopping: ingested=%d errors=%d", ingested, failed)
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			fi.handleEvent(ctx, ev)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fi.opts.Logger.Printf("watch error: %v", err)
		}
	}
}

func (fi *FolderIngestor) handleEvent(ctx context.Context, ev fsnotify.Event) {
	name := filepath.Base(ev.Name)
	if !fi.matches(name) || strings.HasPrefix(name, ".") {
		return
	}
	lower := strings.ToLower(name)

	if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
		switch {
		case strings.HasSuffix(lower, ".jsonl"):
			fi.mu.Lock()
			offset := fi.offsets[ev.Name]
			fi.mu.Unlock()

			newOffset, err := fi.processJSONL(ctx, ev.Name, offset)
			if err != nil {
				fi.opts.Logger.Printf("error tailing %s: %v", ev.Name, err)
				fi.countError()
				return
			}
			fi.setOffset(ev.Name, newOffset)
		case strings.HasSuffix(lower, ".json"):
			// Whole file is re-read; upserts make this idempotent.
			if err := fi.processJSONFile(ctx, ev.Name); err != nil {
				fi.opts.Logger.Printf("error processing %s: %v", ev.Name, err)
				fi.countError()
			}
		}
	}
	if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		fi.mu.Lock()
		delete(fi.offsets, ev.Name)
		fi.mu.Unlock()
	}
}

func (fi *FolderIngestor) setOffset(path string, offset int64) {
	fi.mu.Lock()
	fi.offsets[path] = offset
	fi.mu.Unlock()
}

func (fi *FolderIngestor) countError() {
	fi.mu.Lock()
	fi.errors++
	fi.mu.Unlock()
}

func (fi *FolderIngestor) countIngested() {
	fi.mu.Lock()
	fi.ingested++
	fi.mu.Unlock()
}

// processJSONL reads complete lines from startOffset and returns the offset
// just past the last line consumed.
func (fi *FolderIngestor) processJSONL(ctx context.Context, path string, startOffset int64) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		// File might be transiently missing (rename/rotate)
		return startOffset, err
	}
	defer f.Close()

	if st, err := f.Stat(); err == nil && st.Size() < startOffset {
		// Truncated: start over
		startOffset = 0
	}
	if startOffset > 0 {
		if _, err := f.Seek(startOffset, io.SeekStart); err != nil {
			return startOffset, err
		}
	}

	reader := bufio.NewReaderSize(f, 64*1024)
	offset := startOffset
	for {
		line, err := reader.ReadBytes('\n')
		if err == io.EOF {
			// In watch mode a partial last line waits for the rest.
			if fi.opts.Watch || len(bytes.TrimSpace(line)) == 0 {
				return offset, nil
			}
		} else if err != nil {
			return offset, err
		}
		offset += int64(len(line))

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if err := fi.processIncidentJSON(ctx, line); err != nil {
			fi.opts.Logger.Printf("parse error in %s: %v", path, err)
			fi.countError()
			continue
		}
		fi.countIngested()
	}
}

func (fi *FolderIngestor) processJSONFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	trim := bytes.TrimSpace(data)
	if len(trim) == 0 {
		return nil
	}

	if trim[0] == '[' {
		var arr []json.RawMessage
		if err := json.Unmarshal(trim, &arr); err != nil {
			return err
		}
		for _, raw := range arr {
			if err := fi.processIncidentJSON(ctx, raw); err != nil {
				fi.opts.Logger.Printf("invalid record in %s: %v", path, err)
				fi.countError()
				continue
			}
			fi.countIngested()
		}
		return nil
	}

	if err := fi.processIncidentJSON(ctx, trim); err != nil {
		return err
	}
	fi.countIngested()
	return nil
}

func (fi *FolderIngestor) processIncidentJSON(ctx context.Context, raw []byte) error {
	inc, err := DecodeIncident(raw)
	if err != nil {
		return err
	}

	if err := fi.store.UpsertIncident(ctx, inc); err != nil {
		return err
	}

	_ = fi.store.RecordActivity(ctx, store.Activity{
		Kind:    store.ActivityIncidentIngest,
		Subject: inc.ID,
		Actor:   fi.opts.Actor,
		Details: map[string]interface{}{"title": inc.Title, "severity": inc.Severity},
	})

	// Best-effort publish to bus (optional, no-op on NullBus)
	_ = fi.bus.PublishActivity(ctx, bus.ActivityMessage{
		Kind:      store.ActivityIncidentIngest,
		Subject:   inc.ID,
		Actor:     fi.opts.Actor,
		Details:   map[string]string{"title": inc.Title, "severity": inc.Severity},
		Timestamp: inc.StartedAt.Unix(),
	})

	if fi.opts.OnIngest != nil {
		fi.opts.OnIngest(inc)
	}
	return nil
}

// DecodeIncident parses and validates one incident record. Severity and status
// are upper-cased.
func DecodeIncident(raw []byte) (model.Incident, error) {
	var inc model.Incident
	if err := json.Unmarshal(raw, &inc); err != nil {
		return model.Incident{}, fmt.Errorf("failed to decode incident: %w", err)
	}
	inc.Severity = strings.ToUpper(strings.TrimSpace(inc.Severity))
	inc.Status = strings.ToUpper(strings.TrimSpace(inc.Status))
	if err := inc.Validate(); err != nil {
		return model.Incident{}, err
	}
	return inc, nil
}
