package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Ashfaaq98/signalroot-console/internal/backend"
	"github.com/Ashfaaq98/signalroot-console/internal/bus"
	"github.com/Ashfaaq98/signalroot-console/internal/ingest"
	"github.com/Ashfaaq98/signalroot-console/internal/model"
	"github.com/Ashfaaq98/signalroot-console/internal/store"
	"github.com/Ashfaaq98/signalroot-console/internal/ui"
)

var (
	noTUI       bool
	forceTUI    bool
	startRoute  string
	watchIngest bool

	// HTTP ingestion flags
	httpIngestEnable bool
	httpIngestBind   string
	httpIngestToken  string
	httpIngestRPS    int
	httpIngestBurst  int
)

const activityGroup = "signalroot-console"

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the console TUI and background ingestion",
	Long: `Start SignalRoot Console, which includes:

1. Terminal User Interface with incidents, services, changelog, API explorer
   and webhook guides
2. A watcher on the ingest directory that loads new incident files
3. Optional HTTP intake writing incident payloads into that directory
4. A Redis Streams consumer that refreshes the incident list on new activity

The serve command runs until interrupted (Ctrl+C or q in the TUI).

Examples:
  # Start with TUI (default)
  signalroot serve

  # Open straight on an incident
  signalroot serve --route /incidents/2

  # Headless ingestion with HTTP intake
  signalroot serve --no-tui --http-ingest-enable --http-ingest-token secret`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&noTUI, "no-tui", false, "Run in headless mode without TUI")
	serveCmd.Flags().BoolVar(&forceTUI, "force-tui", false, "Force TUI mode even when no terminal is detected")
	serveCmd.Flags().StringVar(&startRoute, "route", "/incidents", "Initial screen, e.g. /changelog or /incidents/3")
	serveCmd.Flags().BoolVar(&watchIngest, "watch", true, "Watch the ingest directory for incident files")

	serveCmd.Flags().BoolVar(&httpIngestEnable, "http-ingest-enable", false, "Enable HTTP ingestion server")
	serveCmd.Flags().StringVar(&httpIngestBind, "http-ingest-bind", "127.0.0.1:8081", "Bind address for HTTP ingestion")
	serveCmd.Flags().StringVar(&httpIngestToken, "http-ingest-token", "", "Bearer token required for HTTP ingestion (optional)")
	serveCmd.Flags().IntVar(&httpIngestRPS, "http-ingest-rps", 10, "Max HTTP ingestion requests per second")
	serveCmd.Flags().IntVar(&httpIngestBurst, "http-ingest-burst", 20, "Burst size for HTTP ingestion rate limiter")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config := GetConfig()

	if _, err := ui.ParseRoute(startRoute); err != nil {
		return err
	}

	useTUI := !noTUI && (forceTUI || canInitializeTUI())
	if !noTUI && !useTUI {
		fmt.Fprintln(os.Stderr, "No usable terminal detected, running headless. Use --force-tui to override.")
	}

	// In TUI mode logs go to a file; only errors still reach the terminal.
	var logger *log.Logger
	if useTUI {
		f, err := openLogFile(config.Log.File)
		if err != nil {
			return err
		}
		defer f.Close()
		logger = log.New(io.MultiWriter(f, &errorFilterWriter{os.Stderr}), "[serve] ", log.LstdFlags)
	} else {
		logger = newLogger("serve", config.Log, false)
	}
	logger.Printf("Starting SignalRoot Console (%s)", getTerminalInfo())

	// Component logs share the serve destination; headless runs keep the
	// chattier ones for --log-level debug.
	componentLogger := func(component string, chatty bool) *log.Logger {
		if useTUI {
			return log.New(logger.Writer(), "["+component+"] ", log.LstdFlags)
		}
		return newLogger(component, config.Log, chatty)
	}

	dbFile := resolvePath(config.Database.Path)
	logger.Printf("Using database at %s", dbFile)
	st, err := store.NewStore(dbFile)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	eventBus := bus.NewBus(config.Redis.URL, componentLogger("bus", true))
	defer eventBus.Close()

	client := backend.NewClient(backend.Options{
		BaseURL: config.Backend.URL,
		Logger:  componentLogger("backend", true),
	})

	svcCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(svcCtx)

	var console *ui.UI
	if useTUI {
		console, err = ui.NewUI(gctx, ui.Options{
			Store:   st,
			Backend: client,
			Bus:     eventBus,
			Logger:  componentLogger("ui", true),
			Route:   startRoute,
		})
		if err != nil {
			return fmt.Errorf("failed to create TUI: %w", err)
		}
	}
	refresh := func() {
		if console != nil {
			console.RefreshIncidents()
		}
	}

	incomingDir := resolvePath(config.Ingest.Dir)
	if watchIngest || httpIngestEnable {
		if err := os.MkdirAll(incomingDir, 0o755); err != nil {
			return fmt.Errorf("failed to create ingest directory %s: %w", incomingDir, err)
		}
	}

	if watchIngest {
		// With Redis the refresh arrives through the activity stream.
		_, redisActive := eventBus.(*bus.RedisBus)
		folder := ingest.NewFolderIngestor(st, eventBus, ingest.FolderOptions{
			Dir:         incomingDir,
			Watch:       true,
			Logger:      componentLogger("ingest", false),
			TailFromEnd: true,
			OnIngest: func(model.Incident) {
				if !redisActive {
					refresh()
				}
			},
		})
		g.Go(func() error {
			if err := folder.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("folder ingest: %w", err)
			}
			return nil
		})
	}

	if httpIngestEnable {
		intake, err := ingest.NewHTTPIngestServer(ingest.HTTPIngestOptions{
			Bind:   httpIngestBind,
			Token:  httpIngestToken,
			Dir:    incomingDir,
			RPS:    httpIngestRPS,
			Burst:  httpIngestBurst,
			Logger: componentLogger("http-ingest", false),
		})
		if err != nil {
			return fmt.Errorf("failed to configure HTTP intake: %w", err)
		}
		if err := intake.Start(gctx); err != nil {
			return fmt.Errorf("failed to start HTTP intake: %w", err)
		}
		logger.Printf("HTTP intake enabled on %s writing to %s", httpIngestBind, incomingDir)
	}

	consumer, _ := os.Hostname()
	g.Go(func() error {
		err := eventBus.ReadActivity(gctx, activityGroup, "serve-"+consumer, func(_ context.Context, msg bus.ActivityMessage) error {
			logger.Printf("activity %s %s by %s", msg.Kind, msg.Subject, msg.Actor)
			if msg.Kind == store.ActivityIncidentIngest {
				refresh()
			}
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("activity consumer: %w", err)
		}
		return nil
	})

	if console != nil {
		g.Go(func() error {
			// Quitting the TUI stops everything else.
			defer cancel()
			if err := console.Start(gctx); err != nil {
				return fmt.Errorf("TUI error: %w", err)
			}
			return nil
		})
	} else {
		logger.Println("Running in headless mode...")
	}

	err = g.Wait()
	logger.Println("SignalRoot Console stopped")
	return err
}
