package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ashfaaq98/signalroot-console/internal/backend"
	"github.com/Ashfaaq98/signalroot-console/internal/collection"
	"github.com/Ashfaaq98/signalroot-console/internal/model"
	"github.com/Ashfaaq98/signalroot-console/internal/query"
	"github.com/Ashfaaq98/signalroot-console/internal/seed"
	"github.com/Ashfaaq98/signalroot-console/internal/store"
	"github.com/Ashfaaq98/signalroot-console/internal/ui"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list [incidents|services|changelog|endpoints|activity]",
	Short: "Print a console view as plain text",
	Long: `Print incidents, services, the changelog, API endpoints or recent activity
as plain text. The same search, filters and sorting as the TUI apply, so this
works in any terminal or script.

Examples:
  # Active critical incidents, oldest first
  signalroot list incidents --status ACTIVE --severity CRITICAL --order asc

  # Search incidents
  signalroot list incidents --search gateway

  # Security releases from the backend
  signalroot list changelog --type security

  # Release notes shipped with this binary, without asking the backend
  signalroot list changelog --bundled

  # GET endpoints
  signalroot list endpoints --method GET`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"incidents", "services", "changelog", "endpoints", "activity"},
	RunE:      runList,
}

var (
	listSearch   string
	listStatus   string
	listSeverity string
	listType     string
	listMethod   string
	listSort     string
	listOrder    string
	listLimit    int
	listBundled  bool
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listSearch, "search", "", "Case-insensitive search term")
	listCmd.Flags().StringVar(&listStatus, "status", query.All, "Incident status filter")
	listCmd.Flags().StringVar(&listSeverity, "severity", query.All, "Incident severity filter")
	listCmd.Flags().StringVar(&listType, "type", query.All, "Changelog change type filter")
	listCmd.Flags().StringVar(&listMethod, "method", query.All, "Endpoint HTTP method filter")
	listCmd.Flags().StringVar(&listSort, "sort", "", "Sort key (e.g. startedAt, title, severity, releaseDate)")
	listCmd.Flags().StringVar(&listOrder, "order", "desc", "Sort direction: asc or desc")
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "Maximum number of activity entries")
	listCmd.Flags().BoolVar(&listBundled, "bundled", false, "List the bundled changelog instead of querying the backend")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config := GetConfig()
	out := cmd.OutOrStdout()

	target := "incidents"
	if len(args) > 0 {
		target = strings.ToLower(args[0])
	}

	direction, err := query.ParseDirection(listOrder)
	if err != nil {
		return err
	}

	switch target {
	case "incidents", "services", "activity":
		st, err := store.NewStore(resolvePath(config.Database.Path))
		if err != nil {
			return fmt.Errorf("failed to initialize store: %w", err)
		}
		defer st.Close()

		switch target {
		case "incidents":
			ls := ui.ListState{
				Filter: model.NewIncidentFilter().
					WithSearch(listSearch).
					WithFacet(model.FacetStatus, facetValue(listStatus, strings.ToUpper)).
					WithFacet(model.FacetSeverity, facetValue(listSeverity, strings.ToUpper)),
				Sort: sortState(listSort, direction, model.DefaultIncidentSort),
			}
			return listIncidents(ctx, out, st, ls)
		case "services":
			return listServices(ctx, out, st)
		default:
			return listActivity(ctx, out, st, listLimit)
		}

	case "changelog":
		ls := ui.ListState{
			Filter: model.NewChangelogFilter().WithSearch(listSearch).WithFacet(model.FacetType, facetValue(listType, strings.ToLower)),
			Sort:   sortState(listSort, direction, model.DefaultChangelogSort),
		}
		var src collection.Source[model.ChangelogVersion] = collection.SourceFunc[model.ChangelogVersion](newBackendClient(config).Versions)
		if listBundled {
			src = collection.Static(seed.Changelog())
		}
		return listChangelog(ctx, out, src, ls)

	case "endpoints":
		ls := ui.ListState{
			Filter: query.NewFilterState(model.FacetMethod, model.FacetTag).
				WithSearch(listSearch).
				WithFacet(model.FacetMethod, facetValue(listMethod, strings.ToUpper)),
			Sort: sortState(listSort, direction, query.SortState{}),
		}
		return listEndpoints(ctx, out, newBackendClient(config), ls)

	default:
		return fmt.Errorf("unknown list type: %s (use incidents, services, changelog, endpoints or activity)", target)
	}
}

// facetValue normalizes a flag value to the case the records use.
func facetValue(v string, norm func(string) string) string {
	if v == "" || strings.EqualFold(v, query.All) {
		return query.All
	}
	return norm(v)
}

// sortState uses the flag key when given, else def with the flag direction.
func sortState(key string, dir query.Direction, def query.SortState) query.SortState {
	if key == "" {
		if def.Key == "" {
			return def
		}
		return query.SortState{Key: def.Key, Direction: dir}
	}
	return query.SortState{Key: key, Direction: dir}
}

func newBackendClient(config Config) *backend.Client {
	return backend.NewClient(backend.Options{
		BaseURL: config.Backend.URL,
		Logger:  newLogger("backend", config.Log, true),
	})
}

// loadCollection runs one collection load. A fallback given in opts is
// reported on stderr when used; without one a failed load is an error.
func loadCollection[T any](ctx context.Context, noun string, src collection.Source[T], opts ...collection.Option[T]) ([]T, error) {
	st := collection.New(src, opts...)
	defer st.Close()
	if err := st.Load(ctx); err != nil && !collection.IsStale(err) {
		snap := st.Snapshot()
		if !snap.Fallback {
			return nil, fmt.Errorf("failed to load %s: %w", noun, err)
		}
		fmt.Fprintf(os.Stderr, "Warning: %s (showing bundled %s)\n", snap.Err, noun)
	}
	return st.Snapshot().Items, nil
}

func listIncidents(ctx context.Context, out io.Writer, st *store.Store, ls ui.ListState) error {
	all, err := st.ListIncidents(ctx)
	if err != nil {
		return fmt.Errorf("failed to list incidents: %w", err)
	}
	items := ui.Derive(all, ls, model.IncidentSchema)

	fmt.Fprintln(out, ui.FormatStats(ui.IncidentStats(all)))
	fmt.Fprintln(out, ui.FoundLabel(len(items), "incidents"))
	if len(items) == 0 {
		fmt.Fprintln(out, "No incidents found. Try adjusting your search or filters")
		return nil
	}
	fmt.Fprintln(out)
	return writeRows(out, ui.Headers(ui.IncidentColumns, ls.Sort), ui.IncidentRows(items, time.Now()), true)
}

func listServices(ctx context.Context, out io.Writer, st *store.Store) error {
	services, err := st.ListServices(ctx)
	if err != nil {
		return fmt.Errorf("failed to list services: %w", err)
	}
	if len(services) == 0 {
		fmt.Fprintln(out, "No services found.")
		return nil
	}
	return writeRows(out, ui.Headers(ui.ServiceColumns, query.SortState{}), ui.ServiceRows(services), true)
}

func listActivity(ctx context.Context, out io.Writer, st *store.Store, limit int) error {
	entries, err := st.ListActivity(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list activity: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No activity recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tKIND\tSUBJECT\tACTOR")
	for _, a := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.Timestamp.Local().Format("2006-01-02 15:04:05"), a.Kind, a.Subject, a.Actor)
	}
	return tw.Flush()
}

// listChangelog has no fallback: a failed load is an error.
func listChangelog(ctx context.Context, out io.Writer, src collection.Source[model.ChangelogVersion], ls ui.ListState) error {
	all, err := loadCollection(ctx, "changelog", src)
	if err != nil {
		return err
	}
	items := ui.Derive(all, ls, model.ChangelogSchema)

	fmt.Fprintln(out, ui.FormatStats(ui.ChangelogStats(all)))
	fmt.Fprintln(out, ui.FoundLabel(len(items), "releases"))
	if len(items) == 0 {
		fmt.Fprintln(out, "No releases found. Try adjusting your search or filters")
		return nil
	}
	for _, v := range items {
		fmt.Fprintln(out)
		for _, line := range ui.ChangelogVersionLines(v, true) {
			fmt.Fprintln(out, line)
		}
	}
	return nil
}

func listEndpoints(ctx context.Context, out io.Writer, client *backend.Client, ls ui.ListState) error {
	all, err := loadCollection(ctx, "API documentation",
		collection.SourceFunc[model.APIEndpoint](client.Endpoints),
		collection.WithFallback(seed.FallbackAPIDocs(client.BaseURL()).Endpoints()))
	if err != nil {
		return err
	}
	items := ui.Derive(all, ls, model.EndpointSchema)

	fmt.Fprintf(out, "%s (base URL %s)\n", ui.FoundLabel(len(items), "endpoints"), client.BaseURL())
	if len(items) == 0 {
		return nil
	}
	fmt.Fprintln(out)
	return writeRows(out, ui.Headers(ui.EndpointColumns, ls.Sort), ui.EndpointRows(items), false)
}

// writeRows prints rows as aligned columns, optionally led by the row id.
func writeRows(out io.Writer, headers []string, rows []ui.Row, withID bool) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if withID {
		fmt.Fprint(tw, "ID\t")
	}
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(headers, "\t")))
	for _, r := range rows {
		if withID {
			fmt.Fprint(tw, r.ID+"\t")
		}
		fmt.Fprintln(tw, strings.Join(r.Cells, "\t"))
	}
	return tw.Flush()
}
