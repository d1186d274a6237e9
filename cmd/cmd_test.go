package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashfaaq98/signalroot-console/internal/query"
	"github.com/Ashfaaq98/signalroot-console/internal/ui"
)

func TestFacetValue(t *testing.T) {
	assert.Equal(t, query.All, facetValue("", strings.ToUpper))
	assert.Equal(t, query.All, facetValue("ALL", strings.ToUpper))
	assert.Equal(t, "CRITICAL", facetValue("critical", strings.ToUpper))
	assert.Equal(t, "security", facetValue("Security", strings.ToLower))
}

func TestSortState(t *testing.T) {
	def := query.SortState{Key: "startedAt", Direction: query.Descending}

	assert.Equal(t, query.SortState{Key: "startedAt", Direction: query.Ascending}, sortState("", query.Ascending, def))
	assert.Equal(t, query.SortState{Key: "title", Direction: query.Descending}, sortState("title", query.Descending, def))
	assert.Equal(t, query.SortState{}, sortState("", query.Ascending, query.SortState{}))
}

func TestWriteRows(t *testing.T) {
	var buf bytes.Buffer
	rows := []ui.Row{
		{ID: "1", Cells: []string{"API Gateway High Latency", "HIGH"}},
		{ID: "22", Cells: []string{"Memory Usage Spike", "MEDIUM"}},
	}
	require.NoError(t, writeRows(&buf, []string{"Title", "Severity"}, rows, true))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[0], "TITLE")
	assert.True(t, strings.HasPrefix(lines[2], "22"))
	// Columns line up.
	assert.Equal(t, strings.Index(lines[1], "HIGH"), strings.Index(lines[2], "MEDIUM"))

	buf.Reset()
	require.NoError(t, writeRows(&buf, []string{"Method", "Path"}, []ui.Row{{ID: "x", Cells: []string{"GET", "/api/versions"}}}, false))
	assert.NotContains(t, buf.String(), "ID")
	assert.Contains(t, buf.String(), "/api/versions")
}

// cli runs the root command against a temp database and a fake backend.
type cli struct {
	t       *testing.T
	db      string
	backend string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/webhooks/") {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"received"}`))
			return
		}
		http.Error(w, "backend down", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	return &cli{t: t, db: filepath.Join(t.TempDir(), "signalroot.db"), backend: srv.URL}
}

func (c *cli) run(stdin string, args ...string) (string, error) {
	c.t.Helper()

	listSearch, listStatus, listSeverity, listType, listMethod = "", query.All, query.All, query.All, query.All
	listSort, listOrder, listLimit, listBundled = "", "desc", 20, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--db", c.db, "--backend", c.backend}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run("", args...)
	require.NoError(c.t, err, out)
	return out
}

func TestCLIWorkflow(t *testing.T) {
	c := newCLI(t)

	t.Run("Version", func(t *testing.T) {
		out := c.mustRun("version")
		assert.Contains(t, out, "SignalRoot Console")
		assert.Contains(t, out, "Backend: "+c.backend)
	})

	t.Run("Seed", func(t *testing.T) {
		out := c.mustRun("seed")
		assert.Contains(t, out, "Seeded 5 incidents")
		assert.Contains(t, out, "Seeded 3 services")

		out = c.mustRun("seed")
		assert.Contains(t, out, "Seeded 0 services")
	})

	t.Run("ListIncidents", func(t *testing.T) {
		out := c.mustRun("list", "incidents")
		assert.Contains(t, out, "Total: 5")
		assert.Contains(t, out, "5 incidents found")
		assert.Contains(t, out, "API Gateway High Latency")

		out = c.mustRun("list", "incidents", "--severity", "critical")
		assert.Contains(t, out, "1 incidents found")
		assert.Contains(t, out, "Database Connection Pool Exhausted")
		assert.NotContains(t, out, "Memory Usage Spike")

		out = c.mustRun("list", "incidents", "--search", "no-such-incident")
		assert.Contains(t, out, "0 incidents found")
		assert.Contains(t, out, "No incidents found")
	})

	t.Run("ListRejectsBadInput", func(t *testing.T) {
		_, err := c.run("", "list", "bogus")
		assert.Error(t, err)

		_, err = c.run("", "list", "incidents", "--order", "sideways")
		assert.Error(t, err)
	})

	t.Run("Show", func(t *testing.T) {
		out := c.mustRun("show", "2")
		assert.Contains(t, out, "Database Connection Pool Exhausted")

		_, err := c.run("", "show", "99")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "incident 99 not found")
	})

	t.Run("ChangelogLoadFailure", func(t *testing.T) {
		out, err := c.run("", "list", "changelog")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load changelog")
		assert.Contains(t, err.Error(), "HTTP 500")
		assert.NotContains(t, out, "Total Releases")
		assert.NotContains(t, out, "releases found")
	})

	t.Run("BundledChangelog", func(t *testing.T) {
		out := c.mustRun("list", "changelog", "--bundled")
		assert.Contains(t, out, "Total Releases: 9")
		assert.Contains(t, out, "9 releases found")

		out = c.mustRun("list", "changelog", "--bundled", "--type", "SECURITY")
		assert.Contains(t, out, "1 releases found")
	})

	t.Run("EndpointsFallBack", func(t *testing.T) {
		out := c.mustRun("list", "endpoints")
		assert.Contains(t, out, "8 endpoints found")
		assert.Contains(t, out, c.backend)
	})

	t.Run("Services", func(t *testing.T) {
		out := c.mustRun("services", "add", "search-service", "--description", "Full-text search")
		assert.Contains(t, out, "Added service search-service")

		_, err := c.run("", "services", "add", "search-service")
		assert.Error(t, err, "names are unique")

		out = c.mustRun("services", "edit", "search-service", "--description", "Search and indexing")
		assert.Contains(t, out, "Updated service search-service")

		out = c.mustRun("list", "services")
		assert.Contains(t, out, "Search and indexing")
		assert.Contains(t, out, "payment-service")

		file := filepath.Join(t.TempDir(), "services.yaml")
		out = c.mustRun("services", "export", file)
		assert.Contains(t, out, "Exported 4 services")
		data, err := os.ReadFile(file)
		require.NoError(t, err)
		assert.Contains(t, string(data), "name: search-service")

		out = c.mustRun("services", "import", file)
		assert.Contains(t, out, "0 created, 4 updated")

		extra := filepath.Join(t.TempDir(), "extra.yaml")
		require.NoError(t, os.WriteFile(extra, []byte("services:\n  - name: billing-service\n    description: Invoices\n"), 0o644))
		out = c.mustRun("services", "import", extra)
		assert.Contains(t, out, "1 created, 0 updated")

		bad := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("services:\n  - description: no name\n"), 0o644))
		_, err = c.run("", "services", "import", bad)
		assert.Error(t, err)

		out = c.mustRun("services", "delete", "search-service")
		assert.Contains(t, out, "Deleted service search-service")
		out = c.mustRun("list", "services")
		assert.NotContains(t, out, "search-service")
	})

	t.Run("Webhooks", func(t *testing.T) {
		out := c.mustRun("webhook", "list")
		for _, key := range []string{"pagerduty", "cloudwatch", "github", "jenkins"} {
			assert.Contains(t, out, key)
		}

		out = c.mustRun("webhook", "guide", "github")
		assert.Contains(t, out, c.backend+"/webhooks/deploy/github")

		out = c.mustRun("webhook", "test", "github")
		assert.Contains(t, out, "OK (HTTP 200)")

		_, err := c.run("", "webhook", "test", "nagios")
		assert.Error(t, err)

		out = c.mustRun("list", "activity")
		assert.Contains(t, out, "webhook.tested")
		assert.Contains(t, out, "service.created")
	})

	t.Run("DeleteIncident", func(t *testing.T) {
		out := c.mustRun("delete-incident", "5")
		assert.Contains(t, out, "Deleted incident 5")
		assert.Contains(t, c.mustRun("list", "incidents"), "4 incidents found")
		assert.Contains(t, c.mustRun("list", "activity"), "incident.deleted")

		_, err := c.run("", "delete-incident", "5")
		assert.Error(t, err)
	})

	t.Run("Reset", func(t *testing.T) {
		out, err := c.run("n\n", "reset", "--db-only")
		require.NoError(t, err)
		assert.Contains(t, out, "Reset operation cancelled.")
		assert.Contains(t, c.mustRun("list", "incidents"), "4 incidents found")

		out = c.mustRun("reset", "--db-only", "--yes")
		assert.Contains(t, out, "Database cleared")
		assert.Contains(t, c.mustRun("list", "incidents"), "0 incidents found")
	})
}
