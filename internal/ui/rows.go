package ui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Ashfaaq98/signalroot-console/internal/model"
	"github.com/Ashfaaq98/signalroot-console/internal/query"
)

// Row building is kept free of tview so the list commands and tests can
// share it with the widgets.

// Row is one table row; Cells line up with the view's headers.
type Row struct {
	ID    string
	Cells []string
	// Severity colors incident rows; empty elsewhere.
	Severity string
}

// Column is a table header bound to a sort key ("" when not sortable).
type Column struct {
	Title string
	Key   string
}

// IncidentColumns are the incident list columns.
var IncidentColumns = []Column{
	{"Incident", model.KeyTitle},
	{"Service", model.KeyService},
	{"Severity", model.KeySeverity},
	{"Status", model.KeyStatus},
	{"Started", model.KeyStartedAt},
	{"Duration", ""},
}

// EndpointColumns are the API explorer columns.
var EndpointColumns = []Column{
	{"Method", model.KeyMethod},
	{"Path", model.KeyPath},
	{"Summary", ""},
	{"Tags", ""},
}

// ServiceColumns are the service registry columns.
var ServiceColumns = []Column{
	{"Name", model.KeyName},
	{"Description", ""},
	{"Created", model.KeyCreatedAt},
}

// Headers renders column titles, marking the sorted one with an arrow.
func Headers(cols []Column, s query.SortState) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Title
		if c.Key != "" && c.Key == s.Key {
			if s.Direction == query.Ascending {
				out[i] += " ↑"
			} else {
				out[i] += " ↓"
			}
		}
	}
	return out
}

// FoundLabel renders "5 incidents found".
func FoundLabel(n int, noun string) string {
	return fmt.Sprintf("%d %s found", n, noun)
}

const dateLayout = "Jan 2, 2006 15:04"

// IncidentRows builds the incident list rows.
func IncidentRows(items []model.Incident, now time.Time) []Row {
	rows := make([]Row, 0, len(items))
	for _, inc := range items {
		rows = append(rows, Row{
			ID: inc.ID,
			Cells: []string{
				inc.Title,
				inc.Service,
				inc.Severity,
				inc.Status,
				inc.StartedAt.Local().Format(dateLayout),
				inc.Duration(now),
			},
			Severity: inc.Severity,
		})
	}
	return rows
}

// StatPair is one entry of a stats panel.
type StatPair struct {
	Label string
	Count int
}

// IncidentStats counts the whole collection per severity.
func IncidentStats(items []model.Incident) []StatPair {
	stats := query.Aggregate(items, model.IncidentSchema)
	out := []StatPair{{"Total", stats.Total}}
	for _, sev := range model.Severities {
		out = append(out, StatPair{sev, stats.Get(sev)})
	}
	return out
}

// ChangelogStats counts the whole changelog per change type.
func ChangelogStats(items []model.ChangelogVersion) []StatPair {
	stats := query.Aggregate(items, model.ChangelogSchema)
	return []StatPair{
		{"Total Releases", stats.Total},
		{"Features", stats.Get(model.ChangeFeature)},
		{"Improvements", stats.Get(model.ChangeImprovement)},
		{"Bug Fixes", stats.Get(model.ChangeBugfix)},
		{"Security", stats.Get(model.ChangeSecurity)},
	}
}

// FormatStats renders pairs on one line.
func FormatStats(pairs []StatPair) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%s: %d", p.Label, p.Count)
	}
	return strings.Join(parts, "   ")
}

// IncidentDetail renders the detail page as text lines.
func IncidentDetail(inc model.Incident, now time.Time) []string {
	lines := []string{
		inc.Title,
		fmt.Sprintf("Service: %s   Severity: %s   Status: %s", inc.Service, inc.Severity, inc.Status),
		fmt.Sprintf("Started: %s (%s)   Duration: %s", inc.StartedAt.Local().Format(dateLayout), model.TimeAgo(inc.StartedAt, now), inc.Duration(now)),
	}
	if inc.Assignee != "" {
		lines = append(lines, "Assignee: "+inc.Assignee)
	}
	if len(inc.Tags) > 0 {
		lines = append(lines, "Tags: "+strings.Join(inc.Tags, ", "))
	}

	description := inc.Description
	if description == "" {
		description = inc.Summary
	}
	lines = append(lines, "", "Description", description)

	if inc.Impact != "" {
		lines = append(lines, "", "Impact", inc.Impact)
	}
	if m := inc.Metrics; m != nil {
		lines = append(lines, "", "Metrics")
		if m.ResponseTime != "" {
			lines = append(lines, "  Response time: "+m.ResponseTime)
		}
		if m.ErrorRate != "" {
			lines = append(lines, "  Error rate: "+m.ErrorRate)
		}
		if m.AffectedUsers != "" {
			lines = append(lines, "  Affected users: "+m.AffectedUsers)
		}
	}

	if len(inc.Timeline) > 0 {
		lines = append(lines, "", "Timeline")
		for i, entry := range inc.Timeline {
			head := fmt.Sprintf("  %s  %-13s %s", entry.Timestamp.Local().Format("15:04"), strings.ToUpper(entry.Type), model.TimeAgo(entry.Timestamp, now))
			if i > 0 {
				if gap := model.TimeGap(entry.Timestamp, inc.Timeline[i-1].Timestamp); gap != "" {
					head += "  " + gap
				}
			}
			if entry.Severity != "" {
				head += "  [" + entry.Severity + "]"
			}
			lines = append(lines, head, "    "+entry.Message)
			if entry.Details != "" {
				lines = append(lines, "    "+entry.Details)
			}
		}
	}

	if d := inc.RelatedDeploy; d != nil {
		lines = append(lines, "", "Recent Deployment",
			fmt.Sprintf("  %s via %s", d.ID, d.Source),
			fmt.Sprintf("  Commit %s on %s", d.ShortCommit(), d.Branch),
			fmt.Sprintf("  Deployed by %s, %s", d.DeployedBy, model.TimeAgo(d.DeployedAt, now)),
		)
	}

	if s := inc.SimilarIncident; s != nil {
		lines = append(lines, "", "Similar Past Incident",
			fmt.Sprintf("  %s (%s)", s.Title, s.ID),
			"  Started: "+s.StartedAt.Local().Format(dateLayout),
		)
		if s.ResolvedAt != nil {
			lines = append(lines, "  Resolved in "+model.FormatDuration(s.StartedAt, s.ResolvedAt, now))
		}
	}

	if len(inc.SuggestedChecks) > 0 {
		lines = append(lines, "", "Suggested Checks")
		for i, check := range inc.SuggestedChecks {
			lines = append(lines, fmt.Sprintf("  %d. %s", i+1, check))
		}
	}

	if inc.Resolution != "" {
		lines = append(lines, "", "Resolution", inc.Resolution)
	}
	return lines
}

// ChangelogVersionLines renders one release; changes are listed only when
// the version is expanded.
func ChangelogVersionLines(v model.ChangelogVersion, expanded bool) []string {
	marker := "+"
	if expanded {
		marker = "-"
	}
	head := fmt.Sprintf("%s v%s  %s  %s  (%d changes)", marker, v.Version, v.ReleaseDate, v.Status, len(v.Changes))
	if n := len(v.BreakingChanges()); n > 0 {
		head += fmt.Sprintf("  BREAKING x%d", n)
	}
	lines := []string{head}
	if !expanded {
		return lines
	}
	for _, c := range v.Changes {
		line := fmt.Sprintf("    %-12s %s", c.Type, c.Description)
		if c.Component != "" {
			line += "  [" + c.Component + "]"
		}
		if c.Breaking {
			line += "  (breaking)"
		}
		lines = append(lines, line)
	}
	if v.DownloadURL != "" {
		lines = append(lines, "    Download: "+v.DownloadURL)
	}
	if v.Checksum != "" {
		lines = append(lines, "    Checksum: "+v.Checksum)
	}
	if v.MigrationGuide != "" {
		lines = append(lines, "    Migration guide: "+v.MigrationGuide)
	}
	return lines
}

// EndpointRows builds the API explorer rows.
func EndpointRows(items []model.APIEndpoint) []Row {
	rows := make([]Row, 0, len(items))
	for _, e := range items {
		rows = append(rows, Row{
			ID:    e.ID(),
			Cells: []string{strings.ToUpper(e.Method), e.Path, e.Summary, strings.Join(e.Tags, ", ")},
		})
	}
	return rows
}

// ServiceRows builds the service registry rows.
func ServiceRows(items []model.Service) []Row {
	rows := make([]Row, 0, len(items))
	for _, s := range items {
		created := ""
		if !s.CreatedAt.IsZero() {
			created = s.CreatedAt.Local().Format(dateLayout)
		}
		rows = append(rows, Row{ID: s.ID, Cells: []string{s.Name, s.Description, created}})
	}
	return rows
}

// Webhook guide sections, in display order.
const (
	SectionOverview = "overview"
	SectionSetup    = "setup"
	SectionConfig   = "config"
	SectionTesting  = "testing"
)

var webhookSections = []string{SectionOverview, SectionSetup, SectionConfig, SectionTesting}

// WebhookGuideLines renders a guide with only the expanded sections opened.
func WebhookGuideLines(g model.WebhookGuide, expanded query.IDSet, copied bool, last *model.WebhookResult) []string {
	lines := []string{
		fmt.Sprintf("%s  (%s, %s, %s)", g.Name, g.Category, g.Status, g.Popularity),
		g.Description,
	}
	for _, section := range webhookSections {
		open := expanded.Contains(section)
		marker := "+"
		if open {
			marker = "-"
		}
		lines = append(lines, "", fmt.Sprintf("%s %s", marker, sectionTitle(section)))
		if !open {
			continue
		}
		switch section {
		case SectionOverview:
			for _, f := range g.Features {
				lines = append(lines, "  * "+f)
			}
		case SectionSetup:
			for i, step := range g.Steps {
				lines = append(lines, fmt.Sprintf("  %d. %s", i+1, step))
			}
		case SectionConfig:
			url := "  Webhook URL: " + g.Configuration.WebhookURL
			if copied {
				url += "  (copied)"
			}
			lines = append(lines, url, "  Method: "+g.Configuration.Method)
			for _, k := range sortedKeys(g.Configuration.Headers) {
				lines = append(lines, fmt.Sprintf("  Header %s: %s", k, g.Configuration.Headers[k]))
			}
			if len(g.Configuration.PayloadExample) > 0 {
				lines = append(lines, "  Payload example:")
				lines = append(lines, indentJSON(g.Configuration.PayloadExample, "    ")...)
			}
		case SectionTesting:
			lines = append(lines, "  POST "+g.Testing.Path)
			lines = append(lines, indentJSON(g.Testing.SamplePayload, "    ")...)
			if last != nil {
				lines = append(lines, "  Last result: "+WebhookResultLine(*last))
			}
		}
	}
	return lines
}

// WebhookResultLine summarizes a test result.
func WebhookResultLine(r model.WebhookResult) string {
	outcome := "FAILED"
	if r.Success {
		outcome = "OK"
	}
	line := outcome
	if r.StatusCode != 0 {
		line += fmt.Sprintf(" (HTTP %d)", r.StatusCode)
	}
	line += ": " + r.Message
	if !r.Timestamp.IsZero() {
		line += " at " + r.Timestamp.Local().Format("15:04:05")
	}
	return line
}

func sectionTitle(section string) string {
	switch section {
	case SectionOverview:
		return "Overview"
	case SectionSetup:
		return "Setup Steps"
	case SectionConfig:
		return "Configuration"
	case SectionTesting:
		return "Testing"
	}
	return section
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func indentJSON(v any, indent string) []string {
	data, err := json.MarshalIndent(v, indent, "  ")
	if err != nil {
		return []string{indent + fmt.Sprint(v)}
	}
	return strings.Split(indent+string(data), "\n")
}
