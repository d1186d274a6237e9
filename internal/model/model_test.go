package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashfaaq98/signalroot-console/internal/query"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func incidents() []Incident {
	return []Incident{
		{ID: "1", Title: "API Gateway High Latency", Service: "payment-service", Severity: SeverityHigh, Status: StatusActive, StartedAt: at("2024-01-20T10:30:00Z"), Summary: "API Gateway experiencing high latency"},
		{ID: "2", Title: "Database Connection Pool Exhausted", Service: "user-service", Severity: SeverityCritical, Status: StatusResolved, StartedAt: at("2024-01-20T09:15:00Z"), Summary: "Pool exhausted, causing service failures"},
		{ID: "3", Title: "Memory Usage Spike", Service: "analytics-service", Severity: SeverityMedium, Status: StatusActive, StartedAt: at("2024-01-20T08:45:00Z"), Summary: "Memory usage spike detected"},
		{ID: "4", Title: "SSL Certificate Expiration", Service: "web-frontend", Severity: SeverityHigh, Status: StatusMonitoring, StartedAt: at("2024-01-19T14:20:00Z"), Summary: "Certificate expiring in 7 days"},
		{ID: "5", Title: "Third-party API Rate Limit", Service: "notification-service", Severity: SeverityLow, Status: StatusResolved, StartedAt: at("2024-01-19T12:00:00Z"), Summary: "Rate limit exceeded"},
	}
}

func incidentIDs(in []Incident) []string {
	out := make([]string, len(in))
	for i, inc := range in {
		out[i] = inc.ID
	}
	return out
}

func TestIncidentSeverityFacet(t *testing.T) {
	state := NewIncidentFilter().WithFacet(FacetSeverity, SeverityHigh)
	got := query.Filter(incidents(), state, IncidentSchema)
	assert.Equal(t, []string{"1", "4"}, incidentIDs(got))
}

func TestIncidentSearch(t *testing.T) {
	state := NewIncidentFilter().WithSearch("latency")
	got := query.Filter(incidents()[:2], state, IncidentSchema)
	assert.Equal(t, []string{"1"}, incidentIDs(got))

	// Service names are searchable too.
	got = query.Filter(incidents(), NewIncidentFilter().WithSearch("USER-service"), IncidentSchema)
	assert.Equal(t, []string{"2"}, incidentIDs(got))
}

func TestIncidentSortStartedAt(t *testing.T) {
	in := incidents()[:3]
	in[0], in[2] = in[2], in[0]

	got := query.Sort(in, DefaultIncidentSort, IncidentSchema)
	assert.Equal(t, []string{"1", "2", "3"}, incidentIDs(got))

	got = query.Sort(in, query.Toggle(DefaultIncidentSort, KeyStartedAt), IncidentSchema)
	assert.Equal(t, []string{"3", "2", "1"}, incidentIDs(got))
}

func TestIncidentSeverityStats(t *testing.T) {
	stats := query.Aggregate(incidents(), IncidentSchema)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 2, stats.Get(SeverityHigh))
	assert.Equal(t, 1, stats.Get(SeverityCritical))
	assert.Equal(t, 0, stats.Get(SeverityInfo))

	byStatus := query.Aggregate(incidents(), IncidentStatusSchema)
	assert.Equal(t, 2, byStatus.Get(StatusActive))
	assert.Equal(t, 2, byStatus.Get(StatusResolved))
}

func TestIncidentValidate(t *testing.T) {
	require.NoError(t, incidents()[0].Validate())

	err := Incident{ID: "x", Title: "t"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service")
	assert.Contains(t, err.Error(), "startedAt")

	inc := incidents()[0]
	before := inc.StartedAt.Add(-time.Hour)
	inc.ResolvedAt = &before
	assert.Error(t, inc.Validate())
}

func versions() []ChangelogVersion {
	return []ChangelogVersion{
		{Version: "1.2.0", ReleaseDate: "2024-01-20", Status: "stable", Changes: []Change{
			{Type: ChangeFeature, Description: "Added API documentation"},
			{Type: ChangeFeature, Description: "Enhanced webhook testing"},
			{Type: ChangeBugfix, Description: "Fixed token refresh"},
		}},
		{Version: "1.1.4", ReleaseDate: "2024-01-10", Status: "stable", Changes: []Change{
			{Type: ChangeSecurity, Description: "Updated dependencies"},
		}},
		{Version: "1.1.0", ReleaseDate: "2023-12-15", Status: "stable", Changes: []Change{
			{Type: ChangeFeature, Description: "Introduced multi-tenant support", Breaking: true},
			{Type: ChangeImprovement, Description: "Redesigned user interface"},
		}},
	}
}

func TestChangelogStatsCountChanges(t *testing.T) {
	stats := query.Aggregate(versions()[:1], ChangelogSchema)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 2, stats.Get(ChangeFeature))
	assert.Equal(t, 1, stats.Get(ChangeBugfix))
	assert.Equal(t, 0, stats.Get(ChangeSecurity))

	all := query.Aggregate(versions(), ChangelogSchema)
	assert.Equal(t, 3, all.Total)
	assert.Equal(t, 3, all.Get(ChangeFeature))
	assert.Equal(t, 6, all.Counted())
}

func TestChangelogFilter(t *testing.T) {
	names := func(in []ChangelogVersion) []string {
		var out []string
		for _, v := range in {
			out = append(out, v.Version)
		}
		return out
	}

	got := query.Filter(versions(), NewChangelogFilter().WithFacet(FacetType, ChangeSecurity), ChangelogSchema)
	assert.Equal(t, []string{"1.1.4"}, names(got))

	// A matching change keeps its whole version.
	got = query.Filter(versions(), NewChangelogFilter().WithSearch("multi-tenant"), ChangelogSchema)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Changes, 2)

	got = query.Filter(versions(), NewChangelogFilter().WithSearch("1.1"), ChangelogSchema)
	assert.Equal(t, []string{"1.1.4", "1.1.0"}, names(got))

	sorted := query.Sort(versions(), query.SortState{Key: KeyReleaseDate, Direction: query.Ascending}, ChangelogSchema)
	assert.Equal(t, []string{"1.1.0", "1.1.4", "1.2.0"}, names(sorted))
}

func TestBreakingChanges(t *testing.T) {
	assert.Empty(t, versions()[0].BreakingChanges())
	breaking := versions()[2].BreakingChanges()
	require.Len(t, breaking, 1)
	assert.Equal(t, "Introduced multi-tenant support", breaking[0].Description)
}

func TestEndpointSearch(t *testing.T) {
	eps := []APIEndpoint{
		{Path: "/api/versions", Method: "get", Summary: "Get API version information"},
		{Path: "/webhooks/alerts/pagerduty", Method: "post", Summary: "Process PagerDuty webhook alerts"},
		{Path: "/api/safety/stats", Method: "get", Description: "Get safety and idempotency statistics"},
	}
	got := query.Filter(eps, query.NewFilterState(FacetMethod).WithSearch("idempotency"), EndpointSchema)
	require.Len(t, got, 1)
	assert.Equal(t, "GET /api/safety/stats", got[0].ID())

	got = query.Filter(eps, query.NewFilterState(FacetMethod).WithFacet(FacetMethod, "POST"), EndpointSchema)
	require.Len(t, got, 1)
	assert.Equal(t, "/webhooks/alerts/pagerduty", got[0].Path)
}

func TestServiceValidate(t *testing.T) {
	assert.ErrorIs(t, Service{Name: "  "}.Validate(), ErrServiceNameRequired)
	assert.NoError(t, Service{Name: "payment-service"}.Validate())
}

func TestFormatDuration(t *testing.T) {
	start := at("2024-01-20T10:30:00Z")
	end := at("2024-01-20T11:15:00Z")
	assert.Equal(t, "45m", FormatDuration(start, &end, time.Time{}))

	now := at("2024-01-20T12:45:30Z")
	assert.Equal(t, "2h 15m", FormatDuration(start, nil, now))
	assert.Equal(t, "0m", FormatDuration(now, nil, start))
}

func TestTimeAgo(t *testing.T) {
	now := at("2024-01-20T12:00:00Z")
	assert.Equal(t, "2 days ago", TimeAgo(now.Add(-50*time.Hour), now))
	assert.Equal(t, "3 hours ago", TimeAgo(now.Add(-3*time.Hour), now))
	assert.Equal(t, "15 mins ago", TimeAgo(now.Add(-15*time.Minute), now))
	assert.Equal(t, "Just now", TimeAgo(now.Add(-20*time.Second), now))
}

func TestTimeGap(t *testing.T) {
	prev := at("2024-01-20T10:15:00Z")
	assert.Equal(t, "+15m", TimeGap(at("2024-01-20T10:30:00Z"), prev))
	assert.Equal(t, "", TimeGap(prev, prev))
}

func TestDeployShortCommit(t *testing.T) {
	assert.Equal(t, "abc123d", Deploy{CommitHash: "abc123def456"}.ShortCommit())
	assert.Equal(t, "abc", Deploy{CommitHash: "abc"}.ShortCommit())
}
