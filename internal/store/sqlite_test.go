package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashfaaq98/signalroot-console/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testIncident(id string, started time.Time) model.Incident {
	return model.Incident{
		ID:        id,
		Title:     "Incident " + id,
		Service:   "payment-service",
		Severity:  model.SeverityHigh,
		Status:    model.StatusActive,
		StartedAt: started,
		Summary:   "summary " + id,
	}
}

func TestNewStore(t *testing.T) {
	store := newTestStore(t)

	var count int
	err := store.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table'").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Migrations are idempotent.
	require.NoError(t, store.migrate())
}

func TestNewStoreCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "console.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.UpsertIncident(context.Background(), testIncident("1", time.Now())))
	n, err := store.CountIncidents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIncidentRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	started := time.Date(2024, 1, 20, 10, 30, 0, 0, time.UTC)
	resolved := started.Add(45 * time.Minute)
	inc := testIncident("1", started)
	inc.Tags = []string{"performance"}
	inc.ResolvedAt = &resolved
	inc.Status = model.StatusResolved
	inc.RelatedDeploy = &model.Deploy{ID: "deploy-1", CommitHash: "abc123def456", DeployedAt: started.Add(-15 * time.Minute)}
	inc.Timeline = []model.TimelineEntry{{Timestamp: started, Type: "alert", Message: "fired"}}

	require.NoError(t, store.UpsertIncident(ctx, inc))
	got, err := store.GetIncident(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, inc.Title, got.Title)
	assert.True(t, got.StartedAt.Equal(started))
	require.NotNil(t, got.ResolvedAt)
	assert.True(t, got.ResolvedAt.Equal(resolved))
	assert.Equal(t, "abc123d", got.RelatedDeploy.ShortCommit())
	assert.Len(t, got.Timeline, 1)

	// Upsert replaces.
	inc.Title = "Renamed"
	require.NoError(t, store.UpsertIncident(ctx, inc))
	got, err = store.GetIncident(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	n, err := store.CountIncidents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUpsertIncidentRejectsInvalid(t *testing.T) {
	store := newTestStore(t)
	err := store.UpsertIncident(context.Background(), model.Incident{ID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required fields")
}

func TestListIncidentsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 20, 8, 0, 0, 0, time.UTC)

	require.NoError(t, store.UpsertIncident(ctx, testIncident("a", base)))
	require.NoError(t, store.UpsertIncident(ctx, testIncident("b", base.Add(2*time.Hour))))
	require.NoError(t, store.UpsertIncident(ctx, testIncident("c", base.Add(time.Hour))))

	list, err := store.ListIncidents(ctx)
	require.NoError(t, err)
	var ids []string
	for _, inc := range list {
		ids = append(ids, inc.ID)
	}
	assert.Equal(t, []string{"b", "c", "a"}, ids)
}

func TestDeleteIncident(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.UpsertIncident(ctx, testIncident("1", time.Now())))

	require.NoError(t, store.DeleteIncident(ctx, "1"))
	_, err := store.GetIncident(ctx, "1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.DeleteIncident(ctx, "1"), ErrNotFound)
}

func TestServiceCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, err := store.CreateService(ctx, model.Service{Name: " analytics-service ", Description: "Data analytics"})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "analytics-service", a.Name)
	assert.False(t, a.CreatedAt.IsZero())

	b, err := store.CreateService(ctx, model.Service{Name: "billing-service"})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	_, err = store.CreateService(ctx, model.Service{Name: ""})
	assert.ErrorIs(t, err, model.ErrServiceNameRequired)

	list, err := store.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "analytics-service", list[0].Name)

	a.Description = "Data analytics and reporting"
	updated, err := store.UpdateService(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "Data analytics and reporting", updated.Description)
	assert.True(t, updated.CreatedAt.Equal(a.CreatedAt))

	found, err := store.FindServiceByName(ctx, "billing-service")
	require.NoError(t, err)
	assert.Equal(t, b.ID, found.ID)

	require.NoError(t, store.DeleteService(ctx, b.ID))
	_, err = store.GetService(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.UpdateService(ctx, model.Service{ID: "missing", Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceNamesAreUnique(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, err := store.CreateService(ctx, model.Service{Name: "payment-service"})
	require.NoError(t, err)
	_, err = store.CreateService(ctx, model.Service{Name: "payment-service"})
	assert.Error(t, err)
}

func TestActivityLog(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, store.RecordActivity(ctx, Activity{Kind: ActivityServiceCreated, Subject: "svc-1", Timestamp: base}))
	require.NoError(t, store.RecordActivity(ctx, Activity{
		Kind:      ActivityWebhookTested,
		Subject:   "pagerduty",
		Actor:     "tester",
		Details:   map[string]interface{}{"success": true},
		Timestamp: base.Add(time.Second),
	}))

	entries, err := store.ListActivity(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActivityWebhookTested, entries[0].Kind)
	assert.Equal(t, true, entries[0].Details["success"])
	assert.Equal(t, "console", entries[1].Actor)
	assert.NotEmpty(t, entries[1].ID)

	limited, err := store.ListActivity(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestReset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.UpsertIncident(ctx, testIncident("1", time.Now())))
	_, err := store.CreateService(ctx, model.Service{Name: "payment-service"})
	require.NoError(t, err)
	require.NoError(t, store.RecordActivity(ctx, Activity{Kind: ActivityIncidentIngest}))

	require.NoError(t, store.Reset(ctx))

	n, err := store.CountIncidents(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	services, err := store.ListServices(ctx)
	require.NoError(t, err)
	assert.Empty(t, services)
	entries, err := store.ListActivity(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
