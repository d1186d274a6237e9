package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashfaaq98/signalroot-console/internal/model"
	"github.com/Ashfaaq98/signalroot-console/internal/query"
)

func TestIncidentsAreValid(t *testing.T) {
	incs := Incidents()
	require.Len(t, incs, 5)
	for _, inc := range incs {
		assert.NoError(t, inc.Validate(), inc.ID)
	}
	assert.Len(t, incs[0].Timeline, 5)
}

func TestChangelogStats(t *testing.T) {
	stats := query.Aggregate(Changelog(), model.ChangelogSchema)
	assert.Equal(t, 9, stats.Total)
	assert.Equal(t, 12, stats.Get(model.ChangeFeature))
	assert.Equal(t, 6, stats.Get(model.ChangeImprovement))
	assert.Equal(t, 5, stats.Get(model.ChangeBugfix))
	assert.Equal(t, 1, stats.Get(model.ChangeSecurity))
}

func TestFallbackEndpointsOrdered(t *testing.T) {
	eps := FallbackAPIDocs("http://localhost:8080").Endpoints()
	require.Len(t, eps, 8)
	assert.Equal(t, "/api/dogfooding/scenarios", eps[0].Path)
	assert.Equal(t, "/webhooks/deploy/jenkins", eps[len(eps)-1].Path)
}

func TestWebhookGuides(t *testing.T) {
	guides := WebhookGuides("http://example.test/")
	require.Len(t, guides, 4)
	assert.Equal(t, "http://example.test/webhooks/deploy/github", guides[2].Configuration.WebhookURL)

	g, ok := WebhookGuide("http://example.test", "jenkins")
	require.True(t, ok)
	assert.Equal(t, "/webhooks/deploy/jenkins", g.Testing.Path)

	_, ok = WebhookGuide("http://example.test", "slack")
	assert.False(t, ok)
}
