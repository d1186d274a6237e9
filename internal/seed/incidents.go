// Package seed holds the built-in sample collections used when the console
// runs without a backend or an empty database.
package seed

import (
	"time"

	"github.com/Ashfaaq98/signalroot-console/internal/model"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic("seed: bad timestamp " + s)
	}
	return t
}

func tsp(s string) *time.Time {
	t := ts(s)
	return &t
}

// Incidents returns the five sample incidents, newest first. The first one
// carries the full detail payload.
func Incidents() []model.Incident {
	return []model.Incident{
		{
			ID:        "1",
			Title:     "API Gateway High Latency",
			Service:   "payment-service",
			Severity:  model.SeverityHigh,
			Status:    model.StatusActive,
			StartedAt: ts("2024-01-20T10:30:00Z"),
			Summary:   "API Gateway experiencing high latency affecting payment processing",
			Assignee:  "john.doe",
			Tags:      []string{"performance", "api-gateway"},
			Impact:    "High - Payment processing affected",
			Metrics:   &model.Metrics{ResponseTime: "2.3s", ErrorRate: "12%", AffectedUsers: "1,234"},
			Description: "The API Gateway is showing response times exceeding 2 seconds for payment processing endpoints. " +
				"This is causing timeouts in downstream services and affecting user experience.",
			SuggestedChecks: []string{
				"Check API Gateway health endpoints",
				"Review recent error logs",
				"Verify database connectivity",
				"Check for recent configuration changes",
				"Verify external dependencies are accessible",
			},
			RelatedDeploy: &model.Deploy{
				ID:         "deploy-1",
				Source:     "github",
				CommitHash: "abc123def456",
				Branch:     "main",
				DeployedBy: "john.doe",
				DeployedAt: ts("2024-01-20T10:15:00Z"),
			},
			SimilarIncident: &model.SimilarIncident{
				ID:         "incident-45",
				Title:      "API Gateway Latency Spike",
				StartedAt:  ts("2024-01-18T14:20:00Z"),
				ResolvedAt: tsp("2024-01-18T15:30:00Z"),
			},
			Timeline: []model.TimelineEntry{
				{Timestamp: ts("2024-01-20T10:15:00Z"), Type: "deploy", Message: "GitHub deploy #123 - payment-service v2.4.1", Details: "Deployed to production by john.doe"},
				{Timestamp: ts("2024-01-20T10:30:00Z"), Type: "alert", Message: "High latency alert triggered for API Gateway", Severity: model.SeverityHigh},
				{Timestamp: ts("2024-01-20T10:32:00Z"), Type: "correlation", Message: "Recent deployment detected (15 mins ago)", Details: "GitHub deploy abc123def456 on main branch"},
				{Timestamp: ts("2024-01-20T10:33:00Z"), Type: "notification", Message: "Enriched alert sent to Slack", Details: "Payment service team notified"},
				{Timestamp: ts("2024-01-20T10:35:00Z"), Type: "investigation", Message: "Team acknowledged incident", Details: "Investigation started by oncall engineer"},
			},
		},
		{
			ID:         "2",
			Title:      "Database Connection Pool Exhausted",
			Service:    "user-service",
			Severity:   model.SeverityCritical,
			Status:     model.StatusResolved,
			StartedAt:  ts("2024-01-20T09:15:00Z"),
			Summary:    "Database connection pool exhausted, causing service failures",
			Assignee:   "jane.smith",
			Tags:       []string{"database", "infrastructure"},
			Impact:     "Critical - User authentication failures",
			Resolution: "Increased connection pool size and added monitoring",
			ResolvedAt: tsp("2024-01-20T11:30:00Z"),
			Metrics:    &model.Metrics{ResponseTime: "5.1s", ErrorRate: "45%", AffectedUsers: "5,678"},
		},
		{
			ID:        "3",
			Title:     "Memory Usage Spike",
			Service:   "analytics-service",
			Severity:  model.SeverityMedium,
			Status:    model.StatusActive,
			StartedAt: ts("2024-01-20T08:45:00Z"),
			Summary:   "Memory usage spike detected in analytics service",
			Assignee:  "mike.jones",
			Tags:      []string{"performance", "monitoring"},
			Impact:    "Medium - Analytics processing delays",
			Metrics:   &model.Metrics{ResponseTime: "1.8s", ErrorRate: "8%", AffectedUsers: "456"},
		},
		{
			ID:        "4",
			Title:     "SSL Certificate Expiration",
			Service:   "web-frontend",
			Severity:  model.SeverityHigh,
			Status:    model.StatusMonitoring,
			StartedAt: ts("2024-01-19T14:20:00Z"),
			Summary:   "SSL certificate expiring in 7 days",
			Assignee:  "sarah.wilson",
			Tags:      []string{"security", "infrastructure"},
			Impact:    "High - Service may become unavailable",
		},
		{
			ID:         "5",
			Title:      "Third-party API Rate Limit",
			Service:    "notification-service",
			Severity:   model.SeverityMedium,
			Status:     model.StatusResolved,
			StartedAt:  ts("2024-01-19T12:00:00Z"),
			Summary:    "Third-party notification API rate limit exceeded",
			Assignee:   "alex.brown",
			Tags:       []string{"external-api", "notifications"},
			Impact:     "Medium - Notification delivery delays",
			Resolution: "Implemented retry logic with exponential backoff",
			ResolvedAt: tsp("2024-01-19T15:45:00Z"),
		},
	}
}

// Services returns the default service registry.
func Services() []model.Service {
	return []model.Service{
		{Name: "payment-service", Description: "Payment processing service"},
		{Name: "user-service", Description: "User management and authentication"},
		{Name: "analytics-service", Description: "Data analytics and reporting"},
	}
}
