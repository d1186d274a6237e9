package seed

import "github.com/Ashfaaq98/signalroot-console/internal/model"

const releasesURL = "https://github.com/signalroot/releases/"

func feature(component, desc string) model.Change {
	return model.Change{Type: model.ChangeFeature, Component: component, Description: desc}
}

func improvement(component, desc string) model.Change {
	return model.Change{Type: model.ChangeImprovement, Component: component, Description: desc}
}

func bugfix(component, desc string) model.Change {
	return model.Change{Type: model.ChangeBugfix, Component: component, Description: desc}
}

// Changelog returns the release history, newest first.
func Changelog() []model.ChangelogVersion {
	return []model.ChangelogVersion{
		{
			Version: "2.0.0", ReleaseDate: "2024-02-15", Status: "upcoming",
			Changes: []model.Change{
				feature("Enterprise", "Enterprise-grade security and compliance features"),
				feature("Analytics", "Advanced analytics and reporting dashboard"),
				feature("Architecture", "Multi-tenant architecture with role-based access control"),
				improvement("Reliability", "99.99% uptime SLA guarantee for enterprise customers"),
				feature("Security", "SSO integration with SAML and OAuth 2.0"),
			},
		},
		{
			Version: "1.2.0", ReleaseDate: "2024-01-20", Status: "stable",
			Changes: []model.Change{
				feature("API Documentation", "Added comprehensive API documentation with Swagger integration"),
				feature("Webhook Integration", "Enhanced webhook testing with real-time validation"),
				improvement("UI/UX", "Improved UI responsiveness and mobile compatibility"),
				bugfix("Authentication", "Fixed authentication token refresh issues"),
			},
			DownloadURL:    releasesURL + "v1.2.0",
			Checksum:       "sha256:abc123def456789",
			MigrationGuide: "https://docs.signalroot.com/migration/1.2.0",
		},
		{
			Version: "1.1.5", ReleaseDate: "2024-01-15", Status: "stable",
			Changes: []model.Change{
				bugfix("Webhook Processing", "Fixed webhook payload parsing for GitHub deployments"),
				improvement("Monitoring", "Enhanced error logging and debugging capabilities"),
			},
			DownloadURL: releasesURL + "v1.1.5",
			Checksum:    "sha256:def456789abc123",
		},
		{
			Version: "1.1.4", ReleaseDate: "2024-01-10", Status: "stable",
			Changes: []model.Change{
				{Type: model.ChangeSecurity, Component: "Security", Description: "Updated dependencies to address security vulnerabilities"},
				bugfix("Core Engine", "Resolved memory leak in long-running webhook processes"),
			},
			DownloadURL: releasesURL + "v1.1.4",
			Checksum:    "sha256:ghi789abc123def",
		},
		{
			Version: "1.1.3", ReleaseDate: "2024-01-05", Status: "stable",
			Changes: []model.Change{
				feature("Integration", "Added support for Jenkins CI/CD webhooks"),
				improvement("Database", "Optimized database query performance"),
			},
			DownloadURL: releasesURL + "v1.1.3",
			Checksum:    "sha256:jkl123def456789",
		},
		{
			Version: "1.1.2", ReleaseDate: "2023-12-28", Status: "stable",
			Changes: []model.Change{
				bugfix("Webhook Processing", "Fixed duplicate webhook processing issue"),
			},
			DownloadURL: releasesURL + "v1.1.2",
			Checksum:    "sha256:mno456789abc123",
		},
		{
			Version: "1.1.1", ReleaseDate: "2023-12-20", Status: "stable",
			Changes: []model.Change{
				bugfix("API Gateway", "Fixed API rate limiting configuration"),
				improvement("Dashboard", "Enhanced monitoring dashboard with real-time metrics"),
			},
			DownloadURL: releasesURL + "v1.1.1",
			Checksum:    "sha256:pqr789abc123def",
		},
		{
			Version: "1.1.0", ReleaseDate: "2023-12-15", Status: "stable",
			Changes: []model.Change{
				{Type: model.ChangeFeature, Component: "Core Architecture", Description: "Introduced multi-tenant support", Breaking: true},
				feature("Webhook Integration", "Added comprehensive webhook management system"),
				improvement("UI/UX", "Redesigned user interface with modern design system"),
			},
			DownloadURL:    releasesURL + "v1.1.0",
			Checksum:       "sha256:stu123def456789",
			MigrationGuide: "https://docs.signalroot.com/migration/1.1.0",
		},
		{
			Version: "1.0.0", ReleaseDate: "2023-11-01", Status: "stable",
			Changes: []model.Change{
				feature("Core Features", "Initial SignalRoot release with core alert enrichment functionality"),
				feature("Integration", "Basic webhook processing for PagerDuty and Slack"),
				feature("Developer Experience", "API documentation and developer tools"),
			},
			DownloadURL: releasesURL + "v1.0.0",
			Checksum:    "sha256:vwx456789abc123",
		},
	}
}
