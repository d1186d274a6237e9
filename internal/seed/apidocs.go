package seed

import "github.com/Ashfaaq98/signalroot-console/internal/model"

func op(summary, description string, tags ...string) model.Operation {
	return model.Operation{Summary: summary, Description: description, Tags: tags}
}

// FallbackAPIDocs is the document the explorer shows when the backend's
// /v3/api-docs cannot be fetched. It mirrors the backend's real routes.
func FallbackAPIDocs(backendURL string) *model.OpenAPIDocument {
	return &model.OpenAPIDocument{
		OpenAPI: "3.0.0",
		Info: model.OpenAPIInfo{
			Title:       "SignalRoot API",
			Version:     "1.1.0",
			Description: "SignalRoot API for alert management and webhook processing",
		},
		Servers: []model.OpenAPIServer{{URL: backendURL, Description: "Development server"}},
		Paths: map[string]map[string]model.Operation{
			"/api/versions": {
				"get": op("Get API version information", "Get API version information and changelog", "versions"),
			},
			"/api/dogfooding/scenarios": {
				"get": op("Get all available dogfooding scenarios", "Get all available dogfooding scenarios", "dogfooding"),
			},
			"/api/dogfooding/scenarios/{id}": {
				"get": op("Get specific dogfooding scenario by ID", "Get specific dogfooding scenario by ID", "dogfooding"),
			},
			"/webhooks/alerts/pagerduty": {
				"post": op("Process PagerDuty webhook alerts", "Process PagerDuty webhook alerts", "alerts"),
			},
			"/webhooks/alerts/cloudwatch": {
				"post": op("Process CloudWatch webhook alerts", "Process CloudWatch webhook alerts", "alerts"),
			},
			"/webhooks/deploy/github": {
				"post": op("Process GitHub deployment events", "Process GitHub deployment events", "deploys"),
			},
			"/webhooks/deploy/jenkins": {
				"post": op("Process Jenkins deployment events", "Process Jenkins deployment events", "deploys"),
			},
			"/api/safety/stats": {
				"get": op("Get safety and idempotency statistics", "Get safety and idempotency statistics", "safety"),
			},
		},
	}
}
