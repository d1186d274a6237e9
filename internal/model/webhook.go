package model

import (
	"time"

	"github.com/Ashfaaq98/signalroot-console/internal/query"
)

// WebhookGuide documents how to connect one alerting or deploy source.
type WebhookGuide struct {
	Key           string               `json:"key"`
	Name          string               `json:"name"`
	Description   string               `json:"description"`
	Category      string               `json:"category"`
	Status        string               `json:"status"`
	Popularity    string               `json:"popularity"`
	Features      []string             `json:"features"`
	Steps         []string             `json:"steps"`
	Configuration WebhookConfiguration `json:"configuration"`
	Testing       WebhookTesting       `json:"testing"`
}

// WebhookConfiguration is what the source must be configured with.
type WebhookConfiguration struct {
	WebhookURL     string            `json:"webhookUrl"`
	Method         string            `json:"method"`
	Headers        map[string]string `json:"headers"`
	PayloadExample map[string]any    `json:"payloadExample"`
}

// WebhookTesting is the sample request sent by the tester.
type WebhookTesting struct {
	// Path is relative to the backend base URL.
	Path          string         `json:"path"`
	SamplePayload map[string]any `json:"samplePayload"`
}

// WebhookResult is the outcome of one webhook test.
type WebhookResult struct {
	Success    bool      `json:"success"`
	StatusCode int       `json:"statusCode,omitempty"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// WebhookSchema searches guide name and description.
var WebhookSchema = query.Schema[WebhookGuide]{
	Text: []func(WebhookGuide) string{
		func(g WebhookGuide) string { return g.Name },
		func(g WebhookGuide) string { return g.Description },
	},
	Facets: map[string]func(WebhookGuide) []string{
		FacetCategory: query.One(func(g WebhookGuide) string { return g.Category }),
		FacetStatus:   query.One(func(g WebhookGuide) string { return g.Status }),
	},
	Keys: map[string]func(WebhookGuide) query.Value{
		KeyName: func(g WebhookGuide) query.Value { return query.String(g.Name) },
	},
}
