package model

import (
	"strings"

	"github.com/Ashfaaq98/signalroot-console/internal/query"
)

// APIEndpoint is one operation of the backend's OpenAPI document.
type APIEndpoint struct {
	Path        string   `json:"path"`
	Method      string   `json:"method"`
	Summary     string   `json:"summary,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ID identifies the endpoint, e.g. "GET /api/versions".
func (e APIEndpoint) ID() string {
	return strings.ToUpper(e.Method) + " " + e.Path
}

// EndpointSchema searches path, summary and description.
var EndpointSchema = query.Schema[APIEndpoint]{
	Text: []func(APIEndpoint) string{
		func(e APIEndpoint) string { return e.Path },
		func(e APIEndpoint) string { return e.Summary },
		func(e APIEndpoint) string { return e.Description },
	},
	Facets: map[string]func(APIEndpoint) []string{
		FacetMethod: query.One(func(e APIEndpoint) string { return strings.ToUpper(e.Method) }),
		FacetTag:    func(e APIEndpoint) []string { return e.Tags },
	},
	Keys: map[string]func(APIEndpoint) query.Value{
		KeyPath:   func(e APIEndpoint) query.Value { return query.String(e.Path) },
		KeyMethod: func(e APIEndpoint) query.Value { return query.String(strings.ToUpper(e.Method)) },
	},
	Categories: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
	Category:   func(e APIEndpoint) []string { return []string{strings.ToUpper(e.Method)} },
}
