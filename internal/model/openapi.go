package model

import (
	"sort"
	"strings"
)

// OpenAPIDocument is the subset of an OpenAPI 3 document the explorer reads.
type OpenAPIDocument struct {
	OpenAPI string                          `json:"openapi"`
	Info    OpenAPIInfo                     `json:"info"`
	Servers []OpenAPIServer                 `json:"servers,omitempty"`
	Paths   map[string]map[string]Operation `json:"paths"`
}

// OpenAPIInfo is the document's info block.
type OpenAPIInfo struct {
	Title       string `json:"title"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

// OpenAPIServer is one entry of the servers list.
type OpenAPIServer struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// Operation is a single method under a path.
type Operation struct {
	Summary     string   `json:"summary,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

var methodRank = map[string]int{"get": 0, "post": 1, "put": 2, "patch": 3, "delete": 4}

func rank(method string) int {
	if r, ok := methodRank[method]; ok {
		return r
	}
	return len(methodRank)
}

// Endpoints flattens the paths map into endpoints ordered by path, then by
// method (get, post, put, patch, delete, then the rest alphabetically).
func (d *OpenAPIDocument) Endpoints() []APIEndpoint {
	if d == nil {
		return nil
	}
	var out []APIEndpoint
	for path, ops := range d.Paths {
		for method, op := range ops {
			out = append(out, APIEndpoint{
				Path:        path,
				Method:      strings.ToLower(method),
				Summary:     op.Summary,
				Description: op.Description,
				Tags:        op.Tags,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		ra, rb := rank(a.Method), rank(b.Method)
		if ra != rb {
			return ra < rb
		}
		return a.Method < b.Method
	})
	return out
}
