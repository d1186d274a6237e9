package model

import (
	"github.com/Ashfaaq98/signalroot-console/internal/query"
)

// Change types.
const (
	ChangeFeature     = "feature"
	ChangeImprovement = "improvement"
	ChangeBugfix      = "bugfix"
	ChangeSecurity    = "security"
)

// ChangeTypes lists the known change types in display order.
var ChangeTypes = []string{ChangeFeature, ChangeImprovement, ChangeBugfix, ChangeSecurity}

// ChangelogVersion is one release and its changes.
type ChangelogVersion struct {
	Version        string   `json:"version"`
	ReleaseDate    string   `json:"releaseDate"`
	Status         string   `json:"status"`
	Changes        []Change `json:"changes"`
	DownloadURL    string   `json:"downloadUrl,omitempty"`
	Checksum       string   `json:"checksum,omitempty"`
	MigrationGuide string   `json:"migrationGuide,omitempty"`
}

// Change is a single changelog entry.
type Change struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Component   string `json:"component"`
	Breaking    bool   `json:"breaking"`
}

// BreakingChanges returns the changes flagged as breaking.
func (v ChangelogVersion) BreakingChanges() []Change {
	var out []Change
	for _, c := range v.Changes {
		if c.Breaking {
			out = append(out, c)
		}
	}
	return out
}

// ChangeTypesOf returns the type of every change, duplicates included.
func (v ChangelogVersion) ChangeTypesOf() []string {
	out := make([]string, len(v.Changes))
	for i, c := range v.Changes {
		out[i] = c.Type
	}
	return out
}

// ChangelogSchema searches the version string and every change description;
// the type facet matches a version carrying at least one change of that type.
var ChangelogSchema = query.Schema[ChangelogVersion]{
	Text: []func(ChangelogVersion) string{
		func(v ChangelogVersion) string { return v.Version },
	},
	Nested: func(v ChangelogVersion) []string {
		out := make([]string, len(v.Changes))
		for i, c := range v.Changes {
			out[i] = c.Description
		}
		return out
	},
	Facets: map[string]func(ChangelogVersion) []string{
		FacetType:   ChangelogVersion.ChangeTypesOf,
		FacetStatus: query.One(func(v ChangelogVersion) string { return v.Status }),
	},
	Keys: map[string]func(ChangelogVersion) query.Value{
		KeyReleaseDate: func(v ChangelogVersion) query.Value { return query.String(v.ReleaseDate) },
		KeyVersion:     func(v ChangelogVersion) query.Value { return query.String(v.Version) },
	},
	Categories: ChangeTypes,
	Category:   ChangelogVersion.ChangeTypesOf,
}

// DefaultChangelogSort lists the newest release first.
var DefaultChangelogSort = query.SortState{Key: KeyReleaseDate, Direction: query.Descending}

// NewChangelogFilter returns the changelog's initial filter state.
func NewChangelogFilter() query.FilterState {
	return query.NewFilterState(FacetType)
}
