// Package model defines the typed records shown by the console and the query
// schemas the filter/sort/aggregate engine reads them with.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Ashfaaq98/signalroot-console/internal/query"
)

// Incident severities, most severe first.
const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
	SeverityLow      = "LOW"
	SeverityInfo     = "INFO"
)

// Incident statuses.
const (
	StatusActive       = "ACTIVE"
	StatusAcknowledged = "ACKNOWLEDGED"
	StatusMonitoring   = "MONITORING"
	StatusResolved     = "RESOLVED"
)

// Facet and sort key names shared by views and commands.
const (
	FacetStatus   = "status"
	FacetSeverity = "severity"
	FacetService  = "service"
	FacetType     = "type"
	FacetMethod   = "method"
	FacetTag      = "tag"
	FacetCategory = "category"

	KeyStartedAt   = "startedAt"
	KeyTitle       = "title"
	KeySeverity    = "severity"
	KeyStatus      = "status"
	KeyService     = "service"
	KeyReleaseDate = "releaseDate"
	KeyVersion     = "version"
	KeyPath        = "path"
	KeyMethod      = "method"
	KeyName        = "name"
	KeyCreatedAt   = "createdAt"
)

// Severities lists the known severities in display order.
var Severities = []string{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}

// Statuses lists the known statuses in display order.
var Statuses = []string{StatusActive, StatusAcknowledged, StatusMonitoring, StatusResolved}

// Incident is one alert-derived incident.
type Incident struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Service   string    `json:"service" yaml:"service"`
	Severity  string    `json:"severity" yaml:"severity"`
	Status    string    `json:"status" yaml:"status"`
	StartedAt time.Time `json:"startedAt" yaml:"startedAt"`
	Summary   string    `json:"summary" yaml:"summary"`

	Assignee   string     `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	Tags       []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	Impact     string     `json:"impact,omitempty" yaml:"impact,omitempty"`
	Resolution string     `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty" yaml:"resolvedAt,omitempty"`
	Metrics    *Metrics   `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	Description     string           `json:"description,omitempty" yaml:"description,omitempty"`
	SuggestedChecks []string         `json:"suggestedChecks,omitempty" yaml:"suggestedChecks,omitempty"`
	RelatedDeploy   *Deploy          `json:"relatedDeploy,omitempty" yaml:"relatedDeploy,omitempty"`
	SimilarIncident *SimilarIncident `json:"similarIncident,omitempty" yaml:"similarIncident,omitempty"`
	Timeline        []TimelineEntry  `json:"timeline,omitempty" yaml:"timeline,omitempty"`
}

// Metrics are the impact figures reported with an incident.
type Metrics struct {
	ResponseTime  string `json:"responseTime,omitempty" yaml:"responseTime,omitempty"`
	ErrorRate     string `json:"errorRate,omitempty" yaml:"errorRate,omitempty"`
	AffectedUsers string `json:"affectedUsers,omitempty" yaml:"affectedUsers,omitempty"`
}

// Deploy is the deployment correlated with an incident.
type Deploy struct {
	ID         string    `json:"id" yaml:"id"`
	Source     string    `json:"source" yaml:"source"`
	CommitHash string    `json:"commitHash" yaml:"commitHash"`
	Branch     string    `json:"branch" yaml:"branch"`
	DeployedBy string    `json:"deployedBy" yaml:"deployedBy"`
	DeployedAt time.Time `json:"deployedAt" yaml:"deployedAt"`
}

// ShortCommit returns the first seven characters of the commit hash.
func (d Deploy) ShortCommit() string {
	if len(d.CommitHash) > 7 {
		return d.CommitHash[:7]
	}
	return d.CommitHash
}

// SimilarIncident points at a past incident resembling this one.
type SimilarIncident struct {
	ID         string     `json:"id" yaml:"id"`
	Title      string     `json:"title" yaml:"title"`
	StartedAt  time.Time  `json:"startedAt" yaml:"startedAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty" yaml:"resolvedAt,omitempty"`
}

// TimelineEntry is one step in an incident's history.
type TimelineEntry struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	// Type is one of deploy, alert, correlation, notification, investigation.
	Type     string `json:"type" yaml:"type"`
	Message  string `json:"message" yaml:"message"`
	Details  string `json:"details,omitempty" yaml:"details,omitempty"`
	Severity string `json:"severity,omitempty" yaml:"severity,omitempty"`
}

// IsResolved reports whether the incident has been resolved.
func (i Incident) IsResolved() bool {
	return i.Status == StatusResolved
}

// Validate checks required fields.
func (i Incident) Validate() error {
	var missing []string
	if strings.TrimSpace(i.ID) == "" {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(i.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(i.Service) == "" {
		missing = append(missing, "service")
	}
	if strings.TrimSpace(i.Severity) == "" {
		missing = append(missing, "severity")
	}
	if strings.TrimSpace(i.Status) == "" {
		missing = append(missing, "status")
	}
	if i.StartedAt.IsZero() {
		missing = append(missing, "startedAt")
	}
	if len(missing) > 0 {
		return fmt.Errorf("incident %q missing required fields: %s", i.ID, strings.Join(missing, ", "))
	}
	if i.ResolvedAt != nil && i.ResolvedAt.Before(i.StartedAt) {
		return errors.New("incident resolvedAt precedes startedAt")
	}
	return nil
}

// IncidentSchema is how the incident list is searched, faceted, sorted and
// counted.
var IncidentSchema = query.Schema[Incident]{
	Text: []func(Incident) string{
		func(i Incident) string { return i.Title },
		func(i Incident) string { return i.Service },
		func(i Incident) string { return i.Summary },
	},
	Facets: map[string]func(Incident) []string{
		FacetStatus:   query.One(func(i Incident) string { return i.Status }),
		FacetSeverity: query.One(func(i Incident) string { return i.Severity }),
		FacetService:  query.One(func(i Incident) string { return i.Service }),
	},
	Keys: map[string]func(Incident) query.Value{
		KeyStartedAt: func(i Incident) query.Value { return query.Time(i.StartedAt) },
		KeyTitle:     func(i Incident) query.Value { return query.String(i.Title) },
		KeySeverity:  func(i Incident) query.Value { return query.String(i.Severity) },
		KeyStatus:    func(i Incident) query.Value { return query.String(i.Status) },
		KeyService:   func(i Incident) query.Value { return query.String(i.Service) },
	},
	Categories: Severities,
	Category:   func(i Incident) []string { return []string{i.Severity} },
}

// IncidentStatusSchema counts incidents per status instead of severity.
var IncidentStatusSchema = query.Schema[Incident]{
	Categories: Statuses,
	Category:   func(i Incident) []string { return []string{i.Status} },
}

// DefaultIncidentSort matches the list's initial ordering: newest first.
var DefaultIncidentSort = query.SortState{Key: KeyStartedAt, Direction: query.Descending}

// NewIncidentFilter returns the list's initial filter state.
func NewIncidentFilter() query.FilterState {
	return query.NewFilterState(FacetStatus, FacetSeverity)
}
