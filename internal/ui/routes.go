package ui

import (
	"fmt"
	"net/url"
	"strings"
)

// View names a screen.
type View string

const (
	ViewIncidents      View = "incidents"
	ViewIncidentDetail View = "incident"
	ViewServices       View = "services"
	ViewChangelog      View = "changelog"
	ViewAPI            View = "api"
	ViewWebhooks       View = "webhooks"
)

// Route is a parsed screen path.
type Route struct {
	View View
	// ID is the incident id for ViewIncidentDetail.
	ID string
}

// Path renders the route back to its path form.
func (r Route) Path() string {
	if r.View == ViewIncidentDetail {
		return "/incidents/" + url.PathEscape(r.ID)
	}
	return "/" + string(r.View)
}

// ParseRoute maps a path like "/incidents/3" to a Route. "/" and "" open the
// incident list.
func ParseRoute(path string) (Route, error) {
	p := strings.TrimSpace(path)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.Trim(p, "/")
	if p == "" {
		return Route{View: ViewIncidents}, nil
	}

	parts := strings.Split(p, "/")
	switch parts[0] {
	case "incidents":
		switch len(parts) {
		case 1:
			return Route{View: ViewIncidents}, nil
		case 2:
			id, err := url.PathUnescape(parts[1])
			if err != nil || id == "" {
				return Route{}, fmt.Errorf("invalid incident id in %q", path)
			}
			return Route{View: ViewIncidentDetail, ID: id}, nil
		}
	case "services", "changelog", "api", "webhooks":
		if len(parts) == 1 {
			return Route{View: View(parts[0])}, nil
		}
	}
	return Route{}, fmt.Errorf("unknown route %q", path)
}

type navItem struct {
	label    string
	shortcut rune
	route    Route
}

// navigation is the sidebar, top to bottom.
var navigation = []navItem{
	{"Incidents", '1', Route{View: ViewIncidents}},
	{"Services", '2', Route{View: ViewServices}},
	{"Changelog", '3', Route{View: ViewChangelog}},
	{"API Explorer", '4', Route{View: ViewAPI}},
	{"Webhooks", '5', Route{View: ViewWebhooks}},
}

// navIndex returns the sidebar entry highlighted for a route.
func navIndex(r Route) int {
	view := r.View
	if view == ViewIncidentDetail {
		view = ViewIncidents
	}
	for i, item := range navigation {
		if item.route.View == view {
			return i
		}
	}
	return 0
}
