package model

import (
	"fmt"
	"time"
)

// FormatDuration renders how long an incident has lasted: "45m" or "2h 15m".
// Open incidents are measured up to now.
func FormatDuration(start time.Time, end *time.Time, now time.Time) string {
	stop := now
	if end != nil {
		stop = *end
	}
	mins := int(stop.Sub(start) / time.Minute)
	if mins < 0 {
		mins = 0
	}
	if mins < 60 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh %dm", mins/60, mins%60)
}

// Duration is FormatDuration for an incident.
func (i Incident) Duration(now time.Time) string {
	return FormatDuration(i.StartedAt, i.ResolvedAt, now)
}

// TimeAgo renders a coarse relative time.
func TimeAgo(t, now time.Time) string {
	diff := now.Sub(t)
	days := int(diff / (24 * time.Hour))
	hours := int(diff / time.Hour)
	mins := int(diff / time.Minute)
	switch {
	case days > 0:
		return fmt.Sprintf("%d days ago", days)
	case hours > 0:
		return fmt.Sprintf("%d hours ago", hours)
	case mins > 0:
		return fmt.Sprintf("%d mins ago", mins)
	default:
		return "Just now"
	}
}

// TimeGap renders the gap between consecutive timeline entries as "+Nm";
// gaps under a minute render empty.
func TimeGap(current, previous time.Time) string {
	mins := int(current.Sub(previous) / time.Minute)
	if mins <= 0 {
		return ""
	}
	return fmt.Sprintf("+%dm", mins)
}
