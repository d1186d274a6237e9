package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/Ashfaaq98/signalroot-console/internal/model"
)

// Theme defines UI color tokens used across widgets and text tags.
type Theme struct {
	// Widget colors
	Bg          tcell.Color
	Surface     tcell.Color
	Border      tcell.Color
	FocusBorder tcell.Color
	SelectionBg tcell.Color
	SelectionFg tcell.Color
	TextPrimary tcell.Color
	TextMuted   tcell.Color

	// Table colors
	TableHeader   tcell.Color
	TableHeaderBg tcell.Color
	TableRow      tcell.Color

	// Severity (widgets)
	SeverityCritical tcell.Color
	SeverityHigh     tcell.Color
	SeverityMedium   tcell.Color
	SeverityLow      tcell.Color
	SeverityInfo     tcell.Color

	// Text tag colors (for tview dynamic color markup)
	TagTextPrimary string
	TagMuted       string
	TagAccent      string
	TagSuccess     string
	TagWarning     string
	TagError       string
}

func hex(s string) tcell.Color { return tcell.GetColor(s) }

func defaultTheme() Theme {
	return Theme{
		Bg:          hex("#0e1116"),
		Surface:     hex("#12161e"),
		Border:      hex("#2b3240"),
		FocusBorder: hex("#4aa8ff"),
		SelectionBg: hex("#2b3240"),
		SelectionFg: hex("#cfd8e3"),
		TextPrimary: hex("#e6edf3"),
		TextMuted:   hex("#8a939f"),

		TableHeader:   hex("#eab308"),
		TableHeaderBg: hex("#1a2332"),
		TableRow:      hex("#e6edf3"),

		SeverityCritical: hex("#ff5f5f"),
		SeverityHigh:     hex("#ffaf5f"),
		SeverityMedium:   hex("#ffd75f"),
		SeverityLow:      hex("#87ffaf"),
		SeverityInfo:     hex("#87afff"),

		TagTextPrimary: "#e6edf3",
		TagMuted:       "#8a939f",
		TagAccent:      "#2dd4bf",
		TagSuccess:     "#22c55e",
		TagWarning:     "#f59e0b",
		TagError:       "#ef4444",
	}
}

// severityColor returns the tcell color for a severity level
func (t Theme) severityColor(severity string) tcell.Color {
	switch severity {
	case model.SeverityCritical:
		return t.SeverityCritical
	case model.SeverityHigh:
		return t.SeverityHigh
	case model.SeverityMedium:
		return t.SeverityMedium
	case model.SeverityLow:
		return t.SeverityLow
	case model.SeverityInfo:
		return t.SeverityInfo
	default:
		return t.TableRow
	}
}

func (t Theme) statusTag(status string) string {
	switch status {
	case model.StatusActive:
		return t.TagError
	case model.StatusAcknowledged, model.StatusMonitoring:
		return t.TagWarning
	case model.StatusResolved:
		return t.TagSuccess
	default:
		return t.TagTextPrimary
	}
}
