package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/lingokids/lingo/internal/prefetch"
	"github.com/lingokids/lingo/internal/vault"
)

var (
	green  = lipgloss.Color("#04B575")
	yellow = lipgloss.Color("#ECFD65")
	blue   = lipgloss.Color("#00AAFF")
	orange = lipgloss.Color("#FF8800")
	red    = lipgloss.Color("#FF4672")
	gray   = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EE6FF8"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EE6FF8"))
	dimStyle    = lipgloss.NewStyle().Foreground(gray)
	errorStyle  = lipgloss.NewStyle().Foreground(red)
	readyStyle  = lipgloss.NewStyle().Foreground(green)
	badgeStyle  = lipgloss.NewStyle().Padding(0, 1).Bold(true)
)

// StatusIcon returns the icon for a category status. loading is drawn by
// the caller's spinner.
func StatusIcon(s prefetch.Status, loading string) string {
	switch s {
	case prefetch.StatusReady:
		return readyStyle.Render("✓")
	case prefetch.StatusLoading:
		return loading
	default:
		return dimStyle.Render("🔒")
	}
}

// BakeryBadge renders the audio vault status as a small colored badge.
// Idle renders nothing.
func BakeryBadge(s vault.Status) string {
	var (
		text  string
		color lipgloss.TerminalColor
	)
	switch s {
	case vault.StatusBaking:
		text, color = "🍞 baking", yellow
	case vault.StatusResting:
		text, color = "😴 resting", orange
	case vault.StatusReady:
		text, color = "🔊 ready", green
	default:
		return ""
	}
	return badgeStyle.Foreground(lipgloss.Color("#1A1A1A")).Background(color).Render(text)
}
