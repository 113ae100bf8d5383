package tui

import "github.com/charmbracelet/lipgloss"

// Palette.
const (
	ColorHeader    = lipgloss.Color("39")
	ColorLabel     = lipgloss.Color("245")
	ColorValue     = lipgloss.Color("252")
	ColorMuted     = lipgloss.Color("241")
	ColorHighlight = lipgloss.Color("212")
	ColorCritical  = lipgloss.Color("196")
	ColorOK        = lipgloss.Color("42")
)

//nolint:gochecknoglobals // Shared, immutable styles.
var (
	TitleStyle    = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	HeaderStyle   = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	LabelStyle    = lipgloss.NewStyle().Foreground(ColorLabel)
	ValueStyle    = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	MutedStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	HelpStyle     = lipgloss.NewStyle().Foreground(ColorMuted)
	CriticalStyle = lipgloss.NewStyle().Foreground(ColorCritical).Bold(true)
	NoticeStyle   = lipgloss.NewStyle().Foreground(ColorOK)
	BoxStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1)
)

// severityStyle colours a severity cell.
func severityStyle(severity string) lipgloss.Style {
	switch severity {
	case "critical":
		return CriticalStyle
	case "high":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	case "medium":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	default:
		return lipgloss.NewStyle()
	}
}
