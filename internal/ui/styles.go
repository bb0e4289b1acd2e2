package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary = lipgloss.Color("63")  // Purple/blue
	Success = lipgloss.Color("78")  // Green
	Warning = lipgloss.Color("214") // Orange
	Error   = lipgloss.Color("196") // Red
	Subtle  = lipgloss.Color("241") // Gray
	Info    = lipgloss.Color("86")  // Cyan

	BoldStyle    = lipgloss.NewStyle().Bold(true)
	DimStyle     = lipgloss.NewStyle().Foreground(Subtle)
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Error)
	InfoStyle    = lipgloss.NewStyle().Foreground(Info)
	HeaderStyle  = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	StatusStyle  = lipgloss.NewStyle().Foreground(Info).Bold(true)
)

// targetColors is the rotating palette used to prefix per-target output.
var targetColors = []lipgloss.Color{
	lipgloss.Color("36"),  // cyan
	lipgloss.Color("170"), // magenta
	lipgloss.Color("178"), // yellow
	lipgloss.Color("69"),  // blue
	lipgloss.Color("77"),  // green
	lipgloss.Color("116"), // bright cyan
	lipgloss.Color("213"), // bright magenta
	lipgloss.Color("227"), // bright yellow
}

// TargetStyle returns the prefix style for a target based on its index.
func TargetStyle(index int) lipgloss.Style {
	c := targetColors[index%len(targetColors)]
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}
