package report

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Archive-flavored palette
	archiveRed = lipgloss.Color("#990000")
	gold       = lipgloss.Color("#FFD700")

	bannerStyle = lipgloss.NewStyle().
			Foreground(archiveRed).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(archiveRed).
			Padding(0, 3)

	sectionStyle = lipgloss.NewStyle().
			Foreground(gold).
			Bold(true).
			Underline(true)
)
