package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette
var (
	Primary   = lipgloss.Color("#58CC02") // Feather Green
	Secondary = lipgloss.Color("#1CB0F6") // Macaw Blue
	Accent    = lipgloss.Color("#FFC800") // Bee Yellow
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#FF4B4B") // Cardinal Red
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	TableHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(Secondary)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// States
var (
	Done = lipgloss.NewStyle().
		Foreground(Success)

	Current = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)

	Pending = lipgloss.NewStyle().
		Foreground(TextDim)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Resources
var (
	Heart = lipgloss.NewStyle().
		Foreground(Error)

	HeartEmpty = lipgloss.NewStyle().
			Foreground(Border)

	Points = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)

	ProgressFilled = lipgloss.NewStyle().
			Foreground(Primary)

	ProgressEmpty = lipgloss.NewStyle().
			Foreground(Border)
)
