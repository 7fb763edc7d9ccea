package tui

import "github.com/charmbracelet/lipgloss"

var (
	accentColor    = lipgloss.Color("#ff8c00")
	emberColor     = lipgloss.Color("#2b1400")
	paperColor     = lipgloss.Color("#fff4d0")
	secondaryColor = lipgloss.Color("#ffb347")
	readyColor     = lipgloss.Color("#a3be8c")
	failureColor   = lipgloss.Color("9")
	mutedColor     = lipgloss.Color("244")
	frameColor     = lipgloss.Color("#56526e")
	scanColor      = lipgloss.Color("#8ecae6")

	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	taglineStyle    = lipgloss.NewStyle().Foreground(secondaryColor).Italic(true)
	helperStyle     = lipgloss.NewStyle().Foreground(mutedColor)
	errorStyle      = lipgloss.NewStyle().Foreground(failureColor)
	readyStyle      = lipgloss.NewStyle().Foreground(readyColor)
	sectionStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	statusBarStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(scanColor).Padding(0, 1)
	keyStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	dropZoneStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accentColor).Padding(1, 3)
	iconStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(frameColor)
	thumbStyle      = lipgloss.NewStyle().Foreground(paperColor).Background(emberColor)
	scanLineStyle   = lipgloss.NewStyle().Bold(true).Foreground(scanColor).Background(emberColor)
	menuStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accentColor)
	menuItemStyle   = lipgloss.NewStyle().Foreground(paperColor)
	pageFrameStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(frameColor).Padding(0, 1)
	modalFrameStyle = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#7f5af0")).Padding(0, 1)
	overlayStyle    = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(readyColor).Padding(0, 1)
	detailsStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(failureColor).Foreground(mutedColor).Padding(0, 1)
)
