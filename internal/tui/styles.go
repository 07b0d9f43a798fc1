// Package tui renders the storefront in a terminal with Bubble Tea.
package tui

import "github.com/charmbracelet/lipgloss"

// Brand palette.
var (
	Gold    = lipgloss.Color("#D4AF37")
	Ink     = lipgloss.Color("#0B0B0B")
	Ivory   = lipgloss.Color("#F5F1E6")
	Smoke   = lipgloss.Color("#8A8578")
	Crimson = lipgloss.Color("#B3261E")
)

// Styles groups the lipgloss styles used by the model.
type Styles struct {
	Splash      lipgloss.Style
	SplashMark  lipgloss.Style
	Nav         lipgloss.Style
	NavScrolled lipgloss.Style
	Brand       lipgloss.Style
	Total       lipgloss.Style
	Disabled    lipgloss.Style
	Search      lipgloss.Style
	Name        lipgloss.Style
	Selected    lipgloss.Style
	Price       lipgloss.Style
	Empty       lipgloss.Style
	Panel       lipgloss.Style
	Label       lipgloss.Style
	Invalid     lipgloss.Style
	Status      lipgloss.Style
	Error       lipgloss.Style
	Help        lipgloss.Style
}

// DefaultStyles returns the black and gold theme.
func DefaultStyles() Styles {
	return Styles{
		Splash:      lipgloss.NewStyle().Foreground(Gold),
		SplashMark:  lipgloss.NewStyle().Foreground(Gold).Bold(true).Border(lipgloss.DoubleBorder()).BorderForeground(Gold).Padding(1, 4),
		Nav:         lipgloss.NewStyle().Foreground(Ivory).Padding(0, 1),
		NavScrolled: lipgloss.NewStyle().Foreground(Ivory).Background(Ink).Padding(0, 1).Border(lipgloss.NormalBorder(), false, false, true, false).BorderForeground(Gold),
		Brand:       lipgloss.NewStyle().Foreground(Gold).Bold(true),
		Total:       lipgloss.NewStyle().Foreground(Gold),
		Disabled:    lipgloss.NewStyle().Foreground(Smoke).Strikethrough(true),
		Search:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Smoke).Padding(0, 1),
		Name:        lipgloss.NewStyle().Foreground(Ivory).Bold(true),
		Selected:    lipgloss.NewStyle().Foreground(Gold).Bold(true),
		Price:       lipgloss.NewStyle().Foreground(Gold),
		Empty:       lipgloss.NewStyle().Foreground(Smoke).Italic(true),
		Panel:       lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(Gold).Padding(1, 2),
		Label:       lipgloss.NewStyle().Foreground(Smoke),
		Invalid:     lipgloss.NewStyle().Foreground(Crimson),
		Status:      lipgloss.NewStyle().Foreground(Gold).Italic(true),
		Error:       lipgloss.NewStyle().Foreground(Crimson),
		Help:        lipgloss.NewStyle().Foreground(Smoke),
	}
}
