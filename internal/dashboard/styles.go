package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ColorScheme names the palette a Styles set renders with.
type ColorScheme struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Info       lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Background lipgloss.Color
}

var darkTheme = ColorScheme{
	Primary:    lipgloss.Color("#2DD4BF"),
	Secondary:  lipgloss.Color("#7DD3FC"),
	Success:    lipgloss.Color("#4ADE80"),
	Warning:    lipgloss.Color("#FACC15"),
	Error:      lipgloss.Color("#F87171"),
	Info:       lipgloss.Color("#60A5FA"),
	Muted:      lipgloss.Color("#6B7280"),
	Border:     lipgloss.Color("#333333"),
	Background: lipgloss.Color("#000000"),
}

var lightTheme = ColorScheme{
	Primary:    lipgloss.Color("#0F766E"),
	Secondary:  lipgloss.Color("#0369A1"),
	Success:    lipgloss.Color("#15803D"),
	Warning:    lipgloss.Color("#B45309"),
	Error:      lipgloss.Color("#B91C1C"),
	Info:       lipgloss.Color("#1D4ED8"),
	Muted:      lipgloss.Color("#6B7280"),
	Border:     lipgloss.Color("#CCCCCC"),
	Background: lipgloss.Color("#FFFFFF"),
}

// Styles bundles every lipgloss.Style the dashboard renders with.
type Styles struct {
	Primary   lipgloss.Style
	Secondary lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Info      lipgloss.Style
	Muted     lipgloss.Style

	Header lipgloss.Style
	Footer lipgloss.Style
	Panel  lipgloss.Style
	Tab    lipgloss.Style
	TabOn  lipgloss.Style

	StatusOK          lipgloss.Style
	StatusWarning     lipgloss.Style
	StatusError       lipgloss.Style
	StatusOffline     lipgloss.Style
	StatusMaintenance lipgloss.Style
}

func newStyles(c ColorScheme) *Styles {
	return &Styles{
		Primary:   lipgloss.NewStyle().Foreground(c.Primary).Bold(true),
		Secondary: lipgloss.NewStyle().Foreground(c.Secondary),
		Success:   lipgloss.NewStyle().Foreground(c.Success).Bold(true),
		Warning:   lipgloss.NewStyle().Foreground(c.Warning).Bold(true),
		Error:     lipgloss.NewStyle().Foreground(c.Error).Bold(true),
		Info:      lipgloss.NewStyle().Foreground(c.Info),
		Muted:     lipgloss.NewStyle().Foreground(c.Muted),

		Header: lipgloss.NewStyle().Foreground(c.Primary).Bold(true).Padding(0, 1),
		Footer: lipgloss.NewStyle().Foreground(c.Muted).Padding(0, 1),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c.Border).
			Padding(1),
		Tab: lipgloss.NewStyle().Foreground(c.Muted).Padding(0, 2),
		TabOn: lipgloss.NewStyle().Foreground(c.Background).Background(c.Primary).
			Bold(true).Padding(0, 2),

		StatusOK:          lipgloss.NewStyle().Foreground(c.Success).Bold(true),
		StatusWarning:     lipgloss.NewStyle().Foreground(c.Warning).Bold(true),
		StatusError:       lipgloss.NewStyle().Foreground(c.Error).Bold(true),
		StatusOffline:     lipgloss.NewStyle().Foreground(c.Muted),
		StatusMaintenance: lipgloss.NewStyle().Foreground(c.Warning),
	}
}

// themeStyles resolves a Styles set by theme name, defaulting to dark.
func themeStyles(theme string) *Styles {
	switch theme {
	case "light":
		return newStyles(lightTheme)
	default:
		return newStyles(darkTheme)
	}
}

// statusStyle maps an equipment/action status string to its Style.
func (s *Styles) statusStyle(status string) lipgloss.Style {
	switch strings.ToLower(status) {
	case "active", "ok", "healthy", "continue_operating":
		return s.StatusOK
	case "maintenance", "plan_replacement", "degraded":
		return s.StatusMaintenance
	case "retired", "offline", "disposed":
		return s.StatusOffline
	case "replace_immediately", "error", "unhealthy":
		return s.StatusError
	default:
		return s.Muted
	}
}
