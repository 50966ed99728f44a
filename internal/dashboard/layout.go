package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// layout positions header, panel and footer chrome against a known
// terminal size, the way cmd/arx/tui/utils.Layout does for the fleet
// management screens.
type layout struct {
	width  int
	height int
	styles *Styles
}

func newLayout(width, height int, styles *Styles) *layout {
	return &layout{width: width, height: height, styles: styles}
}

func (l *layout) header(title, subtitle string) string {
	left := l.styles.Header.Render(title)
	right := l.styles.Info.Render(subtitle)
	pad := l.width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + right
}

func (l *layout) footer(help string) string {
	return l.styles.Footer.Render(help)
}

func (l *layout) panel(title, content string) string {
	if title == "" {
		return l.styles.Panel.Render(content)
	}
	return l.styles.Panel.Render(l.styles.Header.Render(title) + "\n" + content)
}

func (l *layout) tabs(labels []string, selected int) string {
	var parts []string
	for i, label := range labels {
		if i == selected {
			parts = append(parts, l.styles.TabOn.Render(label))
		} else {
			parts = append(parts, l.styles.Tab.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

func (l *layout) progressBar(label string, ratio float64, width int) string {
	if width < 10 {
		width = 10
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %s %5.1f%%", label, bar, ratio*100)
}
