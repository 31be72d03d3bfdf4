package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/clinreason/internal/ui/theme"
)

// ProgressBar displays a horizontal bar for a 0-100 value.
type ProgressBar struct {
	Label string
	Value int
	Width int
	Fill  color.Color
}

// NewProgressBar creates a bar in the secondary color.
func NewProgressBar(label string, value, width int) ProgressBar {
	return ProgressBar{Label: label, Value: value, Width: width, Fill: theme.Secondary}
}

// View renders the bar followed by the value.
func (p ProgressBar) View() string {
	var result string
	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	barWidth := max(p.Width-lipgloss.Width(result)-6, 4)
	filled := min(max(barWidth*p.Value/100, 0), barWidth)

	fill := p.Fill
	if fill == nil {
		fill = theme.Secondary
	}
	result += lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled))
	result += theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))
	result += lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf(" %3d%%", p.Value))
	return result
}
