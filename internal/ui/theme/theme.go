// Package theme holds the TUI palette and shared text styles.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/clinreason/internal/blockgraph"
)

// Ward-board palette.
var (
	Primary   = lipgloss.Color("#38BDF8")
	Secondary = lipgloss.Color("#2DD4BF")
	Accent    = lipgloss.Color("#FBBF24")
	Success   = lipgloss.Color("#22C55E")
	Warning   = lipgloss.Color("#F59E0B")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")
)

// One hue per block kind, chosen to stay distinct on a dark background.
var kindColors = map[blockgraph.Kind]color.Color{
	blockgraph.KindObservation:      lipgloss.Color("#60A5FA"),
	blockgraph.KindInterpretation:   lipgloss.Color("#A78BFA"),
	blockgraph.KindConsideration:    lipgloss.Color("#FBBF24"),
	blockgraph.KindContraindication: lipgloss.Color("#F87171"),
	blockgraph.KindDecision:         lipgloss.Color("#34D399"),
}

// KindColor falls back to the fallback kind's hue for unknown kinds.
func KindColor(k blockgraph.Kind) color.Color {
	if c, ok := kindColors[k]; ok {
		return c
	}
	return kindColors[blockgraph.FallbackKind]
}

// CorrectnessColor is the border color of a graded block. Ungraded blocks
// get the plain border.
func CorrectnessColor(c blockgraph.Correctness) color.Color {
	switch c {
	case blockgraph.Correct:
		return Success
	case blockgraph.Partial:
		return Warning
	case blockgraph.Incorrect:
		return Error
	default:
		return Border
	}
}

func fg(c color.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

var (
	Title    = fg(Primary).Bold(true).Align(lipgloss.Center)
	Subtitle = fg(TextDim).Align(lipgloss.Center)
	Body     = fg(Text)
	Hint     = fg(TextDim).Italic(true)
	Section  = fg(Secondary).Bold(true)

	Selected   = fg(Primary).Bold(true)
	Unselected = fg(Text)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	ProgressEmpty = lipgloss.NewStyle().Background(Border)
)
