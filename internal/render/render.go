// Package render exports reasoning graphs as Graphviz images and Mermaid
// flowcharts.
package render

import (
	"fmt"
	"strings"

	"github.com/abhisek/clinreason/internal/blockgraph"
)

// Format is an output format.
type Format string

const (
	FormatPNG     Format = "png"
	FormatSVG     Format = "svg"
	FormatMermaid Format = "mermaid"
)

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return FormatPNG, nil
	case "svg":
		return FormatSVG, nil
	case "mermaid", "mmd", "md":
		return FormatMermaid, nil
	}
	return "", fmt.Errorf("unknown render format %q", s)
}

// palette is shared by both renderers.
type palette struct {
	fill, stroke, font string
}

var kindPalette = map[blockgraph.Kind]palette{
	blockgraph.KindObservation:      {"#e8f1fb", "#2b6cb0", "#1a365d"},
	blockgraph.KindInterpretation:   {"#efe9fb", "#6b46c1", "#322659"},
	blockgraph.KindConsideration:    {"#fdf6e3", "#b7791f", "#5f370e"},
	blockgraph.KindContraindication: {"#fdecec", "#c53030", "#63171b"},
	blockgraph.KindDecision:         {"#e6f6ec", "#2f855a", "#1c4532"},
}

var correctnessPalette = map[blockgraph.Correctness]palette{
	blockgraph.Correct:   {"#2d6a2d", "#1a4a1a", "#ffffff"},
	blockgraph.Partial:   {"#b7791a", "#8a5c14", "#ffffff"},
	blockgraph.Incorrect: {"#8b1a1a", "#5c0e0e", "#ffffff"},
}

// colors picks feedback colors when present, kind colors otherwise.
func colors(b blockgraph.Block) palette {
	if b.Feedback != nil {
		if p, ok := correctnessPalette[b.Feedback.Correctness]; ok {
			return p
		}
	}
	if p, ok := kindPalette[b.Kind]; ok {
		return p
	}
	return kindPalette[blockgraph.FallbackKind]
}

func label(b blockgraph.Block) string {
	title := strings.TrimSpace(b.Title)
	if title == "" {
		title = b.ID
	}
	return b.Kind.DisplayName() + ": " + title
}
