package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/abhisek/clinreason/internal/blockgraph"
)

// Image lays g out with dot and renders it as PNG or SVG.
func Image(ctx context.Context, g *blockgraph.Graph, format Format, title string) ([]byte, error) {
	var gvFormat graphviz.Format
	switch format {
	case FormatPNG:
		gvFormat = graphviz.PNG
	case FormatSVG:
		gvFormat = graphviz.SVG
	default:
		return nil, fmt.Errorf("render: %q is not an image format", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("render: create graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.DOT)

	graph, err := gv.Graph()
	if err != nil {
		return nil, fmt.Errorf("render: create graph: %w", err)
	}
	defer graph.Close()

	graph.SetRankDir(cgraph.TBRank)
	if title != "" {
		graph.SetLabel(title)
	}

	nodes := make(map[string]*cgraph.Node, g.Len())
	for _, b := range g.Blocks() {
		n, err := graph.CreateNodeByName(b.ID)
		if err != nil {
			return nil, fmt.Errorf("render: create node %s: %w", b.ID, err)
		}
		n.SetLabel(label(b))
		applyNodeStyle(n, b)
		nodes[b.ID] = n
	}

	for _, e := range g.Edges() {
		from, to := nodes[e.From], nodes[e.To]
		if from == nil || to == nil {
			continue
		}
		if _, err := graph.CreateEdgeByName("", from, to); err != nil {
			return nil, fmt.Errorf("render: create edge %s->%s: %w", e.From, e.To, err)
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, gvFormat, &buf); err != nil {
		return nil, fmt.Errorf("render: %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

func applyNodeStyle(n *cgraph.Node, b blockgraph.Block) {
	switch b.Kind {
	case blockgraph.KindObservation:
		n.SetShape(cgraph.BoxShape)
	case blockgraph.KindInterpretation:
		n.SetShape(cgraph.HexagonShape)
	case blockgraph.KindConsideration:
		n.SetShape(cgraph.DiamondShape)
	case blockgraph.KindContraindication:
		n.SetShape(cgraph.OctagonShape)
	case blockgraph.KindDecision:
		n.SetShape(cgraph.EllipseShape)
	}

	p := colors(b)
	n.SetStyle(cgraph.FilledNodeStyle)
	n.SetFillColor(p.fill)
	n.SetColor(p.stroke)
	n.SetFontColor(p.font)
	if b.Feedback != nil && b.Feedback.Necessity == blockgraph.Unnecessary {
		n.SetStyle(cgraph.NodeStyle("filled,dashed"))
	}
}
