package render

import (
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/clinreason/internal/blockgraph"
)

// Mermaid renders g as a top-down Mermaid flowchart. Nodes are styled
// by kind, or by correctness once feedback is attached.
func Mermaid(g *blockgraph.Graph, title string) string {
	var b strings.Builder

	if title != "" {
		fmt.Fprintf(&b, "---\ntitle: %s\n---\n", title)
	}
	b.WriteString("flowchart TD\n")

	for _, blk := range g.Blocks() {
		fmt.Fprintf(&b, "    %s\n", mermaidNodeDef(blk))
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "    %s --> %s\n", mermaidSafeID(e.From), mermaidSafeID(e.To))
	}

	b.WriteString("\n")
	classes := make(map[string][]string)
	for _, blk := range g.Blocks() {
		cls := mermaidClass(blk)
		classes[cls] = append(classes[cls], mermaidSafeID(blk.ID))
	}
	names := make([]string, 0, len(classes))
	for cls := range classes {
		names = append(names, cls)
	}
	slices.Sort(names)
	for _, cls := range names {
		p := classPalette(cls)
		fmt.Fprintf(&b, "    classDef %s fill:%s,stroke:%s,color:%s\n", cls, p.fill, p.stroke, p.font)
		fmt.Fprintf(&b, "    class %s %s\n", strings.Join(classes[cls], ","), cls)
	}
	return b.String()
}

func mermaidNodeDef(blk blockgraph.Block) string {
	id := mermaidSafeID(blk.ID)
	text := mermaidEscapeLabel(label(blk))

	switch blk.Kind {
	case blockgraph.KindInterpretation:
		return fmt.Sprintf("%s{{\"%s\"}}", id, text)
	case blockgraph.KindConsideration:
		return fmt.Sprintf("%s{\"%s\"}", id, text)
	case blockgraph.KindContraindication:
		return fmt.Sprintf("%s[/\"%s\"/]", id, text)
	case blockgraph.KindDecision:
		return fmt.Sprintf("%s([\"%s\"])", id, text)
	default:
		return fmt.Sprintf("%s[\"%s\"]", id, text)
	}
}

var idReplacer = strings.NewReplacer(".", "_", "-", "_", " ", "_", ":", "_")

func mermaidSafeID(id string) string {
	return "n_" + idReplacer.Replace(id)
}

func mermaidEscapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}

func mermaidClass(blk blockgraph.Block) string {
	if blk.Feedback != nil {
		if _, ok := correctnessPalette[blk.Feedback.Correctness]; ok {
			return string(blk.Feedback.Correctness)
		}
	}
	if _, ok := kindPalette[blk.Kind]; ok {
		return string(blk.Kind)
	}
	return string(blockgraph.FallbackKind)
}

func classPalette(cls string) palette {
	if p, ok := correctnessPalette[blockgraph.Correctness(cls)]; ok {
		return p
	}
	return kindPalette[blockgraph.Kind(cls)]
}
