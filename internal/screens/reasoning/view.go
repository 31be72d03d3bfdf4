package reasoning

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/clinreason/internal/ui/components"
	"github.com/abhisek/clinreason/internal/ui/diagram"
	uilayout "github.com/abhisek/clinreason/internal/ui/layout"
	"github.com/abhisek/clinreason/internal/ui/theme"
)

func (s *ReasoningScreen) View(width, height int) string {
	compact := uilayout.Size{Width: width, Height: height}.Compact()

	leftWidth := width
	if !compact {
		leftWidth = width * 2 / 5
	}
	left := s.renderInputs(leftWidth-2, height)
	right := s.renderDiagram(width-leftWidth-2, height)

	var body string
	if compact {
		body = left + "\n" + right
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
	}
	if s.notice != "" {
		body += "\n" + lipgloss.NewStyle().Foreground(theme.Warning).Render("  "+s.notice)
	}
	return body
}

func (s *ReasoningScreen) renderInputs(width, height int) string {
	var b strings.Builder

	b.WriteString(theme.Section.Render("Presentation"))
	b.WriteString("\n")
	b.WriteString(theme.Body.Width(width).Render(s.sess.Case.Presentation))
	b.WriteString("\n\n")

	b.WriteString(theme.Section.Render("Your reasoning"))
	b.WriteString("\n")
	s.editor.SetWidth(width)
	s.editor.SetHeight(max(height/3, 4))
	b.WriteString(s.editor.View())
	b.WriteString("\n\n")

	if len(s.sess.Case.Treatments) > 0 {
		b.WriteString(theme.Section.Render("Treatments"))
		b.WriteString("\n")
		b.WriteString(s.treatments.View())
		b.WriteString("\n")
	}

	bar := components.NewProgressBar("Confidence", s.sess.Confidence(), width)
	bar.Fill = theme.Accent
	b.WriteString(bar.View())
	return b.String()
}

func (s *ReasoningScreen) renderDiagram(width, height int) string {
	g := s.sess.Graph()
	res := s.layouts.Compute(g, s.spacing)

	header := theme.Section.Render("Your reasoning diagram")
	if n := g.Len(); n > 0 {
		header += theme.Hint.Render(fmt.Sprintf("  %d blocks, %d levels", n, len(res.Rows)))
	}
	return header + "\n" + diagram.Render(g, res, width)
}
