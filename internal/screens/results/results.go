// Package results shows a scored submission: alignment, insights and the
// learner graph annotated against the expert's.
package results

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/clinreason/internal/blockgraph"
	"github.com/abhisek/clinreason/internal/compare"
	"github.com/abhisek/clinreason/internal/layout"
	"github.com/abhisek/clinreason/internal/router"
	"github.com/abhisek/clinreason/internal/screen"
	"github.com/abhisek/clinreason/internal/session"
	"github.com/abhisek/clinreason/internal/ui/components"
	"github.com/abhisek/clinreason/internal/ui/diagram"
	uilayout "github.com/abhisek/clinreason/internal/ui/layout"
	"github.com/abhisek/clinreason/internal/ui/theme"
)

type view int

const (
	viewLearner view = iota
	viewExpert
)

// ResultsScreen displays the last result of a session.
type ResultsScreen struct {
	sess    *session.Session
	summary *session.Summary
	layouts *layout.Cache
	spacing layout.Spacing
	showing view
}

var (
	_ screen.Screen          = (*ResultsScreen)(nil)
	_ screen.KeyHintProvider = (*ResultsScreen)(nil)
)

// New creates a results screen for a session with a result.
func New(sess *session.Session, cache *layout.Cache, spacing layout.Spacing) *ResultsScreen {
	return &ResultsScreen{
		sess:    sess,
		summary: session.BuildSummary(sess),
		layouts: cache,
		spacing: spacing,
	}
}

func (s *ResultsScreen) Init() tea.Cmd {
	return nil
}

func (s *ResultsScreen) Title() string {
	return "Results"
}

func (s *ResultsScreen) KeyHints() []uilayout.KeyHint {
	return []uilayout.KeyHint{
		{Key: "Tab", Description: "Yours/expert"},
		{Key: "Esc", Description: "Back to editing"},
		{Key: "Enter", Description: "Cases"},
	}
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "tab":
			if s.showing == viewLearner {
				s.showing = viewExpert
			} else {
				s.showing = viewLearner
			}
		case "enter":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
	}
	return s, nil
}

func (s *ResultsScreen) View(width, height int) string {
	sum := s.summary
	res := s.sess.Result()
	if sum == nil || res == nil {
		return theme.Hint.Render("  No result yet.")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render(sum.CaseTitle))
	b.WriteString("\n\n")

	barWidth := min(width-8, 60)
	alignment := components.NewProgressBar("Alignment ", sum.Alignment, barWidth)
	alignment.Fill = alignmentColor(sum.Alignment)
	confidence := components.NewProgressBar("Confidence", sum.Confidence, barWidth)
	confidence.Fill = theme.Accent
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, alignment.View()))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, confidence.View()))
	b.WriteString("\n\n")

	mins := int(sum.Duration.Minutes())
	secs := int(sum.Duration.Seconds()) % 60
	stats := fmt.Sprintf("Matched: %d    Missed: %d    Incorrect: %d    Time: %d:%02d",
		sum.Matched, sum.Missed, sum.Incorrect, mins, secs)
	if sum.Score > 0 {
		stats += fmt.Sprintf("    Reviewer score: %d", sum.Score)
	}
	b.WriteString(theme.Subtitle.Width(width).Render(stats))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render(calibrationLine(sum.Calibration())))
	b.WriteString("\n\n")

	for _, in := range sum.Insights {
		line := lipgloss.NewStyle().Foreground(toneColor(in.Tone)).Render("• " + in.Message)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
		b.WriteString("\n")
	}
	if sum.Feedback != "" {
		b.WriteString("\n")
		b.WriteString(theme.Card.Width(min(width-8, 80)).Render(theme.Body.Render(sum.Feedback)))
		b.WriteString("\n")
	}
	if missed := missedLine(sum.MissedKinds); missed != "" {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Width(width).Align(lipgloss.Center).Render(missed))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	g, title := s.annotated(res), "Your reasoning, graded"
	if s.showing == viewExpert {
		g, title = res.Reference, "Expert reasoning"
	}
	b.WriteString(theme.Section.Render("  " + title))
	b.WriteString("\n")
	b.WriteString(diagram.Render(g, s.layouts.Compute(g, s.spacing), width))
	return b.String()
}

// annotated rebuilds the learner graph from the annotated blocks so the
// diagram can color by feedback.
func (s *ResultsScreen) annotated(res *session.Result) *blockgraph.Graph {
	g, err := blockgraph.New(res.Annotated)
	if err != nil {
		return res.Learner
	}
	return g
}

func alignmentColor(v int) color.Color {
	switch {
	case v >= 70:
		return theme.Success
	case v >= 40:
		return theme.Warning
	}
	return theme.Error
}

func toneColor(t compare.Tone) color.Color {
	switch t {
	case compare.TonePositive:
		return theme.Success
	case compare.ToneWarning:
		return theme.Warning
	}
	return theme.Primary
}

func calibrationLine(delta int) string {
	switch {
	case delta > 20:
		return fmt.Sprintf("You were %d points more confident than your reasoning supports.", delta)
	case delta < -20:
		return fmt.Sprintf("Your reasoning was %d points stronger than your confidence.", -delta)
	}
	return "Your confidence matched your reasoning."
}

func missedLine(kinds map[blockgraph.Kind]int) string {
	var parts []string
	for _, k := range blockgraph.AllKinds() {
		if n := kinds[k]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ToLower(k.DisplayName())))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "Missed expert steps: " + strings.Join(parts, ", ")
}
