// Package diagram draws a laid-out reasoning graph as rows of cards in
// the terminal, one row per level.
package diagram

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/clinreason/internal/blockgraph"
	"github.com/abhisek/clinreason/internal/layout"
	"github.com/abhisek/clinreason/internal/ui/theme"
)

const (
	minCardWidth = 16
	maxCardWidth = 30
)

// Numbers assigns display numbers in row order, starting at 1.
func Numbers(res layout.Result) map[string]int {
	nums := make(map[string]int, len(res.Positions))
	n := 1
	for _, row := range res.Rows {
		for _, id := range row {
			nums[id] = n
			n++
		}
	}
	return nums
}

// Render draws g using the rows of res, fitting each row into width.
// Cards are tinted by kind, or by correctness once feedback is attached.
func Render(g *blockgraph.Graph, res layout.Result, width int) string {
	if g.Len() == 0 {
		return theme.Hint.Render("No reasoning blocks yet.")
	}

	nums := Numbers(res)
	rows := make([]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		cardWidth := min(max((width-2*len(row))/max(len(row), 1), minCardWidth), maxCardWidth)
		cards := make([]string, 0, len(row))
		for _, id := range row {
			b, ok := g.Block(id)
			if !ok {
				continue
			}
			cards = append(cards, card(b, nums, g.Children(id), cardWidth))
		}
		line := lipgloss.JoinHorizontal(lipgloss.Top, spaced(cards)...)
		rows = append(rows, lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
	}
	return strings.Join(rows, "\n")
}

func spaced(cards []string) []string {
	out := make([]string, 0, 2*len(cards))
	for i, c := range cards {
		if i > 0 {
			out = append(out, "  ")
		}
		out = append(out, c)
	}
	return out
}

func card(b blockgraph.Block, nums map[string]int, children []string, width int) string {
	border := theme.KindColor(b.Kind)
	if b.Feedback != nil {
		border = theme.CorrectnessColor(b.Feedback.Correctness)
	}

	head := lipgloss.NewStyle().Foreground(theme.KindColor(b.Kind)).Bold(true).
		Render(fmt.Sprintf("%d %s", nums[b.ID], b.Kind.DisplayName()))
	body := lipgloss.NewStyle().Foreground(theme.Text).Width(width - 2).Render(truncate(b.Title, 2*(width-2)))

	lines := []string{head, body}
	if len(children) > 0 {
		targets := make([]string, 0, len(children))
		for _, c := range children {
			targets = append(targets, strconv.Itoa(nums[c]))
		}
		lines = append(lines, theme.Hint.Render("→ "+strings.Join(targets, ",")))
	}
	if fb := b.Feedback; fb != nil {
		tag := string(fb.Correctness)
		if fb.Timing != "" && fb.Timing != blockgraph.TimingOnTime {
			tag += ", " + string(fb.Timing)
		}
		lines = append(lines, lipgloss.NewStyle().Foreground(border).Render(tag))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 2 {
		return s
	}
	return string(r[:n-1]) + "…"
}
