// Package layout draws the terminal chrome shared by every screen: the
// title bar, the key-hint bar and the resize notice.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/clinreason/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24

	// Below this width screens stack their panes vertically.
	compactWidth = 100
)

// KeyHint is one entry of the footer bar.
type KeyHint struct {
	Key         string
	Description string
}

// Size is the terminal area in cells.
type Size struct {
	Width, Height int
}

// Known reports whether a WindowSizeMsg has arrived yet.
func (s Size) Known() bool { return s.Width > 0 && s.Height > 0 }

// Fits reports whether the app can draw its full frame.
func (s Size) Fits() bool { return s.Width >= MinWidth && s.Height >= MinHeight }

// Compact reports a narrow terminal.
func (s Size) Compact() bool { return s.Width < compactWidth }

// Frame is the chrome around the active screen.
type Frame struct {
	Title  string
	Status string
	Hints  []KeyHint
}

var bar = lipgloss.NewStyle().
	Background(theme.BgCard).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(theme.Border)

// Render draws the frame at size. body receives the rows left between
// the header and the footer.
func (f Frame) Render(size Size, body func(width, height int) string) string {
	top := f.header(size.Width)
	bottom := f.footer(size.Width)

	rows := max(size.Height-lipgloss.Height(top)-lipgloss.Height(bottom), 0)
	middle := lipgloss.NewStyle().
		Width(size.Width).
		Height(rows).
		Render(body(size.Width, rows))

	return lipgloss.JoinVertical(lipgloss.Left, top, middle, bottom)
}

// header puts the app name on the left, the title centred and the status
// flush right.
func (f Frame) header(width int) string {
	name := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  clinreason")
	title := lipgloss.NewStyle().Foreground(theme.Text).Render(f.Title)
	status := lipgloss.NewStyle().Foreground(theme.Accent).Render(f.Status)

	inner := max(width-4, 0)
	nw, tw, sw := lipgloss.Width(name), lipgloss.Width(title), lipgloss.Width(status)
	gapL := max((inner-tw)/2-nw, 1)
	gapR := max(inner-nw-gapL-tw-sw, 1)

	line := name + strings.Repeat(" ", gapL) + title + strings.Repeat(" ", gapR) + status
	return bar.Width(width).Render(line)
}

func (f Frame) footer(width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	b.WriteString("  ")
	for i, h := range f.Hints {
		if i > 0 {
			b.WriteString("   ")
		}
		b.WriteString(key.Render(h.Key) + " " + desc.Render(h.Description))
	}
	return bar.Width(width).Render(b.String())
}

// TooSmall is shown instead of the frame when the terminal is below the
// minimum size.
func TooSmall(size Size) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Width(size.Width).
		Height(size.Height).
		Render(fmt.Sprintf("Terminal too small\n\nNeed %d x %d, have %d x %d.",
			MinWidth, MinHeight, size.Width, size.Height))
}
