package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/session"
)

// hudHeight is the number of rows above the world view.
const hudHeight = 1

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:       lipgloss.NewStyle(),
	core.ColorRed:           lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:        lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:          lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta:       lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:          lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:         lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorBrightRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorBrightGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorBrightYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorBrightBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	core.ColorBrightMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	core.ColorBrightCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	core.ColorBrightWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	core.ColorOrange:        lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:          lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	core.ColorPink:          lipgloss.NewStyle().Foreground(lipgloss.Color("213")),
	core.ColorBrown:         lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		// Group consecutive cells with the same color for efficiency
		x := 0
		for x < s.Width() {
			startColor := s.GetCell(x, y).Color

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

var (
	hudStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(true)
	hudReadyStyle = hudStyle.
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("10"))
	hudDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// renderHUD renders the status line shown above the world. A non-empty
// notice takes the place of the key help.
func renderHUD(snap session.Snapshot, width int, notice string) string {
	pills := fmt.Sprintf(" Pills %d/%d ", snap.Pills, snap.Required)
	style := hudStyle
	if snap.Pills >= snap.Required {
		style = hudReadyStyle
	}

	status := fmt.Sprintf(" %s  %s", snap.Title, formatFrames(snap.Frames))
	if snap.Paused && snap.Outcome == session.Playing {
		status += "  [paused]"
	}
	help := "p pause  esc back  q quit "

	left := style.Render(pills) + hudDimStyle.Render(status)
	if notice != "" {
		notice = strings.ReplaceAll(notice, "\n", " ")
		return truncate(left+"  "+noticeStyle.Render(notice), width)
	}
	gap := width - lipgloss.Width(left) - lipgloss.Width(help)
	if gap < 1 {
		return truncate(left, width)
	}
	return left + strings.Repeat(" ", gap) + hudDimStyle.Render(help)
}

// drawPopup draws a framed message in the middle of the screen.
func drawPopup(s *core.Screen, lines ...string) {
	w := 0
	for _, l := range lines {
		w = max(w, len([]rune(l)))
	}
	box := core.CenteredRect(s.Width(), s.Height(), w+4, len(lines)+2)
	s.DrawRect(box, core.Cell{Rune: ' ', Color: core.ColorDefault})
	s.DrawBox(box, core.ColorBrightWhite)
	for i, l := range lines {
		s.DrawTextCentered(box.Y+1+i, l, core.ColorBrightYellow)
	}
}

// outcomePopup returns the popup text for a finished or paused session.
func outcomePopup(snap session.Snapshot) []string {
	switch snap.Outcome {
	case session.Won:
		return []string{"You made it out!", fmt.Sprintf("%d pills in %s", snap.Pills, formatFrames(snap.Frames)), "", "enter: play again   esc: back"}
	case session.Died:
		return []string{"You died.", "", "enter: try again   esc: back"}
	}
	if snap.Paused {
		return []string{"Paused", "", "p: resume   esc: back"}
	}
	return nil
}

// formatFrames renders a frame count as game time at 60 frames per second.
func formatFrames(frames uint64) string {
	secs := frames / 60
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	if lipgloss.Width(text) >= width {
		return text
	}
	padding := (width - lipgloss.Width(text)) / 2
	return strings.Repeat(" ", padding) + text
}
