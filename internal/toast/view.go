package toast

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorBg      = lipgloss.Color("#080808")
	colorSuccess = lipgloss.Color("#00B894")
	colorError   = lipgloss.Color("#FF007A")
	colorInfo    = lipgloss.Color("#00E5FF")
	colorWarning = lipgloss.Color("#FFB300")
	colorDimmed  = lipgloss.Color("#666666")

	styleToast = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	styleBadge = lipgloss.NewStyle().
			Foreground(colorBg).
			Bold(true).
			Padding(0, 1)

	styleDescription = lipgloss.NewStyle().
				Foreground(colorDimmed)
)

var icons = map[Kind]string{
	KindSuccess: "✓",
	KindError:   "✗",
	KindInfo:    "i",
	KindWarning: "!",
}

// Color returns the accent color used for kind.
func Color(kind Kind) lipgloss.Color {
	switch kind {
	case KindSuccess:
		return colorSuccess
	case KindError:
		return colorError
	case KindWarning:
		return colorWarning
	default:
		return colorInfo
	}
}

// View renders the newest visible toasts stacked vertically, oldest on top.
// It returns "" when nothing is queued.
func (t *Toaster) View(width int) string {
	toasts := t.Active()
	if len(toasts) == 0 {
		return ""
	}
	if len(toasts) > t.maxVisible {
		toasts = toasts[len(toasts)-t.maxVisible:]
	}

	boxes := make([]string, 0, len(toasts))
	for _, toast := range toasts {
		boxes = append(boxes, renderToast(toast, width))
	}
	return lipgloss.JoinVertical(lipgloss.Right, boxes...)
}

func renderToast(t Toast, width int) string {
	accent := Color(t.Kind)
	badge := styleBadge.Background(accent).Render(icons[t.Kind] + " " + strings.ToUpper(string(t.Kind)))

	lines := []string{lipgloss.JoinHorizontal(lipgloss.Center, badge, " ", t.Text)}
	if t.Description != "" {
		lines = append(lines, styleDescription.Render(t.Description))
	}

	style := styleToast.BorderForeground(accent)
	if width > 4 {
		style = style.MaxWidth(width)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
