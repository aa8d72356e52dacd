package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tuanbt/toastlog/internal/config"
	"github.com/tuanbt/toastlog/internal/toast"
)

// toastColumnWidth is the width reserved for the toast stack.
const toastColumnWidth = 44

func (m Model) View() string {
	if m.Width == 0 || !m.Ready {
		return "Initialising toastlog..."
	}

	// 1. Header
	headerStr := fmt.Sprintf(" 🔔 TOASTLOG | %s | RECORDS: %d | UNREAD: %d | MODE: %s ",
		m.interceptionString(), m.Store.Len(), m.Inbox.Unread(), m.getModeString())
	header := StyleHeader.Width(m.Width).Render(headerStr)

	contentHeight := m.Height - 4 // header(1) + footer(3)
	if m.ShowLogs {
		contentHeight -= m.LogView.Height + 2
	}

	// 2. Left: inbox panel or key help
	leftWidth := m.Width - toastColumnWidth - 2
	if leftWidth < 20 {
		leftWidth = 20
	}

	var left string
	if m.ShowInbox {
		left = StylePaneBorderFocus.Width(leftWidth - 2).Height(contentHeight).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				StyleGridLabel.Background(ColorBlue).Render(fmt.Sprintf(" INBOX (%d) ", len(m.InboxList.Items()))),
				m.InboxList.View(),
			),
		)
	} else {
		left = StylePaneBorder.Width(leftWidth - 2).Height(contentHeight).Render(m.helpView())
	}

	// 3. Right: toast stack
	right := lipgloss.NewStyle().Width(toastColumnWidth).Height(contentHeight).Render(
		m.Toaster.View(toastColumnWidth),
	)

	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	if m.ShowLogs {
		logPane := StylePaneBorder.Width(m.Width - 2).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				StyleGridLabel.Render(" LOG "),
				m.LogView.View(),
			),
		)
		mainContent = lipgloss.JoinVertical(lipgloss.Left, mainContent, logPane)
	}

	// 4. Footer (Input Deck)
	inputPrefix := StyleInputPrefix.Render(">_ ")
	if m.Mode == ModeCompose {
		kind := lipgloss.NewStyle().Foreground(toast.Color(m.ComposeKind)).Bold(true).
			Render(strings.ToUpper(string(m.ComposeKind)))
		inputPrefix = lipgloss.JoinHorizontal(lipgloss.Center, kind, " ", inputPrefix)
	}

	status := m.Status
	if status == "" {
		status = " [1-4] Emit [o] Object [i] Compose [n] Inbox [r] Read [c] Clear [x] Export [l] Log [q] Quit"
	}
	footer := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Center, inputPrefix, m.Input.View()),
		StyleStatus.Render(status),
	)

	return lipgloss.JoinVertical(lipgloss.Left, header, mainContent, footer)
}

func (m Model) helpView() string {
	lines := []string{
		StyleGridLabel.Render(" KEYS "),
		"",
		"  1  success     2  error",
		"  3  info        4  warning",
		"  o  emit a non-string payload",
		"  i  compose (Tab: kind, Enter: emit, Esc: leave)",
		"  n  toggle the inbox",
		"  d  dismiss the newest toast",
	}
	if m.Inbox.Unread() > 0 {
		lines = append(lines, "", StyleUnread.Render(fmt.Sprintf("  %d unread in the inbox", m.Inbox.Unread())))
	}
	return strings.Join(lines, "\n")
}

func (m Model) interceptionString() string {
	if m.Config == nil {
		return "ACTIVE"
	}
	s := strings.ToUpper(m.Config.Interception.Strategy)
	if m.Config.Interception.Strategy == config.StrategyPassive {
		s += "/" + strings.ToUpper(m.Config.Interception.Scope)
		if m.Scope.Active() {
			s += " ●"
		}
	}
	return s
}

func (m Model) getModeString() string {
	if m.Mode == ModeCompose {
		return "COMPOSE"
	}
	return "NORMAL"
}
