package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tuanbt/toastlog/internal/notify"
	"github.com/tuanbt/toastlog/internal/toast"
)

// RecordItem implements list.Item
type RecordItem struct {
	Record notify.Record
	Unread bool
}

func (i RecordItem) FilterValue() string { return i.Record.Message }

type RecordDelegate struct{}

func (d RecordDelegate) Height() int                               { return 2 }
func (d RecordDelegate) Spacing() int                              { return 0 }
func (d RecordDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d RecordDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	it, ok := listItem.(RecordItem)
	if !ok {
		return
	}
	rec := it.Record

	marker := " "
	if it.Unread {
		marker = StyleUnread.Render("●")
	}

	title := lipgloss.NewStyle().Foreground(toast.Color(rec.Kind)).Bold(true).Render(rec.Title)
	titleStr := fmt.Sprintf("%s #%d %s", marker, rec.Seq, title)

	msgStr := rec.Message
	if width := m.Width() - 6; width > 3 && len(msgStr) > width {
		msgStr = msgStr[:width-3] + "..."
	}
	meta := fmt.Sprintf("    %s  %s", rec.Time.Format("15:04:05"), msgStr)

	if index == m.Index() {
		fmt.Fprint(w, StyleRecordSelected.Render(titleStr)+"\n")
		fmt.Fprint(w, StyleDimmed.Render(meta))
	} else {
		fmt.Fprint(w, StyleRecordDimmed.Render(titleStr)+"\n")
		fmt.Fprint(w, StyleDimmed.Render(meta))
	}
}
