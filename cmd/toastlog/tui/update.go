package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tuanbt/toastlog/internal/ingest"
	"github.com/tuanbt/toastlog/internal/toast"
)

// SamplePayload is emitted by the "o" key to show how a non-string payload
// is logged.
type SamplePayload struct {
	Code   int
	Reason string
}

var samples = map[string]struct {
	kind    toast.Kind
	message string
}{
	"1": {toast.KindSuccess, "Deployment finished"},
	"2": {toast.KindError, "Network down"},
	"3": {toast.KindInfo, "3 new messages"},
	"4": {toast.KindWarning, "Disk almost full"},
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		tick(),
		waitForRecord(m.Updates),
		waitForSpool(m.Spool),
	}
	if m.LogPath != "" {
		cmds = append(cmds, readLogFrom(m.LogPath, 0), watchLogFile(m.LogPath))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Mode == ModeCompose {
			return m.updateCompose(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q":
			m.Scope.Close()
			m.Quitting = true
			return m, tea.Quit
		case "1", "2", "3", "4":
			s := samples[msg.String()]
			m.emit(s.kind, s.message)
		case "o":
			m.emit(toast.KindError, SamplePayload{Code: 503, Reason: "upstream unavailable"},
				toast.WithDescription("non-string payload"))
		case "i":
			m.Mode = ModeCompose
			m.Input.Focus()
			return m, textinput.Blink
		case "n":
			m.toggleInbox()
		case "l":
			m.ShowLogs = !m.ShowLogs
			m.updateLayout()
		case "r":
			m.Inbox.MarkAllRead()
			m.refreshInbox()
		case "c":
			m.Inbox.Clear()
			m.refreshInbox()
			m.Status = "Inbox cleared"
		case "x":
			if m.Archive != nil {
				cmds = append(cmds, exportArchive(m.Archive, m.Store.Records()))
			}
		case "d":
			if active := m.Toaster.Active(); len(active) > 0 {
				m.Toaster.Dismiss(active[len(active)-1].ID)
			}
		case "j", "down":
			m.InboxList.CursorDown()
		case "k", "up":
			m.InboxList.CursorUp()
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()

	// === Event sources ===

	case RecordMsg:
		m.refreshInbox()
		cmds = append(cmds, waitForRecord(m.Updates))

	case UpdatesClosedMsg:
		m.Updates = nil

	case SpoolMsg:
		req := msg.Request
		kind, err := req.ParsedKind()
		if err != nil {
			m.Logger.Warn("dropping spool request", "path", req.Path, "error", err)
		} else {
			m.emit(kind, req.Message, req.Options()...)
		}
		cmds = append(cmds, waitForSpool(m.Spool))

	case SpoolClosedMsg:
		m.Spool = nil

	case ingest.Emission:
		m.emit(msg.Kind, msg.Message, msg.Options...)
		m.Logger.Debug("ingest emission", "producer", msg.Producer, "kind", msg.Kind)

	case ArchiveSavedMsg:
		if msg.Err != nil {
			m.Status = fmt.Sprintf("Export failed: %v", msg.Err)
			m.Logger.Error("archive export failed", "error", msg.Err)
		} else {
			m.Status = fmt.Sprintf("Exported %d records to %s", msg.Count, msg.Path)
		}

	case LogChangedMsg:
		cmds = append(cmds, readLogFrom(m.LogPath, m.LogOffset), watchLogFile(m.LogPath))

	case LogChunkMsg:
		m.LogOffset = msg.Offset
		if msg.Chunk != "" {
			m.LogContent = tailLines(m.LogContent+msg.Chunk, 500)
			m.LogView.SetContent(m.LogContent)
			m.LogView.GotoBottom()
		}

	case WatcherErrorMsg:
		// Re-read the log on every tick instead
		m.FallbackPolling = true
		if msg.Error != nil {
			m.Logger.Warn("log watcher failed", "error", msg.Error)
		}

	case tickMsg:
		m.Toaster.Expire(time.Time(msg))
		cmds = append(cmds, tick())
		if m.FallbackPolling && m.ShowLogs && m.LogPath != "" {
			cmds = append(cmds, readLogFrom(m.LogPath, m.LogOffset))
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) updateCompose(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Mode = ModeNormal
		m.Input.Blur()
		return m, nil
	case "tab":
		m.ComposeKind = nextKind(m.ComposeKind)
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.Input.Value())
		if text != "" {
			m.emit(m.ComposeKind, text)
			m.Input.Reset()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

// toggleInbox opens or closes the inbox panel, which is also the region a
// passive session with the inbox scope is bound to.
func (m *Model) toggleInbox() {
	m.ShowInbox = !m.ShowInbox
	if m.ShowInbox {
		m.Scope.Open()
		m.Inbox.MarkAllRead()
		m.refreshInbox()
	} else {
		m.Scope.Close()
	}
	m.updateLayout()
}

func (m *Model) updateLayout() {
	if !m.Ready {
		return
	}

	contentHeight := m.Height - 4 // header(1) + footer(3)
	if m.ShowLogs {
		logHeight := contentHeight / 3
		m.LogView.Width = m.Width - 2
		m.LogView.Height = logHeight
		contentHeight -= logHeight + 2
	}

	listWidth := m.Width - toastColumnWidth - 2
	if listWidth < 20 {
		listWidth = 20
	}
	m.InboxList.SetSize(listWidth-2, max(contentHeight-3, 1))
	m.Input.Width = m.Width - 20
}

func nextKind(k toast.Kind) toast.Kind {
	for i, kind := range toast.Kinds {
		if kind == k {
			return toast.Kinds[(i+1)%len(toast.Kinds)]
		}
	}
	return toast.Kinds[0]
}

func tailLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
