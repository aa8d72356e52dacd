package tui

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/tuanbt/toastlog/internal/archive"
	"github.com/tuanbt/toastlog/internal/config"
	"github.com/tuanbt/toastlog/internal/inbox"
	"github.com/tuanbt/toastlog/internal/notify"
	"github.com/tuanbt/toastlog/internal/spool"
	"github.com/tuanbt/toastlog/internal/toast"
)

type ViewMode int

const (
	ModeNormal ViewMode = iota
	ModeCompose
)

// Deps are the collaborators the TUI is built from.
type Deps struct {
	Config  *config.Config
	Toaster *toast.Toaster

	// Emitter is what the TUI emits through. Nil means the global toast
	// functions, which is how the passive strategy is exercised.
	Emitter toast.Emitter

	Store   *notify.Store
	Inbox   *inbox.Inbox
	Scope   *RegionScope
	Archive *archive.Manager
	Spool   <-chan spool.Request
	LogPath string
	Logger  *slog.Logger
}

type Model struct {
	// Collaborators
	Config  *config.Config
	Toaster *toast.Toaster
	Emitter toast.Emitter
	Store   *notify.Store
	Inbox   *inbox.Inbox
	Scope   *RegionScope
	Archive *archive.Manager
	Logger  *slog.Logger

	// Event sources
	Updates     <-chan notify.Record
	Unsubscribe func()
	Spool       <-chan spool.Request
	LogPath     string

	// Models
	InboxList list.Model
	LogView   viewport.Model
	Input     textinput.Model

	// State
	ComposeKind toast.Kind
	Width       int
	Height      int
	Ready       bool
	Mode        ViewMode
	ShowInbox   bool
	ShowLogs    bool
	Status      string
	Quitting    bool

	// Log pane tracking
	LogContent      string
	LogOffset       int64
	FallbackPolling bool
}

// New builds the initial model and subscribes to inbox updates.
func New(d Deps) Model {
	l := list.New([]list.Item{}, RecordDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	ti := textinput.New()
	ti.Placeholder = "Type a notification..."
	ti.Prompt = "" // Handled by View
	ti.Width = 60
	ti.Blur()

	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	buffer := 0
	if d.Config != nil {
		buffer = d.Config.Inbox.Buffer
	}
	updates, unsubscribe := d.Inbox.Updates(buffer)

	return Model{
		Config:      d.Config,
		Toaster:     d.Toaster,
		Emitter:     d.Emitter,
		Store:       d.Store,
		Inbox:       d.Inbox,
		Scope:       d.Scope,
		Archive:     d.Archive,
		Logger:      logger,
		Updates:     updates,
		Unsubscribe: unsubscribe,
		Spool:       d.Spool,
		LogPath:     d.LogPath,
		InboxList:   l,
		LogView:     viewport.New(0, 0),
		Input:       ti,
		ComposeKind: toast.KindInfo,
	}
}

// Close releases everything the model holds. It is safe to call more than
// once.
func (m Model) Close() {
	m.Scope.Close()
	if m.Unsubscribe != nil {
		m.Unsubscribe()
	}
}

// emit sends one toast through the configured emitter.
func (m Model) emit(kind toast.Kind, message any, opts ...toast.Option) toast.ID {
	if m.Emitter == nil {
		return toast.Emit(kind, message, opts...)
	}
	return toast.Call(m.Emitter, kind, message, opts...)
}
