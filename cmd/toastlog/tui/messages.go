// Package tui provides the terminal user interface for toastlog.
package tui

import (
	"time"

	"github.com/tuanbt/toastlog/internal/notify"
	"github.com/tuanbt/toastlog/internal/spool"
)

type tickMsg time.Time

// RecordMsg carries a record appended to the notification log.
// The inbox list is refreshed when receiving this message.
type RecordMsg struct {
	Record notify.Record
}

// UpdatesClosedMsg signals that the inbox subscription was closed.
type UpdatesClosedMsg struct{}

// SpoolMsg carries a request dropped into the spool directory.
type SpoolMsg struct {
	Request spool.Request
}

// SpoolClosedMsg signals that the spool watcher stopped.
type SpoolClosedMsg struct{}

// LogChunkMsg contains bytes appended to the toastlog log file since Offset.
type LogChunkMsg struct {
	Chunk  string
	Offset int64
}

// LogChangedMsg signals that the log file was written to.
type LogChangedMsg struct{}

// WatcherErrorMsg signals that the log file watcher encountered an error.
// The TUI falls back to re-reading the log on every tick.
type WatcherErrorMsg struct {
	Error error
}

// ArchiveSavedMsg reports the result of an archive export.
type ArchiveSavedMsg struct {
	Path  string
	Count int
	Err   error
}
