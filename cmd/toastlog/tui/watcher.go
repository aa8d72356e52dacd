package tui

import (
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/tuanbt/toastlog/internal/archive"
	"github.com/tuanbt/toastlog/internal/notify"
	"github.com/tuanbt/toastlog/internal/spool"
)

// maxLogChunk caps how much of the log file one LogChunkMsg carries.
const maxLogChunk = 64 << 10

// tick drives toast expiry.
func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForRecord returns a tea.Cmd that blocks until the inbox subscription
// delivers a record. Re-arm it after every RecordMsg.
func waitForRecord(updates <-chan notify.Record) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		rec, ok := <-updates
		if !ok {
			return UpdatesClosedMsg{}
		}
		return RecordMsg{Record: rec}
	}
}

// waitForSpool returns a tea.Cmd that blocks until the spool watcher
// delivers a request.
func waitForSpool(requests <-chan spool.Request) tea.Cmd {
	if requests == nil {
		return nil
	}
	return func() tea.Msg {
		req, ok := <-requests
		if !ok {
			return SpoolClosedMsg{}
		}
		return SpoolMsg{Request: req}
	}
}

// watchLogFile returns a tea.Cmd that watches the log file for writes.
// On error, it emits a WatcherErrorMsg.
func watchLogFile(path string) tea.Cmd {
	return func() tea.Msg {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return WatcherErrorMsg{Error: err}
		}
		defer watcher.Close()

		if err := watcher.Add(path); err != nil {
			return WatcherErrorMsg{Error: err}
		}

		// Wait for an event
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return WatcherErrorMsg{Error: nil}
				}
				if event.Op&fsnotify.Write == fsnotify.Write ||
					event.Op&fsnotify.Create == fsnotify.Create {
					// Small debounce to avoid rapid-fire events
					time.Sleep(10 * time.Millisecond)
					return LogChangedMsg{}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return WatcherErrorMsg{Error: nil}
				}
				return WatcherErrorMsg{Error: err}
			}
		}
	}
}

// readLogFrom returns a tea.Cmd that reads what was appended to the log
// file after offset.
func readLogFrom(path string, offset int64) tea.Cmd {
	return func() tea.Msg {
		file, err := os.Open(path)
		if err != nil {
			return LogChunkMsg{Offset: offset}
		}
		defer file.Close()

		info, err := file.Stat()
		if err != nil {
			return LogChunkMsg{Offset: offset}
		}
		size := info.Size()

		// Truncated or rotated
		if size < offset {
			offset = 0
		}
		if size == offset {
			return LogChunkMsg{Offset: offset}
		}

		n := size - offset
		if n > maxLogChunk {
			offset = size - maxLogChunk
			n = maxLogChunk
		}

		buf := make([]byte, n)
		read, err := file.ReadAt(buf, offset)
		if err != nil && err != io.EOF {
			return LogChunkMsg{Offset: offset}
		}
		return LogChunkMsg{Chunk: string(buf[:read]), Offset: offset + int64(read)}
	}
}

// exportArchive returns a tea.Cmd that writes records to the archive.
func exportArchive(m *archive.Manager, records []notify.Record) tea.Cmd {
	return func() tea.Msg {
		err := m.SaveAll(records)
		return ArchiveSavedMsg{Path: m.Path(), Count: len(records), Err: err}
	}
}
