// Package spool turns JSON files dropped into a directory into toast
// emissions.
package spool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/tuanbt/toastlog/internal/toast"
)

// Ext is the extension of spool files. Anything else in the directory is
// ignored.
const Ext = ".json"

// rejectedExt is appended to files that could not be parsed.
const rejectedExt = ".rejected"

var (
	// ErrEmpty is returned by Read for a zero-length file, which usually
	// means the writer has not finished.
	ErrEmpty = errors.New("spool file is empty")
)

// Request is the content of one spool file.
type Request struct {
	Kind string `json:"kind"`
	// Message is any JSON value. Strings are shown as-is; anything else is
	// still emitted, which is how producers exercise the non-string path.
	Message     any    `json:"message"`
	Description string `json:"description,omitempty"`
	DurationMS  int    `json:"duration_ms,omitempty"`

	// Path is the file the request was read from.
	Path string `json:"-"`
}

// ParsedKind validates Kind.
func (r Request) ParsedKind() (toast.Kind, error) {
	return toast.ParseKind(r.Kind)
}

// Options returns the toast options the request asks for.
func (r Request) Options() []toast.Option {
	var opts []toast.Option
	if r.Description != "" {
		opts = append(opts, toast.WithDescription(r.Description))
	}
	if r.DurationMS > 0 {
		opts = append(opts, toast.WithDuration(time.Duration(r.DurationMS)*time.Millisecond))
	}
	return opts
}

// Read parses one spool file.
func Read(path string) (Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Request{}, fmt.Errorf("failed to read spool file: %w", err)
	}
	if len(data) == 0 {
		return Request{}, ErrEmpty
	}

	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, fmt.Errorf("failed to parse spool file: %w", err)
	}
	if _, err := req.ParsedKind(); err != nil {
		return Request{}, err
	}

	req.Path = path
	return req, nil
}

// Write drops req into dir. The file appears atomically: it is written to
// a temp name first and renamed into place. It returns the final path.
func Write(dir string, req Request) (string, error) {
	if _, err := req.ParsedKind(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create spool directory: %w", err)
	}

	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal spool request: %w", err)
	}

	// Timestamp prefix keeps a directory listing in submission order
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), uuid.NewString(), Ext)
	path := filepath.Join(dir, name)
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to rename temp file: %w", err)
	}

	return path, nil
}

// Pending lists the spool files currently in dir, oldest name first.
func Pending(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list spool directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Ext) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

const (
	// DefaultSettle is how long a spool file must go without a write event
	// before the watcher reads it.
	DefaultSettle = 100 * time.Millisecond

	// DefaultRejectAfter is how long a file that does not parse must go
	// without a write event before it is rejected.
	DefaultRejectAfter = 2 * time.Second
)

// Watcher delivers the requests dropped into a directory.
type Watcher struct {
	dir         string
	logger      *slog.Logger
	settle      time.Duration
	rejectAfter time.Duration
}

// NewWatcher creates a watcher for dir. A nil logger discards.
func NewWatcher(dir string, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Watcher{
		dir:         dir,
		logger:      logger.With("spool", dir),
		settle:      DefaultSettle,
		rejectAfter: DefaultRejectAfter,
	}
}

// Watch starts watching and returns the channel requests arrive on. Files
// already present are delivered first. A file is read once it has had no
// write for the settle delay, and a file that does not parse is read again
// on every tick, so producers may write it in several chunks. Every
// delivered file is removed; a file still unparseable after rejectAfter
// without writes is renamed with a .rejected suffix. The channel is closed
// when ctx is done or the watcher fails.
func (w *Watcher) Watch(ctx context.Context) (<-chan Request, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create spool directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch spool directory: %w", err)
	}

	out := make(chan Request, 16)
	go func() {
		defer close(out)
		defer watcher.Close()

		ticker := time.NewTicker(w.settle / 2)
		defer ticker.Stop()

		// Last write event per path
		changed := make(map[string]time.Time)

		// Files written before the watcher was armed
		pending, err := Pending(w.dir)
		if err != nil {
			w.logger.Warn("failed to list pending spool files", "error", err)
		}
		armed := time.Now()
		for _, path := range pending {
			changed[path] = armed
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Create == fsnotify.Create ||
					event.Op&fsnotify.Write == fsnotify.Write {
					if strings.HasSuffix(event.Name, Ext) {
						changed[event.Name] = time.Now()
					}
				}
			case now := <-ticker.C:
				for _, path := range settled(changed, now, w.settle) {
					req, err := Read(path)
					switch {
					case err == nil:
						delete(changed, path)
						if !w.deliver(ctx, out, req) {
							return
						}
					case errors.Is(err, ErrEmpty), errors.Is(err, os.ErrNotExist):
						// Created but never written, or already handled
						delete(changed, path)
					case now.Sub(changed[path]) < w.rejectAfter:
						// May still be mid-write
					default:
						delete(changed, path)
						w.reject(path, err)
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				w.logger.Error("spool watcher error", "error", err)
				return
			}
		}
	}()

	return out, nil
}

// settled returns the paths whose last write is at least settle before now,
// oldest write first and by name within the same instant.
func settled(changed map[string]time.Time, now time.Time, settle time.Duration) []string {
	var ready []string
	for path, last := range changed {
		if now.Sub(last) >= settle {
			ready = append(ready, path)
		}
	}
	sort.Slice(ready, func(i, j int) bool {
		ti, tj := changed[ready[i]], changed[ready[j]]
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return ready[i] < ready[j]
	})
	return ready
}

// deliver removes the request's file and sends the request. It returns
// false once ctx is done.
func (w *Watcher) deliver(ctx context.Context, out chan<- Request, req Request) bool {
	if err := os.Remove(req.Path); err != nil && !os.IsNotExist(err) {
		w.logger.Error("failed to remove spool file", "path", req.Path, "error", err)
	}

	select {
	case out <- req:
		w.logger.Debug("spool request delivered", "path", req.Path, "kind", req.Kind)
		return true
	case <-ctx.Done():
		return false
	}
}

func (w *Watcher) reject(path string, err error) {
	w.logger.Warn("rejecting spool file", "path", path, "error", err)
	if err := os.Rename(path, path+rejectedExt); err != nil {
		w.logger.Error("failed to reject spool file", "path", path, "error", err)
	}
}
