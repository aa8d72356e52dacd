package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tuanbt/toastlog/cmd/toastlog/tui"
	"github.com/tuanbt/toastlog/internal/archive"
	"github.com/tuanbt/toastlog/internal/auth"
	"github.com/tuanbt/toastlog/internal/config"
	"github.com/tuanbt/toastlog/internal/inbox"
	"github.com/tuanbt/toastlog/internal/ingest"
	"github.com/tuanbt/toastlog/internal/intercept"
	"github.com/tuanbt/toastlog/internal/logger"
	"github.com/tuanbt/toastlog/internal/metrics"
	"github.com/tuanbt/toastlog/internal/notify"
	"github.com/tuanbt/toastlog/internal/spool"
	"github.com/tuanbt/toastlog/internal/toast"
)

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal UI (default)",
		RunE:  runTUI,
	}
}

// app holds everything the TUI is built from.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	toaster *toast.Toaster
	store   *notify.Store
	inbox   *inbox.Inbox
	metrics *metrics.Metrics
	archive *archive.Manager

	// emitter is the active wrapper; nil under the passive strategy.
	emitter toast.Emitter
	// patcher is set under the passive strategy only.
	patcher *intercept.Patcher
	// scope binds the passive session to the inbox panel; nil otherwise.
	scope *tui.RegionScope
}

// newApp builds the toaster, binds it globally, mounts the inbox and sets
// up the configured interception strategy.
func newApp(cfg *config.Config, log *slog.Logger) *app {
	toaster := toast.NewToaster(
		toast.WithDefaultDuration(cfg.Toast.Duration()),
		toast.WithMaxVisible(cfg.Toast.MaxVisible),
	)
	toast.Use(toaster)

	m := metrics.New(nil)
	store := notify.NewStore(notify.WithLogger(log), notify.WithObserver(m))
	m.SetLog(store)

	in := inbox.New(store)
	in.Mount()

	a := &app{
		cfg:     cfg,
		log:     log,
		toaster: toaster,
		store:   store,
		inbox:   in,
		metrics: m,
		archive: archive.NewManager(cfg.Archive.File),
	}

	opts := []intercept.Option{intercept.WithLogger(log), intercept.WithObserver(m)}
	switch cfg.Interception.Strategy {
	case config.StrategyPassive:
		a.patcher = intercept.NewPatcher(toast.Global(), store, opts...)
		if cfg.Interception.Scope == config.ScopeInbox {
			a.scope = tui.NewRegionScope(a.patcher)
		}
	default:
		a.emitter = intercept.NewWrapper(toaster, store, opts...)
	}

	log.Info("toastlog starting",
		"strategy", cfg.Interception.Strategy,
		"scope", cfg.Interception.Scope,
	)
	return a
}

func (a *app) model(requests <-chan spool.Request) tui.Model {
	return tui.New(tui.Deps{
		Config:  a.cfg,
		Toaster: a.toaster,
		Emitter: a.emitter,
		Store:   a.store,
		Inbox:   a.inbox,
		Scope:   a.scope,
		Archive: a.archive,
		Spool:   requests,
		LogPath: filepath.Join(a.cfg.Log.Directory, logger.LogFile),
		Logger:  a.log,
	})
}

// run calls runProgram, inside a passive session when the strategy binds
// one to the whole program run.
func (a *app) run(runProgram func() (tea.Model, error)) (tea.Model, error) {
	if a.patcher == nil || a.cfg.Interception.Scope != config.ScopeApp {
		return runProgram()
	}

	var final tea.Model
	err := a.patcher.Scope(func() error {
		var err error
		final, err = runProgram()
		return err
	})
	return final, err
}

func (a *app) ingestServer(sender ingest.Sender) *ingest.Server {
	authService := auth.NewAuthService(&auth.Config{
		JWTSecret: a.cfg.Ingest.JWTSecret,
		KeyHash:   a.cfg.Ingest.KeyHash,
		TokenTTL:  a.cfg.Ingest.TokenTTL(),
	})
	return ingest.NewServer(ingest.Config{
		Address:       a.cfg.Ingest.Address,
		RatePerSecond: a.cfg.Ingest.RatePerSecond,
		Burst:         a.cfg.Ingest.Burst,
	}, authService, sender, a.store,
		ingest.WithLogger(a.log),
		ingest.WithMetrics(a.metrics),
	)
}

// exportOnExit writes the log to the archive when configured to.
func (a *app) exportOnExit() error {
	if !a.cfg.Archive.OnExit {
		return nil
	}
	records := a.store.Records()
	if err := a.archive.SaveAll(records); err != nil {
		return fmt.Errorf("failed to export archive: %w", err)
	}
	a.log.Info("archive exported", "path", a.archive.Path(), "records", len(records))
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, cleanup, err := logger.NewEmbeddedLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a := newApp(cfg, log)

	var requests <-chan spool.Request
	if cfg.Spool.Enabled {
		requests, err = spool.NewWatcher(cfg.Spool.Directory, log).Watch(ctx)
		if err != nil {
			return fmt.Errorf("failed to watch spool: %w", err)
		}
	}

	model := a.model(requests)
	// Releases an inbox-bound session however the loop ends.
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())

	if cfg.Ingest.Enabled {
		if _, err := a.ingestServer(p).Start(ctx); err != nil {
			return err
		}
	}

	final, err := a.run(p.Run)
	if m, ok := final.(tui.Model); ok {
		m.Close()
	}
	if err != nil {
		log.Error("program exited with error", "error", err)
		return fmt.Errorf("error running toastlog: %w", err)
	}

	log.Info("toastlog stopped", "records", a.store.Len())
	return a.exportOnExit()
}
