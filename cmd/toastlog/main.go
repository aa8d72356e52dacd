package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tuanbt/toastlog/internal/config"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "toastlog",
		Short: "Terminal toasts with a notification log",
		Long: `toastlog shows toast notifications in the terminal and mirrors every
emission into an inbox, either by wrapping the toaster (active) or by
patching the global toast functions for a scope (passive).`,
		SilenceUsage: true,
		RunE:         runTUI,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json", "Path to config file (.json, .yaml)")

	rootCmd.AddCommand(tuiCmd())
	rootCmd.AddCommand(emitCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(hashKeyCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and resolves relative paths against the
// working directory.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	pwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	for _, p := range []*string{&cfg.Log.Directory, &cfg.Spool.Directory, &cfg.Archive.File} {
		if !filepath.IsAbs(*p) {
			*p = filepath.Join(pwd, *p)
		}
	}
	return cfg, nil
}
