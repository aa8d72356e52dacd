package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tuanbt/toastlog/internal/ingest"
	"github.com/tuanbt/toastlog/internal/spool"
	"github.com/tuanbt/toastlog/internal/toast"
)

func emitCmd() *cobra.Command {
	var (
		server      string
		token       string
		producer    string
		key         string
		spoolDir    string
		description string
		duration    time.Duration
		rawJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "emit <kind> <message>",
		Short: "Send a toast to a running toastlog",
		Long: `Send a toast to a running toastlog, either over the HTTP ingest API
(--server) or by dropping a file into its spool directory (--spool).
Without either flag the config decides: the spool directory when the spool
is enabled, the ingest address otherwise.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := toast.ParseKind(args[0])
			if err != nil {
				return err
			}

			req := spool.Request{
				Kind:        string(kind),
				Message:     args[1],
				Description: description,
				DurationMS:  int(duration.Milliseconds()),
			}
			if rawJSON {
				var v any
				if err := json.Unmarshal([]byte(args[1]), &v); err != nil {
					return fmt.Errorf("message is not valid JSON: %w", err)
				}
				req.Message = v
			}

			if server == "" && spoolDir == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				if cfg.Spool.Enabled {
					spoolDir = cfg.Spool.Directory
				} else {
					server = cfg.Ingest.Address
				}
			}

			if spoolDir != "" {
				path, err := spool.Write(spoolDir, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Spooled %s: %s\n", kind, path)
				return nil
			}

			client := ingest.NewClient(server, token)
			if client.Token == "" {
				if key == "" {
					return errors.New("either --token or --key is required for --server")
				}
				if _, err := client.Exchange(cmd.Context(), producer, key); err != nil {
					return fmt.Errorf("failed to get token: %w", err)
				}
			}

			resp, err := client.Emit(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("failed to emit: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Accepted %s from %s\n", resp.Kind, resp.Producer)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Ingest server address")
	cmd.Flags().StringVar(&token, "token", "", "Bearer token (see the token command)")
	cmd.Flags().StringVar(&producer, "producer", "cli", "Producer name used when exchanging --key")
	cmd.Flags().StringVar(&key, "key", "", "Producer key to exchange for a token")
	cmd.Flags().StringVar(&spoolDir, "spool", "", "Spool directory to drop the request into")
	cmd.Flags().StringVar(&description, "description", "", "Secondary line shown under the message")
	cmd.Flags().DurationVar(&duration, "duration", 0, "How long the toast stays visible")
	cmd.Flags().BoolVar(&rawJSON, "json", false, "Parse the message as a JSON value instead of a string")

	return cmd
}
