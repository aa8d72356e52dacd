package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tuanbt/toastlog/internal/auth"
)

func tokenCmd() *cobra.Command {
	var producer string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a producer token from the configured JWT secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			svc := auth.NewAuthService(&auth.Config{
				JWTSecret: cfg.Ingest.JWTSecret,
				TokenTTL:  cfg.Ingest.TokenTTL(),
			})
			resp, err := svc.Issue(strings.TrimSpace(producer))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), resp.Token)
			fmt.Fprintf(cmd.ErrOrStderr(), "producer %s, expires %s\n", resp.Producer, resp.ExpiresAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}

	cmd.Flags().StringVar(&producer, "producer", "cli", "Producer name the token is issued to")
	return cmd
}

func hashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key [key]",
		Short: "Print a bcrypt hash for ingest.key_hash",
		Long:  "Print a bcrypt hash for ingest.key_hash. The key is read from stdin when not given as an argument.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var key string
			if len(args) == 1 {
				key = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("no key given")
				}
				key = strings.TrimRight(line, "\r\n")
			}
			if key == "" {
				return errors.New("key must not be empty")
			}

			hash, err := auth.HashKey(key)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
