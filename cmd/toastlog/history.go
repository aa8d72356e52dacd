package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/tuanbt/toastlog/internal/archive"
	"github.com/tuanbt/toastlog/internal/notify"
	"github.com/tuanbt/toastlog/internal/toast"
)

func historyCmd() *cobra.Command {
	var file, kind, output string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print an exported notification archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				file = cfg.Archive.File
			}

			f, err := archive.NewManager(file).LoadAll()
			if err != nil {
				return err
			}

			records := f.Records
			if kind != "" {
				k, err := toast.ParseKind(kind)
				if err != nil {
					return err
				}
				records = filterKind(records, k)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No notifications found")
				return nil
			}

			switch output {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			case "table":
				return outputTable(out, records)
			default:
				return fmt.Errorf("unsupported output format: %s", output)
			}
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Archive file (default: archive.file from config)")
	cmd.Flags().StringVar(&kind, "kind", "", "Only show one kind (success, error, info, warning)")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")

	return cmd
}

func filterKind(records []notify.Record, kind toast.Kind) []notify.Record {
	var result []notify.Record
	for _, rec := range records {
		if rec.Kind == kind {
			result = append(result, rec)
		}
	}
	return result
}

func outputTable(w io.Writer, records []notify.Record) error {
	table := tablewriter.NewWriter(w)
	if err := table.Append([]string{"Seq", "Time", "Kind", "Title", "Message"}); err != nil {
		return err
	}

	for _, rec := range records {
		row := []string{
			strconv.FormatUint(rec.Seq, 10),
			rec.Time.Format("2006-01-02 15:04:05"),
			string(rec.Kind),
			rec.Title,
			rec.Message,
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	counts := archive.Counts(records)
	parts := make([]string, 0, len(toast.Kinds))
	for _, k := range toast.Kinds {
		if counts[k] > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", k, counts[k]))
		}
	}
	_, err := fmt.Fprintf(w, "%d notifications (%s)\n", len(records), strings.Join(parts, ", "))
	return err
}
