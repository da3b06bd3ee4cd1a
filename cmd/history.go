package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"textsummarizer/internal/controller"
	"textsummarizer/internal/domain"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the local summary history",
	}

	var asJSON bool

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved summaries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			s, err := openSession(ctx, newLogger(os.Stderr))
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			records, err := s.controller.History(ctx)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Failed to load history")
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), records)
			}

			return writeRecords(cmd.OutOrStdout(), records)
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one saved summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			s, err := openSession(ctx, newLogger(os.Stderr))
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			record, found, err := s.controller.Show(ctx, id)
			if err != nil {
				return fmt.Errorf("show summary: %w", err)
			}
			if !found {
				return fmt.Errorf("no summary with id %d", id)
			}

			fmt.Fprintln(cmd.OutOrStdout(), record.SummaryText)

			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			s, err := openSession(ctx, newLogger(os.Stderr))
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			removed, err := s.controller.Delete(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to delete: %s", controller.Message(err))
			}

			if removed {
				fmt.Fprintln(cmd.OutOrStdout(), "Summary deleted")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "No summary with id %d\n", id)
			}

			return nil
		},
	}

	cmd.AddCommand(list, show, del)

	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id must be an integer: %w", err)
	}

	return id, nil
}

func writeJSON(w io.Writer, records []domain.SummaryRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(records)
}

func writeRecords(w io.Writer, records []domain.SummaryRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No summaries yet. Start by summarizing some text!")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tRATIO\tSUMMARY")

	for _, r := range records {
		ratio := "-"
		if r.OriginalTextLength > 0 && r.SummaryLength > 0 {
			ratio = fmt.Sprintf("%d%%", domain.CompressionRatio(r.OriginalTextLength, r.SummaryLength))
		}

		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			r.ID,
			r.CreatedAt.Local().Format("Jan 2 15:04"),
			ratio,
			strings.ReplaceAll(r.SummaryText, "\n", " "))
	}

	return tw.Flush()
}
