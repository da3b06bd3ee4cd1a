package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newMirrorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Diagnose the remote mirror",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Read the latest mirrored summaries and report how many were found",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			s, err := openSession(ctx, newLogger(os.Stderr))
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			if !s.mirror.Enabled() {
				fmt.Fprintln(cmd.OutOrStdout(), "Mirror is disabled")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Mirror holds %d recent summaries\n", s.mirror.Sync(ctx))

			return nil
		},
	})

	return cmd
}
