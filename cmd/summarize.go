package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"textsummarizer/internal/controller"
)

func newSummarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize [text | -]",
		Short: "Summarize text through the relay and save it to history",
		Long:  "Summarize the given text. With no arguments or a single \"-\" the text is read from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := newLogger(os.Stderr)

			text, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			s, err := openSession(ctx, log)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			result, err := s.controller.Summarize(ctx, text)
			if err != nil {
				return errors.New(controller.Message(err))
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Summary)

			if result.StorageErr != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), controller.Message(result.StorageErr))
			}

			return nil
		},
	}
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}

		return string(data), nil
	}

	return strings.Join(args, " "), nil
}
