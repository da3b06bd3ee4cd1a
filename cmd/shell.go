package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"textsummarizer/internal/controller"
	"textsummarizer/internal/scheduler"
)

const (
	shellPrompt     = "> "
	maxShellLineLen = 1 << 20

	shellHelp = `Paste text and finish it with an empty line to summarize it.
Commands:
  :history        list saved summaries
  :show <id>      print a saved summary
  :delete <id>    delete a saved summary
  :sync           read the remote mirror
  :help           show this help
  :quit           leave the shell`
)

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session: summarize pasted text and manage history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			log := newLogger(os.Stderr)

			s, err := openSession(ctx, log)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			if s.mirror.Enabled() {
				s.mirror.SyncAsync(ctx)

				sched := scheduler.New(ctx, s.mirror, s.cfg.MirrorSyncSpec, log)
				if err = sched.Start(); err != nil {
					log.ErrorContext(ctx, "Failed to start scheduler",
						"error", err,
						"spec", sched.Spec())

					return err
				}
				defer sched.Stop()

				log.InfoContext(ctx, "Scheduler is started",
					"spec", sched.Spec())
			}

			sh := &shell{
				controller: s.controller,
				syncMirror: func(ctx context.Context) (int, bool) {
					return s.mirror.Sync(ctx), s.mirror.Enabled()
				},
				out: cmd.OutOrStdout(),
				log: log,
			}

			return sh.run(ctx, cmd.InOrStdin())
		},
	}
}

type shell struct {
	controller *controller.Controller
	syncMirror func(ctx context.Context) (int, bool)
	out        io.Writer
	log        *slog.Logger
}

func (sh *shell) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxShellLineLen)

		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	fmt.Fprintln(sh.out, shellHelp)
	fmt.Fprint(sh.out, shellPrompt)

	var pending []string

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(sh.out)
			return nil
		case line, ok := <-lines:
			if !ok {
				if len(pending) > 0 {
					sh.summarize(ctx, strings.Join(pending, "\n"))
				}

				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}

			trimmed := strings.TrimSpace(line)

			switch {
			case len(pending) == 0 && strings.HasPrefix(trimmed, ":"):
				if quit := sh.command(ctx, trimmed); quit {
					return nil
				}
			case trimmed == "":
				if len(pending) > 0 {
					sh.summarize(ctx, strings.Join(pending, "\n"))
					pending = nil
				}
			default:
				pending = append(pending, line)
				continue
			}

			fmt.Fprint(sh.out, shellPrompt)
		}
	}
}

func (sh *shell) summarize(ctx context.Context, text string) {
	fmt.Fprintln(sh.out, "Summarizing...")

	result, err := sh.controller.Summarize(ctx, text)
	if err != nil {
		fmt.Fprintln(sh.out, controller.Message(err))
		return
	}

	fmt.Fprintln(sh.out)
	fmt.Fprintln(sh.out, result.Summary)
	fmt.Fprintln(sh.out)

	if result.StorageErr != nil {
		fmt.Fprintln(sh.out, controller.Message(result.StorageErr))
		return
	}

	fmt.Fprintf(sh.out, "%s (id %d)\n", controller.Message(nil), result.Record.ID)
}

func (sh *shell) command(ctx context.Context, line string) bool {
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "quit", "q", "exit":
		return true
	case "help", "h":
		fmt.Fprintln(sh.out, shellHelp)
	case "history":
		records, err := sh.controller.History(ctx)
		if err != nil {
			fmt.Fprintln(sh.out, "Failed to load history")
		}
		if err = writeRecords(sh.out, records); err != nil {
			sh.log.WarnContext(ctx, "Failed to print history",
				"error", err)
		}
	case "show":
		id, err := parseID(arg)
		if err != nil {
			fmt.Fprintln(sh.out, err)
			break
		}

		record, found, err := sh.controller.Show(ctx, id)
		switch {
		case err != nil:
			fmt.Fprintln(sh.out, "Failed to load history")
		case !found:
			fmt.Fprintf(sh.out, "No summary with id %d\n", id)
		default:
			fmt.Fprintln(sh.out, record.SummaryText)
		}
	case "delete":
		id, err := parseID(arg)
		if err != nil {
			fmt.Fprintln(sh.out, err)
			break
		}

		removed, err := sh.controller.Delete(ctx, id)
		switch {
		case err != nil:
			fmt.Fprintln(sh.out, "Failed to delete")
		case removed:
			fmt.Fprintln(sh.out, "Summary deleted")
		default:
			fmt.Fprintf(sh.out, "No summary with id %d\n", id)
		}
	case "sync":
		count, enabled := sh.syncMirror(ctx)
		if !enabled {
			fmt.Fprintln(sh.out, "Mirror is disabled")
			break
		}
		fmt.Fprintf(sh.out, "Mirror holds %d recent summaries\n", count)
	default:
		fmt.Fprintf(sh.out, "Unknown command %q, try :help\n", name)
	}

	return false
}
