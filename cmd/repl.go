package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"calculator/internal/config"
	"calculator/internal/repl"
	"calculator/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

func replCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Starts an interactive keypad calculator",
		Long: `Starts an interactive keypad calculator.

On a terminal every key acts immediately: digits and "." enter numbers,
+ - * / choose an operator, Enter or = computes, Escape or c clears,
Backspace deletes a digit, Delete clears the entry and n toggles the sign.
Press q, Ctrl-C or Ctrl-D to leave.

When stdin is not a terminal each line is read as a list of keys, e.g. "12 + 7 =".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
			defer stop()

			lineMode, _ := cmd.Flags().GetBool("lines")
			formatter, err := newFormatter(cfg.Calculator.Locale)
			if err != nil {
				return err
			}

			options := repl.Options{Formatter: formatter}
			out := cmd.OutOrStdout()

			fd := int(os.Stdin.Fd()) //nolint: gosec
			if lineMode || !term.IsTerminal(fd) {
				return repl.New(out, options).RunLines(ctx, cmd.InOrStdin()) //nolint: wrapcheck
			}

			if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 1 && //nolint: gosec
				width-1 < repl.DefaultWidth {
				options.Width = width - 1
			}

			state, err := term.MakeRaw(fd)
			if err != nil {
				return err //nolint: wrapcheck
			}
			defer func() {
				if err := term.Restore(fd, state); err != nil {
					logger.Warn(context.Background(), "could not restore terminal", zap.Error(err))
				}
			}()

			return repl.New(out, options).RunKeys(ctx, os.Stdin) //nolint: wrapcheck
		},
	}

	cmd.Flags().Bool("lines", false, "Read whole lines of keys even on a terminal")

	return cmd
}
