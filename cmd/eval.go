package main

import (
	"fmt"
	"strings"

	"calculator/internal/config"
	"calculator/internal/repl"
	"calculator/pkg/display"

	"github.com/spf13/cobra"
)

func evalCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval KEY...",
		Short: "Presses the given keys on a fresh calculator and prints the display",
		Example: `  calculator eval 12 + 7 =
  calculator eval "1/3="
  calculator eval --plain 1234567 Enter`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plain, _ := cmd.Flags().GetBool("plain")

			var formatter display.Formatter = display.Plain{}
			if !plain {
				f, err := newFormatter(cfg.Calculator.Locale)
				if err != nil {
					return err
				}
				formatter = f
			}

			screen, err := repl.New(cmd.OutOrStdout(), repl.Options{Formatter: formatter}).
				Eval(strings.Join(args, " "))
			if err != nil {
				return err //nolint: wrapcheck
			}

			if screen.Previous != "" {
				fmt.Fprintln(cmd.OutOrStdout(), screen.Previous) //nolint: forbidigo
			}
			fmt.Fprintln(cmd.OutOrStdout(), screen.Current) //nolint: forbidigo

			return nil
		},
	}

	cmd.Flags().Bool("plain", false, "Print numbers without digit grouping")

	return cmd
}
