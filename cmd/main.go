// Package main provides the CLI entrypoint for the calculator service.
// It wires subcommands (serve, repl, eval, jwt), loads configuration, and initializes logging.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"strings"

	"calculator/internal/config"
	"calculator/pkg/display"
	"calculator/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// plainLocale disables digit grouping.
const plainLocale = "plain"

// newFormatter returns the display formatter for locale.
func newFormatter(locale string) (display.Formatter, error) {
	if locale == "" || strings.EqualFold(locale, plainLocale) {
		return display.Plain{}, nil
	}

	g, err := display.NewGrouped(locale)
	if err != nil {
		return nil, err //nolint: wrapcheck
	}

	return g, nil
}

// main sets up the root Cobra command, loads configuration and logging, and
// registers subcommands before executing the CLI.
func main() {
	rootCmd := &cobra.Command{
		Use:   "calculator",
		Short: "Keypad calculator: interactive terminal, one-shot evaluation and HTTP service",
	}

	// there is no way to access flags before command execution in cobra.
	// configPath here is parsed using the standard flags package.
	// following line is just added to prevent errors when Cobra is parsing the flags.
	rootCmd.PersistentFlags().StringP("config", "c", "config.yml", "Config File Path")

	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	configPath := flags.String("c", "config.yml", "The config file path")
	// cobra reports unknown flags itself
	_ = flags.Parse(configArgs(os.Args[1:]))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("could not load config file: ", err)
	}

	logger.Setup(cfg.Environment)

	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			_ = logger.Get(ctx).Sync()

			panic(p)
		}
	}()

	rootCmd.AddCommand(
		serveCommand(cfg),
		replCommand(cfg),
		evalCommand(cfg),
		JWTCommand(cfg),
	)

	err = rootCmd.Execute()
	_ = logger.Get(ctx).Sync()
	if err != nil {
		os.Exit(1) //nolint: gocritic
	}
}

// configArgs picks the -c/--config flag out of args so that the standard flag
// package does not stop at the subcommand name.
func configArgs(args []string) []string {
	for i, arg := range args {
		switch {
		case arg == "-c" || arg == "--config":
			if i+1 < len(args) {
				return []string{"-c", args[i+1]}
			}
		case strings.HasPrefix(arg, "-c="), strings.HasPrefix(arg, "--config="):
			_, v, _ := strings.Cut(arg, "=")

			return []string{"-c", v}
		}
	}

	return nil
}
