package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"ctp/internal/cli"
	"ctp/internal/cli/commands"
	"ctp/internal/config"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "ctp",
		Short:         "CTest test processor",
		Long:          `Discover, build and run CTest tests of CMake projects, with per-test status, failure locations and an interactive result viewer.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		Prefix:          "ctp",
	})

	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	cmds := commands.NewCommands(cfg, logger)
	cmds.Register(rootCmd, &flags)

	// First interrupt stops dispatching new tests, the second aborts the running one
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signals
		logger.Warn("interrupted, finishing the running test; interrupt again to abort it")
		cancel()
		<-signals
		cmds.Stop()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var result *commands.ResultError
		if !errors.As(err, &result) || result.Err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
