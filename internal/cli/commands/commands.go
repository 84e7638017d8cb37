package commands

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"ctp/internal/cli"
	"ctp/internal/config"
	"ctp/internal/debug"
	"ctp/internal/discovery"
	"ctp/internal/execution"
	"ctp/internal/parser"
	"ctp/internal/storage"
	"ctp/internal/tree"
	"ctp/internal/ui"
)

// Commands holds all CLI commands
type Commands struct {
	Run     *RunCommand
	List    *ListCommand
	Results *ResultsCommand

	config       *config.Config
	logger       *log.Logger
	orchestrator *execution.Orchestrator
}

// NewCommands creates the command set. Dependencies are wired once flags
// and the config file have been applied.
func NewCommands(cfg *config.Config, logger *log.Logger) *Commands {
	return &Commands{config: cfg, logger: logger}
}

// wire creates all commands with dependencies
func (c *Commands) wire() {
	cfg, logger := c.config, c.logger
	runner := execution.NewRunner(logger)
	ws := &workspace{
		config:   cfg,
		scanner:  discovery.NewScanner(cfg.PathsToIgnore),
		catalog:  discovery.NewCatalog(cfg, runner, logger),
		filter:   discovery.NewFilter(),
		registry: tree.NewRegistry(),
		logger:   logger,
	}
	store := storage.NewResultStore(storage.OSFileReader{}, parser.NewCTestParser(), logger)
	builder := execution.NewCMakeBuilder(cfg, runner)
	orchestrator := execution.NewOrchestrator(cfg, runner, builder, store, execution.NewScopeScheduler(), logger)
	orchestrator.SetDebugger(debug.NewCorrelator(debug.NewExecDebugger(cfg.DebuggerCommand, logger), logger))
	formatter := ui.NewFormatter(cfg, nil)

	c.Run = NewRunCommand(cfg, ws, orchestrator, store, formatter, logger)
	c.List = NewListCommand(cfg, ws, store, formatter)
	c.Results = NewResultsCommand(cfg, ws, store, formatter, ui.NewErrorViewer())
	c.orchestrator = orchestrator
}

// Stop aborts the ctest invocation of a run in progress
func (c *Commands) Stop() {
	if c.orchestrator != nil {
		c.orchestrator.Stop()
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags) {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := flags.Apply(c.config); err != nil {
			return err
		}
		level, err := log.ParseLevel(c.config.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", c.config.LogLevel, err)
		}
		c.logger.SetLevel(level)
		c.wire()
		return nil
	}
	rootCmd.PersistentFlags().StringVarP(&flags.ProjectPath, "project", "p", "", "Project root holding .ctp.yaml and .env (default: current directory)")
	rootCmd.PersistentFlags().StringVarP(&flags.BuildPath, "build-path", "b", "", "Directory searched for CMake build trees (default: build)")
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "Log level: debug, info, warn, error")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Build and run CTest tests",
		Long:  "Build every discovered build directory and run its tests through ctest, reporting per-test status",
		RunE:  func(cmd *cobra.Command, args []string) error { return c.Run.Execute(cmd, args) },
	}
	runCmd.Flags().IntVarP(&flags.Jobs, "jobs", "j", config.DefaultJobs, "Number of tests ctest may run in parallel")
	runCmd.Flags().BoolVar(&flags.Sequential, "sequential", false, "Invoke ctest once per test instead of once per build directory")
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter tests by name pattern (supports wildcards, e.g. 'unit_*' or '*Parser*')")
	runCmd.Flags().StringSliceVarP(&flags.Labels, "label", "l", nil, "Only run tests carrying one of these labels")
	runCmd.Flags().BoolVar(&flags.NoBuild, "no-build", false, "Skip building before running")
	runCmd.Flags().BoolVar(&flags.Debug, "debug", false, "Run each test under the configured debugger")
	runCmd.Flags().BoolVar(&flags.Legacy, "legacy", false, "Use ctest -N discovery even when json-v1 is available")
	runCmd.Flags().StringVar(&flags.ReportPath, "report", "", "Write a JSON run report to this file")
	rootCmd.AddCommand(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered tests",
		Long:  "Discover and list CTest tests without running them; tests that failed in the last run are marked [F]",
		RunE:  func(cmd *cobra.Command, args []string) error { return c.List.Execute(cmd, args) },
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter tests by name pattern (supports wildcards, e.g. 'unit_*' or '*Parser*')")
	listCmd.Flags().StringSliceVarP(&flags.Labels, "label", "l", nil, "Only list tests carrying one of these labels")
	listCmd.Flags().BoolVar(&flags.ShowLabels, "labels", false, "Show test labels")
	listCmd.Flags().BoolVar(&flags.Legacy, "legacy", false, "Use ctest -N discovery even when json-v1 is available")
	rootCmd.AddCommand(listCmd)

	resultsCmd := &cobra.Command{
		Use:   "results",
		Short: "Show the last ctest results",
		Long:  "Display the Test.xml of the last ctest run of each build directory",
		RunE:  func(cmd *cobra.Command, args []string) error { return c.Results.Execute(cmd, args) },
	}
	resultsCmd.Flags().BoolVarP(&flags.View, "view", "v", false, "Open the results in an interactive viewer")
	rootCmd.AddCommand(resultsCmd)
}
