package commands

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ctp/internal/config"
	"ctp/internal/domain"
	"ctp/internal/execution"
	"ctp/internal/storage"
	"ctp/internal/ui"
)

// ResultError carries a non-success result code out of a command.
// Err is set when the code stems from an error the user has not seen yet.
type ResultError struct {
	Code domain.ResultCode
	Err  error
}

func (e *ResultError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (code %d): %v", e.Code, int(e.Code), e.Err)
	}
	return fmt.Sprintf("%s (code %d)", e.Code, int(e.Code))
}

func (e *ResultError) Unwrap() error { return e.Err }

// RunCommand handles the run command
type RunCommand struct {
	config       *config.Config
	workspace    *workspace
	orchestrator *execution.Orchestrator
	storage      storage.Storage
	formatter    *ui.Formatter
	logger       *log.Logger
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	ws *workspace,
	orchestrator *execution.Orchestrator,
	st storage.Storage,
	formatter *ui.Formatter,
	logger *log.Logger,
) *RunCommand {
	return &RunCommand{
		config:       cfg,
		workspace:    ws,
		orchestrator: orchestrator,
		storage:      st,
		formatter:    formatter,
		logger:       logger,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	projects, err := rc.workspace.load(ctx)
	if err != nil {
		return err
	}

	registry := rc.workspace.registry
	total := len(registry.Leaves())
	if total == 0 {
		color.Yellow("No tests to execute")
		return &ResultError{Code: domain.ResultNoTests}
	}

	registry.ResetStates()

	var progress *ui.ProgressBar
	if !rc.config.Flags.Debug {
		progress = ui.NewProgressBar(total, os.Stderr)
		rc.orchestrator.SetReporter(progress)
	}

	session, code := rc.orchestrator.Execute(ctx, projects)
	if progress != nil {
		progress.Finish()
	}
	report := session.Report(code, rc.config.JobCount())

	if progress != nil && report.Meta.Failed+report.Meta.Errored > 0 {
		if out := progress.CollectedOutput(); out != "" {
			fmt.Println(out)
		}
	}

	rc.formatter.PrintRunTable(projects, report, session.Status)
	rc.formatter.PrintSummary(report, code)

	if path := rc.config.GetReportPath(); path != "" {
		if err := rc.storage.SaveReport(path, report); err != nil {
			return fmt.Errorf("failed to save run report: %w", err)
		}
		rc.logger.Info("report written", "file", path)
	}

	if code != domain.ResultSuccess {
		return &ResultError{Code: code}
	}
	return nil
}
