package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ctp/internal/config"
	"ctp/internal/domain"
	"ctp/internal/storage"
	"ctp/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	workspace *workspace
	storage   storage.Storage
	formatter *ui.Formatter
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	ws *workspace,
	st storage.Storage,
	formatter *ui.Formatter,
) *ListCommand {
	return &ListCommand{
		config:    cfg,
		workspace: ws,
		storage:   st,
		formatter: formatter,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	projects, err := lc.workspace.load(cmd.Context())
	if err != nil {
		return err
	}

	registry := lc.workspace.registry
	total := len(registry.Leaves())
	if total == 0 {
		color.Yellow("No tests found")
		return nil
	}

	statuses, err := lastRun(lc.storage, projects)
	if err != nil {
		lc.workspace.logger.Warn("ignoring unreadable test results", "err", err)
		statuses = nil
	}
	lc.formatter.PrintTestList(projects, lc.config.Flags.ShowLabels, func(id string) (domain.NodeStatus, bool) {
		st, ok := statuses[id]
		return st, ok
	})
	return nil
}
