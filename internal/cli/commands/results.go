package commands

import (
	"github.com/spf13/cobra"

	"ctp/internal/config"
	"ctp/internal/storage"
	"ctp/internal/ui"
)

// ResultsCommand handles the results command
type ResultsCommand struct {
	config    *config.Config
	workspace *workspace
	storage   storage.Storage
	formatter *ui.Formatter
	viewer    ui.Viewer
}

// NewResultsCommand creates a new ResultsCommand
func NewResultsCommand(cfg *config.Config, ws *workspace, st storage.Storage, formatter *ui.Formatter, viewer ui.Viewer) *ResultsCommand {
	return &ResultsCommand{
		config:    cfg,
		workspace: ws,
		storage:   st,
		formatter: formatter,
		viewer:    viewer,
	}
}

// Execute runs the command
func (rc *ResultsCommand) Execute(cmd *cobra.Command, args []string) error {
	dirs, err := rc.workspace.buildDirs()
	if err != nil {
		return err
	}

	for _, dir := range dirs {
		snapshot, err := rc.storage.Latest(dir)
		if err != nil {
			return err
		}
		if rc.config.Flags.View {
			if err := rc.viewer.View(dir, snapshot); err != nil {
				return err
			}
			continue
		}
		rc.formatter.PrintSnapshot(dir, snapshot)
	}
	return nil
}
