package ui

import "ctp/internal/domain"

// Viewer displays test results in an interactive TUI
type Viewer interface {
	View(buildDir string, snapshot *domain.TestingSnapshot) error
}
