package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"ctp/internal/domain"
	"ctp/internal/tree"
)

// ProgressBar reports run progress on a terminal bar. It implements
// execution.Reporter.
type ProgressBar struct {
	bar *progressbar.ProgressBar

	mu      sync.Mutex
	passed  int
	failed  int
	skipped int
	output  strings.Builder
}

// NewProgressBar creates a new progress bar for count tests
func NewProgressBar(count int, w io.Writer) *ProgressBar {
	if w == nil {
		w = os.Stderr
	}
	bar := progressbar.NewOptions(count,
		progressbar.OptionSetDescription(describe(0, 0, 0)),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(w),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)

	return &ProgressBar{bar: bar}
}

func describe(passed, failed, skipped int) string {
	return color.CyanString("Running tests: ") +
		color.GreenString("[passed: %d", passed) +
		" | " +
		color.RedString("failed: %d", failed) +
		" | " +
		color.YellowString("skipped: %d]", skipped)
}

func (p *ProgressBar) Enqueued(*tree.Node) {}

func (p *ProgressBar) Started(*tree.Node) {}

// Finished counts terminal leaf states
func (p *ProgressBar) Finished(n *tree.Node, status domain.NodeStatus) {
	if !n.IsLeaf() || !status.State.IsTerminal() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case status.State.IsFailure():
		p.failed++
	case status.State == domain.RunStateSkipped:
		p.skipped++
	default:
		p.passed++
	}
	_ = p.bar.Set(p.passed + p.failed + p.skipped)
	p.bar.Describe(describe(p.passed, p.failed, p.skipped))
}

// Output collects test output for later display
func (p *ProgressBar) Output(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		p.output.WriteString("\n")
	}
}

// CollectedOutput returns everything passed to Output
func (p *ProgressBar) CollectedOutput() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.output.String()
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	_ = p.bar.Finish()
}
