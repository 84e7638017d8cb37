package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"ctp/internal/domain"
	"ctp/internal/parser"
)

// ErrorViewer displays the tests of a result file in an interactive TUI,
// failing tests first
type ErrorViewer struct{}

// NewErrorViewer creates a new ErrorViewer
func NewErrorViewer() *ErrorViewer {
	return &ErrorViewer{}
}

// View runs the TUI until the user exits
func (ev *ErrorViewer) View(buildDir string, snapshot *domain.TestingSnapshot) error {
	if snapshot == nil || len(snapshot.Tests) == 0 {
		color.Yellow("No test results in %s", buildDir)
		return nil
	}

	tests := orderForViewing(snapshot.Tests)
	failing := 0
	for _, r := range tests {
		if r.Status != domain.TestStatusPassed {
			failing++
		}
	}

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	for i, r := range tests {
		list.AddItem(listItemText(i, r), "", 0, nil)
	}
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(tview.NewFlex().
			SetDirection(tview.FlexColumn).
			AddItem(detailsView, 0, 1, false).
			AddItem(tview.NewBox(), 2, 0, false), 0, 1, false)

	body := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	header := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true).
		SetText(fmt.Sprintf(" %s: %d tests, [red]%d failing[white] | ↑↓ navigate, → details, ← back, Ctrl+C exit ",
			buildDir, len(tests), failing))

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index < 0 || index >= len(tests) {
			return
		}
		statsView.SetText(formatTestStats(tests[index]))
		detailsView.SetText(formatTestDetails(tests[index])).ScrollToBeginning()
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})
	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})
	list.SetChangedFunc(func(int, string, string, rune) { updateDetails() })
	updateDetails()

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 1, 0, false).
		AddItem(body, 0, 1, true)

	if err := app.SetRoot(layout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// orderForViewing puts non-passing tests first, keeping file order otherwise
func orderForViewing(tests []domain.TestResult) []domain.TestResult {
	out := append([]domain.TestResult(nil), tests...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Status != domain.TestStatusPassed && out[j].Status == domain.TestStatusPassed
	})
	return out
}

func listItemText(index int, r domain.TestResult) string {
	switch r.Status {
	case domain.TestStatusPassed:
		return fmt.Sprintf("[green]✓[white] %d. %s", index+1, r.Name)
	case domain.TestStatusFailed:
		return fmt.Sprintf("[red]✗[white] %d. %s", index+1, r.Name)
	}
	return fmt.Sprintf("[yellow]-[white] %d. %s", index+1, r.Name)
}

// formatTestStats formats the header line of the details pane
func formatTestStats(r domain.TestResult) string {
	path := r.FullName
	if path == "" {
		path = r.Name
	}
	return fmt.Sprintf("[cyan]test:[white] [yellow]%s[white]\n[cyan]status:[white] %s", path, r.Status)
}

// formatTestDetails formats one result using tview color tags
func formatTestDetails(r domain.TestResult) string {
	var b strings.Builder

	if r.FullCommandLine != "" {
		fmt.Fprintf(&b, "[cyan]Command:[white] %s\n\n", tview.Escape(r.FullCommandLine))
	}

	if len(r.Measurements) > 0 {
		names := make([]string, 0, len(r.Measurements))
		for name := range r.Measurements {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("[yellow]Measurements:[white]\n")
		for _, name := range names {
			fmt.Fprintf(&b, "  %s: %s\n", name, tview.Escape(r.Measurements[name].Value))
		}
		b.WriteString("\n")
	}

	if decorations := parser.ParseTestOutput(r.Output); len(decorations) > 0 {
		b.WriteString("[red]Failures:[white]\n")
		for _, d := range decorations {
			fmt.Fprintf(&b, "  %s:%d\n", tview.Escape(d.File), d.Line+1)
		}
		b.WriteString("\n")
	}

	if r.Output != "" {
		fmt.Fprintf(&b, "[yellow]Output:[white]\n%s", tview.Escape(r.Output))
	}
	return b.String()
}
