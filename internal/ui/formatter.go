package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"ctp/internal/config"
	"ctp/internal/domain"
	"ctp/internal/tree"
)

// Formatter formats and displays output
type Formatter struct {
	config *config.Config
	out    io.Writer
}

// NewFormatter creates a new Formatter writing to out, or stdout when nil
func NewFormatter(cfg *config.Config, out io.Writer) *Formatter {
	if out == nil {
		out = os.Stdout
	}
	return &Formatter{config: cfg, out: out}
}

// StatusProvider returns the run status of a node, if it has one
type StatusProvider func(nodeID string) (domain.NodeStatus, bool)

// PrintTestList prints the test tree of each build directory.
// Leaves with a failing status are marked [F].
func (f *Formatter) PrintTestList(projects []*tree.Node, showLabels bool, status StatusProvider) {
	total := 0
	for _, p := range projects {
		total += len(p.Leaves())
	}
	fmt.Fprintln(f.out, color.GreenString("Found %d test(s) in %d build directory(ies):", total, len(projects)))
	fmt.Fprintln(f.out)

	for i, p := range projects {
		fmt.Fprintln(f.out, color.CyanString(p.Describe()))
		f.printChildren(p.Children, "", showLabels, status)
		if i < len(projects)-1 {
			fmt.Fprintln(f.out)
		}
	}
}

func (f *Formatter) printChildren(children []*tree.Node, prefix string, showLabels bool, status StatusProvider) {
	for i, child := range children {
		last := i == len(children)-1
		connector, indent := "├── ", "│   "
		if last {
			connector, indent = "└── ", "    "
		}

		line := child.Describe()
		if child.IsLeaf() {
			line = color.YellowString(line)
			if entry, ok := child.Entry(); ok && showLabels && len(entry.Labels) > 0 {
				line += " " + color.HiBlackString("[%s]", strings.Join(entry.Labels, ", "))
			}
		} else {
			line = color.CyanString(line)
		}
		if status != nil {
			if st, ok := status(child.ID); ok && st.State.IsFailure() {
				line += " " + color.RedString("[F]")
			}
		}
		fmt.Fprintf(f.out, "%s%s%s\n", prefix, connector, line)
		f.printChildren(child.Children, prefix+indent, showLabels, status)
	}
}

// PrintRunTable prints one row per leaf with its final state
func (f *Formatter) PrintRunTable(projects []*tree.Node, report domain.RunReport, status StatusProvider) {
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetTitle("Test Results")
	t.AppendHeader(table.Row{"Build", "Test", "Duration", "Status", "Message"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Build", AutoMerge: true},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Message", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, p := range projects {
		project, _ := p.Project()
		for _, leaf := range p.Leaves() {
			st, ok := status(leaf.ID)
			if !ok {
				continue
			}
			t.AppendRow(table.Row{f.relative(project.BuildDir), leaf.Label, formatDuration(st.Duration), stateText(st.State), st.Message})
		}
		t.AppendSeparator()
	}

	meta := report.Meta
	switch {
	case meta.Failed+meta.Errored > 0:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	case meta.Skipped > 0:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}
	t.AppendFooter(table.Row{"TOTAL", meta.TotalTests, meta.Duration, overallText(meta), ""})
	t.Render()
}

// PrintSummary prints the closing line of a run
func (f *Formatter) PrintSummary(report domain.RunReport, code domain.ResultCode) {
	meta := report.Meta
	fmt.Fprintln(f.out)
	switch {
	case code == domain.ResultNoTests:
		fmt.Fprintln(f.out, color.YellowString("No tests to run"))
	case code != domain.ResultSuccess && code != domain.ResultToolFailed:
		fmt.Fprintln(f.out, color.RedString("✗ %s (code %d)", code, int(code)))
	case meta.Failed+meta.Errored == 0:
		fmt.Fprintln(f.out, color.GreenString("✓ %d passed, %d skipped in %.2fs", meta.Passed, meta.Skipped, meta.DurationSeconds))
	default:
		fmt.Fprintln(f.out, color.RedString("✗ %d failed, %d errored, %d passed, %d skipped in %.2fs",
			meta.Failed, meta.Errored, meta.Passed, meta.Skipped, meta.DurationSeconds))
	}
}

// PrintSnapshot prints the content of a result file
func (f *Formatter) PrintSnapshot(buildDir string, snapshot *domain.TestingSnapshot) {
	if snapshot == nil {
		fmt.Fprintln(f.out, color.YellowString("%s: no test results", buildDir))
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetTitle(f.relative(buildDir))
	t.AppendHeader(table.Row{"Test", "Status", "Time (s)", "Exit", "Completion"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Time (s)", Align: text.AlignRight},
		{Name: "Exit", Align: text.AlignRight},
	})
	for i := range snapshot.Tests {
		r := &snapshot.Tests[i]
		t.AppendRow(table.Row{
			r.Name,
			statusText(r.Status),
			measurementValue(r, domain.MeasurementExecutionTime),
			measurementValue(r, domain.MeasurementExitValue),
			measurementValue(r, domain.MeasurementCompletionStatus),
		})
	}
	if snapshot.EndDateTime != "" {
		t.AppendFooter(table.Row{"Finished", snapshot.EndDateTime, snapshot.ElapsedMinutes + " min", "", ""})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// relative shortens a build directory to a path under the project root
func (f *Formatter) relative(dir string) string {
	rel, err := filepath.Rel(f.config.ProjectPath, dir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return dir
	}
	return rel
}

func measurementValue(r *domain.TestResult, name string) string {
	if m, ok := r.Measurement(name); ok {
		return m.Value
	}
	return "-"
}

func statusText(s domain.TestStatus) string {
	switch s {
	case domain.TestStatusPassed:
		return color.GreenString("PASS")
	case domain.TestStatusFailed:
		return color.RedString("FAIL")
	}
	return color.YellowString("NOT RUN")
}

func stateText(s domain.RunState) string {
	switch s {
	case domain.RunStatePassed:
		return "PASS"
	case domain.RunStateFailed:
		return "FAIL"
	case domain.RunStateErrored:
		return "ERROR"
	case domain.RunStateSkipped:
		return "SKIP"
	}
	return strings.ToUpper(string(s))
}

func overallText(meta domain.RunReportMeta) string {
	switch {
	case meta.Failed+meta.Errored > 0:
		return "FAIL"
	case meta.Skipped > 0:
		return "SKIP"
	}
	return "PASS"
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Truncate(time.Millisecond).String()
}
