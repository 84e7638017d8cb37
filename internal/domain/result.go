package domain

import "time"

// TestStatus is the status attribute of a <Test> element in Test.xml
type TestStatus string

const (
	TestStatusPassed TestStatus = "passed"
	TestStatusFailed TestStatus = "failed"
	TestStatusNotRun TestStatus = "notrun"
)

// Well-known named measurements written by ctest
const (
	MeasurementExecutionTime    = "Execution Time"
	MeasurementExitValue        = "Exit Value"
	MeasurementCompletionStatus = "Completion Status"
)

// Measurement is a single named diagnostic value attached to a test result
type Measurement struct {
	Type  string
	Name  string
	Value string
}

// TestResult is one executed test as recorded in the result file
type TestResult struct {
	Name            string
	FullName        string
	Path            string
	FullCommandLine string
	Status          TestStatus
	Measurements    map[string]Measurement
	Output          string
	// DecodeFailure is set when an encoded value of this test could not be
	// decoded; the affected values keep their raw text
	DecodeFailure string
}

// Measurement returns the named measurement, if present
func (r *TestResult) Measurement(name string) (Measurement, bool) {
	m, ok := r.Measurements[name]
	return m, ok
}

// TestingSnapshot is the full content of one result file.
// An empty TestList with no Tests means testing ran with zero tests.
type TestingSnapshot struct {
	TestList       []string
	Tests          []TestResult
	EndDateTime    string
	ElapsedMinutes string
}

// Find returns the result for the given test name
func (s *TestingSnapshot) Find(name string) (*TestResult, bool) {
	for i := range s.Tests {
		if s.Tests[i].Name == name {
			return &s.Tests[i], true
		}
	}
	return nil, false
}

// RunState is the lifecycle state of a node during an orchestrated run
type RunState string

const (
	RunStateEnqueued RunState = "enqueued"
	RunStateRunning  RunState = "running"
	RunStatePassed   RunState = "passed"
	RunStateFailed   RunState = "failed"
	RunStateErrored  RunState = "errored"
	RunStateSkipped  RunState = "skipped"
)

// IsTerminal reports whether no further transition is possible
func (s RunState) IsTerminal() bool {
	switch s {
	case RunStatePassed, RunStateFailed, RunStateErrored, RunStateSkipped:
		return true
	}
	return false
}

// IsFailure reports whether the state counts against the run
func (s RunState) IsFailure() bool {
	return s == RunStateFailed || s == RunStateErrored
}

// NodeStatus is the accumulated outcome of one node in a run
type NodeStatus struct {
	NodeID      string              `json:"node_id"`
	State       RunState            `json:"state"`
	Message     string              `json:"message,omitempty"`
	Duration    time.Duration       `json:"duration"`
	Decorations []FailureDecoration `json:"decorations,omitempty"`
}

// ResultCode is the caller-facing outcome of a run or discovery pass
type ResultCode int

const (
	ResultSuccess        ResultCode = 0
	ResultToolFailed     ResultCode = -1
	ResultNoTests        ResultCode = -2
	ResultToolPathUnset  ResultCode = -3
	ResultPresetRequired ResultCode = -4
)

func (c ResultCode) String() string {
	switch c {
	case ResultSuccess:
		return "success"
	case ResultToolFailed:
		return "test tool reported failure"
	case ResultNoTests:
		return "no tests"
	case ResultToolPathUnset:
		return "ctest path is not set"
	case ResultPresetRequired:
		return "test preset required but not selected"
	}
	return "unknown"
}

// RunReportMeta contains metadata about a finished run
type RunReportMeta struct {
	RunID           string  `json:"run_id"`
	Code            int     `json:"code"`
	TotalTests      int     `json:"total_tests"`
	Passed          int     `json:"passed"`
	Failed          int     `json:"failed"`
	Errored         int     `json:"errored"`
	Skipped         int     `json:"skipped"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Jobs            int     `json:"jobs"`
	Timestamp       string  `json:"timestamp"`
}

// RunReport is the exported outcome of a single run
type RunReport struct {
	Meta    RunReportMeta `json:"meta"`
	Details []NodeStatus  `json:"details"`
}
