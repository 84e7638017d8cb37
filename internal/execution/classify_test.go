package execution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ctp/internal/domain"
)

func result(status domain.TestStatus, measurements ...domain.Measurement) *domain.TestResult {
	r := &domain.TestResult{Name: "unit_core", Status: status, Measurements: map[string]domain.Measurement{}}
	for _, m := range measurements {
		r.Measurements[m.Name] = m
	}
	return r
}

func measure(name, value string) domain.Measurement {
	return domain.Measurement{Type: "text/string", Name: name, Value: value}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		result   *domain.TestResult
		state    domain.RunState
		message  string
		duration time.Duration
	}{
		{
			name:    "absent from snapshot",
			result:  nil,
			state:   domain.RunStateErrored,
			message: "Test results not found.",
		},
		{
			name: "failed with exit code",
			result: result(domain.TestStatusFailed,
				measure(domain.MeasurementExitValue, "1"),
				measure(domain.MeasurementExecutionTime, "0.5")),
			state:    domain.RunStateFailed,
			message:  "Test failed with exit code 1.",
			duration: 500 * time.Millisecond,
		},
		{
			name: "exit code wins over completion status",
			result: result(domain.TestStatusFailed,
				measure(domain.MeasurementExitValue, "2"),
				measure(domain.MeasurementCompletionStatus, "Completed")),
			state:   domain.RunStateFailed,
			message: "Test failed with exit code 2.",
		},
		{
			name:    "timeout has completion status only",
			result:  result(domain.TestStatusFailed, measure(domain.MeasurementCompletionStatus, "Timeout")),
			state:   domain.RunStateErrored,
			message: `Test failed with completion status "Timeout".`,
		},
		{
			name:    "not run without measurements",
			result:  result(domain.TestStatusNotRun),
			state:   domain.RunStateErrored,
			message: "Test failed. Please check output for more information.",
		},
		{
			name: "passed ignores exit value",
			result: result(domain.TestStatusPassed,
				measure(domain.MeasurementExitValue, "0"),
				measure(domain.MeasurementExecutionTime, "1.25")),
			state:    domain.RunStatePassed,
			duration: 1250 * time.Millisecond,
		},
		{
			name: "decode failure overrides verdict",
			result: &domain.TestResult{
				Status:        domain.TestStatusPassed,
				DecodeFailure: "output: gzip: invalid header",
			},
			state:   domain.RunStateErrored,
			message: "Test results could not be decoded (output: gzip: invalid header).",
		},
		{
			name:   "passed with bad execution time",
			result: result(domain.TestStatusPassed, measure(domain.MeasurementExecutionTime, "n/a")),
			state:  domain.RunStatePassed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := Classify("id", tt.result)
			assert.Equal(t, "id", status.NodeID)
			assert.Equal(t, tt.state, status.State)
			assert.Equal(t, tt.message, status.Message)
			assert.Equal(t, tt.duration, status.Duration)
		})
	}
}

func TestClassify_Decorations(t *testing.T) {
	r := result(domain.TestStatusFailed, measure(domain.MeasurementExitValue, "1"))
	r.Output = "plain output with no framework markers"

	status := Classify("id", r)
	assert.Equal(t, domain.RunStateFailed, status.State)
	assert.Empty(t, status.Decorations)
}
