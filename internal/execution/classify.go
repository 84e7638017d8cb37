package execution

import (
	"fmt"
	"strconv"
	"time"

	"ctp/internal/domain"
	"ctp/internal/parser"
)

const (
	msgResultsNotFound = "Test results not found."
	msgCheckOutput     = "Test failed. Please check output for more information."
)

// Classify maps one test's entry in a snapshot to a terminal node state.
// A nil result means the test is absent from the snapshot.
func Classify(nodeID string, result *domain.TestResult) domain.NodeStatus {
	status := domain.NodeStatus{NodeID: nodeID}

	if result == nil {
		status.State = domain.RunStateErrored
		status.Message = msgResultsNotFound
		return status
	}

	if result.DecodeFailure != "" {
		status.State = domain.RunStateErrored
		status.Message = fmt.Sprintf("Test results could not be decoded (%s).", result.DecodeFailure)
		return status
	}

	if result.Status != domain.TestStatusPassed {
		if exit, ok := result.Measurement(domain.MeasurementExitValue); ok {
			status.State = domain.RunStateFailed
			status.Message = fmt.Sprintf("Test failed with exit code %s.", exit.Value)
			status.Duration = executionTime(result)
			status.Decorations = parser.ParseTestOutput(result.Output)
			return status
		}
		if completion, ok := result.Measurement(domain.MeasurementCompletionStatus); ok {
			status.State = domain.RunStateErrored
			status.Message = fmt.Sprintf("Test failed with completion status %q.", completion.Value)
			return status
		}
		status.State = domain.RunStateErrored
		status.Message = msgCheckOutput
		return status
	}

	status.State = domain.RunStatePassed
	status.Duration = executionTime(result)
	return status
}

// executionTime reads the Execution Time measurement, in seconds
func executionTime(result *domain.TestResult) time.Duration {
	m, ok := result.Measurement(domain.MeasurementExecutionTime)
	if !ok {
		return 0
	}
	seconds, err := strconv.ParseFloat(m.Value, 64)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
