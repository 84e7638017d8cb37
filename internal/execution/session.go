package execution

import (
	"time"

	"github.com/google/uuid"

	"ctp/internal/domain"
	"ctp/internal/tree"
)

// Session is the state of one orchestrated run
type Session struct {
	ID        string
	Requested []*tree.Node
	StartedAt time.Time
	Duration  time.Duration

	order    []string
	statuses map[string]domain.NodeStatus
}

func newSession(requested []*tree.Node) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Requested: requested,
		StartedAt: time.Now(),
		statuses:  make(map[string]domain.NodeStatus),
	}
}

func (s *Session) record(status domain.NodeStatus) {
	if _, seen := s.statuses[status.NodeID]; !seen {
		s.order = append(s.order, status.NodeID)
	}
	s.statuses[status.NodeID] = status
}

// Status returns the recorded status of a node
func (s *Session) Status(nodeID string) (domain.NodeStatus, bool) {
	st, ok := s.statuses[nodeID]
	return st, ok
}

// Statuses returns all recorded statuses in the order they were first reported
func (s *Session) Statuses() []domain.NodeStatus {
	out := make([]domain.NodeStatus, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.statuses[id])
	}
	return out
}

// Report summarizes the run over its leaf statuses
func (s *Session) Report(code domain.ResultCode, jobs int) domain.RunReport {
	meta := domain.RunReportMeta{
		RunID:           s.ID,
		Code:            int(code),
		Duration:        s.Duration.String(),
		DurationSeconds: s.Duration.Seconds(),
		Jobs:            jobs,
		Timestamp:       s.StartedAt.Format(time.RFC3339),
	}
	leaves := s.leafIDs()
	details := s.Statuses()
	for _, st := range details {
		if _, leaf := leaves[st.NodeID]; !leaf {
			continue
		}
		meta.TotalTests++
		switch st.State {
		case domain.RunStatePassed:
			meta.Passed++
		case domain.RunStateFailed:
			meta.Failed++
		case domain.RunStateErrored:
			meta.Errored++
		case domain.RunStateSkipped:
			meta.Skipped++
		}
	}
	return domain.RunReport{Meta: meta, Details: details}
}

func (s *Session) leafIDs() map[string]struct{} {
	ids := make(map[string]struct{})
	for _, n := range s.Requested {
		for _, leaf := range n.Leaves() {
			ids[leaf.ID] = struct{}{}
		}
	}
	return ids
}
