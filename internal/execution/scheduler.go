package execution

import "ctp/internal/tree"

// Scope is the set of requested leaves owned by one build directory
type Scope struct {
	Project  *tree.Node
	BuildDir string
	Leaves   []*tree.Node
}

// Scheduler distributes leaves across build scopes
type Scheduler interface {
	Schedule(leaves []*tree.Node) (scopes []Scope, orphans []*tree.Node)
}

// ScopeScheduler groups leaves by owning project, keeping pre-order
type ScopeScheduler struct{}

// NewScopeScheduler creates a new ScopeScheduler
func NewScopeScheduler() *ScopeScheduler {
	return &ScopeScheduler{}
}

// Schedule groups leaves by owner. Leaves without an owner are returned as orphans.
func (s *ScopeScheduler) Schedule(leaves []*tree.Node) ([]Scope, []*tree.Node) {
	var scopes []Scope
	var orphans []*tree.Node
	index := make(map[*tree.Node]int)

	for _, leaf := range leaves {
		owner, ok := leaf.Owner()
		if !ok {
			orphans = append(orphans, leaf)
			continue
		}
		project, ok := owner.Project()
		if !ok {
			orphans = append(orphans, leaf)
			continue
		}
		i, seen := index[owner]
		if !seen {
			i = len(scopes)
			index[owner] = i
			scopes = append(scopes, Scope{Project: owner, BuildDir: project.BuildDir})
		}
		scopes[i].Leaves = append(scopes[i].Leaves, leaf)
	}
	return scopes, orphans
}
