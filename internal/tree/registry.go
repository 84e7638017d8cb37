package tree

import (
	"sort"
	"strings"

	"ctp/internal/domain"
)

// Registry owns the live test tree. It is not safe for concurrent use;
// callers serialize discovery and runs.
type Registry struct {
	projects []*Node
	nodes    map[string]*Node
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{nodes: make(map[string]*Node)}
}

// ProjectID returns the node id of a build directory
func ProjectID(buildDir string) string {
	return buildDir
}

// TestID returns the node id of a test within a build directory
func TestID(buildDir, name string) string {
	return buildDir + "::test:" + name
}

func groupID(buildDir, name string) string {
	return buildDir + "::group:" + name
}

// Replace discards the subtree of buildDir and rebuilds it from entries.
// Tests named "Suite.Case" are grouped under a "Suite" node.
func (r *Registry) Replace(buildDir string, entries []domain.CatalogEntry) *Node {
	r.Remove(buildDir)

	project := &Node{
		ID:      ProjectID(buildDir),
		Kind:    KindProject,
		Label:   buildDir,
		project: &Project{BuildDir: buildDir},
	}
	r.nodes[project.ID] = project

	groups := make(map[string]*Node)
	for i := range entries {
		entry := entries[i]
		parent := project
		if suite, _, ok := strings.Cut(entry.Name, "."); ok && suite != "" {
			group, exists := groups[suite]
			if !exists {
				group = &Node{ID: groupID(buildDir, suite), Kind: KindGroup, Label: suite, Parent: project}
				groups[suite] = group
				project.Children = append(project.Children, group)
				r.nodes[group.ID] = group
			}
			parent = group
		}

		id := TestID(buildDir, entry.Name)
		if _, dup := r.nodes[id]; dup {
			continue
		}
		leaf := &Node{
			ID:     id,
			Kind:   KindTest,
			Label:  entry.Name,
			Parent: parent,
			entry:  &entry,
		}
		parent.Children = append(parent.Children, leaf)
		r.nodes[id] = leaf
	}

	r.projects = append(r.projects, project)
	sort.Slice(r.projects, func(i, j int) bool { return r.projects[i].ID < r.projects[j].ID })
	return project
}

// Remove drops a build directory and its tests
func (r *Registry) Remove(buildDir string) {
	old, ok := r.nodes[ProjectID(buildDir)]
	if !ok {
		return
	}
	old.Walk(func(n *Node) { delete(r.nodes, n.ID) })
	r.projects = removeNode(r.projects, old)
}

// Projects returns the project nodes sorted by build directory
func (r *Registry) Projects() []*Node {
	return r.projects
}

// Get looks a node up by id
func (r *Registry) Get(id string) (*Node, bool) {
	n, ok := r.nodes[id]
	return n, ok
}

// Entry returns the catalog entry of a leaf id
func (r *Registry) Entry(id string) (domain.CatalogEntry, bool) {
	n, ok := r.nodes[id]
	if !ok {
		return domain.CatalogEntry{}, false
	}
	return n.Entry()
}

// Leaves returns every leaf test in the registry in pre-order
func (r *Registry) Leaves() []*Node {
	var out []*Node
	for _, p := range r.projects {
		out = append(out, p.Leaves()...)
	}
	return out
}

// ResetStates clears the run state of every node
func (r *Registry) ResetStates() {
	for _, n := range r.nodes {
		n.State = ""
	}
}

func removeNode(nodes []*Node, target *Node) []*Node {
	out := nodes[:0]
	for _, n := range nodes {
		if n != target {
			out = append(out, n)
		}
	}
	return out
}
