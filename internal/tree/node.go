// Package tree holds the test tree: build scopes (projects), optional groups
// and leaf tests, kept in an explicit registry owned by the caller.
package tree

import (
	"fmt"
	"path/filepath"

	"ctp/internal/domain"
)

// Kind discriminates the node variants
type Kind int

const (
	KindProject Kind = iota // build scope: one configured build directory
	KindGroup               // intermediate grouping, e.g. a GoogleTest suite
	KindTest                // runnable leaf, 1:1 with a catalog entry
)

// Project is the payload of a KindProject node
type Project struct {
	BuildDir string
}

// Node is a tree node. Exactly one payload matches Kind: project for
// KindProject, entry for KindTest; groups carry none.
type Node struct {
	ID       string
	Kind     Kind
	Label    string
	Parent   *Node // lookup only
	Children []*Node

	// State is the last run state; written by runs only
	State domain.RunState

	project *Project
	entry   *domain.CatalogEntry
}

// kindOps is the per-kind behavior table
type kindOps struct {
	name     string
	describe func(n *Node) string
}

var kinds = map[Kind]kindOps{
	KindProject: {
		name: "project",
		describe: func(n *Node) string {
			return fmt.Sprintf("%s (%d tests)", n.project.BuildDir, len(n.Leaves()))
		},
	},
	KindGroup: {
		name: "group",
		describe: func(n *Node) string {
			return fmt.Sprintf("%s (%d tests)", n.Label, len(n.Leaves()))
		},
	},
	KindTest: {
		name: "test",
		describe: func(n *Node) string {
			if loc := n.entry.Location; loc != nil && loc.Line >= 0 {
				return fmt.Sprintf("%s  %s:%d", n.Label, filepath.Base(loc.File), loc.Line+1)
			}
			return n.Label
		},
	},
}

func (k Kind) String() string {
	if ops, ok := kinds[k]; ok {
		return ops.name
	}
	return "unknown"
}

// Describe returns a one-line description of the node
func (n *Node) Describe() string {
	return kinds[n.Kind].describe(n)
}

// IsLeaf reports whether the node is a runnable test
func (n *Node) IsLeaf() bool {
	return n.Kind == KindTest
}

// Entry returns the catalog entry of a leaf
func (n *Node) Entry() (domain.CatalogEntry, bool) {
	if n.entry == nil {
		return domain.CatalogEntry{}, false
	}
	return *n.entry, true
}

// Project returns the project payload of a project node
func (n *Node) Project() (Project, bool) {
	if n.project == nil {
		return Project{}, false
	}
	return *n.project, true
}

// Owner walks up to the project node that owns this node
func (n *Node) Owner() (*Node, bool) {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Kind == KindProject {
			return cur, true
		}
	}
	return nil, false
}

// Leaves returns the leaf tests under n in pre-order
func (n *Node) Leaves() []*Node {
	if n.IsLeaf() {
		return []*Node{n}
	}
	var out []*Node
	for _, child := range n.Children {
		out = append(out, child.Leaves()...)
	}
	return out
}

// Walk visits n and its descendants in pre-order
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, child := range n.Children {
		child.Walk(fn)
	}
}
