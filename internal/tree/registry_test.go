package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctp/internal/domain"
)

func catalog(names ...string) []domain.CatalogEntry {
	out := make([]domain.CatalogEntry, 0, len(names))
	for _, n := range names {
		out = append(out, domain.CatalogEntry{Name: n, Labels: []string{}})
	}
	return out
}

func TestRegistry_Replace(t *testing.T) {
	r := NewRegistry()
	project := r.Replace("/build", catalog("unit_core", "Math.Add", "Math.Sub", "IO.Read"))

	assert.Equal(t, KindProject, project.Kind)
	require.Len(t, project.Children, 3) // unit_core, Math, IO

	assert.Equal(t, KindTest, project.Children[0].Kind)
	math := project.Children[1]
	assert.Equal(t, KindGroup, math.Kind)
	assert.Equal(t, "Math", math.Label)
	require.Len(t, math.Children, 2)

	leaves := project.Leaves()
	require.Len(t, leaves, 4)
	for _, leaf := range leaves {
		assert.True(t, leaf.IsLeaf())
		assert.Empty(t, leaf.Children)
		entry, ok := r.Entry(leaf.ID)
		require.True(t, ok)
		assert.Equal(t, leaf.Label, entry.Name)
		owner, ok := leaf.Owner()
		require.True(t, ok)
		assert.Same(t, project, owner)
	}
}

func TestRegistry_ReplaceDiscardsPreviousCatalog(t *testing.T) {
	r := NewRegistry()
	r.Replace("/build", catalog("old_test", "Suite.Old"))
	r.Replace("/build", catalog("new_test"))

	_, ok := r.Get(TestID("/build", "old_test"))
	assert.False(t, ok)
	_, ok = r.Get(groupID("/build", "Suite"))
	assert.False(t, ok)
	_, ok = r.Get(TestID("/build", "new_test"))
	assert.True(t, ok)
	assert.Len(t, r.Projects(), 1)
	assert.Len(t, r.Leaves(), 1)
}

func TestRegistry_MultipleProjects(t *testing.T) {
	r := NewRegistry()
	r.Replace("/b/release", catalog("a"))
	r.Replace("/b/debug", catalog("a", "b"))

	projects := r.Projects()
	require.Len(t, projects, 2)
	assert.Equal(t, "/b/debug", projects[0].ID)
	assert.Len(t, r.Leaves(), 3)

	r.Remove("/b/debug")
	assert.Len(t, r.Projects(), 1)
	_, ok := r.Get(TestID("/b/debug", "b"))
	assert.False(t, ok)
}

func TestRegistry_DuplicateNamesKeepFirst(t *testing.T) {
	r := NewRegistry()
	project := r.Replace("/build", catalog("dup", "dup"))
	assert.Len(t, project.Leaves(), 1)
}

func TestNode_Describe(t *testing.T) {
	r := NewRegistry()
	entries := []domain.CatalogEntry{{Name: "unit_core", Location: &domain.SourceLocation{File: "/src/a.cpp", Line: 11}}}
	project := r.Replace("/build", entries)

	assert.Equal(t, "/build (1 tests)", project.Describe())
	assert.Equal(t, "unit_core  a.cpp:12", project.Children[0].Describe())
	assert.Equal(t, "test", KindTest.String())
}

func TestNode_Owner_Detached(t *testing.T) {
	orphan := &Node{ID: "x", Kind: KindTest, entry: &domain.CatalogEntry{Name: "x"}}
	_, ok := orphan.Owner()
	assert.False(t, ok)
}

func TestRegistry_ResetStates(t *testing.T) {
	r := NewRegistry()
	project := r.Replace("/build", catalog("a", "Math.Add"))
	for _, leaf := range r.Leaves() {
		leaf.State = domain.RunStateFailed
	}
	project.State = domain.RunStateFailed

	r.ResetStates()

	project.Walk(func(n *Node) {
		assert.Empty(t, n.State, n.ID)
	})
}
