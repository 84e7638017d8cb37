package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctp/internal/domain"
	"ctp/internal/parser"
)

const testXML = `<?xml version="1.0" encoding="UTF-8"?>
<Site Name="host">
  <Testing>
    <TestList>
      <Test>./unit_core</Test>
    </TestList>
    <Test Status="failed">
      <Name>unit_core</Name>
      <Path>.</Path>
      <FullName>./unit_core</FullName>
      <FullCommandLine>/build/unit_core</FullCommandLine>
      <Results>
        <NamedMeasurement type="text/string" name="Exit Value"><Value>1</Value></NamedMeasurement>
        <Measurement><Value>boom</Value></Measurement>
      </Results>
    </Test>
  </Testing>
</Site>
`

type mapReader map[string]string

func (m mapReader) ReadFile(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(data), nil
}

func newStore(files FileReader) *ResultStore {
	return NewResultStore(files, parser.NewCTestParser(), log.New(&strings.Builder{}))
}

func TestResultStore_Latest(t *testing.T) {
	dir := filepath.Join("/", "build")
	tag := filepath.Join(dir, "Testing", "TAG")
	xml := filepath.Join(dir, "Testing", "20240101-1200", "Test.xml")

	t.Run("follows tag file", func(t *testing.T) {
		store := newStore(mapReader{
			tag: "20240101-1200\nExperimental\n",
			xml: testXML,
		})

		snapshot, err := store.Latest(dir)
		require.NoError(t, err)
		require.NotNil(t, snapshot)
		require.Len(t, snapshot.Tests, 1)
		assert.Equal(t, "unit_core", snapshot.Tests[0].Name)
		assert.Equal(t, "boom", snapshot.Tests[0].Output)
	})

	t.Run("missing tag file is no result", func(t *testing.T) {
		snapshot, err := newStore(mapReader{}).Latest(dir)
		assert.NoError(t, err)
		assert.Nil(t, snapshot)
	})

	t.Run("missing result file is no result", func(t *testing.T) {
		snapshot, err := newStore(mapReader{tag: "20240101-1200"}).Latest(dir)
		assert.NoError(t, err)
		assert.Nil(t, snapshot)
	})

	t.Run("empty tag file", func(t *testing.T) {
		store := newStore(mapReader{tag: "  \n"})
		_, err := store.ResultPath(dir)
		assert.True(t, errors.Is(err, domain.ErrMissingResult))
	})

	t.Run("malformed result is an error", func(t *testing.T) {
		store := newStore(mapReader{tag: "20240101-1200", xml: "<Site><Testing><Test Status=\"passed\"/></Testing></Site>"})
		snapshot, err := store.Latest(dir)
		assert.Error(t, err)
		assert.Nil(t, snapshot)
	})
}

func TestResultStore_OSFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Testing", "tag1"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Testing", "TAG"), []byte("tag1\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Testing", "tag1", "Test.xml"), []byte(testXML), 0644))

	snapshot, err := newStore(nil).Latest(dir)
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, []string{"./unit_core"}, snapshot.TestList)
}

func TestResultStore_SaveReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.json")
	report := domain.RunReport{
		Meta: domain.RunReportMeta{RunID: "r1", TotalTests: 1, Failed: 1},
		Details: []domain.NodeStatus{
			{NodeID: "/build::test:unit_core", State: domain.RunStateFailed, Message: "Test failed with exit code 1."},
		},
	}

	require.NoError(t, newStore(nil).SaveReport(path, report))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded domain.RunReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, report, decoded)
}
