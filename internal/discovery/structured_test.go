package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const structuredListing = `{
	"kind": "ctestInfo",
	"version": {"major": 1, "minor": 0},
	"backtraceGraph": {
		"commands": ["add_test"],
		"files": ["a.cpp", "/src/CMakeLists.txt"],
		"nodes": [
			{"file": 0, "line": 12},
			{"file": 1},
			{"file": 1, "command": 0, "line": 40, "parent": 1}
		]
	},
	"tests": [
		{
			"name": "unit_core",
			"command": ["/build/unit_core", "--reporter", "compact"],
			"backtrace": 0,
			"properties": [{"name": "WORKING_DIRECTORY", "value": "/build"}]
		},
		{
			"name": "unit_io",
			"command": ["/build/unit_io"],
			"backtrace": 2,
			"properties": [{"name": "LABELS", "value": "fast"}]
		},
		{
			"name": "integration",
			"command": ["/build/integration"],
			"backtrace": 1,
			"properties": [{"name": "LABELS", "value": ["slow", "db", "slow"]}]
		},
		{
			"name": "orphan",
			"backtrace": 99
		}
	]
}`

func TestParseStructuredListing(t *testing.T) {
	entries, err := ParseStructuredListing([]byte(structuredListing))
	require.NoError(t, err)
	require.Len(t, entries, 4)

	core := entries[0]
	assert.Equal(t, "unit_core", core.Name)
	assert.Equal(t, []string{"/build/unit_core", "--reporter", "compact"}, core.CommandLine)
	require.NotNil(t, core.Location)
	assert.Equal(t, "a.cpp", core.Location.File)
	assert.Equal(t, 11, core.Location.Line)
	assert.Empty(t, core.Labels)

	io := entries[1]
	require.NotNil(t, io.Location)
	assert.Equal(t, "/src/CMakeLists.txt", io.Location.File)
	assert.Equal(t, 39, io.Location.Line)
	assert.Equal(t, []string{"fast"}, io.Labels)

	integration := entries[2]
	require.NotNil(t, integration.Location)
	assert.Equal(t, -1, integration.Location.Line)
	assert.Equal(t, []string{"db", "slow"}, integration.Labels)

	orphan := entries[3]
	assert.Nil(t, orphan.Location)
	assert.NotNil(t, orphan.CommandLine)
	assert.NotNil(t, orphan.Labels)
}

func TestParseStructuredListing_Errors(t *testing.T) {
	t.Run("invalid json", func(t *testing.T) {
		_, err := ParseStructuredListing([]byte("Test project /build"))
		assert.Error(t, err)
	})

	t.Run("wrong kind", func(t *testing.T) {
		_, err := ParseStructuredListing([]byte(`{"kind": "codemodel"}`))
		assert.Error(t, err)
	})

	t.Run("no tests", func(t *testing.T) {
		entries, err := ParseStructuredListing([]byte(`{"kind": "ctestInfo", "tests": []}`))
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
