package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catchOutput = `
~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~
unit_core is a Catch v2.13.10 host application.
Run with -? for options

-------------------------------------------------------------------------------
adds numbers
-------------------------------------------------------------------------------
/src/a.cpp:10
...............................................................................

/src/a.cpp:12: FAILED:
  REQUIRE( add(1, 1) == 3 )
with expansion:
  2 == 3

===============================================================================
test cases: 1 | 1 failed
`

func TestParseTestOutput(t *testing.T) {
	t.Run("non catch output", func(t *testing.T) {
		assert.Empty(t, ParseTestOutput("[  FAILED  ] Suite.Case"))
	})

	t.Run("posix failure line", func(t *testing.T) {
		decorations := parseCatchOutput(catchOutput, false)
		require.Len(t, decorations, 1)
		assert.Equal(t, "/src/a.cpp", decorations[0].File)
		assert.Equal(t, 11, decorations[0].Line)
		assert.Contains(t, decorations[0].HoverMessage, "REQUIRE( add(1, 1) == 3 )")
		assert.NotContains(t, decorations[0].HoverMessage, "test cases:")
	})

	t.Run("windows failure line", func(t *testing.T) {
		out := "x is a Catch v3 host application.\nC:\\src\\b.cpp(7): FAILED:\n  CHECK( false )\n"
		decorations := parseCatchOutput(out, true)
		require.Len(t, decorations, 1)
		assert.Equal(t, `C:\src\b.cpp`, decorations[0].File)
		assert.Equal(t, 6, decorations[0].Line)
	})

	t.Run("failure at end of output", func(t *testing.T) {
		out := "x is a Catch v2 host application.\n/src/c.cpp:3: FAILED:"
		decorations := parseCatchOutput(out, false)
		require.Len(t, decorations, 1)
		assert.Equal(t, 2, decorations[0].Line)
	})
}
