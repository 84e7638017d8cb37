package parser

import (
	"fmt"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"ctp/internal/domain"
)

var (
	catchHostPattern    = regexp.MustCompile(`is a Catch .* host application\.`)
	catchFailurePosix   = regexp.MustCompile(`^(.*):(\d+): FAILED:`)
	catchFailureWindows = regexp.MustCompile(`^(.*)\((\d+)\): FAILED:`)
)

// ParseTestOutput extracts failure decorations from the captured output of a test.
// Only Catch2 output is understood; anything else yields no decorations.
func ParseTestOutput(output string) []domain.FailureDecoration {
	if !catchHostPattern.MatchString(output) {
		return nil
	}
	return parseCatchOutput(output, runtime.GOOS == "windows")
}

func parseCatchOutput(output string, windows bool) []domain.FailureDecoration {
	pattern := catchFailurePosix
	if windows {
		pattern = catchFailureWindows
	}

	rawLines := strings.Split(output, "\n")
	var decorations []domain.FailureDecoration
	for cursor, raw := range rawLines {
		match := pattern.FindStringSubmatch(strings.TrimSpace(raw))
		if match == nil {
			continue
		}
		line, err := strconv.Atoi(match[2])
		if err != nil {
			continue
		}

		var message strings.Builder
		message.WriteString("~~~c++\n")
		for i := cursor; i < len(rawLines); i++ {
			expr := rawLines[i]
			if strings.HasPrefix(expr, "======") || strings.HasPrefix(expr, "------") {
				break
			}
			message.WriteString(expr)
			message.WriteString("\n")
		}

		decorations = append(decorations, domain.FailureDecoration{
			File:         match[1],
			Line:         line - 1,
			HoverMessage: fmt.Sprintf("%s\n~~~", message.String()),
		})
	}
	return decorations
}
