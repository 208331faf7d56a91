// Package stacktrace trims runtime stack dumps down to this module's frames.
package stacktrace

import (
	"strings"

	"github.com/samber/lo"
)

const marker = "/internal/"

// InternalPaths returns the "internal/...go:line" locations found in a
// debug.Stack dump, innermost first.
func InternalPaths(stack []byte) []string {
	return lo.FilterMap(strings.Split(string(stack), "\n"), func(line string, _ int) (string, bool) {
		return frame(strings.TrimSpace(line))
	})
}

// frame extracts the file:line part of a stack line that points into an
// internal package. The "+0x.." pc offset is dropped.
func frame(line string) (string, bool) {
	if !strings.Contains(line, ".go:") {
		return "", false
	}

	_, rest, ok := strings.Cut(line, marker)
	if !ok {
		return "", false
	}

	loc, _, _ := strings.Cut(rest, " ")

	return "internal/" + loc, true
}
