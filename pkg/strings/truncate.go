package strings

import (
	"strings"
)

// DefaultReasonMaxLen bounds failure reasons carried into logs, metrics, and
// Kubernetes Events. Wrapped API and YAML errors can span several lines;
// past this length they stop adding diagnostic value.
const DefaultReasonMaxLen = 200

// DefaultValueMaxLen bounds values rendered into table cells.
const DefaultValueMaxLen = 100

// MinTruncateLen is the minimum maxLen value for TruncateOneLine.
// Values smaller than this would not leave room for meaningful content plus "...".
const MinTruncateLen = 4

// TruncateOneLine collapses a string onto a single line and truncates it to
// maxLen characters. It replaces newlines with spaces, collapses whitespace
// runs into single spaces, and adds "..." if truncated.
//
// The function handles Unicode correctly by operating on runes rather than
// bytes, preventing truncation in the middle of multi-byte characters.
//
// If maxLen is less than MinTruncateLen (4), it is clamped to MinTruncateLen
// to ensure there is room for at least one character plus "...".
func TruncateOneLine(s string, maxLen int) string {
	// Clamp maxLen to minimum value to prevent panic from negative slice index
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	// Use strings.Fields to split on any whitespace (handles \n, \r, \t,
	// multiple spaces) then rejoin with single spaces.
	s = strings.Join(strings.Fields(s), " ")

	// Use rune-based slicing to handle Unicode correctly
	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
