package utils

import (
	"time"
)

const compactTimestampLayout = "20060102T150405.000Z"

// FormatCompactTimestamp renders value in UTC with millisecond precision and no separators
// that are unsafe in file names.
func FormatCompactTimestamp(value time.Time) string {
	formatted := value.UTC().Format(compactTimestampLayout)
	return formatted[:15] + formatted[16:]
}
