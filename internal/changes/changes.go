// Package changes compares point-in-time snapshots of a file and summarizes the edit.
package changes

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"github.com/sourcegraph/go-diff/diff"
)

const (
	beforeLabelPrefix    = "a/"
	afterLabelPrefix     = "b/"
	addedLinePrefix      = "+"
	removedLinePrefix    = "-"
	summaryFormat        = "+%d -%d"
	errorSnapshotFormat  = "snapshot %s: %w"
	errorParseDiffFormat = "parse diff of %s: %w"
)

// Snapshot is the content of a file at one point in time.
type Snapshot struct {
	Path    string
	Content []byte
}

// Take reads path.
func Take(path string) (Snapshot, error) {
	// #nosec G304
	content, readError := os.ReadFile(path)
	if readError != nil {
		return Snapshot{}, fmt.Errorf(errorSnapshotFormat, path, readError)
	}
	return Snapshot{Path: path, Content: content}, nil
}

// Report describes the difference between two snapshots.
type Report struct {
	Changed bool
	Added   int
	Removed int
	Unified string
}

// Summary renders the line counts as "+added -removed".
func (report Report) Summary() string {
	return fmt.Sprintf(summaryFormat, report.Added, report.Removed)
}

// Compare diffs before against after. Identical content yields an unchanged report.
func Compare(before Snapshot, after Snapshot) (Report, error) {
	if bytes.Equal(before.Content, after.Content) {
		return Report{}, nil
	}
	beforeText := string(before.Content)
	afterText := string(after.Content)
	edits := myers.ComputeEdits(span.URIFromPath(before.Path), beforeText, afterText)
	unified := fmt.Sprint(gotextdiff.ToUnified(beforeLabelPrefix+before.Path, afterLabelPrefix+after.Path, beforeText, edits))

	report := Report{Changed: true, Unified: unified}
	if unified == "" {
		return report, nil
	}
	fileDiff, parseError := diff.ParseFileDiff([]byte(unified))
	if parseError != nil {
		return report, fmt.Errorf(errorParseDiffFormat, before.Path, parseError)
	}
	for _, hunk := range fileDiff.Hunks {
		for _, line := range strings.Split(string(hunk.Body), "\n") {
			switch {
			case strings.HasPrefix(line, addedLinePrefix):
				report.Added++
			case strings.HasPrefix(line, removedLinePrefix):
				report.Removed++
			}
		}
	}
	return report, nil
}
