// Package patch renders unified diffs of rewritten corpus documents.
package patch

import (
	"bytes"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
	sgdiff "github.com/sourcegraph/go-diff/diff"
)

// DefaultContext is the number of context lines around each change
const DefaultContext = 3

// Stats captures unified diff statistics
type Stats struct {
	Hunks   int `json:"hunks"`
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

// Diff is a unified diff between two revisions of one file
type Diff struct {
	Text  string `json:"text,omitempty"`
	Stats Stats  `json:"stats"`
}

// Empty returns true when both revisions are identical
func (d *Diff) Empty() bool {
	return d == nil || d.Text == ""
}

// Generate produces a unified diff between old and new content of location
func Generate(oldContent, newContent []byte, location string, contextLines int) (*Diff, error) {
	if contextLines <= 0 {
		contextLines = DefaultContext
	}
	if bytes.Equal(oldContent, newContent) {
		return &Diff{}, nil
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(oldContent)),
		B:        difflib.SplitLines(string(newContent)),
		FromFile: location + " (original)",
		ToFile:   location + " (rewritten)",
		Context:  contextLines,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return nil, err
	}
	stats, err := Count(text)
	if err != nil {
		return nil, err
	}
	return &Diff{Text: text, Stats: *stats}, nil
}

// Count parses a single file unified diff and counts hunks and changed lines
func Count(text string) (*Stats, error) {
	stats := &Stats{}
	if text == "" {
		return stats, nil
	}
	fileDiff, err := sgdiff.ParseFileDiff([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}
	stats.Hunks = len(fileDiff.Hunks)
	for _, hunk := range fileDiff.Hunks {
		for _, line := range bytes.SplitAfter(hunk.Body, []byte("\n")) {
			if len(line) == 0 {
				continue
			}
			switch line[0] {
			case '+':
				stats.Added++
			case '-':
				stats.Removed++
			}
		}
	}
	return stats, nil
}
