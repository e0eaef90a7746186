package report

import (
	"fmt"
	"io"
	"strings"
)

// WriteText renders a human readable summary
func (c *Corpus) WriteText(w io.Writer) error {
	buffer := &strings.Builder{}
	for _, module := range c.Modules {
		fmt.Fprintf(buffer, "module %s (%s)\n", module.Key, module.Directory)
		switch {
		case module.Skipped:
			fmt.Fprintf(buffer, "  skipped: no corpus document\n")
			continue
		case module.Failed():
			fmt.Fprintf(buffer, "  error: %s\n", module.Error)
			continue
		}
		fmt.Fprintf(buffer, "  flows: %d, shape: %s\n", module.Flows, module.Shape)
		if module.Merged > 0 || module.Normalized > 0 {
			fmt.Fprintf(buffer, "  merged: %d, normalized: %d\n", module.Merged, module.Normalized)
		}
		if module.Graph != nil {
			fmt.Fprintf(buffer, "  related flows: %d curated, %d positional, %d stale entries\n",
				module.Graph.Curated, module.Graph.Fallback, len(module.Graph.Stale))
		}
		for _, issue := range module.Issues {
			fmt.Fprintf(buffer, "  related flow %s of %s: %s\n", issue.Related, issue.FlowID, issue.Kind)
		}
		if module.Unresolved == 0 {
			fmt.Fprintf(buffer, "  references: %d checked, all resolved\n", module.Checked)
		} else {
			fmt.Fprintf(buffer, "  references: %d/%d unresolved\n", module.Unresolved, module.Checked)
		}
		for _, missing := range module.Missing {
			fmt.Fprintf(buffer, "    %s: %s\n", missing.FlowID, missing.Path)
			if missing.Suggestion != "" {
				fmt.Fprintf(buffer, "      possible match: %s\n", missing.Suggestion)
			}
		}
		if module.Diff != nil && !module.Diff.Empty() {
			fmt.Fprintf(buffer, "  pending change: %d hunks, +%d -%d\n",
				module.Diff.Stats.Hunks, module.Diff.Stats.Added, module.Diff.Stats.Removed)
		}
		if module.Written {
			fmt.Fprintf(buffer, "  written: %s\n", module.URL)
		}
	}
	fmt.Fprintf(buffer, "total: %d references checked, %d unresolved (%d with suggestion), %d modules failed (%d malformed), %d skipped\n",
		c.Checked, c.Unresolved, c.Suggested, c.Failed, c.Malformed, c.Skipped)
	_, err := io.WriteString(w, buffer.String())
	return err
}
