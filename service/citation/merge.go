// Package citation folds the authoritative citations list of a flow or step
// into its legacy source_documents list.
package citation

import "github.com/viant/flowcorpus/model"

// Merge returns citations in order followed by source documents not already
// present, duplicates are dropped by exact string equality
func Merge(citations, sourceDocuments []string) []string {
	result := make([]string, 0, len(citations)+len(sourceDocuments))
	seen := make(map[string]bool, len(citations)+len(sourceDocuments))
	for _, list := range [][]string{citations, sourceDocuments} {
		for _, doc := range list {
			if seen[doc] {
				continue
			}
			seen[doc] = true
			result = append(result, doc)
		}
	}
	return result
}

// MergeFlow merges flow level and step level citations in place. It returns
// the number of objects whose citations field was folded and removed; an
// empty or absent citations field is left alone.
func MergeFlow(flow *model.Flow) int {
	merged := 0
	if len(flow.Citations) > 0 {
		flow.SourceDocuments = Merge(flow.Citations, flow.SourceDocuments)
		flow.Citations = nil
		merged++
	}
	for _, step := range flow.StepObjects() {
		if MergeStep(step) {
			merged++
		}
	}
	return merged
}

// MergeStep merges step citations in place, it returns true when the step changed
func MergeStep(step *model.Step) bool {
	if len(step.Citations) == 0 {
		return false
	}
	step.SourceDocuments = Merge(step.Citations, step.SourceDocuments)
	step.Citations = nil
	return true
}
