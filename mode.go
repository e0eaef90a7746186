package flowcorpus

import (
	"fmt"
	"strings"
)

// Mode selects what a run does with the processed documents
type Mode string

const (
	// ModeFix rewrites module documents
	ModeFix Mode = "fix"
	// ModeValidate reports only
	ModeValidate Mode = "validate"
)

// Stage is a document transformation applied by fix runs
type Stage string

const (
	// StageMerge folds citations into source_documents
	StageMerge Stage = "merge"
	// StageNormalize rewrites references to module relative paths
	StageNormalize Stage = "normalize"
	// StageLink assigns related_flows
	StageLink Stage = "link"
)

// AllStages lists stages in execution order
var AllStages = []Stage{StageMerge, StageNormalize, StageLink}

// ParseStages parses a comma separated stage list, empty input selects all stages
func ParseStages(text string) ([]Stage, error) {
	if strings.TrimSpace(text) == "" {
		return AllStages, nil
	}
	var result []Stage
	for _, item := range strings.Split(text, ",") {
		stage := Stage(strings.ToLower(strings.TrimSpace(item)))
		switch stage {
		case StageMerge, StageNormalize, StageLink:
			result = append(result, stage)
		default:
			return nil, fmt.Errorf("unknown stage: %q", item)
		}
	}
	return result, nil
}
