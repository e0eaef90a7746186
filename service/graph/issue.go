package graph

import "github.com/viant/flowcorpus/model"

// IssueKind classifies a related_flows defect
type IssueKind string

const (
	IssueSelf      IssueKind = "self"
	IssueDangling  IssueKind = "dangling"
	IssueDuplicate IssueKind = "duplicate"
)

// Issue is a related_flows defect found on an existing document
type Issue struct {
	FlowID  string    `json:"flowId"`
	Related string    `json:"related"`
	Kind    IssueKind `json:"kind"`
}

// Validate reports self links, dangling ids and repeated ids without changing flows
func Validate(flows []*model.Flow) []*Issue {
	known := make(map[string]bool, len(flows))
	for _, flow := range flows {
		known[flow.ID] = true
	}
	var result []*Issue
	for _, flow := range flows {
		seen := map[string]bool{}
		for _, related := range flow.RelatedFlows {
			switch {
			case related == flow.ID:
				result = append(result, &Issue{FlowID: flow.ID, Related: related, Kind: IssueSelf})
			case !known[related]:
				result = append(result, &Issue{FlowID: flow.ID, Related: related, Kind: IssueDangling})
			case seen[related]:
				result = append(result, &Issue{FlowID: flow.ID, Related: related, Kind: IssueDuplicate})
			}
			seen[related] = true
		}
	}
	return result
}
