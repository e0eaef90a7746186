package graph

import "sort"

// Stale describes a curated table entry that disagrees with the module's flow ids
type Stale struct {
	FlowID string `json:"flowId"`
	// Orphan is set when the table key itself names no flow
	Orphan bool `json:"orphan,omitempty"`
	// Unknown lists related ids that name no flow
	Unknown []string `json:"unknown,omitempty"`
}

// Staleness compares a curated table with the actual flow ids; the result is
// ordered by flow id
func Staleness(table map[string][]string, ids []string) []*Stale {
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var result []*Stale
	for _, key := range keys {
		entry := &Stale{FlowID: key, Orphan: !known[key]}
		for _, related := range table[key] {
			if !known[related] {
				entry.Unknown = append(entry.Unknown, related)
			}
		}
		if entry.Orphan || len(entry.Unknown) > 0 {
			result = append(result, entry)
		}
	}
	return result
}
