// Package graph assigns and checks the related_flows adjacency of a module.
package graph

import (
	"github.com/viant/flowcorpus/internal/logger"
	"github.com/viant/flowcorpus/model"
)

// MaxFallback caps positional links
const MaxFallback = 3

// Result summarizes one build
type Result struct {
	Curated  int      `json:"curated"`
	Fallback int      `json:"fallback"`
	Stale    []*Stale `json:"stale,omitempty"`
	// Filtered counts ids removed by the post-condition filter
	Filtered int `json:"filtered,omitempty"`
}

// Builder links flows using a curated table with a positional fallback
type Builder struct {
	log *logger.Logger
}

// Build assigns related_flows for every flow. A curated entry is used
// verbatim when all its ids exist; any other flow gets positional links.
// Self, unknown and repeated ids are always filtered out afterwards.
func (b *Builder) Build(flows []*model.Flow, curated map[string][]string) *Result {
	result := &Result{}
	ids := make([]string, len(flows))
	for i, flow := range flows {
		ids[i] = flow.ID
	}
	result.Stale = Staleness(curated, ids)
	stale := make(map[string]*Stale, len(result.Stale))
	for _, entry := range result.Stale {
		stale[entry.FlowID] = entry
		if entry.Orphan {
			b.log.Warn("curated entry names no flow", "flow", entry.FlowID)
		}
	}
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	for i, flow := range flows {
		related, ok := curated[flow.ID]
		if entry := stale[flow.ID]; ok && entry != nil && len(entry.Unknown) > 0 {
			b.log.Warn("stale curated entry, using positional links", "flow", flow.ID, "unknown", entry.Unknown)
			ok = false
		}
		if ok {
			result.Curated++
			related = append([]string{}, related...)
		} else {
			result.Fallback++
			related = Positional(ids, i)
		}
		var removed int
		flow.RelatedFlows, removed = filter(flow.ID, related, known)
		result.Filtered += removed
	}
	return result
}

// Positional links the flow at position to the first flow and its neighbours
func Positional(ids []string, position int) []string {
	if position < 0 || position >= len(ids) {
		return []string{}
	}
	var candidates []string
	candidates = append(candidates, ids[0])
	if position > 0 {
		candidates = append(candidates, ids[position-1])
	}
	if position+1 < len(ids) {
		candidates = append(candidates, ids[position+1])
	}
	result := make([]string, 0, MaxFallback)
	self := ids[position]
	for _, candidate := range candidates {
		if candidate == self || contains(result, candidate) {
			continue
		}
		result = append(result, candidate)
		if len(result) == MaxFallback {
			break
		}
	}
	return result
}

func filter(self string, related []string, known map[string]bool) ([]string, int) {
	result := make([]string, 0, len(related))
	removed := 0
	for _, id := range related {
		if id == self || !known[id] || contains(result, id) {
			removed++
			continue
		}
		result = append(result, id)
	}
	return result, removed
}

func contains(values []string, value string) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}

// New creates a builder
func New(log *logger.Logger) *Builder {
	if log == nil {
		log = logger.NewNop()
	}
	return &Builder{log: log}
}
