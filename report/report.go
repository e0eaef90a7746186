// Package report holds per module pipeline results and their corpus wide summary.
package report

import (
	"github.com/viant/flowcorpus/service/graph"
	"github.com/viant/flowcorpus/service/patch"
)

// Missing is an unresolved reference, Suggestion is an existing asset proposed for review
type Missing struct {
	FlowID     string `json:"flowId"`
	Step       int    `json:"step,omitempty"`
	Reference  string `json:"reference"`
	Path       string `json:"path"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Module is the outcome of processing one module
type Module struct {
	Key       string `json:"key"`
	Directory string `json:"directory"`
	URL       string `json:"url,omitempty"`
	Shape     string `json:"shape,omitempty"`
	Flows     int    `json:"flows"`

	// Skipped is set when the module document does not exist
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
	// Malformed is set when the document itself was rejected
	Malformed bool `json:"malformed,omitempty"`

	Checked    int        `json:"checked"`
	Unresolved int        `json:"unresolved"`
	Missing    []*Missing `json:"missing,omitempty"`

	Merged        int `json:"merged"`
	Normalized    int `json:"normalized"`
	SynthesizedID int `json:"synthesizedIds,omitempty"`

	Graph  *graph.Result  `json:"graph,omitempty"`
	Issues []*graph.Issue `json:"graphIssues,omitempty"`

	Written bool        `json:"written,omitempty"`
	Backup  string      `json:"backup,omitempty"`
	Diff    *patch.Diff `json:"diff,omitempty"`
}

// Failed returns true when the module document was rejected
func (m *Module) Failed() bool {
	return m.Error != ""
}

// AddMissing records an unresolved reference
func (m *Module) AddMissing(missing *Missing) {
	m.Unresolved++
	m.Missing = append(m.Missing, missing)
}

// Corpus summarizes a run over every module
type Corpus struct {
	RunID      string    `json:"runId"`
	Mode       string    `json:"mode"`
	DryRun     bool      `json:"dryRun,omitempty"`
	Modules    []*Module `json:"modules"`
	Checked    int       `json:"checked"`
	Unresolved int       `json:"unresolved"`
	Suggested  int       `json:"suggested"`
	Failed     int       `json:"failed"`
	Malformed  int       `json:"malformed"`
	Skipped    int       `json:"skipped"`
	Written    int       `json:"written"`
}

// Add folds a module result into the summary
func (c *Corpus) Add(module *Module) {
	c.Modules = append(c.Modules, module)
	c.Checked += module.Checked
	c.Unresolved += module.Unresolved
	for _, missing := range module.Missing {
		if missing.Suggestion != "" {
			c.Suggested++
		}
	}
	if module.Failed() {
		c.Failed++
	}
	if module.Malformed {
		c.Malformed++
	}
	if module.Skipped {
		c.Skipped++
	}
	if module.Written {
		c.Written++
	}
}

// Reduce builds a corpus summary from module results
func Reduce(runID, mode string, modules ...*Module) *Corpus {
	ret := &Corpus{RunID: runID, Mode: mode, Modules: make([]*Module, 0, len(modules))}
	for _, module := range modules {
		ret.Add(module)
	}
	return ret
}
