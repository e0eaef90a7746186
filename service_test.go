package flowcorpus_test

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/flowcorpus"
	"github.com/viant/flowcorpus/progress"
)

const engageFile = "engage_user_flows_with_citations.json"

// copyTestdata copies testdata into a fresh directory so runs can rewrite documents
func copyTestdata(t *testing.T) string {
	root := t.TempDir()
	err := filepath.Walk("testdata", func(location string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel("testdata", location)
		if err != nil {
			return err
		}
		target := filepath.Join(root, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		source, err := os.Open(location)
		if err != nil {
			return err
		}
		defer source.Close()
		dest, err := os.Create(target)
		if err != nil {
			return err
		}
		defer dest.Close()
		_, err = io.Copy(dest, source)
		return err
	})
	require.NoError(t, err)
	return root
}

func newService(t *testing.T, root string, options ...flowcorpus.Option) *flowcorpus.Service {
	t.Setenv("FLOWCORPUS_ROOT", root)
	config, err := flowcorpus.LoadConfig(context.Background(), afs.New(), filepath.Join(root, "config.yaml"))
	require.NoError(t, err)
	srv, err := flowcorpus.New(append([]flowcorpus.Option{flowcorpus.WithConfig(config)}, options...)...)
	require.NoError(t, err)
	return srv
}

type flowView struct {
	ID              string            `json:"id"`
	Citations       []string          `json:"citations"`
	SourceDocuments []string          `json:"source_documents"`
	RelatedFlows    []string          `json:"related_flows"`
	Steps           []json.RawMessage `json:"steps"`
}

func readFlows(t *testing.T, location string) map[string]*flowView {
	data, err := os.ReadFile(location)
	require.NoError(t, err)
	var doc struct {
		UserFlows []*flowView `json:"user_flows"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	result := map[string]*flowView{}
	for _, flow := range doc.UserFlows {
		result[flow.ID] = flow
	}
	return result
}

func TestService_Run_Validate(t *testing.T) {
	root := copyTestdata(t)
	srv := newService(t, root)
	before, err := os.ReadFile(filepath.Join(root, "data", engageFile))
	require.NoError(t, err)

	result, err := srv.Run(context.Background(), flowcorpus.ModeValidate)
	require.NoError(t, err)
	require.Len(t, result.Modules, 3)

	engage := result.Modules[0]
	assert.Equal(t, "user_flows(user_flows)", engage.Shape)
	assert.Equal(t, 5, engage.Checked)
	assert.Equal(t, 1, engage.Unresolved)
	if assert.Len(t, engage.Missing, 1) {
		assert.Equal(t, "F1", engage.Missing[0].FlowID)
		assert.Equal(t, "Creating a Campaing.pdf", engage.Missing[0].Path)
		assert.Equal(t, "Using/Creating a Campaign.pdf", engage.Missing[0].Suggestion)
	}
	if assert.Len(t, engage.Issues, 1) {
		assert.Equal(t, "F2", engage.Issues[0].FlowID)
	}
	assert.True(t, result.Modules[1].Skipped)
	assert.True(t, result.Modules[2].Failed())
	assert.True(t, result.Modules[2].Malformed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Malformed)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Suggested)
	assert.Equal(t, 0, result.Written)

	after, err := os.ReadFile(filepath.Join(root, "data", engageFile))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestService_Run_Fix(t *testing.T) {
	root := copyTestdata(t)
	var updates []progress.Progress
	srv := newService(t, root, flowcorpus.WithOnProgress(func(p progress.Progress) {
		updates = append(updates, p)
	}))

	result, err := srv.Run(context.Background(), flowcorpus.ModeFix)
	require.NoError(t, err)
	engage := result.Modules[0]
	assert.Empty(t, engage.Error)
	assert.True(t, engage.Written)
	assert.Equal(t, 2, engage.Merged)
	assert.Equal(t, 2, engage.Normalized)
	assert.Equal(t, 4, engage.Checked)
	assert.Equal(t, 1, engage.Unresolved)
	assert.Empty(t, engage.Issues)
	if assert.NotNil(t, engage.Graph) {
		assert.Equal(t, 1, engage.Graph.Curated)
		assert.Equal(t, 2, engage.Graph.Fallback)
	}
	assert.Equal(t, 1, result.Failed)
	assert.NotEmpty(t, updates)
	last := updates[len(updates)-1]
	assert.Equal(t, 0, last.Remaining())

	location := filepath.Join(root, "data", engageFile)
	flows := readFlows(t, location)
	assert.Nil(t, flows["F1"].Citations)
	assert.Equal(t, []string{"Inbox Rules.pdf", "Creating a Campaing.pdf"}, flows["F1"].SourceDocuments)
	assert.JSONEq(t, `{"step_id":1,"description":"Open the campaign editor","source_documents":["Using/Creating a Campaign.pdf"]}`, string(flows["F1"].Steps[0]))
	assert.Equal(t, []string{"F2", "F3"}, flows["F1"].RelatedFlows)
	assert.Equal(t, []string{"F1", "F3"}, flows["F2"].RelatedFlows)
	assert.Equal(t, []string{"F1", "F2"}, flows["F3"].RelatedFlows)
	for id, flow := range flows {
		assert.NotContains(t, flow.RelatedFlows, id)
	}

	first, err := os.ReadFile(location)
	require.NoError(t, err)
	again, err := srv.Run(context.Background(), flowcorpus.ModeFix, "engage")
	require.NoError(t, err)
	require.Len(t, again.Modules, 1)
	assert.False(t, again.Modules[0].Written)
	assert.Equal(t, 0, again.Modules[0].Merged)
	assert.Equal(t, 0, again.Modules[0].Normalized)
	second, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestService_Run_DryRun(t *testing.T) {
	root := copyTestdata(t)
	srv := newService(t, root, flowcorpus.WithDryRun(true))
	location := filepath.Join(root, "data", engageFile)
	before, err := os.ReadFile(location)
	require.NoError(t, err)

	result, err := srv.Run(context.Background(), flowcorpus.ModeFix, "engage")
	require.NoError(t, err)
	engage := result.Modules[0]
	assert.False(t, engage.Written)
	if assert.NotNil(t, engage.Diff) {
		assert.False(t, engage.Diff.Empty())
		assert.Contains(t, engage.Diff.Text, `-      "citations": ["Inbox Rules.pdf"],`)
		assert.Greater(t, engage.Diff.Stats.Removed, 0)
	}
	after, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestService_Run_Stages(t *testing.T) {
	root := copyTestdata(t)
	srv := newService(t, root, flowcorpus.WithStages(flowcorpus.StageMerge))
	result, err := srv.Run(context.Background(), flowcorpus.ModeFix, "engage")
	require.NoError(t, err)
	engage := result.Modules[0]
	assert.Equal(t, 2, engage.Merged)
	assert.Equal(t, 0, engage.Normalized)
	assert.Nil(t, engage.Graph)

	flows := readFlows(t, filepath.Join(root, "data", engageFile))
	assert.Equal(t, []string{"Inbox Rules.pdf", "Engage/Inbox Rules.pdf", "Creating a Campaing.pdf"}, flows["F1"].SourceDocuments)
	assert.Equal(t, []string{"F2"}, flows["F2"].RelatedFlows)
}

func TestService_Run_UnknownModule(t *testing.T) {
	srv := newService(t, copyTestdata(t))
	_, err := srv.Run(context.Background(), flowcorpus.ModeFix, "nope")
	assert.Error(t, err)
}

func TestService_Run_ModuleCatalog(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	influence := `{"user_flows": [
  {"flow_id": "INF_003", "flow_name": "Reporting", "description": "c", "steps": ["Open reports"]},
  {"flow_id": "INF_001", "flow_name": "Discovery", "description": "a", "steps": ["Search creators"]},
  {"flow_id": "INF_002", "flow_name": "Campaigns", "description": "b", "steps": ["Create campaign"]}
]}`
	listen := `{"user_flows": [
  {"flow_name": "Queries", "description": "a", "steps": ["Write query"]},
  {"flow_name": "Alerts", "description": "b", "steps": ["Add alert"]}
]}`
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "influence_user_flows_with_citations.json"), []byte(influence), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "listen_user_flows_with_citations.json"), []byte(listen), 0o644))

	config := flowcorpus.DefaultConfig()
	config.DataURL = dataDir
	config.AssetURL = filepath.Join(root, "pdfs")
	srv, err := flowcorpus.New(flowcorpus.WithConfig(config))
	require.NoError(t, err)

	result, err := srv.Run(context.Background(), flowcorpus.ModeFix, "influence", "listen")
	require.NoError(t, err)
	require.Len(t, result.Modules, 2)
	assert.Equal(t, 3, result.Modules[0].Graph.Curated)
	assert.Equal(t, 0, result.Modules[0].Graph.Fallback)
	assert.Equal(t, 2, result.Modules[1].SynthesizedID)
	assert.Equal(t, 2, result.Modules[1].Graph.Fallback)
	assert.NotEmpty(t, result.Modules[1].Graph.Stale)

	data, err := os.ReadFile(filepath.Join(dataDir, "influence_user_flows_with_citations.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "{\n    \"user_flows\": [\n        {")
	var influenceDoc struct {
		UserFlows []struct {
			FlowID       string   `json:"flow_id"`
			RelatedFlows []string `json:"related_flows"`
		} `json:"user_flows"`
	}
	require.NoError(t, json.Unmarshal(data, &influenceDoc))
	related := map[string][]string{}
	for _, flow := range influenceDoc.UserFlows {
		related[flow.FlowID] = flow.RelatedFlows
	}
	assert.Equal(t, []string{"INF_002", "INF_003"}, related["INF_001"])
	assert.Equal(t, []string{"INF_001", "INF_002"}, related["INF_003"])

	flows := readFlows(t, filepath.Join(dataDir, "listen_user_flows_with_citations.json"))
	if assert.Contains(t, flows, "flow_001") && assert.Contains(t, flows, "flow_002") {
		assert.Equal(t, []string{"flow_002"}, flows["flow_001"].RelatedFlows)
		assert.Equal(t, []string{"flow_001"}, flows["flow_002"].RelatedFlows)
	}
}

func TestService_Run_RefreshesAssetListing(t *testing.T) {
	root := copyTestdata(t)
	srv := newService(t, root)

	result, err := srv.Run(context.Background(), flowcorpus.ModeValidate, "engage")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Suggested)

	require.NoError(t, os.Remove(filepath.Join(root, "pdfs", "Engage", "Using", "Creating a Campaign.pdf")))
	result, err = srv.Run(context.Background(), flowcorpus.ModeValidate, "engage")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Unresolved)
	assert.Equal(t, 0, result.Suggested)
}
