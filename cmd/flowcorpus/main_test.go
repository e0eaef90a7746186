package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/flowcorpus"
	"github.com/viant/flowcorpus/report"
)

func writeFile(t *testing.T, location string, data []byte) {
	require.NoError(t, os.MkdirAll(filepath.Dir(location), 0o755))
	require.NoError(t, os.WriteFile(location, data, 0o644))
}

func setupCorpus(t *testing.T) (string, string) {
	root := t.TempDir()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "data", "engage_user_flows_with_citations.json"))
	require.NoError(t, err)
	document := filepath.Join(root, "data", "engage_user_flows_with_citations.json")
	writeFile(t, document, data)
	writeFile(t, filepath.Join(root, "pdfs", "Engage", "Inbox Rules.pdf"), []byte("%PDF-1.4"))
	writeFile(t, filepath.Join(root, "pdfs", "Engage", "Using", "Creating a Campaign.pdf"), []byte("%PDF-1.4"))
	return root, document
}

func execute(t *testing.T, args ...string) (string, error) {
	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommand(t *testing.T) {
	var testCases = []struct {
		description string
		args        []string
		expectCode  int
		expectText  string
		expectJSON  bool
		rewritten   bool
	}{
		{
			description: "validate reports unresolved references",
			args:        []string{"validate"},
			expectCode:  1,
			expectText:  "Creating a Campaing.pdf",
		},
		{
			description: "validate json",
			args:        []string{"validate", "--json"},
			expectCode:  1,
			expectJSON:  true,
		},
		{
			description: "fix dry run leaves document intact",
			args:        []string{"fix", "--dry-run"},
			expectText:  "engage",
		},
		{
			description: "fix rewrites document",
			args:        []string{"fix", "--stages", "merge,normalize"},
			expectText:  "engage",
			rewritten:   true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			root, document := setupCorpus(t)
			before, err := os.ReadFile(document)
			require.NoError(t, err)
			args := append(testCase.args,
				"--data", filepath.Join(root, "data"),
				"--assets", filepath.Join(root, "pdfs"),
				"--module", "engage",
				"--log-mode", "quiet",
			)
			output, err := execute(t, args...)
			var exitErr *exitError
			if testCase.expectCode == 0 {
				assert.NoError(t, err)
			} else if assert.True(t, errors.As(err, &exitErr), "%v", err) {
				assert.Equal(t, testCase.expectCode, exitErr.code)
			}
			if testCase.expectText != "" {
				assert.Contains(t, output, testCase.expectText)
			}
			if testCase.expectJSON {
				var decoded map[string]interface{}
				require.NoError(t, json.Unmarshal([]byte(output), &decoded))
				assert.EqualValues(t, 1, decoded["unresolved"])
			}
			after, err := os.ReadFile(document)
			require.NoError(t, err)
			if testCase.rewritten {
				assert.NotEqual(t, string(before), string(after))
			} else {
				assert.Equal(t, string(before), string(after))
			}
		})
	}
}

func TestCommand_InvalidStages(t *testing.T) {
	root, _ := setupCorpus(t)
	_, err := execute(t, "fix", "--stages", "merge,bogus", "--data", filepath.Join(root, "data"), "--log-mode", "quiet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown stage")
}

func TestCommand_MissingEnvFile(t *testing.T) {
	_, err := execute(t, "validate", "--env-file", filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestExitStatus(t *testing.T) {
	var testCases = []struct {
		description string
		mode        flowcorpus.Mode
		result      *report.Corpus
		expectCode  int
	}{
		{description: "clean fix", mode: flowcorpus.ModeFix, result: &report.Corpus{}},
		{description: "fix ignores unresolved", mode: flowcorpus.ModeFix, result: &report.Corpus{Unresolved: 3}},
		{description: "fix with malformed document", mode: flowcorpus.ModeFix, result: &report.Corpus{Failed: 1, Malformed: 1}, expectCode: 1},
		{description: "fix with io failure", mode: flowcorpus.ModeFix, result: &report.Corpus{Failed: 2, Malformed: 1}, expectCode: 2},
		{description: "validate with unresolved", mode: flowcorpus.ModeValidate, result: &report.Corpus{Unresolved: 1}, expectCode: 1},
		{description: "validate with malformed document", mode: flowcorpus.ModeValidate, result: &report.Corpus{Failed: 1, Malformed: 1}, expectCode: 1},
		{description: "validate with io failure", mode: flowcorpus.ModeValidate, result: &report.Corpus{Failed: 1, Unresolved: 1}, expectCode: 2},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			err := exitStatus(testCase.mode, testCase.result)
			if testCase.expectCode == 0 {
				assert.NoError(t, err)
				return
			}
			var exitErr *exitError
			if assert.True(t, errors.As(err, &exitErr)) {
				assert.Equal(t, testCase.expectCode, exitErr.code)
			}
		})
	}
}
