package flowcorpus

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	require.NoError(t, config.Validate())
	assert.Len(t, config.Modules, 12)

	directories := map[string]string{}
	for _, module := range config.Modules {
		directories[module.Key] = module.Module().Directory
	}
	assert.Equal(t, "VIZIA", directories["vizia"])
	assert.Equal(t, "Brandwatch Reviews", directories["reviews"])
	assert.Equal(t, "Consumer Research", directories["consumer_research"])

	engage := config.Modules[5].Module()
	assert.Equal(t, "engage_user_flows_with_citations.json", engage.File)
	assert.Equal(t, "ENGAGE", engage.IDPrefix)
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		description string
		config      *Config
		expectErr   bool
	}{
		{description: "defaults", config: DefaultConfig()},
		{
			description: "duplicate module",
			config:      &Config{DataURL: "d", AssetURL: "a", Modules: []*ModuleConfig{{Key: "engage"}, {Key: "engage"}}},
			expectErr:   true,
		},
		{
			description: "unsupported id key",
			config:      &Config{DataURL: "d", AssetURL: "a", Modules: []*ModuleConfig{{Key: "engage", IDKey: "uuid"}}},
			expectErr:   true,
		},
		{
			description: "missing data URL",
			config:      &Config{AssetURL: "a"},
			expectErr:   true,
		},
	}
	for _, testCase := range testCases {
		err := testCase.config.Validate()
		if testCase.expectErr {
			assert.Error(t, err, testCase.description)
			continue
		}
		assert.NoError(t, err, testCase.description)
	}
}

func TestConfig_Select(t *testing.T) {
	config := DefaultConfig()
	all, err := config.Select()
	require.NoError(t, err)
	assert.Len(t, all, 12)

	selected, err := config.Select("Engage", "vizia")
	require.NoError(t, err)
	assert.Equal(t, "engage", selected[0].Key)
	assert.Equal(t, "vizia", selected[1].Key)

	_, err = config.Select("unknown")
	assert.Error(t, err)
}

func TestParseStages(t *testing.T) {
	stages, err := ParseStages("")
	require.NoError(t, err)
	assert.Equal(t, AllStages, stages)

	stages, err = ParseStages("merge, Link")
	require.NoError(t, err)
	assert.Equal(t, []Stage{StageMerge, StageLink}, stages)

	_, err = ParseStages("merge,resolve")
	assert.Error(t, err)
}

func TestDefaultConfig_ModuleCatalog(t *testing.T) {
	config := DefaultConfig()
	modules := map[string]*ModuleConfig{}
	for _, module := range config.Modules {
		modules[module.Key] = module
	}

	measure := modules["measure"].Module()
	assert.Equal(t, "flow_id", measure.IDKey)
	assert.Equal(t, "MEASURE", measure.IDPrefix)
	assert.Equal(t, "    ", measure.Indent)
	assert.Equal(t, []string{"MEASURE_002", "MEASURE_003", "MEASURE_004"}, measure.Related["MEASURE_001"])

	listen := modules["listen"].Module()
	assert.Equal(t, "id", listen.IDKey)
	assert.Equal(t, "flow_001", listen.SynthesizeID(0))
	assert.Equal(t, []string{"flow_001"}, listen.Related["flow_015"])

	engage := modules["engage"].Module()
	assert.Empty(t, engage.Related)
	assert.Empty(t, engage.Indent)

	assert.Len(t, modules["publish"].Related, 25)
	assert.Equal(t, "Brandwatch Reviews", modules["reviews"].Directory)

	again := DefaultConfig()
	again.Modules[0].Related["ADV_001"][0] = "changed"
	assert.Equal(t, "ADV_002", DefaultConfig().Modules[0].Related["ADV_001"][0])
}

func TestLoadConfig_ModuleCatalog(t *testing.T) {
	location, err := filepath.Abs(filepath.Join("config", "modules.yaml"))
	require.NoError(t, err)
	config, err := LoadConfig(context.Background(), afs.New(), location)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Modules, config.Modules)
	assert.Equal(t, "public/data", config.DataURL)
}
