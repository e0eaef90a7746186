package flowcorpus

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/flowcorpus/model"
	"github.com/viant/flowcorpus/service/asset"
	"github.com/viant/flowcorpus/service/dao/corpus"
	"github.com/viant/flowcorpus/service/meta"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the pipeline configuration. It
// can be populated from YAML or JSON; zero fields fall back to defaults.
type Config struct {
	// DataURL holds module corpus documents
	DataURL string `json:"dataURL" yaml:"dataURL"`
	// AssetURL holds <Directory>/<path> source documents
	AssetURL string `json:"assetURL" yaml:"assetURL"`
	// BackupURL receives a copy of every replaced document, empty disables backups
	BackupURL      string          `json:"backupURL,omitempty" yaml:"backupURL,omitempty"`
	Indent         string          `json:"indent,omitempty" yaml:"indent,omitempty"`
	AssetPatterns  []string        `json:"assetPatterns,omitempty" yaml:"assetPatterns,omitempty"`
	RequiredFields []string        `json:"requiredFields,omitempty" yaml:"requiredFields,omitempty"`
	CacheSize      int             `json:"cacheSize,omitempty" yaml:"cacheSize,omitempty"`
	Modules        []*ModuleConfig `json:"modules" yaml:"modules"`
}

// ModuleConfig describes one documentation module
type ModuleConfig struct {
	Key       string   `json:"key" yaml:"key"`
	Directory string   `json:"directory,omitempty" yaml:"directory,omitempty"`
	File      string   `json:"file,omitempty" yaml:"file,omitempty"`
	IDKey     string   `json:"idKey,omitempty" yaml:"idKey,omitempty"`
	IDPrefix  string   `json:"idPrefix,omitempty" yaml:"idPrefix,omitempty"`
	Aliases   []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Indent    string   `json:"indent,omitempty" yaml:"indent,omitempty"`
	// Related is the curated flow adjacency table
	Related map[string][]string `json:"related,omitempty" yaml:"related,omitempty"`
}

// Module converts the configuration into a model module with defaults applied
func (m *ModuleConfig) Module() *model.Module {
	ret := &model.Module{
		Key:       m.Key,
		Directory: m.Directory,
		File:      m.File,
		IDKey:     m.IDKey,
		IDPrefix:  m.IDPrefix,
		Aliases:   m.Aliases,
		Indent:    m.Indent,
		Related:   m.Related,
	}
	ret.Init()
	return ret
}

// defaultModules is the built-in module catalog
//
//go:embed config/modules.yaml
var defaultModules []byte

// DefaultConfig returns a Config populated with the built-in module catalog.
// Callers may modify the returned struct before passing it to New.
func DefaultConfig() *Config {
	return &Config{
		DataURL:        "public/data",
		AssetURL:       "public/pdfs",
		Indent:         corpus.DefaultIndent,
		AssetPatterns:  append([]string{}, asset.DefaultPatterns...),
		RequiredFields: append([]string{}, corpus.DefaultRequiredFields...),
		CacheSize:      asset.DefaultCacheSize,
		Modules:        defaultModuleConfigs(),
	}
}

func defaultModuleConfigs() []*ModuleConfig {
	catalog := struct {
		Modules []*ModuleConfig `yaml:"modules"`
	}{}
	if err := yaml.Unmarshal(defaultModules, &catalog); err != nil {
		panic(fmt.Sprintf("invalid module catalog: %v", err))
	}
	return catalog.Modules
}

// Init fills empty settings with defaults
func (c *Config) Init() {
	defaults := DefaultConfig()
	if c.DataURL == "" {
		c.DataURL = defaults.DataURL
	}
	if c.AssetURL == "" {
		c.AssetURL = defaults.AssetURL
	}
	if c.Indent == "" {
		c.Indent = defaults.Indent
	}
	if len(c.AssetPatterns) == 0 {
		c.AssetPatterns = defaults.AssetPatterns
	}
	if len(c.RequiredFields) == 0 {
		c.RequiredFields = defaults.RequiredFields
	}
	if c.CacheSize <= 0 {
		c.CacheSize = defaults.CacheSize
	}
	if len(c.Modules) == 0 {
		c.Modules = defaults.Modules
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.DataURL == "" {
		errs = append(errs, fmt.Errorf("dataURL was empty"))
	}
	if c.AssetURL == "" {
		errs = append(errs, fmt.Errorf("assetURL was empty"))
	}
	if c.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("cacheSize must be >= 0"))
	}
	keys := map[string]bool{}
	for i, module := range c.Modules {
		if module == nil {
			errs = append(errs, fmt.Errorf("modules[%d] was nil", i))
			continue
		}
		if keys[module.Key] {
			errs = append(errs, fmt.Errorf("duplicate module key %q", module.Key))
		}
		keys[module.Key] = true
		if err := module.Module().Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Select returns module configs matching keys, all modules when keys is empty
func (c *Config) Select(keys ...string) ([]*ModuleConfig, error) {
	if len(keys) == 0 {
		return c.Modules, nil
	}
	var result []*ModuleConfig
	for _, key := range keys {
		var matched *ModuleConfig
		for _, module := range c.Modules {
			if strings.EqualFold(module.Key, key) {
				matched = module
				break
			}
		}
		if matched == nil {
			return nil, fmt.Errorf("unknown module: %v", key)
		}
		result = append(result, matched)
	}
	return result, nil
}

// LoadConfig reads a YAML or JSON configuration, ${env.KEY} expressions are expanded
func LoadConfig(ctx context.Context, fs afs.Service, URL string) (*Config, error) {
	ret := &Config{}
	if err := meta.New(fs, nil).Load(ctx, URL, ret); err != nil {
		return nil, err
	}
	ret.Init()
	if err := ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return ret, nil
}
