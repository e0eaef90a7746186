package model

import (
	"fmt"
	"strings"
)

// Module is a documentation domain whose flows and assets live under one
// canonical directory
type Module struct {
	Key       string
	Directory string
	File      string
	IDKey     string
	IDPrefix  string
	Aliases   []string
	// Indent overrides the corpus output indent for this module
	Indent string
	// Related is the curated adjacency table: flow id to related flow ids
	Related map[string][]string
}

// Init fills in defaults derived from the module key
func (m *Module) Init() {
	if m.Directory == "" {
		m.Directory = TitleKey(m.Key)
	}
	if m.File == "" {
		m.File = m.Key + "_user_flows_with_citations.json"
	}
	if m.IDKey == "" {
		m.IDKey = KeyID
	}
	if m.IDPrefix == "" {
		m.IDPrefix = strings.ToUpper(m.Key)
	}
}

// Validate checks module settings
func (m *Module) Validate() error {
	if m.Key == "" {
		return fmt.Errorf("module key was empty")
	}
	if m.Directory == "" {
		return fmt.Errorf("module %v: directory was empty", m.Key)
	}
	if m.IDKey != KeyID && m.IDKey != KeyFlowID {
		return fmt.Errorf("module %v: unsupported id key %q", m.Key, m.IDKey)
	}
	return nil
}

// SynthesizeID returns a positional flow id, position is zero based
func (m *Module) SynthesizeID(position int) string {
	return fmt.Sprintf("%s_%03d", m.IDPrefix, position+1)
}

// DirectoryAliases returns spellings of the module directory that may prefix
// a reference: the canonical name, configured aliases, and case or
// underscore variants of the canonical name. A spelling derived from the
// module key is kept only when it folds to the canonical directory.
func (m *Module) DirectoryAliases() []string {
	candidates := append([]string{m.Directory}, m.Aliases...)
	candidates = append(candidates, strings.ReplaceAll(m.Directory, " ", "_"))
	canonical := foldDirectory(m.Directory)
	for _, variant := range []string{TitleKey(m.Key), titleWords(m.Key, "_")} {
		if foldDirectory(variant) == canonical {
			candidates = append(candidates, variant)
		}
	}
	var result []string
	seen := map[string]bool{}
	for _, candidate := range candidates {
		if candidate == "" || seen[candidate] {
			continue
		}
		seen[candidate] = true
		result = append(result, candidate)
	}
	return result
}

func foldDirectory(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", " "))
}

// TitleKey converts a module key such as consumer_research to "Consumer Research"
func TitleKey(key string) string {
	return titleWords(strings.ReplaceAll(key, "_", " "), " ")
}

func titleWords(text, separator string) string {
	words := strings.Split(text, separator)
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, separator)
}
