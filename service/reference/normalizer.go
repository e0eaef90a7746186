package reference

import (
	"strings"

	"github.com/viant/flowcorpus/model"
)

// SourcePrefix is a legacy marker some extractors put in front of a reference
const SourcePrefix = "Source: "

// Normalizer canonicalizes raw references into module relative paths
type Normalizer struct {
	aliases map[string][]string
}

// Normalize strips the "Source: " marker and any leading copy of the owning
// module directory. Only aliases of moduleDir are stripped; a segment naming
// another module's directory is kept. Stripping runs to a fixed point so the
// function is idempotent.
func (n *Normalizer) Normalize(raw, moduleDir string) string {
	aliases := n.aliasesFor(moduleDir)
	result := raw
	for {
		previous := result
		result = strings.TrimPrefix(result, SourcePrefix)
		for _, alias := range aliases {
			if prefix := alias + "/"; strings.HasPrefix(result, prefix) {
				result = result[len(prefix):]
				break
			}
		}
		if result == previous {
			return result
		}
	}
}

// NormalizeAll normalizes references and drops duplicates that normalization
// produced, it returns the canonical list and the number of rewritten entries
func (n *Normalizer) NormalizeAll(refs []string, moduleDir string) ([]string, int) {
	if refs == nil {
		return nil, 0
	}
	result := make([]string, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	changed := 0
	for _, ref := range refs {
		normalized := n.Normalize(ref, moduleDir)
		if normalized != ref {
			changed++
		}
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		result = append(result, normalized)
	}
	return result, changed
}

func (n *Normalizer) aliasesFor(moduleDir string) []string {
	if aliases, ok := n.aliases[moduleDir]; ok {
		return aliases
	}
	return []string{moduleDir}
}

// New creates a normalizer aware of every module directory. A module alias
// that equals another module's canonical directory is never used.
func New(modules ...*model.Module) *Normalizer {
	canonical := map[string]bool{}
	for _, module := range modules {
		canonical[module.Directory] = true
	}
	ret := &Normalizer{aliases: map[string][]string{}}
	for _, module := range modules {
		var aliases []string
		for _, alias := range module.DirectoryAliases() {
			if alias != module.Directory && canonical[alias] {
				continue
			}
			aliases = append(aliases, alias)
		}
		ret.aliases[module.Directory] = append(ret.aliases[module.Directory], aliases...)
	}
	return ret
}
