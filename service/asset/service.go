package asset

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"github.com/viant/flowcorpus/service/fuzzy"
	"github.com/viant/flowcorpus/service/reference"
)

// DefaultPatterns selects document assets considered as fuzzy match candidates
var DefaultPatterns = []string{"**/*.pdf"}

// DefaultCacheSize is the number of module listings kept in memory
const DefaultCacheSize = 16

// Service resolves references against <root>/<module directory>/<path>
type Service struct {
	fs         afs.Service
	rootURL    string
	patterns   []string
	cacheSize  int
	normalizer *reference.Normalizer
	listings   *lru.Cache[string, []string]
}

// RootURL returns the asset store root
func (s *Service) RootURL() string {
	return s.rootURL
}

// URL returns the asset URL for a module relative path
func (s *Service) URL(moduleDir, relPath string) string {
	return url.Join(s.rootURL, moduleDir, relPath)
}

// Resolve normalizes ref and checks whether it exists; on miss the module
// subtree is searched for a plausible replacement
func (s *Service) Resolve(ctx context.Context, ref, moduleDir string) (*Resolution, error) {
	relPath := s.normalizer.Normalize(ref, moduleDir)
	resolution := &Resolution{Reference: ref, Path: relPath, URL: s.URL(moduleDir, relPath)}
	exists, err := s.Exists(ctx, moduleDir, relPath)
	if err != nil {
		return nil, err
	}
	if exists {
		resolution.Status = StatusFound
		return resolution, nil
	}
	resolution.Status = StatusMissing
	candidates, err := s.Candidates(ctx, moduleDir)
	if err != nil {
		return nil, err
	}
	if match, ok := fuzzy.Rank(relPath, candidates); ok {
		resolution.Suggestion = match.Candidate
		resolution.Score = match.Score
	}
	return resolution, nil
}

// Exists returns true when the module relative path is an existing file
func (s *Service) Exists(ctx context.Context, moduleDir, relPath string) (bool, error) {
	if strings.TrimSpace(relPath) == "" {
		return false, nil
	}
	URL := s.URL(moduleDir, relPath)
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return false, fmt.Errorf("failed to check asset %v: %w", URL, err)
	}
	if !exists {
		return false, nil
	}
	object, err := s.fs.Object(ctx, URL)
	if err != nil {
		return false, fmt.Errorf("failed to stat asset %v: %w", URL, err)
	}
	return !object.IsDir(), nil
}

// Candidates returns module relative paths of assets matching the configured
// patterns, sorted; listings are cached per module directory
func (s *Service) Candidates(ctx context.Context, moduleDir string) ([]string, error) {
	moduleURL := url.Join(s.rootURL, moduleDir)
	if cached, ok := s.listings.Get(moduleURL); ok {
		return cached, nil
	}
	exists, err := s.fs.Exists(ctx, moduleURL)
	if err != nil {
		return nil, fmt.Errorf("failed to check module assets %v: %w", moduleURL, err)
	}
	var result []string
	if exists {
		objects, err := s.fs.List(ctx, moduleURL, option.NewRecursive(true))
		if err != nil {
			return nil, fmt.Errorf("failed to list module assets %v: %w", moduleURL, err)
		}
		basePath := strings.TrimRight(url.Path(moduleURL), "/") + "/"
		for _, object := range objects {
			if object.IsDir() {
				continue
			}
			relPath := strings.TrimPrefix(url.Path(object.URL()), basePath)
			if s.matches(relPath) {
				result = append(result, relPath)
			}
		}
		sort.Strings(result)
	}
	s.listings.Add(moduleURL, result)
	return result, nil
}

// Forget drops a cached module listing
func (s *Service) Forget(moduleDir string) {
	s.listings.Remove(url.Join(s.rootURL, moduleDir))
}

func (s *Service) matches(relPath string) bool {
	if len(s.patterns) == 0 {
		return true
	}
	for _, pattern := range s.patterns {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
	}
	return false
}

// New creates an asset resolver rooted at rootURL
func New(fs afs.Service, rootURL string, options ...Option) (*Service, error) {
	if rootURL == "" {
		return nil, fmt.Errorf("asset root URL was empty")
	}
	ret := &Service{
		fs:        fs,
		rootURL:   url.Normalize(rootURL, file.Scheme),
		patterns:  DefaultPatterns,
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.fs == nil {
		ret.fs = afs.New()
	}
	if ret.normalizer == nil {
		ret.normalizer = reference.New()
	}
	for _, pattern := range ret.patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid asset pattern: %q", pattern)
		}
	}
	if ret.cacheSize <= 0 {
		ret.cacheSize = DefaultCacheSize
	}
	var err error
	if ret.listings, err = lru.New[string, []string](ret.cacheSize); err != nil {
		return nil, err
	}
	return ret, nil
}
