package asset

import "github.com/viant/flowcorpus/service/reference"

// Option customizes the asset service
type Option func(s *Service)

// WithPatterns sets doublestar patterns selecting fuzzy match candidates, no pattern selects every file
func WithPatterns(patterns ...string) Option {
	return func(s *Service) {
		s.patterns = patterns
	}
}

// WithCacheSize sets the number of cached module listings
func WithCacheSize(size int) Option {
	return func(s *Service) {
		s.cacheSize = size
	}
}

// WithNormalizer sets the reference normalizer
func WithNormalizer(normalizer *reference.Normalizer) Option {
	return func(s *Service) {
		s.normalizer = normalizer
	}
}
