package flowcorpus

import (
	"github.com/viant/afs"
	"github.com/viant/flowcorpus/internal/logger"
	"github.com/viant/flowcorpus/progress"
)

// Option customizes the Service
type Option func(s *Service)

// WithConfig sets the pipeline configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithFS sets the storage service used for corpus documents and assets
func WithFS(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithLogger sets the logger
func WithLogger(log *logger.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// WithDryRun disables write-back; fix runs report a diff instead
func WithDryRun(dryRun bool) Option {
	return func(s *Service) {
		s.dryRun = dryRun
	}
}

// WithStages restricts the stages applied by fix runs
func WithStages(stages ...Stage) Option {
	return func(s *Service) {
		s.stages = stages
	}
}

// WithOnProgress registers a callback invoked on every progress update
func WithOnProgress(fn func(progress.Progress)) Option {
	return func(s *Service) {
		s.onProgress = fn
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile
// is empty spans are written to stderr.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		s.tracing = &tracingConfig{
			serviceName:    serviceName,
			serviceVersion: serviceVersion,
			outputFile:     outputFile,
		}
	}
}

type tracingConfig struct {
	serviceName    string
	serviceVersion string
	outputFile     string
}
