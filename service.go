package flowcorpus

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/flowcorpus/internal/idgen"
	"github.com/viant/flowcorpus/internal/logger"
	"github.com/viant/flowcorpus/model"
	"github.com/viant/flowcorpus/progress"
	"github.com/viant/flowcorpus/report"
	"github.com/viant/flowcorpus/service/asset"
	"github.com/viant/flowcorpus/service/citation"
	"github.com/viant/flowcorpus/service/dao"
	"github.com/viant/flowcorpus/service/dao/corpus"
	"github.com/viant/flowcorpus/service/graph"
	"github.com/viant/flowcorpus/service/patch"
	"github.com/viant/flowcorpus/service/reference"
	"github.com/viant/flowcorpus/tracing"
)

// Service runs the corpus integrity pipeline module by module
type Service struct {
	config     *Config
	fs         afs.Service
	log        *logger.Logger
	dryRun     bool
	stages     []Stage
	onProgress func(progress.Progress)
	tracing    *tracingConfig

	modules    []*model.Module
	normalizer *reference.Normalizer
	assets     *asset.Service
	corpus     *corpus.Service
}

// Config returns the effective configuration
func (s *Service) Config() *Config {
	return s.config
}

// Modules returns configured modules in processing order
func (s *Service) Modules() []*model.Module {
	return s.modules
}

// Module returns a configured module by key
func (s *Service) Module(key string) *model.Module {
	for _, module := range s.modules {
		if module.Key == key {
			return module
		}
	}
	return nil
}

// Run processes the selected modules sequentially, all of them when keys is
// empty. A failing module is recorded in the report and does not stop the
// run; only context cancellation does.
func (s *Service) Run(ctx context.Context, mode Mode, keys ...string) (*report.Corpus, error) {
	configs, err := s.config.Select(keys...)
	if err != nil {
		return nil, err
	}
	runID := idgen.New()
	ctx, span := tracing.StartSpan(ctx, "flowcorpus.run")
	span.WithAttributes(map[string]string{"run.id": runID, "run.mode": string(mode)})
	ctx, tracker := progress.WithNewTracker(ctx, runID, string(mode), s.onProgress)
	tracker.Update(progress.Delta{Total: len(configs)})
	log := s.log.With("run", runID, "mode", mode)
	log.Info("corpus run started", "modules", len(configs), "dryRun", s.dryRun)

	result := report.Reduce(runID, string(mode))
	result.DryRun = s.dryRun
	for _, config := range configs {
		if err = ctx.Err(); err != nil {
			tracing.EndSpan(span, err)
			return result, err
		}
		module := s.Module(config.Key)
		moduleReport, moduleErr := s.ProcessModule(ctx, module, mode)
		switch {
		case moduleReport.Skipped:
			tracker.Update(progress.Delta{Skipped: 1})
		case moduleErr != nil:
			tracker.Update(progress.Delta{Failed: 1})
		default:
			tracker.Update(progress.Delta{Processed: 1})
		}
		result.Add(moduleReport)
	}
	span.WithCounts(map[string]int{
		"references.checked":    result.Checked,
		"references.unresolved": result.Unresolved,
		"modules.failed":        result.Failed,
	})
	log.Info("corpus run finished", "checked", result.Checked, "unresolved", result.Unresolved,
		"failed", result.Failed, "skipped", result.Skipped, "written", result.Written)
	tracing.EndSpan(span, nil)
	return result, nil
}

// ProcessModule loads a module document, applies the pipeline and either
// persists it (fix) or only reports (validate). A missing document is
// reported as skipped and is not an error.
func (s *Service) ProcessModule(ctx context.Context, module *model.Module, mode Mode) (*report.Module, error) {
	if module == nil {
		return nil, fmt.Errorf("module was nil")
	}
	ret := &report.Module{Key: module.Key, Directory: module.Directory, URL: s.corpus.URL(module)}
	progress.BeginCtx(ctx, module.Key)
	ctx, span := tracing.StartSpan(ctx, "flowcorpus.module")
	span.WithAttributes(map[string]string{"module": module.Key, "directory": module.Directory})
	log := s.log.With("module", module.Key)
	defer s.assets.Forget(module.Directory)

	err := s.processModule(ctx, module, mode, ret, log)
	if errors.Is(err, dao.ErrNotFound) {
		log.Warn("corpus document not found", "url", ret.URL)
		ret.Skipped = true
		err = nil
	}
	if err != nil {
		ret.Error = err.Error()
		if errors.Is(err, corpus.ErrMalformed) {
			ret.Malformed = true
			log.Error("malformed corpus document", "error", err)
		} else {
			log.Error("module processing failed", "error", err)
		}
	}
	span.WithCounts(map[string]int{"references.checked": ret.Checked, "references.unresolved": ret.Unresolved})
	tracing.EndSpan(span, err)
	return ret, err
}

func (s *Service) processModule(ctx context.Context, module *model.Module, mode Mode, ret *report.Module, log *logger.Logger) error {
	doc, err := s.corpus.Load(ctx, module)
	if err != nil {
		return err
	}
	ret.Shape = doc.Shape.String()
	ret.Flows = len(doc.Flows)
	for _, flow := range doc.Flows {
		if flow.Synthesized() {
			ret.SynthesizedID++
		}
	}
	if mode == ModeValidate {
		ret.Issues = graph.Validate(doc.Flows)
		return s.resolve(ctx, module, doc, ret)
	}

	if s.hasStage(StageMerge) {
		for _, flow := range doc.Flows {
			ret.Merged += citation.MergeFlow(flow)
		}
	}
	if s.hasStage(StageNormalize) {
		for _, flow := range doc.Flows {
			ret.Normalized += s.normalizeFlow(flow, module.Directory)
		}
	}
	if err = s.resolve(ctx, module, doc, ret); err != nil {
		return err
	}
	if s.hasStage(StageLink) {
		ret.Graph = graph.New(log).Build(doc.Flows, module.Related)
		ret.Issues = graph.Validate(doc.Flows)
	}

	if s.dryRun {
		data, err := s.corpus.Codec().Encode(doc)
		if err != nil {
			return fmt.Errorf("failed to encode corpus %v: %w", doc.URL, err)
		}
		ret.Diff, err = patch.Generate(doc.Source, data, module.File, patch.DefaultContext)
		return err
	}
	saved, err := s.corpus.Save(ctx, doc)
	if err != nil {
		return err
	}
	ret.Written, ret.Backup = saved.Changed, saved.Backup
	if saved.Changed {
		log.Info("corpus document rewritten", "url", saved.URL, "merged", ret.Merged, "normalized", ret.Normalized)
	}
	return nil
}

func (s *Service) normalizeFlow(flow *model.Flow, moduleDir string) int {
	var changed, count int
	flow.SourceDocuments, count = s.normalizer.NormalizeAll(flow.SourceDocuments, moduleDir)
	changed += count
	flow.Citations, count = s.normalizer.NormalizeAll(flow.Citations, moduleDir)
	changed += count
	for _, step := range flow.StepObjects() {
		step.SourceDocuments, count = s.normalizer.NormalizeAll(step.SourceDocuments, moduleDir)
		changed += count
		step.Citations, count = s.normalizer.NormalizeAll(step.Citations, moduleDir)
		changed += count
	}
	return changed
}

// resolve checks every flow and step reference; references still split
// across citations and source_documents are checked once per object
func (s *Service) resolve(ctx context.Context, module *model.Module, doc *model.Document, ret *report.Module) error {
	resolved := map[string]*asset.Resolution{}
	check := func(flowID string, step int, refs []string) error {
		for _, ref := range refs {
			resolution, ok := resolved[ref]
			if !ok {
				var err error
				if resolution, err = s.assets.Resolve(ctx, ref, module.Directory); err != nil {
					return err
				}
				resolved[ref] = resolution
			}
			ret.Checked++
			if resolution.Found() {
				continue
			}
			ret.AddMissing(&report.Missing{
				FlowID:     flowID,
				Step:       step,
				Reference:  ref,
				Path:       resolution.Path,
				Suggestion: resolution.Suggestion,
			})
		}
		return nil
	}
	for _, flow := range doc.Flows {
		if err := check(flow.ID, 0, citation.Merge(flow.Citations, flow.SourceDocuments)); err != nil {
			return err
		}
		for i, step := range flow.Steps {
			if !step.IsObject() {
				continue
			}
			if err := check(flow.ID, i+1, citation.Merge(step.Citations, step.SourceDocuments)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Service) hasStage(stage Stage) bool {
	for _, candidate := range s.stages {
		if candidate == stage {
			return true
		}
	}
	return false
}

// New creates a pipeline service
func New(options ...Option) (*Service, error) {
	ret := &Service{}
	for _, option := range options {
		option(ret)
	}
	if ret.config == nil {
		ret.config = DefaultConfig()
	}
	ret.config.Init()
	if err := ret.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if ret.fs == nil {
		ret.fs = afs.New()
	}
	if ret.log == nil {
		ret.log = logger.NewNop()
	}
	if len(ret.stages) == 0 {
		ret.stages = AllStages
	}
	if ret.tracing != nil {
		if err := tracing.Init(ret.tracing.serviceName, ret.tracing.serviceVersion, ret.tracing.outputFile); err != nil {
			return nil, fmt.Errorf("failed to init tracing: %w", err)
		}
	}
	for _, config := range ret.config.Modules {
		ret.modules = append(ret.modules, config.Module())
	}
	ret.normalizer = reference.New(ret.modules...)
	var err error
	if ret.assets, err = asset.New(ret.fs, ret.config.AssetURL,
		asset.WithPatterns(ret.config.AssetPatterns...),
		asset.WithCacheSize(ret.config.CacheSize),
		asset.WithNormalizer(ret.normalizer)); err != nil {
		return nil, err
	}
	if ret.corpus, err = corpus.New(ret.fs, ret.config.DataURL,
		corpus.WithIndent(ret.config.Indent),
		corpus.WithRequiredFields(ret.config.RequiredFields...),
		corpus.WithBackupURL(ret.config.BackupURL)); err != nil {
		return nil, err
	}
	return ret, nil
}
