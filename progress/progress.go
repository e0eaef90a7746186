package progress

import (
	"context"
	"sync"
	"time"

	"github.com/viant/flowcorpus/internal/clock"
)

// Delta represents an incremental counter change
type Delta struct {
	Total     int
	Processed int
	Skipped   int
	Failed    int
}

// Progress keeps aggregated module counters. It is safe for concurrent use.
type Progress struct {
	RunID     string
	Mode      string
	StartedAt time.Time
	// Current is the module being processed
	Current string

	TotalModules     int
	ProcessedModules int
	SkippedModules   int
	FailedModules    int

	sync.Mutex
	onChange func(Progress)
}

// Update applies the supplied delta. A registered onChange callback is
// invoked with a copy of the tracker outside the critical section.
func (p *Progress) Update(d Delta) {
	p.apply(func() {
		p.TotalModules += d.Total
		p.ProcessedModules += d.Processed
		p.SkippedModules += d.Skipped
		p.FailedModules += d.Failed
	})
}

// Begin marks module as the one being processed
func (p *Progress) Begin(module string) {
	p.apply(func() {
		p.Current = module
	})
}

func (p *Progress) apply(change func()) {
	if p == nil {
		return
	}
	p.Lock()
	change()
	snapshot := p.copy()
	cb := p.onChange
	p.Unlock()
	if cb != nil {
		cb(snapshot)
	}
}

func (p *Progress) copy() Progress {
	return Progress{
		RunID:            p.RunID,
		Mode:             p.Mode,
		StartedAt:        p.StartedAt,
		Current:          p.Current,
		TotalModules:     p.TotalModules,
		ProcessedModules: p.ProcessedModules,
		SkippedModules:   p.SkippedModules,
		FailedModules:    p.FailedModules,
	}
}

// Snapshot returns a copy of the tracker suitable for read-only inspection.
func (p *Progress) Snapshot() Progress {
	if p == nil {
		return Progress{}
	}
	p.Lock()
	defer p.Unlock()
	return p.copy()
}

// Remaining returns the number of modules not yet finished
func (p Progress) Remaining() int {
	return p.TotalModules - p.ProcessedModules - p.SkippedModules - p.FailedModules
}

// OnChange registers a callback invoked after every update, nil disables it.
func (p *Progress) OnChange(cb func(Progress)) {
	if p == nil {
		return
	}
	p.Lock()
	p.onChange = cb
	p.Unlock()
}

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithNewTracker creates a tracker, embeds it in a derived context and returns both.
func WithNewTracker(ctx context.Context, runID, mode string, onChange func(Progress)) (context.Context, *Progress) {
	if ctx == nil {
		ctx = context.Background()
	}
	tr := &Progress{
		RunID:     runID,
		Mode:      mode,
		StartedAt: clock.Now(),
		onChange:  onChange,
	}
	return context.WithValue(ctx, trackerKey, tr), tr
}

// FromContext extracts the tracker from ctx.
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Progress)
	return tr, ok
}

// UpdateCtx applies the delta to the tracker carried by ctx, if any.
func UpdateCtx(ctx context.Context, d Delta) {
	if tr, ok := FromContext(ctx); ok {
		tr.Update(d)
	}
}

// BeginCtx marks the current module on the tracker carried by ctx, if any.
func BeginCtx(ctx context.Context, module string) {
	if tr, ok := FromContext(ctx); ok {
		tr.Begin(module)
	}
}
