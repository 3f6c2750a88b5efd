// Package bench times streaming and batch extraction over the same document
// set at varying concurrency levels and renders a comparison report.
package bench

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/paul-stiebitz/entity-extract/internal/dispatch"
	"github.com/paul-stiebitz/entity-extract/internal/extract"
	"github.com/paul-stiebitz/entity-extract/internal/model"
)

// Runner executes timed extraction runs.
type Runner struct {
	extractor  *extract.Extractor
	dispatcher *dispatch.Dispatcher
}

// NewRunner creates a benchmark runner sharing one extractor between the
// streaming and batch paths so both modes hit the same backend policy.
func NewRunner(ex *extract.Extractor) *Runner {
	return &Runner{
		extractor:  ex,
		dispatcher: dispatch.New(ex),
	}
}

// MeasureStreaming runs sequential streaming-mode extraction over docs.
// Concurrency is not applicable to streaming and is recorded as 1.
func (r *Runner) MeasureStreaming(ctx context.Context, docs []model.Document, set model.EntityTypeSet) (model.RunMetrics, error) {
	if err := set.Validate(); err != nil {
		return model.RunMetrics{}, err
	}
	if len(docs) == 0 {
		return model.RunMetrics{}, model.NewInvalidInput("document set is empty")
	}

	m := model.RunMetrics{
		Mode:        model.ModeStream,
		Concurrency: 1,
		DocCount:    len(docs),
		DocTimes:    make([]time.Duration, len(docs)),
	}

	start := time.Now()
	for i, doc := range docs {
		res, err := r.extractor.Extract(ctx, doc, set, model.ModeStream)
		if err != nil {
			return m, err
		}
		m.DocTimes[i] = res.Elapsed
		if res.OK() {
			m.Succeeded++
		} else {
			m.Failed++
		}
	}
	m.WallClock = time.Since(start)
	return m, nil
}

// MeasureBatch runs one batch dispatch over docs at the given concurrency.
func (r *Runner) MeasureBatch(ctx context.Context, docs []model.Document, set model.EntityTypeSet, concurrency int) (model.RunMetrics, error) {
	m := model.RunMetrics{
		Mode:        model.ModeWhole,
		Concurrency: concurrency,
		DocCount:    len(docs),
		DocTimes:    make([]time.Duration, len(docs)),
	}

	start := time.Now()
	results, err := r.dispatcher.Run(ctx, docs, set, concurrency)
	if err != nil {
		return m, err
	}
	m.WallClock = time.Since(start)

	// Per-document elapsed is sampled inside the extractor; attribute it by
	// index since completion order may differ from submission order.
	for i, res := range results {
		m.DocTimes[i] = res.Elapsed
		if res.OK() {
			m.Succeeded++
		} else {
			m.Failed++
		}
	}
	return m, nil
}

// Sweep measures streaming vs batch over the document set at each requested
// concurrency level. At level N the first N documents form the window, the
// streaming pass processes them sequentially, and the batch pass processes
// them with N workers. Failure counts are recorded per run but never halt the
// sweep; only a whole-request precondition violation aborts.
func (r *Runner) Sweep(ctx context.Context, docs []model.Document, set model.EntityTypeSet, levels []int) ([]model.RunMetrics, error) {
	if len(docs) == 0 {
		return nil, model.NewInvalidInput("document set is empty")
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		return nil, model.NewInvalidInput("no concurrency levels requested")
	}
	for _, level := range levels {
		if level < 1 {
			return nil, model.NewInvalidInput("concurrency level must be positive")
		}
	}

	var out []model.RunMetrics
	for _, level := range levels {
		window := docs
		if level < len(docs) {
			window = docs[:level]
		}

		zap.L().Info("measuring level",
			zap.Int("level", level),
			zap.Int("window", len(window)),
		)

		sm, err := r.MeasureStreaming(ctx, window, set)
		if err != nil {
			return out, err
		}
		out = append(out, sm)

		bm, err := r.MeasureBatch(ctx, window, set, level)
		if err != nil {
			return out, err
		}
		out = append(out, bm)

		zap.L().Info("level complete",
			zap.Int("level", level),
			zap.Duration("stream", sm.WallClock),
			zap.Duration("batch", bm.WallClock),
			zap.Int("stream_failed", sm.Failed),
			zap.Int("batch_failed", bm.Failed),
		)

		if ctx.Err() != nil {
			break
		}
	}
	return out, nil
}
