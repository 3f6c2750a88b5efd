// Package dispatch fans documents out to a bounded pool of extraction
// workers and reassembles results in input order.
package dispatch

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/paul-stiebitz/entity-extract/internal/extract"
	"github.com/paul-stiebitz/entity-extract/internal/model"
)

// Dispatcher runs the single-document extractor over many documents with a
// configurable concurrency bound.
type Dispatcher struct {
	extractor *extract.Extractor
}

// New creates a Dispatcher over the given extractor.
func New(ex *extract.Extractor) *Dispatcher {
	return &Dispatcher{extractor: ex}
}

// Run processes docs with at most concurrency extractions in flight and
// returns one terminal result per document, in input order, regardless of
// completion order. A single document's failure never aborts the run; only a
// precondition violation (empty docs, invalid entity set, non-positive
// concurrency) is returned as an error. On cancellation, finished documents
// keep their results and unfinished slots are marked cancelled.
func (d *Dispatcher) Run(ctx context.Context, docs []model.Document, set model.EntityTypeSet, concurrency int) ([]model.ExtractionResult, error) {
	if len(docs) == 0 {
		return nil, model.NewInvalidInput("document set is empty")
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	if concurrency < 1 {
		return nil, model.NewInvalidInput("concurrency must be positive")
	}
	if concurrency > len(docs) {
		concurrency = len(docs)
	}

	zap.L().Info("dispatching batch",
		zap.Int("documents", len(docs)),
		zap.Int("concurrency", concurrency),
	)

	// Results are written into pre-sized slots keyed by position, so no
	// sorting pass is needed and completion order is irrelevant.
	results := make([]model.ExtractionResult, len(docs))

	g := new(errgroup.Group)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			// Admission stops once the run is cancelled; the slot still
			// receives a terminal result so ordering holds.
			if ctx.Err() != nil {
				results[i] = cancelledResult(doc)
				failed.Add(1)
				return nil
			}

			res, err := d.extractor.Extract(ctx, doc, set, model.ModeWhole)
			if err != nil {
				// Precondition violations are caught before dispatch; an
				// error here means a per-document input problem.
				res = model.ExtractionResult{
					Index:   doc.Index,
					Failure: model.FailureInvalidInput,
					Reason:  err.Error(),
				}
			}
			results[i] = res

			if res.OK() {
				succeeded.Add(1)
			} else {
				failed.Add(1)
				zap.L().Warn("document extraction failed",
					zap.Int("doc_index", doc.Index),
					zap.String("kind", string(res.Failure)),
					zap.String("reason", res.Reason),
				)
			}
			return nil
		})
	}

	_ = g.Wait()

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return results, nil
}

func cancelledResult(doc model.Document) model.ExtractionResult {
	return model.ExtractionResult{
		Index:   doc.Index,
		Failure: model.FailureCancelled,
		Reason:  "run cancelled before document was admitted",
	}
}
