package compare

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/qaanoonAI/legal-ocr-service/internal/aggregate"
	"github.com/qaanoonAI/legal-ocr-service/internal/backend"
	"github.com/qaanoonAI/legal-ocr-service/internal/models"
)

// AdapterSource is the slice of the registry the orchestrator needs.
type AdapterSource interface {
	Get(name string) (backend.Adapter, bool)
	Names() []string
	Unavailable() map[string]string
}

// Request describes one comparison run.
type Request struct {
	PDFPath  string
	Pages    []int    // nil means all pages
	Backends []string // nil means every available backend
	Parallel bool
	DPI      int
}

// Orchestrator runs several backends over the same document and scores the
// results. Backends are isolated from each other: a failing or panicking
// backend becomes an error outcome in its own slot and never disturbs its
// siblings. There are no retries and no cross-backend cancellation.
type Orchestrator struct {
	source     AdapterSource
	aggregator *aggregate.Aggregator
	scorer     *Scorer
}

func NewOrchestrator(source AdapterSource, aggregator *aggregate.Aggregator, scorer *Scorer) *Orchestrator {
	return &Orchestrator{
		source:     source,
		aggregator: aggregator,
		scorer:     scorer,
	}
}

// Compare runs the requested backends and assembles the full report. It
// returns an error only when the document cannot be opened or none of the
// requested backends is available; per-backend failures and unavailable
// requested backends land in individual_results.
func (o *Orchestrator) Compare(ctx context.Context, req Request) (*models.ComparisonReport, error) {
	if _, err := os.Stat(req.PDFPath); err != nil {
		return nil, fmt.Errorf("cannot open document %s: %w", req.PDFPath, err)
	}

	requested := req.Backends
	if len(requested) == 0 {
		requested = o.source.Names()
	}

	// a requested backend that cannot run becomes an error outcome in its
	// slot; the run proceeds with whatever remains
	adapters := make([]backend.Adapter, 0, len(requested))
	skipped := make(map[string]string)
	for _, name := range requested {
		adapter, ok := o.source.Get(name)
		if !ok {
			reason := "backend is not available"
			if why, known := o.source.Unavailable()[name]; known {
				reason = "backend unavailable: " + why
			}
			skipped[name] = reason
			log.Warn().Str("backend", name).Str("reason", reason).Msg("requested backend skipped")
			continue
		}
		adapters = append(adapters, adapter)
	}
	if len(adapters) == 0 {
		return nil, fmt.Errorf("no backends available for comparison")
	}

	log.Info().
		Str("pdf", req.PDFPath).
		Strs("backends", requested).
		Bool("parallel", req.Parallel).
		Msg("starting backend comparison")

	started := time.Now()

	// one pre-allocated slot per backend; each goroutine writes only its own
	outcomes := make([]models.BackendOutcome, len(adapters))
	if req.Parallel {
		var wg sync.WaitGroup
		for i, adapter := range adapters {
			wg.Add(1)
			go func(slot int, a backend.Adapter) {
				defer wg.Done()
				outcomes[slot] = o.runBackend(ctx, a, req)
			}(i, adapter)
		}
		wg.Wait()
	} else {
		for i, adapter := range adapters {
			if err := ctx.Err(); err != nil {
				outcomes[i] = models.BackendOutcome{Err: fmt.Sprintf("not started: %v", err)}
				continue
			}
			outcomes[i] = o.runBackend(ctx, adapter, req)
		}
	}

	individual := make(map[string]models.BackendOutcome, len(requested))
	for name, reason := range skipped {
		individual[name] = models.BackendOutcome{Err: reason}
	}
	successful := make(map[string]*models.DocumentResult)
	for i, adapter := range adapters {
		individual[adapter.Name()] = outcomes[i]
		if !outcomes[i].Failed() {
			successful[adapter.Name()] = outcomes[i].Result
		}
	}

	report := &models.ComparisonReport{
		Metadata: models.ComparisonMetadata{
			PDFPath:             req.PDFPath,
			PagesProcessed:      req.Pages,
			BackendsCompared:    requested,
			TotalComparisonTime: time.Since(started).Seconds(),
			Timestamp:           time.Now().UTC(),
			ParallelExecution:   req.Parallel,
		},
		IndividualResults: individual,
		Summary:           o.scorer.Score(successful),
	}

	log.Info().
		Int("succeeded", len(successful)).
		Int("failed", len(adapters)-len(successful)).
		Float64("elapsed", report.Metadata.TotalComparisonTime).
		Msg("comparison finished")

	return report, nil
}

// Evaluate runs a single backend and aggregates its output.
func (o *Orchestrator) Evaluate(ctx context.Context, name string, req Request) (*models.DocumentResult, error) {
	adapter, ok := o.source.Get(name)
	if !ok {
		return nil, fmt.Errorf("backend %q is not available", name)
	}
	outcome := o.runBackend(ctx, adapter, req)
	if outcome.Failed() {
		return nil, fmt.Errorf("backend %s: %s", name, outcome.Err)
	}
	return outcome.Result, nil
}

// runBackend executes one adapter and converts every kind of failure,
// panics included, into an error outcome.
func (o *Orchestrator) runBackend(ctx context.Context, adapter backend.Adapter, req Request) (outcome models.BackendOutcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("backend", adapter.Name()).Interface("panic", r).Msg("backend panicked")
			outcome = models.BackendOutcome{Err: fmt.Sprintf("backend panic: %v", r)}
		}
	}()

	report, err := adapter.Extract(ctx, backend.Request{
		PDFPath: req.PDFPath,
		Pages:   req.Pages,
		DPI:     req.DPI,
	})
	if err != nil {
		log.Warn().Str("backend", adapter.Name()).Err(err).Msg("backend failed")
		return models.BackendOutcome{Err: err.Error()}
	}

	return models.BackendOutcome{Result: o.aggregator.FromReport(report)}
}
