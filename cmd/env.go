package main

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/paul-stiebitz/entity-extract/internal/bench"
	"github.com/paul-stiebitz/entity-extract/internal/dispatch"
	"github.com/paul-stiebitz/entity-extract/internal/extract"
	"github.com/paul-stiebitz/entity-extract/internal/model"
	"github.com/paul-stiebitz/entity-extract/internal/store"
	"github.com/paul-stiebitz/entity-extract/pkg/ollama"
)

// env bundles the wired components shared by the commands.
type env struct {
	Client     ollama.Client
	Extractor  *extract.Extractor
	Dispatcher *dispatch.Dispatcher
	Runner     *bench.Runner
	Store      store.Store
}

// initEnv wires the model client, extractor, dispatcher, and store from
// config. Callers must Close it.
func initEnv(ctx context.Context) (*env, error) {
	client := ollama.NewClient(cfg.Ollama.APIKey,
		ollama.WithBaseURL(cfg.Ollama.BaseURL),
		ollama.WithModel(cfg.Ollama.Model),
		ollama.WithRateLimit(cfg.Ollama.RateLimitRPS),
	)

	ex := extract.New(client, extract.Config{
		Model:      cfg.Ollama.Model,
		MaxTokens:  cfg.Ollama.MaxTokens,
		MaxRetries: cfg.Ollama.MaxRetries,
		Timeout:    cfg.Ollama.Timeout(),
	})

	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}

	return &env{
		Client:     client,
		Extractor:  ex,
		Dispatcher: dispatch.New(ex),
		Runner:     bench.NewRunner(ex),
		Store:      st,
	}, nil
}

func (e *env) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// resolveCatalog returns the configured label catalog, falling back to the
// built-in set.
func resolveCatalog() model.EntityTypeSet {
	if len(cfg.Extract.EntityTypes) > 0 {
		return model.EntityTypeSet(cfg.Extract.EntityTypes)
	}
	return model.EntityTypeSet(model.DefaultEntityTypes)
}

// resolveEntitySet parses a comma-separated label selection and validates it
// against the catalog. An empty selection means the full catalog.
func resolveEntitySet(selection string) (model.EntityTypeSet, error) {
	catalog := resolveCatalog()

	if strings.TrimSpace(selection) == "" {
		return catalog, nil
	}

	known := make(map[string]bool, len(catalog))
	for _, label := range catalog {
		known[label] = true
	}

	var set model.EntityTypeSet
	for _, label := range strings.Split(selection, ",") {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		if !known[label] {
			return nil, eris.Errorf("unknown entity type %q (catalog: %s)", label, strings.Join(catalog, ", "))
		}
		set = append(set, label)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

func summarize(results []model.ExtractionResult, concurrency int, wall time.Duration) model.RunMetrics {
	m := model.RunMetrics{
		Mode:        model.ModeWhole,
		Concurrency: concurrency,
		DocCount:    len(results),
		DocTimes:    make([]time.Duration, len(results)),
		WallClock:   wall,
	}
	for i, res := range results {
		m.DocTimes[i] = res.Elapsed
		if res.OK() {
			m.Succeeded++
		} else {
			m.Failed++
		}
	}
	return m
}
