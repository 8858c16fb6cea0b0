// Package search is the public query API for the deal retrieval engine: it
// wires the catalog, embedding index, corpus word set, the three scorers,
// and the ranker into the two entry points callers use, Search and
// SearchStream (spec §6). It is built the way the teacher's
// internal/search.Engine is built: a struct of collaborators assembled by
// functional options, with the three scoring passes fanned out via
// errgroup and fanned back in before ranking (spec §5).
package search

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dealsearch/dealsearch/internal/catalog"
	"github.com/dealsearch/dealsearch/internal/config"
	"github.com/dealsearch/dealsearch/internal/corpus"
	"github.com/dealsearch/dealsearch/internal/embed"
	"github.com/dealsearch/dealsearch/internal/rank"
	"github.com/dealsearch/dealsearch/internal/scorer"
)

// DealResult is the result type callers see; it is the ranker's DealResult
// re-exported at the package boundary so pkg/search consumers never need to
// import internal/rank directly.
type DealResult = rank.DealResult

// Expander is the external query-expansion collaborator (spec §4.9). Query
// expansion itself is out of scope for this engine; this interface is the
// narrow seam an expander plugs into, mirroring the teacher's
// WithQueryExpander(*QueryExpander) option for a pluggable *interface*
// instead of a concrete type, since no expander implementation ships here.
type Expander interface {
	Expand(ctx context.Context, query string) ([]string, error)
}

// Engine is the assembled query-time search engine over a fixed catalog
// snapshot and its embedding matrix.
type Engine struct {
	records    []*catalog.Record
	vectors    [][]float32
	words      *corpus.WordSet
	embedder   embed.Embedder
	keyword    *scorer.KeywordScorer
	fuzzy      *scorer.FuzzyScorer
	semantic   *scorer.SemanticScorer
	merger     *rank.MultiQueryMerger
	expander   Expander

	defaultTopK     int
	streamBatchSize int
}

// Option configures an Engine.
type Option func(*Engine)

// WithExpander sets the optional query expander (spec §4.9). When present
// and Expand returns more than one term for a query, Search routes through
// the multi-query merge path (spec §4.8) instead of single-query ranking.
func WithExpander(exp Expander) Option {
	return func(e *Engine) { e.expander = exp }
}

// WithDefaultTopK overrides the default result count used when Search is
// called with topK <= 0.
func WithDefaultTopK(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.defaultTopK = n
		}
	}
}

// WithStreamBatchSize overrides how many results SearchStream emits per
// batch (spec §5, default 5).
func WithStreamBatchSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.streamBatchSize = n
		}
	}
}

// WithMultiQueryCutoffFactor overrides the adaptive cutoff factor applied
// over a merged multi-query result set (spec §4.8, default 0.45).
func WithMultiQueryCutoffFactor(factor float64) Option {
	return func(e *Engine) {
		if factor > 0 {
			e.merger.CutoffFactor = factor
		}
	}
}

// New assembles an Engine over records and their parallel embedding
// matrix (vectors[i] must be the embedding of records[i].EmbeddingText()).
// embedder is used only for query-time embedding; the catalog vectors are
// precomputed once at index-build time via internal/store.EmbeddingCache.
func New(records []*catalog.Record, vectors [][]float32, embedder embed.Embedder, opts ...Option) *Engine {
	e := &Engine{
		records:         records,
		vectors:         vectors,
		words:           corpus.Build(records),
		embedder:        embedder,
		keyword:         scorer.NewKeywordScorer(),
		fuzzy:           scorer.NewFuzzyScorer(),
		semantic:        scorer.NewSemanticScorer(),
		merger:          rank.NewMultiQueryMerger(),
		defaultTopK:     rank.DefaultTopK,
		streamBatchSize: 5,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewFromConfig assembles an Engine with its tunables sourced from cfg's
// RankingConfig, in addition to any explicit opts (which take precedence,
// since they're applied after the config-derived ones).
func NewFromConfig(records []*catalog.Record, vectors [][]float32, embedder embed.Embedder, cfg *config.Config, opts ...Option) *Engine {
	base := []Option{
		WithDefaultTopK(cfg.Ranking.TopK),
		WithStreamBatchSize(cfg.Ranking.StreamBatchSize),
		WithMultiQueryCutoffFactor(cfg.Ranking.MultiQueryCutoffFactor),
	}
	return New(records, vectors, embedder, append(base, opts...)...)
}

// Search runs the full retrieval/ranking pipeline for query and returns up
// to topK ranked deals (spec §6). topK <= 0 uses the engine default. Per
// spec §7's error policy, query-time failures (embedding errors, context
// cancellation, the gibberish gate) never surface as an error — they
// collapse to an empty result.
func (e *Engine) Search(ctx context.Context, query string, topK int) ([]*DealResult, error) {
	if topK <= 0 {
		topK = e.defaultTopK
	}

	terms := []string{query}
	if e.expander != nil {
		expanded, err := e.expander.Expand(ctx, query)
		if err != nil {
			slog.Warn("query expansion failed, falling back to original query",
				slog.String("query", query), slog.String("error", err.Error()))
		} else if len(expanded) > 1 {
			terms = expanded
		}
	}

	if len(terms) == 1 {
		deals, err := e.rankSingleTerm(ctx, terms[0], topK)
		if err != nil {
			slog.Warn("search failed, returning empty result",
				slog.String("query", query), slog.String("error", err.Error()))
			return []*DealResult{}, nil
		}
		return deals, nil
	}

	deals, err := e.merger.MergeTerms(ctx, terms, func(ctx context.Context, term string) ([]*DealResult, error) {
		return e.rankSingleTerm(ctx, term, topK)
	})
	if err != nil {
		slog.Warn("multi-query search failed, returning empty result",
			slog.String("query", query), slog.String("error", err.Error()))
		return []*DealResult{}, nil
	}
	if len(deals) > topK {
		deals = deals[:topK]
	}
	return deals, nil
}

// SearchStream runs Search and emits the ranked deals in monotonically
// score-descending batches of streamBatchSize over a channel, closed once
// exhausted or ctx is cancelled (spec §5, §6).
func (e *Engine) SearchStream(ctx context.Context, query string, topK int) (<-chan []*DealResult, error) {
	deals, err := e.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	batchSize := e.streamBatchSize
	if batchSize <= 0 {
		batchSize = 5
	}

	ch := make(chan []*DealResult)
	go func() {
		defer close(ch)
		for i := 0; i < len(deals); i += batchSize {
			end := i + batchSize
			if end > len(deals) {
				end = len(deals)
			}
			select {
			case ch <- deals[i:end]:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

// rankSingleTerm scores term against the catalog with the three scorers
// fanned out concurrently (spec §5: one errgroup.Go per scorer, each
// writing its own pre-allocated slice, context threaded through for
// cancellation), applies the gibberish gate (spec §4.7), and ranks the
// survivors (spec §4.6). An empty slice with a nil error means the
// gibberish gate rejected the query — distinct from a real scoring error.
// A cancelled ctx returns its error, since the scorers stop early and
// leave partial score vectors.
func (e *Engine) rankSingleTerm(ctx context.Context, term string, topK int) ([]*DealResult, error) {
	queryWords := catalog.Tokenize(term)

	var keywordScores, fuzzyScores, semanticScores []float64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		keywordScores = e.keyword.Score(gctx, term, e.records)
		return nil
	})
	g.Go(func() error {
		fuzzyScores = e.fuzzy.Score(gctx, term, e.records)
		return nil
	})
	g.Go(func() error {
		vec, err := e.embedder.Embed(gctx, term)
		if err != nil {
			return err
		}
		semanticScores = e.semantic.Score(gctx, vec, e.vectors)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if corpus.IsGibberish(queryWords, keywordScores, fuzzyScores, e.words) {
		return []*DealResult{}, nil
	}

	rk := &rank.Ranker{TopK: topK}
	return rk.Rank(term, e.records, keywordScores, fuzzyScores, semanticScores), nil
}
