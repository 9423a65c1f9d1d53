// Package pipeline runs one refresh pass: resolve the universe, fetch and
// analyze every symbol, then publish per-symbol and aggregate documents.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/tickervista/internal/collector"
	"github.com/newthinker/tickervista/internal/core"
	"github.com/newthinker/tickervista/internal/metrics"
	"github.com/newthinker/tickervista/internal/notifier"
	"github.com/newthinker/tickervista/internal/report"
	"go.uber.org/zap"
)

const (
	DefaultWorkers      = 4
	DefaultHistoryYears = 5

	notifyTimeout = 30 * time.Second
)

// Run statuses, also used as the pipeline_runs metric label
const (
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Universe supplies the instruments of a run
type Universe interface {
	Resolve(ctx context.Context) []core.SymbolMeta
}

// Instrument is an index or currency pair quoted in the market overview.
// For FX, Symbol holds the pair.
type Instrument struct {
	Symbol       string
	SourceSymbol string
	Name         string
}

// Deps are the collaborators of a pipeline. Dividends, Quotes, Metrics and
// Notifiers are optional.
type Deps struct {
	Chain     *collector.Chain
	Dividends collector.DividendSource
	Universe  Universe
	Quotes    collector.Source
	Publisher *report.Publisher
	Metrics   *metrics.Registry
	Notifiers *notifier.Registry
}

// Options tune a pipeline
type Options struct {
	Workers      int
	HistoryYears int
	Indices      []Instrument
	FX           []Instrument
}

// Result summarizes a completed run
type Result struct {
	RunID    string         `json:"runId"`
	AsOf     time.Time      `json:"asOf"`
	Status   string         `json:"status"`
	Symbols  int            `json:"symbols"`
	Failed   []string       `json:"failed,omitempty"`
	Lights   map[string]int `json:"lights,omitempty"`
	Indices  int            `json:"indices"`
	FX       int            `json:"fx"`
	Duration time.Duration  `json:"durationNs"`
}

// Pipeline orchestrates fetch, analysis and publishing
type Pipeline struct {
	deps   Deps
	opts   Options
	logger *zap.Logger

	running  sync.Mutex
	newRunID func() string
}

// New creates a pipeline
func New(deps Deps, opts Options, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.HistoryYears <= 0 {
		opts.HistoryYears = DefaultHistoryYears
	}
	return &Pipeline{
		deps:     deps,
		opts:     opts,
		logger:   logger,
		newRunID: uuid.NewString,
	}
}

// Analyze fetches history for one symbol and runs the engine over it.
func (p *Pipeline) Analyze(ctx context.Context, meta core.SymbolMeta, asOf time.Time) (*report.Snapshot, error) {
	start := asOf.AddDate(-p.opts.HistoryYears, 0, 0)

	fetched, err := p.deps.Chain.Fetch(ctx, meta, start, asOf)
	if err != nil {
		p.recordFallbacks(len(p.deps.Chain.Sources()))
		return nil, err
	}
	p.recordFallbacks(fetched.Fallbacks)

	yield := collector.DividendYield(ctx, p.deps.Dividends, meta.Symbol, meta.DividendYield)
	snap, err := report.Analyze(meta, fetched.Candles, yield, asOf)
	if err != nil {
		return nil, err
	}
	snap.Source = fetched.Source

	if m := p.deps.Metrics; m != nil {
		m.RecordSymbol(fetched.Source)
		m.RecordTrafficLight(string(snap.Insight.TrafficLight))
	}
	return snap, nil
}

func (p *Pipeline) recordFallbacks(n int) {
	if p.deps.Metrics == nil || n == 0 {
		return
	}
	sources := p.deps.Chain.Sources()
	names := make([]string, 0, n)
	for _, s := range sources[:min(n, len(sources))] {
		names = append(names, s.Name())
	}
	p.deps.Metrics.RecordFallbacks(names)
}

// Run performs one full pass as of asOf. A run where no symbol succeeds
// returns NO_DATA and publishes no aggregates. Only one run executes at a
// time; a concurrent call returns RUN_IN_PROGRESS and a nil Result.
func (p *Pipeline) Run(ctx context.Context, asOf time.Time) (*Result, error) {
	if !p.running.TryLock() {
		return nil, core.WrapError(core.ErrRunInProgress, nil)
	}
	defer p.running.Unlock()

	began := time.Now()
	res := &Result{RunID: p.newRunID(), AsOf: asOf}
	logger := p.logger.With(zap.String("run_id", res.RunID))

	metas := p.deps.Universe.Resolve(ctx)
	if p.deps.Metrics != nil {
		p.deps.Metrics.SetUniverseSize(len(metas))
	}
	logger.Info("pipeline run starting",
		zap.Int("symbols", len(metas)),
		zap.Int("workers", p.opts.Workers),
		zap.Time("as_of", asOf),
	)

	snapshots, failed := p.processAll(ctx, logger, metas, asOf)
	res.Failed = failed
	res.Symbols = len(snapshots)
	res.Lights = countLights(snapshots)
	if err := ctx.Err(); err != nil {
		p.finish(ctx, res, began, StatusCancelled, err)
		return res, err
	}

	indices := p.quoteAll(ctx, logger, p.opts.Indices, report.IndexWindow)
	fx := p.quoteAll(ctx, logger, p.opts.FX, report.FXWindow)
	res.Indices, res.FX = len(indices), len(fx)

	agg, err := report.Build(snapshots, indices, fx, asOf, res.RunID)
	if err != nil {
		p.finish(ctx, res, began, StatusFailed, err)
		return res, err
	}
	if err := p.deps.Publisher.PublishAggregates(ctx, agg); err != nil {
		err = fmt.Errorf("publishing aggregates: %w", err)
		p.finish(ctx, res, began, StatusFailed, err)
		return res, err
	}

	p.finish(ctx, res, began, StatusSuccess, nil)
	logger.Info("pipeline run complete",
		zap.Int("symbols", res.Symbols),
		zap.Int("failed", len(res.Failed)),
		zap.Int("indices", res.Indices),
		zap.Int("fx", res.FX),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

func countLights(snapshots []*report.Snapshot) map[string]int {
	lights := make(map[string]int)
	for _, s := range snapshots {
		lights[string(s.Insight.TrafficLight)]++
	}
	return lights
}

func (p *Pipeline) finish(ctx context.Context, res *Result, began time.Time, status string, runErr error) {
	res.Status = status
	res.Duration = time.Since(began)
	if p.deps.Metrics != nil {
		p.deps.Metrics.RecordPipelineRun(status, res.Duration.Seconds())
	}
	if p.deps.Notifiers == nil || p.deps.Notifiers.Len() == 0 {
		return
	}

	summary := notifier.RunSummary{
		RunID:    res.RunID,
		AsOf:     res.AsOf,
		Status:   status,
		Symbols:  res.Symbols,
		Failed:   res.Failed,
		Lights:   res.Lights,
		Duration: res.Duration,
	}
	if runErr != nil {
		summary.Error = runErr.Error()
	}
	// A cancelled run still gets announced.
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	for name, err := range p.deps.Notifiers.NotifyAll(notifyCtx, summary) {
		p.logger.Warn("failed to send run notification",
			zap.String("notifier", name),
			zap.String("run_id", res.RunID),
			zap.Error(err),
		)
	}
}

// processAll analyzes and publishes symbols on a bounded pool. Successful
// snapshots keep the universe order.
func (p *Pipeline) processAll(ctx context.Context, logger *zap.Logger, metas []core.SymbolMeta, asOf time.Time) ([]*report.Snapshot, []string) {
	results := make([]*report.Snapshot, len(metas))
	sem := make(chan struct{}, p.opts.Workers)
	var wg sync.WaitGroup

dispatch:
	for i, meta := range metas {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, meta core.SymbolMeta) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = p.processOne(ctx, logger, meta, asOf)
		}(i, meta)
	}
	wg.Wait()

	snapshots := make([]*report.Snapshot, 0, len(metas))
	var failed []string
	for i, s := range results {
		if s == nil {
			failed = append(failed, metas[i].Symbol)
			continue
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, failed
}

func (p *Pipeline) processOne(ctx context.Context, logger *zap.Logger, meta core.SymbolMeta, asOf time.Time) *report.Snapshot {
	snap, err := p.Analyze(ctx, meta, asOf)
	if err != nil {
		logger.Warn("symbol skipped", zap.String("symbol", meta.Symbol), zap.Error(err))
		return nil
	}
	if err := p.deps.Publisher.PublishSymbol(ctx, snap); err != nil {
		logger.Error("failed to publish symbol", zap.String("symbol", meta.Symbol), zap.Error(err))
		return nil
	}
	logger.Debug("symbol processed",
		zap.String("symbol", meta.Symbol),
		zap.String("source", snap.Source),
		zap.Int("candles", len(snap.Candles)),
		zap.String("light", string(snap.Insight.TrafficLight)),
	)
	return snap
}

// quoteAll fetches index or FX levels. Instruments that fail are dropped.
func (p *Pipeline) quoteAll(ctx context.Context, logger *zap.Logger, instruments []Instrument, window int) []report.Quote {
	quotes := make([]report.Quote, 0, len(instruments))
	if p.deps.Quotes == nil {
		return quotes
	}
	for _, inst := range instruments {
		meta := core.SymbolMeta{Symbol: inst.Symbol, Stooq: inst.SourceSymbol, Name: inst.Name}
		candles, err := p.deps.Quotes.FetchHistory(ctx, meta, time.Time{}, time.Time{})
		if err != nil {
			logger.Debug("quote unavailable", zap.String("symbol", inst.Symbol), zap.Error(err))
			continue
		}
		q, ok := report.QuoteFromCandles(inst.Symbol, inst.Name, core.Normalize(core.Valid(candles), 0), window)
		if !ok {
			logger.Debug("quote unavailable", zap.String("symbol", inst.Symbol))
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes
}
