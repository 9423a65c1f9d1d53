package main

import (
	"fmt"

	"github.com/newthinker/tickervista/internal/collector"
	"github.com/newthinker/tickervista/internal/collector/alphavantage"
	"github.com/newthinker/tickervista/internal/collector/stooq"
	"github.com/newthinker/tickervista/internal/collector/synthetic"
	"github.com/newthinker/tickervista/internal/collector/yahoo"
	"github.com/newthinker/tickervista/internal/config"
	"github.com/newthinker/tickervista/internal/metrics"
	"github.com/newthinker/tickervista/internal/notifier"
	"github.com/newthinker/tickervista/internal/notifier/telegram"
	"github.com/newthinker/tickervista/internal/notifier/webhook"
	"github.com/newthinker/tickervista/internal/pipeline"
	"github.com/newthinker/tickervista/internal/report"
	"github.com/newthinker/tickervista/internal/storage/archive"
	"github.com/newthinker/tickervista/internal/universe"
	"go.uber.org/zap"
)

// loadConfig reads --config, falling back to defaults, and validates it
func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (archive.Storage, error) {
	s3 := cfg.Storage.S3
	store, err := archive.Open(cfg.Storage.Type, cfg.Storage.Path, archive.S3Config{
		Bucket:    s3.Bucket,
		Endpoint:  s3.Endpoint,
		Region:    s3.Region,
		AccessKey: s3.AccessKey,
		SecretKey: s3.SecretKey,
		Prefix:    s3.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	return store, nil
}

// components holds everything a pipeline run or single analysis needs
type components struct {
	store    archive.Storage
	metrics  *metrics.Registry
	universe *universe.Resolver
	pipeline *pipeline.Pipeline
}

func buildComponents(cfg *config.Config, log *zap.Logger) (*components, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	registry := collector.NewRegistry()
	primary := stooq.New(collector.Config{Enabled: true})
	registry.Register(primary)
	registry.Register(yahoo.New(collector.Config{Enabled: true}))
	registry.Register(synthetic.New(collector.Config{
		Enabled: true,
		Extra:   map[string]any{"days": cfg.Pipeline.SyntheticDays},
	}))

	sources, err := registry.Ordered(cfg.Sources)
	if err != nil {
		return nil, fmt.Errorf("resolving sources: %w", err)
	}
	chain := collector.NewChain(sources, cfg.MinCandles, cfg.History.MaxCandles, log.Named("collector"))

	var dividends collector.DividendSource
	if cfg.AlphaVantage.APIKey != "" {
		dividends = alphavantage.New(collector.Config{Enabled: true, APIKey: cfg.AlphaVantage.APIKey})
	}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}

	resolver := universe.NewResolver(universe.Config{
		Symbols:    cfg.Universe.Symbols,
		SP500:      cfg.Universe.SP500,
		SP500Limit: cfg.Universe.SP500Limit,
		SP500URL:   cfg.Universe.SP500URL,
	}, log.Named("universe"))

	opts := pipeline.Options{
		Workers:      cfg.Pipeline.Workers,
		HistoryYears: cfg.History.Years,
	}
	for _, idx := range cfg.Indices {
		opts.Indices = append(opts.Indices, pipeline.Instrument{Symbol: idx.Symbol, SourceSymbol: idx.SourceSymbol, Name: idx.Name})
	}
	for _, fx := range cfg.FX {
		opts.FX = append(opts.FX, pipeline.Instrument{Symbol: fx.Pair, SourceSymbol: fx.SourceSymbol, Name: fx.Pair})
	}

	notifiers, err := buildNotifiers(cfg.Notifiers)
	if err != nil {
		return nil, err
	}

	p := pipeline.New(pipeline.Deps{
		Chain:     chain,
		Dividends: dividends,
		Universe:  resolver,
		Quotes:    primary,
		Publisher: report.NewPublisher(store, log.Named("publisher")),
		Metrics:   reg,
		Notifiers: notifiers,
	}, opts, log.Named("pipeline"))

	return &components{
		store:    store,
		metrics:  reg,
		universe: resolver,
		pipeline: p,
	}, nil
}

func buildNotifiers(cfgs map[string]config.NotifierConfig) (*notifier.Registry, error) {
	reg := notifier.NewRegistry()
	for name, nc := range cfgs {
		if !nc.Enabled {
			continue
		}
		var n notifier.Notifier
		switch name {
		case "telegram":
			n = telegram.New(nc.BotToken, nc.ChatID)
		case "webhook":
			n = webhook.New(nc.URL, nc.Headers)
		default:
			return nil, fmt.Errorf("unknown notifier %q", name)
		}
		if err := n.Init(notifier.Config{Type: name}); err != nil {
			return nil, fmt.Errorf("initializing %s notifier: %w", name, err)
		}
		if err := reg.Register(n); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
