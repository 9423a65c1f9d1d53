package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/newthinker/tickervista/internal/core"
	"github.com/newthinker/tickervista/internal/scheduler"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig              `mapstructure:"server"`
	Storage      StorageConfig             `mapstructure:"storage"`
	Sources      []string                  `mapstructure:"sources"`
	MinCandles   int                       `mapstructure:"min_candles"`
	History      HistoryConfig             `mapstructure:"history"`
	Pipeline     PipelineConfig            `mapstructure:"pipeline"`
	Universe     UniverseConfig            `mapstructure:"universe"`
	Indices      []IndexConfig             `mapstructure:"indices"`
	FX           []FXConfig                `mapstructure:"fx"`
	AlphaVantage AlphaVantageConfig        `mapstructure:"alphavantage"`
	Schedule     string                    `mapstructure:"schedule"`
	Notifiers    map[string]NotifierConfig `mapstructure:"notifiers"`
	Metrics      MetricsConfig             `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`
}

type StorageConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// HistoryConfig bounds the candle window handed to the engine.
type HistoryConfig struct {
	MaxCandles int `mapstructure:"max_candles"`
	Years      int `mapstructure:"years"`
}

type PipelineConfig struct {
	Workers       int `mapstructure:"workers"`
	SyntheticDays int `mapstructure:"synthetic_days"`
}

type UniverseConfig struct {
	SP500      bool              `mapstructure:"sp500"`
	SP500Limit int               `mapstructure:"sp500_limit"`
	SP500URL   string            `mapstructure:"sp500_url"`
	Symbols    []core.SymbolMeta `mapstructure:"symbols"`
}

// IndexConfig names a market index shown in the market overview.
type IndexConfig struct {
	Symbol       string `mapstructure:"symbol"`
	SourceSymbol string `mapstructure:"source_symbol"`
	Name         string `mapstructure:"name"`
}

// FXConfig names a currency pair shown in the market overview.
type FXConfig struct {
	Pair         string `mapstructure:"pair"`
	SourceSymbol string `mapstructure:"source_symbol"`
}

type AlphaVantageConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// NotifierConfig configures a run-summary channel, keyed by "telegram" or
// "webhook" in Config.Notifiers.
type NotifierConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	// Webhook notifier fields
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file. Keys missing from the file keep
// their Defaults value.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("storage.type", d.Storage.Type)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.s3.region", d.Storage.S3.Region)
	v.SetDefault("sources", d.Sources)
	v.SetDefault("min_candles", d.MinCandles)
	v.SetDefault("history.max_candles", d.History.MaxCandles)
	v.SetDefault("history.years", d.History.Years)
	v.SetDefault("pipeline.workers", d.Pipeline.Workers)
	v.SetDefault("pipeline.synthetic_days", d.Pipeline.SyntheticDays)
	v.SetDefault("universe.sp500", d.Universe.SP500)
	v.SetDefault("universe.sp500_limit", d.Universe.SP500Limit)
	v.SetDefault("universe.sp500_url", d.Universe.SP500URL)
	v.SetDefault("indices", indexDefaults(d.Indices))
	v.SetDefault("fx", fxDefaults(d.FX))
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
}

func indexDefaults(items []IndexConfig) []map[string]any {
	out := make([]map[string]any, len(items))
	for i, it := range items {
		out[i] = map[string]any{"symbol": it.Symbol, "source_symbol": it.SourceSymbol, "name": it.Name}
	}
	return out
}

func fxDefaults(items []FXConfig) []map[string]any {
	out := make([]map[string]any, len(items))
	for i, it := range items {
		out[i] = map[string]any{"pair": it.Pair, "source_symbol": it.SourceSymbol}
	}
	return out
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Type: "localfs",
			Path: "data",
			S3:   S3Config{Region: "us-east-1"},
		},
		Sources:    []string{"stooq", "yahoo", "synthetic"},
		MinCandles: 30,
		History: HistoryConfig{
			MaxCandles: 730,
			Years:      5,
		},
		Pipeline: PipelineConfig{
			Workers:       4,
			SyntheticDays: 730,
		},
		Universe: UniverseConfig{
			SP500:      true,
			SP500Limit: 200,
			SP500URL:   "https://raw.githubusercontent.com/datasets/s-and-p-500-companies/main/data/constituents.csv",
		},
		Indices: []IndexConfig{
			{Symbol: "SPX", SourceSymbol: "^spx", Name: "S&P 500"},
			{Symbol: "NDX", SourceSymbol: "^ndq", Name: "NASDAQ 100"},
			{Symbol: "N225", SourceSymbol: "^nikkei", Name: "Nikkei 225"},
			{Symbol: "TOPX", SourceSymbol: "^topix", Name: "TOPIX"},
		},
		FX: []FXConfig{
			{Pair: "USDJPY", SourceSymbol: "usdjpy"},
			{Pair: "EURUSD", SourceSymbol: "eurusd"},
			{Pair: "GBPUSD", SourceSymbol: "gbpusd"},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

var knownSources = map[string]struct{}{"stooq": {}, "yahoo": {}, "synthetic": {}}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	switch c.Storage.Type {
	case "localfs":
		if c.Storage.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("storage path required when type is localfs"))
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown storage type %q", c.Storage.Type))
	}

	if len(c.Sources) == 0 {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("at least one source is required"))
	}
	for _, name := range c.Sources {
		if _, ok := knownSources[name]; !ok {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown source %q", name))
		}
	}

	if c.MinCandles < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("min_candles cannot be negative, got %d", c.MinCandles))
	}
	if c.History.MaxCandles < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("history.max_candles must be positive, got %d", c.History.MaxCandles))
	}
	if c.Pipeline.Workers < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("pipeline.workers must be positive, got %d", c.Pipeline.Workers))
	}

	for _, m := range c.Universe.Symbols {
		if _, err := core.NormalizeSymbol(m.Symbol); err != nil {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("universe symbol %q: %w", m.Symbol, err))
		}
	}

	for name, n := range c.Notifiers {
		if !n.Enabled {
			continue
		}
		switch name {
		case "telegram":
			if n.BotToken == "" || n.ChatID == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("telegram notifier requires bot_token and chat_id"))
			}
		case "webhook":
			if n.URL == "" {
				return core.WrapError(core.ErrConfigMissing, fmt.Errorf("webhook notifier requires url"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown notifier %q", name))
		}
	}

	if c.Schedule != "" {
		if err := scheduler.Validate(c.Schedule); err != nil {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("schedule %q: %w", c.Schedule, err))
		}
	}

	return nil
}
