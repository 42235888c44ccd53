package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/skyops/core/engine"
	"github.com/kilianp07/skyops/core/factory"
	"github.com/kilianp07/skyops/core/metrics"
)

// EnvPrefix marks environment overrides. SKYOPS_HTTP__TOKEN sets http.token.
const EnvPrefix = "SKYOPS_"

type Config struct {
	Engine   engine.Config        `json:"engine"`
	Provider factory.ModuleConfig `json:"provider"`
	Weather  WeatherConfig        `json:"weather"`
	Logging  LoggingConfig        `json:"logging"`
	Audit    AuditConfig          `json:"audit"`
	Metrics  metrics.Config       `json:"metrics"`
	HTTP     HTTPConfig           `json:"http"`
	Sentry   SentryConfig         `json:"sentry"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section's optional fields.
func (c *Config) SetDefaults() {
	if c.Engine.DuplicatePolicy == "" {
		c.Engine.DuplicatePolicy = engine.PolicyReject
	}
	if c.Engine.ProviderTimeout <= 0 {
		c.Engine.ProviderTimeout = engine.DefaultProviderTimeout
	}
	c.Logging.SetDefaults()
	c.Audit.SetDefaults()
	c.HTTP.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	switch c.Engine.DuplicatePolicy {
	case engine.PolicyReject, engine.PolicyLastWins:
	default:
		return fmt.Errorf("engine: unknown duplicate_policy %q", c.Engine.DuplicatePolicy)
	}
	if c.Provider.Type == "" {
		return fmt.Errorf("provider: type is required")
	}
	if err := c.Weather.Validate(); err != nil {
		return fmt.Errorf("weather: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Audit.Validate(); err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	return nil
}
