package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
)

// EnvPrefix is the prefix for environment overrides, e.g. FINRISK_RISK_MONTE_CARLO_RUNS
const EnvPrefix = "FINRISK_"

type Config struct {
	LogLevel string `koanf:"log_level"`

	Financial FinancialConfig `koanf:"financial"`
	Risk      RiskConfig      `koanf:"risk"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type FinancialConfig struct {
	DefaultDiscountRate float64 `koanf:"default_discount_rate"`
	MaxIRRIterations    int     `koanf:"max_irr_iterations"`
	IRRTolerance        float64 `koanf:"irr_tolerance"`
}

type RiskConfig struct {
	MonteCarloRuns  int     `koanf:"monte_carlo_runs"`
	ConfidenceLevel float64 `koanf:"confidence_level"`
	RiskTolerance   float64 `koanf:"risk_tolerance"`
	// Seed of 0 means seed from the clock on every run
	Seed      uint64 `koanf:"seed"`
	Workers   int    `koanf:"workers"`
	ChunkSize int    `koanf:"chunk_size"`
	// ReportBaseOutcome is a decimal string, the representative base scenario of comprehensive reports
	ReportBaseOutcome string `koanf:"report_base_outcome"`
}

// TelemetryConfig controls OTLP export of metrics and traces. Disabled by
// default; engines then record into no-op providers.
type TelemetryConfig struct {
	Enabled        bool          `koanf:"enabled"`
	ServiceName    string        `koanf:"service_name"`
	ServiceVersion string        `koanf:"service_version"`
	Environment    string        `koanf:"environment"`
	OTLPEndpoint   string        `koanf:"otlp_endpoint"`
	Insecure       bool          `koanf:"insecure"`
	SamplingRate   float64       `koanf:"sampling_rate"`
	ExportTimeout  time.Duration `koanf:"export_timeout"`
	ExportInterval time.Duration `koanf:"export_interval"`
}

// Defaults returns the built-in configuration
func Defaults() *Config {
	return &Config{
		LogLevel: "info",
		Financial: FinancialConfig{
			DefaultDiscountRate: 0.10,
			MaxIRRIterations:    1000,
			IRRTolerance:        1e-6,
		},
		Risk: RiskConfig{
			MonteCarloRuns:    10000,
			ConfidenceLevel:   0.95,
			RiskTolerance:     0.05,
			Workers:           4,
			ChunkSize:         1000,
			ReportBaseOutcome: "1000000",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "finengine",
			ServiceVersion: "dev",
			Environment:    "development",
			OTLPEndpoint:   "localhost:4317",
			Insecure:       true,
			SamplingRate:   1.0,
			ExportTimeout:  30 * time.Second,
			ExportInterval: 10 * time.Second,
		},
	}
}

// Load reads defaults, then the optional YAML file at path, then FINRISK_ environment variables
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			// A missing file is fine, anything else is a broken config
			if !stderrors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envKey maps FINRISK_RISK_MONTE_CARLO_RUNS to risk.monte_carlo_runs. The first
// segment after the prefix is the section, the rest is the field name.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, found := strings.Cut(key, "_")
	if !found {
		return key
	}
	switch section {
	case "financial", "risk", "telemetry":
		return section + "." + field
	default:
		// top-level keys such as log_level keep their underscores
		return key
	}
}

// Validate rejects values the engines cannot work with
func (c *Config) Validate() error {
	var errs []error

	if c.Financial.DefaultDiscountRate < 0 {
		errs = append(errs, fmt.Errorf("financial.default_discount_rate must be >= 0"))
	}
	if c.Financial.MaxIRRIterations <= 0 {
		errs = append(errs, fmt.Errorf("financial.max_irr_iterations must be > 0"))
	}
	if c.Financial.IRRTolerance <= 0 {
		errs = append(errs, fmt.Errorf("financial.irr_tolerance must be > 0"))
	}
	if c.Risk.MonteCarloRuns <= 0 {
		errs = append(errs, fmt.Errorf("risk.monte_carlo_runs must be > 0"))
	}
	if c.Risk.ConfidenceLevel <= 0 || c.Risk.ConfidenceLevel >= 1 {
		errs = append(errs, fmt.Errorf("risk.confidence_level must be in (0,1)"))
	}
	if c.Risk.RiskTolerance < 0 || c.Risk.RiskTolerance > 1 {
		errs = append(errs, fmt.Errorf("risk.risk_tolerance must be in [0,1]"))
	}
	if c.Risk.Workers <= 0 {
		errs = append(errs, fmt.Errorf("risk.workers must be > 0"))
	}
	if c.Risk.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("risk.chunk_size must be > 0"))
	}
	if _, err := decimal.NewFromString(c.Risk.ReportBaseOutcome); err != nil {
		errs = append(errs, fmt.Errorf("risk.report_base_outcome: %w", err))
	}

	if c.Telemetry.SamplingRate < 0 || c.Telemetry.SamplingRate > 1 {
		errs = append(errs, fmt.Errorf("telemetry.sampling_rate must be in [0,1]"))
	}
	if c.Telemetry.Enabled {
		if c.Telemetry.OTLPEndpoint == "" {
			errs = append(errs, fmt.Errorf("telemetry.otlp_endpoint is required when telemetry is enabled"))
		}
		if c.Telemetry.ExportInterval <= 0 {
			errs = append(errs, fmt.Errorf("telemetry.export_interval must be > 0"))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", stderrors.Join(errs...))
	}
	return nil
}
