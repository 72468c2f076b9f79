package risk

import (
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/davidleathers/decision-risk-engine/internal/domain/financial"
	"github.com/davidleathers/decision-risk-engine/internal/domain/values"
	"github.com/davidleathers/decision-risk-engine/internal/infrastructure/telemetry"
	"github.com/davidleathers/decision-risk-engine/internal/metrics"
)

// Config holds the tunables of the risk engine
type Config struct {
	MonteCarloRuns  int
	ConfidenceLevel float64
	// RiskTolerance is the probability of loss above which reports warn
	RiskTolerance float64
	// Seed drives every stochastic entry point; 0 seeds from the clock
	Seed              uint64
	Workers           int
	ChunkSize         int
	ReportBaseOutcome values.Money
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		MonteCarloRuns:    DefaultMonteCarloRuns,
		ConfidenceLevel:   DefaultConfidenceLevel,
		RiskTolerance:     DefaultRiskTolerance,
		Workers:           DefaultWorkers,
		ChunkSize:         DefaultChunkSize,
		ReportBaseOutcome: values.MustNewMoneyFromString(DefaultBaseOutcome),
	}
}

// Option customises a service
type Option func(*service)

// WithClock sets the clock used for timestamps and deadlines
func WithClock(clock financial.Clock) Option {
	return func(s *service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithCatalog replaces the default catalog
func WithCatalog(catalog *Catalog) Option {
	return func(s *service) {
		if catalog != nil {
			s.catalog = catalog
		}
	}
}

// WithBenchmarks sets the industry benchmark provider
func WithBenchmarks(benchmarks IndustryBenchmarks) Option {
	return func(s *service) {
		if benchmarks != nil {
			s.benchmarks = benchmarks
		}
	}
}

// WithTracerProvider sets where simulation and report spans go. The global
// provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *service) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

const tracerName = "github.com/davidleathers/decision-risk-engine/internal/service/risk"

// service implements the Service interface
type service struct {
	config     Config
	catalog    *Catalog
	benchmarks IndustryBenchmarks
	clock      financial.Clock
	logger     *zap.Logger
	metrics    *metrics.Registry
	tracer     trace.Tracer
}

// NewService creates a new risk assessment engine seeded with the default
// catalog. Zero config values fall back to the defaults; logger and registry
// may be nil.
func NewService(cfg Config, logger *zap.Logger, registry *metrics.Registry, opts ...Option) Service {
	defaults := DefaultConfig()
	if cfg.MonteCarloRuns <= 0 {
		cfg.MonteCarloRuns = defaults.MonteCarloRuns
	}
	if cfg.ConfidenceLevel <= 0 || cfg.ConfidenceLevel >= 1 {
		cfg.ConfidenceLevel = defaults.ConfidenceLevel
	}
	if cfg.RiskTolerance <= 0 || cfg.RiskTolerance > 1 {
		cfg.RiskTolerance = defaults.RiskTolerance
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaults.ChunkSize
	}
	if cfg.ReportBaseOutcome.IsZero() {
		cfg.ReportBaseOutcome = defaults.ReportBaseOutcome
	}

	s := &service{
		config:     cfg,
		benchmarks: DefaultIndustryBenchmarks(),
		clock:      financial.RealClock{},
		logger:     telemetry.OrNop(logger).Named("risk"),
		metrics:    registry,
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.catalog == nil {
		s.catalog = DefaultCatalog(s.clock)
	}

	return s
}

// Catalog returns the engine-owned risk factor catalog
func (s *service) Catalog() *Catalog {
	return s.catalog
}

// seed resolves the seed of one stochastic call
func (s *service) seed(override *uint64) uint64 {
	if override != nil {
		return *override
	}
	if s.config.Seed != 0 {
		return s.config.Seed
	}
	return uint64(time.Now().UnixNano())
}

// track records the operation once its named error result is final
func (s *service) track(operation string, started time.Time, err *error) {
	s.metrics.RecordCalculation(operation, started, *err)
}
