package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/davidleathers/decision-risk-engine/internal/domain/values"
	"github.com/davidleathers/decision-risk-engine/internal/infrastructure/config"
	"github.com/davidleathers/decision-risk-engine/internal/infrastructure/telemetry"
	"github.com/davidleathers/decision-risk-engine/internal/metrics"
	"github.com/davidleathers/decision-risk-engine/internal/service/financial"
	"github.com/davidleathers/decision-risk-engine/internal/service/risk"
)

// ServiceFactories builds the engines from one configuration, logger and
// metrics registry
type ServiceFactories struct {
	config   *config.Config
	logger   *zap.Logger
	registry *metrics.Registry
}

// NewServiceFactories creates a new service factory collection. logger and
// registry may be nil.
func NewServiceFactories(cfg *config.Config, logger *zap.Logger, registry *metrics.Registry) (*ServiceFactories, error) {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &ServiceFactories{
		config:   cfg,
		logger:   telemetry.OrNop(logger),
		registry: registry,
	}, nil
}

// CreateFinancialService creates the financial modeling engine
func (f *ServiceFactories) CreateFinancialService(opts ...financial.Option) financial.Service {
	cfg := financial.Config{
		DefaultDiscountRate: f.config.Financial.DefaultDiscountRate,
		MaxIRRIterations:    f.config.Financial.MaxIRRIterations,
		IRRTolerance:        f.config.Financial.IRRTolerance,
		ConfidenceLevel:     f.config.Risk.ConfidenceLevel,
	}
	return financial.NewService(cfg, f.logger, f.registry, opts...)
}

// CreateRiskService creates the risk assessment engine
func (f *ServiceFactories) CreateRiskService(opts ...risk.Option) (risk.Service, error) {
	base, err := values.NewMoneyFromString(f.config.Risk.ReportBaseOutcome)
	if err != nil {
		return nil, fmt.Errorf("risk.report_base_outcome: %w", err)
	}

	cfg := risk.Config{
		MonteCarloRuns:    f.config.Risk.MonteCarloRuns,
		ConfidenceLevel:   f.config.Risk.ConfidenceLevel,
		RiskTolerance:     f.config.Risk.RiskTolerance,
		Seed:              f.config.Risk.Seed,
		Workers:           f.config.Risk.Workers,
		ChunkSize:         f.config.Risk.ChunkSize,
		ReportBaseOutcome: base,
	}
	return risk.NewService(cfg, f.logger, f.registry, opts...), nil
}
