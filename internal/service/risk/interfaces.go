package risk

import (
	"context"

	"github.com/davidleathers/decision-risk-engine/internal/domain/values"
)

// Service defines the risk assessment engine
type Service interface {
	// CalculateRiskScore aggregates factors into a 0-100 score. A nil slice scores the catalog.
	CalculateRiskScore(factors []RiskFactor) (*RiskScore, error)

	// RunMonteCarloSimulation draws outcomes of base plus the weighted parameter draws
	RunMonteCarloSimulation(ctx context.Context, base values.Money, parameters map[string]RiskParameter, opts SimulationOptions) (*MonteCarloResult, error)

	// CreateMitigationPlan costs the factor's strategies within the constraints
	CreateMitigationPlan(factor RiskFactor, constraints MitigationConstraints) (*RiskMitigationPlan, error)

	// AssessComplianceRisk scores the regulations that apply to the profile.
	// A non-empty regulations list overrides applicability detection.
	AssessComplianceRisk(profile CompanyProfile, regulations []string, opts ComplianceOptions) ([]ComplianceRisk, error)

	// GenerateComprehensiveRiskReport composes every assessment over the catalog.
	// profile may be nil, in which case compliance is skipped.
	GenerateComprehensiveRiskReport(ctx context.Context, companyID string, profile *CompanyProfile, opts ReportOptions) (*RiskReport, error)

	// Catalog returns the engine-owned risk factor catalog
	Catalog() *Catalog
}

// IndustryBenchmarks supplies industry adjustments to the compliance base rate
type IndustryBenchmarks interface {
	// ComplianceAdjustment returns the additive adjustment for industry; unknown industries return 0
	ComplianceAdjustment(industry string) float64
}
