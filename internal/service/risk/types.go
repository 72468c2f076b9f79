package risk

import (
	"time"

	"github.com/davidleathers/decision-risk-engine/internal/domain/values"
)

// RiskType categorises a risk factor
type RiskType string

const (
	RiskTypeFinancial   RiskType = "financial"
	RiskTypeOperational RiskType = "operational"
	RiskTypeStrategic   RiskType = "strategic"
	RiskTypeCompliance  RiskType = "compliance"
	RiskTypeMarket      RiskType = "market"
	RiskTypeCredit      RiskType = "credit"
	RiskTypeLiquidity   RiskType = "liquidity"
	RiskTypeTechnology  RiskType = "technology"
	RiskTypeReputation  RiskType = "reputation"
	RiskTypeRegulatory  RiskType = "regulatory"
)

// RiskTypes lists every risk type in declaration order
func RiskTypes() []RiskType {
	return []RiskType{
		RiskTypeFinancial, RiskTypeOperational, RiskTypeStrategic, RiskTypeCompliance, RiskTypeMarket,
		RiskTypeCredit, RiskTypeLiquidity, RiskTypeTechnology, RiskTypeReputation, RiskTypeRegulatory,
	}
}

// RiskLevel is the banded reading of an overall score
type RiskLevel string

const (
	RiskLevelCritical RiskLevel = "Critical"
	RiskLevelVeryHigh RiskLevel = "Very High"
	RiskLevelHigh     RiskLevel = "High"
	RiskLevelMedium   RiskLevel = "Medium"
	RiskLevelLow      RiskLevel = "Low"
	RiskLevelVeryLow  RiskLevel = "Very Low"
)

// Priority orders remediation and mitigation work
type Priority string

const (
	PriorityCritical Priority = "Critical"
	PriorityHigh     Priority = "High"
	PriorityMedium   Priority = "Medium"
	PriorityLow      Priority = "Low"
)

// RiskFactor is a named source of business risk
type RiskFactor struct {
	ID                   string        `json:"id" yaml:"id" validate:"required"`
	Name                 string        `json:"name" yaml:"name" validate:"required"`
	Type                 RiskType      `json:"risk_type" yaml:"risk_type" validate:"required,oneof=financial operational strategic compliance market credit liquidity technology reputation regulatory"`
	Probability          float64       `json:"probability" yaml:"probability" validate:"finite,gte=0,lte=1"`
	ImpactScore          float64       `json:"impact_score" yaml:"impact_score" validate:"finite,gte=0,lte=10"`
	FinancialImpact      *values.Money `json:"financial_impact,omitempty" yaml:"-"`
	Description          string        `json:"description,omitempty" yaml:"description"`
	MitigationStrategies []string      `json:"mitigation_strategies" yaml:"mitigation_strategies"`
	LastAssessed         time.Time     `json:"last_assessed" yaml:"-"`
}

// RawScore is probability x impact, in [0,10]
func (f RiskFactor) RawScore() float64 {
	return f.Probability * f.ImpactScore
}

// Weight is the factor's financial impact when known, else one
func (f RiskFactor) Weight() float64 {
	if f.FinancialImpact != nil && f.FinancialImpact.IsPositive() {
		return f.FinancialImpact.Float64()
	}
	return 1
}

// ConfidenceInterval bounds a score
type ConfidenceInterval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// RiskScore is the aggregate of a set of risk factors
type RiskScore struct {
	OverallScore       float64            `json:"overall_score"`
	RiskLevel          RiskLevel          `json:"risk_level"`
	RiskFactors        []RiskFactor       `json:"risk_factors"`
	ScoreBreakdown     map[string]float64 `json:"score_breakdown"`
	ConfidenceInterval ConfidenceInterval `json:"confidence_interval"`
	Recommendations    []string           `json:"recommendations"`
	CalculatedAt       time.Time          `json:"calculated_at"`
}

// DistributionType names a sampling distribution
type DistributionType string

const (
	DistributionNormal     DistributionType = "normal"
	DistributionUniform    DistributionType = "uniform"
	DistributionTriangular DistributionType = "triangular"
)

// RiskParameter is one stochastic input of a Monte Carlo run. Normal uses
// Mean and StdDev, uniform uses Low and High, triangular uses Low, Mode and
// High. Each draw is multiplied by ImpactFactor before it is added to the
// base outcome.
type RiskParameter struct {
	Distribution DistributionType `json:"distribution" yaml:"distribution" validate:"required,oneof=normal uniform triangular"`
	Mean         float64          `json:"mean,omitempty" yaml:"mean" validate:"finite"`
	StdDev       float64          `json:"std_dev,omitempty" yaml:"std_dev" validate:"finite,gte=0"`
	Low          float64          `json:"low,omitempty" yaml:"low" validate:"finite"`
	Mode         float64          `json:"mode,omitempty" yaml:"mode" validate:"finite"`
	High         float64          `json:"high,omitempty" yaml:"high" validate:"finite"`
	ImpactFactor float64          `json:"impact_factor" yaml:"impact_factor" validate:"finite"`
}

// SimulationOptions tunes one Monte Carlo run. Zero Runs uses the configured
// default; a nil Seed uses the configured seed.
type SimulationOptions struct {
	Runs int
	Seed *uint64
}

// MonteCarloResult summarises the simulated outcome population
type MonteCarloResult struct {
	SimulationRuns    int       `json:"simulation_runs"`
	BaseOutcome       float64   `json:"base_outcome"`
	MeanOutcome       float64   `json:"mean_outcome"`
	MedianOutcome     float64   `json:"median_outcome"`
	StdDeviation      float64   `json:"std_deviation"`
	Percentile5       float64   `json:"percentile_5"`
	Percentile95      float64   `json:"percentile_95"`
	VaR95             float64   `json:"var_95"`
	CVaR95            float64   `json:"cvar_95"`
	ProbabilityOfLoss float64   `json:"probability_of_loss"`
	WorstCase         float64   `json:"worst_case_scenario"`
	BestCase          float64   `json:"best_case_scenario"`
	ConfidenceLevel   float64   `json:"confidence_level"`
	Seed              uint64    `json:"seed"`
	Parameters        []string  `json:"parameters"`
	Samples           []float64 `json:"simulation_results"`
}

// MitigationConstraints bound a mitigation plan. Nil fields are unconstrained.
type MitigationConstraints struct {
	Budget       *values.Money
	TimelineDays *int
}

// MitigationStrategy is one costed step of a mitigation plan
type MitigationStrategy struct {
	Name               string       `json:"name"`
	Description        string       `json:"description"`
	EstimatedCost      values.Money `json:"estimated_cost"`
	Effectiveness      float64      `json:"effectiveness"`
	ImplementationDays int          `json:"implementation_time_days"`
	Priority           Priority     `json:"priority"`
	SuccessProbability float64      `json:"success_probability"`
}

// TimelineEntry places a strategy on the sequential implementation schedule
type TimelineEntry struct {
	Strategy string    `json:"strategy"`
	StartDay int       `json:"start_day"`
	EndDay   int       `json:"end_day"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// RiskMitigationPlan is the set of strategies accepted for one risk factor
type RiskMitigationPlan struct {
	ID                    string               `json:"id"`
	RiskFactorID          string               `json:"risk_factor_id"`
	Strategies            []MitigationStrategy `json:"mitigation_strategies"`
	Timeline              []TimelineEntry      `json:"implementation_timeline"`
	TotalDays             int                  `json:"total_days"`
	EstimatedCost         values.Money         `json:"estimated_cost"`
	ExpectedRiskReduction float64              `json:"expected_risk_reduction"`
	SuccessProbability    float64              `json:"success_probability"`
	MonitoringMetrics     []string             `json:"monitoring_metrics"`
	ResponsibleParties    []string             `json:"responsible_parties"`
	ConstraintWarnings    []string             `json:"constraint_warnings,omitempty"`
	CreatedAt             time.Time            `json:"created_at"`
}

// CompanySize buckets a company for compliance adjustments
type CompanySize string

const (
	SizeStartup CompanySize = "startup"
	SizeSmall   CompanySize = "small"
	SizeMedium  CompanySize = "medium"
	SizeLarge   CompanySize = "large"
)

// CompanyProfile describes the company whose regulatory exposure is assessed
type CompanyProfile struct {
	IsPublic              bool        `json:"is_public" yaml:"is_public"`
	ProcessesPersonalData bool        `json:"processes_personal_data" yaml:"processes_personal_data"`
	ProcessesPayments     bool        `json:"processes_payments" yaml:"processes_payments"`
	Size                  CompanySize `json:"size" yaml:"size" validate:"required,oneof=startup small medium large"`
	Industry              string      `json:"industry" yaml:"industry"`
}

// ComplianceOptions tunes a compliance assessment. A nil Seed uses the configured seed.
type ComplianceOptions struct {
	Seed *uint64
}

// ComplianceRisk is the exposure to one regulation
type ComplianceRisk struct {
	RegulationName     string       `json:"regulation_name"`
	Jurisdiction       string       `json:"jurisdiction"`
	ComplianceLevel    float64      `json:"compliance_level"`
	RiskScore          float64      `json:"risk_score"`
	PotentialPenalties values.Money `json:"potential_penalties"`
	ComplianceGaps     []string     `json:"compliance_gaps"`
	RemediationActions []string     `json:"remediation_actions"`
	Deadline           *time.Time   `json:"deadline,omitempty"`
	Priority           Priority     `json:"priority"`
}

// ReportOptions tunes a comprehensive report. A nil Seed uses the configured
// seed for both the simulation and the compliance assessment.
type ReportOptions struct {
	Seed *uint64
}

// RiskReport is the comprehensive view of a company's risk position
type RiskReport struct {
	ID              string                  `json:"id"`
	CompanyID       string                  `json:"company_id"`
	GeneratedAt     time.Time               `json:"generated_at"`
	OverallScore    *RiskScore              `json:"overall_risk_score"`
	CategoryScores  map[RiskType]*RiskScore `json:"category_scores"`
	MonteCarlo      *MonteCarloResult       `json:"monte_carlo_results"`
	ComplianceRisks []ComplianceRisk        `json:"compliance_risks"`
	MitigationPlans []*RiskMitigationPlan   `json:"mitigation_plans"`
	Recommendations []string                `json:"recommendations"`
}
