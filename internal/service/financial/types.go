package financial

import (
	"time"

	"github.com/davidleathers/decision-risk-engine/internal/domain/financial"
	"github.com/davidleathers/decision-risk-engine/internal/domain/values"
)

// PresentValue is one discounted cash flow
type PresentValue struct {
	Period         int          `json:"period"`
	CashFlow       values.Money `json:"cash_flow"`
	DiscountFactor float64      `json:"discount_factor"`
	PresentValue   values.Money `json:"present_value"`
}

// NPVResult is the outcome of CalculateNPV. Money fields are rounded to cents;
// the NPV is rounded once from the unrounded sum.
type NPVResult struct {
	NPV               values.Money   `json:"npv"`
	DiscountRate      float64        `json:"discount_rate"`
	InitialInvestment values.Money   `json:"initial_investment"`
	TotalPresentValue values.Money   `json:"total_present_value"`
	PresentValues     []PresentValue `json:"present_values"`
	IsProfitable      bool           `json:"is_profitable"`
	CalculatedAt      time.Time      `json:"calculated_at"`
}

// IRRResult is the outcome of CalculateIRR. Converged means |NPVAtIRR| is
// below the tolerance. A result with Converged=false carries the best
// approximation the solvers reached; WithinPrecision then says the residual is
// at the float64 noise floor of a large series rather than a solver failure.
type IRRResult struct {
	IRR             float64   `json:"irr"`
	Converged       bool      `json:"converged"`
	WithinPrecision bool      `json:"within_precision"`
	Iterations      int       `json:"iterations"`
	Method          string    `json:"method"`
	NPVAtIRR        float64   `json:"npv_at_irr"`
	Realistic       bool      `json:"realistic"`
	CashFlows       int       `json:"cash_flow_count"`
	CalculatedAt    time.Time `json:"calculated_at"`
}

// ProjectionMethod selects the growth model of a projection
type ProjectionMethod string

const (
	MethodLinear    ProjectionMethod = "linear"
	MethodCompound  ProjectionMethod = "compound"
	MethodDeclining ProjectionMethod = "declining"
)

// ProjectionRequest describes a cash-flow projection
type ProjectionRequest struct {
	BaseAmount values.Money     `json:"base_amount"`
	Periods    int              `json:"periods"`
	GrowthRate float64          `json:"growth_rate"`
	Volatility *float64         `json:"volatility,omitempty"`
	Method     ProjectionMethod `json:"method"`
}

// ProjectedPeriod is one projected period. Lower and Upper are only set when a
// volatility was supplied.
type ProjectedPeriod struct {
	Period     int           `json:"period"`
	Amount     values.Money  `json:"amount"`
	Cumulative values.Money  `json:"cumulative"`
	Lower      *values.Money `json:"lower_bound,omitempty"`
	Upper      *values.Money `json:"upper_bound,omitempty"`
}

// CashFlowProjection is the outcome of ProjectCashFlows.
//
// The confidence band is a heuristic: dispersion is |amount| x volatility x
// sqrt(period), scaled by the normal quantile of the confidence level. It is
// not a stochastic model of the series.
type CashFlowProjection struct {
	Method          ProjectionMethod     `json:"method"`
	BaseAmount      values.Money         `json:"base_amount"`
	GrowthRate      float64              `json:"growth_rate"`
	Volatility      *float64             `json:"volatility,omitempty"`
	ConfidenceLevel float64              `json:"confidence_level,omitempty"`
	Periods         []ProjectedPeriod    `json:"periods"`
	Total           values.Money         `json:"total"`
	CashFlows       []financial.CashFlow `json:"cash_flows"`
}

// PaybackResult holds simple and discounted payback periods. A nil period
// means the investment is never recovered within the series.
type PaybackResult struct {
	SimplePayback     *float64     `json:"simple_payback"`
	DiscountedPayback *float64     `json:"discounted_payback"`
	DiscountRate      float64      `json:"discount_rate"`
	InitialInvestment values.Money `json:"initial_investment"`
}

// ProfitabilityIndexResult is the outcome of CalculateProfitabilityIndex.
// PresentValue discounts the whole series, so outflows inside it reduce the
// numerator; only InitialInvestment is kept apart as the denominator.
type ProfitabilityIndexResult struct {
	ProfitabilityIndex float64      `json:"profitability_index"`
	Interpretation     string       `json:"interpretation"`
	PresentValue       values.Money `json:"present_value"`
	InitialInvestment  values.Money `json:"initial_investment"`
	NPV                values.Money `json:"npv"`
	DiscountRate       float64      `json:"discount_rate"`
}

// ScenarioName identifies one of the three scenarios
type ScenarioName string

const (
	ScenarioBase        ScenarioName = "base"
	ScenarioOptimistic  ScenarioName = "optimistic"
	ScenarioPessimistic ScenarioName = "pessimistic"
)

// Adjustment scales parameters of the base case by proportional multipliers.
// A nil Probability keeps the scenario's default probability.
type Adjustment struct {
	Multipliers map[Parameter]float64 `json:"multipliers"`
	Probability *float64              `json:"probability,omitempty"`
}

// ScenarioAdjustments overrides the default adjustments per scenario. Only the
// probability of ScenarioBase may be set; its multipliers must be empty.
type ScenarioAdjustments map[ScenarioName]Adjustment

// ScenarioOutcome is one evaluated scenario
type ScenarioOutcome struct {
	Name        ScenarioName   `json:"name"`
	Params      ScenarioParams `json:"params"`
	NPV         values.Money   `json:"npv"`
	Probability float64        `json:"probability"`
}

// ScenarioAnalysis is the outcome of PerformScenarioAnalysis
type ScenarioAnalysis struct {
	Base                   ScenarioOutcome `json:"base"`
	Optimistic             ScenarioOutcome `json:"optimistic"`
	Pessimistic            ScenarioOutcome `json:"pessimistic"`
	ExpectedValue          values.Money    `json:"expected_value"`
	StandardDeviation      float64         `json:"standard_deviation"`
	CoefficientOfVariation float64         `json:"coefficient_of_variation"`
	DownsideRisk           values.Money    `json:"downside_risk"`
	UpsidePotential        values.Money    `json:"upside_potential"`
}

// Scenarios lists the outcomes in base, optimistic, pessimistic order
func (a *ScenarioAnalysis) Scenarios() []ScenarioOutcome {
	return []ScenarioOutcome{a.Base, a.Optimistic, a.Pessimistic}
}

// SensitivityPoint is the NPV for one perturbation of one variable
type SensitivityPoint struct {
	Change    float64      `json:"change"`
	Value     float64      `json:"value"`
	NPV       values.Money `json:"npv"`
	NPVChange values.Money `json:"npv_change"`
}

// VariableSensitivity is the sweep of one variable
type VariableSensitivity struct {
	Variable  Parameter          `json:"variable"`
	BaseValue float64            `json:"base_value"`
	Points    []SensitivityPoint `json:"points"`
	MaxImpact values.Money       `json:"max_impact"`
	LowNPV    values.Money       `json:"low_npv"`
	HighNPV   values.Money       `json:"high_npv"`
}

// SensitivityAnalysis is the outcome of PerformSensitivityAnalysis. Tornado is
// sorted by MaxImpact, largest first.
type SensitivityAnalysis struct {
	BaseNPV                values.Money           `json:"base_npv"`
	ChangePercentages      []float64              `json:"change_percentages"`
	Variables              []*VariableSensitivity `json:"variables"`
	Tornado                []*VariableSensitivity `json:"tornado"`
	MostSensitiveVariables []Parameter            `json:"most_sensitive_variables"`
	SkippedVariables       []Parameter            `json:"skipped_variables,omitempty"`
}
