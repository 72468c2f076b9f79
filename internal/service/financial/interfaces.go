package financial

import (
	"github.com/davidleathers/decision-risk-engine/internal/domain/financial"
	"github.com/davidleathers/decision-risk-engine/internal/domain/values"
)

// Service defines the financial modeling engine. Every method is a pure,
// synchronous computation over its arguments and safe for concurrent use.
type Service interface {
	// CalculateNPV discounts each cash flow to period 0 and subtracts initialInvestment when given
	CalculateNPV(cashFlows []financial.CashFlow, discountRate float64, initialInvestment *values.Money) (*NPVResult, error)
	// CalculateIRR finds the rate at which the series' NPV is zero
	CalculateIRR(cashFlows []financial.CashFlow) (*IRRResult, error)
	// ProjectCashFlows grows a base amount over future periods
	ProjectCashFlows(req ProjectionRequest) (*CashFlowProjection, error)
	// PerformScenarioAnalysis compares base, optimistic and pessimistic NPVs
	PerformScenarioAnalysis(base ScenarioParams, adjustments ScenarioAdjustments) (*ScenarioAnalysis, error)
	// PerformSensitivityAnalysis perturbs one parameter at a time and ranks their NPV impact
	PerformSensitivityAnalysis(base ScenarioParams, variables []Parameter, changePercentages []float64) (*SensitivityAnalysis, error)
	// CalculatePaybackPeriod returns simple and discounted payback; discountRate nil uses the configured default
	CalculatePaybackPeriod(cashFlows []financial.CashFlow, initialInvestment values.Money, discountRate *float64) (*PaybackResult, error)
	// CalculateProfitabilityIndex returns PV(cashFlows) / initialInvestment with an accept/reject reading;
	// outflows inside cashFlows are netted into the numerator
	CalculateProfitabilityIndex(cashFlows []financial.CashFlow, initialInvestment values.Money, discountRate *float64) (*ProfitabilityIndexResult, error)
}

// Objective is the function whose root a RootSolver looks for. Scale is the
// gross magnitude of the terms F sums; solvers use it to recognise when
// floating-point noise, not the iteration, limits the achievable accuracy.
type Objective struct {
	F     func(rate float64) float64
	Scale float64
}

// Bracket bounds the search interval of a RootSolver
type Bracket struct {
	Low  float64
	High float64
}

// SolverResult is a root estimate and whether it met the solver's tolerance.
// WithinPrecision marks an estimate that stalled with a residual float64
// rounding accounts for; it does not imply Converged.
type SolverResult struct {
	Rate            float64
	Converged       bool
	WithinPrecision bool
	Iterations      int
}

// RootSolver finds a rate where the objective is zero. Implementations must
// terminate within their own iteration budget.
type RootSolver interface {
	Name() string
	Solve(obj Objective, bracket Bracket) SolverResult
}
