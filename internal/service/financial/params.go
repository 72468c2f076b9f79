package financial

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/davidleathers/decision-risk-engine/internal/domain/errors"
	"github.com/davidleathers/decision-risk-engine/internal/domain/validation"
	"github.com/davidleathers/decision-risk-engine/internal/domain/values"
)

// Parameter names one adjustable field of ScenarioParams
type Parameter string

const (
	ParamInitialInvestment Parameter = "initial_investment"
	ParamCashFlow          Parameter = "cash_flow"
	ParamPeriods           Parameter = "periods"
	ParamDiscountRate      Parameter = "discount_rate"
	ParamGrowthRate        Parameter = "growth_rate"
)

// Parameters lists every adjustable parameter
func Parameters() []Parameter {
	return []Parameter{ParamInitialInvestment, ParamCashFlow, ParamPeriods, ParamDiscountRate, ParamGrowthRate}
}

// IsValid reports whether p is a known parameter
func (p Parameter) IsValid() bool {
	switch p {
	case ParamInitialInvestment, ParamCashFlow, ParamPeriods, ParamDiscountRate, ParamGrowthRate:
		return true
	}
	return false
}

// ParseParameter maps a name to a Parameter, rejecting unknown names
func ParseParameter(name string) (Parameter, error) {
	p := Parameter(strings.ToLower(strings.TrimSpace(name)))
	if !p.IsValid() {
		return "", unknownParameter(name)
	}
	return p, nil
}

func unknownParameter(name string) *errors.AppError {
	return errors.NewValidationError(errors.CodeUnknownParameter, "unknown parameter "+name).
		WithDetail("parameter", name).
		WithDetail("allowed", Parameters())
}

// ScenarioParams is the base case of scenario and sensitivity analysis: an
// investment at period 0 followed by Periods annual cash flows that start at
// AnnualCashFlow and grow by GrowthRate per period.
type ScenarioParams struct {
	InitialInvestment values.Money `json:"initial_investment"`
	AnnualCashFlow    values.Money `json:"annual_cash_flow"`
	Periods           int          `json:"periods" validate:"gte=1"`
	DiscountRate      float64      `json:"discount_rate" validate:"finite,gte=0"`
	GrowthRate        float64      `json:"growth_rate" validate:"finite,gt=-1"`
}

// Validate checks the parameter ranges
func (p ScenarioParams) Validate() error {
	if p.InitialInvestment.IsNegative() {
		return errors.NewValidationError(errors.CodeNegativeInvestment, "initial investment cannot be negative").
			WithDetail("initial_investment", p.InitialInvestment.String())
	}
	// Scenario multipliers assume inflows; a negative flow would invert the ordering.
	if p.AnnualCashFlow.IsNegative() {
		return errors.NewValidationError(errors.CodeInvalidInput, "annual cash flow cannot be negative").
			WithDetail("annual_cash_flow", p.AnnualCashFlow.Exact())
	}
	return validation.Struct(p, errors.CodeInvalidInput)
}

// Value returns the parameter as a float
func (p ScenarioParams) Value(param Parameter) (float64, error) {
	switch param {
	case ParamInitialInvestment:
		return p.InitialInvestment.Float64(), nil
	case ParamCashFlow:
		return p.AnnualCashFlow.Float64(), nil
	case ParamPeriods:
		return float64(p.Periods), nil
	case ParamDiscountRate:
		return p.DiscountRate, nil
	case ParamGrowthRate:
		return p.GrowthRate, nil
	}
	return 0, unknownParameter(string(param))
}

// Scale returns a copy with param multiplied by factor. Money is scaled in
// decimal; periods round half away from zero and never drop below one.
func (p ScenarioParams) Scale(param Parameter, factor float64) (ScenarioParams, error) {
	switch param {
	case ParamInitialInvestment:
		p.InitialInvestment = p.InitialInvestment.MulFloat(factor).RoundToCent()
	case ParamCashFlow:
		p.AnnualCashFlow = p.AnnualCashFlow.MulFloat(factor).RoundToCent()
	case ParamPeriods:
		p.Periods = scalePeriods(p.Periods, factor)
	case ParamDiscountRate:
		p.DiscountRate *= factor
	case ParamGrowthRate:
		p.GrowthRate *= factor
	default:
		return p, unknownParameter(string(param))
	}
	return p, nil
}

func scalePeriods(periods int, factor float64) int {
	n := int(math.Round(float64(periods) * factor))
	if n < 1 {
		return 1
	}
	return n
}

// npv discounts the growing annuity described by p and subtracts the investment
func (p ScenarioParams) npv() values.Money {
	one := decimal.NewFromInt(1)
	growth := one.Add(decimal.NewFromFloat(p.GrowthRate))

	total := values.Zero()
	for t := 1; t <= p.Periods; t++ {
		amount := p.AnnualCashFlow.Mul(growth.Pow(decimal.NewFromInt(int64(t - 1))))
		total = total.Add(presentValue(amount, p.DiscountRate, t))
	}
	return total.Sub(p.InitialInvestment).RoundToCent()
}
