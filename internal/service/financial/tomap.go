package financial

import (
	"time"

	"github.com/davidleathers/decision-risk-engine/internal/domain/financial"
)

// The ToMap methods flatten results for reporting and persistence layers.
// Money is rendered as a fixed two-decimal string, statistics as float64 and
// timestamps as RFC 3339.

// ToMap converts the result into a plain map
func (r *NPVResult) ToMap() map[string]interface{} {
	pvs := make([]map[string]interface{}, 0, len(r.PresentValues))
	for _, pv := range r.PresentValues {
		pvs = append(pvs, map[string]interface{}{
			"period":          pv.Period,
			"cash_flow":       pv.CashFlow.Exact(),
			"discount_factor": pv.DiscountFactor,
			"present_value":   pv.PresentValue.Exact(),
		})
	}
	return map[string]interface{}{
		"npv":                 r.NPV.Exact(),
		"discount_rate":       r.DiscountRate,
		"initial_investment":  r.InitialInvestment.Exact(),
		"total_present_value": r.TotalPresentValue.Exact(),
		"present_values":      pvs,
		"is_profitable":       r.IsProfitable,
		"calculated_at":       timestamp(r.CalculatedAt),
	}
}

// ToMap converts the result into a plain map
func (r *IRRResult) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"irr":              r.IRR,
		"converged":        r.Converged,
		"within_precision": r.WithinPrecision,
		"iterations":       r.Iterations,
		"method":           r.Method,
		"npv_at_irr":       r.NPVAtIRR,
		"realistic":        r.Realistic,
		"cash_flow_count":  r.CashFlows,
		"calculated_at":    timestamp(r.CalculatedAt),
	}
}

// ToMap converts the projection into a plain map
func (p *CashFlowProjection) ToMap() map[string]interface{} {
	periods := make([]map[string]interface{}, 0, len(p.Periods))
	for _, pp := range p.Periods {
		m := map[string]interface{}{
			"period":     pp.Period,
			"amount":     pp.Amount.Exact(),
			"cumulative": pp.Cumulative.Exact(),
		}
		if pp.Lower != nil && pp.Upper != nil {
			m["lower_bound"] = pp.Lower.Exact()
			m["upper_bound"] = pp.Upper.Exact()
		}
		periods = append(periods, m)
	}

	out := map[string]interface{}{
		"method":      string(p.Method),
		"base_amount": p.BaseAmount.Exact(),
		"growth_rate": p.GrowthRate,
		"periods":     periods,
		"total":       p.Total.Exact(),
		"cash_flows":  cashFlowMaps(p.CashFlows),
	}
	if p.Volatility != nil {
		out["volatility"] = *p.Volatility
		out["confidence_level"] = p.ConfidenceLevel
	}
	return out
}

// ToMap converts the result into a plain map. Unrecovered periods are nil.
func (r *PaybackResult) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"simple_payback":     optionalFloat(r.SimplePayback),
		"discounted_payback": optionalFloat(r.DiscountedPayback),
		"discount_rate":      r.DiscountRate,
		"initial_investment": r.InitialInvestment.Exact(),
	}
}

// ToMap converts the result into a plain map
func (r *ProfitabilityIndexResult) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"profitability_index": r.ProfitabilityIndex,
		"interpretation":      r.Interpretation,
		"present_value":       r.PresentValue.Exact(),
		"initial_investment":  r.InitialInvestment.Exact(),
		"npv":                 r.NPV.Exact(),
		"discount_rate":       r.DiscountRate,
	}
}

// ToMap converts the analysis into a plain map
func (a *ScenarioAnalysis) ToMap() map[string]interface{} {
	scenarios := make(map[string]interface{}, 3)
	for _, o := range a.Scenarios() {
		scenarios[string(o.Name)] = o.toMap()
	}
	return map[string]interface{}{
		"scenarios":                scenarios,
		"expected_value":           a.ExpectedValue.Exact(),
		"standard_deviation":       a.StandardDeviation,
		"coefficient_of_variation": a.CoefficientOfVariation,
		"downside_risk":            a.DownsideRisk.Exact(),
		"upside_potential":         a.UpsidePotential.Exact(),
	}
}

func (o ScenarioOutcome) toMap() map[string]interface{} {
	return map[string]interface{}{
		"npv":         o.NPV.Exact(),
		"probability": o.Probability,
		"params":      o.Params.ToMap(),
	}
}

// ToMap converts the parameters into a plain map
func (p ScenarioParams) ToMap() map[string]interface{} {
	return map[string]interface{}{
		string(ParamInitialInvestment): p.InitialInvestment.Exact(),
		string(ParamCashFlow):          p.AnnualCashFlow.Exact(),
		string(ParamPeriods):           p.Periods,
		string(ParamDiscountRate):      p.DiscountRate,
		string(ParamGrowthRate):        p.GrowthRate,
	}
}

// ToMap converts the analysis into a plain map
func (a *SensitivityAnalysis) ToMap() map[string]interface{} {
	variables := make(map[string]interface{}, len(a.Variables))
	for _, v := range a.Variables {
		points := make([]map[string]interface{}, 0, len(v.Points))
		for _, pt := range v.Points {
			points = append(points, map[string]interface{}{
				"change":     pt.Change,
				"value":      pt.Value,
				"npv":        pt.NPV.Exact(),
				"npv_change": pt.NPVChange.Exact(),
			})
		}
		variables[string(v.Variable)] = map[string]interface{}{
			"base_value": v.BaseValue,
			"points":     points,
			"max_impact": v.MaxImpact.Exact(),
			"low_npv":    v.LowNPV.Exact(),
			"high_npv":   v.HighNPV.Exact(),
		}
	}

	tornado := make([]map[string]interface{}, 0, len(a.Tornado))
	for _, v := range a.Tornado {
		tornado = append(tornado, map[string]interface{}{
			"variable":   string(v.Variable),
			"max_impact": v.MaxImpact.Exact(),
			"low_npv":    v.LowNPV.Exact(),
			"high_npv":   v.HighNPV.Exact(),
		})
	}

	return map[string]interface{}{
		"base_npv":                 a.BaseNPV.Exact(),
		"change_percentages":       a.ChangePercentages,
		"variables":                variables,
		"tornado":                  tornado,
		"most_sensitive_variables": parameterNames(a.MostSensitiveVariables),
		"skipped_variables":        parameterNames(a.SkippedVariables),
	}
}

func cashFlowMaps(flows []financial.CashFlow) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(flows))
	for _, cf := range flows {
		out = append(out, map[string]interface{}{
			"period":      cf.Period,
			"amount":      cf.Amount.Exact(),
			"description": cf.Description,
			"category":    cf.Category,
		})
	}
	return out
}

func parameterNames(params []Parameter) []string {
	out := make([]string, 0, len(params))
	for _, p := range params {
		out = append(out, string(p))
	}
	return out
}

func optionalFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

