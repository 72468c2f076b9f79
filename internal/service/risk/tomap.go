package risk

import "time"

// ToMap converts the factor into a plain map
func (f RiskFactor) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":                    f.ID,
		"name":                  f.Name,
		"risk_type":             string(f.Type),
		"probability":           f.Probability,
		"impact_score":          f.ImpactScore,
		"raw_score":             f.RawScore(),
		"description":           f.Description,
		"mitigation_strategies": append([]string{}, f.MitigationStrategies...),
		"last_assessed":         timestamp(f.LastAssessed),
	}
	if f.FinancialImpact != nil {
		m["financial_impact"] = f.FinancialImpact.Exact()
	} else {
		m["financial_impact"] = nil
	}
	return m
}

// ToMap converts the score into a plain map
func (r *RiskScore) ToMap() map[string]interface{} {
	factors := make([]map[string]interface{}, 0, len(r.RiskFactors))
	for _, f := range r.RiskFactors {
		factors = append(factors, f.ToMap())
	}
	breakdown := make(map[string]interface{}, len(r.ScoreBreakdown))
	for k, v := range r.ScoreBreakdown {
		breakdown[k] = v
	}
	return map[string]interface{}{
		"overall_score":       r.OverallScore,
		"risk_level":          string(r.RiskLevel),
		"risk_factors":        factors,
		"score_breakdown":     breakdown,
		"confidence_interval": []float64{r.ConfidenceInterval.Low, r.ConfidenceInterval.High},
		"recommendations":     append([]string{}, r.Recommendations...),
		"calculated_at":       timestamp(r.CalculatedAt),
	}
}

// ToMap converts the result into a plain map. The raw sample is included.
func (r *MonteCarloResult) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"simulation_runs":     r.SimulationRuns,
		"base_outcome":        r.BaseOutcome,
		"mean_outcome":        r.MeanOutcome,
		"median_outcome":      r.MedianOutcome,
		"std_deviation":       r.StdDeviation,
		"percentile_5":        r.Percentile5,
		"percentile_95":       r.Percentile95,
		"var_95":              r.VaR95,
		"cvar_95":             r.CVaR95,
		"probability_of_loss": r.ProbabilityOfLoss,
		"worst_case_scenario": r.WorstCase,
		"best_case_scenario":  r.BestCase,
		"confidence_level":    r.ConfidenceLevel,
		"seed":                r.Seed,
		"parameters":          append([]string{}, r.Parameters...),
		"simulation_results":  append([]float64{}, r.Samples...),
	}
}

// ToMap converts the plan into a plain map
func (p *RiskMitigationPlan) ToMap() map[string]interface{} {
	strategies := make([]map[string]interface{}, 0, len(p.Strategies))
	for _, st := range p.Strategies {
		strategies = append(strategies, map[string]interface{}{
			"name":                     st.Name,
			"description":              st.Description,
			"estimated_cost":           st.EstimatedCost.Exact(),
			"effectiveness":            st.Effectiveness,
			"implementation_time_days": st.ImplementationDays,
			"priority":                 string(st.Priority),
			"success_probability":      st.SuccessProbability,
		})
	}
	timeline := make([]map[string]interface{}, 0, len(p.Timeline))
	for _, e := range p.Timeline {
		timeline = append(timeline, map[string]interface{}{
			"strategy":  e.Strategy,
			"start_day": e.StartDay,
			"end_day":   e.EndDay,
			"start":     timestamp(e.Start),
			"end":       timestamp(e.End),
		})
	}
	return map[string]interface{}{
		"id":                      p.ID,
		"risk_factor_id":          p.RiskFactorID,
		"mitigation_strategies":   strategies,
		"implementation_timeline": timeline,
		"total_days":              p.TotalDays,
		"estimated_cost":          p.EstimatedCost.Exact(),
		"expected_risk_reduction": p.ExpectedRiskReduction,
		"success_probability":     p.SuccessProbability,
		"monitoring_metrics":      append([]string{}, p.MonitoringMetrics...),
		"responsible_parties":     append([]string{}, p.ResponsibleParties...),
		"constraint_warnings":     append([]string{}, p.ConstraintWarnings...),
		"created_at":              timestamp(p.CreatedAt),
	}
}

// ToMap converts the risk into a plain map
func (c ComplianceRisk) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"regulation_name":     c.RegulationName,
		"jurisdiction":        c.Jurisdiction,
		"compliance_level":    c.ComplianceLevel,
		"risk_score":          c.RiskScore,
		"potential_penalties": c.PotentialPenalties.Exact(),
		"compliance_gaps":     append([]string{}, c.ComplianceGaps...),
		"remediation_actions": append([]string{}, c.RemediationActions...),
		"priority":            string(c.Priority),
		"deadline":            nil,
	}
	if c.Deadline != nil {
		m["deadline"] = timestamp(*c.Deadline)
	}
	return m
}

// ToMap converts the report into a plain map
func (r *RiskReport) ToMap() map[string]interface{} {
	categories := make(map[string]interface{}, len(r.CategoryScores))
	for t, sc := range r.CategoryScores {
		categories[string(t)] = sc.ToMap()
	}
	compliance := make([]map[string]interface{}, 0, len(r.ComplianceRisks))
	for _, c := range r.ComplianceRisks {
		compliance = append(compliance, c.ToMap())
	}
	plans := make([]map[string]interface{}, 0, len(r.MitigationPlans))
	for _, p := range r.MitigationPlans {
		plans = append(plans, p.ToMap())
	}

	m := map[string]interface{}{
		"id":               r.ID,
		"company_id":       r.CompanyID,
		"generated_at":     timestamp(r.GeneratedAt),
		"category_scores":  categories,
		"compliance_risks": compliance,
		"mitigation_plans": plans,
		"recommendations":  append([]string{}, r.Recommendations...),
	}
	if r.OverallScore != nil {
		m["overall_risk_score"] = r.OverallScore.ToMap()
	}
	if r.MonteCarlo != nil {
		m["monte_carlo_results"] = r.MonteCarlo.ToMap()
	}
	return m
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
