package risk

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/davidleathers/decision-risk-engine/internal/domain/errors"
	"github.com/davidleathers/decision-risk-engine/internal/domain/validation"
	"github.com/davidleathers/decision-risk-engine/internal/infrastructure/telemetry"
)

// GenerateComprehensiveRiskReport scores the catalog overall and per risk
// type, simulates the base outcome against every factor, assesses compliance
// when a profile is given and plans mitigation for the top factors.
func (s *service) GenerateComprehensiveRiskReport(ctx context.Context, companyID string, profile *CompanyProfile, opts ReportOptions) (report *RiskReport, err error) {
	defer s.track("risk_report", time.Now(), &err)

	ctx, span := s.tracer.Start(ctx, "risk.GenerateComprehensiveRiskReport",
		trace.WithAttributes(attribute.String("company.id", companyID)))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	// The company id is echoed, never required. Only a malformed profile fails.
	if profile != nil {
		if err := validation.Struct(*profile, errors.CodeInvalidProfile); err != nil {
			return nil, err
		}
	}

	factors := s.catalog.List()
	report = &RiskReport{
		ID:             uuid.New().String(),
		CompanyID:      companyID,
		GeneratedAt:    s.clock.Now(),
		OverallScore:   s.score(factors),
		CategoryScores: make(map[RiskType]*RiskScore),
	}
	s.metrics.RecordRiskScore("report", report.OverallScore.OverallScore)

	byType := make(map[RiskType][]RiskFactor)
	for _, f := range factors {
		byType[f.Type] = append(byType[f.Type], f)
	}
	for t, group := range byType {
		report.CategoryScores[t] = s.score(group)
	}

	simulation, err := s.RunMonteCarloSimulation(ctx, s.config.ReportBaseOutcome, s.reportParameters(factors), SimulationOptions{Seed: opts.Seed})
	if err != nil {
		return nil, errors.Wrap(err, "report simulation")
	}
	report.MonteCarlo = simulation

	if profile != nil {
		risks, err := s.AssessComplianceRisk(*profile, nil, ComplianceOptions{Seed: opts.Seed})
		if err != nil {
			return nil, err
		}
		report.ComplianceRisks = risks
	}

	for _, f := range topFactors(factors, topFactorCount) {
		plan, err := s.CreateMitigationPlan(f, MitigationConstraints{})
		if err != nil {
			return nil, errors.Wrap(err, "mitigation plan for "+f.ID)
		}
		report.MitigationPlans = append(report.MitigationPlans, plan)
	}

	report.Recommendations = s.reportRecommendations(report)

	s.logger.Info("risk report generated",
		zap.String("report_id", report.ID),
		zap.String("company_id", companyID),
		zap.Float64("overall_score", report.OverallScore.OverallScore),
		zap.Float64("probability_of_loss", simulation.ProbabilityOfLoss),
		zap.Int("compliance_risks", len(report.ComplianceRisks)))

	return report, nil
}

// reportParameters models each factor as a normal loss centred on its
// expected cost. Factors without a financial impact are sized from their
// impact score as a share of the base outcome's magnitude.
func (s *service) reportParameters(factors []RiskFactor) map[string]RiskParameter {
	base := math.Abs(s.config.ReportBaseOutcome.Float64())
	params := make(map[string]RiskParameter, len(factors))
	for _, f := range factors {
		exposure := base * f.ImpactScore / 100
		if f.FinancialImpact != nil && f.FinancialImpact.IsPositive() {
			exposure = f.FinancialImpact.Float64()
		}
		params[f.ID] = RiskParameter{
			Distribution: DistributionNormal,
			Mean:         -f.Probability * exposure,
			StdDev:       exposure * reportParameterSpread,
			ImpactFactor: 1,
		}
	}
	return params
}

// reportRecommendations merges score guidance, high-priority compliance
// remediation and the simulation's loss warning without repeats
func (s *service) reportRecommendations(report *RiskReport) []string {
	recs := append([]string(nil), report.OverallScore.Recommendations...)

	risks := append([]ComplianceRisk(nil), report.ComplianceRisks...)
	sort.SliceStable(risks, func(i, j int) bool { return risks[i].ComplianceLevel < risks[j].ComplianceLevel })
	for _, r := range risks {
		if r.Priority != PriorityCritical && r.Priority != PriorityHigh {
			continue
		}
		if len(r.RemediationActions) > 0 {
			recs = append(recs, fmt.Sprintf("%s: %s", r.RegulationName, r.RemediationActions[0]))
		}
	}

	if mc := report.MonteCarlo; mc != nil && mc.ProbabilityOfLoss > s.config.RiskTolerance {
		recs = append(recs, fmt.Sprintf("Probability of loss %.1f%% exceeds the risk tolerance of %.1f%%; reduce exposure or build reserves",
			mc.ProbabilityOfLoss*100, s.config.RiskTolerance*100))
	}

	return dedupe(recs)
}
