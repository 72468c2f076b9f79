package risk

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davidleathers/decision-risk-engine/internal/domain/errors"
	"github.com/davidleathers/decision-risk-engine/internal/domain/values"
)

var monitoringMetrics = map[RiskType][]string{
	RiskTypeFinancial:   {"Cash flow variance", "Budget adherence", "Profit margin trend"},
	RiskTypeOperational: {"Process downtime", "Incident count", "Supplier delivery performance"},
	RiskTypeStrategic:   {"Market share", "Strategic milestone completion", "Competitive position index"},
	RiskTypeCompliance:  {"Open audit findings", "Policy exceptions", "Training completion rate"},
	RiskTypeMarket:      {"Revenue volatility", "Price index movement", "Customer demand trend"},
	RiskTypeCredit:      {"Days sales outstanding", "Bad debt ratio", "Counterparty rating changes"},
	RiskTypeLiquidity:   {"Current ratio", "Cash runway in months", "Credit facility utilization"},
	RiskTypeTechnology:  {"System availability", "Security incident count", "Mean time to recovery"},
	RiskTypeReputation:  {"Customer satisfaction score", "Media sentiment", "Complaint volume"},
	RiskTypeRegulatory:  {"Regulatory change backlog", "Compliance review findings", "Filing timeliness"},
}

var responsibleParties = map[RiskType][]string{
	RiskTypeFinancial:   {"Chief Financial Officer", "Finance Team"},
	RiskTypeOperational: {"Chief Operating Officer", "Operations Managers"},
	RiskTypeStrategic:   {"Chief Executive Officer", "Strategy Team"},
	RiskTypeCompliance:  {"Chief Compliance Officer", "Legal Team"},
	RiskTypeMarket:      {"Chief Financial Officer", "Sales and Marketing Leads"},
	RiskTypeCredit:      {"Credit Manager", "Finance Team"},
	RiskTypeLiquidity:   {"Treasurer", "Chief Financial Officer"},
	RiskTypeTechnology:  {"Chief Technology Officer", "IT Security Team"},
	RiskTypeReputation:  {"Head of Communications", "Customer Success Team"},
	RiskTypeRegulatory:  {"Chief Compliance Officer", "Government Affairs"},
}

// CreateMitigationPlan costs the factor's strategies in order, skipping any
// that would push the running cost or duration past a constraint. The first
// strategy is always kept; constraints it breaks become warnings on the plan.
func (s *service) CreateMitigationPlan(factor RiskFactor, constraints MitigationConstraints) (plan *RiskMitigationPlan, err error) {
	defer s.track("mitigation_plan", time.Now(), &err)

	if err := ValidateRiskFactor(factor); err != nil {
		return nil, err
	}
	if err := validateConstraints(constraints); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	plan = &RiskMitigationPlan{
		ID:                 uuid.New().String(),
		RiskFactorID:       factor.ID,
		Strategies:         make([]MitigationStrategy, 0, len(factor.MitigationStrategies)),
		EstimatedCost:      values.Zero(),
		MonitoringMetrics:  append([]string(nil), monitoringMetrics[factor.Type]...),
		ResponsibleParties: append([]string(nil), responsibleParties[factor.Type]...),
		CreatedAt:          now,
	}

	for rank, name := range factor.MitigationStrategies {
		strategy := synthesizeStrategy(factor, rank, name)
		cost := plan.EstimatedCost.Add(strategy.EstimatedCost)
		days := plan.TotalDays + strategy.ImplementationDays

		overBudget := constraints.Budget != nil && cost.Compare(*constraints.Budget) > 0
		overTime := constraints.TimelineDays != nil && days > *constraints.TimelineDays

		if rank > 0 && (overBudget || overTime) {
			s.logger.Debug("mitigation strategy skipped",
				zap.String("risk_factor", factor.ID),
				zap.String("strategy", name),
				zap.Bool("over_budget", overBudget),
				zap.Bool("over_timeline", overTime))
			continue
		}
		if overBudget {
			plan.ConstraintWarnings = append(plan.ConstraintWarnings,
				fmt.Sprintf("%s costs %s, above the budget of %s", name, strategy.EstimatedCost, constraints.Budget))
		}
		if overTime {
			plan.ConstraintWarnings = append(plan.ConstraintWarnings,
				fmt.Sprintf("%s takes %d days, beyond the timeline of %d days", name, strategy.ImplementationDays, *constraints.TimelineDays))
		}
		if overBudget || overTime {
			s.logger.Warn("first mitigation strategy kept despite constraints",
				zap.String("risk_factor", factor.ID),
				zap.Strings("warnings", plan.ConstraintWarnings))
		}

		plan.Timeline = append(plan.Timeline, TimelineEntry{
			Strategy: name,
			StartDay: plan.TotalDays,
			EndDay:   days,
			Start:    now.AddDate(0, 0, plan.TotalDays),
			End:      now.AddDate(0, 0, days),
		})
		plan.Strategies = append(plan.Strategies, strategy)
		plan.EstimatedCost = cost
		plan.TotalDays = days
	}

	if n := len(plan.Strategies); n > 0 {
		var reduction, success float64
		for _, st := range plan.Strategies {
			reduction += st.Effectiveness * st.SuccessProbability
			success += st.SuccessProbability
		}
		plan.ExpectedRiskReduction = reduction / float64(n)
		plan.SuccessProbability = success / float64(n)
	}

	return plan, nil
}

// synthesizeStrategy derives the cost, effect and duration of the strategy at
// rank. Later strategies are less effective, less likely to succeed, dearer
// and slower.
func synthesizeStrategy(factor RiskFactor, rank int, name string) MitigationStrategy {
	var base values.Money
	if factor.FinancialImpact != nil && factor.FinancialImpact.IsPositive() {
		base = factor.FinancialImpact.MulFloat(costShareOfImpact)
	} else {
		base = values.NewMoneyFromInt(notionalCost).MulFloat(factor.ImpactScore / 10)
	}

	return MitigationStrategy{
		Name:               name,
		Description:        fmt.Sprintf("Implement %s to address %s", name, factor.Name),
		EstimatedCost:      base.MulFloat(1 + costGrowthPerRank*float64(rank)).RoundToCent(),
		Effectiveness:      max(minEffectiveness, baseEffectiveness-effectivenessStep*float64(rank)),
		ImplementationDays: baseImplementation + implementationStep*rank,
		Priority:           strategyPriority(rank),
		SuccessProbability: max(minSuccessProbability, baseSuccessProbability-successStep*float64(rank)),
	}
}

func strategyPriority(rank int) Priority {
	switch rank {
	case 0:
		return PriorityHigh
	case 1:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func validateConstraints(c MitigationConstraints) error {
	if c.Budget != nil && c.Budget.IsNegative() {
		return errors.NewValidationError(errors.CodeInvalidConstraint, "budget cannot be negative").
			WithDetail("budget", c.Budget.String())
	}
	if c.TimelineDays != nil && *c.TimelineDays < 0 {
		return errors.NewValidationError(errors.CodeInvalidConstraint, "timeline cannot be negative").
			WithDetail("timeline_days", *c.TimelineDays)
	}
	return nil
}
