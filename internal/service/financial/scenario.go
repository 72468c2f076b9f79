package financial

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/davidleathers/decision-risk-engine/internal/domain/errors"
	"github.com/davidleathers/decision-risk-engine/internal/domain/values"
)

// DefaultAdjustments returns the stock optimistic and pessimistic cases:
// cash flow +/-20% with the discount rate moved 10% the favourable or
// unfavourable way.
func DefaultAdjustments() ScenarioAdjustments {
	base, opt, pess := DefaultBaseProbability, DefaultOptimisticProbability, DefaultPessimisticProbability
	return ScenarioAdjustments{
		ScenarioBase: {Probability: &base},
		ScenarioOptimistic: {
			Multipliers: map[Parameter]float64{ParamCashFlow: 1.2, ParamDiscountRate: 0.9},
			Probability: &opt,
		},
		ScenarioPessimistic: {
			Multipliers: map[Parameter]float64{ParamCashFlow: 0.8, ParamDiscountRate: 1.1},
			Probability: &pess,
		},
	}
}

// PerformScenarioAnalysis evaluates the base case and its two adjusted cases.
// Caller adjustments replace the default multipliers of the scenarios they
// name and may override any scenario's probability.
func (s *service) PerformScenarioAnalysis(base ScenarioParams, adjustments ScenarioAdjustments) (result *ScenarioAnalysis, err error) {
	defer s.track("scenario_analysis", time.Now(), &err)

	if err := base.Validate(); err != nil {
		return nil, err
	}
	merged, err := mergeAdjustments(adjustments)
	if err != nil {
		return nil, err
	}

	outcomes := make(map[ScenarioName]ScenarioOutcome, 3)
	for _, name := range []ScenarioName{ScenarioBase, ScenarioOptimistic, ScenarioPessimistic} {
		adj := merged[name]
		params, err := applyMultipliers(base, adj.Multipliers)
		if err != nil {
			return nil, errors.Wrap(err, "scenario "+string(name))
		}
		outcomes[name] = ScenarioOutcome{
			Name:        name,
			Params:      params,
			NPV:         params.npv(),
			Probability: *adj.Probability,
		}
	}

	result = &ScenarioAnalysis{
		Base:        outcomes[ScenarioBase],
		Optimistic:  outcomes[ScenarioOptimistic],
		Pessimistic: outcomes[ScenarioPessimistic],
	}

	expected := values.Zero()
	npvs := make([]float64, 0, 3)
	weights := make([]float64, 0, 3)
	for _, o := range result.Scenarios() {
		expected = expected.Add(o.NPV.MulFloat(o.Probability))
		npvs = append(npvs, o.NPV.Float64())
		weights = append(weights, o.Probability)
	}
	result.ExpectedValue = expected.RoundToCent()

	_, std := stat.PopMeanStdDev(npvs, weights)
	if math.IsNaN(std) {
		std = 0
	}
	result.StandardDeviation = std
	if ev := result.ExpectedValue.Float64(); ev != 0 {
		result.CoefficientOfVariation = std / math.Abs(ev)
	}
	result.DownsideRisk = values.Max(values.Zero(), result.Base.NPV.Sub(result.Pessimistic.NPV))
	result.UpsidePotential = values.Max(values.Zero(), result.Optimistic.NPV.Sub(result.Base.NPV))

	s.logger.Debug("scenario analysis completed",
		zap.String("expected_value", result.ExpectedValue.String()),
		zap.Float64("std_dev", std))

	return result, nil
}

// mergeAdjustments overlays caller adjustments on the defaults and checks
// that the resulting probabilities form a distribution
func mergeAdjustments(overrides ScenarioAdjustments) (ScenarioAdjustments, error) {
	merged := DefaultAdjustments()
	for name, adj := range overrides {
		current, ok := merged[name]
		if !ok {
			return nil, errors.NewValidationError(errors.CodeInvalidInput, "unknown scenario "+string(name)).
				WithDetail("scenario", name)
		}
		if name == ScenarioBase && len(adj.Multipliers) > 0 {
			return nil, errors.NewValidationError(errors.CodeInvalidMultiplier, "the base scenario cannot carry multipliers")
		}
		if adj.Multipliers != nil {
			current.Multipliers = adj.Multipliers
		}
		if adj.Probability != nil {
			p := *adj.Probability
			current.Probability = &p
		}
		merged[name] = current
	}

	sum := 0.0
	for name, adj := range merged {
		p := *adj.Probability
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, errors.NewValidationError(errors.CodeInvalidProbabilities, "scenario probability must be between 0 and 1").
				WithDetail("scenario", name).WithDetail("probability", p)
		}
		sum += p
	}
	if math.Abs(sum-1) > probabilityEpsilon {
		return nil, errors.NewValidationError(errors.CodeInvalidProbabilities, "scenario probabilities must sum to 1").
			WithDetail("sum", sum)
	}
	return merged, nil
}

func applyMultipliers(base ScenarioParams, multipliers map[Parameter]float64) (ScenarioParams, error) {
	// Sorted so a failure always names the same parameter
	names := make([]Parameter, 0, len(multipliers))
	for p := range multipliers {
		names = append(names, p)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	params := base
	for _, p := range names {
		m := multipliers[p]
		if !p.IsValid() {
			return base, unknownParameter(string(p))
		}
		if math.IsNaN(m) || math.IsInf(m, 0) || m < 0 {
			return base, errors.NewValidationError(errors.CodeInvalidMultiplier, "multiplier must be a non-negative number").
				WithDetail("parameter", p).WithDetail("multiplier", m)
		}
		var err error
		if params, err = params.Scale(p, m); err != nil {
			return base, err
		}
	}
	return params, params.Validate()
}

// PerformSensitivityAnalysis sweeps each variable over changePercentages with
// every other parameter held at base. Variables whose base value is zero have
// nothing to scale and are reported in SkippedVariables.
func (s *service) PerformSensitivityAnalysis(base ScenarioParams, variables []Parameter, changePercentages []float64) (result *SensitivityAnalysis, err error) {
	defer s.track("sensitivity_analysis", time.Now(), &err)

	if err := base.Validate(); err != nil {
		return nil, err
	}
	if len(variables) == 0 {
		variables = DefaultSensitivityVariables()
	}
	if len(changePercentages) == 0 {
		changePercentages = DefaultChangePercentages()
	}
	for _, c := range changePercentages {
		if math.IsNaN(c) || math.IsInf(c, 0) || c <= -1 {
			return nil, errors.NewValidationError(errors.CodeInvalidInput, "change percentages must be greater than -1").
				WithDetail("change", c)
		}
	}

	baseNPV := base.npv()
	result = &SensitivityAnalysis{
		BaseNPV:           baseNPV,
		ChangePercentages: append([]float64(nil), changePercentages...),
	}

	seen := make(map[Parameter]bool, len(variables))
	for _, v := range variables {
		if !v.IsValid() {
			return nil, unknownParameter(string(v))
		}
		if seen[v] {
			continue
		}
		seen[v] = true

		baseValue, _ := base.Value(v)
		if baseValue == 0 {
			result.SkippedVariables = append(result.SkippedVariables, v)
			continue
		}

		sweep, err := sweepVariable(base, v, baseValue, baseNPV, changePercentages)
		if err != nil {
			return nil, err
		}
		result.Variables = append(result.Variables, sweep)
	}

	result.Tornado = append([]*VariableSensitivity(nil), result.Variables...)
	sort.SliceStable(result.Tornado, func(i, j int) bool {
		return result.Tornado[i].MaxImpact.Compare(result.Tornado[j].MaxImpact) > 0
	})
	for i := 0; i < len(result.Tornado) && i < MostSensitiveLimit; i++ {
		result.MostSensitiveVariables = append(result.MostSensitiveVariables, result.Tornado[i].Variable)
	}

	s.logger.Debug("sensitivity analysis completed",
		zap.Int("variables", len(result.Variables)),
		zap.Int("skipped", len(result.SkippedVariables)))

	return result, nil
}

func sweepVariable(base ScenarioParams, v Parameter, baseValue float64, baseNPV values.Money, changes []float64) (*VariableSensitivity, error) {
	sweep := &VariableSensitivity{
		Variable:  v,
		BaseValue: baseValue,
		Points:    make([]SensitivityPoint, 0, len(changes)),
		MaxImpact: values.Zero(),
	}

	for i, c := range changes {
		params, err := base.Scale(v, 1+c)
		if err != nil {
			return nil, err
		}
		value, _ := params.Value(v)
		npv := params.npv()
		delta := npv.Sub(baseNPV)

		sweep.Points = append(sweep.Points, SensitivityPoint{
			Change:    c,
			Value:     decimal.NewFromFloat(value).Round(8).InexactFloat64(),
			NPV:       npv,
			NPVChange: delta,
		})

		sweep.MaxImpact = values.Max(sweep.MaxImpact, delta.Abs())
		if i == 0 || npv.Compare(sweep.LowNPV) < 0 {
			sweep.LowNPV = npv
		}
		if i == 0 || npv.Compare(sweep.HighNPV) > 0 {
			sweep.HighNPV = npv
		}
	}
	return sweep, nil
}
