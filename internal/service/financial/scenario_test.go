package financial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidleathers/decision-risk-engine/internal/domain/errors"
)

func baseParams() ScenarioParams {
	return ScenarioParams{
		InitialInvestment: money("100000"),
		AnnualCashFlow:    money("30000"),
		Periods:           5,
		DiscountRate:      0.10,
		GrowthRate:        0.05,
	}
}

func TestPerformScenarioAnalysis(t *testing.T) {
	svc := newTestService()

	result, err := svc.PerformScenarioAnalysis(baseParams(), nil)
	require.NoError(t, err)

	assert.InDelta(t, 24517.74, result.Base.NPV.Float64(), 0.01)
	assert.InDelta(t, 53454.10, result.Optimistic.NPV.Float64(), 0.01)
	assert.InDelta(t, -2964.40, result.Pessimistic.NPV.Float64(), 0.01)

	assert.True(t, result.Optimistic.NPV.Compare(result.Base.NPV) >= 0)
	assert.True(t, result.Base.NPV.Compare(result.Pessimistic.NPV) >= 0)

	assert.Equal(t, 0.5, result.Base.Probability)
	assert.Equal(t, 0.25, result.Optimistic.Probability)
	assert.Equal(t, 0.25, result.Pessimistic.Probability)
	assert.InDelta(t, 24881.30, result.ExpectedValue.Float64(), 0.02)

	assert.Greater(t, result.StandardDeviation, 0.0)
	assert.InDelta(t, result.StandardDeviation/result.ExpectedValue.Float64(), result.CoefficientOfVariation, 1e-9)
	assert.True(t, result.Base.NPV.Sub(result.Pessimistic.NPV).Equal(result.DownsideRisk))
	assert.True(t, result.Optimistic.NPV.Sub(result.Base.NPV).Equal(result.UpsidePotential))

	assert.Equal(t, "36000.00", result.Optimistic.Params.AnnualCashFlow.String())
	assert.InDelta(t, 0.11, result.Pessimistic.Params.DiscountRate, 1e-12)
}

func TestPerformScenarioAnalysis_OrderingHoldsAcrossInputs(t *testing.T) {
	svc := newTestService()

	for _, cf := range []string{"0", "1000", "30000", "250000"} {
		for _, rate := range []float64{0, 0.05, 0.2} {
			params := baseParams()
			params.AnnualCashFlow = money(cf)
			params.DiscountRate = rate

			result, err := svc.PerformScenarioAnalysis(params, nil)
			require.NoError(t, err)
			assert.True(t, result.Optimistic.NPV.Compare(result.Base.NPV) >= 0, "cf=%s rate=%v", cf, rate)
			assert.True(t, result.Base.NPV.Compare(result.Pessimistic.NPV) >= 0, "cf=%s rate=%v", cf, rate)
		}
	}

	t.Run("negative cash flow rejected", func(t *testing.T) {
		params := baseParams()
		params.AnnualCashFlow = money("-30000")

		_, err := svc.PerformScenarioAnalysis(params, nil)
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
		assert.Contains(t, err.Error(), "annual cash flow")
	})
}

func TestPerformScenarioAnalysis_Overrides(t *testing.T) {
	svc := newTestService()

	t.Run("custom multipliers and probabilities", func(t *testing.T) {
		adjustments := ScenarioAdjustments{
			ScenarioBase:        {Probability: ptr(0.6)},
			ScenarioOptimistic:  {Multipliers: map[Parameter]float64{ParamPeriods: 1.4}, Probability: ptr(0.2)},
			ScenarioPessimistic: {Probability: ptr(0.2)},
		}
		result, err := svc.PerformScenarioAnalysis(baseParams(), adjustments)
		require.NoError(t, err)

		assert.Equal(t, 7, result.Optimistic.Params.Periods)
		assert.Equal(t, "30000.00", result.Optimistic.Params.AnnualCashFlow.String())
		assert.Equal(t, "24000.00", result.Pessimistic.Params.AnnualCashFlow.String(), "defaults kept")
		assert.Equal(t, 0.6, result.Base.Probability)
	})

	t.Run("zero cash flow gives zero coefficient", func(t *testing.T) {
		params := baseParams()
		params.InitialInvestment = money("0")
		params.AnnualCashFlow = money("0")

		result, err := svc.PerformScenarioAnalysis(params, nil)
		require.NoError(t, err)
		assert.True(t, result.ExpectedValue.IsZero())
		assert.Equal(t, 0.0, result.CoefficientOfVariation)
		assert.Equal(t, 0.0, result.StandardDeviation)
	})

	tests := []struct {
		name        string
		params      ScenarioParams
		adjustments ScenarioAdjustments
		code        string
	}{
		{
			name:        "probabilities must sum to one",
			params:      baseParams(),
			adjustments: ScenarioAdjustments{ScenarioBase: {Probability: ptr(0.9)}},
			code:        errors.CodeInvalidProbabilities,
		},
		{
			name:        "unknown parameter",
			params:      baseParams(),
			adjustments: ScenarioAdjustments{ScenarioOptimistic: {Multipliers: map[Parameter]float64{"revenue": 1.1}}},
			code:        errors.CodeUnknownParameter,
		},
		{
			name:        "negative multiplier",
			params:      baseParams(),
			adjustments: ScenarioAdjustments{ScenarioPessimistic: {Multipliers: map[Parameter]float64{ParamCashFlow: -1}}},
			code:        errors.CodeInvalidMultiplier,
		},
		{
			name:        "base multipliers",
			params:      baseParams(),
			adjustments: ScenarioAdjustments{ScenarioBase: {Multipliers: map[Parameter]float64{ParamCashFlow: 2}}},
			code:        errors.CodeInvalidMultiplier,
		},
		{
			name:        "unknown scenario",
			params:      baseParams(),
			adjustments: ScenarioAdjustments{"stress": {}},
			code:        errors.CodeInvalidInput,
		},
		{
			name:   "zero periods",
			params: ScenarioParams{AnnualCashFlow: money("1"), DiscountRate: 0.1},
			code:   errors.CodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PerformScenarioAnalysis(tt.params, tt.adjustments)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}

func TestPerformSensitivityAnalysis(t *testing.T) {
	svc := newTestService()

	result, err := svc.PerformSensitivityAnalysis(baseParams(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultChangePercentages(), result.ChangePercentages)
	assert.Len(t, result.Variables, 4)
	assert.Empty(t, result.SkippedVariables)
	assert.Len(t, result.MostSensitiveVariables, MostSensitiveLimit)

	for i := 1; i < len(result.Tornado); i++ {
		assert.True(t, result.Tornado[i-1].MaxImpact.Compare(result.Tornado[i].MaxImpact) >= 0, "tornado must be sorted")
	}
	for i, name := range result.MostSensitiveVariables {
		assert.Equal(t, result.Tornado[i].Variable, name)
	}

	for _, v := range result.Variables {
		require.Len(t, v.Points, 7)
		zero := v.Points[3]
		assert.Equal(t, 0.0, zero.Change)
		assert.True(t, result.BaseNPV.Equal(zero.NPV))
		assert.True(t, zero.NPVChange.IsZero())
		assert.True(t, v.LowNPV.Compare(v.HighNPV) <= 0)
	}

	// Cash flow dominates this project
	assert.Equal(t, ParamCashFlow, result.MostSensitiveVariables[0])
}

func TestPerformSensitivityAnalysis_SkipsZeroVariables(t *testing.T) {
	svc := newTestService()

	params := baseParams()
	params.GrowthRate = 0

	result, err := svc.PerformSensitivityAnalysis(params, []Parameter{ParamGrowthRate, ParamPeriods, ParamPeriods}, []float64{-0.2, 0.2})
	require.NoError(t, err)

	assert.Equal(t, []Parameter{ParamGrowthRate}, result.SkippedVariables)
	require.Len(t, result.Variables, 1)
	assert.Equal(t, ParamPeriods, result.Variables[0].Variable)
	assert.Equal(t, 4.0, result.Variables[0].Points[0].Value)
	assert.Equal(t, 6.0, result.Variables[0].Points[1].Value)
	assert.Len(t, result.MostSensitiveVariables, 1)
}

func TestPerformSensitivityAnalysis_Validation(t *testing.T) {
	svc := newTestService()

	_, err := svc.PerformSensitivityAnalysis(baseParams(), []Parameter{"revenue"}, nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnknownParameter, errors.CodeOf(err))

	_, err = svc.PerformSensitivityAnalysis(baseParams(), nil, []float64{-1})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.CodeOf(err))
}

func TestParseParameter(t *testing.T) {
	p, err := ParseParameter("Discount_Rate")
	require.NoError(t, err)
	assert.Equal(t, ParamDiscountRate, p)

	_, err = ParseParameter("discount")
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnknownParameter, errors.CodeOf(err))
}
