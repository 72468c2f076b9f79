package financial

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidleathers/decision-risk-engine/internal/domain/errors"
	"github.com/davidleathers/decision-risk-engine/internal/domain/financial"
	"github.com/davidleathers/decision-risk-engine/internal/domain/values"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(opts ...Option) Service {
	opts = append([]Option{WithClock(&financial.FixedClock{CurrentTime: testTime})}, opts...)
	return NewService(DefaultConfig(), nil, nil, opts...)
}

func projectFlows() []financial.CashFlow {
	return financial.SeriesFromInts(25000, 30000, 35000, 40000, 45000)
}

func money(s string) values.Money {
	return values.MustNewMoneyFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}

func TestCalculateNPV(t *testing.T) {
	svc := newTestService()

	t.Run("profitable project", func(t *testing.T) {
		investment := money("100000")
		result, err := svc.CalculateNPV(projectFlows(), 0.10, &investment)
		require.NoError(t, err)

		assert.True(t, result.IsProfitable)
		assert.True(t, result.NPV.IsPositive())
		assert.Equal(t, "29078.68", result.NPV.String())
		assert.Equal(t, "129078.68", result.TotalPresentValue.String())
		assert.Len(t, result.PresentValues, 5)
		assert.Equal(t, "22727.27", result.PresentValues[0].PresentValue.String())
		assert.InDelta(t, 1/1.1, result.PresentValues[0].DiscountFactor, 1e-7)
		assert.Equal(t, testTime, result.CalculatedAt)
	})

	t.Run("period zero flow is not discounted", func(t *testing.T) {
		flows := append([]financial.CashFlow{financial.NewCashFlow(0, money("-100000"))}, projectFlows()...)
		result, err := svc.CalculateNPV(flows, 0.10, nil)
		require.NoError(t, err)

		assert.Equal(t, "29078.68", result.NPV.String())
		assert.Equal(t, "-100000.00", result.PresentValues[0].PresentValue.String())
	})

	t.Run("zero rate sums the flows", func(t *testing.T) {
		result, err := svc.CalculateNPV(projectFlows(), 0, nil)
		require.NoError(t, err)
		assert.Equal(t, "175000.00", result.NPV.String())
	})

	tests := []struct {
		name       string
		flows      []financial.CashFlow
		rate       float64
		investment *values.Money
		code       string
	}{
		{name: "empty cash flows", flows: nil, rate: 0.1, code: errors.CodeEmptyCashFlows},
		{name: "negative rate", flows: projectFlows(), rate: -0.01, code: errors.CodeNegativeDiscountRate},
		{
			name:  "negative period",
			flows: []financial.CashFlow{financial.NewCashFlow(-1, money("100"))},
			rate:  0.1,
			code:  errors.CodeNegativePeriod,
		},
		{name: "negative investment", flows: projectFlows(), rate: 0.1, investment: ptr(money("-1")), code: errors.CodeNegativeInvestment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CalculateNPV(tt.flows, tt.rate, tt.investment)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}

func TestCalculateNPV_DecreasesWithRate(t *testing.T) {
	svc := newTestService()
	investment := money("100000")

	previous, err := svc.CalculateNPV(projectFlows(), 0, &investment)
	require.NoError(t, err)

	for rate := 0.01; rate <= 1.0; rate += 0.01 {
		current, err := svc.CalculateNPV(projectFlows(), rate, &investment)
		require.NoError(t, err)
		assert.True(t, current.NPV.Compare(previous.NPV) <= 0, "npv must not rise with the rate (rate %.2f)", rate)
		previous = current
	}
}

func TestCalculatePaybackPeriod(t *testing.T) {
	svc := newTestService()

	t.Run("recovered", func(t *testing.T) {
		result, err := svc.CalculatePaybackPeriod(projectFlows(), money("100000"), nil)
		require.NoError(t, err)

		require.NotNil(t, result.SimplePayback)
		require.NotNil(t, result.DiscountedPayback)
		assert.InDelta(t, 3.25, *result.SimplePayback, 1e-9)
		assert.InDelta(t, 3.9584, *result.DiscountedPayback, 1e-3)
		assert.GreaterOrEqual(t, *result.DiscountedPayback, *result.SimplePayback)
		assert.Equal(t, DefaultDiscountRate, result.DiscountRate)
	})

	t.Run("never recovered", func(t *testing.T) {
		result, err := svc.CalculatePaybackPeriod(projectFlows(), money("1000000"), nil)
		require.NoError(t, err)

		assert.Nil(t, result.SimplePayback)
		assert.Nil(t, result.DiscountedPayback)
		assert.Nil(t, result.ToMap()["simple_payback"])
	})

	t.Run("zero investment pays back immediately", func(t *testing.T) {
		result, err := svc.CalculatePaybackPeriod(projectFlows(), values.Zero(), nil)
		require.NoError(t, err)
		assert.Equal(t, 0.0, *result.SimplePayback)
	})

	t.Run("bounded by the horizon", func(t *testing.T) {
		for _, inv := range []string{"1", "25000", "60000", "174999"} {
			result, err := svc.CalculatePaybackPeriod(projectFlows(), money(inv), ptr(0.0))
			require.NoError(t, err)
			require.NotNil(t, result.SimplePayback, inv)
			assert.GreaterOrEqual(t, *result.SimplePayback, 0.0)
			assert.LessOrEqual(t, *result.SimplePayback, 5.0)
		}
	})

	t.Run("explicit rate", func(t *testing.T) {
		result, err := svc.CalculatePaybackPeriod(projectFlows(), money("100000"), ptr(0.0))
		require.NoError(t, err)
		assert.Equal(t, *result.SimplePayback, *result.DiscountedPayback)
	})
}

func TestCalculateProfitabilityIndex(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name           string
		investment     string
		interpretation string
	}{
		{name: "accept", investment: "100000", interpretation: InterpretationAccept},
		{name: "reject", investment: "200000", interpretation: InterpretationReject},
		{name: "zero investment", investment: "0", interpretation: InterpretationReject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.CalculateProfitabilityIndex(projectFlows(), money(tt.investment), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.interpretation, result.Interpretation)
		})
	}

	t.Run("index value", func(t *testing.T) {
		result, err := svc.CalculateProfitabilityIndex(projectFlows(), money("100000"), nil)
		require.NoError(t, err)
		assert.InDelta(t, 1.290787, result.ProfitabilityIndex, 1e-6)
	})

	t.Run("zero investment is zero", func(t *testing.T) {
		result, err := svc.CalculateProfitabilityIndex(projectFlows(), values.Zero(), nil)
		require.NoError(t, err)
		assert.Equal(t, 0.0, result.ProfitabilityIndex)
	})

	t.Run("indifferent at break even", func(t *testing.T) {
		flows := financial.SeriesFromInts(110)
		result, err := svc.CalculateProfitabilityIndex(flows, money("100"), ptr(0.10))
		require.NoError(t, err)
		assert.Equal(t, InterpretationIndifferent, result.Interpretation)
		assert.Equal(t, 1.0, result.ProfitabilityIndex)
	})

	t.Run("outflows in the series reduce the numerator", func(t *testing.T) {
		flows := financial.SeriesFromInts(-50, 110, 110)
		result, err := svc.CalculateProfitabilityIndex(flows, money("100"), ptr(0.0))
		require.NoError(t, err)
		assert.Equal(t, "170.00", result.PresentValue.String())
		assert.InDelta(t, 1.7, result.ProfitabilityIndex, 1e-9)
		assert.Equal(t, "170.00", result.ToMap()["present_value"])
	})

	t.Run("agrees with npv", func(t *testing.T) {
		for _, inv := range []string{"50000", "129078.67", "129078.68", "129078.69", "150000"} {
			investment := money(inv)
			pi, err := svc.CalculateProfitabilityIndex(projectFlows(), investment, ptr(0.10))
			require.NoError(t, err)
			npv, err := svc.CalculateNPV(projectFlows(), 0.10, &investment)
			require.NoError(t, err)

			assert.Equal(t, npv.NPV.IsPositive(), pi.Interpretation == InterpretationAccept, inv)
		}
	})
}
