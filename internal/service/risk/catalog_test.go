package risk

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidleathers/decision-risk-engine/internal/domain/errors"
	"github.com/davidleathers/decision-risk-engine/internal/domain/financial"
	"github.com/davidleathers/decision-risk-engine/internal/domain/values"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testClock() *financial.FixedClock {
	return &financial.FixedClock{CurrentTime: testTime}
}

func sampleFactor(id string) RiskFactor {
	return RiskFactor{
		ID:                   id,
		Name:                 "Sample " + id,
		Type:                 RiskTypeStrategic,
		Probability:          0.5,
		ImpactScore:          4,
		MitigationStrategies: []string{"Review strategy", "Diversify"},
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog(testClock())

	factors := c.List()
	require.Len(t, factors, 6)

	types := make(map[RiskType]bool)
	for i, f := range factors {
		if i > 0 {
			assert.Less(t, factors[i-1].ID, f.ID, "list is ordered by id")
		}
		types[f.Type] = true
		assert.Equal(t, testTime, f.LastAssessed)
		assert.NotEmpty(t, f.MitigationStrategies)
		require.NoError(t, ValidateRiskFactor(f))
	}
	for _, rt := range []RiskType{RiskTypeMarket, RiskTypeRegulatory, RiskTypeOperational, RiskTypeCredit, RiskTypeTechnology, RiskTypeLiquidity} {
		assert.True(t, types[rt], rt)
	}
}

func TestCatalog_AddGetRemove(t *testing.T) {
	c := DefaultCatalog(testClock())

	require.NoError(t, c.Add(sampleFactor("strategy_drift")))
	assert.Equal(t, 7, c.Len())

	got, err := c.Get("strategy_drift")
	require.NoError(t, err)
	assert.Equal(t, testTime, got.LastAssessed, "empty timestamp is stamped")

	err = c.Add(sampleFactor("strategy_drift"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))

	require.NoError(t, c.Remove("strategy_drift"))
	_, err = c.Get("strategy_drift")
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
	assert.True(t, errors.IsType(c.Remove("strategy_drift"), errors.ErrorTypeNotFound))
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	c := DefaultCatalog(testClock())

	f, err := c.Get("market_volatility")
	require.NoError(t, err)
	f.MitigationStrategies[0] = "changed"
	*f.FinancialImpact = values.NewMoneyFromInt(1)

	again, err := c.Get("market_volatility")
	require.NoError(t, err)
	assert.NotEqual(t, "changed", again.MitigationStrategies[0])
	assert.Equal(t, "500000.00", again.FinancialImpact.String())
}

func TestCatalog_Reassess(t *testing.T) {
	c := DefaultCatalog(testClock())
	later := testTime.Add(24 * time.Hour)

	require.NoError(t, c.Reassess("credit_default", 0.6, 9, later))
	f, err := c.Get("credit_default")
	require.NoError(t, err)
	assert.Equal(t, 0.6, f.Probability)
	assert.Equal(t, 9.0, f.ImpactScore)
	assert.Equal(t, later, f.LastAssessed)

	t.Run("invalid values leave the record unchanged", func(t *testing.T) {
		err := c.Reassess("credit_default", 1.5, 9, testTime)
		require.Error(t, err)
		assert.Equal(t, errors.CodeInvalidRiskFactor, errors.CodeOf(err))

		f, err := c.Get("credit_default")
		require.NoError(t, err)
		assert.Equal(t, 0.6, f.Probability)
		assert.Equal(t, later, f.LastAssessed)
	})

	t.Run("unknown id", func(t *testing.T) {
		err := c.Reassess("nope", 0.1, 1, testTime)
		assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
	})
}

func TestCatalog_ReplaceIsAllOrNothing(t *testing.T) {
	c := DefaultCatalog(testClock())

	bad := sampleFactor("bad")
	bad.ImpactScore = 11
	err := c.Replace([]RiskFactor{sampleFactor("a"), bad})
	require.Error(t, err)
	assert.Equal(t, 6, c.Len())

	err = c.Replace([]RiskFactor{sampleFactor("a"), sampleFactor("a")})
	require.Error(t, err)
	assert.Equal(t, 6, c.Len())

	require.NoError(t, c.Replace([]RiskFactor{sampleFactor("a"), sampleFactor("b")}))
	assert.Equal(t, 2, c.Len())
}

func TestValidateRiskFactor(t *testing.T) {
	negative := values.NewMoneyFromInt(-5)

	tests := []struct {
		name   string
		mutate func(*RiskFactor)
		field  string
	}{
		{name: "missing id", mutate: func(f *RiskFactor) { f.ID = "" }, field: "RiskFactor.id"},
		{name: "unknown type", mutate: func(f *RiskFactor) { f.Type = "weather" }, field: "RiskFactor.risk_type"},
		{name: "probability above one", mutate: func(f *RiskFactor) { f.Probability = 1.01 }, field: "RiskFactor.probability"},
		{name: "negative impact", mutate: func(f *RiskFactor) { f.ImpactScore = -1 }, field: "RiskFactor.impact_score"},
		{name: "negative financial impact", mutate: func(f *RiskFactor) { f.FinancialImpact = &negative }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := sampleFactor("x")
			tt.mutate(&f)

			err := ValidateRiskFactor(f)
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidRiskFactor, errors.CodeOf(err))

			if tt.field != "" {
				var appErr *errors.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Contains(t, appErr.Details, tt.field)
			}
		})
	}
}

func TestCatalog_ConcurrentAccess(t *testing.T) {
	c := DefaultCatalog(testClock())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = c.Reassess("market_volatility", float64(i%10)/10, 5, testTime)
		}(i)
		go func() {
			defer wg.Done()
			f, err := c.Get("market_volatility")
			assert.NoError(t, err)
			assert.GreaterOrEqual(t, f.Probability, 0.0)
			assert.LessOrEqual(t, f.Probability, 1.0)
		}()
	}
	wg.Wait()

	f, err := c.Get("market_volatility")
	require.NoError(t, err)
	assert.Equal(t, 5.0, f.ImpactScore)
}
