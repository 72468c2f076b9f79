package risk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidleathers/decision-risk-engine/internal/domain/errors"
	"github.com/davidleathers/decision-risk-engine/internal/domain/values"
)

func marketRisk() map[string]RiskParameter {
	return map[string]RiskParameter{
		"market_risk": {Distribution: DistributionNormal, Mean: 0, StdDev: 200000, ImpactFactor: 1.0},
	}
}

func TestRunMonteCarloSimulation(t *testing.T) {
	svc := newTestService(DefaultConfig())

	result, err := svc.RunMonteCarloSimulation(context.Background(), values.NewMoneyFromInt(1_000_000), marketRisk(),
		SimulationOptions{Runs: 1000, Seed: seed(42)})
	require.NoError(t, err)

	assert.Equal(t, 1000, result.SimulationRuns)
	assert.Len(t, result.Samples, 1000)
	assert.Less(t, result.Percentile5, result.Percentile95)
	assert.LessOrEqual(t, result.Percentile5, result.MedianOutcome)
	assert.LessOrEqual(t, result.MedianOutcome, result.Percentile95)
	assert.LessOrEqual(t, result.WorstCase, result.BestCase)
	assert.GreaterOrEqual(t, result.ProbabilityOfLoss, 0.0)
	assert.LessOrEqual(t, result.ProbabilityOfLoss, 1.0)
	assert.LessOrEqual(t, result.CVaR95, result.Percentile5)
	assert.GreaterOrEqual(t, result.VaR95, 0.0)
	assert.InDelta(t, 1_000_000, result.MeanOutcome, 30000)
	assert.InDelta(t, 200000, result.StdDeviation, 20000)
	assert.Equal(t, uint64(42), result.Seed)
	assert.Equal(t, []string{"market_risk"}, result.Parameters)
}

func TestRunMonteCarloSimulation_LossMetrics(t *testing.T) {
	svc := newTestService(DefaultConfig())

	// Outcomes uniform on [-100, 100]: p5 ~ -90, half the samples lose
	params := map[string]RiskParameter{
		"swing": {Distribution: DistributionUniform, Low: -100, High: 100, ImpactFactor: 1},
	}
	result, err := svc.RunMonteCarloSimulation(context.Background(), values.Zero(), params,
		SimulationOptions{Runs: 50000, Seed: seed(7)})
	require.NoError(t, err)

	assert.InDelta(t, -90, result.Percentile5, 2)
	assert.InDelta(t, 90, result.VaR95, 2)
	assert.InDelta(t, -95, result.CVaR95, 2)
	assert.InDelta(t, 0.5, result.ProbabilityOfLoss, 0.02)
}

func TestRunMonteCarloSimulation_VaRFloorsAtZero(t *testing.T) {
	svc := newTestService(DefaultConfig())

	params := map[string]RiskParameter{
		"upside": {Distribution: DistributionUniform, Low: 10, High: 20, ImpactFactor: 1},
	}
	result, err := svc.RunMonteCarloSimulation(context.Background(), values.NewMoneyFromInt(100), params,
		SimulationOptions{Runs: 500, Seed: seed(1)})
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.VaR95)
	assert.Equal(t, 0.0, result.ProbabilityOfLoss)
	assert.GreaterOrEqual(t, result.WorstCase, 110.0)
}

func TestRunMonteCarloSimulation_MeanConvergesToExpectation(t *testing.T) {
	svc := newTestService(DefaultConfig())

	params := map[string]RiskParameter{
		"demand": {Distribution: DistributionNormal, Mean: 50, StdDev: 10, ImpactFactor: 2},
		"cost":   {Distribution: DistributionUniform, Low: -30, High: -10, ImpactFactor: 1},
		"delay":  {Distribution: DistributionTriangular, Low: 0, Mode: 3, High: 12, ImpactFactor: -1},
	}
	// 1000 + 50*2 - 20 - 5
	expected := 1075.0

	result, err := svc.RunMonteCarloSimulation(context.Background(), values.NewMoneyFromInt(1000), params,
		SimulationOptions{Runs: 200000, Seed: seed(99)})
	require.NoError(t, err)

	assert.InDelta(t, expected, result.MeanOutcome, 0.5)
	assert.Equal(t, []string{"cost", "delay", "demand"}, result.Parameters)
}

func TestRunMonteCarloSimulation_Deterministic(t *testing.T) {
	params := map[string]RiskParameter{
		"a": {Distribution: DistributionNormal, Mean: 1, StdDev: 3, ImpactFactor: 1},
		"b": {Distribution: DistributionTriangular, Low: -5, Mode: 0, High: 5, ImpactFactor: 2},
	}
	run := func(workers, chunk int, s uint64) *MonteCarloResult {
		cfg := DefaultConfig()
		cfg.Workers, cfg.ChunkSize = workers, chunk
		result, err := newTestService(cfg).RunMonteCarloSimulation(context.Background(), values.NewMoneyFromInt(10), params,
			SimulationOptions{Runs: 5000, Seed: &s})
		require.NoError(t, err)
		return result
	}

	serial := run(1, 500, 2024)
	parallel := run(8, 500, 2024)
	assert.Equal(t, serial.Samples, parallel.Samples)
	assert.Equal(t, serial.MeanOutcome, parallel.MeanOutcome)

	other := run(4, 500, 2025)
	assert.NotEqual(t, serial.Samples, other.Samples)
}

func TestRunMonteCarloSimulation_ConfiguredSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 11

	first, err := newTestService(cfg).RunMonteCarloSimulation(context.Background(), values.Zero(), marketRisk(), SimulationOptions{Runs: 100})
	require.NoError(t, err)
	second, err := newTestService(cfg).RunMonteCarloSimulation(context.Background(), values.Zero(), marketRisk(), SimulationOptions{Runs: 100})
	require.NoError(t, err)

	assert.Equal(t, uint64(11), first.Seed)
	assert.Equal(t, first.Samples, second.Samples)
}

func TestRunMonteCarloSimulation_DegenerateInputs(t *testing.T) {
	svc := newTestService(DefaultConfig())

	t.Run("no parameters", func(t *testing.T) {
		result, err := svc.RunMonteCarloSimulation(context.Background(), values.NewMoneyFromInt(500), nil, SimulationOptions{Runs: 10, Seed: seed(1)})
		require.NoError(t, err)
		assert.Equal(t, 500.0, result.MeanOutcome)
		assert.Equal(t, 0.0, result.StdDeviation)
		assert.Equal(t, result.WorstCase, result.BestCase)
	})

	t.Run("point triangular", func(t *testing.T) {
		params := map[string]RiskParameter{"fixed": {Distribution: DistributionTriangular, Low: 5, Mode: 5, High: 5, ImpactFactor: 1}}
		result, err := svc.RunMonteCarloSimulation(context.Background(), values.Zero(), params, SimulationOptions{Runs: 10, Seed: seed(1)})
		require.NoError(t, err)
		assert.Equal(t, 5.0, result.MeanOutcome)
	})

	t.Run("zero impact factor", func(t *testing.T) {
		params := map[string]RiskParameter{"muted": {Distribution: DistributionNormal, StdDev: 1000, ImpactFactor: 0}}
		result, err := svc.RunMonteCarloSimulation(context.Background(), values.NewMoneyFromInt(7), params, SimulationOptions{Runs: 10, Seed: seed(1)})
		require.NoError(t, err)
		assert.Equal(t, 7.0, result.BestCase)
	})
}

func TestRunMonteCarloSimulation_Validation(t *testing.T) {
	svc := newTestService(DefaultConfig())

	tests := []struct {
		name   string
		params map[string]RiskParameter
		runs   int
		code   string
	}{
		{name: "negative runs", params: marketRisk(), runs: -1, code: errors.CodeInvalidSimulationRuns},
		{name: "too many runs", params: marketRisk(), runs: MaxSimulationRuns + 1, code: errors.CodeInvalidSimulationRuns},
		{
			name:   "unknown distribution",
			params: map[string]RiskParameter{"x": {Distribution: "lognormal", ImpactFactor: 1}},
			runs:   10,
			code:   errors.CodeInvalidDistribution,
		},
		{
			name:   "negative std dev",
			params: map[string]RiskParameter{"x": {Distribution: DistributionNormal, StdDev: -1, ImpactFactor: 1}},
			runs:   10,
			code:   errors.CodeInvalidDistribution,
		},
		{
			name:   "inverted uniform",
			params: map[string]RiskParameter{"x": {Distribution: DistributionUniform, Low: 5, High: 1, ImpactFactor: 1}},
			runs:   10,
			code:   errors.CodeInvalidDistribution,
		},
		{
			name:   "mode outside triangle",
			params: map[string]RiskParameter{"x": {Distribution: DistributionTriangular, Low: 0, Mode: 9, High: 5, ImpactFactor: 1}},
			runs:   10,
			code:   errors.CodeInvalidDistribution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RunMonteCarloSimulation(context.Background(), values.Zero(), tt.params, SimulationOptions{Runs: tt.runs, Seed: seed(1)})
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}

func TestRunMonteCarloSimulation_Cancelled(t *testing.T) {
	svc := newTestService(DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.RunMonteCarloSimulation(ctx, values.Zero(), marketRisk(), SimulationOptions{Runs: 100, Seed: seed(1)})
	assert.ErrorIs(t, err, context.Canceled)
}
