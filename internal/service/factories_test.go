package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/davidleathers/decision-risk-engine/internal/domain/financial"
	"github.com/davidleathers/decision-risk-engine/internal/domain/values"
	"github.com/davidleathers/decision-risk-engine/internal/infrastructure/config"
	"github.com/davidleathers/decision-risk-engine/internal/service/risk"
	"github.com/davidleathers/decision-risk-engine/internal/testutil"
)

func TestServiceFactories(t *testing.T) {
	registry, reader := testutil.MetricsRegistry(t)

	cfg := config.Defaults()
	cfg.Risk.MonteCarloRuns = 500
	cfg.Risk.Seed = 9

	factories, err := NewServiceFactories(cfg, zaptest.NewLogger(t), registry)
	require.NoError(t, err)

	fin := factories.CreateFinancialService()
	investment := values.NewMoneyFromInt(100000)
	npv, err := fin.CalculateNPV(financial.SeriesFromInts(25000, 30000, 35000, 40000, 45000), 0.10, &investment)
	require.NoError(t, err)
	assert.True(t, npv.IsProfitable)

	rsk, err := factories.CreateRiskService()
	require.NoError(t, err)
	result, err := rsk.RunMonteCarloSimulation(testutil.TestContext(t), values.NewMoneyFromInt(1000), map[string]risk.RiskParameter{
		"demand": {Distribution: risk.DistributionNormal, Mean: 0, StdDev: 10, ImpactFactor: 1},
	}, risk.SimulationOptions{})
	require.NoError(t, err)
	assert.Equal(t, 500, result.SimulationRuns)
	assert.Equal(t, uint64(9), result.Seed)

	collected := testutil.CollectMetrics(t, reader)
	assert.Contains(t, collected, "finrisk.financial.calculation_duration")
	assert.Contains(t, collected, "finrisk.risk.simulation_runs")
}

func TestNewServiceFactories_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Risk.ConfidenceLevel = 1.5

	_, err := NewServiceFactories(cfg, nil, nil)
	assert.Error(t, err)
}

func TestNewServiceFactories_NilConfigUsesDefaults(t *testing.T) {
	factories, err := NewServiceFactories(nil, nil, nil)
	require.NoError(t, err)

	_, err = factories.CreateRiskService()
	assert.NoError(t, err)
}
