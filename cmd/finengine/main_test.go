package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidleathers/decision-risk-engine/internal/service/financial"
)

// execute runs the root command and returns its decoded JSON output
func execute(t *testing.T, args ...string) interface{} {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())

	var decoded interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded), out.String())
	return decoded
}

func writeInput(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	expected := []string{"npv", "irr", "payback", "pi", "project", "scenario", "sensitivity",
		"score", "simulate", "plan", "compliance", "report"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "finengine", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestSimulateCommand_Flags(t *testing.T) {
	for _, name := range []string{"runs", "seed", "samples", "input"} {
		assert.NotNil(t, simulateCmd.Flags().Lookup(name), "simulate should have --%s", name)
	}
}

func TestNPVCommand(t *testing.T) {
	path := writeInput(t, `
amounts: ["25000", "30000", "35000", "40000", "45000"]
initial_investment: "100000"
discount_rate: 0.10
`)
	out := execute(t, "npv", "--input", path).(map[string]interface{})

	assert.Equal(t, "29078.68", out["npv"])
	assert.Equal(t, true, out["is_profitable"])
	assert.Len(t, out["present_values"], 5)
}

func TestIRRCommand(t *testing.T) {
	path := writeInput(t, `
cash_flows:
  - {period: 0, amount: "-100000"}
  - {period: 1, amount: 25000}
  - {period: 2, amount: 30000}
  - {period: 3, amount: 35000}
  - {period: 4, amount: 40000}
  - {period: 5, amount: 45000}
`)
	out := execute(t, "irr", "--input", path).(map[string]interface{})

	assert.Equal(t, true, out["converged"])
	assert.Equal(t, "newton", out["method"])
	assert.InDelta(t, 0.1971, out["irr"].(float64), 1e-3)
}

func TestScoreCommand_DefaultCatalog(t *testing.T) {
	out := execute(t, "score").(map[string]interface{})

	assert.Equal(t, "Low", out["risk_level"])
	assert.Len(t, out["risk_factors"], 6)
}

func TestSimulateCommand_SeededRunIsReproducible(t *testing.T) {
	path := writeInput(t, `
base_outcome: "1000"
parameters:
  demand: {distribution: normal, mean: 0, std_dev: 50, impact_factor: 1}
  cost: {distribution: triangular, low: -20, mode: 0, high: 10, impact_factor: 1}
`)
	first := execute(t, "simulate", "--input", path, "--runs", "400", "--seed", "7").(map[string]interface{})
	second := execute(t, "simulate", "--input", path, "--runs", "400", "--seed", "7").(map[string]interface{})

	assert.Equal(t, first["mean_outcome"], second["mean_outcome"])
	assert.EqualValues(t, 400, first["simulation_runs"])
	assert.EqualValues(t, 7, first["seed"])
	assert.NotContains(t, first, "simulation_results")
}

func TestReadInput_RequiresPath(t *testing.T) {
	cmd := &cobra.Command{Use: "probe"}
	addInputFlag(cmd)

	err := readInput(cmd, &flowsInput{})
	assert.Error(t, err)
}

func TestDecodeInput_RejectsUnknownFields(t *testing.T) {
	var in flowsInput
	err := decodeInput(strings.NewReader("amount: [1, 2]\n"), &in)
	assert.Error(t, err)
}

func TestFlowsInput_Series(t *testing.T) {
	in := flowsInput{
		CashFlows: []cashFlowInput{{Period: 0, Amount: "-500"}},
		Amounts:   []string{"200", "400.5"},
	}

	flows, err := in.series()
	require.NoError(t, err)
	require.Len(t, flows, 3)
	assert.Equal(t, 0, flows[0].Period)
	assert.Equal(t, 2, flows[2].Period)
	assert.Equal(t, "400.50", flows[2].Amount.String())

	_, err = flowsInput{Amounts: []string{"abc"}}.series()
	assert.Error(t, err)
}

func TestScenarioAdjustments(t *testing.T) {
	p := 0.3
	adj, err := scenarioAdjustments(map[string]adjustmentInput{
		"optimistic": {Multipliers: map[string]float64{"Cash_Flow": 1.5}, Probability: &p},
	})
	require.NoError(t, err)
	assert.Equal(t, 1.5, adj[financial.ScenarioOptimistic].Multipliers[financial.ParamCashFlow])

	_, err = scenarioAdjustments(map[string]adjustmentInput{
		"optimistic": {Multipliers: map[string]float64{"revenue": 1.5}},
	})
	assert.Error(t, err)

	adj, err = scenarioAdjustments(nil)
	require.NoError(t, err)
	assert.Nil(t, adj)
}
