package main

import (
	"github.com/spf13/cobra"

	"github.com/davidleathers/decision-risk-engine/internal/service/financial"
)

type investmentInput struct {
	flowsInput `yaml:",inline"`

	InitialInvestment string   `yaml:"initial_investment"`
	DiscountRate      *float64 `yaml:"discount_rate"`
}

type projectInput struct {
	BaseAmount string   `yaml:"base_amount"`
	Periods    int      `yaml:"periods"`
	GrowthRate float64  `yaml:"growth_rate"`
	Volatility *float64 `yaml:"volatility"`
	Method     string   `yaml:"method"`
}

type paramsInput struct {
	InitialInvestment string  `yaml:"initial_investment"`
	AnnualCashFlow    string  `yaml:"annual_cash_flow"`
	Periods           int     `yaml:"periods"`
	DiscountRate      float64 `yaml:"discount_rate"`
	GrowthRate        float64 `yaml:"growth_rate"`
}

func (in paramsInput) params() (financial.ScenarioParams, error) {
	investment, err := parseMoney("initial_investment", in.InitialInvestment)
	if err != nil {
		return financial.ScenarioParams{}, err
	}
	cashFlow, err := parseMoney("annual_cash_flow", in.AnnualCashFlow)
	if err != nil {
		return financial.ScenarioParams{}, err
	}
	return financial.ScenarioParams{
		InitialInvestment: investment,
		AnnualCashFlow:    cashFlow,
		Periods:           in.Periods,
		DiscountRate:      in.DiscountRate,
		GrowthRate:        in.GrowthRate,
	}, nil
}

type adjustmentInput struct {
	Multipliers map[string]float64 `yaml:"multipliers"`
	Probability *float64           `yaml:"probability"`
}

type scenarioInput struct {
	Base        paramsInput                `yaml:"base"`
	Adjustments map[string]adjustmentInput `yaml:"adjustments"`
}

type sensitivityInput struct {
	Base      paramsInput `yaml:"base"`
	Variables []string    `yaml:"variables"`
	Changes   []float64   `yaml:"changes"`
}

var npvCmd = &cobra.Command{
	Use:   "npv",
	Short: "Net present value of a cash-flow series",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var in investmentInput
		if err := readInput(cmd, &in); err != nil {
			return err
		}
		flows, err := in.series()
		if err != nil {
			return err
		}
		investment, err := parseOptionalMoney("initial_investment", in.InitialInvestment)
		if err != nil {
			return err
		}
		rate := cfg.Financial.DefaultDiscountRate
		if in.DiscountRate != nil {
			rate = *in.DiscountRate
		}

		result, err := factories.CreateFinancialService().CalculateNPV(flows, rate, investment)
		if err != nil {
			return err
		}
		return writeJSON(cmd, result.ToMap())
	},
}

var irrCmd = &cobra.Command{
	Use:   "irr",
	Short: "Internal rate of return of a cash-flow series",
	Long: `Solves NPV(r) = 0 with Newton-Raphson and falls back to bisection.
The investment is expected as a negative flow at period 0.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var in flowsInput
		if err := readInput(cmd, &in); err != nil {
			return err
		}
		flows, err := in.series()
		if err != nil {
			return err
		}

		result, err := factories.CreateFinancialService().CalculateIRR(flows)
		if err != nil {
			return err
		}
		return writeJSON(cmd, result.ToMap())
	},
}

var paybackCmd = &cobra.Command{
	Use:   "payback",
	Short: "Simple and discounted payback period",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var in investmentInput
		if err := readInput(cmd, &in); err != nil {
			return err
		}
		flows, err := in.series()
		if err != nil {
			return err
		}
		investment, err := parseMoney("initial_investment", in.InitialInvestment)
		if err != nil {
			return err
		}

		result, err := factories.CreateFinancialService().CalculatePaybackPeriod(flows, investment, in.DiscountRate)
		if err != nil {
			return err
		}
		return writeJSON(cmd, result.ToMap())
	},
}

var piCmd = &cobra.Command{
	Use:   "pi",
	Short: "Profitability index",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var in investmentInput
		if err := readInput(cmd, &in); err != nil {
			return err
		}
		flows, err := in.series()
		if err != nil {
			return err
		}
		investment, err := parseMoney("initial_investment", in.InitialInvestment)
		if err != nil {
			return err
		}

		result, err := factories.CreateFinancialService().CalculateProfitabilityIndex(flows, investment, in.DiscountRate)
		if err != nil {
			return err
		}
		return writeJSON(cmd, result.ToMap())
	},
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project cash flows forward under a growth model",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var in projectInput
		if err := readInput(cmd, &in); err != nil {
			return err
		}
		base, err := parseMoney("base_amount", in.BaseAmount)
		if err != nil {
			return err
		}
		method, err := financial.ParseProjectionMethod(in.Method)
		if err != nil {
			return err
		}

		result, err := factories.CreateFinancialService().ProjectCashFlows(financial.ProjectionRequest{
			BaseAmount: base,
			Periods:    in.Periods,
			GrowthRate: in.GrowthRate,
			Volatility: in.Volatility,
			Method:     method,
		})
		if err != nil {
			return err
		}
		return writeJSON(cmd, result.ToMap())
	},
}

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Base, optimistic and pessimistic scenario analysis",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var in scenarioInput
		if err := readInput(cmd, &in); err != nil {
			return err
		}
		base, err := in.Base.params()
		if err != nil {
			return err
		}
		adjustments, err := scenarioAdjustments(in.Adjustments)
		if err != nil {
			return err
		}

		result, err := factories.CreateFinancialService().PerformScenarioAnalysis(base, adjustments)
		if err != nil {
			return err
		}
		return writeJSON(cmd, result.ToMap())
	},
}

var sensitivityCmd = &cobra.Command{
	Use:   "sensitivity",
	Short: "One-at-a-time NPV sensitivity sweep",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var in sensitivityInput
		if err := readInput(cmd, &in); err != nil {
			return err
		}
		base, err := in.Base.params()
		if err != nil {
			return err
		}
		variables := make([]financial.Parameter, 0, len(in.Variables))
		for _, name := range in.Variables {
			p, err := financial.ParseParameter(name)
			if err != nil {
				return err
			}
			variables = append(variables, p)
		}

		result, err := factories.CreateFinancialService().PerformSensitivityAnalysis(base, variables, in.Changes)
		if err != nil {
			return err
		}
		return writeJSON(cmd, result.ToMap())
	},
}

// scenarioAdjustments converts YAML overrides; nil input keeps the defaults
func scenarioAdjustments(in map[string]adjustmentInput) (financial.ScenarioAdjustments, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(financial.ScenarioAdjustments, len(in))
	for name, adj := range in {
		var multipliers map[financial.Parameter]float64
		if adj.Multipliers != nil {
			multipliers = make(map[financial.Parameter]float64, len(adj.Multipliers))
			for param, m := range adj.Multipliers {
				p, err := financial.ParseParameter(param)
				if err != nil {
					return nil, err
				}
				multipliers[p] = m
			}
		}
		out[financial.ScenarioName(name)] = financial.Adjustment{
			Multipliers: multipliers,
			Probability: adj.Probability,
		}
	}
	return out, nil
}

func init() {
	for _, c := range []*cobra.Command{npvCmd, irrCmd, paybackCmd, piCmd, projectCmd, scenarioCmd, sensitivityCmd} {
		addInputFlag(c)
		rootCmd.AddCommand(c)
	}
}
