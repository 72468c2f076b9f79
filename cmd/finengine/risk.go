package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davidleathers/decision-risk-engine/internal/service/risk"
)

// factorInput carries the financial impact as a decimal string
type factorInput struct {
	risk.RiskFactor `yaml:",inline"`

	FinancialImpact string `yaml:"financial_impact"`
}

func (in factorInput) factor(i int) (risk.RiskFactor, error) {
	f := in.RiskFactor
	impact, err := parseOptionalMoney(fmt.Sprintf("factors[%d].financial_impact", i), in.FinancialImpact)
	if err != nil {
		return risk.RiskFactor{}, err
	}
	f.FinancialImpact = impact
	return f, nil
}

func factorsFrom(in []factorInput) ([]risk.RiskFactor, error) {
	if len(in) == 0 {
		return nil, nil
	}
	factors := make([]risk.RiskFactor, len(in))
	for i, fi := range in {
		f, err := fi.factor(i)
		if err != nil {
			return nil, err
		}
		factors[i] = f
	}
	return factors, nil
}

type scoreInput struct {
	Factors []factorInput `yaml:"factors"`
}

type simulateInput struct {
	BaseOutcome string                        `yaml:"base_outcome"`
	Runs        int                           `yaml:"runs"`
	Seed        *uint64                       `yaml:"seed"`
	Parameters  map[string]risk.RiskParameter `yaml:"parameters"`
}

type planInput struct {
	FactorID     string       `yaml:"factor_id"`
	Factor       *factorInput `yaml:"factor"`
	Budget       string       `yaml:"budget"`
	TimelineDays *int         `yaml:"timeline_days"`
}

type complianceInput struct {
	Profile     risk.CompanyProfile `yaml:"profile"`
	Regulations []string            `yaml:"regulations"`
	Seed        *uint64             `yaml:"seed"`
}

type reportInput struct {
	CompanyID string               `yaml:"company_id"`
	Profile   *risk.CompanyProfile `yaml:"profile"`
	Factors   []factorInput        `yaml:"factors"`
	Seed      *uint64              `yaml:"seed"`
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Aggregate risk score for a set of factors",
	Long: `Scores the factors in the input document. Without --input, or with an
empty factor list, the built-in catalog is scored.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var in scoreInput
		if path, _ := cmd.Flags().GetString("input"); path != "" {
			if err := readInput(cmd, &in); err != nil {
				return err
			}
		}
		factors, err := factorsFrom(in.Factors)
		if err != nil {
			return err
		}

		svc, err := factories.CreateRiskService()
		if err != nil {
			return err
		}
		result, err := svc.CalculateRiskScore(factors)
		if err != nil {
			return err
		}
		return writeJSON(cmd, result.ToMap())
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Monte Carlo simulation of an outcome under uncertain parameters",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var in simulateInput
		if err := readInput(cmd, &in); err != nil {
			return err
		}
		base, err := parseMoney("base_outcome", in.BaseOutcome)
		if err != nil {
			return err
		}
		opts := risk.SimulationOptions{Runs: in.Runs, Seed: in.Seed}
		if cmd.Flags().Changed("runs") {
			opts.Runs, _ = cmd.Flags().GetInt("runs")
		}
		if cmd.Flags().Changed("seed") {
			seed, _ := cmd.Flags().GetUint64("seed")
			opts.Seed = &seed
		}

		svc, err := factories.CreateRiskService()
		if err != nil {
			return err
		}
		result, err := svc.RunMonteCarloSimulation(cmd.Context(), base, in.Parameters, opts)
		if err != nil {
			return err
		}

		out := result.ToMap()
		if samples, _ := cmd.Flags().GetBool("samples"); !samples {
			delete(out, "simulation_results")
		}
		return writeJSON(cmd, out)
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Mitigation plan for one risk factor",
	Long: `Builds a mitigation plan for an inline factor or for a catalog factor
selected by factor_id, honoring an optional budget and timeline.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var in planInput
		if err := readInput(cmd, &in); err != nil {
			return err
		}

		svc, err := factories.CreateRiskService()
		if err != nil {
			return err
		}

		var factor risk.RiskFactor
		switch {
		case in.Factor != nil:
			factor, err = in.Factor.factor(0)
		case in.FactorID != "":
			factor, err = svc.Catalog().Get(in.FactorID)
		default:
			err = fmt.Errorf("either factor or factor_id is required")
		}
		if err != nil {
			return err
		}

		budget, err := parseOptionalMoney("budget", in.Budget)
		if err != nil {
			return err
		}
		plan, err := svc.CreateMitigationPlan(factor, risk.MitigationConstraints{
			Budget:       budget,
			TimelineDays: in.TimelineDays,
		})
		if err != nil {
			return err
		}
		return writeJSON(cmd, plan.ToMap())
	},
}

var complianceCmd = &cobra.Command{
	Use:   "compliance",
	Short: "Regulatory compliance exposure for a company profile",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var in complianceInput
		if err := readInput(cmd, &in); err != nil {
			return err
		}

		svc, err := factories.CreateRiskService()
		if err != nil {
			return err
		}
		risks, err := svc.AssessComplianceRisk(in.Profile, in.Regulations, risk.ComplianceOptions{Seed: in.Seed})
		if err != nil {
			return err
		}

		out := make([]map[string]interface{}, len(risks))
		for i := range risks {
			out[i] = risks[i].ToMap()
		}
		return writeJSON(cmd, out)
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Comprehensive risk report for a company",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var in reportInput
		if err := readInput(cmd, &in); err != nil {
			return err
		}
		if company, _ := cmd.Flags().GetString("company"); company != "" {
			in.CompanyID = company
		}
		factors, err := factorsFrom(in.Factors)
		if err != nil {
			return err
		}

		svc, err := factories.CreateRiskService()
		if err != nil {
			return err
		}
		if factors != nil {
			if err := svc.Catalog().Replace(factors); err != nil {
				return err
			}
		}

		report, err := svc.GenerateComprehensiveRiskReport(cmd.Context(), in.CompanyID, in.Profile, risk.ReportOptions{Seed: in.Seed})
		if err != nil {
			return err
		}
		return writeJSON(cmd, report.ToMap())
	},
}

func init() {
	simulateCmd.Flags().Int("runs", 0, "number of iterations (overrides input and config)")
	simulateCmd.Flags().Uint64("seed", 0, "random seed (overrides input and config)")
	simulateCmd.Flags().Bool("samples", false, "include every sampled outcome in the output")

	reportCmd.Flags().String("company", "", "company identifier (overrides input)")

	for _, c := range []*cobra.Command{scoreCmd, simulateCmd, planCmd, complianceCmd, reportCmd} {
		addInputFlag(c)
		rootCmd.AddCommand(c)
	}
}
