package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/davidleathers/decision-risk-engine/internal/domain/financial"
	"github.com/davidleathers/decision-risk-engine/internal/domain/values"
)

// cashFlowInput is one explicitly dated flow
type cashFlowInput struct {
	Period int    `yaml:"period"`
	Amount string `yaml:"amount"`
}

// flowsInput accepts either dated flows or a bare list of amounts for
// periods 1..n
type flowsInput struct {
	CashFlows []cashFlowInput `yaml:"cash_flows"`
	Amounts   []string        `yaml:"amounts"`
}

func (in flowsInput) series() ([]financial.CashFlow, error) {
	flows := make([]financial.CashFlow, 0, len(in.CashFlows)+len(in.Amounts))
	for i, cf := range in.CashFlows {
		amount, err := values.NewMoneyFromString(cf.Amount)
		if err != nil {
			return nil, fmt.Errorf("cash_flows[%d].amount: %w", i, err)
		}
		flows = append(flows, financial.NewCashFlow(cf.Period, amount))
	}
	for i, a := range in.Amounts {
		amount, err := values.NewMoneyFromString(a)
		if err != nil {
			return nil, fmt.Errorf("amounts[%d]: %w", i, err)
		}
		flows = append(flows, financial.NewCashFlow(i+1, amount))
	}
	return flows, nil
}

func parseMoney(field, s string) (values.Money, error) {
	m, err := values.NewMoneyFromString(s)
	if err != nil {
		return values.Money{}, fmt.Errorf("%s: %w", field, err)
	}
	return m, nil
}

// parseOptionalMoney returns nil for an empty string
func parseOptionalMoney(field, s string) (*values.Money, error) {
	if s == "" {
		return nil, nil
	}
	m, err := parseMoney(field, s)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// readInput decodes the --input YAML document into v. "-" reads stdin.
func readInput(cmd *cobra.Command, v interface{}) error {
	path, _ := cmd.Flags().GetString("input")
	if path == "" {
		return fmt.Errorf("--input is required")
	}

	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	return decodeInput(r, v)
}

func decodeInput(r io.Reader, v interface{}) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && err != io.EOF {
		return fmt.Errorf("decode input: %w", err)
	}
	return nil
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func addInputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("input", "i", "", "YAML input document (\"-\" for stdin)")
}
