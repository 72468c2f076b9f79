package financial

import (
	"fmt"
	"sort"

	"github.com/davidleathers/decision-risk-engine/internal/domain/values"
)

// Cash flow categories used by projections and callers' own series
const (
	CategoryInvestment = "investment"
	CategoryOperating  = "operating"
	CategoryFinancing  = "financing"
	CategoryProjected  = "projected"
)

// CashFlow is one amount received (positive) or paid (negative) at the end of a period.
type CashFlow struct {
	Period      int          `json:"period"`
	Amount      values.Money `json:"amount"`
	Description string       `json:"description,omitempty"`
	Category    string       `json:"category,omitempty"`
}

// NewCashFlow creates a cash flow with no description
func NewCashFlow(period int, amount values.Money) CashFlow {
	return CashFlow{Period: period, Amount: amount, Category: CategoryOperating}
}

func (cf CashFlow) String() string {
	return fmt.Sprintf("t=%d %s", cf.Period, cf.Amount)
}

// SeriesFromAmounts builds a series with periods 1..n, the common layout for
// annual inflows following an up-front investment.
func SeriesFromAmounts(amounts ...values.Money) []CashFlow {
	flows := make([]CashFlow, len(amounts))
	for i, a := range amounts {
		flows[i] = NewCashFlow(i+1, a)
	}
	return flows
}

// SeriesFromInts is SeriesFromAmounts for whole-currency amounts
func SeriesFromInts(amounts ...int64) []CashFlow {
	money := make([]values.Money, len(amounts))
	for i, a := range amounts {
		money[i] = values.NewMoneyFromInt(a)
	}
	return SeriesFromAmounts(money...)
}

// SortedByPeriod returns a copy of flows ordered by period. Flows sharing a
// period keep their relative order.
func SortedByPeriod(flows []CashFlow) []CashFlow {
	sorted := make([]CashFlow, len(flows))
	copy(sorted, flows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Period < sorted[j].Period })
	return sorted
}

// MaxPeriod returns the last period in the series, or 0 for an empty series
func MaxPeriod(flows []CashFlow) int {
	maxPeriod := 0
	for _, cf := range flows {
		if cf.Period > maxPeriod {
			maxPeriod = cf.Period
		}
	}
	return maxPeriod
}
