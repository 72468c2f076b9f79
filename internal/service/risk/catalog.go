package risk

import (
	"sort"
	"sync"
	"time"

	"github.com/davidleathers/decision-risk-engine/internal/domain/errors"
	"github.com/davidleathers/decision-risk-engine/internal/domain/financial"
	"github.com/davidleathers/decision-risk-engine/internal/domain/validation"
	"github.com/davidleathers/decision-risk-engine/internal/domain/values"
)

// Catalog is the engine-owned set of risk factors keyed by id. It is safe for
// concurrent use; every mutation validates its input before taking the write
// lock, so a rejected call leaves the catalog untouched.
type Catalog struct {
	mu      sync.RWMutex
	factors map[string]RiskFactor
	clock   financial.Clock
}

// NewCatalog creates a catalog holding factors
func NewCatalog(clock financial.Clock, factors ...RiskFactor) (*Catalog, error) {
	if clock == nil {
		clock = financial.RealClock{}
	}
	c := &Catalog{factors: make(map[string]RiskFactor), clock: clock}
	if err := c.Replace(factors); err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultCatalog creates a catalog holding the six canonical factors
func DefaultCatalog(clock financial.Clock) *Catalog {
	c, err := NewCatalog(clock, DefaultRiskFactors(clockOrReal(clock).Now())...)
	if err != nil {
		panic(err)
	}
	return c
}

// Add inserts a new factor. An empty LastAssessed is stamped with the catalog clock.
func (c *Catalog) Add(factor RiskFactor) error {
	factor = c.stamp(factor)
	if err := ValidateRiskFactor(factor); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.factors[factor.ID]; exists {
		return errors.NewConflictError("risk factor already exists").WithDetail("id", factor.ID)
	}
	c.factors[factor.ID] = cloneFactor(factor)
	return nil
}

// Replace swaps the whole catalog for factors. Ids must be unique.
func (c *Catalog) Replace(factors []RiskFactor) error {
	next := make(map[string]RiskFactor, len(factors))
	for _, f := range factors {
		f = c.stamp(f)
		if err := ValidateRiskFactor(f); err != nil {
			return err
		}
		if _, dup := next[f.ID]; dup {
			return errors.NewValidationError(errors.CodeInvalidRiskFactor, "duplicate risk factor id").WithDetail("id", f.ID)
		}
		next[f.ID] = cloneFactor(f)
	}

	c.mu.Lock()
	c.factors = next
	c.mu.Unlock()
	return nil
}

// Reassess replaces a factor's probability, impact score and assessment time
func (c *Catalog) Reassess(id string, probability, impactScore float64, at time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.factors[id]
	if !ok {
		return errors.NewNotFoundError("risk factor").WithDetail("id", id)
	}

	updated := cloneFactor(current)
	updated.Probability = probability
	updated.ImpactScore = impactScore
	updated.LastAssessed = at
	if err := ValidateRiskFactor(updated); err != nil {
		return err
	}

	c.factors[id] = updated
	return nil
}

// Get returns a copy of the factor with id
func (c *Catalog) Get(id string) (RiskFactor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, ok := c.factors[id]
	if !ok {
		return RiskFactor{}, errors.NewNotFoundError("risk factor").WithDetail("id", id)
	}
	return cloneFactor(f), nil
}

// List returns copies of every factor ordered by id
func (c *Catalog) List() []RiskFactor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]RiskFactor, 0, len(c.factors))
	for _, f := range c.factors {
		out = append(out, cloneFactor(f))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Remove deletes the factor with id
func (c *Catalog) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.factors[id]; !ok {
		return errors.NewNotFoundError("risk factor").WithDetail("id", id)
	}
	delete(c.factors, id)
	return nil
}

// Len returns the number of factors
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.factors)
}

func (c *Catalog) stamp(f RiskFactor) RiskFactor {
	if f.LastAssessed.IsZero() {
		f.LastAssessed = c.clock.Now()
	}
	return f
}

// ValidateRiskFactor checks ranges and the financial impact sign
func ValidateRiskFactor(f RiskFactor) error {
	if err := validation.Struct(f, errors.CodeInvalidRiskFactor); err != nil {
		return err
	}
	if f.FinancialImpact != nil && f.FinancialImpact.IsNegative() {
		return errors.NewValidationError(errors.CodeInvalidRiskFactor, "financial impact cannot be negative").
			WithDetail("id", f.ID)
	}
	return nil
}

// cloneFactor copies the slices and pointers a caller could otherwise mutate
func cloneFactor(f RiskFactor) RiskFactor {
	if f.MitigationStrategies != nil {
		f.MitigationStrategies = append([]string(nil), f.MitigationStrategies...)
	}
	if f.FinancialImpact != nil {
		fi := *f.FinancialImpact
		f.FinancialImpact = &fi
	}
	return f
}

func clockOrReal(clock financial.Clock) financial.Clock {
	if clock == nil {
		return financial.RealClock{}
	}
	return clock
}

// DefaultRiskFactors returns the six canonical demonstration factors
func DefaultRiskFactors(assessedAt time.Time) []RiskFactor {
	impact := func(amount string) *values.Money {
		m := values.MustNewMoneyFromString(amount)
		return &m
	}

	return []RiskFactor{
		{
			ID:              "market_volatility",
			Name:            "Market Volatility",
			Type:            RiskTypeMarket,
			Probability:     0.7,
			ImpactScore:     6.0,
			FinancialImpact: impact("500000"),
			Description:     "Demand and pricing swings driven by economic conditions",
			MitigationStrategies: []string{
				"Diversify revenue streams across markets",
				"Hedge exposure with financial instruments",
				"Maintain flexible cost structures",
			},
			LastAssessed: assessedAt,
		},
		{
			ID:              "regulatory_changes",
			Name:            "Regulatory Changes",
			Type:            RiskTypeRegulatory,
			Probability:     0.4,
			ImpactScore:     7.0,
			FinancialImpact: impact("300000"),
			Description:     "New or changed regulation affecting operations",
			MitigationStrategies: []string{
				"Monitor regulatory developments continuously",
				"Engage legal and compliance advisors",
				"Build compliance buffers into project plans",
			},
			LastAssessed: assessedAt,
		},
		{
			ID:              "operational_disruption",
			Name:            "Operational Disruption",
			Type:            RiskTypeOperational,
			Probability:     0.3,
			ImpactScore:     8.0,
			FinancialImpact: impact("750000"),
			Description:     "Interruption of critical business processes or supply chains",
			MitigationStrategies: []string{
				"Implement business continuity planning",
				"Establish redundant suppliers",
				"Automate critical processes",
			},
			LastAssessed: assessedAt,
		},
		{
			ID:              "credit_default",
			Name:            "Counterparty Credit Default",
			Type:            RiskTypeCredit,
			Probability:     0.2,
			ImpactScore:     7.0,
			FinancialImpact: impact("400000"),
			Description:     "Customers or partners failing to meet payment obligations",
			MitigationStrategies: []string{
				"Perform credit checks on counterparties",
				"Require collateral or guarantees",
				"Purchase trade credit insurance",
			},
			LastAssessed: assessedAt,
		},
		{
			ID:              "technology_failure",
			Name:            "Technology Failure",
			Type:            RiskTypeTechnology,
			Probability:     0.35,
			ImpactScore:     6.5,
			FinancialImpact: impact("250000"),
			Description:     "Outages, security incidents or obsolescence of key systems",
			MitigationStrategies: []string{
				"Invest in cybersecurity controls",
				"Maintain tested backup and recovery procedures",
				"Modernize legacy systems",
			},
			LastAssessed: assessedAt,
		},
		{
			ID:              "liquidity_shortfall",
			Name:            "Liquidity Shortfall",
			Type:            RiskTypeLiquidity,
			Probability:     0.25,
			ImpactScore:     8.5,
			FinancialImpact: impact("600000"),
			Description:     "Insufficient cash to meet short-term obligations",
			MitigationStrategies: []string{
				"Maintain committed credit facilities",
				"Forecast cash flows weekly",
				"Optimize working capital",
			},
			LastAssessed: assessedAt,
		},
	}
}
