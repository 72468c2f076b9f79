package financial

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/davidleathers/decision-risk-engine/internal/domain/errors"
	"github.com/davidleathers/decision-risk-engine/internal/domain/financial"
	"github.com/davidleathers/decision-risk-engine/internal/domain/values"
	"github.com/davidleathers/decision-risk-engine/internal/infrastructure/telemetry"
	"github.com/davidleathers/decision-risk-engine/internal/metrics"
)

// Config holds the tunables of the financial engine
type Config struct {
	DefaultDiscountRate float64
	MaxIRRIterations    int
	IRRTolerance        float64
	// ConfidenceLevel sizes projection confidence bands
	ConfidenceLevel float64
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		DefaultDiscountRate: DefaultDiscountRate,
		MaxIRRIterations:    DefaultMaxIRRIterations,
		IRRTolerance:        DefaultIRRTolerance,
		ConfidenceLevel:     DefaultConfidenceLevel,
	}
}

// Option customises a service
type Option func(*service)

// WithSolvers replaces the IRR solver chain. Solvers are tried in order and the
// first converged result wins.
func WithSolvers(solvers ...RootSolver) Option {
	return func(s *service) {
		if len(solvers) > 0 {
			s.solvers = solvers
		}
	}
}

// WithClock sets the clock used to stamp results
func WithClock(clock financial.Clock) Option {
	return func(s *service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// service implements the Service interface
type service struct {
	config  Config
	solvers []RootSolver
	clock   financial.Clock
	logger  *zap.Logger
	metrics *metrics.Registry
}

// NewService creates a new financial modeling engine. Zero config values fall
// back to the defaults; logger and registry may be nil.
func NewService(cfg Config, logger *zap.Logger, registry *metrics.Registry, opts ...Option) Service {
	defaults := DefaultConfig()
	if cfg.DefaultDiscountRate < 0 {
		cfg.DefaultDiscountRate = defaults.DefaultDiscountRate
	}
	if cfg.MaxIRRIterations <= 0 {
		cfg.MaxIRRIterations = defaults.MaxIRRIterations
	}
	if cfg.IRRTolerance <= 0 {
		cfg.IRRTolerance = defaults.IRRTolerance
	}
	if cfg.ConfidenceLevel <= 0 || cfg.ConfidenceLevel >= 1 {
		cfg.ConfidenceLevel = defaults.ConfidenceLevel
	}

	s := &service{
		config:  cfg,
		clock:   financial.RealClock{},
		logger:  telemetry.OrNop(logger).Named("financial"),
		metrics: registry,
	}
	s.solvers = []RootSolver{
		NewNewtonSolver(DefaultIRRSeed, cfg.MaxIRRIterations, cfg.IRRTolerance),
		NewBisectionSolver(cfg.MaxIRRIterations, cfg.IRRTolerance),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CalculateNPV discounts each cash flow to period 0
func (s *service) CalculateNPV(cashFlows []financial.CashFlow, discountRate float64, initialInvestment *values.Money) (result *NPVResult, err error) {
	defer s.track("npv", time.Now(), &err)

	if err := validateCashFlows(cashFlows); err != nil {
		return nil, err
	}
	if err := validateDiscountRate(discountRate); err != nil {
		return nil, err
	}

	investment := values.Zero()
	if initialInvestment != nil {
		if initialInvestment.IsNegative() {
			return nil, errors.NewValidationError(errors.CodeNegativeInvestment,
				"initial investment cannot be negative").WithDetail("initial_investment", initialInvestment.String())
		}
		investment = *initialInvestment
	}

	total, pvs := presentValues(cashFlows, discountRate)
	npv := total.Sub(investment).RoundToCent()

	result = &NPVResult{
		NPV:               npv,
		DiscountRate:      discountRate,
		InitialInvestment: investment,
		TotalPresentValue: total.RoundToCent(),
		PresentValues:     pvs,
		IsProfitable:      npv.IsPositive(),
		CalculatedAt:      s.clock.Now(),
	}

	s.logger.Debug("npv calculated",
		zap.Int("cash_flows", len(cashFlows)),
		zap.Float64("discount_rate", discountRate),
		zap.String("npv", npv.String()))

	return result, nil
}

// CalculatePaybackPeriod walks cumulative undiscounted and discounted flows
func (s *service) CalculatePaybackPeriod(cashFlows []financial.CashFlow, initialInvestment values.Money, discountRate *float64) (result *PaybackResult, err error) {
	defer s.track("payback", time.Now(), &err)

	if err := validateCashFlows(cashFlows); err != nil {
		return nil, err
	}
	if initialInvestment.IsNegative() {
		return nil, errors.NewValidationError(errors.CodeNegativeInvestment, "initial investment cannot be negative")
	}
	rate := s.resolveRate(discountRate)
	if err := validateDiscountRate(rate); err != nil {
		return nil, err
	}

	sorted := financial.SortedByPeriod(cashFlows)

	undiscounted := make([]values.Money, len(sorted))
	discounted := make([]values.Money, len(sorted))
	for i, cf := range sorted {
		undiscounted[i] = cf.Amount
		discounted[i] = presentValue(cf.Amount, rate, cf.Period)
	}

	return &PaybackResult{
		SimplePayback:     paybackPeriod(sorted, undiscounted, initialInvestment),
		DiscountedPayback: paybackPeriod(sorted, discounted, initialInvestment),
		DiscountRate:      rate,
		InitialInvestment: initialInvestment,
	}, nil
}

// CalculateProfitabilityIndex divides the present value of the series by the investment
func (s *service) CalculateProfitabilityIndex(cashFlows []financial.CashFlow, initialInvestment values.Money, discountRate *float64) (result *ProfitabilityIndexResult, err error) {
	defer s.track("profitability_index", time.Now(), &err)

	if err := validateCashFlows(cashFlows); err != nil {
		return nil, err
	}
	if initialInvestment.IsNegative() {
		return nil, errors.NewValidationError(errors.CodeNegativeInvestment, "initial investment cannot be negative")
	}
	rate := s.resolveRate(discountRate)
	if err := validateDiscountRate(rate); err != nil {
		return nil, err
	}

	pv, _ := presentValues(cashFlows, rate)

	result = &ProfitabilityIndexResult{
		PresentValue:      pv.RoundToCent(),
		InitialInvestment: initialInvestment,
		NPV:               pv.Sub(initialInvestment).RoundToCent(),
		DiscountRate:      rate,
	}

	// Zero investment is defined as PI 0 rather than a division error
	if initialInvestment.IsZero() {
		result.ProfitabilityIndex = 0
		result.Interpretation = InterpretationReject
		return result, nil
	}

	ratio, _ := pv.Div(initialInvestment.Amount())
	result.ProfitabilityIndex = ratio.Amount().Round(6).InexactFloat64()

	// Band on the rounded NPV so the reading agrees with CalculateNPV
	switch {
	case result.NPV.IsPositive():
		result.Interpretation = InterpretationAccept
	case result.NPV.IsZero():
		result.Interpretation = InterpretationIndifferent
	default:
		result.Interpretation = InterpretationReject
	}

	return result, nil
}

// track records the operation once its named error result is final
func (s *service) track(operation string, started time.Time, err *error) {
	s.metrics.RecordCalculation(operation, started, *err)
}

func (s *service) resolveRate(rate *float64) float64 {
	if rate == nil {
		return s.config.DefaultDiscountRate
	}
	return *rate
}

// presentValues discounts every flow and returns the unrounded total plus the
// per-flow breakdown rounded for display
func presentValues(cashFlows []financial.CashFlow, rate float64) (values.Money, []PresentValue) {
	total := values.Zero()
	pvs := make([]PresentValue, 0, len(cashFlows))
	for _, cf := range cashFlows {
		factor := discountFactor(rate, cf.Period)
		pv := values.NewMoney(cf.Amount.Amount().Div(factor))
		total = total.Add(pv)
		pvs = append(pvs, PresentValue{
			Period:         cf.Period,
			CashFlow:       cf.Amount,
			DiscountFactor: decimal.NewFromInt(1).Div(factor).Round(8).InexactFloat64(),
			PresentValue:   pv.RoundToCent(),
		})
	}
	return total, pvs
}

func presentValue(amount values.Money, rate float64, period int) values.Money {
	return values.NewMoney(amount.Amount().Div(discountFactor(rate, period)))
}

// discountFactor is (1+rate)^period computed in decimal
func discountFactor(rate float64, period int) decimal.Decimal {
	base := decimal.NewFromInt(1).Add(decimal.NewFromFloat(rate))
	return base.Pow(decimal.NewFromInt(int64(period)))
}

// paybackPeriod returns the first point where the running total of amounts
// reaches investment, interpolating linearly between the previous and the
// current period. nil means never recovered.
func paybackPeriod(flows []financial.CashFlow, amounts []values.Money, investment values.Money) *float64 {
	if investment.IsZero() {
		zero := 0.0
		return &zero
	}

	cumulative := values.Zero()
	prevPeriod := 0
	for i, cf := range flows {
		amount := amounts[i]
		next := cumulative.Add(amount)
		if amount.IsPositive() && next.Compare(investment) >= 0 {
			remaining := investment.Sub(cumulative)
			fraction := remaining.Amount().Div(amount.Amount())
			span := decimal.NewFromInt(int64(cf.Period - prevPeriod))
			payback := decimal.NewFromInt(int64(prevPeriod)).Add(fraction.Mul(span)).Round(4).InexactFloat64()
			return &payback
		}
		cumulative = next
		prevPeriod = cf.Period
	}
	return nil
}

func validateCashFlows(cashFlows []financial.CashFlow) error {
	if len(cashFlows) == 0 {
		return errors.NewValidationError(errors.CodeEmptyCashFlows, "cash flows cannot be empty")
	}
	for i, cf := range cashFlows {
		if cf.Period < 0 {
			return errors.NewValidationError(errors.CodeNegativePeriod,
				fmt.Sprintf("cash flow %d has negative period %d", i, cf.Period)).
				WithDetail("index", i).WithDetail("period", cf.Period)
		}
	}
	return nil
}

func validateDiscountRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return errors.NewValidationError(errors.CodeInvalidInput, "discount rate must be a finite number")
	}
	if rate < 0 {
		return errors.NewValidationError(errors.CodeNegativeDiscountRate, "discount rate cannot be negative").
			WithDetail("discount_rate", rate)
	}
	return nil
}
