package financial

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/davidleathers/decision-risk-engine/internal/domain/errors"
	"github.com/davidleathers/decision-risk-engine/internal/domain/financial"
)

// stallEpsilon is the relative step below which an iteration cannot make progress in float64
const stallEpsilon = 4 * 2.220446049250313e-16

// newtonDivergenceLimit stops Newton chasing a root towards infinity, which it
// does when every flow has the same sign
const newtonDivergenceLimit = 1e6

// CalculateIRR runs the solver chain and returns the first converged root, or
// the last solver's best approximation with Converged=false.
func (s *service) CalculateIRR(cashFlows []financial.CashFlow) (result *IRRResult, err error) {
	defer s.track("irr", time.Now(), &err)

	if len(cashFlows) < 2 {
		return nil, errors.NewValidationError(errors.CodeInsufficientCashFlows,
			"IRR requires at least 2 cash flows including the initial investment").
			WithDetail("count", len(cashFlows))
	}
	if err := validateCashFlows(cashFlows); err != nil {
		return nil, err
	}

	obj := npvObjective(cashFlows)
	bracket := Bracket{Low: IRRLowerBound, High: IRRUpperBound}

	var (
		res    SolverResult
		method string
	)
	for i, solver := range s.solvers {
		res = solver.Solve(obj, bracket)
		method = solver.Name()
		// A stall at float precision will not improve under another solver
		if res.Converged || res.WithinPrecision {
			break
		}
		if i < len(s.solvers)-1 {
			s.logger.Warn("irr solver did not converge, falling back",
				zap.String("solver", solver.Name()),
				zap.Int("iterations", res.Iterations),
				zap.Float64("rate", res.Rate))
		}
	}

	fellBack := method != s.solvers[0].Name()
	s.metrics.RecordIRROutcome(method, res.Converged, fellBack)

	realistic := res.Rate >= UnrealisticIRRLow && res.Rate <= UnrealisticIRRHigh
	if !realistic {
		s.logger.Warn("irr outside realistic range",
			zap.Float64("irr", res.Rate),
			zap.String("method", method))
	}
	if !res.Converged {
		s.logger.Warn("irr did not converge",
			zap.Float64("best_rate", res.Rate),
			zap.Int("iterations", res.Iterations),
			zap.Bool("within_precision", res.WithinPrecision))
	}

	return &IRRResult{
		IRR:             res.Rate,
		Converged:       res.Converged,
		WithinPrecision: res.WithinPrecision,
		Iterations:      res.Iterations,
		Method:          method,
		NPVAtIRR:        obj.F(res.Rate),
		Realistic:       realistic,
		CashFlows:       len(cashFlows),
		CalculatedAt:    s.clock.Now(),
	}, nil
}

// npvObjective is the float64 NPV of the series as a function of the rate
func npvObjective(cashFlows []financial.CashFlow) Objective {
	amounts := make([]float64, len(cashFlows))
	periods := make([]float64, len(cashFlows))
	scale := 0.0
	for i, cf := range cashFlows {
		amounts[i] = cf.Amount.Float64()
		periods[i] = float64(cf.Period)
		scale += math.Abs(amounts[i])
	}

	return Objective{
		F: func(rate float64) float64 {
			total := 0.0
			for i, a := range amounts {
				total += a / math.Pow(1+rate, periods[i])
			}
			return total
		},
		Scale: scale,
	}
}

// newtonSolver is Newton-Raphson with a central-difference derivative
type newtonSolver struct {
	seed          float64
	maxIterations int
	tolerance     float64
}

// NewNewtonSolver creates the primary IRR solver
func NewNewtonSolver(seed float64, maxIterations int, tolerance float64) RootSolver {
	return &newtonSolver{seed: seed, maxIterations: maxIterations, tolerance: tolerance}
}

func (n *newtonSolver) Name() string { return "newton" }

// Solve iterates from the seed. It gives up (Converged=false) when the
// derivative vanishes, the step leaves the domain rate > -1 or diverges, or
// the budget runs out. The bracket is not enforced so the caller can see
// outlying roots.
func (n *newtonSolver) Solve(obj Objective, _ Bracket) SolverResult {
	rate := n.seed
	for i := 1; i <= n.maxIterations; i++ {
		f := obj.F(rate)
		if isBad(f) {
			return SolverResult{Rate: rate, Iterations: i}
		}
		if math.Abs(f) < n.tolerance {
			return SolverResult{Rate: rate, Converged: true, Iterations: i}
		}

		h := 1e-6 * math.Max(1, math.Abs(rate))
		derivative := (obj.F(rate+h) - obj.F(rate-h)) / (2 * h)
		if derivative == 0 || isBad(derivative) {
			return SolverResult{Rate: rate, Iterations: i}
		}

		next := rate - f/derivative
		if isBad(next) || next <= -1 || next > newtonDivergenceLimit {
			return SolverResult{Rate: rate, Iterations: i}
		}

		if math.Abs(next-rate) <= stallEpsilon*math.Max(1, math.Abs(rate)) {
			// No further progress is possible
			return stalled(next, obj, n.tolerance, i)
		}
		rate = next
	}
	return SolverResult{Rate: rate, Converged: math.Abs(obj.F(rate)) < n.tolerance, Iterations: n.maxIterations}
}

// bisectionSolver halves the bracket until the NPV is within tolerance
type bisectionSolver struct {
	maxIterations int
	tolerance     float64
}

// NewBisectionSolver creates the fallback IRR solver
func NewBisectionSolver(maxIterations int, tolerance float64) RootSolver {
	return &bisectionSolver{maxIterations: maxIterations, tolerance: tolerance}
}

func (b *bisectionSolver) Name() string { return "bisection" }

// Solve requires a sign change across the bracket. Without one it returns the
// endpoint closer to zero, unconverged, after zero iterations. When the
// iteration cap is hit it returns the last midpoint, unconverged.
func (b *bisectionSolver) Solve(obj Objective, bracket Bracket) SolverResult {
	lo, hi := bracket.Low, bracket.High
	flo, fhi := obj.F(lo), obj.F(hi)

	switch {
	case math.Abs(flo) < b.tolerance:
		return SolverResult{Rate: lo, Converged: true}
	case math.Abs(fhi) < b.tolerance:
		return SolverResult{Rate: hi, Converged: true}
	case isBad(flo) || isBad(fhi) || math.Signbit(flo) == math.Signbit(fhi):
		best := lo
		if math.Abs(fhi) < math.Abs(flo) || isBad(flo) {
			best = hi
		}
		return SolverResult{Rate: best}
	}

	mid := lo + (hi-lo)/2
	for i := 1; i <= b.maxIterations; i++ {
		mid = lo + (hi-lo)/2
		fm := obj.F(mid)
		if math.Abs(fm) < b.tolerance {
			return SolverResult{Rate: mid, Converged: true, Iterations: i}
		}
		if (hi-lo)/2 <= stallEpsilon*math.Max(1, math.Abs(mid)) {
			return stalled(mid, obj, b.tolerance, i)
		}

		if math.Signbit(fm) == math.Signbit(flo) {
			lo, flo = mid, fm
		} else {
			hi = mid
		}
	}
	return SolverResult{Rate: mid, Iterations: b.maxIterations}
}

// stalled is the result of an iteration that can no longer move. It only
// counts as converged when the residual meets the tolerance; a residual that
// float64 rounding of the objective's terms explains is flagged separately.
func stalled(rate float64, obj Objective, tolerance float64, iterations int) SolverResult {
	f := obj.F(rate)
	converged := math.Abs(f) < tolerance
	return SolverResult{
		Rate:            rate,
		Converged:       converged,
		WithinPrecision: !converged && withinNoise(f, obj, tolerance),
		Iterations:      iterations,
	}
}

// withinNoise reports whether residual f is explained by float64 rounding of
// the objective's terms rather than distance from the root
func withinNoise(f float64, obj Objective, tolerance float64) bool {
	return !isBad(f) && math.Abs(f) <= tolerance*math.Max(1, obj.Scale)
}

func isBad(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
