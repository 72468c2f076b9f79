package risk

import (
	"context"
	"math/rand/v2"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/davidleathers/decision-risk-engine/internal/domain/errors"
	"github.com/davidleathers/decision-risk-engine/internal/domain/validation"
	"github.com/davidleathers/decision-risk-engine/internal/domain/values"
	"github.com/davidleathers/decision-risk-engine/internal/infrastructure/telemetry"
)

// sampler draws one value of a parameter
type sampler interface {
	Rand() float64
}

type constant float64

func (c constant) Rand() float64 { return float64(c) }

// RunMonteCarloSimulation draws opts.Runs outcomes of base + sum(draw x impact).
//
// Runs are split into fixed-size chunks and chunk c draws from a PCG stream
// seeded with (seed, c), so a given seed yields the same samples whatever the
// worker count. Parameters are visited in name order within each sample.
func (s *service) RunMonteCarloSimulation(ctx context.Context, base values.Money, parameters map[string]RiskParameter, opts SimulationOptions) (result *MonteCarloResult, err error) {
	defer s.track("monte_carlo", time.Now(), &err)
	started := time.Now()

	ctx, span := s.tracer.Start(ctx, "risk.RunMonteCarloSimulation")
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	runs := opts.Runs
	if runs == 0 {
		runs = s.config.MonteCarloRuns
	}
	if runs < 1 || runs > MaxSimulationRuns {
		return nil, errors.NewValidationError(errors.CodeInvalidSimulationRuns, "simulation runs out of range").
			WithDetail("runs", runs).WithDetail("max", MaxSimulationRuns)
	}

	names := make([]string, 0, len(parameters))
	for name, p := range parameters {
		if err := ValidateRiskParameter(name, p); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	seed := s.seed(opts.Seed)
	span.SetAttributes(
		attribute.Int("simulation.runs", runs),
		attribute.Int("simulation.parameters", len(names)),
		attribute.Int64("simulation.seed", int64(seed)),
	)
	samples, err := s.sample(ctx, base.Float64(), names, parameters, runs, seed)
	if err != nil {
		return nil, err
	}

	result = summarise(samples)
	result.BaseOutcome = base.Float64()
	result.ConfidenceLevel = s.config.ConfidenceLevel
	result.Seed = seed
	result.Parameters = names

	s.metrics.RecordSimulation(runs, started)
	s.logger.Debug("monte carlo simulation completed",
		zap.Int("runs", runs),
		zap.Int("parameters", len(names)),
		zap.Uint64("seed", seed),
		zap.Float64("mean", result.MeanOutcome),
		zap.Float64("var_95", result.VaR95))

	return result, nil
}

// sample fills runs outcomes chunk by chunk across the worker pool
func (s *service) sample(ctx context.Context, base float64, names []string, parameters map[string]RiskParameter, runs int, seed uint64) ([]float64, error) {
	samples := make([]float64, runs)
	chunk := s.config.ChunkSize

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)

	for c := 0; c*chunk < runs; c++ {
		start := c * chunk
		end := min(start+chunk, runs)
		stream := uint64(c)

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			src := rand.New(rand.NewPCG(seed, stream))
			samplers := make([]sampler, len(names))
			impacts := make([]float64, len(names))
			for i, name := range names {
				samplers[i] = newSampler(parameters[name], src)
				impacts[i] = parameters[name].ImpactFactor
			}

			for n := start; n < end; n++ {
				outcome := base
				for i, smp := range samplers {
					outcome += smp.Rand() * impacts[i]
				}
				samples[n] = outcome
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "monte carlo simulation")
	}
	return samples, nil
}

func newSampler(p RiskParameter, src rand.Source) sampler {
	switch p.Distribution {
	case DistributionUniform:
		return distuv.Uniform{Min: p.Low, Max: p.High, Src: src}
	case DistributionTriangular:
		if p.Low == p.High {
			return constant(p.Low)
		}
		return distuv.NewTriangle(p.Low, p.High, p.Mode, src)
	default:
		return distuv.Normal{Mu: p.Mean, Sigma: p.StdDev, Src: src}
	}
}

// summarise computes the outcome statistics of a sample population
func summarise(samples []float64) *MonteCarloResult {
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	mean, std := stat.PopMeanStdDev(sorted, nil)
	p5 := stat.Quantile(tailPercentile, stat.LinInterp, sorted, nil)

	var tail []float64
	for _, v := range sorted {
		if v > p5 {
			break
		}
		tail = append(tail, v)
	}

	losses := sort.SearchFloat64s(sorted, 0)

	return &MonteCarloResult{
		SimulationRuns:    len(samples),
		MeanOutcome:       mean,
		MedianOutcome:     stat.Quantile(0.5, stat.LinInterp, sorted, nil),
		StdDeviation:      std,
		Percentile5:       p5,
		Percentile95:      stat.Quantile(1-tailPercentile, stat.LinInterp, sorted, nil),
		VaR95:             max(0, -p5),
		CVaR95:            stat.Mean(tail, nil),
		ProbabilityOfLoss: float64(losses) / float64(len(sorted)),
		WorstCase:         floats.Min(sorted),
		BestCase:          floats.Max(sorted),
		Samples:           samples,
	}
}

// ValidateRiskParameter checks a parameter's distribution arguments
func ValidateRiskParameter(name string, p RiskParameter) error {
	if err := validation.Struct(p, errors.CodeInvalidDistribution); err != nil {
		return errors.Wrap(err, "parameter "+name)
	}

	invalid := func(msg string) error {
		return errors.NewValidationError(errors.CodeInvalidDistribution, msg).
			WithDetail("parameter", name).
			WithDetail("distribution", p.Distribution)
	}

	switch p.Distribution {
	case DistributionUniform:
		if p.Low > p.High {
			return invalid("uniform low must not exceed high")
		}
	case DistributionTriangular:
		if p.Low > p.High || p.Mode < p.Low || p.Mode > p.High {
			return invalid("triangular requires low <= mode <= high")
		}
	}
	return nil
}
