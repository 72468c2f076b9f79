package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/davidleathers/decision-risk-engine/internal/domain/errors"
)

// Registry holds the instruments recorded by the financial and risk engines.
// A nil *Registry is valid and records nothing.
type Registry struct {
	meter metric.Meter

	// Financial engine
	CalculationDuration metric.Float64Histogram
	CalculationCounter  metric.Int64Counter
	IRRNonConverged     metric.Int64Counter
	SolverFallbacks     metric.Int64Counter

	// Risk engine
	SimulationRuns     metric.Int64Counter
	SimulationDuration metric.Float64Histogram
	RiskScore          metric.Float64Histogram
	ValidationFailures metric.Int64Counter
}

// NewRegistryWithMeter creates a registry on an explicit meter (tests use an sdk ManualReader)
func NewRegistryWithMeter(meter metric.Meter) (*Registry, error) {
	r := &Registry{meter: meter}

	if err := r.initFinancialMetrics(); err != nil {
		return nil, err
	}

	if err := r.initRiskMetrics(); err != nil {
		return nil, err
	}

	return r, nil
}

// initFinancialMetrics initializes financial modeling metrics
func (r *Registry) initFinancialMetrics() error {
	var err error

	r.CalculationDuration, err = r.meter.Float64Histogram(
		"finrisk.financial.calculation_duration",
		metric.WithDescription("Duration of financial calculations in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50, 100, 500),
	)
	if err != nil {
		return err
	}

	r.CalculationCounter, err = r.meter.Int64Counter(
		"finrisk.financial.calculations_total",
		metric.WithDescription("Total number of financial calculations"),
	)
	if err != nil {
		return err
	}

	r.IRRNonConverged, err = r.meter.Int64Counter(
		"finrisk.financial.irr_nonconverged",
		metric.WithDescription("IRR calculations that exhausted every solver without converging"),
	)
	if err != nil {
		return err
	}

	r.SolverFallbacks, err = r.meter.Int64Counter(
		"finrisk.financial.solver_fallbacks",
		metric.WithDescription("IRR calculations where the primary solver failed and a fallback ran"),
	)
	return err
}

// initRiskMetrics initializes risk assessment metrics
func (r *Registry) initRiskMetrics() error {
	var err error

	r.SimulationRuns, err = r.meter.Int64Counter(
		"finrisk.risk.simulation_runs",
		metric.WithDescription("Monte Carlo samples drawn"),
	)
	if err != nil {
		return err
	}

	r.SimulationDuration, err = r.meter.Float64Histogram(
		"finrisk.risk.simulation_duration",
		metric.WithDescription("Duration of Monte Carlo simulations in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 50, 100, 500, 1000, 5000),
	)
	if err != nil {
		return err
	}

	r.RiskScore, err = r.meter.Float64Histogram(
		"finrisk.risk.score",
		metric.WithDescription("Overall risk scores produced"),
		metric.WithExplicitBucketBoundaries(20, 35, 50, 65, 80, 100),
	)
	if err != nil {
		return err
	}

	r.ValidationFailures, err = r.meter.Int64Counter(
		"finrisk.validation_failures",
		metric.WithDescription("Calls rejected with a validation error"),
	)
	return err
}

// RecordCalculation records duration and count for one engine operation.
// Only validation errors count as validation failures.
func (r *Registry) RecordCalculation(operation string, started time.Time, err error) {
	if r == nil {
		return
	}
	ctx := context.Background()
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	)
	r.CalculationDuration.Record(ctx, float64(time.Since(started).Microseconds())/1000.0, attrs)
	r.CalculationCounter.Add(ctx, 1, attrs)
	if errors.IsValidation(err) {
		r.RecordValidationFailure(operation)
	}
}

// RecordIRROutcome records solver fallbacks and non-convergence
func (r *Registry) RecordIRROutcome(method string, converged, fellBack bool) {
	if r == nil {
		return
	}
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("method", method))
	if fellBack {
		r.SolverFallbacks.Add(ctx, 1, attrs)
	}
	if !converged {
		r.IRRNonConverged.Add(ctx, 1, attrs)
	}
}

// RecordSimulation records a completed Monte Carlo run
func (r *Registry) RecordSimulation(runs int, started time.Time) {
	if r == nil {
		return
	}
	ctx := context.Background()
	r.SimulationRuns.Add(ctx, int64(runs))
	r.SimulationDuration.Record(ctx, float64(time.Since(started).Microseconds())/1000.0)
}

// RecordRiskScore records an overall score and the scope it was computed for
func (r *Registry) RecordRiskScore(scope string, score float64) {
	if r == nil {
		return
	}
	r.RiskScore.Record(context.Background(), score, metric.WithAttributes(attribute.String("scope", scope)))
}

// RecordValidationFailure counts a call rejected with a validation error
func (r *Registry) RecordValidationFailure(operation string) {
	if r == nil {
		return
	}
	r.ValidationFailures.Add(context.Background(), 1, metric.WithAttributes(attribute.String("operation", operation)))
}
