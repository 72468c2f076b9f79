package financial

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/davidleathers/decision-risk-engine/internal/domain/errors"
	"github.com/davidleathers/decision-risk-engine/internal/domain/financial"
	"github.com/davidleathers/decision-risk-engine/internal/domain/values"
)

// ParseProjectionMethod maps a method name to a ProjectionMethod. An empty
// name selects compound growth.
func ParseProjectionMethod(name string) (ProjectionMethod, error) {
	switch ProjectionMethod(strings.ToLower(strings.TrimSpace(name))) {
	case "", MethodCompound:
		return MethodCompound, nil
	case MethodLinear:
		return MethodLinear, nil
	case MethodDeclining:
		return MethodDeclining, nil
	default:
		return "", errors.NewValidationError(errors.CodeUnknownGrowthMethod, "unknown growth method").
			WithDetail("method", name).
			WithDetail("allowed", []ProjectionMethod{MethodLinear, MethodCompound, MethodDeclining})
	}
}

// ProjectCashFlows grows req.BaseAmount over periods 1..req.Periods
func (s *service) ProjectCashFlows(req ProjectionRequest) (result *CashFlowProjection, err error) {
	defer s.track("projection", time.Now(), &err)

	if req.Periods <= 0 {
		return nil, errors.NewValidationError(errors.CodeInvalidPeriods, "periods must be positive").
			WithDetail("periods", req.Periods)
	}
	method, err := ParseProjectionMethod(string(req.Method))
	if err != nil {
		return nil, err
	}
	if math.IsNaN(req.GrowthRate) || math.IsInf(req.GrowthRate, 0) {
		return nil, errors.NewValidationError(errors.CodeInvalidInput, "growth rate must be a finite number")
	}

	var z float64
	if req.Volatility != nil {
		vol := *req.Volatility
		if math.IsNaN(vol) || math.IsInf(vol, 0) || vol < 0 {
			return nil, errors.NewValidationError(errors.CodeInvalidVolatility, "volatility must be a non-negative number").
				WithDetail("volatility", vol)
		}
		z = zScore(s.config.ConfidenceLevel)
	}

	g := decimal.NewFromFloat(req.GrowthRate)
	one := decimal.NewFromInt(1)

	result = &CashFlowProjection{
		Method:     method,
		BaseAmount: req.BaseAmount,
		GrowthRate: req.GrowthRate,
		Volatility: req.Volatility,
		Periods:    make([]ProjectedPeriod, 0, req.Periods),
		CashFlows:  make([]financial.CashFlow, 0, req.Periods),
	}
	if req.Volatility != nil {
		result.ConfidenceLevel = s.config.ConfidenceLevel
	}

	cumulative := values.Zero()
	for t := 1; t <= req.Periods; t++ {
		period := decimal.NewFromInt(int64(t))

		var factor decimal.Decimal
		switch method {
		case MethodLinear:
			factor = one.Add(g.Mul(period))
		case MethodDeclining:
			factor = one.Sub(g.Abs()).Pow(period)
		default:
			factor = one.Add(g).Pow(period)
		}

		amount := req.BaseAmount.Mul(factor).RoundToCent()
		cumulative = cumulative.Add(amount)

		projected := ProjectedPeriod{
			Period:     t,
			Amount:     amount,
			Cumulative: cumulative,
		}
		if req.Volatility != nil {
			spread := amount.Abs().MulFloat(z * *req.Volatility * math.Sqrt(float64(t))).RoundToCent()
			lower := amount.Sub(spread)
			upper := amount.Add(spread)
			projected.Lower = &lower
			projected.Upper = &upper
		}

		result.Periods = append(result.Periods, projected)
		result.CashFlows = append(result.CashFlows, financial.CashFlow{
			Period:      t,
			Amount:      amount,
			Description: "projected",
			Category:    financial.CategoryProjected,
		})
	}
	result.Total = cumulative

	s.logger.Debug("cash flows projected",
		zap.String("method", string(method)),
		zap.Int("periods", req.Periods),
		zap.String("total", cumulative.String()))

	return result, nil
}

// zScore is the two-sided standard normal quantile for a confidence level
func zScore(confidence float64) float64 {
	return distuv.UnitNormal.Quantile((1 + confidence) / 2)
}
