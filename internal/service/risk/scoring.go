package risk

import (
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// CalculateRiskScore aggregates factors into a weighted 0-100 score
func (s *service) CalculateRiskScore(factors []RiskFactor) (result *RiskScore, err error) {
	defer s.track("risk_score", time.Now(), &err)

	if factors == nil {
		factors = s.catalog.List()
	}
	for _, f := range factors {
		if err := ValidateRiskFactor(f); err != nil {
			return nil, err
		}
	}

	result = s.score(factors)
	s.metrics.RecordRiskScore("overall", result.OverallScore)

	s.logger.Debug("risk score calculated",
		zap.Int("factors", len(factors)),
		zap.Float64("score", result.OverallScore),
		zap.String("level", string(result.RiskLevel)))

	return result, nil
}

// score aggregates pre-validated factors
func (s *service) score(factors []RiskFactor) *RiskScore {
	result := &RiskScore{
		RiskFactors:    make([]RiskFactor, 0, len(factors)),
		ScoreBreakdown: make(map[string]float64, len(factors)),
		CalculatedAt:   s.clock.Now(),
	}

	if len(factors) == 0 {
		result.RiskLevel = LevelForScore(0)
		result.Recommendations = bandRecommendations(result.RiskLevel)
		return result
	}

	raw := make([]float64, len(factors))
	weights := make([]float64, len(factors))
	for i, f := range factors {
		raw[i] = f.RawScore()
		weights[i] = f.Weight()
		result.RiskFactors = append(result.RiskFactors, cloneFactor(f))
		result.ScoreBreakdown[f.Name] = raw[i]
	}

	overall := clampScore(stat.Mean(raw, weights) * scoreScale)
	spread := distuv.UnitNormal.Quantile((1+s.config.ConfidenceLevel)/2) * stat.PopStdDev(raw, nil) * scoreScale

	result.OverallScore = overall
	result.RiskLevel = LevelForScore(overall)
	result.ConfidenceInterval = ConfidenceInterval{
		Low:  clampScore(overall - spread),
		High: clampScore(overall + spread),
	}
	result.Recommendations = recommendations(result.RiskLevel, factors)
	return result
}

// LevelForScore bands a 0-100 score
func LevelForScore(score float64) RiskLevel {
	switch {
	case score >= CriticalThreshold:
		return RiskLevelCritical
	case score >= VeryHighThreshold:
		return RiskLevelVeryHigh
	case score >= HighThreshold:
		return RiskLevelHigh
	case score >= MediumThreshold:
		return RiskLevelMedium
	case score >= LowThreshold:
		return RiskLevelLow
	default:
		return RiskLevelVeryLow
	}
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(maxScore, v))
}

// topFactors returns up to n factors by raw score, highest first, ties by id
func topFactors(factors []RiskFactor, n int) []RiskFactor {
	sorted := append([]RiskFactor(nil), factors...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := sorted[i].RawScore(), sorted[j].RawScore()
		if ri != rj {
			return ri > rj
		}
		return sorted[i].ID < sorted[j].ID
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func bandRecommendations(level RiskLevel) []string {
	switch level {
	case RiskLevelCritical:
		return []string{
			"Escalate to executive leadership immediately",
			"Suspend new commitments until critical risks are mitigated",
		}
	case RiskLevelVeryHigh:
		return []string{
			"Prepare contingency plans for the highest-rated risks",
			"Review risk exposure with leadership monthly",
		}
	case RiskLevelHigh:
		return []string{"Assign owners and deadlines to the top risks"}
	case RiskLevelMedium:
		return []string{"Monitor key risk indicators quarterly"}
	default:
		return []string{"Maintain current risk monitoring practices"}
	}
}

// recommendations combines the band guidance with the top factors' own strategies
func recommendations(level RiskLevel, factors []RiskFactor) []string {
	recs := bandRecommendations(level)
	for _, f := range topFactors(factors, topFactorCount) {
		for i, strategy := range f.MitigationStrategies {
			if i == strategiesPerFactor {
				break
			}
			recs = append(recs, strategy)
		}
	}
	return dedupe(recs)
}

// dedupe drops repeated strings, keeping first occurrences in order
func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
