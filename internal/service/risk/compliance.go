package risk

import (
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/davidleathers/decision-risk-engine/internal/domain/errors"
	"github.com/davidleathers/decision-risk-engine/internal/domain/validation"
)

// AssessComplianceRisk scores each applicable regulation.
//
// The compliance level is a heuristic placeholder rather than a measured
// value: a base rate shifted by company size and industry benchmark plus
// seeded uniform jitter of +/-0.10, clamped to [0,1].
func (s *service) AssessComplianceRisk(profile CompanyProfile, names []string, opts ComplianceOptions) (risks []ComplianceRisk, err error) {
	defer s.track("compliance", time.Now(), &err)

	if err := validation.Struct(profile, errors.CodeInvalidProfile); err != nil {
		return nil, err
	}

	regs, err := applicableRegulations(profile, names)
	if err != nil {
		return nil, err
	}

	seed := s.seed(opts.Seed)
	jitter := distuv.Uniform{
		Min: -complianceJitter,
		Max: complianceJitter,
		Src: rand.NewPCG(seed, complianceStream),
	}
	baseline := baseComplianceLevel + sizeAdjustments[profile.Size] + s.benchmarks.ComplianceAdjustment(profile.Industry)

	now := s.clock.Now()
	risks = make([]ComplianceRisk, 0, len(regs))
	for _, reg := range regs {
		level := math.Max(0, math.Min(1, baseline+jitter.Rand()))
		risks = append(risks, assessRegulation(reg, level, now))
	}

	s.logger.Debug("compliance risk assessed",
		zap.Int("regulations", len(risks)),
		zap.String("industry", profile.Industry),
		zap.String("size", string(profile.Size)),
		zap.Uint64("seed", seed))

	return risks, nil
}

// applicableRegulations resolves an explicit list, or detects from the profile
func applicableRegulations(profile CompanyProfile, names []string) ([]Regulation, error) {
	if len(names) == 0 {
		var regs []Regulation
		for _, r := range regulations {
			if r.Applies(profile) {
				regs = append(regs, r)
			}
		}
		return regs, nil
	}

	regs := make([]Regulation, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		r, ok := LookupRegulation(name)
		if !ok {
			return nil, errors.NewValidationError(errors.CodeUnknownRegulation, "unknown regulation "+name).
				WithDetail("regulation", name)
		}
		if seen[r.Name] {
			continue
		}
		seen[r.Name] = true
		regs = append(regs, r)
	}
	return regs, nil
}

func assessRegulation(reg Regulation, level float64, now time.Time) ComplianceRisk {
	penalty := reg.MinorPenalty
	if level < majorPenaltyBelow {
		penalty = reg.MajorPenalty
	}

	priority := PriorityForLevel(level)
	deadline := now.AddDate(0, 0, deadlineDays(priority))
	detail := detailCount(level, len(reg.Gaps))

	return ComplianceRisk{
		RegulationName:     reg.Name,
		Jurisdiction:       reg.Jurisdiction,
		ComplianceLevel:    level,
		RiskScore:          (1 - level) * 10,
		PotentialPenalties: penalty,
		ComplianceGaps:     append([]string(nil), reg.Gaps[:detail]...),
		RemediationActions: append([]string(nil), reg.Actions[:min(detail, len(reg.Actions))]...),
		Deadline:           &deadline,
		Priority:           priority,
	}
}

// PriorityForLevel bands a compliance level
func PriorityForLevel(level float64) Priority {
	switch {
	case level < 0.5:
		return PriorityCritical
	case level < 0.7:
		return PriorityHigh
	case level < 0.9:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func deadlineDays(p Priority) int {
	switch p {
	case PriorityCritical:
		return 30
	case PriorityHigh:
		return 90
	case PriorityMedium:
		return 180
	default:
		return 365
	}
}

// detailCount is how many gaps and actions to surface: one at full
// compliance, the whole list once the level drops below 0.5
func detailCount(level float64, available int) int {
	var n int
	switch PriorityForLevel(level) {
	case PriorityCritical:
		n = 4
	case PriorityHigh:
		n = 3
	case PriorityMedium:
		n = 2
	default:
		n = 1
	}
	return min(n, available)
}
