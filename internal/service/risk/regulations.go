package risk

import (
	"strings"

	"github.com/davidleathers/decision-risk-engine/internal/domain/values"
)

// Regulation is a static catalog entry for one regulatory framework
type Regulation struct {
	Name         string
	FullName     string
	Jurisdiction string
	MinorPenalty values.Money
	MajorPenalty values.Money
	// Gaps and Actions are ordered most fundamental first; lower compliance
	// surfaces more of each
	Gaps    []string
	Actions []string
	applies func(CompanyProfile) bool
}

// Applies reports whether the regulation binds a company with profile
func (r Regulation) Applies(profile CompanyProfile) bool {
	return r.applies != nil && r.applies(profile)
}

// Regulation names
const (
	RegulationSOX  = "SOX"
	RegulationGDPR = "GDPR"
	RegulationPCI  = "PCI-DSS"
)

var regulations = []Regulation{
	{
		Name:         RegulationSOX,
		FullName:     "Sarbanes-Oxley Act",
		Jurisdiction: "US",
		MinorPenalty: values.NewMoneyFromInt(1_000_000),
		MajorPenalty: values.NewMoneyFromInt(5_000_000),
		Gaps: []string{
			"Internal control documentation incomplete",
			"Segregation of duties not enforced in financial systems",
			"Financial close process lacks review evidence",
			"IT general controls untested",
		},
		Actions: []string{
			"Document and test key internal controls",
			"Enforce role-based access in financial systems",
			"Introduce management review sign-off for the financial close",
			"Engage external auditors for a readiness assessment",
		},
		applies: func(p CompanyProfile) bool { return p.IsPublic },
	},
	{
		Name:         RegulationGDPR,
		FullName:     "General Data Protection Regulation",
		Jurisdiction: "EU",
		MinorPenalty: values.NewMoneyFromInt(10_000_000),
		MajorPenalty: values.NewMoneyFromInt(20_000_000),
		Gaps: []string{
			"Records of processing activities incomplete",
			"Data subject request handling not formalised",
			"Data protection impact assessments missing",
			"Processor agreements lack required clauses",
		},
		Actions: []string{
			"Build a register of processing activities",
			"Implement a data subject request workflow",
			"Run impact assessments for high-risk processing",
			"Appoint a data protection officer",
		},
		applies: func(p CompanyProfile) bool { return p.ProcessesPersonalData },
	},
	{
		Name:         RegulationPCI,
		FullName:     "Payment Card Industry Data Security Standard",
		Jurisdiction: "Global",
		MinorPenalty: values.NewMoneyFromInt(5_000),
		MajorPenalty: values.NewMoneyFromInt(100_000),
		Gaps: []string{
			"Cardholder data environment not segmented",
			"Encryption of stored card data incomplete",
			"Vulnerability scanning irregular",
			"Access logging not reviewed",
		},
		Actions: []string{
			"Segment the cardholder data environment",
			"Tokenize or encrypt stored card data",
			"Schedule quarterly vulnerability scans",
			"Centralize and review access logs daily",
		},
		applies: func(p CompanyProfile) bool { return p.ProcessesPayments },
	},
}

// Regulations returns the regulation catalog
func Regulations() []Regulation {
	return append([]Regulation(nil), regulations...)
}

// LookupRegulation finds a regulation by name, ignoring case
func LookupRegulation(name string) (Regulation, bool) {
	for _, r := range regulations {
		if strings.EqualFold(r.Name, strings.TrimSpace(name)) {
			return r, true
		}
	}
	return Regulation{}, false
}

// StaticBenchmarks is a fixed industry adjustment table
type StaticBenchmarks map[string]float64

// ComplianceAdjustment returns the table entry for industry, or 0
func (b StaticBenchmarks) ComplianceAdjustment(industry string) float64 {
	return b[strings.ToLower(strings.TrimSpace(industry))]
}

// DefaultIndustryBenchmarks returns the built-in adjustments. Heavily
// supervised industries run more mature compliance programs.
func DefaultIndustryBenchmarks() StaticBenchmarks {
	return StaticBenchmarks{
		"banking":       0.08,
		"finance":       0.05,
		"insurance":     0.05,
		"healthcare":    0.03,
		"technology":    0.0,
		"manufacturing": -0.02,
		"retail":        -0.03,
		"hospitality":   -0.05,
	}
}

var sizeAdjustments = map[CompanySize]float64{
	SizeLarge:   0.10,
	SizeMedium:  0.05,
	SizeSmall:   -0.05,
	SizeStartup: -0.10,
}
