package risk

// Score bands, lower bound inclusive
const (
	CriticalThreshold = 80.0
	VeryHighThreshold = 65.0
	HighThreshold     = 50.0
	MediumThreshold   = 35.0
	LowThreshold      = 20.0

	// scoreScale maps the [0,10] raw score range onto [0,100]
	scoreScale = 10.0
	maxScore   = 100.0

	// topFactorCount is how many factors drive recommendations, mitigation plans and reports
	topFactorCount = 3
	// strategiesPerFactor caps the strategies each top factor contributes to recommendations
	strategiesPerFactor = 2
)

// Engine defaults
const (
	DefaultMonteCarloRuns  = 10000
	DefaultConfidenceLevel = 0.95
	DefaultRiskTolerance   = 0.05
	DefaultWorkers         = 4
	DefaultChunkSize       = 1000
	DefaultBaseOutcome     = "1000000"
	MaxSimulationRuns      = 10_000_000

	// tailPercentile is the lower tail used for VaR and CVaR
	tailPercentile = 0.05
)

// Mitigation synthesis
const (
	baseEffectiveness      = 0.8
	effectivenessStep      = 0.1
	minEffectiveness       = 0.1
	baseSuccessProbability = 0.9
	successStep            = 0.05
	minSuccessProbability  = 0.5

	// Strategy cost is this share of the financial impact, or of the notional cost when impact is unknown
	costShareOfImpact  = 0.10
	notionalCost       = 50000
	costGrowthPerRank  = 0.25
	baseImplementation = 30
	implementationStep = 15

	// reportParameterSpread is the std-dev of a report parameter as a share of its impact
	reportParameterSpread = 0.25
)

// Compliance model
const (
	baseComplianceLevel = 0.75
	complianceJitter    = 0.10
	majorPenaltyBelow   = 0.7

	// complianceStream separates the compliance jitter stream from simulation chunk streams
	complianceStream = ^uint64(0)
)
