package financial

// Solver defaults
const (
	// DefaultIRRSeed is where Newton-Raphson starts
	DefaultIRRSeed = 0.10

	// IRRLowerBound and IRRUpperBound bracket the bisection search
	IRRLowerBound = -0.99
	IRRUpperBound = 10.0

	// Rates outside these bounds are reported but flagged as unrealistic
	UnrealisticIRRLow  = -1.0
	UnrealisticIRRHigh = 10.0

	DefaultMaxIRRIterations = 1000
	DefaultIRRTolerance     = 1e-6
	DefaultDiscountRate     = 0.10
	DefaultConfidenceLevel  = 0.95
)

// Scenario defaults
const (
	DefaultBaseProbability        = 0.5
	DefaultOptimisticProbability  = 0.25
	DefaultPessimisticProbability = 0.25

	// probabilityEpsilon is the slack allowed when scenario probabilities must sum to one
	probabilityEpsilon = 1e-9

	// MostSensitiveLimit is how many variables the tornado summary surfaces
	MostSensitiveLimit = 3
)

// DefaultChangePercentages is the sensitivity sweep, -30%..+30% in 10% steps
func DefaultChangePercentages() []float64 {
	return []float64{-0.30, -0.20, -0.10, 0, 0.10, 0.20, 0.30}
}

// DefaultSensitivityVariables are the parameters swept when the caller names none
func DefaultSensitivityVariables() []Parameter {
	return []Parameter{ParamCashFlow, ParamDiscountRate, ParamGrowthRate, ParamInitialInvestment}
}

// Profitability index readings
const (
	InterpretationAccept      = "accept"
	InterpretationIndifferent = "indifferent"
	InterpretationReject      = "reject"
)
