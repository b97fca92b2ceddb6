package certgate

// #region category
// Category classifies a field's threat surface, which selects its
// certification threshold profile.
type Category string

const (
	CategoryClientSide Category = "CLIENT_SIDE"
	CategoryAPILogic   Category = "API_LOGIC"
	CategoryExtended   Category = "EXTENDED"
)

// #endregion category

// #region thresholds
// Thresholds holds the certification bars for one field category.
type Thresholds struct {
	MinPrecision float64
	MaxFPR       float64
	MinDup       float64
	MaxECE       float64
}

// ClientSideThresholds returns the stricter bar applied to client-side
// detection fields.
func ClientSideThresholds() Thresholds {
	return Thresholds{
		MinPrecision: 0.96,
		MaxFPR:       0.04,
		MinDup:       0.88,
		MaxECE:       0.018,
	}
}

// APIThresholds returns the bar applied to API-logic and extended fields.
func APIThresholds() Thresholds {
	return Thresholds{
		MinPrecision: 0.95,
		MaxFPR:       0.05,
		MinDup:       0.85,
		MaxECE:       0.02,
	}
}

// ThresholdsFor selects the profile for a category.
func ThresholdsFor(cat Category) Thresholds {
	if cat == CategoryClientSide {
		return ClientSideThresholds()
	}
	return APIThresholds()
}

// #endregion thresholds

// #region inputs
// MinStabilityDays is the consecutive-day bar every field must hold its
// metrics above threshold before certification.
const MinStabilityDays = 7

// Inputs carries the six values a certification decision depends on.
// All are supplied by collaborators; nothing here is computed locally.
type Inputs struct {
	Precision     float64
	FPR           float64
	DupDetection  float64
	ECE           float64
	StabilityDays int
	HumanApproved bool
}

// #endregion inputs

// #region result
// GateCount is the number of independent certification gates.
const GateCount = 6

// CertResult is the outcome of one certification evaluation. AllPass is
// true only when every gate holds; there is no weighting and no override.
type CertResult struct {
	AllPass     bool
	GatesPassed int
	Failures    []string
}

// #endregion result
