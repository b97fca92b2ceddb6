package shadow

// #region snapshot
// ModelSnapshot is the comparison surface of one trained model as
// reported by the training/evaluation loop.
type ModelSnapshot struct {
	WeightHash string
	Precision  float64
	ECE        float64
	DupRate    float64
}

// #endregion snapshot

// #region decisions
// Decision codes for a shadow merge evaluation.
const (
	DecisionApproved         = "APPROVED"
	DecisionRejectedPrecision = "REJECTED_PRECISION"
	DecisionRejectedECE      = "REJECTED_ECE"
	DecisionRejectedDup      = "REJECTED_DUP"
	DecisionRejectedMultiple = "REJECTED_MULTIPLE"
)

// #endregion decisions

// #region config
// Tolerances bounds how far a candidate may drift from the current model
// on each metric before the merge is rejected.
type Tolerances struct {
	MaxPrecisionDrop float64
	MaxECERise       float64
	MaxDupDrop       float64
}

// DefaultTolerances returns the shipped drift bounds.
func DefaultTolerances() Tolerances {
	return Tolerances{
		MaxPrecisionDrop: 0.02,
		MaxECERise:       0.005,
		MaxDupDrop:       0.03,
	}
}

// #endregion config

// #region result
// DeltaCheck records one metric comparison.
type DeltaCheck struct {
	Name  string
	Delta float64
	Limit float64
	Pass  bool
}

// MergeResult is the verdict on a candidate model. On any rejection the
// caller must roll back to RollbackSnapshot, which is always the
// unmodified current model.
type MergeResult struct {
	Decision         string
	Checks           []DeltaCheck
	Reason           string
	RollbackApplied  bool
	RollbackSnapshot ModelSnapshot
}

// #endregion result

// #region calibration
// CalibrationProfile is the calibration-only comparison surface, reusable
// apart from the full merge decision.
type CalibrationProfile struct {
	ECE         float64
	Temperature float64
	Brier       float64
}

// CalibrationTolerances bounds calibration-only compatibility.
type CalibrationTolerances struct {
	MaxECEDiff         float64
	MaxTemperatureDiff float64
	MaxBrierDiff       float64
}

// DefaultCalibrationTolerances returns the shipped calibration bounds.
func DefaultCalibrationTolerances() CalibrationTolerances {
	return CalibrationTolerances{
		MaxECEDiff:         0.005,
		MaxTemperatureDiff: 0.2,
		MaxBrierDiff:       0.03,
	}
}

// AlignmentResult is the verdict of a calibration-only check.
type AlignmentResult struct {
	Aligned bool
	Checks  []DeltaCheck
	Reason  string
}

// #endregion calibration
