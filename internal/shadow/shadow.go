package shadow

import (
	"fmt"
	"math"
	"strings"
)

// #region validator
// Validator compares candidate models against the currently deployed one
// while running in shadow. A candidate that regresses past tolerance on
// any single metric is rejected with a code naming that metric.
type Validator struct {
	tol Tolerances
}

// NewValidator creates a merge validator with the given tolerances.
func NewValidator(tol Tolerances) *Validator {
	return &Validator{tol: tol}
}

// #endregion validator

// #region validate-merge
// ValidateMerge computes the three metric deltas and checks each against
// its independent tolerance. Precision and duplicate-detection may only
// drop by so much; calibration error may only rise by so much.
func (v *Validator) ValidateMerge(current, candidate ModelSnapshot) MergeResult {
	checks := []DeltaCheck{
		{
			Name:  "precision",
			Delta: current.Precision - candidate.Precision,
			Limit: v.tol.MaxPrecisionDrop,
		},
		{
			Name:  "ece",
			Delta: candidate.ECE - current.ECE,
			Limit: v.tol.MaxECERise,
		},
		{
			Name:  "dup",
			Delta: current.DupRate - candidate.DupRate,
			Limit: v.tol.MaxDupDrop,
		},
	}

	var failed []string
	for i := range checks {
		checks[i].Pass = checks[i].Delta <= checks[i].Limit
		if !checks[i].Pass {
			failed = append(failed, checks[i].Name)
		}
	}

	if len(failed) == 0 {
		return MergeResult{
			Decision:         DecisionApproved,
			Checks:           checks,
			Reason:           "candidate within tolerance on precision, ece, and dup",
			RollbackSnapshot: current,
		}
	}

	decision := DecisionRejectedMultiple
	if len(failed) == 1 {
		switch failed[0] {
		case "precision":
			decision = DecisionRejectedPrecision
		case "ece":
			decision = DecisionRejectedECE
		case "dup":
			decision = DecisionRejectedDup
		}
	}

	return MergeResult{
		Decision:         decision,
		Checks:           checks,
		Reason:           fmt.Sprintf("candidate regressed past tolerance on: %s", strings.Join(failed, ", ")),
		RollbackApplied:  true,
		RollbackSnapshot: current,
	}
}

// #endregion validate-merge

// #region calibration-alignment
// CheckCalibrationAlignment confirms calibration-only compatibility
// between two profiles, independent of the full merge decision.
func CheckCalibrationAlignment(current, candidate CalibrationProfile, tol CalibrationTolerances) AlignmentResult {
	checks := []DeltaCheck{
		{
			Name:  "ece_diff",
			Delta: math.Abs(candidate.ECE - current.ECE),
			Limit: tol.MaxECEDiff,
		},
		{
			Name:  "temperature_diff",
			Delta: math.Abs(candidate.Temperature - current.Temperature),
			Limit: tol.MaxTemperatureDiff,
		},
		{
			Name:  "brier_diff",
			Delta: math.Abs(candidate.Brier - current.Brier),
			Limit: tol.MaxBrierDiff,
		},
	}

	var failed []string
	for i := range checks {
		checks[i].Pass = checks[i].Delta <= checks[i].Limit
		if !checks[i].Pass {
			failed = append(failed, checks[i].Name)
		}
	}

	if len(failed) > 0 {
		return AlignmentResult{
			Checks: checks,
			Reason: fmt.Sprintf("calibration misaligned on: %s", strings.Join(failed, ", ")),
		}
	}
	return AlignmentResult{
		Aligned: true,
		Checks:  checks,
		Reason:  "calibration profiles compatible",
	}
}

// #endregion calibration-alignment
