package certgate

import "fmt"

// #region evaluate
// Evaluate runs the six certification gates against the given thresholds.
// Pure and idempotent: identical inputs always yield an identical result,
// which is what makes audit replay possible.
func Evaluate(th Thresholds, in Inputs) CertResult {
	var failures []string

	if in.Precision < th.MinPrecision {
		failures = append(failures, fmt.Sprintf("precision %.4f below minimum %.4f", in.Precision, th.MinPrecision))
	}
	if in.FPR > th.MaxFPR {
		failures = append(failures, fmt.Sprintf("false positive rate %.4f above maximum %.4f", in.FPR, th.MaxFPR))
	}
	if in.DupDetection < th.MinDup {
		failures = append(failures, fmt.Sprintf("duplicate detection %.4f below minimum %.4f", in.DupDetection, th.MinDup))
	}
	if in.ECE > th.MaxECE {
		failures = append(failures, fmt.Sprintf("calibration error %.4f above maximum %.4f", in.ECE, th.MaxECE))
	}
	if in.StabilityDays < MinStabilityDays {
		failures = append(failures, fmt.Sprintf("stability %d days below required %d", in.StabilityDays, MinStabilityDays))
	}
	if !in.HumanApproved {
		failures = append(failures, "human approval not recorded")
	}

	return CertResult{
		AllPass:     len(failures) == 0,
		GatesPassed: GateCount - len(failures),
		Failures:    failures,
	}
}

// #endregion evaluate

// #region convenience
// EvaluateClientSide evaluates against the client-side profile.
func EvaluateClientSide(precision, fpr, dup, ece float64, stabilityDays int, humanApproved bool) CertResult {
	return Evaluate(ClientSideThresholds(), Inputs{
		Precision:     precision,
		FPR:           fpr,
		DupDetection:  dup,
		ECE:           ece,
		StabilityDays: stabilityDays,
		HumanApproved: humanApproved,
	})
}

// EvaluateAPI evaluates against the API-logic/extended profile.
func EvaluateAPI(precision, fpr, dup, ece float64, stabilityDays int, humanApproved bool) CertResult {
	return Evaluate(APIThresholds(), Inputs{
		Precision:     precision,
		FPR:           fpr,
		DupDetection:  dup,
		ECE:           ece,
		StabilityDays: stabilityDays,
		HumanApproved: humanApproved,
	})
}

// #endregion convenience
