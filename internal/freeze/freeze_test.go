package freeze

import (
	"strings"
	"testing"
)

func frozenGuard(t *testing.T) *Guard {
	t.Helper()
	g := NewGuard()
	if !g.Freeze(3, "sha256:base", 0.012, 0.97, 0.03, 512) {
		t.Fatal("initial freeze should succeed")
	}
	return g
}

func matchingCandidate() MergeCandidate {
	return MergeCandidate{WeightHash: "sha256:base", Precision: 0.97, FPR: 0.03, ECE: 0.012, FeatureDims: 512}
}

func TestFreezeTwiceFails(t *testing.T) {
	g := frozenGuard(t)
	if g.Freeze(3, "sha256:other", 0.01, 0.98, 0.02, 512) {
		t.Fatal("second freeze of the same field must fail")
	}

	// The original baseline is untouched.
	snap, ok := g.Snapshot(3)
	if !ok || snap.WeightHash != "sha256:base" {
		t.Fatalf("baseline mutated: %+v", snap)
	}
}

func TestValidateAgainstUnfrozenField(t *testing.T) {
	g := NewGuard()
	v := g.ValidateMerge(9, matchingCandidate())
	if v.Allowed {
		t.Fatal("merge against unfrozen field must be disallowed")
	}
	if !strings.Contains(v.Reason, "no frozen baseline") {
		t.Fatalf("reason should name the missing freeze: %s", v.Reason)
	}
}

func TestIdenticalCandidateAllowed(t *testing.T) {
	g := frozenGuard(t)
	v := g.ValidateMerge(3, matchingCandidate())
	if !v.Allowed {
		t.Fatalf("expected allowed: %s", v.Reason)
	}
	if len(v.Checks) != 4 {
		t.Fatalf("expected 4 checks, got %d", len(v.Checks))
	}
	if v.RollbackTo != nil {
		t.Fatal("approved merge must not point at a rollback")
	}
}

func TestWeightHashMismatchRejected(t *testing.T) {
	g := frozenGuard(t)
	cand := matchingCandidate()
	cand.WeightHash = "sha256:mutated"

	v := g.ValidateMerge(3, cand)
	if v.Allowed {
		t.Fatal("hash mismatch must be rejected")
	}
	if v.RollbackTo == nil || v.RollbackTo.WeightHash != "sha256:base" {
		t.Fatalf("rollback must carry the unmodified snapshot: %+v", v.RollbackTo)
	}
}

func TestCalibrationDriftRejected(t *testing.T) {
	g := frozenGuard(t)
	cand := matchingCandidate()
	cand.ECE = 0.03 // drift 0.018 > 0.015

	v := g.ValidateMerge(3, cand)
	if v.Allowed {
		t.Fatal("calibration drift past 0.015 must be rejected")
	}
	if !strings.Contains(v.Reason, "ece drift") {
		t.Fatalf("reason should name the drift: %s", v.Reason)
	}
}

func TestPrecisionAndFPRDriftRejected(t *testing.T) {
	g := frozenGuard(t)

	cand := matchingCandidate()
	cand.Precision = 0.94 // drift 0.03 > 0.02
	if v := g.ValidateMerge(3, cand); v.Allowed {
		t.Fatal("precision drift past 0.02 must be rejected")
	}

	cand = matchingCandidate()
	cand.FPR = 0.06 // drift 0.03 > 0.02
	if v := g.ValidateMerge(3, cand); v.Allowed {
		t.Fatal("fpr drift past 0.02 must be rejected")
	}
}

func TestFeatureDimsMustBeIdentical(t *testing.T) {
	g := frozenGuard(t)
	cand := matchingCandidate()
	cand.FeatureDims = 513

	v := g.ValidateMerge(3, cand)
	if v.Allowed {
		t.Fatal("any feature dimension change must be rejected")
	}
	if !strings.Contains(v.Reason, "feature dims") {
		t.Fatalf("reason should name the dims: %s", v.Reason)
	}
}

func TestDriftWithinToleranceAllowed(t *testing.T) {
	g := frozenGuard(t)
	cand := matchingCandidate()
	cand.ECE = 0.02       // drift 0.008
	cand.Precision = 0.96 // drift 0.01
	cand.FPR = 0.04       // drift 0.01

	v := g.ValidateMerge(3, cand)
	if !v.Allowed {
		t.Fatalf("drift within tolerance should pass: %s", v.Reason)
	}
}

func TestSnapshotCap(t *testing.T) {
	g := NewGuard()
	for i := 0; i < MaxSnapshots; i++ {
		if !g.Freeze(i, "h", 0.01, 0.96, 0.03, 128) {
			t.Fatalf("freeze %d should succeed", i)
		}
	}
	if g.Freeze(MaxSnapshots, "h", 0.01, 0.96, 0.03, 128) {
		t.Fatal("freeze past cap must fail")
	}
}
