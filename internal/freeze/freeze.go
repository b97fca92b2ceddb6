package freeze

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// #region types
// FrozenSnapshot is the immutable post-certification baseline for one
// field. Created at most once, at CERTIFIED time, and never mutated.
type FrozenSnapshot struct {
	FieldID     int
	WeightHash  string
	ECE         float64
	Precision   float64
	FPR         float64
	FeatureDims int
	FrozenAt    time.Time
}

// MergeCandidate is the ephemeral comparison input for a proposed merge.
// Never persisted unless approved.
type MergeCandidate struct {
	WeightHash  string
	Precision   float64
	FPR         float64
	ECE         float64
	FeatureDims int
}

// CheckResult records one of the four merge-safety checks.
type CheckResult struct {
	Name   string
	Pass   bool
	Detail string
}

// Validation is the outcome of validating a candidate against a frozen
// baseline. On rejection RollbackTo carries the unmodified snapshot the
// caller must return to.
type Validation struct {
	Allowed    bool
	Checks     []CheckResult
	Reason     string
	RollbackTo *FrozenSnapshot
}

// #endregion types

// #region config
// Drift bounds applied during merge validation.
const (
	MaxECEDrift       = 0.015
	MaxPrecisionDrift = 0.02
	MaxFPRDrift       = 0.02
)

// MaxSnapshots is the hard cap on tracked baselines, matching the ledger
// field cap.
const MaxSnapshots = 64

// #endregion config

// #region guard
// Guard owns the frozen baselines. Freezing is once per field id; the
// stored snapshot never changes afterward.
type Guard struct {
	mu        sync.Mutex
	snapshots map[int]FrozenSnapshot
}

// NewGuard returns a guard with no frozen fields.
func NewGuard() *Guard {
	return &Guard{snapshots: make(map[int]FrozenSnapshot)}
}

// #endregion guard

// #region freeze
// Freeze captures the baseline for a field. Returns false if the field is
// already frozen or the snapshot cap is reached.
func (g *Guard) Freeze(fieldID int, weightHash string, ece, precision, fpr float64, featureDims int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.snapshots[fieldID]; exists {
		return false
	}
	if len(g.snapshots) >= MaxSnapshots {
		return false
	}

	g.snapshots[fieldID] = FrozenSnapshot{
		FieldID:     fieldID,
		WeightHash:  weightHash,
		ECE:         ece,
		Precision:   precision,
		FPR:         fpr,
		FeatureDims: featureDims,
		FrozenAt:    time.Now().UTC(),
	}
	return true
}

// Snapshot returns the frozen baseline for a field, if any.
func (g *Guard) Snapshot(fieldID int) (FrozenSnapshot, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	snap, ok := g.snapshots[fieldID]
	return snap, ok
}

// #endregion freeze

// #region validate-merge
// ValidateMerge runs the four independent merge-safety checks for a
// candidate against the field's frozen baseline: weight-hash equality,
// calibration drift, precision/FPR drift, and exact feature
// dimensionality. All four must pass; otherwise the caller is pointed
// back at the unmodified snapshot.
func (g *Guard) ValidateMerge(fieldID int, cand MergeCandidate) Validation {
	g.mu.Lock()
	snap, ok := g.snapshots[fieldID]
	g.mu.Unlock()

	if !ok {
		return Validation{
			Reason: fmt.Sprintf("field %d has no frozen baseline; merges require a freeze first", fieldID),
		}
	}

	checks := []CheckResult{
		hashCheck(snap, cand),
		calibrationCheck(snap, cand),
		driftCheck(snap, cand),
		dimsCheck(snap, cand),
	}

	for _, c := range checks {
		if !c.Pass {
			rollback := snap
			return Validation{
				Checks:     checks,
				Reason:     fmt.Sprintf("merge rejected: %s", c.Detail),
				RollbackTo: &rollback,
			}
		}
	}

	return Validation{
		Allowed: true,
		Checks:  checks,
		Reason:  fmt.Sprintf("candidate matches frozen baseline for field %d", fieldID),
	}
}

func hashCheck(snap FrozenSnapshot, cand MergeCandidate) CheckResult {
	if cand.WeightHash != snap.WeightHash {
		return CheckResult{
			Name:   "weight_hash",
			Detail: fmt.Sprintf("weight hash %s does not re-derive frozen %s", cand.WeightHash, snap.WeightHash),
		}
	}
	return CheckResult{Name: "weight_hash", Pass: true, Detail: "weight hash re-derived"}
}

func calibrationCheck(snap FrozenSnapshot, cand MergeCandidate) CheckResult {
	drift := math.Abs(cand.ECE - snap.ECE)
	if drift > MaxECEDrift {
		return CheckResult{
			Name:   "calibration",
			Detail: fmt.Sprintf("ece drift %.4f exceeds %.4f", drift, MaxECEDrift),
		}
	}
	return CheckResult{Name: "calibration", Pass: true, Detail: fmt.Sprintf("ece drift %.4f", drift)}
}

func driftCheck(snap FrozenSnapshot, cand MergeCandidate) CheckResult {
	pDrift := math.Abs(cand.Precision - snap.Precision)
	fDrift := math.Abs(cand.FPR - snap.FPR)
	if pDrift > MaxPrecisionDrift || fDrift > MaxFPRDrift {
		return CheckResult{
			Name:   "precision_fpr",
			Detail: fmt.Sprintf("precision drift %.4f / fpr drift %.4f exceed %.4f", pDrift, fDrift, MaxPrecisionDrift),
		}
	}
	return CheckResult{Name: "precision_fpr", Pass: true, Detail: fmt.Sprintf("precision drift %.4f, fpr drift %.4f", pDrift, fDrift)}
}

func dimsCheck(snap FrozenSnapshot, cand MergeCandidate) CheckResult {
	// Dimension changes are never permitted post-freeze.
	if cand.FeatureDims != snap.FeatureDims {
		return CheckResult{
			Name:   "feature_dims",
			Detail: fmt.Sprintf("feature dims %d differ from frozen %d", cand.FeatureDims, snap.FeatureDims),
		}
	}
	return CheckResult{Name: "feature_dims", Pass: true, Detail: fmt.Sprintf("feature dims %d identical", snap.FeatureDims)}
}

// #endregion validate-merge
