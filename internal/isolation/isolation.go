package isolation

import (
	"fmt"
	"sync/atomic"

	"github.com/danielpatrickdp/field-governor/internal/certgate"
)

// #region types
// BatchTag labels one training sample's provenance as supplied by the
// data-loading layer. The guard trusts the tag, not the sample contents.
type BatchTag struct {
	FieldName string
	Category  certgate.Category
	IsGeneric bool
}

// Violation codes attached to rejected batches.
const (
	CodeCrossField  = "CROSS_FIELD_BLOCKED"
	CodeCompanyData = "COMPANY_DATA_BLOCKED"
)

// PurityResult is the all-or-nothing verdict for one proposed batch.
type PurityResult struct {
	Pure          bool
	Code          string
	Reason        string
	RejectedIndex int // index of the first impure sample, -1 when pure
	BatchSize     int
}

// #endregion types

// #region guard
// Guard vets every proposed training batch against the single active
// field. The purity check itself is stateless; the guard only accumulates
// a violation counter for monitoring.
type Guard struct {
	violations atomic.Int64
}

// NewGuard returns a guard with a zeroed violation counter.
func NewGuard() *Guard {
	return &Guard{}
}

// Violations returns the number of rejected batches since construction.
func (g *Guard) Violations() int64 {
	return g.violations.Load()
}

// #endregion guard

// #region verify
// VerifyBatchPurity checks every tag in the batch against the active
// field. Any single impure sample fails the entire batch: samples must
// name the active field exactly and must come from a generic corpus.
// Company-specific data is rejected unconditionally. Rejected batches are
// reported, never mutated.
func (g *Guard) VerifyBatchPurity(activeField string, batch []BatchTag) PurityResult {
	for i, tag := range batch {
		if !tag.IsGeneric {
			return g.reject(PurityResult{
				Code:          CodeCompanyData,
				Reason:        fmt.Sprintf("sample %d is not from a generic corpus", i),
				RejectedIndex: i,
				BatchSize:     len(batch),
			})
		}
		if tag.FieldName != activeField {
			return g.reject(PurityResult{
				Code:          CodeCrossField,
				Reason:        fmt.Sprintf("sample %d tagged %q but active field is %q", i, tag.FieldName, activeField),
				RejectedIndex: i,
				BatchSize:     len(batch),
			})
		}
	}

	return PurityResult{
		Pure:          true,
		Reason:        fmt.Sprintf("all %d samples generic and scoped to %q", len(batch), activeField),
		RejectedIndex: -1,
		BatchSize:     len(batch),
	}
}

func (g *Guard) reject(res PurityResult) PurityResult {
	g.violations.Add(1)
	return res
}

// #endregion verify
