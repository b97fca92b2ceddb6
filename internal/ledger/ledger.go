package ledger

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/field-governor/internal/audit"
	"github.com/danielpatrickdp/field-governor/internal/certgate"
)

// #region ledger
// MaxFields is the hard cap on registered fields. The list grows on
// demand but registration past the cap is an explicit error, never a
// silent truncation.
const MaxFields = 64

// noActive marks the empty global active slot.
const noActive = -1

// Ledger is the per-field lifecycle state machine. One instance per
// process, constructed by the orchestrator and passed by handle; all
// mutations run under a single mutex.
type Ledger struct {
	mu     sync.Mutex
	fields []FieldDescriptor
	active int
	trail  *audit.Store // optional, approvals are mirrored when attached
}

// NewLedger returns an empty ledger with no active field.
func NewLedger() *Ledger {
	return &Ledger{active: noActive}
}

// AttachAudit mirrors approval events into the given audit store.
func (l *Ledger) AttachAudit(trail *audit.Store) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trail = trail
}

// #endregion ledger

// #region register
// RegisterField appends a new field in NOT_STARTED. Fails once MaxFields
// is reached.
func (l *Ledger) RegisterField(name string, cat certgate.Category) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.fields) >= MaxFields {
		return 0, fmt.Errorf("ledger full: %d fields registered, cap is %d", len(l.fields), MaxFields)
	}

	f := FieldDescriptor{
		ID:       len(l.fields),
		Name:     name,
		Category: cat,
		State:    StateNotStarted,
	}
	f.Fingerprint = fingerprint(f)
	l.fields = append(l.fields, f)
	return f.ID, nil
}

// #endregion register

// #region transition
// Transition attempts to move field idx to target. The only legal target
// is the current state's immediate successor; TRAINING additionally
// requires the global active slot be free, CERTIFICATION_PENDING requires
// the stability gate, CERTIFIED requires recorded human approval. Every
// successful transition recomputes the field's fingerprint.
func (l *Ledger) Transition(idx int, target State) TransitionResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	if idx < 0 || idx >= len(l.fields) {
		return TransitionResult{
			Code:   CodeFieldOutOfRange,
			Reason: fmt.Sprintf("field index %d out of range [0,%d)", idx, len(l.fields)),
		}
	}

	f := &l.fields[idx]
	res := TransitionResult{From: f.State, To: target}

	if target != f.State+1 || f.State == StateNextField {
		res.Code = CodeInvalidTransition
		if f.State == StateNextField {
			res.Reason = fmt.Sprintf("field %d is %s, which is terminal", idx, f.State)
		} else {
			res.Reason = fmt.Sprintf("field %d is %s; only %s is reachable, not %s",
				idx, f.State, f.State+1, target)
		}
		return res
	}

	switch target {
	case StateTraining:
		if l.active != noActive && l.active != idx {
			res.Code = CodeFieldOverlap
			res.Reason = fmt.Sprintf("field %d already holds the active slot", l.active)
			return res
		}
	case StateCertificationPending:
		if f.StabilityDays < certgate.MinStabilityDays {
			res.Code = CodeStabilityGate
			res.Reason = fmt.Sprintf("field %d has %d/%d stability days", idx, f.StabilityDays, certgate.MinStabilityDays)
			return res
		}
	case StateCertified:
		if !f.HumanApproved {
			res.Code = CodeHumanApproval
			res.Reason = fmt.Sprintf("field %d awaits human approval", idx)
			return res
		}
	}

	f.State = target
	f.Fingerprint = fingerprint(*f)

	if target == StateTraining {
		l.active = idx
	}
	if target == StateNextField && l.active == idx {
		l.active = noActive
	}

	res.Allowed = true
	res.Code = CodeOK
	res.Reason = fmt.Sprintf("field %d: %s -> %s", idx, res.From, target)
	res.Fingerprint = f.Fingerprint
	return res
}

// #endregion transition

// #region collaborator-inputs
// RecordMetrics stores the latest evaluation snapshot for a field.
func (l *Ledger) RecordMetrics(idx int, m Metrics) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if idx < 0 || idx >= len(l.fields) {
		return fmt.Errorf("field index %d out of range", idx)
	}
	l.fields[idx].Metrics = m
	return nil
}

// RecordStability stores the consecutive-day count for a field.
func (l *Ledger) RecordStability(idx, days int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if idx < 0 || idx >= len(l.fields) {
		return fmt.Errorf("field index %d out of range", idx)
	}
	if days < 0 {
		return fmt.Errorf("stability days must be non-negative, got %d", days)
	}
	l.fields[idx].StabilityDays = days
	return nil
}

// RecordEpoch increments a field's completed-epoch counter.
func (l *Ledger) RecordEpoch(idx int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if idx < 0 || idx >= len(l.fields) {
		return fmt.Errorf("field index %d out of range", idx)
	}
	l.fields[idx].EpochsCompleted++
	return nil
}

// Approve records a human approval for a field. The approver identity and
// reason are opaque here; only presence gates certification. Returns the
// approval event id.
func (l *Ledger) Approve(idx int, approver, reason string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if idx < 0 || idx >= len(l.fields) {
		return "", fmt.Errorf("field index %d out of range", idx)
	}
	if approver == "" {
		return "", fmt.Errorf("approver identity required")
	}

	f := &l.fields[idx]
	f.HumanApproved = true

	eventID := uuid.New().String()
	if l.trail != nil {
		err := l.trail.AppendApproval(audit.ApprovalRow{
			EventID:   eventID,
			FieldID:   f.ID,
			FieldName: f.Name,
			Approver:  approver,
			Reason:    reason,
		})
		if err != nil {
			return "", fmt.Errorf("record approval: %w", err)
		}
	}
	return eventID, nil
}

// #endregion collaborator-inputs

// #region readers
// Field returns a copy of one descriptor.
func (l *Ledger) Field(idx int) (FieldDescriptor, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if idx < 0 || idx >= len(l.fields) {
		return FieldDescriptor{}, fmt.Errorf("field index %d out of range", idx)
	}
	return l.fields[idx], nil
}

// Fields returns a copy of every descriptor.
func (l *Ledger) Fields() []FieldDescriptor {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]FieldDescriptor, len(l.fields))
	copy(out, l.fields)
	return out
}

// ActiveField returns the index holding the active slot, or -1.
func (l *Ledger) ActiveField() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// #endregion readers
