package ladder

import (
	"fmt"
	"sync"

	"github.com/danielpatrickdp/field-governor/internal/certgate"
)

// #region ladder
// noActive marks the empty active slot.
const noActive = -1

// Ladder is the fixed ordered curriculum. The two masters start unlocked
// (trainable in either order); the extended fields unlock strictly in
// index order once both masters certify. Unlocking is monotonic: a field
// once unlocked never re-locks.
type Ladder struct {
	mu     sync.Mutex
	fields []Field
	active int
}

// NewLadder builds the ladder from the default curriculum with no field
// active yet.
func NewLadder() *Ladder {
	entries := DefaultCurriculum()
	fields := make([]Field, len(entries))
	for i, e := range entries {
		fields[i] = Field{
			ID:       i,
			Name:     e.Name,
			Category: e.Category,
			Master:   i < MasterFields,
			Locked:   i >= MasterFields,
		}
	}
	return &Ladder{fields: fields, active: noActive}
}

// #endregion ladder

// #region activate
// Activate marks one unlocked field as the single active field. Used by
// the orchestrator to choose which master begins; thereafter
// TryUnlockNext moves the slot itself.
func (l *Ladder) Activate(id int) UnlockResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	if id < 0 || id >= len(l.fields) {
		return UnlockResult{Code: CodeFieldOutOfRange, Reason: fmt.Sprintf("field %d out of range", id)}
	}
	f := &l.fields[id]
	if f.Locked {
		if !f.Master && !l.mastersCertifiedLocked() {
			return UnlockResult{Code: CodeMasterGate, Reason: "extended curriculum locked until both master fields certify"}
		}
		return UnlockResult{Code: CodeLocked, Reason: fmt.Sprintf("field %d (%s) is locked", id, f.Name)}
	}
	if l.active != noActive && l.active != id {
		return UnlockResult{Code: CodeAlreadyActive, Reason: fmt.Sprintf("field %d is already active", l.active)}
	}

	f.Active = true
	l.active = id
	return UnlockResult{Allowed: true, Code: CodeOK, NextFieldID: id, Reason: fmt.Sprintf("field %d (%s) active", id, f.Name)}
}

// #endregion activate

// #region unlock
// TryUnlockNext advances the curriculum past the given field: the field
// must be active, certified, and stable. Exactly one new field is
// activated per successful call; the prior field is deactivated. After
// the last field the ladder reports ALL_FIELDS_COMPLETE.
func (l *Ladder) TryUnlockNext(currentID int) UnlockResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	if currentID < 0 || currentID >= len(l.fields) {
		return UnlockResult{Code: CodeFieldOutOfRange, Reason: fmt.Sprintf("field %d out of range", currentID)}
	}
	if currentID != l.active {
		return UnlockResult{Code: CodeOutOfOrder, Reason: fmt.Sprintf("field %d is not the active field", currentID)}
	}

	cur := &l.fields[currentID]
	if !cur.Certified {
		return UnlockResult{Code: CodeNotCertified, Reason: fmt.Sprintf("field %d (%s) not certified", currentID, cur.Name)}
	}
	if cur.StabilityDays < certgate.MinStabilityDays {
		return UnlockResult{
			Code:   CodeStabilityGate,
			Reason: fmt.Sprintf("field %d has %d/%d stability days", currentID, cur.StabilityDays, certgate.MinStabilityDays),
		}
	}

	next := l.nextFieldLocked(currentID)
	if next == noActive {
		cur.Active = false
		l.active = noActive
		return UnlockResult{Code: CodeAllFieldsComplete, Reason: "all 23 fields certified, curriculum exhausted"}
	}

	cur.Active = false
	nf := &l.fields[next]
	nf.Locked = false
	nf.Active = true
	l.active = next

	return UnlockResult{
		Allowed:     true,
		Code:        CodeOK,
		NextFieldID: next,
		Reason:      fmt.Sprintf("field %d (%s) unlocked and active", next, nf.Name),
	}
}

// nextFieldLocked picks the successor under the master-first rule. Caller
// holds the mutex.
func (l *Ladder) nextFieldLocked(currentID int) int {
	if currentID < MasterFields {
		other := 1 - currentID
		if !l.fields[other].Certified {
			return other
		}
	}
	if !l.mastersCertifiedLocked() {
		// A master remains uncertified; the extended curriculum stays shut.
		for i := 0; i < MasterFields; i++ {
			if !l.fields[i].Certified {
				return i
			}
		}
	}
	for i := MasterFields; i < len(l.fields); i++ {
		if l.fields[i].Locked {
			return i
		}
	}
	return noActive
}

func (l *Ladder) mastersCertifiedLocked() bool {
	for i := 0; i < MasterFields; i++ {
		if !l.fields[i].Certified {
			return false
		}
	}
	return true
}

// #endregion unlock

// #region collaborator-inputs
// MarkCertified records a certification verdict for a field.
func (l *Ladder) MarkCertified(id int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id < 0 || id >= len(l.fields) {
		return fmt.Errorf("field %d out of range", id)
	}
	l.fields[id].Certified = true
	return nil
}

// RecordMetrics stores the latest evaluation metrics for a field.
func (l *Ladder) RecordMetrics(id int, precision, fpr, dup, ece float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id < 0 || id >= len(l.fields) {
		return fmt.Errorf("field %d out of range", id)
	}
	f := &l.fields[id]
	f.Precision, f.FPR, f.Dup, f.ECE = precision, fpr, dup, ece
	return nil
}

// RecordStability stores the consecutive-day count for a field.
func (l *Ladder) RecordStability(id, days int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id < 0 || id >= len(l.fields) {
		return fmt.Errorf("field %d out of range", id)
	}
	if days < 0 {
		return fmt.Errorf("stability days must be non-negative, got %d", days)
	}
	l.fields[id].StabilityDays = days
	return nil
}

// #endregion collaborator-inputs

// #region readers
// Active returns the active field index, or -1.
func (l *Ladder) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// CertifiedCount returns how many fields have certified.
func (l *Ladder) CertifiedCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, f := range l.fields {
		if f.Certified {
			n++
		}
	}
	return n
}

// Field returns a copy of one rung.
func (l *Ladder) Field(id int) (Field, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id < 0 || id >= len(l.fields) {
		return Field{}, fmt.Errorf("field %d out of range", id)
	}
	return l.fields[id], nil
}

// Fields returns a copy of the whole curriculum.
func (l *Ladder) Fields() []Field {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Field, len(l.fields))
	copy(out, l.fields)
	return out
}

// #endregion readers
