package ledger

import (
	"fmt"

	"github.com/danielpatrickdp/field-governor/internal/certgate"
	"github.com/danielpatrickdp/field-governor/internal/fsatomic"
)

// #region file-shape
type ledgerFile struct {
	FieldCount  int         `json:"field_count"`
	ActiveField int         `json:"active_field"`
	Fields      []fieldFile `json:"fields"`
}

type fieldFile struct {
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	State         int     `json:"state"`
	Precision     float64 `json:"precision"`
	FPR           float64 `json:"fpr"`
	Dup           float64 `json:"dup"`
	ECE           float64 `json:"ece"`
	StabilityDays int     `json:"stability_days"`
	HumanApproved bool    `json:"human_approved"`
}

// #endregion file-shape

// #region save
// Save serializes the full ledger through the atomic rename discipline.
// In-memory state is not durable until this returns nil; on error the
// caller retries the whole write.
func (l *Ledger) Save(path string) error {
	l.mu.Lock()
	file := ledgerFile{
		FieldCount:  len(l.fields),
		ActiveField: l.active,
		Fields:      make([]fieldFile, len(l.fields)),
	}
	for i, f := range l.fields {
		file.Fields[i] = fieldFile{
			Name:          f.Name,
			Category:      string(f.Category),
			State:         int(f.State),
			Precision:     f.Metrics.Precision,
			FPR:           f.Metrics.FPR,
			Dup:           f.Metrics.DupDetection,
			ECE:           f.Metrics.ECE,
			StabilityDays: f.StabilityDays,
			HumanApproved: f.HumanApproved,
		}
	}
	l.mu.Unlock()

	return fsatomic.SaveJSON(path, file)
}

// #endregion save

// #region load
// Load reads a ledger file written by Save. Fingerprints are derived
// state and are recomputed rather than persisted.
func Load(path string) (*Ledger, error) {
	var file ledgerFile
	if err := fsatomic.LoadJSON(path, &file); err != nil {
		return nil, err
	}
	if file.FieldCount != len(file.Fields) {
		return nil, fmt.Errorf("ledger file corrupt: field_count %d but %d fields", file.FieldCount, len(file.Fields))
	}
	if file.FieldCount > MaxFields {
		return nil, fmt.Errorf("ledger file holds %d fields, cap is %d", file.FieldCount, MaxFields)
	}

	l := NewLedger()
	l.active = file.ActiveField
	l.fields = make([]FieldDescriptor, len(file.Fields))
	for i, ff := range file.Fields {
		if ff.State < int(StateNotStarted) || ff.State > int(StateNextField) {
			return nil, fmt.Errorf("field %d has unknown state ordinal %d", i, ff.State)
		}
		f := FieldDescriptor{
			ID:       i,
			Name:     ff.Name,
			Category: certgate.Category(ff.Category),
			State:    State(ff.State),
			Metrics: Metrics{
				Precision:    ff.Precision,
				FPR:          ff.FPR,
				DupDetection: ff.Dup,
				ECE:          ff.ECE,
			},
			StabilityDays: ff.StabilityDays,
			HumanApproved: ff.HumanApproved,
		}
		f.Fingerprint = fingerprint(f)
		l.fields[i] = f
	}
	if l.active < -1 || l.active >= len(l.fields) {
		return nil, fmt.Errorf("ledger file corrupt: active field %d out of range", l.active)
	}
	return l, nil
}

// #endregion load
