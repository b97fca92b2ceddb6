package ladder

import (
	"fmt"

	"github.com/danielpatrickdp/field-governor/internal/certgate"
	"github.com/danielpatrickdp/field-governor/internal/fsatomic"
)

// #region file-shape
type ladderFile struct {
	Active         int         `json:"active"`
	CertifiedCount int         `json:"certified_count"`
	Total          int         `json:"total"`
	Fields         []fieldFile `json:"fields"`
}

type fieldFile struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Master        bool    `json:"master"`
	Certified     bool    `json:"certified"`
	Active        bool    `json:"active"`
	Locked        bool    `json:"locked"`
	Precision     float64 `json:"precision"`
	FPR           float64 `json:"fpr"`
	Dup           float64 `json:"dup"`
	ECE           float64 `json:"ece"`
	StabilityDays int     `json:"stability_days"`
}

// #endregion file-shape

// #region save
// Save serializes the ladder through the atomic rename discipline.
func (l *Ladder) Save(path string) error {
	l.mu.Lock()
	file := ladderFile{
		Active: l.active,
		Total:  len(l.fields),
		Fields: make([]fieldFile, len(l.fields)),
	}
	for i, f := range l.fields {
		if f.Certified {
			file.CertifiedCount++
		}
		file.Fields[i] = fieldFile{
			ID:            f.ID,
			Name:          f.Name,
			Category:      string(f.Category),
			Master:        f.Master,
			Certified:     f.Certified,
			Active:        f.Active,
			Locked:        f.Locked,
			Precision:     f.Precision,
			FPR:           f.FPR,
			Dup:           f.Dup,
			ECE:           f.ECE,
			StabilityDays: f.StabilityDays,
		}
	}
	l.mu.Unlock()

	return fsatomic.SaveJSON(path, file)
}

// #endregion save

// #region load
// Load restores a ladder written by Save.
func Load(path string) (*Ladder, error) {
	var file ladderFile
	if err := fsatomic.LoadJSON(path, &file); err != nil {
		return nil, err
	}
	if file.Total != len(file.Fields) || file.Total != TotalFields {
		return nil, fmt.Errorf("ladder file corrupt: total %d, fields %d, expected %d", file.Total, len(file.Fields), TotalFields)
	}
	if file.Active < noActive || file.Active >= file.Total {
		return nil, fmt.Errorf("ladder file corrupt: active %d out of range", file.Active)
	}

	l := &Ladder{active: file.Active, fields: make([]Field, len(file.Fields))}
	activeSeen := 0
	for i, ff := range file.Fields {
		if ff.ID != i {
			return nil, fmt.Errorf("ladder file corrupt: field %d carries id %d", i, ff.ID)
		}
		if ff.Active {
			activeSeen++
		}
		l.fields[i] = Field{
			ID:            ff.ID,
			Name:          ff.Name,
			Category:      certgate.Category(ff.Category),
			Master:        ff.Master,
			Certified:     ff.Certified,
			Active:        ff.Active,
			Locked:        ff.Locked,
			Precision:     ff.Precision,
			FPR:           ff.FPR,
			Dup:           ff.Dup,
			ECE:           ff.ECE,
			StabilityDays: ff.StabilityDays,
		}
	}
	if activeSeen > 1 {
		return nil, fmt.Errorf("ladder file corrupt: %d fields active, at most one allowed", activeSeen)
	}
	return l, nil
}

// #endregion load
