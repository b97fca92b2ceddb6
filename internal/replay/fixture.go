package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/field-governor/internal/certgate"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a certification replay
// fixture.
type Fixture struct {
	Description string            `json:"description"`
	Attempts    []FixtureAttempt  `json:"attempts"`
	Expected    []FixtureExpected `json:"expected_results"`
}

// FixtureAttempt mirrors Attempt with JSON tags.
type FixtureAttempt struct {
	AttemptID     string  `json:"attempt_id"`
	FieldID       int     `json:"field_id"`
	Category      string  `json:"category"`
	Precision     float64 `json:"precision"`
	FPR           float64 `json:"fpr"`
	DupDetection  float64 `json:"dup_detection"`
	ECE           float64 `json:"ece"`
	StabilityDays int     `json:"stability_days"`
	HumanApproved bool    `json:"human_approved"`
	TotalFields   int     `json:"total_fields"`
}

// FixtureExpected captures the expected decision per attempt.
type FixtureExpected struct {
	AttemptID   string `json:"attempt_id"`
	AllPass     bool   `json:"all_pass"`
	GatesPassed int    `json:"gates_passed"`
	Status      string `json:"status"`
}

// Divergence reports one attempt whose replay no longer matches the
// recorded expectation.
type Divergence struct {
	AttemptID string
	Want      FixtureExpected
	Got       Result
}

// #endregion fixture-types

// #region load-save

// LoadFixture reads and parses a fixture JSON file.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	if len(f.Attempts) == 0 {
		return Fixture{}, fmt.Errorf("fixture has no attempts")
	}
	return f, nil
}

// SaveFixture writes a fixture as indented JSON.
func SaveFixture(path string, f Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	return nil
}

// #endregion load-save

// #region run

// Attempts converts the fixture's JSON attempts to replay inputs.
func (f Fixture) ReplayAttempts() []Attempt {
	out := make([]Attempt, len(f.Attempts))
	for i, fa := range f.Attempts {
		out[i] = Attempt{
			AttemptID:     fa.AttemptID,
			FieldID:       fa.FieldID,
			Category:      certgate.Category(fa.Category),
			Precision:     fa.Precision,
			FPR:           fa.FPR,
			DupDetection:  fa.DupDetection,
			ECE:           fa.ECE,
			StabilityDays: fa.StabilityDays,
			HumanApproved: fa.HumanApproved,
			TotalFields:   fa.TotalFields,
		}
	}
	return out
}

// Verify replays the fixture and compares against its expected results.
func Verify(f Fixture) ([]Divergence, error) {
	expected := make(map[string]FixtureExpected, len(f.Expected))
	for _, e := range f.Expected {
		expected[e.AttemptID] = e
	}

	results := Replay(f.ReplayAttempts())

	var divergences []Divergence
	for _, r := range results {
		want, ok := expected[r.AttemptID]
		if !ok {
			return nil, fmt.Errorf("fixture has no expectation for attempt %s", r.AttemptID)
		}
		if want.AllPass != r.Cert.AllPass ||
			want.GatesPassed != r.Cert.GatesPassed ||
			want.Status != string(r.Progression.Status) {
			divergences = append(divergences, Divergence{
				AttemptID: r.AttemptID,
				Want:      want,
				Got:       r,
			})
		}
	}
	return divergences, nil
}

// #endregion run
