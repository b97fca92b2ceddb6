package replay

import (
	"github.com/danielpatrickdp/field-governor/internal/certgate"
	"github.com/danielpatrickdp/field-governor/internal/progression"
)

// #region types
// Attempt is a single recorded certification attempt: the exact metric
// feed, stability count, and approval flag as seen at decision time.
type Attempt struct {
	AttemptID     string
	FieldID       int
	Category      certgate.Category
	Precision     float64
	FPR           float64
	DupDetection  float64
	ECE           float64
	StabilityDays int
	HumanApproved bool
	TotalFields   int
}

// Result captures the outcome of replaying one attempt through the gate
// and progression pipeline.
type Result struct {
	AttemptID   string
	Cert        certgate.CertResult
	Progression progression.Decision
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalAttempts int
	Certified     int
	Rejected      int
	ByStatus      map[progression.Status]int
}

// #endregion types

// #region replay
// Replay re-evaluates each attempt through certgate and progression.
// Both stages are pure, so replaying the recorded inputs must reproduce
// the recorded decisions bit for bit; a divergence means the audit trail
// and the code no longer agree.
func Replay(attempts []Attempt) []Result {
	results := make([]Result, 0, len(attempts))

	for _, a := range attempts {
		cert := certgate.Evaluate(certgate.ThresholdsFor(a.Category), certgate.Inputs{
			Precision:     a.Precision,
			FPR:           a.FPR,
			DupDetection:  a.DupDetection,
			ECE:           a.ECE,
			StabilityDays: a.StabilityDays,
			HumanApproved: a.HumanApproved,
		})

		prog := progression.Decide(progression.Input{
			FieldID:       a.FieldID,
			Certified:     cert.AllPass,
			StabilityDays: a.StabilityDays,
			HumanOK:       a.HumanApproved,
			TotalFields:   a.TotalFields,
		})

		results = append(results, Result{
			AttemptID:   a.AttemptID,
			Cert:        cert,
			Progression: prog,
		})
	}
	return results
}

// Summarize aggregates a replay run.
func Summarize(results []Result) Summary {
	s := Summary{
		TotalAttempts: len(results),
		ByStatus:      make(map[progression.Status]int),
	}
	for _, r := range results {
		if r.Cert.AllPass {
			s.Certified++
		} else {
			s.Rejected++
		}
		s.ByStatus[r.Progression.Status]++
	}
	return s
}

// #endregion replay
