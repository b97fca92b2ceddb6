package progression

import (
	"fmt"

	"github.com/danielpatrickdp/field-governor/internal/certgate"
)

// #region types
// Status enumerates the progression verdicts for one field.
type Status string

const (
	StatusTrainingActive   Status = "TRAINING_ACTIVE"
	StatusAwaitingStability Status = "AWAITING_STABILITY"
	StatusCertifiedStable  Status = "CERTIFIED_STABLE"
	StatusTransitioning    Status = "TRANSITIONING"
	StatusAllComplete      Status = "ALL_COMPLETE"
)

// Input carries everything a progression decision depends on. Supplied by
// the orchestrator; this package holds no state of its own.
type Input struct {
	FieldID       int
	Certified     bool
	StabilityDays int
	HumanOK       bool
	TotalFields   int
}

// Decision is the verdict plus, when transitioning, the next field to
// unlock. Progression never skips an index.
type Decision struct {
	Status      Status
	NextFieldID int // valid only when Status == TRANSITIONING
	Reason      string
}

// #endregion types

// #region decide
// Decide evaluates whether a field may hand off to its successor. Time
// alone never advances a field: certification and stability must both
// hold before elapsed days matter, and human sign-off is the final gate.
func Decide(in Input) Decision {
	if !in.Certified {
		return Decision{
			Status: StatusTrainingActive,
			Reason: fmt.Sprintf("field %d not certified, training continues", in.FieldID),
		}
	}
	if in.StabilityDays < certgate.MinStabilityDays {
		return Decision{
			Status: StatusAwaitingStability,
			Reason: fmt.Sprintf("field %d certified but only %d/%d stability days", in.FieldID, in.StabilityDays, certgate.MinStabilityDays),
		}
	}
	if !in.HumanOK {
		return Decision{
			Status: StatusCertifiedStable,
			Reason: fmt.Sprintf("field %d certified and stable, blocked on human sign-off", in.FieldID),
		}
	}
	if in.FieldID+1 >= in.TotalFields {
		return Decision{
			Status: StatusAllComplete,
			Reason: fmt.Sprintf("field %d was the last of %d", in.FieldID, in.TotalFields),
		}
	}
	return Decision{
		Status:      StatusTransitioning,
		NextFieldID: in.FieldID + 1,
		Reason:      fmt.Sprintf("field %d complete, next field %d", in.FieldID, in.FieldID+1),
	}
}

// #endregion decide
