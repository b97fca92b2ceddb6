package ledger

import "github.com/danielpatrickdp/field-governor/internal/certgate"

// #region states
// State is a field's lifecycle position. Ordinals are fixed: a transition
// is legal only to the immediately following ordinal.
type State int

const (
	StateNotStarted State = iota
	StateTraining
	StateStabilityCheck
	StateCertificationPending
	StateCertified
	StateFrozen
	StateNextField // terminal
)

var stateNames = [...]string{
	"NOT_STARTED",
	"TRAINING",
	"STABILITY_CHECK",
	"CERTIFICATION_PENDING",
	"CERTIFIED",
	"FROZEN",
	"NEXT_FIELD",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// #endregion states

// #region codes
// Result codes for ledger transitions.
const (
	CodeOK                = "OK"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeFieldOverlap      = "FIELD_OVERLAP"
	CodeStabilityGate     = "STABILITY_GATE"
	CodeHumanApproval     = "HUMAN_APPROVAL_REQUIRED"
	CodeFieldOutOfRange   = "FIELD_OUT_OF_RANGE"
)

// #endregion codes

// #region metrics
// Metrics is the evaluation snapshot fed in by the external pipeline.
type Metrics struct {
	Precision    float64
	FPR          float64
	DupDetection float64
	ECE          float64
}

// #endregion metrics

// #region descriptor
// FieldDescriptor is one capability domain tracked by the ledger. Owned
// exclusively by the ledger; mutated only through validated calls; never
// deleted.
type FieldDescriptor struct {
	ID              int
	Name            string
	Category        certgate.Category
	State           State
	Metrics         Metrics
	StabilityDays   int
	EpochsCompleted int
	HumanApproved   bool
	Fingerprint     string
}

// #endregion descriptor

// #region result
// TransitionResult reports one transition attempt. No path silently
// succeeds or degrades; Reason is always populated.
type TransitionResult struct {
	Allowed     bool
	Code        string
	Reason      string
	From        State
	To          State
	Fingerprint string
}

// #endregion result
