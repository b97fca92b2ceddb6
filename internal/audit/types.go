package audit

import "time"

// #region integrity-row
// IntegrityRow is one row in the integrity_events table: a status or mode
// change in the supervisor, with the sealed digest over its payload.
type IntegrityRow struct {
	EventID    string
	PrevScore  float64
	NewScore   float64
	PrevStatus string
	NewStatus  string
	Mode       string
	Digest     string
	CreatedAt  time.Time
}

// #endregion integrity-row

// #region containment-row
// ContainmentRow records a forced demotion to human-only operation.
type ContainmentRow struct {
	EventID   string
	Trigger   string
	Reason    string
	CreatedAt time.Time
}

// #endregion containment-row

// #region approval-row
// ApprovalRow records a human approval for one field. The approver
// identity and reason are opaque to the governance core beyond presence.
type ApprovalRow struct {
	EventID   string
	FieldID   int
	FieldName string
	Approver  string
	Reason    string
	CreatedAt time.Time
}

// #endregion approval-row

// #region violation-row
// ViolationRow records a rejected training batch.
type ViolationRow struct {
	ActiveField string
	Code        string
	Reason      string
	BatchSize   int
	CreatedAt   time.Time
}

// #endregion violation-row

// #region attempt-row
// AttemptRow is one certification attempt as recorded at decision time.
// The inputs are stored verbatim so the decision can be replayed later.
type AttemptRow struct {
	AttemptID     string
	FieldID       int
	Category      string
	Precision     float64
	FPR           float64
	DupDetection  float64
	ECE           float64
	StabilityDays int
	HumanApproved bool
	TotalFields   int
	AllPass       bool
	GatesPassed   int
	Status        string
	CreatedAt     time.Time
}

// #endregion attempt-row
