package supervisor

import "time"

// #region subsystems
// Subsystem identifies one externally-monitored integrity signal source.
type Subsystem string

const (
	SubsystemML         Subsystem = "ml"
	SubsystemDataset    Subsystem = "dataset"
	SubsystemStorage    Subsystem = "storage"
	SubsystemResource   Subsystem = "resource"
	SubsystemLog        Subsystem = "log"
	SubsystemGovernance Subsystem = "governance"
)

// Weights sum to 1.0; the overall score is the weighted sum of the six
// subsystem scores.
var Weights = map[Subsystem]float64{
	SubsystemML:         0.25,
	SubsystemDataset:    0.20,
	SubsystemStorage:    0.15,
	SubsystemResource:   0.15,
	SubsystemLog:        0.10,
	SubsystemGovernance: 0.15,
}

// #endregion subsystems

// #region status
// Status is the traffic-light view of overall integrity.
type Status string

const (
	StatusGreen  Status = "GREEN"
	StatusYellow Status = "YELLOW"
	StatusRed    Status = "RED"
)

// Status thresholds on the overall score.
const (
	GreenThreshold  = 90.0
	YellowThreshold = 70.0
)

// #endregion status

// #region mode
// Mode is the supervisor's autonomy posture.
type Mode string

const (
	ModeAOnly       Mode = "MODE_A_ONLY"   // human-driven only
	ModeBShadow     Mode = "MODE_B_SHADOW" // limited autonomous operation
	ModeContainment Mode = "CONTAINMENT"   // forced lockdown on RED integrity
)

// AutonomyBar is the overall score required before shadow mode is even
// considered, stricter than GREEN.
const AutonomyBar = 95.0

// ContainmentWindow is how long after a containment event autonomy stays
// denied.
const ContainmentWindow = 24 * time.Hour

// #endregion mode

// #region alerts
// Alert names the external monitor flags that veto autonomy.
type Alert string

const (
	AlertDrift          Alert = "drift"
	AlertDatasetSkew    Alert = "dataset_skew"
	AlertStorageWarning Alert = "storage_warning"
)

// #endregion alerts

// #region event
// IntegrityEvent is one append-only audit record of a status or mode
// change. Entries are never edited or removed.
type IntegrityEvent struct {
	ID         string
	Timestamp  time.Time
	PrevScore  float64
	NewScore   float64
	PrevStatus Status
	NewStatus  Status
	Mode       Mode
	Digest     string
}

// #endregion event

// #region autonomy
// AutonomyCondition is the verdict of one autonomy evaluation.
type AutonomyCondition struct {
	ShadowAllowed bool
	Mode          Mode
	Overall       float64
	Reason        string
}

// #endregion autonomy
