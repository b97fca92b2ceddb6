package modelock

import (
	"fmt"
	"sync"

	"github.com/danielpatrickdp/field-governor/internal/fsatomic"
)

// #region types
// Mode is the single global operating mode. TRAIN_MODE permits weight
// updates and forbids external-target access; HUNT_MODE is the reverse.
// The two can never hold simultaneously because both are entered only
// from IDLE.
type Mode int

const (
	ModeIdle Mode = iota
	ModeTrain
	ModeHunt
)

var modeNames = [...]string{"IDLE", "TRAIN_MODE", "HUNT_MODE"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "UNKNOWN"
	}
	return modeNames[m]
}

// Result codes for mode transitions.
const (
	CodeOK                = "OK"
	CodeOverlapBlocked    = "MODE_OVERLAP_BLOCKED"
	CodeTransitionBlocked = "MODE_TRANSITION_BLOCKED"
	CodeNoActiveMode      = "NO_ACTIVE_MODE"
)

// Result reports one mode transition attempt.
type Result struct {
	Allowed bool
	Code    string
	Reason  string
	Mode    Mode // mode after the call
}

// stateVersion tags the persisted file format.
const stateVersion = 1

// #endregion types

// #region lock
// Lock is the global training/hunting mutual exclusion. One mutex covers
// both the mode and the task counter so no caller ever observes a torn
// pair; the counter is the sole gate back to IDLE.
type Lock struct {
	mu    sync.Mutex
	mode  Mode
	tasks int
}

// NewLock returns a lock in IDLE with no active tasks.
func NewLock() *Lock {
	return &Lock{}
}

// #endregion lock

// #region enter
// EnterTrain moves IDLE -> TRAIN_MODE.
func (l *Lock) EnterTrain() Result {
	return l.enter(ModeTrain)
}

// EnterHunt moves IDLE -> HUNT_MODE.
func (l *Lock) EnterHunt() Result {
	return l.enter(ModeHunt)
}

func (l *Lock) enter(target Mode) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.mode != ModeIdle {
		return Result{
			Code:   CodeOverlapBlocked,
			Reason: fmt.Sprintf("cannot enter %s while %s holds the lock", target, l.mode),
			Mode:   l.mode,
		}
	}
	l.mode = target
	return Result{Allowed: true, Code: CodeOK, Reason: fmt.Sprintf("entered %s", target), Mode: target}
}

// EnterIdle releases the lock. Blocked while any bracketed task is still
// running.
func (l *Lock) EnterIdle() Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.mode == ModeIdle {
		return Result{Allowed: true, Code: CodeOK, Reason: "already idle", Mode: ModeIdle}
	}
	if l.tasks > 0 {
		return Result{
			Code:   CodeTransitionBlocked,
			Reason: fmt.Sprintf("%d active tasks must finish before leaving %s", l.tasks, l.mode),
			Mode:   l.mode,
		}
	}
	prev := l.mode
	l.mode = ModeIdle
	return Result{Allowed: true, Code: CodeOK, Reason: fmt.Sprintf("left %s", prev), Mode: ModeIdle}
}

// #endregion enter

// #region tasks
// BeginTask brackets the start of one unit of work. Fails outside
// TRAIN/HUNT since IDLE work would be ungoverned.
func (l *Lock) BeginTask() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.mode == ModeIdle {
		return fmt.Errorf("no task may begin in IDLE")
	}
	l.tasks++
	return nil
}

// EndTask brackets the end of one unit of work. The counter never goes
// negative; an unmatched EndTask is an error.
func (l *Lock) EndTask() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.tasks == 0 {
		return fmt.Errorf("EndTask without matching BeginTask")
	}
	l.tasks--
	return nil
}

// ActiveTasks returns the current task count.
func (l *Lock) ActiveTasks() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tasks
}

// Mode returns the current mode.
func (l *Lock) Mode() Mode {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mode
}

// #endregion tasks

// #region persist
type modeFile struct {
	Version  int    `json:"version"`
	Mode     int    `json:"mode"`
	ModeName string `json:"mode_name"`
}

// Save persists the mode through the atomic rename discipline. The task
// counter is deliberately not persisted: tasks do not survive a process
// restart, so a reloaded lock always starts at zero tasks.
func (l *Lock) Save(path string) error {
	l.mu.Lock()
	file := modeFile{Version: stateVersion, Mode: int(l.mode), ModeName: l.mode.String()}
	l.mu.Unlock()
	return fsatomic.SaveJSON(path, file)
}

// Load restores a lock written by Save.
func Load(path string) (*Lock, error) {
	var file modeFile
	if err := fsatomic.LoadJSON(path, &file); err != nil {
		return nil, err
	}
	if file.Version != stateVersion {
		return nil, fmt.Errorf("mode file version %d, expected %d", file.Version, stateVersion)
	}
	if file.Mode < int(ModeIdle) || file.Mode > int(ModeHunt) {
		return nil, fmt.Errorf("mode file corrupt: unknown mode %d", file.Mode)
	}
	return &Lock{mode: Mode(file.Mode)}, nil
}

// #endregion persist
