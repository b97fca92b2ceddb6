package supervisor

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/field-governor/internal/audit"
	"github.com/danielpatrickdp/field-governor/internal/seal"
)

// #region supervisor
// Supervisor aggregates six externally-supplied subsystem scores into a
// single autonomy decision. One instance per process, passed by handle;
// every read and write of the score set happens under one lock
// acquisition so an autonomy evaluation never observes a half-applied
// update.
type Supervisor struct {
	mu              sync.Mutex
	scores          map[Subsystem]float64
	alerts          map[Alert]bool
	overall         float64
	status          Status
	mode            Mode
	events          []IntegrityEvent
	lastContainment time.Time
	sealer          *seal.Sealer
	trail           *audit.Store
	now             func() time.Time
}

// NewSupervisor starts with all subsystem scores at zero: integrity must
// be demonstrated, not assumed, so a fresh supervisor is RED and
// contained until the monitors report in.
func NewSupervisor(sealer *seal.Sealer) *Supervisor {
	s := &Supervisor{
		scores: make(map[Subsystem]float64, len(Weights)),
		alerts: make(map[Alert]bool),
		mode:   ModeContainment,
		sealer: sealer,
		now:    time.Now,
	}
	for sub := range Weights {
		s.scores[sub] = 0
	}
	s.overall = 0
	s.status = StatusRed
	return s
}

// AttachAudit mirrors integrity and containment events into the store.
func (s *Supervisor) AttachAudit(trail *audit.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trail = trail
}

// #endregion supervisor

// #region scores
// SetScore records one subsystem's score, clamped to [0,100], and
// recomputes overall and status. A status change appends an
// IntegrityEvent; a drop to RED forces CONTAINMENT.
func (s *Supervisor) SetScore(sub Subsystem, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := Weights[sub]; !ok {
		return fmt.Errorf("unknown subsystem %q", sub)
	}
	s.scores[sub] = clamp(value)
	s.recomputeLocked()
	return nil
}

// SetAlert records one monitor flag.
func (s *Supervisor) SetAlert(a Alert, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch a {
	case AlertDrift, AlertDatasetSkew, AlertStorageWarning:
		s.alerts[a] = active
		return nil
	}
	return fmt.Errorf("unknown alert %q", a)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// recomputeLocked derives overall and status from the score set. Caller
// holds the mutex.
func (s *Supervisor) recomputeLocked() {
	prevScore, prevStatus := s.overall, s.status

	var sum float64
	for sub, w := range Weights {
		sum += s.scores[sub] * w
	}
	s.overall = clamp(sum)

	switch {
	case s.overall >= GreenThreshold:
		s.status = StatusGreen
	case s.overall >= YellowThreshold:
		s.status = StatusYellow
	default:
		s.status = StatusRed
	}

	if s.status == StatusRed && s.mode != ModeContainment {
		s.mode = ModeContainment
		s.recordContainmentLocked("integrity_red", fmt.Sprintf("overall score %.2f dropped below %.0f", s.overall, YellowThreshold))
	}

	if s.status != prevStatus {
		s.appendEventLocked(prevScore, prevStatus)
	}
}

// #endregion scores

// #region autonomy
// EvaluateAutonomy decides whether limited autonomous operation (shadow
// mode) is permitted. All six scores, the alert flags, and the
// containment history are read under the same lock acquisition. Autonomy
// requires overall above the bar, no containment event in the trailing
// window, and no active alert; failing any one forces MODE_A_ONLY and,
// when that is a fresh demotion, records a containment event.
func (s *Supervisor) EvaluateAutonomy() AutonomyCondition {
	s.mu.Lock()
	defer s.mu.Unlock()

	reason := s.autonomyBlockerLocked()
	if reason == "" {
		if s.mode != ModeBShadow {
			s.mode = ModeBShadow
			s.appendEventLocked(s.overall, s.status)
		}
		return AutonomyCondition{
			ShadowAllowed: true,
			Mode:          ModeBShadow,
			Overall:       s.overall,
			Reason:        fmt.Sprintf("overall %.2f, no alerts, no recent containment", s.overall),
		}
	}

	if s.mode == ModeBShadow {
		// Fresh demotion out of shadow: contain and audit it.
		s.mode = ModeAOnly
		s.recordContainmentLocked("autonomy_denied", reason)
		s.appendEventLocked(s.overall, s.status)
	} else if s.mode != ModeContainment {
		s.mode = ModeAOnly
	}

	return AutonomyCondition{
		Mode:    s.mode,
		Overall: s.overall,
		Reason:  reason,
	}
}

// autonomyBlockerLocked returns the first failed autonomy condition, or
// "" when all hold. Caller holds the mutex.
func (s *Supervisor) autonomyBlockerLocked() string {
	if s.overall <= AutonomyBar {
		return fmt.Sprintf("overall score %.2f not above %.0f", s.overall, AutonomyBar)
	}
	if !s.lastContainment.IsZero() && s.now().Sub(s.lastContainment) < ContainmentWindow {
		return fmt.Sprintf("containment event within trailing %s", ContainmentWindow)
	}
	for _, a := range []Alert{AlertDrift, AlertDatasetSkew, AlertStorageWarning} {
		if s.alerts[a] {
			return fmt.Sprintf("%s alert active", a)
		}
	}
	return ""
}

// #endregion autonomy

// #region events
// appendEventLocked seals and appends one integrity event. Caller holds
// the mutex.
func (s *Supervisor) appendEventLocked(prevScore float64, prevStatus Status) {
	ev := IntegrityEvent{
		ID:         uuid.New().String(),
		Timestamp:  s.now().UTC(),
		PrevScore:  prevScore,
		NewScore:   s.overall,
		PrevStatus: prevStatus,
		NewStatus:  s.status,
		Mode:       s.mode,
	}
	ev.Digest = s.sealer.Digest(eventPayload(ev))
	s.events = append(s.events, ev)

	if s.trail != nil {
		// Mirror failure is logged by the store layer; the in-memory
		// trail remains authoritative for this process.
		_ = s.trail.AppendIntegrity(audit.IntegrityRow{
			EventID:    ev.ID,
			PrevScore:  ev.PrevScore,
			NewScore:   ev.NewScore,
			PrevStatus: string(ev.PrevStatus),
			NewStatus:  string(ev.NewStatus),
			Mode:       string(ev.Mode),
			Digest:     ev.Digest,
			CreatedAt:  ev.Timestamp,
		})
	}
}

// eventPayload is the canonical byte encoding an event digest covers:
// id, timestamp, and the before/after scores.
func eventPayload(ev IntegrityEvent) []byte {
	return []byte(fmt.Sprintf("%s|%d|%.6f|%.6f",
		ev.ID, ev.Timestamp.UnixNano(), ev.PrevScore, ev.NewScore))
}

// VerifyEvent reports whether an event's digest matches its payload.
func (s *Supervisor) VerifyEvent(ev IntegrityEvent) bool {
	return s.sealer.Verify(eventPayload(ev), ev.Digest)
}

func (s *Supervisor) recordContainmentLocked(trigger, reason string) {
	s.lastContainment = s.now()
	if s.trail != nil {
		_ = s.trail.AppendContainment(audit.ContainmentRow{
			EventID:   uuid.New().String(),
			Trigger:   trigger,
			Reason:    reason,
			CreatedAt: s.lastContainment.UTC(),
		})
	}
}

// Events returns a copy of the in-memory integrity event trail.
func (s *Supervisor) Events() []IntegrityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]IntegrityEvent, len(s.events))
	copy(out, s.events)
	return out
}

// #endregion events

// #region readers
// Overall returns the current weighted score.
func (s *Supervisor) Overall() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overall
}

// Status returns the current traffic-light status.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// CurrentMode returns the current autonomy posture.
func (s *Supervisor) CurrentMode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Scores returns a copy of the six subsystem scores.
func (s *Supervisor) Scores() map[Subsystem]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[Subsystem]float64, len(s.scores))
	for k, v := range s.scores {
		out[k] = v
	}
	return out
}

// #endregion readers
