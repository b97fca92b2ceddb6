package supervisor

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielpatrickdp/field-governor/internal/audit"
	"github.com/danielpatrickdp/field-governor/internal/seal"
)

func testSupervisor(t *testing.T) *Supervisor {
	t.Helper()
	sealer, err := seal.NewSealer(filepath.Join(t.TempDir(), ".seal_key"))
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	return NewSupervisor(sealer)
}

func setAll(t *testing.T, s *Supervisor, score float64) {
	t.Helper()
	for sub := range Weights {
		if err := s.SetScore(sub, score); err != nil {
			t.Fatalf("SetScore(%s): %v", sub, err)
		}
	}
}

func TestWeightsSumToOne(t *testing.T) {
	var sum float64
	for _, w := range Weights {
		sum += w
	}
	if sum < 0.999 || sum > 1.001 {
		t.Fatalf("weights sum to %f, want 1.0", sum)
	}
}

func TestFreshSupervisorIsContained(t *testing.T) {
	s := testSupervisor(t)
	if s.Status() != StatusRed {
		t.Fatalf("fresh supervisor should be RED, got %s", s.Status())
	}
	if s.CurrentMode() != ModeContainment {
		t.Fatalf("fresh supervisor should be contained, got %s", s.CurrentMode())
	}

	cond := s.EvaluateAutonomy()
	if cond.ShadowAllowed {
		t.Fatal("autonomy must be denied before monitors report in")
	}
}

func TestWeightedOverallAndStatus(t *testing.T) {
	s := testSupervisor(t)
	setAll(t, s, 100)
	if s.Overall() != 100 {
		t.Fatalf("expected overall 100, got %f", s.Overall())
	}
	if s.Status() != StatusGreen {
		t.Fatalf("expected GREEN, got %s", s.Status())
	}

	// ml (weight 0.25) to 0 drops overall to 75: YELLOW.
	s.SetScore(SubsystemML, 0)
	if got := s.Overall(); got != 75 {
		t.Fatalf("expected overall 75, got %f", got)
	}
	if s.Status() != StatusYellow {
		t.Fatalf("expected YELLOW, got %s", s.Status())
	}
}

func TestScoreClamping(t *testing.T) {
	s := testSupervisor(t)
	s.SetScore(SubsystemML, 250)
	if got := s.Scores()[SubsystemML]; got != 100 {
		t.Fatalf("expected clamp to 100, got %f", got)
	}
	s.SetScore(SubsystemML, -10)
	if got := s.Scores()[SubsystemML]; got != 0 {
		t.Fatalf("expected clamp to 0, got %f", got)
	}
}

func TestUnknownSubsystemRejected(t *testing.T) {
	s := testSupervisor(t)
	if err := s.SetScore("gpu", 50); err == nil {
		t.Fatal("unknown subsystem must be rejected")
	}
	if err := s.SetAlert("smoke", true); err == nil {
		t.Fatal("unknown alert must be rejected")
	}
}

func TestPerfectScoresAllowShadow(t *testing.T) {
	s := testSupervisor(t)
	setAll(t, s, 100)

	cond := s.EvaluateAutonomy()
	if !cond.ShadowAllowed {
		t.Fatalf("expected shadow allowed: %s", cond.Reason)
	}
	if cond.Mode != ModeBShadow {
		t.Fatalf("expected MODE_B_SHADOW, got %s", cond.Mode)
	}
}

func TestAnyAlertDeniesShadowAndNamesIt(t *testing.T) {
	for _, alert := range []Alert{AlertDrift, AlertDatasetSkew, AlertStorageWarning} {
		s := testSupervisor(t)
		setAll(t, s, 100)
		s.SetAlert(alert, true)

		cond := s.EvaluateAutonomy()
		if cond.ShadowAllowed {
			t.Fatalf("%s: expected denial", alert)
		}
		if !strings.Contains(cond.Reason, string(alert)) {
			t.Fatalf("%s: reason %q does not name the alert", alert, cond.Reason)
		}
	}
}

func TestOverallAtBarDenied(t *testing.T) {
	s := testSupervisor(t)
	setAll(t, s, 95) // overall exactly 95, bar requires strictly above

	cond := s.EvaluateAutonomy()
	if cond.ShadowAllowed {
		t.Fatal("overall of exactly 95 must be denied")
	}
}

func TestDemotionFromShadowRecordsContainment(t *testing.T) {
	s := testSupervisor(t)
	trail, err := audit.NewStore(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("audit store: %v", err)
	}
	t.Cleanup(func() { trail.Close() })
	s.AttachAudit(trail)

	setAll(t, s, 100)
	if cond := s.EvaluateAutonomy(); !cond.ShadowAllowed {
		t.Fatalf("setup: %s", cond.Reason)
	}

	s.SetAlert(AlertDrift, true)
	cond := s.EvaluateAutonomy()
	if cond.ShadowAllowed {
		t.Fatal("drift alert must deny autonomy")
	}
	if cond.Mode != ModeAOnly {
		t.Fatalf("expected MODE_A_ONLY, got %s", cond.Mode)
	}

	rows, err := trail.ListContainment(5)
	if err != nil {
		t.Fatalf("ListContainment: %v", err)
	}
	if len(rows) != 1 || rows[0].Trigger != "autonomy_denied" {
		t.Fatalf("expected one autonomy_denied containment, got %+v", rows)
	}

	// Repeated failed evaluations are not fresh demotions.
	s.EvaluateAutonomy()
	rows, _ = trail.ListContainment(5)
	if len(rows) != 1 {
		t.Fatalf("repeat denial should not stack containment events, got %d", len(rows))
	}
}

func TestContainmentWindowBlocksReentry(t *testing.T) {
	s := testSupervisor(t)
	setAll(t, s, 100)
	s.EvaluateAutonomy() // enter shadow

	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	s.SetAlert(AlertDrift, true)
	s.EvaluateAutonomy() // demoted, containment at base
	s.SetAlert(AlertDrift, false)

	// 1 hour later: still inside the window.
	s.now = func() time.Time { return base.Add(time.Hour) }
	if cond := s.EvaluateAutonomy(); cond.ShadowAllowed {
		t.Fatal("autonomy must stay denied inside the containment window")
	}

	// 25 hours later: window expired.
	s.now = func() time.Time { return base.Add(25 * time.Hour) }
	if cond := s.EvaluateAutonomy(); !cond.ShadowAllowed {
		t.Fatalf("autonomy should recover after the window: %s", cond.Reason)
	}
}

func TestRedScoreForcesContainmentMode(t *testing.T) {
	s := testSupervisor(t)
	setAll(t, s, 100)
	s.EvaluateAutonomy()
	if s.CurrentMode() != ModeBShadow {
		t.Fatalf("setup: expected shadow, got %s", s.CurrentMode())
	}

	setAll(t, s, 10)
	if s.Status() != StatusRed {
		t.Fatalf("expected RED, got %s", s.Status())
	}
	if s.CurrentMode() != ModeContainment {
		t.Fatalf("RED must force CONTAINMENT, got %s", s.CurrentMode())
	}
}

func TestStatusChangesAppendVerifiableEvents(t *testing.T) {
	s := testSupervisor(t)
	setAll(t, s, 100) // RED -> (YELLOW ->) GREEN transitions along the way

	events := s.Events()
	if len(events) == 0 {
		t.Fatal("expected integrity events for status changes")
	}
	for i, ev := range events {
		if ev.ID == "" || ev.Digest == "" {
			t.Fatalf("event %d missing id or digest: %+v", i, ev)
		}
		if !s.VerifyEvent(ev) {
			t.Fatalf("event %d digest does not verify", i)
		}
	}

	tampered := events[len(events)-1]
	tampered.NewScore += 1
	if s.VerifyEvent(tampered) {
		t.Fatal("tampered event must not verify")
	}
}

func TestEventsMirroredToAudit(t *testing.T) {
	s := testSupervisor(t)
	trail, err := audit.NewStore(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("audit store: %v", err)
	}
	t.Cleanup(func() { trail.Close() })
	s.AttachAudit(trail)

	setAll(t, s, 100)

	rows, err := trail.ListIntegrity(10)
	if err != nil {
		t.Fatalf("ListIntegrity: %v", err)
	}
	if len(rows) != len(s.Events()) {
		t.Fatalf("audit mirror out of sync: %d rows vs %d events", len(rows), len(s.Events()))
	}
}
