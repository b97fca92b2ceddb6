package audit

import (
	"path/filepath"
	"testing"
	"time"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestIntegrityRoundTrip(t *testing.T) {
	s := tempStore(t)
	row := IntegrityRow{
		EventID:    "evt-1",
		PrevScore:  96.5,
		NewScore:   88.0,
		PrevStatus: "GREEN",
		NewStatus:  "YELLOW",
		Mode:       "MODE_A_ONLY",
		Digest:     "abc123",
	}
	if err := s.AppendIntegrity(row); err != nil {
		t.Fatalf("AppendIntegrity: %v", err)
	}

	got, err := s.ListIntegrity(10)
	if err != nil {
		t.Fatalf("ListIntegrity: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	if got[0].EventID != "evt-1" || got[0].NewStatus != "YELLOW" || got[0].Digest != "abc123" {
		t.Fatalf("row mismatch: %+v", got[0])
	}
	if got[0].CreatedAt.IsZero() {
		t.Fatal("created_at should be backfilled")
	}
}

func TestIntegrityListNewestFirst(t *testing.T) {
	s := tempStore(t)
	for i, id := range []string{"evt-a", "evt-b", "evt-c"} {
		err := s.AppendIntegrity(IntegrityRow{
			EventID:    id,
			PrevStatus: "GREEN", NewStatus: "GREEN", Mode: "MODE_A_ONLY",
			Digest:    "d",
			CreatedAt: time.Date(2026, 8, 1, i, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}

	got, err := s.ListIntegrity(2)
	if err != nil {
		t.Fatalf("ListIntegrity: %v", err)
	}
	if len(got) != 2 || got[0].EventID != "evt-c" || got[1].EventID != "evt-b" {
		t.Fatalf("expected newest first with limit, got %+v", got)
	}
}

func TestDuplicateEventIDRejected(t *testing.T) {
	s := tempStore(t)
	row := IntegrityRow{EventID: "evt-dup", PrevStatus: "GREEN", NewStatus: "RED", Mode: "CONTAINMENT", Digest: "d"}
	if err := s.AppendIntegrity(row); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := s.AppendIntegrity(row); err == nil {
		t.Fatal("duplicate event_id should be rejected")
	}
}

func TestContainmentRoundTrip(t *testing.T) {
	s := tempStore(t)
	err := s.AppendContainment(ContainmentRow{
		EventID: "cont-1",
		Trigger: "autonomy_denied",
		Reason:  "drift alert active",
	})
	if err != nil {
		t.Fatalf("AppendContainment: %v", err)
	}

	got, err := s.ListContainment(5)
	if err != nil {
		t.Fatalf("ListContainment: %v", err)
	}
	if len(got) != 1 || got[0].Trigger != "autonomy_denied" || got[0].Reason != "drift alert active" {
		t.Fatalf("row mismatch: %+v", got)
	}
}

func TestApprovalRoundTrip(t *testing.T) {
	s := tempStore(t)
	err := s.AppendApproval(ApprovalRow{
		EventID:   "appr-1",
		FieldID:   2,
		FieldName: "csrf_detection",
		Approver:  "reviewer@example.com",
		Reason:    "metrics reviewed",
	})
	if err != nil {
		t.Fatalf("AppendApproval: %v", err)
	}

	got, err := s.ListApprovals(5)
	if err != nil {
		t.Fatalf("ListApprovals: %v", err)
	}
	if len(got) != 1 || got[0].FieldID != 2 || got[0].FieldName != "csrf_detection" {
		t.Fatalf("row mismatch: %+v", got)
	}
}

func TestViolationRoundTrip(t *testing.T) {
	s := tempStore(t)
	err := s.AppendViolation(ViolationRow{
		ActiveField: "xss_detection",
		Code:        "CROSS_FIELD_BLOCKED",
		Reason:      "sample 3 tagged sqli",
		BatchSize:   64,
	})
	if err != nil {
		t.Fatalf("AppendViolation: %v", err)
	}

	got, err := s.ListViolations(5)
	if err != nil {
		t.Fatalf("ListViolations: %v", err)
	}
	if len(got) != 1 || got[0].Code != "CROSS_FIELD_BLOCKED" || got[0].BatchSize != 64 {
		t.Fatalf("row mismatch: %+v", got)
	}
}

func TestAttemptRoundTrip(t *testing.T) {
	s := tempStore(t)
	err := s.AppendAttempt(AttemptRow{
		AttemptID:     "att-1",
		FieldID:       0,
		Category:      "CLIENT_SIDE",
		Precision:     0.97,
		FPR:           0.03,
		DupDetection:  0.91,
		ECE:           0.012,
		StabilityDays: 9,
		HumanApproved: true,
		TotalFields:   23,
		AllPass:       true,
		GatesPassed:   6,
		Status:        "TRANSITIONING",
	})
	if err != nil {
		t.Fatalf("AppendAttempt: %v", err)
	}

	got, err := s.ListAttempts(5)
	if err != nil {
		t.Fatalf("ListAttempts: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	r := got[0]
	if r.AttemptID != "att-1" || !r.AllPass || r.GatesPassed != 6 || r.Status != "TRANSITIONING" {
		t.Fatalf("row mismatch: %+v", r)
	}
	if !r.HumanApproved || r.Precision != 0.97 || r.TotalFields != 23 {
		t.Fatalf("inputs not preserved: %+v", r)
	}
}

func TestAttemptIDUnique(t *testing.T) {
	s := tempStore(t)
	row := AttemptRow{AttemptID: "att-dup", Category: "EXTENDED", Status: "TRAINING_ACTIVE"}
	if err := s.AppendAttempt(row); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := s.AppendAttempt(row); err == nil {
		t.Fatal("duplicate attempt_id should be rejected")
	}
}
