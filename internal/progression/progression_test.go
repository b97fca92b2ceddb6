package progression

import "testing"

func TestNotCertifiedStaysTraining(t *testing.T) {
	d := Decide(Input{FieldID: 3, Certified: false, StabilityDays: 30, HumanOK: true, TotalFields: 23})
	if d.Status != StatusTrainingActive {
		t.Fatalf("expected TRAINING_ACTIVE, got %s", d.Status)
	}
}

func TestCertifiedButUnstableWaits(t *testing.T) {
	d := Decide(Input{FieldID: 3, Certified: true, StabilityDays: 6, HumanOK: true, TotalFields: 23})
	if d.Status != StatusAwaitingStability {
		t.Fatalf("expected AWAITING_STABILITY, got %s", d.Status)
	}
}

func TestStableWithoutHumanIsBlocked(t *testing.T) {
	d := Decide(Input{FieldID: 3, Certified: true, StabilityDays: 7, HumanOK: false, TotalFields: 23})
	if d.Status != StatusCertifiedStable {
		t.Fatalf("expected CERTIFIED_STABLE, got %s", d.Status)
	}
}

func TestTransitioningNamesNextIndex(t *testing.T) {
	d := Decide(Input{FieldID: 3, Certified: true, StabilityDays: 7, HumanOK: true, TotalFields: 23})
	if d.Status != StatusTransitioning {
		t.Fatalf("expected TRANSITIONING, got %s", d.Status)
	}
	if d.NextFieldID != 4 {
		t.Fatalf("expected next field 4, got %d", d.NextFieldID)
	}
}

func TestLastFieldCompletes(t *testing.T) {
	d := Decide(Input{FieldID: 22, Certified: true, StabilityDays: 10, HumanOK: true, TotalFields: 23})
	if d.Status != StatusAllComplete {
		t.Fatalf("expected ALL_COMPLETE, got %s", d.Status)
	}
}

func TestElapsedTimeAloneNeverAdvances(t *testing.T) {
	// Huge stability accumulation without certification must not progress.
	d := Decide(Input{FieldID: 0, Certified: false, StabilityDays: 365, HumanOK: true, TotalFields: 23})
	if d.Status != StatusTrainingActive {
		t.Fatalf("expected TRAINING_ACTIVE, got %s", d.Status)
	}
}
