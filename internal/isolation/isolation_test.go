package isolation

import (
	"sync"
	"testing"

	"github.com/danielpatrickdp/field-governor/internal/certgate"
)

func genericTag(field string) BatchTag {
	return BatchTag{FieldName: field, Category: certgate.CategoryExtended, IsGeneric: true}
}

func TestPureBatchPasses(t *testing.T) {
	g := NewGuard()
	batch := []BatchTag{genericTag("ssrf_detection"), genericTag("ssrf_detection")}

	res := g.VerifyBatchPurity("ssrf_detection", batch)

	if !res.Pure {
		t.Fatalf("expected pure batch: %s", res.Reason)
	}
	if res.RejectedIndex != -1 {
		t.Fatalf("expected rejected index -1, got %d", res.RejectedIndex)
	}
	if g.Violations() != 0 {
		t.Fatalf("expected 0 violations, got %d", g.Violations())
	}
}

func TestSingleCrossFieldSampleFailsWholeBatch(t *testing.T) {
	g := NewGuard()
	batch := []BatchTag{
		genericTag("ssrf_detection"),
		genericTag("ssrf_detection"),
		genericTag("csrf_detection"), // strays into a non-active field
		genericTag("ssrf_detection"),
	}

	res := g.VerifyBatchPurity("ssrf_detection", batch)

	if res.Pure {
		t.Fatal("expected rejection")
	}
	if res.Code != CodeCrossField {
		t.Fatalf("expected %s, got %s", CodeCrossField, res.Code)
	}
	if res.RejectedIndex != 2 {
		t.Fatalf("expected rejected index 2, got %d", res.RejectedIndex)
	}
	if g.Violations() != 1 {
		t.Fatalf("expected 1 violation, got %d", g.Violations())
	}
}

func TestCompanyDataRejectedUnconditionally(t *testing.T) {
	g := NewGuard()
	// Correct field name, but not generic: still rejected.
	batch := []BatchTag{{FieldName: "xss_detection", Category: certgate.CategoryClientSide, IsGeneric: false}}

	res := g.VerifyBatchPurity("xss_detection", batch)

	if res.Pure {
		t.Fatal("expected rejection of company-specific data")
	}
	if res.Code != CodeCompanyData {
		t.Fatalf("expected %s, got %s", CodeCompanyData, res.Code)
	}
}

func TestEmptyBatchIsPure(t *testing.T) {
	g := NewGuard()
	res := g.VerifyBatchPurity("xss_detection", nil)
	if !res.Pure {
		t.Fatalf("empty batch should be vacuously pure: %s", res.Reason)
	}
}

func TestViolationCounterUnderConcurrency(t *testing.T) {
	g := NewGuard()
	bad := []BatchTag{genericTag("wrong_field")}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.VerifyBatchPurity("xss_detection", bad)
		}()
	}
	wg.Wait()

	if g.Violations() != 50 {
		t.Fatalf("expected 50 violations, got %d", g.Violations())
	}
}
