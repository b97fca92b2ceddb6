package seal

import (
	"os"
	"path/filepath"
	"testing"
)

func tempSealer(t *testing.T) (*Sealer, string) {
	t.Helper()
	keyPath := filepath.Join(t.TempDir(), ".seal_key")
	s, err := NewSealer(keyPath)
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	return s, keyPath
}

func TestDigestIsStable(t *testing.T) {
	s, _ := tempSealer(t)
	payload := []byte("event-1|2026-08-29T00:00:00Z|92.5|88.0")

	d1 := s.Digest(payload)
	d2 := s.Digest(payload)
	if d1 != d2 {
		t.Fatalf("digest not deterministic: %s vs %s", d1, d2)
	}
	if len(d1) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(d1))
	}
}

func TestVerify(t *testing.T) {
	s, _ := tempSealer(t)
	payload := []byte("event payload")

	d := s.Digest(payload)
	if !s.Verify(payload, d) {
		t.Fatal("digest should verify")
	}
	if s.Verify([]byte("tampered payload"), d) {
		t.Fatal("tampered payload should not verify")
	}
	if s.Verify(payload, "not-hex") {
		t.Fatal("malformed digest should not verify")
	}
}

func TestKeyPersistsAcrossSealers(t *testing.T) {
	s1, keyPath := tempSealer(t)
	payload := []byte("same payload")
	d1 := s1.Digest(payload)

	s2, err := NewSealer(keyPath)
	if err != nil {
		t.Fatalf("reopen sealer: %v", err)
	}
	if got := s2.Digest(payload); got != d1 {
		t.Fatalf("digest changed after reload: %s vs %s", got, d1)
	}

	info, err := os.Stat(keyPath)
	if err != nil {
		t.Fatalf("stat key: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("key file mode %v, want 0600", info.Mode().Perm())
	}
}
