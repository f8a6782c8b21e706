package session

import (
	"testing"
	"time"
)

func TestConnectDisconnectLifecycle(t *testing.T) {
	s, err := Connect("STSUB", "testnet")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if !s.SignedIn() || s.Principal != "STSUB" {
		t.Fatalf("unexpected session %+v", s)
	}

	anon := s.Disconnect()
	if anon.SignedIn() || anon.Principal != "" {
		t.Fatalf("disconnect must return anonymous session, got %+v", anon)
	}
	// The original value is untouched.
	if !s.SignedIn() {
		t.Fatal("disconnect mutated the source session")
	}
}

func TestConnectRequiresPrincipal(t *testing.T) {
	if _, err := Connect("  ", "testnet"); err == nil {
		t.Fatal("expected error for empty principal")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	mgr, err := NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	s, _ := Connect("STSUB", "testnet")
	token, err := mgr.Issue(s)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	got, err := mgr.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !got.SignedIn() || got.Principal != "STSUB" || got.Network != "testnet" {
		t.Fatalf("unexpected session %+v", got)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	mgr, _ := NewManager("test-secret", time.Hour)
	other, _ := NewManager("other-secret", time.Hour)

	s, _ := Connect("STSUB", "testnet")
	token, _ := other.Issue(s)

	got, err := mgr.Verify(token)
	if err == nil {
		t.Fatal("expected verification failure for foreign signature")
	}
	if got.SignedIn() {
		t.Fatal("failed verification must yield anonymous session")
	}
}

func TestIssueRejectsAnonymous(t *testing.T) {
	mgr, _ := NewManager("test-secret", time.Hour)
	if _, err := mgr.Issue(Anonymous()); err == nil {
		t.Fatal("expected error issuing token for anonymous session")
	}
}
