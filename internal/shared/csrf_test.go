package shared_test

import (
	"context"
	"testing"

	"github.com/em-sphere/emsphere/internal/shared"
)

func TestEnsureTokenStablePerSession(t *testing.T) {
	m := shared.NewCSRFManager("secret")
	sess := &shared.Session{ID: "abc"}

	first, err := m.EnsureToken(context.Background(), sess)
	if err != nil {
		t.Fatalf("ensure token: %v", err)
	}
	if first == "" {
		t.Fatalf("expected non-empty token")
	}
	second, err := m.EnsureToken(context.Background(), sess)
	if err != nil {
		t.Fatalf("ensure token again: %v", err)
	}
	if first != second {
		t.Fatalf("token must be stable within a session: %q vs %q", first, second)
	}
}

func TestEnsureTokenNeedsSession(t *testing.T) {
	m := shared.NewCSRFManager("secret")
	if _, err := m.EnsureToken(context.Background(), nil); err == nil {
		t.Fatalf("expected error without session")
	}
}

func TestVerifyToken(t *testing.T) {
	m := shared.NewCSRFManager("secret")
	sess := &shared.Session{ID: "abc"}
	token, err := m.EnsureToken(context.Background(), sess)
	if err != nil {
		t.Fatalf("ensure token: %v", err)
	}

	if err := m.VerifyToken(context.Background(), sess, token); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := m.VerifyToken(context.Background(), sess, "forged"); err != shared.ErrCSRFTokenMismatch {
		t.Fatalf("expected mismatch error got %v", err)
	}
	if err := m.VerifyToken(context.Background(), sess, ""); err != shared.ErrCSRFTokenMissing {
		t.Fatalf("expected missing error got %v", err)
	}
	if err := m.VerifyToken(context.Background(), nil, token); err != shared.ErrCSRFTokenMissing {
		t.Fatalf("expected missing error without session got %v", err)
	}
}

func TestVerifyTokenWithoutIssuedToken(t *testing.T) {
	m := shared.NewCSRFManager("secret")
	sess := &shared.Session{ID: "abc"}
	if err := m.VerifyToken(context.Background(), sess, "anything"); err != shared.ErrCSRFTokenMissing {
		t.Fatalf("expected missing error got %v", err)
	}
}
