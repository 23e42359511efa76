package app

import (
	"testing"
	"time"

	"notebin/pkg/domain"
	"notebin/pkg/store"
)

type stubVerifier struct {
	valid string
}

func (v stubVerifier) Verify(orderID, paymentID, signature string) bool {
	return signature == v.valid
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	sessions, err := store.NewJWTSessionStore("test-secret-0123456789abcdef", time.Hour, store.JWTOptions{})
	if err != nil {
		t.Fatalf("session store: %v", err)
	}
	a, err := New(Config{
		Store:    store.NewMemoryStore(),
		Sessions: sessions,
		Verifier: stubVerifier{valid: "sig-ok"},
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a
}

func mustRegister(t *testing.T, a *App, email, username string) domain.User {
	t.Helper()
	u, _, err := a.Register(email, username, "password123", "")
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return u
}

func mustCreate(t *testing.T, a *App, owner domain.User, in CreateFileInput) domain.File {
	t.Helper()
	f, err := a.CreateFile(owner, in)
	if err != nil {
		t.Fatalf("create %s: %v", in.Name, err)
	}
	return f
}
