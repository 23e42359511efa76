package app

import (
	"errors"
	"testing"

	"notebin/pkg/auth"
)

func TestRegisterAndLogin(t *testing.T) {
	a := newTestApp(t)

	user, token, err := a.Register("User@Example.com", "alice", "password123", "Alice")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "user@example.com" {
		t.Fatalf("email = %q, want lowercased", user.Email)
	}
	if token == "" {
		t.Fatal("no token issued")
	}
	if got, err := a.UserFromToken(token); err != nil || got.ID != user.ID {
		t.Fatalf("token resolves to %+v err=%v", got, err)
	}

	if _, _, err := a.Login("alice", "password123", "", ""); err != nil {
		t.Fatalf("login by username: %v", err)
	}
	if _, _, err := a.Login("user@example.com", "password123", "", ""); err != nil {
		t.Fatalf("login by email: %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	a := newTestApp(t)
	mustRegister(t, a, "a@example.com", "alice")

	if _, _, err := a.Login("alice", "wrong-password", "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := a.Login("nobody", "password123", "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown login: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterDuplicates(t *testing.T) {
	a := newTestApp(t)
	mustRegister(t, a, "a@example.com", "alice")

	if _, _, err := a.Register("a@example.com", "other", "password123", ""); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("dup email: err = %v", err)
	}
	if _, _, err := a.Register("b@example.com", "alice", "password123", ""); !errors.Is(err, ErrUsernameAlreadyExists) {
		t.Fatalf("dup username: err = %v", err)
	}
}

func TestRegisterWeakPassword(t *testing.T) {
	a := newTestApp(t)

	if _, _, err := a.Register("a@example.com", "alice", "short", ""); !errors.Is(err, auth.ErrPasswordTooShort) {
		t.Fatalf("err = %v, want ErrPasswordTooShort", err)
	}
}

func TestBlockedUserTokenStopsResolving(t *testing.T) {
	a := newTestApp(t)
	mustRegister(t, a, "admin@example.com", "admin")
	user, token, err := a.Register("u@example.com", "user", "password123", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := a.UserFromToken(token); err != nil {
		t.Fatalf("token should resolve before block: %v", err)
	}
	if _, err := a.BlockUser(user.ID); err != nil {
		t.Fatalf("block: %v", err)
	}
	if _, err := a.UserFromToken(token); !errors.Is(err, ErrUserBlocked) {
		t.Fatalf("blocked user's token: err = %v, want ErrUserBlocked", err)
	}
}

func TestUserFromTokenDistinguishesGoneUser(t *testing.T) {
	a := newTestApp(t)
	user, token, err := a.Register("gone@example.com", "gone", "password123", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := a.UserFromToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage token: err = %v, want ErrInvalidToken", err)
	}

	if err := a.store.DeleteUser(user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	// the token still verifies, but the subject no longer exists
	if _, err := a.UserFromToken(token); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted user's token: err = %v, want ErrNotFound", err)
	}
}

func TestDeleteAccountRemovesFiles(t *testing.T) {
	a := newTestApp(t)
	user := mustRegister(t, a, "u@example.com", "user")
	mustCreate(t, a, user, CreateFileInput{Name: "note", Content: "x"})

	if err := a.DeleteAccount(user); err != nil {
		t.Fatalf("delete account: %v", err)
	}
	if _, ok, _ := a.store.GetUserByID(user.ID); ok {
		t.Fatal("user still present")
	}
	files, _ := a.store.ListFilesByOwner(user.ID)
	if len(files) != 0 {
		t.Fatalf("%d files left", len(files))
	}
}
