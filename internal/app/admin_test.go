package app

import (
	"errors"
	"testing"

	"notebin/pkg/domain"
)

func TestSetUserPlanValidatesPlanFirst(t *testing.T) {
	a := newTestApp(t)
	user := mustRegister(t, a, "user@example.com", "user")

	if _, err := a.SetUserPlan(user.ID, domain.Plan("platinum")); !errors.Is(err, ErrInvalidPlan) {
		t.Fatalf("invalid plan: err = %v, want ErrInvalidPlan", err)
	}
	got, _, _ := a.store.GetUserByID(user.ID)
	if got.Plan != domain.PlanFree {
		t.Fatalf("plan mutated to %q", got.Plan)
	}

	if _, err := a.SetUserPlan("missing", domain.Plan("platinum")); !errors.Is(err, ErrInvalidPlan) {
		t.Fatalf("invalid plan for missing user: err = %v, want ErrInvalidPlan", err)
	}
	if _, err := a.SetUserPlan("missing", domain.PlanPremium); !errors.Is(err, ErrNotFound) {
		t.Fatalf("valid plan for missing user: err = %v, want ErrNotFound", err)
	}

	upgraded, err := a.SetUserPlan(user.ID, domain.PlanPremium)
	if err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	if upgraded.Plan != domain.PlanPremium {
		t.Fatalf("plan = %q, want premium", upgraded.Plan)
	}
}

func TestDeleteAllFilesForUser(t *testing.T) {
	a := newTestApp(t)
	admin := mustRegister(t, a, "admin@example.com", "admin")
	target := mustRegister(t, a, "target@example.com", "target")

	mustCreate(t, a, target, CreateFileInput{Name: "a", Content: "x"})
	mustCreate(t, a, target, CreateFileInput{Name: "b", Content: "y"})

	count, err := a.DeleteAllFilesForUser(admin, target.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
	left, err := a.ListFiles(target)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("%d files left", len(left))
	}
}

func TestDeleteAllFilesMissingUser(t *testing.T) {
	a := newTestApp(t)
	admin := mustRegister(t, a, "admin@example.com", "admin")

	if _, err := a.DeleteAllFilesForUser(admin, "no-such-user"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteAllFilesSelfProtection(t *testing.T) {
	a := newTestApp(t)
	admin := mustRegister(t, a, "admin@example.com", "admin")
	mustCreate(t, a, admin, CreateFileInput{Name: "mine", Content: "x"})

	if _, err := a.DeleteAllFilesForUser(admin, admin.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	files, _ := a.ListFiles(admin)
	if len(files) != 1 {
		t.Fatalf("admin files deleted; %d left", len(files))
	}
}

func TestBlockUnblockUser(t *testing.T) {
	a := newTestApp(t)
	mustRegister(t, a, "admin@example.com", "admin")
	user := mustRegister(t, a, "user@example.com", "user")

	blocked, err := a.BlockUser(user.ID)
	if err != nil {
		t.Fatalf("block: %v", err)
	}
	if !blocked.IsBlocked {
		t.Fatal("user not blocked")
	}
	if _, _, err := a.Login("user", "password123", "", ""); !errors.Is(err, ErrUserBlocked) {
		t.Fatalf("blocked login: err = %v, want ErrUserBlocked", err)
	}

	for i := 0; i < 2; i++ {
		u, err := a.UnblockUser(user.ID)
		if err != nil {
			t.Fatalf("unblock #%d: %v", i+1, err)
		}
		if u.IsBlocked {
			t.Fatalf("unblock #%d left user blocked", i+1)
		}
	}
	if _, _, err := a.Login("user", "password123", "", ""); err != nil {
		t.Fatalf("login after unblock: %v", err)
	}
}

func TestFirstUserBecomesAdmin(t *testing.T) {
	a := newTestApp(t)
	first := mustRegister(t, a, "first@example.com", "first")
	second := mustRegister(t, a, "second@example.com", "second")

	if first.Role != domain.RoleAdmin {
		t.Fatalf("first role = %q, want admin", first.Role)
	}
	if second.Role != domain.RoleUser {
		t.Fatalf("second role = %q, want user", second.Role)
	}
}
