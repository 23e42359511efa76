package app

import (
	"fmt"

	"notebin/pkg/domain"
)

// ListUsers returns every account for the admin panel.
func (a *App) ListUsers() ([]domain.User, error) {
	return a.store.ListUsers()
}

// BlockUser marks an account blocked. Blocked users cannot log in and
// their existing tokens stop resolving.
func (a *App) BlockUser(userID string) (domain.User, error) {
	return a.setUserBlocked(userID, true)
}

// UnblockUser clears the blocked flag. Unblocking an already active
// account is a no-op.
func (a *App) UnblockUser(userID string) (domain.User, error) {
	return a.setUserBlocked(userID, false)
}

func (a *App) setUserBlocked(userID string, blocked bool) (domain.User, error) {
	user, ok, err := a.store.GetUserByID(userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, ErrNotFound
	}
	user.IsBlocked = blocked
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

// SetUserPlan assigns a plan directly, bypassing payment. The plan is
// validated before the user is looked up so a bad plan name never leaks
// whether the target exists.
func (a *App) SetUserPlan(userID string, plan domain.Plan) (domain.User, error) {
	if !domain.ValidPlan(plan) {
		return domain.User{}, ErrInvalidPlan
	}
	user, ok, err := a.store.GetUserByID(userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, ErrNotFound
	}
	user.Plan = plan
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

// DeleteAllFilesForUser wipes a user's entries. Admins cannot target
// themselves through this endpoint. Returns how many entries went away.
func (a *App) DeleteAllFilesForUser(admin domain.User, userID string) (int64, error) {
	target, ok, err := a.store.GetUserByID(userID)
	if err != nil {
		return 0, fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return 0, ErrNotFound
	}
	if target.ID == admin.ID {
		return 0, ErrForbidden
	}
	files, err := a.store.ListFilesByOwner(target.ID)
	if err != nil {
		return 0, fmt.Errorf("list files: %w", err)
	}
	count, err := a.store.DeleteFilesByOwner(target.ID)
	if err != nil {
		return 0, fmt.Errorf("delete files: %w", err)
	}
	for _, f := range files {
		a.enqueueCleanup(f.ID)
	}
	return count, nil
}

// BlockFile hides an entry from public resolution without deleting it.
func (a *App) BlockFile(fileID string) (domain.File, error) {
	return a.setFileBlocked(fileID, true)
}

// UnblockFile restores a blocked entry.
func (a *App) UnblockFile(fileID string) (domain.File, error) {
	return a.setFileBlocked(fileID, false)
}

func (a *App) setFileBlocked(fileID string, blocked bool) (domain.File, error) {
	f, ok, err := a.store.GetFile(fileID)
	if err != nil {
		return domain.File{}, fmt.Errorf("fetch file: %w", err)
	}
	if !ok {
		return domain.File{}, ErrNotFound
	}
	f.IsBlocked = blocked
	if err := a.store.SaveFile(f); err != nil {
		return domain.File{}, fmt.Errorf("save file: %w", err)
	}
	return f, nil
}
