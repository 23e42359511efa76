package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"notebin/internal/util"
	"notebin/pkg/auth"
	"notebin/pkg/domain"
)

// Register creates a new account on the free plan. The very first account
// becomes the admin.
func (a *App) Register(email, username, password, name string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.User{}, "", ErrMissingFields
	}
	if err := auth.ValidatePassword(password); err != nil {
		return domain.User{}, "", err
	}
	if email != "" {
		exists, err := a.store.HasUserEmail(email)
		if err != nil {
			return domain.User{}, "", fmt.Errorf("check email: %w", err)
		}
		if exists {
			return domain.User{}, "", ErrEmailAlreadyExists
		}
	}
	if _, taken, err := a.store.GetUserByUsername(username); err != nil {
		return domain.User{}, "", fmt.Errorf("check username: %w", err)
	} else if taken {
		return domain.User{}, "", ErrUsernameAlreadyExists
	}
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}
	role := domain.RoleUser
	count, err := a.store.UserCount()
	if err != nil {
		return domain.User{}, "", fmt.Errorf("count users: %w", err)
	}
	if count == 0 {
		role = domain.RoleAdmin
	}
	now := time.Now().UTC()
	user := domain.User{
		ID:           util.NewID(),
		Email:        email,
		Username:     username,
		Name:         strings.TrimSpace(name),
		PasswordHash: passwordHash,
		Plan:         domain.PlanFree,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, "", fmt.Errorf("save user: %w", err)
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Login validates credentials against email or username and issues a
// session token.
func (a *App) Login(login, password, ip, userAgent string) (domain.User, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return domain.User{}, "", ErrMissingFields
	}
	user, ok, err := a.store.GetUserByEmail(strings.ToLower(login))
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		user, ok, err = a.store.GetUserByUsername(login)
		if err != nil {
			return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
		}
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	if user.IsBlocked {
		return domain.User{}, "", ErrUserBlocked
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	a.recordSession(user.ID, "", ip, userAgent)
	return user, token, nil
}

// UserFromToken resolves the acting principal from a session token. A
// token that fails verification is ErrInvalidToken; a verified token whose
// user record no longer exists is ErrNotFound, so callers can report the
// two differently.
func (a *App) UserFromToken(token string) (domain.User, error) {
	uid, ok, err := a.sessions.GetUserIDByToken(token)
	if err != nil || !ok {
		return domain.User{}, ErrInvalidToken
	}
	user, found, err := a.store.GetUserByID(uid)
	if err != nil {
		return domain.User{}, fmt.Errorf("fetch user: %w", err)
	}
	if !found {
		return domain.User{}, ErrNotFound
	}
	if user.IsBlocked {
		return domain.User{}, ErrUserBlocked
	}
	a.touchSession(user.ID)
	return user, nil
}

// Logout drops the session metadata record. The token itself is stateless
// and simply ages out; the cookie is cleared by the handler.
func (a *App) Logout(user domain.User) {
	if a.sessionMeta == nil {
		return
	}
	_ = a.sessionMeta.DeleteSession(user.ID)
}

// DeleteAccount removes the user, every owned entry, and the avatar blob.
// The steps are independent deletes; leftovers are reaped by the cleanup
// queue rather than a cross-store transaction.
func (a *App) DeleteAccount(user domain.User) error {
	files, err := a.store.ListFilesByOwner(user.ID)
	if err != nil {
		return fmt.Errorf("list files: %w", err)
	}
	if _, err := a.store.DeleteFilesByOwner(user.ID); err != nil {
		return fmt.Errorf("delete files: %w", err)
	}
	for _, f := range files {
		a.enqueueCleanup(f.ID)
	}
	if a.blobs != nil && user.AvatarKey != "" {
		ctx, cancel := contextWithShortTimeout()
		_ = a.blobs.Delete(ctx, user.AvatarKey)
		cancel()
	}
	if err := a.store.DeleteUser(user.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	a.Logout(user)
	return nil
}

func (a *App) recordSession(userID, anonName, ip, userAgent string) {
	if a.sessionMeta == nil {
		return
	}
	now := time.Now().UTC()
	id := userID
	ttl := a.sessionTTL
	if id == "" {
		id = uuid.NewString()
		ttl = a.anonExpiryDefault
	}
	_ = a.sessionMeta.PutSession(domain.Session{
		ID:           id,
		UserID:       userID,
		AnonName:     anonName,
		IP:           ip,
		UserAgent:    userAgent,
		LastActivity: now,
		ExpiresAt:    now.Add(ttl),
	}, ttl)
}

func (a *App) touchSession(userID string) {
	if a.sessionMeta == nil {
		return
	}
	_ = a.sessionMeta.TouchSession(userID, time.Now().UTC())
}
