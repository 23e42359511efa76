package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"notebin/pkg/domain"
)

// SaveAvatar uploads a user's avatar to object storage and records the key.
func (a *App) SaveAvatar(ctx context.Context, user domain.User, r io.Reader, size int64, contentType string) (domain.User, error) {
	if a.blobs == nil {
		return domain.User{}, ErrStorageUnavailable
	}
	key := fmt.Sprintf("avatars/%s", user.ID)
	if err := a.blobs.Put(ctx, key, r, size, contentType); err != nil {
		return domain.User{}, fmt.Errorf("upload avatar: %w", err)
	}
	user.AvatarKey = key
	user.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

// AvatarURL returns a short-lived presigned URL for the user's avatar.
func (a *App) AvatarURL(ctx context.Context, user domain.User) (string, error) {
	if a.blobs == nil {
		return "", ErrStorageUnavailable
	}
	if user.AvatarKey == "" {
		return "", ErrNotFound
	}
	url, err := a.blobs.PresignGet(ctx, user.AvatarKey, 15*time.Minute)
	if err != nil {
		return "", fmt.Errorf("presign avatar: %w", err)
	}
	return url, nil
}
