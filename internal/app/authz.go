package app

import (
	"fmt"
	"strings"
	"time"

	"notebin/pkg/domain"
)

// FileByShareCode resolves a publicly shared entry by its share code and
// bumps the access counter. The counter update is best effort; a lost
// increment never fails the read.
func (a *App) FileByShareCode(code string) (domain.File, error) {
	f, ok, err := a.store.GetFileByShareCode(code)
	if err != nil {
		return domain.File{}, fmt.Errorf("fetch shared file: %w", err)
	}
	if !ok || !sharedReadable(f) {
		return domain.File{}, ErrNotFound
	}
	_ = a.store.IncrementAccessCount(f.ID)
	f.AccessCount++
	return f, nil
}

// FileBySlug resolves a publicly shared entry by its slug alias.
func (a *App) FileBySlug(slug string) (domain.File, error) {
	f, ok, err := a.store.GetFileBySlug(slug)
	if err != nil {
		return domain.File{}, fmt.Errorf("fetch shared file: %w", err)
	}
	if !ok || !sharedReadable(f) {
		return domain.File{}, ErrNotFound
	}
	_ = a.store.IncrementAccessCount(f.ID)
	f.AccessCount++
	return f, nil
}

// SharedFolderFile fetches a single file out of a publicly shared folder.
// The folder must be a shared, unblocked folder; the file must belong to
// the same owner, be a file, not be blocked, and live under the folder's
// path. Every failure mode is reported as absence so callers cannot probe
// the folder's contents.
func (a *App) SharedFolderFile(folderID, fileID string) (domain.File, error) {
	folder, ok, err := a.store.GetFile(folderID)
	if err != nil {
		return domain.File{}, fmt.Errorf("fetch folder: %w", err)
	}
	if !ok || folder.Type != domain.TypeFolder || !folder.IsPublic || folder.IsBlocked || folder.ShareCode == "" {
		return domain.File{}, ErrNotFound
	}
	f, ok, err := a.store.GetFile(fileID)
	if err != nil {
		return domain.File{}, fmt.Errorf("fetch file: %w", err)
	}
	if !ok || f.Type != domain.TypeFile || f.IsBlocked {
		return domain.File{}, ErrNotFound
	}
	if !sameOwner(folder.OwnerID, f.OwnerID) || !pathContains(folder.Path, f.Path) {
		return domain.File{}, ErrNotFound
	}
	_ = a.store.IncrementAccessCount(folder.ID)
	return f, nil
}

func sharedReadable(f domain.File) bool {
	if !f.IsPublic || f.IsBlocked {
		return false
	}
	if f.ExpiresAt != nil && time.Now().After(*f.ExpiresAt) {
		return false
	}
	return true
}

func sameOwner(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// pathContains reports whether a file path sits under the folder's path.
// Containment is hierarchical: direct children and deeper descendants both
// qualify. The segment boundary check keeps /docs from claiming /docs2.
func pathContains(folderPath, filePath string) bool {
	root := strings.TrimSuffix(folderPath, "/")
	if root == "" {
		return strings.HasPrefix(filePath, "/")
	}
	return filePath == root || strings.HasPrefix(filePath, root+"/")
}
