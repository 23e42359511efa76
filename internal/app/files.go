package app

import (
	"fmt"
	"strings"
	"time"

	"notebin/internal/util"
	"notebin/pkg/domain"
)

const anonymousPath = "/anonymous"

// CreateFileInput carries the fields accepted when creating an owned entry.
type CreateFileInput struct {
	Name     string
	Type     domain.EntryType
	Content  string
	Language string
	Path     string
	Metadata map[string]string
}

// CreateFile creates an owned file or folder.
func (a *App) CreateFile(owner domain.User, in CreateFileInput) (domain.File, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return domain.File{}, ErrMissingFields
	}
	if in.Type == "" {
		in.Type = domain.TypeFile
	}
	if in.Type != domain.TypeFile && in.Type != domain.TypeFolder {
		return domain.File{}, ErrMissingFields
	}
	path := normalizePath(in.Path)
	now := time.Now().UTC()
	ownerID := owner.ID
	f := domain.File{
		ID:        util.NewID(),
		Name:      in.Name,
		Type:      in.Type,
		Language:  in.Language,
		OwnerID:   &ownerID,
		Path:      path,
		Metadata:  in.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Type == domain.TypeFile {
		f.Content = in.Content
		f.SizeBytes = int64(len(in.Content))
	}
	if err := a.store.SaveFile(f); err != nil {
		return domain.File{}, fmt.Errorf("save file: %w", err)
	}
	if in.Type == domain.TypeFile && in.Content != "" {
		if _, err := a.store.AppendContent(f.ID, in.Content); err != nil {
			return domain.File{}, fmt.Errorf("save content: %w", err)
		}
	}
	return f, nil
}

// ListFiles returns the principal's own entries.
func (a *App) ListFiles(owner domain.User) ([]domain.File, error) {
	return a.store.ListFilesByOwner(owner.ID)
}

// GetOwnedFile resolves an entry by id and owner in one lookup. A wrong id
// and a wrong owner both come back as ErrNotFound.
func (a *App) GetOwnedFile(owner domain.User, fileID string) (domain.File, error) {
	f, ok, err := a.store.GetFileForOwner(fileID, owner.ID)
	if err != nil {
		return domain.File{}, fmt.Errorf("fetch file: %w", err)
	}
	if !ok {
		return domain.File{}, ErrNotFound
	}
	return f, nil
}

// UpdateContent replaces a file's content and appends a new content
// version. Folders have no content and are reported as absent.
func (a *App) UpdateContent(owner domain.User, fileID, content, language string) (domain.File, domain.FileContent, error) {
	f, err := a.GetOwnedFile(owner, fileID)
	if err != nil {
		return domain.File{}, domain.FileContent{}, err
	}
	if f.Type != domain.TypeFile {
		return domain.File{}, domain.FileContent{}, ErrNotFound
	}
	f.Content = content
	f.SizeBytes = int64(len(content))
	if strings.TrimSpace(language) != "" {
		f.Language = language
	}
	f.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveFile(f); err != nil {
		return domain.File{}, domain.FileContent{}, fmt.Errorf("save file: %w", err)
	}
	version, err := a.store.AppendContent(f.ID, content)
	if err != nil {
		return domain.File{}, domain.FileContent{}, fmt.Errorf("save content: %w", err)
	}
	return f, version, nil
}

// SetPinned toggles the pin flag on an owned entry.
func (a *App) SetPinned(owner domain.User, fileID string, pinned bool) (domain.File, error) {
	f, err := a.GetOwnedFile(owner, fileID)
	if err != nil {
		return domain.File{}, err
	}
	f.IsPinned = pinned
	f.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveFile(f); err != nil {
		return domain.File{}, fmt.Errorf("save file: %w", err)
	}
	return f, nil
}

// Share makes an owned entry public under a fresh share code. Re-sharing
// never reuses an abandoned code. An optional slug alias may be supplied.
func (a *App) Share(owner domain.User, fileID, slug string) (domain.File, error) {
	f, err := a.GetOwnedFile(owner, fileID)
	if err != nil {
		return domain.File{}, err
	}
	slug = strings.TrimSpace(slug)
	if slug != "" {
		existing, taken, err := a.store.GetFileBySlug(slug)
		if err != nil {
			return domain.File{}, fmt.Errorf("check slug: %w", err)
		}
		if taken && existing.ID != f.ID {
			return domain.File{}, ErrSlugTaken
		}
		f.Slug = slug
	}
	f.ShareCode = util.NewID()
	f.IsPublic = true
	f.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveFile(f); err != nil {
		return domain.File{}, fmt.Errorf("save file: %w", err)
	}
	return f, nil
}

// Unshare withdraws public access: share code and slug are cleared and the
// entry goes private. Idempotent; unsharing twice is fine.
func (a *App) Unshare(owner domain.User, fileID string) (domain.File, error) {
	f, err := a.GetOwnedFile(owner, fileID)
	if err != nil {
		return domain.File{}, err
	}
	f.ShareCode = ""
	f.Slug = ""
	f.IsPublic = false
	f.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveFile(f); err != nil {
		return domain.File{}, fmt.Errorf("save file: %w", err)
	}
	return f, nil
}

// DeleteFile removes an owned entry and schedules content reaping.
func (a *App) DeleteFile(owner domain.User, fileID string) error {
	f, err := a.GetOwnedFile(owner, fileID)
	if err != nil {
		return err
	}
	if err := a.store.DeleteFile(f.ID); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	a.enqueueCleanup(f.ID)
	return nil
}

// ContentVersions lists the version history for an owned file.
func (a *App) ContentVersions(owner domain.User, fileID string) ([]domain.FileContent, error) {
	if _, err := a.GetOwnedFile(owner, fileID); err != nil {
		return nil, err
	}
	return a.store.ListContentVersions(fileID)
}

// CreateAnonymousFile stores an ownerless public file under /anonymous.
// expiryHours nil applies the configured default; zero means no expiry at
// all, which leaves the file live indefinitely.
func (a *App) CreateAnonymousFile(name, content, language string, expiryHours *int, ip, userAgent string) (domain.File, error) {
	name = strings.TrimSpace(name)
	if name == "" || content == "" {
		return domain.File{}, ErrNameAndContentRequired
	}
	now := time.Now().UTC()
	var expiresAt *time.Time
	switch {
	case expiryHours == nil:
		t := now.Add(a.anonExpiryDefault)
		expiresAt = &t
	case *expiryHours > 0:
		t := now.Add(time.Duration(*expiryHours) * time.Hour)
		expiresAt = &t
	}
	f := domain.File{
		ID:        util.NewID(),
		Name:      name,
		Type:      domain.TypeFile,
		Content:   content,
		Language:  language,
		SizeBytes: int64(len(content)),
		OwnerID:   nil,
		Path:      anonymousPath,
		IsPublic:  true,
		ShareCode: util.NewID(),
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.SaveFile(f); err != nil {
		return domain.File{}, fmt.Errorf("save file: %w", err)
	}
	a.recordSession("", "guest-"+f.ID[:6], ip, userAgent)
	return f, nil
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
