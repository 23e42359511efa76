package store

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"notebin/pkg/domain"
)

// MemoryStore keeps everything in-process. It backs tests and local
// development without Postgres.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[string]domain.User
	userOrder []string
	files     map[string]domain.File
	fileOrder []string
	contents  map[string][]domain.FileContent // fileID -> versions, ascending
	payments  map[string][]domain.Payment     // userID -> history, ascending
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]domain.User),
		files:    make(map[string]domain.File),
		contents: make(map[string][]domain.FileContent),
		payments: make(map[string][]domain.Payment),
	}
}

func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[u.ID]; !exists {
		m.userOrder = append(m.userOrder, u.ID)
	}
	m.users[u.ID] = u
	return nil
}

func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email != "" && u.Email == email {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

func (m *MemoryStore) GetUserByUsername(username string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

func (m *MemoryStore) HasUserEmail(email string) (bool, error) {
	_, ok, err := m.GetUserByEmail(email)
	return ok, err
}

func (m *MemoryStore) ListUsers() ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.User, 0, len(m.userOrder))
	for _, id := range m.userOrder {
		if u, ok := m.users[id]; ok {
			res = append(res, u)
		}
	}
	return res, nil
}

func (m *MemoryStore) UserCount() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users), nil
}

func (m *MemoryStore) DeleteUser(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	delete(m.payments, id)
	return nil
}

func (m *MemoryStore) SaveFile(f domain.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.files[f.ID]; !exists {
		m.fileOrder = append(m.fileOrder, f.ID)
	}
	m.files[f.ID] = f
	return nil
}

func (m *MemoryStore) GetFile(id string) (domain.File, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[id]
	return f, ok, nil
}

func (m *MemoryStore) GetFileForOwner(id, ownerID string) (domain.File, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[id]
	if !ok || f.OwnerID == nil || *f.OwnerID != ownerID {
		return domain.File{}, false, nil
	}
	return f, true, nil
}

func (m *MemoryStore) GetFileByShareCode(code string) (domain.File, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, f := range m.files {
		if f.ShareCode != "" && f.ShareCode == code {
			return f, true, nil
		}
	}
	return domain.File{}, false, nil
}

func (m *MemoryStore) GetFileBySlug(slug string) (domain.File, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, f := range m.files {
		if f.Slug != "" && f.Slug == slug {
			return f, true, nil
		}
	}
	return domain.File{}, false, nil
}

func (m *MemoryStore) ListFilesByOwner(ownerID string) ([]domain.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.File, 0)
	for _, id := range m.fileOrder {
		f, ok := m.files[id]
		if ok && f.OwnerID != nil && *f.OwnerID == ownerID {
			res = append(res, f)
		}
	}
	return res, nil
}

func (m *MemoryStore) DeleteFile(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, id)
	return nil
}

func (m *MemoryStore) DeleteFilesByOwner(ownerID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for id, f := range m.files {
		if f.OwnerID != nil && *f.OwnerID == ownerID {
			delete(m.files, id)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryStore) IncrementAccessCount(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[id]
	if !ok {
		return nil
	}
	f.AccessCount++
	m.files[id] = f
	return nil
}

func (m *MemoryStore) ListExpiredFiles(cutoff time.Time, limit int) ([]domain.File, error) {
	if limit <= 0 {
		limit = 100
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.File, 0)
	for _, id := range m.fileOrder {
		f, ok := m.files[id]
		if ok && f.ExpiresAt != nil && !f.ExpiresAt.After(cutoff) {
			res = append(res, f)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ExpiresAt.Before(*res[j].ExpiresAt) })
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (m *MemoryStore) AppendContent(fileID, content string) (domain.FileContent, error) {
	sum := sha256.Sum256([]byte(content))
	m.mu.Lock()
	defer m.mu.Unlock()
	versions := m.contents[fileID]
	next := 1
	if len(versions) > 0 {
		next = versions[len(versions)-1].Version + 1
	}
	fc := domain.FileContent{
		FileID:    fileID,
		Version:   next,
		Content:   content,
		Encoding:  "utf-8",
		SizeBytes: int64(len(content)),
		Checksum:  hex.EncodeToString(sum[:]),
		CreatedAt: time.Now().UTC(),
	}
	m.contents[fileID] = append(versions, fc)
	return fc, nil
}

func (m *MemoryStore) GetLatestContent(fileID string) (domain.FileContent, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	versions := m.contents[fileID]
	if len(versions) == 0 {
		return domain.FileContent{}, false, nil
	}
	return versions[len(versions)-1], true, nil
}

func (m *MemoryStore) ListContentVersions(fileID string) ([]domain.FileContent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	versions := m.contents[fileID]
	res := make([]domain.FileContent, len(versions))
	copy(res, versions)
	return res, nil
}

func (m *MemoryStore) DeleteContents(fileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.contents, fileID)
	return nil
}

func (m *MemoryStore) AppendPayment(p domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.UserID] = append(m.payments[p.UserID], p)
	return nil
}

func (m *MemoryStore) ListPaymentsByUser(userID string) ([]domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	history := m.payments[userID]
	res := make([]domain.Payment, len(history))
	copy(res, history)
	return res, nil
}
