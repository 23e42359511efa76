package store

import (
	"time"

	"notebin/pkg/domain"
)

// Store defines persistence operations for users, files, content versions,
// and payment history.
type Store interface {
	// users
	SaveUser(domain.User) error
	GetUserByID(id string) (domain.User, bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByUsername(username string) (domain.User, bool, error)
	HasUserEmail(email string) (bool, error)
	ListUsers() ([]domain.User, error)
	UserCount() (int, error)
	DeleteUser(id string) error

	// files and folders
	SaveFile(domain.File) error
	GetFile(id string) (domain.File, bool, error)
	// GetFileForOwner resolves id and owner in a single lookup so that a
	// wrong id and a wrong owner are indistinguishable to callers.
	GetFileForOwner(id, ownerID string) (domain.File, bool, error)
	GetFileByShareCode(code string) (domain.File, bool, error)
	GetFileBySlug(slug string) (domain.File, bool, error)
	ListFilesByOwner(ownerID string) ([]domain.File, error)
	DeleteFile(id string) error
	// DeleteFilesByOwner removes every entry owned by ownerID and reports
	// how many rows were actually removed.
	DeleteFilesByOwner(ownerID string) (int64, error)
	// IncrementAccessCount bumps the popularity counter. Best-effort:
	// concurrent increments may under-count and that is acceptable.
	IncrementAccessCount(id string) error
	ListExpiredFiles(cutoff time.Time, limit int) ([]domain.File, error)

	// versioned content
	AppendContent(fileID, content string) (domain.FileContent, error)
	GetLatestContent(fileID string) (domain.FileContent, bool, error)
	ListContentVersions(fileID string) ([]domain.FileContent, error)
	DeleteContents(fileID string) error

	// payments
	AppendPayment(domain.Payment) error
	ListPaymentsByUser(userID string) ([]domain.Payment, error)
}

// SessionStore issues and validates session tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	GetUserIDByToken(token string) (string, bool, error)
}

// SessionMetaStore keeps per-client session metadata with a TTL. Expired
// records are removed by the storage layer and never returned.
type SessionMetaStore interface {
	PutSession(s domain.Session, ttl time.Duration) error
	GetSession(id string) (domain.Session, bool, error)
	TouchSession(id string, at time.Time) error
	DeleteSession(id string) error
}
