package domain

import "time"

type Plan string

const (
	PlanFree       Plan = "free"
	PlanPremium    Plan = "premium"
	PlanEnterprise Plan = "enterprise"
)

// ValidPlan reports whether p is one of the known plan tiers.
func ValidPlan(p Plan) bool {
	switch p {
	case PlanFree, PlanPremium, PlanEnterprise:
		return true
	}
	return false
}

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type EntryType string

const (
	TypeFile   EntryType = "file"
	TypeFolder EntryType = "folder"
)

type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email,omitempty"`
	Username         string    `json:"username"`
	Name             string    `json:"name,omitempty"`
	PasswordHash     string    `json:"-"`
	Plan             Plan      `json:"plan"`
	Role             UserRole  `json:"role"`
	IsBlocked        bool      `json:"isBlocked"`
	AvatarKey        string    `json:"-"`
	ResetToken       string    `json:"-"`
	ResetTokenExpiry time.Time `json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// File is a single entry in the hierarchical store. Type distinguishes
// files from folders; a file's Path must be prefixed by its containing
// folder's Path. OwnerID nil marks an anonymous, ownerless file.
type File struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Type        EntryType         `json:"type"`
	Content     string            `json:"content,omitempty"`
	Language    string            `json:"language,omitempty"`
	SizeBytes   int64             `json:"sizeBytes"`
	OwnerID     *string           `json:"ownerId,omitempty"`
	Path        string            `json:"path"`
	IsPublic    bool              `json:"isPublic"`
	IsBlocked   bool              `json:"isBlocked"`
	ShareCode   string            `json:"shareCode,omitempty"`
	Slug        string            `json:"slug,omitempty"`
	AccessCount int64             `json:"accessCount"`
	ExpiresAt   *time.Time        `json:"expiresAt,omitempty"`
	IsPinned    bool              `json:"isPinned"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// FileContent is one immutable version of a file's content. Versions for a
// given file increase monotonically and are never reused.
type FileContent struct {
	FileID     string    `json:"fileId"`
	Version    int       `json:"version"`
	Content    string    `json:"content"`
	Encoding   string    `json:"encoding"`
	SizeBytes  int64     `json:"sizeBytes"`
	Checksum   string    `json:"checksum"`
	Compressed bool      `json:"compressed"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Payment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	OrderID   string    `json:"orderId"`
	PaymentID string    `json:"paymentId"`
	PlanID    Plan      `json:"planId"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is per-client metadata kept in redis with a TTL; storage-level
// expiry removes the record entirely. UserID empty means anonymous.
type Session struct {
	ID           string            `json:"id"`
	UserID       string            `json:"userId,omitempty"`
	AnonName     string            `json:"anonName,omitempty"`
	IP           string            `json:"ip,omitempty"`
	UserAgent    string            `json:"userAgent,omitempty"`
	LastActivity time.Time         `json:"lastActivity"`
	Data         map[string]string `json:"data,omitempty"`
	ExpiresAt    time.Time         `json:"expiresAt"`
}
