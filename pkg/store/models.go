package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type UserModel struct {
	ID               string  `gorm:"primaryKey"`
	Email            *string `gorm:"uniqueIndex"`
	Username         string  `gorm:"uniqueIndex;not null"`
	Name             string
	PasswordHash     string `gorm:"not null"`
	Plan             string `gorm:"not null"`
	Role             string `gorm:"not null"`
	IsBlocked        bool
	AvatarKey        string
	ResetToken       string
	ResetTokenExpiry *time.Time
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time
}

type FileModel struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Type        string `gorm:"not null;index"`
	Content     string `gorm:"type:text"`
	Language    string
	SizeBytes   int64
	OwnerID     *string `gorm:"index"`
	Path        string  `gorm:"not null;index"`
	IsPublic    bool    `gorm:"index"`
	IsBlocked   bool
	ShareCode   *string `gorm:"uniqueIndex"`
	Slug        *string `gorm:"uniqueIndex"`
	AccessCount int64
	ExpiresAt   *time.Time `gorm:"index"`
	IsPinned    bool
	Metadata    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time      `gorm:"not null"`
	UpdatedAt   time.Time      `gorm:"not null"`
}

type FileContentModel struct {
	FileID     string `gorm:"primaryKey"`
	Version    int    `gorm:"primaryKey"`
	Content    string `gorm:"type:text;not null"`
	Encoding   string
	SizeBytes  int64
	Checksum   string
	Compressed bool
	CreatedAt  time.Time `gorm:"not null"`
}

type PaymentModel struct {
	ID        string    `gorm:"primaryKey"`
	UserID    string    `gorm:"not null;index"`
	OrderID   string    `gorm:"not null"`
	PaymentID string    `gorm:"not null"`
	PlanID    string    `gorm:"not null"`
	Amount    int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}
