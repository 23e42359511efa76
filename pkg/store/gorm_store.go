package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
	"notebin/pkg/domain"
)

const migrateLockID int64 = 52415241

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&UserModel{}, &FileModel{}, &FileContentModel{}, &PaymentModel{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		if err := tx.Exec(`
			DO $$
			BEGIN
				DELETE FROM file_content_models c
				WHERE NOT EXISTS (SELECT 1 FROM file_models f WHERE f.id = c.file_id);
				IF NOT EXISTS (
					SELECT 1 FROM information_schema.table_constraints
					WHERE table_schema = 'public'
					AND table_name = 'payment_models'
					AND constraint_name = 'payment_models_user_id_fkey'
				) THEN
					ALTER TABLE payment_models
					ADD CONSTRAINT payment_models_user_id_fkey
					FOREIGN KEY (user_id) REFERENCES user_models(id) ON DELETE CASCADE;
				END IF;
			END $$;
		`).Error; err != nil {
			return fmt.Errorf("ensure foreign keys: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// SaveUser registers or updates a user.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "username", "name", "password_hash", "plan", "role", "is_blocked", "avatar_key", "reset_token", "reset_token_expiry", "updated_at"}),
	}).Create(&model).Error
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByUsername looks up a user by username.
func (s *GormStore) GetUserByUsername(username string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("username = ?", username).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// HasUserEmail checks if email exists.
func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListUsers returns all users ordered by created_at.
func (s *GormStore) ListUsers() ([]domain.User, error) {
	var models []UserModel
	if err := s.db.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.User, 0, len(models))
	for _, m := range models {
		res = append(res, userFromModel(m))
	}
	return res, nil
}

// UserCount returns number of users.
func (s *GormStore) UserCount() (int, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// DeleteUser removes the user record. Payment rows go with it via FK
// cascade; owned files are removed separately by the caller.
func (s *GormStore) DeleteUser(id string) error {
	return s.db.Delete(&UserModel{}, "id = ?", id).Error
}

// SaveFile stores or updates a file or folder entry.
func (s *GormStore) SaveFile(f domain.File) error {
	model := fileToModel(f)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "type", "content", "language", "size_bytes", "owner_id", "path", "is_public", "is_blocked", "share_code", "slug", "expires_at", "is_pinned", "metadata", "updated_at"}),
	}).Create(&model).Error
}

// GetFile retrieves an entry by ID.
func (s *GormStore) GetFile(id string) (domain.File, bool, error) {
	var model FileModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.File{}, false, nil
		}
		return domain.File{}, false, err
	}
	return fileFromModel(model), true, nil
}

// GetFileForOwner retrieves an entry by ID and owner in one query.
func (s *GormStore) GetFileForOwner(id, ownerID string) (domain.File, bool, error) {
	var model FileModel
	if err := s.db.Where("id = ? AND owner_id = ?", id, ownerID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.File{}, false, nil
		}
		return domain.File{}, false, err
	}
	return fileFromModel(model), true, nil
}

// GetFileByShareCode retrieves an entry by its share code.
func (s *GormStore) GetFileByShareCode(code string) (domain.File, bool, error) {
	var model FileModel
	if err := s.db.Where("share_code = ?", code).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.File{}, false, nil
		}
		return domain.File{}, false, err
	}
	return fileFromModel(model), true, nil
}

// GetFileBySlug retrieves an entry by its slug alias.
func (s *GormStore) GetFileBySlug(slug string) (domain.File, bool, error) {
	var model FileModel
	if err := s.db.Where("slug = ?", slug).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.File{}, false, nil
		}
		return domain.File{}, false, err
	}
	return fileFromModel(model), true, nil
}

// ListFilesByOwner returns entries owned by ownerID ordered by created_at.
func (s *GormStore) ListFilesByOwner(ownerID string) ([]domain.File, error) {
	var models []FileModel
	if err := s.db.Where("owner_id = ?", ownerID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.File, 0, len(models))
	for _, m := range models {
		res = append(res, fileFromModel(m))
	}
	return res, nil
}

// DeleteFile removes a single entry.
func (s *GormStore) DeleteFile(id string) error {
	return s.db.Delete(&FileModel{}, "id = ?", id).Error
}

// DeleteFilesByOwner removes every entry owned by ownerID and returns the
// number of rows removed. Content versions are reaped asynchronously.
func (s *GormStore) DeleteFilesByOwner(ownerID string) (int64, error) {
	tx := s.db.Delete(&FileModel{}, "owner_id = ?", ownerID)
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}

// IncrementAccessCount bumps the counter in a single UPDATE without
// read-modify-write. Races under-count occasionally; tolerated.
func (s *GormStore) IncrementAccessCount(id string) error {
	return s.db.Model(&FileModel{}).
		Where("id = ?", id).
		UpdateColumn("access_count", gorm.Expr("access_count + ?", 1)).Error
}

// ListExpiredFiles returns entries whose expiry has passed.
func (s *GormStore) ListExpiredFiles(cutoff time.Time, limit int) ([]domain.File, error) {
	if limit <= 0 {
		limit = 100
	}
	var models []FileModel
	if err := s.db.Where("expires_at IS NOT NULL AND expires_at <= ?", cutoff.UTC()).
		Order("expires_at ASC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.File, 0, len(models))
	for _, m := range models {
		res = append(res, fileFromModel(m))
	}
	return res, nil
}

// AppendContent writes the next content version for a file. Version
// assignment happens inside a transaction so numbers are monotonic and
// never reused.
func (s *GormStore) AppendContent(fileID, content string) (domain.FileContent, error) {
	sum := sha256.Sum256([]byte(content))
	model := FileContentModel{
		FileID:    fileID,
		Content:   content,
		Encoding:  "utf-8",
		SizeBytes: int64(len(content)),
		Checksum:  hex.EncodeToString(sum[:]),
		CreatedAt: time.Now().UTC(),
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var current int
		if err := tx.Raw("SELECT COALESCE(MAX(version), 0) FROM file_content_models WHERE file_id = ?", fileID).Scan(&current).Error; err != nil {
			return err
		}
		model.Version = current + 1
		return tx.Create(&model).Error
	})
	if err != nil {
		return domain.FileContent{}, err
	}
	return contentFromModel(model), nil
}

// GetLatestContent returns the newest content version for a file.
func (s *GormStore) GetLatestContent(fileID string) (domain.FileContent, bool, error) {
	var model FileContentModel
	if err := s.db.Where("file_id = ?", fileID).Order("version DESC").First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.FileContent{}, false, nil
		}
		return domain.FileContent{}, false, err
	}
	return contentFromModel(model), true, nil
}

// ListContentVersions returns all versions for a file, oldest first.
func (s *GormStore) ListContentVersions(fileID string) ([]domain.FileContent, error) {
	var models []FileContentModel
	if err := s.db.Where("file_id = ?", fileID).Order("version ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.FileContent, 0, len(models))
	for _, m := range models {
		res = append(res, contentFromModel(m))
	}
	return res, nil
}

// DeleteContents removes every content version for a file. Idempotent.
func (s *GormStore) DeleteContents(fileID string) error {
	return s.db.Delete(&FileContentModel{}, "file_id = ?", fileID).Error
}

// AppendPayment records one payment-history entry.
func (s *GormStore) AppendPayment(p domain.Payment) error {
	model := paymentToModel(p)
	return s.db.Create(&model).Error
}

// ListPaymentsByUser returns a user's payment history, oldest first.
func (s *GormStore) ListPaymentsByUser(userID string) ([]domain.Payment, error) {
	var models []PaymentModel
	if err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Payment, 0, len(models))
	for _, m := range models {
		res = append(res, paymentFromModel(m))
	}
	return res, nil
}

func userToModel(u domain.User) UserModel {
	var email *string
	if strings.TrimSpace(u.Email) != "" {
		value := strings.TrimSpace(u.Email)
		email = &value
	}
	var resetExpiry *time.Time
	if !u.ResetTokenExpiry.IsZero() {
		value := u.ResetTokenExpiry.UTC()
		resetExpiry = &value
	}
	return UserModel{
		ID:               u.ID,
		Email:            email,
		Username:         u.Username,
		Name:             u.Name,
		PasswordHash:     u.PasswordHash,
		Plan:             string(u.Plan),
		Role:             string(u.Role),
		IsBlocked:        u.IsBlocked,
		AvatarKey:        u.AvatarKey,
		ResetToken:       u.ResetToken,
		ResetTokenExpiry: resetExpiry,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	email := ""
	if m.Email != nil {
		email = *m.Email
	}
	var resetExpiry time.Time
	if m.ResetTokenExpiry != nil {
		resetExpiry = *m.ResetTokenExpiry
	}
	plan := domain.Plan(m.Plan)
	if plan == "" {
		plan = domain.PlanFree
	}
	return domain.User{
		ID:               m.ID,
		Email:            email,
		Username:         m.Username,
		Name:             m.Name,
		PasswordHash:     m.PasswordHash,
		Plan:             plan,
		Role:             domain.UserRole(m.Role),
		IsBlocked:        m.IsBlocked,
		AvatarKey:        m.AvatarKey,
		ResetToken:       m.ResetToken,
		ResetTokenExpiry: resetExpiry,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func fileToModel(f domain.File) FileModel {
	var shareCode *string
	if strings.TrimSpace(f.ShareCode) != "" {
		value := strings.TrimSpace(f.ShareCode)
		shareCode = &value
	}
	var slug *string
	if strings.TrimSpace(f.Slug) != "" {
		value := strings.TrimSpace(f.Slug)
		slug = &value
	}
	meta, _ := json.Marshal(f.Metadata)
	if f.Metadata == nil {
		meta = nil
	}
	return FileModel{
		ID:          f.ID,
		Name:        f.Name,
		Type:        string(f.Type),
		Content:     f.Content,
		Language:    f.Language,
		SizeBytes:   f.SizeBytes,
		OwnerID:     f.OwnerID,
		Path:        f.Path,
		IsPublic:    f.IsPublic,
		IsBlocked:   f.IsBlocked,
		ShareCode:   shareCode,
		Slug:        slug,
		AccessCount: f.AccessCount,
		ExpiresAt:   f.ExpiresAt,
		IsPinned:    f.IsPinned,
		Metadata:    meta,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func fileFromModel(m FileModel) domain.File {
	shareCode := ""
	if m.ShareCode != nil {
		shareCode = *m.ShareCode
	}
	slug := ""
	if m.Slug != nil {
		slug = *m.Slug
	}
	var meta map[string]string
	if len(m.Metadata) > 0 {
		_ = json.Unmarshal(m.Metadata, &meta)
	}
	return domain.File{
		ID:          m.ID,
		Name:        m.Name,
		Type:        domain.EntryType(m.Type),
		Content:     m.Content,
		Language:    m.Language,
		SizeBytes:   m.SizeBytes,
		OwnerID:     m.OwnerID,
		Path:        m.Path,
		IsPublic:    m.IsPublic,
		IsBlocked:   m.IsBlocked,
		ShareCode:   shareCode,
		Slug:        slug,
		AccessCount: m.AccessCount,
		ExpiresAt:   m.ExpiresAt,
		IsPinned:    m.IsPinned,
		Metadata:    meta,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func contentFromModel(m FileContentModel) domain.FileContent {
	return domain.FileContent{
		FileID:     m.FileID,
		Version:    m.Version,
		Content:    m.Content,
		Encoding:   m.Encoding,
		SizeBytes:  m.SizeBytes,
		Checksum:   m.Checksum,
		Compressed: m.Compressed,
		CreatedAt:  m.CreatedAt,
	}
}

func paymentToModel(p domain.Payment) PaymentModel {
	return PaymentModel{
		ID:        p.ID,
		UserID:    p.UserID,
		OrderID:   p.OrderID,
		PaymentID: p.PaymentID,
		PlanID:    string(p.PlanID),
		Amount:    p.Amount,
		CreatedAt: p.CreatedAt,
	}
}

func paymentFromModel(m PaymentModel) domain.Payment {
	return domain.Payment{
		ID:        m.ID,
		UserID:    m.UserID,
		OrderID:   m.OrderID,
		PaymentID: m.PaymentID,
		PlanID:    domain.Plan(m.PlanID),
		Amount:    m.Amount,
		CreatedAt: m.CreatedAt,
	}
}
