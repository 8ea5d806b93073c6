// internals/features/users/auth/repository/auth_repository.go
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	authModel "kelasku_backend/internals/features/users/auth/model"
)

/* ====================== DIRECTORY (resolusi role) ====================== */

// DirectoryEntry: baris minimum dari tabel role utk resolusi identitas.
type DirectoryEntry struct {
	ID       uuid.UUID
	Email    string
	FullName string
}

// StudentCredential: entry siswa + digest password utk login lokal.
type StudentCredential struct {
	DirectoryEntry
	PasswordDigest string
}

// TeacherTable membaca tabel teachers (provisioned di backend terkelola).
type TeacherTable struct {
	DB *gorm.DB
}

func (t TeacherTable) FindByID(ctx context.Context, id uuid.UUID) (*DirectoryEntry, error) {
	var row struct {
		ID       uuid.UUID
		Email    string
		FullName string
	}
	err := t.DB.WithContext(ctx).
		Table("teachers").
		Select("id", "email", "full_name").
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &DirectoryEntry{ID: row.ID, Email: row.Email, FullName: row.FullName}, nil
}

// StudentTable membaca tabel students; hanya baris aktif yang dianggap ada.
type StudentTable struct {
	DB *gorm.DB
}

func (s StudentTable) FindActiveByEmail(ctx context.Context, email string) (*StudentCredential, error) {
	var row struct {
		ID       uuid.UUID
		Email    string
		FullName string
		Password string
	}
	err := s.DB.WithContext(ctx).
		Table("students").
		Select("id", "email", "full_name", "password").
		Where("email = ? AND is_active = TRUE", email).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &StudentCredential{
		DirectoryEntry: DirectoryEntry{ID: row.ID, Email: row.Email, FullName: row.FullName},
		PasswordDigest: row.Password,
	}, nil
}

/* ====================== REFRESH TOKEN ====================== */

func CreateRefreshToken(db *gorm.DB, token *authModel.RefreshToken) error {
	return db.Create(token).Error
}

// FindActiveRefreshTokenByHash mencari token hidup (belum revoke, belum expired).
func FindActiveRefreshTokenByHash(db *gorm.DB, tokenHash []byte) (*authModel.RefreshToken, error) {
	var rt authModel.RefreshToken
	err := db.
		Where("token_hash = ? AND revoked_at IS NULL AND expires_at > NOW()", tokenHash).
		First(&rt).Error
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func RevokeRefreshToken(db *gorm.DB, id uuid.UUID) error {
	return db.Model(&authModel.RefreshToken{}).
		Where("id = ?", id).
		Update("revoked_at", time.Now().UTC()).Error
}

// RevokeAllRefreshTokensForUser dipakai saat logout: matikan semua device.
func RevokeAllRefreshTokensForUser(db *gorm.DB, userID uuid.UUID) error {
	return db.Model(&authModel.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", time.Now().UTC()).Error
}

// CleanupExpiredRefreshTokens menghapus baris expired/revoked lama (scheduler).
func CleanupExpiredRefreshTokens(db *gorm.DB) (int64, error) {
	res := db.Exec(`DELETE FROM refresh_tokens WHERE expires_at <= NOW() OR revoked_at IS NOT NULL`)
	return res.RowsAffected, res.Error
}
