// internals/features/users/auth/service/token_store.go
package service

import (
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	authModel "kelasku_backend/internals/features/users/auth/model"
	authRepo "kelasku_backend/internals/features/users/auth/repository"
)

// RefreshTokenStore: akses baris refresh token di balik interface kecil,
// pola yang sama dengan TeacherDirectory/StudentDirectory di resolver.
// Default (nil di Deps) jatuh ke implementasi GORM.
type RefreshTokenStore interface {
	Create(rt *authModel.RefreshToken) error
	FindActiveByHash(tokenHash []byte) (*authModel.RefreshToken, error)
	Revoke(id uuid.UUID) error
	RevokeAllForUser(userID uuid.UUID) error
}

type gormTokenStore struct{ db *gorm.DB }

// Create insert refresh_token dengan latency lebih rendah.
// Aman untuk token (konsekuensi: kemungkinan kecil lose jika crash tepat
// sesudah commit).
func (s gormTokenStore) Create(rt *authModel.RefreshToken) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		// turunkan sinkronisasi walau cuma untuk transaksi ini
		if err := tx.Exec(`SET LOCAL synchronous_commit = OFF`).Error; err != nil {
			log.Printf("[WARN] set synchronous_commit=OFF failed: %v", err)
		}
		return authRepo.CreateRefreshToken(tx, rt)
	})
}

func (s gormTokenStore) FindActiveByHash(tokenHash []byte) (*authModel.RefreshToken, error) {
	return authRepo.FindActiveRefreshTokenByHash(s.db, tokenHash)
}

func (s gormTokenStore) Revoke(id uuid.UUID) error {
	return authRepo.RevokeRefreshToken(s.db, id)
}

func (s gormTokenStore) RevokeAllForUser(userID uuid.UUID) error {
	return authRepo.RevokeAllRefreshTokensForUser(s.db, userID)
}

func (d *Deps) tokenStore(db *gorm.DB) RefreshTokenStore {
	if d != nil && d.Tokens != nil {
		return d.Tokens
	}
	return gormTokenStore{db: db}
}
