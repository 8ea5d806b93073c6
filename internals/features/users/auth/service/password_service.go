package service

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	authHelper "kelasku_backend/internals/features/users/auth/helper"
)

// ========================== RESET PASSWORD SISWA ==========================
// Password siswa selalu diturunkan dari tanggal lahir (DDMMYYYY), jadi
// reset = derive ulang + rehash. Plaintext dikembalikan sekali ke guru
// pemanggil utk disampaikan ke siswa; DB hanya menyimpan digest.
//
// Guru tidak punya password lokal: akun guru dikelola identity provider.

var ErrStudentNotFound = errors.New("siswa tidak ditemukan")

// ResetStudentPassword menderive ulang password dari birth_date siswa,
// menimpa digest di DB, dan mengembalikan plaintext barunya.
func ResetStudentPassword(db *gorm.DB, studentID uuid.UUID) (string, error) {
	var row struct {
		BirthDate time.Time
	}
	err := db.Table("students").
		Select("birth_date").
		Where("id = ?", studentID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrStudentNotFound
		}
		return "", err
	}

	plain := authHelper.DerivePasswordFromBirthDate(row.BirthDate)
	digest := authHelper.HashPassword(plain)

	res := db.Table("students").
		Where("id = ?", studentID).
		Updates(map[string]any{
			"password":   digest,
			"updated_at": nowUTC(),
		})
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return "", ErrStudentNotFound
	}

	log.Printf("[INFO] password siswa %s direset dari tanggal lahir", studentID)
	return plain, nil
}
