// internals/features/school/students/repository/student_repository.go
package repository

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"os"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	helper "kelasku_backend/internals/helpers"
)

/* =======================================================
   Generator kredensial siswa.
   student_id & email idealnya digenerate fungsi SQL di DB
   (generate_student_id / generate_student_email) supaya
   atomik antar instance. Kalau fungsinya belum terpasang,
   fallback lokal + cek unik manual.
======================================================= */

const defaultStudentEmailDomain = "siswa.kelasku.id"

var studentMeta struct {
	once             sync.Once
	HasIDFunction    bool
	HasEmailFunction bool
}

func prewarmStudentMeta(db *gorm.DB) {
	studentMeta.once.Do(func() {
		studentMeta.HasIDFunction = quickHasFunction(db, "generate_student_id")
		studentMeta.HasEmailFunction = quickHasFunction(db, "generate_student_email")
		if !studentMeta.HasIDFunction || !studentMeta.HasEmailFunction {
			log.Printf("[WARN] fungsi generator siswa belum lengkap (id=%v email=%v); pakai fallback lokal",
				studentMeta.HasIDFunction, studentMeta.HasEmailFunction)
		}
	})
}

func quickHasFunction(db *gorm.DB, fn string) bool {
	if db == nil || fn == "" {
		return false
	}
	var exists bool
	_ = db.Raw(`SELECT EXISTS (SELECT 1 FROM pg_proc WHERE proname = ?)`, fn).Scan(&exists).Error
	return exists
}

func randDigits(n int) string {
	const digits = "0123456789"
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			b[i] = '0'
			continue
		}
		b[i] = digits[idx.Int64()]
	}
	return string(b)
}

// GenerateStudentID menghasilkan ID siswa unik, format fallback:
// S<YY><6 digit acak>, contoh S26038417.
func GenerateStudentID(ctx context.Context, db *gorm.DB) (string, error) {
	prewarmStudentMeta(db)

	if studentMeta.HasIDFunction {
		var id string
		if err := db.WithContext(ctx).Raw(`SELECT generate_student_id()`).Scan(&id).Error; err == nil && strings.TrimSpace(id) != "" {
			return strings.TrimSpace(id), nil
		} else if err != nil {
			log.Printf("[WARN] generate_student_id() gagal, fallback lokal: %v", err)
		}
	}

	year := time.Now().Format("06")
	for i := 0; i < 5; i++ {
		candidate := "S" + year + randDigits(6)
		var count int64
		if err := db.WithContext(ctx).Table("students").
			Where("student_id = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("gagal menemukan student_id unik")
}

// GenerateStudentEmail menghasilkan email siswa unik dari nama lengkap.
// Fallback: nama di-slug lalu pakai titik, plus 2 digit acak kalau tabrakan.
// Domain dioverride via env STUDENT_EMAIL_DOMAIN.
func GenerateStudentEmail(ctx context.Context, db *gorm.DB, fullName string) (string, error) {
	prewarmStudentMeta(db)

	if studentMeta.HasEmailFunction {
		var email string
		if err := db.WithContext(ctx).Raw(`SELECT generate_student_email(?)`, fullName).Scan(&email).Error; err == nil && strings.TrimSpace(email) != "" {
			return strings.ToLower(strings.TrimSpace(email)), nil
		} else if err != nil {
			log.Printf("[WARN] generate_student_email() gagal, fallback lokal: %v", err)
		}
	}

	domain := strings.TrimSpace(os.Getenv("STUDENT_EMAIL_DOMAIN"))
	if domain == "" {
		domain = defaultStudentEmailDomain
	}

	local := strings.ReplaceAll(helper.Slugify(fullName, 40), "-", ".")
	candidate := local + "@" + domain
	for i := 0; i < 5; i++ {
		var count int64
		if err := db.WithContext(ctx).Table("students").
			Where("LOWER(email) = ?", strings.ToLower(candidate)).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = local + randDigits(2) + "@" + domain
	}
	return "", fmt.Errorf("gagal menemukan email unik untuk %q", fullName)
}
