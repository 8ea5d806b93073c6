package teachers

import (
	"encoding/json"
	"log"
	"os"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TeacherSeed struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// SeedTeachersFromJSON mengisi tabel directory teachers untuk dev.
// Di production tabel ini di-provision backend terkelola, jadi insert
// dibuat idempotent (skip kalau email sudah ada).
func SeedTeachersFromJSON(db *gorm.DB, filePath string) {
	log.Println("📥 Membaca file guru:", filePath)

	file, err := os.ReadFile(filePath)
	if err != nil {
		log.Printf("❌ Gagal membaca file JSON: %v", err)
		return
	}

	var inputs []TeacherSeed
	if err := json.Unmarshal(file, &inputs); err != nil {
		log.Printf("❌ Gagal decode JSON: %v", err)
		return
	}

	for _, data := range inputs {
		var count int64
		if err := db.Table("teachers").Where("email = ?", data.Email).Count(&count).Error; err != nil {
			log.Printf("❌ Gagal cek guru '%s': %v", data.Email, err)
			continue
		}
		if count > 0 {
			log.Printf("ℹ️ Guru dengan email '%s' sudah ada, dilewati.", data.Email)
			continue
		}

		id := uuid.New()
		if data.ID != "" {
			parsed, err := uuid.Parse(data.ID)
			if err != nil {
				log.Printf("⚠️ ID guru '%s' tidak valid, pakai UUID baru.", data.ID)
			} else {
				id = parsed
			}
		}

		err := db.Exec(
			"INSERT INTO teachers (id, email, full_name) VALUES (?, ?, ?)",
			id, data.Email, data.FullName,
		).Error
		if err != nil {
			log.Printf("❌ Gagal insert guru '%s': %v", data.Email, err)
		} else {
			log.Printf("✅ Berhasil insert guru '%s' (id=%s)", data.Email, id)
		}
	}
}
