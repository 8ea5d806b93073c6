package classes

import (
	"encoding/json"
	"log"
	"os"

	"github.com/google/uuid"
	"gorm.io/gorm"

	classModel "kelasku_backend/internals/features/school/classes/model"
)

type ClassSeed struct {
	Name         string  `json:"name"`
	Grade        int     `json:"grade"`
	Subject      *string `json:"subject"`
	AcademicYear string  `json:"academic_year"`
	Homeroom     *string `json:"homeroom"`
}

func SeedClassesFromJSON(db *gorm.DB, filePath string) {
	log.Println("📥 Membaca file kelas:", filePath)

	file, err := os.ReadFile(filePath)
	if err != nil {
		log.Printf("❌ Gagal membaca file JSON: %v", err)
		return
	}

	var inputs []ClassSeed
	if err := json.Unmarshal(file, &inputs); err != nil {
		log.Printf("❌ Gagal decode JSON: %v", err)
		return
	}

	// pemilik kelas = guru pertama di directory (dev)
	var ownerID uuid.UUID
	if err := db.Table("teachers").Select("id").Order("email ASC").Limit(1).Scan(&ownerID).Error; err != nil || ownerID == uuid.Nil {
		log.Println("⚠️ Tidak ada guru di directory, created_by pakai UUID kosong.")
	}

	for _, data := range inputs {
		var existing classModel.ClassModel
		err := db.Where("grade = ? AND name = ? AND academic_year = ?",
			data.Grade, data.Name, data.AcademicYear).First(&existing).Error
		if err == nil {
			log.Printf("ℹ️ Kelas %d%s (%s) sudah ada, dilewati.", data.Grade, data.Name, data.AcademicYear)
			continue
		}

		m := classModel.ClassModel{
			ID:           uuid.New(),
			Name:         data.Name,
			Grade:        data.Grade,
			Subject:      data.Subject,
			AcademicYear: data.AcademicYear,
			Homeroom:     data.Homeroom,
			IsActive:     true,
			CreatedBy:    ownerID,
		}

		if err := db.Create(&m).Error; err != nil {
			log.Printf("❌ Gagal insert kelas %d%s: %v", data.Grade, data.Name, err)
		} else {
			log.Printf("✅ Berhasil insert kelas %d%s (%s)", data.Grade, data.Name, data.AcademicYear)
		}
	}
}
