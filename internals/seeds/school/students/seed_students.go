package students

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	studentModel "kelasku_backend/internals/features/school/students/model"
	studentRepo "kelasku_backend/internals/features/school/students/repository"
	authHelper "kelasku_backend/internals/features/users/auth/helper"
)

type StudentSeed struct {
	FullName     string `json:"full_name"`
	BirthDate    string `json:"birth_date"` // YYYY-MM-DD
	Grade        int    `json:"grade"`
	ClassName    string `json:"class_name"`
	AcademicYear string `json:"academic_year"`
}

func SeedStudentsFromJSON(db *gorm.DB, filePath string) {
	log.Println("📥 Membaca file siswa:", filePath)

	file, err := os.ReadFile(filePath)
	if err != nil {
		log.Printf("❌ Gagal membaca file JSON: %v", err)
		return
	}

	var inputs []StudentSeed
	if err := json.Unmarshal(file, &inputs); err != nil {
		log.Printf("❌ Gagal decode JSON: %v", err)
		return
	}

	ctx := context.Background()

	var ownerID uuid.UUID
	if err := db.Table("teachers").Select("id").Order("email ASC").Limit(1).Scan(&ownerID).Error; err != nil || ownerID == uuid.Nil {
		log.Println("⚠️ Tidak ada guru di directory, created_by pakai UUID kosong.")
	}

	for _, data := range inputs {
		birthDate, err := time.Parse("2006-01-02", data.BirthDate)
		if err != nil {
			log.Printf("❌ Tanggal lahir '%s' tidak valid untuk '%s', dilewati.", data.BirthDate, data.FullName)
			continue
		}

		var count int64
		if err := db.Model(&studentModel.StudentModel{}).
			Where("full_name = ? AND birth_date = ?", data.FullName, birthDate).
			Count(&count).Error; err != nil {
			log.Printf("❌ Gagal cek siswa '%s': %v", data.FullName, err)
			continue
		}
		if count > 0 {
			log.Printf("ℹ️ Siswa '%s' sudah ada, dilewati.", data.FullName)
			continue
		}

		var classID *uuid.UUID
		if data.ClassName != "" {
			var cid uuid.UUID
			err := db.Table("classes").Select("id").
				Where("grade = ? AND name = ? AND academic_year = ?",
					data.Grade, data.ClassName, data.AcademicYear).
				Scan(&cid).Error
			if err != nil || cid == uuid.Nil {
				log.Printf("⚠️ Kelas %d%s (%s) tidak ditemukan, '%s' tanpa kelas.",
					data.Grade, data.ClassName, data.AcademicYear, data.FullName)
			} else {
				classID = &cid
			}
		}

		studentID, err := studentRepo.GenerateStudentID(ctx, db)
		if err != nil {
			log.Printf("❌ Gagal generate ID siswa untuk '%s': %v", data.FullName, err)
			continue
		}
		email, err := studentRepo.GenerateStudentEmail(ctx, db, data.FullName)
		if err != nil {
			log.Printf("❌ Gagal generate email untuk '%s': %v", data.FullName, err)
			continue
		}

		plain := authHelper.DerivePasswordFromBirthDate(birthDate)
		m := studentModel.StudentModel{
			ID:        uuid.New(),
			StudentID: studentID,
			Email:     email,
			Password:  authHelper.HashPassword(plain),
			FullName:  data.FullName,
			BirthDate: birthDate,
			ClassID:   classID,
			IsActive:  true,
			CreatedBy: ownerID,
		}

		if err := db.Create(&m).Error; err != nil {
			log.Printf("❌ Gagal insert siswa '%s': %v", data.FullName, err)
		} else {
			log.Printf("✅ Berhasil insert siswa '%s' (%s / %s)", data.FullName, studentID, email)
		}
	}
}
