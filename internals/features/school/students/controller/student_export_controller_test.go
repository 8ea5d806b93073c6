package controller

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	studentModel "kelasku_backend/internals/features/school/students/model"
)

func TestBuildStudentCSV_Header(t *testing.T) {
	payload, err := buildStudentCSV(nil)
	require.NoError(t, err)

	assert.Equal(t, "No,Nama Lengkap,ID Siswa,Email,Password,Status\n", string(payload))
}

func TestBuildStudentCSV_Rows(t *testing.T) {
	rows := []studentModel.StudentModel{
		{
			FullName:  "Budi Santoso",
			StudentID: "S26038417",
			Email:     "budi.santoso@siswa.kelasku.id",
			BirthDate: time.Date(2012, 5, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			FullName:  "Siti Aminah",
			StudentID: "S26110022",
			Email:     "siti.aminah@siswa.kelasku.id",
			BirthDate: time.Date(2011, 12, 31, 0, 0, 0, 0, time.UTC),
		},
	}

	payload, err := buildStudentCSV(rows)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(payload))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	// password diregenerasi dari tanggal lahir, bukan dari kolom digest
	assert.Equal(t, []string{"1", "Budi Santoso", "S26038417", "budi.santoso@siswa.kelasku.id", "09052012", "Aktif"}, records[1])
	assert.Equal(t, []string{"2", "Siti Aminah", "S26110022", "siti.aminah@siswa.kelasku.id", "31122011", "Aktif"}, records[2])
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "Data Siswa Kelas 7A 31-08-2026.csv", exportFilename(7, "A", now))
}
