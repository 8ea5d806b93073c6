// internals/features/school/students/dto/student_dto_test.go
package dto

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "kelasku_backend/internals/features/school/students/model"
)

func strPtr(s string) *string { return &s }

func TestCreateStudentRequest_ParseBirthDate(t *testing.T) {
	t.Run("format DATE valid", func(t *testing.T) {
		r := CreateStudentRequest{BirthDate: "2012-05-09"}
		bd, err := r.ParseBirthDate()
		require.NoError(t, err)
		assert.Equal(t, 2012, bd.Year())
		assert.Equal(t, time.May, bd.Month())
		assert.Equal(t, 9, bd.Day())
	})

	t.Run("spasi di ujung ditoleransi", func(t *testing.T) {
		r := CreateStudentRequest{BirthDate: "  2012-05-09  "}
		_, err := r.ParseBirthDate()
		assert.NoError(t, err)
	})

	t.Run("format lain ditolak", func(t *testing.T) {
		for _, raw := range []string{"09-05-2012", "2012/05/09", "09052012", ""} {
			r := CreateStudentRequest{BirthDate: raw}
			_, err := r.ParseBirthDate()
			assert.Error(t, err, "input %q", raw)
		}
	})
}

func TestCreateStudentRequest_ToModel(t *testing.T) {
	teacherID := uuid.New()
	classID := uuid.New()
	bd := time.Date(2012, 5, 9, 0, 0, 0, 0, time.UTC)

	r := CreateStudentRequest{
		FullName: "  Budi Santoso  ",
		Phone:    strPtr("  0812-3456  "),
		Address:  strPtr("   "),
		ClassID:  &classID,
	}

	m := r.ToModel(teacherID, "S-2608-0001", "s-2608-0001@siswa.kelasku.id", "digest", bd)

	assert.Equal(t, "Budi Santoso", m.FullName)
	assert.Equal(t, "S-2608-0001", m.StudentID)
	assert.Equal(t, "s-2608-0001@siswa.kelasku.id", m.Email)
	assert.Equal(t, "digest", m.Password)
	assert.True(t, m.BirthDate.Equal(bd))
	assert.True(t, m.IsActive)
	assert.Equal(t, teacherID, m.CreatedBy)

	require.NotNil(t, m.Phone)
	assert.Equal(t, "0812-3456", *m.Phone)
	// address cuma spasi dianggap tidak dikirim
	assert.Nil(t, m.Address)
	require.NotNil(t, m.ClassID)
	assert.Equal(t, classID, *m.ClassID)
}

func TestUpdateStudentRequest_ApplyToModel(t *testing.T) {
	baseBirth := time.Date(2012, 5, 9, 0, 0, 0, 0, time.UTC)
	phone := "0811"
	baseModel := func() *model.StudentModel {
		return &model.StudentModel{
			FullName:  "Budi Santoso",
			BirthDate: baseBirth,
			Phone:     &phone,
		}
	}

	t.Run("request kosong tidak mengubah apa pun", func(t *testing.T) {
		m := baseModel()
		r := UpdateStudentRequest{}
		changed, err := r.ApplyToModel(m)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, "Budi Santoso", m.FullName)
		require.NotNil(t, m.Phone)
	})

	t.Run("tanggal lahir sama bukan perubahan", func(t *testing.T) {
		m := baseModel()
		r := UpdateStudentRequest{BirthDate: strPtr("2012-05-09")}
		changed, err := r.ApplyToModel(m)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("tanggal lahir beda menandai perubahan", func(t *testing.T) {
		m := baseModel()
		r := UpdateStudentRequest{BirthDate: strPtr("2011-12-31")}
		changed, err := r.ApplyToModel(m)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, 2011, m.BirthDate.Year())
	})

	t.Run("tanggal lahir rusak gagal", func(t *testing.T) {
		m := baseModel()
		r := UpdateStudentRequest{BirthDate: strPtr("31-12-2011")}
		_, err := r.ApplyToModel(m)
		assert.Error(t, err)
	})

	t.Run("string kosong menghapus field opsional", func(t *testing.T) {
		m := baseModel()
		r := UpdateStudentRequest{Phone: strPtr("   "), Address: strPtr("")}
		_, err := r.ApplyToModel(m)
		require.NoError(t, err)
		assert.Nil(t, m.Phone)
		assert.Nil(t, m.Address)
	})

	t.Run("class_id nil-uuid melepas siswa dari kelas", func(t *testing.T) {
		old := uuid.New()
		m := baseModel()
		m.ClassID = &old

		nilID := uuid.Nil
		r := UpdateStudentRequest{ClassID: &nilID}
		_, err := r.ApplyToModel(m)
		require.NoError(t, err)
		assert.Nil(t, m.ClassID)
	})

	t.Run("class_id valid dipindah", func(t *testing.T) {
		m := baseModel()
		newID := uuid.New()
		r := UpdateStudentRequest{ClassID: &newID}
		_, err := r.ApplyToModel(m)
		require.NoError(t, err)
		require.NotNil(t, m.ClassID)
		assert.Equal(t, newID, *m.ClassID)
		// model pegang salinan, bukan pointer milik request
		assert.NotSame(t, r.ClassID, m.ClassID)
	})

	t.Run("nama dirapikan", func(t *testing.T) {
		m := baseModel()
		r := UpdateStudentRequest{FullName: strPtr("  Budi S.  ")}
		_, err := r.ApplyToModel(m)
		require.NoError(t, err)
		assert.Equal(t, "Budi S.", m.FullName)
	})
}

func TestNewStudentResponse(t *testing.T) {
	assert.Nil(t, NewStudentResponse(nil))

	classID := uuid.New()
	m := &model.StudentModel{
		ID:        uuid.New(),
		StudentID: "S-2608-0001",
		Email:     "s-2608-0001@siswa.kelasku.id",
		FullName:  "Budi Santoso",
		BirthDate: time.Date(2012, 5, 9, 0, 0, 0, 0, time.UTC),
		ClassID:   &classID,
		IsActive:  true,
	}

	resp := NewStudentResponse(m)
	require.NotNil(t, resp)
	assert.Equal(t, "2012-05-09", resp.BirthDate)
	assert.Equal(t, m.StudentID, resp.StudentID)
	assert.Equal(t, m.Email, resp.Email)
	require.NotNil(t, resp.ClassID)
	assert.Equal(t, classID, *resp.ClassID)
}
