package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"kelasku_backend/internals/constants"
	"kelasku_backend/internals/features/users/auth/repository"
)

/* ===================== fake directories ===================== */

// fakeTeacherDir dan fakeStudentDir meniru tabel role tanpa database.
// block=true menahan jawaban sampai context pemanggil selesai.
type fakeTeacherDir struct {
	entry *repository.DirectoryEntry
	err   error
	block bool
}

func (f fakeTeacherDir) FindByID(ctx context.Context, _ uuid.UUID) (*repository.DirectoryEntry, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.entry == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.entry, nil
}

type fakeStudentDir struct {
	cred  *repository.StudentCredential
	err   error
	block bool
}

func (f fakeStudentDir) FindActiveByEmail(ctx context.Context, _ string) (*repository.StudentCredential, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.cred == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.cred, nil
}

func teacherEntry(id uuid.UUID) *repository.DirectoryEntry {
	return &repository.DirectoryEntry{ID: id, Email: "bu.sari@kelasku.id", FullName: "Sari Wulandari"}
}

func studentCred(id uuid.UUID) *repository.StudentCredential {
	return &repository.StudentCredential{
		DirectoryEntry: repository.DirectoryEntry{ID: id, Email: "budi.santoso@siswa.kelasku.id", FullName: "Budi Santoso"},
		PasswordDigest: "digest",
	}
}

/* ===================== Resolve ===================== */

func TestResolve_TeacherOnly(t *testing.T) {
	id := uuid.New()
	r := &IdentityResolver{
		Teachers: fakeTeacherDir{entry: teacherEntry(id)},
		Students: fakeStudentDir{},
	}

	prof, err := r.Resolve(context.Background(), id, "bu.sari@kelasku.id")
	require.NoError(t, err)
	assert.Equal(t, constants.RoleTeacher, prof.Role)
	assert.Equal(t, id, prof.ID)
	assert.Equal(t, "Sari Wulandari", prof.FullName)
}

func TestResolve_StudentOnly(t *testing.T) {
	id := uuid.New()
	r := &IdentityResolver{
		Teachers: fakeTeacherDir{},
		Students: fakeStudentDir{cred: studentCred(id)},
	}

	prof, err := r.Resolve(context.Background(), uuid.New(), "budi.santoso@siswa.kelasku.id")
	require.NoError(t, err)
	assert.Equal(t, constants.RoleStudent, prof.Role)
	assert.Equal(t, id, prof.ID)
	assert.Equal(t, "Budi Santoso", prof.FullName)
}

func TestResolve_TeacherWinsOverStudent(t *testing.T) {
	teacherID := uuid.New()
	studentID := uuid.New()
	r := &IdentityResolver{
		Teachers: fakeTeacherDir{entry: teacherEntry(teacherID)},
		Students: fakeStudentDir{cred: studentCred(studentID)},
	}

	// email yang sama ada di dua tabel: profil guru yang dipakai
	prof, err := r.Resolve(context.Background(), teacherID, "bu.sari@kelasku.id")
	require.NoError(t, err)
	assert.Equal(t, constants.RoleTeacher, prof.Role)
	assert.Equal(t, teacherID, prof.ID)
}

func TestResolve_NeitherTableIsErrNoRole(t *testing.T) {
	r := &IdentityResolver{
		Teachers: fakeTeacherDir{},
		Students: fakeStudentDir{},
	}

	prof, err := r.Resolve(context.Background(), uuid.New(), "asing@mail.id")
	assert.Nil(t, prof)
	assert.ErrorIs(t, err, ErrNoRole)
}

func TestResolve_DirectoryErrorTreatedAsMiss(t *testing.T) {
	id := uuid.New()
	r := &IdentityResolver{
		Teachers: fakeTeacherDir{err: errors.New("connection refused")},
		Students: fakeStudentDir{cred: studentCred(id)},
	}

	// tabel guru tumbang bukan berarti login siswa ikut gagal
	prof, err := r.Resolve(context.Background(), uuid.New(), "budi.santoso@siswa.kelasku.id")
	require.NoError(t, err)
	assert.Equal(t, constants.RoleStudent, prof.Role)
}

func TestResolve_StalledDirectoryReturnsBounded(t *testing.T) {
	r := &IdentityResolver{
		Teachers: fakeTeacherDir{block: true},
		Students: fakeStudentDir{block: true},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	start := time.Now()
	prof, err := r.Resolve(ctx, uuid.New(), "macet@mail.id")
	elapsed := time.Since(start)

	assert.Nil(t, prof)
	assert.ErrorIs(t, err, ErrNoRole, "timeout dihitung sebagai miss, bukan error tersendiri")
	assert.Less(t, elapsed, 2*time.Second, "resolve tidak boleh menggantung melebihi deadline")
}

func TestResolve_NilPrincipalSkipsTeacherProbe(t *testing.T) {
	id := uuid.New()
	r := &IdentityResolver{
		Teachers: fakeTeacherDir{block: true}, // tidak boleh pernah ditunggu
		Students: fakeStudentDir{cred: studentCred(id)},
	}

	prof, err := r.Resolve(context.Background(), uuid.Nil, "budi.santoso@siswa.kelasku.id")
	require.NoError(t, err)
	assert.Equal(t, constants.RoleStudent, prof.Role)
}

/* ===================== IsTeacher ===================== */

func TestIsTeacher(t *testing.T) {
	id := uuid.New()

	t.Run("terdaftar", func(t *testing.T) {
		r := &IdentityResolver{Teachers: fakeTeacherDir{entry: teacherEntry(id)}, Students: fakeStudentDir{}}
		assert.True(t, r.IsTeacher(context.Background(), id))
	})

	t.Run("tidak terdaftar", func(t *testing.T) {
		r := &IdentityResolver{Teachers: fakeTeacherDir{}, Students: fakeStudentDir{}}
		assert.False(t, r.IsTeacher(context.Background(), id))
	})

	t.Run("uuid nil", func(t *testing.T) {
		r := &IdentityResolver{Teachers: fakeTeacherDir{entry: teacherEntry(id)}, Students: fakeStudentDir{}}
		assert.False(t, r.IsTeacher(context.Background(), uuid.Nil))
	})

	t.Run("lookup macet dianggap bukan guru", func(t *testing.T) {
		r := &IdentityResolver{Teachers: fakeTeacherDir{block: true}, Students: fakeStudentDir{}}
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		start := time.Now()
		assert.False(t, r.IsTeacher(ctx, id))
		assert.Less(t, time.Since(start), 2*time.Second)
	})
}
