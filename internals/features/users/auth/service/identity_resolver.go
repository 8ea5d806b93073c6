// internals/features/users/auth/service/identity_resolver.go
package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"kelasku_backend/internals/constants"
	"kelasku_backend/internals/features/users/auth/repository"
)

/* =======================================================================
   Identity resolver: principal provider → role aplikasi.
   Probe dua tabel sekaligus; guru menang kalau dua-duanya match.
   Timeout dihitung sebagai miss (bukan retry) dan hanya dicatat [WARN].
======================================================================= */

const lookupTimeout = 4 * time.Second

// ErrNoRole: principal tidak ada di tabel guru maupun siswa.
// Dipulangkan apa adanya, tidak boleh di-default-kan jadi role tertentu.
var ErrNoRole = errors.New("tidak terdaftar sebagai guru maupun siswa")

// Profile: satu bentuk untuk dua jalur auth, dibedakan lewat Role.
type Profile struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	Role     string    `json:"role"` // constants.RoleTeacher | constants.RoleStudent
}

// TeacherDirectory dan StudentDirectory diabstraksi supaya resolver
// bisa dites tanpa database.
type TeacherDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*repository.DirectoryEntry, error)
}

type StudentDirectory interface {
	FindActiveByEmail(ctx context.Context, email string) (*repository.StudentCredential, error)
}

type IdentityResolver struct {
	Teachers TeacherDirectory
	Students StudentDirectory
}

func NewIdentityResolver(db *gorm.DB) *IdentityResolver {
	return &IdentityResolver{
		Teachers: repository.TeacherTable{DB: db},
		Students: repository.StudentTable{DB: db},
	}
}

// Resolve memetakan (principal id, email) → Profile ber-role.
// Hasil selalu tepat satu dari {teacher, student, ErrNoRole}.
func (r *IdentityResolver) Resolve(ctx context.Context, principalID uuid.UUID, email string) (*Profile, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	teacherCh := make(chan *repository.DirectoryEntry, 1)
	studentCh := make(chan *repository.StudentCredential, 1)

	go func() {
		if principalID == uuid.Nil {
			teacherCh <- nil
			return
		}
		entry, err := r.Teachers.FindByID(lookupCtx, principalID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("[WARN] resolver: lookup tabel guru gagal (id=%s): %v", principalID, err)
			}
			teacherCh <- nil
			return
		}
		teacherCh <- entry
	}()

	go func() {
		if email == "" {
			studentCh <- nil
			return
		}
		cred, err := r.Students.FindActiveByEmail(lookupCtx, email)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("[WARN] resolver: lookup tabel siswa gagal (email=%s): %v", email, err)
			}
			studentCh <- nil
			return
		}
		studentCh <- cred
	}()

	// Jangan tunggu melebihi lookupTimeout walau directory-nya macet total:
	// channel ber-buffer, goroutine yang telat tinggal ditelantarkan.
	var (
		teacher    *repository.DirectoryEntry
		student    *repository.StudentCredential
		gotTeacher bool
		gotStudent bool
	)
collect:
	for !gotTeacher || !gotStudent {
		select {
		case teacher = <-teacherCh:
			gotTeacher = true
		case student = <-studentCh:
			gotStudent = true
		case <-lookupCtx.Done():
			log.Printf("[WARN] resolver: lookup timeout %s, sisa probe dianggap miss", lookupTimeout)
			break collect
		}
	}

	switch {
	case teacher != nil:
		// guru menang walau email-nya kebetulan ada juga di tabel siswa
		return &Profile{
			ID:       teacher.ID,
			Email:    teacher.Email,
			FullName: teacher.FullName,
			Role:     constants.RoleTeacher,
		}, nil
	case student != nil:
		return &Profile{
			ID:       student.ID,
			Email:    student.Email,
			FullName: student.FullName,
			Role:     constants.RoleStudent,
		}, nil
	default:
		return nil, ErrNoRole
	}
}

// IsTeacher melakukan cek keberadaan segar di tabel guru.
// Dipakai saat sign-out: role TIDAK boleh diambil dari profil cache.
func (r *IdentityResolver) IsTeacher(ctx context.Context, principalID uuid.UUID) bool {
	if principalID == uuid.Nil {
		return false
	}
	lookupCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	ch := make(chan *repository.DirectoryEntry, 1)
	go func() {
		entry, err := r.Teachers.FindByID(lookupCtx, principalID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("[WARN] resolver: cek guru saat sign-out gagal: %v", err)
			}
			ch <- nil
			return
		}
		ch <- entry
	}()

	select {
	case entry := <-ch:
		return entry != nil
	case <-lookupCtx.Done():
		log.Printf("[WARN] resolver: cek guru saat sign-out timeout, dianggap bukan guru")
		return false
	}
}
