package constants

import "fmt"

// Role utama aplikasi. Guru datang dari identity provider,
// siswa dari tabel kredensial lokal.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Halaman tujuan per role + fallback login (dipakai route guard).
const (
	LandingTeacher = "/guru"
	LandingStudent = "/siswa"
	LoginPath      = "/masuk"
)

// Template pesan error role
const (
	ErrOnlyTeachersCanAccess = "❌ Hanya guru yang boleh mengakses fitur %s."
	ErrOnlyStudentsCanAccess = "❌ Hanya siswa yang boleh mengakses fitur %s."
)

func RoleErrorTeacher(feature string) string {
	return fmt.Sprintf(ErrOnlyTeachersCanAccess, feature)
}

func RoleErrorStudent(feature string) string {
	return fmt.Sprintf(ErrOnlyStudentsCanAccess, feature)
}

// RoleError menyusun pesan tolak akses untuk role yang disyaratkan.
func RoleError(requiredRole string) string {
	switch requiredRole {
	case RoleTeacher:
		return RoleErrorTeacher("ini")
	case RoleStudent:
		return RoleErrorStudent("ini")
	default:
		return "❌ Anda tidak berhak mengakses fitur ini."
	}
}

// Landing mengembalikan halaman tujuan untuk sebuah role.
func Landing(role string) string {
	switch role {
	case RoleTeacher:
		return LandingTeacher
	case RoleStudent:
		return LandingStudent
	default:
		return LoginPath
	}
}

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleTeacher,
		RoleStudent,
	}

	TeacherOnly = []string{
		RoleTeacher,
	}

	StudentOnly = []string{
		RoleStudent,
	}
)
