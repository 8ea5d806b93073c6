package helpers

import (
	"regexp"
	"strings"
)

// Validasi Email (regex simple)
func IsValidEmail(email string) bool {
	re := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	return re.MatchString(email)
}

// ValidateTeacherLoginInput memeriksa payload login guru sebelum ke provider.
func ValidateTeacherLoginInput(email, password string) string {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		return "Email wajib diisi"
	case !IsValidEmail(email):
		return "Format email tidak valid"
	case password == "":
		return "Password wajib diisi"
	}
	return ""
}

// ValidateStudentLoginInput memeriksa payload login siswa.
func ValidateStudentLoginInput(email, password string) string {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		return "Email wajib diisi"
	case !IsValidEmail(email):
		return "Format email tidak valid"
	case password == "":
		return "Password wajib diisi"
	}
	return ""
}
