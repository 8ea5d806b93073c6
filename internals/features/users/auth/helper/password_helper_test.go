package helpers

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kelasku_backend/internals/configs"
)

func TestDerivePasswordFromBirthDate(t *testing.T) {
	tests := []struct {
		name  string
		birth time.Time
		want  string
	}{
		{"hari dan bulan satu digit di-pad", time.Date(2012, time.May, 9, 0, 0, 0, 0, time.UTC), "09052012"},
		{"dua digit apa adanya", time.Date(2011, time.November, 21, 0, 0, 0, 0, time.UTC), "21112011"},
		{"awal tahun", time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC), "01012010"},
		{"akhir tahun", time.Date(2009, time.December, 31, 0, 0, 0, 0, time.UTC), "31122009"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DerivePasswordFromBirthDate(tt.birth))
		})
	}
}

func TestHashPassword(t *testing.T) {
	digest := HashPassword("09052012")

	require.Len(t, digest, 64)
	assert.Equal(t, strings.ToLower(digest), digest, "digest harus hex lowercase")

	// Deterministik: create, login, dan regenerate saat export CSV
	// harus menghasilkan digest yang sama persis.
	assert.Equal(t, digest, HashPassword("09052012"))

	sum := sha256.Sum256([]byte(configs.StudentPasswordSalt + "09052012"))
	assert.Equal(t, hex.EncodeToString(sum[:]), digest)
}

func TestVerifyPassword(t *testing.T) {
	stored := HashPassword("21112011")

	assert.True(t, VerifyPassword("21112011", stored))
	assert.False(t, VerifyPassword("21112012", stored))
	assert.False(t, VerifyPassword("", stored))
	assert.False(t, VerifyPassword("21112011", ""))
	assert.False(t, VerifyPassword("21112011", strings.ToUpper(stored)), "digest uppercase bukan milik kita")
}

func TestDeriveThenVerifyRoundTrip(t *testing.T) {
	birth := time.Date(2012, time.May, 9, 0, 0, 0, 0, time.UTC)
	plain := DerivePasswordFromBirthDate(birth)
	assert.True(t, VerifyPassword(plain, HashPassword(plain)))
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"guru@sekolah.id",
		"budi.santoso@siswa.kelasku.id",
		"a+b@mail.example.com",
	}
	for _, e := range valid {
		assert.True(t, IsValidEmail(e), e)
	}

	invalid := []string{
		"",
		"tanpa-at.example.com",
		"spasi di@mail.com",
		"user@",
		"@domain.id",
		"user@domain",
	}
	for _, e := range invalid {
		assert.False(t, IsValidEmail(e), e)
	}
}

func TestValidateLoginInput(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantMsg  string
	}{
		{"lengkap dan valid", "guru@sekolah.id", "rahasia", ""},
		{"email kosong", "", "rahasia", "Email wajib diisi"},
		{"email hanya spasi", "   ", "rahasia", "Email wajib diisi"},
		{"format email salah", "bukan-email", "rahasia", "Format email tidak valid"},
		{"password kosong", "guru@sekolah.id", "", "Password wajib diisi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, ValidateTeacherLoginInput(tt.email, tt.password))
			assert.Equal(t, tt.wantMsg, ValidateStudentLoginInput(tt.email, tt.password))
		})
	}
}
