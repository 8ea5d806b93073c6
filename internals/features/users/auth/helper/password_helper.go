package helpers

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"kelasku_backend/internals/configs"
)

/* =======================================================================
   Password siswa.
   - Password default/reset = tanggal lahir format DDMMYYYY.
   - Digest = sha256(salt global + plaintext), hex lowercase. Deterministik:
     dipakai utk create, verify, dan regenerate saat export CSV.
   - Catatan risiko: salt global + equality biasa, tidak timing-safe.
     Skema ini kontrak lama yang dipertahankan, jangan diganti diam-diam.
======================================================================= */

// DerivePasswordFromBirthDate mengubah tanggal lahir jadi password 8 digit.
// Contoh: 9 Mei 2012 → "09052012".
func DerivePasswordFromBirthDate(birthDate time.Time) string {
	return fmt.Sprintf("%02d%02d%04d", birthDate.Day(), int(birthDate.Month()), birthDate.Year())
}

// HashPassword menghasilkan digest hex lowercase dari salt+plaintext.
func HashPassword(plain string) string {
	sum := sha256.Sum256([]byte(configs.StudentPasswordSalt + plain))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword mencocokkan kandidat dengan digest tersimpan.
func VerifyPassword(plain, storedDigest string) bool {
	return HashPassword(plain) == storedDigest
}
