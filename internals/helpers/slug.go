package helper

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify menurunkan teks bebas menjadi [a-z0-9] dipisah strip tunggal.
// Dipakai repository siswa untuk local-part email fallback. Diakritik
// dilepas dulu (é → e), sisanya non-alfanumerik jadi pemisah. Hasil
// kosong jatuh ke "item"; maxLen <= 0 berarti batas default 100.
func Slugify(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = 100
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range norm.NFD.String(strings.ToLower(s)) {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining mark sisa dekomposisi diakritik
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
	}

	out := b.String()
	if len(out) > maxLen {
		out = strings.TrimRight(out[:maxLen], "-")
	}
	if out == "" {
		return "item"
	}
	return out
}
