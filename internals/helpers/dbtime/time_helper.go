// file: internals/helpers/dbtime/time_helper.go
package dbtime

import (
	"os"
	"strings"
	"sync"
	"time"
)

// Sekolah tunggal, satu timezone. Default Asia/Jakarta, bisa dioverride
// lewat env SCHOOL_TZ (nama IANA, mis. "Asia/Makassar").

var (
	locOnce   sync.Once
	schoolLoc *time.Location
)

func SchoolLocation() *time.Location {
	locOnce.Do(func() {
		name := strings.TrimSpace(os.Getenv("SCHOOL_TZ"))
		if name == "" {
			name = "Asia/Jakarta"
		}
		if loc, err := time.LoadLocation(name); err == nil {
			schoolLoc = loc
			return
		}
		schoolLoc = time.UTC
	})
	return schoolLoc
}

// ToSchoolTime mengonversi waktu (biasanya dari DB = UTC) ke timezone sekolah.
// Kalau t.IsZero() → dikembalikan apa adanya.
func ToSchoolTime(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.In(SchoolLocation())
}

// Versi pointer, biar gampang dipakai di DTO yg pakai *time.Time
func ToSchoolTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := ToSchoolTime(*t)
	return &v
}

// NowInSchool: "sekarang" menurut jam sekolah.
func NowInSchool() time.Time {
	return time.Now().In(SchoolLocation())
}
