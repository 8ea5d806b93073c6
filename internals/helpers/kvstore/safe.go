// file: internals/helpers/kvstore/safe.go
package kvstore

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// Safe membungkus Store: semua error backend (Redis penuh, koneksi putus,
// mode private, dsb.) ditelan jadi no-op + log [WARN]. Pemanggil cukup
// memperlakukan kegagalan sebagai "tidak ada data".
type Safe struct {
	inner Store
}

func NewSafe(inner Store) *Safe {
	return &Safe{inner: inner}
}

func (s *Safe) Get(ctx context.Context, key string) (string, bool) {
	v, ok, err := s.inner.Get(ctx, key)
	if err != nil {
		log.Printf("[WARN] kvstore get %s: %v", key, err)
		return "", false
	}
	return v, ok
}

func (s *Safe) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if err := s.inner.Set(ctx, key, value, ttl); err != nil {
		log.Printf("[WARN] kvstore set %s: %v", key, err)
	}
}

func (s *Safe) Delete(ctx context.Context, key string) {
	if err := s.inner.Delete(ctx, key); err != nil {
		log.Printf("[WARN] kvstore delete %s: %v", key, err)
	}
}

// GetDel: baca sekali-pakai. Panggilan kedua selalu absen.
func (s *Safe) GetDel(ctx context.Context, key string) (string, bool) {
	v, ok, err := s.inner.GetDel(ctx, key)
	if err != nil {
		log.Printf("[WARN] kvstore getdel %s: %v", key, err)
		return "", false
	}
	return v, ok
}

// SetJSON menyimpan nilai ter-marshal. Gagal marshal pun cuma log.
func (s *Safe) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Printf("[WARN] kvstore marshal %s: %v", key, err)
		return
	}
	s.Set(ctx, key, string(raw), ttl)
}

// GetJSON membaca dan unmarshal ke out; false bila absen/korup.
func (s *Safe) GetJSON(ctx context.Context, key string, out any) bool {
	raw, ok := s.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		log.Printf("[WARN] kvstore unmarshal %s: %v", key, err)
		return false
	}
	return true
}
