// file: internals/helpers/kvstore/store.go
package kvstore

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"kelasku_backend/internals/configs"
)

/* ===============================
   Store interface & keys
=================================*/

// Store adalah penyimpanan key-value kecil untuk state sesi:
// payload sesi siswa, path redirect sekali-pakai, dan snapshot auth.
// Absen dinyatakan lewat ok=false, bukan error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// GetDel membaca sekaligus menghapus (atomic di Redis).
	GetDel(ctx context.Context, key string) (value string, ok bool, err error)
}

const keyPrefix = "kelasku:"

func SessionKey(tokenID string) string   { return keyPrefix + "session:" + tokenID }
func RedirectKey(deviceID string) string { return keyPrefix + "redirect:" + deviceID }
func SnapshotKey(tokenID string) string  { return keyPrefix + "snapshot:" + tokenID }

// NewFromEnv memilih backend: Redis kalau REDIS_ADDR diset, selain itu memori lokal.
// Hasil selalu dibungkus Safe sehingga error storage tidak pernah sampai ke pemanggil.
func NewFromEnv() *Safe {
	addr := strings.TrimSpace(configs.RedisAddr)
	if addr == "" {
		log.Println("[INFO] kvstore: memakai memori lokal (REDIS_ADDR kosong)")
		return NewSafe(NewMemory())
	}
	log.Printf("[INFO] kvstore: memakai Redis %s", addr)
	return NewSafe(NewRedis(addr, configs.RedisPassword))
}

/* ===============================
   In-memory store (fallback dev)
=================================*/

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero = tanpa TTL
}

type Memory struct {
	mu    sync.Mutex
	items map[string]memoryEntry
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]memoryEntry)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.items[key]
	if !ok {
		return "", false, nil
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(m.items, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	m.items[key] = e
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *Memory) GetDel(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.items[key]
	if !ok {
		return "", false, nil
	}
	delete(m.items, key)
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		return "", false, nil
	}
	return e.value, true, nil
}
