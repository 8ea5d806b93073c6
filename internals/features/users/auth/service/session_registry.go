// internals/features/users/auth/service/session_registry.go
package service

import (
	"context"
	"log"
	"sync"
	"time"

	"kelasku_backend/internals/helpers/identity"
	"kelasku_backend/internals/helpers/kvstore"
)

/* =======================================================================
   Registry: satu-satunya pemilik peta tokenID → Holder.
   Membuat, memulihkan, dan merobohkan holder hanya lewat sini supaya
   tidak ada jalur mutasi liar di luar holder itu sendiri.
======================================================================= */

type Registry struct {
	provider identity.Provider
	resolver *IdentityResolver
	kv       *kvstore.Safe

	mu      sync.Mutex
	holders map[string]*Holder
	closed  bool
}

func NewRegistry(provider identity.Provider, resolver *IdentityResolver, kv *kvstore.Safe) *Registry {
	return &Registry{
		provider: provider,
		resolver: resolver,
		kv:       kv,
		holders:  make(map[string]*Holder),
	}
}

/* ===================== pembuatan sesi ===================== */

// StartTeacherSession membuat holder utk sesi guru hasil provider.
// Resolusi role berjalan async; state awal loading.
func (r *Registry) StartTeacherSession(tokenID string, sess *identity.Session, expiresAt time.Time) *Holder {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	if old, ok := r.holders[tokenID]; ok {
		old.Close()
	}
	h := newTeacherHolder(tokenID, r.provider, r.resolver, r.kv, sess, expiresAt)
	r.holders[tokenID] = h
	return h
}

// StartStudentSession membuat holder siswa yang langsung resolved:
// session provider memang tidak ada utk siswa.
func (r *Registry) StartStudentSession(tokenID string, principal *identity.Principal, profile *Profile, expiresAt time.Time) *Holder {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	if old, ok := r.holders[tokenID]; ok {
		old.Close()
	}
	h := newStudentHolder(tokenID, r.kv, principal, profile, expiresAt)
	r.holders[tokenID] = h
	return h
}

/* ===================== pembacaan ===================== */

func (r *Registry) Get(tokenID string) (State, bool) {
	r.mu.Lock()
	h, ok := r.holders[tokenID]
	r.mu.Unlock()
	if !ok {
		return State{}, false
	}
	return h.State(), true
}

func (r *Registry) Holder(tokenID string) (*Holder, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.holders[tokenID]
	return h, ok
}

// Resume memulihkan holder dari payload sesi di kvstore (proses restart).
// Kembali (state, false) kalau payload tidak ada atau sudah kedaluwarsa.
func (r *Registry) Resume(ctx context.Context, tokenID string) (State, bool) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return State{}, false
	}
	if h, ok := r.holders[tokenID]; ok {
		st := h.State()
		r.mu.Unlock()
		return st, true
	}
	r.mu.Unlock()

	if r.kv == nil {
		return State{}, false
	}
	var saved persistedAuth
	if ok := r.kv.GetJSON(ctx, kvstore.SessionKey(tokenID), &saved); !ok {
		return State{}, false
	}
	if time.Now().After(saved.ExpiresAt) {
		r.kv.Delete(ctx, kvstore.SessionKey(tokenID))
		return State{}, false
	}

	log.Printf("[INFO] registry: pulihkan sesi %s dari kvstore (role=%s)", shortToken(tokenID), saved.Role)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return State{}, false
	}
	// race dengan Resume lain: yang kalah pakai holder yang sudah ada
	if h, ok := r.holders[tokenID]; ok {
		return h.State(), true
	}

	var h *Holder
	if saved.Session != nil {
		// sesi guru: resolusi ulang berjalan, state sementara loading
		h = newTeacherHolder(tokenID, r.provider, r.resolver, r.kv, saved.Session, saved.ExpiresAt)
	} else {
		principal := saved.Principal
		profile := saved.Profile
		h = newStudentHolder(tokenID, r.kv, &principal, &profile, saved.ExpiresAt)
	}
	r.holders[tokenID] = h
	return h.State(), true
}

/* ===================== teardown ===================== */

// Drop merobohkan satu sesi: holder ditutup, slot kvstore dibersihkan.
func (r *Registry) Drop(ctx context.Context, tokenID string) {
	r.mu.Lock()
	h, ok := r.holders[tokenID]
	if ok {
		delete(r.holders, tokenID)
	}
	r.mu.Unlock()

	if ok {
		h.Close()
	}
	if r.kv != nil {
		r.kv.Delete(ctx, kvstore.SessionKey(tokenID))
		r.kv.Delete(ctx, kvstore.SnapshotKey(tokenID))
	}
}

// EvictExpired menutup holder yang access token-nya sudah lewat masa.
// Dipanggil scheduler; slot kvstore dibiarkan mati sendiri lewat TTL.
func (r *Registry) EvictExpired() int {
	now := time.Now()

	r.mu.Lock()
	var expired []*Holder
	for tokenID, h := range r.holders {
		if now.After(h.ExpiresAt()) {
			expired = append(expired, h)
			delete(r.holders, tokenID)
		}
	}
	r.mu.Unlock()

	for _, h := range expired {
		h.Close()
	}
	return len(expired)
}

// Close merobohkan semua holder. Dipanggil saat graceful shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	holders := make([]*Holder, 0, len(r.holders))
	for _, h := range r.holders {
		holders = append(holders, h)
	}
	r.holders = make(map[string]*Holder)
	r.mu.Unlock()

	for _, h := range holders {
		h.Close()
	}
}

func shortToken(tokenID string) string {
	if len(tokenID) <= 8 {
		return tokenID
	}
	return tokenID[:8]
}
