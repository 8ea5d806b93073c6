// internals/features/users/auth/service/session_holder.go
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
   Holder: pemilik tunggal state auth satu sesi login.
   Semua mutasi lewat holder ini supaya dua invariannya tegak di satu
   tempat: (1) Loading SELALU turun di akhir resolusi, apa pun cabangnya;
   (2) hasil resolusi basi tidak boleh menimpa hasil event yang lebih baru.
======================================================================= */

// State: potret auth satu sesi. Session nil utk siswa walau authenticated.
type State struct {
	Loading   bool                `json:"loading"`
	Principal *identity.Principal `json:"principal,omitempty"`
	Profile   *Profile            `json:"profile,omitempty"`
	Session   *identity.Session   `json:"session,omitempty"`
}

// Authenticated: sudah resolved dan punya role.
func (s State) Authenticated() bool { return !s.Loading && s.Profile != nil }

type Holder struct {
	tokenID  string
	provider identity.Provider
	resolver *IdentityResolver
	kv       *kvstore.Safe

	mu        sync.Mutex
	state     State
	seq       uint64 // nomor event terbaru; hasil dengan seq lebih kecil dibuang
	closed    bool
	unsub     func()
	watchers  []chan State
	expiresAt time.Time
}

/* ===================== konstruktor (dipanggil Registry) ===================== */

// newTeacherHolder mulai dalam keadaan loading, lalu resolusi berjalan async.
// Subscribe ke provider: refresh token guru memicu resolusi ulang.
func newTeacherHolder(tokenID string, provider identity.Provider, resolver *IdentityResolver, kv *kvstore.Safe, sess *identity.Session, expiresAt time.Time) *Holder {
	h := &Holder{
		tokenID:   tokenID,
		provider:  provider,
		resolver:  resolver,
		kv:        kv,
		state:     State{Loading: true},
		expiresAt: expiresAt,
	}
	if provider != nil {
		principalID := sess.User.ID
		h.unsub = provider.Subscribe(func(ev identity.Event) {
			// hanya event sesi milik principal ini. Event signed_out membawa
			// Session nil dan tersaring di sini; pembongkaran holder saat
			// sign-out adalah urusan Registry.Drop.
			if ev.Session == nil || ev.Session.User.ID != principalID {
				return
			}
			h.startResolution(ev.Session)
		})
	}
	h.startResolution(sess)
	return h
}

// newStudentHolder langsung resolved: tidak ada provider session utk siswa.
func newStudentHolder(tokenID string, kv *kvstore.Safe, principal *identity.Principal, profile *Profile, expiresAt time.Time) *Holder {
	h := &Holder{
		tokenID:   tokenID,
		kv:        kv,
		expiresAt: expiresAt,
		state: State{
			Loading:   false,
			Principal: principal,
			Profile:   profile,
			Session:   nil,
		},
	}
	h.mu.Lock()
	h.writeSnapshotLocked()
	h.mu.Unlock()
	return h
}

/* ===================== pembacaan ===================== */

func (h *Holder) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *Holder) TokenID() string { return h.tokenID }

func (h *Holder) ExpiresAt() time.Time { return h.expiresAt }

// Watch memberi channel ber-buffer yang menerima setiap transisi state.
// Channel ditutup saat holder di-Close.
func (h *Holder) Watch() <-chan State {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan State, 8)
	if h.closed {
		close(ch)
		return ch
	}
	h.watchers = append(h.watchers, ch)
	return ch
}

/* ===================== event & resolusi ===================== */

// startResolution menandai event baru dengan nomor urut lalu resolve async.
func (h *Holder) startResolution(sess *identity.Session) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.seq++
	mySeq := h.seq
	h.state.Loading = true
	h.notifyLocked()
	h.mu.Unlock()

	go h.resolve(mySeq, sess)
}

func (h *Holder) resolve(mySeq uint64, sess *identity.Session) {
	var (
		prof       *Profile
		resolveErr error
	)

	// Resolusi di luar lock; panic tak terduga tidak boleh membekukan state.
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[ERROR] holder: panic saat resolusi sesi: %v", r)
			}
		}()
		if sess != nil && h.resolver != nil {
			prof, resolveErr = h.resolver.Resolve(context.Background(), sess.User.ID, sess.User.Email)
		}
	}()

	h.mu.Lock()
	defer h.mu.Unlock()

	// Guard teardown: setelah Close tidak ada mutasi lagi.
	if h.closed {
		return
	}
	// Latest-wins: hasil event lama tidak boleh menimpa event lebih baru.
	// Loading saat itu milik resolusi terbaru, biarkan dia yang menurunkan.
	if mySeq != h.seq {
		return
	}

	// Invariant utama: apa pun cabang di bawah, Loading turun di sini.
	defer func() {
		h.state.Loading = false
		h.writeSnapshotLocked()
		h.notifyLocked()
	}()

	switch {
	case sess == nil:
		h.state.Principal = nil
		h.state.Profile = nil
		h.state.Session = nil
	case resolveErr != nil:
		// ErrNoRole maupun error lain → fail closed: principal dikenal
		// provider tapi tanpa role aplikasi, jangan set authenticated.
		log.Printf("[WARN] holder: resolusi tanpa role (principal=%s): %v", sess.User.ID, resolveErr)
		h.state.Principal = &sess.User
		h.state.Session = sess
		h.state.Profile = nil
	default:
		h.state.Principal = &sess.User
		h.state.Session = sess
		h.state.Profile = prof
	}
}

/* ===================== teardown ===================== */

// Close melepas subscription dan menutup watcher.
// Resolusi yang masih terbang akan melihat closed dan berhenti diam-diam.
func (h *Holder) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	unsub := h.unsub
	h.unsub = nil
	for _, ch := range h.watchers {
		close(ch)
	}
	h.watchers = nil
	h.state = State{}
	h.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

/* ===================== persist & notify (dipanggil dalam lock) ===================== */

func (h *Holder) notifyLocked() {
	for _, ch := range h.watchers {
		select {
		case ch <- h.state:
		default: // watcher lambat tidak boleh menahan holder
		}
	}
}

// writeSnapshotLocked menulis dua slot: payload sesi (utk resume lintas
// restart) dan snapshot debug. Keduanya lewat Safe store, gagal = no-op.
func (h *Holder) writeSnapshotLocked() {
	if h.kv == nil || h.tokenID == "" {
		return
	}
	ctx := context.Background()
	ttl := time.Until(h.expiresAt)
	if ttl <= 0 {
		ttl = time.Minute
	}

	h.kv.SetJSON(ctx, kvstore.SnapshotKey(h.tokenID), h.state, ttl)

	if h.state.Profile != nil {
		h.kv.SetJSON(ctx, kvstore.SessionKey(h.tokenID), persistedAuth{
			Role:      h.state.Profile.Role,
			Principal: *h.state.Principal,
			Profile:   *h.state.Profile,
			Session:   h.state.Session,
			ExpiresAt: h.expiresAt,
		}, ttl)
	}
}

// persistedAuth: bentuk JSON payload sesi di kvstore.
type persistedAuth struct {
	Role      string             `json:"role"`
	Principal identity.Principal `json:"principal"`
	Profile   Profile            `json:"profile"`
	Session   *identity.Session  `json:"session,omitempty"`
	ExpiresAt time.Time          `json:"expires_at"`
}
