// file: internals/helpers/identity/identity.go
package identity

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"kelasku_backend/internals/configs"
)

/* ===============================
   Types
=================================*/

// Principal adalah akun di identity provider (guru login lewat sini).
type Principal struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// Session adalah sesi provider. Siswa TIDAK pernah punya Session:
// login siswa murni tabel kredensial lokal.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         Principal `json:"user"`
}

type EventType string

const (
	EventSignedIn       EventType = "signed_in"
	EventTokenRefreshed EventType = "token_refreshed"
	EventSignedOut      EventType = "signed_out"
)

// Event adalah notifikasi perubahan sesi. Session nil saat signed_out.
type Event struct {
	Type    EventType
	Session *Session
}

var (
	ErrInvalidCredentials = errors.New("identity: email atau password salah")
	// ErrUnauthorized menandai sesi yang ditolak provider (401).
	// Pemanggil wajib memperlakukannya sebagai forced sign-out, bukan error biasa.
	ErrUnauthorized = errors.New("identity: sesi tidak berlaku")
)

// Provider adalah kolaborator eksternal pemilik akun guru.
type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	// SignInWithIDToken menukar ID token OIDC (mis. Google) menjadi sesi provider.
	SignInWithIDToken(ctx context.Context, issuer, idToken string) (*Session, error)
	GetUser(ctx context.Context, accessToken string) (*Principal, error)
	RefreshSession(ctx context.Context, refreshToken string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
	// Subscribe mendaftarkan listener perubahan sesi; event dikirim
	// berurutan sesuai emisi. Fungsi balikan melepas langganan.
	Subscribe(fn func(Event)) (unsubscribe func())
}

// NewFromEnv: provider HTTP kalau IDENTITY_PROVIDER_URL diset, selain itu lokal (dev).
func NewFromEnv() Provider {
	if configs.IdentityProviderURL == "" {
		log.Println("[INFO] identity: memakai provider lokal (dev)")
		return NewLocal()
	}
	return NewHTTP(configs.IdentityProviderURL, configs.IdentityProviderKey)
}

/* ===============================
   Event hub (dipakai kedua provider)
=================================*/

type eventHub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

func newEventHub() *eventHub {
	return &eventHub{subs: make(map[int]func(Event))}
}

func (h *eventHub) subscribe(fn func(Event)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// emit memanggil listener satu per satu, urutan emisi terjaga.
func (h *eventHub) emit(ev Event) {
	h.mu.Lock()
	fns := make([]func(Event), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}
