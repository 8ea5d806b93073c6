// file: internals/helpers/identity/local_provider.go
package identity

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"kelasku_backend/internals/configs"
)

/* ===============================
   Local provider (dev / test)
=================================*/

const localSessionTTL = time.Hour

type localAccount struct {
	id           uuid.UUID
	email        string
	passwordHash []byte
}

type localSession struct {
	principal Principal
	refresh   string
	expiresAt time.Time
}

// LocalProvider meniru perilaku provider beneran di dalam proses:
// akun bcrypt-hashed, token acak, event yang sama. Dipakai saat
// IDENTITY_PROVIDER_URL kosong (dev) dan di unit test.
type LocalProvider struct {
	mu       sync.Mutex
	accounts map[string]localAccount // by email (lowercase)
	sessions map[string]localSession // by access token
	hub      *eventHub
}

func NewLocal() *LocalProvider {
	p := &LocalProvider{
		accounts: make(map[string]localAccount),
		sessions: make(map[string]localSession),
		hub:      newEventHub(),
	}
	// akun dev opsional dari ENV; LOCAL_TEACHER_ID dikunci supaya
	// cocok dengan baris directory teachers hasil seeding
	if email := configs.GetEnv("LOCAL_TEACHER_EMAIL"); email != "" {
		if pass := configs.GetEnv("LOCAL_TEACHER_PASSWORD"); pass != "" {
			var err error
			if raw := configs.GetEnv("LOCAL_TEACHER_ID"); raw != "" {
				if id, perr := uuid.Parse(raw); perr == nil {
					err = p.SeedWithID(id, email, pass)
				} else {
					log.Printf("[WARN] identity: LOCAL_TEACHER_ID tidak valid, pakai UUID acak")
					err = p.Seed(email, pass)
				}
			} else {
				err = p.Seed(email, pass)
			}
			if err != nil {
				log.Printf("[WARN] identity: seed akun dev gagal: %v", err)
			}
		}
	}
	return p
}

// Seed mendaftarkan akun (hash bcrypt, seperti provider aslinya).
func (p *LocalProvider) Seed(email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accounts[strings.ToLower(strings.TrimSpace(email))] = localAccount{
		id:           uuid.New(),
		email:        strings.TrimSpace(email),
		passwordHash: hash,
	}
	return nil
}

// SeedWithID: seperti Seed tapi id ditentukan (enak buat test).
func (p *LocalProvider) SeedWithID(id uuid.UUID, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accounts[strings.ToLower(strings.TrimSpace(email))] = localAccount{
		id:           id,
		email:        strings.TrimSpace(email),
		passwordHash: hash,
	}
	return nil
}

func (p *LocalProvider) SignInWithPassword(_ context.Context, email, password string) (*Session, error) {
	p.mu.Lock()
	acc, ok := p.accounts[strings.ToLower(strings.TrimSpace(email))]
	p.mu.Unlock()
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	sess := p.newSession(acc)
	p.hub.emit(Event{Type: EventSignedIn, Session: sess})
	return sess, nil
}

// SignInWithIDToken tidak tersedia di provider lokal; perlakukan sebagai
// kredensial salah supaya alur pemanggil tetap satu.
func (p *LocalProvider) SignInWithIDToken(_ context.Context, _, _ string) (*Session, error) {
	return nil, ErrInvalidCredentials
}

func (p *LocalProvider) GetUser(_ context.Context, accessToken string) (*Principal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ls, ok := p.sessions[accessToken]
	if !ok || time.Now().After(ls.expiresAt) {
		return nil, ErrUnauthorized
	}
	pr := ls.principal
	return &pr, nil
}

func (p *LocalProvider) RefreshSession(_ context.Context, refreshToken string) (*Session, error) {
	p.mu.Lock()
	var (
		found bool
		acc   localAccount
	)
	for tok, ls := range p.sessions {
		if ls.refresh == refreshToken {
			acc = localAccount{id: ls.principal.ID, email: ls.principal.Email}
			delete(p.sessions, tok) // rotasi: sesi lama hangus
			found = true
			break
		}
	}
	p.mu.Unlock()
	if !found {
		return nil, ErrUnauthorized
	}

	sess := p.newSession(acc)
	p.hub.emit(Event{Type: EventTokenRefreshed, Session: sess})
	return sess, nil
}

func (p *LocalProvider) SignOut(_ context.Context, accessToken string) error {
	p.mu.Lock()
	delete(p.sessions, accessToken)
	p.mu.Unlock()
	p.hub.emit(Event{Type: EventSignedOut, Session: nil})
	return nil
}

func (p *LocalProvider) Subscribe(fn func(Event)) func() {
	return p.hub.subscribe(fn)
}

func (p *LocalProvider) newSession(acc localAccount) *Session {
	sess := &Session{
		AccessToken:  uuid.NewString(),
		RefreshToken: uuid.NewString(),
		TokenType:    "bearer",
		ExpiresAt:    time.Now().UTC().Add(localSessionTTL),
		User:         Principal{ID: acc.id, Email: acc.email},
	}
	p.mu.Lock()
	p.sessions[sess.AccessToken] = localSession{
		principal: sess.User,
		refresh:   sess.RefreshToken,
		expiresAt: sess.ExpiresAt,
	}
	p.mu.Unlock()
	return sess
}
