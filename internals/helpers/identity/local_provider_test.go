// file: internals/helpers/identity/local_provider_test.go
package identity

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProvider_SignInWithPassword(t *testing.T) {
	p := NewLocal()
	require.NoError(t, p.Seed("bu.sari@kelasku.id", "rahasia-guru"))

	sess, err := p.SignInWithPassword(context.Background(), "bu.sari@kelasku.id", "rahasia-guru")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.AccessToken)
	assert.NotEmpty(t, sess.RefreshToken)
	assert.Equal(t, "bearer", sess.TokenType)
	assert.Equal(t, "bu.sari@kelasku.id", sess.User.Email)

	// email dicocokkan case-insensitive, spasi diabaikan
	sess2, err := p.SignInWithPassword(context.Background(), "  BU.SARI@kelasku.id ", "rahasia-guru")
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, sess2.User.ID)
}

func TestLocalProvider_InvalidCredentials(t *testing.T) {
	p := NewLocal()
	require.NoError(t, p.Seed("bu.sari@kelasku.id", "rahasia-guru"))

	_, err := p.SignInWithPassword(context.Background(), "bu.sari@kelasku.id", "salah")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.SignInWithPassword(context.Background(), "tidak.ada@kelasku.id", "apapun")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.SignInWithIDToken(context.Background(), "google", "token-apapun")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLocalProvider_SeedWithID(t *testing.T) {
	p := NewLocal()
	pinned := uuid.MustParse("6f1f9f2a-0c7e-4b5a-9d3e-2a8b1c4d5e6f")
	require.NoError(t, p.SeedWithID(pinned, "bu.sari@kelasku.id", "rahasia-guru"))

	sess, err := p.SignInWithPassword(context.Background(), "bu.sari@kelasku.id", "rahasia-guru")
	require.NoError(t, err)
	assert.Equal(t, pinned, sess.User.ID)
}

func TestLocalProvider_GetUserAndSignOut(t *testing.T) {
	p := NewLocal()
	require.NoError(t, p.Seed("bu.sari@kelasku.id", "rahasia-guru"))

	sess, err := p.SignInWithPassword(context.Background(), "bu.sari@kelasku.id", "rahasia-guru")
	require.NoError(t, err)

	pr, err := p.GetUser(context.Background(), sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, pr.ID)

	_, err = p.GetUser(context.Background(), "token-ngawur")
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, p.SignOut(context.Background(), sess.AccessToken))
	_, err = p.GetUser(context.Background(), sess.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized, "sesi mati setelah sign-out")
}

func TestLocalProvider_RefreshRotatesSession(t *testing.T) {
	p := NewLocal()
	require.NoError(t, p.Seed("bu.sari@kelasku.id", "rahasia-guru"))

	sess, err := p.SignInWithPassword(context.Background(), "bu.sari@kelasku.id", "rahasia-guru")
	require.NoError(t, err)

	renewed, err := p.RefreshSession(context.Background(), sess.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, sess.AccessToken, renewed.AccessToken)
	assert.Equal(t, sess.User.ID, renewed.User.ID)

	// sesi lama hangus, refresh token lama tidak bisa dipakai ulang
	_, err = p.GetUser(context.Background(), sess.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = p.RefreshSession(context.Background(), sess.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// sesi baru hidup
	_, err = p.GetUser(context.Background(), renewed.AccessToken)
	assert.NoError(t, err)
}

func TestLocalProvider_SubscribeReceivesEvents(t *testing.T) {
	p := NewLocal()
	require.NoError(t, p.Seed("bu.sari@kelasku.id", "rahasia-guru"))

	var (
		mu     sync.Mutex
		events []EventType
	)
	unsub := p.Subscribe(func(ev Event) {
		mu.Lock()
		events = append(events, ev.Type)
		mu.Unlock()
	})

	sess, err := p.SignInWithPassword(context.Background(), "bu.sari@kelasku.id", "rahasia-guru")
	require.NoError(t, err)
	renewed, err := p.RefreshSession(context.Background(), sess.RefreshToken)
	require.NoError(t, err)
	require.NoError(t, p.SignOut(context.Background(), renewed.AccessToken))

	mu.Lock()
	got := append([]EventType(nil), events...)
	mu.Unlock()
	assert.Equal(t, []EventType{EventSignedIn, EventTokenRefreshed, EventSignedOut}, got)

	// setelah unsubscribe tidak ada event lagi
	unsub()
	_, err = p.SignInWithPassword(context.Background(), "bu.sari@kelasku.id", "rahasia-guru")
	require.NoError(t, err)

	mu.Lock()
	assert.Len(t, events, 3)
	mu.Unlock()
}

func TestNewLocal_SeedsDevAccountFromEnv(t *testing.T) {
	t.Setenv("LOCAL_TEACHER_EMAIL", "dev@kelasku.id")
	t.Setenv("LOCAL_TEACHER_PASSWORD", "dev-pass")
	t.Setenv("LOCAL_TEACHER_ID", "6f1f9f2a-0c7e-4b5a-9d3e-2a8b1c4d5e6f")

	p := NewLocal()
	sess, err := p.SignInWithPassword(context.Background(), "dev@kelasku.id", "dev-pass")
	require.NoError(t, err)
	assert.Equal(t, uuid.MustParse("6f1f9f2a-0c7e-4b5a-9d3e-2a8b1c4d5e6f"), sess.User.ID)
}

func TestNewLocal_InvalidPinnedIDFallsBackToRandom(t *testing.T) {
	t.Setenv("LOCAL_TEACHER_EMAIL", "dev@kelasku.id")
	t.Setenv("LOCAL_TEACHER_PASSWORD", "dev-pass")
	t.Setenv("LOCAL_TEACHER_ID", "bukan-uuid")

	p := NewLocal()
	sess, err := p.SignInWithPassword(context.Background(), "dev@kelasku.id", "dev-pass")
	require.NoError(t, err, "akun tetap ter-seed walau id pin tidak valid")
	assert.NotEqual(t, uuid.Nil, sess.User.ID)
}
