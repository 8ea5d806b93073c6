// file: internals/helpers/identity/http_provider_test.go
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGoTrue meniru endpoint provider yang dipakai HTTPProvider.
type fakeGoTrue struct {
	userID uuid.UUID

	mu          sync.Mutex
	lastAPIKey  string
	logoutCalls int
	rejectLogin bool
}

func (f *fakeGoTrue) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.lastAPIKey = r.Header.Get("apikey")
		f.mu.Unlock()

		switch {
		case r.URL.Path == "/token" && r.URL.Query().Get("grant_type") == "password":
			var body struct {
				Email    string `json:"email"`
				Password string `json:"password"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			if f.rejectLogin || body.Password != "rahasia-guru" {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprint(w, `{"error_description":"Invalid login credentials"}`)
				return
			}
			f.writeSession(w)

		case r.URL.Path == "/token" && r.URL.Query().Get("grant_type") == "refresh_token":
			f.writeSession(w)

		case r.URL.Path == "/user":
			if r.Header.Get("Authorization") != "Bearer at-valid" {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"msg":"invalid token"}`)
				return
			}
			fmt.Fprintf(w, `{"id":%q,"email":"bu.sari@kelasku.id"}`, f.userID)

		case r.URL.Path == "/logout":
			f.mu.Lock()
			f.logoutCalls++
			f.mu.Unlock()
			w.WriteHeader(http.StatusNoContent)

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func (f *fakeGoTrue) writeSession(w http.ResponseWriter) {
	fmt.Fprintf(w, `{
		"access_token": "at-valid",
		"refresh_token": "rt-valid",
		"token_type": "bearer",
		"expires_in": 3600,
		"user": {"id": %q, "email": "bu.sari@kelasku.id"}
	}`, f.userID)
}

func newFakeGoTrue(t *testing.T) (*fakeGoTrue, *HTTPProvider) {
	t.Helper()
	f := &fakeGoTrue{userID: uuid.New()}
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return f, NewHTTP(srv.URL, "apikey-rahasia")
}

func TestHTTPProvider_SignInWithPassword(t *testing.T) {
	f, p := newFakeGoTrue(t)

	sess, err := p.SignInWithPassword(context.Background(), "bu.sari@kelasku.id", "rahasia-guru")
	require.NoError(t, err)
	assert.Equal(t, "at-valid", sess.AccessToken)
	assert.Equal(t, "rt-valid", sess.RefreshToken)
	assert.Equal(t, "bearer", sess.TokenType)
	assert.Equal(t, f.userID, sess.User.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, 30*time.Second)

	f.mu.Lock()
	assert.Equal(t, "apikey-rahasia", f.lastAPIKey, "header apikey harus nempel di semua request")
	f.mu.Unlock()
}

func TestHTTPProvider_InvalidCredentials(t *testing.T) {
	_, p := newFakeGoTrue(t)

	_, err := p.SignInWithPassword(context.Background(), "bu.sari@kelasku.id", "salah")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHTTPProvider_GetUser(t *testing.T) {
	f, p := newFakeGoTrue(t)

	pr, err := p.GetUser(context.Background(), "at-valid")
	require.NoError(t, err)
	assert.Equal(t, f.userID, pr.ID)
	assert.Equal(t, "bu.sari@kelasku.id", pr.Email)
}

func TestHTTPProvider_Rejected401IsErrUnauthorized(t *testing.T) {
	_, p := newFakeGoTrue(t)

	// 401 = sesi tidak berlaku; pemanggil wajib forced sign-out
	_, err := p.GetUser(context.Background(), "at-basi")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestHTTPProvider_RefreshEmitsEvent(t *testing.T) {
	_, p := newFakeGoTrue(t)

	var (
		mu     sync.Mutex
		events []EventType
	)
	unsub := p.Subscribe(func(ev Event) {
		mu.Lock()
		events = append(events, ev.Type)
		mu.Unlock()
	})
	defer unsub()

	_, err := p.RefreshSession(context.Background(), "rt-valid")
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, []EventType{EventTokenRefreshed}, events)
	mu.Unlock()
}

func TestHTTPProvider_SignOut(t *testing.T) {
	f, p := newFakeGoTrue(t)

	var (
		mu     sync.Mutex
		events []EventType
	)
	unsub := p.Subscribe(func(ev Event) {
		mu.Lock()
		events = append(events, ev.Type)
		mu.Unlock()
	})
	defer unsub()

	require.NoError(t, p.SignOut(context.Background(), "at-valid"))

	f.mu.Lock()
	assert.Equal(t, 1, f.logoutCalls)
	f.mu.Unlock()

	mu.Lock()
	assert.Equal(t, []EventType{EventSignedOut}, events)
	mu.Unlock()
}

func TestHTTPProvider_SignOutIdempotentOn401(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)
	p := NewHTTP(srv.URL, "")

	// sesi yang sudah mati tetap dianggap berhasil keluar
	assert.NoError(t, p.SignOut(context.Background(), "at-sudah-mati"))
}

func TestWireSession_ToSession(t *testing.T) {
	id := uuid.New()

	ws := wireSession{AccessToken: "at", RefreshToken: "rt", ExpiresIn: 60}
	ws.User.ID = id.String()
	ws.User.Email = "x@y.id"

	sess, err := ws.toSession()
	require.NoError(t, err)
	assert.Equal(t, "bearer", sess.TokenType, "token type kosong di-default-kan")
	assert.Equal(t, id, sess.User.ID)

	ws.User.ID = "bukan-uuid"
	_, err = ws.toSession()
	assert.Error(t, err)
}

func TestWireError_TextPrecedence(t *testing.T) {
	we := wireError{Error: "e", Msg: "m", ErrorDescription: "deskripsi"}
	assert.Equal(t, "deskripsi", we.text())

	we = wireError{Error: "e", Message: "pesan"}
	assert.Equal(t, "pesan", we.text())

	assert.Equal(t, "", wireError{}.text())
}
