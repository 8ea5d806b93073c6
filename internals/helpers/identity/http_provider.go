// file: internals/helpers/identity/http_provider.go
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

/* ===============================
   HTTP provider (GoTrue-compatible)
=================================*/

type HTTPProvider struct {
	baseURL string
	client  *http.Client
	hub     *eventHub
}

func NewHTTP(baseURL, apiKey string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &authTransport{
				apiKey: apiKey,
				base:   http.DefaultTransport,
			},
		},
		hub: newEventHub(),
	}
}

// authTransport menempelkan header apikey di semua request keluar.
// Authorization per-request tetap diset oleh pemanggil (bearer sesi).
type authTransport struct {
	apiKey string
	base   http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if t.apiKey != "" {
		r.Header.Set("apikey", t.apiKey)
		if r.Header.Get("Authorization") == "" {
			r.Header.Set("Authorization", "Bearer "+t.apiKey)
		}
	}
	if r.Header.Get("Content-Type") == "" && r.Body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	return t.base.RoundTrip(r)
}

/* ===============================
   Wire format
=================================*/

type wireSession struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type wireError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (w wireError) text() string {
	for _, s := range []string{w.ErrorDescription, w.Msg, w.Message, w.Error} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func (s wireSession) toSession() (*Session, error) {
	uid, err := uuid.Parse(s.User.ID)
	if err != nil {
		return nil, fmt.Errorf("identity: user id tidak valid: %w", err)
	}
	tt := s.TokenType
	if tt == "" {
		tt = "bearer"
	}
	return &Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    tt,
		ExpiresAt:    time.Now().UTC().Add(time.Duration(s.ExpiresIn) * time.Second),
		User:         Principal{ID: uid, Email: s.User.Email},
	}, nil
}

/* ===============================
   Calls
=================================*/

func (p *HTTPProvider) doJSON(ctx context.Context, method, path, bearer string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, rd)
	if err != nil {
		return err
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// 401 dari provider = sesi tidak berlaku → pemanggil wajib forced sign-out
		return ErrUnauthorized
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		var we wireError
		_ = json.Unmarshal(raw, &we)
		low := strings.ToLower(we.text())
		if strings.Contains(low, "invalid login credentials") || strings.Contains(low, "invalid_grant") {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("identity: %s", we.text())
	case resp.StatusCode >= 400:
		var we wireError
		_ = json.Unmarshal(raw, &we)
		return fmt.Errorf("identity: http %d: %s", resp.StatusCode, we.text())
	}

	if out != nil && len(raw) > 0 {
		return json.Unmarshal(raw, out)
	}
	return nil
}

func (p *HTTPProvider) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var ws wireSession
	err := p.doJSON(ctx, http.MethodPost, "/token?grant_type=password", "",
		map[string]string{"email": email, "password": password}, &ws)
	if err != nil {
		return nil, err
	}
	sess, err := ws.toSession()
	if err != nil {
		return nil, err
	}
	p.hub.emit(Event{Type: EventSignedIn, Session: sess})
	return sess, nil
}

func (p *HTTPProvider) SignInWithIDToken(ctx context.Context, issuer, idToken string) (*Session, error) {
	var ws wireSession
	err := p.doJSON(ctx, http.MethodPost, "/token?grant_type=id_token", "",
		map[string]string{"provider": issuer, "id_token": idToken}, &ws)
	if err != nil {
		return nil, err
	}
	sess, err := ws.toSession()
	if err != nil {
		return nil, err
	}
	p.hub.emit(Event{Type: EventSignedIn, Session: sess})
	return sess, nil
}

func (p *HTTPProvider) GetUser(ctx context.Context, accessToken string) (*Principal, error) {
	var wu struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := p.doJSON(ctx, http.MethodGet, "/user", accessToken, nil, &wu); err != nil {
		return nil, err
	}
	uid, err := uuid.Parse(wu.ID)
	if err != nil {
		return nil, fmt.Errorf("identity: user id tidak valid: %w", err)
	}
	return &Principal{ID: uid, Email: wu.Email}, nil
}

func (p *HTTPProvider) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	var ws wireSession
	err := p.doJSON(ctx, http.MethodPost, "/token?grant_type=refresh_token", "",
		map[string]string{"refresh_token": refreshToken}, &ws)
	if err != nil {
		return nil, err
	}
	sess, err := ws.toSession()
	if err != nil {
		return nil, err
	}
	p.hub.emit(Event{Type: EventTokenRefreshed, Session: sess})
	return sess, nil
}

func (p *HTTPProvider) SignOut(ctx context.Context, accessToken string) error {
	err := p.doJSON(ctx, http.MethodPost, "/logout", accessToken, nil, nil)
	if err != nil && err != ErrUnauthorized {
		// logout idempotent: sesi yang sudah mati tetap dianggap keluar
		log.Printf("[WARN] identity signout: %v", err)
		return err
	}
	p.hub.emit(Event{Type: EventSignedOut, Session: nil})
	return nil
}

func (p *HTTPProvider) Subscribe(fn func(Event)) func() {
	return p.hub.subscribe(fn)
}
