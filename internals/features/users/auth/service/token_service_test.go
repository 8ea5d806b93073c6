package service

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"kelasku_backend/internals/configs"
	"kelasku_backend/internals/constants"
	authModel "kelasku_backend/internals/features/users/auth/model"
	"kelasku_backend/internals/helpers/identity"
)

/* ===================== fake token store ===================== */

// fakeTokenStore menyimpan baris refresh token di map (key: hex hash),
// cukup untuk menguji rotasi tanpa Postgres.
type fakeTokenStore struct {
	mu         sync.Mutex
	rows       map[string]*authModel.RefreshToken
	created    []*authModel.RefreshToken
	revoked    []uuid.UUID
	revokedAll []uuid.UUID
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{rows: map[string]*authModel.RefreshToken{}}
}

func (s *fakeTokenStore) seed(hash []byte, userID uuid.UUID, role string) *authModel.RefreshToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := &authModel.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		Role:      role,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
	}
	s.rows[hex.EncodeToString(hash)] = row
	return row
}

func (s *fakeTokenStore) Create(rt *authModel.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt.ID = uuid.New()
	s.rows[hex.EncodeToString(rt.TokenHash)] = rt
	s.created = append(s.created, rt)
	return nil
}

func (s *fakeTokenStore) FindActiveByHash(hash []byte) (*authModel.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[hex.EncodeToString(hash)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (s *fakeTokenStore) Revoke(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, row := range s.rows {
		if row.ID == id {
			delete(s.rows, k)
		}
	}
	s.revoked = append(s.revoked, id)
	return nil
}

func (s *fakeTokenStore) RevokeAllForUser(userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, row := range s.rows {
		if row.UserID == userID {
			delete(s.rows, k)
		}
	}
	s.revokedAll = append(s.revokedAll, userID)
	return nil
}

func (s *fakeTokenStore) revokedIDs() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uuid.UUID, len(s.revoked))
	copy(out, s.revoked)
	return out
}

func (s *fakeTokenStore) revokedAllUsers() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uuid.UUID, len(s.revokedAll))
	copy(out, s.revokedAll)
	return out
}

func (s *fakeTokenStore) createdRows() []*authModel.RefreshToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*authModel.RefreshToken, len(s.created))
	copy(out, s.created)
	return out
}

// refreshOKProvider: fakeProvider yang refresh sesinya BERHASIL.
type refreshOKProvider struct {
	*fakeProvider
	next *identity.Session
}

func (p *refreshOKProvider) RefreshSession(context.Context, string) (*identity.Session, error) {
	return p.next, nil
}

/* ===================== util ===================== */

func refreshTestSecrets(t *testing.T) {
	t.Helper()
	oldA, oldR := configs.JWTSecret, configs.JWTRefreshSecret
	configs.JWTSecret = "unit-access-secret"
	configs.JWTRefreshSecret = "unit-refresh-secret"
	t.Cleanup(func() {
		configs.JWTSecret, configs.JWTRefreshSecret = oldA, oldR
	})
}

func mintRefreshJWT(t *testing.T, id uuid.UUID, email, role string) string {
	t.Helper()
	now := time.Now()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"typ":   "refresh",
		"sub":   id.String(),
		"id":    id.String(),
		"email": email,
		"role":  role,
		"iat":   now.Unix(),
		"exp":   now.Add(7 * 24 * time.Hour).Unix(),
	}).SignedString([]byte(configs.JWTRefreshSecret))
	require.NoError(t, err)
	return tok
}

func mintAccessJWT(t *testing.T, id uuid.UUID, role, jti string) string {
	t.Helper()
	now := time.Now()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"typ":  "access",
		"sub":  id.String(),
		"id":   id.String(),
		"jti":  jti,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(2 * time.Hour).Unix(),
	}).SignedString([]byte(configs.JWTSecret))
	require.NoError(t, err)
	return tok
}

func newRefreshApp(deps *Deps) *fiber.App {
	app := fiber.New()
	app.Post("/api/auth/refresh", func(c *fiber.Ctx) error {
		return RefreshToken(nil, deps, c)
	})
	return app
}

// refreshRequest: bearer kosong = jalur cookie (CSRF double-submit disertakan).
func refreshRequest(refreshCookie, bearer string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	if refreshCookie != "" {
		req.AddCookie(&http.Cookie{Name: "refresh_token", Value: refreshCookie})
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	} else {
		req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "csrf-unit"})
		req.Header.Set("X-CSRF-Token", "csrf-unit")
	}
	return req
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

/* ===================== gerbang masuk ===================== */

func TestRefreshToken_CookieTanpaCSRFDitolak(t *testing.T) {
	refreshTestSecrets(t)
	deps := &Deps{Tokens: newFakeTokenStore()}
	app := newRefreshApp(deps)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "apapun"})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRefreshToken_TanpaCookieDapat401(t *testing.T) {
	refreshTestSecrets(t)
	deps := &Deps{Tokens: newFakeTokenStore()}
	app := newRefreshApp(deps)

	resp, err := app.Test(refreshRequest("", ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Refresh token tidak ada", decodeJSON(t, resp)["message"])
}

func TestRefreshToken_TokenTipeAccessDitolak(t *testing.T) {
	refreshTestSecrets(t)
	deps := &Deps{Tokens: newFakeTokenStore()}
	app := newRefreshApp(deps)

	// JWT sah dan ditandatangani dengan secret refresh, tapi typ-nya salah
	id := uuid.New()
	wrongTyp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"typ": "access",
		"sub": id.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(configs.JWTRefreshSecret))
	require.NoError(t, err)

	resp, err := app.Test(refreshRequest(wrongTyp, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Refresh token invalid", decodeJSON(t, resp)["message"])
}

func TestRefreshToken_HashTidakHidupDitolak(t *testing.T) {
	refreshTestSecrets(t)
	id := uuid.New()
	deps := &Deps{Tokens: newFakeTokenStore()} // store kosong: baris sudah di-revoke
	app := newRefreshApp(deps)

	refreshJWT := mintRefreshJWT(t, id, "bu.sari@kelasku.id", constants.RoleTeacher)
	resp, err := app.Test(refreshRequest(refreshJWT, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Refresh token tidak dikenal", decodeJSON(t, resp)["message"])
}

/* ===================== forced sign-out ===================== */

func TestRefreshToken_ProviderMenolakGuruDipaksaKeluar(t *testing.T) {
	refreshTestSecrets(t)
	id := uuid.New()

	fp := newFakeProvider() // RefreshSession selalu ErrUnauthorized
	resolver := &IdentityResolver{Teachers: fakeTeacherDir{entry: teacherEntry(id)}, Students: fakeStudentDir{}}
	reg := NewRegistry(fp, resolver, memKV())
	defer reg.Close()

	store := newFakeTokenStore()
	deps := &Deps{Provider: fp, Resolver: resolver, Registry: reg, KV: memKV(), Tokens: store}

	refreshJWT := mintRefreshJWT(t, id, "bu.sari@kelasku.id", constants.RoleTeacher)
	row := store.seed(computeRefreshHash(refreshJWT, configs.JWTRefreshSecret), id, constants.RoleTeacher)

	const oldJTI = "jti-guru-lama"
	h := reg.StartTeacherSession(oldJTI, newTeacherProviderSession(id, "at-provider"), time.Now().Add(time.Hour))
	waitFor(t, 2*time.Second, func() bool { return h.State().Authenticated() })

	access := mintAccessJWT(t, id, constants.RoleTeacher, oldJTI)
	resp, err := newRefreshApp(deps).Test(refreshRequest(refreshJWT, access), 5000)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	body := decodeJSON(t, resp)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "/", body["redirect_to"], "klien dipaksa balik ke root")

	_, ok := reg.Get(oldJTI)
	assert.False(t, ok, "holder harus dirobohkan")
	assert.Equal(t, []uuid.UUID{row.ID}, store.revokedIDs())
	assert.Equal(t, []uuid.UUID{id}, store.revokedAllUsers(), "seluruh refresh token principal dicabut")
	assert.Empty(t, store.createdRows(), "tidak ada pasangan token baru diterbitkan")
}

/* ===================== rotasi ===================== */

func TestRefreshToken_RotasiGuruBerhasil(t *testing.T) {
	refreshTestSecrets(t)
	id := uuid.New()

	fp := &refreshOKProvider{fakeProvider: newFakeProvider(), next: newTeacherProviderSession(id, "at-baru")}
	resolver := &IdentityResolver{Teachers: fakeTeacherDir{entry: teacherEntry(id)}, Students: fakeStudentDir{}}
	reg := NewRegistry(fp, resolver, memKV())
	defer reg.Close()

	store := newFakeTokenStore()
	deps := &Deps{Provider: fp, Resolver: resolver, Registry: reg, KV: memKV(), Tokens: store}
	app := newRefreshApp(deps)

	refreshJWT := mintRefreshJWT(t, id, "bu.sari@kelasku.id", constants.RoleTeacher)
	oldRow := store.seed(computeRefreshHash(refreshJWT, configs.JWTRefreshSecret), id, constants.RoleTeacher)

	const oldJTI = "jti-guru-lama"
	h := reg.StartTeacherSession(oldJTI, newTeacherProviderSession(id, "at-lama"), time.Now().Add(time.Hour))
	waitFor(t, 2*time.Second, func() bool { return h.State().Authenticated() })

	access := mintAccessJWT(t, id, constants.RoleTeacher, oldJTI)
	resp, err := app.Test(refreshRequest(refreshJWT, access), 5000)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeJSON(t, resp)
	data, _ := body["data"].(map[string]any)
	require.NotNil(t, data)
	newAccess, _ := data["access_token"].(string)
	require.NotEmpty(t, newAccess)

	gotID, newJTI, _ := readAccessClaims(newAccess)
	assert.Equal(t, id, gotID)
	require.NotEmpty(t, newJTI)
	assert.NotEqual(t, oldJTI, newJTI, "jti harus berganti saat rotasi")

	// holder lama roboh, holder baru membawa sesi provider hasil refresh
	_, ok := reg.Get(oldJTI)
	assert.False(t, ok)
	h2, ok := reg.Holder(newJTI)
	require.True(t, ok, "holder baru harus berdiri di jti baru")
	waitFor(t, 2*time.Second, func() bool { return h2.State().Authenticated() })
	assert.Equal(t, "at-baru", h2.State().Session.AccessToken)

	// baris lama di-revoke, baris baru tersimpan dengan hash berbeda
	assert.Equal(t, []uuid.UUID{oldRow.ID}, store.revokedIDs())
	rows := store.createdRows()
	require.Len(t, rows, 1)
	assert.Equal(t, constants.RoleTeacher, rows[0].Role)
	assert.NotEqual(t, oldRow.TokenHash, rows[0].TokenHash)

	// refresh token lama mati: pemakaian kedua ditolak
	resp2, err := app.Test(refreshRequest(refreshJWT, ""), 5000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp2.StatusCode)
	assert.Equal(t, "Refresh token tidak dikenal", decodeJSON(t, resp2)["message"])
}

func TestRefreshToken_RotasiSiswaTanpaProvider(t *testing.T) {
	refreshTestSecrets(t)
	id := uuid.New()

	// RefreshSession fakeProvider selalu ErrUnauthorized: kalau jalur siswa
	// keliru menyentuh provider, test ini berubah jadi forced sign-out.
	fp := newFakeProvider()
	resolver := &IdentityResolver{Teachers: fakeTeacherDir{}, Students: fakeStudentDir{cred: studentCred(id)}}
	reg := NewRegistry(fp, resolver, memKV())
	defer reg.Close()

	store := newFakeTokenStore()
	deps := &Deps{Provider: fp, Resolver: resolver, Registry: reg, KV: memKV(), Tokens: store}

	refreshJWT := mintRefreshJWT(t, id, "budi.santoso@siswa.kelasku.id", constants.RoleStudent)
	oldRow := store.seed(computeRefreshHash(refreshJWT, configs.JWTRefreshSecret), id, constants.RoleStudent)

	resp, err := newRefreshApp(deps).Test(refreshRequest(refreshJWT, ""), 5000)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeJSON(t, resp)
	data, _ := body["data"].(map[string]any)
	require.NotNil(t, data)
	newAccess, _ := data["access_token"].(string)
	require.NotEmpty(t, newAccess)

	_, newJTI, _ := readAccessClaims(newAccess)
	h, ok := reg.Holder(newJTI)
	require.True(t, ok)
	st := h.State()
	assert.True(t, st.Authenticated())
	assert.Equal(t, constants.RoleStudent, st.Profile.Role)
	assert.Nil(t, st.Session, "siswa tidak pernah punya sesi provider")

	assert.Equal(t, []uuid.UUID{oldRow.ID}, store.revokedIDs())
	assert.Empty(t, fp.signOutCalls())
}
