package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kelasku_backend/internals/configs"
	"kelasku_backend/internals/constants"
	"kelasku_backend/internals/helpers/identity"
)

/* ===================== performSignOut ===================== */

func TestPerformSignOut_StudentNeverTouchesProvider(t *testing.T) {
	id := uuid.New()
	fp := newFakeProvider()
	// tabel guru miss: principal ini siswa
	resolver := &IdentityResolver{Teachers: fakeTeacherDir{}, Students: fakeStudentDir{}}
	reg := NewRegistry(fp, nil, memKV())
	defer reg.Close()

	principal := &identity.Principal{ID: id, Email: "budi.santoso@siswa.kelasku.id"}
	reg.StartStudentSession("tok-siswa", principal, newStudentProfile(id), time.Now().Add(time.Hour))

	deps := &Deps{Provider: fp, Resolver: resolver, Registry: reg, KV: nil}
	role := performSignOut(context.Background(), deps, id, "tok-siswa")

	assert.Equal(t, constants.RoleStudent, role)
	assert.Empty(t, fp.signOutCalls(), "logout siswa tidak boleh memanggil provider")

	_, ok := reg.Get("tok-siswa")
	assert.False(t, ok, "holder harus dirobohkan")
}

func TestPerformSignOut_TeacherSignsOutProviderOnce(t *testing.T) {
	id := uuid.New()
	fp := newFakeProvider()
	resolver := &IdentityResolver{Teachers: fakeTeacherDir{entry: teacherEntry(id)}, Students: fakeStudentDir{}}
	reg := NewRegistry(fp, resolver, memKV())
	defer reg.Close()

	h := reg.StartTeacherSession("tok-guru", newTeacherProviderSession(id, "at-provider"), time.Now().Add(time.Hour))
	waitFor(t, 2*time.Second, func() bool { return h.State().Authenticated() })

	deps := &Deps{Provider: fp, Resolver: resolver, Registry: reg, KV: nil}
	role := performSignOut(context.Background(), deps, id, "tok-guru")

	assert.Equal(t, constants.RoleTeacher, role)
	assert.Equal(t, []string{"at-provider"}, fp.signOutCalls(), "sesi provider ditutup tepat sekali")

	_, ok := reg.Get("tok-guru")
	assert.False(t, ok)
}

func TestPerformSignOut_TeacherWithoutHolder(t *testing.T) {
	id := uuid.New()
	fp := newFakeProvider()
	resolver := &IdentityResolver{Teachers: fakeTeacherDir{entry: teacherEntry(id)}, Students: fakeStudentDir{}}
	reg := NewRegistry(fp, resolver, memKV())
	defer reg.Close()

	// proses restart: holder hilang, token provider tidak diketahui
	deps := &Deps{Provider: fp, Resolver: resolver, Registry: reg, KV: nil}
	role := performSignOut(context.Background(), deps, id, "tok-hilang")

	assert.Equal(t, constants.RoleTeacher, role)
	assert.Empty(t, fp.signOutCalls(), "tanpa token provider tidak ada yang bisa ditutup")
}

/* ===================== token plumbing ===================== */

func TestComputeRefreshHash(t *testing.T) {
	h1 := computeRefreshHash("token-a", "secret-1")
	h2 := computeRefreshHash("token-a", "secret-1")
	h3 := computeRefreshHash("token-a", "secret-2")
	h4 := computeRefreshHash("token-b", "secret-1")

	assert.Len(t, h1, 32)
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.NotEqual(t, h1, h4)
}

func TestReadAccessClaims(t *testing.T) {
	old := configs.JWTSecret
	configs.JWTSecret = "unit-secret"
	t.Cleanup(func() { configs.JWTSecret = old })

	id := uuid.New()
	exp := time.Now().Add(-time.Hour).Truncate(time.Second) // sudah kedaluwarsa

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"typ": "access",
		"id":  id.String(),
		"jti": "jti-123",
		"exp": exp.Unix(),
	}).SignedString([]byte("unit-secret"))
	require.NoError(t, err)

	// logout token kedaluwarsa tetap harus bisa dibaca
	gotID, gotJTI, gotExp := readAccessClaims(token)
	assert.Equal(t, id, gotID)
	assert.Equal(t, "jti-123", gotJTI)
	assert.True(t, gotExp.Equal(exp.UTC()))
}

func TestReadAccessClaims_WrongSignature(t *testing.T) {
	old := configs.JWTSecret
	configs.JWTSecret = "unit-secret"
	t.Cleanup(func() { configs.JWTSecret = old })

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  uuid.New().String(),
		"jti": "jti-palsu",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret-lain"))
	require.NoError(t, err)

	gotID, gotJTI, gotExp := readAccessClaims(token)
	assert.Equal(t, uuid.Nil, gotID)
	assert.Empty(t, gotJTI)
	assert.True(t, gotExp.IsZero())
}

func TestResolveBlacklistExpiry(t *testing.T) {
	t.Run("ikut exp token plus satu menit", func(t *testing.T) {
		exp := time.Now().UTC().Add(30 * time.Minute).Truncate(time.Second)
		got := resolveBlacklistExpiry(exp)
		assert.True(t, got.Equal(exp.Add(time.Minute)))
	})

	t.Run("token tanpa exp dapat jendela pendek", func(t *testing.T) {
		got := resolveBlacklistExpiry(time.Time{})
		assert.WithinDuration(t, time.Now().UTC().Add(2*time.Minute), got, 10*time.Second)
	})

	t.Run("env override menang", func(t *testing.T) {
		t.Setenv("BLACKLIST_TTL_SECONDS", "90")
		got := resolveBlacklistExpiry(time.Now().UTC().Add(30 * time.Minute))
		assert.WithinDuration(t, time.Now().UTC().Add(90*time.Second), got, 10*time.Second)
	})
}

func TestGetJWTSecret(t *testing.T) {
	old := configs.JWTSecret
	t.Cleanup(func() { configs.JWTSecret = old })

	configs.JWTSecret = "dari-config"
	s, err := getJWTSecret()
	require.NoError(t, err)
	assert.Equal(t, "dari-config", s)

	configs.JWTSecret = ""
	t.Setenv("JWT_SECRET", "dari-env")
	s, err = getJWTSecret()
	require.NoError(t, err)
	assert.Equal(t, "dari-env", s)

	t.Setenv("JWT_SECRET", "")
	_, err = getJWTSecret()
	assert.Error(t, err)
}
