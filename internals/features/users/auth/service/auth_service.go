package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"kelasku_backend/internals/configs"
	"kelasku_backend/internals/constants"
	authHelper "kelasku_backend/internals/features/users/auth/helper"
	authModel "kelasku_backend/internals/features/users/auth/model"
	authRepo "kelasku_backend/internals/features/users/auth/repository"
	helpers "kelasku_backend/internals/helpers"
	blacklist "kelasku_backend/internals/helpers/auth"
	"kelasku_backend/internals/helpers/identity"
	"kelasku_backend/internals/helpers/kvstore"
)

/* ==========================
   Const & Types
========================== */

const (
	accessTTLDefault  = 2 * time.Hour
	refreshTTLDefault = 7 * 24 * time.Hour

	// timeouts untuk query hot path (aman disesuaikan)
	qryTimeoutShort = 800 * time.Millisecond

	providerTimeout = 10 * time.Second
)

// Deps: kolaborator runtime jalur auth, dirakit sekali di main.
// Tokens nil = baris refresh token diakses langsung lewat GORM.
type Deps struct {
	Provider identity.Provider
	Resolver *IdentityResolver
	Registry *Registry
	KV       *kvstore.Safe
	Tokens   RefreshTokenStore
}

/* ==========================
   Meta schema cache (prewarm)
========================== */

type authMeta struct {
	once sync.Once
	// tables
	HasTeachers       bool
	HasStudents       bool
	HasTokenBlacklist bool
	HasRefreshTokens  bool

	Ready bool
}

var meta authMeta

// Panggil sekali saat app start setelah DB siap: service.PrewarmAuthMeta(db)
func PrewarmAuthMeta(db *gorm.DB) {
	meta.once.Do(func() {
		meta.HasTeachers = quickHasTable(db, "teachers")
		meta.HasStudents = quickHasTable(db, "students")
		meta.HasTokenBlacklist = quickHasTable(db, "token_blacklist")
		meta.HasRefreshTokens = quickHasTable(db, "refresh_tokens")
		meta.Ready = true

		if !meta.HasTeachers || !meta.HasStudents {
			log.Printf("[WARN] tabel role belum lengkap (teachers=%v students=%v); resolusi identitas akan selalu miss",
				meta.HasTeachers, meta.HasStudents)
		}
	})
}

func quickHasTable(db *gorm.DB, table string) bool {
	if db == nil || table == "" {
		return false
	}
	var exists bool
	_ = db.Raw(`SELECT to_regclass((SELECT current_schema()) || '.' || ?) IS NOT NULL`, table).Scan(&exists).Error
	return exists
}

/* ==========================
   Small Helpers
========================== */

func nowUTC() time.Time { return time.Now().UTC() }

func getJWTSecret() (string, error) {
	secret := strings.TrimSpace(configs.JWTSecret)
	if secret == "" {
		secret = strings.TrimSpace(os.Getenv("JWT_SECRET"))
	}
	if secret == "" {
		return "", fiber.NewError(fiber.StatusInternalServerError, "JWT_SECRET belum diset")
	}
	return secret, nil
}

func getRefreshSecret() (string, error) {
	secret := strings.TrimSpace(configs.JWTRefreshSecret)
	if secret == "" {
		secret = strings.TrimSpace(os.Getenv("JWT_REFRESH_SECRET"))
	}
	if secret == "" {
		return "", fiber.NewError(fiber.StatusInternalServerError, "JWT_REFRESH_SECRET belum diset")
	}
	return secret, nil
}

func strptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func computeRefreshHash(token, secret string) []byte {
	m := hmac.New(sha256.New, []byte(secret))
	_, _ = m.Write([]byte(token))
	return m.Sum(nil)
}

/* ==========================
   LOGIN GURU (identity provider)
========================== */

func LoginTeacher(db *gorm.DB, deps *Deps, c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Invalid input format")
	}
	input.Email = strings.TrimSpace(input.Email)

	if msg := authHelper.ValidateTeacherLoginInput(input.Email, input.Password); msg != "" {
		return helpers.JsonError(c, fiber.StatusBadRequest, msg)
	}

	// Delegasikan cek kredensial ke identity provider
	ctx, cancel := context.WithTimeout(c.Context(), providerTimeout)
	defer cancel()

	sess, err := deps.Provider.SignInWithPassword(ctx, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return helpers.JsonError(c, fiber.StatusUnauthorized, "Email atau Password salah")
		}
		log.Printf("[ERROR] login guru: provider: %v", err)
		return helpers.JsonError(c, fiber.StatusBadGateway, "Layanan identitas tidak dapat dihubungi")
	}

	return finishProviderLogin(db, deps, c, sess)
}

/* ==========================
   LOGIN GOOGLE
========================== */

func LoginGoogle(db *gorm.DB, deps *Deps, c *fiber.Ctx) error {
	var input struct {
		IDToken string `json:"id_token"`
	}
	if err := c.BodyParser(&input); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	// Verifikasi token Google dulu, baru ditukar sesi di provider
	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(input.IDToken, []string{configs.GoogleClientID}); err != nil {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Invalid Google ID Token")
	}

	ctx, cancel := context.WithTimeout(c.Context(), providerTimeout)
	defer cancel()

	sess, err := deps.Provider.SignInWithIDToken(ctx, "google", input.IDToken)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return helpers.JsonError(c, fiber.StatusUnauthorized, "Akun Google tidak terdaftar di layanan identitas")
		}
		log.Printf("[ERROR] login google: provider: %v", err)
		return helpers.JsonError(c, fiber.StatusBadGateway, "Layanan identitas tidak dapat dihubungi")
	}

	return finishProviderLogin(db, deps, c, sess)
}

// finishProviderLogin: sesi provider sah → resolve role → terbitkan token app.
// Principal yang resolve tanpa role dianggap GAGAL login (fail closed),
// sesi provider-nya ikut ditutup supaya tidak menggantung.
func finishProviderLogin(db *gorm.DB, deps *Deps, c *fiber.Ctx, sess *identity.Session) error {
	profile, err := deps.Resolver.Resolve(c.Context(), sess.User.ID, sess.User.Email)
	if err != nil {
		log.Printf("[WARN] login: principal %s %v", sess.User.ID, err)
		signOutCtx, cancel := context.WithTimeout(context.Background(), providerTimeout)
		defer cancel()
		if serr := deps.Provider.SignOut(signOutCtx, sess.AccessToken); serr != nil {
			log.Printf("[WARN] login: tutup sesi provider yatim gagal: %v", serr)
		}
		if errors.Is(err, ErrNoRole) {
			return helpers.JsonError(c, fiber.StatusForbidden, "Akun Anda tidak terdaftar sebagai guru maupun siswa")
		}
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal menentukan role akun")
	}

	return issueTokensAndRespond(db, deps, c, profile, sess)
}

/* ==========================
   LOGIN SISWA (tabel kredensial lokal)
========================== */

func LoginStudent(db *gorm.DB, deps *Deps, c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Invalid input format")
	}
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	if msg := authHelper.ValidateStudentLoginInput(input.Email, input.Password); msg != "" {
		return helpers.JsonError(c, fiber.StatusBadRequest, msg)
	}

	ctx, cancel := context.WithTimeout(c.Context(), qryTimeoutShort)
	defer cancel()

	cred, err := authRepo.StudentTable{DB: db}.FindActiveByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// akun tidak ada ATAU nonaktif: dua-duanya tampak sama dari luar
			return helpers.JsonError(c, fiber.StatusUnauthorized, "Email atau Password salah")
		}
		log.Printf("[ERROR] login siswa: query: %v", err)
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal memeriksa akun")
	}

	if !authHelper.VerifyPassword(input.Password, cred.PasswordDigest) {
		// password keliru: state tidak berubah sama sekali
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Password salah")
	}

	// Principal siswa disintesis lokal; provider tidak dilibatkan.
	profile := &Profile{
		ID:       cred.ID,
		Email:    cred.Email,
		FullName: cred.FullName,
		Role:     constants.RoleStudent,
	}
	return issueTokensAndRespond(db, deps, c, profile, nil)
}

/* ==========================
   ISSUE TOKENS + Response
========================== */

// issueTokensAndRespond menerbitkan pasangan token aplikasi, menyimpan
// refresh token (hash), menyalakan holder sesi, lalu menulis respons login.
// sess nil = jalur siswa (session memang absen).
func issueTokensAndRespond(db *gorm.DB, deps *Deps, c *fiber.Ctx, profile *Profile, sess *identity.Session) error {
	jwtSecret, err := getJWTSecret()
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	refreshSecret, err := getRefreshSecret()
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	now := nowUTC()
	accessExp := now.Add(accessTTLDefault)
	tokenID := uuid.NewString()

	accessClaims := jwt.MapClaims{
		"typ":       "access",
		"sub":       profile.ID.String(),
		"id":        profile.ID.String(),
		"jti":       tokenID,
		"user_name": profile.FullName,
		"email":     profile.Email,
		"role":      profile.Role,
		"iat":       now.Unix(),
		"exp":       accessExp.Unix(),
	}
	refreshClaims := jwt.MapClaims{
		"typ":   "refresh",
		"sub":   profile.ID.String(),
		"id":    profile.ID.String(),
		"email": profile.Email,
		"role":  profile.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(refreshTTLDefault).Unix(),
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(jwtSecret))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat access token")
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(refreshSecret))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat refresh token")
	}

	// Simpan refresh token (hashed)
	tokenHash := computeRefreshHash(refreshToken, refreshSecret)
	ua, ip := c.Get("User-Agent"), c.IP()
	if err := deps.tokenStore(db).Create(&authModel.RefreshToken{
		UserID:    profile.ID,
		Role:      profile.Role,
		TokenHash: tokenHash,
		ExpiresAt: now.Add(refreshTTLDefault),
		UserAgent: strptr(ua),
		IP:        strptr(ip),
	}); err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan refresh token")
	}

	// Nyalakan holder sesi (pemilik state auth di proses ini)
	if deps.Registry != nil {
		if sess != nil {
			deps.Registry.StartTeacherSession(tokenID, sess, accessExp)
		} else {
			principal := &identity.Principal{ID: profile.ID, Email: profile.Email}
			deps.Registry.StartStudentSession(tokenID, principal, profile, accessExp)
		}
	}

	// Cookies
	setAuthCookies(c, accessToken, refreshToken, now)

	return helpers.JsonOK(c, "Login berhasil", fiber.Map{
		"user": fiber.Map{
			"id":        profile.ID,
			"email":     profile.Email,
			"full_name": profile.FullName,
			"role":      profile.Role,
		},
		"access_token": accessToken,
		"landing":      constants.Landing(profile.Role),
	})
}

func setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string, now time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
		Path:     "/",
		Expires:  now.Add(accessTTLDefault),
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
		Path:     "/",
		Expires:  now.Add(refreshTTLDefault),
	})
}

func clearAuthCookies(c *fiber.Ctx) {
	expired := nowUTC().Add(-time.Hour)
	for _, name := range []string{"access_token", "refresh_token", "csrf_token"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			HTTPOnly: name != "csrf_token",
			Secure:   true,
			SameSite: "None",
			Path:     "/",
			Expires:  expired,
			MaxAge:   -1,
		})
	}
}

/* ==========================
   LOGOUT
========================== */

func Logout(db *gorm.DB, deps *Deps, c *fiber.Ctx) error {
	// CSRF wajib jika auth via cookie (tanpa Bearer)
	cookieAT := strings.TrimSpace(c.Cookies("access_token"))
	authHeader := strings.TrimSpace(c.Get("Authorization"))
	usesCookieAuth := cookieAT != "" && !strings.HasPrefix(authHeader, "Bearer ")

	if usesCookieAuth {
		if err := helpers.CheckCSRFCookieHeader(c); err != nil {
			return helpers.JsonError(c, fiber.StatusForbidden, err.Error())
		}
	}

	// Ambil raw access token (cookie/Authorization)
	accessToken := helpers.GetRawAccessToken(c)
	if accessToken == "" {
		log.Println("[INFO] Logout tanpa access token; lanjut clear cookies (idempotent)")
		clearAuthCookies(c)
		return helpers.JsonOK(c, "Logout successful", nil)
	}

	principalID, tokenID, expiresAt := readAccessClaims(accessToken)

	// Role TIDAK diambil dari profil cache: cek segar ke tabel guru.
	// Guru → tutup sesi provider (sekali); siswa → cukup bersihkan lokal.
	role := performSignOut(c.Context(), deps, principalID, tokenID)
	log.Printf("[INFO] logout: principal=%s role=%s", principalID, role)

	// Blacklist access token (idempotent)
	jwtSecret, err := getJWTSecret()
	if err == nil {
		if err := blacklist.Add(c.Context(), db, accessToken, jwtSecret, resolveBlacklistExpiry(expiresAt)); err != nil {
			log.Printf("[WARN] Failed to blacklist token: %v", err)
		}
	}

	// Revoke refresh token dari DB
	store := deps.tokenStore(db)
	if rt := helpers.GetRefreshTokenFromCookie(c); rt != "" {
		if refreshSecret, rerr := getRefreshSecret(); rerr == nil {
			hash := computeRefreshHash(rt, refreshSecret)
			if row, ferr := store.FindActiveByHash(hash); ferr == nil {
				_ = store.Revoke(row.ID)
			}
		}
	} else if principalID != uuid.Nil {
		_ = store.RevokeAllForUser(principalID)
	}

	clearAuthCookies(c)
	return helpers.JsonOK(c, "Logout successful", nil)
}

// performSignOut memutuskan jalur sign-out dengan cek keberadaan segar
// di tabel guru, lalu merobohkan holder. Return role yang dipakai.
func performSignOut(ctx context.Context, deps *Deps, principalID uuid.UUID, tokenID string) string {
	role := constants.RoleStudent

	if deps.Resolver != nil && deps.Resolver.IsTeacher(ctx, principalID) {
		role = constants.RoleTeacher

		var providerToken string
		if deps.Registry != nil && tokenID != "" {
			if st, ok := deps.Registry.Get(tokenID); ok && st.Session != nil {
				providerToken = st.Session.AccessToken
			}
		}
		if providerToken != "" && deps.Provider != nil {
			if err := deps.Provider.SignOut(ctx, providerToken); err != nil {
				log.Printf("[WARN] logout: sign-out provider gagal: %v", err)
			}
		} else {
			log.Printf("[WARN] logout: sesi provider tidak ditemukan utk guru %s", principalID)
		}
	}

	if deps.Registry != nil && tokenID != "" {
		deps.Registry.Drop(ctx, tokenID)
	}
	return role
}

// readAccessClaims membaca id/jti/exp tanpa peduli token masih valid;
// logout token kedaluwarsa tetap harus jalan.
func readAccessClaims(accessToken string) (principalID uuid.UUID, tokenID string, expiresAt time.Time) {
	claims := jwt.MapClaims{}
	parser := jwt.Parser{SkipClaimsValidation: true}
	secret, err := getJWTSecret()
	if err != nil {
		return uuid.Nil, "", time.Time{}
	}
	if _, err := parser.ParseWithClaims(accessToken, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}); err != nil {
		return uuid.Nil, "", time.Time{}
	}

	if v, ok := claims["id"].(string); ok {
		principalID, _ = uuid.Parse(v)
	}
	tokenID, _ = claims["jti"].(string)
	if exp, ok := claims["exp"].(float64); ok {
		expiresAt = time.Unix(int64(exp), 0).UTC()
	}
	return principalID, tokenID, expiresAt
}

func resolveBlacklistExpiry(tokenExp time.Time) time.Time {
	if v := os.Getenv("BLACKLIST_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return nowUTC().Add(time.Duration(n) * time.Second)
		}
	}
	if !tokenExp.IsZero() && tokenExp.After(nowUTC()) {
		return tokenExp.Add(time.Minute)
	}
	return nowUTC().Add(2 * time.Minute)
}

/* ==========================
   FORCED SIGN-OUT (401 dari provider)
========================== */

// ForceGlobalSignOut dipanggil saat provider menolak sesi (401):
// seluruh jejak auth lokal dibuang dan klien dipaksa balik ke root.
func ForceGlobalSignOut(db *gorm.DB, deps *Deps, c *fiber.Ctx, principalID uuid.UUID, tokenID string) error {
	if deps.Registry != nil && tokenID != "" {
		deps.Registry.Drop(c.Context(), tokenID)
	}
	if principalID != uuid.Nil {
		_ = deps.tokenStore(db).RevokeAllForUser(principalID)
	}
	if accessToken := helpers.GetRawAccessToken(c); accessToken != "" {
		if jwtSecret, err := getJWTSecret(); err == nil {
			_ = blacklist.Add(c.Context(), db, accessToken, jwtSecret, nowUTC().Add(2*time.Minute))
		}
	}
	clearAuthCookies(c)

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success":     false,
		"message":     "Sesi Anda sudah tidak berlaku. Silakan login kembali.",
		"redirect_to": "/",
	})
}
