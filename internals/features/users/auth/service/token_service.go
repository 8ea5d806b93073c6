// internals/features/users/auth/service/token_service.go
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"kelasku_backend/internals/constants"
	authModel "kelasku_backend/internals/features/users/auth/model"
	helpers "kelasku_backend/internals/helpers"
	"kelasku_backend/internals/helpers/identity"
)

// ========================== REFRESH TOKEN ==========================
// POST /api/auth/refresh
//
// Rotasi penuh: refresh lama di-revoke, pasangan token baru diterbitkan,
// holder sesi dipindah ke jti baru. Utk guru, sesi provider ikut
// di-refresh; 401 dari provider berarti forced sign-out global.
func RefreshToken(db *gorm.DB, deps *Deps, c *fiber.Ctx) error {
	// CSRF wajib untuk endpoint cookie-based
	if strings.TrimSpace(c.Get("Authorization")) == "" {
		if err := helpers.CheckCSRFCookieHeader(c); err != nil {
			return helpers.JsonError(c, fiber.StatusForbidden, err.Error())
		}
	}

	refreshCookie := strings.TrimSpace(c.Cookies("refresh_token"))
	if refreshCookie == "" {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Refresh token tidak ada")
	}

	refreshSecret, err := getRefreshSecret()
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	// Parse & validate refresh JWT
	tok, err := jwt.Parse(refreshCookie, func(t *jwt.Token) (any, error) {
		return []byte(refreshSecret), nil
	})
	if err != nil || !tok.Valid {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Refresh token invalid")
	}
	claims, _ := tok.Claims.(jwt.MapClaims)
	if typ, _ := claims["typ"].(string); typ != "refresh" {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Refresh token invalid")
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Refresh token invalid")
	}
	email, _ := claims["email"].(string)

	// Pastikan hash refresh masih hidup di DB
	store := deps.tokenStore(db)
	hash := computeRefreshHash(refreshCookie, refreshSecret)
	oldRow, err := store.FindActiveByHash(hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helpers.JsonError(c, fiber.StatusUnauthorized, "Refresh token tidak dikenal")
		}
		return helpers.JsonError(c, fiber.StatusInternalServerError, "DB error")
	}

	// jti holder lama diambil dari access token yang menyertai request
	_, oldTokenID, _ := readAccessClaims(helpers.GetRawAccessToken(c))

	// Role di-resolve ulang, bukan dipercaya dari claim lama
	profile, err := deps.Resolver.Resolve(c.Context(), userID, email)
	if err != nil {
		if errors.Is(err, ErrNoRole) {
			// akun dicabut sejak login terakhir → paksa keluar total
			log.Printf("[WARN] refresh: principal %s kehilangan role", userID)
			_ = store.Revoke(oldRow.ID)
			return ForceGlobalSignOut(db, deps, c, userID, oldTokenID)
		}
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal menentukan role akun")
	}

	// Utk guru: refresh sesi provider juga. 401 = forced sign-out.
	var providerSess *identity.Session
	if profile.Role == constants.RoleTeacher && deps.Registry != nil && oldTokenID != "" {
		if st, ok := deps.Registry.Get(oldTokenID); ok && st.Session != nil {
			ctx, cancel := context.WithTimeout(c.Context(), providerTimeout)
			defer cancel()
			providerSess, err = deps.Provider.RefreshSession(ctx, st.Session.RefreshToken)
			if err != nil {
				if errors.Is(err, identity.ErrUnauthorized) {
					log.Printf("[WARN] refresh: provider menolak sesi guru %s", userID)
					_ = store.Revoke(oldRow.ID)
					return ForceGlobalSignOut(db, deps, c, userID, oldTokenID)
				}
				log.Printf("[WARN] refresh: provider refresh gagal, lanjut dgn sesi lama: %v", err)
				providerSess = st.Session
			}
		}
	}

	// ROTATE: revoke token lama lebih dulu
	if err := store.Revoke(oldRow.ID); err != nil {
		log.Printf("[refresh] revoke old token failed: %v", err)
	}
	if deps.Registry != nil && oldTokenID != "" {
		deps.Registry.Drop(c.Context(), oldTokenID)
	}

	// Terbitkan pasangan baru + holder baru
	jwtSecret, err := getJWTSecret()
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	now := nowUTC()
	accessExp := now.Add(accessTTLDefault)
	newTokenID := uuid.NewString()

	accessClaims := jwt.MapClaims{
		"typ":       "access",
		"sub":       profile.ID.String(),
		"id":        profile.ID.String(),
		"jti":       newTokenID,
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

	newAccess, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(jwtSecret))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal buat access baru")
	}
	newRefresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(refreshSecret))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal buat refresh baru")
	}

	if err := store.Create(&authModel.RefreshToken{
		UserID:    profile.ID,
		Role:      profile.Role,
		TokenHash: computeRefreshHash(newRefresh, refreshSecret),
		ExpiresAt: now.Add(refreshTTLDefault),
		UserAgent: strptr(c.Get("User-Agent")),
		IP:        strptr(c.IP()),
	}); err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal simpan refresh baru")
	}

	if deps.Registry != nil {
		if profile.Role == constants.RoleTeacher && providerSess != nil {
			deps.Registry.StartTeacherSession(newTokenID, providerSess, accessExp)
		} else {
			principal := &identity.Principal{ID: profile.ID, Email: profile.Email}
			deps.Registry.StartStudentSession(newTokenID, principal, profile, accessExp)
		}
	}

	setAuthCookies(c, newAccess, newRefresh, now)

	return helpers.JsonOK(c, "Token diperbarui", fiber.Map{
		"access_token": newAccess,
	})
}

// ========================== CSRF SEED ==========================
// GET /api/auth/csrf — double-submit cookie strategy.
func CSRF(c *fiber.Ctx) error {
	token := randomString(48)
	c.Cookie(&fiber.Cookie{
		Name:     "csrf_token",
		Value:    token,
		HTTPOnly: false, // dibaca JS utk dikirim balik via header
		Secure:   true,
		SameSite: "None",
		Path:     "/",
		Expires:  nowUTC().Add(24 * time.Hour),
	})
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{"csrf_token": token},
	})
}

func randomString(n int) string {
	b := make([]byte, (n+1)/2)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)[:n]
}
