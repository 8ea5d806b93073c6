// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"kelasku_backend/internals/configs"
	"kelasku_backend/internals/constants"
	helper "kelasku_backend/internals/helpers"
	authHelper "kelasku_backend/internals/helpers/auth"
)

// Public path yang di-skip auth (health check dsb.)
var skipPaths = map[string]struct{}{
	"/health": {},
}

func AuthMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Skip path tertentu
		if _, ok := skipPaths[c.Path()]; ok {
			return c.Next()
		}
		if err := authenticate(c, db); err != nil {
			return err
		}
		return c.Next()
	}
}

// authenticate memverifikasi access token lalu mengisi Locals.
// Dipakai AuthMiddleware dan Guard; return *fiber.Error siap kirim.
func authenticate(c *fiber.Ctx, db *gorm.DB) error {
	// 1) Ambil Authorization (atau cookie)
	tokenString, err := extractBearerToken(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}

	// 2) Cek blacklist (sekali per request)
	if c.Locals("token_checked") == nil {
		blacklisted, err := authHelper.IsBlacklisted(c.Context(), db, tokenString, configs.JWTSecret)
		if err != nil {
			log.Println("[ERROR] DB error saat cek blacklist:", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
		}
		if blacklisted {
			log.Println("[WARNING] Token ditemukan di blacklist")
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token is blacklisted")
		}
		c.Locals("token_checked", true)
	}

	// 3) Parse & verifikasi JWT
	secretKey := configs.JWTSecret
	if secretKey == "" {
		log.Println("[ERROR] JWT_SECRET kosong")
		return fiber.NewError(fiber.StatusInternalServerError, "Missing JWT Secret")
	}

	claims := jwt.MapClaims{}
	parser := jwt.Parser{SkipClaimsValidation: true}
	if _, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	}); err != nil {
		log.Println("[ERROR] Gagal parse token:", err)
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token parse error")
	}

	// 4) Tolak refresh token yang dipakai sebagai access token
	if typ, _ := claims["typ"].(string); typ != "" && typ != "access" {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Wrong token type")
	}

	// 5) Validasi exp
	if err := validateTokenExpiry(claims, 30*time.Second); err != nil {
		log.Println("[ERROR] Exp validation:", err)
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token expired")
	}

	// 6) Ambil user_id + role
	userID, err := extractUserID(claims)
	if err != nil {
		log.Println("[ERROR] user_id:", err)
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Invalid or missing user ID")
	}

	role, _ := claims["role"].(string)

	// 7) Siswa nonaktif tidak boleh lanjut, walau tokennya masih hidup
	if role == constants.RoleStudent {
		if err := ensureStudentActive(db, userID); err != nil {
			log.Println("[ERROR] ensureStudentActive:", err)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - User not found")
			}
			return fiber.NewError(fiber.StatusForbidden, "Akun Anda telah dinonaktifkan. Hubungi guru kelas.")
		}
	}

	// 8) Simpan klaim + raw token ke context
	storeClaimsToLocals(c, claims, userID)
	c.Locals(helper.LocRawToken, tokenString)

	return nil
}
