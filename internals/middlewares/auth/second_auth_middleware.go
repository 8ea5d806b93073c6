package auth

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"kelasku_backend/internals/configs"
	"kelasku_backend/internals/constants"
	helper "kelasku_backend/internals/helpers"
	authHelper "kelasku_backend/internals/helpers/auth"

	"gorm.io/gorm"
)

// OptionalAuthMiddleware mengisi user context KALAU ada token valid,
// tapi tidak pernah menolak request: tanpa token atau token rusak
// request lanjut sebagai anonymous. Dipakai halaman login supaya user
// yang sudah login bisa langsung dilempar ke landing rolenya.
func OptionalAuthMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := extractBearerToken(c)
		if err != nil || tokenString == "" {
			return c.Next()
		}

		// Token di blacklist = anonymous, bukan error
		if blacklisted, err := authHelper.IsBlacklisted(c.Context(), db, tokenString, configs.JWTSecret); err != nil || blacklisted {
			if err != nil {
				log.Printf("[WARN] optional auth: cek blacklist gagal: %v", err)
			}
			return c.Next()
		}

		secretKey := configs.JWTSecret
		if secretKey == "" {
			log.Println("[ERROR] JWT_SECRET kosong, lanjut sebagai anonymous")
			return c.Next()
		}

		claims := jwt.MapClaims{}
		parser := jwt.Parser{SkipClaimsValidation: true}
		if _, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		}); err != nil {
			return c.Next()
		}

		if typ, _ := claims["typ"].(string); typ != "access" {
			return c.Next()
		}
		if err := validateTokenExpiry(claims, 30*time.Second); err != nil {
			return c.Next()
		}

		userID, err := extractUserID(claims)
		if err != nil {
			return c.Next()
		}

		// Siswa nonaktif diperlakukan sebagai anonymous di halaman publik
		if role, _ := claims["role"].(string); role == constants.RoleStudent {
			if err := ensureStudentActive(db, userID); err != nil {
				return c.Next()
			}
		}

		storeClaimsToLocals(c, claims, userID)
		c.Locals(helper.LocRawToken, tokenString)
		return c.Next()
	}
}
