// internals/middlewares/auth/claim_utils.go
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"

	authHelper "kelasku_backend/internals/helpers/auth"
)

/* ======== Extractors ======== */

func extractBearerToken(c *fiber.Ctx) (string, error) {
	// 1) Ambil dari Authorization header atau fallback cookie
	auth := strings.TrimSpace(c.Get("Authorization"))
	if auth == "" {
		if cookieTok := c.Cookies("access_token"); cookieTok != "" {
			auth = "Bearer " + cookieTok
		}
	}
	if auth == "" {
		return "", fmt.Errorf("unauthorized - No token provided")
	}

	// 2) Robust split: toleransi spasi ganda & case-insensitive
	fields := strings.Fields(auth)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", fmt.Errorf("unauthorized - Invalid token format")
	}
	tok := fields[1]

	// 3) Sanitasi: buang kutip di kiri/kanan & spasi
	tok = strings.TrimSpace(tok)
	tok = strings.Trim(tok, "\"'")

	if tok == "" {
		return "", fmt.Errorf("unauthorized - Empty token")
	}
	return tok, nil
}

func validateTokenExpiry(claims jwt.MapClaims, skew time.Duration) error {
	expVal, ok := claims["exp"]
	if !ok {
		return fmt.Errorf("token has no exp")
	}

	var expUnix int64
	switch t := expVal.(type) {
	case float64:
		expUnix = int64(t)
	case int64:
		expUnix = t
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid exp format")
		}
		expUnix = n
	default:
		// best-effort untuk tipe numeric lain (mis. json.Number)
		n, err := strconv.ParseInt(fmt.Sprintf("%v", t), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid exp type")
		}
		expUnix = n
	}

	now := time.Now().UTC()
	expTime := time.Unix(expUnix, 0).UTC()
	if now.After(expTime.Add(skew)) {
		return fmt.Errorf("token expired at %v", expTime)
	}
	return nil
}

func extractUserID(claims jwt.MapClaims) (uuid.UUID, error) {
	idRaw, ok := claims["id"]
	if !ok {
		return uuid.Nil, fmt.Errorf("no user id")
	}
	switch v := idRaw.(type) {
	case string:
		return uuid.Parse(strings.TrimSpace(v))
	default:
		return uuid.Nil, fmt.Errorf("invalid user id type")
	}
}

func ensureStudentActive(db *gorm.DB, studentID uuid.UUID) error {
	// tanpa DB (dev/test) cek dilewati, konsisten dgn IsBlacklisted
	if db == nil {
		return nil
	}
	var row struct {
		IsActive bool
	}
	if err := db.Table("students").Select("is_active").Where("id = ?", studentID).First(&row).Error; err != nil {
		return err
	}
	if !row.IsActive {
		return errors.New("student inactive")
	}
	return nil
}

// dipakai guard route utk cek apakah guru masih terdaftar
var ErrNotRegistered = errors.New("not registered")

func ensureTeacherExists(db *gorm.DB, teacherID uuid.UUID) error {
	var n int64
	if err := db.Table("teachers").Where("id = ?", teacherID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotRegistered
	}
	return nil
}

/* ======== Store claims to Locals ======== */

func storeClaimsToLocals(c *fiber.Ctx, claims jwt.MapClaims, userID uuid.UUID) {
	c.Locals(authHelper.LocUserID, userID.String())

	if role, ok := claims["role"].(string); ok {
		c.Locals(authHelper.LocRole, role)
	}
	if userName, ok := claims["user_name"].(string); ok {
		c.Locals(authHelper.LocUserName, userName)
	}
	if email, ok := claims["email"].(string); ok {
		c.Locals(authHelper.LocEmail, email)
	}
	if jti, ok := claims["jti"].(string); ok {
		c.Locals(authHelper.LocTokenID, jti)
	}
}
