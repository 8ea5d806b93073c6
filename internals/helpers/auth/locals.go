// file: internals/helpers/auth/locals.go
package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kelasku_backend/internals/constants"
)

/* ============================================
   Locals Keys (middleware auth yang mengisi)
   ============================================ */

const (
	LocUserID   = "user_id"   // string UUID principal
	LocRole     = "role"      // "teacher" | "student"
	LocUserName = "user_name" // nama lengkap untuk tampilan
	LocEmail    = "email"
	LocTokenID  = "token_id" // jti access token = kunci holder sesi
)

/* ============================================
   Getters
   ============================================ */

func GetUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	v, ok := c.Locals(LocUserID).(string)
	if !ok || strings.TrimSpace(v) == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "user_id tidak ditemukan di token")
	}
	id, err := uuid.Parse(strings.TrimSpace(v))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "user_id tidak valid")
	}
	return id, nil
}

func GetRoleFromToken(c *fiber.Ctx) (string, error) {
	v, ok := c.Locals(LocRole).(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "role tidak ditemukan di token")
	}
	return strings.ToLower(strings.TrimSpace(v)), nil
}

func GetTokenID(c *fiber.Ctx) (string, error) {
	v, ok := c.Locals(LocTokenID).(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "token_id tidak ditemukan di token")
	}
	return strings.TrimSpace(v), nil
}

func GetEmailFromToken(c *fiber.Ctx) string {
	v, _ := c.Locals(LocEmail).(string)
	return strings.TrimSpace(v)
}

func IsTeacher(c *fiber.Ctx) bool {
	role, err := GetRoleFromToken(c)
	return err == nil && role == constants.RoleTeacher
}

func IsStudent(c *fiber.Ctx) bool {
	role, err := GetRoleFromToken(c)
	return err == nil && role == constants.RoleStudent
}
