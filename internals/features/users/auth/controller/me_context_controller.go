// file: internals/features/users/auth/controller/me_context_controller.go
package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	helper "kelasku_backend/internals/helpers"
	helperAuth "kelasku_backend/internals/helpers/auth"
	"kelasku_backend/internals/helpers/kvstore"
)

/* =============== GET /api/auth/me =============== */
// Snapshot profil hasil resolusi. Sumber kebenaran = holder di registry
// (profil live), fallback ke claim JWT kalau holder belum bisa dipulihkan.
func (ac *AuthController) Me(c *fiber.Ctx) error {
	tokenID, err := helperAuth.GetTokenID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Token tidak dikenal")
	}

	st, ok := ac.Deps.Registry.Get(tokenID)
	if !ok {
		st, ok = ac.Deps.Registry.Resume(c.Context(), tokenID)
	}
	if ok {
		if st.Loading {
			c.Set("Retry-After", "1")
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
				"success": false,
				"loading": true,
				"message": "Profil sedang dimuat. Coba lagi sebentar.",
			})
		}
		if st.Profile != nil {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"user": fiber.Map{
					"id":        st.Profile.ID,
					"email":     st.Profile.Email,
					"full_name": st.Profile.FullName,
					"role":      st.Profile.Role,
				},
			})
		}
		// holder ada tapi tanpa profil = resolusi gagal total
		return helper.JsonError(c, fiber.StatusUnauthorized, "Sesi tidak valid, silakan login ulang")
	}

	// Fallback: claim dari middleware (holder hilang, mis. restart tanpa kvstore)
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Sesi tidak ditemukan, silakan login ulang")
	}
	role, _ := helperAuth.GetRoleFromToken(c)
	name, _ := c.Locals(helperAuth.LocUserName).(string)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user": fiber.Map{
			"id":        userID,
			"email":     helperAuth.GetEmailFromToken(c),
			"full_name": name,
			"role":      role,
		},
	})
}

/* =============== GET /api/auth/state =============== */
// State penuh utk frontend: loading flag, principal, profile, session.
// Siswa: session selalu null walau terautentikasi.
func (ac *AuthController) State(c *fiber.Ctx) error {
	tokenID, err := helperAuth.GetTokenID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Token tidak dikenal")
	}

	st, ok := ac.Deps.Registry.Get(tokenID)
	if !ok {
		st, ok = ac.Deps.Registry.Resume(c.Context(), tokenID)
	}
	if !ok {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Sesi tidak ditemukan, silakan login ulang")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    st,
	})
}

/* =============== GET /api/auth/redirect-path =============== */
// One-shot: path yang direkam guard saat user belum login. Sekali dibaca
// slot langsung kosong, panggilan kedua dapat null.
func (ac *AuthController) RedirectPath(c *fiber.Ctx) error {
	devID := strings.TrimSpace(c.Cookies("device_id"))
	if devID == "" {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": true,
			"data":    fiber.Map{"redirect_to": nil},
		})
	}

	path, found := ac.Deps.KV.GetDel(c.Context(), kvstore.RedirectKey(devID))
	if !found || path == "" {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": true,
			"data":    fiber.Map{"redirect_to": nil},
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"redirect_to": path},
	})
}
