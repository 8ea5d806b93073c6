// internals/middlewares/auth/route_guard.go
package auth

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"kelasku_backend/internals/constants"
	authService "kelasku_backend/internals/features/users/auth/service"
	authHelper "kelasku_backend/internals/helpers/auth"
	"kelasku_backend/internals/helpers/kvstore"
)

const (
	// DeviceCookie mengikat slot redirect ke satu browser, login belum tentu ada.
	DeviceCookie = "device_id"

	redirectTTL     = 10 * time.Minute
	deviceCookieAge = 180 * 24 * time.Hour
)

type GuardConfig struct {
	DB       *gorm.DB
	Registry *authService.Registry
	KV       *kvstore.Safe
	Role     string // kosong = cukup login, tanpa syarat role
}

// Guard menjaga satu percobaan navigasi:
//   - sesi masih dimuat        → 202 + Retry-After (klien coba lagi)
//   - tanpa token / tanpa role → simpan path tujuan, arahkan ke /masuk
//   - role tidak cocok         → arahkan ke landing role tersebut
//   - cocok                    → lanjut dengan Locals terisi
func Guard(cfg GuardConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := authenticate(c, cfg.DB); err != nil {
			if fe, ok := err.(*fiber.Error); ok && fe.Code == fiber.StatusInternalServerError {
				return err
			}
			return redirectToLogin(c, cfg.KV)
		}

		role, _ := c.Locals(authHelper.LocRole).(string)
		tokenID, _ := c.Locals(authHelper.LocTokenID).(string)

		if cfg.Registry != nil && tokenID != "" {
			st, ok := cfg.Registry.Get(tokenID)
			if !ok {
				// proses baru restart: coba pulihkan dari snapshot
				st, ok = cfg.Registry.Resume(c.Context(), tokenID)
			}
			if !ok {
				return redirectToLogin(c, cfg.KV)
			}
			if st.Loading {
				c.Set(fiber.HeaderRetryAfter, "1")
				return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
					"success": false,
					"loading": true,
					"message": "Sesi sedang dimuat. Coba lagi sebentar.",
				})
			}
			if st.Profile == nil {
				return redirectToLogin(c, cfg.KV)
			}
			// role hidup dari profil menang atas klaim token
			role = st.Profile.Role
			c.Locals(authHelper.LocRole, role)
			c.Locals(authHelper.LocUserName, st.Profile.FullName)
		}

		if cfg.Role != "" && role != cfg.Role {
			landing := constants.Landing(role)
			if wantsHTML(c) {
				return c.Redirect(landing, fiber.StatusFound)
			}
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success":     false,
				"message":     constants.RoleError(cfg.Role),
				"redirect_to": landing,
			})
		}

		// Guru yang barisnya hilang dari directory tidak boleh bertahan
		// dengan token lama; siswa nonaktif sudah dicegat authenticate.
		if role == constants.RoleTeacher && cfg.DB != nil {
			if uid, uerr := authHelper.GetUserIDFromToken(c); uerr == nil {
				if err := ensureTeacherExists(cfg.DB, uid); err != nil {
					if errors.Is(err, ErrNotRegistered) {
						return redirectToLogin(c, cfg.KV)
					}
					// DB bermasalah bukan alasan menendang user keluar
					log.Printf("[WARN] guard: cek directory guru gagal: %v", err)
				}
			}
		}

		return c.Next()
	}
}

/* ===================== redirect helpers ===================== */

func redirectToLogin(c *fiber.Ctx, kv *kvstore.Safe) error {
	// simpan path tujuan (one-shot) per perangkat, kecuali halaman login sendiri
	if kv != nil && c.Path() != constants.LoginPath {
		devID := EnsureDeviceID(c)
		kv.Set(c.Context(), kvstore.RedirectKey(devID), c.OriginalURL(), redirectTTL)
	}

	if wantsHTML(c) {
		return c.Redirect(constants.LoginPath, fiber.StatusFound)
	}
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success":     false,
		"message":     "Silakan login terlebih dahulu",
		"redirect_to": constants.LoginPath,
	})
}

// EnsureDeviceID membaca cookie device_id, minting baru kalau belum ada.
func EnsureDeviceID(c *fiber.Ctx) string {
	if v := strings.TrimSpace(c.Cookies(DeviceCookie)); v != "" {
		return v
	}
	id := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     DeviceCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(deviceCookieAge.Seconds()),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
	})
	return id
}

func wantsHTML(c *fiber.Ctx) bool {
	return strings.Contains(c.Get(fiber.HeaderAccept), "text/html")
}
