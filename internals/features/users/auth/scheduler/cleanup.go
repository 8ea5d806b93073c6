package scheduler

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	authRepo "kelasku_backend/internals/features/users/auth/repository"
	"kelasku_backend/internals/features/users/auth/service"
	blacklist "kelasku_backend/internals/helpers/auth"
)

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// StartAuthCleanupCron membersihkan sisa-sisa sesi secara berkala:
// blacklist yang sudah lewat masa berlaku, refresh token kadaluarsa
// atau ter-revoke, dan holder sesi yang sudah expired di registry.
//
// ── ENTRYPOINT: panggil dari main.go
func StartAuthCleanupCron(db *gorm.DB, registry *service.Registry) {
	schedule := getEnvOrDefault("AUTH_CLEANUP_SCHEDULE", "30 * * * *")

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		log.Println("[CLEANUP] Menjalankan pembersihan sesi & token...")

		if n, err := blacklist.PurgeExpired(ctx, db); err != nil {
			log.Printf("[CLEANUP ERROR] Gagal purge token_blacklist: %v", err)
		} else if n > 0 {
			log.Printf("[CLEANUP] %d baris token_blacklist dihapus", n)
		}

		if n, err := authRepo.CleanupExpiredRefreshTokens(db.WithContext(ctx)); err != nil {
			log.Printf("[CLEANUP ERROR] Gagal bersihkan refresh_tokens: %v", err)
		} else if n > 0 {
			log.Printf("[CLEANUP] %d refresh token kadaluarsa/revoked dihapus", n)
		}

		if registry != nil {
			if n := registry.EvictExpired(); n > 0 {
				log.Printf("[CLEANUP] %d holder sesi expired di-evict", n)
			}
		}
	})
	if err != nil {
		log.Fatalf("[CLEANUP] add cron gagal: %v", err)
	}

	log.Printf("[CLEANUP] scheduler aktif schedule=%q", schedule)
	c.Start()
}
