package helper

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"kelasku_backend/internals/configs"
)

/* =======================================================================
   Reaper sampah terjadwal.
   Dua pekerjaan dalam satu jadwal:
     1) objek di prefix spam/ (hasil MoveToSpamByURL) yang umurnya lewat
        retensi dihapus permanen dari bucket;
     2) baris materi & tugas yang sudah lama soft-deleted di-hard-delete.
   Keduanya best-effort; kegagalan dicatat dan dicoba lagi jadwal berikut.
======================================================================= */

const reaperRunBudget = 4 * time.Minute

type reaperConfig struct {
	schedule  string
	prefix    string
	retention time.Duration
	dryRun    bool
}

func loadReaperConfig() reaperConfig {
	days := 30
	if n, err := strconv.Atoi(configs.GetEnv("RETENTION_DAYS", "30")); err == nil && n > 0 {
		days = n
	}
	return reaperConfig{
		schedule:  configs.GetEnv("CRON_SCHEDULE", "15 2 * * *"),
		prefix:    configs.GetEnv("REAPER_PREFIX", "spam/"),
		retention: time.Duration(days) * 24 * time.Hour,
		dryRun:    configs.GetEnv("DRY_RUN") == "true",
	}
}

// StartTrashReaperCron dipanggil sekali dari main setelah DB siap.
// Tanpa kredensial OSS hanya bagian DB yang jalan.
func StartTrashReaperCron(db *gorm.DB) {
	cfg := loadReaperConfig()

	bucket := reaperBucket()

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(cfg.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reaperRunBudget)
		defer cancel()

		if bucket != nil {
			if err := reapSpamObjects(ctx, bucket, cfg); err != nil {
				log.Printf("[TRASH-REAPER] objek spam: %v", err)
			}
		}
		reapSoftDeletedRows(ctx, db, cfg.retention)
	}); err != nil {
		log.Fatalf("[TRASH-REAPER] jadwal %q tidak valid: %v", cfg.schedule, err)
	}

	log.Printf("[TRASH-REAPER] aktif schedule=%q prefix=%q retensi=%s dryRun=%v",
		cfg.schedule, cfg.prefix, cfg.retention, cfg.dryRun)
	c.Start()
}

// reaperBucket membuka bucket dari env ALI_OSS_*; nil kalau tidak lengkap.
func reaperBucket() *oss.Bucket {
	endpoint := normalizeEndpoint(os.Getenv("ALI_OSS_ENDPOINT"))
	key := os.Getenv("ALI_OSS_ACCESS_KEY")
	secret := os.Getenv("ALI_OSS_SECRET_KEY")
	name := os.Getenv("ALI_OSS_BUCKET")
	if endpoint == "" || key == "" || secret == "" || name == "" {
		log.Println("[TRASH-REAPER] ALI_OSS_* tidak lengkap; hanya reaper DB yang jalan")
		return nil
	}

	cli, err := oss.New(endpoint, key, secret)
	if err != nil {
		log.Printf("[TRASH-REAPER] init OSS gagal: %v", err)
		return nil
	}
	bucket, err := cli.Bucket(name)
	if err != nil {
		log.Printf("[TRASH-REAPER] buka bucket %q gagal: %v", name, err)
		return nil
	}
	return bucket
}

// reapSpamObjects memindai prefix spam/ per halaman dan menghapus objek
// yang LastModified-nya lebih tua dari retensi, batch maksimal 1000.
func reapSpamObjects(ctx context.Context, bucket *oss.Bucket, cfg reaperConfig) error {
	cutoff := time.Now().Add(-cfg.retention)

	var stale []string
	scanned := 0
	marker := oss.Marker("")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := bucket.ListObjects(oss.Prefix(cfg.prefix), marker, oss.MaxKeys(1000))
		if err != nil {
			return err
		}
		for _, obj := range page.Objects {
			scanned++
			if obj.Key != "" && obj.LastModified.Before(cutoff) {
				stale = append(stale, obj.Key)
			}
		}
		if !page.IsTruncated {
			break
		}
		marker = oss.Marker(page.NextMarker)
	}

	switch {
	case len(stale) == 0:
		log.Printf("[TRASH-REAPER] prefix %q bersih (scan=%d)", cfg.prefix, scanned)
	case cfg.dryRun:
		log.Printf("[TRASH-REAPER] dry-run: %d/%d objek %q kandidat hapus", len(stale), scanned, cfg.prefix)
	default:
		removed := 0
		for len(stale) > 0 {
			n := len(stale)
			if n > 1000 {
				n = 1000
			}
			if _, err := bucket.DeleteObjects(stale[:n], oss.DeleteObjectsQuiet(true)); err != nil {
				log.Printf("[TRASH-REAPER] hapus batch gagal: %v", err)
			} else {
				removed += n
			}
			stale = stale[n:]
		}
		log.Printf("[TRASH-REAPER] hapus %d objek basi dari %q (scan=%d)", removed, cfg.prefix, scanned)
	}
	return nil
}

// reapSoftDeletedRows menghapus permanen baris yang deleted_at-nya sudah
// melewati retensi. Daftar tabel hardcoded: hanya konten kelas yang
// punya siklus soft-delete.
func reapSoftDeletedRows(ctx context.Context, db *gorm.DB, retention time.Duration) {
	if db == nil {
		return
	}
	cutoff := time.Now().Add(-retention)

	for _, table := range []string{"class_materials", "assignments"} {
		res := db.WithContext(ctx).Exec(
			`DELETE FROM `+table+` WHERE deleted_at IS NOT NULL AND deleted_at < ?`, cutoff)
		if res.Error != nil {
			log.Printf("[TRASH-REAPER] %s: %v", table, res.Error)
			continue
		}
		if res.RowsAffected > 0 {
			log.Printf("[TRASH-REAPER] %s: %d baris soft-deleted dibersihkan", table, res.RowsAffected)
		}
	}
}
