package helper

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
)

func normalizeEndpoint(ep string) string {
	ep = strings.TrimSpace(ep)
	if ep == "" {
		return ep
	}
	if strings.HasPrefix(ep, "http://") || strings.HasPrefix(ep, "https://") {
		return ep
	}
	return "https://" + ep
}

// MoveToSpamByPublicURL memindahkan objek aktif ke
// spam/YYYY/MM/DD/HHMMSS__basename. Objek di spam/ dibersihkan reaper
// setelah lewat masa retensi, jadi hapus materi masih bisa dipulihkan.
// Return URL tujuan (spam).
func (s *OSSService) MoveToSpamByPublicURL(ctx context.Context, publicURL string) (string, error) {
	srcKey, err := ExtractKeyFromPublicURL(publicURL)
	if err != nil {
		return "", err
	}
	if srcKey == "" || strings.HasPrefix(srcKey, "spam/") {
		return "", fmt.Errorf("key %q tidak bisa dipindah ke spam", srcKey)
	}

	now := time.Now()
	base := path.Base(srcKey)
	dstKey := path.Join(
		"spam",
		now.Format("2006"), now.Format("01"), now.Format("02"),
		fmt.Sprintf("%s__%s", now.Format("150405"), base),
	)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := s.Bucket.CopyObject(srcKey, dstKey); err != nil {
		return "", fmt.Errorf("copy %q -> %q: %w", srcKey, dstKey, err)
	}
	_ = s.Bucket.DeleteObject(srcKey) // best-effort

	return s.PublicURL(dstKey), nil
}
