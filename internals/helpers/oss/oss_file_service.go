// file: internals/helpers/oss/oss_file_service.go
package helper

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"sync"

	"github.com/google/uuid"
)

/* =======================================================================
   FileService: facade penyimpanan file utk fitur sekolah.
   - Key di-scope per kelas: classes/<class_id>/materials/...
   - Controller pegang interface ini supaya gampang di-mock saat test.
======================================================================= */

type FileService interface {
	// UploadCoverImage: kompres ke webp, simpan di folder covers kelas.
	UploadCoverImage(ctx context.Context, classID uuid.UUID, fh *multipart.FileHeader) (publicURL string, err error)
	// UploadAttachment: simpan apa adanya (pdf, video, dll) di folder materials kelas.
	UploadAttachment(ctx context.Context, classID uuid.UUID, fh *multipart.FileHeader) (publicURL string, err error)
	// DeleteByURL: hapus objek berdasarkan public URL (no-op kalau URL kosong).
	DeleteByURL(ctx context.Context, publicURL string) error
	// MoveToSpamByURL: karantina objek ke spam/ (dipurge reaper) alih-alih
	// hapus permanen. Return URL baru di spam.
	MoveToSpamByURL(ctx context.Context, publicURL string) (string, error)
}

/* ===================== implementasi OSS ===================== */

type ossFileService struct {
	svc *OSSService
}

func NewFileServiceFromEnv() (FileService, error) {
	svc, err := NewOSSServiceFromEnv("kelasku")
	if err != nil {
		return nil, err
	}
	return &ossFileService{svc: svc}, nil
}

/* ===================== storage dimatikan ===================== */

// ErrStorageDisabled dikembalikan saat env OSS tidak di-set.
// Aplikasi tetap jalan; endpoint upload menjawab 502.
var ErrStorageDisabled = errors.New("object storage tidak dikonfigurasi")

type disabledFileService struct{}

func NewDisabledFileService() FileService { return disabledFileService{} }

func (disabledFileService) UploadCoverImage(context.Context, uuid.UUID, *multipart.FileHeader) (string, error) {
	return "", ErrStorageDisabled
}

func (disabledFileService) UploadAttachment(context.Context, uuid.UUID, *multipart.FileHeader) (string, error) {
	return "", ErrStorageDisabled
}

func (disabledFileService) DeleteByURL(context.Context, string) error { return nil }

func (disabledFileService) MoveToSpamByURL(context.Context, string) (string, error) {
	return "", ErrStorageDisabled
}

func classDir(classID uuid.UUID, sub string) string {
	return fmt.Sprintf("classes/%s/%s", classID.String(), sub)
}

func (o *ossFileService) UploadCoverImage(ctx context.Context, classID uuid.UUID, fh *multipart.FileHeader) (string, error) {
	if classID == uuid.Nil {
		return "", fmt.Errorf("classID kosong")
	}
	return o.svc.UploadAsWebP(ctx, fh, classDir(classID, "covers"))
}

func (o *ossFileService) UploadAttachment(ctx context.Context, classID uuid.UUID, fh *multipart.FileHeader) (string, error) {
	if classID == uuid.Nil {
		return "", fmt.Errorf("classID kosong")
	}
	key, _, err := o.svc.UploadFromFormFileToDir(ctx, classDir(classID, "materials"), fh)
	if err != nil {
		return "", err
	}
	return o.svc.PublicURL(key), nil
}

func (o *ossFileService) DeleteByURL(ctx context.Context, publicURL string) error {
	if strings.TrimSpace(publicURL) == "" {
		return nil
	}
	return o.svc.DeleteByPublicURL(ctx, publicURL)
}

func (o *ossFileService) MoveToSpamByURL(ctx context.Context, publicURL string) (string, error) {
	if strings.TrimSpace(publicURL) == "" {
		return "", nil
	}
	return o.svc.MoveToSpamByPublicURL(ctx, publicURL)
}

/* ===================== mock utk test ===================== */

type MockFileService struct {
	mu       sync.Mutex
	Uploaded []string // URL hasil upload
	Deleted  []string // URL yang dihapus
	Spammed  []string // URL yang dikarantina
	FailNext bool
}

func (m *MockFileService) UploadCoverImage(_ context.Context, classID uuid.UUID, fh *multipart.FileHeader) (string, error) {
	return m.record(classID, "covers", fh)
}

func (m *MockFileService) UploadAttachment(_ context.Context, classID uuid.UUID, fh *multipart.FileHeader) (string, error) {
	return m.record(classID, "materials", fh)
}

func (m *MockFileService) DeleteByURL(_ context.Context, publicURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNext {
		m.FailNext = false
		return fmt.Errorf("mock delete failure")
	}
	m.Deleted = append(m.Deleted, publicURL)
	return nil
}

func (m *MockFileService) MoveToSpamByURL(_ context.Context, publicURL string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNext {
		m.FailNext = false
		return "", fmt.Errorf("mock move failure")
	}
	m.Spammed = append(m.Spammed, publicURL)
	return "https://mock.local/spam/" + publicURL, nil
}

func (m *MockFileService) record(classID uuid.UUID, sub string, fh *multipart.FileHeader) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNext {
		m.FailNext = false
		return "", fmt.Errorf("mock upload failure")
	}
	name := "file"
	if fh != nil {
		name = fh.Filename
	}
	url := fmt.Sprintf("https://mock.local/%s/%s", classDir(classID, sub), name)
	m.Uploaded = append(m.Uploaded, url)
	return url, nil
}
