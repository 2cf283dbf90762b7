package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"

	"github.com/kdninv/nota-api/internal/application/port"
	"github.com/kdninv/nota-api/internal/domain/entity"
)

// MaxFileSize is the per-file upload limit.
const MaxFileSize = 2 << 20 // 2MB

// allowedTypes are the MIME types accepted as proof attachments.
var allowedTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/jpg":       true,
	"image/webp":      true,
	"image/gif":       true,
	"application/pdf": true,
}

// CloudinaryStore implements port.AttachmentStore on Cloudinary.
type CloudinaryStore struct {
	client *cloudinary.Cloudinary
	logger *zap.Logger
}

// NewCloudinaryStore creates a store from a cloudinary:// URL.
func NewCloudinaryStore(cloudinaryURL string, logger *zap.Logger) (*CloudinaryStore, error) {
	client, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to init cloudinary: %w", err)
	}
	return &CloudinaryStore{
		client: client,
		logger: logger,
	}, nil
}

// Upload validates the file and stores it, returning its public handle.
func (s *CloudinaryStore) Upload(ctx context.Context, data []byte, filename, folder string) (*entity.FileAttachment, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file kosong", entity.ErrValidation)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("%w: ukuran file maksimum 2MB", entity.ErrValidation)
	}

	contentType := http.DetectContentType(data)
	if !allowedTypes[contentType] && !isPDF(data, filename) {
		return nil, fmt.Errorf("%w: tipe file %s tidak didukung", entity.ErrValidation, contentType)
	}

	publicID := fmt.Sprintf("%d_%s", time.Now().UnixNano(), sanitizeName(filename))
	resp, err := s.client.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		ResourceType: "auto",
	})
	if err != nil {
		s.logger.Error("Failed to upload attachment", zap.String("filename", filename), zap.Error(err))
		return nil, fmt.Errorf("failed to upload attachment: %w", err)
	}

	s.logger.Info("Attachment uploaded",
		zap.String("public_id", resp.PublicID),
		zap.Int("size", len(data)))

	return &entity.FileAttachment{
		URL:      resp.SecureURL,
		PublicID: resp.PublicID,
		Name:     filename,
	}, nil
}

// isPDF catches PDFs that http.DetectContentType labels octet-stream.
func isPDF(data []byte, filename string) bool {
	return bytes.HasPrefix(data, []byte("%PDF")) ||
		strings.EqualFold(filepath.Ext(filename), ".pdf")
}

func sanitizeName(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Verify interface compliance
var _ port.AttachmentStore = (*CloudinaryStore)(nil)
