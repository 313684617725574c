package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/kassa-app/kassa-backend/internal/repository/storage"
)

const (
	MaxIconSize   = 1 * 1024 * 1024 // 1MB
	MinIconWidth  = 32
	MinIconHeight = 32
	IconSize      = 128 // icons are normalized to IconSize x IconSize PNG

	IconURLExpiry = 15 * time.Minute
)

var (
	ErrIconTooLarge             = errors.New("file too large. Maximum size is 1MB")
	ErrInvalidIconFormat        = errors.New("invalid format. Supported: JPEG, PNG, WebP")
	ErrIconTooSmall             = errors.New("image too small. Minimum 32x32 pixels")
	ErrInvalidIconData          = errors.New("invalid image data")
	ErrIconStorageNotConfigured = errors.New("icon storage not configured")
)

// AllowedIconExtensions maps accepted extensions to content types
var AllowedIconExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// IconMetadata describes a stored icon
type IconMetadata struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// IconService normalizes uploaded icons and stores them
type IconService struct {
	storage storage.IconRepository
}

// NewIconService creates a new IconService
func NewIconService(storage storage.IconRepository) *IconService {
	return &IconService{storage: storage}
}

// IsEnabled indicates whether uploads/deletes are supported (storage configured).
func (s *IconService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// validateAndDecode validates the upload and returns the decoded image
func (s *IconService) validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxIconSize {
		return nil, ErrIconTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := AllowedIconExtensions[ext]; !ok {
		return nil, ErrInvalidIconFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidIconData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinIconWidth || bounds.Dy() < MinIconHeight {
		return nil, ErrIconTooSmall
	}

	return img, nil
}

// ProcessAndUpload validates an upload, crops it to a square icon and stores
// it under the owner's prefix. Returns the object path and a presigned URL.
func (s *IconService) ProcessAndUpload(ctx context.Context, userID uuid.UUID, data []byte, filename string) (*IconMetadata, error) {
	if !s.IsEnabled() {
		return nil, ErrIconStorageNotConfigured
	}

	img, err := s.validateAndDecode(data, filename)
	if err != nil {
		return nil, err
	}

	normalized := imaging.Fill(img, IconSize, IconSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := png.Encode(&buf, normalized); err != nil {
		return nil, fmt.Errorf("failed to encode icon: %w", err)
	}

	objectPath := fmt.Sprintf("%s/icons/%s.png", userID, uuid.New())
	path, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/png", int64(buf.Len()))
	if err != nil {
		return nil, fmt.Errorf("failed to upload icon: %w", err)
	}

	url, err := s.storage.GeneratePresignedURL(ctx, path, IconURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign icon URL: %w", err)
	}

	return &IconMetadata{Path: path, URL: url}, nil
}

// ResolveURL returns a presigned URL for a stored icon path
func (s *IconService) ResolveURL(ctx context.Context, objectPath string) (string, error) {
	if !s.IsEnabled() {
		return "", ErrIconStorageNotConfigured
	}
	return s.storage.GeneratePresignedURL(ctx, objectPath, IconURLExpiry)
}

// Delete removes a stored icon. Paths outside the owner's prefix are
// rejected to keep users from deleting each other's objects.
func (s *IconService) Delete(ctx context.Context, userID uuid.UUID, objectPath string) error {
	if objectPath == "" {
		return nil
	}
	if !s.IsEnabled() {
		return ErrIconStorageNotConfigured
	}
	if !strings.HasPrefix(objectPath, userID.String()+"/") {
		return ErrInvalidIconData
	}
	return s.storage.Delete(ctx, objectPath)
}
