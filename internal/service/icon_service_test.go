package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// fakeIconStorage is an in-memory storage.IconRepository
type fakeIconStorage struct {
	objects map[string][]byte
}

func newFakeIconStorage() *fakeIconStorage {
	return &fakeIconStorage{objects: make(map[string][]byte)}
}

func (f *fakeIconStorage) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	f.objects[objectPath] = buf
	return objectPath, nil
}

func (f *fakeIconStorage) Delete(ctx context.Context, objectPath string) error {
	delete(f.objects, objectPath)
	return nil
}

func (f *fakeIconStorage) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	return "https://storage.test/" + objectPath + "?signed", nil
}

// createTestIcon creates a test image of the specified size and format
func createTestIcon(width, height int, format string) ([]byte, string) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 255, G: 0, B: 0, A: 255})
		}
	}

	var buf bytes.Buffer
	var filename string

	switch format {
	case "png":
		png.Encode(&buf, img)
		filename = "test.png"
	default:
		jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85})
		filename = "test.jpg"
	}

	return buf.Bytes(), filename
}

func TestProcessAndUpload_NormalizesToSquarePNG(t *testing.T) {
	store := newFakeIconStorage()
	svc := NewIconService(store)

	userID := uuid.New()
	data, filename := createTestIcon(200, 100, "jpeg")

	metadata, err := svc.ProcessAndUpload(context.Background(), userID, data, filename)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !strings.HasPrefix(metadata.Path, userID.String()+"/icons/") {
		t.Errorf("expected path under the user's prefix, got %s", metadata.Path)
	}
	if !strings.HasSuffix(metadata.Path, ".png") {
		t.Errorf("expected a .png object, got %s", metadata.Path)
	}
	if metadata.URL == "" {
		t.Error("expected a presigned URL")
	}

	stored, ok := store.objects[metadata.Path]
	if !ok {
		t.Fatal("expected object stored")
	}
	decoded, err := png.Decode(bytes.NewReader(stored))
	if err != nil {
		t.Fatalf("expected stored object to be a PNG: %v", err)
	}
	bounds := decoded.Bounds()
	if bounds.Dx() != IconSize || bounds.Dy() != IconSize {
		t.Errorf("expected %dx%d icon, got %dx%d", IconSize, IconSize, bounds.Dx(), bounds.Dy())
	}
}

func TestProcessAndUpload_TooLarge(t *testing.T) {
	svc := NewIconService(newFakeIconStorage())

	data := make([]byte, MaxIconSize+1)
	_, err := svc.ProcessAndUpload(context.Background(), uuid.New(), data, "test.png")
	if !errors.Is(err, ErrIconTooLarge) {
		t.Errorf("expected ErrIconTooLarge, got %v", err)
	}
}

func TestProcessAndUpload_TooSmall(t *testing.T) {
	svc := NewIconService(newFakeIconStorage())

	data, filename := createTestIcon(16, 16, "png")
	_, err := svc.ProcessAndUpload(context.Background(), uuid.New(), data, filename)
	if !errors.Is(err, ErrIconTooSmall) {
		t.Errorf("expected ErrIconTooSmall, got %v", err)
	}
}

func TestProcessAndUpload_InvalidExtension(t *testing.T) {
	svc := NewIconService(newFakeIconStorage())

	data, _ := createTestIcon(64, 64, "png")
	_, err := svc.ProcessAndUpload(context.Background(), uuid.New(), data, "test.gif")
	if !errors.Is(err, ErrInvalidIconFormat) {
		t.Errorf("expected ErrInvalidIconFormat, got %v", err)
	}
}

func TestProcessAndUpload_CorruptData(t *testing.T) {
	svc := NewIconService(newFakeIconStorage())

	_, err := svc.ProcessAndUpload(context.Background(), uuid.New(), []byte("not an image"), "test.png")
	if !errors.Is(err, ErrInvalidIconData) {
		t.Errorf("expected ErrInvalidIconData, got %v", err)
	}
}

func TestProcessAndUpload_StorageNotConfigured(t *testing.T) {
	svc := NewIconService(nil)

	data, filename := createTestIcon(64, 64, "png")
	_, err := svc.ProcessAndUpload(context.Background(), uuid.New(), data, filename)
	if !errors.Is(err, ErrIconStorageNotConfigured) {
		t.Errorf("expected ErrIconStorageNotConfigured, got %v", err)
	}
}

func TestDeleteIcon_ForeignPrefixRejected(t *testing.T) {
	store := newFakeIconStorage()
	svc := NewIconService(store)

	owner := uuid.New()
	data, filename := createTestIcon(64, 64, "png")
	metadata, err := svc.ProcessAndUpload(context.Background(), owner, data, filename)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := svc.Delete(context.Background(), uuid.New(), metadata.Path); !errors.Is(err, ErrInvalidIconData) {
		t.Errorf("expected foreign delete rejected, got %v", err)
	}
	if _, ok := store.objects[metadata.Path]; !ok {
		t.Error("expected object to survive")
	}

	if err := svc.Delete(context.Background(), owner, metadata.Path); err != nil {
		t.Fatalf("expected owner delete to succeed, got %v", err)
	}
	if _, ok := store.objects[metadata.Path]; ok {
		t.Error("expected object removed")
	}
}
