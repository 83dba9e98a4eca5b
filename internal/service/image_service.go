package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/taxmate/taxmate-backend/internal/repository/storage"
)

const (
	MaxImageSize   = 10 * 1024 * 1024 // 10MB, receipt photos from phones are large
	MinImageWidth  = 50
	MinImageHeight = 50
	ThumbnailWidth = 200
	DisplayWidth   = 1200
	JPEGQuality    = 85
)

var (
	ErrImageTooLarge             = errors.New("file too large. Maximum size is 10MB")
	ErrInvalidFormat             = errors.New("invalid format. Supported: JPEG, PNG, WebP")
	ErrImageTooSmall             = errors.New("image too small. Minimum 50x50 pixels")
	ErrInvalidImageData          = errors.New("invalid image data")
	ErrImageStorageNotConfigured = errors.New("image storage not configured")
)

// allowedExtensions maps extensions to content types
var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// ReceiptImage contains URLs for the stored receipt image variants.
type ReceiptImage struct {
	ID           string `json:"id"`
	ThumbnailURL string `json:"thumbnailUrl"`
	DisplayURL   string `json:"displayUrl"`
}

// ImageService processes receipt photos and stores the resized variants.
type ImageService struct {
	storage storage.ObjectRepository
}

// NewImageService creates a new ImageService
func NewImageService(storage storage.ObjectRepository) *ImageService {
	return &ImageService{storage: storage}
}

// IsEnabled indicates whether uploads are supported (storage configured).
func (s *ImageService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// validateAndDecode validates the image and returns the decoded image
func (s *ImageService) validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return nil, ErrInvalidFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidImageData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinImageWidth || bounds.Dy() < MinImageHeight {
		return nil, ErrImageTooSmall
	}

	return img, nil
}

// ProcessAndUpload validates a receipt photo, renders the thumbnail and
// display variants, and uploads both.
func (s *ImageService) ProcessAndUpload(ctx context.Context, workspaceID int32, receiptID int32, data []byte, filename string) (*ReceiptImage, error) {
	if !s.IsEnabled() {
		return nil, ErrImageStorageNotConfigured
	}

	img, err := s.validateAndDecode(data, filename)
	if err != nil {
		return nil, err
	}

	imageID := uuid.New().String()

	variants := []struct {
		name     string
		maxWidth int
	}{
		{"thumb", ThumbnailWidth},
		{"display", DisplayWidth},
	}

	urls := make(map[string]string)
	for _, variant := range variants {
		processed := img
		if img.Bounds().Dx() > variant.maxWidth {
			processed = imaging.Resize(img, variant.maxWidth, 0, imaging.Lanczos)
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, processed, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}

		objectPath := fmt.Sprintf("%d/receipts/%d/%s_%s.jpg", workspaceID, receiptID, imageID, variant.name)
		url, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len()))
		if err != nil {
			s.cleanupVariants(ctx, urls)
			return nil, fmt.Errorf("failed to upload %s variant: %w", variant.name, err)
		}
		urls[variant.name] = url
	}

	return &ReceiptImage{
		ID:           imageID,
		ThumbnailURL: urls["thumb"],
		DisplayURL:   urls["display"],
	}, nil
}

// cleanupVariants removes variants uploaded before a later variant failed.
func (s *ImageService) cleanupVariants(ctx context.Context, urls map[string]string) {
	for _, url := range urls {
		_ = s.DeleteByURL(ctx, url)
	}
}

// DeleteByURL deletes a stored variant by its URL
func (s *ImageService) DeleteByURL(ctx context.Context, imageURL string) error {
	if imageURL == "" {
		return nil
	}
	if !s.IsEnabled() {
		return ErrImageStorageNotConfigured
	}
	return s.storage.DeleteByURL(ctx, imageURL)
}

// DeleteAllVariants deletes every stored variant of a receipt image.
func (s *ImageService) DeleteAllVariants(ctx context.Context, imageURL string) error {
	if imageURL == "" {
		return nil
	}
	if !s.IsEnabled() {
		return ErrImageStorageNotConfigured
	}

	basePath := extractBasePath(imageURL)
	if basePath == "" {
		return nil
	}

	for _, variant := range []string{"thumb", "display"} {
		_ = s.DeleteByURL(ctx, basePath+"_"+variant+".jpg")
	}
	return nil
}

// extractBasePath strips the variant suffix from a stored image URL.
func extractBasePath(imageURL string) string {
	for _, suffix := range []string{"_thumb.jpg", "_display.jpg"} {
		if strings.HasSuffix(imageURL, suffix) {
			return strings.TrimSuffix(imageURL, suffix)
		}
	}
	return ""
}
