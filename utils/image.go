package utils

import (
	"mime/multipart"
	"path/filepath"
	"strings"
)

// MaxImageSize is the largest accepted avatar upload
const MaxImageSize = 5 * 1024 * 1024

// ValidateImageFile checks extension and size (<= 5MB)
func ValidateImageFile(h *multipart.FileHeader) bool {
	if h == nil || h.Size <= 0 || h.Size > MaxImageSize {
		return false
	}
	ext := strings.ToLower(filepath.Ext(h.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	default:
		return false
	}
}
