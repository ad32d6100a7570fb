package simpleassets

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	imageExtensions = []string{".png", ".jpg", ".jpeg", ".webp"}
	videoExtensions = []string{".mp4", ".mov", ".mpeg", ".webm"}
)

// ResolveFolder maps an asset to its storage folder. The MIME top-level type
// wins when it is image or video; otherwise the filename extension decides.
func ResolveFolder(contentType, filename string) (string, error) {
	if ct := strings.ToLower(strings.TrimSpace(contentType)); ct != "" {
		if strings.HasPrefix(ct, "image/") {
			return FolderImages, nil
		}
		if strings.HasPrefix(ct, "video/") {
			return FolderVideos, nil
		}
	}

	name := strings.ToLower(filename)
	if hasAnySuffix(name, imageExtensions) {
		return FolderImages, nil
	}
	if hasAnySuffix(name, videoExtensions) {
		return FolderVideos, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedMedia, filename)
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

// SanitizeFilename keeps only the final path segment and drops CR, LF and tab.
func SanitizeFilename(raw string) string {
	name := strings.ReplaceAll(raw, `\`, "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.NewReplacer("\r", "", "\n", "", "\t", "").Replace(name)
}

// KeyGenerator returns the unique token prefixed to each storage key.
type KeyGenerator func() string

// UUIDKeyGenerator is the default KeyGenerator.
func UUIDKeyGenerator() string {
	return uuid.NewString()
}

// BuildStorageURL returns "<folder>/<token>-<sanitized filename>".
func BuildStorageURL(contentType, filename string, token KeyGenerator) (string, error) {
	safeName := SanitizeFilename(filename)
	folder, err := ResolveFolder(contentType, safeName)
	if err != nil {
		return "", err
	}
	if token == nil {
		token = UUIDKeyGenerator
	}
	return fmt.Sprintf("%s/%s-%s", folder, token(), safeName), nil
}
