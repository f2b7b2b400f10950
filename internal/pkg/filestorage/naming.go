package filestorage

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// UploadsPrefix is the URL prefix of every stored file.
const UploadsPrefix = "/uploads/"

var whitespace = regexp.MustCompile(`\s+`)

// GenerateName builds "<unix-ms>_<basename with whitespace runs replaced by _><ext>".
func GenerateName(now time.Time, original string) string {
	original = filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	if original == "." || original == "/" || original == "" {
		original = "file"
	}
	ext := filepath.Ext(original)
	base := strings.TrimSuffix(original, ext)
	if base == "" {
		base = "file"
	}
	return fmt.Sprintf("%d_%s%s", now.UnixMilli(), whitespace.ReplaceAllString(base, "_"), ext)
}

// PublicPath returns the URL path of a stored file.
func PublicPath(resource, name string) string {
	return UploadsPrefix + resource + "/" + name
}

// ObjectKey converts a public path into a storage key relative to the
// uploads root. It refuses paths outside /uploads/ and traversal attempts.
func ObjectKey(publicPath string) (string, bool) {
	if !strings.HasPrefix(publicPath, UploadsPrefix) {
		return "", false
	}
	rel := strings.TrimPrefix(publicPath, UploadsPrefix)
	if rel == "" {
		return "", false
	}
	for _, part := range strings.Split(rel, "/") {
		if part == ".." {
			return "", false
		}
	}
	clean := path.Clean(rel)
	if clean == "." || strings.HasPrefix(clean, "/") {
		return "", false
	}
	return clean, true
}

// ValidResource reports whether resource is a single safe path segment.
func ValidResource(resource string) bool {
	return resource != "" && resource != "." && resource != ".." && !strings.ContainsAny(resource, `/\`)
}

// AttachmentType classifies a MIME type as image, video or file.
func AttachmentType(mime string) string {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return "image"
	case strings.HasPrefix(mime, "video/"):
		return "video"
	default:
		return "file"
	}
}

// NameWithoutExt strips the extension of a generated file name.
func NameWithoutExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
