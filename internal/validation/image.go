// Package validation owns form-level input checks, chiefly the image
// attachment extension allow-list.
package validation

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// allowedImageExtensions is the set of raster and vector image file
// extensions accepted for post attachments, lowercase and without dots.
var allowedImageExtensions = map[string]bool{
	"apng": true,
	"avif": true,
	"bmp":  true,
	"cur":  true,
	"dib":  true,
	"emf":  true,
	"gif":  true,
	"heic": true,
	"heif": true,
	"ico":  true,
	"jfif": true,
	"jpeg": true,
	"jpg":  true,
	"pbm":  true,
	"pcx":  true,
	"pgm":  true,
	"pjp":  true,
	"pjpeg": true,
	"png":  true,
	"pnm":  true,
	"ppm":  true,
	"psd":  true,
	"ras":  true,
	"rgb":  true,
	"sgi":  true,
	"svg":  true,
	"tga":  true,
	"tif":  true,
	"tiff": true,
	"webp": true,
	"wmf":  true,
	"xbm":  true,
	"xpm":  true,
}

// ImageExtensionError reports a rejected attachment. It renders as a
// field-level message naming the offending extension and the allowed set;
// the exact wording is not a stable interface.
type ImageExtensionError struct {
	Extension string
}

func (e *ImageExtensionError) Error() string {
	return fmt.Sprintf(
		"file extension %q is not allowed. Allowed extensions are: %s.",
		e.Extension, strings.Join(AllowedImageExtensions(), ", "),
	)
}

// ValidateImageFilename checks a candidate attachment filename against the
// extension allow-list. Returns nil when the extension is accepted and an
// *ImageExtensionError when it is not.
func ValidateImageFilename(filename string) error {
	ext := NormalizeExtension(filename)
	if !allowedImageExtensions[ext] {
		return &ImageExtensionError{Extension: ext}
	}
	return nil
}

// NormalizeExtension extracts the lowercase extension without its dot
func NormalizeExtension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// AllowedImageExtensions returns the allow-list in sorted order
func AllowedImageExtensions() []string {
	exts := make([]string, 0, len(allowedImageExtensions))
	for ext := range allowedImageExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
