package validation

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

const genericMimeType = "application/octet-stream"

// DetectMimeType sniffs the content first. When the bytes say nothing useful
// it falls back to the declared Content-Type, then to the file extension.
func DetectMimeType(data []byte, declared, filename string) string {
	if detected := mimetype.Detect(data); !detected.Is(genericMimeType) {
		return baseType(detected.String())
	}

	if declared = baseType(declared); declared != "" && declared != genericMimeType {
		return declared
	}

	if byExt := baseType(mime.TypeByExtension(filepath.Ext(filename))); byExt != "" {
		return byExt
	}
	return genericMimeType
}

// ImageDimensions returns nil sizes for non-images and undecodable data.
func ImageDimensions(data []byte, mimeType string) (*int, *int) {
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, nil
	}

	width, height := cfg.Width, cfg.Height
	return &width, &height
}

// baseType drops parameters such as "; charset=utf-8".
func baseType(mimeType string) string {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return strings.TrimSpace(mimeType)
	}
	return mediaType
}
