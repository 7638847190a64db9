package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

const (
	TypePNG  = "image/png"
	TypeJPEG = "image/jpeg"
	TypePDF  = "application/pdf"
)

var ErrUnsupported = errors.New("unsupported media type")

// Detect resolves the media type of an upload. Content sniffing wins; the
// declared type and the file extension are only consulted when the bytes are
// not recognised.
func Detect(filename, declared string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrUnsupported)
	}

	sniffed := http.DetectContentType(data)
	if t := canonical(sniffed); t != "" {
		return t, nil
	}

	// a sniffed type we don't accept is authoritative unless it is the generic fallback
	if !strings.HasPrefix(sniffed, "application/octet-stream") && !strings.HasPrefix(sniffed, "text/plain") {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, sniffed)
	}

	if t := canonical(declared); t != "" {
		return t, nil
	}
	if t := canonical(mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))); t != "" {
		return t, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupported, filename)
}

func canonical(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	switch mt {
	case TypePNG:
		return TypePNG
	case TypeJPEG, "image/jpg", "image/pjpeg":
		return TypeJPEG
	case TypePDF:
		return TypePDF
	}
	return ""
}

// ValidateImage checks that data decodes as a PNG or JPEG header.
func ValidateImage(data []byte) error {
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return nil
}

// Inspector exposes Detect and ValidateImage as a ports.InspectorPort.
type Inspector struct{}

func (Inspector) Detect(filename, declared string, data []byte) (string, error) {
	return Detect(filename, declared, data)
}

func (Inspector) ValidateImage(data []byte) error { return ValidateImage(data) }
