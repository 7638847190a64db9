package domain

import (
	"fmt"
	"strings"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatTXT  Format = "txt"
)

// SupportedFormats lists the output formats in a stable order.
var SupportedFormats = []Format{FormatJSON, FormatTXT}

// ParseFormat accepts a raw output_format value. Matching is case-insensitive
// and ignores surrounding whitespace.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, sf := range SupportedFormats {
		if f == sf {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// OutputFilename is the download name suggested for a format.
func (f Format) OutputFilename() string {
	return "output." + string(f)
}
