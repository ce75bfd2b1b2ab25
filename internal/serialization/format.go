package serialization

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is the encoding of a description file.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses "json" or "yaml" (case-insensitive, "yml" accepted).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q (want json or yaml)", ErrUnsupportedFormat, s)
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension (want .json, .yaml or .yml)", ErrUnsupportedFormat, path)
	}
	f, err := ParseFormat(ext)
	if err != nil {
		return "", fmt.Errorf("%w: extension %q of %q", ErrUnsupportedFormat, filepath.Ext(path), path)
	}
	return f, nil
}
