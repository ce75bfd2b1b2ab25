// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"

	"github.com/born-ml/layergraph/internal/serialization"
)

// Format is a description file encoding.
type Format = serialization.Format

// Description file formats.
const (
	FormatJSON = serialization.FormatJSON
	FormatYAML = serialization.FormatYAML
)

// ReaderOptions configures how description files are read.
type ReaderOptions = serialization.ReaderOptions

// ValidationLevel controls how strictly a description file is checked.
type ValidationLevel = serialization.ValidationLevel

// Validation levels.
const (
	ValidationStrict = serialization.ValidationStrict
	ValidationNormal = serialization.ValidationNormal
	ValidationNone   = serialization.ValidationNone
)

// File errors.
var (
	ErrUnsupportedFormat = serialization.ErrUnsupportedFormat
	ErrFileTooLarge      = serialization.ErrFileTooLarge
	ErrChecksumMismatch  = serialization.ErrChecksumMismatch
	ErrInvalidName       = serialization.ErrInvalidName
)

// DefaultReaderOptions returns the default read limits and validation level.
func DefaultReaderOptions() ReaderOptions { return serialization.DefaultReaderOptions() }

// Save writes the description of m to path. The format follows the file
// extension: .json, .yaml or .yml.
//
// Example:
//
//	model, _ := nn.Sequential(layers)
//	err := nn.Save("mlp.yaml", model)
func Save(path string, m *Model) error {
	d, err := m.Describe()
	if err != nil {
		return fmt.Errorf("describe model: %w", err)
	}
	return serialization.WriteFile(path, d)
}

// Load reads a description file and resolves it into a model.
//
// Example:
//
//	model, err := nn.Load("mlp.yaml", nn.DefaultResolveOptions())
func Load(path string, opts ...ResolveOptions) (*Model, error) {
	d, err := serialization.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromDescription(d, opts...)
}

// ReadDescription reads and validates a description file without resolving it.
func ReadDescription(path string, opts ...ReaderOptions) (Description, error) {
	return serialization.ReadFile(path, opts...)
}

// WriteDescription writes d to path in the format named by its extension.
func WriteDescription(path string, d Description) error {
	return serialization.WriteFile(path, d)
}

// Fingerprint returns the hex SHA-256 of the canonical JSON form of d.
func Fingerprint(d Description) (string, error) { return serialization.Fingerprint(d) }

// VerifyFingerprint checks d against a fingerprint from Fingerprint.
func VerifyFingerprint(d Description, want string) error {
	return serialization.VerifyFingerprint(d, want)
}
