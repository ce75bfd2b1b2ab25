package serialization

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/born-ml/layergraph/internal/model"
)

// Fingerprint returns the hex SHA-256 of the canonical JSON encoding of d.
func Fingerprint(d model.Description) (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to encode description: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// VerifyFingerprint compares the fingerprint of d against want.
// Returns ErrChecksumMismatch if they don't match.
func VerifyFingerprint(d model.Description, want string) error {
	got, err := Fingerprint(d)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: got %s, want %s", ErrChecksumMismatch, got, want)
	}
	return nil
}
