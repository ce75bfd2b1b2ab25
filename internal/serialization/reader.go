package serialization

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/layergraph/internal/model"
)

// ReaderOptions configures description decoding.
type ReaderOptions struct {
	ValidationLevel ValidationLevel // Validation strictness level
	MaxSize         int64           // Maximum encoded size in bytes (0 = MaxFileSize)
}

// DefaultReaderOptions returns strict validation with the default size limit.
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{
		ValidationLevel: ValidationStrict,
		MaxSize:         MaxFileSize,
	}
}

func pickReaderOptions(opts []ReaderOptions) ReaderOptions {
	opt := DefaultReaderOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.MaxSize <= 0 {
		opt.MaxSize = MaxFileSize
	}
	return opt
}

// ReadFile reads and validates the description stored at path. The format
// follows the file extension.
func ReadFile(path string, opts ...ReaderOptions) (model.Description, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return model.Description{}, err
	}

	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return model.Description{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	d, err := Decode(file, format, opts...)
	if err != nil {
		return model.Description{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Decode reads one description from r. Unknown fields are rejected.
func Decode(r io.Reader, format Format, opts ...ReaderOptions) (model.Description, error) {
	opt := pickReaderOptions(opts)

	data, err := io.ReadAll(io.LimitReader(r, opt.MaxSize+1))
	if err != nil {
		return model.Description{}, fmt.Errorf("failed to read description: %w", err)
	}
	if int64(len(data)) > opt.MaxSize {
		return model.Description{}, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, opt.MaxSize)
	}

	var d model.Description
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&d); err != nil {
			return model.Description{}, fmt.Errorf("failed to decode JSON: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&d); err != nil {
			return model.Description{}, fmt.Errorf("failed to decode YAML: %w", err)
		}
	default:
		return model.Description{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err := ValidateDescription(&d, opt.ValidationLevel); err != nil {
		return model.Description{}, fmt.Errorf("validation failed: %w", err)
	}
	return d, nil
}
