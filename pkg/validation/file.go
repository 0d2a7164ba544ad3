package validation

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"

	"employee-management/config"
)

var ErrUnknownUploadContext = errors.New("unknown upload context")

// ValidateFile checks the size and the sniffed MIME type of an upload against
// the rules of config.UploadContexts[contextName]. The reader is rewound.
func ValidateFile(file io.ReadSeeker, size int64, contextName string) error {
	rules, ok := config.UploadContexts[contextName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownUploadContext, contextName)
	}

	if rules.MaxSizeMB > 0 {
		maxSizeBytes := int64(rules.MaxSizeMB) * 1024 * 1024
		if size > maxSizeBytes {
			return fmt.Errorf("file size (%.2f MB) exceeds the %d MB limit", float64(size)/1024/1024, rules.MaxSizeMB)
		}
	}

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind file: %w", err)
	}

	mimeType := http.DetectContentType(buffer[:n])
	if !slices.Contains(rules.AllowedMimeTypes, mimeType) {
		return fmt.Errorf("file type %s is not allowed", mimeType)
	}

	return nil
}
